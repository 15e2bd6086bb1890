package model

import (
	"time"
)

type BookingStatus string

const (
	StatusDraft       BookingStatus = "draft"
	StatusSubmitted   BookingStatus = "submitted"
	StatusUnderReview BookingStatus = "under_review"
	StatusApproved    BookingStatus = "approved"
	StatusRejected    BookingStatus = "rejected"
	StatusScheduled   BookingStatus = "scheduled"
	StatusInProgress  BookingStatus = "in_progress"
	StatusCompleted   BookingStatus = "completed"
	StatusCancelled   BookingStatus = "cancelled"
)

// CommittedStatuses are the statuses that occupy real calendar time. Only
// bookings in one of these states participate in conflict detection; a draft,
// submitted, rejected or cancelled booking never blocks anyone.
var CommittedStatuses = []BookingStatus{
	StatusApproved,
	StatusScheduled,
	StatusInProgress,
	StatusCompleted,
}

func (s BookingStatus) IsCommitted() bool {
	for _, c := range CommittedStatuses {
		if s == c {
			return true
		}
	}
	return false
}

// transitions is the one-directional lifecycle. Rejected and cancelled are
// terminal; a rejected request is resubmitted as a brand-new draft, never
// reactivated.
var transitions = map[BookingStatus][]BookingStatus{
	StatusDraft:       {StatusSubmitted, StatusCancelled},
	StatusSubmitted:   {StatusUnderReview, StatusCancelled},
	StatusUnderReview: {StatusApproved, StatusRejected},
	StatusApproved:    {StatusScheduled, StatusCancelled},
	StatusScheduled:   {StatusInProgress, StatusCancelled},
	StatusInProgress:  {StatusCompleted, StatusCancelled},
	StatusCompleted:   {},
	StatusRejected:    {},
	StatusCancelled:   {},
}

func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range transitions[s] {
		if next == allowed {
			return true
		}
	}
	return false
}

// Booking is a single lab line item inside a BookingRequest aggregate. The
// requested interval is what the customer asked for; the scheduled interval is
// set at approval and may differ. Conflict detection runs against the
// scheduled interval.
type Booking struct {
	ID             string        `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	RequestID      string        `json:"request_id" bson:"request_id" validate:"required,mongodb"`
	LabID          string        `json:"lab_id" bson:"lab_id" validate:"required,mongodb"`
	SiteID         string        `json:"site_id" bson:"site_id" validate:"required,mongodb"`
	RequestedStart time.Time     `json:"requested_start" bson:"requested_start" validate:"required"`
	RequestedEnd   time.Time     `json:"requested_end" bson:"requested_end" validate:"required,gtfield=RequestedStart"`
	ScheduledStart *time.Time    `json:"scheduled_start,omitempty" bson:"scheduled_start,omitempty"`
	ScheduledEnd   *time.Time    `json:"scheduled_end,omitempty" bson:"scheduled_end,omitempty"`
	Status         BookingStatus `json:"status" bson:"status" validate:"required,oneof=draft submitted under_review approved rejected scheduled in_progress completed cancelled"`

	// HourlyRate is snapshotted from the lab at approval time so later rate
	// changes never reprice history.
	HourlyRate float64 `json:"hourly_rate,omitempty" bson:"hourly_rate,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty" bson:"updated_at,omitempty"`
}

// ScheduledInterval returns the scheduled window, or false if the booking has
// not been given one yet.
func (b *Booking) ScheduledInterval() (Interval, bool) {
	if b.ScheduledStart == nil || b.ScheduledEnd == nil {
		return Interval{}, false
	}
	return Interval{Start: *b.ScheduledStart, End: *b.ScheduledEnd}, true
}

func (b *Booking) RequestedInterval() Interval {
	return Interval{Start: b.RequestedStart, End: b.RequestedEnd}
}

// BookingRequest is the customer-facing aggregate a set of lab line items
// belongs to. Its status drives the lifecycle of every line item.
type BookingRequest struct {
	ID             string        `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	OrganizationID string        `json:"organization_id" bson:"organization_id" validate:"required"`
	Status         BookingStatus `json:"status" bson:"status" validate:"required,oneof=draft submitted under_review approved rejected scheduled in_progress completed cancelled"`
	Notes          string        `json:"notes,omitempty" bson:"notes,omitempty" validate:"omitempty,max=500"`
	CreatedAt      time.Time     `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt      time.Time     `json:"updated_at,omitempty" bson:"updated_at,omitempty"`
}
