package model

import "time"

// AvailabilityQuery is a single availability question: is [Start, End) free on
// this lab at this site. ExcludeRequestID removes a booking request's own line
// items from conflict detection, which extension checks rely on.
type AvailabilityQuery struct {
	LabID            string    `json:"lab_id" validate:"required,mongodb"`
	SiteID           string    `json:"site_id" validate:"required,mongodb"`
	Start            time.Time `json:"start" validate:"required"`
	End              time.Time `json:"end" validate:"required,gtfield=Start"`
	ExcludeRequestID string    `json:"exclude_booking_id,omitempty" validate:"omitempty,mongodb"`
}

func (q AvailabilityQuery) Interval() Interval {
	return Interval{Start: q.Start, End: q.End}
}

// ExtensionQuery asks whether every lab line item of a scheduled booking
// request could run AdditionalHours longer.
type ExtensionQuery struct {
	RequestID       string `json:"-" validate:"required,mongodb"`
	AdditionalHours int    `json:"additional_hours" validate:"required,min=1,max=24"`
	Reason          string `json:"reason,omitempty" validate:"omitempty,max=500"`
}
