package model

import "time"

type ExtensionStatus string

const (
	ExtensionPending  ExtensionStatus = "pending"
	ExtensionApproved ExtensionStatus = "approved"
	ExtensionRejected ExtensionStatus = "rejected"
)

// ExtensionRequest asks for extra time on an already-scheduled booking
// request. Evaluating it re-runs the availability check for every lab line
// item at scheduledEnd + AdditionalHours; whether all items must pass is the
// approval flow's policy, not the scheduler's.
type ExtensionRequest struct {
	ID              string          `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	RequestID       string          `json:"request_id" bson:"request_id" validate:"required,mongodb"`
	AdditionalHours int             `json:"additional_hours" bson:"additional_hours" validate:"required,min=1,max=24"`
	Reason          string          `json:"reason,omitempty" bson:"reason,omitempty" validate:"omitempty,max=500"`
	Status          ExtensionStatus `json:"status" bson:"status" validate:"required,oneof=pending approved rejected"`
	CreatedAt       time.Time       `json:"created_at" bson:"created_at" validate:"omitempty"`
}
