package model

import "time"

// SlotLock is an advisory lock keyed by (lab, site, start instant). The
// approval flow acquires it before re-checking availability and committing a
// schedule, so only one of two racing approvals for the same slot can win.
type SlotLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
