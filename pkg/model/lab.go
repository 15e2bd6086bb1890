package model

import "time"

// Lab is a bookable physical test resource (chamber, vibration table,
// cleanroom) hosted at a Site. CapacityUnits is how many committed bookings
// may overlap on it at once; 1 means strictly exclusive equipment.
type Lab struct {
	ID                 string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	SiteID             string    `json:"site_id" bson:"site_id" validate:"required,mongodb"`
	Name               string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	HourlyRate         float64   `json:"hourly_rate" bson:"hourly_rate" validate:"required,gt=0"`
	SlotGranularityMin int       `json:"slot_granularity_min" bson:"slot_granularity_min" validate:"required,oneof=15 30 60"`
	CapacityUnits      int       `json:"capacity_units" bson:"capacity_units" validate:"required,min=1,max=10"`
	IsActive           bool      `json:"is_active" bson:"is_active"`
	CreatedAt          time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}
