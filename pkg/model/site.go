package model

import "time"

// Site is a physical facility hosting one or more Labs. Operating hours are
// local clock strings evaluated in the site's own timezone; the window never
// spans midnight (OpeningTime < ClosingTime within one calendar day).
type Site struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name        string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	TimeZone    string    `json:"time_zone" bson:"time_zone" validate:"required,timezone"`
	OpeningTime string    `json:"opening_time" bson:"opening_time" validate:"required,operating_time"`
	ClosingTime string    `json:"closing_time" bson:"closing_time" validate:"required,operating_time"`
	IsActive    bool      `json:"is_active" bson:"is_active"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// Location resolves the site's IANA timezone identifier.
func (s *Site) Location() (*time.Location, error) {
	return time.LoadLocation(s.TimeZone)
}
