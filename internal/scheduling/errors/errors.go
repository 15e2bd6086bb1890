package errors

import "errors"

var (
	ErrLabNotFound = errors.New("lab not found")

	ErrSiteNotFound = errors.New("site not found")

	ErrRequestNotFound = errors.New("booking request not found")

	ErrInvalidID = errors.New("invalid ID format")

	ErrOutsideOperatingHours = errors.New("interval falls outside the site's operating hours")

	ErrSpansMultipleDays = errors.New("interval spans more than one local calendar day")
)
