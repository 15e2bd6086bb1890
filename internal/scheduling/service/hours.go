package service

import (
	"fmt"
	"time"

	schederrors "labbook/internal/scheduling/errors"
	"labbook/pkg/model"
)

const clockFormat = "15:04"

// withinOperatingHours checks a candidate interval against the site's
// operating window, evaluated in the site's own timezone. Both endpoints must
// fall inside [opening, closing] on the same local calendar day; an interval
// crossing local midnight is rejected here rather than silently truncated.
// Pure function, no I/O.
func withinOperatingHours(site *model.Site, start, end time.Time) error {
	loc, err := site.Location()
	if err != nil {
		return fmt.Errorf("invalid site timezone %q: %w", site.TimeZone, err)
	}

	opStart, err := parseClockMinutes(site.OpeningTime)
	if err != nil {
		return fmt.Errorf("invalid opening time %q: %w", site.OpeningTime, err)
	}
	opEnd, err := parseClockMinutes(site.ClosingTime)
	if err != nil {
		return fmt.Errorf("invalid closing time %q: %w", site.ClosingTime, err)
	}

	localStart := start.In(loc)
	localEnd := end.In(loc)

	if localStart.Format(time.DateOnly) != localEnd.Format(time.DateOnly) {
		return schederrors.ErrSpansMultipleDays
	}

	startMin := minutesSinceMidnight(localStart)
	endMin := minutesSinceMidnight(localEnd)

	if startMin < opStart || startMin > opEnd || endMin < opStart || endMin > opEnd {
		return schederrors.ErrOutsideOperatingHours
	}

	return nil
}

func parseClockMinutes(hhmm string) (int, error) {
	t, err := time.Parse(clockFormat, hhmm)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

func minutesSinceMidnight(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}
