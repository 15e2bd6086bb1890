package service

import (
	"context"
	"time"

	"labbook/pkg/model"
)

// Offsets tried by the alternative search, in order. Phase A shifts the
// requested start within the same day; phase B retries the same local clock
// time on following days. The candidate list is fixed, so the search is
// bounded and deterministic.
var (
	sameDayOffsetHours = []int{-3, -2, -1, 1, 2, 3}
	nextDayOffsets     = []int{1, 2, 3}
)

// findAlternatives proposes nearby conflict-free intervals of identical
// duration. Each candidate goes through the reduced availability check; a
// candidate that fails for any reason is skipped, never retried. Returns at
// most cfg.MaxAlternatives intervals and may return none.
func (s *schedulingService) findAlternatives(ctx context.Context, lab *model.Lab, site *model.Site, q *model.AvailabilityQuery) []model.Interval {
	loc, err := site.Location()
	if err != nil {
		// The operating-hours gate already resolved this location; a failure
		// here means the site record changed mid-flight. Give up quietly.
		return nil
	}

	duration := q.End.Sub(q.Start)
	localStart := q.Start.In(loc)
	maxResults := s.cfg.MaxAlternatives

	alternatives := make([]model.Interval, 0, maxResults)

	for _, hours := range sameDayOffsetHours {
		if len(alternatives) >= maxResults {
			return alternatives
		}
		start := localStart.Add(time.Duration(hours) * time.Hour)
		if s.candidateAvailable(ctx, lab, site, start, start.Add(duration), q.ExcludeRequestID) {
			alternatives = append(alternatives, model.Interval{Start: start, End: start.Add(duration)})
		}
	}

	for _, days := range nextDayOffsets {
		if len(alternatives) >= maxResults {
			return alternatives
		}
		// AddDate keeps the local wall clock, so "same time tomorrow" holds
		// across daylight-saving transitions.
		start := localStart.AddDate(0, 0, days)
		if s.candidateAvailable(ctx, lab, site, start, start.Add(duration), q.ExcludeRequestID) {
			alternatives = append(alternatives, model.Interval{Start: start, End: start.Add(duration)})
		}
	}

	return alternatives
}
