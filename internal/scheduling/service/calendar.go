package service

import (
	"context"
	"time"

	"labbook/internal/scheduling/cache"
	"labbook/internal/scheduling/repository"
	apperrors "labbook/pkg/errors"
	"labbook/pkg/model"
)

// CalendarView returns the committed bookings intersecting the query window,
// sorted by scheduled start. Results pass through a short-TTL cache, so a
// just-approved booking may take up to the TTL to show; approval correctness
// never depends on this read.
func (s *schedulingService) CalendarView(ctx context.Context, q CalendarQuery) ([]*model.Booking, error) {
	from := q.From
	if from.IsZero() {
		from = time.Now().UTC()
	}
	to := q.To
	if to.IsZero() {
		to = from.Add(s.cfg.CalendarDefaultHorizon)
	}
	if !from.Before(to) {
		return nil, apperrors.InvalidInput("Calendar range start must be before its end")
	}

	key := cache.Key(q.LabID, q.SiteID, from, to)
	if s.calendar != nil {
		cached, err := s.calendar.Get(ctx, key)
		if err != nil {
			s.cfg.Log.Warn("Calendar cache read failed", "key", key, "error", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	bookings, err := s.bookings.FindInRange(ctx, repository.CalendarFilter{
		LabID:  q.LabID,
		SiteID: q.SiteID,
		From:   from,
		To:     to,
	})
	if err != nil {
		s.cfg.Log.Error("Failed to read calendar range",
			"lab_id", q.LabID,
			"site_id", q.SiteID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to read calendar range", err)
	}
	if bookings == nil {
		bookings = []*model.Booking{}
	}

	if s.calendar != nil {
		if err := s.calendar.Set(ctx, key, bookings); err != nil {
			s.cfg.Log.Warn("Calendar cache write failed", "key", key, "error", err)
		}
	}

	return bookings, nil
}
