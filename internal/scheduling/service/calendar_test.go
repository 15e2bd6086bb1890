package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"labbook/internal/scheduling/repository"
	apperrors "labbook/pkg/errors"
	"labbook/pkg/model"
)

func TestCalendarView_ExplicitRange(t *testing.T) {
	svc, deps := newTestService(testLab(), testSite())

	from := time.Date(2026, time.September, 14, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 7)

	var gotFilter repository.CalendarFilter
	deps.bookings.findInRangeFunc = func(ctx context.Context, filter repository.CalendarFilter) ([]*model.Booking, error) {
		gotFilter = filter
		return []*model.Booking{{ID: testItemID, Status: model.StatusScheduled}}, nil
	}

	bookings, err := svc.CalendarView(context.Background(), CalendarQuery{
		LabID:  testLabID,
		SiteID: testSiteID,
		From:   from,
		To:     to,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(bookings) != 1 {
		t.Fatalf("expected one booking, got %d", len(bookings))
	}
	if gotFilter.LabID != testLabID || gotFilter.SiteID != testSiteID {
		t.Errorf("filter lost its narrowing, got %+v", gotFilter)
	}
	if !gotFilter.From.Equal(from) || !gotFilter.To.Equal(to) {
		t.Errorf("filter bounds changed, got %v..%v", gotFilter.From, gotFilter.To)
	}
}

func TestCalendarView_DefaultsHorizon(t *testing.T) {
	svc, deps := newTestService(testLab(), testSite())

	var gotFilter repository.CalendarFilter
	deps.bookings.findInRangeFunc = func(ctx context.Context, filter repository.CalendarFilter) ([]*model.Booking, error) {
		gotFilter = filter
		return nil, nil
	}

	before := time.Now().UTC()
	bookings, err := svc.CalendarView(context.Background(), CalendarQuery{})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if bookings == nil {
		t.Error("an empty range must return an empty slice, not nil")
	}

	if gotFilter.From.Before(before.Add(-time.Second)) {
		t.Errorf("default From should be roughly now, got %v", gotFilter.From)
	}
	horizon := gotFilter.To.Sub(gotFilter.From)
	if horizon != testConfig().CalendarDefaultHorizon {
		t.Errorf("expected default horizon %v, got %v", testConfig().CalendarDefaultHorizon, horizon)
	}
}

func TestCalendarView_InvalidRange(t *testing.T) {
	svc, _ := newTestService(testLab(), testSite())

	from := time.Date(2026, time.September, 14, 0, 0, 0, 0, time.UTC)
	_, err := svc.CalendarView(context.Background(), CalendarQuery{
		From: from,
		To:   from.AddDate(0, 0, -1),
	})
	if err == nil {
		t.Fatal("expected an error for an inverted range")
	}
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperrors.CodeInvalidInput {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
}
