package service

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "labbook/pkg/errors"
	"labbook/pkg/model"
)

func TestCheckAvailability_FreeSlot(t *testing.T) {
	svc, _ := newTestService(testLab(), testSite())

	start := localTime(t, "Asia/Kolkata", 2026, time.September, 14, 11, 0)
	result, err := svc.CheckAvailability(context.Background(), &model.AvailabilityQuery{
		LabID:  testLabID,
		SiteID: testSiteID,
		Start:  start,
		End:    start.Add(2 * time.Hour),
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !result.IsAvailable {
		t.Error("expected slot to be available")
	}
	if len(result.Conflicts) != 0 || len(result.Alternatives) != 0 {
		t.Errorf("available result must carry no conflicts or alternatives, got %d/%d",
			len(result.Conflicts), len(result.Alternatives))
	}
}

func TestCheckAvailability_ConflictProposesAlternatives(t *testing.T) {
	svc, deps := newTestService(testLab(), testSite())

	// One committed booking occupying 10:00-14:00 local. The request for
	// 11:00-13:00 collides; shifting back 3 hours lands on 08:00-10:00,
	// which touches the conflict only at its boundary and is free under
	// half-open semantics.
	busy := model.Interval{
		Start: localTime(t, "Asia/Kolkata", 2026, time.September, 14, 10, 0),
		End:   localTime(t, "Asia/Kolkata", 2026, time.September, 14, 14, 0),
	}
	deps.bookings.findConflictsFunc = func(ctx context.Context, labID, siteID string, start, end time.Time, exclude string) ([]*model.Booking, error) {
		if busy.Start.Before(end) && busy.End.After(start) {
			return []*model.Booking{{ID: testItemID, LabID: labID, SiteID: siteID, Status: model.StatusScheduled}}, nil
		}
		return nil, nil
	}

	start := localTime(t, "Asia/Kolkata", 2026, time.September, 14, 11, 0)
	result, err := svc.CheckAvailability(context.Background(), &model.AvailabilityQuery{
		LabID:  testLabID,
		SiteID: testSiteID,
		Start:  start,
		End:    start.Add(2 * time.Hour),
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.IsAvailable {
		t.Fatal("expected slot to be unavailable")
	}
	if len(result.Conflicts) != 1 {
		t.Fatalf("expected 1 conflict, got %d", len(result.Conflicts))
	}
	if len(result.Alternatives) == 0 {
		t.Fatal("expected alternatives for an unavailable slot")
	}
	if len(result.Alternatives) > 5 {
		t.Errorf("expected at most 5 alternatives, got %d", len(result.Alternatives))
	}

	first := result.Alternatives[0]
	wantStart := localTime(t, "Asia/Kolkata", 2026, time.September, 14, 8, 0)
	if !first.Start.Equal(wantStart) {
		t.Errorf("expected first alternative to start at %v, got %v", wantStart, first.Start)
	}
	for i, alt := range result.Alternatives {
		if alt.Duration() != 2*time.Hour {
			t.Errorf("alternative %d has duration %v, want 2h", i, alt.Duration())
		}
	}
}

func TestCheckAvailability_CapacityAdmitsOverlap(t *testing.T) {
	lab := testLab()
	lab.CapacityUnits = 2
	svc, deps := newTestService(lab, testSite())

	deps.bookings.findConflictsFunc = func(ctx context.Context, labID, siteID string, start, end time.Time, exclude string) ([]*model.Booking, error) {
		return []*model.Booking{{ID: testItemID, Status: model.StatusApproved}}, nil
	}

	start := localTime(t, "Asia/Kolkata", 2026, time.September, 14, 11, 0)
	result, err := svc.CheckAvailability(context.Background(), &model.AvailabilityQuery{
		LabID:  testLabID,
		SiteID: testSiteID,
		Start:  start,
		End:    start.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !result.IsAvailable {
		t.Error("one overlap on a capacity-2 lab should still be available")
	}
	if len(result.Conflicts) != 1 || result.Conflicts[0].ID != testItemID {
		t.Errorf("an available result should still report the admitted overlap, got %+v", result.Conflicts)
	}
	if len(result.Alternatives) != 0 {
		t.Errorf("an available result should carry no alternatives, got %d", len(result.Alternatives))
	}

	// A second committed overlap saturates the lab.
	deps.bookings.findConflictsFunc = func(ctx context.Context, labID, siteID string, start, end time.Time, exclude string) ([]*model.Booking, error) {
		return []*model.Booking{
			{ID: testItemID, Status: model.StatusApproved},
			{ID: "507f1f77bcf86cd799439015", Status: model.StatusScheduled},
		}, nil
	}
	result, err = svc.CheckAvailability(context.Background(), &model.AvailabilityQuery{
		LabID:  testLabID,
		SiteID: testSiteID,
		Start:  start,
		End:    start.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.IsAvailable {
		t.Error("two overlaps on a capacity-2 lab should saturate it")
	}
}

func TestCheckAvailability_OutsideOperatingHours(t *testing.T) {
	svc, _ := newTestService(testLab(), testSite())

	start := localTime(t, "Asia/Kolkata", 2026, time.September, 14, 19, 0)
	_, err := svc.CheckAvailability(context.Background(), &model.AvailabilityQuery{
		LabID:  testLabID,
		SiteID: testSiteID,
		Start:  start,
		End:    start.Add(time.Hour),
	})
	if err == nil {
		t.Fatal("expected a validation error for a slot past closing")
	}
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperrors.CodeValidation {
		t.Errorf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestCheckAvailability_SpansMultipleDays(t *testing.T) {
	svc, _ := newTestService(testLab(), testSite())

	start := localTime(t, "Asia/Kolkata", 2026, time.September, 14, 17, 0)
	_, err := svc.CheckAvailability(context.Background(), &model.AvailabilityQuery{
		LabID:  testLabID,
		SiteID: testSiteID,
		Start:  start,
		End:    start.Add(20 * time.Hour),
	})
	if err == nil {
		t.Fatal("expected a validation error for a multi-day interval")
	}
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperrors.CodeValidation {
		t.Errorf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestCheckAvailability_PassesExcludeRequestID(t *testing.T) {
	svc, deps := newTestService(testLab(), testSite())

	var gotExclude string
	deps.bookings.findConflictsFunc = func(ctx context.Context, labID, siteID string, start, end time.Time, exclude string) ([]*model.Booking, error) {
		gotExclude = exclude
		return nil, nil
	}

	start := localTime(t, "Asia/Kolkata", 2026, time.September, 14, 11, 0)
	_, err := svc.CheckAvailability(context.Background(), &model.AvailabilityQuery{
		LabID:            testLabID,
		SiteID:           testSiteID,
		Start:            start,
		End:              start.Add(time.Hour),
		ExcludeRequestID: testRequestID,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if gotExclude != testRequestID {
		t.Errorf("expected exclusion id %s to reach the store, got %q", testRequestID, gotExclude)
	}
}

func TestCheckAvailability_InactiveLab(t *testing.T) {
	lab := testLab()
	lab.IsActive = false
	svc, _ := newTestService(lab, testSite())

	start := localTime(t, "Asia/Kolkata", 2026, time.September, 14, 11, 0)
	_, err := svc.CheckAvailability(context.Background(), &model.AvailabilityQuery{
		LabID:  testLabID,
		SiteID: testSiteID,
		Start:  start,
		End:    start.Add(time.Hour),
	})
	if err == nil {
		t.Fatal("expected an error for an inactive lab")
	}
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperrors.CodeNotFound {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestCheckAvailability_LabForeignSite(t *testing.T) {
	lab := testLab()
	lab.SiteID = "507f1f77bcf86cd799439099"
	svc, _ := newTestService(lab, testSite())

	start := localTime(t, "Asia/Kolkata", 2026, time.September, 14, 11, 0)
	_, err := svc.CheckAvailability(context.Background(), &model.AvailabilityQuery{
		LabID:  testLabID,
		SiteID: testSiteID,
		Start:  start,
		End:    start.Add(time.Hour),
	})
	if err == nil {
		t.Fatal("expected an error for a lab on a different site")
	}
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperrors.CodeValidation {
		t.Errorf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestCheckAvailability_InvalidQuery(t *testing.T) {
	svc, _ := newTestService(testLab(), testSite())

	start := localTime(t, "Asia/Kolkata", 2026, time.September, 14, 11, 0)
	_, err := svc.CheckAvailability(context.Background(), &model.AvailabilityQuery{
		LabID:  "not-an-object-id",
		SiteID: testSiteID,
		Start:  start,
		End:    start.Add(time.Hour),
	})
	if err == nil {
		t.Fatal("expected a validation error for a malformed lab id")
	}
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperrors.CodeValidation {
		t.Errorf("expected VALIDATION_ERROR, got %v", err)
	}
}

// A site without a stored hours window falls back to the configured default
// 09:00-18:00.
func TestCheckAvailability_DefaultOperatingHours(t *testing.T) {
	site := testSite()
	site.OpeningTime = ""
	site.ClosingTime = ""
	svc, _ := newTestService(testLab(), site)

	start := localTime(t, "Asia/Kolkata", 2026, time.September, 14, 10, 0)
	result, err := svc.CheckAvailability(context.Background(), &model.AvailabilityQuery{
		LabID:  testLabID,
		SiteID: testSiteID,
		Start:  start,
		End:    start.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("expected the default window to apply, got %v", err)
	}
	if !result.IsAvailable {
		t.Error("expected slot inside the default window to be available")
	}

	early := localTime(t, "Asia/Kolkata", 2026, time.September, 14, 8, 0)
	_, err = svc.CheckAvailability(context.Background(), &model.AvailabilityQuery{
		LabID:  testLabID,
		SiteID: testSiteID,
		Start:  early,
		End:    early.Add(time.Hour),
	})
	if err == nil {
		t.Error("expected a slot before the default opening to be rejected")
	}
}

// Asking the same question twice must answer the same both times; the check
// never writes anything.
func TestCheckAvailability_Idempotent(t *testing.T) {
	svc, deps := newTestService(testLab(), testSite())

	calls := 0
	deps.bookings.findConflictsFunc = func(ctx context.Context, labID, siteID string, start, end time.Time, exclude string) ([]*model.Booking, error) {
		calls++
		return nil, nil
	}

	start := localTime(t, "Asia/Kolkata", 2026, time.September, 14, 11, 0)
	query := &model.AvailabilityQuery{
		LabID:  testLabID,
		SiteID: testSiteID,
		Start:  start,
		End:    start.Add(time.Hour),
	}

	first, err := svc.CheckAvailability(context.Background(), query)
	if err != nil {
		t.Fatalf("first check failed: %v", err)
	}
	second, err := svc.CheckAvailability(context.Background(), query)
	if err != nil {
		t.Fatalf("second check failed: %v", err)
	}
	if first.IsAvailable != second.IsAvailable {
		t.Error("repeated identical checks must agree")
	}
	if calls != 2 {
		t.Errorf("expected exactly one conflict query per check, got %d total", calls)
	}
	if len(deps.bookings.scheduledItems) != 0 || len(deps.bookings.requestStatuses) != 0 {
		t.Error("availability checks must not write")
	}
}
