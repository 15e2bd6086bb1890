package service

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "labbook/pkg/errors"
	"labbook/pkg/kafka"
	"labbook/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

func pendingItem(t *testing.T) *model.Booking {
	t.Helper()
	return &model.Booking{
		ID:             testItemID,
		RequestID:      testRequestID,
		LabID:          testLabID,
		SiteID:         testSiteID,
		RequestedStart: localTime(t, "Asia/Kolkata", 2026, time.September, 14, 11, 0),
		RequestedEnd:   localTime(t, "Asia/Kolkata", 2026, time.September, 14, 13, 0),
		Status:         model.StatusUnderReview,
	}
}

func TestApproveBooking_Success(t *testing.T) {
	svc, deps := newTestService(testLab(), testSite())
	stubRequest(deps, model.StatusUnderReview, pendingItem(t))

	items, err := svc.ApproveBooking(context.Background(), testRequestID)
	if err != nil {
		t.Fatalf("expected approval to succeed, got %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected one approved item, got %d", len(items))
	}

	if len(deps.bookings.scheduledItems) != 1 {
		t.Fatalf("expected one scheduled item, got %d", len(deps.bookings.scheduledItems))
	}
	scheduled := deps.bookings.scheduledItems[0]
	if scheduled.status != model.StatusApproved {
		t.Errorf("expected item status %s, got %s", model.StatusApproved, scheduled.status)
	}
	if scheduled.hourlyRate != testLab().HourlyRate {
		t.Errorf("expected rate snapshot %v, got %v", testLab().HourlyRate, scheduled.hourlyRate)
	}
	if !scheduled.start.Equal(pendingItem(t).RequestedStart) {
		t.Errorf("expected scheduled start to pin the requested start, got %v", scheduled.start)
	}

	if len(deps.bookings.requestStatuses) != 1 || deps.bookings.requestStatuses[0] != model.StatusApproved {
		t.Errorf("expected request status updated to approved, got %v", deps.bookings.requestStatuses)
	}

	if len(deps.locks.created) != 1 {
		t.Fatalf("expected one slot lock, got %d", len(deps.locks.created))
	}
	if len(deps.locks.deleted) != 1 || deps.locks.deleted[0] != deps.locks.created[0] {
		t.Errorf("expected the acquired lock to be released, created=%v deleted=%v",
			deps.locks.created, deps.locks.deleted)
	}

	if len(deps.events.messages) != 1 {
		t.Fatalf("expected one published event, got %d", len(deps.events.messages))
	}
	if got := deps.events.messages[0].GetEventType(); got != kafka.EventBookingApproved {
		t.Errorf("expected event type %s, got %s", kafka.EventBookingApproved, got)
	}
}

func TestApproveBooking_WrongStatus(t *testing.T) {
	svc, deps := newTestService(testLab(), testSite())
	stubRequest(deps, model.StatusDraft, pendingItem(t))

	_, err := svc.ApproveBooking(context.Background(), testRequestID)
	if err == nil {
		t.Fatal("expected a conflict for a draft request")
	}
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperrors.CodeConflict {
		t.Errorf("expected CONFLICT, got %v", err)
	}
	if len(deps.bookings.scheduledItems) != 0 {
		t.Error("a rejected approval must not schedule anything")
	}
}

func TestApproveBooking_LockHeld(t *testing.T) {
	svc, deps := newTestService(testLab(), testSite())
	stubRequest(deps, model.StatusUnderReview, pendingItem(t))

	deps.locks.createFunc = func(ctx context.Context, lock *model.SlotLock) (*model.SlotLock, error) {
		return nil, mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000}}}
	}

	_, err := svc.ApproveBooking(context.Background(), testRequestID)
	if err == nil {
		t.Fatal("expected a conflict when the slot lock is held")
	}
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperrors.CodeConflict {
		t.Errorf("expected CONFLICT, got %v", err)
	}
	if len(deps.bookings.scheduledItems) != 0 {
		t.Error("no item may be scheduled without the lock")
	}
}

// The re-check inside the transaction catches a slot taken between the first
// availability answer and the approval.
func TestApproveBooking_SlotTakenBeforeCommit(t *testing.T) {
	svc, deps := newTestService(testLab(), testSite())
	stubRequest(deps, model.StatusUnderReview, pendingItem(t))

	deps.bookings.findConflictsFunc = func(ctx context.Context, labID, siteID string, start, end time.Time, exclude string) ([]*model.Booking, error) {
		return []*model.Booking{{ID: "507f1f77bcf86cd799439021", Status: model.StatusApproved}}, nil
	}

	_, err := svc.ApproveBooking(context.Background(), testRequestID)
	if err == nil {
		t.Fatal("expected a conflict when the slot was taken")
	}
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperrors.CodeConflict {
		t.Errorf("expected CONFLICT, got %v", err)
	}
	if len(deps.bookings.requestStatuses) != 0 {
		t.Error("the request must stay untouched after a failed approval")
	}
	if len(deps.locks.deleted) != len(deps.locks.created) {
		t.Errorf("every acquired lock must be released, created=%v deleted=%v",
			deps.locks.created, deps.locks.deleted)
	}
}

func TestApproveBooking_NoItems(t *testing.T) {
	svc, deps := newTestService(testLab(), testSite())
	stubRequest(deps, model.StatusUnderReview)

	_, err := svc.ApproveBooking(context.Background(), testRequestID)
	if err == nil {
		t.Fatal("expected a validation error for an empty request")
	}
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperrors.CodeValidation {
		t.Errorf("expected VALIDATION_ERROR, got %v", err)
	}
}

// The re-check excludes the request's own items, so approving a request can
// never conflict with itself.
func TestApproveBooking_ExcludesOwnItems(t *testing.T) {
	svc, deps := newTestService(testLab(), testSite())
	stubRequest(deps, model.StatusUnderReview, pendingItem(t))

	var gotExclude string
	deps.bookings.findConflictsFunc = func(ctx context.Context, labID, siteID string, start, end time.Time, exclude string) ([]*model.Booking, error) {
		gotExclude = exclude
		return nil, nil
	}

	if _, err := svc.ApproveBooking(context.Background(), testRequestID); err != nil {
		t.Fatalf("expected approval to succeed, got %v", err)
	}
	if gotExclude != testRequestID {
		t.Errorf("expected the re-check to exclude request %s, got %q", testRequestID, gotExclude)
	}
}
