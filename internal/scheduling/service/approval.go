package service

import (
	"context"
	"fmt"
	"time"

	apperrors "labbook/pkg/errors"
	"labbook/pkg/kafka"
	"labbook/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

// ApproveBooking moves a booking request to approved and pins every line
// item to its requested window. Each slot is protected by an advisory lock
// for the duration of the commit, and availability is re-checked inside the
// transaction, so two racing approvals for the same slot cannot both win.
func (s *schedulingService) ApproveBooking(ctx context.Context, requestID string) ([]*model.Booking, error) {
	request, err := s.bookings.FindRequestByID(ctx, requestID)
	if err != nil {
		return nil, s.translateLookupError(err, "Booking request", requestID)
	}

	if !request.Status.CanTransitionTo(model.StatusApproved) {
		return nil, apperrors.Conflict("Booking request cannot be approved from its current status").WithDetails(map[string]any{
			"request_id": request.ID,
			"status":     request.Status,
		})
	}

	items, err := s.bookings.FindItemsByRequestID(ctx, request.ID)
	if err != nil {
		s.cfg.Log.Error("Failed to load booking items", "request_id", request.ID, "error", err)
		return nil, apperrors.Internal("Failed to load booking items", err)
	}
	if len(items) == 0 {
		return nil, apperrors.Validation("Booking request has no lab line items", map[string]any{
			"request_id": request.ID,
		})
	}

	lockIDs, err := s.acquireSlotLocks(ctx, items)
	if err != nil {
		return nil, err
	}
	defer s.releaseSlotLocks(context.WithoutCancel(ctx), lockIDs)

	err = s.bookings.ExecuteTransaction(ctx, func(sc mongo.SessionContext) error {
		for _, item := range items {
			interval := item.RequestedInterval()

			lab, site, err := s.loadResources(sc, item.LabID, item.SiteID)
			if err != nil {
				return err
			}
			if err := withinOperatingHours(site, interval.Start, interval.End); err != nil {
				return s.operatingHoursError(site, err)
			}

			conflicts, err := s.bookings.FindConflicts(sc, item.LabID, item.SiteID, interval.Start, interval.End, request.ID)
			if err != nil {
				return apperrors.Internal("Failed to re-check availability during approval", err)
			}
			if len(conflicts) >= lab.CapacityUnits {
				return apperrors.Conflict("Requested slot was taken before approval completed").WithDetails(map[string]any{
					"request_id": request.ID,
					"lab_id":     item.LabID,
					"start":      interval.Start,
					"end":        interval.End,
				})
			}

			if err := s.bookings.ScheduleItem(sc, item.ID, interval.Start, interval.End, lab.HourlyRate, model.StatusApproved); err != nil {
				return apperrors.Internal("Failed to schedule booking item", err)
			}
		}

		if err := s.bookings.UpdateRequestStatus(sc, request.ID, model.StatusApproved); err != nil {
			return apperrors.Internal("Failed to update booking request status", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	approved, err := s.bookings.FindItemsByRequestID(ctx, request.ID)
	if err != nil {
		s.cfg.Log.Error("Failed to reload approved items", "request_id", request.ID, "error", err)
		return nil, apperrors.Internal("Failed to reload approved items", err)
	}

	s.publish(ctx, kafka.EventBookingApproved, request.ID, approved)

	s.cfg.Log.Info("Booking request approved",
		"request_id", request.ID,
		"items", len(approved),
	)
	return approved, nil
}

// acquireSlotLocks takes one advisory lock per line item slot. On any
// failure the locks already taken are released before returning.
func (s *schedulingService) acquireSlotLocks(ctx context.Context, items []*model.Booking) ([]string, error) {
	lockIDs := make([]string, 0, len(items))
	for _, item := range items {
		interval := item.RequestedInterval()
		lockID := slotLockID(item.LabID, item.SiteID, interval.Start)

		_, err := s.locks.Create(ctx, &model.SlotLock{
			ID:        lockID,
			ExpiresAt: time.Now().Add(s.cfg.SlotLockTTL),
		})
		if err != nil {
			s.releaseSlotLocks(ctx, lockIDs)
			if mongo.IsDuplicateKeyError(err) {
				return nil, apperrors.Conflict("Slot is being approved by another request").WithDetails(map[string]any{
					"lab_id": item.LabID,
					"start":  interval.Start,
				})
			}
			s.cfg.Log.Error("Failed to acquire slot lock", "lock_id", lockID, "error", err)
			return nil, apperrors.Internal("Failed to acquire slot lock", err)
		}
		lockIDs = append(lockIDs, lockID)
	}
	return lockIDs, nil
}

func (s *schedulingService) releaseSlotLocks(ctx context.Context, lockIDs []string) {
	for _, lockID := range lockIDs {
		if err := s.locks.Delete(ctx, lockID); err != nil {
			s.cfg.Log.Warn("Failed to release slot lock, TTL will reap it", "lock_id", lockID, "error", err)
		}
	}
}

func slotLockID(labID, siteID string, start time.Time) string {
	return fmt.Sprintf("slot_lock_%s_%s_%d", labID, siteID, start.Unix())
}
