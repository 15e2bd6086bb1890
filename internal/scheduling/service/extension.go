package service

import (
	"context"
	"errors"
	"time"

	apperrors "labbook/pkg/errors"
	"labbook/pkg/kafka"
	"labbook/pkg/model"
)

// CheckExtension re-runs the availability evaluation for every lab line item
// of a scheduled booking request, with the request excluded from its own
// conflict set. An item whose extended window fails the operating-hours gate
// comes back as not available with the reason attached instead of aborting
// the whole evaluation; missing labs or sites still abort.
func (s *schedulingService) CheckExtension(ctx context.Context, q *model.ExtensionQuery) (*ExtensionResult, error) {
	if err := s.validator.ValidateExtension(q); err != nil {
		s.cfg.Log.Warn("Extension query validation failed", "request_id", q.RequestID, "error", err)
		return nil, apperrors.Validation("Extension query validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	request, err := s.bookings.FindRequestByID(ctx, q.RequestID)
	if err != nil {
		return nil, s.translateLookupError(err, "Booking request", q.RequestID)
	}

	items, err := s.bookings.FindItemsByRequestID(ctx, request.ID)
	if err != nil {
		s.cfg.Log.Error("Failed to load booking items", "request_id", request.ID, "error", err)
		return nil, apperrors.Internal("Failed to load booking items", err)
	}

	scheduled := make([]*model.Booking, 0, len(items))
	for _, item := range items {
		if _, ok := item.ScheduledInterval(); ok {
			scheduled = append(scheduled, item)
		}
	}
	if len(scheduled) == 0 {
		return nil, apperrors.Validation("Extensions only apply to scheduled bookings", map[string]any{
			"request_id": request.ID,
		})
	}

	additional := time.Duration(q.AdditionalHours) * time.Hour
	result := &ExtensionResult{
		RequestID:       request.ID,
		AdditionalHours: q.AdditionalHours,
		AllAvailable:    true,
	}

	for _, item := range scheduled {
		interval, _ := item.ScheduledInterval()
		itemResult, err := s.checkExtendedItem(ctx, item, interval.Start, interval.End.Add(additional))
		if err != nil {
			return nil, err
		}
		if !itemResult.IsAvailable {
			result.AllAvailable = false
		}
		result.Items = append(result.Items, itemResult)
	}

	if _, err := s.extensions.Create(ctx, &model.ExtensionRequest{
		RequestID:       request.ID,
		AdditionalHours: q.AdditionalHours,
		Reason:          q.Reason,
		Status:          model.ExtensionPending,
	}); err != nil {
		// The evaluation itself stands; losing the record only costs audit.
		s.cfg.Log.Warn("Failed to record extension request", "request_id", request.ID, "error", err)
	}

	s.publish(ctx, kafka.EventExtensionEvaluated, request.ID, result)

	s.cfg.Log.Info("Extension evaluated",
		"request_id", request.ID,
		"additional_hours", q.AdditionalHours,
		"items", len(result.Items),
		"all_available", result.AllAvailable,
	)
	return result, nil
}

// checkExtendedItem evaluates one line item against its extended window. A
// validation rejection (outside operating hours, crossing midnight) becomes a
// negative per-item result; anything else propagates.
func (s *schedulingService) checkExtendedItem(ctx context.Context, item *model.Booking, start, end time.Time) (*AvailabilityResult, error) {
	query := &model.AvailabilityQuery{
		LabID:            item.LabID,
		SiteID:           item.SiteID,
		Start:            start,
		End:              end,
		ExcludeRequestID: item.RequestID,
	}

	itemResult, err := s.CheckAvailability(ctx, query)
	if err == nil {
		return itemResult, nil
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Code == apperrors.CodeValidation {
		return &AvailabilityResult{
			LabID:    item.LabID,
			SiteID:   item.SiteID,
			Interval: model.Interval{Start: start, End: end},
			Reason:   appErr.Message,
		}, nil
	}

	return nil, err
}
