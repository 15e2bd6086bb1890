package service

import (
	"context"
	"errors"
	"time"

	schederrors "labbook/internal/scheduling/errors"
	apperrors "labbook/pkg/errors"
	"labbook/pkg/model"
)

// CheckAvailability answers one availability question: load lab and site,
// gate the interval against the site's operating hours, then look for
// committed bookings that overlap it. A lab's capacity units bound how many
// committed bookings may overlap at once; with capacity 1 any overlap blocks.
// When the answer is negative, nearby same-duration alternatives are attached.
func (s *schedulingService) CheckAvailability(ctx context.Context, q *model.AvailabilityQuery) (*AvailabilityResult, error) {
	if err := s.validator.ValidateQuery(q); err != nil {
		s.cfg.Log.Warn("Availability query validation failed", "error", err)
		return nil, apperrors.Validation("Availability query validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	lab, site, err := s.loadResources(ctx, q.LabID, q.SiteID)
	if err != nil {
		return nil, err
	}

	if err := withinOperatingHours(site, q.Start, q.End); err != nil {
		return nil, s.operatingHoursError(site, err)
	}

	conflicts, err := s.bookings.FindConflicts(ctx, q.LabID, q.SiteID, q.Start, q.End, q.ExcludeRequestID)
	if err != nil {
		s.cfg.Log.Error("Failed to query conflicting bookings",
			"lab_id", q.LabID,
			"site_id", q.SiteID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to query conflicting bookings", err)
	}

	result := &AvailabilityResult{
		LabID:    q.LabID,
		SiteID:   q.SiteID,
		Interval: q.Interval(),
	}

	// Overlaps under the capacity ceiling do not block, but callers still see
	// them so the headroom that admitted the slot is visible.
	result.Conflicts = conflicts

	if len(conflicts) < lab.CapacityUnits {
		result.IsAvailable = true
		return result, nil
	}

	result.Alternatives = s.findAlternatives(ctx, lab, site, q)

	s.cfg.Log.Info("Requested slot is not available",
		"lab_id", q.LabID,
		"site_id", q.SiteID,
		"start", q.Start,
		"end", q.End,
		"conflicts", len(conflicts),
		"alternatives", len(result.Alternatives),
	)
	return result, nil
}

// loadResources resolves the lab and site; a missing or inactive resource is
// a hard NotFound, and a lab booked against a foreign site is rejected.
func (s *schedulingService) loadResources(ctx context.Context, labID, siteID string) (*model.Lab, *model.Site, error) {
	lab, err := s.labs.FindByID(ctx, labID)
	if err != nil {
		return nil, nil, s.translateLookupError(err, "Lab", labID)
	}
	if !lab.IsActive {
		return nil, nil, apperrors.NotFoundWithID("Lab", labID).WithDetails(map[string]any{
			"id":     labID,
			"reason": "lab is not active",
		})
	}

	site, err := s.sites.FindByID(ctx, siteID)
	if err != nil {
		return nil, nil, s.translateLookupError(err, "Site", siteID)
	}
	// Sites created before operating hours became mandatory fall back to the
	// configured default window.
	if site.OpeningTime == "" {
		site.OpeningTime = s.cfg.DefaultStartOfDay
	}
	if site.ClosingTime == "" {
		site.ClosingTime = s.cfg.DefaultEndOfDay
	}
	if !site.IsActive {
		return nil, nil, apperrors.NotFoundWithID("Site", siteID).WithDetails(map[string]any{
			"id":     siteID,
			"reason": "site is not active",
		})
	}

	if lab.SiteID != siteID {
		return nil, nil, apperrors.Validation("Lab does not belong to the given site", map[string]any{
			"lab_id":  labID,
			"site_id": siteID,
		})
	}

	return lab, site, nil
}

func (s *schedulingService) translateLookupError(err error, resource, id string) error {
	switch {
	case errors.Is(err, schederrors.ErrLabNotFound),
		errors.Is(err, schederrors.ErrSiteNotFound),
		errors.Is(err, schederrors.ErrRequestNotFound):
		return apperrors.NotFoundWithID(resource, id)
	case errors.Is(err, schederrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid " + resource + " ID format")
	default:
		s.cfg.Log.Error("Failed to load resource", "resource", resource, "id", id, "error", err)
		return apperrors.Internal("Failed to load "+resource, err)
	}
}

func (s *schedulingService) operatingHoursError(site *model.Site, err error) error {
	if errors.Is(err, schederrors.ErrSpansMultipleDays) {
		return apperrors.Validation("Interval spans more than one local calendar day", map[string]any{
			"time_zone": site.TimeZone,
		})
	}
	if errors.Is(err, schederrors.ErrOutsideOperatingHours) {
		return apperrors.Validation("Interval falls outside the site's operating hours", map[string]any{
			"time_zone":    site.TimeZone,
			"opening_time": site.OpeningTime,
			"closing_time": site.ClosingTime,
		})
	}
	return apperrors.Internal("Failed to evaluate operating hours", err)
}

// candidateAvailable is the reduced availability check the alternative search
// runs per candidate. Any failure, store error included, just disqualifies
// the candidate; the outer call already validated the lab and site.
func (s *schedulingService) candidateAvailable(ctx context.Context, lab *model.Lab, site *model.Site, start, end time.Time, excludeRequestID string) bool {
	if err := withinOperatingHours(site, start, end); err != nil {
		return false
	}

	conflicts, err := s.bookings.FindConflicts(ctx, lab.ID, site.ID, start, end, excludeRequestID)
	if err != nil {
		s.cfg.Log.Warn("Skipping alternative candidate after store error",
			"lab_id", lab.ID,
			"start", start,
			"error", err,
		)
		return false
	}

	return len(conflicts) < lab.CapacityUnits
}
