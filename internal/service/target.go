package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/birdplan/backend/internal/coverage"
	"github.com/birdplan/backend/internal/domain"
	"github.com/birdplan/backend/internal/repo"
)

// TargetService imports hotspot target lists and serves the coverage views
// derived from them. Nothing derived is stored.
type TargetService struct {
	trips   repo.TripRepo
	targets repo.TargetRepo
	policy  coverage.Policy
	better  coverage.BestDayPredicate
}

// NewTargetService constructs a TargetService using policy for the
// hard-to-find thresholds and the default best-day rule.
func NewTargetService(trips repo.TripRepo, targets repo.TargetRepo, policy coverage.Policy) *TargetService {
	return &TargetService{
		trips:   trips,
		targets: targets,
		policy:  policy,
		better:  coverage.DefaultBestDayPredicate,
	}
}

// PutTargets replaces the target list of one hotspot of the trip. An empty
// HotspotID stores the trip-wide list, which coverage ignores.
func (s *TargetService) PutTargets(ctx context.Context, tripID uuid.UUID, list domain.TargetList) (domain.TargetList, error) {
	const op = "service.TargetService.PutTargets"
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return domain.TargetList{}, fmt.Errorf("%s: %w", op, err)
	}
	if list.HotspotID != "" && !trip.HasHotspot(list.HotspotID) {
		return domain.TargetList{}, fmt.Errorf("%s: hotspot %w", op, domain.ErrNotFound)
	}
	if err := validateTargetList(list); err != nil {
		return domain.TargetList{}, fmt.Errorf("%s: %w", op, err)
	}

	result, err := s.targets.Upsert(ctx, tripID, list)
	if err != nil {
		return domain.TargetList{}, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// Coverage returns the species coverage of the trip keyed by species code.
func (s *TargetService) Coverage(ctx context.Context, tripID uuid.UUID) (map[string]domain.SpeciesCoverage, error) {
	_, lists, err := s.load(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.TargetService.Coverage: %w", err)
	}
	return coverage.Compute(lists, s.policy.TopN), nil
}

// HotspotImportance flags, for each species on a hotspot's list, whether the
// hotspot is its best location and whether it is hard to find. A hotspot
// without an imported list yields an empty map.
func (s *TargetService) HotspotImportance(ctx context.Context, tripID uuid.UUID, hotspotID string) (map[string]coverage.Importance, error) {
	const op = "service.TargetService.HotspotImportance"
	trip, lists, err := s.load(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !trip.HasHotspot(hotspotID) {
		return nil, fmt.Errorf("%s: hotspot %w", op, domain.ErrNotFound)
	}

	cov := coverage.Compute(lists, s.policy.TopN)
	for _, l := range lists {
		if l.HotspotID == hotspotID {
			return coverage.HotspotImportance(l, cov, s.policy), nil
		}
	}
	return map[string]coverage.Importance{}, nil
}

// DayKeyTargets lists the species worth highlighting on one day, leaving out
// species on lifeList.
func (s *TargetService) DayKeyTargets(ctx context.Context, tripID uuid.UUID, dayID string, lifeList []string) ([]coverage.KeyTarget, error) {
	const op = "service.TargetService.DayKeyTargets"
	trip, lists, err := s.load(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if trip.DayIndex(dayID) < 0 {
		return nil, fmt.Errorf("%s: day %w", op, domain.ErrNotFound)
	}
	cov := coverage.Compute(lists, s.policy.TopN)
	return coverage.DayKeyTargets(&trip, lists, dayID, cov, s.policy, lifeList, s.better), nil
}

func (s *TargetService) load(ctx context.Context, tripID uuid.UUID) (domain.Trip, []domain.TargetList, error) {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return domain.Trip{}, nil, err
	}
	lists, err := s.targets.ListByTrip(ctx, tripID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return domain.Trip{}, nil, err
	}
	return trip, lists, nil
}

// validateTargetList enforces the shape of an imported list.
//   - Checklist counts are non-negative.
//   - Every item has a code and percentages in 0..100.
//   - Codes are unique within the list.
func validateTargetList(list domain.TargetList) error {
	if list.N < 0 || list.YrN < 0 {
		return fmt.Errorf("%w: checklist counts must not be negative", domain.ErrValidation)
	}
	seen := make(map[string]bool, len(list.Items))
	for _, item := range list.Items {
		code := strings.TrimSpace(item.Code)
		if code == "" {
			return fmt.Errorf("%w: every item needs a code", domain.ErrValidation)
		}
		if seen[code] {
			return fmt.Errorf("%w: duplicate species code %q", domain.ErrValidation, code)
		}
		seen[code] = true
		if item.Percent < 0 || item.Percent > 100 || item.PercentYr < 0 || item.PercentYr > 100 {
			return fmt.Errorf("%w: percentages for %q must be between 0 and 100", domain.ErrValidation, code)
		}
	}
	return nil
}
