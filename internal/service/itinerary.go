package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/birdplan/backend/internal/domain"
	"github.com/birdplan/backend/internal/itinerary"
	"github.com/birdplan/backend/internal/repo"
)

// DayResolver recomputes the travel edges of one day.
// *itinerary.Resolver satisfies it.
type DayResolver interface {
	RecomputeDay(ctx context.Context, trip *domain.Trip, day domain.Day) domain.Day
}

// DefaultRoutingTimeout bounds one recomputation when none is configured.
const DefaultRoutingTimeout = 20 * time.Second

// ItineraryService edits the days of a trip. Every stop edit runs the
// mutation primitive, recomputes that day's travel, then persists the trip.
type ItineraryService struct {
	trips    repo.TripRepo
	resolver DayResolver
	timeout  time.Duration
	log      *slog.Logger
}

// NewItineraryService constructs an ItineraryService. A timeout <= 0 means
// DefaultRoutingTimeout.
func NewItineraryService(trips repo.TripRepo, resolver DayResolver, timeout time.Duration, log *slog.Logger) *ItineraryService {
	if timeout <= 0 {
		timeout = DefaultRoutingTimeout
	}
	if log == nil {
		log = slog.Default()
	}
	return &ItineraryService{trips: trips, resolver: resolver, timeout: timeout, log: log}
}

// AddDay appends an empty day to the itinerary.
func (s *ItineraryService) AddDay(ctx context.Context, tripID uuid.UUID, notes string) (domain.DayView, error) {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return domain.DayView{}, fmt.Errorf("service.ItineraryService.AddDay: %w", err)
	}
	day := domain.Day{ID: uuid.NewString(), Notes: notes, Locations: []domain.Stop{}}
	trip.Itinerary = append(trip.Itinerary, day)
	if _, err := s.trips.Update(ctx, trip); err != nil {
		return domain.DayView{}, fmt.Errorf("service.ItineraryService.AddDay: %w", err)
	}
	return trip.ViewDay(day), nil
}

// RemoveDay deletes a day and its stops.
func (s *ItineraryService) RemoveDay(ctx context.Context, tripID uuid.UUID, dayID string) error {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return fmt.Errorf("service.ItineraryService.RemoveDay: %w", err)
	}
	i := trip.DayIndex(dayID)
	if i < 0 {
		return fmt.Errorf("service.ItineraryService.RemoveDay: day %w", domain.ErrNotFound)
	}
	trip.Itinerary = slices.Delete(trip.Itinerary, i, i+1)
	if _, err := s.trips.Update(ctx, trip); err != nil {
		return fmt.Errorf("service.ItineraryService.RemoveDay: %w", err)
	}
	return nil
}

// AddStop appends a visit to a hotspot or marker of the trip.
func (s *ItineraryService) AddStop(ctx context.Context, tripID uuid.UUID, dayID string, typ domain.StopType, locationID string) (domain.DayView, error) {
	const op = "service.ItineraryService.AddStop"
	return s.editDay(ctx, op, tripID, dayID, true, func(trip *domain.Trip, locations []domain.Stop) ([]domain.Stop, error) {
		switch typ {
		case domain.StopHotspot:
			if !trip.HasHotspot(locationID) {
				return nil, fmt.Errorf("%w: hotspot %q is not part of the trip", domain.ErrValidation, locationID)
			}
		case domain.StopMarker:
			if !trip.HasMarker(locationID) {
				return nil, fmt.Errorf("%w: marker %q is not part of the trip", domain.ErrValidation, locationID)
			}
		default:
			return nil, fmt.Errorf("%w: type must be hotspot or marker", domain.ErrValidation)
		}
		stop := domain.Stop{ID: uuid.NewString(), Type: typ, LocationID: locationID}
		return itinerary.AddStop(locations, stop), nil
	})
}

// RemoveStop deletes a stop and recomputes the day.
func (s *ItineraryService) RemoveStop(ctx context.Context, tripID uuid.UUID, dayID, stopID string) (domain.DayView, error) {
	const op = "service.ItineraryService.RemoveStop"
	return s.editDay(ctx, op, tripID, dayID, true, func(_ *domain.Trip, locations []domain.Stop) ([]domain.Stop, error) {
		if err := requireStop(locations, stopID); err != nil {
			return nil, err
		}
		return itinerary.RemoveStop(locations, stopID), nil
	})
}

// MoveStop swaps a stop with its neighbour and recomputes the day.
// Moving the first stop up or the last stop down changes nothing.
func (s *ItineraryService) MoveStop(ctx context.Context, tripID uuid.UUID, dayID, stopID string, dir itinerary.Direction) (domain.DayView, error) {
	const op = "service.ItineraryService.MoveStop"
	if !dir.Valid() {
		return domain.DayView{}, fmt.Errorf("%s: %w: direction must be up or down", op, domain.ErrValidation)
	}
	return s.editDay(ctx, op, tripID, dayID, true, func(_ *domain.Trip, locations []domain.Stop) ([]domain.Stop, error) {
		if err := requireStop(locations, stopID); err != nil {
			return nil, err
		}
		return itinerary.MoveStop(locations, stopID, dir), nil
	})
}

// SetTravelMethod recalculates the edge into a stop with the given method.
func (s *ItineraryService) SetTravelMethod(ctx context.Context, tripID uuid.UUID, dayID, stopID string, method domain.TravelMethod) (domain.DayView, error) {
	const op = "service.ItineraryService.SetTravelMethod"
	if !method.Valid() {
		return domain.DayView{}, fmt.Errorf("%s: %w: method must be walking, driving or cycling", op, domain.ErrValidation)
	}
	return s.editDay(ctx, op, tripID, dayID, true, func(_ *domain.Trip, locations []domain.Stop) ([]domain.Stop, error) {
		i := itinerary.FindStop(locations, stopID)
		if i < 0 {
			return nil, fmt.Errorf("stop %w", domain.ErrNotFound)
		}
		if i == 0 {
			return nil, fmt.Errorf("%w: the first stop of a day has no travel", domain.ErrValidation)
		}
		return itinerary.SetTravelMethod(locations, stopID, method), nil
	})
}

// DeleteTravel marks the edge into a stop as cleared. The day is not
// recomputed, so the edge stays cleared until a method is set again.
func (s *ItineraryService) DeleteTravel(ctx context.Context, tripID uuid.UUID, dayID, stopID string) (domain.DayView, error) {
	const op = "service.ItineraryService.DeleteTravel"
	return s.editDay(ctx, op, tripID, dayID, false, func(_ *domain.Trip, locations []domain.Stop) ([]domain.Stop, error) {
		if err := requireStop(locations, stopID); err != nil {
			return nil, err
		}
		return itinerary.DeleteTravel(locations, stopID), nil
	})
}

// Recalculate recomputes every edge of the day without editing it.
func (s *ItineraryService) Recalculate(ctx context.Context, tripID uuid.UUID, dayID string) (domain.DayView, error) {
	const op = "service.ItineraryService.Recalculate"
	return s.editDay(ctx, op, tripID, dayID, true, func(_ *domain.Trip, locations []domain.Stop) ([]domain.Stop, error) {
		return locations, nil
	})
}

// editDay loads the trip, applies edit to one day, optionally recomputes its
// travel, and persists the whole trip. Concurrent edits of the same trip are
// last-write-wins.
func (s *ItineraryService) editDay(
	ctx context.Context,
	op string,
	tripID uuid.UUID,
	dayID string,
	resolve bool,
	edit func(trip *domain.Trip, locations []domain.Stop) ([]domain.Stop, error),
) (domain.DayView, error) {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return domain.DayView{}, fmt.Errorf("%s: %w", op, err)
	}
	i := trip.DayIndex(dayID)
	if i < 0 {
		return domain.DayView{}, fmt.Errorf("%s: day %w", op, domain.ErrNotFound)
	}

	day := trip.Itinerary[i]
	locations, err := edit(&trip, day.Locations)
	if err != nil {
		return domain.DayView{}, fmt.Errorf("%s: %w", op, err)
	}
	day.Locations = locations

	if resolve && s.resolver != nil {
		rctx, cancel := context.WithTimeout(ctx, s.timeout)
		day = s.resolver.RecomputeDay(rctx, &trip, day)
		cancel()
	}
	if day.Locations == nil {
		day.Locations = []domain.Stop{}
	}
	trip.Itinerary[i] = day

	if _, err := s.trips.Update(ctx, trip); err != nil {
		return domain.DayView{}, fmt.Errorf("%s: %w", op, err)
	}
	s.log.DebugContext(ctx, "day updated", "op", op, "trip_id", tripID, "day_id", dayID, "stops", len(day.Locations))
	return trip.ViewDay(day), nil
}

func requireStop(locations []domain.Stop, stopID string) error {
	if itinerary.FindStop(locations, stopID) < 0 {
		return fmt.Errorf("stop %w", domain.ErrNotFound)
	}
	return nil
}
