// Package service contains the business logic of the trip planner.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No SQL lives here; services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/birdplan/backend/internal/domain"
	"github.com/birdplan/backend/internal/repo"
)

// TripService implements trip, hotspot and marker operations.
type TripService struct {
	trips   repo.TripRepo
	targets repo.TargetRepo
}

// NewTripService constructs a TripService. targets may be nil, in which case
// removing a hotspot leaves its target list in place.
func NewTripService(trips repo.TripRepo, targets repo.TargetRepo) *TripService {
	return &TripService{trips: trips, targets: targets}
}

// Create validates and persists a new trip with an empty itinerary.
func (s *TripService) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	trip.Name = strings.TrimSpace(trip.Name)
	if err := validateTrip(trip); err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}
	if trip.Hotspots == nil {
		trip.Hotspots = []domain.Hotspot{}
	}
	if trip.Markers == nil {
		trip.Markers = []domain.CustomMarker{}
	}
	if trip.Itinerary == nil {
		trip.Itinerary = []domain.Day{}
	}
	result, err := s.trips.Create(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}
	return result, nil
}

// GetByID returns domain.ErrNotFound if the trip does not exist.
func (s *TripService) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	result, err := s.trips.GetByID(ctx, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.GetByID: %w", err)
	}
	return result, nil
}

// ListPaged returns one page of trips and the total count.
func (s *TripService) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	trips, total, err := s.trips.ListPaged(ctx, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.TripService.ListPaged: %w", err)
	}
	if trips == nil {
		trips = []domain.Trip{}
	}
	return trips, total, nil
}

// Update changes the trip's name and month range. Hotspots, markers and the
// itinerary are edited through their own operations.
func (s *TripService) Update(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	trip.Name = strings.TrimSpace(trip.Name)
	if err := validateTrip(trip); err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w", err)
	}
	current, err := s.trips.GetByID(ctx, trip.ID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w", err)
	}
	current.Name = trip.Name
	current.StartMonth = trip.StartMonth
	current.EndMonth = trip.EndMonth

	result, err := s.trips.Update(ctx, current)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w", err)
	}
	return result, nil
}

// Delete removes a trip and, through the schema, its target lists.
func (s *TripService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.trips.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}
	return nil
}

// AddHotspot saves a hotspot to the trip. Saving an id that is already
// present replaces the earlier entry in place.
func (s *TripService) AddHotspot(ctx context.Context, tripID uuid.UUID, h domain.Hotspot) (domain.Hotspot, error) {
	h.ID = strings.TrimSpace(h.ID)
	h.Name = strings.TrimSpace(h.Name)
	if h.ID == "" {
		return domain.Hotspot{}, fmt.Errorf("service.TripService.AddHotspot: %w: id is required", domain.ErrValidation)
	}
	if err := validatePlace(h.Name, h.Lat, h.Lng); err != nil {
		return domain.Hotspot{}, fmt.Errorf("service.TripService.AddHotspot: %w", err)
	}

	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return domain.Hotspot{}, fmt.Errorf("service.TripService.AddHotspot: %w", err)
	}
	if i := slices.IndexFunc(trip.Hotspots, func(x domain.Hotspot) bool { return x.ID == h.ID }); i >= 0 {
		trip.Hotspots[i] = h
	} else {
		trip.Hotspots = append(trip.Hotspots, h)
	}
	if _, err := s.trips.Update(ctx, trip); err != nil {
		return domain.Hotspot{}, fmt.Errorf("service.TripService.AddHotspot: %w", err)
	}
	return h, nil
}

// RemoveHotspot deletes a hotspot and its target list. Stops that visit it
// are kept and show as an unknown location.
func (s *TripService) RemoveHotspot(ctx context.Context, tripID uuid.UUID, hotspotID string) error {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return fmt.Errorf("service.TripService.RemoveHotspot: %w", err)
	}
	n := len(trip.Hotspots)
	trip.Hotspots = slices.DeleteFunc(trip.Hotspots, func(h domain.Hotspot) bool { return h.ID == hotspotID })
	if len(trip.Hotspots) == n {
		return fmt.Errorf("service.TripService.RemoveHotspot: %w", domain.ErrNotFound)
	}
	if _, err := s.trips.Update(ctx, trip); err != nil {
		return fmt.Errorf("service.TripService.RemoveHotspot: %w", err)
	}
	if s.targets != nil && hotspotID != "" {
		if err := s.targets.Delete(ctx, tripID, hotspotID); err != nil {
			return fmt.Errorf("service.TripService.RemoveHotspot: %w", err)
		}
	}
	return nil
}

// AddMarker saves a custom marker. A missing id is generated.
func (s *TripService) AddMarker(ctx context.Context, tripID uuid.UUID, m domain.CustomMarker) (domain.CustomMarker, error) {
	m.Name = strings.TrimSpace(m.Name)
	if err := validatePlace(m.Name, m.Lat, m.Lng); err != nil {
		return domain.CustomMarker{}, fmt.Errorf("service.TripService.AddMarker: %w", err)
	}
	if strings.TrimSpace(m.ID) == "" {
		m.ID = uuid.NewString()
	}

	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return domain.CustomMarker{}, fmt.Errorf("service.TripService.AddMarker: %w", err)
	}
	if trip.HasMarker(m.ID) {
		return domain.CustomMarker{}, fmt.Errorf("service.TripService.AddMarker: %w: marker %q already exists", domain.ErrValidation, m.ID)
	}
	trip.Markers = append(trip.Markers, m)
	if _, err := s.trips.Update(ctx, trip); err != nil {
		return domain.CustomMarker{}, fmt.Errorf("service.TripService.AddMarker: %w", err)
	}
	return m, nil
}

// RemoveMarker deletes a custom marker. Stops that visit it are kept.
func (s *TripService) RemoveMarker(ctx context.Context, tripID uuid.UUID, markerID string) error {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return fmt.Errorf("service.TripService.RemoveMarker: %w", err)
	}
	n := len(trip.Markers)
	trip.Markers = slices.DeleteFunc(trip.Markers, func(m domain.CustomMarker) bool { return m.ID == markerID })
	if len(trip.Markers) == n {
		return fmt.Errorf("service.TripService.RemoveMarker: %w", domain.ErrNotFound)
	}
	if _, err := s.trips.Update(ctx, trip); err != nil {
		return fmt.Errorf("service.TripService.RemoveMarker: %w", err)
	}
	return nil
}

// validateTrip enforces rules shared by Create and Update.
//   - Name must be non-empty.
//   - Months must be in 1..12. A start after the end wraps the new year.
func validateTrip(trip domain.Trip) error {
	if trip.Name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if trip.StartMonth < 1 || trip.StartMonth > 12 {
		return fmt.Errorf("%w: startMonth must be between 1 and 12", domain.ErrValidation)
	}
	if trip.EndMonth < 1 || trip.EndMonth > 12 {
		return fmt.Errorf("%w: endMonth must be between 1 and 12", domain.ErrValidation)
	}
	return nil
}

func validatePlace(name string, lat, lng float64) error {
	if name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if lat < -90 || lat > 90 {
		return fmt.Errorf("%w: lat must be between -90 and 90", domain.ErrValidation)
	}
	if lng < -180 || lng > 180 {
		return fmt.Errorf("%w: lng must be between -180 and 180", domain.ErrValidation)
	}
	return nil
}
