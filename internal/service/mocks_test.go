package service_test

import (
	"context"
	"slices"

	"github.com/google/uuid"

	"github.com/birdplan/backend/internal/domain"
	"github.com/birdplan/backend/internal/repo"
)

// mockTripRepo is a hand-written test double for repo.TripRepo.
// Each method is a function field; set only the ones a test needs.
type mockTripRepo struct {
	create    func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	getByID   func(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	listPaged func(ctx context.Context, p domain.PaginationParams) ([]domain.Trip, int64, error)
	update    func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	delete    func(ctx context.Context, id uuid.UUID) error
}

func (m *mockTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	return m.create(ctx, trip)
}
func (m *mockTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	return m.getByID(ctx, id)
}
func (m *mockTripRepo) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	return m.listPaged(ctx, p)
}
func (m *mockTripRepo) Update(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	return m.update(ctx, trip)
}
func (m *mockTripRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

var _ repo.TripRepo = (*mockTripRepo)(nil)

// mockTargetRepo is a hand-written test double for repo.TargetRepo.
type mockTargetRepo struct {
	upsert     func(ctx context.Context, tripID uuid.UUID, list domain.TargetList) (domain.TargetList, error)
	listByTrip func(ctx context.Context, tripID uuid.UUID) ([]domain.TargetList, error)
	get        func(ctx context.Context, tripID uuid.UUID, hotspotID string) (domain.TargetList, error)
	delete     func(ctx context.Context, tripID uuid.UUID, hotspotID string) error
}

func (m *mockTargetRepo) Upsert(ctx context.Context, tripID uuid.UUID, list domain.TargetList) (domain.TargetList, error) {
	return m.upsert(ctx, tripID, list)
}
func (m *mockTargetRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.TargetList, error) {
	return m.listByTrip(ctx, tripID)
}
func (m *mockTargetRepo) Get(ctx context.Context, tripID uuid.UUID, hotspotID string) (domain.TargetList, error) {
	return m.get(ctx, tripID, hotspotID)
}
func (m *mockTargetRepo) Delete(ctx context.Context, tripID uuid.UUID, hotspotID string) error {
	return m.delete(ctx, tripID, hotspotID)
}

var _ repo.TargetRepo = (*mockTargetRepo)(nil)

// ---- helpers ---------------------------------------------------------------

// storedTrip backs a mockTripRepo with one trip held in memory. Update
// replaces it, so tests can inspect what the service persisted.
type storedTrip struct {
	trip    domain.Trip
	updates int
}

func (s *storedTrip) repo() *mockTripRepo {
	return &mockTripRepo{
		getByID: func(_ context.Context, id uuid.UUID) (domain.Trip, error) {
			if id != s.trip.ID {
				return domain.Trip{}, domain.ErrNotFound
			}
			t := s.trip
			t.Hotspots = slices.Clone(t.Hotspots)
			t.Markers = slices.Clone(t.Markers)
			t.Itinerary = slices.Clone(t.Itinerary)
			return t, nil
		},
		update: func(_ context.Context, t domain.Trip) (domain.Trip, error) {
			if t.ID != s.trip.ID {
				return domain.Trip{}, domain.ErrNotFound
			}
			s.trip = t
			s.updates++
			return t, nil
		},
	}
}

// tripFixture is a small trip in southeast Arizona with one day visiting a
// lodge marker and two hotspots.
func tripFixture() domain.Trip {
	return domain.Trip{
		ID:         uuid.New(),
		Name:       "Southeast Arizona",
		StartMonth: 4,
		EndMonth:   5,
		Hotspots: []domain.Hotspot{
			{ID: "H1", Name: "Madera Canyon", Lat: 31.72, Lng: -110.88},
			{ID: "H2", Name: "Patagonia Lake", Lat: 31.49, Lng: -110.85},
		},
		Markers: []domain.CustomMarker{
			{ID: "M1", Name: "Lodge", Lat: 31.55, Lng: -110.30},
		},
		Itinerary: []domain.Day{
			{ID: "d1", Locations: []domain.Stop{
				{ID: "s1", Type: domain.StopMarker, LocationID: "M1"},
				{ID: "s2", Type: domain.StopHotspot, LocationID: "H1", Travel: &domain.TravelEdge{
					Method: domain.MethodDriving, Time: 1800, Distance: 50000, LocationID: "M1",
				}},
				{ID: "s3", Type: domain.StopHotspot, LocationID: "H2", Travel: &domain.TravelEdge{
					Method: domain.MethodDriving, Time: 1500, Distance: 40000, LocationID: "H1",
				}},
			}},
		},
	}
}
