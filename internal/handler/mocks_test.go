package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/birdplan/backend/internal/coverage"
	"github.com/birdplan/backend/internal/domain"
	"github.com/birdplan/backend/internal/handler"
	"github.com/birdplan/backend/internal/itinerary"
)

// mockTripServicer is a test double for handler.TripServicer.
// Set only the method fields your test needs.
type mockTripServicer struct {
	create        func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	getByID       func(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	listPaged     func(ctx context.Context, p domain.PaginationParams) ([]domain.Trip, int64, error)
	update        func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	delete        func(ctx context.Context, id uuid.UUID) error
	addHotspot    func(ctx context.Context, tripID uuid.UUID, h domain.Hotspot) (domain.Hotspot, error)
	removeHotspot func(ctx context.Context, tripID uuid.UUID, hotspotID string) error
	addMarker     func(ctx context.Context, tripID uuid.UUID, m domain.CustomMarker) (domain.CustomMarker, error)
	removeMarker  func(ctx context.Context, tripID uuid.UUID, markerID string) error
}

func (m *mockTripServicer) Create(ctx context.Context, t domain.Trip) (domain.Trip, error) {
	return m.create(ctx, t)
}
func (m *mockTripServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	return m.getByID(ctx, id)
}
func (m *mockTripServicer) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	return m.listPaged(ctx, p)
}
func (m *mockTripServicer) Update(ctx context.Context, t domain.Trip) (domain.Trip, error) {
	return m.update(ctx, t)
}
func (m *mockTripServicer) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}
func (m *mockTripServicer) AddHotspot(ctx context.Context, tripID uuid.UUID, h domain.Hotspot) (domain.Hotspot, error) {
	return m.addHotspot(ctx, tripID, h)
}
func (m *mockTripServicer) RemoveHotspot(ctx context.Context, tripID uuid.UUID, hotspotID string) error {
	return m.removeHotspot(ctx, tripID, hotspotID)
}
func (m *mockTripServicer) AddMarker(ctx context.Context, tripID uuid.UUID, mk domain.CustomMarker) (domain.CustomMarker, error) {
	return m.addMarker(ctx, tripID, mk)
}
func (m *mockTripServicer) RemoveMarker(ctx context.Context, tripID uuid.UUID, markerID string) error {
	return m.removeMarker(ctx, tripID, markerID)
}

var _ handler.TripServicer = (*mockTripServicer)(nil)

// mockItineraryServicer is a test double for handler.ItineraryServicer.
type mockItineraryServicer struct {
	addDay          func(ctx context.Context, tripID uuid.UUID, notes string) (domain.DayView, error)
	removeDay       func(ctx context.Context, tripID uuid.UUID, dayID string) error
	addStop         func(ctx context.Context, tripID uuid.UUID, dayID string, typ domain.StopType, locationID string) (domain.DayView, error)
	removeStop      func(ctx context.Context, tripID uuid.UUID, dayID, stopID string) (domain.DayView, error)
	moveStop        func(ctx context.Context, tripID uuid.UUID, dayID, stopID string, dir itinerary.Direction) (domain.DayView, error)
	setTravelMethod func(ctx context.Context, tripID uuid.UUID, dayID, stopID string, method domain.TravelMethod) (domain.DayView, error)
	deleteTravel    func(ctx context.Context, tripID uuid.UUID, dayID, stopID string) (domain.DayView, error)
	recalculate     func(ctx context.Context, tripID uuid.UUID, dayID string) (domain.DayView, error)
}

func (m *mockItineraryServicer) AddDay(ctx context.Context, tripID uuid.UUID, notes string) (domain.DayView, error) {
	return m.addDay(ctx, tripID, notes)
}
func (m *mockItineraryServicer) RemoveDay(ctx context.Context, tripID uuid.UUID, dayID string) error {
	return m.removeDay(ctx, tripID, dayID)
}
func (m *mockItineraryServicer) AddStop(ctx context.Context, tripID uuid.UUID, dayID string, typ domain.StopType, locationID string) (domain.DayView, error) {
	return m.addStop(ctx, tripID, dayID, typ, locationID)
}
func (m *mockItineraryServicer) RemoveStop(ctx context.Context, tripID uuid.UUID, dayID, stopID string) (domain.DayView, error) {
	return m.removeStop(ctx, tripID, dayID, stopID)
}
func (m *mockItineraryServicer) MoveStop(ctx context.Context, tripID uuid.UUID, dayID, stopID string, dir itinerary.Direction) (domain.DayView, error) {
	return m.moveStop(ctx, tripID, dayID, stopID, dir)
}
func (m *mockItineraryServicer) SetTravelMethod(ctx context.Context, tripID uuid.UUID, dayID, stopID string, method domain.TravelMethod) (domain.DayView, error) {
	return m.setTravelMethod(ctx, tripID, dayID, stopID, method)
}
func (m *mockItineraryServicer) DeleteTravel(ctx context.Context, tripID uuid.UUID, dayID, stopID string) (domain.DayView, error) {
	return m.deleteTravel(ctx, tripID, dayID, stopID)
}
func (m *mockItineraryServicer) Recalculate(ctx context.Context, tripID uuid.UUID, dayID string) (domain.DayView, error) {
	return m.recalculate(ctx, tripID, dayID)
}

var _ handler.ItineraryServicer = (*mockItineraryServicer)(nil)

// mockTargetServicer is a test double for handler.TargetServicer.
type mockTargetServicer struct {
	putTargets        func(ctx context.Context, tripID uuid.UUID, list domain.TargetList) (domain.TargetList, error)
	coverage          func(ctx context.Context, tripID uuid.UUID) (map[string]domain.SpeciesCoverage, error)
	hotspotImportance func(ctx context.Context, tripID uuid.UUID, hotspotID string) (map[string]coverage.Importance, error)
	dayKeyTargets     func(ctx context.Context, tripID uuid.UUID, dayID string, lifeList []string) ([]coverage.KeyTarget, error)
}

func (m *mockTargetServicer) PutTargets(ctx context.Context, tripID uuid.UUID, list domain.TargetList) (domain.TargetList, error) {
	return m.putTargets(ctx, tripID, list)
}
func (m *mockTargetServicer) Coverage(ctx context.Context, tripID uuid.UUID) (map[string]domain.SpeciesCoverage, error) {
	return m.coverage(ctx, tripID)
}
func (m *mockTargetServicer) HotspotImportance(ctx context.Context, tripID uuid.UUID, hotspotID string) (map[string]coverage.Importance, error) {
	return m.hotspotImportance(ctx, tripID, hotspotID)
}
func (m *mockTargetServicer) DayKeyTargets(ctx context.Context, tripID uuid.UUID, dayID string, lifeList []string) ([]coverage.KeyTarget, error) {
	return m.dayKeyTargets(ctx, tripID, dayID, lifeList)
}

var _ handler.TargetServicer = (*mockTargetServicer)(nil)

// ---- helpers ---------------------------------------------------------------

// newHTTPHandler wires a Server with the given mocks into a chi router,
// the same way main.go does in production.
func newHTTPHandler(trips handler.TripServicer, itin handler.ItineraryServicer, targets handler.TargetServicer) http.Handler {
	return handler.NewRouter(handler.NewServer(trips, itin, targets, nil))
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewBuffer(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if r != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[handler.ErrorResponse](t, rec).Error.Code
}

func tripFixture() domain.Trip {
	now := time.Now().UTC()
	return domain.Trip{
		ID:         uuid.New(),
		Name:       "SE Arizona",
		StartMonth: 4,
		EndMonth:   5,
		Hotspots:   []domain.Hotspot{{ID: "L123", Name: "Madera Canyon", Lat: 31.72, Lng: -110.88}},
		Markers:    []domain.CustomMarker{},
		Itinerary:  []domain.Day{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func dayFixture() domain.DayView {
	return domain.DayView{
		Day: domain.Day{ID: "d1", Locations: []domain.Stop{
			{ID: "s1", Type: domain.StopMarker, LocationID: "M1"},
			{ID: "s2", Type: domain.StopHotspot, LocationID: "L123", Travel: &domain.TravelEdge{
				Method: domain.MethodDriving, Time: 1800, Distance: 50000, LocationID: "M1",
			}},
		}},
		Names: map[string]string{"M1": "Lodge", "L123": "Madera Canyon"},
	}
}
