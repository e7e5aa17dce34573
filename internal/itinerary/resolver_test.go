package itinerary_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/birdplan/backend/internal/domain"
	"github.com/birdplan/backend/internal/itinerary"
	"github.com/birdplan/backend/internal/routing"
)

// mockRouter is a hand-written test double for itinerary.Router.
// It records every request so tests can assert on call counts.
type mockRouter struct {
	mu    sync.Mutex
	calls []routing.Request
	route func(req routing.Request) (routing.Result, error)
}

func (m *mockRouter) TravelTime(_ context.Context, req routing.Request) (routing.Result, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	m.mu.Unlock()
	return m.route(req)
}

func (m *mockRouter) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// compile-time check: mockRouter must satisfy itinerary.Router.
var _ itinerary.Router = (*mockRouter)(nil)

func fixedRouter(seconds, meters float64) *mockRouter {
	return &mockRouter{route: func(routing.Request) (routing.Result, error) {
		return routing.Result{Time: seconds, Distance: meters}, nil
	}}
}

func failingRouter(err error) *mockRouter {
	return &mockRouter{route: func(routing.Request) (routing.Result, error) {
		return routing.Result{}, err
	}}
}

// tripFixture has hotspots A-D and a marker M, with two days.
func tripFixture(days ...domain.Day) *domain.Trip {
	return &domain.Trip{
		Name: "Arizona",
		Hotspots: []domain.Hotspot{
			{ID: "A", Name: "Madera Canyon", Lat: 31.72, Lng: -110.88},
			{ID: "B", Name: "Patagonia Lake", Lat: 31.49, Lng: -110.85},
			{ID: "C", Name: "Ramsey Canyon", Lat: 31.45, Lng: -110.31},
			{ID: "D", Name: "Cave Creek", Lat: 31.88, Lng: -109.17},
		},
		Markers: []domain.CustomMarker{
			{ID: "M", Name: "Motel", Lat: 31.55, Lng: -110.30},
		},
		Itinerary: days,
	}
}

func newResolver(r itinerary.Router) *itinerary.Resolver {
	return itinerary.NewResolver(r, nil, 2)
}

// ---- basic resolution ------------------------------------------------------

func TestRecomputeDay_RoutesMissingEdges(t *testing.T) {
	router := fixedRouter(1200, 15000)
	day := domain.Day{ID: "d1", Locations: []domain.Stop{stop("s1", "A"), stop("s2", "B"), stop("s3", "M")}}
	trip := tripFixture(day)

	got := newResolver(router).RecomputeDay(context.Background(), trip, day)

	assert.Nil(t, got.Locations[0].Travel)
	for _, s := range got.Locations[1:] {
		require.NotNil(t, s.Travel)
		assert.Equal(t, domain.MethodDriving, s.Travel.Method)
		assert.Equal(t, 1200.0, s.Travel.Time)
		assert.Equal(t, 15000.0, s.Travel.Distance)
	}
	assert.Equal(t, "A", got.Locations[1].Travel.LocationID)
	assert.Equal(t, "B", got.Locations[2].Travel.LocationID)
	assert.Equal(t, 2, router.callCount())
}

func TestRecomputeDay_PassesCoordinatesAndMethod(t *testing.T) {
	router := fixedRouter(60, 100)
	day := domain.Day{ID: "d1", Locations: []domain.Stop{
		stop("s1", "A"),
		withTravel(stop("s2", "M"), &domain.TravelEdge{Method: domain.MethodWalking, LocationID: "A"}),
	}}

	got := newResolver(router).RecomputeDay(context.Background(), tripFixture(day), day)

	require.Equal(t, 1, router.callCount())
	req := router.calls[0]
	assert.Equal(t, domain.MethodWalking, req.Method)
	assert.Equal(t, 31.72, req.Lat1)
	assert.Equal(t, -110.88, req.Lng1)
	assert.Equal(t, 31.55, req.Lat2)
	assert.Equal(t, -110.30, req.Lng2)
	assert.Equal(t, domain.MethodWalking, got.Locations[1].Travel.Method)
}

func TestRecomputeDay_UsesMostFrequentMethodOfDay(t *testing.T) {
	router := fixedRouter(60, 100)
	day := domain.Day{ID: "d1", Locations: []domain.Stop{
		stop("s1", "A"),
		withTravel(stop("s2", "B"), edge("A", domain.MethodCycling, 500, 3000)),
		withTravel(stop("s3", "C"), edge("B", domain.MethodCycling, 500, 3000)),
		stop("s4", "D"),
	}}

	got := newResolver(router).RecomputeDay(context.Background(), tripFixture(day), day)

	require.NotNil(t, got.Locations[3].Travel)
	assert.Equal(t, domain.MethodCycling, got.Locations[3].Travel.Method)
}

func TestRecomputeDay_DoesNotMutateInput(t *testing.T) {
	day := domain.Day{ID: "d1", Locations: []domain.Stop{stop("s1", "A"), stop("s2", "B")}}

	_ = newResolver(fixedRouter(1, 1)).RecomputeDay(context.Background(), tripFixture(day), day)

	assert.Nil(t, day.Locations[1].Travel)
}

// ---- same location ---------------------------------------------------------

func TestRecomputeDay_SameLocationIsFree(t *testing.T) {
	router := fixedRouter(999, 999)
	day := domain.Day{ID: "d1", Locations: []domain.Stop{stop("s1", "A"), stop("s2", "A")}}

	got := newResolver(router).RecomputeDay(context.Background(), tripFixture(day), day)

	require.NotNil(t, got.Locations[1].Travel)
	assert.Zero(t, got.Locations[1].Travel.Time)
	assert.Zero(t, got.Locations[1].Travel.Distance)
	assert.Equal(t, "A", got.Locations[1].Travel.LocationID)
	assert.Equal(t, 0, router.callCount())
}

// ---- cache reuse -----------------------------------------------------------

func TestRecomputeDay_ReusesEdgeFromAnotherDay(t *testing.T) {
	router := fixedRouter(1, 1)
	day1 := domain.Day{ID: "d1", Locations: []domain.Stop{
		stop("s1", "A"),
		withTravel(stop("s2", "B"), edge("A", domain.MethodDriving, 1834, 23817)),
	}}
	day2 := domain.Day{ID: "d2", Locations: []domain.Stop{stop("s3", "A"), stop("s4", "B")}}
	trip := tripFixture(day1, day2)

	got := newResolver(router).RecomputeDay(context.Background(), trip, day2)

	assert.Equal(t, 0, router.callCount(), "router must not be called for a known edge")
	require.NotNil(t, got.Locations[1].Travel)
	assert.Equal(t, 1834.0, got.Locations[1].Travel.Time)
	assert.Equal(t, 23817.0, got.Locations[1].Travel.Distance)
	assert.Equal(t, "A", got.Locations[1].Travel.LocationID)
}

func TestRecomputeDay_ReuseRequiresSameMethod(t *testing.T) {
	router := fixedRouter(4000, 5000)
	day1 := domain.Day{ID: "d1", Locations: []domain.Stop{
		stop("s1", "A"),
		withTravel(stop("s2", "B"), edge("A", domain.MethodDriving, 1834, 23817)),
	}}
	day2 := domain.Day{ID: "d2", Locations: []domain.Stop{
		stop("s3", "A"),
		withTravel(stop("s4", "B"), &domain.TravelEdge{Method: domain.MethodWalking, LocationID: "A"}),
	}}

	got := newResolver(router).RecomputeDay(context.Background(), tripFixture(day1, day2), day2)

	assert.Equal(t, 1, router.callCount())
	assert.Equal(t, 4000.0, got.Locations[1].Travel.Time)
}

func TestRecomputeDay_ReuseIgnoresPlaceholdersAndDeletedEdges(t *testing.T) {
	router := fixedRouter(4000, 5000)
	deleted := edge("A", domain.MethodDriving, 1834, 23817)
	deleted.IsDeleted = true
	day1 := domain.Day{ID: "d1", Locations: []domain.Stop{stop("s1", "A"), withTravel(stop("s2", "B"), deleted)}}
	day2 := domain.Day{ID: "d2", Locations: []domain.Stop{stop("s3", "A"), withTravel(stop("s4", "B"), edge("A", domain.MethodDriving, 0, 0))}}
	day3 := domain.Day{ID: "d3", Locations: []domain.Stop{stop("s5", "A"), stop("s6", "B")}}

	got := newResolver(router).RecomputeDay(context.Background(), tripFixture(day1, day2, day3), day3)

	assert.Equal(t, 1, router.callCount())
	assert.Equal(t, 4000.0, got.Locations[1].Travel.Time)
}

func TestRecomputeDay_ReuseUsesUpdatedDayNotPersistedCopy(t *testing.T) {
	router := fixedRouter(4000, 5000)
	// The persisted copy of d1 still has the A->B edge; the updated day
	// passed in no longer contains it, so it must not be reused.
	persisted := domain.Day{ID: "d1", Locations: []domain.Stop{
		stop("s1", "A"),
		withTravel(stop("s2", "B"), edge("A", domain.MethodDriving, 1834, 23817)),
	}}
	updated := domain.Day{ID: "d1", Locations: []domain.Stop{stop("s2", "B"), stop("s1", "A"), stop("s9", "B")}}

	got := newResolver(router).RecomputeDay(context.Background(), tripFixture(persisted), updated)

	assert.Equal(t, 2, router.callCount())
	assert.Equal(t, 4000.0, got.Locations[2].Travel.Time)
}

func TestRecomputeDay_KeepsValidEdgesWithoutCalls(t *testing.T) {
	router := fixedRouter(1, 1)
	day := domain.Day{ID: "d1", Locations: dayABCD()}

	got := newResolver(router).RecomputeDay(context.Background(), tripFixture(day), day)

	assert.Equal(t, 0, router.callCount())
	assert.Equal(t, day.Locations, got.Locations)
}

// ---- failures --------------------------------------------------------------

func TestRecomputeDay_FailureKeepsPriorEdge(t *testing.T) {
	router := failingRouter(errors.New("upstream 503"))
	prior := &domain.TravelEdge{Method: domain.MethodWalking, Time: 0, Distance: 0, LocationID: "A"}
	day := domain.Day{ID: "d1", Locations: []domain.Stop{
		stop("s1", "A"),
		withTravel(stop("s2", "B"), prior),
		stop("s3", "C"),
	}}

	got := newResolver(router).RecomputeDay(context.Background(), tripFixture(day), day)

	assert.Equal(t, prior, got.Locations[1].Travel, "prior edge kept")
	assert.Nil(t, got.Locations[2].Travel, "unset edge stays unset")
	assert.Equal(t, 2, router.callCount())
}

func TestRecomputeDay_EmptyResultIsFailure(t *testing.T) {
	router := fixedRouter(0, 0)
	day := domain.Day{ID: "d1", Locations: []domain.Stop{stop("s1", "A"), stop("s2", "B")}}

	got := newResolver(router).RecomputeDay(context.Background(), tripFixture(day), day)

	assert.Nil(t, got.Locations[1].Travel)
}

func TestRecomputeDay_OneFailureDoesNotBlockOthers(t *testing.T) {
	router := &mockRouter{route: func(req routing.Request) (routing.Result, error) {
		if req.Lat2 == 31.45 { // C
			return routing.Result{}, errors.New("timeout")
		}
		return routing.Result{Time: 300, Distance: 400}, nil
	}}
	day := domain.Day{ID: "d1", Locations: []domain.Stop{stop("s1", "A"), stop("s2", "B"), stop("s3", "C"), stop("s4", "D")}}

	got := newResolver(router).RecomputeDay(context.Background(), tripFixture(day), day)

	assert.NotNil(t, got.Locations[1].Travel)
	assert.Nil(t, got.Locations[2].Travel)
	assert.NotNil(t, got.Locations[3].Travel)
}

func TestRecomputeDay_DanglingLocationLeftUnset(t *testing.T) {
	router := fixedRouter(100, 100)
	day := domain.Day{ID: "d1", Locations: []domain.Stop{stop("s1", "A"), stop("s2", "GONE"), stop("s3", "B")}}

	got := newResolver(router).RecomputeDay(context.Background(), tripFixture(day), day)

	assert.Nil(t, got.Locations[1].Travel)
	assert.Nil(t, got.Locations[2].Travel)
	assert.Equal(t, 0, router.callCount())
}

func TestRecomputeDay_DeletedEdgeLeftAlone(t *testing.T) {
	router := fixedRouter(100, 100)
	deleted := edge("A", domain.MethodDriving, 50, 50)
	deleted.IsDeleted = true
	day := domain.Day{ID: "d1", Locations: []domain.Stop{stop("s1", "A"), withTravel(stop("s2", "B"), deleted)}}

	got := newResolver(router).RecomputeDay(context.Background(), tripFixture(day), day)

	assert.Equal(t, deleted, got.Locations[1].Travel)
	assert.Equal(t, 0, router.callCount())
}

func TestRecomputeDay_NilTripReturnsDayUnchanged(t *testing.T) {
	router := fixedRouter(100, 100)
	day := domain.Day{ID: "d1", Locations: []domain.Stop{stop("s1", "A"), stop("s2", "B")}}

	got := newResolver(router).RecomputeDay(context.Background(), nil, day)

	assert.Equal(t, day, got)
	assert.Equal(t, 0, router.callCount())
}

// ---- invariants after mutation + resolve -----------------------------------

func TestRecomputeDay_AdjacencyAfterMoves(t *testing.T) {
	router := fixedRouter(100, 100)
	day := domain.Day{ID: "d1", Locations: dayABCD()}
	trip := tripFixture(day)
	resolver := newResolver(router)

	for _, mv := range []struct {
		id  string
		dir itinerary.Direction
	}{{"s4", itinerary.Up}, {"s1", itinerary.Down}, {"s2", itinerary.Up}, {"s3", itinerary.Down}} {
		day.Locations = itinerary.DropStaleTravel(itinerary.MoveStop(day.Locations, mv.id, mv.dir))
		day = resolver.RecomputeDay(context.Background(), trip, day)
		trip.Itinerary[0] = day
		assertAdjacency(t, day.Locations)
		for _, s := range day.Locations[1:] {
			assert.NotNil(t, s.Travel)
		}
	}
}
