// Package handler implements the HTTP API of the trip planner on chi.
// All handlers are methods on Server; routes are declared in Routes.
// Methods are split into resource files (trip.go, itinerary.go, target.go)
// but share the same Server struct and its dependencies.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/birdplan/backend/internal/coverage"
	"github.com/birdplan/backend/internal/domain"
	"github.com/birdplan/backend/internal/itinerary"
)

// TripServicer is the trip, hotspot and marker surface the handlers use.
// Interfaces live here, in the consumer, so tests can inject mocks.
type TripServicer interface {
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Trip, int64, error)
	Update(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AddHotspot(ctx context.Context, tripID uuid.UUID, h domain.Hotspot) (domain.Hotspot, error)
	RemoveHotspot(ctx context.Context, tripID uuid.UUID, hotspotID string) error
	AddMarker(ctx context.Context, tripID uuid.UUID, m domain.CustomMarker) (domain.CustomMarker, error)
	RemoveMarker(ctx context.Context, tripID uuid.UUID, markerID string) error
}

// ItineraryServicer edits days and stops.
type ItineraryServicer interface {
	AddDay(ctx context.Context, tripID uuid.UUID, notes string) (domain.DayView, error)
	RemoveDay(ctx context.Context, tripID uuid.UUID, dayID string) error
	AddStop(ctx context.Context, tripID uuid.UUID, dayID string, typ domain.StopType, locationID string) (domain.DayView, error)
	RemoveStop(ctx context.Context, tripID uuid.UUID, dayID, stopID string) (domain.DayView, error)
	MoveStop(ctx context.Context, tripID uuid.UUID, dayID, stopID string, dir itinerary.Direction) (domain.DayView, error)
	SetTravelMethod(ctx context.Context, tripID uuid.UUID, dayID, stopID string, method domain.TravelMethod) (domain.DayView, error)
	DeleteTravel(ctx context.Context, tripID uuid.UUID, dayID, stopID string) (domain.DayView, error)
	Recalculate(ctx context.Context, tripID uuid.UUID, dayID string) (domain.DayView, error)
}

// TargetServicer imports target lists and serves the coverage views.
type TargetServicer interface {
	PutTargets(ctx context.Context, tripID uuid.UUID, list domain.TargetList) (domain.TargetList, error)
	Coverage(ctx context.Context, tripID uuid.UUID) (map[string]domain.SpeciesCoverage, error)
	HotspotImportance(ctx context.Context, tripID uuid.UUID, hotspotID string) (map[string]coverage.Importance, error)
	DayKeyTargets(ctx context.Context, tripID uuid.UUID, dayID string, lifeList []string) ([]coverage.KeyTarget, error)
}

// Server holds the dependencies shared by every handler.
type Server struct {
	trips     TripServicer
	itinerary ItineraryServicer
	targets   TargetServicer
	log       *slog.Logger
}

// NewServer constructs the Server. A nil logger means slog.Default().
func NewServer(trips TripServicer, itin ItineraryServicer, targets TargetServicer, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{trips: trips, itinerary: itin, targets: targets, log: log}
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(nil, nil, nil, nil)
}

// Routes mounts every endpoint on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)
	r.Handle("/metrics", metricsHandler())

	r.Route("/trips", func(r chi.Router) {
		r.Post("/", s.CreateTrip)
		r.Get("/", s.ListTrips)

		r.Route("/{tripId}", func(r chi.Router) {
			r.Get("/", s.GetTrip)
			r.Put("/", s.UpdateTrip)
			r.Delete("/", s.DeleteTrip)

			r.Post("/hotspots", s.AddHotspot)
			r.Delete("/hotspots/{hotspotId}", s.RemoveHotspot)
			r.Get("/hotspots/{hotspotId}/importance", s.GetHotspotImportance)

			r.Post("/markers", s.AddMarker)
			r.Delete("/markers/{markerId}", s.RemoveMarker)

			r.Put("/targets/{hotspotId}", s.PutTargets)
			r.Get("/coverage", s.GetCoverage)

			r.Post("/days", s.AddDay)
			r.Route("/days/{dayId}", func(r chi.Router) {
				r.Delete("/", s.RemoveDay)
				r.Post("/recalculate", s.RecalculateDay)
				r.Get("/key-targets", s.GetDayKeyTargets)

				r.Post("/stops", s.AddStop)
				r.Delete("/stops/{stopId}", s.RemoveStop)
				r.Post("/stops/{stopId}/move", s.MoveStop)
				r.Put("/stops/{stopId}/travel", s.SetTravelMethod)
				r.Delete("/stops/{stopId}/travel", s.DeleteTravel)
			})
		})
	})
}

// NewRouter returns a chi router with only the API routes mounted.
// main adds the middleware stack in front of it.
func NewRouter(s *Server) http.Handler {
	r := chi.NewRouter()
	s.Routes(r)
	return r
}
