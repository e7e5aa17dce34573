package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/birdplan/backend/internal/domain"
)

// TripRequest is the body of POST /trips and PUT /trips/{tripId}.
type TripRequest struct {
	Name       string `json:"name" validate:"required,max=200"`
	StartMonth int    `json:"startMonth" validate:"min=1,max=12"`
	EndMonth   int    `json:"endMonth" validate:"min=1,max=12"`
}

// HotspotRequest is the body of POST /trips/{tripId}/hotspots.
type HotspotRequest struct {
	ID      string  `json:"id" validate:"required"`
	Name    string  `json:"name" validate:"required"`
	Lat     float64 `json:"lat" validate:"latitude"`
	Lng     float64 `json:"lng" validate:"longitude"`
	Species int     `json:"species" validate:"min=0"`
}

// MarkerRequest is the body of POST /trips/{tripId}/markers. ID is optional.
type MarkerRequest struct {
	ID   string  `json:"id"`
	Name string  `json:"name" validate:"required"`
	Lat  float64 `json:"lat" validate:"latitude"`
	Lng  float64 `json:"lng" validate:"longitude"`
	Icon string  `json:"icon"`
}

// Pagination is the paging envelope of list responses.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

// TripListResponse is returned by GET /trips.
type TripListResponse struct {
	Data       []domain.Trip `json:"data"`
	Pagination Pagination    `json:"pagination"`
}

// CreateTrip handles POST /trips.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var body TripRequest
	if !decodeBody(w, r, &body) {
		return
	}
	created, err := s.trips.Create(r.Context(), domain.Trip{
		Name:       body.Name,
		StartMonth: body.StartMonth,
		EndMonth:   body.EndMonth,
	})
	if err != nil {
		s.writeError(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// ListTrips handles GET /trips.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20, max=100).
func (s *Server) ListTrips(w http.ResponseWriter, r *http.Request) {
	params := domain.NewPaginationParams(queryInt(r, "page"), queryInt(r, "limit"))
	trips, total, err := s.trips.ListPaged(r.Context(), params)
	if err != nil {
		s.writeError(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusOK, TripListResponse{
		Data:       trips,
		Pagination: Pagination{Page: params.Page, Limit: params.Limit, Total: total},
	})
}

// GetTrip handles GET /trips/{tripId}.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := tripID(w, r)
	if !ok {
		return
	}
	trip, err := s.trips.GetByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusOK, trip)
}

// UpdateTrip handles PUT /trips/{tripId}. Only name and months change.
func (s *Server) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := tripID(w, r)
	if !ok {
		return
	}
	var body TripRequest
	if !decodeBody(w, r, &body) {
		return
	}
	updated, err := s.trips.Update(r.Context(), domain.Trip{
		ID:         id,
		Name:       body.Name,
		StartMonth: body.StartMonth,
		EndMonth:   body.EndMonth,
	})
	if err != nil {
		s.writeError(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteTrip handles DELETE /trips/{tripId}.
func (s *Server) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := tripID(w, r)
	if !ok {
		return
	}
	if err := s.trips.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err, "trip not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddHotspot handles POST /trips/{tripId}/hotspots.
func (s *Server) AddHotspot(w http.ResponseWriter, r *http.Request) {
	id, ok := tripID(w, r)
	if !ok {
		return
	}
	var body HotspotRequest
	if !decodeBody(w, r, &body) {
		return
	}
	h, err := s.trips.AddHotspot(r.Context(), id, domain.Hotspot(body))
	if err != nil {
		s.writeError(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusCreated, h)
}

// RemoveHotspot handles DELETE /trips/{tripId}/hotspots/{hotspotId}.
func (s *Server) RemoveHotspot(w http.ResponseWriter, r *http.Request) {
	id, ok := tripID(w, r)
	if !ok {
		return
	}
	if err := s.trips.RemoveHotspot(r.Context(), id, chi.URLParam(r, "hotspotId")); err != nil {
		s.writeError(w, r, err, "hotspot not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddMarker handles POST /trips/{tripId}/markers.
func (s *Server) AddMarker(w http.ResponseWriter, r *http.Request) {
	id, ok := tripID(w, r)
	if !ok {
		return
	}
	var body MarkerRequest
	if !decodeBody(w, r, &body) {
		return
	}
	m, err := s.trips.AddMarker(r.Context(), id, domain.CustomMarker(body))
	if err != nil {
		s.writeError(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// RemoveMarker handles DELETE /trips/{tripId}/markers/{markerId}.
func (s *Server) RemoveMarker(w http.ResponseWriter, r *http.Request) {
	id, ok := tripID(w, r)
	if !ok {
		return
	}
	if err := s.trips.RemoveMarker(r.Context(), id, chi.URLParam(r, "markerId")); err != nil {
		s.writeError(w, r, err, "marker not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// queryInt returns a pointer to an integer query parameter, or nil when it is
// absent or not a number. NewPaginationParams applies the defaults.
func queryInt(r *http.Request, name string) *int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &n
}
