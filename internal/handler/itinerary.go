package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/birdplan/backend/internal/domain"
	"github.com/birdplan/backend/internal/itinerary"
)

// DayRequest is the body of POST /trips/{tripId}/days.
type DayRequest struct {
	Notes string `json:"notes" validate:"max=2000"`
}

// StopRequest is the body of POST .../days/{dayId}/stops.
type StopRequest struct {
	Type       domain.StopType `json:"type" validate:"required,oneof=hotspot marker"`
	LocationID string          `json:"locationId" validate:"required"`
}

// MoveRequest is the body of POST .../stops/{stopId}/move.
type MoveRequest struct {
	Direction itinerary.Direction `json:"direction" validate:"required,oneof=up down"`
}

// TravelRequest is the body of PUT .../stops/{stopId}/travel.
type TravelRequest struct {
	Method domain.TravelMethod `json:"method" validate:"required,oneof=walking driving cycling"`
}

// StopResponse is a stop with the display name of its location.
type StopResponse struct {
	domain.Stop
	Name string `json:"name"`
}

// DayResponse is a day together with its travel totals.
type DayResponse struct {
	ID            string         `json:"id"`
	Notes         string         `json:"notes,omitempty"`
	Locations     []StopResponse `json:"locations"`
	TotalTime     float64        `json:"totalTime"`
	TotalDistance float64        `json:"totalDistance"`
}

func dayResponse(v domain.DayView) DayResponse {
	t, dist := domain.DayTotals(v.Day)
	stops := make([]StopResponse, len(v.Locations))
	for i, s := range v.Locations {
		name, ok := v.Names[s.LocationID]
		if !ok {
			name = domain.UnknownLocation
		}
		stops[i] = StopResponse{Stop: s, Name: name}
	}
	return DayResponse{ID: v.ID, Notes: v.Notes, Locations: stops, TotalTime: t, TotalDistance: dist}
}

// AddDay handles POST /trips/{tripId}/days. The body is optional.
func (s *Server) AddDay(w http.ResponseWriter, r *http.Request) {
	id, ok := tripID(w, r)
	if !ok {
		return
	}
	var body DayRequest
	if r.ContentLength != 0 && !decodeBody(w, r, &body) {
		return
	}
	day, err := s.itinerary.AddDay(r.Context(), id, body.Notes)
	if err != nil {
		s.writeError(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusCreated, dayResponse(day))
}

// RemoveDay handles DELETE /trips/{tripId}/days/{dayId}.
func (s *Server) RemoveDay(w http.ResponseWriter, r *http.Request) {
	id, ok := tripID(w, r)
	if !ok {
		return
	}
	if err := s.itinerary.RemoveDay(r.Context(), id, chi.URLParam(r, "dayId")); err != nil {
		s.writeError(w, r, err, "day not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RecalculateDay handles POST /trips/{tripId}/days/{dayId}/recalculate.
func (s *Server) RecalculateDay(w http.ResponseWriter, r *http.Request) {
	id, ok := tripID(w, r)
	if !ok {
		return
	}
	day, err := s.itinerary.Recalculate(r.Context(), id, chi.URLParam(r, "dayId"))
	s.writeDay(w, r, day, err)
}

// AddStop handles POST /trips/{tripId}/days/{dayId}/stops.
func (s *Server) AddStop(w http.ResponseWriter, r *http.Request) {
	id, ok := tripID(w, r)
	if !ok {
		return
	}
	var body StopRequest
	if !decodeBody(w, r, &body) {
		return
	}
	day, err := s.itinerary.AddStop(r.Context(), id, chi.URLParam(r, "dayId"), body.Type, body.LocationID)
	if err != nil {
		s.writeError(w, r, err, "day not found")
		return
	}
	writeJSON(w, http.StatusCreated, dayResponse(day))
}

// RemoveStop handles DELETE .../days/{dayId}/stops/{stopId}.
func (s *Server) RemoveStop(w http.ResponseWriter, r *http.Request) {
	id, ok := tripID(w, r)
	if !ok {
		return
	}
	day, err := s.itinerary.RemoveStop(r.Context(), id, chi.URLParam(r, "dayId"), chi.URLParam(r, "stopId"))
	s.writeDay(w, r, day, err)
}

// MoveStop handles POST .../stops/{stopId}/move.
func (s *Server) MoveStop(w http.ResponseWriter, r *http.Request) {
	id, ok := tripID(w, r)
	if !ok {
		return
	}
	var body MoveRequest
	if !decodeBody(w, r, &body) {
		return
	}
	day, err := s.itinerary.MoveStop(r.Context(), id, chi.URLParam(r, "dayId"), chi.URLParam(r, "stopId"), body.Direction)
	s.writeDay(w, r, day, err)
}

// SetTravelMethod handles PUT .../stops/{stopId}/travel.
func (s *Server) SetTravelMethod(w http.ResponseWriter, r *http.Request) {
	id, ok := tripID(w, r)
	if !ok {
		return
	}
	var body TravelRequest
	if !decodeBody(w, r, &body) {
		return
	}
	day, err := s.itinerary.SetTravelMethod(r.Context(), id, chi.URLParam(r, "dayId"), chi.URLParam(r, "stopId"), body.Method)
	s.writeDay(w, r, day, err)
}

// DeleteTravel handles DELETE .../stops/{stopId}/travel.
func (s *Server) DeleteTravel(w http.ResponseWriter, r *http.Request) {
	id, ok := tripID(w, r)
	if !ok {
		return
	}
	day, err := s.itinerary.DeleteTravel(r.Context(), id, chi.URLParam(r, "dayId"), chi.URLParam(r, "stopId"))
	s.writeDay(w, r, day, err)
}

// writeDay writes the edited day, or the error that prevented the edit.
// The not-found message is generic because the service does not say whether
// the trip, the day or the stop was missing.
func (s *Server) writeDay(w http.ResponseWriter, r *http.Request, day domain.DayView, err error) {
	if err != nil {
		s.writeError(w, r, err, "day or stop not found")
		return
	}
	writeJSON(w, http.StatusOK, dayResponse(day))
}
