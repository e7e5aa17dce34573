package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/birdplan/backend/internal/coverage"
	"github.com/birdplan/backend/internal/domain"
)

// TripWideHotspot is the path segment that addresses the trip-wide target
// list in PUT /trips/{tripId}/targets/{hotspotId}.
const TripWideHotspot = "_trip"

// TargetListRequest is the body of PUT /trips/{tripId}/targets/{hotspotId}.
type TargetListRequest struct {
	N     int                 `json:"N" validate:"min=0"`
	YrN   int                 `json:"yrN" validate:"min=0"`
	Items []TargetItemRequest `json:"items" validate:"dive"`
}

// TargetItemRequest is one species in a TargetListRequest.
type TargetItemRequest struct {
	Code      string  `json:"code" validate:"required"`
	Name      string  `json:"name"`
	Percent   float64 `json:"percent" validate:"min=0,max=100"`
	PercentYr float64 `json:"percentYr" validate:"min=0,max=100"`
}

// KeyTargetsResponse is returned by GET .../days/{dayId}/key-targets.
type KeyTargetsResponse struct {
	Data []coverage.KeyTarget `json:"data"`
}

// PutTargets handles PUT /trips/{tripId}/targets/{hotspotId}.
func (s *Server) PutTargets(w http.ResponseWriter, r *http.Request) {
	id, ok := tripID(w, r)
	if !ok {
		return
	}
	var body TargetListRequest
	if !decodeBody(w, r, &body) {
		return
	}
	hotspotID := chi.URLParam(r, "hotspotId")
	if hotspotID == TripWideHotspot {
		hotspotID = ""
	}
	list := domain.TargetList{
		HotspotID: hotspotID,
		N:         body.N,
		YrN:       body.YrN,
		Items:     make([]domain.TargetItem, len(body.Items)),
	}
	for i, it := range body.Items {
		list.Items[i] = domain.TargetItem(it)
	}
	saved, err := s.targets.PutTargets(r.Context(), id, list)
	if err != nil {
		s.writeError(w, r, err, "trip or hotspot not found")
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// GetCoverage handles GET /trips/{tripId}/coverage.
func (s *Server) GetCoverage(w http.ResponseWriter, r *http.Request) {
	id, ok := tripID(w, r)
	if !ok {
		return
	}
	cov, err := s.targets.Coverage(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusOK, cov)
}

// GetHotspotImportance handles GET /trips/{tripId}/hotspots/{hotspotId}/importance.
func (s *Server) GetHotspotImportance(w http.ResponseWriter, r *http.Request) {
	id, ok := tripID(w, r)
	if !ok {
		return
	}
	imp, err := s.targets.HotspotImportance(r.Context(), id, chi.URLParam(r, "hotspotId"))
	if err != nil {
		s.writeError(w, r, err, "trip or hotspot not found")
		return
	}
	writeJSON(w, http.StatusOK, imp)
}

// GetDayKeyTargets handles GET /trips/{tripId}/days/{dayId}/key-targets.
// ?lifelist=code1,code2 excludes species the user has already seen.
func (s *Server) GetDayKeyTargets(w http.ResponseWriter, r *http.Request) {
	id, ok := tripID(w, r)
	if !ok {
		return
	}
	targets, err := s.targets.DayKeyTargets(r.Context(), id, chi.URLParam(r, "dayId"), splitCodes(r.URL.Query().Get("lifelist")))
	if err != nil {
		s.writeError(w, r, err, "trip or day not found")
		return
	}
	if targets == nil {
		targets = []coverage.KeyTarget{}
	}
	writeJSON(w, http.StatusOK, KeyTargetsResponse{Data: targets})
}

func splitCodes(raw string) []string {
	var out []string
	for _, c := range strings.Split(raw, ",") {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}
