// Package domain contains the core data types for the birding trip planner.
// This package has no behaviour beyond small helpers and is imported by every
// other internal package (itinerary, coverage, repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Trip is the top-level aggregate. Hotspots and markers are the places the
// user saved; Itinerary is the ordered list of days that visit them.
// Target lists live alongside the trip and are loaded separately.
type Trip struct {
	ID         uuid.UUID      `json:"id"`
	Name       string         `json:"name"`
	StartMonth int            `json:"startMonth"`
	EndMonth   int            `json:"endMonth"`
	Hotspots   []Hotspot      `json:"hotspots"`
	Markers    []CustomMarker `json:"markers"`
	Itinerary  []Day          `json:"itinerary"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

// Hotspot is a public birding location saved to a trip.
type Hotspot struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Species int     `json:"species,omitempty"`
}

// CustomMarker is a user-placed location such as a lodging or a trailhead.
type CustomMarker struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	Icon string  `json:"icon,omitempty"`
}

// Coordinates returns the lat/lng of the hotspot or marker with the given id.
// Hotspots are searched before markers and the first match wins.
// ok is false for ids that no longer resolve, e.g. after a hotspot was removed.
func (t *Trip) Coordinates(locationID string) (lat, lng float64, ok bool) {
	for _, h := range t.Hotspots {
		if h.ID == locationID {
			return h.Lat, h.Lng, true
		}
	}
	for _, m := range t.Markers {
		if m.ID == locationID {
			return m.Lat, m.Lng, true
		}
	}
	return 0, 0, false
}

// LocationName returns the display name for a stop's location, or
// "Unknown location" when the reference is dangling.
func (t *Trip) LocationName(locationID string) string {
	for _, h := range t.Hotspots {
		if h.ID == locationID {
			return h.Name
		}
	}
	for _, m := range t.Markers {
		if m.ID == locationID {
			return m.Name
		}
	}
	return UnknownLocation
}

// UnknownLocation is rendered for stops whose location was removed from the trip.
const UnknownLocation = "Unknown location"

// DayView is a day together with the display name of every location its
// stops reference, keyed by location id.
type DayView struct {
	Day
	Names map[string]string
}

// ViewDay resolves the location names of d against the trip. Dangling
// references get UnknownLocation.
func (t *Trip) ViewDay(d Day) DayView {
	names := make(map[string]string, len(d.Locations))
	for _, s := range d.Locations {
		names[s.LocationID] = t.LocationName(s.LocationID)
	}
	return DayView{Day: d, Names: names}
}

// DayIndex returns the position of the day with the given id, or -1.
func (t *Trip) DayIndex(dayID string) int {
	for i, d := range t.Itinerary {
		if d.ID == dayID {
			return i
		}
	}
	return -1
}

// HasHotspot reports whether the trip has a hotspot with the given id.
func (t *Trip) HasHotspot(id string) bool {
	for _, h := range t.Hotspots {
		if h.ID == id {
			return true
		}
	}
	return false
}

// HasMarker reports whether the trip has a custom marker with the given id.
func (t *Trip) HasMarker(id string) bool {
	for _, m := range t.Markers {
		if m.ID == id {
			return true
		}
	}
	return false
}
