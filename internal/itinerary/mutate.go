// Package itinerary holds the pure operations on a day's ordered stop list
// and the resolver that fills in travel edges between consecutive stops.
//
// Every function in this file returns a fresh slice and leaves its input
// untouched, so callers can keep the persisted day around for comparison.
package itinerary

import (
	"github.com/birdplan/backend/internal/domain"
)

// Direction is the way MoveStop shifts a stop inside its day.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// Valid reports whether d is Up or Down.
func (d Direction) Valid() bool {
	return d == Up || d == Down
}

// MoveStop moves the stop with stopID one position up or down.
// Moving past either boundary and unknown ids are no-ops.
// Travel edges are copied as they are; run DropStaleTravel afterwards.
func MoveStop(locations []domain.Stop, stopID string, dir Direction) []domain.Stop {
	out := clone(locations)

	from := indexOf(out, stopID)
	if from < 0 {
		return out
	}
	to := from
	switch dir {
	case Up:
		to = from - 1
	case Down:
		to = from + 1
	}
	if to < 0 || to >= len(out) || to == from {
		return out
	}

	moved := out[from]
	rest := append(out[:from:from], out[from+1:]...)
	return insertAt(rest, to, moved)
}

// DropStaleTravel removes every travel edge whose origin is not the stop
// right before it. The first stop never keeps an edge.
// Applying it twice gives the same result as applying it once.
func DropStaleTravel(locations []domain.Stop) []domain.Stop {
	out := clone(locations)
	for i := range out {
		if out[i].Travel == nil {
			continue
		}
		if i == 0 || out[i].Travel.LocationID != out[i-1].LocationID {
			out[i].Travel = nil
		}
	}
	return out
}

// RemoveStop drops the stop with stopID and strips the edges that the
// removal made stale.
func RemoveStop(locations []domain.Stop, stopID string) []domain.Stop {
	out := make([]domain.Stop, 0, len(locations))
	for _, s := range locations {
		if s.ID != stopID {
			out = append(out, s)
		}
	}
	return DropStaleTravel(out)
}

// AddStop appends stop to the end of the day. Stops are never inserted
// mid-day; the new stop starts without a travel edge.
func AddStop(locations []domain.Stop, stop domain.Stop) []domain.Stop {
	stop.Travel = nil
	out := clone(locations)
	return append(out, stop)
}

// SetTravelMethod replaces the stop's edge with an unresolved placeholder
// for the given method. The placeholder has zero time and distance so the
// resolver never reuses it and asks for a fresh value.
func SetTravelMethod(locations []domain.Stop, stopID string, method domain.TravelMethod) []domain.Stop {
	out := clone(locations)
	i := indexOf(out, stopID)
	if i <= 0 {
		return out
	}
	out[i].Travel = &domain.TravelEdge{
		Method:     method,
		LocationID: out[i-1].LocationID,
	}
	return out
}

// DeleteTravel marks the stop's edge as deleted by the user. The edge is
// kept so it can be recalculated later, but no longer counts.
func DeleteTravel(locations []domain.Stop, stopID string) []domain.Stop {
	out := clone(locations)
	i := indexOf(out, stopID)
	if i < 0 || out[i].Travel == nil {
		return out
	}
	edge := *out[i].Travel
	edge.IsDeleted = true
	out[i].Travel = &edge
	return out
}

// MostFrequentMethod returns the method used most often by the day's edges,
// ignoring the stop with excludeStopID. Ties go to the method seen first.
func MostFrequentMethod(locations []domain.Stop, excludeStopID string) (domain.TravelMethod, bool) {
	counts := make(map[domain.TravelMethod]int)
	var order []domain.TravelMethod
	for _, s := range locations {
		if s.ID == excludeStopID || s.Travel == nil || s.Travel.Method == "" {
			continue
		}
		m := s.Travel.Method
		if _, seen := counts[m]; !seen {
			order = append(order, m)
		}
		counts[m]++
	}

	var best domain.TravelMethod
	bestCount := 0
	for _, m := range order {
		if counts[m] > bestCount {
			best, bestCount = m, counts[m]
		}
	}
	return best, bestCount > 0
}

// FindStop returns the index of the stop with the given id, or -1.
func FindStop(locations []domain.Stop, stopID string) int {
	return indexOf(locations, stopID)
}

func indexOf(locations []domain.Stop, stopID string) int {
	for i, s := range locations {
		if s.ID == stopID {
			return i
		}
	}
	return -1
}

func insertAt(locations []domain.Stop, i int, s domain.Stop) []domain.Stop {
	out := make([]domain.Stop, 0, len(locations)+1)
	out = append(out, locations[:i]...)
	out = append(out, s)
	return append(out, locations[i:]...)
}

// clone copies the slice and each edge so callers can change edges on the
// result without touching the input.
func clone(locations []domain.Stop) []domain.Stop {
	out := make([]domain.Stop, len(locations))
	copy(out, locations)
	for i := range out {
		if out[i].Travel != nil {
			edge := *out[i].Travel
			out[i].Travel = &edge
		}
	}
	return out
}
