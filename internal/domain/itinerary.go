package domain

// Day is one day of the itinerary. Locations is the visiting order and
// every operation on it must preserve insertion order.
type Day struct {
	ID        string `json:"id"`
	Notes     string `json:"notes,omitempty"`
	Locations []Stop `json:"locations"`
}

// StopType tells whether a stop references a Hotspot or a CustomMarker.
type StopType string

const (
	StopHotspot StopType = "hotspot"
	StopMarker  StopType = "marker"
)

// Stop is one entry in a Day. LocationID is a weak reference: it may point
// to a hotspot or marker that no longer exists.
// Travel, when set, describes the edge arriving here from the previous stop.
type Stop struct {
	ID         string      `json:"id"`
	Type       StopType    `json:"type"`
	LocationID string      `json:"locationId"`
	Travel     *TravelEdge `json:"travel,omitempty"`
}

// TravelMethod is the mode of transport used between two stops.
type TravelMethod string

const (
	MethodWalking TravelMethod = "walking"
	MethodDriving TravelMethod = "driving"
	MethodCycling TravelMethod = "cycling"
)

// DefaultTravelMethod is used when neither the stop nor the day suggests one.
const DefaultTravelMethod = MethodDriving

// Valid reports whether m is one of the supported methods.
func (m TravelMethod) Valid() bool {
	switch m {
	case MethodWalking, MethodDriving, MethodCycling:
		return true
	}
	return false
}

// TravelEdge is the directed edge from the stop whose LocationID is recorded
// here to the stop that owns the edge. Time is in seconds, Distance in meters.
//
// An edge whose LocationID differs from the actual predecessor is stale.
// IsDeleted is the user's "I cleared this edge" flag; a deleted edge is kept
// but never counted.
type TravelEdge struct {
	Method     TravelMethod `json:"method"`
	Time       float64      `json:"time"`
	Distance   float64      `json:"distance"`
	LocationID string       `json:"locationId"`
	IsDeleted  bool         `json:"isDeleted,omitempty"`
}

// Resolved reports whether the edge carries a usable, non-empty measurement.
func (e *TravelEdge) Resolved() bool {
	return e != nil && !e.IsDeleted && e.Time > 0 && e.Distance > 0
}

// DayTotals sums time and distance over the day's non-deleted edges.
func DayTotals(d Day) (time, distance float64) {
	for _, s := range d.Locations {
		if s.Travel == nil || s.Travel.IsDeleted {
			continue
		}
		time += s.Travel.Time
		distance += s.Travel.Distance
	}
	return time, distance
}
