package routing

import (
	"context"

	"github.com/golang/geo/s2"

	"github.com/birdplan/backend/internal/domain"
	"github.com/birdplan/backend/internal/metrics"
)

// EarthRadiusMeters is the mean Earth radius.
const EarthRadiusMeters = 6371008.8

// ProviderStraightLine names the great-circle estimator in cache keys and metrics.
const ProviderStraightLine = "straight_line"

// detourFactor scales great-circle distance to a typical path length.
const detourFactor = 1.3

// speeds in meters per second.
var speeds = map[domain.TravelMethod]float64{
	domain.MethodDriving: 50 * 1000 / 3600.0,
	domain.MethodCycling: 15 * 1000 / 3600.0,
	domain.MethodWalking: 4.5 * 1000 / 3600.0,
}

// StraightLineRouter estimates travel from great-circle distance and a fixed
// speed per method. It is used when no routing provider is configured.
type StraightLineRouter struct{}

// NewStraightLineRouter returns the estimator.
func NewStraightLineRouter() StraightLineRouter {
	return StraightLineRouter{}
}

// TravelTime never performs I/O; ctx is only checked for cancellation.
func (StraightLineRouter) TravelTime(ctx context.Context, req Request) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if err := req.validate(); err != nil {
		return Result{}, err
	}

	dist := HaversineMeters(req.Lat1, req.Lng1, req.Lat2, req.Lng2) * detourFactor
	res := Result{Distance: dist, Time: dist / speeds[req.Method]}

	outcome := "ok"
	if res.Empty() {
		outcome = "error"
	}
	metrics.RoutingRequests.WithLabelValues(ProviderStraightLine, string(req.Method), outcome).Inc()
	if res.Empty() {
		return Result{}, ErrEmptyRoute
	}
	return res, nil
}

// HaversineMeters returns the great-circle distance between two points.
func HaversineMeters(lat1, lng1, lat2, lng2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lng1)
	p2 := s2.LatLngFromDegrees(lat2, lng2)
	return p1.Distance(p2).Radians() * EarthRadiusMeters
}
