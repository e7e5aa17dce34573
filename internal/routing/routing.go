// Package routing provides the travel-time collaborators used by the
// itinerary resolver: an OpenRouteService client, a great-circle estimator,
// and decorators that add a persistent cache, a rate limit and a circuit
// breaker in front of them.
package routing

import (
	"context"
	"errors"
	"fmt"

	"github.com/birdplan/backend/internal/domain"
)

// ErrEmptyRoute is returned when a provider answers without a usable
// distance or duration.
var ErrEmptyRoute = errors.New("routing: empty route")

// Request asks for the travel time between two coordinates.
type Request struct {
	Method domain.TravelMethod
	Lat1   float64
	Lng1   float64
	Lat2   float64
	Lng2   float64
}

// Result is a resolved route. Distance is in meters, Time in seconds.
type Result struct {
	Distance float64
	Time     float64
}

// Empty reports whether the result lacks distance or time.
func (r Result) Empty() bool {
	return r.Distance <= 0 || r.Time <= 0
}

// Router resolves one origin-destination pair.
type Router interface {
	TravelTime(ctx context.Context, req Request) (Result, error)
}

// RouterFunc adapts a plain function to the Router interface.
type RouterFunc func(ctx context.Context, req Request) (Result, error)

// TravelTime calls f.
func (f RouterFunc) TravelTime(ctx context.Context, req Request) (Result, error) {
	return f(ctx, req)
}

// key identifies a request answered by provider. Coordinates are rounded
// to ~1m so that float noise from JSON round-trips does not defeat the cache.
func (r Request) key(provider string) string {
	return fmt.Sprintf("%s|%s|%.5f,%.5f|%.5f,%.5f", provider, r.Method, r.Lat1, r.Lng1, r.Lat2, r.Lng2)
}

// validate rejects requests that no provider can answer.
func (r Request) validate() error {
	if !r.Method.Valid() {
		return fmt.Errorf("routing: unsupported method %q", r.Method)
	}
	if r.Lat1 < -90 || r.Lat1 > 90 || r.Lat2 < -90 || r.Lat2 > 90 {
		return fmt.Errorf("routing: latitude out of range")
	}
	if r.Lng1 < -180 || r.Lng1 > 180 || r.Lng2 < -180 || r.Lng2 > 180 {
		return fmt.Errorf("routing: longitude out of range")
	}
	return nil
}
