// Package metrics declares the Prometheus collectors exported at /metrics.
// Collectors register themselves with the default registry on package init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TravelEdgesResolved counts per-stop outcomes of a day recomputation.
	// outcome: same_location, reused, routed, failed, unresolvable, skipped.
	TravelEdgesResolved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travel_edges_resolved_total",
			Help: "Per-stop outcomes of itinerary travel recomputation",
		},
		[]string{"outcome"},
	)

	// RoutingRequests counts calls to the routing provider by method and result.
	RoutingRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "routing_requests_total",
			Help: "Total routing provider requests",
		},
		[]string{"provider", "method", "result"},
	)

	RoutingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "routing_request_duration_seconds",
			Help:    "Routing provider latency in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"provider"},
	)

	RouteCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "route_cache_hits_total",
			Help: "Routing requests answered from the persistent route cache",
		},
	)

	RouteCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "route_cache_misses_total",
			Help: "Routing requests not found in the persistent route cache",
		},
	)

	// CircuitBreakerState is 0=closed, 1=half-open, 2=open.
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Current circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)
)

var (
	// HTTPRequests counts served requests by chi route pattern.
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)
