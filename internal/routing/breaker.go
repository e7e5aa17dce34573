package routing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/birdplan/backend/internal/metrics"
)

// BreakerSettings tunes GuardedRouter. Zero values take the defaults.
type BreakerSettings struct {
	Name string
	// RatePerSec and Burst bound calls to the wrapped router. RatePerSec <= 0
	// disables the limiter.
	RatePerSec float64
	Burst      int
	// MinRequests and FailureRatio decide when the breaker opens.
	MinRequests  uint32
	FailureRatio float64
	// OpenTimeout is how long the breaker stays open before probing.
	OpenTimeout time.Duration
}

func (s BreakerSettings) withDefaults() BreakerSettings {
	if s.Name == "" {
		s.Name = "routing"
	}
	if s.Burst < 1 {
		s.Burst = 1
	}
	if s.MinRequests == 0 {
		s.MinRequests = 10
	}
	if s.FailureRatio <= 0 {
		s.FailureRatio = 0.6
	}
	if s.OpenTimeout <= 0 {
		s.OpenTimeout = time.Minute
	}
	return s
}

// GuardedRouter puts a rate limiter and a circuit breaker in front of
// another Router. An open breaker fails fast instead of calling next.
type GuardedRouter struct {
	next    Router
	limiter *rate.Limiter
	cb      *gobreaker.CircuitBreaker[Result]
	name    string
	logger  *slog.Logger
}

// NewGuardedRouter wraps next.
func NewGuardedRouter(next Router, settings BreakerSettings, logger *slog.Logger) *GuardedRouter {
	s := settings.withDefaults()
	if logger == nil {
		logger = slog.Default()
	}

	g := &GuardedRouter{next: next, name: s.Name, logger: logger}
	if s.RatePerSec > 0 {
		g.limiter = rate.NewLimiter(rate.Limit(s.RatePerSec), s.Burst)
	}

	metrics.CircuitBreakerState.WithLabelValues(s.Name).Set(0)
	g.cb = gobreaker.NewCircuitBreaker[Result](gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < s.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= s.FailureRatio
		},
		// Bad requests and caller cancellation say nothing about provider health.
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, ErrEmptyRoute) ||
				errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("routing circuit breaker state change",
				"name", name,
				"from", stateToString(from),
				"to", stateToString(to),
			)
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, stateToString(from), stateToString(to)).Inc()
		},
	})
	return g
}

// TravelTime waits for the limiter, then calls next through the breaker.
func (g *GuardedRouter) TravelTime(ctx context.Context, req Request) (Result, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return Result{}, fmt.Errorf("routing.guard: rate limit: %w", err)
		}
	}
	res, err := g.cb.Execute(func() (Result, error) {
		return g.next.TravelTime(ctx, req)
	})
	if err != nil {
		return Result{}, fmt.Errorf("routing.guard: %w", err)
	}
	return res, nil
}

// State reports the breaker state as closed, half-open or open.
func (g *GuardedRouter) State() string {
	return stateToString(g.cb.State())
}

func stateToString(s gobreaker.State) string {
	switch s {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
