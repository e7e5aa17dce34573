package routing

import (
	"context"
	"errors"
	"log/slog"

	"github.com/birdplan/backend/internal/metrics"
)

// Cache stores resolved routes by request key.
type Cache interface {
	GetRoute(ctx context.Context, key string) (Result, bool, error)
	PutRoute(ctx context.Context, key string, res Result) error
}

// CachedRouter answers from a persistent cache and fills it on misses.
// Entries are scoped to the provider that produced them, so estimates never
// stand in for real routes after the provider changes.
// Cache failures are logged and never fail the request.
type CachedRouter struct {
	next     Router
	provider string
	cache    Cache
	logger   *slog.Logger
}

// NewCachedRouter wraps next, whose answers are stored under provider.
func NewCachedRouter(next Router, provider string, cache Cache, logger *slog.Logger) (*CachedRouter, error) {
	if provider == "" {
		return nil, errors.New("routing: cached router needs a provider name")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedRouter{next: next, provider: provider, cache: cache, logger: logger}, nil
}

// TravelTime returns the cached result when present, otherwise calls next
// and stores a non-empty answer.
func (c *CachedRouter) TravelTime(ctx context.Context, req Request) (Result, error) {
	if err := req.validate(); err != nil {
		return Result{}, err
	}
	key := req.key(c.provider)

	res, ok, err := c.cache.GetRoute(ctx, key)
	switch {
	case err != nil:
		c.logger.WarnContext(ctx, "route cache read failed", "key", key, "error", err)
	case ok && !res.Empty():
		metrics.RouteCacheHits.Inc()
		return res, nil
	}
	metrics.RouteCacheMisses.Inc()

	res, err = c.next.TravelTime(ctx, req)
	if err != nil {
		return Result{}, err
	}
	if res.Empty() {
		return Result{}, ErrEmptyRoute
	}
	if err := c.cache.PutRoute(ctx, key, res); err != nil {
		c.logger.WarnContext(ctx, "route cache write failed", "key", key, "error", err)
	}
	return res, nil
}
