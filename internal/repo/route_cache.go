package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/birdplan/backend/internal/routing"
)

// RouteCache persists routing answers across trips and restarts.
// It satisfies routing.Cache.
type RouteCache struct {
	db db
}

// NewRouteCache constructs a RouteCache backed by the provided db connection.
func NewRouteCache(db db) *RouteCache {
	return &RouteCache{db: db}
}

var _ routing.Cache = (*RouteCache)(nil)

// GetRoute returns ok=false when key is not cached.
func (c *RouteCache) GetRoute(ctx context.Context, key string) (routing.Result, bool, error) {
	const q = `
		SELECT distance_meters, duration_seconds
		FROM route_cache
		WHERE key = @key`

	var res routing.Result
	err := c.db.QueryRow(ctx, q, pgx.NamedArgs{"key": key}).Scan(&res.Distance, &res.Time)
	if errors.Is(err, pgx.ErrNoRows) {
		return routing.Result{}, false, nil
	}
	if err != nil {
		return routing.Result{}, false, fmt.Errorf("repo.RouteCache.GetRoute: %w", err)
	}
	return res, true, nil
}

// PutRoute stores res under key, replacing any earlier answer.
func (c *RouteCache) PutRoute(ctx context.Context, key string, res routing.Result) error {
	const q = `
		INSERT INTO route_cache (key, distance_meters, duration_seconds)
		VALUES (@key, @distance, @duration)
		ON CONFLICT (key) DO UPDATE
		SET distance_meters  = EXCLUDED.distance_meters,
		    duration_seconds = EXCLUDED.duration_seconds,
		    created_at       = now()`

	args := pgx.NamedArgs{"key": key, "distance": res.Distance, "duration": res.Time}
	if _, err := c.db.Exec(ctx, q, args); err != nil {
		return fmt.Errorf("repo.RouteCache.PutRoute: %w", err)
	}
	return nil
}
