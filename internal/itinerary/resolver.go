package itinerary

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/birdplan/backend/internal/domain"
	"github.com/birdplan/backend/internal/metrics"
	"github.com/birdplan/backend/internal/routing"
)

// Router is the routing collaborator the resolver calls for edges it cannot
// derive from the itinerary itself.
type Router interface {
	TravelTime(ctx context.Context, req routing.Request) (routing.Result, error)
}

// DefaultConcurrency bounds how many stops of one day are routed at once.
const DefaultConcurrency = 4

// Resolver fills in travel edges for one day of a trip.
// It keeps no state between calls and is safe for concurrent use.
type Resolver struct {
	router      Router
	log         *slog.Logger
	concurrency int
}

// NewResolver constructs a Resolver. A concurrency below 1 means DefaultConcurrency.
func NewResolver(router Router, log *slog.Logger, concurrency int) *Resolver {
	if log == nil {
		log = slog.Default()
	}
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	return &Resolver{router: router, log: log, concurrency: concurrency}
}

// edgeKey identifies a reusable edge anywhere in the itinerary.
type edgeKey struct {
	from, to string
	method   domain.TravelMethod
}

// stopResult is the outcome of resolving one stop. A nil edge with a nil
// error means "nothing to change".
type stopResult struct {
	edge    *domain.TravelEdge
	err     error
	outcome string
}

// RecomputeDay returns a copy of day in which every stop after the first has
// an up-to-date travel edge where one can be determined.
//
// Edges are taken, in order of preference, from: a zero-cost edge when two
// consecutive stops share a location; an identical edge already computed
// anywhere in the itinerary; the router. A stop whose routing fails keeps
// the edge it had. A nil trip returns day unchanged.
func (r *Resolver) RecomputeDay(ctx context.Context, trip *domain.Trip, day domain.Day) domain.Day {
	if trip == nil {
		r.log.WarnContext(ctx, "recompute day travel: trip is nil", "day_id", day.ID)
		return day
	}
	if len(day.Locations) < 2 {
		return domain.Day{ID: day.ID, Notes: day.Notes, Locations: DropStaleTravel(day.Locations)}
	}

	locations := DropStaleTravel(day.Locations)
	known := reusableEdges(trip, day.ID, locations)

	results := make([]stopResult, len(locations))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i := 1; i < len(locations); i++ {
		g.Go(func() error {
			results[i] = r.resolveStop(gctx, trip, locations, i, known)
			return nil
		})
	}
	// resolveStop never returns an error through the group.
	_ = g.Wait()

	out := domain.Day{ID: day.ID, Notes: day.Notes, Locations: locations}
	for i, res := range results {
		if res.outcome != "" {
			metrics.TravelEdgesResolved.WithLabelValues(res.outcome).Inc()
		}
		if res.err != nil {
			r.log.WarnContext(ctx, "travel edge not resolved, keeping previous value",
				"day_id", day.ID,
				"stop_id", locations[i].ID,
				"location_id", locations[i].LocationID,
				"error", res.err,
			)
			continue
		}
		if res.edge != nil {
			out.Locations[i].Travel = res.edge
		}
	}
	return out
}

// resolveStop determines the edge arriving at locations[i].
// It only reads from locations and known.
func (r *Resolver) resolveStop(
	ctx context.Context,
	trip *domain.Trip,
	locations []domain.Stop,
	i int,
	known map[edgeKey]domain.TravelEdge,
) stopResult {
	prev, cur := locations[i-1], locations[i]
	if prev.LocationID == "" || cur.LocationID == "" {
		return stopResult{outcome: "skipped"}
	}
	if cur.Travel != nil && cur.Travel.IsDeleted {
		return stopResult{outcome: "skipped"}
	}

	method := domain.DefaultTravelMethod
	if cur.Travel != nil && cur.Travel.Method != "" {
		method = cur.Travel.Method
	} else if m, ok := MostFrequentMethod(locations, cur.ID); ok {
		method = m
	}

	if prev.LocationID == cur.LocationID {
		return stopResult{
			edge:    &domain.TravelEdge{Method: method, LocationID: prev.LocationID},
			outcome: "same_location",
		}
	}

	if e, ok := known[edgeKey{from: prev.LocationID, to: cur.LocationID, method: method}]; ok {
		return stopResult{
			edge: &domain.TravelEdge{
				Method:     method,
				Time:       e.Time,
				Distance:   e.Distance,
				LocationID: prev.LocationID,
			},
			outcome: "reused",
		}
	}

	lat1, lng1, ok1 := trip.Coordinates(prev.LocationID)
	lat2, lng2, ok2 := trip.Coordinates(cur.LocationID)
	if !ok1 || !ok2 {
		return stopResult{outcome: "unresolvable"}
	}
	if r.router == nil {
		return stopResult{outcome: "skipped"}
	}

	res, err := r.router.TravelTime(ctx, routing.Request{
		Method: method,
		Lat1:   lat1,
		Lng1:   lng1,
		Lat2:   lat2,
		Lng2:   lng2,
	})
	if err != nil {
		return stopResult{err: err, outcome: "failed"}
	}
	if res.Empty() {
		return stopResult{err: routing.ErrEmptyRoute, outcome: "failed"}
	}

	return stopResult{
		edge: &domain.TravelEdge{
			Method:     method,
			Time:       res.Time,
			Distance:   res.Distance,
			LocationID: prev.LocationID,
		},
		outcome: "routed",
	}
}

// reusableEdges indexes every resolved edge of the itinerary by
// (from, to, method). The day being recomputed contributes its current
// locations rather than the copy stored on the trip. The first edge found
// for a key wins.
func reusableEdges(trip *domain.Trip, dayID string, current []domain.Stop) map[edgeKey]domain.TravelEdge {
	known := make(map[edgeKey]domain.TravelEdge)
	add := func(locations []domain.Stop) {
		for i, s := range locations {
			if i == 0 || !s.Travel.Resolved() {
				continue
			}
			k := edgeKey{from: s.Travel.LocationID, to: s.LocationID, method: s.Travel.Method}
			if _, ok := known[k]; !ok {
				known[k] = *s.Travel
			}
		}
	}

	seenCurrent := false
	for _, d := range trip.Itinerary {
		if d.ID == dayID {
			add(current)
			seenCurrent = true
			continue
		}
		add(d.Locations)
	}
	if !seenCurrent {
		add(current)
	}
	return known
}
