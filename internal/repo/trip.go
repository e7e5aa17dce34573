// Package repo contains all database access logic for the trip planner.
// Each aggregate has its own file with an interface and a Postgres implementation.
// No business logic lives here, only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/birdplan/backend/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Integration tests pass a transaction that is rolled back after each test.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TripRepo defines the persistence operations for trips.
// The trip is stored as one aggregate: hotspots, markers and the itinerary
// are written and read together.
type TripRepo interface {
	// Create inserts a new trip and returns it with id and timestamps set.
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// GetByID returns domain.ErrNotFound if no trip with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)

	// ListPaged returns one page of trips, newest first, and the total count.
	ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Trip, int64, error)

	// Update overwrites the whole aggregate. Returns domain.ErrNotFound if
	// no trip with that ID exists.
	Update(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// Delete removes a trip and its target lists.
	Delete(ctx context.Context, id uuid.UUID) error
}

// tripDocument is the jsonb column layout.
type tripDocument struct {
	Hotspots  []domain.Hotspot      `json:"hotspots"`
	Markers   []domain.CustomMarker `json:"markers"`
	Itinerary []domain.Day          `json:"itinerary"`
}

type pgTripRepo struct {
	db db
}

// NewTripRepo constructs a TripRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx.
func NewTripRepo(db db) TripRepo {
	return &pgTripRepo{db: db}
}

const tripColumns = `id, name, start_month, end_month, document, created_at, updated_at`

func (r *pgTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	doc, err := encodeDocument(trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", err)
	}

	q := `
		INSERT INTO trips (name, start_month, end_month, document)
		VALUES (@name, @start_month, @end_month, @document)
		RETURNING ` + tripColumns

	args := pgx.NamedArgs{
		"name":        trip.Name,
		"start_month": trip.StartMonth,
		"end_month":   trip.EndMonth,
		"document":    doc,
	}

	result, err := scanTrip(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	q := `SELECT ` + tripColumns + ` FROM trips WHERE id = @id`

	result, err := scanTrip(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgTripRepo) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	q := `
		SELECT ` + tripColumns + `, COUNT(*) OVER () AS total
		FROM trips
		ORDER BY created_at DESC, id
		LIMIT @limit OFFSET @offset`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"limit": p.Limit, "offset": p.Offset()})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListPaged: %w", err)
	}
	defer rows.Close()

	trips := []domain.Trip{}
	var total int64
	for rows.Next() {
		t, err := scanTripTotal(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.TripRepo.ListPaged: scan: %w", err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListPaged: rows: %w", err)
	}
	// An out-of-range page has no rows to carry the window count.
	if len(trips) == 0 && p.Page > 1 {
		if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM trips`).Scan(&total); err != nil {
			return nil, 0, fmt.Errorf("repo.TripRepo.ListPaged: count: %w", err)
		}
	}
	return trips, total, nil
}

func (r *pgTripRepo) Update(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	doc, err := encodeDocument(trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Update: %w", err)
	}

	q := `
		UPDATE trips
		SET name        = @name,
		    start_month = @start_month,
		    end_month   = @end_month,
		    document    = @document,
		    updated_at  = now()
		WHERE id = @id
		RETURNING ` + tripColumns

	args := pgx.NamedArgs{
		"id":          trip.ID,
		"name":        trip.Name,
		"start_month": trip.StartMonth,
		"end_month":   trip.EndMonth,
		"document":    doc,
	}

	result, err := scanTrip(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Update: %w", err)
	}
	return result, nil
}

func (r *pgTripRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM trips WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.TripRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TripRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func encodeDocument(t domain.Trip) ([]byte, error) {
	doc := tripDocument{Hotspots: t.Hotspots, Markers: t.Markers, Itinerary: t.Itinerary}
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return b, nil
}

func scanTrip(s scanner) (domain.Trip, error) {
	return scanTripTotal(s, nil)
}

// scanTripTotal maps a row into a domain.Trip. When total is non-nil the row
// carries a trailing window count.
func scanTripTotal(s scanner, total *int64) (domain.Trip, error) {
	var (
		t   domain.Trip
		id  pgtype.UUID
		raw []byte
	)

	dest := []any{&id, &t.Name, &t.StartMonth, &t.EndMonth, &raw, &t.CreatedAt, &t.UpdatedAt}
	if total != nil {
		dest = append(dest, total)
	}
	if err := s.Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Trip{}, domain.ErrNotFound
		}
		return domain.Trip{}, err
	}

	var doc tripDocument
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &doc); err != nil {
			return domain.Trip{}, fmt.Errorf("decode document: %w", err)
		}
	}
	t.ID = uuid.UUID(id.Bytes)
	t.Hotspots = nonNil(doc.Hotspots)
	t.Markers = nonNil(doc.Markers)
	t.Itinerary = nonNil(doc.Itinerary)
	return t, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
