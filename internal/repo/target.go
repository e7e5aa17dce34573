package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/birdplan/backend/internal/domain"
)

// TargetRepo stores the imported species target lists of a trip, one per
// hotspot plus an optional trip-wide list with an empty HotspotID.
type TargetRepo interface {
	// Upsert replaces the list for (tripID, list.HotspotID).
	Upsert(ctx context.Context, tripID uuid.UUID, list domain.TargetList) (domain.TargetList, error)

	// ListByTrip returns every list of the trip ordered by hotspot id.
	ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.TargetList, error)

	// Get returns domain.ErrNotFound when the hotspot has no list.
	Get(ctx context.Context, tripID uuid.UUID, hotspotID string) (domain.TargetList, error)

	// Delete removes a hotspot's list. Deleting a missing list is not an error.
	Delete(ctx context.Context, tripID uuid.UUID, hotspotID string) error
}

type pgTargetRepo struct {
	db db
}

// NewTargetRepo constructs a TargetRepo backed by the provided db connection.
func NewTargetRepo(db db) TargetRepo {
	return &pgTargetRepo{db: db}
}

func (r *pgTargetRepo) Upsert(ctx context.Context, tripID uuid.UUID, list domain.TargetList) (domain.TargetList, error) {
	items, err := json.Marshal(nonNil(list.Items))
	if err != nil {
		return domain.TargetList{}, fmt.Errorf("repo.TargetRepo.Upsert: encode items: %w", err)
	}

	const q = `
		INSERT INTO target_lists (trip_id, hotspot_id, n, yr_n, items)
		VALUES (@trip_id, @hotspot_id, @n, @yr_n, @items)
		ON CONFLICT (trip_id, hotspot_id) DO UPDATE
		SET n          = EXCLUDED.n,
		    yr_n       = EXCLUDED.yr_n,
		    items      = EXCLUDED.items,
		    updated_at = now()
		RETURNING hotspot_id, n, yr_n, items`

	args := pgx.NamedArgs{
		"trip_id":    tripID,
		"hotspot_id": list.HotspotID,
		"n":          list.N,
		"yr_n":       list.YrN,
		"items":      items,
	}

	result, err := scanTargetList(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.TargetList{}, fmt.Errorf("repo.TargetRepo.Upsert: %w", err)
	}
	return result, nil
}

func (r *pgTargetRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.TargetList, error) {
	const q = `
		SELECT hotspot_id, n, yr_n, items
		FROM target_lists
		WHERE trip_id = @trip_id
		ORDER BY hotspot_id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("repo.TargetRepo.ListByTrip: %w", err)
	}
	defer rows.Close()

	lists := []domain.TargetList{}
	for rows.Next() {
		l, err := scanTargetList(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.TargetRepo.ListByTrip: scan: %w", err)
		}
		lists = append(lists, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TargetRepo.ListByTrip: rows: %w", err)
	}
	return lists, nil
}

func (r *pgTargetRepo) Get(ctx context.Context, tripID uuid.UUID, hotspotID string) (domain.TargetList, error) {
	const q = `
		SELECT hotspot_id, n, yr_n, items
		FROM target_lists
		WHERE trip_id = @trip_id AND hotspot_id = @hotspot_id`

	result, err := scanTargetList(r.db.QueryRow(ctx, q, pgx.NamedArgs{"trip_id": tripID, "hotspot_id": hotspotID}))
	if err != nil {
		return domain.TargetList{}, fmt.Errorf("repo.TargetRepo.Get: %w", err)
	}
	return result, nil
}

func (r *pgTargetRepo) Delete(ctx context.Context, tripID uuid.UUID, hotspotID string) error {
	const q = `DELETE FROM target_lists WHERE trip_id = @trip_id AND hotspot_id = @hotspot_id`

	if _, err := r.db.Exec(ctx, q, pgx.NamedArgs{"trip_id": tripID, "hotspot_id": hotspotID}); err != nil {
		return fmt.Errorf("repo.TargetRepo.Delete: %w", err)
	}
	return nil
}

func scanTargetList(s scanner) (domain.TargetList, error) {
	var (
		l   domain.TargetList
		raw []byte
	)
	if err := s.Scan(&l.HotspotID, &l.N, &l.YrN, &raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.TargetList{}, domain.ErrNotFound
		}
		return domain.TargetList{}, err
	}
	if err := json.Unmarshal(raw, &l.Items); err != nil {
		return domain.TargetList{}, fmt.Errorf("decode items: %w", err)
	}
	l.Items = nonNil(l.Items)
	return l, nil
}
