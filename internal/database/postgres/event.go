package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridianfarm/bloomwatch/internal/domain"
)

// EventRepository implements bloom event persistence and baseline lookups
// for PostgreSQL.
type EventRepository struct {
	db *pgxpool.Pool
}

// NewEventRepository creates a new EventRepository
func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{db: db}
}

// InsertEvents persists one region's detections in a single transaction so
// each region's output commits independently of other regions.
func (r *EventRepository) InsertEvents(ctx context.Context, events []domain.BloomEvent) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO bloom_events
			(event_id, region, crop, detected, intensity, tier, anomalous,
			 centroid_lat, centroid_lon, source_tag, synthetic, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	for _, e := range events {
		if _, err := tx.Exec(ctx, query,
			e.ID, e.Region, e.Crop, e.Detected, e.Intensity, e.Tier, e.Anomalous,
			e.Centroid.Lat, e.Centroid.Lon, e.SourceTag, e.Synthetic, e.CreatedAt); err != nil {
			return fmt.Errorf("failed to insert bloom event: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// ListEvents returns the most recent events, newest first.
func (r *EventRepository) ListEvents(ctx context.Context, limit int) ([]domain.BloomEvent, error) {
	query := `
		SELECT event_id, region, crop, detected, intensity, tier, anomalous,
		       centroid_lat, centroid_lon, source_tag, synthetic, created_at
		FROM bloom_events
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list bloom events: %w", err)
	}
	defer rows.Close()

	var events []domain.BloomEvent
	for rows.Next() {
		var e domain.BloomEvent
		if err := rows.Scan(&e.ID, &e.Region, &e.Crop, &e.Detected, &e.Intensity, &e.Tier,
			&e.Anomalous, &e.Centroid.Lat, &e.Centroid.Lon, &e.SourceTag, &e.Synthetic, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan bloom event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read bloom events: %w", err)
	}
	return events, nil
}

// GetBaseline returns the multi-year mean for a region, layer and month.
func (r *EventRepository) GetBaseline(ctx context.Context, region string, layer domain.IndexLayer, month time.Month) (float64, error) {
	query := `
		SELECT mean_value
		FROM baselines
		WHERE region = $1 AND layer = $2 AND month = $3
	`
	var mean float64
	err := r.db.QueryRow(ctx, query, region, layer, int(month)).Scan(&mean)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("%w: no baseline for %s/%s/%s", domain.ErrInsufficientData, region, layer, month)
		}
		return 0, fmt.Errorf("failed to get baseline: %w", err)
	}
	return mean, nil
}
