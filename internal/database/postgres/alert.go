package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridianfarm/bloomwatch/internal/domain"
)

// pgUniqueViolation is the PostgreSQL error code for unique constraint
// violations.
const pgUniqueViolation = "23505"

// AlertRepository implements the append-only alert record log for
// PostgreSQL.
type AlertRepository struct {
	db *pgxpool.Pool
}

// NewAlertRepository creates a new AlertRepository
func NewAlertRepository(db *pgxpool.Pool) *AlertRepository {
	return &AlertRepository{db: db}
}

// InsertRecord appends one delivery outcome. The partial unique index on
// terminal records makes concurrent writers conflict-free: the losing insert
// surfaces as ErrDuplicateAlert and the caller treats the alert as already
// delivered.
func (r *AlertRepository) InsertRecord(ctx context.Context, record domain.AlertRecord) error {
	query := `
		INSERT INTO alert_records
			(record_id, grower_id, event_id, region, crop, bloom_month, channel, status, attempts, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.Exec(ctx, query,
		record.ID, record.GrowerID, record.EventID,
		record.Region, record.Crop, record.Month,
		record.Channel, record.Status, record.Attempts, record.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return fmt.Errorf("%w: grower %s, event %s", domain.ErrDuplicateAlert, record.GrowerID, record.EventID)
		}
		return fmt.Errorf("failed to insert alert record: %w", err)
	}
	return nil
}

// ListTerminal returns all sent and demo records for the run's dedup index.
func (r *AlertRepository) ListTerminal(ctx context.Context) ([]domain.AlertRecord, error) {
	query := `
		SELECT record_id, grower_id, event_id, region, crop, bloom_month, channel, status, attempts, created_at
		FROM alert_records
		WHERE status IN ('sent', 'demo')
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list terminal records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// ListRecords returns the most recent records, newest first.
func (r *AlertRepository) ListRecords(ctx context.Context, limit int) ([]domain.AlertRecord, error) {
	query := `
		SELECT record_id, grower_id, event_id, region, crop, bloom_month, channel, status, attempts, created_at
		FROM alert_records
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list alert records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

type pgxRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanRecords(rows pgxRows) ([]domain.AlertRecord, error) {
	var records []domain.AlertRecord
	for rows.Next() {
		var rec domain.AlertRecord
		if err := rows.Scan(&rec.ID, &rec.GrowerID, &rec.EventID,
			&rec.Region, &rec.Crop, &rec.Month,
			&rec.Channel, &rec.Status, &rec.Attempts, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan alert record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read alert records: %w", err)
	}
	return records, nil
}
