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

// CalendarRepository implements the crop calendar reference lookup for
// PostgreSQL.
type CalendarRepository struct {
	db *pgxpool.Pool
}

// NewCalendarRepository creates a new CalendarRepository
func NewCalendarRepository(db *pgxpool.Pool) *CalendarRepository {
	return &CalendarRepository{db: db}
}

// GetEntry returns the expected bloom window for a crop and region. A
// missing row is a calendar lookup miss, not an error.
func (r *CalendarRepository) GetEntry(ctx context.Context, crop, region string) (domain.CropCalendarEntry, bool, error) {
	query := `
		SELECT crop, region, start_month, end_month, duration_days
		FROM crop_calendar
		WHERE crop = $1 AND region = $2
	`
	var entry domain.CropCalendarEntry
	var startMonth, endMonth int
	err := r.db.QueryRow(ctx, query, crop, region).Scan(
		&entry.Crop, &entry.Region, &startMonth, &endMonth, &entry.DurationDays)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.CropCalendarEntry{}, false, nil
		}
		return domain.CropCalendarEntry{}, false, fmt.Errorf("%w: %v", domain.ErrCalendarUnavailable, err)
	}
	entry.StartMonth = time.Month(startMonth)
	entry.EndMonth = time.Month(endMonth)
	return entry, true, nil
}
