package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridianfarm/bloomwatch/internal/domain"
)

// RegionRepository implements read access to the monitored region table for
// PostgreSQL.
type RegionRepository struct {
	db *pgxpool.Pool
}

// NewRegionRepository creates a new RegionRepository
func NewRegionRepository(db *pgxpool.Pool) *RegionRepository {
	return &RegionRepository{db: db}
}

// ListRegions returns all monitored regions.
func (r *RegionRepository) ListRegions(ctx context.Context) ([]domain.Region, error) {
	query := `
		SELECT name, crop, min_lat, min_lon, max_lat, max_lon
		FROM regions
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list regions: %w", err)
	}
	defer rows.Close()

	var regions []domain.Region
	for rows.Next() {
		var reg domain.Region
		if err := rows.Scan(&reg.Name, &reg.Crop,
			&reg.Bounds.MinLat, &reg.Bounds.MinLon, &reg.Bounds.MaxLat, &reg.Bounds.MaxLon); err != nil {
			return nil, fmt.Errorf("failed to scan region: %w", err)
		}
		regions = append(regions, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read regions: %w", err)
	}
	return regions, nil
}
