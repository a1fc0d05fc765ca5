package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridianfarm/bloomwatch/internal/domain"
)

// GrowerRepository implements read access to the grower registry for
// PostgreSQL. The engine never writes to this table.
type GrowerRepository struct {
	db *pgxpool.Pool
}

// NewGrowerRepository creates a new GrowerRepository
func NewGrowerRepository(db *pgxpool.Pool) *GrowerRepository {
	return &GrowerRepository{db: db}
}

// ListGrowers returns the full registry snapshot for one run. Any failure is
// wrapped as ErrRegistryUnavailable so the engine can degrade to
// detection-only mode.
func (r *GrowerRepository) ListGrowers(ctx context.Context) ([]domain.Grower, error) {
	query := `
		SELECT grower_id, name, lat, lon, crops, radius_km, channels, language, phone, discord
		FROM growers
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRegistryUnavailable, err)
	}
	defer rows.Close()

	var growers []domain.Grower
	for rows.Next() {
		var g domain.Grower
		if err := rows.Scan(&g.ID, &g.Name, &g.Location.Lat, &g.Location.Lon,
			&g.Crops, &g.RadiusKm, &g.Channels, &g.Language, &g.Phone, &g.Discord); err != nil {
			return nil, fmt.Errorf("%w: failed to scan grower: %v", domain.ErrRegistryUnavailable, err)
		}
		growers = append(growers, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRegistryUnavailable, err)
	}

	return growers, nil
}
