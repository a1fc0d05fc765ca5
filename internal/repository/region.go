package repository

import (
	"context"

	"github.com/meridianfarm/bloomwatch/internal/domain"
)

// Region defines read access to the monitored region reference table.
type Region interface {
	ListRegions(ctx context.Context) ([]domain.Region, error)
}
