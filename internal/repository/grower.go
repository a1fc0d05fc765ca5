package repository

import (
	"context"

	"github.com/meridianfarm/bloomwatch/internal/domain"
)

// Grower defines read access to the grower registry. The registry is owned
// by the registration collaborator; the engine never mutates it. A total
// read failure maps to domain.ErrRegistryUnavailable.
type Grower interface {
	ListGrowers(ctx context.Context) ([]domain.Grower, error)
}
