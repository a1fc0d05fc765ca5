package repository

import (
	"context"

	"github.com/meridianfarm/bloomwatch/internal/domain"
)

// Alert defines the append-only alert record log.
type Alert interface {
	// InsertRecord appends one delivery outcome. Terminal records use an
	// insert-if-absent write keyed by (grower, region, crop, month) so
	// concurrent region workers are naturally conflict-free; a conflicting
	// terminal insert returns domain.ErrDuplicateAlert.
	InsertRecord(ctx context.Context, record domain.AlertRecord) error

	// ListTerminal returns all records whose status satisfies the dedup
	// invariant (sent or demo), for building the per-run sent index.
	ListTerminal(ctx context.Context) ([]domain.AlertRecord, error)

	// ListRecords returns the most recent records for reporting, newest
	// first.
	ListRecords(ctx context.Context, limit int) ([]domain.AlertRecord, error)
}
