package repository

import (
	"context"
	"time"

	"github.com/meridianfarm/bloomwatch/internal/domain"
)

// Event defines persistence for detected bloom events and the multi-year
// baseline reference used by the anomaly gate.
type Event interface {
	// InsertEvents persists the events detected for one region. Each
	// region's output is independently committable.
	InsertEvents(ctx context.Context, events []domain.BloomEvent) error

	// ListEvents returns the most recent events for reporting, newest first.
	ListEvents(ctx context.Context, limit int) ([]domain.BloomEvent, error)

	// GetBaseline returns the multi-year mean index value for a region,
	// layer and calendar month. Returns domain.ErrInsufficientData when no
	// baseline has been recorded.
	GetBaseline(ctx context.Context, region string, layer domain.IndexLayer, month time.Month) (float64, error)
}
