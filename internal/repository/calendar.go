package repository

import (
	"context"

	"github.com/meridianfarm/bloomwatch/internal/domain"
)

// Calendar defines read access to the crop calendar reference table.
type Calendar interface {
	// GetEntry returns the expected bloom window for a crop and region. The
	// boolean reports existence; a miss is not an error.
	GetEntry(ctx context.Context, crop, region string) (domain.CropCalendarEntry, bool, error)
}
