package raster

import (
	"time"

	"github.com/meridianfarm/bloomwatch/internal/domain"
)

// Default per-layer source priorities, best first. First available wins; no
// blending across sources within one run.
var defaultPriorities = map[domain.IndexLayer][]string{
	domain.LayerVegetation: {"high-res-5day", "coarse-16day", "daily-lowres"},
	domain.LayerPigment:    {"high-res-5day", "coarse-16day"},
	domain.LayerAnomaly:    {"coarse-16day", "daily-lowres"},
}

// syntheticPeriods is the stack depth generated when falling back.
const syntheticPeriods = 12

// Selection is the outcome of source selection for one layer and region.
// Real selections carry handles to be loaded; synthetic selections carry the
// generated rasters directly.
type Selection struct {
	SourceTag string
	Layer     domain.IndexLayer
	Synthetic bool
	Handles   []GridHandle
	Rasters   []*domain.VegetationRaster
}

// Selector picks the best-available source per layer. Pure: no I/O, no state
// beyond the priority table.
type Selector struct {
	priorities map[domain.IndexLayer][]string
}

// NewSelector creates a selector with the default priority lists.
func NewSelector() *Selector {
	return &Selector{priorities: defaultPriorities}
}

// NewSelectorWithPriorities creates a selector with explicit priority lists,
// falling back to the defaults for layers not present in the map.
func NewSelectorWithPriorities(priorities map[domain.IndexLayer][]string) *Selector {
	merged := make(map[domain.IndexLayer][]string, len(defaultPriorities))
	for layer, tags := range defaultPriorities {
		merged[layer] = tags
	}
	for layer, tags := range priorities {
		merged[layer] = tags
	}
	return &Selector{priorities: merged}
}

// Select returns the highest-priority available source for the layer, or a
// synthetic fallback when no listed source has grids. It fails with
// SourceUnavailable only when the synthetic generator cannot construct either.
func (s *Selector) Select(catalog *Catalog, layer domain.IndexLayer, region domain.Region, asOf time.Time) (Selection, error) {
	for _, tag := range s.priorities[layer] {
		handles := catalog.Handles(tag, layer)
		if len(handles) > 0 {
			return Selection{SourceTag: tag, Layer: layer, Handles: handles}, nil
		}
	}

	gen := NewSyntheticGenerator(region, layer, asOf)
	rasters, err := gen.Rasters(syntheticPeriods)
	if err != nil {
		return Selection{}, err
	}
	return Selection{
		SourceTag: SyntheticTag,
		Layer:     layer,
		Synthetic: true,
		Rasters:   rasters,
	}, nil
}
