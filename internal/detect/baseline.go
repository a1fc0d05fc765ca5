package detect

import (
	"context"
	"errors"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/meridianfarm/bloomwatch/internal/domain"
)

// BaselineProvider supplies the multi-year mean index value for a region and
// calendar period. The second return reports whether a baseline exists;
// detection proceeds without the anomaly gate when it does not.
type BaselineProvider interface {
	Baseline(ctx context.Context, region string, layer domain.IndexLayer, month time.Month) (float64, bool, error)
}

// BaselineStore is the persistence-facing subset the cached provider wraps.
type BaselineStore interface {
	GetBaseline(ctx context.Context, region string, layer domain.IndexLayer, month time.Month) (float64, error)
}

const baselineCacheSize = 512

// CachedBaseline memoizes baseline lookups for the duration of the process.
// Baselines are reference data and change at most between seasons, so a
// plain LRU in front of the store is sufficient.
type CachedBaseline struct {
	store BaselineStore
	cache *lru.Cache[string, float64]
}

// NewCachedBaseline wraps a store with an LRU cache.
func NewCachedBaseline(store BaselineStore) (*CachedBaseline, error) {
	cache, err := lru.New[string, float64](baselineCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create baseline cache: %w", err)
	}
	return &CachedBaseline{store: store, cache: cache}, nil
}

// Baseline returns the cached baseline, hitting the store on a miss. A store
// miss (no baseline recorded) is cached as absent implicitly by returning
// found=false without caching, so a later backfill is picked up.
func (c *CachedBaseline) Baseline(ctx context.Context, region string, layer domain.IndexLayer, month time.Month) (float64, bool, error) {
	key := fmt.Sprintf("%s/%s/%d", region, layer, month)
	if v, ok := c.cache.Get(key); ok {
		return v, true, nil
	}

	v, err := c.store.GetBaseline(ctx, region, layer, month)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientData) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("baseline lookup failed: %w", err)
	}
	c.cache.Add(key, v)
	return v, true, nil
}
