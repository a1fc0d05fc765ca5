package raster

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/meridianfarm/bloomwatch/internal/domain"
)

// GridHandle is a lazily-loaded reference to one grid file in the catalog.
type GridHandle struct {
	Path      string
	SourceTag string
	Layer     domain.IndexLayer
	Date      time.Time
}

// Catalog is the read-only snapshot of available raster exports for one run.
// Layout on disk: <dir>/<source-tag>/<layer>_<YYYY-MM-DD>.asc
type Catalog struct {
	entries map[string][]GridHandle // key: sourceTag + "/" + layer
}

func catalogKey(tag string, layer domain.IndexLayer) string {
	return tag + "/" + string(layer)
}

// ScanDir builds a catalog snapshot from the raster export directory. A
// missing directory yields an empty catalog, not an error: the selector falls
// back to synthetic data per layer.
func ScanDir(dir string) (*Catalog, error) {
	c := &Catalog{entries: make(map[string][]GridHandle)}

	tags, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, fmt.Errorf("failed to read raster dir: %w", err)
	}

	for _, tagEntry := range tags {
		if !tagEntry.IsDir() {
			continue
		}
		tag := tagEntry.Name()
		files, err := os.ReadDir(filepath.Join(dir, tag))
		if err != nil {
			return nil, fmt.Errorf("failed to read source dir %s: %w", tag, err)
		}
		for _, f := range files {
			if f.IsDir() || !strings.HasSuffix(f.Name(), ".asc") {
				continue
			}
			layer, date, err := parseGridName(f.Name())
			if err != nil {
				// Skip files that do not follow the export naming scheme.
				continue
			}
			h := GridHandle{
				Path:      filepath.Join(dir, tag, f.Name()),
				SourceTag: tag,
				Layer:     layer,
				Date:      date,
			}
			key := catalogKey(tag, layer)
			c.entries[key] = append(c.entries[key], h)
		}
	}

	for key := range c.entries {
		hs := c.entries[key]
		sort.Slice(hs, func(i, j int) bool { return hs[i].Date.Before(hs[j].Date) })
	}

	return c, nil
}

// parseGridName splits "vegetation_2025-04-15.asc" into layer and date.
func parseGridName(name string) (domain.IndexLayer, time.Time, error) {
	base := strings.TrimSuffix(name, ".asc")
	idx := strings.LastIndex(base, "_")
	if idx < 0 {
		return "", time.Time{}, fmt.Errorf("%w: %s", domain.ErrInvalidGrid, name)
	}
	layer := domain.IndexLayer(base[:idx])
	switch layer {
	case domain.LayerVegetation, domain.LayerPigment, domain.LayerAnomaly:
	default:
		return "", time.Time{}, fmt.Errorf("%w: unknown layer in %s", domain.ErrInvalidGrid, name)
	}
	date, err := time.Parse("2006-01-02", base[idx+1:])
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: bad date in %s", domain.ErrInvalidGrid, name)
	}
	return layer, date.UTC(), nil
}

// Handles returns the date-ordered grid handles for a source tag and layer.
func (c *Catalog) Handles(tag string, layer domain.IndexLayer) []GridHandle {
	return c.entries[catalogKey(tag, layer)]
}

// SourceTags returns the distinct source tags present in the catalog.
func (c *Catalog) SourceTags() []string {
	seen := make(map[string]bool)
	var tags []string
	for key := range c.entries {
		tag := strings.SplitN(key, "/", 2)[0]
		if !seen[tag] {
			seen[tag] = true
			tags = append(tags, tag)
		}
	}
	sort.Strings(tags)
	return tags
}

// Empty reports whether the catalog has no grids at all.
func (c *Catalog) Empty() bool {
	return len(c.entries) == 0
}
