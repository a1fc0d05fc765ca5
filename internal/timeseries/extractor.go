package timeseries

import (
	"math"
	"sort"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/meridianfarm/bloomwatch/internal/domain"
)

// DefaultMinValidFraction is the minimum share of valid pixels required to
// keep a timestamp. Below this the aggregate would be driven by partial
// coverage and produce spurious peaks.
const DefaultMinValidFraction = 0.10

// Extractor reduces a raster stack to one scalar time series per region.
type Extractor struct {
	minValidFraction float64
}

// NewExtractor creates an extractor. A non-positive fraction falls back to
// the default.
func NewExtractor(minValidFraction float64) *Extractor {
	if minValidFraction <= 0 {
		minValidFraction = DefaultMinValidFraction
	}
	return &Extractor{minValidFraction: minValidFraction}
}

// Extract computes the regional mean for each raster in the stack. Rasters
// sharing a calendar day are merged by keeping the most recent capture; no
// temporal interpolation is performed. Timestamps with too few valid pixels
// are dropped entirely. Values are not clamped: out-of-range values pass
// through and are handled by the detector's smoothing.
func (e *Extractor) Extract(region domain.Region, rasters []*domain.VegetationRaster) domain.RegionTimeSeries {
	series := domain.RegionTimeSeries{Region: region.Name}
	if len(rasters) == 0 {
		return series
	}
	series.Layer = rasters[0].Layer
	series.SourceTag = rasters[0].SourceTag
	series.Synthetic = rasters[0].Synthetic

	// Most recent capture wins per calendar day.
	byDay := make(map[string]*domain.VegetationRaster)
	for _, r := range rasters {
		key := r.Date.UTC().Format(time.DateOnly)
		byDay[key] = r
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)

	for _, day := range days {
		r := byDay[day]
		if mean, ok := e.regionalMean(region, r); ok {
			series.Points = append(series.Points, domain.SeriesPoint{Date: r.Date.UTC(), Value: mean})
		}
	}
	return series
}

// regionalMean averages valid pixels whose cell center falls inside the
// region footprint. Returns false when fewer than the minimum fraction of
// considered pixels are valid.
func (e *Extractor) regionalMean(region domain.Region, r *domain.VegetationRaster) (float64, bool) {
	var valid []float64
	considered := 0

	rows, cols := r.Rows(), r.Cols()
	for i := 0; i < rows; i++ {
		// Row 0 is the northern edge of the grid.
		lat := r.Bounds.MaxLat - (float64(i)+0.5)*r.CellSize
		for j := 0; j < cols; j++ {
			lon := r.Bounds.MinLon + (float64(j)+0.5)*r.CellSize
			if !region.Bounds.Contains(domain.LatLon{Lat: lat, Lon: lon}) {
				continue
			}
			considered++
			v := r.Values[i][j]
			if math.IsNaN(v) || v == r.NoData {
				continue
			}
			valid = append(valid, v)
		}
	}

	if considered == 0 || float64(len(valid))/float64(considered) < e.minValidFraction {
		return 0, false
	}
	mean, err := stats.Mean(valid)
	if err != nil {
		return 0, false
	}
	return mean, true
}
