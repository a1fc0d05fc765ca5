package domain

import "time"

// SeriesPoint is one (timestamp, spatial aggregate) observation.
type SeriesPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// RegionTimeSeries is the per-region, per-layer scalar series derived from a
// raster stack. Recomputed each run; never persisted.
type RegionTimeSeries struct {
	Region    string        `json:"region"`
	Layer     IndexLayer    `json:"layer"`
	SourceTag string        `json:"sourceTag"`
	Synthetic bool          `json:"synthetic"`
	Points    []SeriesPoint `json:"points"`
}

// Values returns the ordered scalar values of the series.
func (s RegionTimeSeries) Values() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Value
	}
	return out
}

// ValueAt returns the value whose timestamp falls in the same calendar period
// (year+month+day match) as t, or false when no point is co-temporal.
func (s RegionTimeSeries) ValueAt(t time.Time) (float64, bool) {
	for _, p := range s.Points {
		if sameDay(p.Date, t) {
			return p.Value, true
		}
	}
	return 0, false
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
