package domain

// LatLon is a WGS84 geographic point.
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Bounds is an axis-aligned geographic bounding box.
type Bounds struct {
	MinLat float64 `json:"minLat"`
	MinLon float64 `json:"minLon"`
	MaxLat float64 `json:"maxLat"`
	MaxLon float64 `json:"maxLon"`
}

// Contains reports whether the point lies inside the box (inclusive edges).
func (b Bounds) Contains(p LatLon) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat &&
		p.Lon >= b.MinLon && p.Lon <= b.MaxLon
}

// Center returns the geometric center of the box.
func (b Bounds) Center() LatLon {
	return LatLon{
		Lat: (b.MinLat + b.MaxLat) / 2,
		Lon: (b.MinLon + b.MaxLon) / 2,
	}
}

// Region is one monitored agricultural area. Regions are reference data and
// never mutated during a run.
type Region struct {
	Name   string `json:"name"`
	Crop   string `json:"crop"`
	Bounds Bounds `json:"bounds"`
}

// Centroid returns the point used for grower distance checks.
func (r Region) Centroid() LatLon {
	return r.Bounds.Center()
}
