package domain

import "time"

// IndexLayer identifies which scalar index a raster carries.
type IndexLayer string

const (
	LayerVegetation IndexLayer = "vegetation"
	LayerPigment    IndexLayer = "pigment"
	LayerAnomaly    IndexLayer = "anomaly"
)

// VegetationRaster is one analysis-ready scalar grid. Immutable once loaded;
// owned by the raster catalog.
type VegetationRaster struct {
	SourceTag string
	Layer     IndexLayer
	Date      time.Time
	Bounds    Bounds
	CellSize  float64 // degrees per cell
	NoData    float64
	Values    [][]float64
	Synthetic bool
}

// Rows returns the grid height.
func (r *VegetationRaster) Rows() int { return len(r.Values) }

// Cols returns the grid width, zero for an empty grid.
func (r *VegetationRaster) Cols() int {
	if len(r.Values) == 0 {
		return 0
	}
	return len(r.Values[0])
}
