package raster

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/meridianfarm/bloomwatch/internal/domain"
)

// Loader reads ESRI-style ASCII grid files into VegetationRaster values.
// Loading is the only raster I/O in the engine and honors the caller's
// context so a slow export mount cannot stall a run.
type Loader struct{}

// NewLoader creates a grid file loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads one grid file. The header carries the geographic bounds and the
// no-data sentinel; the body is one row of values per line, north to south.
func (l *Loader) Load(ctx context.Context, h GridHandle) (*domain.VegetationRaster, error) {
	f, err := os.Open(h.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrGridNotFound, h.Path)
		}
		return nil, fmt.Errorf("failed to open grid %s: %w", h.Path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	header := map[string]float64{}
	var rows [][]float64

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("grid load cancelled: %w", err)
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)

		// Header lines are "key value" pairs; the body starts at the first
		// line whose leading token parses as a number.
		if len(fields) == 2 && !isNumeric(fields[0]) {
			v, err := strconv.ParseFloat(fields[1], 64)
			if err != nil {
				return nil, fmt.Errorf("%w: header %q in %s", domain.ErrInvalidGrid, line, h.Path)
			}
			header[strings.ToLower(fields[0])] = v
			continue
		}

		row := make([]float64, len(fields))
		for i, fv := range fields {
			v, err := strconv.ParseFloat(fv, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: value %q in %s", domain.ErrInvalidGrid, fv, h.Path)
			}
			row[i] = v
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read grid %s: %w", h.Path, err)
	}

	ncols, nrows := int(header["ncols"]), int(header["nrows"])
	cellSize := header["cellsize"]
	if ncols == 0 || nrows == 0 || cellSize == 0 {
		return nil, fmt.Errorf("%w: missing header fields in %s", domain.ErrInvalidGrid, h.Path)
	}
	if len(rows) != nrows {
		return nil, fmt.Errorf("%w: expected %d rows, got %d in %s", domain.ErrInvalidGrid, nrows, len(rows), h.Path)
	}
	for _, row := range rows {
		if len(row) != ncols {
			return nil, fmt.Errorf("%w: ragged row in %s", domain.ErrInvalidGrid, h.Path)
		}
	}

	noData := header["nodata_value"]
	minLon := header["xllcorner"]
	minLat := header["yllcorner"]

	return &domain.VegetationRaster{
		SourceTag: h.SourceTag,
		Layer:     h.Layer,
		Date:      h.Date,
		CellSize:  cellSize,
		NoData:    noData,
		Values:    rows,
		Bounds: domain.Bounds{
			MinLat: minLat,
			MinLon: minLon,
			MaxLat: minLat + float64(nrows)*cellSize,
			MaxLon: minLon + float64(ncols)*cellSize,
		},
	}, nil
}

func isNumeric(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}
