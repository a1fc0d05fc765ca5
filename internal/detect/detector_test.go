package detect

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridianfarm/bloomwatch/internal/domain"
)

// stubBaseline returns a fixed baseline for every lookup.
type stubBaseline struct {
	value float64
	found bool
}

func (s stubBaseline) Baseline(_ context.Context, _ string, _ domain.IndexLayer, _ time.Month) (float64, bool, error) {
	return s.value, s.found, nil
}

func testRegion() domain.Region {
	return domain.Region{
		Name: "central",
		Crop: "almond",
		Bounds: domain.Bounds{
			MinLat: 36.0, MinLon: -120.5,
			MaxLat: 36.5, MaxLon: -120.0,
		},
	}
}

func makeSeries(layer domain.IndexLayer, start time.Time, values []float64) domain.RegionTimeSeries {
	s := domain.RegionTimeSeries{
		Region:    "central",
		Layer:     layer,
		SourceTag: "high-res-5day",
	}
	for i, v := range values {
		s.Points = append(s.Points, domain.SeriesPoint{
			Date:  start.AddDate(0, 0, i*5),
			Value: v,
		})
	}
	return s
}

func TestDetect_SinglePeakHighConfidence(t *testing.T) {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	veg := makeSeries(domain.LayerVegetation, start, []float64{0.3, 0.35, 0.4, 0.75, 0.78, 0.4, 0.35})
	pigment := makeSeries(domain.LayerPigment, start, []float64{0.02, 0.03, 0.05, 0.12, 0.15, 0.06, 0.04})

	d := New(DefaultConfig(), stubBaseline{value: 0.5, found: true})

	result, err := d.Detect(context.Background(), testRegion(), veg, pigment)
	require.NoError(t, err)
	require.Len(t, result.Events, 1)

	event := result.Events[0]
	assert.Equal(t, domain.TierHigh, event.Tier)
	assert.Equal(t, "central", event.Region)
	assert.Equal(t, "almond", event.Crop)
	assert.Equal(t, veg.Points[4].Date, event.Detected)
	assert.True(t, event.Anomalous, "0.78 deviates more than 20%% from the 0.5 baseline")
	assert.InDelta(t, 1.0, event.Intensity, 0.001, "the peak is the series maximum")
	assert.False(t, event.Synthetic)
	assert.Equal(t, "high-res-5day", event.SourceTag)
}

func TestDetect_WeakPigmentDemotesToLow(t *testing.T) {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	veg := makeSeries(domain.LayerVegetation, start, []float64{0.3, 0.35, 0.4, 0.75, 0.78, 0.4, 0.35})
	pigment := makeSeries(domain.LayerPigment, start, []float64{0.01, 0.02, 0.03, 0.04, 0.05, 0.03, 0.02})

	d := New(DefaultConfig(), stubBaseline{value: 0.5, found: true})

	result, err := d.Detect(context.Background(), testRegion(), veg, pigment)
	require.NoError(t, err)
	require.Len(t, result.Events, 1)

	// Failing pigment confirmation never yields medium or high confidence.
	assert.Equal(t, domain.TierLow, result.Events[0].Tier)
}

func TestDetect_NoBaselineCapsAtMedium(t *testing.T) {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	veg := makeSeries(domain.LayerVegetation, start, []float64{0.3, 0.35, 0.4, 0.75, 0.78, 0.4, 0.35})
	pigment := makeSeries(domain.LayerPigment, start, []float64{0.02, 0.03, 0.05, 0.12, 0.15, 0.06, 0.04})

	d := New(DefaultConfig(), stubBaseline{found: false})

	result, err := d.Detect(context.Background(), testRegion(), veg, pigment)
	require.NoError(t, err)
	require.Len(t, result.Events, 1)
	assert.Equal(t, domain.TierMedium, result.Events[0].Tier)
	assert.False(t, result.Events[0].Anomalous)
}

func TestDetect_InsufficientData(t *testing.T) {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	veg := makeSeries(domain.LayerVegetation, start, []float64{0.3, 0.4})

	d := New(DefaultConfig(), nil)

	result, err := d.Detect(context.Background(), testRegion(), veg, domain.RegionTimeSeries{})
	require.NoError(t, err)
	assert.True(t, result.InsufficientData)
	assert.Empty(t, result.Events)
}

func TestDetect_FlatSeriesYieldsNoPeaks(t *testing.T) {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	veg := makeSeries(domain.LayerVegetation, start, []float64{0.4, 0.4, 0.4, 0.4, 0.4, 0.4})

	d := New(DefaultConfig(), nil)

	result, err := d.Detect(context.Background(), testRegion(), veg, domain.RegionTimeSeries{})
	require.NoError(t, err)
	assert.False(t, result.InsufficientData)
	assert.Empty(t, result.Events)
}

func TestDetect_Deterministic(t *testing.T) {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	veg := makeSeries(domain.LayerVegetation, start, []float64{0.3, 0.35, 0.4, 0.75, 0.78, 0.4, 0.35})
	pigment := makeSeries(domain.LayerPigment, start, []float64{0.02, 0.03, 0.05, 0.12, 0.15, 0.06, 0.04})

	d := New(DefaultConfig(), stubBaseline{value: 0.5, found: true})

	first, err := d.Detect(context.Background(), testRegion(), veg, pigment)
	require.NoError(t, err)
	second, err := d.Detect(context.Background(), testRegion(), veg, pigment)
	require.NoError(t, err)

	require.Len(t, second.Events, len(first.Events))
	for i := range first.Events {
		assert.Equal(t, first.Events[i].Detected, second.Events[i].Detected)
		assert.Equal(t, first.Events[i].Tier, second.Events[i].Tier)
		assert.Equal(t, first.Events[i].Intensity, second.Events[i].Intensity)
		assert.Equal(t, first.Events[i].Anomalous, second.Events[i].Anomalous)
	}
}
