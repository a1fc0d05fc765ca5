package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindPeaks_SimplePeak(t *testing.T) {
	values := []float64{0.1, 0.2, 0.8, 0.2, 0.1}
	peaks := FindPeaks(values, 0.2)

	assert.Len(t, peaks, 1)
	assert.Equal(t, 2, peaks[0].Index)
	assert.InDelta(t, 0.7, peaks[0].Prominence, 1e-9)
}

func TestFindPeaks_ProminenceUsesHigherValley(t *testing.T) {
	// Peak at index 3: left valley 0.1, right valley 0.4. Prominence is the
	// height above the higher valley.
	values := []float64{0.1, 0.3, 0.2, 0.9, 0.4, 0.95}
	peaks := FindPeaks(values, 0.1)

	found := false
	for _, p := range peaks {
		if p.Index == 3 {
			found = true
			assert.InDelta(t, 0.5, p.Prominence, 1e-9)
		}
	}
	assert.True(t, found, "expected a peak at index 3")
}

func TestFindPeaks_FlatSeries(t *testing.T) {
	values := []float64{0.5, 0.5, 0.5, 0.5}
	assert.Empty(t, FindPeaks(values, 0.0))
}

func TestFindPeaks_EndpointsAreNotPeaks(t *testing.T) {
	values := []float64{0.9, 0.2, 0.1, 0.2, 0.95}
	peaks := FindPeaks(values, 0.01)
	for _, p := range peaks {
		assert.NotEqual(t, 0, p.Index)
		assert.NotEqual(t, len(values)-1, p.Index)
	}
}

// Raising the prominence threshold never increases the candidate count, and
// every candidate at a higher threshold is present at a lower one.
func TestFindPeaks_ThresholdMonotonicity(t *testing.T) {
	values := []float64{0.2, 0.5, 0.3, 0.7, 0.2, 0.4, 0.35, 0.9, 0.1, 0.3, 0.25}

	thresholds := []float64{0.05, 0.1, 0.2, 0.3, 0.5, 0.8}
	var prev []Peak
	for i, th := range thresholds {
		got := FindPeaks(values, th)
		if i > 0 {
			assert.LessOrEqual(t, len(got), len(prev), "threshold %v", th)
			prevIdx := make(map[int]bool)
			for _, p := range prev {
				prevIdx[p.Index] = true
			}
			for _, p := range got {
				assert.True(t, prevIdx[p.Index],
					"peak at %d found at threshold %v but not at lower threshold", p.Index, th)
			}
		}
		prev = got
	}
}

func TestGaussianSmooth_PreservesLength(t *testing.T) {
	values := []float64{0.1, 0.9, 0.1, 0.9, 0.1}
	smoothed := GaussianSmooth(values, 1.0)
	assert.Len(t, smoothed, len(values))
}

func TestGaussianSmooth_SuppressesSpike(t *testing.T) {
	values := []float64{0.3, 0.3, 0.9, 0.3, 0.3}
	smoothed := GaussianSmooth(values, 1.0)
	assert.Less(t, smoothed[2], 0.9)
	assert.Greater(t, smoothed[2], 0.3)
}

func TestGaussianSmooth_ZeroSigmaIsIdentity(t *testing.T) {
	values := []float64{0.1, 0.5, 0.2}
	assert.Equal(t, values, GaussianSmooth(values, 0))
}
