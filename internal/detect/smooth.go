package detect

import "math"

// GaussianSmooth applies a low-pass Gaussian filter to suppress
// single-sample noise before peak finding. The kernel radius is 3 sigma and
// weights are renormalized at the series edges so boundary values are not
// dragged toward zero.
func GaussianSmooth(values []float64, sigma float64) []float64 {
	if len(values) == 0 || sigma <= 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}

	radius := int(math.Ceil(3 * sigma))
	kernel := make([]float64, 2*radius+1)
	for k := -radius; k <= radius; k++ {
		kernel[k+radius] = math.Exp(-float64(k*k) / (2 * sigma * sigma))
	}

	out := make([]float64, len(values))
	for i := range values {
		var sum, weight float64
		for k := -radius; k <= radius; k++ {
			j := i + k
			if j < 0 || j >= len(values) {
				continue
			}
			w := kernel[k+radius]
			sum += values[j] * w
			weight += w
		}
		out[i] = sum / weight
	}
	return out
}
