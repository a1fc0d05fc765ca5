package detect

// Peak is one local maximum that cleared the prominence threshold.
type Peak struct {
	Index      int
	Value      float64
	Prominence float64
}

// FindPeaks locates local maxima whose prominence (height above the higher
// of the two flanking valleys) meets the threshold. A flat series yields no
// peaks by construction. Raising the threshold can only shrink the result
// set for a fixed series.
func FindPeaks(values []float64, prominenceThreshold float64) []Peak {
	var peaks []Peak
	for i := 1; i < len(values)-1; i++ {
		if !(values[i] > values[i-1] && values[i] > values[i+1]) {
			continue
		}
		p := prominence(values, i)
		if p >= prominenceThreshold {
			peaks = append(peaks, Peak{Index: i, Value: values[i], Prominence: p})
		}
	}
	return peaks
}

// prominence walks outward from the peak in both directions until a value at
// least as high as the peak (or the series boundary) is reached, tracking
// the lowest point seen on each side. The prominence is the peak height
// above the higher of those two valleys.
func prominence(values []float64, peak int) float64 {
	leftValley := values[peak]
	for i := peak - 1; i >= 0; i-- {
		if values[i] >= values[peak] {
			break
		}
		if values[i] < leftValley {
			leftValley = values[i]
		}
	}

	rightValley := values[peak]
	for i := peak + 1; i < len(values); i++ {
		if values[i] >= values[peak] {
			break
		}
		if values[i] < rightValley {
			rightValley = values[i]
		}
	}

	higher := leftValley
	if rightValley > higher {
		higher = rightValley
	}
	return values[peak] - higher
}
