package detect

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/meridianfarm/bloomwatch/internal/domain"
	"github.com/meridianfarm/bloomwatch/internal/logger"
)

// minSamples is the smallest series that can support peak detection.
const minSamples = 3

// Config holds the detection thresholds. Zero values fall back to the
// documented defaults in New.
type Config struct {
	SmoothingSigma      float64
	ProminenceThreshold float64
	PigmentThreshold    float64
	AnomalyThresholdPct float64
}

// DefaultConfig returns the standard detection thresholds.
func DefaultConfig() Config {
	return Config{
		SmoothingSigma:      1.0,
		ProminenceThreshold: 0.2,
		PigmentThreshold:    0.1,
		AnomalyThresholdPct: 20.0,
	}
}

// Result is the outcome of detection for one region. InsufficientData marks
// a series too short to support peak detection; it is not an error and does
// not affect other regions.
type Result struct {
	Events           []domain.BloomEvent
	InsufficientData bool
}

// Detector runs the state-free bloom detection pipeline: smoothing, peak
// finding, pigment confirmation, anomaly gating. Deterministic for fixed
// input and configuration.
type Detector struct {
	cfg      Config
	baseline BaselineProvider
}

// New creates a detector. A nil baseline provider disables the anomaly gate.
func New(cfg Config, baseline BaselineProvider) *Detector {
	def := DefaultConfig()
	if cfg.SmoothingSigma <= 0 {
		cfg.SmoothingSigma = def.SmoothingSigma
	}
	if cfg.ProminenceThreshold <= 0 {
		cfg.ProminenceThreshold = def.ProminenceThreshold
	}
	if cfg.PigmentThreshold <= 0 {
		cfg.PigmentThreshold = def.PigmentThreshold
	}
	if cfg.AnomalyThresholdPct <= 0 {
		cfg.AnomalyThresholdPct = def.AnomalyThresholdPct
	}
	return &Detector{cfg: cfg, baseline: baseline}
}

// Detect produces candidate bloom events for one region. Candidates that
// fail pigment confirmation are kept at low tier; the calendar stage decides
// whether they survive. Anomalous candidates are flagged, never dropped.
func (d *Detector) Detect(ctx context.Context, region domain.Region, veg, pigment domain.RegionTimeSeries) (Result, error) {
	log := logger.FromContext(ctx)

	if len(veg.Points) < minSamples {
		log.Info("Series too short for peak detection",
			"region", region.Name, "samples", len(veg.Points))
		return Result{InsufficientData: true}, nil
	}

	raw := veg.Values()
	smoothed := GaussianSmooth(raw, d.cfg.SmoothingSigma)
	peaks := FindPeaks(smoothed, d.cfg.ProminenceThreshold)
	if len(peaks) == 0 {
		return Result{}, nil
	}

	lo, hi := seriesRange(smoothed)

	var events []domain.BloomEvent
	for _, p := range peaks {
		point := veg.Points[p.Index]

		tier := domain.TierLow
		pigmentValue, pigmentFound := pigment.ValueAt(point.Date)
		pigmentPassed := pigmentFound && pigmentValue > d.cfg.PigmentThreshold
		if pigmentPassed {
			tier = domain.TierMedium
		}

		anomalous := false
		if d.baseline != nil {
			base, found, err := d.baseline.Baseline(ctx, region.Name, veg.Layer, point.Date.Month())
			if err != nil {
				return Result{}, err
			}
			if found {
				anomalous = deviationPct(point.Value, base) > d.cfg.AnomalyThresholdPct
				if pigmentPassed {
					tier = domain.TierHigh
				}
			}
		}

		events = append(events, domain.BloomEvent{
			ID:        uuid.NewString(),
			Region:    region.Name,
			Crop:      region.Crop,
			Detected:  point.Date,
			Intensity: normalize(p.Value, lo, hi),
			Tier:      tier,
			Anomalous: anomalous,
			Centroid:  region.Centroid(),
			SourceTag: veg.SourceTag,
			Synthetic: veg.Synthetic,
			CreatedAt: time.Now().UTC(),
		})
	}

	log.Debug("Detection complete",
		"region", region.Name, "peaks", len(peaks), "events", len(events))
	return Result{Events: events}, nil
}

func seriesRange(values []float64) (lo, hi float64) {
	lo, hi = values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// normalize maps v into [0,1] relative to the series range.
func normalize(v, lo, hi float64) float64 {
	if hi == lo {
		return 0
	}
	n := (v - lo) / (hi - lo)
	return math.Max(0, math.Min(1, n))
}

// deviationPct is the percent deviation of v from a multi-year baseline.
func deviationPct(v, baseline float64) float64 {
	if baseline == 0 {
		return 0
	}
	return math.Abs(v-baseline) / math.Abs(baseline) * 100
}
