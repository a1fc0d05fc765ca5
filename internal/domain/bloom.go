package domain

import "time"

// ConfidenceTier classifies how many validation stages a detection passed.
type ConfidenceTier string

const (
	TierHigh   ConfidenceTier = "high"
	TierMedium ConfidenceTier = "medium"
	TierLow    ConfidenceTier = "low"
)

// Downgrade returns the next tier down. Low stays low.
func (t ConfidenceTier) Downgrade() ConfidenceTier {
	switch t {
	case TierHigh:
		return TierMedium
	case TierMedium:
		return TierLow
	default:
		return TierLow
	}
}

// EventIdentity is the deduplication key for a logical bloom event. Two
// detections with the same identity are the same event regardless of run.
type EventIdentity struct {
	Region string `json:"region"`
	Crop   string `json:"crop"`
	Month  string `json:"month"` // "2006-01"
}

// BloomEvent is one detected flowering occurrence. Immutable once created.
type BloomEvent struct {
	ID        string         `json:"id"`
	Region    string         `json:"region"`
	Crop      string         `json:"crop"`
	Detected  time.Time      `json:"detected"`
	Intensity float64        `json:"intensity"` // [0,1]
	Tier      ConfidenceTier `json:"tier"`
	Anomalous bool           `json:"anomalous"`
	Centroid  LatLon         `json:"centroid"`
	SourceTag string         `json:"sourceTag"`
	Synthetic bool           `json:"synthetic"`
	CreatedAt time.Time      `json:"createdAt"`
}

// Identity returns the (region, crop, month) deduplication key.
func (e BloomEvent) Identity() EventIdentity {
	return EventIdentity{
		Region: e.Region,
		Crop:   e.Crop,
		Month:  e.Detected.UTC().Format("2006-01"),
	}
}
