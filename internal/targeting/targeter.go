package targeting

import (
	"context"

	"golang.org/x/text/cases"

	"github.com/meridianfarm/bloomwatch/internal/domain"
	"github.com/meridianfarm/bloomwatch/internal/logger"
)

// DefaultRadiusKm applies when a grower has not set a preferred radius.
const DefaultRadiusKm = 50.0

var folder = cases.Fold()

// NormalizeCrop maps a crop name onto the normalized vocabulary used for
// matching. Matching is an exact string comparison after folding.
func NormalizeCrop(crop string) string {
	return folder.String(crop)
}

// SentIndex records which (grower, event identity) pairs already carry a
// terminal alert record. Built once per run from the alert log snapshot.
type SentIndex map[string]map[domain.EventIdentity]bool

// Add marks a pair as already alerted.
func (s SentIndex) Add(growerID string, id domain.EventIdentity) {
	if s[growerID] == nil {
		s[growerID] = make(map[domain.EventIdentity]bool)
	}
	s[growerID][id] = true
}

// Contains reports whether the pair already carries a terminal record.
func (s SentIndex) Contains(growerID string, id domain.EventIdentity) bool {
	return s[growerID][id]
}

// SentChecker is the read side of the sent index. The engine substitutes a
// mutex-guarded implementation when regions run in parallel.
type SentChecker interface {
	Contains(growerID string, id domain.EventIdentity) bool
}

// Match pairs one grower with the event they should be alerted for.
type Match struct {
	Grower domain.Grower
	Event  domain.BloomEvent
}

// Targeter selects the growers to notify for a validated bloom event. Pure:
// it returns matches and performs no side effects, so dispatch stays
// independently testable.
type Targeter struct {
	defaultRadiusKm float64
}

// NewTargeter creates a targeter. A non-positive radius falls back to the
// default.
func NewTargeter(defaultRadiusKm float64) *Targeter {
	if defaultRadiusKm <= 0 {
		defaultRadiusKm = DefaultRadiusKm
	}
	return &Targeter{defaultRadiusKm: defaultRadiusKm}
}

// Target returns every grower within the effective radius of the event
// centroid whose crop set contains the event crop and who has no terminal
// alert record for the event identity.
func (t *Targeter) Target(ctx context.Context, event domain.BloomEvent, growers []domain.Grower, sent SentChecker) []Match {
	log := logger.FromContext(ctx)
	crop := NormalizeCrop(event.Crop)
	identity := event.Identity()

	var matches []Match
	for _, g := range growers {
		if !growsCrop(g, crop) {
			continue
		}

		radius := t.defaultRadiusKm
		if g.RadiusKm != nil && *g.RadiusKm > 0 {
			radius = *g.RadiusKm
		}
		if HaversineKm(g.Location, event.Centroid) > radius {
			continue
		}

		if sent.Contains(g.ID, identity) {
			continue
		}

		matches = append(matches, Match{Grower: g, Event: event})
	}

	log.Debug("Targeting complete",
		"region", event.Region, "crop", event.Crop,
		"growers", len(growers), "matches", len(matches))
	return matches
}

func growsCrop(g domain.Grower, normalizedCrop string) bool {
	for _, c := range g.Crops {
		if NormalizeCrop(c) == normalizedCrop {
			return true
		}
	}
	return false
}
