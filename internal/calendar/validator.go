package calendar

import (
	"context"
	"time"

	"github.com/meridianfarm/bloomwatch/internal/domain"
	"github.com/meridianfarm/bloomwatch/internal/logger"
)

// DefaultGraceDays is the slack applied on both sides of the expected bloom
// window before a detection is considered out of season.
const DefaultGraceDays = 14

// Source supplies crop calendar reference entries. The boolean reports
// whether an entry exists; a miss means "unknown", never a rejection.
type Source interface {
	GetEntry(ctx context.Context, crop, region string) (domain.CropCalendarEntry, bool, error)
}

// Validator annotates candidate bloom events against the expected bloom
// calendar. All policy differences between crops and regions live in the
// reference table; nothing here is crop-specific.
type Validator struct {
	source    Source
	graceDays int
}

// NewValidator creates a validator. A non-positive grace falls back to the
// default.
func NewValidator(source Source, graceDays int) *Validator {
	if graceDays <= 0 {
		graceDays = DefaultGraceDays
	}
	return &Validator{source: source, graceDays: graceDays}
}

// Validate returns the (possibly re-tiered) event and whether it survives.
//
// No calendar entry: pass through unannotated. Outside the window plus
// grace: downgrade one confidence tier rather than drop, since true
// early/late blooms are signal. The exception is a low-tier candidate that
// already failed pigment confirmation: those are only kept when the
// detection falls inside the calendar window.
func (v *Validator) Validate(ctx context.Context, event domain.BloomEvent) (domain.BloomEvent, bool, error) {
	entry, found, err := v.source.GetEntry(ctx, event.Crop, event.Region)
	if err != nil {
		return event, false, err
	}
	if !found {
		// CalendarLookupMiss: cannot validate, not a reason to reject.
		return event, true, nil
	}

	if withinGrace(entry, event.Detected, v.graceDays) {
		return event, true, nil
	}

	if event.Tier == domain.TierLow {
		logger.FromContext(ctx).Debug("Dropping unconfirmed out-of-season candidate",
			"region", event.Region, "crop", event.Crop, "detected", event.Detected)
		return event, false, nil
	}

	event.Tier = event.Tier.Downgrade()
	return event, true, nil
}

// withinGrace reports whether t falls inside the expected bloom window
// widened by graceDays on each side. The window recurs yearly, so adjacent
// anchor years are checked as well: a late-December detection can fall in the
// grace margin of next year's January window, and a wrapping window (e.g.
// Nov-Feb) spans two calendar years.
func withinGrace(e domain.CropCalendarEntry, t time.Time, graceDays int) bool {
	t = t.UTC()
	grace := time.Duration(graceDays) * 24 * time.Hour

	for _, startYear := range []int{t.Year() - 1, t.Year(), t.Year() + 1} {
		endYear := startYear
		if e.StartMonth > e.EndMonth {
			endYear = startYear + 1
		}
		start := time.Date(startYear, e.StartMonth, 1, 0, 0, 0, 0, time.UTC)
		// Day 0 of the following month is the last day of EndMonth.
		end := time.Date(endYear, e.EndMonth+1, 0, 23, 59, 59, 0, time.UTC)
		if !t.Before(start.Add(-grace)) && !t.After(end.Add(grace)) {
			return true
		}
	}
	return false
}
