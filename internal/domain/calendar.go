package domain

import "time"

// CropCalendarEntry is static reference data describing when a crop is
// expected to bloom in a region.
type CropCalendarEntry struct {
	Crop         string     `json:"crop"`
	Region       string     `json:"region"`
	StartMonth   time.Month `json:"startMonth"`
	EndMonth     time.Month `json:"endMonth"`
	DurationDays int        `json:"durationDays"`
}

// InWindow reports whether m falls inside [StartMonth, EndMonth], handling
// windows that wrap the year boundary (e.g. Nov-Feb).
func (c CropCalendarEntry) InWindow(m time.Month) bool {
	if c.StartMonth <= c.EndMonth {
		return m >= c.StartMonth && m <= c.EndMonth
	}
	return m >= c.StartMonth || m <= c.EndMonth
}
