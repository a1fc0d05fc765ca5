package domain

import "time"

// AlertStatus is the terminal outcome of one delivery attempt chain.
type AlertStatus string

const (
	AlertStatusSent   AlertStatus = "sent"
	AlertStatusFailed AlertStatus = "failed"
	AlertStatusDemo   AlertStatus = "demo"
)

// Terminal reports whether the status satisfies the dedup invariant, i.e. the
// grower should not be alerted again for the same event identity.
func (s AlertStatus) Terminal() bool {
	return s == AlertStatusSent || s == AlertStatusDemo
}

// AlertRecord is one delivery outcome. Append-only; at most one record with a
// terminal status may exist per (grower, event identity) across all runs.
type AlertRecord struct {
	ID        string      `json:"id"`
	GrowerID  string      `json:"growerId"`
	EventID   string      `json:"eventId"`
	Region    string      `json:"region"`
	Crop      string      `json:"crop"`
	Month     string      `json:"month"` // "2006-01", part of the dedup key
	Channel   string      `json:"channel"`
	Status    AlertStatus `json:"status"`
	Attempts  int         `json:"attempts"`
	CreatedAt time.Time   `json:"createdAt"`
}

// Identity returns the dedup key the record was written under.
func (a AlertRecord) Identity() EventIdentity {
	return EventIdentity{Region: a.Region, Crop: a.Crop, Month: a.Month}
}
