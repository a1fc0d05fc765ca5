package domain

// Grower is a registered recipient. Read-only to the engine; owned by the
// registration collaborator.
type Grower struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Location LatLon   `json:"location"`
	Crops    []string `json:"crops"`
	RadiusKm *float64 `json:"radiusKm,omitempty"` // nil means use the system default
	Channels []string `json:"channels"`           // ordered by preference
	Language string   `json:"language"`           // BCP 47 tag, e.g. "es", "sw"
	Phone    string   `json:"phone,omitempty"`
	Discord  string   `json:"discord,omitempty"` // discord channel or user ID
}

// GrowsCrop reports whether the grower registered the given normalized crop.
func (g Grower) GrowsCrop(crop string) bool {
	for _, c := range g.Crops {
		if c == crop {
			return true
		}
	}
	return false
}
