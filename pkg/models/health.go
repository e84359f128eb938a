package models

// HealthClass is the coarse severity taxonomy shared by every consumer of a
// health record. The ordinal values and names are a wire-level contract: the
// mobile app and the dashboard both decode them literally, so they must never
// be renumbered or renamed.
type HealthClass int

const (
	HealthNormal   HealthClass = 0
	HealthAdvisory HealthClass = 1
	HealthWarning  HealthClass = 2
	HealthCritical HealthClass = 3
)

var healthClassNames = [...]string{
	HealthNormal:   "NORMAL",
	HealthAdvisory: "ADVISORY",
	HealthWarning:  "WARNING",
	HealthCritical: "CRITICAL",
}

func (h HealthClass) String() string {
	if h < HealthNormal || h > HealthCritical {
		return "UNKNOWN"
	}
	return healthClassNames[h]
}

// Valid reports whether h is a member of the closed enum.
func (h HealthClass) Valid() bool {
	return h >= HealthNormal && h <= HealthCritical
}

// ParseHealthClass maps a status name back to its ordinal. Returns
// HealthNormal, false for anything outside the closed set.
func ParseHealthClass(name string) (HealthClass, bool) {
	for i, n := range healthClassNames {
		if n == name {
			return HealthClass(i), true
		}
	}
	return HealthNormal, false
}

// AtLeast reports whether h is as severe or more severe than other.
func (h HealthClass) AtLeast(other HealthClass) bool {
	return h >= other
}
