package health

import "github.com/drivewise/vehicle-health/pkg/models"

// Per-class score bands. These values are part of the stored/displayed
// contract: every consumer renders the fixed band for the class, regardless
// of the prediction margin. Do not derive them from the probability vector.
const (
	ScoreNormal   = 95.0
	ScoreAdvisory = 70.0
	ScoreWarning  = 45.0
	ScoreCritical = 20.0
)

// ScoreForClass maps a health class to its numeric score band. Total over the
// closed enum; out-of-range input (impossible through the public API) maps to
// the critical band rather than inventing a value.
func ScoreForClass(class models.HealthClass) float64 {
	switch class {
	case models.HealthNormal:
		return ScoreNormal
	case models.HealthAdvisory:
		return ScoreAdvisory
	case models.HealthWarning:
		return ScoreWarning
	case models.HealthCritical:
		return ScoreCritical
	default:
		return ScoreCritical
	}
}
