package models

import "math"

// probSumTolerance is how far the class probabilities may drift from 1.0
// before the prediction is considered malformed.
const probSumTolerance = 0.02

type FailureRisk string

const (
	RiskLow      FailureRisk = "LOW"
	RiskMedium   FailureRisk = "MEDIUM"
	RiskHigh     FailureRisk = "HIGH"
	RiskCritical FailureRisk = "CRITICAL"
)

// MLPrediction is the output of the external Random Forest inference service
// for a single reading. Produced once, never mutated.
type MLPrediction struct {
	PredictedHealthStatus int      `json:"predicted_health_status"`
	PredictedStatus       string   `json:"predicted_status"`
	ConfidenceScore       float64  `json:"confidence_score"`
	ProbNormal            float64  `json:"prob_normal"`
	ProbAdvisory          float64  `json:"prob_advisory"`
	ProbWarning           float64  `json:"prob_warning"`
	ProbCritical          float64  `json:"prob_critical"`
	RecommendedActions    []string `json:"recommended_actions"`

	TopRiskFactor1       *string      `json:"top_risk_factor_1,omitempty"`
	TopRiskFactor2       *string      `json:"top_risk_factor_2,omitempty"`
	TopRiskFactor3       *string      `json:"top_risk_factor_3,omitempty"`
	PredictedFailureRisk *FailureRisk `json:"predicted_failure_risk,omitempty"`
	DaysUntilMaintenance *int         `json:"days_until_maintenance,omitempty"`
}

// WellFormed checks the contract a prediction must satisfy before it may
// drive a health record: class ordinal inside the closed enum, confidence in
// [0,100], every probability in [0,1], and the probabilities summing to
// 1 within tolerance. Malformed predictions are not an error condition; the
// caller falls back to the rule classifier.
func (p *MLPrediction) WellFormed() bool {
	if p == nil {
		return false
	}
	if !HealthClass(p.PredictedHealthStatus).Valid() {
		return false
	}
	if p.ConfidenceScore < 0 || p.ConfidenceScore > 100 {
		return false
	}
	probs := []float64{p.ProbNormal, p.ProbAdvisory, p.ProbWarning, p.ProbCritical}
	sum := 0.0
	for _, prob := range probs {
		if prob < 0 || prob > 1 || math.IsNaN(prob) {
			return false
		}
		sum += prob
	}
	return math.Abs(sum-1.0) <= probSumTolerance
}

// PredictedClass returns the class the model voted for. Only meaningful when
// the prediction is well-formed.
func (p *MLPrediction) PredictedClass() HealthClass {
	return HealthClass(p.PredictedHealthStatus)
}
