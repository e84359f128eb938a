package inference

import (
	"context"
	"errors"

	"github.com/drivewise/vehicle-health/pkg/models"
)

var (
	ErrPredictionFailed = errors.New("prediction request failed")
	ErrInvalidResponse  = errors.New("invalid response from inference service")
	ErrUnavailable      = errors.New("inference service unavailable")
)

// Predictor asks the external model for a health prediction on a normalized
// reading. A nil prediction with a nil error is a valid outcome (model
// declined, e.g. not enough features); the pipeline falls back to the rule
// classifier either way.
type Predictor interface {
	Predict(ctx context.Context, reading *models.SensorReading) (*models.MLPrediction, error)
	HealthCheck(ctx context.Context) error
	Close() error
}

// NoopPredictor is used when inference is disabled. Every reading takes the
// rule-classifier path.
type NoopPredictor struct{}

func (NoopPredictor) Predict(ctx context.Context, reading *models.SensorReading) (*models.MLPrediction, error) {
	return nil, nil
}

func (NoopPredictor) HealthCheck(ctx context.Context) error { return nil }

func (NoopPredictor) Close() error { return nil }
