package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/drivewise/vehicle-health/internal/logger"
	"github.com/drivewise/vehicle-health/internal/resilience"
	"github.com/drivewise/vehicle-health/pkg/models"
)

// HTTPPredictor posts readings to the Random Forest inference service. The
// circuit breaker keeps a dead model server from adding latency to every
// pipeline cycle; when it is open, Predict reports ErrUnavailable and the
// caller falls back to rules.
type HTTPPredictor struct {
	client         *http.Client
	endpoint       string
	circuitBreaker *resilience.CircuitBreaker
}

type HTTPPredictorConfig struct {
	Endpoint    string
	Timeout     time.Duration
	MaxFailures int
	OpenTimeout time.Duration
}

func NewHTTPPredictor(cfg HTTPPredictorConfig) *HTTPPredictor {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 3 * time.Second
	}

	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		Name:        "inference",
		MaxFailures: cfg.MaxFailures,
		Timeout:     cfg.OpenTimeout,
		OnStateChange: func(name string, from, to resilience.State) {
			logger.Warnf("Circuit %s: %s -> %s", name, from, to)
		},
	})

	return &HTTPPredictor{
		client:         &http.Client{Timeout: timeout},
		endpoint:       cfg.Endpoint,
		circuitBreaker: cb,
	}
}

func (p *HTTPPredictor) Predict(ctx context.Context, reading *models.SensorReading) (*models.MLPrediction, error) {
	var prediction *models.MLPrediction

	err := p.circuitBreaker.Execute(func() error {
		var err error
		prediction, err = p.predict(ctx, reading)
		return err
	})

	if err == resilience.ErrCircuitOpen {
		return nil, ErrUnavailable
	}
	if err != nil {
		return nil, err
	}

	return prediction, nil
}

func (p *HTTPPredictor) predict(ctx context.Context, reading *models.SensorReading) (*models.MLPrediction, error) {
	payload, err := json.Marshal(reading)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode reading: %v", ErrPredictionFailed, err)
	}

	url := p.endpoint + "/predict"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrPredictionFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPredictionFailed, err)
	}
	defer resp.Body.Close()

	// 204 means the model declined this reading; not a failure.
	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status code %d", ErrPredictionFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response body: %v", ErrPredictionFailed, err)
	}

	var prediction models.MLPrediction
	if err := json.Unmarshal(body, &prediction); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	logger.WithVehicle(reading.VehicleID).Debugf(
		"Prediction received: class=%d confidence=%.1f",
		prediction.PredictedHealthStatus, prediction.ConfidenceScore,
	)

	return &prediction, nil
}

func (p *HTTPPredictor) HealthCheck(ctx context.Context) error {
	url := p.endpoint + "/health"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create health check request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

func (p *HTTPPredictor) CircuitState() resilience.State {
	return p.circuitBreaker.State()
}

func (p *HTTPPredictor) Close() error {
	p.client.CloseIdleConnections()
	return nil
}
