package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/drivewise/vehicle-health/internal/collector"
	"github.com/drivewise/vehicle-health/internal/events"
	"github.com/drivewise/vehicle-health/internal/health"
	"github.com/drivewise/vehicle-health/internal/inference"
	"github.com/drivewise/vehicle-health/internal/logger"
	"github.com/drivewise/vehicle-health/internal/metrics"
	"github.com/drivewise/vehicle-health/internal/normalizer"
	"github.com/drivewise/vehicle-health/pkg/models"
)

type PipelineConfig struct {
	VehicleID       string
	CollectInterval time.Duration
	Collector       collector.Collector
	Predictor       inference.Predictor
	Merger          *health.Merger
	EventPublisher  *events.Publisher
}

type Pipeline struct {
	config  PipelineConfig
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
	mu      sync.Mutex
}

func NewPipeline(cfg PipelineConfig) *Pipeline {
	if cfg.CollectInterval == 0 {
		cfg.CollectInterval = 10 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Pipeline{
		config: cfg,
		ctx:    ctx,
		cancel: cancel,
	}
}

func (p *Pipeline) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return nil
	}

	p.running = true
	p.wg.Add(1)
	go p.run()

	logger.WithVehicle(p.config.VehicleID).Info("Pipeline started")
	return nil
}

func (p *Pipeline) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.mu.Unlock()

	p.cancel()
	p.wg.Wait()

	logger.WithVehicle(p.config.VehicleID).Info("Pipeline stopped")
}

func (p *Pipeline) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *Pipeline) run() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.config.CollectInterval)
	defer ticker.Stop()

	// Run immediately on start
	p.runCycle()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.runCycle()
		}
	}
}

func (p *Pipeline) runCycle() {
	ctx, cancel := context.WithTimeout(p.ctx, p.config.CollectInterval-time.Second)
	defer cancel()

	vehicleID := p.config.VehicleID

	// Step 1: Collect raw snapshot
	snapshot, err := p.collect(ctx)
	if err != nil {
		logger.WithVehicle(vehicleID).Errorf("Collection failed: %v", err)
		metrics.Get().IncCollectionErrors(vehicleID)
		p.config.EventPublisher.Error(vehicleID, "Telemetry collection failed", err)
		return
	}

	// Step 2: Normalize into a typed reading
	reading := p.normalize(snapshot)

	// Step 3: Ask the model for a prediction. Any failure falls through to
	// the rule classifier inside the merge; a cycle never aborts here.
	prediction := p.predict(ctx, reading)

	// Step 4: Merge into the canonical health record
	p.evaluate(reading, prediction)
}

func (p *Pipeline) collect(ctx context.Context) (*models.TelemetrySnapshot, error) {
	start := time.Now()
	snapshot, err := p.config.Collector.Collect(ctx, p.config.VehicleID)
	if err != nil {
		return nil, err
	}

	metrics.Get().IncCollections(p.config.VehicleID)
	metrics.Get().SetCollectionLatency(p.config.VehicleID, time.Since(start))
	p.config.EventPublisher.ReadingCollected(p.config.VehicleID, snapshot)
	return snapshot, nil
}

func (p *Pipeline) normalize(snapshot *models.TelemetrySnapshot) *models.SensorReading {
	reading := normalizer.Normalize(p.config.VehicleID, snapshot.Timestamp, snapshot.Data)

	metrics.Get().SetFieldCount(p.config.VehicleID, reading.FieldCount())
	metrics.Get().AddAnomalies(p.config.VehicleID, len(reading.Anomalies))
	p.config.EventPublisher.ReadingNormalized(p.config.VehicleID, reading)

	return reading
}

func (p *Pipeline) predict(ctx context.Context, reading *models.SensorReading) *models.MLPrediction {
	if p.config.Predictor == nil {
		return nil
	}

	start := time.Now()
	prediction, err := p.config.Predictor.Predict(ctx, reading)
	if err != nil {
		logger.WithVehicle(p.config.VehicleID).Warnf("Prediction failed: %v", err)
		metrics.Get().IncPredictionErrors(p.config.VehicleID)
		p.config.EventPublisher.PredictionFailed(p.config.VehicleID, err)
		return nil
	}

	metrics.Get().SetInferenceLatency(p.config.VehicleID, time.Since(start))
	return prediction
}

func (p *Pipeline) evaluate(reading *models.SensorReading, prediction *models.MLPrediction) {
	vehicleID := p.config.VehicleID

	record := p.config.Merger.Merge(reading, prediction)

	metrics.Get().SetHealthScore(vehicleID, record.MLHealthScore)
	metrics.Get().SetHealthStatus(vehicleID, int(record.StatusClass()))
	metrics.Get().IncEvaluation(vehicleID, string(record.Source))

	p.config.EventPublisher.HealthEvaluated(vehicleID, record)

	if record.StatusClass() == models.HealthCritical {
		p.config.EventPublisher.Alert(
			vehicleID,
			models.SeverityCritical,
			"Vehicle health critical",
			record,
		)
	}

	logger.WithVehicle(vehicleID).Infof(
		"Health evaluated: %s score=%.1f source=%s",
		record.MLStatus,
		record.MLHealthScore,
		record.Source,
	)
}
