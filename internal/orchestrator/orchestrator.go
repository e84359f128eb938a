package orchestrator

import (
	"context"
	"fmt"
	"sync"

	"github.com/drivewise/vehicle-health/internal/classifier"
	"github.com/drivewise/vehicle-health/internal/collector"
	"github.com/drivewise/vehicle-health/internal/events"
	"github.com/drivewise/vehicle-health/internal/health"
	"github.com/drivewise/vehicle-health/internal/inference"
	"github.com/drivewise/vehicle-health/internal/logger"
	"github.com/drivewise/vehicle-health/pkg/config"
	"github.com/drivewise/vehicle-health/pkg/database"
	"github.com/drivewise/vehicle-health/pkg/models"
)

type Orchestrator struct {
	config      *config.Config
	db          *database.DB
	eventBus    *events.EventBus
	eventLogger *events.EventLogger
	merger      *health.Merger
	pipelines   map[string]*Pipeline
	mu          sync.RWMutex
	ctx         context.Context
	cancel      context.CancelFunc
}

func New(cfg *config.Config, db *database.DB) *Orchestrator {
	ctx, cancel := context.WithCancel(context.Background())

	eventBus := events.NewEventBus(cfg.Events.BufferSize)

	// Subscribe event logger to all events
	allEvents := eventBus.SubscribeAll()
	eventLogger := events.NewEventLogger(db, allEvents)

	rules := classifier.New(classifier.Config{
		CoolantWarnTemp:  cfg.Classifier.CoolantWarnTemp,
		CoolantCritTemp:  cfg.Classifier.CoolantCritTemp,
		OilWarnTemp:      cfg.Classifier.OilWarnTemp,
		VoltageLow:       cfg.Classifier.VoltageLow,
		VoltageCritical:  cfg.Classifier.VoltageCritical,
		FuelTrimLimit:    cfg.Classifier.FuelTrimLimit,
		EngineLoadHigh:   cfg.Classifier.EngineLoadHigh,
		StressScoreHigh:  cfg.Classifier.StressScoreHigh,
		EGRErrorLimit:    cfg.Classifier.EGRErrorLimit,
		CatalystWarnTemp: cfg.Classifier.CatalystWarnTemp,
		AdvisoryPoints:   cfg.Classifier.AdvisoryPoints,
		WarningPoints:    cfg.Classifier.WarningPoints,
		CriticalPoints:   cfg.Classifier.CriticalPoints,
	})

	return &Orchestrator{
		config:      cfg,
		db:          db,
		eventBus:    eventBus,
		eventLogger: eventLogger,
		merger:      health.NewMerger(rules),
		pipelines:   make(map[string]*Pipeline),
		ctx:         ctx,
		cancel:      cancel,
	}
}

func (o *Orchestrator) Start() error {
	logger.Info("Orchestrator starting")
	o.eventLogger.Start()
	return nil
}

func (o *Orchestrator) Stop() {
	logger.Info("Orchestrator stopping")

	// Stop all pipelines
	o.mu.Lock()
	for vehicleID, pipeline := range o.pipelines {
		logger.Infof("Stopping pipeline for vehicle %s", vehicleID)
		pipeline.Stop()
	}
	o.mu.Unlock()

	// Cancel context
	o.cancel()

	// Stop event logger
	o.eventLogger.Stop()

	// Close event bus
	o.eventBus.Close()

	logger.Info("Orchestrator stopped")
}

func (o *Orchestrator) Merger() *health.Merger {
	return o.merger
}

func (o *Orchestrator) StartVehicle(vehicle *models.Vehicle, coll collector.Collector, pred inference.Predictor) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, exists := o.pipelines[vehicle.ID]; exists {
		return fmt.Errorf("pipeline already exists for vehicle %s", vehicle.ID)
	}

	pipeline := NewPipeline(PipelineConfig{
		VehicleID:       vehicle.ID,
		CollectInterval: o.config.Collector.Interval,
		Collector:       coll,
		Predictor:       pred,
		Merger:          o.merger,
		EventPublisher:  events.NewPublisher(o.eventBus),
	})

	if err := pipeline.Start(); err != nil {
		return fmt.Errorf("failed to start pipeline: %w", err)
	}

	o.pipelines[vehicle.ID] = pipeline
	logger.WithVehicle(vehicle.ID).Info("Vehicle pipeline started")

	return nil
}

func (o *Orchestrator) StopVehicle(vehicleID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	pipeline, exists := o.pipelines[vehicleID]
	if !exists {
		return fmt.Errorf("no pipeline found for vehicle %s", vehicleID)
	}

	pipeline.Stop()
	delete(o.pipelines, vehicleID)
	logger.WithVehicle(vehicleID).Info("Vehicle pipeline stopped")

	return nil
}

func (o *Orchestrator) GetVehicleStatus(vehicleID string) (bool, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	pipeline, exists := o.pipelines[vehicleID]
	if !exists {
		return false, fmt.Errorf("no pipeline found for vehicle %s", vehicleID)
	}

	return pipeline.IsRunning(), nil
}

func (o *Orchestrator) ListRunningVehicles() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()

	vehicles := make([]string, 0, len(o.pipelines))
	for vehicleID, pipeline := range o.pipelines {
		if pipeline.IsRunning() {
			vehicles = append(vehicles, vehicleID)
		}
	}
	return vehicles
}

func (o *Orchestrator) SubscribeEvents(eventType models.EventType) <-chan *models.Event {
	return o.eventBus.Subscribe(eventType)
}

func (o *Orchestrator) SubscribeAllEvents() <-chan *models.Event {
	return o.eventBus.SubscribeAll()
}
