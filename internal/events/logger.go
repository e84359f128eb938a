package events

import (
	"context"
	"encoding/json"

	"github.com/drivewise/vehicle-health/internal/logger"
	"github.com/drivewise/vehicle-health/pkg/database"
	"github.com/drivewise/vehicle-health/pkg/database/queries"
	"github.com/drivewise/vehicle-health/pkg/models"
)

// EventLogger drains the bus, writes structured log lines for every event and
// persists the ones that carry durable pipeline output.
type EventLogger struct {
	readings  *queries.ReadingRepository
	health    *queries.HealthRecordRepository
	vehicles  *queries.VehicleRepository
	eventChan <-chan *models.Event
	ctx       context.Context
	cancel    context.CancelFunc
}

func NewEventLogger(db *database.DB, eventChan <-chan *models.Event) *EventLogger {
	ctx, cancel := context.WithCancel(context.Background())
	return &EventLogger{
		readings:  queries.NewReadingRepository(db.DB),
		health:    queries.NewHealthRecordRepository(db.DB),
		vehicles:  queries.NewVehicleRepository(db.DB),
		eventChan: eventChan,
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (l *EventLogger) Start() {
	go l.run()
}

func (l *EventLogger) Stop() {
	l.cancel()
}

func (l *EventLogger) run() {
	for {
		select {
		case <-l.ctx.Done():
			return
		case event, ok := <-l.eventChan:
			if !ok {
				return
			}
			l.processEvent(event)
		}
	}
}

func (l *EventLogger) processEvent(event *models.Event) {
	entry := logger.WithFields(map[string]interface{}{
		"event_type": event.Type,
		"vehicle_id": event.VehicleID,
		"severity":   event.Severity,
		"trace_id":   event.TraceID,
	})

	switch event.Severity {
	case models.SeverityCritical:
		entry.Error(event.Message)
	case models.SeverityWarning:
		entry.Warn(event.Message)
	default:
		entry.Info(event.Message)
	}

	switch event.Type {
	case models.EventTypeReadingNormalized:
		l.persistReading(event)
	case models.EventTypeHealthEvaluated:
		l.persistHealthRecord(event)
	}
}

func (l *EventLogger) persistReading(event *models.Event) {
	reading, ok := event.Data.(*models.SensorReading)
	if !ok {
		return
	}

	if err := l.readings.Insert(l.ctx, reading); err != nil {
		logger.Errorf("Failed to persist reading: %v", err)
		return
	}

	if err := l.vehicles.TouchLastSeen(l.ctx, reading.VehicleID); err != nil {
		logger.Errorf("Failed to update vehicle last_seen: %v", err)
	}
}

func (l *EventLogger) persistHealthRecord(event *models.Event) {
	record, ok := event.Data.(*models.HealthRecord)
	if !ok {
		return
	}

	if err := l.health.Insert(l.ctx, record); err != nil {
		logger.Errorf("Failed to persist health record: %v", err)
	}

	if err := l.health.UpsertLatest(l.ctx, record); err != nil {
		logger.Errorf("Failed to update latest health projection: %v", err)
	}
}

func (l *EventLogger) LogToJSON(event *models.Event) string {
	data, _ := json.Marshal(event)
	return string(data)
}
