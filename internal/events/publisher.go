package events

import (
	"github.com/drivewise/vehicle-health/pkg/models"
)

type Publisher struct {
	bus     *EventBus
	traceID string
}

func NewPublisher(bus *EventBus) *Publisher {
	return &Publisher{bus: bus}
}

func (p *Publisher) WithTraceID(traceID string) *Publisher {
	return &Publisher{
		bus:     p.bus,
		traceID: traceID,
	}
}

func (p *Publisher) publish(event *models.Event) {
	if p.traceID != "" {
		event.TraceID = p.traceID
	}
	p.bus.Publish(event)
}

func (p *Publisher) ReadingCollected(vehicleID string, snapshot *models.TelemetrySnapshot) {
	event := models.NewEvent(models.EventTypeReadingCollected, vehicleID, "Snapshot collected").
		WithData(snapshot)
	p.publish(event)
}

func (p *Publisher) ReadingNormalized(vehicleID string, reading *models.SensorReading) {
	event := models.NewEvent(models.EventTypeReadingNormalized, vehicleID, "Reading normalized").
		WithData(reading)

	if len(reading.Anomalies) > 0 {
		event.WithSeverity(models.SeverityWarning)
	}

	p.publish(event)
}

func (p *Publisher) HealthEvaluated(vehicleID string, record *models.HealthRecord) {
	msg := "Health evaluated: " + record.MLStatus
	event := models.NewEvent(models.EventTypeHealthEvaluated, vehicleID, msg).
		WithData(record)

	switch record.StatusClass() {
	case models.HealthCritical:
		event.WithSeverity(models.SeverityCritical)
	case models.HealthWarning:
		event.WithSeverity(models.SeverityWarning)
	}

	p.publish(event)
}

func (p *Publisher) PredictionFailed(vehicleID string, err error) {
	event := models.NewEvent(models.EventTypePredictionFailed, vehicleID, "Falling back to rule classifier").
		WithSeverity(models.SeverityWarning).
		WithData(map[string]interface{}{
			"error": err.Error(),
		})
	p.publish(event)
}

func (p *Publisher) Alert(vehicleID string, severity models.EventSeverity, message string, data interface{}) {
	event := models.NewEvent(models.EventTypeAlert, vehicleID, message).
		WithSeverity(severity).
		WithData(data)
	p.publish(event)
}

func (p *Publisher) Error(vehicleID string, message string, err error) {
	event := models.NewEvent(models.EventTypeError, vehicleID, message).
		WithSeverity(models.SeverityCritical).
		WithData(map[string]interface{}{
			"error": err.Error(),
		})
	p.publish(event)
}
