package events

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drivewise/vehicle-health/pkg/models"
)

func receive(t *testing.T, ch <-chan *models.Event) *models.Event {
	t.Helper()
	select {
	case event := <-ch:
		return event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestEventBus_SubscribeByType(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	alerts := bus.Subscribe(models.EventTypeAlert)

	bus.Publish(models.NewEvent(models.EventTypeAlert, "veh-1", "coolant critical"))
	bus.Publish(models.NewEvent(models.EventTypeReadingNormalized, "veh-1", "reading"))

	event := receive(t, alerts)
	assert.Equal(t, models.EventTypeAlert, event.Type)

	select {
	case unexpected := <-alerts:
		t.Fatalf("subscriber received wrong event type: %s", unexpected.Type)
	default:
	}
}

func TestEventBus_SubscribeAll(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	all := bus.SubscribeAll()

	bus.Publish(models.NewEvent(models.EventTypeAlert, "veh-1", "alert"))
	bus.Publish(models.NewEvent(models.EventTypeHealthEvaluated, "veh-1", "health"))

	first := receive(t, all)
	second := receive(t, all)
	assert.Equal(t, models.EventTypeAlert, first.Type)
	assert.Equal(t, models.EventTypeHealthEvaluated, second.Type)
}

func TestEventBus_MultipleSubscribers(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	sub1 := bus.Subscribe(models.EventTypeAlert)
	sub2 := bus.Subscribe(models.EventTypeAlert)

	bus.Publish(models.NewEvent(models.EventTypeAlert, "veh-1", "alert"))

	assert.Equal(t, "alert", receive(t, sub1).Message)
	assert.Equal(t, "alert", receive(t, sub2).Message)
}

func TestEventBus_FullBufferDropsNotBlocks(t *testing.T) {
	bus := NewEventBus(1)
	defer bus.Close()

	ch := bus.Subscribe(models.EventTypeAlert)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 10; i++ {
			bus.Publish(models.NewEvent(models.EventTypeAlert, "veh-1", "alert"))
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}

	assert.NotNil(t, receive(t, ch))
}

func TestEventBus_PublishAfterClose(t *testing.T) {
	bus := NewEventBus(10)
	ch := bus.SubscribeAll()
	bus.Close()

	// Must not panic on a closed channel
	bus.Publish(models.NewEvent(models.EventTypeAlert, "veh-1", "alert"))

	_, open := <-ch
	assert.False(t, open, "SubscribeAll channel is closed on shutdown")
}

func TestPublisher_ReadingNormalizedSeverity(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	ch := bus.Subscribe(models.EventTypeReadingNormalized)
	pub := NewPublisher(bus)

	clean := &models.SensorReading{VehicleID: "veh-1"}
	pub.ReadingNormalized("veh-1", clean)
	assert.Equal(t, models.SeverityInfo, receive(t, ch).Severity)

	garbled := &models.SensorReading{
		VehicleID: "veh-1",
		Anomalies: []models.FieldAnomaly{{Field: "rpm", Value: -1, Reason: "outside physical range"}},
	}
	pub.ReadingNormalized("veh-1", garbled)
	assert.Equal(t, models.SeverityWarning, receive(t, ch).Severity)
}

func TestPublisher_HealthEvaluatedSeverity(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	ch := bus.Subscribe(models.EventTypeHealthEvaluated)
	pub := NewPublisher(bus)

	pub.HealthEvaluated("veh-1", &models.HealthRecord{MLStatus: "CRITICAL"})
	assert.Equal(t, models.SeverityCritical, receive(t, ch).Severity)

	pub.HealthEvaluated("veh-1", &models.HealthRecord{MLStatus: "NORMAL"})
	assert.Equal(t, models.SeverityInfo, receive(t, ch).Severity)
}

func TestPublisher_TraceIDPropagates(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	ch := bus.Subscribe(models.EventTypePredictionFailed)
	pub := NewPublisher(bus).WithTraceID("trace-abc")

	pub.PredictionFailed("veh-1", errors.New("inference timeout"))

	event := receive(t, ch)
	assert.Equal(t, "trace-abc", event.TraceID)
	require.NotNil(t, event.Data)
}
