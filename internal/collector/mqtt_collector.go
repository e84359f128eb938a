package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/drivewise/vehicle-health/internal/logger"
	"github.com/drivewise/vehicle-health/pkg/models"
)

// MQTTCollector subscribes to per-vehicle telemetry topics and buffers the
// most recent snapshot for each vehicle. OBD daemons on the vehicles push;
// the pipeline pulls on its own collect interval, so Collect simply returns
// whatever arrived last.
type MQTTCollector struct {
	client    mqtt.Client
	topic     string
	staleness time.Duration

	mu     sync.RWMutex
	latest map[string]*models.TelemetrySnapshot
}

type MQTTCollectorConfig struct {
	BrokerURL string
	ClientID  string
	Username  string
	Password  string
	// Topic is the subscription filter; the vehicle id must be the second
	// level, e.g. "vehicles/+/telemetry".
	Topic string
	// Staleness bounds how old a buffered snapshot may be before Collect
	// reports ErrNoSnapshot instead of serving it.
	Staleness time.Duration
}

func NewMQTTCollector(cfg MQTTCollectorConfig) (*MQTTCollector, error) {
	if cfg.Topic == "" {
		cfg.Topic = "vehicles/+/telemetry"
	}
	if cfg.Staleness == 0 {
		cfg.Staleness = 60 * time.Second
	}
	if cfg.ClientID == "" {
		cfg.ClientID = "vehicle-health-collector"
	}

	c := &MQTTCollector{
		topic:     cfg.Topic,
		staleness: cfg.Staleness,
		latest:    make(map[string]*models.TelemetrySnapshot),
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.BrokerURL).
		SetClientID(cfg.ClientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetOrderMatters(false)

	opts.OnConnect = func(client mqtt.Client) {
		logger.Infof("MQTT connected to %s, subscribing to %s", cfg.BrokerURL, c.topic)
		if token := client.Subscribe(c.topic, 1, c.handleMessage); token.Wait() && token.Error() != nil {
			logger.Errorf("MQTT subscribe failed: %v", token.Error())
		}
	}
	opts.OnConnectionLost = func(client mqtt.Client, err error) {
		logger.Warnf("MQTT connection lost: %v", err)
	}

	c.client = mqtt.NewClient(opts)
	if token := c.client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("%w: mqtt connect: %v", ErrCollectionFailed, token.Error())
	}

	return c, nil
}

func (c *MQTTCollector) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	vehicleID := vehicleIDFromTopic(msg.Topic())
	if vehicleID == "" {
		return
	}

	var payload snapshotResponse
	if err := json.Unmarshal(msg.Payload(), &payload); err != nil {
		logger.WithVehicle(vehicleID).Warnf("Dropping unparseable telemetry message: %v", err)
		return
	}

	timestamp := time.Now()
	if payload.Timestamp != "" {
		if parsed, err := time.Parse(time.RFC3339, payload.Timestamp); err == nil {
			timestamp = parsed
		}
	}

	data := payload.Data
	if data == nil {
		data = models.RawSnapshot{}
	}

	c.mu.Lock()
	c.latest[vehicleID] = &models.TelemetrySnapshot{
		VehicleID: vehicleID,
		Timestamp: timestamp,
		Data:      data,
	}
	c.mu.Unlock()
}

// vehicleIDFromTopic extracts the id from "vehicles/<id>/telemetry".
func vehicleIDFromTopic(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

func (c *MQTTCollector) Collect(ctx context.Context, vehicleID string) (*models.TelemetrySnapshot, error) {
	c.mu.RLock()
	snapshot, exists := c.latest[vehicleID]
	c.mu.RUnlock()

	if !exists {
		return nil, ErrNoSnapshot
	}

	if time.Since(snapshot.Timestamp) > c.staleness {
		return nil, fmt.Errorf("%w: last snapshot is %s old", ErrNoSnapshot, time.Since(snapshot.Timestamp).Round(time.Second))
	}

	return snapshot, nil
}

func (c *MQTTCollector) HealthCheck(ctx context.Context) error {
	if !c.client.IsConnectionOpen() {
		return fmt.Errorf("%w: broker connection down", ErrCollectionFailed)
	}
	return nil
}

func (c *MQTTCollector) Close() error {
	c.client.Disconnect(250)
	return nil
}
