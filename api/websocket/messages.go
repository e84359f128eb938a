package websocket

import (
	"encoding/json"
	"time"

	"github.com/drivewise/vehicle-health/pkg/models"
)

type MessageType string

const (
	MessageTypeReading MessageType = "reading"
	MessageTypeHealth  MessageType = "health"
	MessageTypeAlert   MessageType = "alert"
)

type OutgoingMessage struct {
	Type      MessageType `json:"type"`
	VehicleID string      `json:"vehicle_id"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

func NewMessage(msgType MessageType, vehicleID string, data interface{}) *OutgoingMessage {
	return &OutgoingMessage{
		Type:      msgType,
		VehicleID: vehicleID,
		Timestamp: time.Now(),
		Data:      data,
	}
}

func (m *OutgoingMessage) JSON() []byte {
	data, _ := json.Marshal(m)
	return data
}

type HealthData struct {
	Status     string   `json:"status"`
	Score      float64  `json:"score"`
	Confidence float64  `json:"confidence"`
	Alerts     []string `json:"alerts"`
	Source     string   `json:"source"`
}

type AlertData struct {
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

func BroadcastHealth(hub *Hub, record *models.HealthRecord) {
	data := HealthData{
		Status:     record.MLStatus,
		Score:      record.MLHealthScore,
		Confidence: record.MLConfidence,
		Alerts:     record.MLAlerts,
		Source:     string(record.Source),
	}
	msg := NewMessage(MessageTypeHealth, record.VehicleID, data)
	hub.BroadcastToVehicle(record.VehicleID, msg.JSON())
}

func BroadcastReading(hub *Hub, reading *models.SensorReading) {
	msg := NewMessage(MessageTypeReading, reading.VehicleID, reading)
	hub.BroadcastToVehicle(reading.VehicleID, msg.JSON())
}

func BroadcastAlert(hub *Hub, vehicleID string, severity, message string) {
	data := AlertData{
		Severity: severity,
		Message:  message,
	}
	msg := NewMessage(MessageTypeAlert, vehicleID, data)
	hub.BroadcastToVehicle(vehicleID, msg.JSON())
}
