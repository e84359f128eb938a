package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/drivewise/vehicle-health/api/middleware"
	"github.com/drivewise/vehicle-health/internal/collector"
	"github.com/drivewise/vehicle-health/internal/inference"
	"github.com/drivewise/vehicle-health/internal/logger"
	"github.com/drivewise/vehicle-health/internal/metrics"
	"github.com/drivewise/vehicle-health/internal/resilience"
	"github.com/drivewise/vehicle-health/internal/store"
	"github.com/drivewise/vehicle-health/pkg/config"
	"github.com/drivewise/vehicle-health/pkg/database/queries"
	"github.com/drivewise/vehicle-health/pkg/models"
	"github.com/drivewise/vehicle-health/pkg/validation"
)

// VehicleManager is the subset of the orchestrator the API needs.
type VehicleManager interface {
	StartVehicle(vehicle *models.Vehicle, coll collector.Collector, pred inference.Predictor) error
	StopVehicle(vehicleID string) error
	GetVehicleStatus(vehicleID string) (bool, error)
	SubscribeAllEvents() <-chan *models.Event
}

type VehicleHandler struct {
	vehicleRepo *queries.VehicleRepository
	manager     VehicleManager
	cache       *store.LatestCache
	cfg         *config.Config
	httpClient  *http.Client

	// A single MQTT subscription covers every vehicle, so the collector is
	// shared across pipelines and built on first use.
	mqttOnce      sync.Once
	mqttCollector collector.Collector
	mqttErr       error
}

func NewVehicleHandler(vehicleRepo *queries.VehicleRepository, manager VehicleManager, cache *store.LatestCache, cfg *config.Config) *VehicleHandler {
	return &VehicleHandler{
		vehicleRepo: vehicleRepo,
		manager:     manager,
		cache:       cache,
		cfg:         cfg,
		httpClient:  &http.Client{Timeout: 5 * time.Second},
	}
}

type CreateVehicleRequest struct {
	Name              string `json:"name" binding:"required"`
	VIN               string `json:"vin"`
	CollectorEndpoint string `json:"collector_endpoint"`
	TelemetryTopic    string `json:"telemetry_topic"`
}

type UpdateVehicleRequest struct {
	Name              string `json:"name"`
	VIN               string `json:"vin"`
	CollectorEndpoint string `json:"collector_endpoint"`
	TelemetryTopic    string `json:"telemetry_topic"`
}

type VehicleStatusResponse struct {
	VehicleID       string `json:"vehicle_id"`
	Status          string `json:"status"`
	PipelineRunning bool   `json:"pipeline_running"`
}

// List godoc
// @Summary List vehicles
// @Description List the authenticated user's vehicles
// @Tags Vehicles
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Vehicle "Vehicles"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /vehicles [get]
func (h *VehicleHandler) List(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	vehicles, err := h.vehicleRepo.GetByUser(ctx, userID)
	if err != nil {
		logger.Errorf("Failed to list vehicles: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list vehicles"})
		return
	}

	if vehicles == nil {
		vehicles = []*models.Vehicle{}
	}

	c.JSON(http.StatusOK, vehicles)
}

// Get godoc
// @Summary Get a vehicle
// @Tags Vehicles
// @Produce json
// @Security BearerAuth
// @Param id path string true "Vehicle ID"
// @Success 200 {object} models.Vehicle "Vehicle"
// @Failure 404 {object} map[string]string "Not found"
// @Router /vehicles/{id} [get]
func (h *VehicleHandler) Get(c *gin.Context) {
	vehicle, ok := h.ownedVehicle(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, vehicle)
}

// Create godoc
// @Summary Register a vehicle
// @Description Register a vehicle and start its health pipeline
// @Tags Vehicles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateVehicleRequest true "Vehicle details"
// @Success 201 {object} models.Vehicle "Vehicle created"
// @Failure 400 {object} map[string]string "Invalid request"
// @Router /vehicles [post]
func (h *VehicleHandler) Create(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req CreateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	req.Name = validation.SanitizeString(req.Name)
	if err := validation.ValidateVehicleName(req.Name); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	vin := strings.ToUpper(validation.SanitizeString(req.VIN))
	if err := validation.ValidateVIN(vin); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	vehicle := models.NewVehicle(req.Name, vin)
	vehicle.UserID = &userID
	if req.CollectorEndpoint != "" || req.TelemetryTopic != "" {
		vehicle.Config = &models.VehicleConfig{
			CollectorEndpoint: req.CollectorEndpoint,
			TelemetryTopic:    req.TelemetryTopic,
		}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.vehicleRepo.Create(ctx, vehicle); err != nil {
		logger.Errorf("Failed to create vehicle: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create vehicle"})
		return
	}

	// Development convenience: when polling the simulator, register the
	// vehicle there so the first collect cycle finds it.
	h.registerWithSimulator(vehicle.ID)

	if err := h.startPipeline(vehicle); err != nil {
		logger.WithVehicle(vehicle.ID).Errorf("Failed to start pipeline: %v", err)
		if uerr := h.vehicleRepo.UpdateStatus(ctx, vehicle.ID, models.VehicleStatusError); uerr == nil {
			vehicle.Status = models.VehicleStatusError
		}
	}

	c.JSON(http.StatusCreated, vehicle)
}

// Update godoc
// @Summary Update a vehicle
// @Tags Vehicles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Vehicle ID"
// @Param request body UpdateVehicleRequest true "Fields to update"
// @Success 200 {object} models.Vehicle "Updated vehicle"
// @Failure 404 {object} map[string]string "Not found"
// @Router /vehicles/{id} [put]
func (h *VehicleHandler) Update(c *gin.Context) {
	vehicle, ok := h.ownedVehicle(c)
	if !ok {
		return
	}

	var req UpdateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if req.Name != "" {
		name := validation.SanitizeString(req.Name)
		if err := validation.ValidateVehicleName(name); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		vehicle.Name = name
	}
	if req.VIN != "" {
		vin := strings.ToUpper(validation.SanitizeString(req.VIN))
		if err := validation.ValidateVIN(vin); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		vehicle.VIN = vin
	}
	if req.CollectorEndpoint != "" || req.TelemetryTopic != "" {
		if vehicle.Config == nil {
			vehicle.Config = &models.VehicleConfig{}
		}
		if req.CollectorEndpoint != "" {
			vehicle.Config.CollectorEndpoint = req.CollectorEndpoint
		}
		if req.TelemetryTopic != "" {
			vehicle.Config.TelemetryTopic = req.TelemetryTopic
		}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.vehicleRepo.Update(ctx, vehicle); err != nil {
		logger.Errorf("Failed to update vehicle: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update vehicle"})
		return
	}

	c.JSON(http.StatusOK, vehicle)
}

// Delete godoc
// @Summary Delete a vehicle
// @Description Stop the pipeline and remove the vehicle and its history
// @Tags Vehicles
// @Produce json
// @Security BearerAuth
// @Param id path string true "Vehicle ID"
// @Success 204 "Deleted"
// @Failure 404 {object} map[string]string "Not found"
// @Router /vehicles/{id} [delete]
func (h *VehicleHandler) Delete(c *gin.Context) {
	vehicle, ok := h.ownedVehicle(c)
	if !ok {
		return
	}

	if err := h.manager.StopVehicle(vehicle.ID); err != nil {
		logger.WithVehicle(vehicle.ID).Debugf("No pipeline to stop: %v", err)
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.vehicleRepo.Delete(ctx, vehicle.ID); err != nil {
		logger.Errorf("Failed to delete vehicle: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete vehicle"})
		return
	}

	if h.cache != nil {
		if err := h.cache.Invalidate(ctx, vehicle.ID); err != nil {
			logger.WithVehicle(vehicle.ID).Warnf("Cache invalidation failed: %v", err)
		}
	}

	h.removeFromSimulator(vehicle.ID)

	c.Status(http.StatusNoContent)
}

// Start godoc
// @Summary Start a vehicle's pipeline
// @Tags Vehicles
// @Produce json
// @Security BearerAuth
// @Param id path string true "Vehicle ID"
// @Success 200 {object} VehicleStatusResponse "Pipeline started"
// @Failure 409 {object} map[string]string "Already running"
// @Router /vehicles/{id}/start [post]
func (h *VehicleHandler) Start(c *gin.Context) {
	vehicle, ok := h.ownedVehicle(c)
	if !ok {
		return
	}

	if err := h.startPipeline(vehicle); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.vehicleRepo.UpdateStatus(ctx, vehicle.ID, models.VehicleStatusActive); err != nil {
		logger.WithVehicle(vehicle.ID).Errorf("Failed to update status: %v", err)
	}

	c.JSON(http.StatusOK, VehicleStatusResponse{
		VehicleID:       vehicle.ID,
		Status:          string(models.VehicleStatusActive),
		PipelineRunning: true,
	})
}

// Stop godoc
// @Summary Stop a vehicle's pipeline
// @Tags Vehicles
// @Produce json
// @Security BearerAuth
// @Param id path string true "Vehicle ID"
// @Success 200 {object} VehicleStatusResponse "Pipeline stopped"
// @Failure 409 {object} map[string]string "Not running"
// @Router /vehicles/{id}/stop [post]
func (h *VehicleHandler) Stop(c *gin.Context) {
	vehicle, ok := h.ownedVehicle(c)
	if !ok {
		return
	}

	if err := h.manager.StopVehicle(vehicle.ID); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.vehicleRepo.UpdateStatus(ctx, vehicle.ID, models.VehicleStatusPaused); err != nil {
		logger.WithVehicle(vehicle.ID).Errorf("Failed to update status: %v", err)
	}

	c.JSON(http.StatusOK, VehicleStatusResponse{
		VehicleID:       vehicle.ID,
		Status:          string(models.VehicleStatusPaused),
		PipelineRunning: false,
	})
}

// GetStatus godoc
// @Summary Vehicle pipeline status
// @Tags Vehicles
// @Produce json
// @Security BearerAuth
// @Param id path string true "Vehicle ID"
// @Success 200 {object} VehicleStatusResponse "Status"
// @Failure 404 {object} map[string]string "Not found"
// @Router /vehicles/{id}/status [get]
func (h *VehicleHandler) GetStatus(c *gin.Context) {
	vehicle, ok := h.ownedVehicle(c)
	if !ok {
		return
	}

	running, err := h.manager.GetVehicleStatus(vehicle.ID)
	if err != nil {
		running = false
	}

	c.JSON(http.StatusOK, VehicleStatusResponse{
		VehicleID:       vehicle.ID,
		Status:          string(vehicle.Status),
		PipelineRunning: running,
	})
}

// ownedVehicle loads the path vehicle and enforces ownership. On failure it
// writes the error response and returns ok=false.
func (h *VehicleHandler) ownedVehicle(c *gin.Context) (*models.Vehicle, bool) {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil, false
	}

	vehicleID := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	vehicle, err := h.vehicleRepo.GetByID(ctx, vehicleID)
	if err != nil {
		if err == queries.ErrVehicleNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "vehicle not found"})
		} else {
			logger.Errorf("Failed to get vehicle: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get vehicle"})
		}
		return nil, false
	}

	if vehicle.UserID == nil || *vehicle.UserID != userID {
		// Hide existence of other users' vehicles
		c.JSON(http.StatusNotFound, gin.H{"error": "vehicle not found"})
		return nil, false
	}

	return vehicle, true
}

func (h *VehicleHandler) startPipeline(vehicle *models.Vehicle) error {
	coll, err := h.buildCollector(vehicle)
	if err != nil {
		return err
	}

	pred := h.buildPredictor()

	if err := h.manager.StartVehicle(vehicle, coll, pred); err != nil {
		coll.Close()
		return err
	}
	return nil
}

func (h *VehicleHandler) buildCollector(vehicle *models.Vehicle) (collector.Collector, error) {
	switch h.cfg.Collector.Type {
	case "mqtt":
		h.mqttOnce.Do(func() {
			h.mqttCollector, h.mqttErr = collector.NewMQTTCollector(collector.MQTTCollectorConfig{
				BrokerURL: h.cfg.Collector.MQTT.BrokerURL,
				ClientID:  h.cfg.Collector.MQTT.ClientID,
				Username:  h.cfg.Collector.MQTT.Username,
				Password:  h.cfg.Collector.MQTT.Password,
				Topic:     h.cfg.Collector.MQTT.Topic,
				Staleness: h.cfg.Collector.MQTT.Staleness,
			})
		})
		return h.mqttCollector, h.mqttErr

	case "mock":
		mock := collector.NewMockCollector(collector.MockCollectorConfig{})
		mock.AddVehicle(vehicle.ID)
		return mock, nil

	default:
		endpoint := h.cfg.Collector.Endpoint
		if vehicle.Config != nil && vehicle.Config.CollectorEndpoint != "" {
			endpoint = vehicle.Config.CollectorEndpoint
		}
		if endpoint == "" {
			return nil, fmt.Errorf("no collector endpoint configured for vehicle %s", vehicle.ID)
		}

		httpColl := collector.NewHTTPCollector(collector.HTTPCollectorConfig{
			Endpoint: endpoint,
			Timeout:  h.cfg.Collector.Timeout,
		})

		return collector.NewResilientCollector(collector.ResilientCollectorConfig{
			Collector:     httpColl,
			MaxFailures:   h.cfg.Collector.CircuitBreaker.MaxFailures,
			Timeout:       h.cfg.Collector.CircuitBreaker.Timeout,
			RetryAttempts: h.cfg.Collector.RetryAttempts,
			OnStateChange: func(name string, from, to resilience.State) {
				logger.WithVehicle(vehicle.ID).Warnf("Circuit %s: %s -> %s", name, from, to)
				metrics.Get().SetCircuitBreakerState(name, int(to))
			},
		}), nil
	}
}

func (h *VehicleHandler) buildPredictor() inference.Predictor {
	if !h.cfg.Inference.Enabled {
		return inference.NoopPredictor{}
	}
	return inference.NewHTTPPredictor(inference.HTTPPredictorConfig{
		Endpoint:    h.cfg.Inference.Endpoint,
		Timeout:     h.cfg.Inference.Timeout,
		MaxFailures: h.cfg.Inference.CircuitBreaker.MaxFailures,
		OpenTimeout: h.cfg.Inference.CircuitBreaker.Timeout,
	})
}

// simulatorBase derives the simulator admin base URL from the telemetry
// endpoint, e.g. "http://localhost:9000/telemetry" -> "http://localhost:9000".
func (h *VehicleHandler) simulatorBase() string {
	if h.cfg.Collector.Type != "http" {
		return ""
	}
	return strings.TrimSuffix(h.cfg.Collector.Endpoint, "/telemetry")
}

func (h *VehicleHandler) registerWithSimulator(vehicleID string) {
	base := h.simulatorBase()
	if base == "" {
		return
	}

	url := fmt.Sprintf("%s/vehicles/%s", base, vehicleID)
	req, err := http.NewRequest(http.MethodPost, url, nil)
	if err != nil {
		return
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		logger.WithVehicle(vehicleID).Debugf("Simulator registration skipped: %v", err)
		return
	}
	resp.Body.Close()
}

func (h *VehicleHandler) removeFromSimulator(vehicleID string) {
	base := h.simulatorBase()
	if base == "" {
		return
	}

	url := fmt.Sprintf("%s/vehicles/%s", base, vehicleID)
	req, err := http.NewRequest(http.MethodDelete, url, nil)
	if err != nil {
		return
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		logger.WithVehicle(vehicleID).Debugf("Simulator removal skipped: %v", err)
		return
	}
	resp.Body.Close()
}
