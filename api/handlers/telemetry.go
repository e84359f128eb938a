package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/drivewise/vehicle-health/api/middleware"
	"github.com/drivewise/vehicle-health/internal/logger"
	"github.com/drivewise/vehicle-health/internal/store"
	"github.com/drivewise/vehicle-health/pkg/config"
	"github.com/drivewise/vehicle-health/pkg/database/queries"
	"github.com/drivewise/vehicle-health/pkg/models"
)

type TelemetryHandler struct {
	vehicleRepo *queries.VehicleRepository
	readingRepo *queries.ReadingRepository
	healthRepo  *queries.HealthRecordRepository
	cache       *store.LatestCache
	cfg         *config.APIConfig
}

func NewTelemetryHandler(
	vehicleRepo *queries.VehicleRepository,
	readingRepo *queries.ReadingRepository,
	healthRepo *queries.HealthRecordRepository,
	cache *store.LatestCache,
	cfg *config.APIConfig,
) *TelemetryHandler {
	return &TelemetryHandler{
		vehicleRepo: vehicleRepo,
		readingRepo: readingRepo,
		healthRepo:  healthRepo,
		cache:       cache,
		cfg:         cfg,
	}
}

// GetReadings godoc
// @Summary Sensor reading history
// @Description Normalized readings for a vehicle over a time range
// @Tags Telemetry
// @Produce json
// @Security BearerAuth
// @Param id path string true "Vehicle ID"
// @Param from query string false "Range start (RFC3339, default 1h ago)"
// @Param to query string false "Range end (RFC3339, default now)"
// @Param limit query int false "Max rows"
// @Success 200 {array} models.SensorReading "Readings"
// @Failure 404 {object} map[string]string "Not found"
// @Router /vehicles/{id}/readings [get]
func (h *TelemetryHandler) GetReadings(c *gin.Context) {
	vehicleID, ok := h.verifyOwnership(c)
	if !ok {
		return
	}

	from, to, err := parseTimeRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	limit := h.parseLimit(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	readings, err := h.readingRepo.GetRange(ctx, vehicleID, from, to, limit)
	if err != nil {
		logger.Errorf("Failed to get readings: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get readings"})
		return
	}

	if readings == nil {
		readings = []*models.SensorReading{}
	}

	c.JSON(http.StatusOK, readings)
}

// GetLatestReading godoc
// @Summary Latest sensor reading
// @Tags Telemetry
// @Produce json
// @Security BearerAuth
// @Param id path string true "Vehicle ID"
// @Success 200 {object} models.SensorReading "Reading"
// @Failure 404 {object} map[string]string "No readings yet"
// @Router /vehicles/{id}/readings/latest [get]
func (h *TelemetryHandler) GetLatestReading(c *gin.Context) {
	vehicleID, ok := h.verifyOwnership(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	reading, err := h.readingRepo.GetLatest(ctx, vehicleID)
	if err != nil {
		if err == queries.ErrReadingNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "no readings for vehicle"})
			return
		}
		logger.Errorf("Failed to get latest reading: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get reading"})
		return
	}

	c.JSON(http.StatusOK, reading)
}

// GetHealth godoc
// @Summary Current health
// @Description Latest health record for a vehicle, cache-first
// @Tags Health Records
// @Produce json
// @Security BearerAuth
// @Param id path string true "Vehicle ID"
// @Success 200 {object} models.HealthRecord "Health record"
// @Failure 404 {object} map[string]string "No health record yet"
// @Router /vehicles/{id}/health [get]
func (h *TelemetryHandler) GetHealth(c *gin.Context) {
	vehicleID, ok := h.verifyOwnership(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if h.cache != nil {
		record, err := h.cache.GetLatest(ctx, vehicleID)
		if err == nil {
			c.JSON(http.StatusOK, record)
			return
		}
		if err != store.ErrCacheMiss {
			logger.WithVehicle(vehicleID).Warnf("Cache read failed: %v", err)
		}
	}

	record, err := h.healthRepo.GetLatest(ctx, vehicleID)
	if err != nil {
		if err == queries.ErrHealthRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "no health record for vehicle"})
			return
		}
		logger.Errorf("Failed to get health record: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get health record"})
		return
	}

	if h.cache != nil {
		if err := h.cache.SetLatest(ctx, record); err != nil {
			logger.WithVehicle(vehicleID).Warnf("Cache write failed: %v", err)
		}
	}

	c.JSON(http.StatusOK, record)
}

// GetHealthHistory godoc
// @Summary Health history
// @Tags Health Records
// @Produce json
// @Security BearerAuth
// @Param id path string true "Vehicle ID"
// @Param from query string false "Range start (RFC3339, default 1h ago)"
// @Param to query string false "Range end (RFC3339, default now)"
// @Param limit query int false "Max rows"
// @Success 200 {array} models.HealthRecord "Records"
// @Router /vehicles/{id}/health/history [get]
func (h *TelemetryHandler) GetHealthHistory(c *gin.Context) {
	vehicleID, ok := h.verifyOwnership(c)
	if !ok {
		return
	}

	from, to, err := parseTimeRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	limit := h.parseLimit(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	records, err := h.healthRepo.GetHistory(ctx, vehicleID, from, to, limit)
	if err != nil {
		logger.Errorf("Failed to get health history: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get health history"})
		return
	}

	if records == nil {
		records = []*models.HealthRecord{}
	}

	c.JSON(http.StatusOK, records)
}

// GetAlerts godoc
// @Summary Alerting vehicles
// @Description Latest record of every vehicle at or above a severity
// @Tags Health Records
// @Produce json
// @Security BearerAuth
// @Param min_status query string false "Minimum severity name (default WARNING)"
// @Success 200 {array} models.HealthRecord "Alerting records"
// @Failure 400 {object} map[string]string "Unknown status name"
// @Router /health-records/alerts [get]
func (h *TelemetryHandler) GetAlerts(c *gin.Context) {
	minStatus := models.HealthWarning
	if name := c.Query("min_status"); name != "" {
		parsed, ok := models.ParseHealthClass(name)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status: " + name})
			return
		}
		minStatus = parsed
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	records, err := h.healthRepo.GetAlerting(ctx, minStatus)
	if err != nil {
		logger.Errorf("Failed to get alerts: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get alerts"})
		return
	}

	if records == nil {
		records = []*models.HealthRecord{}
	}

	c.JSON(http.StatusOK, records)
}

// GetFleetSummary godoc
// @Summary Fleet status summary
// @Description Vehicle counts per health class
// @Tags Health Records
// @Produce json
// @Security BearerAuth
// @Success 200 {object} queries.StatusCounts "Counts per class"
// @Router /health-records/summary [get]
func (h *TelemetryHandler) GetFleetSummary(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	counts, err := h.healthRepo.GetStatusCounts(ctx)
	if err != nil {
		logger.Errorf("Failed to get status counts: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get summary"})
		return
	}

	c.JSON(http.StatusOK, counts)
}

// verifyOwnership loads the path vehicle and checks it belongs to the caller.
func (h *TelemetryHandler) verifyOwnership(c *gin.Context) (string, bool) {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return "", false
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
		return "", false
	}

	if vehicle.UserID == nil || *vehicle.UserID != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": "vehicle not found"})
		return "", false
	}

	return vehicleID, true
}

func parseTimeRange(c *gin.Context) (time.Time, time.Time, error) {
	now := time.Now()
	from := now.Add(-1 * time.Hour)
	to := now

	if fromStr := c.Query("from"); fromStr != "" {
		parsed, err := time.Parse(time.RFC3339, fromStr)
		if err != nil {
			return from, to, err
		}
		from = parsed
	}

	if toStr := c.Query("to"); toStr != "" {
		parsed, err := time.Parse(time.RFC3339, toStr)
		if err != nil {
			return from, to, err
		}
		to = parsed
	}

	return from, to, nil
}

func (h *TelemetryHandler) parseLimit(c *gin.Context) int {
	limit := h.cfg.DefaultLimit
	if limit <= 0 {
		limit = 100
	}

	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	if h.cfg.MaxLimit > 0 && limit > h.cfg.MaxLimit {
		limit = h.cfg.MaxLimit
	}

	return limit
}
