package simulator

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/drivewise/vehicle-health/internal/logger"
)

type Config struct {
	Port int
}

type Simulator struct {
	config     Config
	vehicles   map[string]*VehicleSim
	mu         sync.RWMutex
	httpServer *http.Server
}

func New(cfg Config) *Simulator {
	if cfg.Port == 0 {
		cfg.Port = 9000
	}

	return &Simulator{
		config:   cfg,
		vehicles: make(map[string]*VehicleSim),
	}
}

func cors(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

func (s *Simulator) Start() error {
	mux := http.NewServeMux()

	// Routes with CORS
	mux.HandleFunc("/health", cors(s.healthHandler))
	mux.HandleFunc("/telemetry/", cors(s.telemetryHandler))
	mux.HandleFunc("/vehicles", cors(s.listVehiclesHandler))
	mux.HandleFunc("/vehicles/", cors(s.vehicleHandler))
	mux.HandleFunc("/overheat", cors(s.overheatHandler))
	mux.HandleFunc("/fault", cors(s.faultHandler))
	mux.HandleFunc("/degrade", cors(s.degradeHandler))
	mux.HandleFunc("/profile", cors(s.profileHandler))

	addr := fmt.Sprintf(":%d", s.config.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	logger.Infof("Simulator listening on %s", addr)

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("Simulator server error: %v", err)
		}
	}()

	return nil
}

func (s *Simulator) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

func (s *Simulator) GetOrCreateVehicle(vehicleID string) *VehicleSim {
	s.mu.Lock()
	defer s.mu.Unlock()

	if vehicle, exists := s.vehicles[vehicleID]; exists {
		return vehicle
	}

	vehicle := NewVehicleSim(vehicleID, VehicleSimConfig{})
	s.vehicles[vehicleID] = vehicle

	logger.Infof("Created new simulated vehicle: %s", vehicleID)
	return vehicle
}

func (s *Simulator) GetVehicle(vehicleID string) (*VehicleSim, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	vehicle, exists := s.vehicles[vehicleID]
	return vehicle, exists
}

// HTTP Handlers

func (s *Simulator) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"service": "telemetry-simulator",
	})
}

func (s *Simulator) telemetryHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Extract vehicle ID from path: /telemetry/{vehicleID}
	vehicleID := r.URL.Path[len("/telemetry/"):]
	if vehicleID == "" {
		http.Error(w, "vehicle ID required", http.StatusBadRequest)
		return
	}

	vehicle := s.GetOrCreateVehicle(vehicleID)
	snapshot := vehicle.CollectSnapshot()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snapshot)
}

func (s *Simulator) listVehiclesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.RLock()
	vehicles := make([]map[string]interface{}, 0, len(s.vehicles))
	for id, vehicle := range s.vehicles {
		vehicles = append(vehicles, map[string]interface{}{
			"id":      id,
			"profile": vehicle.GetProfile(),
		})
	}
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"vehicles": vehicles,
		"count":    len(vehicles),
	})
}

func (s *Simulator) vehicleHandler(w http.ResponseWriter, r *http.Request) {
	// Extract vehicle ID from path: /vehicles/{vehicleID}
	vehicleID := r.URL.Path[len("/vehicles/"):]
	if vehicleID == "" {
		http.Error(w, "vehicle ID required", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.getVehicleHandler(w, r, vehicleID)
	case http.MethodPost:
		s.createVehicleHandler(w, r, vehicleID)
	case http.MethodDelete:
		s.deleteVehicleHandler(w, r, vehicleID)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Simulator) getVehicleHandler(w http.ResponseWriter, r *http.Request, vehicleID string) {
	vehicle, exists := s.GetVehicle(vehicleID)
	if !exists {
		http.Error(w, "vehicle not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(vehicle.Status())
}

type CreateVehicleRequest struct {
	BaseCoolant float64 `json:"base_coolant"`
	BaseVoltage float64 `json:"base_voltage"`
	Variance    float64 `json:"variance"`
	Profile     string  `json:"profile"`
}

func (s *Simulator) createVehicleHandler(w http.ResponseWriter, r *http.Request, vehicleID string) {
	var req CreateVehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	vehicle := NewVehicleSim(vehicleID, VehicleSimConfig{
		BaseCoolant: req.BaseCoolant,
		BaseVoltage: req.BaseVoltage,
		Variance:    req.Variance,
	})
	if req.Profile != "" {
		vehicle.SetProfile(ParseProfile(req.Profile))
	}

	s.mu.Lock()
	s.vehicles[vehicleID] = vehicle
	s.mu.Unlock()

	logger.Infof("Created vehicle %s with profile %s", vehicleID, vehicle.GetProfile())

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(vehicle.Status())
}

func (s *Simulator) deleteVehicleHandler(w http.ResponseWriter, r *http.Request, vehicleID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.vehicles[vehicleID]; !exists {
		http.Error(w, "vehicle not found", http.StatusNotFound)
		return
	}

	delete(s.vehicles, vehicleID)
	logger.Infof("Deleted vehicle %s", vehicleID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "vehicle deleted"})
}

type OverheatRequest struct {
	VehicleID  string  `json:"vehicle_id"`
	TargetTemp float64 `json:"target_temp"`
	Duration   string  `json:"duration"`
	RampUp     string  `json:"ramp_up"`
}

func (s *Simulator) overheatHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req OverheatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	vehicle := s.GetOrCreateVehicle(req.VehicleID)

	duration, err := time.ParseDuration(req.Duration)
	if err != nil {
		duration = 5 * time.Minute
	}

	rampUp, err := time.ParseDuration(req.RampUp)
	if err != nil {
		rampUp = 30 * time.Second
	}

	vehicle.InjectOverheat(req.TargetTemp, duration, rampUp)

	logger.Infof("Injected overheat on vehicle %s: target=%.1fC, duration=%s",
		req.VehicleID, req.TargetTemp, duration)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":     "overheat injected",
		"vehicle_id":  req.VehicleID,
		"target_temp": req.TargetTemp,
		"duration":    duration.String(),
		"ramp_up":     rampUp.String(),
	})
}

type FaultRequest struct {
	VehicleID string `json:"vehicle_id"`
	DTCCount  int    `json:"dtc_count"`
	MILStatus bool   `json:"mil_status"`
	Clear     bool   `json:"clear"`
}

func (s *Simulator) faultHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req FaultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	vehicle := s.GetOrCreateVehicle(req.VehicleID)

	if req.Clear {
		vehicle.ClearFaults()
		logger.Infof("Cleared faults on vehicle %s", req.VehicleID)
	} else {
		vehicle.SetFaults(req.DTCCount, req.MILStatus)
		logger.Infof("Set faults on vehicle %s: dtc=%d mil=%t", req.VehicleID, req.DTCCount, req.MILStatus)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(vehicle.Status())
}

type DegradeRequest struct {
	VehicleID   string      `json:"vehicle_id"`
	DropFields  []string    `json:"drop_fields"`
	GarbleField string      `json:"garble_field"`
	GarbleValue interface{} `json:"garble_value"`
}

func (s *Simulator) degradeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req DegradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	vehicle := s.GetOrCreateVehicle(req.VehicleID)

	if req.DropFields != nil {
		vehicle.SetDropFields(req.DropFields)
	}
	if req.GarbleField != "" {
		vehicle.SetGarbledField(req.GarbleField, req.GarbleValue)
	}

	logger.Infof("Degraded vehicle %s: dropped=%d garbled=%q",
		req.VehicleID, len(req.DropFields), req.GarbleField)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(vehicle.Status())
}

type ProfileRequest struct {
	VehicleID string `json:"vehicle_id"`
	Profile   string `json:"profile"` // "idle", "city", "highway", "towing"
}

func (s *Simulator) profileHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	vehicle := s.GetOrCreateVehicle(req.VehicleID)
	vehicle.SetProfile(ParseProfile(req.Profile))

	logger.Infof("Set profile %s on vehicle %s", req.Profile, req.VehicleID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":    "profile set",
		"vehicle_id": req.VehicleID,
		"profile":    req.Profile,
	})
}
