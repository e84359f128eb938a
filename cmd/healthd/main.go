package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/drivewise/vehicle-health/api"
	"github.com/drivewise/vehicle-health/internal/collector"
	"github.com/drivewise/vehicle-health/internal/inference"
	"github.com/drivewise/vehicle-health/internal/logger"
	"github.com/drivewise/vehicle-health/internal/metrics"
	"github.com/drivewise/vehicle-health/internal/orchestrator"
	"github.com/drivewise/vehicle-health/internal/resilience"
	"github.com/drivewise/vehicle-health/internal/store"
	"github.com/drivewise/vehicle-health/pkg/config"
	"github.com/drivewise/vehicle-health/pkg/database"
	"github.com/drivewise/vehicle-health/pkg/database/queries"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional; real deployments use environment variables
	_ = godotenv.Load()

	configPath := flag.String("config", "", "path to config file")
	migrate := flag.Bool("migrate", false, "run database migrations")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger.Setup(cfg.App.LogLevel, cfg.App.Mode)
	logger.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Mode)

	db, err := database.New(cfg.Database.ToDBConfig())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	logger.Info("Database connection established")

	if *migrate {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Database.MigrationTimeout)
		defer cancel()

		logger.Info("Running database migrations")
		migrator := database.NewMigrator(db)
		if err := migrator.Run(ctx); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		logger.Info("Migrations completed successfully")
		return nil
	}

	var cache *store.LatestCache
	if cfg.Redis.Enabled {
		cache, err = store.NewLatestCache(store.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.Redis.TTL,
		})
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer cache.Close()
		logger.Info("Redis cache connected")
	}

	orch := orchestrator.New(cfg, db)
	if err := orch.Start(); err != nil {
		return fmt.Errorf("failed to start orchestrator: %w", err)
	}
	defer orch.Stop()

	if err := resumeVehicles(cfg, db, orch); err != nil {
		logger.Errorf("Failed to resume vehicle pipelines: %v", err)
	}

	if cfg.Prometheus.Enabled {
		metrics.StartServer(cfg.Prometheus.Port)
	}

	server := api.NewServer(cfg, db, cache, orch)

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		logger.Infof("API server listening on port %d", cfg.API.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdownChan:
		logger.Infof("Received signal %v, shutting down", sig)
	}

	shutdownTimeout := cfg.App.ShutdownTimeout
	if shutdownTimeout == 0 {
		shutdownTimeout = 30 * time.Second
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}

	logger.Info("Server stopped gracefully")
	return nil
}

// resumeVehicles restarts pipelines for vehicles that were active when the
// service last stopped.
func resumeVehicles(cfg *config.Config, db *database.DB, orch *orchestrator.Orchestrator) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	vehicleRepo := queries.NewVehicleRepository(db.DB)
	vehicles, err := vehicleRepo.GetAll(ctx)
	if err != nil {
		return err
	}

	// One MQTT subscription covers the whole fleet
	var shared collector.Collector
	if cfg.Collector.Type == "mqtt" {
		shared, err = collector.NewMQTTCollector(collector.MQTTCollectorConfig{
			BrokerURL: cfg.Collector.MQTT.BrokerURL,
			ClientID:  cfg.Collector.MQTT.ClientID,
			Username:  cfg.Collector.MQTT.Username,
			Password:  cfg.Collector.MQTT.Password,
			Topic:     cfg.Collector.MQTT.Topic,
			Staleness: cfg.Collector.MQTT.Staleness,
		})
		if err != nil {
			return err
		}
	}

	resumed := 0
	for _, vehicle := range vehicles {
		if !vehicle.IsActive() {
			continue
		}

		endpoint := ""
		if vehicle.Config != nil {
			endpoint = vehicle.Config.CollectorEndpoint
		}

		coll, err := buildCollector(cfg, vehicle.ID, endpoint, shared)
		if err != nil {
			logger.WithVehicle(vehicle.ID).Errorf("Failed to build collector: %v", err)
			continue
		}

		if err := orch.StartVehicle(vehicle, coll, buildPredictor(cfg)); err != nil {
			logger.WithVehicle(vehicle.ID).Errorf("Failed to resume pipeline: %v", err)
			continue
		}
		resumed++
	}

	logger.Infof("Resumed %d of %d vehicle pipelines", resumed, len(vehicles))
	return nil
}

func buildCollector(cfg *config.Config, vehicleID, endpoint string, shared collector.Collector) (collector.Collector, error) {
	switch cfg.Collector.Type {
	case "mqtt":
		return shared, nil

	case "mock":
		mock := collector.NewMockCollector(collector.MockCollectorConfig{})
		mock.AddVehicle(vehicleID)
		return mock, nil

	default:
		if endpoint == "" {
			endpoint = cfg.Collector.Endpoint
		}
		httpColl := collector.NewHTTPCollector(collector.HTTPCollectorConfig{
			Endpoint: endpoint,
			Timeout:  cfg.Collector.Timeout,
		})
		return collector.NewResilientCollector(collector.ResilientCollectorConfig{
			Collector:     httpColl,
			MaxFailures:   cfg.Collector.CircuitBreaker.MaxFailures,
			Timeout:       cfg.Collector.CircuitBreaker.Timeout,
			RetryAttempts: cfg.Collector.RetryAttempts,
			OnStateChange: func(name string, from, to resilience.State) {
				logger.WithVehicle(vehicleID).Warnf("Circuit %s: %s -> %s", name, from, to)
				metrics.Get().SetCircuitBreakerState(name, int(to))
			},
		}), nil
	}
}

func buildPredictor(cfg *config.Config) inference.Predictor {
	if !cfg.Inference.Enabled {
		return inference.NoopPredictor{}
	}
	return inference.NewHTTPPredictor(inference.HTTPPredictorConfig{
		Endpoint:    cfg.Inference.Endpoint,
		Timeout:     cfg.Inference.Timeout,
		MaxFailures: cfg.Inference.CircuitBreaker.MaxFailures,
		OpenTimeout: cfg.Inference.CircuitBreaker.Timeout,
	})
}
