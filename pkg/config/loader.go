package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Config file settings
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/vehicle-health")
	}

	// Environment variable settings
	v.SetEnvPrefix("VEHICLEHEALTH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, use defaults and env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "vehicle-health")
	v.SetDefault("app.mode", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.shutdown_timeout", "15s")

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "vehiclehealth")
	v.SetDefault("database.user", "admin")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.max_connections", 25)
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.migration_timeout", "60s")

	// Redis defaults
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", "5m")

	// Collector defaults
	v.SetDefault("collector.type", "http")
	v.SetDefault("collector.endpoint", "http://localhost:9000/telemetry")
	v.SetDefault("collector.interval", "10s")
	v.SetDefault("collector.timeout", "5s")
	v.SetDefault("collector.retry_attempts", 3)
	v.SetDefault("collector.mqtt.broker_url", "tcp://localhost:1883")
	v.SetDefault("collector.mqtt.client_id", "vehicle-health")
	v.SetDefault("collector.mqtt.topic", "vehicles/+/telemetry")
	v.SetDefault("collector.mqtt.staleness", "60s")
	v.SetDefault("collector.circuit_breaker.max_failures", 5)
	v.SetDefault("collector.circuit_breaker.timeout", "30s")

	// Classifier defaults
	v.SetDefault("classifier.coolant_warn_temp", 105.0)
	v.SetDefault("classifier.coolant_crit_temp", 118.0)
	v.SetDefault("classifier.oil_warn_temp", 130.0)
	v.SetDefault("classifier.voltage_low", 11.5)
	v.SetDefault("classifier.voltage_critical", 9.5)
	v.SetDefault("classifier.fuel_trim_limit", 20.0)
	v.SetDefault("classifier.engine_load_high", 95.0)
	v.SetDefault("classifier.stress_score_high", 85.0)
	v.SetDefault("classifier.egr_error_limit", 30.0)
	v.SetDefault("classifier.catalyst_warn_temp", 1000.0)
	v.SetDefault("classifier.advisory_points", 1)
	v.SetDefault("classifier.warning_points", 3)
	v.SetDefault("classifier.critical_points", 6)

	// Inference defaults
	v.SetDefault("inference.enabled", true)
	v.SetDefault("inference.endpoint", "http://localhost:8000")
	v.SetDefault("inference.timeout", "5s")
	v.SetDefault("inference.circuit_breaker.max_failures", 5)
	v.SetDefault("inference.circuit_breaker.timeout", "30s")

	// API defaults
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.read_timeout", "15s")
	v.SetDefault("api.write_timeout", "15s")
	v.SetDefault("api.idle_timeout", "60s")
	v.SetDefault("api.rate_limit", 100)
	v.SetDefault("api.jwt_secret", "change-me-in-production")
	v.SetDefault("api.jwt_duration", "24h")
	v.SetDefault("api.jwt_issuer", "vehicle-health")
	v.SetDefault("api.default_limit", 100)
	v.SetDefault("api.max_limit", 1000)

	// WebSocket defaults
	v.SetDefault("websocket.max_connections", 1000)
	v.SetDefault("websocket.ping_interval", "30s")

	// Prometheus defaults
	v.SetDefault("prometheus.enabled", true)
	v.SetDefault("prometheus.port", 9090)

	// Events defaults
	v.SetDefault("events.buffer_size", 100)
}
