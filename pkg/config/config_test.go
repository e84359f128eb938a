package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "vehicle-health", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Mode)
	assert.Equal(t, "info", cfg.App.LogLevel)

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 25, cfg.Database.MaxConnections)

	assert.Equal(t, "http", cfg.Collector.Type)
	assert.Equal(t, 10*time.Second, cfg.Collector.Interval)
	assert.Equal(t, 5*time.Second, cfg.Collector.Timeout)
	assert.Equal(t, "vehicles/+/telemetry", cfg.Collector.MQTT.Topic)

	assert.Equal(t, 105.0, cfg.Classifier.CoolantWarnTemp)
	assert.Equal(t, 118.0, cfg.Classifier.CoolantCritTemp)
	assert.Equal(t, 1, cfg.Classifier.AdvisoryPoints)
	assert.Equal(t, 3, cfg.Classifier.WarningPoints)
	assert.Equal(t, 6, cfg.Classifier.CriticalPoints)

	assert.True(t, cfg.Inference.Enabled)
	assert.Equal(t, "http://localhost:8000", cfg.Inference.Endpoint)

	assert.Equal(t, 8080, cfg.API.Port)
	assert.Equal(t, 24*time.Hour, cfg.API.JWTDuration)

	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, 5*time.Minute, cfg.Redis.TTL)
}

func TestLoad_DefaultsValidate(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.NoError(t, cfg.Validate())
}

func TestValidate_Failures(t *testing.T) {
	valid := func() *Config {
		cfg, err := Load("")
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(cfg *Config)
	}{
		{
			name:   "empty app name",
			mutate: func(cfg *Config) { cfg.App.Name = "" },
		},
		{
			name:   "bad mode",
			mutate: func(cfg *Config) { cfg.App.Mode = "staging" },
		},
		{
			name:   "bad log level",
			mutate: func(cfg *Config) { cfg.App.LogLevel = "verbose" },
		},
		{
			name:   "zero database port",
			mutate: func(cfg *Config) { cfg.Database.Port = 0 },
		},
		{
			name:   "unknown collector type",
			mutate: func(cfg *Config) { cfg.Collector.Type = "serial" },
		},
		{
			name:   "timeout not less than interval",
			mutate: func(cfg *Config) { cfg.Collector.Timeout = cfg.Collector.Interval },
		},
		{
			name: "mqtt without broker",
			mutate: func(cfg *Config) {
				cfg.Collector.Type = "mqtt"
				cfg.Collector.MQTT.BrokerURL = ""
			},
		},
		{
			name:   "coolant thresholds inverted",
			mutate: func(cfg *Config) { cfg.Classifier.CoolantCritTemp = cfg.Classifier.CoolantWarnTemp - 1 },
		},
		{
			name:   "voltage thresholds inverted",
			mutate: func(cfg *Config) { cfg.Classifier.VoltageCritical = cfg.Classifier.VoltageLow + 1 },
		},
		{
			name:   "severity points out of order",
			mutate: func(cfg *Config) { cfg.Classifier.WarningPoints = cfg.Classifier.CriticalPoints + 1 },
		},
		{
			name: "inference enabled without endpoint",
			mutate: func(cfg *Config) {
				cfg.Inference.Enabled = true
				cfg.Inference.Endpoint = ""
			},
		},
		{
			name: "redis enabled without addr",
			mutate: func(cfg *Config) {
				cfg.Redis.Enabled = true
				cfg.Redis.Addr = ""
			},
		},
		{
			name:   "default jwt secret in production",
			mutate: func(cfg *Config) { cfg.App.Mode = "production" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "svc",
		Password: "pw",
		Name:     "vehiclehealth",
	}

	dsn := cfg.DSN()
	assert.Contains(t, dsn, "host=db.internal")
	assert.Contains(t, dsn, "port=5433")
	assert.Contains(t, dsn, "sslmode=disable", "ssl mode defaults to disable")
}

func TestDatabaseConfig_ToDBConfig(t *testing.T) {
	cfg := DatabaseConfig{
		Host:           "localhost",
		Port:           5432,
		Name:           "vehiclehealth",
		User:           "admin",
		MaxConnections: 10,
	}

	dbCfg := cfg.ToDBConfig()
	assert.Equal(t, cfg.Host, dbCfg.Host)
	assert.Equal(t, cfg.MaxConnections, dbCfg.MaxConnections)
}
