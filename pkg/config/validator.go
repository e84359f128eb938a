package config

import (
	"errors"
	"fmt"
)

func (c *Config) Validate() error {
	var errs []error

	// App validation
	if c.App.Name == "" {
		errs = append(errs, errors.New("app.name is required"))
	}

	validModes := map[string]bool{"development": true, "production": true, "test": true}
	if !validModes[c.App.Mode] {
		errs = append(errs, fmt.Errorf("app.mode must be one of: development, production, test"))
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.App.LogLevel] {
		errs = append(errs, fmt.Errorf("app.log_level must be one of: debug, info, warn, error"))
	}

	// Database validation
	if c.Database.Host == "" {
		errs = append(errs, errors.New("database.host is required"))
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		errs = append(errs, errors.New("database.port must be between 1 and 65535"))
	}
	if c.Database.Name == "" {
		errs = append(errs, errors.New("database.name is required"))
	}
	if c.Database.MaxConnections <= 0 {
		errs = append(errs, errors.New("database.max_connections must be positive"))
	}

	// Collector validation
	validCollectors := map[string]bool{"http": true, "mqtt": true, "mock": true}
	if !validCollectors[c.Collector.Type] {
		errs = append(errs, errors.New("collector.type must be one of: http, mqtt, mock"))
	}
	if c.Collector.Interval <= 0 {
		errs = append(errs, errors.New("collector.interval must be positive"))
	}
	if c.Collector.Timeout <= 0 {
		errs = append(errs, errors.New("collector.timeout must be positive"))
	}
	if c.Collector.Timeout >= c.Collector.Interval {
		errs = append(errs, errors.New("collector.timeout must be less than collector.interval"))
	}
	if c.Collector.Type == "mqtt" && c.Collector.MQTT.BrokerURL == "" {
		errs = append(errs, errors.New("collector.mqtt.broker_url is required for mqtt collector"))
	}

	// Classifier validation
	if c.Classifier.CoolantCritTemp <= c.Classifier.CoolantWarnTemp {
		errs = append(errs, errors.New("classifier.coolant_crit_temp must be greater than coolant_warn_temp"))
	}
	if c.Classifier.VoltageCritical >= c.Classifier.VoltageLow {
		errs = append(errs, errors.New("classifier.voltage_critical must be less than voltage_low"))
	}
	if c.Classifier.AdvisoryPoints <= 0 {
		errs = append(errs, errors.New("classifier.advisory_points must be positive"))
	}
	if c.Classifier.WarningPoints <= c.Classifier.AdvisoryPoints {
		errs = append(errs, errors.New("classifier.warning_points must be greater than advisory_points"))
	}
	if c.Classifier.CriticalPoints <= c.Classifier.WarningPoints {
		errs = append(errs, errors.New("classifier.critical_points must be greater than warning_points"))
	}

	// Inference validation
	if c.Inference.Enabled && c.Inference.Endpoint == "" {
		errs = append(errs, errors.New("inference.endpoint is required when inference is enabled"))
	}
	if c.Inference.Timeout <= 0 {
		errs = append(errs, errors.New("inference.timeout must be positive"))
	}

	// Redis validation
	if c.Redis.Enabled && c.Redis.Addr == "" {
		errs = append(errs, errors.New("redis.addr is required when redis is enabled"))
	}

	// API validation
	if c.API.Port <= 0 || c.API.Port > 65535 {
		errs = append(errs, errors.New("api.port must be between 1 and 65535"))
	}
	if c.App.Mode == "production" && c.API.JWTSecret == "change-me-in-production" {
		errs = append(errs, errors.New("api.jwt_secret must be changed in production"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %v", errs)
	}

	return nil
}
