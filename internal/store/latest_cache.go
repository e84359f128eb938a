package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/drivewise/vehicle-health/pkg/models"
)

var ErrCacheMiss = errors.New("latest health not cached")

type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// LatestCache keeps the most recent health record per vehicle in Redis so the
// dashboard read path does not hit Postgres on every poll. The database
// projection stays authoritative; a miss here just falls through to it.
type LatestCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewLatestCache(cfg Config) (*LatestCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	ttl := cfg.TTL
	if ttl == 0 {
		ttl = 5 * time.Minute
	}

	return &LatestCache{client: client, ttl: ttl}, nil
}

func healthKey(vehicleID string) string {
	return "health:latest:" + vehicleID
}

func (c *LatestCache) SetLatest(ctx context.Context, record *models.HealthRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, healthKey(record.VehicleID), data, c.ttl).Err()
}

func (c *LatestCache) GetLatest(ctx context.Context, vehicleID string) (*models.HealthRecord, error) {
	data, err := c.client.Get(ctx, healthKey(vehicleID)).Bytes()
	if err == redis.Nil {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}

	var record models.HealthRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}
	if record.MLAlerts == nil {
		record.MLAlerts = []string{}
	}
	return &record, nil
}

func (c *LatestCache) Invalidate(ctx context.Context, vehicleID string) error {
	return c.client.Del(ctx, healthKey(vehicleID)).Err()
}

func (c *LatestCache) HealthCheck(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *LatestCache) Close() error {
	return c.client.Close()
}
