package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vporoshin/aeroreserve/config"
	"github.com/vporoshin/aeroreserve/internal/domain"
)

const (
	instancesKey = "cache:flight_instances"
	sweepLockKey = "lock:booking:expiry_sweep"
)

type RedisCache struct {
	client       *redis.Client
	instancesTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, instancesTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:       redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		instancesTTL: instancesTTL,
	}
}

func (c *RedisCache) GetInstances(ctx context.Context) ([]domain.FlightInstance, error) {
	data, err := c.client.Get(ctx, instancesKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var instances []domain.FlightInstance
	if err := json.Unmarshal(data, &instances); err != nil {
		return nil, err
	}
	return instances, nil
}

func (c *RedisCache) SetInstances(ctx context.Context, instances []domain.FlightInstance) error {
	payload, err := json.Marshal(instances)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, instancesKey, payload, c.instancesTTL).Err()
}

// AcquireSweepLock elects a single sweeper across worker instances. The TTL
// bounds how long a crashed worker can hold the lock.
func (c *RedisCache) AcquireSweepLock(ctx context.Context, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, sweepLockKey, "locked", ttl).Result()
}

func (c *RedisCache) ReleaseSweepLock(ctx context.Context) error {
	return c.client.Del(ctx, sweepLockKey).Err()
}
