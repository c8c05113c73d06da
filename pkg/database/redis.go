package database

import (
	"context"
	"encoding/json"
	"fmt"
	"social_network_service/pkg/logger"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RedisRepository 泛型 KV 存取介面 (Set, Get, Del, GetTTL, ExtendTTL)
type RedisRepository[T any] interface {
	Set(ctx context.Context, key string, value T, ttl time.Duration) error
	SetNX(ctx context.Context, key string, value T, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (T, error)
	Del(ctx context.Context, key string) error
	GetTTL(ctx context.Context, key string) (int, error)
	ExtendTTL(ctx context.Context, key string, ttl time.Duration) error
}

type redisRepository[T any] struct {
	client *redis.Client
}

// NewRedisClient init Redis Sentinel connection
func NewRedisClient(masterName string, sentinelAddrs []string, db int) (*redis.Client, error) {
	rdb := redis.NewFailoverClient(&redis.FailoverOptions{
		MasterName:    masterName,
		SentinelAddrs: sentinelAddrs,
		Password:      "",
		DB:            db,
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis sentinel: %w", err)
	}

	return rdb, nil
}

// NewRedisRepository init Redis repository with its own sentinel connection
func NewRedisRepository[T any](masterName string, sentinelAddrs []string, db int) (RedisRepository[T], error) {
	rdb, err := NewRedisClient(masterName, sentinelAddrs, db)
	if err != nil {
		return nil, err
	}
	return &redisRepository[T]{client: rdb}, nil
}

// NewRedisRepositoryWithClient init Redis repository on an existing client
func NewRedisRepositoryWithClient[T any](client *redis.Client) RedisRepository[T] {
	return &redisRepository[T]{client: client}
}

func (r *redisRepository[T]) Set(ctx context.Context, key string, value T, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	return r.client.Set(ctx, key, data, ttl).Err()
}

// SetNX set only when key not exist, return true when the write happened
func (r *redisRepository[T]) SetNX(ctx context.Context, key string, value T, ttl time.Duration) (bool, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return false, fmt.Errorf("failed to marshal value: %w", err)
	}

	return r.client.SetNX(ctx, key, data, ttl).Result()
}

func (r *redisRepository[T]) Get(ctx context.Context, key string) (T, error) {
	var zeroValue T
	val, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return zeroValue, fmt.Errorf("redis.Nil")
	} else if err != nil {
		return zeroValue, fmt.Errorf("failed to get key %s: %w", key, err)
	}

	var result T
	if err := json.Unmarshal([]byte(val), &result); err != nil {
		logger.Log.Error("redis get err :", zap.String("err", fmt.Sprintf("failed to unmarshal data: %v", err)))
		return zeroValue, fmt.Errorf("failed to unmarshal data: %w", err)
	}

	return result, nil
}

func (r *redisRepository[T]) Del(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *redisRepository[T]) ExtendTTL(ctx context.Context, key string, ttl time.Duration) error {
	return r.client.Expire(ctx, key, ttl).Err()
}

func (r *redisRepository[T]) GetTTL(ctx context.Context, key string) (int, error) {
	ttl, err := r.client.TTL(ctx, key).Result()
	if err == redis.Nil {
		return 0, nil
	} else if err != nil {
		return 0, fmt.Errorf("failed to get TTL for key %s: %w", key, err)
	}

	if ttl < 0 {
		return 0, nil
	}

	return int(ttl.Seconds()), nil
}
