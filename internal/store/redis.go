package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"StockScope/internal/model"

	goredis "github.com/go-redis/redis/v8"
)

const redisKeyPrefix = "stockscope:series:"

// RedisStore keeps series as JSON strings in Redis. Suitable when several
// instances share one cache.
type RedisStore struct {
	client *goredis.Client
}

// NewRedisStore connects to Redis and pings the server.
func NewRedisStore(addr, password string, db int) (*RedisStore, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	log.Printf("[INFO] redis cache connected: %s", addr)
	return &RedisStore{client: client}, nil
}

func (r *RedisStore) Get(ctx context.Context, symbol string) (model.Series, bool, error) {
	data, err := r.client.Get(ctx, redisKeyPrefix+symbol).Result()
	if err == goredis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", symbol, err)
	}

	var series model.Series
	if err := json.Unmarshal([]byte(data), &series); err != nil {
		return nil, false, fmt.Errorf("decode series %s: %w", symbol, err)
	}
	return series, true, nil
}

func (r *RedisStore) Put(ctx context.Context, symbol string, series model.Series) error {
	payload, err := json.Marshal(series)
	if err != nil {
		return fmt.Errorf("encode series %s: %w", symbol, err)
	}
	if err := r.client.Set(ctx, redisKeyPrefix+symbol, string(payload), 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", symbol, err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
