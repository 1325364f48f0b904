package kv

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/riskibarqy/fantasy-hoops/internal/platform/cache"
	"github.com/riskibarqy/fantasy-hoops/internal/platform/logging"
)

const defaultKeyPrefix = "fantasy-hoops:"

type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// RedisStore is a cache.KV shared by every API instance.
type RedisStore struct {
	client *redis.Client
	prefix string
	logger *logging.Logger
}

var _ cache.KV = (*RedisStore)(nil)

// NewRedisStore connects and pings. Callers fall back to an in-process store
// when it returns an error.
func NewRedisStore(ctx context.Context, cfg RedisConfig, logger *logging.Logger) (*RedisStore, error) {
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, fmt.Errorf("redis addr is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
		PoolTimeout:  4 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}

	logger.Info("redis kv connected", "addr", addr, "db", cfg.DB)
	return &RedisStore{
		client: client,
		prefix: prefix,
		logger: logger.Named("kv"),
	}, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return value, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := s.client.Set(ctx, s.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) HealthCheck(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) PoolStats() map[string]any {
	stats := s.client.PoolStats()
	return map[string]any{
		"hits":        stats.Hits,
		"misses":      stats.Misses,
		"timeouts":    stats.Timeouts,
		"total_conns": stats.TotalConns,
		"idle_conns":  stats.IdleConns,
	}
}

func (s *RedisStore) Close() error {
	s.logger.Info("closing redis kv")
	return s.client.Close()
}

func (s *RedisStore) key(key string) string {
	return s.prefix + key
}
