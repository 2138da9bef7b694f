package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Config holds Redis connection settings.
type Config struct {
	// Redis address (host:port)
	Addr string `yaml:"addr" json:"addr"`

	// Password, empty when auth is disabled
	Password string `yaml:"password" json:"password"`

	// Database number
	DB int `yaml:"db" json:"db"`

	// Maximum retries per command
	MaxRetries int `yaml:"max_retries" json:"max_retries"`

	// Connection pool size
	PoolSize int `yaml:"pool_size" json:"pool_size"`

	// Minimum idle connections
	MinIdleConns int `yaml:"min_idle_conns" json:"min_idle_conns"`

	// Per-call dial/read/write timeout
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// DefaultConfig returns default Redis settings.
func DefaultConfig() Config {
	return Config{
		Addr:         "localhost:6379",
		DB:           0,
		MaxRetries:   3,
		PoolSize:     10,
		MinIdleConns: 2,
		Timeout:      3 * time.Second,
	}
}

// RedisStore implements Store on top of go-redis.
type RedisStore struct {
	client *redis.Client
	config Config
	logger *zap.Logger
}

// NewRedisStore creates a RedisStore. The connection is lazy: constructing
// the store never fails, Connect reports actual availability per call.
func NewRedisStore(config Config, logger *zap.Logger) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		MaxRetries:   config.MaxRetries,
		PoolSize:     config.PoolSize,
		MinIdleConns: config.MinIdleConns,
		DialTimeout:  config.Timeout,
		ReadTimeout:  config.Timeout,
		WriteTimeout: config.Timeout,
	})

	return &RedisStore{
		client: client,
		config: config,
		logger: logger.With(zap.String("component", "redis_store")),
	}
}

// Connect verifies connectivity with a ping. Unavailability is logged at
// debug level and reported as false; it is an expected runtime condition.
func (s *RedisStore) Connect(ctx context.Context) bool {
	if err := s.client.Ping(ctx).Err(); err != nil {
		s.logger.Debug("redis ping failed", zap.Error(err))
		return false
	}
	return true
}

// Get returns the raw value for key, or (nil, nil) when the key is absent.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Set writes value under key with the given TTL.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

// Delete removes the given keys. A zero-key call is a no-op.
func (s *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}

// ScanKeys enumerates all keys matching the glob-style pattern using SCAN,
// so large keyspaces are walked incrementally instead of blocking the
// server with KEYS.
func (s *RedisStore) ScanKeys(ctx context.Context, match string) ([]string, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, match, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}

// Info returns the parsed `INFO` reply for status reporting. The
// sectionless form is used because some servers reject multi-section
// requests.
func (s *RedisStore) Info(ctx context.Context) (map[string]string, error) {
	raw, err := s.client.Info(ctx).Result()
	if err != nil {
		return nil, err
	}
	return parseInfo(raw), nil
}

// Close releases the underlying client pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// parseInfo flattens the "key:value" lines of a redis INFO reply into a map,
// skipping section headers and blank lines.
func parseInfo(raw string) map[string]string {
	info := make(map[string]string)
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		k, v, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		info[k] = v
	}
	return info
}
