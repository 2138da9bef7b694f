package config

import (
	"fmt"
	"strings"

	"github.com/BaSui01/textcache/cache"
	"github.com/BaSui01/textcache/monitor"
	"github.com/BaSui01/textcache/store"
)

// Config is the full service configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server" env:"SERVER"`
	Redis     RedisConfig     `yaml:"redis" env:"REDIS"`
	Cache     CacheConfig     `yaml:"cache" env:"CACHE"`
	Monitor   MonitorConfig   `yaml:"monitor" env:"MONITOR"`
	AI        AIConfig        `yaml:"ai" env:"AI"`
	Log       LogConfig       `yaml:"log" env:"LOG"`
	Telemetry TelemetryConfig `yaml:"telemetry" env:"TELEMETRY"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	HTTPPort        int      `yaml:"http_port" env:"HTTP_PORT"`
	MetricsPort     int      `yaml:"metrics_port" env:"METRICS_PORT"`
	ReadTimeout     Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
	WriteTimeout    Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
	RateLimitRPS    int      `yaml:"rate_limit_rps" env:"RATE_LIMIT_RPS"`
	RateLimitBurst  int      `yaml:"rate_limit_burst" env:"RATE_LIMIT_BURST"`
	// Origins allowed for CORS; empty rejects cross-origin requests.
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins" env:"CORS_ALLOWED_ORIGINS"`
	// Optional API key for admin endpoints; empty disables the check.
	APIKey string `yaml:"api_key" env:"API_KEY"`
}

// RedisConfig holds tier-2 store settings.
type RedisConfig struct {
	Addr         string   `yaml:"addr" env:"ADDR"`
	Password     string   `yaml:"password" env:"PASSWORD"`
	DB           int      `yaml:"db" env:"DB"`
	MaxRetries   int      `yaml:"max_retries" env:"MAX_RETRIES"`
	PoolSize     int      `yaml:"pool_size" env:"POOL_SIZE"`
	MinIdleConns int      `yaml:"min_idle_conns" env:"MIN_IDLE_CONNS"`
	Timeout      Duration `yaml:"timeout" env:"TIMEOUT"`
}

// CacheConfig holds cache tuning settings.
type CacheConfig struct {
	KeyPrefix            string    `yaml:"key_prefix" env:"KEY_PREFIX"`
	HashThreshold        int       `yaml:"hash_threshold" env:"HASH_THRESHOLD"`
	MemoryMaxEntries     int       `yaml:"memory_max_entries" env:"MEMORY_MAX_ENTRIES"`
	CompressionThreshold int       `yaml:"compression_threshold" env:"COMPRESSION_THRESHOLD"`
	CompressionLevel     int       `yaml:"compression_level" env:"COMPRESSION_LEVEL"`
	TTLTiers             []TTLTier `yaml:"ttl_tiers" env:"-"`
	DefaultTTL           Duration  `yaml:"default_ttl" env:"DEFAULT_TTL"`
}

// TTLTier mirrors cache.TTLTier for YAML decoding.
type TTLTier struct {
	MaxTextLength int      `yaml:"max_text_length"`
	TTL           Duration `yaml:"ttl"`
}

// MonitorConfig holds performance-monitor settings.
type MonitorConfig struct {
	RetentionWindow             Duration `yaml:"retention_window" env:"RETENTION_WINDOW"`
	MaxSamplesPerKind           int      `yaml:"max_samples_per_kind" env:"MAX_SAMPLES_PER_KIND"`
	SlowKeyGeneration           Duration `yaml:"slow_key_generation" env:"SLOW_KEY_GENERATION"`
	SlowCacheOperation          Duration `yaml:"slow_cache_operation" env:"SLOW_CACHE_OPERATION"`
	SlowCompression             Duration `yaml:"slow_compression" env:"SLOW_COMPRESSION"`
	SlowInvalidation            Duration `yaml:"slow_invalidation" env:"SLOW_INVALIDATION"`
	InvalidationWarnPerHour     int      `yaml:"invalidation_warn_per_hour" env:"INVALIDATION_WARN_PER_HOUR"`
	InvalidationCriticalPerHour int      `yaml:"invalidation_critical_per_hour" env:"INVALIDATION_CRITICAL_PER_HOUR"`
}

// AIConfig holds text-processing settings.
type AIConfig struct {
	// Maximum accepted text length in characters; zero disables the check.
	MaxTextLength int `yaml:"max_text_length" env:"MAX_TEXT_LENGTH"`
	// Per-request processing timeout.
	Timeout Duration `yaml:"timeout" env:"TIMEOUT"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level            string   `yaml:"level" env:"LEVEL"`
	Format           string   `yaml:"format" env:"FORMAT"`
	OutputPaths      []string `yaml:"output_paths" env:"OUTPUT_PATHS"`
	EnableCaller     bool     `yaml:"enable_caller" env:"ENABLE_CALLER"`
	EnableStacktrace bool     `yaml:"enable_stacktrace" env:"ENABLE_STACKTRACE"`
}

// TelemetryConfig holds tracing settings.
type TelemetryConfig struct {
	Enabled      bool    `yaml:"enabled" env:"ENABLED"`
	OTLPEndpoint string  `yaml:"otlp_endpoint" env:"OTLP_ENDPOINT"`
	ServiceName  string  `yaml:"service_name" env:"SERVICE_NAME"`
	SampleRate   float64 `yaml:"sample_rate" env:"SAMPLE_RATE"`
}

// Validate reports configuration contract violations.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		errs = append(errs, "invalid HTTP port")
	}
	if c.Server.MetricsPort < 0 || c.Server.MetricsPort > 65535 {
		errs = append(errs, "invalid metrics port")
	}
	if c.Redis.Addr == "" {
		errs = append(errs, "redis addr must not be empty")
	}
	if c.AI.MaxTextLength < 0 {
		errs = append(errs, "ai max_text_length must not be negative")
	}
	if c.Telemetry.SampleRate < 0 || c.Telemetry.SampleRate > 1 {
		errs = append(errs, "telemetry sample_rate must be between 0 and 1")
	}
	cacheCfg := c.CacheConfig()
	if err := cacheCfg.Validate(); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

// CacheConfig converts the loaded cache section into the cache package's
// config type.
func (c *Config) CacheConfig() cache.Config {
	tiers := make([]cache.TTLTier, len(c.Cache.TTLTiers))
	for i, t := range c.Cache.TTLTiers {
		tiers[i] = cache.TTLTier{MaxTextLength: t.MaxTextLength, TTL: t.TTL.Std()}
	}
	return cache.Config{
		KeyPrefix:            c.Cache.KeyPrefix,
		HashThreshold:        c.Cache.HashThreshold,
		MemoryMaxEntries:     c.Cache.MemoryMaxEntries,
		CompressionThreshold: c.Cache.CompressionThreshold,
		CompressionLevel:     c.Cache.CompressionLevel,
		TTLTiers:             tiers,
		DefaultTTL:           c.Cache.DefaultTTL.Std(),
	}
}

// StoreConfig converts the loaded redis section into the store package's
// config type.
func (c *Config) StoreConfig() store.Config {
	return store.Config{
		Addr:         c.Redis.Addr,
		Password:     c.Redis.Password,
		DB:           c.Redis.DB,
		MaxRetries:   c.Redis.MaxRetries,
		PoolSize:     c.Redis.PoolSize,
		MinIdleConns: c.Redis.MinIdleConns,
		Timeout:      c.Redis.Timeout.Std(),
	}
}

// MonitorConfig converts the loaded monitor section into the monitor
// package's config type.
func (c *Config) MonitorConfig() monitor.Config {
	return monitor.Config{
		RetentionWindow:             c.Monitor.RetentionWindow.Std(),
		MaxSamplesPerKind:           c.Monitor.MaxSamplesPerKind,
		SlowKeyGeneration:           c.Monitor.SlowKeyGeneration.Std(),
		SlowCacheOperation:          c.Monitor.SlowCacheOperation.Std(),
		SlowCompression:             c.Monitor.SlowCompression.Std(),
		SlowInvalidation:            c.Monitor.SlowInvalidation.Std(),
		InvalidationWarnPerHour:     c.Monitor.InvalidationWarnPerHour,
		InvalidationCriticalPerHour: c.Monitor.InvalidationCriticalPerHour,
	}
}
