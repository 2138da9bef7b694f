package config

import (
	"time"

	"github.com/BaSui01/textcache/cache"
	"github.com/BaSui01/textcache/monitor"
	"github.com/BaSui01/textcache/store"
)

// DefaultConfig returns the full default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server:    DefaultServerConfig(),
		Redis:     DefaultRedisConfig(),
		Cache:     DefaultCacheConfig(),
		Monitor:   DefaultMonitorConfig(),
		AI:        DefaultAIConfig(),
		Log:       DefaultLogConfig(),
		Telemetry: DefaultTelemetryConfig(),
	}
}

// DefaultServerConfig returns server defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		HTTPPort:        8080,
		MetricsPort:     9091,
		ReadTimeout:     Duration(30 * time.Second),
		WriteTimeout:    Duration(30 * time.Second),
		ShutdownTimeout: Duration(15 * time.Second),
		RateLimitRPS:    100,
		RateLimitBurst:  200,
	}
}

// DefaultRedisConfig returns tier-2 store defaults.
func DefaultRedisConfig() RedisConfig {
	d := store.DefaultConfig()
	return RedisConfig{
		Addr:         d.Addr,
		Password:     d.Password,
		DB:           d.DB,
		MaxRetries:   d.MaxRetries,
		PoolSize:     d.PoolSize,
		MinIdleConns: d.MinIdleConns,
		Timeout:      Duration(d.Timeout),
	}
}

// DefaultCacheConfig returns cache defaults.
func DefaultCacheConfig() CacheConfig {
	d := cache.DefaultConfig()
	tiers := make([]TTLTier, len(d.TTLTiers))
	for i, t := range d.TTLTiers {
		tiers[i] = TTLTier{MaxTextLength: t.MaxTextLength, TTL: Duration(t.TTL)}
	}
	return CacheConfig{
		KeyPrefix:            d.KeyPrefix,
		HashThreshold:        d.HashThreshold,
		MemoryMaxEntries:     d.MemoryMaxEntries,
		CompressionThreshold: d.CompressionThreshold,
		CompressionLevel:     d.CompressionLevel,
		TTLTiers:             tiers,
		DefaultTTL:           Duration(d.DefaultTTL),
	}
}

// DefaultMonitorConfig returns performance-monitor defaults.
func DefaultMonitorConfig() MonitorConfig {
	d := monitor.DefaultConfig()
	return MonitorConfig{
		RetentionWindow:             Duration(d.RetentionWindow),
		MaxSamplesPerKind:           d.MaxSamplesPerKind,
		SlowKeyGeneration:           Duration(d.SlowKeyGeneration),
		SlowCacheOperation:          Duration(d.SlowCacheOperation),
		SlowCompression:             Duration(d.SlowCompression),
		SlowInvalidation:            Duration(d.SlowInvalidation),
		InvalidationWarnPerHour:     d.InvalidationWarnPerHour,
		InvalidationCriticalPerHour: d.InvalidationCriticalPerHour,
	}
}

// DefaultAIConfig returns text-processing defaults.
func DefaultAIConfig() AIConfig {
	return AIConfig{
		MaxTextLength: 100000,
		Timeout:       Duration(30 * time.Second),
	}
}

// DefaultLogConfig returns logging defaults.
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:            "info",
		Format:           "json",
		OutputPaths:      []string{"stdout"},
		EnableCaller:     true,
		EnableStacktrace: false,
	}
}

// DefaultTelemetryConfig returns tracing defaults.
func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:      false,
		OTLPEndpoint: "localhost:4317",
		ServiceName:  "textcache",
		SampleRate:   0.1,
	}
}
