package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, 9091, cfg.Server.MetricsPort)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout.Std())

	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 0, cfg.Redis.DB)

	assert.Equal(t, "textcache:", cfg.Cache.KeyPrefix)
	assert.Equal(t, 1000, cfg.Cache.HashThreshold)
	assert.Equal(t, 1000, cfg.Cache.MemoryMaxEntries)
	assert.Equal(t, time.Hour, cfg.Cache.DefaultTTL.Std())
	require.Len(t, cfg.Cache.TTLTiers, 2)
	assert.Equal(t, 24*time.Hour, cfg.Cache.TTLTiers[0].TTL.Std())

	assert.Equal(t, 24*time.Hour, cfg.Monitor.RetentionWindow.Std())
	assert.Equal(t, 1000, cfg.Monitor.MaxSamplesPerKind)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)

	assert.False(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "textcache", cfg.Telemetry.ServiceName)
}

func TestDefaultConfigValidates(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
}

func TestLoaderLoadDefaults(t *testing.T) {
	cfg, err := NewLoader().Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, "textcache:", cfg.Cache.KeyPrefix)
}

func TestLoaderLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yamlContent := `
server:
  http_port: 9000
redis:
  addr: "redis.internal:6380"
  db: 3
cache:
  key_prefix: "tc:"
  compression_threshold: 2048
  ttl_tiers:
    - max_text_length: 100
      ttl: 48h
  default_ttl: 30m
monitor:
  slow_cache_operation: 25ms
`
	require.NoError(t, os.WriteFile(path, []byte(yamlContent), 0o644))

	cfg, err := NewLoader().WithConfigPath(path).Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.HTTPPort)
	assert.Equal(t, "redis.internal:6380", cfg.Redis.Addr)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, "tc:", cfg.Cache.KeyPrefix)
	assert.Equal(t, 2048, cfg.Cache.CompressionThreshold)
	require.Len(t, cfg.Cache.TTLTiers, 1)
	assert.Equal(t, 48*time.Hour, cfg.Cache.TTLTiers[0].TTL.Std())
	assert.Equal(t, 30*time.Minute, cfg.Cache.DefaultTTL.Std())
	assert.Equal(t, 25*time.Millisecond, cfg.Monitor.SlowCacheOperation.Std())

	// untouched sections keep defaults
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout.Std())
}

func TestLoaderMissingFileUsesDefaults(t *testing.T) {
	cfg, err := NewLoader().WithConfigPath("/does/not/exist.yaml").Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.HTTPPort)
}

func TestLoaderMalformedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0o644))

	_, err := NewLoader().WithConfigPath(path).Load()
	assert.Error(t, err)
}

func TestLoaderEnvOverrides(t *testing.T) {
	t.Setenv("TEXTCACHE_SERVER_HTTP_PORT", "7070")
	t.Setenv("TEXTCACHE_REDIS_ADDR", "env.redis:6379")
	t.Setenv("TEXTCACHE_CACHE_DEFAULT_TTL", "90m")
	t.Setenv("TEXTCACHE_LOG_OUTPUT_PATHS", "stdout, /var/log/textcache.log")
	t.Setenv("TEXTCACHE_TELEMETRY_ENABLED", "true")
	t.Setenv("TEXTCACHE_TELEMETRY_SAMPLE_RATE", "0.5")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.HTTPPort)
	assert.Equal(t, "env.redis:6379", cfg.Redis.Addr)
	assert.Equal(t, 90*time.Minute, cfg.Cache.DefaultTTL.Std())
	assert.Equal(t, []string{"stdout", "/var/log/textcache.log"}, cfg.Log.OutputPaths)
	assert.True(t, cfg.Telemetry.Enabled)
	assert.Equal(t, 0.5, cfg.Telemetry.SampleRate)
}

func TestLoaderEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  http_port: 9000\n"), 0o644))
	t.Setenv("TEXTCACHE_SERVER_HTTP_PORT", "7070")

	cfg, err := NewLoader().WithConfigPath(path).Load()
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.HTTPPort, "env wins over file")
}

func TestLoaderCustomEnvPrefix(t *testing.T) {
	t.Setenv("TC_SERVER_HTTP_PORT", "6060")

	cfg, err := NewLoader().WithEnvPrefix("TC").Load()
	require.NoError(t, err)
	assert.Equal(t, 6060, cfg.Server.HTTPPort)
}

func TestLoaderInvalidEnvValue(t *testing.T) {
	t.Setenv("TEXTCACHE_SERVER_HTTP_PORT", "not-a-number")

	_, err := NewLoader().Load()
	assert.Error(t, err)
}

func TestLoaderValidator(t *testing.T) {
	_, err := NewLoader().
		WithValidator(func(c *Config) error { return c.Validate() }).
		Load()
	require.NoError(t, err)

	t.Setenv("TEXTCACHE_CACHE_COMPRESSION_LEVEL", "42")
	_, err = NewLoader().
		WithValidator(func(c *Config) error { return c.Validate() }).
		Load()
	assert.Error(t, err)
}

func TestConfigValidateErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.HTTPPort = 0
	cfg.Redis.Addr = ""
	cfg.Telemetry.SampleRate = 2
	cfg.Cache.CompressionLevel = 42

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP port")
	assert.Contains(t, err.Error(), "redis addr")
	assert.Contains(t, err.Error(), "sample_rate")
	assert.Contains(t, err.Error(), "compression_level")
}

func TestCacheConfigConversion(t *testing.T) {
	cfg := DefaultConfig()
	cc := cfg.CacheConfig()

	assert.Equal(t, cfg.Cache.KeyPrefix, cc.KeyPrefix)
	require.Len(t, cc.TTLTiers, len(cfg.Cache.TTLTiers))
	assert.Equal(t, cfg.Cache.TTLTiers[0].TTL.Std(), cc.TTLTiers[0].TTL)
	assert.NoError(t, cc.Validate())
}

func TestStoreAndMonitorConfigConversion(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Redis.Addr = "example:6379"
	cfg.Monitor.MaxSamplesPerKind = 50

	assert.Equal(t, "example:6379", cfg.StoreConfig().Addr)
	assert.Equal(t, 50, cfg.MonitorConfig().MaxSamplesPerKind)
}
