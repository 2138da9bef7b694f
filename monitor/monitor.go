package monitor

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Config holds monitor retention and alerting thresholds.
type Config struct {
	// Retention window: metrics older than this are dropped on any
	// record or read.
	RetentionWindow time.Duration `yaml:"retention_window" json:"retention_window"`

	// Maximum retained samples per metric kind.
	MaxSamplesPerKind int `yaml:"max_samples_per_kind" json:"max_samples_per_kind"`

	// Per-kind slow-measurement thresholds; a single measurement above
	// its threshold is logged as a warning.
	SlowKeyGeneration  time.Duration `yaml:"slow_key_generation" json:"slow_key_generation"`
	SlowCacheOperation time.Duration `yaml:"slow_cache_operation" json:"slow_cache_operation"`
	SlowCompression    time.Duration `yaml:"slow_compression" json:"slow_compression"`
	SlowInvalidation   time.Duration `yaml:"slow_invalidation" json:"slow_invalidation"`

	// Invalidation-rate alerting: events in the trailing hour.
	InvalidationWarnPerHour     int `yaml:"invalidation_warn_per_hour" json:"invalidation_warn_per_hour"`
	InvalidationCriticalPerHour int `yaml:"invalidation_critical_per_hour" json:"invalidation_critical_per_hour"`
}

// DefaultConfig returns sensible monitor defaults.
func DefaultConfig() Config {
	return Config{
		RetentionWindow:             24 * time.Hour,
		MaxSamplesPerKind:           1000,
		SlowKeyGeneration:           100 * time.Millisecond,
		SlowCacheOperation:          50 * time.Millisecond,
		SlowCompression:             200 * time.Millisecond,
		SlowInvalidation:            500 * time.Millisecond,
		InvalidationWarnPerHour:     50,
		InvalidationCriticalPerHour: 200,
	}
}

// Monitor accumulates performance metrics and derives aggregate statistics.
// All methods are safe for concurrent use.
type Monitor struct {
	mu     sync.Mutex
	config Config
	logger *zap.Logger

	keyGenerations  []KeyGenerationMetric
	cacheOperations []CacheOperationMetric
	compressions    []CompressionMetric
	invalidations   []InvalidationMetric

	cacheHits            int64
	cacheMisses          int64
	totalOperations      int64
	totalInvalidations   int64
	totalKeysInvalidated int64

	// now is the clock; overridden in tests to exercise retention pruning.
	now func() time.Time
}

// New creates a Monitor with the given configuration.
func New(config Config, logger *zap.Logger) *Monitor {
	if config.RetentionWindow <= 0 {
		config.RetentionWindow = DefaultConfig().RetentionWindow
	}
	if config.MaxSamplesPerKind <= 0 {
		config.MaxSamplesPerKind = DefaultConfig().MaxSamplesPerKind
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		config: config,
		logger: logger.With(zap.String("component", "performance_monitor")),
		now:    time.Now,
	}
}

// RecordKeyGeneration records one cache-key generation measurement.
func (m *Monitor) RecordKeyGeneration(duration time.Duration, textLength int, operation string, extra map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.keyGenerations = append(m.keyGenerations, KeyGenerationMetric{
		Duration:   duration,
		TextLength: textLength,
		Operation:  operation,
		Extra:      extra,
		Timestamp:  m.now(),
	})
	m.keyGenerations = pruneByAge(m.keyGenerations, m.cutoff(), keyGenerationTimestamp)
	m.keyGenerations = pruneByCount(m.keyGenerations, m.config.MaxSamplesPerKind)

	if m.config.SlowKeyGeneration > 0 && duration > m.config.SlowKeyGeneration {
		m.logger.Warn("slow key generation",
			zap.Duration("duration", duration),
			zap.Int("text_length", textLength),
			zap.String("operation", operation),
		)
	}
}

// RecordCacheOperation records one cache operation. Hit/miss counters move
// only for "get" operations; total_operations counts every operation.
func (m *Monitor) RecordCacheOperation(operation string, duration time.Duration, hit bool, textLength int, extra map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cacheOperations = append(m.cacheOperations, CacheOperationMetric{
		Operation:  operation,
		Duration:   duration,
		Hit:        hit,
		TextLength: textLength,
		Extra:      extra,
		Timestamp:  m.now(),
	})
	m.cacheOperations = pruneByAge(m.cacheOperations, m.cutoff(), cacheOperationTimestamp)
	m.cacheOperations = pruneByCount(m.cacheOperations, m.config.MaxSamplesPerKind)

	m.totalOperations++
	if operation == "get" {
		if hit {
			m.cacheHits++
		} else {
			m.cacheMisses++
		}
	}

	if m.config.SlowCacheOperation > 0 && duration > m.config.SlowCacheOperation {
		m.logger.Warn("slow cache operation",
			zap.String("operation", operation),
			zap.Duration("duration", duration),
			zap.Bool("hit", hit),
		)
	}
}

// RecordCompression records one compression measurement. When ratio is zero
// and originalSize is positive, the ratio is derived as compressed/original;
// otherwise the caller-specified value is kept.
func (m *Monitor) RecordCompression(originalSize, compressedSize int, ratio float64, duration time.Duration, operation string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ratio == 0 && originalSize > 0 {
		ratio = float64(compressedSize) / float64(originalSize)
	}

	m.compressions = append(m.compressions, CompressionMetric{
		OriginalSize:   originalSize,
		CompressedSize: compressedSize,
		Ratio:          ratio,
		Duration:       duration,
		Operation:      operation,
		Timestamp:      m.now(),
	})
	m.compressions = pruneByAge(m.compressions, m.cutoff(), compressionTimestamp)
	m.compressions = pruneByCount(m.compressions, m.config.MaxSamplesPerKind)

	if m.config.SlowCompression > 0 && duration > m.config.SlowCompression {
		m.logger.Warn("slow compression",
			zap.Duration("duration", duration),
			zap.Int("original_size", originalSize),
			zap.String("operation", operation),
		)
	}
}

// RecordInvalidation records one invalidation event and raises rate alerts
// when the trailing-hour event count crosses the configured thresholds.
// Sustained high invalidation frequency usually means the cache is being
// defeated by its own clearing logic.
func (m *Monitor) RecordInvalidation(pattern string, keysInvalidated int, duration time.Duration, invalidationType, operationContext string, extra map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.invalidations = append(m.invalidations, InvalidationMetric{
		Pattern:          pattern,
		KeysInvalidated:  keysInvalidated,
		Duration:         duration,
		Type:             invalidationType,
		OperationContext: operationContext,
		Extra:            extra,
		Timestamp:        m.now(),
	})
	m.invalidations = pruneByAge(m.invalidations, m.cutoff(), invalidationTimestamp)
	m.invalidations = pruneByCount(m.invalidations, m.config.MaxSamplesPerKind)

	m.totalInvalidations++
	m.totalKeysInvalidated += int64(keysInvalidated)

	if m.config.SlowInvalidation > 0 && duration > m.config.SlowInvalidation {
		m.logger.Warn("slow invalidation",
			zap.String("pattern", pattern),
			zap.Duration("duration", duration),
		)
	}

	lastHour := m.invalidationsSinceLocked(m.now().Add(-time.Hour))
	switch {
	case m.config.InvalidationCriticalPerHour > 0 && lastHour >= m.config.InvalidationCriticalPerHour:
		m.logger.Error("invalidation rate critical",
			zap.Int("events_last_hour", lastHour),
			zap.Int("critical_threshold", m.config.InvalidationCriticalPerHour),
			zap.String("pattern", pattern),
		)
	case m.config.InvalidationWarnPerHour > 0 && lastHour >= m.config.InvalidationWarnPerHour:
		m.logger.Warn("invalidation rate elevated",
			zap.Int("events_last_hour", lastHour),
			zap.Int("warn_threshold", m.config.InvalidationWarnPerHour),
			zap.String("pattern", pattern),
		)
	}
}

// Reset clears all metric lists and counters atomically.
func (m *Monitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.keyGenerations = nil
	m.cacheOperations = nil
	m.compressions = nil
	m.invalidations = nil
	m.cacheHits = 0
	m.cacheMisses = 0
	m.totalOperations = 0
	m.totalInvalidations = 0
	m.totalKeysInvalidated = 0

	m.logger.Info("performance stats reset")
}

func (m *Monitor) cutoff() time.Time {
	return m.now().Add(-m.config.RetentionWindow)
}

// pruneAllLocked applies both retention policies to every list.
// Callers must hold m.mu.
func (m *Monitor) pruneAllLocked() {
	cutoff := m.cutoff()
	m.keyGenerations = pruneByAge(m.keyGenerations, cutoff, keyGenerationTimestamp)
	m.cacheOperations = pruneByAge(m.cacheOperations, cutoff, cacheOperationTimestamp)
	m.compressions = pruneByAge(m.compressions, cutoff, compressionTimestamp)
	m.invalidations = pruneByAge(m.invalidations, cutoff, invalidationTimestamp)

	max := m.config.MaxSamplesPerKind
	m.keyGenerations = pruneByCount(m.keyGenerations, max)
	m.cacheOperations = pruneByCount(m.cacheOperations, max)
	m.compressions = pruneByCount(m.compressions, max)
	m.invalidations = pruneByCount(m.invalidations, max)
}

func (m *Monitor) invalidationsSinceLocked(since time.Time) int {
	n := 0
	for _, inv := range m.invalidations {
		if !inv.Timestamp.Before(since) {
			n++
		}
	}
	return n
}

// pruneByAge keeps the suffix of list with Timestamp >= cutoff. Lists are
// append-only in timestamp order, so the first retained index is found with
// a forward scan.
func pruneByAge[T any](list []T, cutoff time.Time, ts func(T) time.Time) []T {
	idx := 0
	for idx < len(list) && ts(list[idx]).Before(cutoff) {
		idx++
	}
	if idx == 0 {
		return list
	}
	return append(list[:0:0], list[idx:]...)
}

// pruneByCount keeps the most-recently-appended max entries.
func pruneByCount[T any](list []T, max int) []T {
	if max <= 0 || len(list) <= max {
		return list
	}
	return append(list[:0:0], list[len(list)-max:]...)
}

func keyGenerationTimestamp(m KeyGenerationMetric) time.Time   { return m.Timestamp }
func cacheOperationTimestamp(m CacheOperationMetric) time.Time { return m.Timestamp }
func compressionTimestamp(m CompressionMetric) time.Time       { return m.Timestamp }
func invalidationTimestamp(m InvalidationMetric) time.Time     { return m.Timestamp }
