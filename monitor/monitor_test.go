package monitor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestMonitor(cfg Config) *Monitor {
	return New(cfg, zap.NewNop())
}

func TestMonitor_HitMissAccounting(t *testing.T) {
	m := newTestMonitor(DefaultConfig())

	m.RecordCacheOperation("get", time.Millisecond, true, 10, nil)
	m.RecordCacheOperation("get", time.Millisecond, true, 10, nil)
	m.RecordCacheOperation("get", time.Millisecond, false, 10, nil)
	// set operations never move the hit/miss counters
	m.RecordCacheOperation("set", time.Millisecond, false, 10, nil)

	stats := m.PerformanceStats()
	assert.Equal(t, int64(2), stats.CacheHits)
	assert.Equal(t, int64(1), stats.CacheMisses)
	assert.Equal(t, int64(4), stats.TotalOperations)
	assert.InDelta(t, 50.0, stats.HitRatePercent, 0.001)
}

func TestMonitor_EmptyStats(t *testing.T) {
	m := newTestMonitor(DefaultConfig())

	stats := m.PerformanceStats()
	assert.Zero(t, stats.CacheHits)
	assert.Zero(t, stats.TotalOperations)
	assert.Zero(t, stats.HitRatePercent)
	assert.Nil(t, stats.KeyGeneration)
	assert.Nil(t, stats.CacheOperations)
	assert.Nil(t, stats.Compression)
	assert.Nil(t, stats.Invalidation)
}

func TestMonitor_StatsIdempotentWithoutNewEvents(t *testing.T) {
	m := newTestMonitor(DefaultConfig())

	m.RecordKeyGeneration(2*time.Millisecond, 100, "summarize", nil)
	m.RecordCacheOperation("get", 3*time.Millisecond, false, 100, nil)
	m.RecordCompression(1000, 300, 0, time.Millisecond, "set")
	m.RecordInvalidation("summarize", 3, time.Millisecond, InvalidationManual, "", nil)

	first := m.PerformanceStats()
	second := m.PerformanceStats()
	assert.Equal(t, first, second)
}

func TestMonitor_RetentionPruning(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RetentionWindow = time.Hour
	m := newTestMonitor(cfg)

	base := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return base }
	m.RecordKeyGeneration(time.Millisecond, 10, "summarize", nil)
	m.RecordKeyGeneration(time.Millisecond, 10, "summarize", nil)

	// Two hours later the earlier samples age out, counters survive.
	m.now = func() time.Time { return base.Add(2 * time.Hour) }
	m.RecordCacheOperation("get", time.Millisecond, true, 10, nil)

	stats := m.PerformanceStats()
	assert.Nil(t, stats.KeyGeneration)
	require.NotNil(t, stats.CacheOperations)
	assert.Equal(t, 1, stats.CacheOperations.Count)
	assert.Equal(t, int64(1), stats.CacheHits)
}

func TestMonitor_MaxSamplesPruning(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxSamplesPerKind = 5
	m := newTestMonitor(cfg)

	for i := 0; i < 20; i++ {
		m.RecordKeyGeneration(time.Duration(i)*time.Millisecond, 10, "summarize", nil)
	}

	stats := m.PerformanceStats()
	require.NotNil(t, stats.KeyGeneration)
	assert.Equal(t, 5, stats.KeyGeneration.Count)
	// only the most-recently-appended suffix survives: 15..19 ms
	assert.InDelta(t, 15.0, stats.KeyGeneration.MinMs, 0.001)
	assert.InDelta(t, 19.0, stats.KeyGeneration.MaxMs, 0.001)
}

func TestMonitor_DurationAggregates(t *testing.T) {
	m := newTestMonitor(DefaultConfig())

	for _, ms := range []int{4, 1, 3, 2} {
		m.RecordCacheOperation("get", time.Duration(ms)*time.Millisecond, false, 10, nil)
	}
	m.RecordCacheOperation("set", 10*time.Millisecond, false, 10, nil)

	stats := m.PerformanceStats()
	require.NotNil(t, stats.CacheOperations)
	assert.Equal(t, 5, stats.CacheOperations.Count)
	assert.InDelta(t, 4.0, stats.CacheOperations.AvgMs, 0.001)
	assert.InDelta(t, 3.0, stats.CacheOperations.MedianMs, 0.001)
	assert.InDelta(t, 10.0, stats.CacheOperations.MaxMs, 0.001)
	assert.InDelta(t, 1.0, stats.CacheOperations.MinMs, 0.001)

	gets := stats.CacheOperations.ByOperation["get"]
	assert.Equal(t, 4, gets.Count)
	assert.InDelta(t, 2.5, gets.AvgMs, 0.001)
	assert.InDelta(t, 2.5, gets.MedianMs, 0.001)

	sets := stats.CacheOperations.ByOperation["set"]
	assert.Equal(t, 1, sets.Count)
	assert.InDelta(t, 10.0, sets.AvgMs, 0.001)
}

func TestMonitor_CompressionRatioDerived(t *testing.T) {
	m := newTestMonitor(DefaultConfig())

	m.RecordCompression(1000, 250, 0, time.Millisecond, "set")
	m.RecordCompression(2000, 1000, 0, time.Millisecond, "set")
	// caller-specified ratio wins over derivation
	m.RecordCompression(0, 100, 1.5, time.Millisecond, "set")

	stats := m.PerformanceStats()
	require.NotNil(t, stats.Compression)
	assert.Equal(t, 3, stats.Compression.Count)
	assert.InDelta(t, 0.25, stats.Compression.BestRatio, 0.001)
	assert.InDelta(t, 1.5, stats.Compression.WorstRatio, 0.001)
	assert.InDelta(t, 0.5, stats.Compression.MedianRatio, 0.001)
	assert.Equal(t, int64(3000), stats.Compression.TotalOriginalBytes)
	assert.Equal(t, int64(1350), stats.Compression.TotalCompressedBytes)
	assert.Equal(t, int64(1650), stats.Compression.TotalSavedBytes)
	assert.InDelta(t, 55.0, stats.Compression.SavedPercent, 0.001)
}

func TestMonitor_SlowOperations(t *testing.T) {
	m := newTestMonitor(DefaultConfig())

	for _, ms := range []int{1, 1, 1, 10} {
		m.RecordKeyGeneration(time.Duration(ms)*time.Millisecond, 10, "summarize", nil)
	}

	slow := m.RecentSlowOperations(2)
	require.Len(t, slow["key_generation"], 1)
	flagged := slow["key_generation"][0]
	assert.InDelta(t, 10.0, flagged.DurationMs, 0.001)
	assert.Greater(t, flagged.TimesSlower, 2.0)
	assert.Empty(t, slow["cache_operations"])
	assert.Empty(t, slow["compression"])
	assert.Empty(t, slow["invalidation"])
}

func TestMonitor_SlowOperationsUniformValues(t *testing.T) {
	m := newTestMonitor(DefaultConfig())

	for i := 0; i < 4; i++ {
		m.RecordKeyGeneration(5*time.Millisecond, 10, "summarize", nil)
	}

	slow := m.RecentSlowOperations(2)
	assert.Empty(t, slow["key_generation"])
}

// A dominant outlier raises the in-window mean and can mask smaller
// outliers. This is the documented behavior of mean-relative thresholding.
func TestMonitor_SlowOperationsOutlierMasking(t *testing.T) {
	m := newTestMonitor(DefaultConfig())

	for _, ms := range []int{1, 1, 3, 1000} {
		m.RecordKeyGeneration(time.Duration(ms)*time.Millisecond, 10, "summarize", nil)
	}

	slow := m.RecentSlowOperations(2)
	// mean is ~251ms; only the 1000ms sample crosses 2x mean, the 3ms
	// sample (3x the typical value) stays unflagged.
	require.Len(t, slow["key_generation"], 1)
	assert.InDelta(t, 1000.0, slow["key_generation"][0].DurationMs, 0.001)
}

func TestMonitor_Reset(t *testing.T) {
	m := newTestMonitor(DefaultConfig())

	m.RecordCacheOperation("get", time.Millisecond, true, 10, nil)
	m.RecordInvalidation("p", 2, time.Millisecond, InvalidationManual, "", nil)
	m.Reset()

	stats := m.PerformanceStats()
	assert.Zero(t, stats.CacheHits)
	assert.Zero(t, stats.TotalOperations)
	assert.Zero(t, stats.TotalInvalidations)
	assert.Nil(t, stats.CacheOperations)
	assert.Nil(t, stats.Invalidation)
}

func TestMonitor_Export(t *testing.T) {
	m := newTestMonitor(DefaultConfig())

	m.RecordKeyGeneration(time.Millisecond, 10, "summarize", map[string]any{"strategy": "literal"})
	m.RecordCacheOperation("get", time.Millisecond, false, 10, nil)
	m.RecordCompression(100, 50, 0, time.Millisecond, "set")
	m.RecordInvalidation("p", 1, time.Millisecond, InvalidationMemory, "test", nil)

	export := m.ExportMetrics()
	assert.Len(t, export.KeyGenerations, 1)
	assert.Len(t, export.CacheOperations, 1)
	assert.Len(t, export.Compressions, 1)
	assert.Len(t, export.Invalidations, 1)
	assert.Equal(t, int64(1), export.CacheMisses)
	assert.Equal(t, int64(1), export.TotalInvalidations)
	assert.Equal(t, int64(1), export.TotalKeysInvalidated)
	assert.Equal(t, "literal", export.KeyGenerations[0].Extra["strategy"])
	assert.False(t, export.GeneratedAt.IsZero())
}

func TestMonitor_ConcurrentRecording(t *testing.T) {
	m := newTestMonitor(DefaultConfig())

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 100; j++ {
				m.RecordCacheOperation("get", time.Millisecond, j%2 == 0, 10, nil)
				m.RecordKeyGeneration(time.Millisecond, 10, "summarize", nil)
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}

	stats := m.PerformanceStats()
	assert.Equal(t, int64(800), stats.TotalOperations)
	assert.Equal(t, int64(400), stats.CacheHits)
	assert.Equal(t, int64(400), stats.CacheMisses)
}
