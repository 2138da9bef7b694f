package monitor

import (
	"sort"
	"time"
)

// Stats is the aggregate view returned by PerformanceStats. The counter
// fields are always present (zero-valued when nothing was recorded); the
// per-kind sections are nil when their kind has no retained samples.
type Stats struct {
	CacheHits            int64   `json:"cache_hits"`
	CacheMisses          int64   `json:"cache_misses"`
	TotalOperations      int64   `json:"total_operations"`
	TotalInvalidations   int64   `json:"total_invalidations"`
	TotalKeysInvalidated int64   `json:"total_keys_invalidated"`
	HitRatePercent       float64 `json:"hit_rate_percent"`

	KeyGeneration   *DurationStats              `json:"key_generation,omitempty"`
	CacheOperations *CacheOperationStats        `json:"cache_operations,omitempty"`
	Compression     *CompressionStats           `json:"compression,omitempty"`
	Invalidation    *InvalidationFrequencyStats `json:"invalidation,omitempty"`
}

// DurationStats aggregates a set of duration measurements in milliseconds.
type DurationStats struct {
	Count    int     `json:"count"`
	AvgMs    float64 `json:"avg_ms"`
	MedianMs float64 `json:"median_ms"`
	MaxMs    float64 `json:"max_ms"`
	MinMs    float64 `json:"min_ms"`
}

// CacheOperationStats aggregates cache-operation timings overall and per
// operation name.
type CacheOperationStats struct {
	DurationStats
	ByOperation map[string]DurationStats `json:"by_operation"`
}

// CompressionStats summarizes compression effectiveness. Ratio is
// compressed/original, so lower is better.
type CompressionStats struct {
	Count                int     `json:"count"`
	AvgRatio             float64 `json:"avg_ratio"`
	MedianRatio          float64 `json:"median_ratio"`
	BestRatio            float64 `json:"best_ratio"`
	WorstRatio           float64 `json:"worst_ratio"`
	TotalOriginalBytes   int64   `json:"total_original_bytes"`
	TotalCompressedBytes int64   `json:"total_compressed_bytes"`
	TotalSavedBytes      int64   `json:"total_saved_bytes"`
	SavedPercent         float64 `json:"saved_percent"`
}

// SlowOperation is one mean-relative outlier flagged by RecentSlowOperations.
type SlowOperation struct {
	Operation   string    `json:"operation,omitempty"`
	DurationMs  float64   `json:"duration_ms"`
	MeanMs      float64   `json:"mean_ms"`
	TimesSlower float64   `json:"times_slower"`
	Timestamp   time.Time `json:"timestamp"`
}

// Export is the full serialized monitor state for external analysis.
type Export struct {
	GeneratedAt          time.Time              `json:"generated_at"`
	CacheHits            int64                  `json:"cache_hits"`
	CacheMisses          int64                  `json:"cache_misses"`
	TotalOperations      int64                  `json:"total_operations"`
	TotalInvalidations   int64                  `json:"total_invalidations"`
	TotalKeysInvalidated int64                  `json:"total_keys_invalidated"`
	KeyGenerations       []KeyGenerationMetric  `json:"key_generations"`
	CacheOperations      []CacheOperationMetric `json:"cache_operations"`
	Compressions         []CompressionMetric    `json:"compressions"`
	Invalidations        []InvalidationMetric   `json:"invalidations"`
}

// PerformanceStats prunes all metric lists and returns aggregate statistics.
func (m *Monitor) PerformanceStats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pruneAllLocked()

	stats := Stats{
		CacheHits:            m.cacheHits,
		CacheMisses:          m.cacheMisses,
		TotalOperations:      m.totalOperations,
		TotalInvalidations:   m.totalInvalidations,
		TotalKeysInvalidated: m.totalKeysInvalidated,
	}
	if m.totalOperations > 0 {
		stats.HitRatePercent = float64(m.cacheHits) / float64(m.totalOperations) * 100
	}

	if len(m.keyGenerations) > 0 {
		durations := make([]float64, len(m.keyGenerations))
		for i, kg := range m.keyGenerations {
			durations[i] = toMs(kg.Duration)
		}
		ds := durationStats(durations)
		stats.KeyGeneration = &ds
	}

	if len(m.cacheOperations) > 0 {
		all := make([]float64, len(m.cacheOperations))
		grouped := make(map[string][]float64)
		for i, op := range m.cacheOperations {
			ms := toMs(op.Duration)
			all[i] = ms
			grouped[op.Operation] = append(grouped[op.Operation], ms)
		}
		byOp := make(map[string]DurationStats, len(grouped))
		for name, durations := range grouped {
			byOp[name] = durationStats(durations)
		}
		stats.CacheOperations = &CacheOperationStats{
			DurationStats: durationStats(all),
			ByOperation:   byOp,
		}
	}

	if len(m.compressions) > 0 {
		stats.Compression = compressionStatsLocked(m.compressions)
	}

	if len(m.invalidations) > 0 {
		stats.Invalidation = m.invalidationFrequencyLocked()
	}

	return stats
}

// RecentSlowOperations flags, for each metric kind, every retained
// measurement slower than mean*thresholdMultiplier. The threshold is
// relative to the in-window mean, so a single extreme outlier raises the
// mean and can mask itself or smaller outliers; this is the documented,
// intentional behavior, not a robust outlier statistic.
func (m *Monitor) RecentSlowOperations(thresholdMultiplier float64) map[string][]SlowOperation {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pruneAllLocked()

	result := map[string][]SlowOperation{
		"key_generation":   {},
		"cache_operations": {},
		"compression":      {},
		"invalidation":     {},
	}

	result["key_generation"] = flagSlow(m.keyGenerations, thresholdMultiplier,
		func(kg KeyGenerationMetric) (time.Duration, string, time.Time) {
			return kg.Duration, kg.Operation, kg.Timestamp
		})
	result["cache_operations"] = flagSlow(m.cacheOperations, thresholdMultiplier,
		func(op CacheOperationMetric) (time.Duration, string, time.Time) {
			return op.Duration, op.Operation, op.Timestamp
		})
	result["compression"] = flagSlow(m.compressions, thresholdMultiplier,
		func(cm CompressionMetric) (time.Duration, string, time.Time) {
			return cm.Duration, cm.Operation, cm.Timestamp
		})
	result["invalidation"] = flagSlow(m.invalidations, thresholdMultiplier,
		func(inv InvalidationMetric) (time.Duration, string, time.Time) {
			return inv.Duration, inv.Pattern, inv.Timestamp
		})

	return result
}

// ExportMetrics serializes every retained metric plus the running counters.
// It shares the pruning side effect with PerformanceStats but mutates
// nothing else.
func (m *Monitor) ExportMetrics() Export {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pruneAllLocked()

	return Export{
		GeneratedAt:          m.now(),
		CacheHits:            m.cacheHits,
		CacheMisses:          m.cacheMisses,
		TotalOperations:      m.totalOperations,
		TotalInvalidations:   m.totalInvalidations,
		TotalKeysInvalidated: m.totalKeysInvalidated,
		KeyGenerations:       append([]KeyGenerationMetric(nil), m.keyGenerations...),
		CacheOperations:      append([]CacheOperationMetric(nil), m.cacheOperations...),
		Compressions:         append([]CompressionMetric(nil), m.compressions...),
		Invalidations:        append([]InvalidationMetric(nil), m.invalidations...),
	}
}

func flagSlow[T any](list []T, multiplier float64, fields func(T) (time.Duration, string, time.Time)) []SlowOperation {
	if len(list) == 0 {
		return []SlowOperation{}
	}

	var sum float64
	for _, item := range list {
		d, _, _ := fields(item)
		sum += toMs(d)
	}
	mean := sum / float64(len(list))
	if mean == 0 {
		return []SlowOperation{}
	}

	threshold := mean * multiplier
	flagged := []SlowOperation{}
	for _, item := range list {
		d, op, ts := fields(item)
		ms := toMs(d)
		if ms > threshold {
			flagged = append(flagged, SlowOperation{
				Operation:   op,
				DurationMs:  ms,
				MeanMs:      mean,
				TimesSlower: ms / mean,
				Timestamp:   ts,
			})
		}
	}
	return flagged
}

func compressionStatsLocked(list []CompressionMetric) *CompressionStats {
	ratios := make([]float64, len(list))
	cs := &CompressionStats{Count: len(list)}
	for i, cm := range list {
		ratios[i] = cm.Ratio
		cs.TotalOriginalBytes += int64(cm.OriginalSize)
		cs.TotalCompressedBytes += int64(cm.CompressedSize)
	}
	sort.Float64s(ratios)

	var sum float64
	for _, r := range ratios {
		sum += r
	}
	cs.AvgRatio = sum / float64(len(ratios))
	cs.MedianRatio = median(ratios)
	cs.BestRatio = ratios[0]
	cs.WorstRatio = ratios[len(ratios)-1]
	cs.TotalSavedBytes = cs.TotalOriginalBytes - cs.TotalCompressedBytes
	if cs.TotalOriginalBytes > 0 {
		cs.SavedPercent = float64(cs.TotalSavedBytes) / float64(cs.TotalOriginalBytes) * 100
	}
	return cs
}

func durationStats(durations []float64) DurationStats {
	sorted := append([]float64(nil), durations...)
	sort.Float64s(sorted)

	var sum float64
	for _, d := range sorted {
		sum += d
	}
	return DurationStats{
		Count:    len(sorted),
		AvgMs:    sum / float64(len(sorted)),
		MedianMs: median(sorted),
		MaxMs:    sorted[len(sorted)-1],
		MinMs:    sorted[0],
	}
}

// median expects a sorted slice.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func toMs(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
