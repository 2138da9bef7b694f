package monitor

import (
	"fmt"
	"sort"
	"time"
)

// Alert levels reported by the invalidation-frequency summary.
const (
	AlertNormal   = "normal"
	AlertWarning  = "warning"
	AlertCritical = "critical"
)

// InvalidationFrequencyStats summarizes recent invalidation activity.
type InvalidationFrequencyStats struct {
	TotalEvents     int            `json:"total_events"`
	LastHour        int            `json:"last_hour"`
	Last24Hours     int            `json:"last_24_hours"`
	TopPatterns     []PatternCount `json:"top_patterns"`
	ByType          map[string]int `json:"by_type"`
	AvgKeysPerEvent float64        `json:"avg_keys_per_event"`
	AlertLevel      string         `json:"alert_level"`
}

// PatternCount ranks one invalidation pattern by frequency.
type PatternCount struct {
	Pattern string `json:"pattern"`
	Count   int    `json:"count"`
}

// Recommendation is one actionable suggestion derived from invalidation
// statistics.
type Recommendation struct {
	Severity    string   `json:"severity"`
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions"`
}

// InvalidationFrequencyStats prunes and returns the invalidation summary,
// or a zero-valued summary with AlertLevel "normal" when there is no
// history.
func (m *Monitor) InvalidationFrequencyStats() InvalidationFrequencyStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pruneAllLocked()

	if stats := m.invalidationFrequencyLocked(); stats != nil {
		return *stats
	}
	return InvalidationFrequencyStats{
		TopPatterns: []PatternCount{},
		ByType:      map[string]int{},
		AlertLevel:  AlertNormal,
	}
}

// invalidationFrequencyLocked computes the summary from the retained
// invalidation list. Returns nil when the list is empty. Callers must hold
// m.mu.
func (m *Monitor) invalidationFrequencyLocked() *InvalidationFrequencyStats {
	if len(m.invalidations) == 0 {
		return nil
	}

	now := m.now()
	stats := &InvalidationFrequencyStats{
		TotalEvents: len(m.invalidations),
		ByType:      make(map[string]int),
	}

	patternCounts := make(map[string]int)
	var totalKeys int64
	for _, inv := range m.invalidations {
		if !inv.Timestamp.Before(now.Add(-time.Hour)) {
			stats.LastHour++
		}
		if !inv.Timestamp.Before(now.Add(-24 * time.Hour)) {
			stats.Last24Hours++
		}
		patternCounts[inv.Pattern]++
		stats.ByType[inv.Type]++
		totalKeys += int64(inv.KeysInvalidated)
	}
	stats.AvgKeysPerEvent = float64(totalKeys) / float64(len(m.invalidations))

	stats.TopPatterns = make([]PatternCount, 0, len(patternCounts))
	for pattern, count := range patternCounts {
		stats.TopPatterns = append(stats.TopPatterns, PatternCount{Pattern: pattern, Count: count})
	}
	sort.Slice(stats.TopPatterns, func(i, j int) bool {
		if stats.TopPatterns[i].Count != stats.TopPatterns[j].Count {
			return stats.TopPatterns[i].Count > stats.TopPatterns[j].Count
		}
		return stats.TopPatterns[i].Pattern < stats.TopPatterns[j].Pattern
	})
	if len(stats.TopPatterns) > 10 {
		stats.TopPatterns = stats.TopPatterns[:10]
	}

	switch {
	case m.config.InvalidationCriticalPerHour > 0 && stats.LastHour >= m.config.InvalidationCriticalPerHour:
		stats.AlertLevel = AlertCritical
	case m.config.InvalidationWarnPerHour > 0 && stats.LastHour >= m.config.InvalidationWarnPerHour:
		stats.AlertLevel = AlertWarning
	default:
		stats.AlertLevel = AlertNormal
	}

	return stats
}

// InvalidationRecommendations derives actionable suggestions from
// invalidation statistics. Returns an empty slice when there is no history.
func (m *Monitor) InvalidationRecommendations() []Recommendation {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pruneAllLocked()

	stats := m.invalidationFrequencyLocked()
	if stats == nil {
		return []Recommendation{}
	}

	recs := []Recommendation{}

	switch stats.AlertLevel {
	case AlertCritical:
		recs = append(recs, Recommendation{
			Severity: AlertCritical,
			Message: fmt.Sprintf("invalidation rate is critical: %d events in the last hour (critical threshold %d)",
				stats.LastHour, m.config.InvalidationCriticalPerHour),
			Suggestions: []string{
				"audit callers issuing invalidations; a write path may be clearing the cache on every request",
				"batch related invalidations into a single pattern",
				"consider relying on TTL expiry instead of explicit invalidation",
			},
		})
	case AlertWarning:
		recs = append(recs, Recommendation{
			Severity: AlertWarning,
			Message: fmt.Sprintf("invalidation rate is elevated: %d events in the last hour (warning threshold %d)",
				stats.LastHour, m.config.InvalidationWarnPerHour),
			Suggestions: []string{
				"review invalidation triggers for redundant calls",
				"verify TTLs are not so long that manual invalidation became the norm",
			},
		})
	}

	if len(stats.TopPatterns) > 0 {
		top := stats.TopPatterns[0]
		if float64(top.Count) > float64(stats.TotalEvents)/2 {
			recs = append(recs, Recommendation{
				Severity: AlertWarning,
				Message: fmt.Sprintf("pattern %q accounts for %d of %d recent invalidations (%.0f%%)",
					top.Pattern, top.Count, stats.TotalEvents,
					float64(top.Count)/float64(stats.TotalEvents)*100),
				Suggestions: []string{
					"narrow the dominant pattern so unrelated entries survive",
					"check whether the caller behind this pattern can invalidate specific keys instead",
				},
			})
		}
	}

	if stats.AvgKeysPerEvent < 1 {
		recs = append(recs, Recommendation{
			Severity: AlertWarning,
			Message: fmt.Sprintf("invalidations average %.2f keys per event; most invalidations delete nothing",
				stats.AvgKeysPerEvent),
			Suggestions: []string{
				"verify invalidation patterns match the key layout actually written",
				"skip invalidation when the triggering change cannot have cached entries",
			},
		})
	}

	if stats.AvgKeysPerEvent > 100 {
		recs = append(recs, Recommendation{
			Severity: AlertWarning,
			Message: fmt.Sprintf("invalidations average %.0f keys per event; patterns are very broad",
				stats.AvgKeysPerEvent),
			Suggestions: []string{
				"scope patterns to a single operation or tenant",
				"prefer invalidate-by-operation over invalidate-all",
			},
		})
	}

	return recs
}
