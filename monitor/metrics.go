package monitor

import "time"

// Invalidation type tags.
const (
	InvalidationManual    = "manual"
	InvalidationAutomatic = "automatic"
	InvalidationMemory    = "memory"
	InvalidationTTL       = "ttl"
)

// KeyGenerationMetric records one cache-key generation.
type KeyGenerationMetric struct {
	Duration   time.Duration  `json:"duration_ns"`
	TextLength int            `json:"text_length"`
	Operation  string         `json:"operation"`
	Extra      map[string]any `json:"extra,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
}

// CacheOperationMetric records one cache operation (get/set/delete/invalidate).
type CacheOperationMetric struct {
	Operation  string         `json:"operation"`
	Duration   time.Duration  `json:"duration_ns"`
	Hit        bool           `json:"hit"`
	TextLength int            `json:"text_length"`
	Extra      map[string]any `json:"extra,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
}

// CompressionMetric records one payload compression.
type CompressionMetric struct {
	OriginalSize   int           `json:"original_size"`
	CompressedSize int           `json:"compressed_size"`
	Ratio          float64       `json:"ratio"`
	Duration       time.Duration `json:"duration_ns"`
	Operation      string        `json:"operation"`
	Timestamp      time.Time     `json:"timestamp"`
}

// InvalidationMetric records one invalidation event.
type InvalidationMetric struct {
	Pattern          string         `json:"pattern"`
	KeysInvalidated  int            `json:"keys_invalidated"`
	Duration         time.Duration  `json:"duration_ns"`
	Type             string         `json:"type"`
	OperationContext string         `json:"operation_context,omitempty"`
	Extra            map[string]any `json:"extra,omitempty"`
	Timestamp        time.Time      `json:"timestamp"`
}
