package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/BaSui01/textcache/monitor"
	"github.com/BaSui01/textcache/store"
)

// Fetch status tags attached to cache-operation metrics.
const (
	statusOK               = "ok"
	statusMiss             = "miss"
	statusConnectionFailed = "connection_failed"
	statusStoreError       = "store_error"
	statusCorruptEntry     = "corrupt_entry"
	statusNoKeysFound      = "no_keys_found"
)

// TieredCache coordinates the in-process memory tier and the external
// key-value store. All key generation is delegated to KeyGenerator and
// all metric recording to the injected Monitor.
type TieredCache struct {
	config  Config
	store   store.Store
	keys    *KeyGenerator
	monitor *monitor.Monitor
	memory  *memoryTier
	logger  *zap.Logger

	// flight collapses concurrent tier-2 lookups for the same key so a
	// popular key being recomputed does not stampede the store.
	flight singleflight.Group
}

type fetchResult struct {
	entry  Entry
	status string
}

// New creates a TieredCache. Configuration contract violations are the
// only error path; a dead store is a runtime condition handled per call.
func New(config Config, st store.Store, mon *monitor.Monitor, logger *zap.Logger) (*TieredCache, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &TieredCache{
		config:  config,
		store:   st,
		keys:    NewKeyGenerator(config.HashThreshold, mon),
		monitor: mon,
		memory:  newMemoryTier(config.MemoryMaxEntries),
		logger:  logger.With(zap.String("component", "tiered_cache")),
	}, nil
}

// Get returns the cached entry for (text, operation, options, question),
// or (nil, false) on a miss. The memory tier is checked first, so a memory
// hit never incurs store latency. Store unavailability and corrupt
// payloads degrade to a miss and never raise.
func (c *TieredCache) Get(ctx context.Context, text, operation string, options map[string]any, question string) (Entry, bool) {
	start := time.Now()
	key := c.keys.GenerateKey(text, operation, options, question)
	textLength := len([]rune(text))

	if entry, ok := c.memory.Get(key); ok {
		c.monitor.RecordCacheOperation("get", time.Since(start), true, textLength, map[string]any{
			"tier": "memory",
		})
		return entry, true
	}

	v, _, _ := c.flight.Do(key, func() (any, error) {
		return c.fetchFromStore(ctx, key), nil
	})
	result := v.(*fetchResult)

	if result.status == statusOK {
		c.monitor.RecordCacheOperation("get", time.Since(start), true, textLength, map[string]any{
			"tier": "store",
		})
		return result.entry, true
	}

	c.monitor.RecordCacheOperation("get", time.Since(start), false, textLength, map[string]any{
		"status": result.status,
	})
	return nil, false
}

// fetchFromStore looks up key in tier 2 and backfills the memory tier on
// a hit, so the value just fetched is what subsequent memory hits return.
func (c *TieredCache) fetchFromStore(ctx context.Context, key string) *fetchResult {
	if !c.store.Connect(ctx) {
		return &fetchResult{status: statusConnectionFailed}
	}

	data, err := c.store.Get(ctx, c.storeKey(key))
	if err != nil {
		c.logger.Warn("tier-2 read failed", zap.String("key", key), zap.Error(err))
		return &fetchResult{status: statusStoreError}
	}
	if data == nil {
		return &fetchResult{status: statusMiss}
	}

	payload, err := decodeEnvelope(data)
	if err != nil {
		// a corrupted entry is operationally equivalent to an absent one
		c.logger.Error("corrupt cache entry", zap.String("key", key), zap.Error(err))
		return &fetchResult{status: statusCorruptEntry}
	}

	var entry Entry
	if err := json.Unmarshal(payload, &entry); err != nil {
		c.logger.Error("undecodable cache entry", zap.String("key", key), zap.Error(err))
		return &fetchResult{status: statusCorruptEntry}
	}

	c.memory.Set(key, entry)
	return &fetchResult{entry: entry, status: statusOK}
}

// Set stores value under the key derived from (text, operation, options,
// question). The entry is augmented with a cached_at timestamp, written
// to tier 2 with a size-tiered TTL (compressed when large), and always
// mirrored uncompressed into the memory tier regardless of the tier-2
// outcome. The only error path is an unserializable value, which is a
// caller bug.
func (c *TieredCache) Set(ctx context.Context, text, operation string, options map[string]any, value Entry, question string) error {
	start := time.Now()
	key := c.keys.GenerateKey(text, operation, options, question)
	textLength := len([]rune(text))

	entry := make(Entry, len(value)+1)
	for k, v := range value {
		entry[k] = v
	}
	entry["cached_at"] = time.Now().UTC().Format(time.RFC3339Nano)

	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("serialize cache entry: %w", err)
	}

	envelope := encodeRaw(payload)
	compressed := false
	if len(payload) > c.config.CompressionThreshold {
		cstart := time.Now()
		gz, gzErr := encodeGzip(payload, c.config.CompressionLevel)
		if gzErr != nil {
			c.logger.Warn("compression failed, storing raw", zap.Error(gzErr))
		} else {
			envelope = gz
			compressed = true
			c.monitor.RecordCompression(len(payload), len(gz)-1, 0, time.Since(cstart), operation)
		}
	}

	ttl := c.config.ttlFor(textLength)
	if c.store.Connect(ctx) {
		if err := c.store.Set(ctx, c.storeKey(key), envelope, ttl); err != nil {
			c.logger.Warn("tier-2 write failed", zap.String("key", key), zap.Error(err))
		}
	} else {
		c.logger.Warn("store unavailable, skipping tier-2 write", zap.String("key", key))
	}

	c.memory.Set(key, entry)

	c.monitor.RecordCacheOperation("set", time.Since(start), false, textLength, map[string]any{
		"compressed": compressed,
		"ttl":        ttl.String(),
	})
	return nil
}

// InvalidatePattern deletes every tier-2 key whose logical key contains
// pattern as a substring. An empty pattern matches all cache keys. Store
// failures are recorded in the invalidation metric, never raised.
func (c *TieredCache) InvalidatePattern(ctx context.Context, pattern, operationContext string) {
	match := c.config.KeyPrefix + "*"
	if pattern != "" {
		match = c.config.KeyPrefix + "*" + pattern + "*"
	}
	c.invalidateMatch(ctx, match, pattern, operationContext, nil)
}

// InvalidateAll deletes every tier-2 key under the cache's namespace.
func (c *TieredCache) InvalidateAll(ctx context.Context, operationContext string) {
	c.InvalidatePattern(ctx, "", operationContext)
}

// InvalidateByOperation deletes tier-2 keys for a single operation. The
// match is anchored at the operation tag, so a text that merely mentions
// the operation name elsewhere in its key does not match.
func (c *TieredCache) InvalidateByOperation(ctx context.Context, operation, operationContext string) {
	match := c.config.KeyPrefix + operation + ":*"
	c.invalidateMatch(ctx, match, operation, operationContext, map[string]any{"scope": "operation"})
}

func (c *TieredCache) invalidateMatch(ctx context.Context, match, pattern, operationContext string, extra map[string]any) {
	start := time.Now()
	if extra == nil {
		extra = map[string]any{}
	}

	count := 0
	switch {
	case !c.store.Connect(ctx):
		extra["status"] = statusConnectionFailed
	default:
		keys, err := c.store.ScanKeys(ctx, match)
		switch {
		case err != nil:
			c.logger.Warn("invalidation scan failed", zap.String("match", match), zap.Error(err))
			extra["status"] = statusStoreError
		case len(keys) == 0:
			extra["status"] = statusNoKeysFound
		default:
			if err := c.store.Delete(ctx, keys...); err != nil {
				c.logger.Warn("invalidation delete failed", zap.String("match", match), zap.Error(err))
				extra["status"] = statusStoreError
			} else {
				count = len(keys)
				extra["status"] = statusOK
			}
		}
	}

	c.monitor.RecordInvalidation(pattern, count, time.Since(start), monitor.InvalidationManual, operationContext, extra)

	c.logger.Info("cache invalidation",
		zap.String("pattern", pattern),
		zap.Int("keys_invalidated", count),
		zap.Any("status", extra["status"]),
	)
}

// InvalidateMemory clears the memory tier only; tier 2 is untouched.
func (c *TieredCache) InvalidateMemory(operationContext string) {
	start := time.Now()
	removed := c.memory.Clear()
	c.monitor.RecordInvalidation("", removed, time.Since(start), monitor.InvalidationMemory, operationContext, map[string]any{
		"status": statusOK,
		"tier":   "memory",
	})

	c.logger.Info("memory tier cleared", zap.Int("entries_removed", removed))
}

// MemoryLen returns the current memory-tier entry count, for status
// reporting.
func (c *TieredCache) MemoryLen() int {
	return c.memory.Len()
}

// GenerateKey exposes key generation for callers that need the raw key
// (status endpoints, tests).
func (c *TieredCache) GenerateKey(text, operation string, options map[string]any, question string) string {
	return c.keys.GenerateKey(text, operation, options, question)
}

func (c *TieredCache) storeKey(key string) string {
	return c.config.KeyPrefix + key
}
