// Package cache implements the tiered response cache for AI text
// processing: a deterministic key generator, a bounded in-process memory
// tier with FIFO eviction, and a Redis-backed second tier with size-tiered
// TTLs and optional gzip compression.
//
// The cache is reliability-neutral: any failure of the external store
// degrades to "no cache available" (a miss on reads, a skipped tier-2
// write on sets) and is never propagated to callers. Only contract
// violations, such as invalid configuration, surface as errors.
package cache
