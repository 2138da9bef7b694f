// Package monitor accumulates cache performance measurements and answers
// aggregate queries over them.
//
// The monitor owns four kinds of timestamped metrics (key generation, cache
// operations, compression, invalidation). Each recorded event appends to its
// list and prunes it by two policies applied together: entries older than
// the retention window are dropped, then the list is truncated to the
// most-recently-appended MaxSamplesPerKind entries. Aggregate queries prune
// first, so two back-to-back reads with no events in between return
// identical numbers.
//
// A single Monitor instance is shared by the cache and the HTTP layer; it
// is injected as an explicit dependency, never a package-level singleton,
// so tests can use isolated instances.
package monitor
