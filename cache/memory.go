package cache

import "sync"

// Entry is a cached response: an arbitrary JSON-serializable mapping
// produced by the AI layer, augmented by the cache with a cached_at
// timestamp. The cache owns entries from the moment Set is called; callers
// receive the map by reference and must not mutate it.
type Entry map[string]any

// memoryTier is the bounded in-process tier: a key/entry map plus an
// insertion-order sequence. Eviction is FIFO with overwrite-touch:
// re-setting an existing key moves it to the newest end, but a read hit
// never reorders. Promoting on read would make the hot path mutate shared
// state under the lock on every Get; FIFO is good enough given the short
// turnover of this tier.
type memoryTier struct {
	mu         sync.Mutex
	maxEntries int
	entries    map[string]Entry
	order      []string
}

func newMemoryTier(maxEntries int) *memoryTier {
	return &memoryTier{
		maxEntries: maxEntries,
		entries:    make(map[string]Entry),
	}
}

// Get returns the entry for key. Hits do not affect eviction order.
func (t *memoryTier) Get(key string) (Entry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.entries[key]
	return entry, ok
}

// Set inserts or overwrites key. On overwrite the key moves to the newest
// end of the order sequence. When the bound is exceeded the oldest entry
// is evicted. A zero bound disables the tier entirely: insertion is
// skipped rather than attempting eviction from an empty sequence.
func (t *memoryTier) Set(key string, value Entry) {
	if t.maxEntries == 0 {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.entries[key]; exists {
		for i, k := range t.order {
			if k == key {
				t.order = append(t.order[:i], t.order[i+1:]...)
				break
			}
		}
	}

	t.entries[key] = value
	t.order = append(t.order, key)

	if len(t.entries) > t.maxEntries {
		oldest := t.order[0]
		t.order = t.order[1:]
		delete(t.entries, oldest)
	}
}

// Clear empties the tier and returns the number of entries removed.
func (t *memoryTier) Clear() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := len(t.entries)
	t.entries = make(map[string]Entry)
	t.order = nil
	return n
}

// Len returns the current entry count.
func (t *memoryTier) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// keys returns a snapshot of the order sequence, oldest first.
func (t *memoryTier) keys() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.order...)
}
