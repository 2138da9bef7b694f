package testutil

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

// TestContext returns a context bounded to 30 seconds, canceled on
// test cleanup.
func TestContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// CanceledContext returns an already-canceled context.
func CanceledContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx
}

// WaitFor polls condition until it returns true or the timeout elapses.
func WaitFor(condition func() bool, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

// MustJSON marshals v to a JSON string, panicking on failure.
func MustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(data)
}

// RepeatText builds a text of exactly n runes from a repeating phrase.
func RepeatText(n int) string {
	const phrase = "the quick brown fox jumps over the lazy dog "
	var b strings.Builder
	b.Grow(n)
	for b.Len() < n {
		b.WriteString(phrase)
	}
	return string([]rune(b.String())[:n])
}
