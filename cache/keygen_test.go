package cache

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/textcache/monitor"
)

func TestGenerateKeyLiteralForm(t *testing.T) {
	g := NewKeyGenerator(1000, nil)

	key := g.GenerateKey("hello", "summarize", nil, "")

	assert.True(t, strings.HasPrefix(key, "summarize:txt:5:hello:opt:"), key)
	assert.NotContains(t, key, ":q:")
}

func TestGenerateKeyHashedForm(t *testing.T) {
	g := NewKeyGenerator(10, nil)
	text := strings.Repeat("x", 50)

	key := g.GenerateKey(text, "summarize", nil, "")

	assert.True(t, strings.HasPrefix(key, "summarize:hash:"), key)
	assert.Contains(t, key, "|len:50:")
	assert.NotContains(t, key, text, "long text must not appear literally")
}

func TestGenerateKeyHashThresholdBoundary(t *testing.T) {
	g := NewKeyGenerator(5, nil)

	// exactly at the threshold stays literal; one past it hashes
	atLimit := g.GenerateKey("abcde", "echo", nil, "")
	assert.Contains(t, atLimit, "txt:5:abcde")

	overLimit := g.GenerateKey("abcdef", "echo", nil, "")
	assert.Contains(t, overLimit, "hash:")
}

func TestGenerateKeyRuneCounting(t *testing.T) {
	g := NewKeyGenerator(1000, nil)

	// 4 characters, 12 bytes
	key := g.GenerateKey("日本語文", "summarize", nil, "")
	assert.Contains(t, key, "txt:4:日本語文")
}

func TestGenerateKeyQuestionSuffix(t *testing.T) {
	g := NewKeyGenerator(1000, nil)

	plain := g.GenerateKey("text", "answer", nil, "")
	withQ := g.GenerateKey("text", "answer", nil, "what is this?")
	otherQ := g.GenerateKey("text", "answer", nil, "who wrote this?")

	assert.NotContains(t, plain, ":q:")
	assert.Contains(t, withQ, ":q:")
	assert.NotEqual(t, withQ, otherQ)
	assert.NotContains(t, withQ, "what is this?", "question is digested, not embedded")
}

func TestGenerateKeyOptionOrderInsensitive(t *testing.T) {
	g := NewKeyGenerator(1000, nil)

	a := g.GenerateKey("text", "summarize", map[string]any{"max_length": 100, "style": "brief"}, "")
	b := g.GenerateKey("text", "summarize", map[string]any{"style": "brief", "max_length": 100}, "")

	assert.Equal(t, a, b)
}

func TestGenerateKeyOptionValueSensitive(t *testing.T) {
	g := NewKeyGenerator(1000, nil)

	a := g.GenerateKey("text", "summarize", map[string]any{"max_length": 100}, "")
	b := g.GenerateKey("text", "summarize", map[string]any{"max_length": 200}, "")
	c := g.GenerateKey("text", "summarize", nil, "")

	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestGenerateKeyNilAndEmptyOptionsEquivalent(t *testing.T) {
	g := NewKeyGenerator(1000, nil)

	assert.Equal(t,
		g.GenerateKey("text", "summarize", nil, ""),
		g.GenerateKey("text", "summarize", map[string]any{}, ""),
	)
}

func TestGenerateKeyEmptyText(t *testing.T) {
	g := NewKeyGenerator(1000, nil)

	key := g.GenerateKey("", "summarize", nil, "")
	assert.Contains(t, key, "txt:0:")
}

func TestGenerateKeyDelimiterSafety(t *testing.T) {
	g := NewKeyGenerator(1000, nil)

	// texts crafted to collide if the delimiter were not length-prefixed
	a := g.GenerateKey("a:opt", "op", nil, "")
	b := g.GenerateKey("a", "op", map[string]any{"opt": true}, "")
	assert.NotEqual(t, a, b)
}

func TestGenerateKeyRecordsMetric(t *testing.T) {
	mon := monitor.New(monitor.Config{}, nil)
	g := NewKeyGenerator(3, mon)

	g.GenerateKey("ab", "echo", nil, "")
	g.GenerateKey("abcd", "echo", nil, "")

	stats := mon.PerformanceStats()
	require.NotNil(t, stats.KeyGeneration)
	assert.Equal(t, 2, stats.KeyGeneration.Count)
}
