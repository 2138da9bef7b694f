package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/BaSui01/textcache/monitor"
)

// Key generation strategies reported in the key-generation metric.
const (
	strategyLiteral = "literal"
	strategyHashed  = "hashed"
)

// KeyGenerator turns (text, operation, options, question) into a
// deterministic cache key. Short texts are embedded literally with a
// length prefix; long texts are replaced by a truncated SHA-256 digest
// with the original character count preserved for diagnostics.
type KeyGenerator struct {
	hashThreshold int
	monitor       *monitor.Monitor
}

// NewKeyGenerator creates a KeyGenerator. Texts longer than hashThreshold
// characters take the hashing path. The monitor receives one
// key-generation metric per call and may be nil.
func NewKeyGenerator(hashThreshold int, mon *monitor.Monitor) *KeyGenerator {
	return &KeyGenerator{
		hashThreshold: hashThreshold,
		monitor:       mon,
	}
}

// GenerateKey builds the cache key. It is a pure function of its inputs:
// identical arguments always yield identical keys, and reordering option
// keys does not change the result. Any text length, including zero, is
// valid.
func (g *KeyGenerator) GenerateKey(text, operation string, options map[string]any, question string) string {
	start := time.Now()

	textLength := utf8.RuneCountInString(text)

	strategy := strategyLiteral
	var textDescriptor string
	if textLength > g.hashThreshold {
		strategy = strategyHashed
		sum := sha256.Sum256([]byte(text))
		// keep the original length alongside the digest; the text itself
		// is discarded but its size still matters for diagnostics
		textDescriptor = fmt.Sprintf("hash:%s|len:%d", hex.EncodeToString(sum[:16]), textLength)
	} else {
		// the length prefix makes the literal form unambiguous even when
		// the text contains the key delimiters
		textDescriptor = fmt.Sprintf("txt:%d:%s", textLength, text)
	}

	var b strings.Builder
	b.WriteString(operation)
	b.WriteByte(':')
	b.WriteString(textDescriptor)
	b.WriteString(":opt:")
	b.WriteString(digestOptions(options))
	if question != "" {
		b.WriteString(":q:")
		b.WriteString(shortDigest([]byte(question)))
	}
	key := b.String()

	if g.monitor != nil {
		g.monitor.RecordKeyGeneration(time.Since(start), textLength, operation, map[string]any{
			"strategy": strategy,
		})
	}

	return key
}

// digestOptions canonicalizes the options map (sorted keys, stable JSON
// value encoding) and returns a short digest of the canonical form, so
// semantically identical option sets always digest identically regardless
// of insertion order. nil is treated as an empty map.
func digestOptions(options map[string]any) string {
	if len(options) == 0 {
		return shortDigest(nil)
	}

	keys := make([]string, 0, len(options))
	for k := range options {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(canonicalValue(options[k]))
	}
	return shortDigest([]byte(b.String()))
}

// canonicalValue stringifies an option value deterministically. JSON
// encoding sorts nested map keys, which keeps compound values stable too.
func canonicalValue(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

func shortDigest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8])
}
