package cache

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/BaSui01/textcache/types"
)

// TTLTier maps a maximum text length (in characters) to the tier-2 TTL
// used for entries generated from texts up to that length.
type TTLTier struct {
	MaxTextLength int           `yaml:"max_text_length" json:"max_text_length"`
	TTL           time.Duration `yaml:"ttl" json:"ttl"`
}

// Config holds cache tuning parameters. All values arrive already parsed
// from the config package.
type Config struct {
	// Namespace prefix for all tier-2 keys.
	KeyPrefix string `yaml:"key_prefix" json:"key_prefix"`

	// Texts longer than this many characters are hashed into the cache
	// key instead of embedded literally.
	HashThreshold int `yaml:"hash_threshold" json:"hash_threshold"`

	// Maximum entries held in the memory tier. Zero disables the tier.
	MemoryMaxEntries int `yaml:"memory_max_entries" json:"memory_max_entries"`

	// Serialized payloads above this many bytes are gzip-compressed
	// before the tier-2 write.
	CompressionThreshold int `yaml:"compression_threshold" json:"compression_threshold"`

	// gzip level, 1 (fastest) to 9 (best).
	CompressionLevel int `yaml:"compression_level" json:"compression_level"`

	// TTL tiers by original text length; small texts keep long TTLs,
	// oversized entries get capped shorter to bound store footprint.
	TTLTiers []TTLTier `yaml:"ttl_tiers" json:"ttl_tiers"`

	// TTL for texts longer than every tier.
	DefaultTTL time.Duration `yaml:"default_ttl" json:"default_ttl"`
}

// DefaultConfig returns cache defaults.
func DefaultConfig() Config {
	return Config{
		KeyPrefix:            "textcache:",
		HashThreshold:        1000,
		MemoryMaxEntries:     1000,
		CompressionThreshold: 1024,
		CompressionLevel:     6,
		TTLTiers: []TTLTier{
			{MaxTextLength: 500, TTL: 24 * time.Hour},
			{MaxTextLength: 5000, TTL: 6 * time.Hour},
		},
		DefaultTTL: time.Hour,
	}
}

// Validate reports configuration contract violations.
func (c *Config) Validate() error {
	var errs []string

	if c.KeyPrefix == "" {
		errs = append(errs, "key_prefix must not be empty")
	}
	if c.HashThreshold < 0 {
		errs = append(errs, "hash_threshold must not be negative")
	}
	if c.MemoryMaxEntries < 0 {
		errs = append(errs, "memory_max_entries must not be negative")
	}
	if c.CompressionThreshold < 0 {
		errs = append(errs, "compression_threshold must not be negative")
	}
	if c.CompressionLevel < 1 || c.CompressionLevel > 9 {
		errs = append(errs, "compression_level must be between 1 and 9")
	}
	if c.DefaultTTL <= 0 {
		errs = append(errs, "default_ttl must be positive")
	}
	for _, tier := range c.TTLTiers {
		if tier.MaxTextLength <= 0 || tier.TTL <= 0 {
			errs = append(errs, fmt.Sprintf("invalid ttl tier %+v", tier))
		}
	}

	if len(errs) > 0 {
		return types.NewError(types.ErrInvalidCacheConfig, strings.Join(errs, "; "))
	}
	return nil
}

// ttlFor returns the tier-2 TTL for an entry generated from a text of the
// given character length.
func (c *Config) ttlFor(textLength int) time.Duration {
	tiers := append([]TTLTier(nil), c.TTLTiers...)
	sort.Slice(tiers, func(i, j int) bool { return tiers[i].MaxTextLength < tiers[j].MaxTextLength })
	for _, tier := range tiers {
		if textLength <= tier.MaxTextLength {
			return tier.TTL
		}
	}
	return c.DefaultTTL
}
