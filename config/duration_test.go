package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDurationUnmarshalYAML(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"30s", 30 * time.Second},
		{"1h30m", 90 * time.Minute},
		{"250ms", 250 * time.Millisecond},
		{"5000000000", 5 * time.Second}, // integer nanoseconds
	}

	for _, tt := range tests {
		var d Duration
		require.NoError(t, yaml.Unmarshal([]byte(tt.in), &d), "input %q", tt.in)
		assert.Equal(t, tt.want, d.Std(), "input %q", tt.in)
	}
}

func TestDurationUnmarshalInvalid(t *testing.T) {
	var d Duration
	assert.Error(t, yaml.Unmarshal([]byte(`"not a duration"`), &d))
	assert.Error(t, yaml.Unmarshal([]byte("[1, 2]"), &d))
}

func TestDurationMarshalYAML(t *testing.T) {
	out, err := yaml.Marshal(Duration(90 * time.Second))
	require.NoError(t, err)
	assert.Equal(t, "1m30s\n", string(out))
}
