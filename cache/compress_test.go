package cache

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeRawRoundTrip(t *testing.T) {
	payload := []byte(`{"result":"ok"}`)

	enveloped := encodeRaw(payload)
	require.Equal(t, markerRaw, enveloped[0])

	decoded, err := decodeEnvelope(enveloped)
	require.NoError(t, err)
	assert.Equal(t, payload, decoded)
}

func TestEnvelopeGzipRoundTrip(t *testing.T) {
	payload := bytes.Repeat([]byte("the same sentence over and over. "), 100)

	enveloped, err := encodeGzip(payload, 6)
	require.NoError(t, err)
	require.Equal(t, markerGzip, enveloped[0])
	assert.Less(t, len(enveloped), len(payload), "repetitive payload should shrink")

	decoded, err := decodeEnvelope(enveloped)
	require.NoError(t, err)
	assert.Equal(t, payload, decoded)
}

func TestEnvelopeEmptyPayload(t *testing.T) {
	decoded, err := decodeEnvelope(encodeRaw(nil))
	require.NoError(t, err)
	assert.Empty(t, decoded)
}

func TestDecodeEnvelopeErrors(t *testing.T) {
	_, err := decodeEnvelope(nil)
	assert.Error(t, err, "empty envelope")

	_, err = decodeEnvelope([]byte{0x7f, 1, 2, 3})
	assert.Error(t, err, "unknown marker")

	_, err = decodeEnvelope([]byte{markerGzip, 0xde, 0xad, 0xbe, 0xef})
	assert.Error(t, err, "garbage gzip payload")
}

func TestEncodeGzipInvalidLevel(t *testing.T) {
	_, err := encodeGzip([]byte("x"), 42)
	assert.Error(t, err)
}
