package cache

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
)

// Tier-2 envelope markers. The stored value is [marker][payload]; the
// marker is an explicit discriminator rather than inferred by attempting
// decompression, so uncompressed bytes that happen to look like a gzip
// stream are never misread.
const (
	markerRaw  byte = 0x00
	markerGzip byte = 0x01
)

// encodeRaw wraps an uncompressed payload in the envelope.
func encodeRaw(payload []byte) []byte {
	out := make([]byte, 0, len(payload)+1)
	out = append(out, markerRaw)
	return append(out, payload...)
}

// encodeGzip compresses payload at the given level and wraps it in the
// envelope.
func encodeGzip(payload []byte, level int) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(markerGzip)

	w, err := gzip.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, fmt.Errorf("create gzip writer: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return nil, fmt.Errorf("compress payload: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("flush gzip writer: %w", err)
	}
	return buf.Bytes(), nil
}

// decodeEnvelope unwraps a stored value, decompressing when the marker
// says so. Corrupt payloads return an error; callers treat that as a
// cache miss.
func decodeEnvelope(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty envelope")
	}

	switch data[0] {
	case markerRaw:
		return data[1:], nil
	case markerGzip:
		r, err := gzip.NewReader(bytes.NewReader(data[1:]))
		if err != nil {
			return nil, fmt.Errorf("open gzip payload: %w", err)
		}
		defer r.Close()
		payload, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("decompress payload: %w", err)
		}
		return payload, nil
	default:
		return nil, fmt.Errorf("unknown envelope marker 0x%02x", data[0])
	}
}
