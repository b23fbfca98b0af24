// Package compression gzips large persisted blobs.
package compression

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
)

// Threshold is the size below which data is stored as-is.
const Threshold = 1024 // 1KB

var gzipMagic = []byte{0x1f, 0x8b}

// Compress gzips data at or above Threshold and returns smaller data unchanged.
func Compress(data []byte) ([]byte, error) {
	if len(data) < Threshold {
		return data, nil
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, fmt.Errorf("gzip write: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("gzip close: %w", err)
	}
	return buf.Bytes(), nil
}

// IsCompressed reports whether data starts with the gzip magic bytes.
func IsCompressed(data []byte) bool {
	return bytes.HasPrefix(data, gzipMagic)
}

// Decompress reverses Compress. Data without the gzip header is returned as-is.
func Decompress(data []byte) ([]byte, error) {
	if !IsCompressed(data) {
		return data, nil
	}

	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("gzip header: %w", err)
	}
	defer zr.Close()

	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("gzip read: %w", err)
	}
	return out, nil
}
