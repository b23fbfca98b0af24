package storage

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/berrythewa/clipstash/internal/crypto"
	"github.com/berrythewa/clipstash/internal/types"
	"github.com/berrythewa/clipstash/pkg/compression"
)

// encodeEntries serializes a collection: JSON, gzip when large, then sealed
// when key is non-nil.
func encodeEntries(entries []types.ClipboardEntry, key *crypto.Key) ([]byte, error) {
	if entries == nil {
		entries = []types.ClipboardEntry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entries: %w", err)
	}
	data, err = compression.Compress(data)
	if err != nil {
		return nil, fmt.Errorf("failed to compress entries: %w", err)
	}
	if key == nil {
		return data, nil
	}
	sealed, err := crypto.Seal(data, key)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt entries: %w", err)
	}
	return sealed, nil
}

// decodeEntries reverses encodeEntries. A blob that fails to open is read
// as legacy unencrypted data; anything undecodable yields an empty
// collection.
func decodeEntries(blob []byte, key *crypto.Key, logger *zap.Logger) []types.ClipboardEntry {
	if len(blob) == 0 {
		return []types.ClipboardEntry{}
	}

	data := blob
	if key != nil {
		if plain, err := crypto.Open(blob, key); err == nil {
			data = plain
		} else {
			logger.Debug("Blob did not decrypt, reading as unencrypted", zap.Error(err))
		}
	}

	data, err := compression.Decompress(data)
	if err != nil {
		logger.Warn("Failed to decompress history, starting empty", zap.Error(err))
		return []types.ClipboardEntry{}
	}

	var entries []types.ClipboardEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		logger.Warn("Failed to decode history, starting empty", zap.Error(err))
		return []types.ClipboardEntry{}
	}

	valid := entries[:0]
	for _, e := range entries {
		if err := e.Validate(); err != nil {
			logger.Warn("Dropping invalid persisted entry", zap.Error(err))
			continue
		}
		valid = append(valid, e)
	}
	return valid
}

// withoutLargeImages drops images above limit. A limit of zero keeps all.
func withoutLargeImages(entries []types.ClipboardEntry, limit int) []types.ClipboardEntry {
	if limit <= 0 {
		return entries
	}
	out := make([]types.ClipboardEntry, 0, len(entries))
	for _, e := range entries {
		if e.Kind == types.KindImage && len(e.ImageData) > limit {
			continue
		}
		out = append(out, e)
	}
	return out
}
