package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"
)

// Fingerprint identifies the device the history belongs to.
type Fingerprint struct {
	Hostname      string
	Username      string
	HardwareModel string
}

// CurrentFingerprint collects the fingerprint of the running machine.
// Missing parts are left empty.
func CurrentFingerprint() Fingerprint {
	var fp Fingerprint
	if host, err := os.Hostname(); err == nil {
		fp.Hostname = host
	}
	if u, err := user.Current(); err == nil {
		fp.Username = u.Username
	}
	fp.HardwareModel = hardwareModel()
	return fp
}

// Digest is the hex SHA-256 of the joined fields.
func (f Fingerprint) Digest() string {
	sum := sha256.Sum256([]byte(strings.Join([]string{f.Hostname, f.Username, f.HardwareModel}, "\x00")))
	return hex.EncodeToString(sum[:])
}

// LoadOrCreateFingerprint returns the fingerprint digest cached at path,
// computing and writing it on first use. Caching keeps the key stable when
// the hostname changes later.
func LoadOrCreateFingerprint(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		if digest := strings.TrimSpace(string(data)); digest != "" {
			return digest, nil
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("failed to read fingerprint: %w", err)
	}

	digest := CurrentFingerprint().Digest()
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return "", fmt.Errorf("failed to create fingerprint directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(digest+"\n"), 0600); err != nil {
		return "", fmt.Errorf("failed to write fingerprint: %w", err)
	}
	return digest, nil
}
