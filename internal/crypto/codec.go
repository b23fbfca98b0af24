// Package crypto seals persisted history with a key bound to this device.
//
// The key is derived with HKDF-SHA256 from a device fingerprint. Blobs are
// NaCl secretbox ciphertexts with the random nonce in front:
//
//	[ 24-byte nonce ][ ciphertext + 16-byte tag ]
package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"
)

const (
	KeySize   = 32
	nonceSize = 24
)

// ErrDecrypt is returned when a blob cannot be authenticated with the key.
var ErrDecrypt = errors.New("decryption failed")

var (
	hkdfSalt = []byte("clipstash-history")
	hkdfInfo = []byte("clipstash-v1")
)

// Key is a secretbox key.
type Key [KeySize]byte

// DeriveKey derives the storage key from a device fingerprint.
func DeriveKey(fingerprint string) (*Key, error) {
	if fingerprint == "" {
		return nil, errors.New("empty device fingerprint")
	}
	h := hkdf.New(sha256.New, []byte(fingerprint), hkdfSalt, hkdfInfo)
	var key Key
	if _, err := io.ReadFull(h, key[:]); err != nil {
		return nil, fmt.Errorf("key derivation: %w", err)
	}
	return &key, nil
}

// Seal encrypts plaintext, prepending a fresh random nonce.
func Seal(plaintext []byte, key *Key) ([]byte, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("nonce generation: %w", err)
	}
	k := (*[KeySize]byte)(key)
	return secretbox.Seal(nonce[:], plaintext, &nonce, k), nil
}

// Open authenticates and decrypts a blob produced by Seal.
func Open(blob []byte, key *Key) ([]byte, error) {
	if len(blob) < nonceSize+secretbox.Overhead {
		return nil, fmt.Errorf("%w: blob too short", ErrDecrypt)
	}
	var nonce [nonceSize]byte
	copy(nonce[:], blob[:nonceSize])

	k := (*[KeySize]byte)(key)
	plain, ok := secretbox.Open(nil, blob[nonceSize:], &nonce, k)
	if !ok {
		return nil, ErrDecrypt
	}
	return plain, nil
}
