package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
	"go.uber.org/zap"
)

const (
	historyBucket = "history"
	metaBucket    = "meta"

	formatVersionKey = "format_version"
	formatVersion    = "1"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("storage closed")

// BlobStore is a key-value store for opaque blobs.
type BlobStore interface {
	Put(key string, value []byte) error
	Get(key string) ([]byte, error)
	Delete(key string) error
	Close() error
}

// BoltStorage keeps history blobs in a bbolt file
type BoltStorage struct {
	db     *bbolt.DB
	path   string
	logger *zap.Logger
}

// StorageConfig holds configuration for BoltStorage initialization
type StorageConfig struct {
	DBPath string
	Logger *zap.Logger
}

// NewBoltStorage opens (creating if needed) the database and its buckets
func NewBoltStorage(config StorageConfig) (*BoltStorage, error) {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := os.MkdirAll(filepath.Dir(config.DBPath), 0700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := bbolt.Open(config.DBPath, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{historyBucket, metaBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", name, err)
			}
		}
		meta := tx.Bucket([]byte(metaBucket))
		if meta.Get([]byte(formatVersionKey)) == nil {
			return meta.Put([]byte(formatVersionKey), []byte(formatVersion))
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	logger.Debug("BoltStorage initialized", zap.String("db_path", config.DBPath))
	return &BoltStorage{db: db, path: config.DBPath, logger: logger}, nil
}

// Put stores value under key, replacing any previous value
func (s *BoltStorage) Put(key string, value []byte) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(historyBucket)).Put([]byte(key), value)
	})
}

// Get returns a copy of the value under key, or nil if absent
func (s *BoltStorage) Get(key string) ([]byte, error) {
	var out []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket([]byte(historyBucket)).Get([]byte(key))
		if v != nil {
			// bbolt values are only valid inside the transaction
			out = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return out, nil
}

// Delete removes key; deleting a missing key is not an error
func (s *BoltStorage) Delete(key string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(historyBucket)).Delete([]byte(key))
	})
}

// FormatVersion returns the on-disk format marker
func (s *BoltStorage) FormatVersion() (string, error) {
	var v string
	err := s.db.View(func(tx *bbolt.Tx) error {
		v = string(tx.Bucket([]byte(metaBucket)).Get([]byte(formatVersionKey)))
		return nil
	})
	return v, err
}

// Size returns the database file size in bytes
func (s *BoltStorage) Size() int64 {
	var size int64
	_ = s.db.View(func(tx *bbolt.Tx) error {
		size = tx.Size()
		return nil
	})
	return size
}

// Path returns the database file path
func (s *BoltStorage) Path() string {
	return s.path
}

// Close closes the database
func (s *BoltStorage) Close() error {
	return s.db.Close()
}
