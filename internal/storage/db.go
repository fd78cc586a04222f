// Package storage provides the key-value abstraction used to persist tracked
// token state, with in-memory, Badger and LevelDB backends.
package storage

import "errors"

// ErrNotFound is returned by Get when the key does not exist.
var ErrNotFound = errors.New("key not found")

// DB is the interface for key-value storage.
type DB interface {
	Get(key []byte) ([]byte, error)
	Put(key, value []byte) error
	Delete(key []byte) error
	Has(key []byte) (bool, error)
	// ForEach iterates over all keys with the given prefix in ascending key
	// order. The callback receives a copy of the key and value.
	// Return a non-nil error from fn to stop iteration early.
	ForEach(prefix []byte, fn func(key, value []byte) error) error
	Close() error
}

// Batch buffers writes until Commit applies them atomically.
// A batch is not safe for concurrent use.
type Batch interface {
	Put(key, value []byte) error
	Delete(key []byte) error
	Commit() error
	// Discard drops uncommitted writes and releases the batch. It is a
	// no-op after Commit, so callers can defer it.
	Discard()
}

// Batcher is implemented by databases that support atomic batches.
type Batcher interface {
	NewBatch() Batch
}

var (
	_ Batcher = (*MemoryDB)(nil)
	_ Batcher = (*BadgerDB)(nil)
	_ Batcher = (*LevelDB)(nil)
	_ Batcher = (*PrefixDB)(nil)
)
