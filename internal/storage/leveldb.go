package storage

import (
	"errors"
	"fmt"

	"github.com/audiotarky/xrplpers/internal/log"
	"github.com/syndtr/goleveldb/leveldb"
	dberrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

const (
	// Minimum cache in megabytes, split between block cache and write buffer.
	minLevelCache = 16
	// Minimum number of open file handles.
	minLevelHandles = 16
)

// LevelDB implements DB using goleveldb.
type LevelDB struct {
	path string
	db   *leveldb.DB
}

// NewLevelDB opens or creates a LevelDB database at path. A corrupted
// database is recovered before use.
func NewLevelDB(path string) (*LevelDB, error) {
	options := &opt.Options{
		Filter:                 filter.NewBloomFilter(10),
		DisableSeeksCompaction: true,
		OpenFilesCacheCapacity: minLevelHandles,
		BlockCacheCapacity:     minLevelCache / 2 * opt.MiB,
		WriteBuffer:            minLevelCache / 4 * opt.MiB,
	}

	db, err := leveldb.OpenFile(path, options)
	if dberrors.IsCorrupted(err) {
		log.Storage.Warn().Str("path", path).Err(err).Msg("recovering corrupted leveldb")
		db, err = leveldb.RecoverFile(path, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("open leveldb at %s: %w", path, err)
	}
	log.Storage.Debug().Str("backend", "leveldb").Str("path", path).Msg("database opened")
	return &LevelDB{path: path, db: db}, nil
}

// Get retrieves a value by key. Returns ErrNotFound if the key does not exist.
func (l *LevelDB) Get(key []byte) ([]byte, error) {
	v, err := l.db.Get(key, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("leveldb get: %w", err)
	}
	return v, nil
}

// Put stores a key-value pair.
func (l *LevelDB) Put(key, value []byte) error {
	if err := l.db.Put(key, value, nil); err != nil {
		return fmt.Errorf("leveldb put: %w", err)
	}
	return nil
}

// Delete removes a key.
func (l *LevelDB) Delete(key []byte) error {
	if err := l.db.Delete(key, nil); err != nil {
		return fmt.Errorf("leveldb delete: %w", err)
	}
	return nil
}

// Has checks if a key exists.
func (l *LevelDB) Has(key []byte) (bool, error) {
	ok, err := l.db.Has(key, nil)
	if err != nil {
		return false, fmt.Errorf("leveldb has: %w", err)
	}
	return ok, nil
}

// ForEach iterates over all keys with the given prefix.
func (l *LevelDB) ForEach(prefix []byte, fn func(key, value []byte) error) error {
	it := l.db.NewIterator(util.BytesPrefix(prefix), nil)
	defer it.Release()

	for it.Next() {
		if err := fn(cloneBytes(it.Key()), cloneBytes(it.Value())); err != nil {
			return err
		}
	}
	if err := it.Error(); err != nil {
		return fmt.Errorf("leveldb iterate: %w", err)
	}
	return nil
}

// NewBatch creates a batch written with a single leveldb write.
func (l *LevelDB) NewBatch() Batch {
	return &levelBatch{db: l.db, b: new(leveldb.Batch)}
}

// Path returns the database directory.
func (l *LevelDB) Path() string {
	return l.path
}

// Close flushes pending data and closes the database.
func (l *LevelDB) Close() error {
	return l.db.Close()
}

type levelBatch struct {
	db *leveldb.DB
	b  *leveldb.Batch
}

func (lb *levelBatch) Put(key, value []byte) error {
	lb.b.Put(key, value)
	return nil
}

func (lb *levelBatch) Delete(key []byte) error {
	lb.b.Delete(key)
	return nil
}

func (lb *levelBatch) Commit() error {
	if err := lb.db.Write(lb.b, nil); err != nil {
		return fmt.Errorf("leveldb batch: %w", err)
	}
	lb.b.Reset()
	return nil
}

func (lb *levelBatch) Discard() {
	lb.b.Reset()
}
