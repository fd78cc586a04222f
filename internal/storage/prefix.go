package storage

// PrefixDB wraps a DB and prepends a fixed prefix to all keys, giving each
// tracked account its own keyspace inside one database.
type PrefixDB struct {
	inner  DB
	prefix []byte
}

// NewPrefixDB creates a new PrefixDB wrapping inner with the given prefix.
func NewPrefixDB(inner DB, prefix []byte) *PrefixDB {
	return &PrefixDB{inner: inner, prefix: cloneBytes(prefix)}
}

// Prefix returns the namespace prefix.
func (p *PrefixDB) Prefix() []byte { return cloneBytes(p.prefix) }

func (p *PrefixDB) key(k []byte) []byte {
	return withPrefix(p.prefix, k)
}

// Get retrieves a value by key.
func (p *PrefixDB) Get(key []byte) ([]byte, error) {
	return p.inner.Get(p.key(key))
}

// Put stores a key-value pair.
func (p *PrefixDB) Put(key, value []byte) error {
	return p.inner.Put(p.key(key), value)
}

// Delete removes a key.
func (p *PrefixDB) Delete(key []byte) error {
	return p.inner.Delete(p.key(key))
}

// Has checks if a key exists.
func (p *PrefixDB) Has(key []byte) (bool, error) {
	return p.inner.Has(p.key(key))
}

// ForEach iterates over keys with the given prefix inside the namespace.
// Keys reach fn with the namespace stripped.
func (p *PrefixDB) ForEach(prefix []byte, fn func(key, value []byte) error) error {
	return p.inner.ForEach(p.key(prefix), func(key, value []byte) error {
		return fn(key[len(p.prefix):], value)
	})
}

// Close is a no-op; the inner DB owns its lifecycle.
func (p *PrefixDB) Close() error {
	return nil
}

// NewBatch returns a batch that namespaces its keys. It is atomic when the
// inner DB supports batches and applies writes one by one otherwise.
func (p *PrefixDB) NewBatch() Batch {
	if batcher, ok := p.inner.(Batcher); ok {
		return &prefixBatch{inner: batcher.NewBatch(), prefix: p.prefix}
	}
	return &sequentialBatch{db: p}
}

type prefixBatch struct {
	inner  Batch
	prefix []byte
}

func (pb *prefixBatch) Put(key, value []byte) error {
	return pb.inner.Put(withPrefix(pb.prefix, key), value)
}

func (pb *prefixBatch) Delete(key []byte) error {
	return pb.inner.Delete(withPrefix(pb.prefix, key))
}

func (pb *prefixBatch) Commit() error {
	return pb.inner.Commit()
}

func (pb *prefixBatch) Discard() {
	pb.inner.Discard()
}

// sequentialBatch buffers writes and replays them against db on Commit.
type sequentialBatch struct {
	db  DB
	ops []memoryOp
}

func (sb *sequentialBatch) Put(key, value []byte) error {
	v := cloneBytes(value)
	if v == nil {
		v = []byte{}
	}
	sb.ops = append(sb.ops, memoryOp{key: string(key), value: v})
	return nil
}

func (sb *sequentialBatch) Delete(key []byte) error {
	sb.ops = append(sb.ops, memoryOp{key: string(key)})
	return nil
}

func (sb *sequentialBatch) Commit() error {
	for _, op := range sb.ops {
		var err error
		if op.value == nil {
			err = sb.db.Delete([]byte(op.key))
		} else {
			err = sb.db.Put([]byte(op.key), op.value)
		}
		if err != nil {
			return err
		}
	}
	sb.ops = nil
	return nil
}

func (sb *sequentialBatch) Discard() {
	sb.ops = nil
}

func withPrefix(prefix, key []byte) []byte {
	out := make([]byte, len(prefix)+len(key))
	copy(out, prefix)
	copy(out[len(prefix):], key)
	return out
}
