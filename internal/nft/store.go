package nft

import (
	"encoding/json"
	"fmt"

	"github.com/audiotarky/xrplpers/internal/storage"
	"github.com/audiotarky/xrplpers/pkg/types"
)

var (
	prefixMinted  = []byte("m/") // m/<tokenID(32)> -> MintedToken JSON
	prefixTracked = []byte("d/") // d/<descriptor key(32)> -> descriptor JSON
)

// Store persists minted tokens and tracked descriptors.
type Store struct {
	db storage.DB
}

// NewStore creates a store over db.
func NewStore(db storage.DB) *Store {
	return &Store{db: db}
}

// NewAccountStore creates a store whose keys live under the owner account's
// namespace, so several owners can share one database.
func NewAccountStore(db storage.DB, owner types.AccountID) *Store {
	ns := make([]byte, 0, 2+types.AccountIDSize)
	ns = append(ns, "a/"...)
	ns = append(ns, owner[:]...)
	return &Store{db: storage.NewPrefixDB(db, ns)}
}

// PutMinted stores a minted token under its token ID.
func (s *Store) PutMinted(m *MintedToken) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("minted marshal: %w", err)
	}
	return s.db.Put(mintedKey(m.ID), data)
}

// GetMinted retrieves a minted token.
func (s *Store) GetMinted(id TokenID) (*MintedToken, error) {
	data, err := s.db.Get(mintedKey(id))
	if err != nil {
		return nil, fmt.Errorf("minted get %s: %w", id, err)
	}
	var m MintedToken
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("minted unmarshal: %w", err)
	}
	return &m, nil
}

// HasMinted checks whether a minted token is stored.
func (s *Store) HasMinted(id TokenID) (bool, error) {
	return s.db.Has(mintedKey(id))
}

// ForEachMinted iterates over stored minted tokens.
// Return a non-nil error from fn to stop iteration early.
func (s *Store) ForEachMinted(fn func(*MintedToken) error) error {
	return s.db.ForEach(prefixMinted, func(key, value []byte) error {
		if len(key) != len(prefixMinted)+TokenIDSize {
			return nil
		}
		var m MintedToken
		if err := json.Unmarshal(value, &m); err != nil {
			return nil // Skip corrupt entries.
		}
		return fn(&m)
	})
}

// ListMinted returns every stored minted token.
func (s *Store) ListMinted() ([]*MintedToken, error) {
	out := []*MintedToken{}
	err := s.ForEachMinted(func(m *MintedToken) error {
		out = append(out, m)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SaveTracked writes every descriptor of set. Existing entries are
// overwritten with identical content, so saving is idempotent. The writes
// are committed atomically when the database supports batches.
func (s *Store) SaveTracked(set *DescriptorSet) error {
	if batcher, ok := s.db.(storage.Batcher); ok {
		b := batcher.NewBatch()
		defer b.Discard()
		for _, d := range set.Items() {
			if err := b.Put(trackedKey(d.Key()), d.Canonical()); err != nil {
				return fmt.Errorf("tracked batch put: %w", err)
			}
		}
		if err := b.Commit(); err != nil {
			return fmt.Errorf("tracked batch commit: %w", err)
		}
		return nil
	}
	for _, d := range set.Items() {
		if err := s.db.Put(trackedKey(d.Key()), d.Canonical()); err != nil {
			return fmt.Errorf("tracked put: %w", err)
		}
	}
	return nil
}

// LoadTracked reads every persisted descriptor.
func (s *Store) LoadTracked() (*DescriptorSet, error) {
	set := NewDescriptorSet()
	err := s.db.ForEach(prefixTracked, func(key, value []byte) error {
		d, err := ParseDescriptor(value)
		if err != nil {
			return fmt.Errorf("tracked entry %x: %w", key[len(prefixTracked):], err)
		}
		set.Add(d)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return set, nil
}

func mintedKey(id TokenID) []byte {
	raw := id.Bytes()
	key := make([]byte, len(prefixMinted)+TokenIDSize)
	copy(key, prefixMinted)
	copy(key[len(prefixMinted):], raw[:])
	return key
}

func trackedKey(h types.Hash) []byte {
	key := make([]byte, len(prefixTracked)+types.HashSize)
	copy(key, prefixTracked)
	copy(key[len(prefixTracked):], h[:])
	return key
}
