package nft

import (
	"bytes"
	"encoding/json"
	"sort"

	"github.com/audiotarky/xrplpers/pkg/types"
	mapset "github.com/deckarep/golang-set/v2"
)

// DescriptorSet is an insert-only set of descriptors keyed by content hash.
// The zero value is an empty set. It is not safe for concurrent use.
type DescriptorSet struct {
	keys  mapset.Set[types.Hash]
	items map[types.Hash]Descriptor
}

// NewDescriptorSet creates a set holding ds.
func NewDescriptorSet(ds ...Descriptor) *DescriptorSet {
	s := &DescriptorSet{
		keys:  mapset.NewThreadUnsafeSet[types.Hash](),
		items: make(map[types.Hash]Descriptor, len(ds)),
	}
	for _, d := range ds {
		s.Add(d)
	}
	return s
}

func (s *DescriptorSet) lazyInit() {
	if s.keys == nil {
		s.keys = mapset.NewThreadUnsafeSet[types.Hash]()
		s.items = make(map[types.Hash]Descriptor)
	}
}

// Add inserts d and reports whether it was new.
func (s *DescriptorSet) Add(d Descriptor) bool {
	s.lazyInit()
	k := d.Key()
	if !s.keys.Add(k) {
		return false
	}
	s.items[k] = d
	return true
}

// Merge adds every descriptor of other and returns how many were new.
func (s *DescriptorSet) Merge(other *DescriptorSet) int {
	added := 0
	for _, d := range other.items {
		if s.Add(d) {
			added++
		}
	}
	return added
}

// Contains reports whether d is in the set.
func (s *DescriptorSet) Contains(d Descriptor) bool {
	s.lazyInit()
	return s.keys.Contains(d.Key())
}

// Len returns the number of descriptors.
func (s *DescriptorSet) Len() int {
	s.lazyInit()
	return s.keys.Cardinality()
}

// Union returns a new set with the descriptors of s and other.
func (s *DescriptorSet) Union(other *DescriptorSet) *DescriptorSet {
	s.lazyInit()
	other.lazyInit()
	return s.fromKeys(s.keys.Union(other.keys), other)
}

// Difference returns a new set with the descriptors of s that are not in
// other.
func (s *DescriptorSet) Difference(other *DescriptorSet) *DescriptorSet {
	s.lazyInit()
	other.lazyInit()
	return s.fromKeys(s.keys.Difference(other.keys), nil)
}

// Equal reports whether both sets hold the same descriptors.
func (s *DescriptorSet) Equal(other *DescriptorSet) bool {
	s.lazyInit()
	other.lazyInit()
	return s.keys.Equal(other.keys)
}

// Clone returns an independent copy.
func (s *DescriptorSet) Clone() *DescriptorSet {
	s.lazyInit()
	return s.fromKeys(s.keys.Clone(), nil)
}

// Items returns the descriptors ordered by canonical form.
func (s *DescriptorSet) Items() []Descriptor {
	out := make([]Descriptor, 0, len(s.items))
	for _, d := range s.items {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i].canonical, out[j].canonical) < 0
	})
	return out
}

// MarshalJSON renders the set as an ordered list of descriptor objects.
func (s *DescriptorSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Items())
}

func (s *DescriptorSet) String() string {
	b, _ := s.MarshalJSON()
	return string(b)
}

// fromKeys materializes a key set, looking descriptors up in s and then in
// extra.
func (s *DescriptorSet) fromKeys(keys mapset.Set[types.Hash], extra *DescriptorSet) *DescriptorSet {
	out := &DescriptorSet{
		keys:  keys,
		items: make(map[types.Hash]Descriptor, keys.Cardinality()),
	}
	keys.Each(func(k types.Hash) bool {
		if d, ok := s.items[k]; ok {
			out.items[k] = d
		} else if extra != nil {
			out.items[k] = extra.items[k]
		}
		return false
	})
	return out
}
