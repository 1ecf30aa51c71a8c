// Package resultset holds filter outcomes as index sets that can be
// combined with boolean algebra across runs over the same collection.
package resultset

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
)

var (
	// ErrInvalid indicates out-of-range indices or a negative size.
	ErrInvalid = errors.New("resultset: invalid result set")

	// ErrIncompatible indicates two sets that cannot be combined because
	// they describe different collections.
	ErrIncompatible = errors.New("resultset: incompatible result sets")
)

// Set is the ordered set of matching indices for one collection, identified
// by the collection's size and ID so combinations stay logically consistent.
type Set struct {
	indices map[int]struct{}
	size    int
	id      string
}

// New builds a Set over a collection of the given size. Duplicate indices
// collapse; an empty id gets a generated UUID.
func New(indices []int, size int, id string) (*Set, error) {
	if size < 0 {
		return nil, fmt.Errorf("%w: collection size %d is negative", ErrInvalid, size)
	}
	if id == "" {
		id = uuid.NewString()
	}

	set := &Set{
		indices: make(map[int]struct{}, len(indices)),
		size:    size,
		id:      id,
	}
	for _, index := range indices {
		if index < 0 || index >= size {
			return nil, fmt.Errorf("%w: index %d outside [0, %d)", ErrInvalid, index, size)
		}
		set.indices[index] = struct{}{}
	}
	return set, nil
}

// Indices returns the matching indices in ascending order.
func (s *Set) Indices() []int {
	out := make([]int, 0, len(s.indices))
	for index := range s.indices {
		out = append(out, index)
	}
	sort.Ints(out)
	return out
}

func (s *Set) Len() int { return len(s.indices) }

// Size is the size of the underlying collection, not the match count.
func (s *Set) Size() int { return s.size }

func (s *Set) ID() string { return s.id }

func (s *Set) Contains(index int) bool {
	_, ok := s.indices[index]
	return ok
}

// And intersects two compatible sets.
func (s *Set) And(other *Set) (*Set, error) {
	return s.combine(other, func(index int) bool {
		return s.Contains(index) && other.Contains(index)
	})
}

// Or unions two compatible sets.
func (s *Set) Or(other *Set) (*Set, error) {
	return s.combine(other, func(index int) bool {
		return s.Contains(index) || other.Contains(index)
	})
}

// Xor keeps indices present in exactly one of the two sets.
func (s *Set) Xor(other *Set) (*Set, error) {
	return s.combine(other, func(index int) bool {
		return s.Contains(index) != other.Contains(index)
	})
}

// Subtract removes other's indices from s.
func (s *Set) Subtract(other *Set) (*Set, error) {
	return s.combine(other, func(index int) bool {
		return s.Contains(index) && !other.Contains(index)
	})
}

// Not complements the set over its collection.
func (s *Set) Not() *Set {
	out := &Set{
		indices: make(map[int]struct{}, s.size-len(s.indices)),
		size:    s.size,
		id:      s.id,
	}
	for index := 0; index < s.size; index++ {
		if !s.Contains(index) {
			out.indices[index] = struct{}{}
		}
	}
	return out
}

func (s *Set) Equal(other *Set) bool {
	if s.size != other.size || s.id != other.id || len(s.indices) != len(other.indices) {
		return false
	}
	for index := range s.indices {
		if !other.Contains(index) {
			return false
		}
	}
	return true
}

func (s *Set) combine(other *Set, keep func(int) bool) (*Set, error) {
	if err := s.checkCompatible(other); err != nil {
		return nil, err
	}
	out := &Set{
		indices: make(map[int]struct{}),
		size:    s.size,
		id:      s.id,
	}
	for index := 0; index < s.size; index++ {
		if keep(index) {
			out.indices[index] = struct{}{}
		}
	}
	return out, nil
}

func (s *Set) checkCompatible(other *Set) error {
	if s.size != other.size {
		return fmt.Errorf("%w: collection sizes differ, %d vs %d", ErrIncompatible, s.size, other.size)
	}
	if s.id != other.id {
		return fmt.Errorf("%w: collection IDs differ, %q vs %q", ErrIncompatible, s.id, other.id)
	}
	return nil
}

// envelope is the persisted JSON shape.
type envelope struct {
	Indices        []int  `json:"indices"`
	CollectionSize int    `json:"collection_size"`
	CollectionID   string `json:"collection_id"`
}

func (s *Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(envelope{
		Indices:        s.Indices(),
		CollectionSize: s.size,
		CollectionID:   s.id,
	})
}

func (s *Set) UnmarshalJSON(data []byte) error {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	decoded, err := New(env.Indices, env.CollectionSize, env.CollectionID)
	if err != nil {
		return err
	}
	*s = *decoded
	return nil
}
