// Package group builds insertion-ordered groupings of values and reorders
// them. It is the data half of the section list: everything here is a pure
// transformation over slices and never touches presentation state.
package group

import (
	"errors"
	"fmt"
	"slices"
)

// ErrInvalidArgument is returned when a required input is missing.
var ErrInvalidArgument = errors.New("invalid argument")

func missing(param string) error {
	return fmt.Errorf("%w: %s must not be nil", ErrInvalidArgument, param)
}

// Group is a single section: a key and the values that share it.
type Group[K, V any] struct {
	Key    K
	Values []V
}

// Len returns the number of values in the group
func (g Group[K, V]) Len() int {
	return len(g.Values)
}

// Groups is an ordered mapping from key to values. Iteration order is either
// first-occurrence order of the keys or an explicit sort order, never
// arbitrary. A nil *Groups behaves as an empty mapping.
type Groups[K, V any] struct {
	groups []Group[K, V]
}

// FromGroups builds a mapping from already formed groups, keeping their
// order. Callers are responsible for key uniqueness.
func FromGroups[K, V any](groups ...Group[K, V]) *Groups[K, V] {
	out := &Groups[K, V]{groups: make([]Group[K, V], len(groups))}
	for i, g := range groups {
		out.groups[i] = Group[K, V]{Key: g.Key, Values: slices.Clone(g.Values)}
	}
	return out
}

// Len returns the number of groups
func (g *Groups[K, V]) Len() int {
	if g == nil {
		return 0
	}
	return len(g.groups)
}

// Count returns the total number of values across all groups
func (g *Groups[K, V]) Count() int {
	if g == nil {
		return 0
	}
	n := 0
	for _, grp := range g.groups {
		n += len(grp.Values)
	}
	return n
}

// Keys returns all keys in iteration order
func (g *Groups[K, V]) Keys() []K {
	if g == nil {
		return []K{}
	}
	keys := make([]K, len(g.groups))
	for i, grp := range g.groups {
		keys[i] = grp.Key
	}
	return keys
}

// At returns the i-th group. It panics if i is out of range, like a slice
// index would.
func (g *Groups[K, V]) At(i int) Group[K, V] {
	return g.groups[i]
}

// All returns a copy of the group list. Value slices are shared and must be
// treated as read-only.
func (g *Groups[K, V]) All() []Group[K, V] {
	if g == nil {
		return []Group[K, V]{}
	}
	return slices.Clone(g.groups)
}

// Each calls yield for every group in order until yield returns false.
func (g *Groups[K, V]) Each(yield func(K, []V) bool) {
	if g == nil {
		return
	}
	for _, grp := range g.groups {
		if !yield(grp.Key, grp.Values) {
			return
		}
	}
}

// Lookup returns the values stored under key.
func Lookup[K comparable, V any](g *Groups[K, V], key K) ([]V, bool) {
	if g == nil {
		return nil, false
	}
	for _, grp := range g.groups {
		if grp.Key == key {
			return grp.Values, true
		}
	}
	return nil, false
}

// Builder collects values into groups, creating a group at the end of the
// mapping the first time its key is seen.
type Builder[K comparable, V any] struct {
	index  map[K]int
	groups []Group[K, V]
}

// NewBuilder creates an empty builder
func NewBuilder[K comparable, V any]() *Builder[K, V] {
	return &Builder[K, V]{index: make(map[K]int)}
}

// Add appends value to the group for key.
func (b *Builder[K, V]) Add(key K, value V) {
	i, ok := b.index[key]
	if !ok {
		i = len(b.groups)
		b.index[key] = i
		b.groups = append(b.groups, Group[K, V]{Key: key})
	}
	b.groups[i].Values = append(b.groups[i].Values, value)
}

// Len returns the number of distinct keys seen so far
func (b *Builder[K, V]) Len() int {
	return len(b.groups)
}

// Groups returns the collected mapping. The builder may keep being used;
// later additions do not affect the returned value.
func (b *Builder[K, V]) Groups() *Groups[K, V] {
	return FromGroups(b.groups...)
}
