// Package iterator defines positional iterators shared by the section list
// components. Items are addressed by their position in a flattened sequence,
// so seeking is by integer position rather than by key.
package iterator

// Iterator walks an ordered sequence of items.
type Iterator[T any] interface {
	// SeekToFirst positions the iterator at the first item
	SeekToFirst()

	// SeekToLast positions the iterator at the last item
	SeekToLast()

	// Seek positions the iterator at the first item whose position is >= target
	Seek(target int) bool

	// Next advances the iterator to the next item
	Next() bool

	// Prev moves the iterator to the previous item
	Prev() bool

	// Position returns the position of the current item in the underlying sequence
	Position() int

	// Item returns the current item
	Item() T

	// Valid returns true if the iterator is positioned at a valid item
	Valid() bool
}

// SliceIterator iterates over an in-memory slice. Positions are slice indexes.
type SliceIterator[T any] struct {
	items []T
	index int
}

// NewSliceIterator creates an iterator over items. It starts unpositioned.
func NewSliceIterator[T any](items []T) *SliceIterator[T] {
	return &SliceIterator[T]{items: items, index: -1}
}

// SeekToFirst positions at the first item
func (s *SliceIterator[T]) SeekToFirst() {
	if len(s.items) > 0 {
		s.index = 0
	} else {
		s.index = -1
	}
}

// SeekToLast positions at the last item
func (s *SliceIterator[T]) SeekToLast() {
	s.index = len(s.items) - 1
}

// Seek positions at target, clamping negative targets to the first item
func (s *SliceIterator[T]) Seek(target int) bool {
	if target < 0 {
		target = 0
	}
	if target >= len(s.items) {
		s.index = -1
		return false
	}
	s.index = target
	return true
}

// Next advances to the next item
func (s *SliceIterator[T]) Next() bool {
	if s.index >= 0 && s.index < len(s.items)-1 {
		s.index++
		return true
	}
	s.index = -1
	return false
}

// Prev moves to the previous item
func (s *SliceIterator[T]) Prev() bool {
	if s.index > 0 {
		s.index--
		return true
	}
	s.index = -1
	return false
}

// Position returns the current index, or -1 when not positioned
func (s *SliceIterator[T]) Position() int {
	return s.index
}

// Item returns the current item, or the zero value when not positioned
func (s *SliceIterator[T]) Item() T {
	if !s.Valid() {
		var zero T
		return zero
	}
	return s.items[s.index]
}

// Valid returns true if the iterator is positioned at an item
func (s *SliceIterator[T]) Valid() bool {
	return s.index >= 0 && s.index < len(s.items)
}

// Collect drains iter from its current position into a slice.
func Collect[T any](iter Iterator[T]) []T {
	var out []T
	for ; iter.Valid(); iter.Next() {
		out = append(out, iter.Item())
	}
	return out
}
