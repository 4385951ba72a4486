// Package bounded restricts an iterator to a window of positions, which is
// what a list viewport needs when it renders only the visible rows.
package bounded

import (
	"github.com/KevoDB/sectionlist/pkg/common/iterator"
)

// Unbounded disables the end bound.
const Unbounded = -1

// BoundedIterator wraps an iterator and limits it to positions in [start, end)
type BoundedIterator[T any] struct {
	iterator.Iterator[T]
	start int
	end   int
}

// NewBoundedIterator creates a new bounded iterator. Pass Unbounded as end to
// keep the window open to the right.
func NewBoundedIterator[T any](iter iterator.Iterator[T], start, end int) *BoundedIterator[T] {
	b := &BoundedIterator[T]{Iterator: iter}
	b.SetBounds(start, end)
	return b
}

// SetBounds sets the start and end bounds for the iterator
func (b *BoundedIterator[T]) SetBounds(start, end int) {
	if start < 0 {
		start = 0
	}
	b.start = start
	b.end = end

	if b.Iterator.Valid() {
		b.checkBounds()
	}
}

// SeekToFirst positions at the first item in the window
func (b *BoundedIterator[T]) SeekToFirst() {
	b.Iterator.Seek(b.start)
	b.checkBounds()
}

// SeekToLast positions at the last item in the window
func (b *BoundedIterator[T]) SeekToLast() {
	if b.end == Unbounded {
		b.Iterator.SeekToLast()
		b.checkBounds()
		return
	}

	if !b.Iterator.Seek(b.end - 1) {
		b.Iterator.SeekToLast()
	}
	// The inner iterator may skip positions, so step back past the end bound
	for b.Iterator.Valid() && b.Iterator.Position() >= b.end {
		if !b.Iterator.Prev() {
			break
		}
	}
	b.checkBounds()
}

// Seek positions at the first item >= target within the window
func (b *BoundedIterator[T]) Seek(target int) bool {
	if target < b.start {
		target = b.start
	}
	if b.end != Unbounded && target >= b.end {
		return false
	}
	if b.Iterator.Seek(target) {
		return b.checkBounds()
	}
	return false
}

// Next advances to the next item within the window
func (b *BoundedIterator[T]) Next() bool {
	if !b.checkBounds() {
		return false
	}
	if !b.Iterator.Next() {
		return false
	}
	return b.checkBounds()
}

// Prev moves to the previous item within the window
func (b *BoundedIterator[T]) Prev() bool {
	if !b.checkBounds() {
		return false
	}
	if !b.Iterator.Prev() {
		return false
	}
	return b.checkBounds()
}

// Valid returns true if the iterator is positioned inside the window
func (b *BoundedIterator[T]) Valid() bool {
	return b.checkBounds()
}

// Item returns the current item if within bounds
func (b *BoundedIterator[T]) Item() T {
	if !b.Valid() {
		var zero T
		return zero
	}
	return b.Iterator.Item()
}

// checkBounds reports whether the current position is inside the window
func (b *BoundedIterator[T]) checkBounds() bool {
	if !b.Iterator.Valid() {
		return false
	}
	pos := b.Iterator.Position()
	if pos < b.start {
		return false
	}
	if b.end != Unbounded && pos >= b.end {
		return false
	}
	return true
}
