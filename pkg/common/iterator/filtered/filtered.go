// Package filtered provides iterators that skip items failing a predicate
package filtered

import (
	"github.com/KevoDB/sectionlist/pkg/common/iterator"
)

// FilterFunc reports whether an item should be visited
type FilterFunc[T any] func(item T) bool

// FilteredIterator wraps an iterator and applies a filter
type FilteredIterator[T any] struct {
	iter   iterator.Iterator[T]
	filter FilterFunc[T]
}

// NewFilteredIterator creates a new iterator with a filter
func NewFilteredIterator[T any](iter iterator.Iterator[T], filter FilterFunc[T]) *FilteredIterator[T] {
	return &FilteredIterator[T]{
		iter:   iter,
		filter: filter,
	}
}

// Next advances to the next item that passes the filter
func (fi *FilteredIterator[T]) Next() bool {
	for fi.iter.Next() {
		if fi.filter(fi.iter.Item()) {
			return true
		}
	}
	return false
}

// Prev moves to the previous item that passes the filter
func (fi *FilteredIterator[T]) Prev() bool {
	for fi.iter.Prev() {
		if fi.filter(fi.iter.Item()) {
			return true
		}
	}
	return false
}

// Item returns the current item
func (fi *FilteredIterator[T]) Item() T {
	return fi.iter.Item()
}

// Position returns the position of the current item in the underlying sequence
func (fi *FilteredIterator[T]) Position() int {
	return fi.iter.Position()
}

// Valid returns true if the iterator is at a valid position
func (fi *FilteredIterator[T]) Valid() bool {
	return fi.iter.Valid() && fi.filter(fi.iter.Item())
}

// SeekToFirst positions at the first item that passes the filter
func (fi *FilteredIterator[T]) SeekToFirst() {
	fi.iter.SeekToFirst()
	if fi.iter.Valid() && !fi.filter(fi.iter.Item()) {
		fi.Next()
	}
}

// SeekToLast positions at the last item that passes the filter
func (fi *FilteredIterator[T]) SeekToLast() {
	fi.iter.SeekToLast()
	if fi.iter.Valid() && !fi.filter(fi.iter.Item()) {
		fi.Prev()
	}
}

// Seek positions at the first item >= target that passes the filter
func (fi *FilteredIterator[T]) Seek(target int) bool {
	if !fi.iter.Seek(target) {
		return false
	}
	if !fi.filter(fi.iter.Item()) {
		return fi.Next()
	}
	return true
}
