// Package section turns grouped data into the flat, positioned sequence a
// list view consumes, and answers the position/section lookups a fast
// scroller needs.
package section

import "fmt"

// Kind classifies an entry of the flattened sequence. The numeric values
// double as view type identifiers.
type Kind int

const (
	// KindSection marks the header of a group
	KindSection Kind = iota
	// KindChild marks a value of a group
	KindChild
	// KindChildDivider marks the placeholder between two values of a group
	KindChildDivider
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindSection:
		return "SECTION"
	case KindChild:
		return "CHILD"
	case KindChildDivider:
		return "CHILD_DIVIDER"
	default:
		return fmt.Sprintf("KIND(%d)", int(k))
	}
}

// Positioned pairs a value with its global child index: its ordinal among all
// children of the flattened sequence, counted across group boundaries.
type Positioned[V any] struct {
	Value    V
	Position int
}

// Entry is one element of the flattened sequence: a section header, a child
// or a divider. The zero Entry is a section header with a zero key.
type Entry[K, V any] struct {
	kind  Kind
	key   K
	child Positioned[V]
}

// SectionEntry returns the header entry for a group.
func SectionEntry[K, V any](key K) Entry[K, V] {
	return Entry[K, V]{kind: KindSection, key: key}
}

// ChildEntry returns the entry for a value with the given global child index.
func ChildEntry[K, V any](value V, position int) Entry[K, V] {
	return Entry[K, V]{kind: KindChild, child: Positioned[V]{Value: value, Position: position}}
}

// DividerEntry returns a divider entry.
func DividerEntry[K, V any]() Entry[K, V] {
	return Entry[K, V]{kind: KindChildDivider}
}

// Kind reports what the entry is.
func (e Entry[K, V]) Kind() Kind { return e.kind }

// Key returns the section key. ok is false unless the entry is a section.
func (e Entry[K, V]) Key() (key K, ok bool) {
	if e.kind != KindSection {
		return key, false
	}
	return e.key, true
}

// Child returns the positioned value. ok is false unless the entry is a child.
func (e Entry[K, V]) Child() (child Positioned[V], ok bool) {
	if e.kind != KindChild {
		return child, false
	}
	return e.child, true
}

// IsSection reports whether the entry is a section header.
func (e Entry[K, V]) IsSection() bool { return e.kind == KindSection }

// IsChild reports whether the entry is a child.
func (e Entry[K, V]) IsChild() bool { return e.kind == KindChild }

// IsDivider reports whether the entry is a divider.
func (e Entry[K, V]) IsDivider() bool { return e.kind == KindChildDivider }

func (e Entry[K, V]) String() string {
	switch e.kind {
	case KindSection:
		return fmt.Sprintf("Section(%v)", e.key)
	case KindChild:
		return fmt.Sprintf("Child(%v, %d)", e.child.Value, e.child.Position)
	default:
		return "Divider"
	}
}
