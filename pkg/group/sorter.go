package group

// GroupSorter decides how groups are formed for sorting, how they are
// ordered, and how their keys are shown.
//
// Grouping on K and showing KD are separate so that a group can be ordered by
// one derived property (for example its size) while being displayed as
// something that need not be comparable at all.
type GroupSorter[K comparable, V any, KD any] interface {
	// Grouper returns the key function used to form groups. It should
	// group by the same property Compare looks at.
	Grouper() Grouper[K, V]

	// Compare orders two groups.
	Compare(a, b Group[K, V]) int

	// DisplayKey converts a key to its displayable form.
	DisplayKey(key K) KD
}

// FuncSorter is a GroupSorter assembled from plain functions.
type FuncSorter[K comparable, V any, KD any] struct {
	grouper Grouper[K, V]
	compare func(a, b Group[K, V]) int
	display func(K) KD
}

// NewGroupSorter builds a GroupSorter from its three parts.
func NewGroupSorter[K comparable, V any, KD any](grouper Grouper[K, V], compare func(a, b Group[K, V]) int, display func(K) KD) (*FuncSorter[K, V, KD], error) {
	if grouper == nil {
		return nil, missing("grouper")
	}
	if compare == nil {
		return nil, missing("group comparator")
	}
	if display == nil {
		return nil, missing("key display function")
	}
	return &FuncSorter[K, V, KD]{grouper: grouper, compare: compare, display: display}, nil
}

// Grouper implements GroupSorter
func (s *FuncSorter[K, V, KD]) Grouper() Grouper[K, V] {
	return s.grouper
}

// Compare implements GroupSorter
func (s *FuncSorter[K, V, KD]) Compare(a, b Group[K, V]) int {
	return s.compare(a, b)
}

// DisplayKey implements GroupSorter
func (s *FuncSorter[K, V, KD]) DisplayKey(key K) KD {
	return s.display(key)
}

// Identity returns its argument; use it as the display function when keys are
// shown as they are.
func Identity[K any](key K) K {
	return key
}
