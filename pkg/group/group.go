package group

import (
	"cmp"
	"slices"
)

// Grouper maps a value to the key of the group it belongs to.
type Grouper[K comparable, V any] func(value V) K

// GroupBy groups values by key in a single pass. Keys keep the order in which
// they first occur in values, and each group keeps the input order of its
// values. A nil values slice is treated as a missing argument; an empty one
// yields an empty mapping.
func GroupBy[K comparable, V any](values []V, keyOf Grouper[K, V]) (*Groups[K, V], error) {
	if values == nil {
		return nil, missing("values")
	}
	if keyOf == nil {
		return nil, missing("grouper")
	}

	b := NewBuilder[K, V]()
	for _, v := range values {
		b.Add(keyOf(v), v)
	}
	return b.Groups(), nil
}

// GroupSorted stably sorts a copy of values with compare and then groups it.
//
// Sorting happens before grouping, so it decides both the order inside each
// group and which value is seen first for every key. Group order therefore
// follows the sorted input rather than the original one.
func GroupSorted[K comparable, V any](values []V, keyOf Grouper[K, V], compare func(a, b V) int) (*Groups[K, V], error) {
	if values == nil {
		return nil, missing("values")
	}
	if keyOf == nil {
		return nil, missing("grouper")
	}
	if compare == nil {
		return nil, missing("value comparator")
	}

	return GroupBy(sortedCopy(values, compare), keyOf)
}

// GroupWithSorter sorts values, groups them with the sorter's own grouper,
// reorders the groups with the sorter's comparator and finally replaces every
// key with its display form.
//
// The sorter's grouper must group by the same property the comparators look
// at; this is not checked.
func GroupWithSorter[K comparable, V any, KD any](values []V, compare func(a, b V) int, sorter GroupSorter[K, V, KD]) (*Groups[KD, V], error) {
	if sorter == nil {
		return nil, missing("group sorter")
	}
	if values == nil {
		return nil, missing("values")
	}
	if compare == nil {
		return nil, missing("value comparator")
	}
	keyOf := sorter.Grouper()
	if keyOf == nil {
		return nil, missing("sortable grouper")
	}

	grouped, err := GroupBy(sortedCopy(values, compare), keyOf)
	if err != nil {
		return nil, err
	}
	ordered, err := SortGroups(grouped, sorter.Compare)
	if err != nil {
		return nil, err
	}
	return MapKeys(ordered, sorter.DisplayKey)
}

// SortGroups returns a copy of g with its groups stably reordered by compare.
func SortGroups[K, V any](g *Groups[K, V], compare func(a, b Group[K, V]) int) (*Groups[K, V], error) {
	if compare == nil {
		return nil, missing("group comparator")
	}
	groups := g.All()
	slices.SortStableFunc(groups, compare)
	return &Groups[K, V]{groups: groups}, nil
}

// MapKeys returns a copy of g with every key replaced by display(key). Groups
// stay one-to-one even when two keys map to the same display form.
func MapKeys[K, V, KD any](g *Groups[K, V], display func(K) KD) (*Groups[KD, V], error) {
	if display == nil {
		return nil, missing("key display function")
	}
	out := &Groups[KD, V]{groups: make([]Group[KD, V], 0, g.Len())}
	g.Each(func(key K, values []V) bool {
		out.groups = append(out.groups, Group[KD, V]{Key: display(key), Values: values})
		return true
	})
	return out, nil
}

func sortedCopy[V any](values []V, compare func(a, b V) int) []V {
	sorted := slices.Clone(values)
	slices.SortStableFunc(sorted, compare)
	return sorted
}

// ByKey orders groups by their keys.
func ByKey[K, V any](compare func(a, b K) int) func(a, b Group[K, V]) int {
	return func(a, b Group[K, V]) int {
		return compare(a.Key, b.Key)
	}
}

// ByOrderedKey orders groups by naturally ordered keys.
func ByOrderedKey[K cmp.Ordered, V any]() func(a, b Group[K, V]) int {
	return ByKey[K, V](cmp.Compare[K])
}

// BySize puts larger groups first. Equal sizes keep their relative order
// under a stable sort.
func BySize[K, V any]() func(a, b Group[K, V]) int {
	return func(a, b Group[K, V]) int {
		return cmp.Compare(b.Len(), a.Len())
	}
}

// Reverse inverts a comparator.
func Reverse[T any](compare func(a, b T) int) func(a, b T) int {
	return func(a, b T) int {
		return compare(b, a)
	}
}
