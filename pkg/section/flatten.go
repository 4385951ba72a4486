package section

import (
	"fmt"
	"strings"

	"github.com/KevoDB/sectionlist/pkg/group"
)

// Order is the order in which Flatten visits groups.
type Order int

const (
	// OrderReverse visits groups from last to first. This is the historical
	// behavior and the default.
	OrderReverse Order = iota
	// OrderForward visits groups in mapping order, matching the section index.
	OrderForward
)

// String returns the string representation of the order
func (o Order) String() string {
	switch o {
	case OrderReverse:
		return "reverse"
	case OrderForward:
		return "forward"
	default:
		return fmt.Sprintf("ORDER(%d)", int(o))
	}
}

// ParseOrder converts "reverse" or "forward" to an Order. An empty name
// selects the default.
func ParseOrder(name string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "reverse", "":
		return OrderReverse, nil
	case "forward":
		return OrderForward, nil
	default:
		return OrderReverse, fmt.Errorf("%w: unknown order %q", ErrInvalidArgument, name)
	}
}

// FlattenOptions controls Flatten.
type FlattenOptions struct {
	// Dividers inserts a divider before every child that is not the first of
	// its group
	Dividers bool

	// Order selects the group traversal order
	Order Order
}

// slot records where a flattened entry came from.
type slot struct {
	section int // index of the group in mapping order
	inGroup int // index of the value inside its group; for dividers, of the next value
}

// Flatten converts grouped data into a single sequence. Every group
// contributes its section entry followed by its children, optionally
// separated by dividers. Children are numbered by one counter that runs over
// the whole traversal; dividers do not consume a number. A nil g yields an
// empty sequence.
func Flatten[K, V any](g *group.Groups[K, V], opts FlattenOptions) []Entry[K, V] {
	entries, _ := flatten(g, opts)
	return entries
}

func flatten[K, V any](g *group.Groups[K, V], opts FlattenOptions) ([]Entry[K, V], []slot) {
	n := g.Len() + g.Count()
	if opts.Dividers {
		n += g.Count() - nonEmpty(g)
	}
	entries := make([]Entry[K, V], 0, n)
	slots := make([]slot, 0, n)

	next := 0
	visit := func(i int) {
		grp := g.At(i)
		entries = append(entries, SectionEntry[K, V](grp.Key))
		slots = append(slots, slot{section: i})
		for j, v := range grp.Values {
			if opts.Dividers && j > 0 {
				entries = append(entries, DividerEntry[K, V]())
				slots = append(slots, slot{section: i, inGroup: j})
			}
			entries = append(entries, ChildEntry[K](v, next))
			slots = append(slots, slot{section: i, inGroup: j})
			next++
		}
	}

	if opts.Order == OrderForward {
		for i := 0; i < g.Len(); i++ {
			visit(i)
		}
	} else {
		for i := g.Len() - 1; i >= 0; i-- {
			visit(i)
		}
	}
	return entries, slots
}

func nonEmpty[K, V any](g *group.Groups[K, V]) int {
	n := 0
	g.Each(func(_ K, values []V) bool {
		if len(values) > 0 {
			n++
		}
		return true
	})
	return n
}
