package section

import (
	"fmt"
	"strings"

	"github.com/KevoDB/sectionlist/pkg/group"
)

// OutOfRange decides what SectionForPosition returns for a position past the
// last group.
type OutOfRange int

const (
	// OutOfRangeLast returns the index of the last section.
	OutOfRangeLast OutOfRange = iota
	// OutOfRangeFirst returns 0, the historical behavior.
	OutOfRangeFirst
)

// String returns the string representation of the policy
func (o OutOfRange) String() string {
	switch o {
	case OutOfRangeLast:
		return "last"
	case OutOfRangeFirst:
		return "first"
	default:
		return fmt.Sprintf("OUT_OF_RANGE(%d)", int(o))
	}
}

// ParseOutOfRange converts "last" or "first" to a policy. An empty name
// selects the default.
func ParseOutOfRange(name string) (OutOfRange, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "last", "":
		return OutOfRangeLast, nil
	case "first":
		return OutOfRangeFirst, nil
	default:
		return OutOfRangeLast, fmt.Errorf("%w: unknown out-of-range policy %q", ErrInvalidArgument, name)
	}
}

// The index functions below always walk groups in mapping order and count
// every group as its size plus one header slot. Dividers and the Flatten
// traversal order are not taken into account.

// SectionKeys returns the keys of g in mapping order.
func SectionKeys[K, V any](g *group.Groups[K, V]) []K {
	return g.Keys()
}

// PositionForSection returns the sum of (size + 1) over every group before
// section. Sections at or below 0 give 0; sections past the end give the
// total over all groups.
func PositionForSection[K, V any](g *group.Groups[K, V], section int) int {
	pos := 0
	for i := 0; i < section && i < g.Len(); i++ {
		pos += g.At(i).Len() + 1
	}
	return pos
}

// SectionForPosition returns the index of the first group whose cumulative
// boundary, the running sum of (size + 1), is at least position. Negative
// positions and empty data give 0. Positions past every boundary are resolved
// by policy.
func SectionForPosition[K, V any](g *group.Groups[K, V], position int, policy OutOfRange) int {
	section, _ := locate(g, position, policy)
	return section
}

// locate is SectionForPosition that also reports whether position fell
// within the data.
func locate[K, V any](g *group.Groups[K, V], position int, policy OutOfRange) (int, bool) {
	n := g.Len()
	if n == 0 {
		return 0, false
	}
	if position < 0 {
		return 0, false
	}

	boundary := 0
	for i := 0; i < n; i++ {
		boundary += g.At(i).Len() + 1
		if boundary >= position {
			return i, true
		}
	}

	if policy == OutOfRangeFirst {
		return 0, false
	}
	return n - 1, false
}
