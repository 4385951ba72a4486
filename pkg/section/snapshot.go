package section

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/KevoDB/sectionlist/pkg/common/iterator"
	"github.com/KevoDB/sectionlist/pkg/group"
)

// Snapshot is the grouped data of one refresh together with its flattened
// form. It is never modified after construction, so a reader holding a
// Snapshot sees consistent data for as long as it keeps it.
type Snapshot[K, V any] struct {
	groups  *group.Groups[K, V]
	entries []Entry[K, V]
	slots   []slot
	opts    FlattenOptions
	policy  OutOfRange

	// keys holds every section key as text; ordinals counts earlier
	// sections with the same text
	keys     []string
	ordinals []int
}

// NewSnapshot flattens g and captures it. A nil g produces an empty snapshot.
func NewSnapshot[K, V any](g *group.Groups[K, V], opts FlattenOptions, policy OutOfRange) *Snapshot[K, V] {
	if g == nil {
		g = group.FromGroups[K, V]()
	}
	entries, slots := flatten(g, opts)

	keys := make([]string, g.Len())
	ordinals := make([]int, g.Len())
	seen := make(map[string]int, g.Len())
	for i := range keys {
		keys[i] = fmt.Sprint(g.At(i).Key)
		ordinals[i] = seen[keys[i]]
		seen[keys[i]]++
	}

	return &Snapshot[K, V]{
		groups:   g,
		entries:  entries,
		slots:    slots,
		opts:     opts,
		policy:   policy,
		keys:     keys,
		ordinals: ordinals,
	}
}

// ItemCount returns the number of flattened entries.
func (s *Snapshot[K, V]) ItemCount() int {
	return len(s.entries)
}

// EntryAt returns the entry at position.
func (s *Snapshot[K, V]) EntryAt(position int) (Entry[K, V], bool) {
	if position < 0 || position >= len(s.entries) {
		return Entry[K, V]{}, false
	}
	return s.entries[position], true
}

// KindAt returns the kind of the entry at position.
func (s *Snapshot[K, V]) KindAt(position int) (Kind, bool) {
	e, ok := s.EntryAt(position)
	if !ok {
		return 0, false
	}
	return e.Kind(), true
}

// Entries returns a copy of the flattened sequence.
func (s *Snapshot[K, V]) Entries() []Entry[K, V] {
	out := make([]Entry[K, V], len(s.entries))
	copy(out, s.entries)
	return out
}

// Groups returns the grouped data the snapshot was built from.
func (s *Snapshot[K, V]) Groups() *group.Groups[K, V] {
	return s.groups
}

// Options returns the flatten options the snapshot was built with.
func (s *Snapshot[K, V]) Options() FlattenOptions {
	return s.opts
}

// SectionKeys returns the section keys in mapping order.
func (s *Snapshot[K, V]) SectionKeys() []K {
	return SectionKeys(s.groups)
}

// PositionForSection see PositionForSection.
func (s *Snapshot[K, V]) PositionForSection(section int) int {
	return PositionForSection(s.groups, section)
}

// SectionForPosition see SectionForPosition; the snapshot's policy applies.
func (s *Snapshot[K, V]) SectionForPosition(position int) int {
	return SectionForPosition(s.groups, position, s.policy)
}

func (s *Snapshot[K, V]) locate(position int) (int, bool) {
	return locate(s.groups, position, s.policy)
}

// ViewTypeCount returns the number of distinct kinds the snapshot can
// contain: 3 with dividers, 2 without.
func (s *Snapshot[K, V]) ViewTypeCount() int {
	if s.opts.Dividers {
		return 3
	}
	return 2
}

// IsEnabled reports whether the entry at position is selectable. Only
// children are.
func (s *Snapshot[K, V]) IsEnabled(position int) bool {
	kind, ok := s.KindAt(position)
	return ok && kind == KindChild
}

// ItemID returns the identifier of the entry at position, which is the
// position itself. It changes whenever entries move.
func (s *Snapshot[K, V]) ItemID(position int) int64 {
	return int64(position)
}

// StableID returns an identifier derived from the entry's kind, its index
// inside the group and its section key. Sections whose keys print the same
// are told apart by how many such sections precede them. The identifier does
// not depend on where the section ends up in the flattened sequence, so it
// survives group reordering. Positions out of range give 0.
func (s *Snapshot[K, V]) StableID(position int) uint64 {
	if position < 0 || position >= len(s.entries) {
		return 0
	}
	sl := s.slots[position]

	d := xxhash.New()
	var buf [17]byte
	buf[0] = byte(s.entries[position].Kind())
	binary.LittleEndian.PutUint64(buf[1:], uint64(sl.inGroup))
	binary.LittleEndian.PutUint64(buf[9:], uint64(s.ordinals[sl.section]))
	_, _ = d.Write(buf[:])
	_, _ = d.WriteString(s.keys[sl.section])
	return d.Sum64()
}

// Fingerprint hashes the stable IDs of all entries in order. Two snapshots
// with equal fingerprints present the same layout.
func (s *Snapshot[K, V]) Fingerprint() uint64 {
	d := xxhash.New()
	var buf [8]byte
	for i := range s.entries {
		binary.LittleEndian.PutUint64(buf[:], s.StableID(i))
		_, _ = d.Write(buf[:])
	}
	return d.Sum64()
}

// Bind passes the entry at position to the matching Binder method. It
// returns false if position is out of range or binder is nil.
func (s *Snapshot[K, V]) Bind(position int, binder Binder[K, V]) bool {
	e, ok := s.EntryAt(position)
	if !ok || binder == nil {
		return false
	}

	switch e.Kind() {
	case KindSection:
		binder.BindSection(e.key, position == 0)
	case KindChild:
		binder.BindChild(e.child.Value, position, e.child.Position)
	default:
		binder.BindDivider(position)
	}
	return true
}

// Iterator returns an iterator over the flattened entries, positioned at the
// first one. Positions reported by the iterator are flattened positions.
func (s *Snapshot[K, V]) Iterator() iterator.Iterator[Entry[K, V]] {
	iter := iterator.NewSliceIterator(s.entries)
	iter.SeekToFirst()
	return iter
}
