// Package render is a plain-text presentation layer for section adapters
// over dataset records. It is what the command line tools print.
package render

import (
	"fmt"
	"io"

	"github.com/KevoDB/sectionlist/pkg/common/iterator"
	"github.com/KevoDB/sectionlist/pkg/common/iterator/bounded"
	"github.com/KevoDB/sectionlist/pkg/common/iterator/filtered"
	"github.com/KevoDB/sectionlist/pkg/dataset"
	"github.com/KevoDB/sectionlist/pkg/section"
)

// Adapter is the adapter type the renderer works with.
type Adapter = section.Adapter[string, dataset.Record]

type entry = section.Entry[string, dataset.Record]

type snapshot = section.Snapshot[string, dataset.Record]

// TextBinder writes one line per bound entry.
type TextBinder struct {
	w     io.Writer
	label string
}

var _ section.Binder[string, dataset.Record] = (*TextBinder)(nil)

// NewTextBinder creates a binder writing to w. label is the record field
// shown for children; an empty label shows the whole record.
func NewTextBinder(w io.Writer, label string) *TextBinder {
	return &TextBinder{w: w, label: label}
}

// BindSection implements section.Binder
func (b *TextBinder) BindSection(key string, first bool) {
	if !first {
		fmt.Fprintln(b.w)
	}
	if key == "" {
		key = "(none)"
	}
	fmt.Fprintf(b.w, "== %s ==\n", key)
}

// BindChild implements section.Binder
func (b *TextBinder) BindChild(value dataset.Record, position, childIndex int) {
	fmt.Fprintf(b.w, "%4d  #%-4d %s\n", position, childIndex, dataset.Label(value, b.label))
}

// BindDivider implements section.Binder
func (b *TextBinder) BindDivider(position int) {
	fmt.Fprintf(b.w, "%4d  ----\n", position)
}

// Window binds the entries at positions [start, end) of the adapter's
// current snapshot. Pass bounded.Unbounded as end to render to the last
// entry. It returns the number of entries written.
func Window(a *Adapter, binder section.Binder[string, dataset.Record], start, end int) int {
	snap := a.Snapshot()
	return walk(a, snap, bounded.NewBoundedIterator(snap.Iterator(), start, end), binder)
}

// Children binds only the child entries of the adapter's current snapshot.
func Children(a *Adapter, binder section.Binder[string, dataset.Record]) int {
	snap := a.Snapshot()
	iter := filtered.NewFilteredIterator(snap.Iterator(), func(e entry) bool {
		return e.IsChild()
	})
	return walk(a, snap, iter, binder)
}

func walk(a *Adapter, snap *snapshot, iter iterator.Iterator[entry], binder section.Binder[string, dataset.Record]) int {
	n := 0
	for iter.SeekToFirst(); iter.Valid(); iter.Next() {
		if a.BindSnapshot(snap, iter.Position(), binder) {
			n++
		}
	}
	return n
}

// Index writes the section index of the adapter's current snapshot: every
// section with the position the fast scroller jumps to and its size.
func Index(w io.Writer, a *Adapter) {
	snap := a.Snapshot()
	g := snap.Groups()
	for i, key := range snap.SectionKeys() {
		fmt.Fprintf(w, "%3d  @%-5d %-24s %d\n", i, snap.PositionForSection(i), key, g.At(i).Len())
	}
}
