package bounded

import (
	"slices"
	"testing"

	"github.com/KevoDB/sectionlist/pkg/common/iterator"
)

func letters() *iterator.SliceIterator[string] {
	return iterator.NewSliceIterator([]string{"a", "b", "c", "d", "e", "f"})
}

func TestBoundedIteratorWindow(t *testing.T) {
	bi := NewBoundedIterator[string](letters(), 2, 5)

	bi.SeekToFirst()
	if got := iterator.Collect[string](bi); !slices.Equal(got, []string{"c", "d", "e"}) {
		t.Errorf("expected [c d e], got %v", got)
	}

	bi.SeekToLast()
	if !bi.Valid() || bi.Item() != "e" {
		t.Errorf("expected last item e, got %q", bi.Item())
	}
	if !bi.Prev() || bi.Item() != "d" {
		t.Errorf("expected Prev to land on d, got %q", bi.Item())
	}
}

func TestBoundedIteratorSeek(t *testing.T) {
	bi := NewBoundedIterator[string](letters(), 2, 5)

	if !bi.Seek(0) || bi.Item() != "c" {
		t.Errorf("Seek before the window should land on its start, got %q", bi.Item())
	}
	if !bi.Seek(4) || bi.Item() != "e" {
		t.Errorf("expected Seek(4) to land on e, got %q", bi.Item())
	}
	if bi.Seek(5) {
		t.Error("Seek at the end bound should fail")
	}
}

func TestBoundedIteratorUnbounded(t *testing.T) {
	bi := NewBoundedIterator[string](letters(), 4, Unbounded)

	bi.SeekToFirst()
	if got := iterator.Collect[string](bi); !slices.Equal(got, []string{"e", "f"}) {
		t.Errorf("expected [e f], got %v", got)
	}

	bi.SeekToLast()
	if bi.Item() != "f" {
		t.Errorf("expected last item f, got %q", bi.Item())
	}
}

func TestBoundedIteratorEndPastData(t *testing.T) {
	bi := NewBoundedIterator[string](letters(), 3, 100)

	bi.SeekToLast()
	if !bi.Valid() || bi.Item() != "f" {
		t.Errorf("expected last item f, got %q", bi.Item())
	}
}

func TestBoundedIteratorSetBounds(t *testing.T) {
	bi := NewBoundedIterator[string](letters(), 0, Unbounded)
	bi.Seek(1)

	bi.SetBounds(3, 4)
	if bi.Valid() {
		t.Error("iterator outside the new window should be invalid")
	}
	if bi.Item() != "" {
		t.Errorf("expected zero item outside the window, got %q", bi.Item())
	}

	bi.SeekToFirst()
	if got := iterator.Collect[string](bi); !slices.Equal(got, []string{"d"}) {
		t.Errorf("expected [d], got %v", got)
	}
}

func TestBoundedIteratorEmptyWindow(t *testing.T) {
	bi := NewBoundedIterator[string](letters(), 3, 3)

	bi.SeekToFirst()
	if bi.Valid() {
		t.Error("empty window should never be valid")
	}
	bi.SeekToLast()
	if bi.Valid() {
		t.Error("empty window should never be valid")
	}
}
