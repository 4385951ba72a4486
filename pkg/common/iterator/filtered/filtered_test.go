package filtered

import (
	"slices"
	"testing"

	"github.com/KevoDB/sectionlist/pkg/common/iterator"
	"github.com/KevoDB/sectionlist/pkg/common/iterator/bounded"
)

func even(n int) bool { return n%2 == 0 }

func numbers() *iterator.SliceIterator[int] {
	return iterator.NewSliceIterator([]int{1, 2, 3, 4, 5, 6, 7})
}

func TestFilteredIterator(t *testing.T) {
	fi := NewFilteredIterator[int](numbers(), even)

	fi.SeekToFirst()
	if got := iterator.Collect[int](fi); !slices.Equal(got, []int{2, 4, 6}) {
		t.Errorf("expected [2 4 6], got %v", got)
	}

	fi.SeekToLast()
	if !fi.Valid() || fi.Item() != 6 || fi.Position() != 5 {
		t.Errorf("expected 6 at position 5, got %d at %d", fi.Item(), fi.Position())
	}
	if !fi.Prev() || fi.Item() != 4 {
		t.Errorf("expected Prev to land on 4, got %d", fi.Item())
	}

	if !fi.Seek(2) || fi.Item() != 4 {
		t.Errorf("expected Seek(2) to land on 4, got %d", fi.Item())
	}
	if fi.Seek(6) {
		t.Error("Seek with no passing item after target should fail")
	}
}

func TestFilteredIteratorNoMatches(t *testing.T) {
	fi := NewFilteredIterator[int](numbers(), func(n int) bool { return n > 100 })

	fi.SeekToFirst()
	if fi.Valid() {
		t.Error("iterator with no passing items should be invalid")
	}
	fi.SeekToLast()
	if fi.Valid() {
		t.Error("iterator with no passing items should be invalid")
	}
}

func TestFilteredInsideBounded(t *testing.T) {
	fi := NewFilteredIterator[int](numbers(), even)
	bi := bounded.NewBoundedIterator[int](fi, 2, 5)

	bi.SeekToFirst()
	if got := iterator.Collect[int](bi); !slices.Equal(got, []int{4}) {
		t.Errorf("expected [4], got %v", got)
	}

	bi.SeekToLast()
	if !bi.Valid() || bi.Item() != 4 {
		t.Errorf("expected last item 4, got %d", bi.Item())
	}
}
