package review

import (
	"fmt"
	"testing"

	"github.com/quizforge/dupereview/internal/model"
)

// makeLevels builds counts[i] groups at each level, ids sequential
func makeLevels(counts map[float64]int) []model.DuplicateGroup {
	var groups []model.DuplicateGroup
	id := 1
	for lvl, n := range counts {
		for i := 0; i < n; i++ {
			a := model.RecordID(fmt.Sprintf("q%d_1.json", id))
			b := model.RecordID(fmt.Sprintf("q%d_2.json", id))
			groups = append(groups, grp(id, lvl/100, a, b))
			id++
		}
	}
	return groups
}

func newTestPaginator(counts map[float64]int, target int) (*Paginator, *model.Session) {
	idx := NewGroupIndex(makeLevels(counts))
	sess := model.NewSession("anatomy", target)
	return NewPaginator(idx, sess), sess
}

func TestPaginatorAccumulatesWholeLevels(t *testing.T) {
	// 50 groups at 100.0 undershoot the target of 100, so the page
	// pulls in the 80 groups at 99.9 as well.
	p, sess := newTestPaginator(map[float64]int{100.0: 50, 99.9: 80}, 100)

	want := model.ReviewRange{Start: 100.0, End: 99.9}
	if sess.Range != want {
		t.Fatalf("initial range = %+v, want %+v", sess.Range, want)
	}
	if got := len(p.PageGroups()); got != 130 {
		t.Errorf("page size = %d, want 130", got)
	}
	if p.ExcludedByCap() != 0 {
		t.Errorf("ExcludedByCap = %d, want 0", p.ExcludedByCap())
	}
}

func TestPaginatorStopsBeforeOvershooting(t *testing.T) {
	// 90 groups is inside the accepted window [80, 150]; adding the
	// next level's 80 would blow past the cap, so the page stops.
	p, sess := newTestPaginator(map[float64]int{100.0: 90, 99.9: 80}, 100)

	want := model.ReviewRange{Start: 100.0, End: 100.0}
	if sess.Range != want {
		t.Fatalf("initial range = %+v, want %+v", sess.Range, want)
	}
	if got := len(p.PageGroups()); got != 90 {
		t.Errorf("page size = %d, want 90", got)
	}
}

func TestPaginatorCapAndHasNextAtMinLevel(t *testing.T) {
	// A single level with more groups than the cap: the page shows 150
	// and hasNext stays true even though the end equals the minimum
	// level, because in-range groups remain unseen.
	p, _ := newTestPaginator(map[float64]int{99.9: 200}, 100)

	if got := len(p.PageGroups()); got != 150 {
		t.Errorf("page size = %d, want 150", got)
	}
	if p.ExcludedByCap() != 50 {
		t.Errorf("ExcludedByCap = %d, want 50", p.ExcludedByCap())
	}
	if !p.HasNext() {
		t.Error("HasNext = false, want true: capped groups remain in range")
	}
}

func TestPaginatorHasNextExhausted(t *testing.T) {
	p, _ := newTestPaginator(map[float64]int{99.9: 30}, 100)

	if p.HasNext() {
		t.Error("HasNext = true on a fully visible final page")
	}
}

func TestPaginatorNextAnchorsAtEnd(t *testing.T) {
	// Multi-level range: the end level may hold unexhausted groups, so
	// the next page anchors at the end itself, not below it.
	p, sess := newTestPaginator(map[float64]int{100.0: 50, 99.9: 200, 99.8: 40}, 100)

	first := sess.Range
	if first != (model.ReviewRange{Start: 100.0, End: 99.9}) {
		t.Fatalf("first range = %+v", first)
	}

	if !p.Next() {
		t.Fatal("Next() = false, want true")
	}
	if sess.Range.Start != 99.9 {
		t.Errorf("next range start = %v, want 99.9 (the previous end)", sess.Range.Start)
	}
	if len(sess.RangeHistory) != 1 || sess.RangeHistory[0] != first {
		t.Errorf("RangeHistory = %+v, want [%+v]", sess.RangeHistory, first)
	}
}

func TestPaginatorNextFromSingleLevelDescends(t *testing.T) {
	p, sess := newTestPaginator(map[float64]int{100.0: 100, 99.9: 100}, 100)

	if sess.Range != (model.ReviewRange{Start: 100.0, End: 100.0}) {
		t.Fatalf("first range = %+v", sess.Range)
	}
	if !p.Next() {
		t.Fatal("Next() = false, want true")
	}
	if sess.Range != (model.ReviewRange{Start: 99.9, End: 99.9}) {
		t.Errorf("next range = %+v, want {99.9 99.9}", sess.Range)
	}
}

func TestPaginatorPreviousRestoresVerbatim(t *testing.T) {
	p, sess := newTestPaginator(map[float64]int{100.0: 100, 99.9: 100, 99.8: 100}, 100)

	first := sess.Range
	p.Next()
	second := sess.Range
	p.Next()

	if !p.Previous() {
		t.Fatal("Previous() = false, want true")
	}
	if sess.Range != second {
		t.Errorf("range after Previous = %+v, want %+v", sess.Range, second)
	}
	if !p.Previous() {
		t.Fatal("second Previous() = false, want true")
	}
	if sess.Range != first {
		t.Errorf("range after second Previous = %+v, want %+v", sess.Range, first)
	}
	if p.HasPrevious() {
		t.Error("HasPrevious = true with empty history")
	}
}

func TestPaginatorSetTargetRecomputesAutoRange(t *testing.T) {
	p, sess := newTestPaginator(map[float64]int{100.0: 50, 99.9: 80, 99.8: 60}, 100)

	p.SetTarget(40)
	if sess.Range != (model.ReviewRange{Start: 100.0, End: 100.0}) {
		t.Errorf("range after SetTarget(40) = %+v, want {100 100}", sess.Range)
	}

	// Manual ranges survive target changes untouched
	manual := model.ReviewRange{Start: 99.9, End: 99.8}
	p.SetManualRange(manual)
	p.SetTarget(200)
	if sess.Range != manual {
		t.Errorf("manual range after SetTarget = %+v, want %+v", sess.Range, manual)
	}
}

func TestPaginatorSetManualRangeSwapsInverted(t *testing.T) {
	p, sess := newTestPaginator(map[float64]int{100.0: 10, 99.0: 10}, 100)

	p.SetManualRange(model.ReviewRange{Start: 99.0, End: 100.0})
	if sess.Range != (model.ReviewRange{Start: 100.0, End: 99.0}) {
		t.Errorf("range = %+v, want swapped {100 99}", sess.Range)
	}
	if !sess.ManualRange {
		t.Error("ManualRange flag not set")
	}
	if !p.HasPrevious() {
		t.Error("manual range should push the old range onto history")
	}
}

func TestPaginatorJumpsResetHistory(t *testing.T) {
	p, sess := newTestPaginator(map[float64]int{100.0: 100, 99.9: 100, 99.8: 100}, 100)

	p.Next()
	p.SetManualRange(model.ReviewRange{Start: 99.8, End: 99.8})

	p.JumpToMax()
	if sess.Range != (model.ReviewRange{Start: 100.0, End: 100.0}) {
		t.Errorf("range after JumpToMax = %+v", sess.Range)
	}
	if sess.ManualRange || len(sess.RangeHistory) != 0 {
		t.Error("JumpToMax should clear the manual flag and history")
	}

	p.JumpToMin()
	if sess.Range != (model.ReviewRange{Start: 99.8, End: 99.8}) {
		t.Errorf("range after JumpToMin = %+v", sess.Range)
	}
}
