package review

import (
	"github.com/quizforge/dupereview/internal/model"
)

// Page-size accumulation bounds, as fractions of the target. A page
// stops growing once it reaches the target, accepts down to lowFactor
// when the next level would overshoot highFactor, and displays at most
// highFactor groups.
const (
	lowFactor  = 0.8
	highFactor = 1.5
)

// Paginator walks the similarity levels in contiguous range pages. All
// navigation state (current range, history, manual flag, target size)
// lives in the session so it survives restarts.
type Paginator struct {
	idx  *GroupIndex
	sess *model.Session
}

// NewPaginator creates a paginator over an index and session. A session
// with no range yet is anchored at the highest level.
func NewPaginator(idx *GroupIndex, sess *model.Session) *Paginator {
	p := &Paginator{idx: idx, sess: sess}
	if sess.Range == (model.ReviewRange{}) && !idx.Empty() {
		sess.Range = p.computeFrom(idx.MaxLevel())
	}
	return p
}

// Current returns the active review range
func (p *Paginator) Current() model.ReviewRange {
	return p.sess.Range
}

func (p *Paginator) target() int {
	t := p.sess.TargetGroupsPerPage
	if t <= 0 {
		t = 1
	}
	return t
}

// capacity is the hard display cap for one page
func (p *Paginator) capacity() int {
	c := int(highFactor * float64(p.target()))
	if c < 1 {
		c = 1
	}
	return c
}

// computeFrom accumulates whole levels downward from the anchor until
// the page lands in the accepted size window. If everything down to the
// lowest level still undershoots, the range covers it all: no group may
// be left unreachable below the final page.
func (p *Paginator) computeFrom(anchor float64) model.ReviewRange {
	r := model.ReviewRange{Start: anchor, End: anchor}
	if p.idx.Empty() {
		return r
	}

	target := p.target()
	total := 0
	levels := p.idx.Levels()

	for i, lvl := range levels {
		if levelKey(lvl) > levelKey(anchor) {
			continue
		}

		total += p.idx.CountAt(lvl)
		r.End = lvl

		if total >= target {
			break
		}
		// Accept a slightly short page rather than overshooting the cap
		if total >= int(lowFactor*float64(target)) && i+1 < len(levels) {
			if total+p.idx.CountAt(levels[i+1]) > int(highFactor*float64(target)) {
				break
			}
		}
	}
	return r
}

// PageGroups returns the groups on the current page, capped
func (p *Paginator) PageGroups() []model.DuplicateGroup {
	groups := p.idx.GroupsInRange(p.sess.Range)
	if cap := p.capacity(); len(groups) > cap {
		groups = groups[:cap]
	}
	return groups
}

// ExcludedByCap counts in-range groups the page cap hides
func (p *Paginator) ExcludedByCap() int {
	n := p.idx.CountInRange(p.sess.Range) - p.capacity()
	if n < 0 {
		return 0
	}
	return n
}

// HasNext reports whether any reviewable group remains beyond the
// current page: either strictly below the range's end, or inside the
// range but excluded by the page cap. Defined by group existence, not
// by comparing the end against the minimum level.
func (p *Paginator) HasNext() bool {
	if p.idx.CountBelow(p.sess.Range.End) > 0 {
		return true
	}
	return p.idx.CountInRange(p.sess.Range) > p.capacity()
}

// HasPrevious reports whether navigation history exists
func (p *Paginator) HasPrevious() bool {
	return len(p.sess.RangeHistory) > 0
}

// Next advances to the next contiguous range. When the current range
// sits on a single level (start == end) that level counts as consumed
// and the next page anchors one level lower; otherwise the next page
// anchors at the current end, whose groups may not all be exhausted.
func (p *Paginator) Next() bool {
	cur := p.sess.Range

	anchor := cur.End
	if levelKey(cur.Start) == levelKey(cur.End) {
		below, ok := p.idx.NextLevelBelow(cur.End)
		if !ok {
			return false
		}
		anchor = below
	}

	p.sess.PushRange(cur)
	p.sess.Range = p.computeFrom(anchor)
	p.sess.ManualRange = false
	return true
}

// Previous restores the last range from history, verbatim
func (p *Paginator) Previous() bool {
	prev, ok := p.sess.PopRange()
	if !ok {
		return false
	}
	p.sess.Range = prev
	return true
}

// JumpToMax recomputes a fresh range anchored at the highest level
func (p *Paginator) JumpToMax() {
	p.sess.RangeHistory = nil
	p.sess.ManualRange = false
	p.sess.Range = p.computeFrom(p.idx.MaxLevel())
}

// JumpToMin recomputes a fresh range anchored at the lowest level
func (p *Paginator) JumpToMin() {
	p.sess.RangeHistory = nil
	p.sess.ManualRange = false
	p.sess.Range = p.computeFrom(p.idx.MinLevel())
}

// SetTarget changes the page-size target. Auto-computed ranges are
// recomputed from the current anchor; manual ranges are left alone.
func (p *Paginator) SetTarget(n int) {
	if n <= 0 {
		return
	}
	p.sess.TargetGroupsPerPage = n
	if !p.sess.ManualRange {
		p.sess.Range = p.computeFrom(p.sess.Range.Start)
	}
}

// SetManualRange applies a user-chosen range. Manual ranges are never
// auto-recomputed; only an explicit jump clears the flag.
func (p *Paginator) SetManualRange(r model.ReviewRange) {
	if r.Start < r.End {
		r.Start, r.End = r.End, r.Start
	}
	p.sess.PushRange(p.sess.Range)
	p.sess.Range = r
	p.sess.ManualRange = true
}
