// Package review implements the duplicate-review reconciliation engine:
// similarity-level indexing, range pagination, per-record selection
// reconciliation, and batched page submission.
package review

import (
	"math"
	"sort"

	"github.com/quizforge/dupereview/internal/model"
)

// levelKey converts a similarity level percentage into an integer key
// (tenths of a percent), so level comparisons never hit float equality.
func levelKey(level float64) int {
	return int(math.Round(level * 10))
}

// GroupIndex is a read-only view over the loaded duplicate groups,
// bucketed by similarity level. Built once per session.
type GroupIndex struct {
	groups  map[int]model.DuplicateGroup
	byLevel map[int][]int // level key -> group ids, ascending
	levels  []float64     // distinct levels, descending
}

// NewGroupIndex buckets groups by similarity level
func NewGroupIndex(groups []model.DuplicateGroup) *GroupIndex {
	idx := &GroupIndex{
		groups:  make(map[int]model.DuplicateGroup, len(groups)),
		byLevel: make(map[int][]int),
	}

	for _, g := range groups {
		key := levelKey(g.Level())
		idx.groups[g.ID] = g
		idx.byLevel[key] = append(idx.byLevel[key], g.ID)
	}

	for key, ids := range idx.byLevel {
		sort.Ints(ids)
		idx.levels = append(idx.levels, float64(key)/10)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(idx.levels)))
	return idx
}

// Len returns the total number of groups
func (idx *GroupIndex) Len() int {
	return len(idx.groups)
}

// Empty reports whether the index holds no groups
func (idx *GroupIndex) Empty() bool {
	return len(idx.groups) == 0
}

// Levels returns the distinct similarity levels, descending
func (idx *GroupIndex) Levels() []float64 {
	return idx.levels
}

// MaxLevel returns the highest similarity level
func (idx *GroupIndex) MaxLevel() float64 {
	if len(idx.levels) == 0 {
		return 0
	}
	return idx.levels[0]
}

// MinLevel returns the lowest similarity level
func (idx *GroupIndex) MinLevel() float64 {
	if len(idx.levels) == 0 {
		return 0
	}
	return idx.levels[len(idx.levels)-1]
}

// Group looks up a group by id
func (idx *GroupIndex) Group(id int) (model.DuplicateGroup, bool) {
	g, ok := idx.groups[id]
	return g, ok
}

// CountAt returns the number of groups at an exact level
func (idx *GroupIndex) CountAt(level float64) int {
	return len(idx.byLevel[levelKey(level)])
}

// CountBelow counts groups strictly below a level. This is the
// existence check behind hasNext: pagination decisions are made on
// actual group existence, never on level-boundary comparison alone.
func (idx *GroupIndex) CountBelow(level float64) int {
	key := levelKey(level)
	n := 0
	for k, ids := range idx.byLevel {
		if k < key {
			n += len(ids)
		}
	}
	return n
}

// NextLevelBelow returns the highest level strictly below the given one
func (idx *GroupIndex) NextLevelBelow(level float64) (float64, bool) {
	key := levelKey(level)
	for _, lvl := range idx.levels {
		if levelKey(lvl) < key {
			return lvl, true
		}
	}
	return 0, false
}

// GroupsInRange returns the groups whose level falls inside the range,
// inclusive on both ends, ordered by level descending then id ascending.
func (idx *GroupIndex) GroupsInRange(r model.ReviewRange) []model.DuplicateGroup {
	startKey, endKey := levelKey(r.Start), levelKey(r.End)

	var out []model.DuplicateGroup
	for _, lvl := range idx.levels {
		key := levelKey(lvl)
		if key > startKey {
			continue
		}
		if key < endKey {
			break
		}
		for _, id := range idx.byLevel[key] {
			out = append(out, idx.groups[id])
		}
	}
	return out
}

// CountInRange counts groups inside the range, inclusive
func (idx *GroupIndex) CountInRange(r model.ReviewRange) int {
	startKey, endKey := levelKey(r.Start), levelKey(r.End)
	n := 0
	for k, ids := range idx.byLevel {
		if k <= startKey && k >= endKey {
			n += len(ids)
		}
	}
	return n
}
