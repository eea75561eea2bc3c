package review

import (
	"sort"

	"github.com/quizforge/dupereview/internal/model"
)

// Selections maps group id -> record id -> keep decision. A record
// appearing in several groups on the page holds one logical decision,
// mirrored into every group that contains it.
type Selections map[int]map[model.RecordID]bool

// ComputeInitialSelections derives the keep/discard decision for every
// record in every group on the page. Precedence, highest first:
//
//  1. an explicit user override recorded this page,
//  2. the authoritative remote status (saved -> keep, removed -> discard),
//  3. the auto-selection heuristic.
//
// In exhaustive mode (headsUp false) each group's still-undecided
// records are ranked by (hasYear desc, ordinal asc) and exactly the top
// one is kept; decisions propagate forward, so a record discarded by an
// earlier group stays discarded in later ones. In check-all mode
// everything not removed is kept.
func ComputeInitialSelections(pageGroups []model.DuplicateGroup, snaps map[model.RecordID]*model.RecordSnapshot, overrides map[model.RecordID]bool, headsUp bool) Selections {
	decided := make(map[model.RecordID]bool)
	has := func(id model.RecordID) bool { _, ok := decided[id]; return ok }

	// Overrides and authoritative statuses first
	for _, g := range pageGroups {
		for _, id := range g.Files {
			if has(id) {
				continue
			}
			if v, ok := overrides[id]; ok {
				decided[id] = v
				continue
			}
			switch status(snaps, id) {
			case model.StatusSaved:
				decided[id] = true
			case model.StatusRemoved:
				decided[id] = false
			}
		}
	}

	if headsUp {
		for _, g := range pageGroups {
			for _, id := range g.Files {
				if !has(id) {
					decided[id] = true
				}
			}
		}
	} else {
		// Group by group: keep the single best undecided candidate,
		// discard the rest. Earlier groups' outcomes are visible to
		// later ones through the shared decision map.
		for _, g := range pageGroups {
			var candidates []model.RecordID
			for _, id := range g.Files {
				if !has(id) {
					candidates = append(candidates, id)
				}
			}
			if len(candidates) == 0 {
				continue
			}
			best := pickBest(candidates, snaps)
			for _, id := range candidates {
				decided[id] = id == best
			}
		}
	}

	sel := make(Selections, len(pageGroups))
	for _, g := range pageGroups {
		sel[g.ID] = make(map[model.RecordID]bool, len(g.Files))
		for _, id := range g.Files {
			sel[g.ID][id] = decided[id]
		}
	}
	return sel
}

func pickBest(candidates []model.RecordID, snaps map[model.RecordID]*model.RecordSnapshot) model.RecordID {
	return BestRecord(candidates, snaps)
}

// BestRecord ranks candidates by (hasYear desc, ordinal asc, id asc)
// and returns the winner. Records with no snapshot rank worst.
func BestRecord(candidates []model.RecordID, snaps map[model.RecordID]*model.RecordSnapshot) model.RecordID {
	ranked := make([]model.RecordID, len(candidates))
	copy(ranked, candidates)

	sort.Slice(ranked, func(i, j int) bool {
		yi, oi := meta(snaps, ranked[i])
		yj, oj := meta(snaps, ranked[j])
		if yi != yj {
			return yi
		}
		if oi != oj {
			return oi < oj
		}
		return ranked[i] < ranked[j]
	})
	return ranked[0]
}

func status(snaps map[model.RecordID]*model.RecordSnapshot, id model.RecordID) model.Status {
	if snap, ok := snaps[id]; ok && snap != nil {
		return snap.Status
	}
	return model.StatusUnknown
}

// meta returns the heuristic ranking metadata, falling back to
// worst-case values when the snapshot is missing.
func meta(snaps map[model.RecordID]*model.RecordSnapshot, id model.RecordID) (hasYear bool, ordinal int) {
	if snap, ok := snaps[id]; ok && snap != nil {
		return snap.HasYear, snap.Ordinal
	}
	return false, model.WorstOrdinal
}

// ApplyUserToggle records an override and propagates the value to every
// group on the page containing the record. Overridden records are
// skipped by later heuristic recomputation; only the user moves them.
func ApplyUserToggle(sel Selections, pageGroups []model.DuplicateGroup, overrides map[model.RecordID]bool, id model.RecordID, value bool) {
	overrides[id] = value
	for _, g := range pageGroups {
		for _, member := range g.Files {
			if member == id {
				sel[g.ID][id] = value
				break
			}
		}
	}
}

// DetectConflicts returns the records holding both a keep and a discard
// across groups on the page, sorted. Informational only: submission
// resolves conflicts in favor of keep.
func DetectConflicts(pageGroups []model.DuplicateGroup, sel Selections) []model.RecordID {
	seenTrue := make(map[model.RecordID]bool)
	seenFalse := make(map[model.RecordID]bool)

	for _, g := range pageGroups {
		for _, id := range g.Files {
			v, ok := sel[g.ID][id]
			if !ok {
				continue
			}
			if v {
				seenTrue[id] = true
			} else {
				seenFalse[id] = true
			}
		}
	}

	var conflicts []model.RecordID
	for id := range seenTrue {
		if seenFalse[id] {
			conflicts = append(conflicts, id)
		}
	}
	sort.Strings(conflicts)
	return conflicts
}

// IsPageReadyForSubmit reports whether every record in every group on
// the page holds an explicit decision.
func IsPageReadyForSubmit(pageGroups []model.DuplicateGroup, sel Selections) bool {
	for _, g := range pageGroups {
		decisions, ok := sel[g.ID]
		if !ok {
			return false
		}
		for _, id := range g.Files {
			if _, ok := decisions[id]; !ok {
				return false
			}
		}
	}
	return true
}

// FinalStates resolves each record's page-wide disposition: checked in
// any group means kept.
func FinalStates(pageGroups []model.DuplicateGroup, sel Selections) map[model.RecordID]bool {
	final := make(map[model.RecordID]bool)
	for _, g := range pageGroups {
		for _, id := range g.Files {
			v := sel[g.ID][id]
			final[id] = final[id] || v
		}
	}
	return final
}
