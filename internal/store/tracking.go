package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/quizforge/dupereview/internal/model"
)

// TrackStore persists the removed-track and saved-track lists: the
// long-lived record dispositions that survive a "start again" of the
// working trees.
type TrackStore struct {
	root string // project data root; lists live in removed-track/ and saved-track/
}

// NewTrackStore creates a track store rooted at the data directory
func NewTrackStore(root string) *TrackStore {
	return &TrackStore{root: root}
}

func (t *TrackStore) removedPath(subject string) string {
	return filepath.Join(t.root, "removed-track", subject+".json")
}

func (t *TrackStore) savedPath(subject string) string {
	return filepath.Join(t.root, "saved-track", subject+".json")
}

func loadList(path string) []model.RecordID {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var ids []model.RecordID
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil
	}
	return ids
}

func writeList(path string, ids []model.RecordID) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create track dir: %w", err)
	}
	data, err := json.MarshalIndent(ids, "", "  ")
	if err != nil {
		return fmt.Errorf("encode track list: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write track list: %w", err)
	}
	return nil
}

// LoadRemoved returns the removed-track list for a subject
func (t *TrackStore) LoadRemoved(subject string) []model.RecordID {
	return loadList(t.removedPath(subject))
}

// MergeRemoved unions newIDs into the removed-track list, preserving
// history, and returns the merged list sorted lexically.
func (t *TrackStore) MergeRemoved(subject string, newIDs []model.RecordID) ([]model.RecordID, error) {
	merged := make(map[model.RecordID]bool)
	for _, id := range t.LoadRemoved(subject) {
		merged[id] = true
	}
	for _, id := range newIDs {
		merged[id] = true
	}

	ids := make([]model.RecordID, 0, len(merged))
	for id := range merged {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	if err := writeList(t.removedPath(subject), ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// DropRemoved deletes ids from the removed-track list (a previously
// discarded record was re-kept).
func (t *TrackStore) DropRemoved(subject string, ids []model.RecordID) error {
	drop := make(map[model.RecordID]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}

	var kept []model.RecordID
	for _, id := range t.LoadRemoved(subject) {
		if !drop[id] {
			kept = append(kept, id)
		}
	}
	if kept == nil {
		kept = []model.RecordID{}
	}
	return writeList(t.removedPath(subject), kept)
}

// LoadSaved returns the saved-track list for a subject
func (t *TrackStore) LoadSaved(subject string) []model.RecordID {
	return loadList(t.savedPath(subject))
}

// MergeSaved unions newIDs into the saved-track list and returns the
// merged list sorted by filename ordinal ("2.json" before "10.json").
func (t *TrackStore) MergeSaved(subject string, newIDs []model.RecordID) ([]model.RecordID, error) {
	merged := make(map[model.RecordID]bool)
	for _, id := range t.LoadSaved(subject) {
		merged[id] = true
	}
	for _, id := range newIDs {
		merged[id] = true
	}

	ids := make([]model.RecordID, 0, len(merged))
	for id := range merged {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return model.Ordinal(ids[i]) < model.Ordinal(ids[j])
	})

	if err := writeList(t.savedPath(subject), ids); err != nil {
		return nil, err
	}
	return ids, nil
}
