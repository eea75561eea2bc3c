package store

import (
	"testing"
)

func TestTrackStore_MergeRemovedPreservesHistory(t *testing.T) {
	ts := NewTrackStore(t.TempDir())

	if _, err := ts.MergeRemoved("anatomy", []string{"3.json", "1.json"}); err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	merged, err := ts.MergeRemoved("anatomy", []string{"2.json", "3.json"})
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}

	want := []string{"1.json", "2.json", "3.json"}
	if len(merged) != len(want) {
		t.Fatalf("expected %d ids, got %d", len(want), len(merged))
	}
	for i, id := range want {
		if merged[i] != id {
			t.Errorf("at %d: expected %s, got %s", i, id, merged[i])
		}
	}
}

func TestTrackStore_DropRemoved(t *testing.T) {
	ts := NewTrackStore(t.TempDir())

	if _, err := ts.MergeRemoved("anatomy", []string{"1.json", "2.json", "3.json"}); err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	if err := ts.DropRemoved("anatomy", []string{"2.json"}); err != nil {
		t.Fatalf("drop failed: %v", err)
	}

	got := ts.LoadRemoved("anatomy")
	if len(got) != 2 {
		t.Fatalf("expected 2 ids, got %v", got)
	}
	for _, id := range got {
		if id == "2.json" {
			t.Errorf("2.json should have been dropped")
		}
	}
}

func TestTrackStore_MergeSavedNumericOrder(t *testing.T) {
	ts := NewTrackStore(t.TempDir())

	merged, err := ts.MergeSaved("anatomy", []string{"10.json", "2.json", "1.json"})
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}

	want := []string{"1.json", "2.json", "10.json"}
	for i, id := range want {
		if merged[i] != id {
			t.Errorf("at %d: expected %s, got %s (numeric sort, not lexical)", i, id, merged[i])
		}
	}
}

func TestTrackStore_SubjectsIsolated(t *testing.T) {
	ts := NewTrackStore(t.TempDir())

	if _, err := ts.MergeRemoved("anatomy", []string{"1.json"}); err != nil {
		t.Fatalf("merge failed: %v", err)
	}

	if got := ts.LoadRemoved("physiology"); len(got) != 0 {
		t.Errorf("expected empty list for other subject, got %v", got)
	}
}
