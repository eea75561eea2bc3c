package backend

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/quizforge/dupereview/internal/model"
)

func newTestLocal(t *testing.T) (*Local, string) {
	t.Helper()
	root := t.TempDir()
	cfg := model.DefaultConfig()
	cfg.Paths.DataDir = root
	cfg.Limits.OpsPerSecond = 10000
	cfg.Limits.Burst = 1000
	return NewLocal(cfg), root
}

func seedRecord(t *testing.T, root, subject, id string, rec model.Record) {
	t.Helper()
	dir := filepath.Join(root, "classified_all_db", subject)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, id), data, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func seedGroups(t *testing.T, l *Local, subject string, groups []model.DuplicateGroup) {
	t.Helper()
	if err := l.Groups().Save(subject, groups); err != nil {
		t.Fatalf("save groups: %v", err)
	}
}

func TestLocal_SubmitGroup(t *testing.T) {
	l, root := newTestLocal(t)
	ctx := context.Background()
	year := 2019

	seedRecord(t, root, "anatomy", "1.json", model.Record{Statement: "q1", YearTag: &year})
	seedRecord(t, root, "anatomy", "2.json", model.Record{Statement: "q2"})
	seedGroups(t, l, "anatomy", []model.DuplicateGroup{
		{ID: 0, Files: []string{"1.json", "2.json"}, MaxSimilarity: 0.999},
	})

	res, err := l.SubmitGroup(ctx, "anatomy", 0, []string{"1.json"})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if res.SavedCount != 1 || res.RemovedCount != 1 {
		t.Errorf("expected 1 saved 1 removed, got %+v", res)
	}
	if res.NewlyAddedToSaved != 1 || res.NewlyAddedToRemoved != 1 {
		t.Errorf("expected both newly added, got %+v", res)
	}

	statuses, err := l.BatchFileStatuses(ctx, "anatomy", []string{"1.json", "2.json"})
	if err != nil {
		t.Fatalf("statuses failed: %v", err)
	}
	if statuses["1.json"].Status != model.StatusSaved {
		t.Errorf("1.json should be saved, got %s", statuses["1.json"].Status)
	}
	if !statuses["1.json"].HasYear {
		t.Errorf("1.json should carry year metadata")
	}
	if statuses["2.json"].Status != model.StatusRemoved {
		t.Errorf("2.json should be removed, got %s", statuses["2.json"].Status)
	}
	if statuses["2.json"].RemovalInfo == nil {
		t.Fatal("2.json should carry removal history")
	}
	if got := statuses["2.json"].RemovalInfo.KeptFiles; len(got) != 1 || got[0] != "1.json" {
		t.Errorf("expected kept file 1.json, got %v", got)
	}
}

func TestLocal_SubmitGroupIdempotent(t *testing.T) {
	l, root := newTestLocal(t)
	ctx := context.Background()

	seedRecord(t, root, "anatomy", "1.json", model.Record{Statement: "q1"})
	seedRecord(t, root, "anatomy", "2.json", model.Record{Statement: "q2"})
	seedGroups(t, l, "anatomy", []model.DuplicateGroup{
		{ID: 0, Files: []string{"1.json", "2.json"}, MaxSimilarity: 0.999},
	})

	if _, err := l.SubmitGroup(ctx, "anatomy", 0, []string{"1.json"}); err != nil {
		t.Fatalf("first submit failed: %v", err)
	}
	res2, err := l.SubmitGroup(ctx, "anatomy", 0, []string{"1.json"})
	if err != nil {
		t.Fatalf("second submit failed: %v", err)
	}

	// Totals repeat, deltas do not
	if res2.SavedCount != 1 || res2.RemovedCount != 1 {
		t.Errorf("totals should repeat, got %+v", res2)
	}
	if res2.NewlyAddedToSaved != 0 || res2.NewlyAddedToRemoved != 0 || res2.MovedToRemoved != 0 {
		t.Errorf("resubmission must not report new movement, got %+v", res2)
	}

	statuses, err := l.BatchFileStatuses(ctx, "anatomy", []string{"1.json", "2.json"})
	if err != nil {
		t.Fatalf("statuses failed: %v", err)
	}
	if statuses["1.json"].Status != model.StatusSaved || statuses["2.json"].Status != model.StatusRemoved {
		t.Errorf("statuses changed on resubmission: %s / %s",
			statuses["1.json"].Status, statuses["2.json"].Status)
	}
}

func TestLocal_SubmitGroupReversal(t *testing.T) {
	l, root := newTestLocal(t)
	ctx := context.Background()

	seedRecord(t, root, "anatomy", "1.json", model.Record{Statement: "q1"})
	seedRecord(t, root, "anatomy", "2.json", model.Record{Statement: "q2"})
	seedGroups(t, l, "anatomy", []model.DuplicateGroup{
		{ID: 0, Files: []string{"1.json", "2.json"}, MaxSimilarity: 0.999},
	})

	if _, err := l.SubmitGroup(ctx, "anatomy", 0, []string{"1.json"}); err != nil {
		t.Fatalf("first submit failed: %v", err)
	}
	// Flip the decision: keep 2, discard 1
	res, err := l.SubmitGroup(ctx, "anatomy", 0, []string{"2.json"})
	if err != nil {
		t.Fatalf("flip submit failed: %v", err)
	}
	if res.MovedToRemoved != 1 {
		t.Errorf("expected 1 moved from saved to removed, got %+v", res)
	}

	statuses, err := l.BatchFileStatuses(ctx, "anatomy", []string{"1.json", "2.json"})
	if err != nil {
		t.Fatalf("statuses failed: %v", err)
	}
	if statuses["1.json"].Status != model.StatusRemoved {
		t.Errorf("1.json should now be removed, got %s", statuses["1.json"].Status)
	}
	if statuses["2.json"].Status != model.StatusSaved {
		t.Errorf("2.json should now be saved, got %s", statuses["2.json"].Status)
	}
}

func TestLocal_CheckAndClearSession(t *testing.T) {
	l, root := newTestLocal(t)
	ctx := context.Background()

	check, err := l.CheckSession(ctx, "anatomy")
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if check.Exists {
		t.Errorf("no session expected yet")
	}

	seedRecord(t, root, "anatomy", "1.json", model.Record{Statement: "q1"})
	seedRecord(t, root, "anatomy", "2.json", model.Record{Statement: "q2"})
	seedGroups(t, l, "anatomy", []model.DuplicateGroup{
		{ID: 0, Files: []string{"1.json", "2.json"}, MaxSimilarity: 0.99},
	})
	if _, err := l.SubmitGroup(ctx, "anatomy", 0, []string{"1.json"}); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	check, err = l.CheckSession(ctx, "anatomy")
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !check.Exists || !check.HasRemovedTrack {
		t.Errorf("expected session and removed track, got %+v", check)
	}

	res, err := l.ClearSession(ctx, "anatomy")
	if err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if res.FinalDeleted != 1 {
		t.Errorf("expected 1 final record deleted, got %d", res.FinalDeleted)
	}

	check, err = l.CheckSession(ctx, "anatomy")
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if check.Exists {
		t.Errorf("session should be gone after clear")
	}
	// Removal history outlives the cleared session
	if !check.HasRemovedTrack {
		t.Errorf("removed track must survive a session clear")
	}
}

func TestLocal_SummaryAndPrepStats(t *testing.T) {
	l, root := newTestLocal(t)
	ctx := context.Background()

	// Pristine tree with 3 records
	for _, id := range []string{"1.json", "2.json", "3.json"} {
		dir := filepath.Join(root, "classified_all_db-original", "anatomy")
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(filepath.Join(dir, id), []byte(`{"statement":"q"}`), 0644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	seedRecord(t, root, "anatomy", "1.json", model.Record{Statement: "q1"})
	seedRecord(t, root, "anatomy", "2.json", model.Record{Statement: "q2"})
	seedGroups(t, l, "anatomy", []model.DuplicateGroup{
		{ID: 0, Files: []string{"1.json", "2.json"}, MaxSimilarity: 0.99},
	})
	if _, err := l.SubmitGroup(ctx, "anatomy", 0, []string{"1.json"}); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	summary, err := l.GetSummary(ctx, "anatomy")
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if summary.FinalSaved != 1 || summary.FinalRemoved != 1 {
		t.Errorf("expected 1 saved 1 removed, got %+v", summary)
	}

	stats, err := l.GetPreparationStats(ctx, "anatomy")
	if err != nil {
		t.Fatalf("prep stats failed: %v", err)
	}
	if stats.TotalFiles != 3 || stats.RemovedFiles != 1 || stats.FilesToProcess != 2 {
		t.Errorf("unexpected prep stats: %+v", stats)
	}
}
