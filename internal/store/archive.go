package store

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/quizforge/dupereview/internal/model"
)

// Archive manages the record trees: the pristine original copy, the
// working (classified) copy, the final kept tree, and the removed tree.
// Disposition priority when resolving a status: removed > saved > unknown.
type Archive struct {
	classified string
	final      string
	removed    string
	original   string
	tracks     *TrackStore
}

// NewArchive creates an archive over the configured record trees
func NewArchive(cfg model.PathsConfig, tracks *TrackStore) *Archive {
	return &Archive{
		classified: filepath.Join(cfg.DataDir, cfg.ClassifiedDir),
		final:      filepath.Join(cfg.DataDir, cfg.FinalDir),
		removed:    filepath.Join(cfg.DataDir, cfg.RemovedDir),
		original:   filepath.Join(cfg.DataDir, cfg.OriginalDir),
		tracks:     tracks,
	}
}

func (a *Archive) finalPath(subject string, id model.RecordID) string {
	return filepath.Join(a.final, subject, id)
}

func (a *Archive) removedPath(subject string, id model.RecordID) string {
	return filepath.Join(a.removed, subject, id)
}

func (a *Archive) classifiedPath(subject string, id model.RecordID) string {
	return filepath.Join(a.classified, subject, id)
}

// Status resolves the authoritative disposition of a record
func (a *Archive) Status(subject string, id model.RecordID) model.Status {
	for _, removed := range a.tracks.LoadRemoved(subject) {
		if removed == id {
			return model.StatusRemoved
		}
	}
	if fileExists(a.finalPath(subject, id)) {
		return model.StatusSaved
	}
	return model.StatusUnknown
}

// LoadRecord reads a record's content, preferring the final tree, then
// the removed tree, then the working copy.
func (a *Archive) LoadRecord(subject string, id model.RecordID) (*model.Record, error) {
	paths := []string{
		a.finalPath(subject, id),
		a.removedPath(subject, id),
		a.classifiedPath(subject, id),
	}

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var rec model.Record
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("decode record %s: %w", id, err)
		}
		return &rec, nil
	}
	return nil, fmt.Errorf("record %s not found for subject %s", id, subject)
}

// Keep ensures the record sits in the final tree. Returns true when the
// record was newly added there (it was unknown or removed before).
func (a *Archive) Keep(subject string, id model.RecordID) (bool, error) {
	dest := a.finalPath(subject, id)
	if fileExists(dest) {
		// Already kept; drop a stale removed-tree copy if one lingers
		_ = os.Remove(a.removedPath(subject, id))
		return false, nil
	}

	sources := []string{
		a.removedPath(subject, id),
		a.classifiedPath(subject, id),
		filepath.Join(a.original, subject, id),
	}
	for _, src := range sources {
		if !fileExists(src) {
			continue
		}
		if err := copyFile(src, dest); err != nil {
			return false, fmt.Errorf("keep %s: %w", id, err)
		}
		// A removed-tree source is moved, not copied
		if src == a.removedPath(subject, id) {
			_ = os.Remove(src)
		}
		return true, nil
	}
	return false, fmt.Errorf("keep %s: no source copy found", id)
}

// Discard ensures the record sits in the removed tree and not in the
// final tree. Returns (newlyRemoved, wasSaved).
func (a *Archive) Discard(subject string, id model.RecordID) (bool, bool, error) {
	src := a.finalPath(subject, id)
	dest := a.removedPath(subject, id)
	wasSaved := fileExists(src)

	if fileExists(dest) {
		if wasSaved {
			_ = os.Remove(src)
		}
		return false, wasSaved, nil
	}

	var from string
	switch {
	case wasSaved:
		from = src
	case fileExists(a.classifiedPath(subject, id)):
		from = a.classifiedPath(subject, id)
	case fileExists(filepath.Join(a.original, subject, id)):
		from = filepath.Join(a.original, subject, id)
	default:
		// Nothing to copy; the record is discarded by track entry alone
		return false, false, nil
	}

	if err := copyFile(from, dest); err != nil {
		return false, wasSaved, fmt.Errorf("discard %s: %w", id, err)
	}
	if wasSaved {
		_ = os.Remove(src)
	}
	return true, wasSaved, nil
}

// Statistics counts kept and removed records for a subject
func (a *Archive) Statistics(subject string) (finalCount, removedCount int) {
	finalCount = countJSONFiles(filepath.Join(a.final, subject))
	removedCount = len(a.tracks.LoadRemoved(subject))
	return finalCount, removedCount
}

// PreparationStats describes the subject before a fresh processing run
func (a *Archive) PreparationStats(subject string) model.PreparationStats {
	total := countJSONFiles(filepath.Join(a.original, subject))
	removed := len(a.tracks.LoadRemoved(subject))
	finalized := len(a.tracks.LoadSaved(subject))

	toProcess := total - finalized - removed
	if toProcess < 0 {
		toProcess = 0
	}
	return model.PreparationStats{
		TotalFiles:     total,
		FinalizedFiles: finalized,
		RemovedFiles:   removed,
		FilesToProcess: toProcess,
	}
}

// PrepareSubject resets the working copy from the pristine tree,
// skipping records already tracked as removed or saved. Returns the
// copied and skipped counts.
func (a *Archive) PrepareSubject(subject string) (int, int, error) {
	originalDir := filepath.Join(a.original, subject)
	workingDir := filepath.Join(a.classified, subject)

	entries, err := os.ReadDir(originalDir)
	if err != nil {
		return 0, 0, fmt.Errorf("read original tree: %w", err)
	}

	skip := make(map[model.RecordID]bool)
	for _, id := range a.tracks.LoadRemoved(subject) {
		skip[id] = true
	}
	for _, id := range a.tracks.LoadSaved(subject) {
		skip[id] = true
	}

	// Clear the working copy first
	if existing, err := os.ReadDir(workingDir); err == nil {
		for _, e := range existing {
			if strings.HasSuffix(e.Name(), ".json") {
				_ = os.Remove(filepath.Join(workingDir, e.Name()))
			}
		}
	}

	copied, skipped := 0, 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		if skip[e.Name()] {
			skipped++
			continue
		}
		if err := copyFile(filepath.Join(originalDir, e.Name()), filepath.Join(workingDir, e.Name())); err != nil {
			return copied, skipped, fmt.Errorf("prepare %s: %w", e.Name(), err)
		}
		copied++
	}

	if copied == 0 && skipped == 0 {
		return 0, 0, fmt.Errorf("no records found in original tree for %s", subject)
	}
	return copied, skipped, nil
}

// ClearSubject deletes all kept records for a subject (a "start again").
// Tracking lists and the pristine tree are untouched.
func (a *Archive) ClearSubject(subject string) (int, error) {
	dir := filepath.Join(a.final, subject)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("read final tree: %w", err)
	}

	deleted := 0
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".json") {
			if err := os.Remove(filepath.Join(dir, e.Name())); err == nil {
				deleted++
			}
		}
	}
	return deleted, nil
}

// ListSubjects returns the subject directories in the working tree
func (a *Archive) ListSubjects() ([]model.SubjectInfo, error) {
	entries, err := os.ReadDir(a.classified)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read classified tree: %w", err)
	}

	var subjects []model.SubjectInfo
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		count := countJSONFiles(filepath.Join(a.classified, e.Name()))
		subjects = append(subjects, model.SubjectInfo{
			Name:      e.Name(),
			Enabled:   count > 0,
			FileCount: count,
		})
	}
	sort.Slice(subjects, func(i, j int) bool { return subjects[i].Name < subjects[j].Name })
	return subjects, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func countJSONFiles(dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	n := 0
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			n++
		}
	}
	return n
}

// copyFile copies src to dest, creating the destination directory and
// verifying the copy landed before returning.
func copyFile(src, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create dest: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dest)
		return fmt.Errorf("copy: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close dest: %w", err)
	}

	info, err := os.Stat(dest)
	if err != nil || info.Size() == 0 {
		srcInfo, srcErr := os.Stat(src)
		if srcErr == nil && srcInfo.Size() > 0 {
			return fmt.Errorf("copy verification failed for %s", dest)
		}
	}
	return nil
}
