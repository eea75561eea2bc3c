package backend

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/quizforge/dupereview/internal/model"
	"github.com/quizforge/dupereview/internal/store"
	"github.com/quizforge/dupereview/internal/worker"
)

// Local implements Backend over the filesystem record trees
type Local struct {
	archive  *store.Archive
	tracks   *store.TrackStore
	sessions *store.SessionStore
	groups   *store.GroupStore
	limiter  *worker.Limiter

	statusWorkers int    // bounded fan-out for batched snapshot loads
	removedDir    string // removed tree root, for TrackRemoved's directory sweep
}

// NewLocal wires a local backend from the configured paths
func NewLocal(cfg *model.Config) *Local {
	tracks := store.NewTrackStore(cfg.Paths.DataDir)
	return &Local{
		archive:       store.NewArchive(cfg.Paths, tracks),
		tracks:        tracks,
		sessions:      store.NewSessionStore(filepath.Join(cfg.Paths.DataDir, cfg.Paths.SessionDir)),
		groups:        store.NewGroupStore(filepath.Join(cfg.Paths.DataDir, cfg.Paths.GroupsDir)),
		limiter:       worker.NewLimiter(cfg.Limits.OpsPerSecond, cfg.Limits.Burst),
		statusWorkers: cfg.Review.StatusConcurrency,
		removedDir:    filepath.Join(cfg.Paths.DataDir, cfg.Paths.RemovedDir),
	}
}

// Sessions exposes the session store for the engine's direct saves
func (l *Local) Sessions() *store.SessionStore {
	return l.sessions
}

// Archive exposes the record archive for CLI tooling
func (l *Local) Archive() *store.Archive {
	return l.archive
}

// Groups exposes the group store for loaders that import group lists
func (l *Local) Groups() *store.GroupStore {
	return l.groups
}

// GetGroups returns the stored duplicate groups plus session counters
func (l *Local) GetGroups(ctx context.Context, subject string) (*GroupsResult, error) {
	if err := l.limiter.Wait(ctx, subject); err != nil {
		return nil, err
	}

	groups, err := l.groups.Load(subject)
	if err != nil {
		return nil, fmt.Errorf("load groups: %w", err)
	}
	if groups == nil {
		return nil, fmt.Errorf("subject %s not processed yet", subject)
	}

	res := &GroupsResult{Groups: groups, CompletedGroups: []int{}}
	if sess, err := l.sessions.Load(subject); err == nil && sess != nil {
		res.NonDuplicateCount = sess.NonDuplicateCount
		res.TotalFiles = sess.TotalFiles
		res.CompletedGroups = sess.CompletedGroups
		res.FilesSaved = sess.FilesSaved
	}
	return res, nil
}

// BatchFileStatuses resolves snapshots without content
func (l *Local) BatchFileStatuses(ctx context.Context, subject string, ids []model.RecordID) (map[model.RecordID]*model.RecordSnapshot, error) {
	return l.loadSnapshots(ctx, subject, ids, false)
}

// BatchFileContent resolves snapshots with content included
func (l *Local) BatchFileContent(ctx context.Context, subject string, ids []model.RecordID) (map[model.RecordID]*model.RecordSnapshot, error) {
	return l.loadSnapshots(ctx, subject, ids, true)
}

func (l *Local) loadSnapshots(ctx context.Context, subject string, ids []model.RecordID, withContent bool) (map[model.RecordID]*model.RecordSnapshot, error) {
	if err := l.limiter.Wait(ctx, subject); err != nil {
		return nil, err
	}

	snaps := l.batchSnapshots(subject, ids, withContent)

	// Load the session once for the whole batch, not per record
	var history map[model.RecordID]model.RemovalInfo
	if sess, err := l.sessions.Load(subject); err == nil && sess != nil {
		history = sess.RemovalHistory
	}

	// Kept-record content is loaded once per distinct kept id
	keptContent := make(map[model.RecordID]*model.Record)
	for _, id := range ids {
		info, ok := history[id]
		if !ok {
			continue
		}
		snap := snaps[id]
		infoCopy := info
		snap.RemovalInfo = &infoCopy
		if len(info.KeptFiles) > 0 {
			keptID := info.KeptFiles[0]
			if _, loaded := keptContent[keptID]; !loaded {
				keptRec, err := l.archive.LoadRecord(subject, keptID)
				if err != nil {
					keptRec = nil
				}
				keptContent[keptID] = keptRec
			}
			snap.KeptRecord = keptContent[keptID]
		}
	}
	return snaps, nil
}

// batchSnapshots loads the per-record snapshots, fanning out across a
// worker pool when the batch is large enough to benefit.
func (l *Local) batchSnapshots(subject string, ids []model.RecordID, withContent bool) map[model.RecordID]*model.RecordSnapshot {
	workers := l.statusWorkers
	if workers > len(ids) {
		workers = len(ids)
	}

	snaps := make(map[model.RecordID]*model.RecordSnapshot, len(ids))
	if workers <= 1 {
		for _, id := range ids {
			snaps[id] = l.buildSnapshot(subject, id, withContent)
		}
		return snaps
	}

	pool := worker.NewPool(workers)
	pool.Start()
	for w := 0; w < workers; w++ {
		chunk := make([]model.RecordID, 0, len(ids)/workers+1)
		for i := w; i < len(ids); i += workers {
			chunk = append(chunk, ids[i])
		}
		pool.Submit(&snapshotJob{local: l, subject: subject, ids: chunk, withContent: withContent})
	}
	for _, res := range pool.Wait() {
		for id, snap := range res.(*snapshotOutcome).snaps {
			snaps[id] = snap
		}
	}
	return snaps
}

func (l *Local) buildSnapshot(subject string, id model.RecordID, withContent bool) *model.RecordSnapshot {
	snap := &model.RecordSnapshot{
		ID:      id,
		Status:  l.archive.Status(subject, id),
		Ordinal: model.Ordinal(id),
	}
	rec, err := l.archive.LoadRecord(subject, id)
	if err == nil {
		snap.HasYear = rec.HasYear()
		if withContent {
			snap.Content = rec
		}
	}
	// A missing or unreadable record falls back to heuristic
	// worst-case metadata instead of failing the page.
	return snap
}

type snapshotJob struct {
	local       *Local
	subject     string
	ids         []model.RecordID
	withContent bool
}

func (j *snapshotJob) Execute(ctx context.Context) worker.Result {
	out := &snapshotOutcome{snaps: make(map[model.RecordID]*model.RecordSnapshot, len(j.ids))}
	for _, id := range j.ids {
		out.snaps[id] = j.local.buildSnapshot(j.subject, id, j.withContent)
	}
	return out
}

type snapshotOutcome struct {
	snaps map[model.RecordID]*model.RecordSnapshot
}

func (o *snapshotOutcome) GetError() error { return nil }

// SubmitGroup commits one group's decisions to the record trees
func (l *Local) SubmitGroup(ctx context.Context, subject string, groupID int, keptIDs []model.RecordID) (*model.SubmitResult, error) {
	if err := l.limiter.Wait(ctx, subject); err != nil {
		return nil, err
	}

	groups, err := l.groups.Load(subject)
	if err != nil {
		return nil, fmt.Errorf("load groups: %w", err)
	}

	var group *model.DuplicateGroup
	for i := range groups {
		if groups[i].ID == groupID {
			group = &groups[i]
			break
		}
	}
	if group == nil {
		return nil, fmt.Errorf("group %d not found for subject %s", groupID, subject)
	}

	checked := make(map[model.RecordID]bool, len(keptIDs))
	for _, id := range keptIDs {
		checked[id] = true
	}

	result := &model.SubmitResult{}
	var kept, removed []model.RecordID

	for _, id := range group.Files {
		prior := l.archive.Status(subject, id)
		if checked[id] {
			result.SavedCount++
			kept = append(kept, id)
			newly, err := l.archive.Keep(subject, id)
			if err != nil {
				return result, fmt.Errorf("keep %s: %w", id, err)
			}
			if newly {
				result.NewlyAddedToSaved++
			}
		} else {
			result.RemovedCount++
			removed = append(removed, id)
			newly, wasSaved, err := l.archive.Discard(subject, id)
			if err != nil {
				return result, fmt.Errorf("discard %s: %w", id, err)
			}
			if newly {
				result.NewlyAddedToRemoved++
			}
			if wasSaved {
				result.MovedToRemoved++
			}
			if wasSaved || prior == model.StatusRemoved {
				result.UncheckedFromSaved++
			}
		}
	}

	// Track lists are the authoritative removed set; re-kept records
	// must leave it or Status keeps answering "removed".
	if len(removed) > 0 {
		if _, err := l.tracks.MergeRemoved(subject, removed); err != nil {
			return result, fmt.Errorf("merge removed track: %w", err)
		}
	}
	if len(kept) > 0 {
		if err := l.tracks.DropRemoved(subject, kept); err != nil {
			return result, fmt.Errorf("drop removed track: %w", err)
		}
	}

	if err := l.recordCompletion(subject, group, groupID, kept, removed, checked); err != nil {
		return result, err
	}
	return result, nil
}

// recordCompletion marks the group done and updates removal history
func (l *Local) recordCompletion(subject string, group *model.DuplicateGroup, groupID int, kept, removed []model.RecordID, checked map[model.RecordID]bool) error {
	sess, err := l.sessions.Load(subject)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if sess == nil {
		sess = model.NewSession(subject, 0)
	}

	sess.MarkCompleted(groupID)

	for _, removedID := range removed {
		existing, hasExisting := sess.RemovalHistory[removedID]

		// Kept-file attribution priority: this submission's kept set,
		// then the preserved history, then whatever in the group is
		// currently saved, then the checked set.
		keptFiles := kept
		if len(keptFiles) == 0 && hasExisting {
			keptFiles = existing.KeptFiles
		}
		if len(keptFiles) == 0 {
			for _, other := range group.Files {
				if other != removedID && l.archive.Status(subject, other) == model.StatusSaved {
					keptFiles = append(keptFiles, other)
				}
			}
		}
		if len(keptFiles) == 0 {
			for _, other := range group.Files {
				if other != removedID && checked[other] {
					keptFiles = append(keptFiles, other)
				}
			}
		}

		removedIn := groupID
		if len(kept) == 0 && hasExisting {
			removedIn = existing.RemovedIn
		}

		sess.RemovalHistory[removedID] = model.RemovalInfo{
			GroupID:     groupID,
			GroupedWith: group.Files,
			KeptFiles:   keptFiles,
			RemovedIn:   removedIn,
		}
	}

	// Re-kept records shed their removal history
	for _, keptID := range kept {
		delete(sess.RemovalHistory, keptID)
	}

	if err := l.sessions.Save(sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// GetSummary returns the final statistics for a subject
func (l *Local) GetSummary(ctx context.Context, subject string) (*model.Summary, error) {
	if err := l.limiter.Wait(ctx, subject); err != nil {
		return nil, err
	}

	finalCount, removedCount := l.archive.Statistics(subject)
	summary := &model.Summary{
		FinalSaved:   finalCount,
		FinalRemoved: removedCount,
		TotalFiles:   finalCount + removedCount,
	}

	if sess, err := l.sessions.Load(subject); err == nil && sess != nil {
		summary.TotalProcessed = sess.TotalFiles
		summary.NonDuplicates = sess.NonDuplicateCount
		summary.FilesInGroups = sess.FilesInGroups
	}
	return summary, nil
}

// CheckSession reports resumable state for a subject
func (l *Local) CheckSession(ctx context.Context, subject string) (*SessionCheck, error) {
	if err := l.limiter.Wait(ctx, subject); err != nil {
		return nil, err
	}

	sess, err := l.sessions.Load(subject)
	if err != nil {
		return nil, err
	}
	return &SessionCheck{
		Exists:          sess != nil,
		Session:         sess,
		HasRemovedTrack: len(l.tracks.LoadRemoved(subject)) > 0,
	}, nil
}

// ClearSession destroys the subject's session and kept records.
// Tracking lists survive: a cleared subject remembers its removals.
func (l *Local) ClearSession(ctx context.Context, subject string) (*ClearResult, error) {
	if err := l.limiter.Wait(ctx, subject); err != nil {
		return nil, err
	}

	if err := l.sessions.Clear(subject); err != nil {
		return nil, err
	}
	deleted, err := l.archive.ClearSubject(subject)
	if err != nil {
		return nil, err
	}
	return &ClearResult{FinalDeleted: deleted}, nil
}

// GetPreparationStats describes the subject before a fresh run
func (l *Local) GetPreparationStats(ctx context.Context, subject string) (*model.PreparationStats, error) {
	if err := l.limiter.Wait(ctx, subject); err != nil {
		return nil, err
	}
	stats := l.archive.PreparationStats(subject)
	return &stats, nil
}

// TrackRemoved sweeps the removed tree into the removed-track list
func (l *Local) TrackRemoved(ctx context.Context, subject string) ([]model.RecordID, error) {
	if err := l.limiter.Wait(ctx, subject); err != nil {
		return nil, err
	}

	var ids []model.RecordID
	entries, err := os.ReadDir(filepath.Join(l.removedDir, subject))
	if err == nil {
		for _, e := range entries {
			if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
				ids = append(ids, e.Name())
			}
		}
	}
	return l.tracks.MergeRemoved(subject, ids)
}

// ListSubjects returns the reviewable subjects (not part of the engine
// contract; used by the HTTP surface and CLI).
func (l *Local) ListSubjects() ([]model.SubjectInfo, error) {
	return l.archive.ListSubjects()
}
