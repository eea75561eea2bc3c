// Package backend defines the operations the reconciliation engine
// consumes from the backing store, and a local filesystem implementation
// of them. The engine only sees the Backend interface; anything that can
// answer these calls (local trees, a remote API) can sit behind it.
package backend

import (
	"context"

	"github.com/quizforge/dupereview/internal/model"
)

// GroupsResult is the full group listing for a subject
type GroupsResult struct {
	Groups            []model.DuplicateGroup `json:"groups"`
	NonDuplicateCount int                    `json:"non_duplicate_count"`
	TotalFiles        int                    `json:"total_files"`
	CompletedGroups   []int                  `json:"completed_groups"`
	FilesSaved        bool                   `json:"files_saved"`
}

// SessionCheck reports whether resumable state exists for a subject
type SessionCheck struct {
	Exists          bool           `json:"exists"`
	Session         *model.Session `json:"session,omitempty"`
	HasRemovedTrack bool           `json:"has_removed_track"`
}

// ClearResult reports what a session reset deleted
type ClearResult struct {
	FinalDeleted int `json:"final_deleted"`
}

// Backend is the contract consumed by the engine. All calls take a
// context; the local implementation paces them with a per-subject
// rate limiter.
type Backend interface {
	// GetGroups returns the externally computed duplicate groups
	GetGroups(ctx context.Context, subject string) (*GroupsResult, error)

	// BatchFileStatuses resolves status, heuristic metadata, and removal
	// history for many records in one call. Content is not loaded.
	BatchFileStatuses(ctx context.Context, subject string, ids []model.RecordID) (map[model.RecordID]*model.RecordSnapshot, error)

	// BatchFileContent resolves the same snapshots with record content
	// (and the kept record's content, when removal history names one).
	BatchFileContent(ctx context.Context, subject string, ids []model.RecordID) (map[model.RecordID]*model.RecordSnapshot, error)

	// SubmitGroup commits the keep/discard decisions for one group.
	// Record-level idempotent: resubmitting the same kept set produces
	// no further state change.
	SubmitGroup(ctx context.Context, subject string, groupID int, keptIDs []model.RecordID) (*model.SubmitResult, error)

	// GetSummary returns the final per-subject statistics
	GetSummary(ctx context.Context, subject string) (*model.Summary, error)

	// CheckSession reports resumable state for a subject
	CheckSession(ctx context.Context, subject string) (*SessionCheck, error)

	// ClearSession destroys the subject's session and kept records
	ClearSession(ctx context.Context, subject string) (*ClearResult, error)

	// GetPreparationStats describes the subject before a fresh run
	GetPreparationStats(ctx context.Context, subject string) (*model.PreparationStats, error)

	// TrackRemoved merges the current removed set into the durable
	// removed-track list. Best-effort bookkeeping: callers log failures
	// and move on.
	TrackRemoved(ctx context.Context, subject string) ([]model.RecordID, error)
}
