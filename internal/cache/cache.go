// Package cache holds the unified record snapshot cache: one entry per
// record id carrying status, heuristic metadata, and content together.
// Keeping a single cache (instead of separate status and content caches)
// removes duplicate-fetch races between the two.
package cache

import (
	"time"

	"github.com/quizforge/dupereview/internal/model"
)

// Snapshots is the read/write contract for cached record snapshots
type Snapshots interface {
	Get(subject string, id model.RecordID) (*model.RecordSnapshot, bool)
	Set(subject string, snap *model.RecordSnapshot)
	SetAll(subject string, snaps map[model.RecordID]*model.RecordSnapshot)
	Delete(subject string, id model.RecordID)
	Clear(subject string)
}

// Key builds the cache key for a record within a subject
func Key(subject string, id model.RecordID) string {
	return subject + "/" + id
}

// DefaultTTL is used when the configured TTL is zero
const DefaultTTL = 30 * time.Minute
