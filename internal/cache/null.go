package cache

import "github.com/quizforge/dupereview/internal/model"

// NullCache implements Snapshots without storing anything. Used when
// caching is disabled: every read misses and callers fall back to the
// backend.
type NullCache struct{}

// NewNullCache creates a cache that drops everything written to it
func NewNullCache() *NullCache {
	return &NullCache{}
}

func (*NullCache) Get(subject string, id model.RecordID) (*model.RecordSnapshot, bool) {
	return nil, false
}

func (*NullCache) Set(subject string, snap *model.RecordSnapshot) {}

func (*NullCache) SetAll(subject string, snaps map[model.RecordID]*model.RecordSnapshot) {}

func (*NullCache) Delete(subject string, id model.RecordID) {}

func (*NullCache) Clear(subject string) {}
