// Package store holds the durable per-subject state: review sessions,
// duplicate group lists, removed/saved tracking lists, and the record
// archive trees. Every document is a flat JSON file overwritten wholesale
// on save; callers merge before saving.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/quizforge/dupereview/internal/model"
)

// SessionStore persists review sessions, one JSON document per subject
type SessionStore struct {
	dir string
}

// NewSessionStore creates a session store rooted at dir
func NewSessionStore(dir string) *SessionStore {
	return &SessionStore{dir: dir}
}

func (s *SessionStore) path(subject string) string {
	return filepath.Join(s.dir, subject+"_session.json")
}

// Load reads the session for a subject. Returns (nil, nil) when no
// session exists.
func (s *SessionStore) Load(subject string) (*model.Session, error) {
	data, err := os.ReadFile(s.path(subject))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read session: %w", err)
	}

	var sess model.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if sess.Overrides == nil {
		sess.Overrides = make(map[model.RecordID]bool)
	}
	if sess.RemovalHistory == nil {
		sess.RemovalHistory = make(map[model.RecordID]model.RemovalInfo)
	}
	return &sess, nil
}

// Save overwrites the subject's session document and stamps the update
// time. Saves are immediate; the engine calls this after every mutation
// so an abrupt shutdown loses at most the in-flight edit.
func (s *SessionStore) Save(sess *model.Session) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	sess.UpdatedAt = time.Now().UTC()

	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.WriteFile(s.path(sess.Subject), data, 0644); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// Clear removes the stored session for the given subject only
func (s *SessionStore) Clear(subject string) error {
	err := os.Remove(s.path(subject))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Exists reports whether a session document exists for the subject
func (s *SessionStore) Exists(subject string) bool {
	_, err := os.Stat(s.path(subject))
	return err == nil
}
