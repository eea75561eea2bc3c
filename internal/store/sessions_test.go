package store

import (
	"testing"

	"github.com/quizforge/dupereview/internal/model"
)

func TestSessionStore_RoundTrip(t *testing.T) {
	s := NewSessionStore(t.TempDir())

	sess := model.NewSession("anatomy", 100)
	sess.Range = model.ReviewRange{Start: 100.0, End: 99.5}
	sess.Overrides["12.json"] = true
	sess.MarkCompleted(3)

	if err := s.Save(sess); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if sess.UpdatedAt.IsZero() {
		t.Errorf("expected save to stamp update time")
	}

	loaded, err := s.Load("anatomy")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded == nil {
		t.Fatal("expected session, got nil")
	}
	if loaded.Range.Start != 100.0 || loaded.Range.End != 99.5 {
		t.Errorf("range not preserved: %+v", loaded.Range)
	}
	if !loaded.Overrides["12.json"] {
		t.Errorf("override not preserved")
	}
	if !loaded.IsCompleted(3) {
		t.Errorf("completed group not preserved")
	}
}

func TestSessionStore_LoadAbsent(t *testing.T) {
	s := NewSessionStore(t.TempDir())

	sess, err := s.Load("missing")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if sess != nil {
		t.Errorf("expected nil session for absent subject")
	}
}

func TestSessionStore_ClearIsSubjectScoped(t *testing.T) {
	s := NewSessionStore(t.TempDir())

	if err := s.Save(model.NewSession("anatomy", 100)); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := s.Save(model.NewSession("physiology", 100)); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if err := s.Clear("anatomy"); err != nil {
		t.Fatalf("clear failed: %v", err)
	}

	if s.Exists("anatomy") {
		t.Errorf("anatomy session should be gone")
	}
	if !s.Exists("physiology") {
		t.Errorf("physiology session must survive anatomy's clear")
	}

	// Clearing an absent session is not an error
	if err := s.Clear("anatomy"); err != nil {
		t.Errorf("repeat clear failed: %v", err)
	}
}
