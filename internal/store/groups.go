package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/quizforge/dupereview/internal/model"
)

// GroupStore persists the externally computed duplicate groups,
// separately from the session document so session loads stay small.
type GroupStore struct {
	dir string
}

// NewGroupStore creates a group store rooted at dir
func NewGroupStore(dir string) *GroupStore {
	return &GroupStore{dir: dir}
}

type groupsDoc struct {
	Groups        []model.DuplicateGroup `json:"groups_pairwise"`
	PairwiseCount int                    `json:"pairwise_count"`
}

func (g *GroupStore) path(subject string) string {
	return filepath.Join(g.dir, subject+"_groups.json")
}

// Save writes the group list for a subject
func (g *GroupStore) Save(subject string, groups []model.DuplicateGroup) error {
	if err := os.MkdirAll(g.dir, 0755); err != nil {
		return fmt.Errorf("create groups dir: %w", err)
	}

	doc := groupsDoc{Groups: groups, PairwiseCount: len(groups)}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode groups: %w", err)
	}
	if err := os.WriteFile(g.path(subject), data, 0644); err != nil {
		return fmt.Errorf("write groups: %w", err)
	}
	return nil
}

// Load reads the group list for a subject. Returns (nil, nil) when no
// groups document exists.
func (g *GroupStore) Load(subject string) ([]model.DuplicateGroup, error) {
	data, err := os.ReadFile(g.path(subject))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read groups: %w", err)
	}

	var doc groupsDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode groups: %w", err)
	}
	return doc.Groups, nil
}

// Exists reports whether a groups document exists for the subject
func (g *GroupStore) Exists(subject string) bool {
	_, err := os.Stat(g.path(subject))
	return err == nil
}

// Clear removes the groups document for a subject
func (g *GroupStore) Clear(subject string) error {
	err := os.Remove(g.path(subject))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clear groups: %w", err)
	}
	return nil
}
