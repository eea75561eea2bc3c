package model

import "math"

// RecordID identifies a reviewable record by its filename (e.g. "142.json")
type RecordID = string

// PairScore is one pairwise similarity score inside a group
type PairScore struct {
	A     RecordID `json:"a"`
	B     RecordID `json:"b"`
	Score float64  `json:"score"`
}

// DuplicateGroup is a cluster of records flagged as mutually near-duplicate
// by the external similarity stage. Immutable once loaded.
type DuplicateGroup struct {
	ID            int         `json:"id"`
	Files         []RecordID  `json:"files"`
	MaxSimilarity float64     `json:"max_similarity"`
	Pairs         []PairScore `json:"pairs,omitempty"`
}

// Level returns the group's similarity level: the maximum pairwise
// similarity as a percentage rounded to one decimal place.
func (g DuplicateGroup) Level() float64 {
	return SimilarityLevel(g.MaxSimilarity)
}

// SimilarityLevel converts a raw similarity in [0,1] into the pagination
// key: a percentage rounded to one decimal (0.9987 -> 99.9).
func SimilarityLevel(maxSimilarity float64) float64 {
	return math.Round(maxSimilarity*1000) / 10
}

// GroupSet is the externally computed group list for one subject
type GroupSet struct {
	Groups            []DuplicateGroup `json:"groups"`
	NonDuplicateCount int              `json:"non_duplicate_count"`
	TotalFiles        int              `json:"total_files"`
}
