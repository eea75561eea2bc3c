package model

// Summary is the final per-subject statistics view
type Summary struct {
	TotalProcessed int `json:"total_processed"`
	NonDuplicates  int `json:"non_duplicates"`
	FilesInGroups  int `json:"files_in_groups"`
	FinalSaved     int `json:"final_saved"`
	FinalRemoved   int `json:"final_removed"`
	TotalFiles     int `json:"total_files"`
}

// PreparationStats describes the subject before a fresh processing run
type PreparationStats struct {
	TotalFiles     int `json:"total_files"`
	FinalizedFiles int `json:"finalized_files"`
	RemovedFiles   int `json:"removed_files"`
	FilesToProcess int `json:"files_to_process"`
}

// SubmitResult carries the per-group deltas returned by a submission.
// Counts are best-effort telemetry, not a correctness gate.
type SubmitResult struct {
	SavedCount          int `json:"saved_count"`
	RemovedCount        int `json:"removed_count"`
	MovedToRemoved      int `json:"moved_to_removed"`
	UncheckedFromSaved  int `json:"unchecked_from_saved"`
	NewlyAddedToSaved   int `json:"newly_added_to_saved"`
	NewlyAddedToRemoved int `json:"newly_added_to_removed"`
}

// Add accumulates another group's deltas
func (r *SubmitResult) Add(other SubmitResult) {
	r.SavedCount += other.SavedCount
	r.RemovedCount += other.RemovedCount
	r.MovedToRemoved += other.MovedToRemoved
	r.UncheckedFromSaved += other.UncheckedFromSaved
	r.NewlyAddedToSaved += other.NewlyAddedToSaved
	r.NewlyAddedToRemoved += other.NewlyAddedToRemoved
}

// SubjectInfo describes one reviewable subject directory
type SubjectInfo struct {
	Name      string `json:"name"`
	Enabled   bool   `json:"enabled"`
	FileCount int    `json:"file_count"`
}
