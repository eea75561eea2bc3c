package model

import "time"

// ReviewRange is a contiguous band of similarity levels shown together.
// Start >= End, both percentages rounded to one decimal.
type ReviewRange struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Contains reports whether a similarity level falls inside the range,
// inclusive on both ends.
func (r ReviewRange) Contains(level float64) bool {
	return level <= r.Start && level >= r.End
}

// Session is the durable per-subject review state. It is overwritten
// wholesale on every save; callers merge before saving.
type Session struct {
	Subject             string                   `json:"subject"`
	Range               ReviewRange              `json:"range"`
	TargetGroupsPerPage int                      `json:"target_groups_per_page"`
	ManualRange         bool                     `json:"is_manual_range"`
	Overrides           map[RecordID]bool        `json:"overrides,omitempty"`
	CompletedGroups     []int                    `json:"completed_groups"`
	RangeHistory        []ReviewRange            `json:"range_history,omitempty"`
	RemovalHistory      map[RecordID]RemovalInfo `json:"removal_history,omitempty"`

	TotalFiles        int  `json:"total_files"`
	NonDuplicateCount int  `json:"non_duplicate_count"`
	FilesInGroups     int  `json:"files_in_groups"`
	FilesSaved        bool `json:"files_saved"`

	UpdatedAt time.Time `json:"updated_at"`
}

// NewSession creates an empty session for a subject
func NewSession(subject string, targetGroupsPerPage int) *Session {
	return &Session{
		Subject:             subject,
		TargetGroupsPerPage: targetGroupsPerPage,
		Overrides:           make(map[RecordID]bool),
		CompletedGroups:     []int{},
		RemovalHistory:      make(map[RecordID]RemovalInfo),
	}
}

// IsCompleted reports whether a group has already been submitted
func (s *Session) IsCompleted(groupID int) bool {
	for _, id := range s.CompletedGroups {
		if id == groupID {
			return true
		}
	}
	return false
}

// MarkCompleted records a group submission. Idempotent.
func (s *Session) MarkCompleted(groupID int) {
	if !s.IsCompleted(groupID) {
		s.CompletedGroups = append(s.CompletedGroups, groupID)
	}
}

// PushRange appends the current range to the navigation history
func (s *Session) PushRange(r ReviewRange) {
	s.RangeHistory = append(s.RangeHistory, r)
}

// PopRange removes and returns the most recent range from the history
func (s *Session) PopRange() (ReviewRange, bool) {
	if len(s.RangeHistory) == 0 {
		return ReviewRange{}, false
	}
	last := s.RangeHistory[len(s.RangeHistory)-1]
	s.RangeHistory = s.RangeHistory[:len(s.RangeHistory)-1]
	return last, true
}
