package model

import "strings"

// Status is the authoritative disposition of a record in the backing store
type Status string

const (
	StatusSaved   Status = "saved"
	StatusRemoved Status = "removed"
	StatusUnknown Status = "unknown"
)

// WorstOrdinal is the tie-break ordinal assigned to records whose
// filename carries no parseable number. Such records lose every
// auto-selection tie.
const WorstOrdinal = 999999

// Record is the reviewable content of a multiple-choice question
type Record struct {
	Statement       string            `json:"statement"`
	Options         map[string]string `json:"options,omitempty"`
	CorrectOption   string            `json:"correct_option,omitempty"`
	YearTag         *int              `json:"year,omitempty"`
	PriorRemovalRef RecordID          `json:"prior_removal_ref,omitempty"`
}

// HasYear reports whether the record carries a year tag
func (r *Record) HasYear() bool {
	return r != nil && r.YearTag != nil
}

// RemovalInfo records why a record was discarded and what was kept instead
type RemovalInfo struct {
	GroupID     int        `json:"group_id"`
	GroupedWith []RecordID `json:"grouped_with"`
	KeptFiles   []RecordID `json:"kept_files"`
	RemovedIn   int        `json:"removed_in_group"`
}

// RecordSnapshot is the unified cached view of one record: authoritative
// status, heuristic metadata, content, and removal history in a single
// entry keyed by record id.
type RecordSnapshot struct {
	ID          RecordID     `json:"id"`
	Status      Status       `json:"status"`
	HasYear     bool         `json:"has_year"`
	Ordinal     int          `json:"ordinal"`
	Content     *Record      `json:"content,omitempty"`
	RemovalInfo *RemovalInfo `json:"removal_info,omitempty"`
	KeptRecord  *Record      `json:"kept_record,omitempty"`
}

// Ordinal extracts the numeric part of a record filename ("14.json" -> 14).
// Filenames with no digits get WorstOrdinal.
func Ordinal(id RecordID) int {
	name := strings.TrimSuffix(id, ".json")
	n := 0
	found := false
	for _, ch := range name {
		if ch >= '0' && ch <= '9' {
			n = n*10 + int(ch-'0')
			found = true
			if n >= WorstOrdinal {
				return WorstOrdinal
			}
		}
	}
	if !found {
		return WorstOrdinal
	}
	return n
}
