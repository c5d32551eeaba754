// Package models defines the domain types for the athlete context service.
package models

// DocumentKind identifies one of the singleton versioned documents.
type DocumentKind string

// The four document kinds.
const (
	KindProfile  DocumentKind = "profile"
	KindGoals    DocumentKind = "goals"
	KindPolicies DocumentKind = "policies"
	KindState    DocumentKind = "state"
)

// Valid reports whether k is one of the known document kinds.
func (k DocumentKind) Valid() bool {
	switch k {
	case KindProfile, KindGoals, KindPolicies, KindState:
		return true
	}
	return false
}

// Social context values produced by the extractor.
const (
	SocialSolo    = "solo"
	SocialCouple  = "couple"
	SocialFriends = "friends"
	SocialClub    = "club"
	SocialUnknown = "unknown"
)

// PainEntry is one body-area pain signal found in a note.
type PainEntry struct {
	Area      string `json:"area"`
	Intensity int    `json:"intensity"`
	Type      string `json:"type,omitempty"`
}

// Extracted holds the signals derived from a note's raw text. Fields whose
// cue was not found are nil; SocialContext is always set (SocialUnknown when
// no cue matched).
type Extracted struct {
	RPE           *int        `json:"rpe,omitempty"`
	Stress        *int        `json:"stress,omitempty"`
	SleepQuality  *int        `json:"sleep_quality,omitempty"`
	SocialContext string      `json:"social_context"`
	Pain          []PainEntry `json:"pain,omitempty"`
	RawText       string      `json:"raw_text"`
}

// Note is one append-only entry in the note archive. All fields are
// immutable once the row is inserted; Extracted is derived exactly once at
// creation time.
type Note struct {
	ID         int64     `json:"id"`
	ActivityID string    `json:"activity_id"`
	NoteDate   string    `json:"note_date,omitempty"`
	RawText    string    `json:"raw_text"`
	Tags       []string  `json:"tags,omitempty"`
	Extracted  Extracted `json:"extracted"`
	CreatedAt  string    `json:"created_at"`
}

// NoteReceipt is returned by the add-note operation.
type NoteReceipt struct {
	NoteID     int64     `json:"note_id"`
	ActivityID string    `json:"activity_id"`
	Extracted  Extracted `json:"extracted"`
	CreatedAt  string    `json:"created_at"`
}
