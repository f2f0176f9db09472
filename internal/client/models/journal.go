package models

import "time"

// Vote outcomes recorded in the local journal.
const (
	OutcomeApplied    = "applied"
	OutcomeConflict   = "conflict"
	OutcomeRolledBack = "rolled_back"
)

// JournalEntry is one vote attempt as remembered by the client.
type JournalEntry struct {
	ID        int64
	NoteID    string
	Action    VoteAction
	Outcome   string
	Detail    string
	CreatedAt time.Time
}
