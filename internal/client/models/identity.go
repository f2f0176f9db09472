// Package models defines client-side data models used by the NoteHub CLI.
package models

// Identity is the signed-in user as reported by the session endpoint.
type Identity struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Reputation  int64  `json:"reputation"`
}

// Valid reports whether the identity carries an ID. Records without one are
// ignored by the session store.
func (i Identity) Valid() bool {
	return i.ID != ""
}
