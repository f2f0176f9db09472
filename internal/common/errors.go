// Package common defines shared constants and sentinel errors used across
// client and server layers of NoteHub. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// ErrAuthRequired is a control-flow signal: a gated action was deferred
	// until the user signs in.
	ErrAuthRequired = errors.New("authentication required")

	// ErrAuthRejected means the identity-provider token was refused by the
	// session endpoint. The session stays signed out.
	ErrAuthRejected = errors.New("sign-in failed, try again")

	// ErrVoteConflict is returned when a vote is attempted while another vote
	// on the same note is still in flight. No request is sent.
	ErrVoteConflict = errors.New("vote already in flight for this note")

	// ErrVoteTransportFailure wraps a network or server failure during a vote.
	// Local state has been rolled back when it is returned.
	ErrVoteTransportFailure = errors.New("vote could not be recorded")

	// ErrSessionRevalidationTimeout means the whoami call did not complete in
	// time. The session keeps its previous state.
	ErrSessionRevalidationTimeout = errors.New("session revalidation timed out")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
	ErrTokenRevoked = errors.New("token revoked")
)

// WipeByteArray overwrites b with zeros. Used for identity-provider tokens
// read from the terminal once they have been exchanged.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
