// Package session holds the signed-in identity of the terminal client.
//
// A Store is in one of three states. SignedOut and SignedIn are definite;
// Unknown means a credential was found on disk at startup and has not been
// confirmed by the server yet. Unknown is never reported as SignedOut, so
// code that gates on authentication defers instead of assuming a
// signed-out user.
//
// Every transition is delivered to subscribers synchronously and in a single
// order. Transitions requested from inside a listener are queued and
// delivered after the current round.
package session
