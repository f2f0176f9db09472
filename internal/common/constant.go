// Package common contains shared constants and sentinel errors used across
// NoteHub components.
package common

// AuthorizationHeaderName carries the bearer session token on outbound
// HTTP requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the session token in the Authorization header.
const BearerPrefix = "Bearer "

// Metadata keys persisted by the client in its local database.
const (
	MetaSessionToken = "session_token"
	MetaIdentity     = "identity"
)
