// Package client talks to the NoteHub REST API and bootstraps the local
// client database.
//
// # Overview
//
//  1. Client is the transport-agnostic contract used by the services:
//     session exchange and revocation, whoami, votes and note reads.
//  2. HTTPClient implements it over resty. It attaches the bearer token from
//     a TokenSource, retries recoverable failures of idempotent calls with
//     exponential backoff and reports rejected tokens through OnUnauthorized.
//  3. InitDatabase and RunMigrations open the SQLite database and apply the
//     embedded goose migrations.
//
// # Error Handling
//
// Every failed call returns an *HTTPError that unwraps to one of
// ErrUnauthorized, ErrNotFound, ErrUnavailable or ErrRequestFailed, so
// callers can use errors.Is. HTTPError.Recoverable tells whether retrying
// might help.
package client
