// Package journal keeps a local, append-only record of vote attempts and
// their outcomes (applied, conflict, rolled back) so the CLI can show what
// happened to a vote after the fact.
//
// The SQLite implementation works over dbx.DBTX, so it can run inside a
// transaction started with dbx.WithTx.
package journal
