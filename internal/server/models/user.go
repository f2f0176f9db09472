// Package models holds the dev server's stored records.
package models

import "time"

// User is a person known through an identity provider. Subject is the
// provider's stable ID; ID is ours.
type User struct {
	ID          string
	Subject     string
	DisplayName string
	Reputation  int64
	CreatedAt   time.Time
}
