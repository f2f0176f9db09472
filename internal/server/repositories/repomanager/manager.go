// Package repomanager groups the dev server repositories and serializes
// multi-repository updates.
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/notehub/internal/server/repositories/notes"
	"github.com/dmitrijs2005/notehub/internal/server/repositories/users"
)

type RepositoryManager interface {
	Users() users.Repository
	Notes() notes.Repository
	// WithTx runs fn with no other WithTx call in progress.
	WithTx(ctx context.Context, fn func(ctx context.Context, u users.Repository, n notes.Repository) error) error
}
