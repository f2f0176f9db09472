package journal

import (
	"context"

	"github.com/dmitrijs2005/notehub/internal/client/models"
)

type Repository interface {
	// Append stores e and returns its assigned ID.
	Append(ctx context.Context, e models.JournalEntry) (int64, error)

	// Recent returns up to limit entries, newest first. An empty noteID
	// returns entries for all notes.
	Recent(ctx context.Context, noteID string, limit int) ([]models.JournalEntry, error)
}
