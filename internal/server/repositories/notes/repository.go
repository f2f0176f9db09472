// Package notes stores notes and the per-user ballots cast on them.
package notes

import (
	"context"

	"github.com/dmitrijs2005/notehub/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, n *models.Note) (*models.Note, error)
	Get(ctx context.Context, id string) (*models.Note, error)
	// Recent returns up to limit notes, newest first.
	Recent(ctx context.Context, limit int) ([]models.Note, error)
	// Search matches query case-insensitively against course, description,
	// professors and tags.
	Search(ctx context.Context, query string) ([]models.Note, error)
	// Ballots returns userID's ballots on the given notes. Notes without a
	// ballot are absent from the map.
	Ballots(ctx context.Context, userID string, noteIDs []string) (map[string]models.Ballot, error)
	// SetBallot replaces userID's ballot on noteID, keeps the note's tallies
	// in step and returns the previous ballot with the updated note.
	SetBallot(ctx context.Context, userID, noteID string, b models.Ballot) (models.Ballot, *models.Note, error)
}
