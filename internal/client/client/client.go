package client

import (
	"context"

	"github.com/dmitrijs2005/notehub/internal/client/models"
)

// Client is the NoteHub API as used by the terminal client.
type Client interface {
	// CreateSession exchanges an identity-provider token for a session.
	CreateSession(ctx context.Context, idpToken string) (*models.Identity, string, error)
	// WhoAmI returns the identity behind the current bearer token.
	WhoAmI(ctx context.Context) (*models.Identity, error)
	RevokeSession(ctx context.Context) error
	// Vote sends action for noteID. Counts are nil when the server did not
	// report them.
	Vote(ctx context.Context, noteID string, action models.VoteAction) (*models.VoteCounts, error)
	RecentNotes(ctx context.Context, num int) ([]models.Note, error)
	SearchNotes(ctx context.Context, query string) ([]models.Note, error)
	GetNote(ctx context.Context, id string) (*models.Note, error)
	// UploadNote submits a new note as the signed-in user.
	UploadNote(ctx context.Context, draft models.NoteDraft) (*models.Note, error)
	Ping(ctx context.Context) error
}

// TokenSource supplies the bearer credential. ok is false when there is none.
type TokenSource interface {
	Token() (token string, ok bool)
}
