package users

import (
	"context"

	"github.com/dmitrijs2005/notehub/internal/server/models"
)

type Repository interface {
	// Upsert returns the user with the given provider subject, creating it
	// or refreshing its display name.
	Upsert(ctx context.Context, subject, displayName string) (*models.User, error)
	Get(ctx context.Context, id string) (*models.User, error)
	AdjustReputation(ctx context.Context, id string, delta int64) error
}
