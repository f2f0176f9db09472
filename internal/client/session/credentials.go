package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/notehub/internal/client/models"
	"github.com/dmitrijs2005/notehub/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/notehub/internal/common"
	"github.com/dmitrijs2005/notehub/internal/dbx"
)

// CredentialStore persists the bearer token and the last confirmed identity
// between runs.
type CredentialStore interface {
	LoadCredential(ctx context.Context) (token string, identity *models.Identity, err error)
	SaveCredential(ctx context.Context, token string, identity models.Identity) error
	ClearCredential(ctx context.Context) error
}

// MetadataCredentials keeps the credential in the client metadata table.
type MetadataCredentials struct {
	db *sql.DB
}

func NewMetadataCredentials(db *sql.DB) *MetadataCredentials {
	return &MetadataCredentials{db: db}
}

func (m *MetadataCredentials) LoadCredential(ctx context.Context) (string, *models.Identity, error) {
	repo := metadata.NewSQLiteRepository(m.db)

	token, err := repo.Get(ctx, common.MetaSessionToken)
	if err != nil {
		return "", nil, fmt.Errorf("load session token: %w", err)
	}
	if len(token) == 0 {
		return "", nil, nil
	}

	raw, err := repo.Get(ctx, common.MetaIdentity)
	if err != nil {
		return "", nil, fmt.Errorf("load identity: %w", err)
	}
	if len(raw) == 0 {
		return string(token), nil, nil
	}

	var id models.Identity
	if err := json.Unmarshal(raw, &id); err != nil {
		// a broken identity record does not invalidate the token
		return string(token), nil, nil
	}
	return string(token), &id, nil
}

func (m *MetadataCredentials) SaveCredential(ctx context.Context, token string, identity models.Identity) error {
	raw, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("encode identity: %w", err)
	}

	return dbx.WithTx(ctx, m.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, common.MetaSessionToken, []byte(token)); err != nil {
			return err
		}
		return repo.Set(ctx, common.MetaIdentity, raw)
	})
}

func (m *MetadataCredentials) ClearCredential(ctx context.Context) error {
	return dbx.WithTx(ctx, m.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Delete(ctx, common.MetaSessionToken); err != nil {
			return err
		}
		return repo.Delete(ctx, common.MetaIdentity)
	})
}
