package session

import (
	"context"
	"database/sql"
	"testing"

	"github.com/dmitrijs2005/notehub/internal/client/models"
	"github.com/dmitrijs2005/notehub/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE metadata (key TEXT PRIMARY KEY, value BLOB NOT NULL);`)
	require.NoError(t, err)
	return db
}

func TestMetadataCredentials_RoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewMetadataCredentials(setupDB(t))

	token, id, err := c.LoadCredential(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
	assert.Nil(t, id)

	require.NoError(t, c.SaveCredential(ctx, "tok", alice))

	token, id, err = c.LoadCredential(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok", token)
	require.NotNil(t, id)
	assert.Equal(t, alice, *id)

	require.NoError(t, c.ClearCredential(ctx))
	token, id, err = c.LoadCredential(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
	assert.Nil(t, id)
}

func TestMetadataCredentials_BrokenIdentityKeepsToken(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	_, err := db.Exec(`INSERT INTO metadata (key, value) VALUES (?, ?), (?, ?)`,
		common.MetaSessionToken, []byte("tok"), common.MetaIdentity, []byte("{not json"))
	require.NoError(t, err)

	token, id, err := NewMetadataCredentials(db).LoadCredential(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok", token)
	assert.Nil(t, id)
}

func TestStore_SurvivesRestart(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)

	first := NewStore(NewMetadataCredentials(db), 0, nil)
	first.SetSignedIn(ctx, alice, "tok")

	second := NewStore(NewMetadataCredentials(db), 0, nil)
	require.NoError(t, second.Load(ctx))

	snap := second.Snapshot()
	assert.Equal(t, StateUnknown, snap.State)
	require.NotNil(t, snap.Identity)
	assert.Equal(t, models.Identity{ID: "u1", DisplayName: "Alice", Reputation: 3}, *snap.Identity)
}
