package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/notehub/internal/common"
	"github.com/dmitrijs2005/notehub/internal/server/auth"
	"github.com/dmitrijs2005/notehub/internal/server/models"
	"github.com/dmitrijs2005/notehub/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	repos *repomanager.InMemoryRepositoryManager
	users *UserService
	notes *NoteService
	owner *models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	repos := repomanager.NewInMemoryRepositoryManager()
	fx := &fixture{
		repos: repos,
		users: NewUserService(repos, auth.NewSessions("k", time.Hour), auth.DevVerifier{}),
		notes: NewNoteService(repos),
	}

	n, err := Seed(ctx, repos, []SeedNote{
		{ID: "n1", CourseCode: "MATH201", CourseName: "Linear Algebra", CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "n2", CourseCode: "CS101", CourseName: "Programming", CreatedAt: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)},
	})
	require.NoError(t, err)
	require.Equal(t, 2, n)

	fx.owner, err = repos.Users().Upsert(ctx, "seed", "")
	require.NoError(t, err)
	return fx
}

func (fx *fixture) reputation(t *testing.T) int64 {
	t.Helper()
	u, err := fx.repos.Users().Get(context.Background(), fx.owner.ID)
	require.NoError(t, err)
	return u.Reputation
}

func TestSignInAndAuthenticate(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	u, tok, err := fx.users.SignIn(ctx, "dev:alice:Alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.DisplayName)

	again, _, err := fx.users.SignIn(ctx, "dev:alice:Alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, again.ID, "same subject maps to the same user")

	got, claims, err := fx.users.Authenticate(ctx, tok)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	fx.users.SignOut(claims)
	_, _, err = fx.users.Authenticate(ctx, tok)
	require.ErrorIs(t, err, ErrUnauthorized)
	require.ErrorIs(t, err, common.ErrTokenRevoked)
}

func TestSignIn_RejectsBadToken(t *testing.T) {
	fx := newFixture(t)
	_, _, err := fx.users.SignIn(context.Background(), "hello")
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthenticate_Garbage(t *testing.T) {
	fx := newFixture(t)
	_, _, err := fx.users.Authenticate(context.Background(), "garbage")
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestVote_BallotsAndReputation(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	n, err := fx.notes.Vote(ctx, "u1", "n1", models.BallotUp)
	require.NoError(t, err)
	assert.Equal(t, 1, n.Upvotes)
	assert.Equal(t, int64(1), fx.reputation(t))

	n, err = fx.notes.Vote(ctx, "u1", "n1", models.BallotUp)
	require.NoError(t, err)
	assert.Equal(t, 1, n.Upvotes, "repeated ballot is idempotent")
	assert.Equal(t, int64(1), fx.reputation(t))

	n, err = fx.notes.Vote(ctx, "u1", "n1", models.BallotDown)
	require.NoError(t, err)
	assert.Equal(t, 0, n.Upvotes)
	assert.Equal(t, 1, n.Downvotes)
	assert.Equal(t, int64(-1), fx.reputation(t))

	_, err = fx.notes.Vote(ctx, "u1", "n1", models.BallotNone)
	require.NoError(t, err)
	n, err = fx.notes.Vote(ctx, "u1", "n1", models.BallotNone)
	require.NoError(t, err)
	assert.Equal(t, 0, n.Downvotes)
	assert.Equal(t, int64(0), fx.reputation(t))
}

func TestVote_Errors(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	_, err := fx.notes.Vote(ctx, "u1", "missing", models.BallotUp)
	require.ErrorIs(t, err, ErrNoteNotFound)

	_, err = fx.notes.Vote(ctx, "u1", "n1", models.Ballot("sideways"))
	require.ErrorIs(t, err, ErrInvalidRequest)
}

func TestListings_AttachViewerBallot(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	_, err := fx.notes.Vote(ctx, "u1", "n2", models.BallotDown)
	require.NoError(t, err)

	views, err := fx.notes.Recent(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "n2", views[0].ID)
	assert.Equal(t, models.BallotDown, views[0].UserVote)
	assert.Equal(t, models.BallotNone, views[1].UserVote)
	assert.Equal(t, fx.owner.ID, views[0].Uploader.ID)

	anon, err := fx.notes.Recent(ctx, "", 1)
	require.NoError(t, err)
	require.Len(t, anon, 1)
	assert.Equal(t, models.BallotNone, anon[0].UserVote)

	one, err := fx.notes.Get(ctx, "u1", "n2")
	require.NoError(t, err)
	assert.Equal(t, models.BallotDown, one.UserVote)

	_, err = fx.notes.Get(ctx, "u1", "zzz")
	require.ErrorIs(t, err, ErrNoteNotFound)
}

func TestSearch(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	views, err := fx.notes.Search(ctx, "", "algebra")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "n1", views[0].ID)

	_, err = fx.notes.Search(ctx, "", "")
	require.ErrorIs(t, err, ErrInvalidRequest)
}

func TestCreate_Validation(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	_, err := fx.notes.Create(ctx, models.Note{UploaderID: fx.owner.ID})
	require.ErrorIs(t, err, ErrInvalidRequest)

	_, err = fx.notes.Create(ctx, models.Note{CourseCode: "X", UploaderID: "ghost"})
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestUpload(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	alice, _, err := fx.users.SignIn(ctx, "dev:alice:Alice")
	require.NoError(t, err)

	view, err := fx.notes.Upload(ctx, alice.ID, models.Note{
		ID:          "forged",
		CourseCode:  "PHY101",
		CourseName:  "Mechanics",
		FileURL:     "https://files.example/phy",
		Upvotes:     40,
		Description: "week 1-4",
	})
	require.NoError(t, err)
	assert.NotEqual(t, "forged", view.ID)
	assert.Equal(t, alice.ID, view.UploaderID)
	assert.Equal(t, "Alice", view.Uploader.DisplayName)
	assert.Zero(t, view.Upvotes)
	assert.False(t, view.CreatedAt.IsZero())
	assert.Equal(t, models.BallotNone, view.UserVote)

	views, err := fx.notes.Recent(ctx, "", 1)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, view.ID, views[0].ID)

	_, err = fx.notes.Upload(ctx, alice.ID, models.Note{CourseCode: "PHY101"})
	require.ErrorIs(t, err, ErrInvalidRequest)

	_, err = fx.notes.Upload(ctx, alice.ID, models.Note{FileURL: "https://files.example/x"})
	require.ErrorIs(t, err, ErrInvalidRequest)
}

func TestLoadSeedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"course_code": "BIO110", "uploader": {"subject": "ann", "display_name": "Ann"}},
		{"course_code": "BIO120", "uploader": {"subject": "ann", "display_name": "Ann"}}
	]`), 0o600))

	repos := repomanager.NewInMemoryRepositoryManager()
	n, err := LoadSeedFile(context.Background(), repos, path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	views, err := NewNoteService(repos).Recent(context.Background(), "", 0)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "Ann", views[0].Uploader.DisplayName)
	assert.Equal(t, views[0].UploaderID, views[1].UploaderID)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{`), 0o600))
	_, err = LoadSeedFile(context.Background(), repos, bad)
	require.Error(t, err)
}
