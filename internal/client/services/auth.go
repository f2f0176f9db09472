// Package services contains the application services of the NoteHub terminal
// client. AuthService manages the session lifecycle; FeedService lists notes
// and routes votes and downloads through the sign-in gate.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/notehub/internal/client/client"
	"github.com/dmitrijs2005/notehub/internal/client/models"
	"github.com/dmitrijs2005/notehub/internal/client/session"
	"github.com/dmitrijs2005/notehub/internal/common"
	"github.com/dmitrijs2005/notehub/internal/logging"
)

// revokeTimeout bounds the best-effort server-side revocation on sign-out.
const revokeTimeout = 3 * time.Second

var ErrEmptyToken = errors.New("identity token is empty")

// AuthService defines session operations for the CLI.
//
// Contract:
//   - SignIn: exchange an identity-provider token for a session.
//   - SignOut: revoke the session on the server (best effort) and forget it.
//   - Restore: pick up a session persisted by a previous run.
//   - Revalidate: confirm a restored session with the server.
//   - Current: the session as the UI should render it.
type AuthService interface {
	SignIn(ctx context.Context, idpToken []byte) (*models.Identity, error)
	SignOut(ctx context.Context) error
	Restore(ctx context.Context) error
	Revalidate(ctx context.Context) error
	Current() session.Snapshot
	Ping(ctx context.Context) error
}

type authService struct {
	client client.Client
	store  *session.Store
	log    logging.Logger
}

func NewAuthService(c client.Client, store *session.Store, log logging.Logger) AuthService {
	if log == nil {
		log = logging.Nop{}
	}
	return &authService{client: c, store: store, log: log}
}

// SignIn wipes idpToken before returning. A token refused by the server
// yields common.ErrAuthRejected and leaves the session unchanged.
func (a *authService) SignIn(ctx context.Context, idpToken []byte) (*models.Identity, error) {
	defer common.WipeByteArray(idpToken)

	token := strings.TrimSpace(string(idpToken))
	if token == "" {
		return nil, ErrEmptyToken
	}

	identity, sessionToken, err := a.client.CreateSession(ctx, token)
	if err != nil {
		var herr *client.HTTPError
		if errors.As(err, &herr) && herr.Rejected() {
			return nil, fmt.Errorf("%w: %w", common.ErrAuthRejected, err)
		}
		return nil, fmt.Errorf("sign-in error: %w", err)
	}

	a.store.SetSignedIn(ctx, *identity, sessionToken)
	a.log.Info(ctx, "signed in", "user_id", identity.ID)
	return identity, nil
}

func (a *authService) SignOut(ctx context.Context) error {
	if _, ok := a.store.Token(); ok {
		rctx, cancel := context.WithTimeout(ctx, revokeTimeout)
		if err := a.client.RevokeSession(rctx); err != nil {
			a.log.Warn(ctx, "failed to revoke session on server", "error", err)
		}
		cancel()
	}
	a.store.SignOut(ctx)
	return nil
}

func (a *authService) Restore(ctx context.Context) error {
	return a.store.Load(ctx)
}

func (a *authService) Revalidate(ctx context.Context) error {
	return a.store.Revalidate(ctx, a.client)
}

func (a *authService) Current() session.Snapshot {
	return a.store.Snapshot()
}

func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}
