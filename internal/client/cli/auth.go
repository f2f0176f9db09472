package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/notehub/internal/client/session"
	"github.com/dmitrijs2005/notehub/internal/common"
)

// getSimpleText and getSecret are indirections for tests.
var getSimpleText = GetSimpleText
var getSecret = GetSecret

// Login asks for an identity-provider token and signs in with it.
func (a *App) Login(ctx context.Context) error {
	if a.auth.Current().SignedIn() {
		printlnFn("Already signed in. Use logout first.")
		return nil
	}
	_, err := a.signIn(ctx, "Sign in to NoteHub")
	return err
}

// signIn runs the token dialog until sign-in succeeds or the user enters an
// empty token. It reports whether the user ended up signed in.
func (a *App) signIn(ctx context.Context, message string) (bool, error) {
	printlnFn(message)
	for {
		token, err := getSecret(a.reader, "Identity token (empty to cancel)", a.out)
		if err != nil {
			return false, err
		}
		if len(token) == 0 {
			return false, nil
		}

		_, err = a.auth.SignIn(ctx, token)
		switch {
		case err == nil:
			return true, nil
		case errors.Is(err, common.ErrAuthRejected):
			printlnFn(common.ErrAuthRejected.Error())
		default:
			return false, err
		}
	}
}

// awaitSignIn handles a gated command that was parked: it first tries to
// confirm a restored session, then runs the sign-in dialog. Dismissing the
// dialog discards the parked command.
func (a *App) awaitSignIn(ctx context.Context) error {
	message := a.takePrompt()

	if a.auth.Current().State == session.StateUnknown {
		if err := a.auth.Revalidate(ctx); err == nil && a.auth.Current().SignedIn() {
			return nil
		}
	}
	if message == "" {
		message = "Please sign in."
	}

	ok, err := a.signIn(ctx, message)
	if err != nil || !ok {
		if a.gate.Cancel() {
			printlnFn("Sign-in cancelled.")
		}
	}
	return err
}

func (a *App) Logout(ctx context.Context) error {
	if a.auth.Current().State == session.StateSignedOut {
		printlnFn("Not signed in.")
		return nil
	}
	return a.auth.SignOut(ctx)
}

func (a *App) WhoAmI(ctx context.Context) error {
	snap := a.auth.Current()
	switch snap.State {
	case session.StateSignedIn:
		printlnFn(fmt.Sprintf("%s (id %s, reputation %d)", snap.Identity.DisplayName, snap.Identity.ID, snap.Identity.Reputation))
	case session.StateUnknown:
		printlnFn("Session not confirmed yet.")
	default:
		printlnFn("Not signed in.")
	}
	return nil
}
