// Package services contains dev server business logic. UserService turns
// identity-provider tokens into session tokens and resolves sessions back
// to users.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/notehub/internal/common"
	"github.com/dmitrijs2005/notehub/internal/server/auth"
	"github.com/dmitrijs2005/notehub/internal/server/models"
	"github.com/dmitrijs2005/notehub/internal/server/repositories/repomanager"
)

// ErrUnauthorized covers every sign-in or session failure the caller can
// fix by signing in again.
var ErrUnauthorized = errors.New("unauthorized")

type UserService struct {
	repos    repomanager.RepositoryManager
	sessions *auth.Sessions
	verifier auth.Verifier
}

func NewUserService(m repomanager.RepositoryManager, sessions *auth.Sessions, v auth.Verifier) *UserService {
	return &UserService{repos: m, sessions: sessions, verifier: v}
}

// SignIn verifies an identity-provider token and returns the user with a
// fresh session token.
func (s *UserService) SignIn(ctx context.Context, idpToken string) (*models.User, string, error) {
	ext, err := s.verifier.Verify(ctx, idpToken)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	user, err := s.repos.Users().Upsert(ctx, ext.Subject, ext.DisplayName)
	if err != nil {
		return nil, "", fmt.Errorf("error saving user: %w", err)
	}

	token, err := s.sessions.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("error issuing session: %w", err)
	}
	return user, token, nil
}

// Authenticate resolves a session token to its user.
func (s *UserService) Authenticate(ctx context.Context, token string) (*models.User, *auth.Claims, error) {
	claims, err := s.sessions.Check(token)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	user, err := s.repos.Users().Get(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil, fmt.Errorf("%w: unknown user", ErrUnauthorized)
		}
		return nil, nil, err
	}
	return user, claims, nil
}

func (s *UserService) SignOut(claims *auth.Claims) {
	s.sessions.Revoke(claims)
}
