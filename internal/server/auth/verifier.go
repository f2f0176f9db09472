package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/notehub/internal/common"
)

// ExternalIdentity is what an identity provider vouches for.
type ExternalIdentity struct {
	Subject     string
	DisplayName string
}

// Verifier checks an identity-provider token.
type Verifier interface {
	Verify(ctx context.Context, token string) (*ExternalIdentity, error)
}

// DevVerifier accepts tokens of the form "dev:<subject>:<display name>".
// The display name defaults to the subject.
type DevVerifier struct{}

func (DevVerifier) Verify(_ context.Context, token string) (*ExternalIdentity, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(token), "dev:")
	if !ok {
		return nil, fmt.Errorf("%w: not a dev token", common.ErrInvalidToken)
	}

	subject, name, _ := strings.Cut(rest, ":")
	subject = strings.TrimSpace(subject)
	name = strings.TrimSpace(name)
	if subject == "" {
		return nil, fmt.Errorf("%w: empty subject", common.ErrInvalidToken)
	}
	if name == "" {
		name = subject
	}
	return &ExternalIdentity{Subject: subject, DisplayName: name}, nil
}
