// Package auth issues and checks dev-server session tokens and verifies
// identity-provider tokens.
package auth

import (
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/notehub/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims are the registered claims plus the user ID. The token ID (jti)
// keys revocation.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
}

// GenerateToken signs an HS256 session token for userID.
func GenerateToken(userID string, secretKey []byte, validity time.Duration) (string, *Claims, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		},
		UserID: userID,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secretKey)
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

// ParseToken verifies the signature and expiry of tokenString.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}
	if !token.Valid || claims.UserID == "" {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}

// Sessions issues session tokens and remembers revoked ones until they
// would have expired anyway.
type Sessions struct {
	secret   []byte
	validity time.Duration

	mu      sync.Mutex
	revoked map[string]time.Time
}

func NewSessions(secret string, validity time.Duration) *Sessions {
	return &Sessions{
		secret:   []byte(secret),
		validity: validity,
		revoked:  make(map[string]time.Time),
	}
}

func (s *Sessions) Issue(userID string) (string, error) {
	token, _, err := GenerateToken(userID, s.secret, s.validity)
	return token, err
}

// Check returns the claims of a valid, unrevoked token.
func (s *Sessions) Check(token string) (*Claims, error) {
	claims, err := ParseToken(token, s.secret)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.revoked[claims.ID]; ok {
		return nil, common.ErrTokenRevoked
	}
	return claims, nil
}

// Revoke invalidates the token described by claims. Expired entries are
// pruned on the way.
func (s *Sessions) Revoke(claims *Claims) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, exp := range s.revoked {
		if exp.Before(now) {
			delete(s.revoked, id)
		}
	}

	exp := now.Add(s.validity)
	if claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Time
	}
	s.revoked[claims.ID] = exp
}
