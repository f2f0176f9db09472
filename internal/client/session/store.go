package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/notehub/internal/client/client"
	"github.com/dmitrijs2005/notehub/internal/client/models"
	"github.com/dmitrijs2005/notehub/internal/common"
	"github.com/dmitrijs2005/notehub/internal/logging"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultRevalidateTimeout bounds a whoami call when no timeout is configured.
const DefaultRevalidateTimeout = 5 * time.Second

type State int

const (
	StateSignedOut State = iota
	StateUnknown
	StateSignedIn
)

func (s State) String() string {
	switch s {
	case StateSignedIn:
		return "signed in"
	case StateUnknown:
		return "unknown"
	default:
		return "signed out"
	}
}

// Snapshot is an immutable view of the store. Identity is nil when signed
// out; in the Unknown state it holds the cached identity, if any.
type Snapshot struct {
	State    State
	Identity *models.Identity
}

// SignedIn reports whether the snapshot carries a confirmed identity.
func (s Snapshot) SignedIn() bool {
	return s.State == StateSignedIn
}

// Transition is what listeners receive.
type Transition struct {
	From Snapshot
	To   Snapshot
}

type Listener func(Transition)

// Validator resolves the identity behind the current bearer token.
type Validator interface {
	WhoAmI(ctx context.Context) (*models.Identity, error)
}

type subscriber struct {
	id int
	fn Listener
}

// Store is the single source of truth for who is signed in.
type Store struct {
	// writeMu orders a transition together with its persistence.
	writeMu  sync.Mutex
	mu       sync.Mutex
	snap     Snapshot
	token    string
	creds    CredentialStore
	timeout  time.Duration
	log      logging.Logger
	now      func() time.Time
	subs     []subscriber
	nextID   int
	pending  []Transition
	draining bool
}

// NewStore builds a signed-out store. creds may be nil, in which case the
// session lives in memory only.
func NewStore(creds CredentialStore, timeout time.Duration, log logging.Logger) *Store {
	if timeout <= 0 {
		timeout = DefaultRevalidateTimeout
	}
	if log == nil {
		log = logging.Nop{}
	}
	return &Store{
		snap:    Snapshot{State: StateSignedOut},
		creds:   creds,
		timeout: timeout,
		log:     log,
		now:     time.Now,
	}
}

// Snapshot returns the current state without side effects.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copySnapshot(s.snap)
}

// Subscribe registers l for every subsequent transition. The returned func
// removes it; calling it more than once is harmless.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs = append(s.subs, subscriber{id: id, fn: l})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.subs {
				if sub.id == id {
					s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// SetSignedIn records a confirmed identity together with its bearer token and
// persists the token. An identity without an ID is ignored.
func (s *Store) SetSignedIn(ctx context.Context, identity models.Identity, token string) {
	if !identity.Valid() {
		s.log.Warn(ctx, "ignoring identity without id")
		return
	}

	s.writeMu.Lock()
	s.mu.Lock()
	s.token = token
	s.transitionLocked(Snapshot{State: StateSignedIn, Identity: &identity})
	s.mu.Unlock()

	if s.creds != nil && token != "" {
		if err := s.creds.SaveCredential(ctx, token, identity); err != nil {
			s.log.Warn(ctx, "failed to persist session", "error", err)
		}
	}
	s.writeMu.Unlock()

	s.deliver()
}

// SignOut clears the identity and drops the bearer token, both in memory and
// on disk.
func (s *Store) SignOut(ctx context.Context) {
	s.writeMu.Lock()
	s.mu.Lock()
	hadToken := s.token != ""
	s.token = ""
	s.transitionLocked(Snapshot{State: StateSignedOut})
	s.mu.Unlock()

	if s.creds != nil && hadToken {
		if err := s.creds.ClearCredential(ctx); err != nil {
			s.log.Warn(ctx, "failed to remove persisted session", "error", err)
		}
	}
	s.writeMu.Unlock()

	s.deliver()
}

// AuthFailed is the hook for API calls rejected with 401. It signs out.
func (s *Store) AuthFailed(ctx context.Context) {
	if s.Snapshot().State == StateSignedOut && !s.hasToken() {
		return
	}
	s.log.Info(ctx, "session rejected by server, signing out")
	s.SignOut(ctx)
}

// Load reads the persisted credential. A stored, unexpired token moves the
// store into Unknown until Revalidate settles it.
func (s *Store) Load(ctx context.Context) error {
	if s.creds == nil {
		return nil
	}

	token, identity, err := s.creds.LoadCredential(ctx)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if token == "" {
		return nil
	}

	if expired(token, s.now()) {
		s.log.Info(ctx, "stored session token has expired")
		if err := s.creds.ClearCredential(ctx); err != nil {
			s.log.Warn(ctx, "failed to remove persisted session", "error", err)
		}
		return nil
	}

	s.mu.Lock()
	s.token = token
	s.transitionLocked(Snapshot{State: StateUnknown, Identity: identity})
	s.mu.Unlock()

	s.deliver()
	return nil
}

// Revalidate asks the server who owns the current token. Success moves the
// store to SignedIn and a rejected token to SignedOut. On timeout or
// transport failure the state is left untouched and
// ErrSessionRevalidationTimeout is returned.
func (s *Store) Revalidate(ctx context.Context, v Validator) error {
	s.mu.Lock()
	token := s.token
	s.mu.Unlock()

	if token == "" {
		return nil
	}

	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	identity, err := v.WhoAmI(cctx)

	// signed in or out while the call was running: the result is stale
	switch {
	case err == nil && identity != nil && identity.Valid():
		s.signInIfToken(ctx, token, *identity)
		return nil
	case err == nil:
		s.log.Warn(ctx, "whoami returned no identity, signing out")
		s.signOutIfToken(ctx, token)
		return nil
	case errors.Is(err, client.ErrUnauthorized):
		s.log.Info(ctx, "stored session is no longer valid")
		s.signOutIfToken(ctx, token)
		return nil
	case s.currentToken() != token:
		return nil
	default:
		s.log.Warn(ctx, "session revalidation failed", "error", err)
		return fmt.Errorf("%w: %w", common.ErrSessionRevalidationTimeout, err)
	}
}

// Token returns the bearer credential for outbound calls. An expired JWT is
// treated as absent and signs the store out.
func (s *Store) Token() (string, bool) {
	s.mu.Lock()
	token := s.token
	s.mu.Unlock()

	if token == "" {
		return "", false
	}
	if expired(token, s.now()) {
		s.AuthFailed(context.Background())
		return "", false
	}
	return token, true
}

// signInIfToken confirms identity only while token is still the held
// credential. The check and the transition share one critical section.
func (s *Store) signInIfToken(ctx context.Context, token string, identity models.Identity) {
	s.writeMu.Lock()
	s.mu.Lock()
	if s.token != token {
		s.mu.Unlock()
		s.writeMu.Unlock()
		return
	}
	s.transitionLocked(Snapshot{State: StateSignedIn, Identity: &identity})
	s.mu.Unlock()

	if s.creds != nil {
		if err := s.creds.SaveCredential(ctx, token, identity); err != nil {
			s.log.Warn(ctx, "failed to persist session", "error", err)
		}
	}
	s.writeMu.Unlock()
	s.deliver()
}

func (s *Store) signOutIfToken(ctx context.Context, token string) {
	s.writeMu.Lock()
	s.mu.Lock()
	if s.token != token {
		s.mu.Unlock()
		s.writeMu.Unlock()
		return
	}
	s.token = ""
	s.transitionLocked(Snapshot{State: StateSignedOut})
	s.mu.Unlock()

	if s.creds != nil {
		if err := s.creds.ClearCredential(ctx); err != nil {
			s.log.Warn(ctx, "failed to remove persisted session", "error", err)
		}
	}
	s.writeMu.Unlock()
	s.deliver()
}

func (s *Store) currentToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *Store) hasToken() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token != ""
}

// transitionLocked swaps the snapshot and queues a notification when the
// visible state changed. Caller holds s.mu.
func (s *Store) transitionLocked(next Snapshot) {
	prev := s.snap
	if sameSnapshot(prev, next) {
		return
	}
	s.snap = next
	s.pending = append(s.pending, Transition{From: copySnapshot(prev), To: copySnapshot(next)})
}

// deliver drains the pending queue. Only one goroutine drains at a time;
// anything queued meanwhile, including from listeners, is picked up by the
// running loop.
func (s *Store) deliver() {
	s.mu.Lock()
	if s.draining {
		s.mu.Unlock()
		return
	}
	s.draining = true

	for len(s.pending) > 0 {
		t := s.pending[0]
		s.pending = s.pending[1:]
		subs := append([]subscriber(nil), s.subs...)
		s.mu.Unlock()

		for _, sub := range subs {
			sub.fn(t)
		}

		s.mu.Lock()
	}

	s.draining = false
	s.mu.Unlock()
}

func sameSnapshot(a, b Snapshot) bool {
	if a.State != b.State {
		return false
	}
	if a.Identity == nil || b.Identity == nil {
		return a.Identity == nil && b.Identity == nil
	}
	return *a.Identity == *b.Identity
}

func copySnapshot(s Snapshot) Snapshot {
	if s.Identity != nil {
		id := *s.Identity
		s.Identity = &id
	}
	return s
}

// expired reports whether token is a JWT whose exp claim has passed.
// Tokens that are not JWTs never expire client-side.
func expired(token string, now time.Time) bool {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !now.Before(claims.ExpiresAt.Time)
}
