package votes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/notehub/internal/client/client"
	"github.com/dmitrijs2005/notehub/internal/client/models"
	"github.com/dmitrijs2005/notehub/internal/common"
	"github.com/dmitrijs2005/notehub/internal/logging"
)

var ErrInvalidVote = errors.New("vote must be up or down")

// Policy decides which counts survive a successful vote.
type Policy string

const (
	// PolicyServer takes the counts returned by the server when present.
	PolicyServer Policy = "server"
	// PolicyOptimistic keeps the locally computed counts.
	PolicyOptimistic Policy = "optimistic"
)

func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyServer:
		return PolicyServer, nil
	case PolicyOptimistic:
		return PolicyOptimistic, nil
	default:
		return "", fmt.Errorf("unknown reconcile policy %q", s)
	}
}

// Sender delivers a vote action to the server.
type Sender interface {
	Vote(ctx context.Context, noteID string, action models.VoteAction) (*models.VoteCounts, error)
}

// Outcome describes one settled Cast.
type Outcome struct {
	NoteID string
	Action models.VoteAction
	Result string
	State  models.VoteState
	Err    error
}

type Observer func(ctx context.Context, o Outcome)

type Listener func(noteID string, state models.VoteState)

type subscriber struct {
	id int
	fn Listener
}

// Synchronizer owns the vote state of every note the client has seen.
// The lock is held only around in-memory transitions; the InFlight flag
// serializes requests per note.
type Synchronizer struct {
	mu         sync.Mutex
	states     map[string]models.VoteState
	sender     Sender
	policy     Policy
	log        logging.Logger
	authFailed func(ctx context.Context)
	observers  []Observer
	subs       []subscriber
	nextID     int
}

func NewSynchronizer(sender Sender, policy Policy, log logging.Logger) *Synchronizer {
	if policy == "" {
		policy = PolicyServer
	}
	if log == nil {
		log = logging.Nop{}
	}
	return &Synchronizer{
		states: make(map[string]models.VoteState),
		sender: sender,
		policy: policy,
		log:    log,
	}
}

// OnAuthFailure registers fn to be called when a vote is rejected for an
// invalid session.
func (s *Synchronizer) OnAuthFailure(fn func(ctx context.Context)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authFailed = fn
}

// AddObserver registers o for every settled Cast, including conflicts.
func (s *Synchronizer) AddObserver(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

// Subscribe registers l for every state change of any note.
func (s *Synchronizer) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs = append(s.subs, subscriber{id: id, fn: l})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// Load installs server-provided state for noteID. A note with a vote in
// flight keeps its local state; Load then reports false.
func (s *Synchronizer) Load(noteID string, state models.VoteState) bool {
	s.mu.Lock()
	if cur, ok := s.states[noteID]; ok && cur.InFlight {
		s.mu.Unlock()
		return false
	}
	state.InFlight = false
	s.states[noteID] = state
	subs := s.listenersLocked()
	s.mu.Unlock()

	notify(subs, noteID, state)
	return true
}

func (s *Synchronizer) Get(noteID string) (models.VoteState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[noteID]
	return st, ok
}

// Evict forgets the given notes unless a vote on them is in flight.
func (s *Synchronizer) Evict(ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		if st, ok := s.states[id]; ok && !st.InFlight {
			delete(s.states, id)
		}
	}
}

// Retain forgets every note not in ids, except those with a vote in flight.
func (s *Synchronizer) Retain(ids []string) {
	keep := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		keep[id] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, st := range s.states {
		if _, ok := keep[id]; !ok && !st.InFlight {
			delete(s.states, id)
		}
	}
}

// Cast applies requested to noteID optimistically, sends the resulting action
// and reconciles with the response. On failure the exact prior state is
// restored and the returned error wraps common.ErrVoteTransportFailure.
// A second Cast while one is in flight fails with common.ErrVoteConflict
// without sending anything.
func (s *Synchronizer) Cast(ctx context.Context, noteID string, requested models.Vote) (models.VoteState, error) {
	if requested != models.VoteUp && requested != models.VoteDown {
		return models.VoteState{}, ErrInvalidVote
	}

	s.mu.Lock()
	prev := s.states[noteID]
	if prev.InFlight {
		s.mu.Unlock()
		votesTotal.WithLabelValues(models.OutcomeConflict).Inc()
		s.observe(ctx, Outcome{NoteID: noteID, Result: models.OutcomeConflict, State: prev, Err: common.ErrVoteConflict})
		return prev, common.ErrVoteConflict
	}

	next, action := Apply(prev, requested)
	next.InFlight = true
	s.states[noteID] = next
	subs := s.listenersLocked()
	s.mu.Unlock()

	notify(subs, noteID, next)
	s.log.Debug(ctx, "sending vote", "note_id", noteID, "action", string(action))

	votesInFlight.Inc()
	counts, err := s.sender.Vote(ctx, noteID, action)
	votesInFlight.Dec()

	if err != nil {
		return s.rollback(ctx, noteID, action, prev, err)
	}

	s.mu.Lock()
	final := s.states[noteID]
	final.InFlight = false
	if counts != nil && s.policy == PolicyServer {
		final.Upvotes = counts.Upvotes
		final.Downvotes = counts.Downvotes
	}
	s.states[noteID] = final
	subs = s.listenersLocked()
	s.mu.Unlock()

	notify(subs, noteID, final)
	votesTotal.WithLabelValues(models.OutcomeApplied).Inc()
	s.observe(ctx, Outcome{NoteID: noteID, Action: action, Result: models.OutcomeApplied, State: final})
	return final, nil
}

func (s *Synchronizer) rollback(ctx context.Context, noteID string, action models.VoteAction, prev models.VoteState, cause error) (models.VoteState, error) {
	s.mu.Lock()
	s.states[noteID] = prev
	subs := s.listenersLocked()
	authFailed := s.authFailed
	s.mu.Unlock()

	notify(subs, noteID, prev)
	votesTotal.WithLabelValues(models.OutcomeRolledBack).Inc()
	s.log.Warn(ctx, "vote rolled back", "note_id", noteID, "action", string(action), "error", cause)

	if errors.Is(cause, client.ErrUnauthorized) && authFailed != nil {
		authFailed(ctx)
	}

	err := fmt.Errorf("%w: %w", common.ErrVoteTransportFailure, cause)
	s.observe(ctx, Outcome{NoteID: noteID, Action: action, Result: models.OutcomeRolledBack, State: prev, Err: err})
	return prev, err
}

func (s *Synchronizer) observe(ctx context.Context, o Outcome) {
	s.mu.Lock()
	obs := append([]Observer(nil), s.observers...)
	s.mu.Unlock()

	ctx = context.WithoutCancel(ctx)
	for _, fn := range obs {
		fn(ctx, o)
	}
}

func (s *Synchronizer) listenersLocked() []Listener {
	out := make([]Listener, 0, len(s.subs))
	for _, sub := range s.subs {
		out = append(out, sub.fn)
	}
	return out
}

func notify(subs []Listener, noteID string, st models.VoteState) {
	for _, fn := range subs {
		fn(noteID, st)
	}
}
