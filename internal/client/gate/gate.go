// Package gate defers actions that need a signed-in user.
//
// A gated action is described by a Command and executed through the handler
// registered for its Kind. When the session is not confirmed the command is
// parked, the Prompter is asked to show a sign-in prompt, and Require returns
// common.ErrAuthRequired. The next transition into the signed-in state
// replays the parked command exactly once. At most one command is parked; a
// newer one replaces it.
package gate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/notehub/internal/client/session"
	"github.com/dmitrijs2005/notehub/internal/common"
	"github.com/dmitrijs2005/notehub/internal/logging"
)

// DefaultReplayTimeout bounds a replayed command.
const DefaultReplayTimeout = 30 * time.Second

var ErrUnknownAction = errors.New("unknown action")

// Command is a gated action as plain data.
type Command struct {
	Kind   string
	Target string
	Args   []string
}

func (c Command) String() string {
	if c.Target == "" {
		return c.Kind
	}
	return c.Kind + " " + c.Target
}

type Handler func(ctx context.Context, cmd Command) error

// Prompter surfaces the sign-in prompt. It must not block on user input;
// the caller decides when to run the actual dialog.
type Prompter interface {
	PromptSignIn(ctx context.Context, message string)
}

// PrompterFunc adapts a function to Prompter.
type PrompterFunc func(ctx context.Context, message string)

func (f PrompterFunc) PromptSignIn(ctx context.Context, message string) { f(ctx, message) }

// ReplayReporter receives the outcome of a replayed command.
type ReplayReporter func(cmd Command, err error)

// SessionSource is the part of session.Store the gate depends on.
type SessionSource interface {
	Snapshot() session.Snapshot
	Subscribe(l session.Listener) (unsubscribe func())
}

// Message is the prompt text for a command kind.
func Message(kind string) string {
	return fmt.Sprintf("Please sign in to %s this note.", kind)
}

type Gate struct {
	mu            sync.Mutex
	sess          SessionSource
	prompter      Prompter
	handlers      map[string]Handler
	pending       *Command
	report        ReplayReporter
	replayTimeout time.Duration
	log           logging.Logger
	unsubscribe   func()
}

// New builds a gate bound to sess. Close releases the subscription.
func New(sess SessionSource, prompter Prompter, log logging.Logger) *Gate {
	if log == nil {
		log = logging.Nop{}
	}
	g := &Gate{
		sess:          sess,
		prompter:      prompter,
		handlers:      make(map[string]Handler),
		replayTimeout: DefaultReplayTimeout,
		log:           log,
	}
	g.unsubscribe = sess.Subscribe(g.onTransition)
	return g
}

func (g *Gate) Register(kind string, h Handler) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.handlers[kind] = h
}

func (g *Gate) SetReplayReporter(r ReplayReporter) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.report = r
}

func (g *Gate) SetReplayTimeout(d time.Duration) {
	if d <= 0 {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.replayTimeout = d
}

// Require runs cmd now when signed in, otherwise parks it and asks for a
// sign-in. A parked command yields common.ErrAuthRequired.
func (g *Gate) Require(ctx context.Context, cmd Command) error {
	g.mu.Lock()
	h, ok := g.handlers[cmd.Kind]
	g.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAction, cmd.Kind)
	}

	if g.sess.Snapshot().SignedIn() {
		return h(ctx, cmd)
	}

	g.mu.Lock()
	if g.pending != nil {
		g.log.Debug(ctx, "replacing deferred action", "old", g.pending.String(), "new", cmd.String())
	}
	c := cmd
	g.pending = &c
	g.mu.Unlock()

	g.log.Info(ctx, "action deferred until sign-in", "action", cmd.String())
	if g.prompter != nil {
		g.prompter.PromptSignIn(ctx, Message(cmd.Kind))
	}
	return common.ErrAuthRequired
}

// Pending returns the parked command, if any.
func (g *Gate) Pending() (Command, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pending == nil {
		return Command{}, false
	}
	return *g.pending, true
}

// Cancel discards the parked command without running it. It reports whether
// there was one.
func (g *Gate) Cancel() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	had := g.pending != nil
	g.pending = nil
	return had
}

func (g *Gate) Close() {
	if g.unsubscribe != nil {
		g.unsubscribe()
	}
}

func (g *Gate) onTransition(tr session.Transition) {
	if !tr.To.SignedIn() || tr.From.SignedIn() {
		return
	}

	g.mu.Lock()
	cmd := g.pending
	g.pending = nil
	var h Handler
	if cmd != nil {
		h = g.handlers[cmd.Kind]
	}
	report := g.report
	timeout := g.replayTimeout
	g.mu.Unlock()

	if cmd == nil || h == nil {
		return
	}

	// the prompting request is long gone, replay on a fresh context
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	g.log.Info(ctx, "replaying deferred action", "action", cmd.String())
	err := h(ctx, *cmd)
	if err != nil {
		g.log.Warn(ctx, "deferred action failed", "action", cmd.String(), "error", err)
	}
	if report != nil {
		report(*cmd, err)
	}
}
