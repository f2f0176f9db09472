package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/notehub/internal/client/client"
	"github.com/dmitrijs2005/notehub/internal/client/config"
	"github.com/dmitrijs2005/notehub/internal/client/gate"
	"github.com/dmitrijs2005/notehub/internal/client/models"
	"github.com/dmitrijs2005/notehub/internal/client/repositories/journal"
	"github.com/dmitrijs2005/notehub/internal/client/services"
	"github.com/dmitrijs2005/notehub/internal/client/session"
	"github.com/dmitrijs2005/notehub/internal/client/votes"
	"github.com/dmitrijs2005/notehub/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
)

type App struct {
	config *config.Config
	auth   services.AuthService
	feed   services.FeedService
	gate   *gate.Gate
	store  *session.Store
	reader *bufio.Reader
	out    io.Writer
	log    logging.Logger
	db     *sql.DB

	// gatherer backs the stats command.
	gatherer prometheus.Gatherer

	mu        sync.Mutex
	promptMsg string
	offline   bool
	unsub     func()
}

// NewApp opens the local database, restores nothing yet and wires the
// session, gate, vote synchronizer and services together.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}
	repos := client.NewRepositories(db)

	store := session.NewStore(session.NewMetadataCredentials(db), c.SessionTimeout, log.With("component", "session"))
	api := client.NewHTTPClient(c.APIBaseURL, c.RequestTimeout, c.VoteRetries, store)
	api.OnUnauthorized(store.AuthFailed)

	app, err := assemble(c, api, store, repos.Journal, log)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	app.db = db
	return app, nil
}

// assemble builds an App around an existing API client and session store.
func assemble(c *config.Config, api client.Client, store *session.Store, j journal.Repository, log logging.Logger) (*App, error) {
	policy, err := votes.ParsePolicy(c.ReconcilePolicy)
	if err != nil {
		return nil, err
	}

	vs := votes.NewSynchronizer(api, policy, log.With("component", "votes"))
	vs.OnAuthFailure(store.AuthFailed)
	if j != nil {
		vs.AddObserver(votes.JournalObserver(j, log))
	}

	a := &App{
		config: c,
		store:  store,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
		log:    log,

		gatherer: prometheus.DefaultGatherer,
	}

	a.unsub = store.Subscribe(a.onSessionChange)
	a.gate = gate.New(store, a, log.With("component", "gate"))
	a.gate.SetReplayReporter(a.reportReplay)
	a.auth = services.NewAuthService(api, store, log)
	a.feed = services.NewFeedService(api, store, vs, a.gate, j, a.openNote, log)
	a.feed.OnUpload(a.reportUpload)
	return a, nil
}

// Run restores a persisted session, starts the revalidation watcher and
// serves the REPL until exit or EOF.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := a.auth.Restore(ctx); err != nil {
		a.log.Warn(ctx, "could not restore session", "error", err)
	}
	a.checkServer(ctx)

	go a.StartSessionWatcher(ctx, a.config.RevalidateInterval)

	printlnFn("Welcome to NoteHub (type 'help' for commands)")
	runREPL(ctx, a, a.status, a.reader)
	return nil
}

func (a *App) Close() error {
	if a.unsub != nil {
		a.unsub()
	}
	if a.gate != nil {
		a.gate.Close()
	}
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// PromptSignIn records the message; the dialog itself runs once the command
// that triggered it returns.
func (a *App) PromptSignIn(_ context.Context, message string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.promptMsg = message
}

func (a *App) takePrompt() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	msg := a.promptMsg
	a.promptMsg = ""
	return msg
}

func (a *App) status() string {
	s := a.sessionStatus()
	if a.isOffline() {
		s += " [offline]"
	}
	return s
}

func (a *App) sessionStatus() string {
	snap := a.store.Snapshot()
	switch snap.State {
	case session.StateSignedIn:
		return "(" + snap.Identity.DisplayName + ")"
	case session.StateUnknown:
		if snap.Identity != nil {
			return "(" + snap.Identity.DisplayName + "?)"
		}
		return "(?)"
	default:
		return "(signed out)"
	}
}

func (a *App) isOffline() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.offline
}

func (a *App) setOffline(ctx context.Context, offline bool) {
	a.mu.Lock()
	changed := a.offline != offline
	a.offline = offline
	a.mu.Unlock()

	if changed {
		mode := "online"
		if offline {
			mode = "offline"
		}
		a.log.Info(ctx, "switched mode", "mode", mode)
	}
}

func (a *App) onSessionChange(t session.Transition) {
	switch {
	case t.To.SignedIn() && !t.From.SignedIn():
		printlnFn(fmt.Sprintf("Signed in as %s.", t.To.Identity.DisplayName))
	case t.To.State == session.StateSignedOut && t.From.State != session.StateSignedOut:
		printlnFn("Signed out.")
	}
}

func (a *App) reportReplay(cmd gate.Command, err error) {
	if err != nil {
		printlnFn(fmt.Sprintf("Could not %s note %s: %v", cmd.Kind, cmd.Target, err))
		return
	}
	if cmd.Kind == services.KindUpvote || cmd.Kind == services.KindDownvote {
		if st, ok := a.feed.VoteState(cmd.Target); ok {
			printlnFn(formatVote(cmd.Target, st))
		}
	}
}

func (a *App) reportUpload(_ context.Context, n models.Note) {
	printlnFn(fmt.Sprintf("Uploaded note %s (%s).", n.ID, n.CourseCode))
}

func (a *App) openNote(_ context.Context, n models.Note) error {
	printlnFn(fmt.Sprintf("Download %s: %s", n.ID, n.FileURL))
	return nil
}

// StartSessionWatcher periodically pings the server and, while it is
// reachable, revalidates a session restored from disk until the server
// confirms or rejects it.
func (a *App) StartSessionWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkServer(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkServer(ctx context.Context) {
	pctx, cancel := context.WithTimeout(ctx, a.config.SessionTimeout)
	err := a.auth.Ping(pctx)
	cancel()

	a.setOffline(ctx, err != nil)
	if err != nil {
		a.log.Debug(ctx, "server unreachable", "error", err)
		return
	}
	a.revalidateIfUnknown(ctx)
}

func (a *App) revalidateIfUnknown(ctx context.Context) {
	if a.auth.Current().State != session.StateUnknown {
		return
	}
	if err := a.auth.Revalidate(ctx); err != nil {
		a.log.Debug(ctx, "session still unconfirmed", "error", err)
	}
}
