// Package server wires and runs the NoteHub dev server: in-memory storage,
// optional seed data and the HTTP API, with graceful shutdown on signals.
package server

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/notehub/internal/logging"
	"github.com/dmitrijs2005/notehub/internal/server/auth"
	"github.com/dmitrijs2005/notehub/internal/server/config"
	"github.com/dmitrijs2005/notehub/internal/server/httpapi"
	"github.com/dmitrijs2005/notehub/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/notehub/internal/server/services"
)

type App struct {
	config *config.Config
	logger *logging.ZapLogger
	repos  repomanager.RepositoryManager
	users  *services.UserService
	notes  *services.NoteService
}

func NewApp(c *config.Config, logOut io.Writer) (*App, error) {
	logger, err := logging.NewZapLogger(logOut, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	repos := repomanager.NewInMemoryRepositoryManager()
	if c.SeedFile != "" {
		n, err := services.LoadSeedFile(context.Background(), repos, c.SeedFile)
		if err != nil {
			return nil, fmt.Errorf("seed error: %w", err)
		}
		logger.Info(context.Background(), "seeded notes", "count", n, "file", c.SeedFile)
	}

	sessions := auth.NewSessions(c.SecretKey, c.SessionValidity)
	return &App{
		config: c,
		logger: logger,
		repos:  repos,
		users:  services.NewUserService(repos, sessions, auth.DevVerifier{}),
		notes:  services.NewNoteService(repos),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves until ctx is cancelled or a termination signal arrives.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(cancelFunc)

	s := httpapi.NewServer(app.config.Addr, app.logger, app.users, app.notes)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, "server stopped", "error", err)
		return err
	}
	return nil
}
