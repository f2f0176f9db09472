package repomanager

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/notehub/internal/server/repositories/notes"
	"github.com/dmitrijs2005/notehub/internal/server/repositories/users"
)

type InMemoryRepositoryManager struct {
	mu    sync.Mutex
	users *users.MemoryRepository
	notes *notes.MemoryRepository
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{
		users: users.NewMemoryRepository(),
		notes: notes.NewMemoryRepository(),
	}
}

func (m *InMemoryRepositoryManager) Users() users.Repository { return m.users }

func (m *InMemoryRepositoryManager) Notes() notes.Repository { return m.notes }

func (m *InMemoryRepositoryManager) WithTx(ctx context.Context, fn func(ctx context.Context, u users.Repository, n notes.Repository) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx, m.users, m.notes)
}
