package repomanager

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/dmitrijs2005/notehub/internal/server/repositories/notes"
	"github.com/dmitrijs2005/notehub/internal/server/repositories/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithTx_PassesRepositoriesAndError(t *testing.T) {
	m := NewInMemoryRepositoryManager()
	boom := errors.New("boom")

	err := m.WithTx(context.Background(), func(_ context.Context, u users.Repository, n notes.Repository) error {
		assert.Same(t, m.Users(), u)
		assert.Same(t, m.Notes(), n)
		return boom
	})
	require.ErrorIs(t, err, boom)
}

func TestWithTx_CancelledContext(t *testing.T) {
	m := NewInMemoryRepositoryManager()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := m.WithTx(ctx, func(context.Context, users.Repository, notes.Repository) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestWithTx_Serializes(t *testing.T) {
	m := NewInMemoryRepositoryManager()

	var (
		wg      sync.WaitGroup
		active  int
		maxSeen int
		mu      sync.Mutex
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.WithTx(context.Background(), func(context.Context, users.Repository, notes.Repository) error {
				mu.Lock()
				active++
				if active > maxSeen {
					maxSeen = active
				}
				mu.Unlock()

				mu.Lock()
				active--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxSeen)
}
