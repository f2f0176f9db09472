package users

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/notehub/internal/common"
	"github.com/dmitrijs2005/notehub/internal/server/models"
	"github.com/google/uuid"
)

type MemoryRepository struct {
	mu        sync.RWMutex
	byID      map[string]*models.User
	bySubject map[string]string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:      make(map[string]*models.User),
		bySubject: make(map[string]string),
	}
}

func (r *MemoryRepository) Upsert(_ context.Context, subject, displayName string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.bySubject[subject]; ok {
		u := r.byID[id]
		if displayName != "" {
			u.DisplayName = displayName
		}
		cp := *u
		return &cp, nil
	}

	u := &models.User{
		ID:          uuid.NewString(),
		Subject:     subject,
		DisplayName: displayName,
		CreatedAt:   time.Now().UTC(),
	}
	r.byID[u.ID] = u
	r.bySubject[subject] = u.ID
	cp := *u
	return &cp, nil
}

func (r *MemoryRepository) Get(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *MemoryRepository) AdjustReputation(_ context.Context, id string, delta int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.Reputation += delta
	return nil
}
