package notes

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/notehub/internal/common"
	"github.com/dmitrijs2005/notehub/internal/server/models"
	"github.com/google/uuid"
)

type ballotKey struct {
	userID string
	noteID string
}

type MemoryRepository struct {
	mu      sync.RWMutex
	notes   map[string]*models.Note
	ballots map[ballotKey]models.Ballot
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		notes:   make(map[string]*models.Note),
		ballots: make(map[ballotKey]models.Ballot),
	}
}

func (r *MemoryRepository) Create(_ context.Context, n *models.Note) (*models.Note, error) {
	cp := copyNote(n)
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}
	cp.Upvotes, cp.Downvotes = 0, 0

	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes[cp.ID] = cp
	return copyNote(cp), nil
}

func (r *MemoryRepository) Get(_ context.Context, id string) (*models.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n, ok := r.notes[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return copyNote(n), nil
}

func (r *MemoryRepository) Recent(_ context.Context, limit int) ([]models.Note, error) {
	r.mu.RLock()
	all := make([]models.Note, 0, len(r.notes))
	for _, n := range r.notes {
		all = append(all, *copyNote(n))
	}
	r.mu.RUnlock()

	sortNewestFirst(all)
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *MemoryRepository) Search(_ context.Context, query string) ([]models.Note, error) {
	q := strings.ToLower(strings.TrimSpace(query))

	r.mu.RLock()
	var found []models.Note
	for _, n := range r.notes {
		if matches(n, q) {
			found = append(found, *copyNote(n))
		}
	}
	r.mu.RUnlock()

	sortNewestFirst(found)
	return found, nil
}

func (r *MemoryRepository) Ballots(_ context.Context, userID string, noteIDs []string) (map[string]models.Ballot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]models.Ballot)
	for _, id := range noteIDs {
		if b, ok := r.ballots[ballotKey{userID: userID, noteID: id}]; ok {
			out[id] = b
		}
	}
	return out, nil
}

func (r *MemoryRepository) SetBallot(_ context.Context, userID, noteID string, b models.Ballot) (models.Ballot, *models.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.notes[noteID]
	if !ok {
		return models.BallotNone, nil, common.ErrorNotFound
	}

	key := ballotKey{userID: userID, noteID: noteID}
	prev := r.ballots[key]

	tally(n, prev, -1)
	tally(n, b, +1)
	if b == models.BallotNone {
		delete(r.ballots, key)
	} else {
		r.ballots[key] = b
	}
	return prev, copyNote(n), nil
}

func tally(n *models.Note, b models.Ballot, d int) {
	switch b {
	case models.BallotUp:
		n.Upvotes += d
	case models.BallotDown:
		n.Downvotes += d
	}
}

func matches(n *models.Note, q string) bool {
	if q == "" {
		return false
	}
	fields := []string{n.CourseCode, n.CourseName, n.Description}
	fields = append(fields, n.ProfessorNames...)
	fields = append(fields, n.Tags...)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

func sortNewestFirst(ns []models.Note) {
	sort.SliceStable(ns, func(i, j int) bool {
		if ns[i].CreatedAt.Equal(ns[j].CreatedAt) {
			return ns[i].ID < ns[j].ID
		}
		return ns[i].CreatedAt.After(ns[j].CreatedAt)
	})
}

func copyNote(n *models.Note) *models.Note {
	cp := *n
	cp.ProfessorNames = append([]string(nil), n.ProfessorNames...)
	cp.Tags = append([]string(nil), n.Tags...)
	return &cp
}
