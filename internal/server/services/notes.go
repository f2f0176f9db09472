package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/notehub/internal/common"
	"github.com/dmitrijs2005/notehub/internal/server/models"
	"github.com/dmitrijs2005/notehub/internal/server/repositories/notes"
	"github.com/dmitrijs2005/notehub/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/notehub/internal/server/repositories/users"
)

const (
	DefaultRecentNotes = 20
	MaxRecentNotes     = 100
)

var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrNoteNotFound   = errors.New("note not found")
)

// NoteView is a note as shown to one caller.
type NoteView struct {
	models.Note
	Uploader models.User
	UserVote models.Ballot
}

type NoteService struct {
	repos repomanager.RepositoryManager
}

func NewNoteService(m repomanager.RepositoryManager) *NoteService {
	return &NoteService{repos: m}
}

// Create stores n after checking that its uploader exists.
func (s *NoteService) Create(ctx context.Context, n models.Note) (*models.Note, error) {
	if n.CourseCode == "" {
		return nil, fmt.Errorf("%w: course code is required", ErrInvalidRequest)
	}
	if _, err := s.repos.Users().Get(ctx, n.UploaderID); err != nil {
		return nil, fmt.Errorf("uploader %q: %w", n.UploaderID, err)
	}
	return s.repos.Notes().Create(ctx, &n)
}

// Upload stores a note submitted by uploaderID and returns it as the
// uploader sees it. The file itself lives elsewhere; only its URL is kept.
func (s *NoteService) Upload(ctx context.Context, uploaderID string, n models.Note) (*NoteView, error) {
	if n.FileURL == "" {
		return nil, fmt.Errorf("%w: file url is required", ErrInvalidRequest)
	}
	n.ID = ""
	n.UploaderID = uploaderID
	n.CreatedAt = time.Time{}

	created, err := s.Create(ctx, n)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, uploaderID, created.ID)
}

// Recent lists the newest notes. viewerID may be empty for anonymous
// callers, in which case no ballots are attached.
func (s *NoteService) Recent(ctx context.Context, viewerID string, num int) ([]NoteView, error) {
	switch {
	case num <= 0:
		num = DefaultRecentNotes
	case num > MaxRecentNotes:
		num = MaxRecentNotes
	}

	ns, err := s.repos.Notes().Recent(ctx, num)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, viewerID, ns)
}

func (s *NoteService) Search(ctx context.Context, viewerID, query string) ([]NoteView, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: query cannot be empty", ErrInvalidRequest)
	}
	ns, err := s.repos.Notes().Search(ctx, query)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, viewerID, ns)
}

func (s *NoteService) Get(ctx context.Context, viewerID, id string) (*NoteView, error) {
	n, err := s.repos.Notes().Get(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, err
	}
	vs, err := s.views(ctx, viewerID, []models.Note{*n})
	if err != nil {
		return nil, err
	}
	return &vs[0], nil
}

// Vote sets userID's ballot on noteID and moves the uploader's reputation by
// the change in score. Repeating a ballot, or removing a missing one, is a
// no-op. The updated note is returned.
func (s *NoteService) Vote(ctx context.Context, userID, noteID string, b models.Ballot) (*models.Note, error) {
	switch b {
	case models.BallotUp, models.BallotDown, models.BallotNone:
	default:
		return nil, fmt.Errorf("%w: unknown vote type %q", ErrInvalidRequest, b)
	}

	var updated *models.Note
	err := s.repos.WithTx(ctx, func(ctx context.Context, ur users.Repository, nr notes.Repository) error {
		prev, n, err := nr.SetBallot(ctx, userID, noteID, b)
		if err != nil {
			return err
		}
		updated = n

		if delta := b.Score() - prev.Score(); delta != 0 && n.UploaderID != "" {
			if err := ur.AdjustReputation(ctx, n.UploaderID, delta); err != nil && !errors.Is(err, common.ErrorNotFound) {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, err
	}
	return updated, nil
}

func (s *NoteService) views(ctx context.Context, viewerID string, ns []models.Note) ([]NoteView, error) {
	var ballots map[string]models.Ballot
	if viewerID != "" {
		ids := make([]string, 0, len(ns))
		for _, n := range ns {
			ids = append(ids, n.ID)
		}
		var err error
		ballots, err = s.repos.Notes().Ballots(ctx, viewerID, ids)
		if err != nil {
			return nil, err
		}
	}

	uploaders := make(map[string]models.User)
	out := make([]NoteView, 0, len(ns))
	for _, n := range ns {
		v := NoteView{Note: n, UserVote: ballots[n.ID]}
		if n.UploaderID != "" {
			u, ok := uploaders[n.UploaderID]
			if !ok {
				if got, err := s.repos.Users().Get(ctx, n.UploaderID); err == nil {
					u = *got
					uploaders[n.UploaderID] = u
				}
			}
			v.Uploader = u
		}
		out = append(out, v)
	}
	return out, nil
}
