package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/notehub/internal/client/client"
	"github.com/dmitrijs2005/notehub/internal/client/gate"
	"github.com/dmitrijs2005/notehub/internal/client/models"
	"github.com/dmitrijs2005/notehub/internal/client/repositories/journal"
	"github.com/dmitrijs2005/notehub/internal/client/votes"
	"github.com/dmitrijs2005/notehub/internal/logging"
)

// Gated action kinds. They double as the verb in the sign-in prompt.
const (
	KindUpvote   = "upvote"
	KindDownvote = "downvote"
	KindDownload = "download"
	KindUpload   = "upload"
)

var ErrInvalidDraft = errors.New("course code and file url are required")

// OpenFunc receives a note whose download was authorized.
type OpenFunc func(ctx context.Context, note models.Note) error

// UploadedFunc receives a note the server accepted.
type UploadedFunc func(ctx context.Context, note models.Note)

// FeedService lists notes and performs the gated note actions.
//
// Listing calls refresh the vote synchronizer with server state. Vote and
// Download go through the gate, so they return common.ErrAuthRequired when
// deferred until sign-in.
type FeedService interface {
	Recent(ctx context.Context, num int) ([]models.Note, error)
	Search(ctx context.Context, query string) ([]models.Note, error)
	Show(ctx context.Context, id string) (*models.Note, error)
	Vote(ctx context.Context, noteID string, v models.Vote) error
	Download(ctx context.Context, noteID string) error
	Upload(ctx context.Context, draft models.NoteDraft) error
	OnUpload(fn UploadedFunc)
	VoteState(noteID string) (models.VoteState, bool)
	History(ctx context.Context, noteID string, limit int) ([]models.JournalEntry, error)
}

type feedService struct {
	client  client.Client
	sess    gate.SessionSource
	votes   *votes.Synchronizer
	gate    *gate.Gate
	journal journal.Repository
	open    OpenFunc
	log     logging.Logger

	mu       sync.Mutex
	owner    string
	uploaded UploadedFunc
}

// NewFeedService wires the gated handlers into g.
func NewFeedService(
	c client.Client,
	sess gate.SessionSource,
	vs *votes.Synchronizer,
	g *gate.Gate,
	j journal.Repository,
	open OpenFunc,
	log logging.Logger,
) FeedService {
	if log == nil {
		log = logging.Nop{}
	}
	f := &feedService{
		client:  c,
		sess:    sess,
		votes:   vs,
		gate:    g,
		journal: j,
		open:    open,
		log:     log,
	}

	g.Register(KindUpvote, f.castHandler(models.VoteUp))
	g.Register(KindDownvote, f.castHandler(models.VoteDown))
	g.Register(KindDownload, f.downloadHandler)
	g.Register(KindUpload, f.uploadHandler)
	return f
}

func (f *feedService) Recent(ctx context.Context, num int) ([]models.Note, error) {
	f.syncOwner()
	notes, err := f.client.RecentNotes(ctx, num)
	if err != nil {
		return nil, fmt.Errorf("load recent notes: %w", err)
	}
	return f.adopt(notes), nil
}

func (f *feedService) Search(ctx context.Context, query string) ([]models.Note, error) {
	f.syncOwner()
	notes, err := f.client.SearchNotes(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search notes: %w", err)
	}
	return f.adopt(notes), nil
}

func (f *feedService) Show(ctx context.Context, id string) (*models.Note, error) {
	f.syncOwner()
	note, err := f.client.GetNote(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load note %s: %w", id, err)
	}
	f.votes.Load(note.ID, note.VoteState())
	overlay(note, f.votes)
	return note, nil
}

func (f *feedService) Vote(ctx context.Context, noteID string, v models.Vote) error {
	kind := KindUpvote
	if v == models.VoteDown {
		kind = KindDownvote
	} else if v != models.VoteUp {
		return votes.ErrInvalidVote
	}
	return f.gate.Require(ctx, gate.Command{Kind: kind, Target: noteID})
}

func (f *feedService) Download(ctx context.Context, noteID string) error {
	return f.gate.Require(ctx, gate.Command{Kind: KindDownload, Target: noteID})
}

// Upload carries the draft inside the gated command, so a deferred upload
// replays with exactly what the user entered.
func (f *feedService) Upload(ctx context.Context, draft models.NoteDraft) error {
	if !draft.Valid() {
		return ErrInvalidDraft
	}
	raw, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	return f.gate.Require(ctx, gate.Command{Kind: KindUpload, Target: draft.CourseCode, Args: []string{string(raw)}})
}

func (f *feedService) OnUpload(fn UploadedFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploaded = fn
}

func (f *feedService) VoteState(noteID string) (models.VoteState, bool) {
	return f.votes.Get(noteID)
}

func (f *feedService) History(ctx context.Context, noteID string, limit int) ([]models.JournalEntry, error) {
	if f.journal == nil {
		return nil, nil
	}
	return f.journal.Recent(ctx, noteID, limit)
}

func (f *feedService) castHandler(v models.Vote) gate.Handler {
	return func(ctx context.Context, cmd gate.Command) error {
		f.syncOwner()
		if _, ok := f.votes.Get(cmd.Target); !ok {
			note, err := f.client.GetNote(ctx, cmd.Target)
			if err != nil {
				return fmt.Errorf("load note %s: %w", cmd.Target, err)
			}
			f.votes.Load(note.ID, note.VoteState())
		}
		_, err := f.votes.Cast(ctx, cmd.Target, v)
		return err
	}
}

func (f *feedService) downloadHandler(ctx context.Context, cmd gate.Command) error {
	note, err := f.client.GetNote(ctx, cmd.Target)
	if err != nil {
		return fmt.Errorf("load note %s: %w", cmd.Target, err)
	}
	if f.open == nil {
		return nil
	}
	return f.open(ctx, *note)
}

func (f *feedService) uploadHandler(ctx context.Context, cmd gate.Command) error {
	if len(cmd.Args) != 1 {
		return errors.New("upload command without draft")
	}
	var draft models.NoteDraft
	if err := json.Unmarshal([]byte(cmd.Args[0]), &draft); err != nil {
		return fmt.Errorf("decode draft: %w", err)
	}

	note, err := f.client.UploadNote(ctx, draft)
	if err != nil {
		return fmt.Errorf("upload note: %w", err)
	}
	f.syncOwner()
	f.votes.Load(note.ID, note.VoteState())
	f.log.Info(ctx, "note uploaded", "note_id", note.ID, "course", note.CourseCode)

	f.mu.Lock()
	fn := f.uploaded
	f.mu.Unlock()
	if fn != nil {
		fn(ctx, *note)
	}
	return nil
}

// adopt loads server vote state for the listed notes, forgets notes no
// longer listed and returns the notes with local vote state applied.
func (f *feedService) adopt(notes []models.Note) []models.Note {
	ids := make([]string, 0, len(notes))
	for _, n := range notes {
		f.votes.Load(n.ID, n.VoteState())
		ids = append(ids, n.ID)
	}
	f.votes.Retain(ids)

	for i := range notes {
		overlay(&notes[i], f.votes)
	}
	return notes
}

// syncOwner drops cached vote state that belonged to a different user.
func (f *feedService) syncOwner() {
	owner := ""
	if snap := f.sess.Snapshot(); snap.Identity != nil {
		owner = snap.Identity.ID
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if owner != f.owner {
		f.votes.Retain(nil)
		f.owner = owner
	}
}

func overlay(n *models.Note, s *votes.Synchronizer) {
	if st, ok := s.Get(n.ID); ok {
		n.UserVote = st.UserVote
		n.Upvotes = st.Upvotes
		n.Downvotes = st.Downvotes
	}
}
