package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/notehub/internal/client/client"
	"github.com/dmitrijs2005/notehub/internal/client/models"
)

// fakeClient implements client.Client for service unit tests.
type fakeClient struct {
	mu sync.Mutex

	CreateIdentity *models.Identity
	CreateToken    string
	CreateErr      error
	LastIdpToken   string

	WhoAmIRet *models.Identity
	WhoAmIErr error

	RevokeErr   error
	RevokeCalls int

	VoteCounts *models.VoteCounts
	VoteErr    error
	VoteCalls  []models.VoteAction

	Notes     []models.Note
	NotesErr  error
	LastNum   int
	LastQuery string

	NoteByID map[string]models.Note
	GetCalls int

	UploadErr    error
	UploadDrafts []models.NoteDraft

	PingErr error
}

var _ client.Client = (*fakeClient)(nil)

func (f *fakeClient) CreateSession(_ context.Context, idpToken string) (*models.Identity, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastIdpToken = idpToken
	if f.CreateErr != nil {
		return nil, "", f.CreateErr
	}
	return f.CreateIdentity, f.CreateToken, nil
}

func (f *fakeClient) WhoAmI(context.Context) (*models.Identity, error) {
	return f.WhoAmIRet, f.WhoAmIErr
}

func (f *fakeClient) RevokeSession(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.RevokeCalls++
	return f.RevokeErr
}

func (f *fakeClient) Vote(_ context.Context, _ string, action models.VoteAction) (*models.VoteCounts, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.VoteCalls = append(f.VoteCalls, action)
	return f.VoteCounts, f.VoteErr
}

func (f *fakeClient) RecentNotes(_ context.Context, num int) ([]models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastNum = num
	return append([]models.Note(nil), f.Notes...), f.NotesErr
}

func (f *fakeClient) SearchNotes(_ context.Context, q string) ([]models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastQuery = q
	return append([]models.Note(nil), f.Notes...), f.NotesErr
}

func (f *fakeClient) GetNote(_ context.Context, id string) (*models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.GetCalls++
	n, ok := f.NoteByID[id]
	if !ok {
		return nil, &client.HTTPError{Op: "get note", StatusCode: 404, Err: client.ErrNotFound}
	}
	return &n, nil
}

func (f *fakeClient) UploadNote(_ context.Context, d models.NoteDraft) (*models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.UploadDrafts = append(f.UploadDrafts, d)
	if f.UploadErr != nil {
		return nil, f.UploadErr
	}
	return &models.Note{ID: fmt.Sprintf("up%d", len(f.UploadDrafts)), CourseCode: d.CourseCode, FileURL: d.FileURL}, nil
}

func (f *fakeClient) Ping(context.Context) error { return f.PingErr }
