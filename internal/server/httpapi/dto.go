package httpapi

import (
	"strings"
	"time"

	"github.com/dmitrijs2005/notehub/internal/server/models"
	"github.com/dmitrijs2005/notehub/internal/server/services"
)

type identityDTO struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Reputation  int64  `json:"reputation"`
}

type sessionRequest struct {
	Token string `json:"token"`
}

type sessionResponse struct {
	Identity     identityDTO `json:"identity"`
	SessionToken string      `json:"session_token"`
}

type voteRequest struct {
	Type string `json:"type"`
}

type voteResponse struct {
	Upvotes   int `json:"upvotes"`
	Downvotes int `json:"downvotes"`
}

type uploadRequest struct {
	CourseCode      string   `json:"course_code"`
	CourseName      string   `json:"course_name"`
	Description     string   `json:"description"`
	ProfessorNames  []string `json:"professor_names"`
	Tags            []string `json:"tags"`
	FileURL         string   `json:"file_url"`
	PreviewImageURL string   `json:"preview_image_url"`
}

func (u uploadRequest) note() models.Note {
	return models.Note{
		CourseCode:      strings.TrimSpace(u.CourseCode),
		CourseName:      strings.TrimSpace(u.CourseName),
		Description:     u.Description,
		ProfessorNames:  u.ProfessorNames,
		Tags:            u.Tags,
		FileURL:         strings.TrimSpace(u.FileURL),
		PreviewImageURL: u.PreviewImageURL,
	}
}

type noteDTO struct {
	ID              string      `json:"id"`
	CourseCode      string      `json:"course_code"`
	CourseName      string      `json:"course_name"`
	Description     string      `json:"description,omitempty"`
	ProfessorNames  []string    `json:"professor_names,omitempty"`
	Tags            []string    `json:"tags,omitempty"`
	FileURL         string      `json:"file_url"`
	PreviewImageURL string      `json:"preview_image_url,omitempty"`
	Uploader        identityDTO `json:"uploader"`
	CreatedAt       time.Time   `json:"created_at"`
	Upvotes         int         `json:"upvotes"`
	Downvotes       int         `json:"downvotes"`
	UserVote        *string     `json:"user_vote"`
}

type notesResponse struct {
	Notes []noteDTO `json:"notes"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toIdentity(u models.User) identityDTO {
	return identityDTO{ID: u.ID, DisplayName: u.DisplayName, Reputation: u.Reputation}
}

func toNote(v services.NoteView) noteDTO {
	d := noteDTO{
		ID:              v.ID,
		CourseCode:      v.CourseCode,
		CourseName:      v.CourseName,
		Description:     v.Description,
		ProfessorNames:  v.ProfessorNames,
		Tags:            v.Tags,
		FileURL:         v.FileURL,
		PreviewImageURL: v.PreviewImageURL,
		Uploader:        toIdentity(v.Uploader),
		CreatedAt:       v.CreatedAt,
		Upvotes:         v.Upvotes,
		Downvotes:       v.Downvotes,
	}
	if v.UserVote != models.BallotNone {
		s := string(v.UserVote)
		d.UserVote = &s
	}
	return d
}

func toNotes(vs []services.NoteView) notesResponse {
	out := notesResponse{Notes: make([]noteDTO, 0, len(vs))}
	for _, v := range vs {
		out.Notes = append(out.Notes, toNote(v))
	}
	return out
}

// ballotFor maps the wire vote type to a ballot.
func ballotFor(t string) (models.Ballot, bool) {
	switch t {
	case "up":
		return models.BallotUp, true
	case "down":
		return models.BallotDown, true
	case "remove":
		return models.BallotNone, true
	default:
		return models.BallotNone, false
	}
}
