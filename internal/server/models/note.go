package models

import "time"

type Note struct {
	ID              string
	CourseCode      string
	CourseName      string
	Description     string
	ProfessorNames  []string
	Tags            []string
	FileURL         string
	PreviewImageURL string
	UploaderID      string
	CreatedAt       time.Time
	Upvotes         int
	Downvotes       int
}

// Ballot is one user's vote on one note.
type Ballot string

const (
	BallotNone Ballot = ""
	BallotUp   Ballot = "up"
	BallotDown Ballot = "down"
)

// Score is the reputation weight of b.
func (b Ballot) Score() int64 {
	switch b {
	case BallotUp:
		return 1
	case BallotDown:
		return -1
	default:
		return 0
	}
}
