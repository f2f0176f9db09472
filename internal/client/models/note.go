package models

import "time"

// Note is a shared course-notes document as listed by the API.
type Note struct {
	ID              string    `json:"id"`
	CourseCode      string    `json:"course_code"`
	CourseName      string    `json:"course_name"`
	Description     string    `json:"description,omitempty"`
	ProfessorNames  []string  `json:"professor_names,omitempty"`
	Tags            []string  `json:"tags,omitempty"`
	FileURL         string    `json:"file_url"`
	PreviewImageURL string    `json:"preview_image_url,omitempty"`
	Uploader        Identity  `json:"uploader"`
	CreatedAt       time.Time `json:"created_at"`
	Upvotes         int       `json:"upvotes"`
	Downvotes       int       `json:"downvotes"`
	// UserVote is only populated when the request carried a session token.
	UserVote Vote `json:"user_vote"`
}

// VoteState returns the server-supplied vote triple for this note.
func (n Note) VoteState() VoteState {
	return VoteState{UserVote: n.UserVote, Upvotes: n.Upvotes, Downvotes: n.Downvotes}
}

// NoteDraft is the metadata submitted when uploading a note. The file is
// referenced by URL.
type NoteDraft struct {
	CourseCode      string   `json:"course_code"`
	CourseName      string   `json:"course_name,omitempty"`
	Description     string   `json:"description,omitempty"`
	ProfessorNames  []string `json:"professor_names,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	FileURL         string   `json:"file_url"`
	PreviewImageURL string   `json:"preview_image_url,omitempty"`
}

// Valid reports whether the draft carries the required fields.
func (d NoteDraft) Valid() bool {
	return d.CourseCode != "" && d.FileURL != ""
}
