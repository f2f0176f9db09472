package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/notehub/internal/server/models"
	"github.com/dmitrijs2005/notehub/internal/server/repositories/repomanager"
)

// SeedNote is one entry of a seed file.
type SeedNote struct {
	ID              string    `json:"id"`
	CourseCode      string    `json:"course_code"`
	CourseName      string    `json:"course_name"`
	Description     string    `json:"description"`
	ProfessorNames  []string  `json:"professor_names"`
	Tags            []string  `json:"tags"`
	FileURL         string    `json:"file_url"`
	PreviewImageURL string    `json:"preview_image_url"`
	CreatedAt       time.Time `json:"created_at"`
	Uploader        struct {
		Subject     string `json:"subject"`
		DisplayName string `json:"display_name"`
	} `json:"uploader"`
}

// LoadSeedFile reads a JSON array of SeedNote from path and stores it.
// Uploaders are created as if they had signed in. It returns the number of
// notes stored.
func LoadSeedFile(ctx context.Context, m repomanager.RepositoryManager, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read seed file: %w", err)
	}

	var seed []SeedNote
	if err := json.Unmarshal(data, &seed); err != nil {
		return 0, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}
	return Seed(ctx, m, seed)
}

func Seed(ctx context.Context, m repomanager.RepositoryManager, seed []SeedNote) (int, error) {
	ns := NewNoteService(m)
	for i, s := range seed {
		subject := s.Uploader.Subject
		if subject == "" {
			subject = "seed"
		}
		u, err := m.Users().Upsert(ctx, subject, s.Uploader.DisplayName)
		if err != nil {
			return i, err
		}

		_, err = ns.Create(ctx, models.Note{
			ID:              s.ID,
			CourseCode:      s.CourseCode,
			CourseName:      s.CourseName,
			Description:     s.Description,
			ProfessorNames:  s.ProfessorNames,
			Tags:            s.Tags,
			FileURL:         s.FileURL,
			PreviewImageURL: s.PreviewImageURL,
			UploaderID:      u.ID,
			CreatedAt:       s.CreatedAt,
		})
		if err != nil {
			return i, fmt.Errorf("seed note %d: %w", i, err)
		}
	}
	return len(seed), nil
}
