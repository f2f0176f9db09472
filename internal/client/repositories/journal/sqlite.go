package journal

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/notehub/internal/client/models"
	"github.com/dmitrijs2005/notehub/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Append(ctx context.Context, e models.JournalEntry) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO vote_journal (note_id, action, outcome, detail) VALUES (?, ?, ?, ?)`,
		e.NoteID, string(e.Action), e.Outcome, e.Detail)
	if err != nil {
		return 0, fmt.Errorf("failed to append journal entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read journal entry id: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepository) Recent(ctx context.Context, noteID string, limit int) ([]models.JournalEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT id, note_id, action, outcome, detail, created_at FROM vote_journal`
	args := []any{}
	if noteID != "" {
		query += ` WHERE note_id = ?`
		args = append(args, noteID)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select journal entries: %w", err)
	}
	defer rows.Close()

	var result []models.JournalEntry
	for rows.Next() {
		var (
			e      models.JournalEntry
			action string
		)
		if err := rows.Scan(&e.ID, &e.NoteID, &action, &e.Outcome, &e.Detail, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}
		e.Action = models.VoteAction(action)
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
