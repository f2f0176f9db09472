package votes

import (
	"context"

	"github.com/dmitrijs2005/notehub/internal/client/models"
	"github.com/dmitrijs2005/notehub/internal/client/repositories/journal"
	"github.com/dmitrijs2005/notehub/internal/logging"
)

// JournalObserver appends every outcome to repo. Write failures are logged
// and never affect the vote.
func JournalObserver(repo journal.Repository, log logging.Logger) Observer {
	if log == nil {
		log = logging.Nop{}
	}
	return func(ctx context.Context, o Outcome) {
		entry := models.JournalEntry{
			NoteID:  o.NoteID,
			Action:  o.Action,
			Outcome: o.Result,
		}
		if o.Err != nil {
			entry.Detail = o.Err.Error()
		}
		if _, err := repo.Append(ctx, entry); err != nil {
			log.Warn(ctx, "failed to journal vote", "note_id", o.NoteID, "error", err)
		}
	}
}
