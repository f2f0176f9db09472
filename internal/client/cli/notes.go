package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/notehub/internal/client/models"
	"github.com/dmitrijs2005/notehub/internal/common"
)

const defaultFeedSize = 10

func (a *App) Feed(ctx context.Context, args []string) error {
	n := defaultFeedSize
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v <= 0 {
			return fmt.Errorf("usage: feed [n], n must be a positive number")
		}
		n = v
	}

	notes, err := a.feed.Recent(ctx, n)
	if err != nil {
		return err
	}
	printNotes(notes)
	return nil
}

func (a *App) Search(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: search <query>")
	}
	notes, err := a.feed.Search(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	printNotes(notes)
	return nil
}

func (a *App) Show(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: show <id>")
	}
	n, err := a.feed.Show(ctx, args[0])
	if err != nil {
		return err
	}
	printlnFn(formatNote(*n))
	if n.Description != "" {
		printlnFn("  " + n.Description)
	}
	if len(n.ProfessorNames) > 0 {
		printlnFn("  Professors: " + strings.Join(n.ProfessorNames, ", "))
	}
	if len(n.Tags) > 0 {
		printlnFn("  Tags: " + strings.Join(n.Tags, ", "))
	}
	return nil
}

func (a *App) Vote(ctx context.Context, v models.Vote, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: %s <id>", v)
	}
	id := args[0]

	err := a.feed.Vote(ctx, id, v)
	switch {
	case errors.Is(err, common.ErrAuthRequired):
		return a.awaitSignIn(ctx)
	case errors.Is(err, common.ErrVoteConflict):
		printlnFn("A vote on this note is still being sent, try again in a moment.")
		return nil
	case err != nil:
		return err
	}

	if st, ok := a.feed.VoteState(id); ok {
		printlnFn(formatVote(id, st))
	}
	return nil
}

func (a *App) Open(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: open <id>")
	}
	err := a.feed.Download(ctx, args[0])
	if errors.Is(err, common.ErrAuthRequired) {
		return a.awaitSignIn(ctx)
	}
	return err
}

// Upload submits note metadata. Optional fields are asked for after the
// command line; an empty answer skips them.
func (a *App) Upload(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: upload <course_code> <file_url> [course name]")
	}
	draft := models.NoteDraft{
		CourseCode: args[0],
		FileURL:    args[1],
		CourseName: strings.Join(args[2:], " "),
	}

	var err error
	if draft.Description, err = a.optionalText("Description (optional)"); err != nil {
		return err
	}
	profs, err := a.optionalText("Professors, comma separated (optional)")
	if err != nil {
		return err
	}
	draft.ProfessorNames = splitList(profs)
	tags, err := a.optionalText("Tags, comma separated (optional)")
	if err != nil {
		return err
	}
	draft.Tags = splitList(tags)

	err = a.feed.Upload(ctx, draft)
	if errors.Is(err, common.ErrAuthRequired) {
		return a.awaitSignIn(ctx)
	}
	return err
}

func (a *App) optionalText(prompt string) (string, error) {
	v, err := getSimpleText(a.reader, prompt, a.out)
	if errors.Is(err, io.EOF) {
		return "", nil
	}
	return v, err
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (a *App) Cancel(_ context.Context) error {
	if a.gate.Cancel() {
		printlnFn("Pending action cancelled.")
	} else {
		printlnFn("Nothing to cancel.")
	}
	return nil
}

func (a *App) History(ctx context.Context, args []string) error {
	noteID := ""
	if len(args) > 0 {
		noteID = args[0]
	}
	entries, err := a.feed.History(ctx, noteID, 20)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		printlnFn("No votes recorded.")
		return nil
	}
	for _, e := range entries {
		line := fmt.Sprintf("%s  %-10s %-7s %s", e.CreatedAt.Local().Format("2006-01-02 15:04:05"), e.NoteID, e.Action, e.Outcome)
		if e.Detail != "" {
			line += "  (" + e.Detail + ")"
		}
		printlnFn(line)
	}
	return nil
}

func printNotes(notes []models.Note) {
	if len(notes) == 0 {
		printlnFn("No notes found.")
		return
	}
	for _, n := range notes {
		printlnFn(formatNote(n))
	}
}

func formatNote(n models.Note) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", n.ID, n.CourseCode)
	if n.CourseName != "" {
		fmt.Fprintf(&b, " %s", n.CourseName)
	}
	fmt.Fprintf(&b, "  +%d -%d", n.Upvotes, n.Downvotes)
	if n.UserVote != models.VoteNone {
		fmt.Fprintf(&b, "  you: %s", n.UserVote)
	}
	if n.Uploader.DisplayName != "" {
		fmt.Fprintf(&b, "  by %s", n.Uploader.DisplayName)
	}
	return b.String()
}

func formatVote(id string, st models.VoteState) string {
	return fmt.Sprintf("[%s] +%d -%d  you: %s", id, st.Upvotes, st.Downvotes, st.UserVote)
}

// Stats prints the client metrics collected in this process.
func (a *App) Stats(_ context.Context) error {
	families, err := a.gatherer.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}

	found := false
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), "notehub_client_") {
			continue
		}
		for _, m := range mf.GetMetric() {
			var v float64
			switch {
			case m.GetCounter() != nil:
				v = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				v = m.GetGauge().GetValue()
			default:
				continue
			}
			name := mf.GetName()
			for _, lp := range m.GetLabel() {
				name += fmt.Sprintf(" %s=%s", lp.GetName(), lp.GetValue())
			}
			printlnFn(fmt.Sprintf("%-50s %g", name, v))
			found = true
		}
	}
	if !found {
		printlnFn("No statistics yet.")
	}
	return nil
}
