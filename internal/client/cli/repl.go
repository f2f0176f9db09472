package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/notehub/internal/client/models"
	"github.com/dmitrijs2005/notehub/internal/common"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. App satisfies it.
type execIface interface {
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Feed(ctx context.Context, args []string) error
	Search(ctx context.Context, args []string) error
	Show(ctx context.Context, args []string) error
	Vote(ctx context.Context, v models.Vote, args []string) error
	Open(ctx context.Context, args []string) error
	Upload(ctx context.Context, args []string) error
	Stats(ctx context.Context) error
	Cancel(ctx context.Context) error
	History(ctx context.Context, args []string) error
}

const helpText = `Available commands:
  login | logout | whoami
  feed [n] | search <query> | show <id>
  up <id> | down <id> | open <id>
  upload <course_code> <file_url> [course name]
  cancel | history [id] | stats | exit`

// runREPL reads commands from reader until EOF, "exit" or "quit" and
// dispatches them to a. Command errors are printed and never end the loop.
// Dialogs started by a command read from the same reader.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("notehub %s> ", statusFn()))
		line, readErr := reader.ReadString('\n')
		if readErr != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var err error
		switch cmd {
		case "help", "?":
			printlnFn(helpText)
		case "login":
			err = a.Login(ctx)
		case "logout":
			err = a.Logout(ctx)
		case "whoami":
			err = a.WhoAmI(ctx)
		case "feed", "ls":
			err = a.Feed(ctx, args)
		case "search":
			err = a.Search(ctx, args)
		case "show":
			err = a.Show(ctx, args)
		case "up":
			err = a.Vote(ctx, models.VoteUp, args)
		case "down":
			err = a.Vote(ctx, models.VoteDown, args)
		case "open":
			err = a.Open(ctx, args)
		case "upload":
			err = a.Upload(ctx, args)
		case "stats":
			err = a.Stats(ctx)
		case "cancel":
			err = a.Cancel(ctx)
		case "history":
			err = a.History(ctx, args)
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil && !errors.Is(err, common.ErrAuthRequired) {
			printlnFn("Error:", err)
		}
	}
}
