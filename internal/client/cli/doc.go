// Package cli implements the interactive NoteHub terminal client.
//
// The REPL reads one command per line:
//
//	help                 show available commands
//	login                sign in with an identity-provider token
//	logout               revoke and forget the session
//	whoami               show the current session
//	feed [n]             list the n most recent notes
//	search <query>       full-text search
//	show <id>            show one note
//	up <id> | down <id>  vote; pressing the same vote again removes it
//	open <id>            print the download link of a note
//	upload <code> <url> [name]
//	                     submit a note; optional fields are asked for
//	cancel               drop the action waiting for sign-in
//	history [id]         recent vote attempts recorded locally
//	stats                vote counters of this process
//	exit | quit          leave the program
//
// up, down, open and upload need a signed-in user. When there is none the action is
// parked, a sign-in prompt is shown and the action runs once sign-in
// succeeds. An empty token at the prompt cancels it.
package cli
