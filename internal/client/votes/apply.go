// Package votes keeps per-note vote state on the client and synchronizes it
// with the server optimistically.
package votes

import "github.com/dmitrijs2005/notehub/internal/client/models"

// Apply returns the state after the user presses requested (Up or Down) while
// in s, together with the action to send. Pressing the current vote again
// removes it. Counts never go below zero. InFlight is carried over unchanged.
func Apply(s models.VoteState, requested models.Vote) (models.VoteState, models.VoteAction) {
	if requested != models.VoteUp && requested != models.VoteDown {
		return s, models.ActionRemove
	}
	next := s

	switch {
	case requested == s.UserVote:
		next.UserVote = models.VoteNone
		adjust(&next, requested, -1)
		return next, models.ActionRemove

	case requested == models.VoteUp:
		if s.UserVote == models.VoteDown {
			adjust(&next, models.VoteDown, -1)
		}
		next.UserVote = models.VoteUp
		adjust(&next, models.VoteUp, +1)
		return next, models.ActionUp

	default:
		if s.UserVote == models.VoteUp {
			adjust(&next, models.VoteUp, -1)
		}
		next.UserVote = models.VoteDown
		adjust(&next, models.VoteDown, +1)
		return next, models.ActionDown
	}
}

func adjust(s *models.VoteState, v models.Vote, delta int) {
	switch v {
	case models.VoteUp:
		s.Upvotes = clamp(s.Upvotes + delta)
	case models.VoteDown:
		s.Downvotes = clamp(s.Downvotes + delta)
	}
}

func clamp(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
