package models

import (
	"fmt"
	"strings"
)

// Vote is the caller's ballot on a note.
type Vote int8

const (
	VoteNone Vote = iota
	VoteUp
	VoteDown
)

func (v Vote) String() string {
	switch v {
	case VoteUp:
		return "up"
	case VoteDown:
		return "down"
	default:
		return "none"
	}
}

// ParseVote accepts "up"/"upvote", "down"/"downvote" and ""/"none".
func ParseVote(s string) (Vote, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "upvote":
		return VoteUp, nil
	case "down", "downvote":
		return VoteDown, nil
	case "", "none", "null":
		return VoteNone, nil
	default:
		return VoteNone, fmt.Errorf("unknown vote %q", s)
	}
}

func (v Vote) MarshalText() ([]byte, error) {
	if v == VoteNone {
		return []byte{}, nil
	}
	return []byte(v.String()), nil
}

func (v *Vote) UnmarshalText(b []byte) error {
	parsed, err := ParseVote(string(b))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// VoteAction is the mutation sent to the vote endpoint.
type VoteAction string

const (
	ActionUp     VoteAction = "up"
	ActionDown   VoteAction = "down"
	ActionRemove VoteAction = "remove"
)

// Valid reports whether a is one of the three accepted actions.
func (a VoteAction) Valid() bool {
	return a == ActionUp || a == ActionDown || a == ActionRemove
}

// VoteState is the per-note vote triple plus the in-flight marker.
type VoteState struct {
	UserVote  Vote
	Upvotes   int
	Downvotes int
	InFlight  bool
}

// VoteCounts is the tally returned by the vote endpoint.
type VoteCounts struct {
	Upvotes   int `json:"upvotes"`
	Downvotes int `json:"downvotes"`
}
