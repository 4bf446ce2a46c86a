package domain

import "fmt"

// Direction is the action a visitor takes on a quote.
type Direction string

// Vote directions.
const (
	DirectionLike    Direction = "like"
	DirectionDislike Direction = "dislike"
)

// ParseDirection validates a direction string.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(s); d {
	case DirectionLike, DirectionDislike:
		return d, nil
	default:
		return "", fmt.Errorf("unknown vote direction %q", s)
	}
}

// VoteState is a visitor's current reaction to a quote.
type VoteState string

// Vote states. VoteNone is the zero value.
const (
	VoteNone     VoteState = ""
	VoteLiked    VoteState = "like"
	VoteDisliked VoteState = "dislike"
)

// ParseVoteState maps a stored ledger value to a state. Unknown values are
// treated as VoteNone.
func ParseVoteState(s string) VoteState {
	switch VoteState(s) {
	case VoteLiked:
		return VoteLiked
	case VoteDisliked:
		return VoteDisliked
	default:
		return VoteNone
	}
}

// Liked reports whether the state is a like.
func (s VoteState) Liked() bool { return s == VoteLiked }

// Disliked reports whether the state is a dislike.
func (s VoteState) Disliked() bool { return s == VoteDisliked }

// String implements fmt.Stringer.
func (s VoteState) String() string {
	if s == VoteNone {
		return "none"
	}

	return string(s)
}

// VoteTransition is the outcome of applying a direction to a state.
type VoteTransition struct {
	From          VoteState
	To            VoteState
	LikesDelta    int
	DislikesDelta int
}

// Transition applies the toggle protocol:
//
//	none     --like-->    liked     likes+1
//	none     --dislike--> disliked  dislikes+1
//	liked    --like-->    none      likes-1
//	disliked --dislike--> none      dislikes-1
//	liked    --dislike--> disliked  likes-1 dislikes+1
//	disliked --like-->    liked     dislikes-1 likes+1
func Transition(from VoteState, dir Direction) VoteTransition {
	t := VoteTransition{From: from}

	switch dir {
	case DirectionLike:
		switch from {
		case VoteLiked:
			t.To, t.LikesDelta = VoteNone, -1
		case VoteDisliked:
			t.To, t.LikesDelta, t.DislikesDelta = VoteLiked, 1, -1
		default:
			t.To, t.LikesDelta = VoteLiked, 1
		}
	case DirectionDislike:
		switch from {
		case VoteDisliked:
			t.To, t.DislikesDelta = VoteNone, -1
		case VoteLiked:
			t.To, t.LikesDelta, t.DislikesDelta = VoteDisliked, -1, 1
		default:
			t.To, t.DislikesDelta = VoteDisliked, 1
		}
	default:
		t.To = from
	}

	return t
}

// VoteResult is what a visitor sees after voting.
type VoteResult struct {
	QuoteID  int64
	Likes    int
	Dislikes int
	State    VoteState
}

// Session is the per-visitor state carried across requests. ID is an opaque
// anonymous token; Votes is the visitor's vote ledger, one entry per quote
// liked or disliked.
type Session struct {
	ID             string
	CurrentQuoteID int64
	Votes          map[int64]VoteState
}

// NewSession returns an empty session with the given token.
func NewSession(id string) *Session {
	return &Session{ID: id, Votes: make(map[int64]VoteState)}
}

// VoteFor returns the recorded state for a quote.
func (s *Session) VoteFor(quoteID int64) VoteState {
	if s == nil || s.Votes == nil {
		return VoteNone
	}

	return s.Votes[quoteID]
}

// RecordVote stores the state for a quote. VoteNone removes the entry.
func (s *Session) RecordVote(quoteID int64, state VoteState) {
	if s.Votes == nil {
		s.Votes = make(map[int64]VoteState)
	}

	if state == VoteNone {
		delete(s.Votes, quoteID)
		return
	}

	s.Votes[quoteID] = state
}
