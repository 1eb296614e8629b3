package game

import "errors"

// Validation and state errors surfaced to callers. All of these are
// recoverable: the action is rejected and no round state is mutated.
var (
	ErrNotYourTurn         = errors.New("it is not your turn")
	ErrEmptyInput          = errors.New("input must not be empty")
	ErrInputTooLong        = errors.New("input exceeds the length limit")
	ErrAlreadyVoted        = errors.New("you have already voted this round")
	ErrSelfVote            = errors.New("you cannot vote for yourself")
	ErrInvalidTarget       = errors.New("invalid vote target")
	ErrNotEligible         = errors.New("you are not eligible to vote")
	ErrVotingClosed        = errors.New("voting is not open")
	ErrInvalidState        = errors.New("round is not in the required state")
	ErrQuotaNotMet         = errors.New("not enough questions asked to start voting")
	ErrInsufficientPlayers = errors.New("need at least 2 active players")
	ErrEmptyRoster         = errors.New("no players in roster")
	ErrNoValidTarget       = errors.New("no valid question target available")
	ErrOutsiderAssigned    = errors.New("outsider already assigned this round")
	ErrOutsiderNotAI       = errors.New("outsider must be an AI player")
	ErrPlayerNotFound      = errors.New("player not found")
	ErrPlayerExists        = errors.New("player already joined")
	ErrCoordinatorClosed   = errors.New("round coordinator is closed")
)
