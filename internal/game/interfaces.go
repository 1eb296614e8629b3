package game

import (
	"context"
	"time"
)

// QuestionPrompt carries everything the text generator needs to produce a
// question for the current asker.
type QuestionPrompt struct {
	AskerName   string
	TargetName  string
	IsOutsider  bool
	Location    string // empty for the outsider
	Personality string
	History     []Exchange
}

// AnswerPrompt carries everything the text generator needs to produce an
// answer to the pending question.
type AnswerPrompt struct {
	Question    string
	AskerName   string
	TargetName  string
	IsOutsider  bool
	Location    string // empty for the outsider
	Personality string
	History     []Exchange
}

// TextGenerationService produces question and answer text for AI players.
// Implementations must not fail: on any internal error they return a
// deterministic canned fallback instead.
type TextGenerationService interface {
	GenerateQuestion(ctx context.Context, prompt QuestionPrompt) string
	GenerateAnswer(ctx context.Context, prompt AnswerPrompt) string
}

// GuessQuery is the outsider's view of the round when attempting to deduce
// the secret location.
type GuessQuery struct {
	History            []Exchange
	CandidateLocations []string
	QuestionsSoFar     int
}

// GuessResult is a location guess with a confidence score. Location is empty
// when the guesser abstains.
type GuessResult struct {
	Location   string
	Confidence float64
	Reasoning  string
}

// LocationGuessService analyses the conversation so far and guesses the
// secret location. Implementations never fail; they abstain instead.
type LocationGuessService interface {
	Guess(ctx context.Context, query GuessQuery) GuessResult
}

// WinTally is the running score across rounds.
type WinTally struct {
	HumanWins int `json:"human_wins"`
	AIWins    int `json:"ai_wins"`
}

// StatisticsSink records round outcomes.
type StatisticsSink interface {
	RecordWin(w Winner)
	Tally() WinTally
}

// RoundSnapshot is the persisted view of a round plus its roster.
type RoundSnapshot struct {
	Round   Round     `json:"round"`
	Players []Player  `json:"players"`
	SavedAt time.Time `json:"saved_at"`
}

// PersistenceGateway stores round snapshots and win tallies keyed by lobby
// code. The core treats it as a plain key-value store.
type PersistenceGateway interface {
	SaveRound(ctx context.Context, lobby string, snap *RoundSnapshot) error
	LoadRound(ctx context.Context, lobby string) (*RoundSnapshot, error)
	SaveTally(ctx context.Context, lobby string, tally WinTally) error
	LoadTally(ctx context.Context, lobby string) (WinTally, error)
	DeleteRound(ctx context.Context, lobby string) error
}
