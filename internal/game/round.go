package game

import "time"

// State is the lifecycle state of a round.
type State string

const (
	StateWaiting  State = "waiting"
	StatePlaying  State = "playing"
	StateVoting   State = "voting"
	StateFinished State = "finished"
)

// Winner identifies which side won a round.
type Winner string

const (
	WinnerNone   Winner = ""
	WinnerHumans Winner = "humans"
	WinnerAI     Winner = "ai"
)

// Exchange is one question-and-answer pair between an asker and a target.
// It is created when the question is asked and immutable once answered.
type Exchange struct {
	Asker      string    `json:"asker"`
	AskerName  string    `json:"asker_name"`
	Target     string    `json:"target"`
	TargetName string    `json:"target_name"`
	Question   string    `json:"question"`
	Answer     string    `json:"answer,omitempty"`
	AskedAt    time.Time `json:"asked_at"`
	AnsweredAt time.Time `json:"answered_at,omitempty"`
}

// Answered reports whether the exchange has been completed.
func (e *Exchange) Answered() bool {
	return e.Answer != ""
}

// Round holds the state of a single play-through from location assignment to
// a declared winner. It is owned by the coordinator's actor loop.
type Round struct {
	ID            string     `json:"id"`
	Lobby         string     `json:"lobby"`
	Location      string     `json:"location"`
	Order         []string   `json:"order"`
	TurnIndex     int        `json:"turn_index"`
	QuestionCount int        `json:"question_count"`
	State         State      `json:"state"`
	CurrentAsker  string     `json:"current_asker"`
	CurrentTarget string     `json:"current_target"`
	Winner        Winner     `json:"winner"`
	WinReason     string     `json:"win_reason"`
	Exchanges     []Exchange `json:"exchanges"`
	StartedAt     time.Time  `json:"started_at"`
	EndedAt       time.Time  `json:"ended_at,omitempty"`
}

// CurrentExchange returns the most recent exchange if it is still awaiting an
// answer.
func (r *Round) CurrentExchange() (*Exchange, bool) {
	if len(r.Exchanges) == 0 {
		return nil, false
	}
	last := &r.Exchanges[len(r.Exchanges)-1]
	if last.Answered() {
		return nil, false
	}
	return last, true
}

// History returns completed exchanges, oldest first. The slice aliases round
// state and must not be mutated.
func (r *Round) History() []Exchange {
	var done []Exchange
	for _, e := range r.Exchanges {
		if e.Answered() {
			done = append(done, e)
		}
	}
	return done
}

// Config carries the tunable knobs of a round. Zero values are replaced by
// DefaultConfig values when the coordinator is constructed.
type Config struct {
	QuestionQuota     int           // completed exchanges required before voting
	GuessThreshold    int           // exchanges before the outsider may guess
	GuessConfidence   float64       // minimum confidence to commit to a guess
	MaxQuestionLen    int           // question length bound, runes
	MaxAnswerLen      int           // answer length bound, runes
	AIQuestionDelay   time.Duration // humanlike pause before an AI asks
	AIAnswerDelay     time.Duration // humanlike pause before an AI answers
	AIVoteDelay       time.Duration // humanlike pause before an AI votes
	GenerateTimeout   time.Duration // budget for external generation calls
	InactivityWarning time.Duration // warning after this much silence
	InactivityReset   time.Duration // lobby reset after this much silence
}

// DefaultConfig returns the default round configuration.
func DefaultConfig() Config {
	return Config{
		QuestionQuota:     5,
		GuessThreshold:    3,
		GuessConfidence:   0.6,
		MaxQuestionLen:    200,
		MaxAnswerLen:      300,
		AIQuestionDelay:   4 * time.Second,
		AIAnswerDelay:     3 * time.Second,
		AIVoteDelay:       2 * time.Second,
		GenerateTimeout:   15 * time.Second,
		InactivityWarning: 60 * time.Second,
		InactivityReset:   120 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.QuestionQuota <= 0 {
		c.QuestionQuota = def.QuestionQuota
	}
	if c.GuessThreshold <= 0 {
		c.GuessThreshold = def.GuessThreshold
	}
	if c.GuessConfidence <= 0 {
		c.GuessConfidence = def.GuessConfidence
	}
	if c.MaxQuestionLen <= 0 {
		c.MaxQuestionLen = def.MaxQuestionLen
	}
	if c.MaxAnswerLen <= 0 {
		c.MaxAnswerLen = def.MaxAnswerLen
	}
	if c.AIQuestionDelay <= 0 {
		c.AIQuestionDelay = def.AIQuestionDelay
	}
	if c.AIAnswerDelay <= 0 {
		c.AIAnswerDelay = def.AIAnswerDelay
	}
	if c.AIVoteDelay <= 0 {
		c.AIVoteDelay = def.AIVoteDelay
	}
	if c.GenerateTimeout <= 0 {
		c.GenerateTimeout = def.GenerateTimeout
	}
	if c.InactivityWarning <= 0 {
		c.InactivityWarning = def.InactivityWarning
	}
	if c.InactivityReset <= 0 {
		c.InactivityReset = def.InactivityReset
	}
	return c
}
