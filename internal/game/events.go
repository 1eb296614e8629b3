package game

import "time"

// EventType identifies a round event.
type EventType string

const (
	EventTypeRoundStarted      EventType = "round_started"
	EventTypeTurnStarted       EventType = "turn_started"
	EventTypeQuestionAsked     EventType = "question_asked"
	EventTypeAnswerGiven       EventType = "answer_given"
	EventTypeVotingStarted     EventType = "voting_started"
	EventTypeVoteRecorded      EventType = "vote_recorded"
	EventTypeVotingResolved    EventType = "voting_resolved"
	EventTypeRoundEnded        EventType = "round_ended"
	EventTypeInactivityWarning EventType = "inactivity_warning"
	EventTypeRoundReset        EventType = "round_reset"
)

// String returns the string representation of the event type.
func (et EventType) String() string { return string(et) }

// Event is any discrete occurrence the coordinator emits. The transport
// layer forwards these to clients; it contains no business logic itself.
type Event interface {
	EventType() EventType
	Timestamp() time.Time
}

// RoundStartedEvent is published when a round begins. Location is the real
// secret; the transport must redact it for the outsider.
type RoundStartedEvent struct {
	RoundID   string
	Lobby     string
	Location  string
	Players   []Player
	Order     []string
	timestamp time.Time
}

func (e RoundStartedEvent) EventType() EventType { return EventTypeRoundStarted }
func (e RoundStartedEvent) Timestamp() time.Time { return e.timestamp }

// TurnStartedEvent is published at the start of each turn. Target is hidden
// from players until the question lands, but the snapshot carries it for the
// transport to act on (AI scheduling, spectators).
type TurnStartedEvent struct {
	RoundID    string
	TurnNumber int
	Asker      Player
	Target     Player
	timestamp  time.Time
}

func (e TurnStartedEvent) EventType() EventType { return EventTypeTurnStarted }
func (e TurnStartedEvent) Timestamp() time.Time { return e.timestamp }

// QuestionAskedEvent is published when a question is recorded.
type QuestionAskedEvent struct {
	RoundID   string
	Exchange  Exchange
	timestamp time.Time
}

func (e QuestionAskedEvent) EventType() EventType { return EventTypeQuestionAsked }
func (e QuestionAskedEvent) Timestamp() time.Time { return e.timestamp }

// AnswerGivenEvent is published when the pending exchange completes.
type AnswerGivenEvent struct {
	RoundID            string
	Exchange           Exchange
	QuestionCount      int
	QuestionsUntilVote int
	CanVote            bool
	timestamp          time.Time
}

func (e AnswerGivenEvent) EventType() EventType { return EventTypeAnswerGiven }
func (e AnswerGivenEvent) Timestamp() time.Time { return e.timestamp }

// VotingStartedEvent is published when the round moves to the voting phase.
type VotingStartedEvent struct {
	RoundID   string
	Eligible  []Player
	timestamp time.Time
}

func (e VotingStartedEvent) EventType() EventType { return EventTypeVotingStarted }
func (e VotingStartedEvent) Timestamp() time.Time { return e.timestamp }

// VoteRecordedEvent is published after each accepted ballot. It reveals who
// voted, not what they chose.
type VoteRecordedEvent struct {
	RoundID     string
	Voter       Player
	BallotsCast int
	Eligible    int
	timestamp   time.Time
}

func (e VoteRecordedEvent) EventType() EventType { return EventTypeVoteRecorded }
func (e VoteRecordedEvent) Timestamp() time.Time { return e.timestamp }

// VotingResolvedEvent is published when a completed vote has been resolved.
type VotingResolvedEvent struct {
	RoundID   string
	Tally     Tally
	Result    VoteResult
	timestamp time.Time
}

func (e VotingResolvedEvent) EventType() EventType { return EventTypeVotingResolved }
func (e VotingResolvedEvent) Timestamp() time.Time { return e.timestamp }

// RoundEndedEvent is published exactly once per finished round.
type RoundEndedEvent struct {
	RoundID   string
	Winner    Winner
	Reason    string
	Location  string
	Outsider  Player
	Wins      WinTally
	timestamp time.Time
}

func (e RoundEndedEvent) EventType() EventType { return EventTypeRoundEnded }
func (e RoundEndedEvent) Timestamp() time.Time { return e.timestamp }

// InactivityWarningEvent is published one warning interval before an idle
// lobby is reset.
type InactivityWarningEvent struct {
	RoundID   string
	ResetIn   time.Duration
	timestamp time.Time
}

func (e InactivityWarningEvent) EventType() EventType { return EventTypeInactivityWarning }
func (e InactivityWarningEvent) Timestamp() time.Time { return e.timestamp }

// RoundResetEvent is published when the lobby returns to the waiting state.
type RoundResetEvent struct {
	Lobby     string
	Reason    string
	timestamp time.Time
}

func (e RoundResetEvent) EventType() EventType { return EventTypeRoundReset }
func (e RoundResetEvent) Timestamp() time.Time { return e.timestamp }

// Subscriber receives round events.
type Subscriber interface {
	OnEvent(event Event)
}

// EventBus fans round events out to subscribers.
type EventBus interface {
	Subscribe(sub Subscriber)
	Unsubscribe(sub Subscriber)
	Publish(event Event)
}

// simpleEventBus is an in-memory bus. Publish happens on the coordinator's
// actor goroutine, so delivery is serialized without extra locking.
type simpleEventBus struct {
	subscribers []Subscriber
}

// NewEventBus creates an empty in-memory event bus.
func NewEventBus() EventBus {
	return &simpleEventBus{}
}

func (b *simpleEventBus) Subscribe(sub Subscriber) {
	b.subscribers = append(b.subscribers, sub)
}

func (b *simpleEventBus) Unsubscribe(sub Subscriber) {
	for i, s := range b.subscribers {
		if s == sub {
			b.subscribers = append(b.subscribers[:i], b.subscribers[i+1:]...)
			break
		}
	}
}

func (b *simpleEventBus) Publish(event Event) {
	for _, sub := range b.subscribers {
		sub.OnEvent(event)
	}
}
