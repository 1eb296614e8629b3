package game

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outsidergame/outsider/internal/randutil"
)

type mediatorFixture struct {
	registry *Registry
	mediator *Mediator
	round    *Round
}

func newMediatorFixture(t *testing.T) *mediatorFixture {
	t.Helper()
	reg := NewRegistry()
	for _, name := range []string{"Alice", "Bob", "Carol"} {
		_, err := reg.AddPlayer("id-"+name, name, false)
		require.NoError(t, err)
	}
	turns := NewTurnEngine(randutil.New(42))
	now := func() time.Time { return time.Unix(1000, 0) }
	m := NewMediator(reg, turns, DefaultConfig(), now)
	r := &Round{
		State:         StatePlaying,
		Order:         []string{"id-Alice", "id-Bob", "id-Carol"},
		CurrentAsker:  "id-Alice",
		CurrentTarget: "id-Bob",
	}
	return &mediatorFixture{registry: reg, mediator: m, round: r}
}

func TestAskQuestionRecordsExchange(t *testing.T) {
	f := newMediatorFixture(t)

	ex, err := f.mediator.AskQuestion(f.round, "id-Alice", "id-Bob", "  What do you wear here?  ")
	require.NoError(t, err)
	assert.Equal(t, "What do you wear here?", ex.Question)
	assert.Equal(t, "Alice", ex.AskerName)
	assert.Equal(t, "Bob", ex.TargetName)
	assert.False(t, ex.Answered())

	p, err := f.registry.Get("id-Alice")
	require.NoError(t, err)
	assert.Equal(t, 1, p.QuestionsAsked)
}

func TestAskQuestionRejectsOutOfTurn(t *testing.T) {
	f := newMediatorFixture(t)

	_, err := f.mediator.AskQuestion(f.round, "id-Bob", "id-Carol", "hm?")
	assert.ErrorIs(t, err, ErrNotYourTurn)
}

func TestAskQuestionRejectsWrongTarget(t *testing.T) {
	f := newMediatorFixture(t)

	_, err := f.mediator.AskQuestion(f.round, "id-Alice", "id-Carol", "hm?")
	assert.ErrorIs(t, err, ErrNotYourTurn)
}

func TestAskQuestionRejectsWhilePending(t *testing.T) {
	f := newMediatorFixture(t)

	_, err := f.mediator.AskQuestion(f.round, "id-Alice", "id-Bob", "first?")
	require.NoError(t, err)
	_, err = f.mediator.AskQuestion(f.round, "id-Alice", "id-Bob", "second?")
	assert.ErrorIs(t, err, ErrNotYourTurn)
}

func TestAskQuestionValidatesText(t *testing.T) {
	f := newMediatorFixture(t)

	_, err := f.mediator.AskQuestion(f.round, "id-Alice", "id-Bob", "   ")
	assert.ErrorIs(t, err, ErrEmptyInput)

	long := strings.Repeat("q", 201)
	_, err = f.mediator.AskQuestion(f.round, "id-Alice", "id-Bob", long)
	assert.ErrorIs(t, err, ErrInputTooLong)
}

func TestAskQuestionRejectsOutsidePlayingState(t *testing.T) {
	f := newMediatorFixture(t)
	f.round.State = StateVoting

	_, err := f.mediator.AskQuestion(f.round, "id-Alice", "id-Bob", "too late?")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestSubmitAnswerCompletesExchangeAndAdvances(t *testing.T) {
	f := newMediatorFixture(t)

	_, err := f.mediator.AskQuestion(f.round, "id-Alice", "id-Bob", "What do you wear here?")
	require.NoError(t, err)

	ex, err := f.mediator.SubmitAnswer(f.round, "id-Bob", "Something comfortable.")
	require.NoError(t, err)
	assert.True(t, ex.Answered())
	assert.Equal(t, "Something comfortable.", ex.Answer)

	assert.Equal(t, 1, f.round.QuestionCount)
	assert.Equal(t, 1, f.round.TurnIndex)
	assert.Equal(t, "id-Bob", f.round.CurrentAsker)
	assert.NotEqual(t, f.round.CurrentAsker, f.round.CurrentTarget)

	p, err := f.registry.Get("id-Bob")
	require.NoError(t, err)
	assert.Equal(t, 1, p.QuestionsAnswered)
}

func TestSubmitAnswerRejectsNonTarget(t *testing.T) {
	f := newMediatorFixture(t)

	_, err := f.mediator.AskQuestion(f.round, "id-Alice", "id-Bob", "What do you wear here?")
	require.NoError(t, err)

	_, err = f.mediator.SubmitAnswer(f.round, "id-Carol", "Not my question.")
	assert.ErrorIs(t, err, ErrNotYourTurn)
}

func TestSubmitAnswerRejectsWithoutPendingQuestion(t *testing.T) {
	f := newMediatorFixture(t)

	_, err := f.mediator.SubmitAnswer(f.round, "id-Bob", "Answering nothing.")
	assert.ErrorIs(t, err, ErrNotYourTurn)
}

func TestSubmitAnswerValidatesText(t *testing.T) {
	f := newMediatorFixture(t)

	_, err := f.mediator.AskQuestion(f.round, "id-Alice", "id-Bob", "What do you wear here?")
	require.NoError(t, err)

	_, err = f.mediator.SubmitAnswer(f.round, "id-Bob", "")
	assert.ErrorIs(t, err, ErrEmptyInput)

	long := strings.Repeat("a", 301)
	_, err = f.mediator.SubmitAnswer(f.round, "id-Bob", long)
	assert.ErrorIs(t, err, ErrInputTooLong)

	// The exchange is still pending after rejected answers.
	_, pending := f.round.CurrentExchange()
	assert.True(t, pending)
	assert.Zero(t, f.round.QuestionCount)
}
