package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNames = map[string]string{
	"h1": "Alice",
	"h2": "Bob",
	"h3": "Carol",
	"ai": "Botwell",
}

func openVote(t *testing.T, voters ...string) *VoteEngine {
	t.Helper()
	ve := NewVoteEngine(func() time.Time { return time.Unix(100, 0) })
	ve.StartVoting(voters)
	return ve
}

func TestCastRejectsWhenNotOpen(t *testing.T) {
	ve := NewVoteEngine(nil)
	err := ve.Cast("h1", VoteFor("h2"))
	assert.ErrorIs(t, err, ErrVotingClosed)
}

func TestCastRejectsIneligibleVoter(t *testing.T) {
	ve := openVote(t, "h1", "h2")
	err := ve.Cast("stranger", VoteFor("h1"))
	assert.ErrorIs(t, err, ErrNotEligible)
}

func TestCastRejectsDoubleVote(t *testing.T) {
	ve := openVote(t, "h1", "h2", "h3")
	require.NoError(t, ve.Cast("h1", VoteFor("h2")))
	err := ve.Cast("h1", VoteFor("h3"))
	assert.ErrorIs(t, err, ErrAlreadyVoted)
}

func TestCastRejectsSelfVote(t *testing.T) {
	ve := openVote(t, "h1", "h2")
	err := ve.Cast("h1", VoteFor("h1"))
	assert.ErrorIs(t, err, ErrSelfVote)
}

func TestCastRejectsUnknownTarget(t *testing.T) {
	ve := openVote(t, "h1", "h2")
	err := ve.Cast("h1", VoteFor("ghost"))
	assert.ErrorIs(t, err, ErrInvalidTarget)
}

func TestCastCompletesWhenAllVoted(t *testing.T) {
	ve := openVote(t, "h1", "h2", "h3")
	require.NoError(t, ve.Cast("h1", VoteFor("h3")))
	assert.False(t, ve.IsComplete())
	require.NoError(t, ve.Cast("h2", PassVote()))
	assert.False(t, ve.IsComplete())
	require.NoError(t, ve.Cast("h3", VoteFor("h1")))
	assert.True(t, ve.IsComplete())

	// Completion closes the phase.
	err := ve.Cast("h3", VoteFor("h1"))
	assert.ErrorIs(t, err, ErrVotingClosed)
}

func TestWithdrawCompletesWhenRemainingVotersHaveVoted(t *testing.T) {
	ve := openVote(t, "h1", "h2", "h3")
	require.NoError(t, ve.Cast("h1", VoteFor("h3")))
	require.NoError(t, ve.Cast("h3", VoteFor("h1")))
	require.False(t, ve.IsComplete())

	ve.Withdraw("h2")
	assert.True(t, ve.IsComplete(), "a departed voter must not hold the vote open")
}

func TestWithdrawKeepsCastBallot(t *testing.T) {
	ve := openVote(t, "h1", "h2", "h3")
	require.NoError(t, ve.Cast("h1", VoteFor("h3")))

	ve.Withdraw("h1")
	assert.False(t, ve.IsComplete(), "h2 and h3 still owe ballots")

	tally := ve.CurrentTally()
	assert.Equal(t, 1, tally.Ballots)
	assert.Equal(t, 1, tally.Counts["h3"], "the ballot cast before leaving still counts")

	require.NoError(t, ve.Cast("h2", PassVote()))
	require.NoError(t, ve.Cast("h3", PassVote()))
	assert.True(t, ve.IsComplete())
}

func TestWithdrawIgnoresUnknownVoterAndClosedPhase(t *testing.T) {
	ve := openVote(t, "h1", "h2")
	ve.Withdraw("stranger")
	assert.False(t, ve.IsComplete())
	assert.Equal(t, 2, ve.EligibleCount())

	ve.ForceComplete()
	ve.Withdraw("h1")
	assert.Equal(t, 2, ve.EligibleCount(), "withdraw is a no-op once the phase closed")
}

func TestCurrentTallyCountsVotesAndPasses(t *testing.T) {
	ve := openVote(t, "h1", "h2", "h3", "ai")
	require.NoError(t, ve.Cast("h1", VoteFor("ai")))
	require.NoError(t, ve.Cast("h2", VoteFor("ai")))
	require.NoError(t, ve.Cast("h3", PassVote()))
	require.NoError(t, ve.Cast("ai", VoteFor("h1")))

	tally := ve.CurrentTally()
	assert.Equal(t, 4, tally.Ballots)
	assert.Equal(t, 1, tally.Passes)
	assert.Equal(t, 2, tally.Counts["ai"])
	assert.Equal(t, 1, tally.Counts["h1"])
}

func TestResolveAllPassesContinues(t *testing.T) {
	tally := Tally{Counts: map[string]int{}, Passes: 3, Ballots: 3}
	result := Resolve(tally, testNames, "ai", 3)

	assert.Equal(t, OutcomeContinue, result.Outcome)
	assert.Empty(t, result.Eliminated)
	assert.False(t, result.RoundOver)
	assert.Equal(t, WinnerNone, result.Winner)
}

func TestResolveNoBallotsContinues(t *testing.T) {
	result := Resolve(Tally{Counts: map[string]int{}}, testNames, "ai", 3)
	assert.Equal(t, OutcomeContinue, result.Outcome)
	assert.False(t, result.RoundOver)
}

func TestResolveUniqueMaxEliminatesOutsider(t *testing.T) {
	tally := Tally{Counts: map[string]int{"ai": 2, "h1": 1}, Ballots: 3}
	result := Resolve(tally, testNames, "ai", 3)

	assert.Equal(t, OutcomeElimination, result.Outcome)
	assert.Equal(t, []string{"ai"}, result.Eliminated)
	assert.Equal(t, WinnerHumans, result.Winner)
	assert.True(t, result.RoundOver)
	assert.Contains(t, result.Message, "Botwell")
	assert.Contains(t, result.Message, "outsider")
}

func TestResolveUniqueMaxEliminatesHuman(t *testing.T) {
	tally := Tally{Counts: map[string]int{"h1": 2, "ai": 1}, Ballots: 3}
	result := Resolve(tally, testNames, "ai", 3)

	assert.Equal(t, OutcomeElimination, result.Outcome)
	assert.Equal(t, []string{"h1"}, result.Eliminated)
	assert.Equal(t, WinnerAI, result.Winner)
	assert.True(t, result.RoundOver)
	assert.Contains(t, result.Message, "Alice")
}

func TestResolveTieWithTwoActiveHumansWin(t *testing.T) {
	tally := Tally{Counts: map[string]int{"h1": 1, "ai": 1}, Ballots: 2}
	result := Resolve(tally, testNames, "ai", 2)

	assert.Equal(t, OutcomeTie, result.Outcome)
	assert.Empty(t, result.Eliminated)
	assert.Equal(t, WinnerHumans, result.Winner)
	assert.True(t, result.RoundOver)
}

func TestResolveTieEliminatesAllTied(t *testing.T) {
	tally := Tally{Counts: map[string]int{"h1": 2, "h2": 2, "ai": 1}, Ballots: 5}
	result := Resolve(tally, testNames, "ai", 5)

	assert.Equal(t, OutcomeTie, result.Outcome)
	assert.Equal(t, []string{"h1", "h2"}, result.Eliminated)
	assert.False(t, result.RoundOver)
	assert.Equal(t, WinnerNone, result.Winner)
}

func TestResolveTieCollapsesToAIWin(t *testing.T) {
	// Three active, two tied: only one player would remain.
	tally := Tally{Counts: map[string]int{"h1": 1, "h2": 1}, Passes: 1, Ballots: 3}
	result := Resolve(tally, testNames, "ai", 3)

	assert.Equal(t, OutcomeTie, result.Outcome)
	assert.Equal(t, WinnerAI, result.Winner)
	assert.True(t, result.RoundOver)
	assert.Contains(t, result.Message, "Not enough players")
}

func TestResolveIsIdempotent(t *testing.T) {
	tally := Tally{Counts: map[string]int{"h1": 2, "h2": 2, "ai": 1}, Ballots: 5}
	first := Resolve(tally, testNames, "ai", 5)
	second := Resolve(tally, testNames, "ai", 5)
	assert.Equal(t, first, second)
}

func TestForceCompleteClosesOpenPhase(t *testing.T) {
	ve := openVote(t, "h1", "h2", "h3")
	require.NoError(t, ve.Cast("h1", VoteFor("h2")))
	ve.ForceComplete()
	assert.True(t, ve.IsComplete())
	assert.Equal(t, 1, ve.BallotsCast())
	assert.Equal(t, 3, ve.EligibleCount())
}

func TestResetDropsBallots(t *testing.T) {
	ve := openVote(t, "h1", "h2")
	require.NoError(t, ve.Cast("h1", PassVote()))
	ve.Reset()

	assert.Equal(t, 0, ve.BallotsCast())
	assert.Equal(t, 0, ve.EligibleCount())
	err := ve.Cast("h2", PassVote())
	assert.ErrorIs(t, err, ErrVotingClosed)
}
