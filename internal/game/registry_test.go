package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddPlayerRejectsDuplicates(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.AddPlayer("p1", "Alice", false)
	require.NoError(t, err)
	_, err = reg.AddPlayer("p1", "Alice again", false)
	assert.ErrorIs(t, err, ErrPlayerExists)
}

func TestActivePreservesJoinOrder(t *testing.T) {
	reg := NewRegistry()
	for _, name := range []string{"Alice", "Bob", "Carol"} {
		_, err := reg.AddPlayer("id-"+name, name, false)
		require.NoError(t, err)
	}
	p, err := reg.Get("id-Bob")
	require.NoError(t, err)
	p.Connected = false

	assert.Equal(t, []string{"id-Alice", "id-Carol"}, reg.ActiveIDs())
}

func TestAssignOutsiderOnlyOnce(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.AddPlayer("ai1", "Botwell", true)
	require.NoError(t, err)
	_, err = reg.AddPlayer("ai2", "Botson", true)
	require.NoError(t, err)

	require.NoError(t, reg.AssignOutsider("ai1"))
	err = reg.AssignOutsider("ai2")
	assert.ErrorIs(t, err, ErrOutsiderAssigned)

	outsider, ok := reg.Outsider()
	require.True(t, ok)
	assert.Equal(t, "ai1", outsider.ID)
}

func TestAssignOutsiderRejectsHumans(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.AddPlayer("h1", "Alice", false)
	require.NoError(t, err)
	err = reg.AssignOutsider("h1")
	assert.ErrorIs(t, err, ErrOutsiderNotAI)
}

func TestResetForRoundClearsRolesAndCounters(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.AddPlayer("ai1", "Botwell", true)
	require.NoError(t, err)
	require.NoError(t, reg.AssignOutsider("ai1"))
	reg.IncrementQuestionsAsked("ai1")
	reg.IncrementQuestionsAnswered("ai1")
	reg.IncrementVotesReceived("ai1")

	reg.ResetForRound()

	p, err := reg.Get("ai1")
	require.NoError(t, err)
	assert.False(t, p.IsOutsider)
	assert.Zero(t, p.QuestionsAsked)
	assert.Zero(t, p.QuestionsAnswered)
	assert.Zero(t, p.VotesReceived)

	// A new outsider can be assigned for the next round.
	require.NoError(t, reg.AssignOutsider("ai1"))
}

func TestSnapshotReturnsCopies(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.AddPlayer("h1", "Alice", false)
	require.NoError(t, err)

	snap := reg.Snapshot()
	require.Len(t, snap, 1)
	snap[0].Name = "mutated"

	p, err := reg.Get("h1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", p.Name)
}
