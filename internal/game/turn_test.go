package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outsidergame/outsider/internal/randutil"
)

func rosterOf(t *testing.T, names ...string) (*Registry, []*Player) {
	t.Helper()
	reg := NewRegistry()
	players := make([]*Player, 0, len(names))
	for _, name := range names {
		p, err := reg.AddPlayer("id-"+name, name, false)
		require.NoError(t, err)
		players = append(players, p)
	}
	return reg, players
}

func TestBuildTurnOrderRotatesToStarter(t *testing.T) {
	_, players := rosterOf(t, "alice", "bob", "carol", "dave")
	te := NewTurnEngine(randutil.New(1))

	order, err := te.BuildTurnOrder(players, "id-carol")
	require.NoError(t, err)
	assert.Equal(t, []string{"id-carol", "id-dave", "id-alice", "id-bob"}, order)
}

func TestBuildTurnOrderPicksRandomStarter(t *testing.T) {
	_, players := rosterOf(t, "alice", "bob", "carol")
	te := NewTurnEngine(randutil.New(7))

	order, err := te.BuildTurnOrder(players, "")
	require.NoError(t, err)
	require.Len(t, order, 3)
	// Every player appears exactly once regardless of the starter.
	seen := make(map[string]bool)
	for _, id := range order {
		seen[id] = true
	}
	assert.Len(t, seen, 3)
}

func TestBuildTurnOrderEmptyRoster(t *testing.T) {
	te := NewTurnEngine(randutil.New(1))
	_, err := te.BuildTurnOrder(nil, "")
	assert.ErrorIs(t, err, ErrEmptyRoster)
}

func TestBuildTurnOrderUnknownStarter(t *testing.T) {
	_, players := rosterOf(t, "alice", "bob")
	te := NewTurnEngine(randutil.New(1))
	_, err := te.BuildTurnOrder(players, "id-nobody")
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestNextAskerWrapsAround(t *testing.T) {
	te := NewTurnEngine(randutil.New(1))
	order := []string{"a", "b", "c"}

	for i, want := range []string{"a", "b", "c", "a", "b", "c", "a"} {
		got, err := te.NextAsker(order, i)
		require.NoError(t, err)
		assert.Equal(t, want, got, "turn %d", i)
	}
}

func TestPickTargetExcludesAsker(t *testing.T) {
	_, players := rosterOf(t, "alice", "bob", "carol")
	te := NewTurnEngine(randutil.New(3))

	for i := 0; i < 50; i++ {
		target, err := te.PickTarget("id-alice", players)
		require.NoError(t, err)
		assert.NotEqual(t, "id-alice", target)
	}
}

func TestPickTargetForcedWithTwoPlayers(t *testing.T) {
	_, players := rosterOf(t, "alice", "bob")
	te := NewTurnEngine(randutil.New(3))

	target, err := te.PickTarget("id-alice", players)
	require.NoError(t, err)
	assert.Equal(t, "id-bob", target)
}

func TestPickTargetNoCandidates(t *testing.T) {
	_, players := rosterOf(t, "alice")
	te := NewTurnEngine(randutil.New(3))

	_, err := te.PickTarget("id-alice", players)
	assert.ErrorIs(t, err, ErrNoValidTarget)
}

func TestAdvanceMovesToNextPair(t *testing.T) {
	_, players := rosterOf(t, "alice", "bob", "carol")
	te := NewTurnEngine(randutil.New(9))

	r := &Round{Order: []string{"id-alice", "id-bob", "id-carol"}}
	r.CurrentAsker = "id-alice"
	r.CurrentTarget = "id-bob"

	require.NoError(t, te.Advance(r, players))
	assert.Equal(t, 1, r.TurnIndex)
	assert.Equal(t, "id-bob", r.CurrentAsker)
	assert.NotEqual(t, r.CurrentAsker, r.CurrentTarget)
	assert.NotEmpty(t, r.CurrentTarget)
}
