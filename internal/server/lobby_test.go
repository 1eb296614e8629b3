package server

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outsidergame/outsider/internal/game"
)

func newTestManager(t *testing.T, cfg *ServerConfig) *LobbyManager {
	t.Helper()
	if cfg == nil {
		cfg = DefaultServerConfig()
	}
	logger := log.NewWithOptions(io.Discard, log.Options{})
	m := NewLobbyManager(cfg, logger, nil, 42, nil)
	t.Cleanup(m.CloseAll)
	return m
}

func TestCreateLobbySeatsAIPlayers(t *testing.T) {
	m := newTestManager(t, nil)

	lobby, err := m.CreateLobby(2)
	require.NoError(t, err)
	assert.Len(t, lobby.Code(), 4)

	players := lobby.Coordinator().Players()
	require.Len(t, players, 2)
	for _, p := range players {
		assert.True(t, p.IsAI)
		assert.Contains(t, game.AINames, p.Name)
	}
}

func TestCreateLobbyClampsAICount(t *testing.T) {
	m := newTestManager(t, nil)

	lobby, err := m.CreateLobby(0)
	require.NoError(t, err)
	assert.Len(t, lobby.Coordinator().Players(), 1, "at least one AI for the outsider role")
}

func TestCreateLobbyCodesAreUnique(t *testing.T) {
	m := newTestManager(t, nil)

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		lobby, err := m.CreateLobby(1)
		require.NoError(t, err)
		assert.False(t, seen[lobby.Code()], "duplicate code %s", lobby.Code())
		seen[lobby.Code()] = true
	}
}

func TestGetReturnsCreatedLobby(t *testing.T) {
	m := newTestManager(t, nil)

	lobby, err := m.CreateLobby(1)
	require.NoError(t, err)

	found, ok := m.Get(lobby.Code())
	require.True(t, ok)
	assert.Same(t, lobby, found)

	_, ok = m.Get("NOPE")
	assert.False(t, ok)
}

func TestCreateConfiguredLobbies(t *testing.T) {
	cfg := DefaultServerConfig()
	cfg.Lobbies = []LobbyConfig{
		{Code: "MAIN", AIPlayers: 2},
		{Code: "SIDE", AIPlayers: 1},
	}
	m := newTestManager(t, cfg)

	require.NoError(t, m.CreateConfiguredLobbies())

	main, ok := m.Get("MAIN")
	require.True(t, ok)
	assert.Len(t, main.Coordinator().Players(), 2)

	side, ok := m.Get("SIDE")
	require.True(t, ok)
	assert.Len(t, side.Coordinator().Players(), 1)
}

func TestLobbyJoinAndPlay(t *testing.T) {
	m := newTestManager(t, nil)
	lobby, err := m.CreateLobby(1)
	require.NoError(t, err)
	coord := lobby.Coordinator()

	require.NoError(t, coord.Join("h1", "Alice", false))
	require.NoError(t, coord.Join("h2", "Bob", false))
	require.NoError(t, coord.StartRound())

	view, err := coord.RoundView()
	require.NoError(t, err)
	assert.Equal(t, game.StatePlaying, view.State)
	assert.Len(t, view.Order, 3)
}

func TestCastVoteDataMapsPassSentinel(t *testing.T) {
	assert.Equal(t, game.PassVote(), CastVoteData{Vote: "pass"}.Choice())
	assert.Equal(t, game.VoteFor("h2"), CastVoteData{Vote: "h2"}.Choice())
}
