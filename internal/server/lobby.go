package server

import (
	rand "math/rand/v2"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"

	"github.com/outsidergame/outsider/internal/ai"
	"github.com/outsidergame/outsider/internal/game"
	"github.com/outsidergame/outsider/internal/randutil"
	"github.com/outsidergame/outsider/internal/statistics"
)

// Lobby binds one coordinator to the connections of its human players and
// forwards round events to them.
type Lobby struct {
	code   string
	coord  *game.Coordinator
	logger *log.Logger

	mu    sync.RWMutex
	conns map[string]*Connection // player ID → connection
}

func newLobby(code string, coord *game.Coordinator, logger *log.Logger) *Lobby {
	l := &Lobby{
		code:   code,
		coord:  coord,
		logger: logger.WithPrefix("lobby").With("code", code),
		conns:  make(map[string]*Connection),
	}
	coord.Events().Subscribe(l)
	coord.Start()
	return l
}

// Code returns the lobby's join code.
func (l *Lobby) Code() string { return l.code }

// Coordinator returns the round coordinator backing this lobby.
func (l *Lobby) Coordinator() *game.Coordinator { return l.coord }

// Attach binds a player's connection so they receive round events.
func (l *Lobby) Attach(playerID string, conn *Connection) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.conns[playerID] = conn
}

// Detach removes a player's connection.
func (l *Lobby) Detach(playerID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.conns, playerID)
}

// Close shuts the coordinator down.
func (l *Lobby) Close() {
	l.coord.Close()
}

// OnEvent translates round events into client messages. It runs on the
// coordinator's actor goroutine, so it must never block: sends go through
// each connection's buffered queue.
func (l *Lobby) OnEvent(event game.Event) {
	switch e := event.(type) {
	case game.RoundStartedEvent:
		// The secret location is broadcast as-is: every human player is an
		// insider, and the outsider has no connection to leak it to.
		l.broadcast(MessageType(e.EventType()), RoundStartedData{
			RoundID:  e.RoundID,
			Location: e.Location,
			Players:  playerInfosFromGame(e.Players),
			Order:    e.Order,
		})

	case game.TurnStartedEvent:
		l.broadcast(MessageType(e.EventType()), TurnStartedData{
			RoundID:    e.RoundID,
			TurnNumber: e.TurnNumber,
			Asker:      PlayerInfoFromGame(e.Asker),
			Target:     PlayerInfoFromGame(e.Target),
		})

	case game.QuestionAskedEvent:
		l.broadcast(MessageType(e.EventType()), QuestionAskedData{
			RoundID:  e.RoundID,
			Exchange: exchangeDataFromGame(e.Exchange),
		})

	case game.AnswerGivenEvent:
		l.broadcast(MessageType(e.EventType()), AnswerGivenData{
			RoundID:            e.RoundID,
			Exchange:           exchangeDataFromGame(e.Exchange),
			QuestionCount:      e.QuestionCount,
			QuestionsUntilVote: e.QuestionsUntilVote,
			CanVote:            e.CanVote,
		})

	case game.VotingStartedEvent:
		l.broadcast(MessageType(e.EventType()), VotingStartedData{
			RoundID:  e.RoundID,
			Eligible: playerInfosFromGame(e.Eligible),
		})

	case game.VoteRecordedEvent:
		l.broadcast(MessageType(e.EventType()), VoteRecordedData{
			RoundID:     e.RoundID,
			VoterName:   e.Voter.Name,
			BallotsCast: e.BallotsCast,
			Eligible:    e.Eligible,
		})

	case game.VotingResolvedEvent:
		l.broadcast(MessageType(e.EventType()), VotingResolvedData{
			RoundID:    e.RoundID,
			Outcome:    string(e.Result.Outcome),
			Eliminated: e.Result.Eliminated,
			Message:    e.Result.Message,
		})

	case game.RoundEndedEvent:
		l.broadcast(MessageType(e.EventType()), RoundEndedData{
			RoundID:      e.RoundID,
			Winner:       string(e.Winner),
			Reason:       e.Reason,
			Location:     e.Location,
			OutsiderID:   e.Outsider.ID,
			OutsiderName: e.Outsider.Name,
			Wins:         e.Wins,
		})

	case game.InactivityWarningEvent:
		l.broadcast(MessageType(e.EventType()), InactivityWarningData{
			RoundID:      e.RoundID,
			ResetSeconds: int(e.ResetIn.Seconds()),
		})

	case game.RoundResetEvent:
		l.broadcast(MessageType(e.EventType()), RoundResetData{
			LobbyCode: e.Lobby,
			Reason:    e.Reason,
		})

	default:
		l.logger.Warn("unhandled round event", "type", event.EventType())
	}
}

func (l *Lobby) broadcast(mt MessageType, data interface{}) {
	msg, err := NewMessage(mt, data)
	if err != nil {
		l.logger.Error("failed to encode event message", "type", mt, "error", err)
		return
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	for playerID, conn := range l.conns {
		if err := conn.SendMessage(msg); err != nil {
			l.logger.Error("failed to send event", "player", playerID, "error", err)
		}
	}
}

var _ game.Subscriber = (*Lobby)(nil)

// LobbyManager creates and tracks lobbies.
type LobbyManager struct {
	cfg    *ServerConfig
	logger *log.Logger
	clock  quartz.Clock
	store  game.PersistenceGateway

	mu      sync.RWMutex
	lobbies map[string]*Lobby
	rng     *rand.Rand
}

// NewLobbyManager creates a manager. The store may be nil; rounds then live
// only in memory.
func NewLobbyManager(cfg *ServerConfig, logger *log.Logger, clock quartz.Clock, seed int64, store game.PersistenceGateway) *LobbyManager {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &LobbyManager{
		cfg:     cfg,
		logger:  logger,
		clock:   clock,
		store:   store,
		lobbies: make(map[string]*Lobby),
		rng:     randutil.New(seed),
	}
}

const lobbyCodeLetters = "ABCDEFGHJKLMNPQRSTUVWXYZ"

// CreateLobby creates a lobby with a fresh join code and the requested number
// of AI players seated.
func (m *LobbyManager) CreateLobby(aiPlayers int) (*Lobby, error) {
	if aiPlayers < 1 {
		aiPlayers = 1
	}
	if aiPlayers > len(game.AINames) {
		aiPlayers = len(game.AINames)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	code := m.newCodeLocked()
	lobby, err := m.buildLobbyLocked(code, aiPlayers)
	if err != nil {
		return nil, err
	}
	m.lobbies[code] = lobby
	m.logger.Info("lobby created", "code", code, "ai_players", aiPlayers)
	return lobby, nil
}

// CreateConfiguredLobbies builds every lobby declared in the configuration.
func (m *LobbyManager) CreateConfiguredLobbies() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, lc := range m.cfg.Lobbies {
		lobby, err := m.buildLobbyLocked(lc.Code, lc.AIPlayers)
		if err != nil {
			return err
		}
		m.lobbies[lc.Code] = lobby
		m.logger.Info("configured lobby created", "code", lc.Code, "ai_players", lc.AIPlayers)
	}
	return nil
}

// Get returns the lobby with the given code.
func (m *LobbyManager) Get(code string) (*Lobby, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	lobby, ok := m.lobbies[code]
	return lobby, ok
}

// CloseAll shuts down every lobby.
func (m *LobbyManager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for code, lobby := range m.lobbies {
		lobby.Close()
		delete(m.lobbies, code)
	}
}

func (m *LobbyManager) buildLobbyLocked(code string, aiPlayers int) (*Lobby, error) {
	coord := game.NewCoordinator(code, m.cfg.GameConfig(), game.Deps{
		Logger:    m.logger,
		Clock:     m.clock,
		RNG:       randutil.New(m.rng.Int64()),
		Generator: ai.NewGenerator(randutil.New(m.rng.Int64()), m.logger),
		Guesser:   ai.NewKeywordGuesser(m.logger),
		Stats:     statistics.NewCollector(m.logger),
		Store:     m.store,
	})
	lobby := newLobby(code, coord, m.logger)

	names := append([]string(nil), game.AINames...)
	randutil.Shuffle(m.rng, names)
	for i := 0; i < aiPlayers; i++ {
		if err := coord.Join(uuid.NewString(), names[i], true); err != nil {
			lobby.Close()
			return nil, err
		}
	}
	return lobby, nil
}

func (m *LobbyManager) newCodeLocked() string {
	for {
		code := make([]byte, 4)
		for i := range code {
			code[i] = lobbyCodeLetters[m.rng.IntN(len(lobbyCodeLetters))]
		}
		if _, taken := m.lobbies[string(code)]; !taken {
			return string(code)
		}
	}
}
