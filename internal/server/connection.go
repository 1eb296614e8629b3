package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Connection represents a WebSocket connection to a client
type Connection struct {
	conn      *websocket.Conn
	send      chan *Message
	logger    *log.Logger
	manager   *LobbyManager
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.RWMutex
	closeOnce sync.Once

	playerID   string
	playerName string
	lobby      *Lobby
}

// NewConnection creates a new connection wrapper
func NewConnection(conn *websocket.Conn, logger *log.Logger, manager *LobbyManager) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		conn:    conn,
		send:    make(chan *Message, 256),
		logger:  logger.WithPrefix("conn"),
		manager: manager,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.send)
		err = c.conn.Close()
	})
	return err
}

// SendMessage queues a message for the client without blocking the caller.
func (c *Connection) SendMessage(msg *Message) error {
	defer func() {
		if r := recover(); r != nil {
			// Channel was closed, expected during shutdown
			c.logger.Debug("attempted to send on closed connection", "error", r)
		}
	}()

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn("connection send buffer full, closing connection")
		_ = c.Close()
		return ErrConnectionClosed
	}
}

// Player returns the authenticated player ID, empty before auth.
func (c *Connection) Player() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerID
}

// PlayerName returns the display name chosen at auth.
func (c *Connection) PlayerName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerName
}

// Lobby returns the lobby this connection is attached to, if any.
func (c *Connection) Lobby() *Lobby {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lobby
}

func (c *Connection) setPlayer(id, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playerID = id
	c.playerName = name
}

func (c *Connection) setLobby(lobby *Lobby) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lobby = lobby
}

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

var ErrConnectionClosed = websocket.ErrCloseSent

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		var msg Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("websocket error", "error", err)
			}
			break
		}

		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// handleMessage processes incoming messages from the client
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("received message", "type", msg.Type, "player", c.PlayerName())

	switch msg.Type {
	case MessageTypeAuth:
		var data AuthData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse auth data")
			return
		}
		c.handleAuth(data)

	case MessageTypeCreateLobby:
		var data CreateLobbyData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse create lobby data")
			return
		}
		c.handleCreateLobby(data)

	case MessageTypeJoinLobby:
		var data JoinLobbyData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse join lobby data")
			return
		}
		c.handleJoinLobby(data)

	case MessageTypeLeaveLobby:
		c.handleLeaveLobby()

	case MessageTypeStartRound:
		c.handleStartRound()

	case MessageTypeAskQuestion:
		var data AskQuestionData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse ask question data")
			return
		}
		c.handleAskQuestion(data)

	case MessageTypeSubmitAnswer:
		var data SubmitAnswerData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse submit answer data")
			return
		}
		c.handleSubmitAnswer(data)

	case MessageTypeRequestVote:
		c.handleRequestVote()

	case MessageTypeCastVote:
		var data CastVoteData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse cast vote data")
			return
		}
		c.handleCastVote(data)

	case MessageTypeResetLobby:
		c.handleResetLobby()

	default:
		c.sendError("unknown_message_type", "Unknown message type: "+msg.Type.String())
	}
}

// sendError sends an error message to the client
func (c *Connection) sendError(code, message string) {
	errorMsg, err := NewMessage(MessageTypeError, ErrorData{
		Code:    code,
		Message: message,
	})
	if err != nil {
		c.logger.Error("failed to create error message", "error", err)
		return
	}

	_ = c.SendMessage(errorMsg)
}

func (c *Connection) handleAuth(data AuthData) {
	if data.PlayerName == "" {
		c.sendError("invalid_auth", "Player name required")
		return
	}

	playerID := uuid.NewString()
	c.setPlayer(playerID, data.PlayerName)
	c.logger.Info("player authenticated", "player", data.PlayerName, "id", playerID)

	response, _ := NewMessage(MessageTypeAuthResponse, AuthResponseData{
		Success:  true,
		PlayerID: playerID,
	})
	_ = c.SendMessage(response)
}

// requireAuth returns the player ID, or empty after reporting the error.
func (c *Connection) requireAuth() string {
	playerID := c.Player()
	if playerID == "" {
		c.sendError("not_authenticated", "Must authenticate first")
	}
	return playerID
}

// requireLobby returns the attached lobby, or nil after reporting the error.
func (c *Connection) requireLobby() *Lobby {
	lobby := c.Lobby()
	if lobby == nil {
		c.sendError("not_in_lobby", "Must join a lobby first")
	}
	return lobby
}

func (c *Connection) handleCreateLobby(data CreateLobbyData) {
	playerID := c.requireAuth()
	if playerID == "" {
		return
	}
	if c.Lobby() != nil {
		c.sendError("already_in_lobby", "Leave the current lobby first")
		return
	}

	lobby, err := c.manager.CreateLobby(data.AIPlayers)
	if err != nil {
		c.sendError("create_failed", err.Error())
		return
	}
	c.joinLobby(lobby, playerID)
}

func (c *Connection) handleJoinLobby(data JoinLobbyData) {
	playerID := c.requireAuth()
	if playerID == "" {
		return
	}
	if c.Lobby() != nil {
		c.sendError("already_in_lobby", "Leave the current lobby first")
		return
	}

	lobby, ok := c.manager.Get(data.LobbyCode)
	if !ok {
		c.sendError("lobby_not_found", "No lobby with code "+data.LobbyCode)
		return
	}
	c.joinLobby(lobby, playerID)
}

func (c *Connection) joinLobby(lobby *Lobby, playerID string) {
	if err := lobby.Coordinator().Join(playerID, c.PlayerName(), false); err != nil {
		c.sendError("join_failed", err.Error())
		return
	}
	lobby.Attach(playerID, c)
	c.setLobby(lobby)

	response, _ := NewMessage(MessageTypeLobbyJoined, LobbyJoinedData{
		LobbyCode: lobby.Code(),
		Players:   playerInfosFromGame(lobby.Coordinator().Players()),
		Wins:      lobby.Coordinator().Wins(),
	})
	_ = c.SendMessage(response)
}

func (c *Connection) handleLeaveLobby() {
	playerID := c.requireAuth()
	if playerID == "" {
		return
	}
	lobby := c.requireLobby()
	if lobby == nil {
		return
	}

	if err := lobby.Coordinator().Leave(playerID); err != nil {
		c.sendError("leave_failed", err.Error())
		return
	}
	lobby.Detach(playerID)
	c.setLobby(nil)

	response, _ := NewMessage(MessageTypeLobbyLeft, map[string]string{"lobbyCode": lobby.Code()})
	_ = c.SendMessage(response)
}

func (c *Connection) handleStartRound() {
	playerID := c.requireAuth()
	if playerID == "" {
		return
	}
	lobby := c.requireLobby()
	if lobby == nil {
		return
	}

	if err := lobby.Coordinator().StartRound(); err != nil {
		c.sendError("start_failed", err.Error())
	}
	// The round-started event carries the response
}

func (c *Connection) handleAskQuestion(data AskQuestionData) {
	playerID := c.requireAuth()
	if playerID == "" {
		return
	}
	lobby := c.requireLobby()
	if lobby == nil {
		return
	}

	if err := lobby.Coordinator().AskQuestion(playerID, data.TargetID, data.Question); err != nil {
		c.sendError("question_rejected", err.Error())
	}
}

func (c *Connection) handleSubmitAnswer(data SubmitAnswerData) {
	playerID := c.requireAuth()
	if playerID == "" {
		return
	}
	lobby := c.requireLobby()
	if lobby == nil {
		return
	}

	if err := lobby.Coordinator().SubmitAnswer(playerID, data.Answer); err != nil {
		c.sendError("answer_rejected", err.Error())
	}
}

func (c *Connection) handleRequestVote() {
	playerID := c.requireAuth()
	if playerID == "" {
		return
	}
	lobby := c.requireLobby()
	if lobby == nil {
		return
	}

	if err := lobby.Coordinator().RequestVoting(playerID); err != nil {
		c.sendError("vote_request_rejected", err.Error())
	}
}

func (c *Connection) handleCastVote(data CastVoteData) {
	playerID := c.requireAuth()
	if playerID == "" {
		return
	}
	lobby := c.requireLobby()
	if lobby == nil {
		return
	}

	if err := lobby.Coordinator().CastVote(playerID, data.Choice()); err != nil {
		c.sendError("vote_rejected", err.Error())
	}
}

func (c *Connection) handleResetLobby() {
	playerID := c.requireAuth()
	if playerID == "" {
		return
	}
	lobby := c.requireLobby()
	if lobby == nil {
		return
	}

	if err := lobby.Coordinator().Reset("requested by " + c.PlayerName()); err != nil {
		c.sendError("reset_failed", err.Error())
	}
}
