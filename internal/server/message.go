package server

import (
	"encoding/json"
	"time"

	"github.com/outsidergame/outsider/internal/game"
)

// MessageType identifies a WebSocket message
type MessageType string

// Client → Server message types
const (
	MessageTypeAuth         MessageType = "auth"
	MessageTypeCreateLobby  MessageType = "create_lobby"
	MessageTypeJoinLobby    MessageType = "join_lobby"
	MessageTypeLeaveLobby   MessageType = "leave_lobby"
	MessageTypeStartRound   MessageType = "start_round"
	MessageTypeAskQuestion  MessageType = "ask_question"
	MessageTypeSubmitAnswer MessageType = "submit_answer"
	MessageTypeRequestVote  MessageType = "request_vote"
	MessageTypeCastVote     MessageType = "cast_vote"
	MessageTypeResetLobby   MessageType = "reset_lobby"
)

// Server → Client message types. Game events reuse the event type names so
// clients see one vocabulary.
const (
	MessageTypeAuthResponse MessageType = "auth_response"
	MessageTypeLobbyJoined  MessageType = "lobby_joined"
	MessageTypeLobbyLeft    MessageType = "lobby_left"
	MessageTypeError        MessageType = "error"
)

func (mt MessageType) String() string { return string(mt) }

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data interface{}) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client → Server Messages

type AuthData struct {
	PlayerName string `json:"playerName"`
}

type CreateLobbyData struct {
	AIPlayers int `json:"aiPlayers,omitempty"`
}

type JoinLobbyData struct {
	LobbyCode string `json:"lobbyCode"`
}

type LeaveLobbyData struct {
	LobbyCode string `json:"lobbyCode"`
}

type AskQuestionData struct {
	TargetID string `json:"targetId"`
	Question string `json:"question"`
}

type SubmitAnswerData struct {
	Answer string `json:"answer"`
}

// CastVoteData carries a vote target ID, or the literal "pass". The sentinel
// exists only on the wire; it is mapped to a tagged choice at the boundary.
type CastVoteData struct {
	Vote string `json:"vote"`
}

const wireVotePass = "pass"

func (d CastVoteData) Choice() game.Choice {
	if d.Vote == wireVotePass {
		return game.PassVote()
	}
	return game.VoteFor(d.Vote)
}

// Server → Client Messages

type AuthResponseData struct {
	Success  bool   `json:"success"`
	PlayerID string `json:"playerId,omitempty"`
	Error    string `json:"error,omitempty"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PlayerInfo is the public view of a player. The outsider flag is stripped;
// it is only revealed in the round-ended payload.
type PlayerInfo struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	IsAI              bool   `json:"isAi"`
	Connected         bool   `json:"connected"`
	QuestionsAsked    int    `json:"questionsAsked"`
	QuestionsAnswered int    `json:"questionsAnswered"`
}

func PlayerInfoFromGame(p game.Player) PlayerInfo {
	return PlayerInfo{
		ID:                p.ID,
		Name:              p.Name,
		IsAI:              p.IsAI,
		Connected:         p.Connected,
		QuestionsAsked:    p.QuestionsAsked,
		QuestionsAnswered: p.QuestionsAnswered,
	}
}

func playerInfosFromGame(players []game.Player) []PlayerInfo {
	infos := make([]PlayerInfo, len(players))
	for i, p := range players {
		infos[i] = PlayerInfoFromGame(p)
	}
	return infos
}

type LobbyJoinedData struct {
	LobbyCode string       `json:"lobbyCode"`
	Players   []PlayerInfo `json:"players"`
	Wins      game.WinTally `json:"wins"`
}

type RoundStartedData struct {
	RoundID  string       `json:"roundId"`
	Location string       `json:"location"`
	Players  []PlayerInfo `json:"players"`
	Order    []string     `json:"order"`
}

type TurnStartedData struct {
	RoundID    string     `json:"roundId"`
	TurnNumber int        `json:"turnNumber"`
	Asker      PlayerInfo `json:"asker"`
	Target     PlayerInfo `json:"target"`
}

type ExchangeData struct {
	Asker      string `json:"asker"`
	AskerName  string `json:"askerName"`
	Target     string `json:"target"`
	TargetName string `json:"targetName"`
	Question   string `json:"question"`
	Answer     string `json:"answer,omitempty"`
}

func exchangeDataFromGame(ex game.Exchange) ExchangeData {
	return ExchangeData{
		Asker:      ex.Asker,
		AskerName:  ex.AskerName,
		Target:     ex.Target,
		TargetName: ex.TargetName,
		Question:   ex.Question,
		Answer:     ex.Answer,
	}
}

type QuestionAskedData struct {
	RoundID  string       `json:"roundId"`
	Exchange ExchangeData `json:"exchange"`
}

type AnswerGivenData struct {
	RoundID            string       `json:"roundId"`
	Exchange           ExchangeData `json:"exchange"`
	QuestionCount      int          `json:"questionCount"`
	QuestionsUntilVote int          `json:"questionsUntilVote"`
	CanVote            bool         `json:"canVote"`
}

type VotingStartedData struct {
	RoundID  string       `json:"roundId"`
	Eligible []PlayerInfo `json:"eligible"`
}

type VoteRecordedData struct {
	RoundID     string `json:"roundId"`
	VoterName   string `json:"voterName"`
	BallotsCast int    `json:"ballotsCast"`
	Eligible    int    `json:"eligible"`
}

type VotingResolvedData struct {
	RoundID    string   `json:"roundId"`
	Outcome    string   `json:"outcome"`
	Eliminated []string `json:"eliminated,omitempty"`
	Message    string   `json:"message"`
}

type RoundEndedData struct {
	RoundID      string        `json:"roundId"`
	Winner       string        `json:"winner"`
	Reason       string        `json:"reason"`
	Location     string        `json:"location"`
	OutsiderID   string        `json:"outsiderId"`
	OutsiderName string        `json:"outsiderName"`
	Wins         game.WinTally `json:"wins"`
}

type InactivityWarningData struct {
	RoundID      string `json:"roundId"`
	ResetSeconds int    `json:"resetSeconds"`
}

type RoundResetData struct {
	LobbyCode string `json:"lobbyCode"`
	Reason    string `json:"reason"`
}
