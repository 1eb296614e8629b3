package server

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/outsidergame/outsider/internal/game"
)

// ServerConfig represents the complete server configuration
type ServerConfig struct {
	Server  ServerSettings `hcl:"server,block"`
	Game    *GameSettings  `hcl:"game,block"`
	Lobbies []LobbyConfig  `hcl:"lobby,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
	LogFile  string `hcl:"log_file,optional"`
	RedisURL string `hcl:"redis_url,optional"`
}

// GameSettings tunes round rules. Delays and windows are in seconds.
type GameSettings struct {
	QuestionQuota     int     `hcl:"question_quota,optional"`
	GuessThreshold    int     `hcl:"guess_threshold,optional"`
	GuessConfidence   float64 `hcl:"guess_confidence,optional"`
	MaxQuestionLen    int     `hcl:"max_question_len,optional"`
	MaxAnswerLen      int     `hcl:"max_answer_len,optional"`
	AIQuestionDelay   int     `hcl:"ai_question_delay,optional"`
	AIAnswerDelay     int     `hcl:"ai_answer_delay,optional"`
	AIVoteDelay       int     `hcl:"ai_vote_delay,optional"`
	GenerateTimeout   int     `hcl:"generate_timeout,optional"`
	InactivityWarning int     `hcl:"inactivity_warning,optional"`
	InactivityReset   int     `hcl:"inactivity_reset,optional"`
}

// LobbyConfig defines a lobby created at startup
type LobbyConfig struct {
	Code      string `hcl:"code,label"`
	AIPlayers int    `hcl:"ai_players,optional"`
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Server: ServerSettings{
			Address:  "localhost",
			Port:     8080,
			LogLevel: "info",
			LogFile:  "outsider-server.log",
		},
		Game: &GameSettings{},
	}
}

// LoadServerConfig loads server configuration from HCL file
func LoadServerConfig(filename string) (*ServerConfig, error) {
	// Missing file means run on defaults
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultServerConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config ServerConfig
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	// Apply defaults for missing values
	if config.Server.Address == "" {
		config.Server.Address = "localhost"
	}
	if config.Server.Port == 0 {
		config.Server.Port = 8080
	}
	if config.Server.LogLevel == "" {
		config.Server.LogLevel = "info"
	}
	if config.Server.LogFile == "" {
		config.Server.LogFile = "outsider-server.log"
	}
	if config.Game == nil {
		config.Game = &GameSettings{}
	}

	// Every configured lobby gets at least one AI player so the outsider
	// role can be filled
	for i := range config.Lobbies {
		if config.Lobbies[i].AIPlayers == 0 {
			config.Lobbies[i].AIPlayers = 1
		}
	}

	return &config, nil
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	if c.Game != nil {
		if c.Game.QuestionQuota < 0 {
			return fmt.Errorf("question quota must not be negative")
		}
		if c.Game.GuessThreshold < 0 {
			return fmt.Errorf("guess threshold must not be negative")
		}
		if c.Game.GuessConfidence < 0 || c.Game.GuessConfidence > 1 {
			return fmt.Errorf("guess confidence must be between 0 and 1")
		}
		if c.Game.InactivityWarning > 0 && c.Game.InactivityReset > 0 &&
			c.Game.InactivityReset <= c.Game.InactivityWarning {
			return fmt.Errorf("inactivity reset must be later than the warning")
		}
	}

	for _, lobby := range c.Lobbies {
		if len(lobby.Code) < 2 {
			return fmt.Errorf("lobby %q: code must be at least 2 characters", lobby.Code)
		}
		if lobby.AIPlayers < 1 {
			return fmt.Errorf("lobby %q: needs at least one AI player for the outsider role", lobby.Code)
		}
		if lobby.AIPlayers > len(game.AINames) {
			return fmt.Errorf("lobby %q: at most %d AI players", lobby.Code, len(game.AINames))
		}
	}

	return nil
}

// GetServerAddress returns the full server address
func (c *ServerConfig) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// GameConfig converts the settings into a round configuration. Zero values
// fall through to the game defaults.
func (c *ServerConfig) GameConfig() game.Config {
	if c.Game == nil {
		return game.Config{}
	}
	g := c.Game
	return game.Config{
		QuestionQuota:     g.QuestionQuota,
		GuessThreshold:    g.GuessThreshold,
		GuessConfidence:   g.GuessConfidence,
		MaxQuestionLen:    g.MaxQuestionLen,
		MaxAnswerLen:      g.MaxAnswerLen,
		AIQuestionDelay:   time.Duration(g.AIQuestionDelay) * time.Second,
		AIAnswerDelay:     time.Duration(g.AIAnswerDelay) * time.Second,
		AIVoteDelay:       time.Duration(g.AIVoteDelay) * time.Second,
		GenerateTimeout:   time.Duration(g.GenerateTimeout) * time.Second,
		InactivityWarning: time.Duration(g.InactivityWarning) * time.Second,
		InactivityReset:   time.Duration(g.InactivityReset) * time.Second,
	}
}
