package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"

	"github.com/outsidergame/outsider/internal/game"
	"github.com/outsidergame/outsider/internal/server"
	"github.com/outsidergame/outsider/internal/store"
)

var CLI struct {
	Config   string `short:"c" long:"config" default:"outsider-server.hcl" help:"Path to HCL configuration file"`
	Addr     string `short:"a" long:"addr" help:"Server address to bind to (overrides config)"`
	LogLevel string `short:"l" long:"log-level" help:"Log level (overrides config)"`
	Redis    string `long:"redis" help:"Redis URL for round persistence (overrides config)"`
	Seed     int64  `long:"seed" help:"Random seed (0 picks one from the clock)"`
	Lobbies  int    `long:"lobbies" help:"Number of lobbies to create at startup"`
	AI       int    `long:"ai" default:"1" help:"AI players per startup lobby"`
}

func main() {
	ctx := kong.Parse(&CLI)

	cfg, err := server.LoadServerConfig(CLI.Config)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		ctx.Exit(1)
	}

	// Apply command line overrides
	if CLI.Addr != "" {
		cfg.Server.Address = CLI.Addr
	}
	if CLI.LogLevel != "" {
		cfg.Server.LogLevel = CLI.LogLevel
	}
	if CLI.Redis != "" {
		cfg.Server.RedisURL = CLI.Redis
	}
	if CLI.Lobbies > 0 {
		cfg.Lobbies = nil
		for i := 0; i < CLI.Lobbies; i++ {
			cfg.Lobbies = append(cfg.Lobbies, server.LobbyConfig{
				Code:      fmt.Sprintf("ROOM%d", i+1),
				AIPlayers: CLI.AI,
			})
		}
	}

	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid configuration: %v\n", err)
		ctx.Exit(1)
	}

	logger := log.New(os.Stderr)
	switch cfg.Server.LogLevel {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "info":
		logger.SetLevel(log.InfoLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}

	seed := CLI.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	var gateway game.PersistenceGateway
	if cfg.Server.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.Server.RedisURL)
		if err != nil {
			logger.Error("Invalid Redis URL", "error", err)
			ctx.Exit(1)
		}
		redisStore := store.NewRedisStore(redis.NewClient(opts))
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisStore.Ping(pingCtx); err != nil {
			cancel()
			logger.Error("Redis unreachable", "url", cfg.Server.RedisURL, "error", err)
			ctx.Exit(1)
		}
		cancel()
		gateway = redisStore
		logger.Info("Round persistence enabled", "backend", "redis")
	} else {
		gateway = store.NewMemoryStore()
		logger.Info("Round persistence enabled", "backend", "memory")
	}

	manager := server.NewLobbyManager(cfg, logger, nil, seed, gateway)
	if err := manager.CreateConfiguredLobbies(); err != nil {
		logger.Error("Failed to create configured lobbies", "error", err)
		ctx.Exit(1)
	}

	logger.Info("Starting Outsider server",
		"addr", cfg.GetServerAddress(),
		"lobbies", len(cfg.Lobbies),
		"seed", seed)

	wsServer := server.NewServer(cfg.GetServerAddress(), logger, manager)

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		logger.Info("Shutting down server...")
		_ = wsServer.Stop()
		os.Exit(0)
	}()

	if err := wsServer.Start(); err != nil {
		logger.Error("Server failed", "error", err)
		ctx.Exit(1)
	}
}
