package main

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/outsidergame/outsider/internal/ai"
	"github.com/outsidergame/outsider/internal/game"
	"github.com/outsidergame/outsider/internal/randutil"
	"github.com/outsidergame/outsider/internal/statistics"
)

var CLI struct {
	Rounds   int    `short:"n" long:"rounds" default:"10" help:"Rounds to simulate per lobby"`
	Players  int    `short:"p" long:"players" default:"4" help:"Number of AI players per lobby"`
	Parallel int    `long:"parallel" default:"1" help:"Independent lobbies to run concurrently"`
	Seed     int64  `short:"s" long:"seed" help:"Random seed (0 picks one from the clock)"`
	LogLevel string `short:"l" long:"log-level" default:"info" help:"Log level"`
	Verbose  bool   `short:"v" long:"verbose" help:"Print every question and answer"`
}

// transcript prints the conversation as it happens.
type transcript struct {
	logger *log.Logger
}

func (t *transcript) OnEvent(event game.Event) {
	switch e := event.(type) {
	case game.RoundStartedEvent:
		t.logger.Info("round started", "location", e.Location, "players", len(e.Players))
	case game.QuestionAskedEvent:
		t.logger.Debug("question", "from", e.Exchange.AskerName, "to", e.Exchange.TargetName, "text", e.Exchange.Question)
	case game.AnswerGivenEvent:
		t.logger.Debug("answer", "from", e.Exchange.TargetName, "text", e.Exchange.Answer, "count", e.QuestionCount)
	case game.VotingResolvedEvent:
		t.logger.Info("vote resolved", "message", e.Result.Message)
	case game.RoundEndedEvent:
		t.logger.Info("round ended",
			"winner", e.Winner,
			"reason", e.Reason,
			"location", e.Location,
			"outsider", e.Outsider.Name)
	}
}

func main() {
	ctx := kong.Parse(&CLI)

	logger := log.New(os.Stderr)
	switch {
	case CLI.Verbose:
		logger.SetLevel(log.DebugLevel)
	case CLI.LogLevel == "debug":
		logger.SetLevel(log.DebugLevel)
	case CLI.LogLevel == "warn":
		logger.SetLevel(log.WarnLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}

	if CLI.Players < 2 {
		fmt.Println("need at least 2 players")
		ctx.Exit(1)
	}
	if CLI.Parallel < 1 {
		CLI.Parallel = 1
	}

	seed := CLI.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := randutil.New(seed)
	logger.Info("starting simulation",
		"rounds", CLI.Rounds, "players", CLI.Players, "lobbies", CLI.Parallel, "seed", seed)

	var (
		mu    sync.Mutex
		total game.WinTally
	)
	var g errgroup.Group
	for i := 0; i < CLI.Parallel; i++ {
		lobby := fmt.Sprintf("SIM%d", i+1)
		lobbySeed := rng.Int64()
		g.Go(func() error {
			tally, err := runLobby(lobby, lobbySeed, logger.With("lobby", lobby))
			if err != nil {
				return err
			}
			mu.Lock()
			total.HumanWins += tally.HumanWins
			total.AIWins += tally.AIWins
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error("simulation failed", "error", err)
		ctx.Exit(1)
	}

	logger.Info("simulation complete",
		"rounds", CLI.Rounds*CLI.Parallel,
		"human_wins", total.HumanWins,
		"ai_wins", total.AIWins)
}

// runLobby simulates a full lobby: seats AI players, plays the configured
// number of rounds, and returns the final tally.
func runLobby(lobby string, seed int64, logger *log.Logger) (game.WinTally, error) {
	rng := randutil.New(seed)

	// Short delays keep the simulation brisk while still exercising the
	// scheduling paths.
	cfg := game.DefaultConfig()
	cfg.AIQuestionDelay = 5 * time.Millisecond
	cfg.AIAnswerDelay = 5 * time.Millisecond
	cfg.AIVoteDelay = 5 * time.Millisecond

	stats := statistics.NewCollector(logger)
	coord := game.NewCoordinator(lobby, cfg, game.Deps{
		Logger:    logger,
		RNG:       randutil.New(rng.Int64()),
		Generator: ai.NewGenerator(randutil.New(rng.Int64()), logger),
		Guesser:   ai.NewKeywordGuesser(logger),
		Stats:     stats,
	})
	coord.Events().Subscribe(&transcript{logger: logger})
	coord.Start()
	defer coord.Close()

	names := append([]string(nil), game.AINames...)
	randutil.Shuffle(rng, names)
	var requesterID string
	for i := 0; i < CLI.Players; i++ {
		id := uuid.NewString()
		if i == 0 {
			requesterID = id
		}
		if err := coord.Join(id, names[i%len(names)], true); err != nil {
			return game.WinTally{}, fmt.Errorf("seat player: %w", err)
		}
	}

	for round := 1; round <= CLI.Rounds; round++ {
		if err := coord.StartRound(); err != nil {
			return game.WinTally{}, fmt.Errorf("start round %d: %w", round, err)
		}
		if !runRound(coord, requesterID, cfg, logger) {
			return game.WinTally{}, fmt.Errorf("round %d stalled", round)
		}
		if err := coord.Reset("next simulated round"); err != nil {
			return game.WinTally{}, fmt.Errorf("reset lobby: %w", err)
		}
	}

	return stats.Tally(), nil
}

// runRound polls until the round finishes, requesting the vote once the
// question quota is met. AI players handle everything else on their own.
func runRound(coord *game.Coordinator, requesterID string, cfg game.Config, logger *log.Logger) bool {
	deadline := time.Now().Add(30 * time.Second)
	requested := false

	for time.Now().Before(deadline) {
		view, err := coord.RoundView()
		if err != nil {
			return false
		}
		switch view.State {
		case game.StateFinished:
			return true
		case game.StatePlaying:
			if !requested && view.QuestionCount >= cfg.QuestionQuota {
				if err := coord.RequestVoting(requesterID); err != nil {
					logger.Debug("vote request rejected", "error", err)
				} else {
					requested = true
				}
			}
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}
