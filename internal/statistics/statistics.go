// Package statistics tracks win/loss outcomes across rounds. Tallies survive
// lobby resets; only process restarts (or an explicit Clear) drop them unless
// a persistence gateway reloads them.
package statistics

import (
	"sync"

	"github.com/charmbracelet/log"

	"github.com/outsidergame/outsider/internal/game"
)

// Collector is a concurrency-safe win counter implementing
// game.StatisticsSink.
type Collector struct {
	mu     sync.Mutex
	tally  game.WinTally
	logger *log.Logger
}

// NewCollector creates an empty collector.
func NewCollector(logger *log.Logger) *Collector {
	if logger == nil {
		logger = log.Default()
	}
	return &Collector{logger: logger.WithPrefix("stats")}
}

// NewCollectorWithTally creates a collector seeded from a persisted tally.
func NewCollectorWithTally(logger *log.Logger, tally game.WinTally) *Collector {
	c := NewCollector(logger)
	c.tally = tally
	return c
}

// RecordWin counts one round outcome. Unknown winners are ignored.
func (c *Collector) RecordWin(w game.Winner) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch w {
	case game.WinnerHumans:
		c.tally.HumanWins++
	case game.WinnerAI:
		c.tally.AIWins++
	default:
		return
	}
	c.logger.Info("recorded win", "winner", w,
		"human_wins", c.tally.HumanWins, "ai_wins", c.tally.AIWins)
}

// Tally returns the current counts.
func (c *Collector) Tally() game.WinTally {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tally
}

// Clear zeroes the counters.
func (c *Collector) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tally = game.WinTally{}
}

var _ game.StatisticsSink = (*Collector)(nil)
