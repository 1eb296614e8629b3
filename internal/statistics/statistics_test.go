package statistics

import (
	"io"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"

	"github.com/outsidergame/outsider/internal/game"
)

func newTestCollector() *Collector {
	return NewCollector(log.NewWithOptions(io.Discard, log.Options{}))
}

func TestRecordWinCounts(t *testing.T) {
	c := newTestCollector()
	c.RecordWin(game.WinnerHumans)
	c.RecordWin(game.WinnerHumans)
	c.RecordWin(game.WinnerAI)

	tally := c.Tally()
	assert.Equal(t, 2, tally.HumanWins)
	assert.Equal(t, 1, tally.AIWins)
}

func TestRecordWinIgnoresUnknownWinner(t *testing.T) {
	c := newTestCollector()
	c.RecordWin(game.WinnerNone)
	assert.Equal(t, game.WinTally{}, c.Tally())
}

func TestNewCollectorWithTallySeedsCounts(t *testing.T) {
	c := NewCollectorWithTally(log.NewWithOptions(io.Discard, log.Options{}), game.WinTally{HumanWins: 4, AIWins: 2})
	c.RecordWin(game.WinnerAI)

	tally := c.Tally()
	assert.Equal(t, 4, tally.HumanWins)
	assert.Equal(t, 3, tally.AIWins)
}

func TestClearResetsCounts(t *testing.T) {
	c := newTestCollector()
	c.RecordWin(game.WinnerAI)
	c.Clear()
	assert.Equal(t, game.WinTally{}, c.Tally())
}

func TestConcurrentRecording(t *testing.T) {
	c := newTestCollector()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.RecordWin(game.WinnerHumans)
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, c.Tally().HumanWins)
}
