package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outsidergame/outsider/internal/game"
)

func exchange(question, answer string) game.Exchange {
	return game.Exchange{Question: question, Answer: answer}
}

func TestGuessAbstainsOnEmptyHistory(t *testing.T) {
	g := NewKeywordGuesser(testLogger())

	result := g.Guess(context.Background(), game.GuessQuery{
		CandidateLocations: game.Locations,
	})
	assert.Empty(t, result.Location)
	assert.Zero(t, result.Confidence)
}

func TestGuessAbstainsOnVagueConversation(t *testing.T) {
	g := NewKeywordGuesser(testLogger())

	result := g.Guess(context.Background(), game.GuessQuery{
		History: []game.Exchange{
			exchange("How are you feeling today?", "Fine, thanks for asking."),
			exchange("Would you come back again?", "Maybe, if I have the time."),
		},
		CandidateLocations: game.Locations,
	})
	assert.Empty(t, result.Location)
}

func TestGuessPicksUpKeywordDensity(t *testing.T) {
	g := NewKeywordGuesser(testLogger())

	result := g.Guess(context.Background(), game.GuessQuery{
		History: []game.Exchange{
			exchange("Did you remember sunscreen?", "Yes, and a towel for the sand."),
			exchange("Are the waves strong today?", "Strong enough that I'd rather not swim."),
		},
		CandidateLocations: game.Locations,
	})
	require.Equal(t, "Beach", result.Location)
	assert.GreaterOrEqual(t, result.Confidence, 0.6)
	assert.NotEmpty(t, result.Reasoning)
}

func TestGuessDirectMentionScoresHighest(t *testing.T) {
	g := NewKeywordGuesser(testLogger())

	result := g.Guess(context.Background(), game.GuessQuery{
		History: []game.Exchange{
			exchange("Is the casino busy tonight?", "The dealer barely gets a break."),
		},
		CandidateLocations: game.Locations,
	})
	require.Equal(t, "Casino", result.Location)
	assert.GreaterOrEqual(t, result.Confidence, 0.9)
}

func TestGuessFewKeywordsStaysBelowCommitBar(t *testing.T) {
	g := NewKeywordGuesser(testLogger())

	// A single keyword hit is a hunch, not a guess worth committing to.
	result := g.Guess(context.Background(), game.GuessQuery{
		History: []game.Exchange{
			exchange("Did you check the menu yet?", "Not yet."),
		},
		CandidateLocations: game.Locations,
	})
	if result.Location != "" {
		assert.Less(t, result.Confidence, 0.6)
	}
}

func TestKeywordTableCoversEveryLocation(t *testing.T) {
	for _, location := range game.Locations {
		kws, ok := locationKeywords[location]
		require.True(t, ok, "missing keywords for %s", location)
		assert.NotEmpty(t, kws, "empty keywords for %s", location)
	}
}
