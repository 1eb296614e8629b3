package ai

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outsidergame/outsider/internal/game"
	"github.com/outsidergame/outsider/internal/randutil"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func TestGenerateQuestionAddressesTarget(t *testing.T) {
	g := NewGenerator(randutil.New(1), testLogger())

	q := g.GenerateQuestion(context.Background(), game.QuestionPrompt{
		AskerName:  "Botwell",
		TargetName: "Alice",
	})
	assert.Contains(t, q, "Alice")
	assert.NotEmpty(t, q)
}

func TestGenerateQuestionNeverLeaksLocation(t *testing.T) {
	g := NewGenerator(randutil.New(2), testLogger())

	for i := 0; i < 100; i++ {
		q := g.GenerateQuestion(context.Background(), game.QuestionPrompt{
			AskerName:  "Botwell",
			TargetName: "Alice",
			Location:   "Submarine",
		})
		assert.NotContains(t, strings.ToLower(q), "submarine")
	}
}

func TestGenerateAnswerIsNeverEmpty(t *testing.T) {
	g := NewGenerator(randutil.New(3), testLogger())

	for _, outsider := range []bool{true, false} {
		a := g.GenerateAnswer(context.Background(), game.AnswerPrompt{
			Question:   "How long do you usually stay?",
			TargetName: "Botwell",
			IsOutsider: outsider,
		})
		require.NotEmpty(t, a)
	}
}

func TestOutsiderAndInsiderDrawFromDifferentPools(t *testing.T) {
	g := NewGenerator(randutil.New(4), testLogger())

	insider := make(map[string]bool)
	outsider := make(map[string]bool)
	for i := 0; i < 200; i++ {
		insider[g.GenerateAnswer(context.Background(), game.AnswerPrompt{})] = true
		outsider[g.GenerateAnswer(context.Background(), game.AnswerPrompt{IsOutsider: true})] = true
	}
	for a := range insider {
		assert.False(t, outsider[a], "pools must not overlap: %q", a)
	}
}
