// Package ai provides the built-in question/answer generator and the
// outsider's location-guessing heuristic. Both are deliberately fallible-free:
// they always return something usable so a round can never stall on them.
package ai

import (
	"context"
	"fmt"
	rand "math/rand/v2"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/outsidergame/outsider/internal/game"
)

// Generator produces templated conversation text for AI players. Insiders
// draw from prompts that presume familiarity with the location; the outsider
// fishes with deliberately vague ones.
type Generator struct {
	mu     sync.Mutex
	rng    *rand.Rand
	logger *log.Logger
}

// NewGenerator creates a generator backed by the given random source.
func NewGenerator(rng *rand.Rand, logger *log.Logger) *Generator {
	if logger == nil {
		logger = log.Default()
	}
	return &Generator{rng: rng, logger: logger.WithPrefix("generator")}
}

var insiderQuestions = []string{
	"What's the first thing you noticed when you got here, %s?",
	"Would you bring your family to a place like this, %s?",
	"How do you usually pass the time here, %s?",
	"What would you wear somewhere like this, %s?",
	"Does the atmosphere here suit you, %s?",
	"What's the one thing you'd change about this place, %s?",
	"Do the people here ever surprise you, %s?",
}

var outsiderQuestions = []string{
	"What do you like most about coming here, %s?",
	"How long do you usually stay, %s?",
	"What kind of people do you run into around here, %s?",
	"Is this somewhere you'd come on your own, %s?",
	"Did you have to plan ahead to be here today, %s?",
}

var insiderAnswers = []string{
	"Honestly, it depends on the day. Some visits are better than others.",
	"I know my way around well enough to feel comfortable.",
	"The regulars make it what it is, really.",
	"I always end up staying longer than I planned.",
	"You pick up the little routines pretty fast here.",
}

var outsiderAnswers = []string{
	"Oh, the usual. Nothing out of the ordinary.",
	"I try not to overthink it, I just go with the flow.",
	"Hard to say, I haven't been paying that much attention.",
	"About as long as anyone else, I suppose.",
	"Same as you, probably.",
}

// GenerateQuestion returns a question addressed to the prompt's target.
func (g *Generator) GenerateQuestion(_ context.Context, prompt game.QuestionPrompt) string {
	pool := insiderQuestions
	if prompt.IsOutsider {
		pool = outsiderQuestions
	}
	question := fmt.Sprintf(g.pick(pool), prompt.TargetName)
	g.logger.Debug("generated question", "asker", prompt.AskerName, "outsider", prompt.IsOutsider)
	return question
}

// GenerateAnswer returns an answer to the prompt's pending question.
func (g *Generator) GenerateAnswer(_ context.Context, prompt game.AnswerPrompt) string {
	pool := insiderAnswers
	if prompt.IsOutsider {
		pool = outsiderAnswers
	}
	answer := g.pick(pool)
	g.logger.Debug("generated answer", "target", prompt.TargetName, "outsider", prompt.IsOutsider)
	return answer
}

func (g *Generator) pick(pool []string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return pool[g.rng.IntN(len(pool))]
}

var _ game.TextGenerationService = (*Generator)(nil)
