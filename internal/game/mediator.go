package game

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Mediator validates and records a single question-then-answer exchange. It
// mutates only on success; every validation failure leaves the round intact
// so the caller can re-prompt.
type Mediator struct {
	registry *Registry
	turns    *TurnEngine
	cfg      Config
	now      func() time.Time
}

// NewMediator creates a mediator over the given roster and turn engine.
func NewMediator(registry *Registry, turns *TurnEngine, cfg Config, now func() time.Time) *Mediator {
	if now == nil {
		now = time.Now
	}
	return &Mediator{registry: registry, turns: turns, cfg: cfg.withDefaults(), now: now}
}

// AskQuestion records a question from the current asker to the current
// target and increments the asker's counter.
func (m *Mediator) AskQuestion(r *Round, askerID, targetID, text string) (*Exchange, error) {
	if r.State != StatePlaying {
		return nil, ErrInvalidState
	}
	if askerID != r.CurrentAsker {
		return nil, ErrNotYourTurn
	}
	if r.CurrentTarget != "" && targetID != r.CurrentTarget {
		return nil, ErrNotYourTurn
	}
	if _, ok := r.CurrentExchange(); ok {
		return nil, ErrNotYourTurn // previous question still awaiting an answer
	}
	text = strings.TrimSpace(text)
	if err := validateText(text, m.cfg.MaxQuestionLen); err != nil {
		return nil, err
	}
	asker, err := m.registry.Get(askerID)
	if err != nil {
		return nil, err
	}
	target, err := m.registry.Get(targetID)
	if err != nil {
		return nil, err
	}
	if targetID == askerID {
		return nil, ErrNoValidTarget
	}
	if r.CurrentTarget == "" {
		r.CurrentTarget = targetID
	}

	r.Exchanges = append(r.Exchanges, Exchange{
		Asker:      asker.ID,
		AskerName:  asker.Name,
		Target:     target.ID,
		TargetName: target.Name,
		Question:   text,
		AskedAt:    m.now(),
	})
	m.registry.IncrementQuestionsAsked(askerID)
	return &r.Exchanges[len(r.Exchanges)-1], nil
}

// SubmitAnswer completes the pending exchange, increments counters and the
// round's question count, then delegates turn advancement to the turn engine.
func (m *Mediator) SubmitAnswer(r *Round, answererID, text string) (*Exchange, error) {
	if r.State != StatePlaying {
		return nil, ErrInvalidState
	}
	if answererID != r.CurrentTarget {
		return nil, ErrNotYourTurn
	}
	ex, ok := r.CurrentExchange()
	if !ok {
		return nil, ErrNotYourTurn // no question pending
	}
	text = strings.TrimSpace(text)
	if err := validateText(text, m.cfg.MaxAnswerLen); err != nil {
		return nil, err
	}

	ex.Answer = text
	ex.AnsweredAt = m.now()
	m.registry.IncrementQuestionsAnswered(answererID)
	r.QuestionCount++

	if err := m.turns.Advance(r, m.registry.Active()); err != nil {
		return ex, err
	}
	return ex, nil
}

func validateText(text string, limit int) error {
	if text == "" {
		return ErrEmptyInput
	}
	if utf8.RuneCountInString(text) > limit {
		return ErrInputTooLong
	}
	return nil
}
