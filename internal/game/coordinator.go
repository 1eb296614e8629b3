package game

import (
	"context"
	"fmt"
	rand "math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"

	"github.com/outsidergame/outsider/internal/randutil"
)

// Deps carries the coordinator's collaborators. Logger, Clock and RNG get
// sensible defaults when nil; Generator and Guesser fall back to canned
// implementations; Store is optional.
type Deps struct {
	Logger    *log.Logger
	Clock     quartz.Clock
	RNG       *rand.Rand
	Generator TextGenerationService
	Guesser   LocationGuessService
	Stats     StatisticsSink
	Store     PersistenceGateway
}

// Coordinator is the top-level state machine for one lobby. All round state
// is owned by a single actor goroutine: every external call is marshalled
// through a command channel, so state mutations for a round never
// interleave. Deferred AI actions re-enter through the same channel and are
// discarded when the round epoch has moved on.
type Coordinator struct {
	lobby  string
	cfg    Config
	logger *log.Logger
	clock  quartz.Clock
	rng    *rand.Rand

	registry *Registry
	turns    *TurnEngine
	mediator *Mediator
	votes    *VoteEngine
	bus      EventBus

	gen     TextGenerationService
	guesser LocationGuessService
	stats   StatisticsSink
	store   PersistenceGateway

	round *Round
	epoch uint64

	commands  chan command
	done      chan struct{}
	closeOnce sync.Once

	warnTimer  *quartz.Timer
	resetTimer *quartz.Timer
	pauseDepth int
}

type command struct {
	fn    func() error
	reply chan error
}

// NewCoordinator creates a coordinator for the given lobby. Call Start to
// begin processing and Close when the lobby is discarded.
func NewCoordinator(lobby string, cfg Config, deps Deps) *Coordinator {
	logger := deps.Logger
	if logger == nil {
		logger = log.Default()
	}
	clock := deps.Clock
	if clock == nil {
		clock = quartz.NewReal()
	}
	rng := deps.RNG
	if rng == nil {
		rng = randutil.NewFromTime()
	}
	gen := deps.Generator
	if gen == nil {
		gen = fallbackGenerator{}
	}
	guesser := deps.Guesser
	if guesser == nil {
		guesser = abstainGuesser{}
	}
	stats := deps.Stats
	if stats == nil {
		stats = &localStats{}
	}

	cfg = cfg.withDefaults()
	registry := NewRegistry()
	turns := NewTurnEngine(rng)

	return &Coordinator{
		lobby:    lobby,
		cfg:      cfg,
		logger:   logger.WithPrefix("coordinator").With("lobby", lobby),
		clock:    clock,
		rng:      rng,
		registry: registry,
		turns:    turns,
		mediator: NewMediator(registry, turns, cfg, func() time.Time { return clock.Now() }),
		votes:    NewVoteEngine(func() time.Time { return clock.Now() }),
		bus:      NewEventBus(),
		gen:      gen,
		guesser:  guesser,
		stats:    stats,
		store:    deps.Store,
		commands: make(chan command),
		done:     make(chan struct{}),
	}
}

// Start launches the actor loop.
func (c *Coordinator) Start() {
	go c.run()
}

// Close stops the actor loop and all timers. In-flight AI results are
// discarded.
func (c *Coordinator) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.stopTimers()
	})
}

// Events returns the bus carrying this lobby's round events.
func (c *Coordinator) Events() EventBus {
	return c.bus
}

func (c *Coordinator) run() {
	for {
		select {
		case cmd := <-c.commands:
			cmd.reply <- cmd.fn()
		case <-c.done:
			return
		}
	}
}

// call runs fn on the actor goroutine and waits for its result.
func (c *Coordinator) call(fn func() error) error {
	reply := make(chan error, 1)
	select {
	case c.commands <- command{fn: fn, reply: reply}:
	case <-c.done:
		return ErrCoordinatorClosed
	}
	select {
	case err := <-reply:
		return err
	case <-c.done:
		return ErrCoordinatorClosed
	}
}

// post runs fn on the actor goroutine if the round epoch still matches.
// Used by timers and generation goroutines to re-enter safely.
func (c *Coordinator) post(epoch uint64, fn func()) {
	_ = c.call(func() error {
		if c.epoch == epoch {
			fn()
		}
		return nil
	})
}

// Join adds a player to the lobby. Joining is rejected while a round is
// active.
func (c *Coordinator) Join(id, name string, isAI bool) error {
	return c.call(func() error {
		if c.roundActive() {
			return ErrInvalidState
		}
		_, err := c.registry.AddPlayer(id, name, isAI)
		if err == nil {
			c.logger.Info("player joined", "player", name, "ai", isAI)
		}
		return err
	})
}

// Leave detaches a player. During an active round the player is marked
// disconnected; the round ends defensively if fewer than two active players
// remain.
func (c *Coordinator) Leave(id string) error {
	return c.call(func() error {
		p, err := c.registry.Get(id)
		if err != nil {
			return err
		}
		if !c.roundActive() {
			return c.registry.RemovePlayer(id)
		}
		p.Connected = false
		c.logger.Info("player disconnected mid-round", "player", p.Name)
		c.round.Order = removeID(c.round.Order, id)
		if len(c.registry.Active()) < 2 {
			c.defensiveEnd("not enough players remaining")
			return nil
		}
		if c.round.State == StateVoting {
			c.votes.Withdraw(id)
			if c.votes.IsComplete() {
				c.resolveVotes()
			}
			return nil
		}
		if c.round.State == StatePlaying && (c.round.CurrentAsker == id || c.round.CurrentTarget == id) {
			c.round.CurrentAsker = ""
			c.round.CurrentTarget = ""
			c.round.Exchanges = dropUnanswered(c.round.Exchanges)
			c.startTurn()
		}
		return nil
	})
}

// StartRound begins a new round: secret location, outsider assignment, turn
// order, first turn.
func (c *Coordinator) StartRound() error {
	return c.call(func() error { return c.startRound() })
}

// AskQuestion records a question from a human asker.
func (c *Coordinator) AskQuestion(askerID, targetID, text string) error {
	return c.call(func() error { return c.askQuestion(askerID, targetID, text) })
}

// SubmitAnswer completes the pending exchange with a human answer.
func (c *Coordinator) SubmitAnswer(answererID, text string) error {
	return c.call(func() error { return c.submitAnswer(answererID, text) })
}

// RequestVoting moves the round to the voting phase once the question quota
// is met.
func (c *Coordinator) RequestVoting(requesterID string) error {
	return c.call(func() error { return c.requestVoting(requesterID) })
}

// CastVote records one vote or pass for the voter.
func (c *Coordinator) CastVote(voterID string, choice Choice) error {
	return c.call(func() error { return c.castVote(voterID, choice) })
}

// CloseVoting force-resolves the vote with the ballots cast so far.
func (c *Coordinator) CloseVoting() error {
	return c.call(func() error {
		if c.round == nil || c.round.State != StateVoting {
			return ErrInvalidState
		}
		c.votes.ForceComplete()
		c.resolveVotes()
		return nil
	})
}

// Reset returns the lobby to the waiting state, discarding any in-flight AI
// work. Win tallies are preserved.
func (c *Coordinator) Reset(reason string) error {
	return c.call(func() error {
		c.reset(reason)
		return nil
	})
}

// State returns the round state, or StateWaiting when no round exists.
func (c *Coordinator) State() State {
	state := StateWaiting
	_ = c.call(func() error {
		if c.round != nil {
			state = c.round.State
		}
		return nil
	})
	return state
}

// RoundView returns a copy of the current round.
func (c *Coordinator) RoundView() (Round, error) {
	var view Round
	err := c.call(func() error {
		if c.round == nil {
			return ErrInvalidState
		}
		view = *c.round
		view.Order = append([]string(nil), c.round.Order...)
		view.Exchanges = append([]Exchange(nil), c.round.Exchanges...)
		return nil
	})
	return view, err
}

// Players returns a snapshot of the roster.
func (c *Coordinator) Players() []Player {
	var players []Player
	_ = c.call(func() error {
		players = c.registry.Snapshot()
		return nil
	})
	return players
}

// Wins returns the running win tally.
func (c *Coordinator) Wins() WinTally {
	var tally WinTally
	_ = c.call(func() error {
		tally = c.stats.Tally()
		return nil
	})
	return tally
}

// Snapshot builds a persistable view of the round and roster.
func (c *Coordinator) Snapshot() (*RoundSnapshot, error) {
	var snap *RoundSnapshot
	err := c.call(func() error {
		if c.round == nil {
			return ErrInvalidState
		}
		snap = c.snapshotLocked()
		return nil
	})
	return snap, err
}

// --- actor-side state machine ---

func (c *Coordinator) roundActive() bool {
	return c.round != nil && (c.round.State == StatePlaying || c.round.State == StateVoting)
}

func (c *Coordinator) startRound() error {
	if c.roundActive() {
		return ErrInvalidState
	}
	active := c.registry.Active()
	if len(active) < 2 {
		return ErrInsufficientPlayers
	}
	ais := c.registry.AIPlayers()
	if len(ais) == 0 {
		return ErrOutsiderNotAI
	}

	c.registry.ResetForRound()
	c.votes.Reset()
	outsider := randutil.Pick(c.rng, ais)
	if err := c.registry.AssignOutsider(outsider.ID); err != nil {
		return err
	}

	order, err := c.turns.BuildTurnOrder(active, "")
	if err != nil {
		return err
	}

	c.round = &Round{
		ID:        uuid.NewString(),
		Lobby:     c.lobby,
		Location:  randutil.Pick(c.rng, Locations),
		Order:     order,
		State:     StatePlaying,
		StartedAt: c.clock.Now(),
	}

	c.logger.Info("round started",
		"round", c.round.ID,
		"location", c.round.Location,
		"players", len(active),
		"outsider", outsider.Name)

	c.publish(RoundStartedEvent{
		RoundID:   c.round.ID,
		Lobby:     c.lobby,
		Location:  c.round.Location,
		Players:   c.registry.Snapshot(),
		Order:     order,
		timestamp: c.clock.Now(),
	})

	c.touchActivity()
	c.startTurn()
	c.persist()
	return nil
}

// startTurn publishes the current turn and schedules the asker when it is an
// AI player. The asker/target pair is computed here only when unset (first
// turn, or after a pair was invalidated); normally SubmitAnswer has already
// advanced it.
func (c *Coordinator) startTurn() {
	if c.round == nil || c.round.State != StatePlaying {
		return
	}
	if c.round.CurrentAsker == "" {
		asker, err := c.turns.NextAsker(c.round.Order, c.round.TurnIndex)
		if err != nil {
			c.defensiveEnd("no asker available")
			return
		}
		target, err := c.turns.PickTarget(asker, c.registry.Active())
		if err != nil {
			c.defensiveEnd("no valid question target")
			return
		}
		c.round.CurrentAsker = asker
		c.round.CurrentTarget = target
	}

	asker, err := c.registry.Get(c.round.CurrentAsker)
	if err != nil {
		c.defensiveEnd("asker left the roster")
		return
	}
	target, err := c.registry.Get(c.round.CurrentTarget)
	if err != nil {
		c.defensiveEnd("target left the roster")
		return
	}

	c.publish(TurnStartedEvent{
		RoundID:    c.round.ID,
		TurnNumber: c.round.TurnIndex + 1,
		Asker:      *asker,
		Target:     *target,
		timestamp:  c.clock.Now(),
	})

	if asker.IsAI {
		c.scheduleAIQuestion(asker.ID, target.ID)
	}
}

func (c *Coordinator) askQuestion(askerID, targetID, text string) error {
	if c.round == nil {
		return ErrInvalidState
	}
	ex, err := c.mediator.AskQuestion(c.round, askerID, targetID, text)
	if err != nil {
		return err
	}
	c.logger.Debug("question asked", "asker", ex.AskerName, "target", ex.TargetName)
	c.publish(QuestionAskedEvent{RoundID: c.round.ID, Exchange: *ex, timestamp: c.clock.Now()})
	c.touchActivity()

	if target, err := c.registry.Get(ex.Target); err == nil && target.IsAI {
		c.scheduleAIAnswer(target.ID, ex.Question, ex.AskerName)
	}
	return nil
}

func (c *Coordinator) submitAnswer(answererID, text string) error {
	if c.round == nil {
		return ErrInvalidState
	}
	ex, err := c.mediator.SubmitAnswer(c.round, answererID, text)
	if err != nil {
		if ex != nil {
			// The answer was recorded but the next turn cannot be formed.
			c.defensiveEnd("cannot advance to the next turn")
			return nil
		}
		return err
	}

	untilVote := c.cfg.QuestionQuota - c.round.QuestionCount
	if untilVote < 0 {
		untilVote = 0
	}
	c.publish(AnswerGivenEvent{
		RoundID:            c.round.ID,
		Exchange:           *ex,
		QuestionCount:      c.round.QuestionCount,
		QuestionsUntilVote: untilVote,
		CanVote:            c.round.QuestionCount >= c.cfg.QuestionQuota,
		timestamp:          c.clock.Now(),
	})
	c.touchActivity()
	c.persist()

	answerer, regErr := c.registry.Get(answererID)
	if regErr == nil && answerer.IsOutsider && c.round.QuestionCount >= c.cfg.GuessThreshold {
		c.scheduleGuess()
	}

	c.startTurn()
	return nil
}

func (c *Coordinator) requestVoting(requesterID string) error {
	if c.round == nil || c.round.State != StatePlaying {
		return ErrInvalidState
	}
	if _, err := c.registry.Get(requesterID); err != nil {
		return err
	}
	if c.round.QuestionCount < c.cfg.QuestionQuota {
		return fmt.Errorf("%w: %d of %d questions asked",
			ErrQuotaNotMet, c.round.QuestionCount, c.cfg.QuestionQuota)
	}

	c.round.State = StateVoting
	eligible := c.registry.Active()
	c.votes.StartVoting(c.registry.ActiveIDs())
	c.logger.Info("voting started", "requested_by", requesterID, "eligible", len(eligible))

	snapshot := make([]Player, len(eligible))
	for i, p := range eligible {
		snapshot[i] = *p
	}
	c.publish(VotingStartedEvent{RoundID: c.round.ID, Eligible: snapshot, timestamp: c.clock.Now()})
	c.touchActivity()

	for _, p := range eligible {
		if p.IsAI {
			c.scheduleAIVote(p.ID)
		}
	}
	return nil
}

func (c *Coordinator) castVote(voterID string, choice Choice) error {
	if c.round == nil || c.round.State != StateVoting {
		return ErrInvalidState
	}
	if err := c.votes.Cast(voterID, choice); err != nil {
		return err
	}
	if !choice.Pass {
		c.registry.IncrementVotesReceived(choice.Target)
	}
	voter, _ := c.registry.Get(voterID)
	if voter != nil {
		c.publish(VoteRecordedEvent{
			RoundID:     c.round.ID,
			Voter:       *voter,
			BallotsCast: c.votes.BallotsCast(),
			Eligible:    c.votes.EligibleCount(),
			timestamp:   c.clock.Now(),
		})
	}
	c.touchActivity()

	if c.votes.IsComplete() {
		c.resolveVotes()
	}
	return nil
}

func (c *Coordinator) resolveVotes() {
	tally := c.votes.CurrentTally()
	names := make(map[string]string)
	for _, p := range c.registry.Snapshot() {
		names[p.ID] = p.Name
	}
	outsiderID := ""
	if outsider, ok := c.registry.Outsider(); ok {
		outsiderID = outsider.ID
	}
	totalActive := len(c.registry.Active())

	result := Resolve(tally, names, outsiderID, totalActive)
	c.logger.Info("vote resolved",
		"outcome", result.Outcome,
		"eliminated", result.Eliminated,
		"winner", result.Winner)

	c.publish(VotingResolvedEvent{
		RoundID:   c.round.ID,
		Tally:     tally,
		Result:    result,
		timestamp: c.clock.Now(),
	})

	if result.RoundOver {
		c.endRound(result.Winner, result.Message)
		return
	}

	// Tie with survivors: remove the tied players before continuing.
	outsiderGone := false
	for _, id := range result.Eliminated {
		if id == outsiderID {
			outsiderGone = true
		}
		_ = c.registry.RemovePlayer(id)
		c.round.Order = removeID(c.round.Order, id)
	}
	if outsiderGone {
		c.endRound(WinnerHumans, "the outsider was eliminated in a tie")
		return
	}

	c.votes.Reset()
	c.round.State = StatePlaying
	c.round.QuestionCount = 0
	c.round.CurrentAsker = ""
	c.round.CurrentTarget = ""
	c.startTurn()
	c.persist()
}

func (c *Coordinator) endRound(winner Winner, reason string) {
	if c.round == nil || c.round.State == StateFinished {
		return
	}
	c.round.State = StateFinished
	c.round.Winner = winner
	c.round.WinReason = reason
	c.round.EndedAt = c.clock.Now()
	c.epoch++ // in-flight AI work for this round is now stale
	c.stopTimers()

	c.stats.RecordWin(winner)
	wins := c.stats.Tally()

	var outsider Player
	if p, ok := c.registry.Outsider(); ok {
		outsider = *p
	}

	c.logger.Info("round ended", "winner", winner, "reason", reason,
		"human_wins", wins.HumanWins, "ai_wins", wins.AIWins)

	c.publish(RoundEndedEvent{
		RoundID:   c.round.ID,
		Winner:    winner,
		Reason:    reason,
		Location:  c.round.Location,
		Outsider:  outsider,
		Wins:      wins,
		timestamp: c.clock.Now(),
	})
	c.persist()
	c.persistTally(wins)
}

func (c *Coordinator) defensiveEnd(reason string) {
	// Cannot determine a safe outcome: the outsider escapes by default.
	c.logger.Warn("ending round defensively", "reason", reason)
	c.endRound(WinnerAI, reason)
}

func (c *Coordinator) reset(reason string) {
	c.epoch++
	c.stopTimers()
	c.votes.Reset()
	c.round = nil
	c.registry.ResetForRound()
	for _, p := range c.registry.Snapshot() {
		if !p.Connected {
			_ = c.registry.RemovePlayer(p.ID)
		}
	}
	c.logger.Info("lobby reset", "reason", reason)
	c.publish(RoundResetEvent{Lobby: c.lobby, Reason: reason, timestamp: c.clock.Now()})
	if c.store != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := c.store.DeleteRound(ctx, c.lobby); err != nil {
				c.logger.Error("failed to delete stored round", "error", err)
			}
		}()
	}
}

// --- AI scheduling ---

// scheduleAIQuestion arranges for an AI asker to pose a generated question
// after a humanlike delay. Generation runs off the actor goroutine and
// re-enters with an epoch check.
func (c *Coordinator) scheduleAIQuestion(askerID, targetID string) {
	epoch := c.epoch
	c.clock.AfterFunc(c.cfg.AIQuestionDelay, func() {
		c.post(epoch, func() { c.aiAsk(epoch, askerID, targetID) })
	})
}

func (c *Coordinator) aiAsk(epoch uint64, askerID, targetID string) {
	if c.round == nil || c.round.State != StatePlaying || c.round.CurrentAsker != askerID {
		return
	}
	asker, err1 := c.registry.Get(askerID)
	target, err2 := c.registry.Get(targetID)
	if err1 != nil || err2 != nil {
		return
	}

	prompt := QuestionPrompt{
		AskerName:   asker.Name,
		TargetName:  target.Name,
		IsOutsider:  asker.IsOutsider,
		Personality: asker.Name,
		History:     c.round.History(),
	}
	if !asker.IsOutsider {
		prompt.Location = c.round.Location
	}

	c.pauseActivityTimers()
	go func() {
		text := c.generateWithTimeout(func(ctx context.Context) string {
			return c.gen.GenerateQuestion(ctx, prompt)
		}, fallbackQuestion)
		c.post(epoch, func() {
			c.resumeActivityTimers()
			if err := c.askQuestion(askerID, targetID, text); err != nil {
				c.logger.Error("AI question rejected", "asker", asker.Name, "error", err)
			}
		})
	}()
}

// scheduleAIAnswer arranges for an AI target to answer the pending question.
func (c *Coordinator) scheduleAIAnswer(targetID, question, askerName string) {
	epoch := c.epoch
	c.clock.AfterFunc(c.cfg.AIAnswerDelay, func() {
		c.post(epoch, func() { c.aiAnswer(epoch, targetID, question, askerName) })
	})
}

func (c *Coordinator) aiAnswer(epoch uint64, targetID, question, askerName string) {
	if c.round == nil || c.round.State != StatePlaying || c.round.CurrentTarget != targetID {
		return
	}
	target, err := c.registry.Get(targetID)
	if err != nil {
		return
	}

	prompt := AnswerPrompt{
		Question:    question,
		AskerName:   askerName,
		TargetName:  target.Name,
		IsOutsider:  target.IsOutsider,
		Personality: target.Name,
		History:     c.round.History(),
	}
	if !target.IsOutsider {
		prompt.Location = c.round.Location
	}

	c.pauseActivityTimers()
	go func() {
		text := c.generateWithTimeout(func(ctx context.Context) string {
			return c.gen.GenerateAnswer(ctx, prompt)
		}, fallbackAnswer)
		c.post(epoch, func() {
			c.resumeActivityTimers()
			if err := c.submitAnswer(targetID, text); err != nil {
				c.logger.Error("AI answer rejected", "target", target.Name, "error", err)
			}
		})
	}()
}

// scheduleAIVote arranges for an AI voter to vote for a random human. AI
// players never pass and never vote for themselves, so AI participation
// cannot stall the vote.
func (c *Coordinator) scheduleAIVote(voterID string) {
	epoch := c.epoch
	c.clock.AfterFunc(c.cfg.AIVoteDelay, func() {
		c.post(epoch, func() { c.aiVote(voterID) })
	})
}

func (c *Coordinator) aiVote(voterID string) {
	if c.round == nil || c.round.State != StateVoting {
		return
	}
	var humans, others []string
	for _, p := range c.registry.Active() {
		if p.ID == voterID {
			continue
		}
		if p.IsAI {
			others = append(others, p.ID)
		} else {
			humans = append(humans, p.ID)
		}
	}
	candidates := humans
	if len(candidates) == 0 {
		candidates = others
	}
	if len(candidates) == 0 {
		return
	}
	target := randutil.Pick(c.rng, candidates)
	if err := c.castVote(voterID, VoteFor(target)); err != nil {
		c.logger.Error("AI vote rejected", "voter", voterID, "error", err)
	}
}

// scheduleGuess runs the outsider's location-guess heuristic against the
// conversation so far. A confident exact match ends the round for the AI;
// anything else is discarded.
func (c *Coordinator) scheduleGuess() {
	epoch := c.epoch
	query := GuessQuery{
		History:            c.round.History(),
		CandidateLocations: append([]string(nil), Locations...),
		QuestionsSoFar:     c.round.QuestionCount,
	}
	secret := c.round.Location

	c.pauseActivityTimers()
	go func() {
		result := c.guessWithTimeout(query)
		c.post(epoch, func() {
			c.resumeActivityTimers()
			if c.round == nil || c.round.State == StateFinished {
				return
			}
			if result.Location == "" || result.Confidence < c.cfg.GuessConfidence {
				return
			}
			if strings.EqualFold(result.Location, secret) {
				c.logger.Info("outsider guessed the location",
					"guess", result.Location, "confidence", result.Confidence)
				c.endRound(WinnerAI, "the outsider guessed the location")
			}
		})
	}()
}

// --- external call plumbing ---

// generateWithTimeout runs a generation call off-actor with the configured
// budget. Panics, errors, empty output and timeouts all degrade to the
// fallback; generation never fails the round.
func (c *Coordinator) generateWithTimeout(fn func(ctx context.Context) string, fallback string) string {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	results := make(chan string, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				c.logger.Error("text generation panicked", "panic", r)
				results <- ""
			}
		}()
		results <- fn(ctx)
	}()

	expired := make(chan struct{})
	timer := c.clock.AfterFunc(c.cfg.GenerateTimeout, func() { close(expired) })
	defer timer.Stop()

	select {
	case text := <-results:
		if strings.TrimSpace(text) == "" {
			return fallback
		}
		return text
	case <-expired:
		c.logger.Warn("text generation timed out", "timeout", c.cfg.GenerateTimeout)
		return fallback
	}
}

func (c *Coordinator) guessWithTimeout(query GuessQuery) GuessResult {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	results := make(chan GuessResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				c.logger.Error("location guess panicked", "panic", r)
				results <- GuessResult{}
			}
		}()
		results <- c.guesser.Guess(ctx, query)
	}()

	expired := make(chan struct{})
	timer := c.clock.AfterFunc(c.cfg.GenerateTimeout, func() { close(expired) })
	defer timer.Stop()

	select {
	case result := <-results:
		return result
	case <-expired:
		c.logger.Warn("location guess timed out", "timeout", c.cfg.GenerateTimeout)
		return GuessResult{}
	}
}

// --- inactivity timers ---

// touchActivity re-arms the warning and reset timers. Every qualifying
// action (question, answer, vote, phase change) lands here.
func (c *Coordinator) touchActivity() {
	if !c.roundActive() || c.pauseDepth > 0 {
		return
	}
	c.stopTimers()
	epoch := c.epoch
	c.warnTimer = c.clock.AfterFunc(c.cfg.InactivityWarning, func() {
		c.post(epoch, func() {
			if !c.roundActive() || c.pauseDepth > 0 {
				return
			}
			c.logger.Warn("lobby inactive, reset pending")
			c.publish(InactivityWarningEvent{
				RoundID:   c.round.ID,
				ResetIn:   c.cfg.InactivityReset - c.cfg.InactivityWarning,
				timestamp: c.clock.Now(),
			})
		})
	})
	c.resetTimer = c.clock.AfterFunc(c.cfg.InactivityReset, func() {
		c.post(epoch, func() {
			if !c.roundActive() || c.pauseDepth > 0 {
				return
			}
			c.reset("inactivity")
		})
	})
}

// pauseActivityTimers suspends inactivity tracking while an external
// generation call is in flight, so slow generation cannot trigger a reset.
func (c *Coordinator) pauseActivityTimers() {
	c.pauseDepth++
	if c.pauseDepth == 1 {
		c.stopTimers()
	}
}

func (c *Coordinator) resumeActivityTimers() {
	if c.pauseDepth > 0 {
		c.pauseDepth--
	}
	if c.pauseDepth == 0 {
		c.touchActivity()
	}
}

func (c *Coordinator) stopTimers() {
	if c.warnTimer != nil {
		c.warnTimer.Stop()
		c.warnTimer = nil
	}
	if c.resetTimer != nil {
		c.resetTimer.Stop()
		c.resetTimer = nil
	}
}

// --- persistence ---

func (c *Coordinator) snapshotLocked() *RoundSnapshot {
	view := *c.round
	view.Order = append([]string(nil), c.round.Order...)
	view.Exchanges = append([]Exchange(nil), c.round.Exchanges...)
	return &RoundSnapshot{
		Round:   view,
		Players: c.registry.Snapshot(),
		SavedAt: c.clock.Now(),
	}
}

func (c *Coordinator) persist() {
	if c.store == nil || c.round == nil {
		return
	}
	snap := c.snapshotLocked()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.store.SaveRound(ctx, c.lobby, snap); err != nil {
			c.logger.Error("failed to persist round", "error", err)
		}
	}()
}

func (c *Coordinator) persistTally(tally WinTally) {
	if c.store == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.store.SaveTally(ctx, c.lobby, tally); err != nil {
			c.logger.Error("failed to persist win tally", "error", err)
		}
	}()
}

func (c *Coordinator) publish(event Event) {
	c.bus.Publish(event)
}

// --- helpers and fallbacks ---

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func dropUnanswered(exchanges []Exchange) []Exchange {
	if n := len(exchanges); n > 0 && !exchanges[n-1].Answered() {
		return exchanges[:n-1]
	}
	return exchanges
}

const (
	fallbackQuestion = "What's your favorite thing about this place?"
	fallbackAnswer   = "It's pretty nice here."
)

// fallbackGenerator is used when no text generation service is configured.
type fallbackGenerator struct{}

func (fallbackGenerator) GenerateQuestion(context.Context, QuestionPrompt) string {
	return fallbackQuestion
}

func (fallbackGenerator) GenerateAnswer(context.Context, AnswerPrompt) string {
	return fallbackAnswer
}

// abstainGuesser never guesses.
type abstainGuesser struct{}

func (abstainGuesser) Guess(context.Context, GuessQuery) GuessResult {
	return GuessResult{}
}

// localStats keeps the win tally in memory when no sink is configured. It is
// only touched from the actor goroutine.
type localStats struct {
	tally WinTally
}

func (s *localStats) RecordWin(w Winner) {
	switch w {
	case WinnerHumans:
		s.tally.HumanWins++
	case WinnerAI:
		s.tally.AIWins++
	}
}

func (s *localStats) Tally() WinTally {
	return s.tally
}
