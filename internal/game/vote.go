package game

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Choice is a tagged vote: either a vote for a target or an explicit pass.
// The tagged form keeps the pass sentinel out of the target ID space.
type Choice struct {
	Target string
	Pass   bool
}

// VoteFor returns a choice that votes for the given player.
func VoteFor(targetID string) Choice {
	return Choice{Target: targetID}
}

// PassVote returns an explicit pass.
func PassVote() Choice {
	return Choice{Pass: true}
}

// Ballot is one recorded vote.
type Ballot struct {
	Voter  string
	Choice Choice
	CastAt time.Time
}

// Tally is the derived vote count per candidate, recomputed on request and
// never persisted.
type Tally struct {
	Counts  map[string]int
	Passes  int
	Ballots int
}

// VoteOutcome classifies the result of a voting phase.
type VoteOutcome string

const (
	// OutcomeContinue means every vote was a pass: nobody is eliminated and
	// the round returns to questions.
	OutcomeContinue VoteOutcome = "continue"
	// OutcomeElimination means a single player had the most votes.
	OutcomeElimination VoteOutcome = "elimination"
	// OutcomeTie means two or more players shared the maximum.
	OutcomeTie VoteOutcome = "tie"
)

// VoteResult is the resolved outcome of a completed tally.
type VoteResult struct {
	Outcome    VoteOutcome
	Eliminated []string
	Winner     Winner // WinnerNone while the round continues
	RoundOver  bool
	Message    string
}

type votePhase int

const (
	voteIdle votePhase = iota
	voteOpen
	voteComplete
)

// VoteEngine collects one ballot per eligible voter for a voting phase.
// Owned by the coordinator's actor loop; not safe for concurrent use.
type VoteEngine struct {
	phase    votePhase
	eligible map[string]bool
	ballots  map[string]Ballot
	now      func() time.Time
}

// NewVoteEngine creates an idle vote engine.
func NewVoteEngine(now func() time.Time) *VoteEngine {
	if now == nil {
		now = time.Now
	}
	return &VoteEngine{now: now}
}

// StartVoting opens a voting phase for the given voters, clearing any prior
// ballots.
func (ve *VoteEngine) StartVoting(eligibleVoters []string) {
	ve.phase = voteOpen
	ve.eligible = make(map[string]bool, len(eligibleVoters))
	for _, id := range eligibleVoters {
		ve.eligible[id] = true
	}
	ve.ballots = make(map[string]Ballot, len(eligibleVoters))
}

// Cast records one vote or pass. Eligible candidates are the eligible voters
// themselves, minus the voter.
func (ve *VoteEngine) Cast(voterID string, choice Choice) error {
	if ve.phase != voteOpen {
		return ErrVotingClosed
	}
	if !ve.eligible[voterID] {
		return ErrNotEligible
	}
	if _, ok := ve.ballots[voterID]; ok {
		return ErrAlreadyVoted
	}
	if !choice.Pass {
		if choice.Target == voterID {
			return ErrSelfVote
		}
		if !ve.eligible[choice.Target] {
			return ErrInvalidTarget
		}
	}
	ve.ballots[voterID] = Ballot{Voter: voterID, Choice: choice, CastAt: ve.now()}
	if len(ve.ballots) >= len(ve.eligible) {
		ve.phase = voteComplete
	}
	return nil
}

// Withdraw removes a voter from the phase, for mid-vote disconnects. Any
// ballot the voter already cast still counts; completion is re-checked
// against the shrunken electorate so a departed voter cannot hold the vote
// open.
func (ve *VoteEngine) Withdraw(voterID string) {
	if ve.phase != voteOpen || !ve.eligible[voterID] {
		return
	}
	delete(ve.eligible, voterID)
	if len(ve.ballots) >= len(ve.eligible) {
		ve.phase = voteComplete
	}
}

// IsComplete reports whether every eligible voter has cast a ballot.
func (ve *VoteEngine) IsComplete() bool {
	return ve.phase == voteComplete
}

// ForceComplete closes the phase with the ballots cast so far, for timeout
// handling.
func (ve *VoteEngine) ForceComplete() {
	if ve.phase == voteOpen {
		ve.phase = voteComplete
	}
}

// BallotsCast returns how many ballots have been recorded.
func (ve *VoteEngine) BallotsCast() int {
	return len(ve.ballots)
}

// EligibleCount returns how many voters may cast a ballot.
func (ve *VoteEngine) EligibleCount() int {
	return len(ve.eligible)
}

// Reset returns the engine to idle, dropping all ballots.
func (ve *VoteEngine) Reset() {
	ve.phase = voteIdle
	ve.eligible = nil
	ve.ballots = nil
}

// CurrentTally recomputes the tally from the recorded ballots.
func (ve *VoteEngine) CurrentTally() Tally {
	t := Tally{Counts: make(map[string]int)}
	for _, b := range ve.ballots {
		t.Ballots++
		if b.Choice.Pass {
			t.Passes++
			continue
		}
		t.Counts[b.Choice.Target]++
	}
	return t
}

// Resolve computes the outcome of a completed tally. It is a pure function of
// its inputs: resolving the same tally twice yields the same result.
//
// Rules, in priority order:
//  1. all passes (or no ballots): continue, nobody eliminated
//  2. unique maximum: that player is eliminated; humans win when the outsider
//     falls, the AI wins otherwise
//  3. tie with exactly two active players: humans win by default
//  4. tie with three or more active players: every tied player is eliminated;
//     the AI wins if fewer than two players would remain
func Resolve(t Tally, names map[string]string, outsiderID string, totalActive int) VoteResult {
	maxVotes := 0
	for _, n := range t.Counts {
		if n > maxVotes {
			maxVotes = n
		}
	}
	var leaders []string
	for id, n := range t.Counts {
		if n == maxVotes && n > 0 {
			leaders = append(leaders, id)
		}
	}
	sort.Strings(leaders)

	displayName := func(id string) string {
		if name, ok := names[id]; ok {
			return name
		}
		return id
	}

	switch {
	case len(leaders) == 0:
		return VoteResult{
			Outcome: OutcomeContinue,
			Message: "Everyone passed! No one was eliminated. The game continues!",
		}

	case len(leaders) == 1:
		eliminated := leaders[0]
		if eliminated == outsiderID {
			return VoteResult{
				Outcome:    OutcomeElimination,
				Eliminated: leaders,
				Winner:     WinnerHumans,
				RoundOver:  true,
				Message:    fmt.Sprintf("Humans win! %s (the outsider) was eliminated!", displayName(eliminated)),
			}
		}
		return VoteResult{
			Outcome:    OutcomeElimination,
			Eliminated: leaders,
			Winner:     WinnerAI,
			RoundOver:  true,
			Message:    fmt.Sprintf("AI wins! %s was eliminated!", displayName(eliminated)),
		}

	case totalActive == 2:
		// The outsider survived maximal exposure with a single accuser; a
		// near-miss rather than an outsider win.
		return VoteResult{
			Outcome:   OutcomeTie,
			Winner:    WinnerHumans,
			RoundOver: true,
			Message:   "Tie in a 1v1 game! Humans win by default!",
		}

	default:
		eliminatedNames := make([]string, len(leaders))
		for i, id := range leaders {
			eliminatedNames[i] = displayName(id)
		}
		result := VoteResult{
			Outcome:    OutcomeTie,
			Eliminated: leaders,
			Message:    fmt.Sprintf("Tie! %s were all eliminated!", strings.Join(eliminatedNames, ", ")),
		}
		if totalActive-len(leaders) < 2 {
			result.Winner = WinnerAI
			result.RoundOver = true
			result.Message = "Not enough players remaining. AI wins!"
		}
		return result
	}
}
