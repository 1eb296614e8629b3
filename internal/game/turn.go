package game

import (
	rand "math/rand/v2"

	"github.com/outsidergame/outsider/internal/randutil"
)

// TurnEngine computes turn order and asker/target pairs. Turn order is fixed
// once per round so every player gets roughly equal asking opportunities;
// target selection is per-turn random to keep the conversation unpredictable.
type TurnEngine struct {
	rng *rand.Rand
}

// NewTurnEngine creates a turn engine backed by the given random source.
func NewTurnEngine(rng *rand.Rand) *TurnEngine {
	return &TurnEngine{rng: rng}
}

// BuildTurnOrder returns the player IDs rotated so startingID is first. When
// startingID is empty a starter is picked uniformly at random.
func (te *TurnEngine) BuildTurnOrder(players []*Player, startingID string) ([]string, error) {
	if len(players) == 0 {
		return nil, ErrEmptyRoster
	}
	ids := make([]string, len(players))
	for i, p := range players {
		ids[i] = p.ID
	}
	if startingID == "" {
		startingID = randutil.Pick(te.rng, ids)
	}
	start := -1
	for i, id := range ids {
		if id == startingID {
			start = i
			break
		}
	}
	if start < 0 {
		return nil, ErrPlayerNotFound
	}
	order := make([]string, 0, len(ids))
	order = append(order, ids[start:]...)
	order = append(order, ids[:start]...)
	return order, nil
}

// NextAsker returns the asker for the given turn index.
func (te *TurnEngine) NextAsker(order []string, turnIndex int) (string, error) {
	if len(order) == 0 {
		return "", ErrEmptyRoster
	}
	return order[turnIndex%len(order)], nil
}

// PickTarget selects a target for the asker uniformly at random among active
// players, excluding the asker. With only two active players the target is
// forced but the exclude-self rule still applies.
func (te *TurnEngine) PickTarget(askerID string, active []*Player) (string, error) {
	candidates := make([]string, 0, len(active))
	for _, p := range active {
		if p.ID != askerID {
			candidates = append(candidates, p.ID)
		}
	}
	if len(candidates) == 0 {
		return "", ErrNoValidTarget
	}
	return randutil.Pick(te.rng, candidates), nil
}

// Advance moves the round to the next turn: the index is bumped, the pending
// asker/target pair is cleared and recomputed from the fixed order.
func (te *TurnEngine) Advance(r *Round, active []*Player) error {
	r.TurnIndex++
	r.CurrentTarget = ""
	asker, err := te.NextAsker(r.Order, r.TurnIndex)
	if err != nil {
		return err
	}
	target, err := te.PickTarget(asker, active)
	if err != nil {
		return err
	}
	r.CurrentAsker = asker
	r.CurrentTarget = target
	return nil
}
