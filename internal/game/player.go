package game

// Player represents a participant in a round. Counters are per-round and
// reset by Registry.ResetForRound.
type Player struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	IsAI              bool   `json:"is_ai"`
	IsOutsider        bool   `json:"is_outsider"`
	Connected         bool   `json:"connected"`
	QuestionsAsked    int    `json:"questions_asked"`
	QuestionsAnswered int    `json:"questions_answered"`
	VotesReceived     int    `json:"votes_received"`
}

// Registry is the roster of players for a single lobby. It is owned by the
// round coordinator's actor loop and is not safe for concurrent use.
type Registry struct {
	players map[string]*Player
	order   []string // join order, stable iteration
}

// NewRegistry creates an empty roster.
func NewRegistry() *Registry {
	return &Registry{players: make(map[string]*Player)}
}

// AddPlayer adds a player to the roster. Adding an existing ID fails with
// ErrPlayerExists.
func (r *Registry) AddPlayer(id, name string, isAI bool) (*Player, error) {
	if _, ok := r.players[id]; ok {
		return nil, ErrPlayerExists
	}
	p := &Player{ID: id, Name: name, IsAI: isAI, Connected: true}
	r.players[id] = p
	r.order = append(r.order, id)
	return p, nil
}

// RemovePlayer detaches a player from the roster.
func (r *Registry) RemovePlayer(id string) error {
	if _, ok := r.players[id]; !ok {
		return ErrPlayerNotFound
	}
	delete(r.players, id)
	for i, pid := range r.order {
		if pid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// Get returns the player with the given ID.
func (r *Registry) Get(id string) (*Player, error) {
	p, ok := r.players[id]
	if !ok {
		return nil, ErrPlayerNotFound
	}
	return p, nil
}

// Active returns connected players in join order.
func (r *Registry) Active() []*Player {
	active := make([]*Player, 0, len(r.order))
	for _, id := range r.order {
		if p := r.players[id]; p != nil && p.Connected {
			active = append(active, p)
		}
	}
	return active
}

// ActiveIDs returns the IDs of connected players in join order.
func (r *Registry) ActiveIDs() []string {
	active := r.Active()
	ids := make([]string, len(active))
	for i, p := range active {
		ids[i] = p.ID
	}
	return ids
}

// AIPlayers returns connected AI players in join order.
func (r *Registry) AIPlayers() []*Player {
	var ais []*Player
	for _, p := range r.Active() {
		if p.IsAI {
			ais = append(ais, p)
		}
	}
	return ais
}

// AssignOutsider marks the given player as the round's outsider. Exactly one
// assignment per round; the outsider is always an AI player.
func (r *Registry) AssignOutsider(id string) error {
	for _, p := range r.players {
		if p.IsOutsider {
			return ErrOutsiderAssigned
		}
	}
	p, ok := r.players[id]
	if !ok {
		return ErrPlayerNotFound
	}
	if !p.IsAI {
		return ErrOutsiderNotAI
	}
	p.IsOutsider = true
	return nil
}

// Outsider returns the current outsider, if assigned.
func (r *Registry) Outsider() (*Player, bool) {
	for _, id := range r.order {
		if p := r.players[id]; p != nil && p.IsOutsider {
			return p, true
		}
	}
	return nil, false
}

// ResetForRound clears roles and per-round counters ahead of a new round.
func (r *Registry) ResetForRound() {
	for _, p := range r.players {
		p.IsOutsider = false
		p.QuestionsAsked = 0
		p.QuestionsAnswered = 0
		p.VotesReceived = 0
	}
}

// IncrementQuestionsAsked bumps the asked counter for a player.
func (r *Registry) IncrementQuestionsAsked(id string) {
	if p, ok := r.players[id]; ok {
		p.QuestionsAsked++
	}
}

// IncrementQuestionsAnswered bumps the answered counter for a player.
func (r *Registry) IncrementQuestionsAnswered(id string) {
	if p, ok := r.players[id]; ok {
		p.QuestionsAnswered++
	}
}

// IncrementVotesReceived bumps the votes-received counter for a player.
func (r *Registry) IncrementVotesReceived(id string) {
	if p, ok := r.players[id]; ok {
		p.VotesReceived++
	}
}

// Len returns the roster size including disconnected players.
func (r *Registry) Len() int {
	return len(r.players)
}

// Snapshot returns copies of all players in join order, for events and
// persistence.
func (r *Registry) Snapshot() []Player {
	out := make([]Player, 0, len(r.order))
	for _, id := range r.order {
		if p := r.players[id]; p != nil {
			out = append(out, *p)
		}
	}
	return out
}
