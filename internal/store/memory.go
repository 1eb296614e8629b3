// Package store persists round snapshots and win tallies keyed by lobby
// code. The in-memory store backs tests and single-process deployments; the
// Redis store survives restarts.
package store

import (
	"context"
	"sync"

	"github.com/outsidergame/outsider/internal/game"
)

// MemoryStore is a concurrency-safe in-memory game.PersistenceGateway.
type MemoryStore struct {
	mu      sync.RWMutex
	rounds  map[string]*game.RoundSnapshot
	tallies map[string]game.WinTally
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rounds:  make(map[string]*game.RoundSnapshot),
		tallies: make(map[string]game.WinTally),
	}
}

// SaveRound stores a copy of the snapshot under the lobby code.
func (s *MemoryStore) SaveRound(_ context.Context, lobby string, snap *game.RoundSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *snap
	cp.Players = append([]game.Player(nil), snap.Players...)
	s.rounds[lobby] = &cp
	return nil
}

// LoadRound returns the stored snapshot, or nil when none exists.
func (s *MemoryStore) LoadRound(_ context.Context, lobby string) (*game.RoundSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.rounds[lobby]
	if !ok {
		return nil, nil
	}
	cp := *snap
	cp.Players = append([]game.Player(nil), snap.Players...)
	return &cp, nil
}

// SaveTally stores the win tally for the lobby.
func (s *MemoryStore) SaveTally(_ context.Context, lobby string, tally game.WinTally) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tallies[lobby] = tally
	return nil
}

// LoadTally returns the stored tally, zero when none exists.
func (s *MemoryStore) LoadTally(_ context.Context, lobby string) (game.WinTally, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tallies[lobby], nil
}

// DeleteRound drops the stored round for the lobby. Tallies are kept.
func (s *MemoryStore) DeleteRound(_ context.Context, lobby string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rounds, lobby)
	return nil
}

var _ game.PersistenceGateway = (*MemoryStore)(nil)
