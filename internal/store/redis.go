package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/outsidergame/outsider/internal/game"
)

// Key layout and retention for persisted lobby state. Stale lobbies age out
// on their own.
const (
	roundKeyPrefix = "outsider:round:"
	tallyKeyPrefix = "outsider:tally:"
	roundTTL       = 24 * time.Hour
)

// RedisStore is a game.PersistenceGateway backed by Redis. Snapshots are
// stored as JSON blobs with a TTL; tallies have no expiry.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a store over an existing client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Ping verifies connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// SaveRound stores the snapshot as JSON under the lobby's round key.
func (s *RedisStore) SaveRound(ctx context.Context, lobby string, snap *game.RoundSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal round snapshot: %w", err)
	}
	if err := s.client.Set(ctx, roundKeyPrefix+lobby, data, roundTTL).Err(); err != nil {
		return fmt.Errorf("save round for lobby %s: %w", lobby, err)
	}
	return nil
}

// LoadRound returns the stored snapshot, or nil when none exists.
func (s *RedisStore) LoadRound(ctx context.Context, lobby string) (*game.RoundSnapshot, error) {
	data, err := s.client.Get(ctx, roundKeyPrefix+lobby).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load round for lobby %s: %w", lobby, err)
	}
	var snap game.RoundSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode round snapshot: %w", err)
	}
	return &snap, nil
}

// SaveTally stores the win tally for the lobby without expiry.
func (s *RedisStore) SaveTally(ctx context.Context, lobby string, tally game.WinTally) error {
	data, err := json.Marshal(tally)
	if err != nil {
		return fmt.Errorf("marshal win tally: %w", err)
	}
	if err := s.client.Set(ctx, tallyKeyPrefix+lobby, data, 0).Err(); err != nil {
		return fmt.Errorf("save tally for lobby %s: %w", lobby, err)
	}
	return nil
}

// LoadTally returns the stored tally, zero when none exists.
func (s *RedisStore) LoadTally(ctx context.Context, lobby string) (game.WinTally, error) {
	data, err := s.client.Get(ctx, tallyKeyPrefix+lobby).Bytes()
	if errors.Is(err, redis.Nil) {
		return game.WinTally{}, nil
	}
	if err != nil {
		return game.WinTally{}, fmt.Errorf("load tally for lobby %s: %w", lobby, err)
	}
	var tally game.WinTally
	if err := json.Unmarshal(data, &tally); err != nil {
		return game.WinTally{}, fmt.Errorf("decode win tally: %w", err)
	}
	return tally, nil
}

// DeleteRound drops the stored round for the lobby. Tallies are kept.
func (s *RedisStore) DeleteRound(ctx context.Context, lobby string) error {
	if err := s.client.Del(ctx, roundKeyPrefix+lobby).Err(); err != nil {
		return fmt.Errorf("delete round for lobby %s: %w", lobby, err)
	}
	return nil
}

var _ game.PersistenceGateway = (*RedisStore)(nil)
