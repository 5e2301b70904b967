package session

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// ErrPlayerNotFound is returned when a player lookup yields no results.
var ErrPlayerNotFound = errors.New("player not found")

// StatsStore persists player records between sessions.
//
// Implementations MUST be safe for concurrent use.
type StatsStore interface {
	// Load returns the stored record for id, or ErrPlayerNotFound.
	Load(ctx context.Context, id string) (PlayerData, error)
	// Save inserts or replaces the record for p.ID.
	Save(ctx context.Context, p PlayerData) error
}

// Leaderboard ranks stored players.
type Leaderboard interface {
	// Top returns up to n players in Rank order.
	Top(ctx context.Context, n int) ([]PlayerData, error)
}

// Rank sorts players by wins, then best height, both descending, then by ID.
func Rank(players []PlayerData) {
	sort.Slice(players, func(i, j int) bool {
		a, b := players[i], players[j]
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		if a.BestHeight != b.BestHeight {
			return a.BestHeight > b.BestHeight
		}
		return a.ID < b.ID
	})
}

// TopOf ranks a copy of players and keeps the first n. A non-positive n
// yields an empty result.
func TopOf(players []PlayerData, n int) []PlayerData {
	if n <= 0 {
		return []PlayerData{}
	}
	ranked := append([]PlayerData(nil), players...)
	Rank(ranked)
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// MemoryStore is a StatsStore that keeps records in memory.
type MemoryStore struct {
	mu      sync.RWMutex
	players map[string]PlayerData
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{players: make(map[string]PlayerData)}
}

// Load returns the stored record for id.
//
// Postcondition: Returns the record or ErrPlayerNotFound.
func (s *MemoryStore) Load(_ context.Context, id string) (PlayerData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.players[id]
	if !ok {
		return PlayerData{}, ErrPlayerNotFound
	}
	return p, nil
}

// Save stores p, replacing any previous record with the same ID.
//
// Precondition: p.ID must be non-empty.
func (s *MemoryStore) Save(_ context.Context, p PlayerData) error {
	if p.ID == "" {
		return errors.New("player id must not be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players[p.ID] = p
	return nil
}

// Len returns the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.players)
}

// Top returns up to n stored records in Rank order.
func (s *MemoryStore) Top(_ context.Context, n int) ([]PlayerData, error) {
	s.mu.RLock()
	players := make([]PlayerData, 0, len(s.players))
	for _, p := range s.players {
		players = append(players, p)
	}
	s.mu.RUnlock()
	return TopOf(players, n), nil
}
