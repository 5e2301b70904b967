package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Manager is the roster of joined players. Registration is at most once per
// sender ID. All methods are safe for concurrent use.
type Manager struct {
	mu      sync.RWMutex
	players map[string]*PlayerData
	store   StatsStore
	logger  *zap.Logger
	now     func() time.Time
}

// NewManager creates an empty roster. store may be nil to disable
// persistence.
//
// Precondition: logger must be non-nil.
func NewManager(store StatsStore, logger *zap.Logger) *Manager {
	if logger == nil {
		panic("session: NewManager requires a logger")
	}
	return &Manager{
		players: make(map[string]*PlayerData),
		store:   store,
		logger:  logger,
		now:     time.Now,
	}
}

// Join registers a player, or refreshes the display name and privilege of an
// already joined one. A first join restores the player's stored statistics
// when a StatsStore is attached; a store failure is logged and the player
// starts fresh.
//
// The store is read without holding the roster lock. Concurrent joins of one
// id may each read it, but only the first to insert registers the player.
//
// Precondition: id must be non-empty.
// Postcondition: Exactly one record exists for id. created reports whether
// this call registered it.
func (m *Manager) Join(ctx context.Context, id, name, nameColor string, privileged bool) (PlayerData, bool) {
	if p, ok := m.refresh(id, name, privileged); ok {
		return p, false
	}

	p := m.restore(ctx, id)
	p.ID = id
	p.Name = name
	p.Privileged = privileged
	if p.NameColor == "" {
		p.NameColor = nameColor
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, exists := m.players[id]; exists {
		existing.Name = name
		existing.Privileged = privileged
		return *existing, false
	}
	m.players[id] = &p
	return p, true
}

// refresh updates the display name and privilege of a joined player.
func (m *Manager) refresh(id, name string, privileged bool) (PlayerData, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, exists := m.players[id]
	if !exists {
		return PlayerData{}, false
	}
	p.Name = name
	p.Privileged = privileged
	return *p, true
}

// restore loads the stored record for id, or a fresh one.
func (m *Manager) restore(ctx context.Context, id string) PlayerData {
	if m.store == nil {
		return PlayerData{}
	}
	stored, err := m.store.Load(ctx, id)
	switch {
	case err == nil:
		return stored
	case errors.Is(err, ErrPlayerNotFound):
		// first time this sender has played
	default:
		m.logger.Warn("loading player stats",
			zap.String("player", id),
			zap.Error(err),
		)
	}
	return PlayerData{}
}

// IsJoined reports whether id has joined.
func (m *Manager) IsJoined(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.players[id]
	return ok
}

// Get returns a copy of the record for id.
//
// Postcondition: Returns (record, true) if joined, or (zero, false).
func (m *Manager) Get(id string) (PlayerData, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.players[id]
	if !ok {
		return PlayerData{}, false
	}
	return *p, true
}

// Update applies fn to the record for id under the roster lock.
//
// Precondition: fn must not call back into the Manager.
// Postcondition: Returns the updated copy, or ErrPlayerNotFound.
func (m *Manager) Update(id string, fn func(p *PlayerData)) (PlayerData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.players[id]
	if !ok {
		return PlayerData{}, fmt.Errorf("updating %q: %w", id, ErrPlayerNotFound)
	}
	fn(p)
	p.UpdatedAt = m.now()
	return *p, nil
}

// All returns copies of every record ordered by ID.
func (m *Manager) All() []PlayerData {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]PlayerData, 0, len(m.players))
	for _, p := range m.players {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Count returns the number of joined players.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.players)
}

// Save persists the record for id. It is a no-op without a StatsStore.
//
// Postcondition: Returns ErrPlayerNotFound if id is not joined.
func (m *Manager) Save(ctx context.Context, id string) error {
	if m.store == nil {
		return nil
	}
	p, ok := m.Get(id)
	if !ok {
		return fmt.Errorf("saving %q: %w", id, ErrPlayerNotFound)
	}
	if err := m.store.Save(ctx, p); err != nil {
		return fmt.Errorf("saving %q: %w", id, err)
	}
	return nil
}

// SaveAll persists every record. It is a no-op without a StatsStore.
//
// Postcondition: Every record was attempted; the returned error joins all
// failures.
func (m *Manager) SaveAll(ctx context.Context) error {
	if m.store == nil {
		return nil
	}
	var errs []error
	for _, p := range m.All() {
		if err := m.store.Save(ctx, p); err != nil {
			errs = append(errs, fmt.Errorf("saving %q: %w", p.ID, err))
		}
	}
	return errors.Join(errs...)
}
