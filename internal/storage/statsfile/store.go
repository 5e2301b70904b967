// Package statsfile persists player statistics in a single JSON document.
package statsfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/cory-johannsen/skyjump/internal/game/session"
)

// ErrPlayerNotFound is returned when no record exists for an ID.
var ErrPlayerNotFound = session.ErrPlayerNotFound

var (
	_ session.StatsStore  = (*Store)(nil)
	_ session.Leaderboard = (*Store)(nil)
)

// Store implements session.StatsStore on a JSON file mapping player IDs to
// records. Every Save rewrites the file atomically.
type Store struct {
	mu      sync.Mutex
	path    string
	players map[string]session.PlayerData
}

// New opens the store at path, reading existing records if the file exists.
//
// Precondition: path must be non-empty.
// Postcondition: Returns a Store or an error if the file exists but cannot
// be decoded.
func New(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("statsfile: path must not be empty")
	}
	s := &Store{path: path, players: make(map[string]session.PlayerData)}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(data) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(data, &s.players); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return s, nil
}

// Load returns the record for id.
func (s *Store) Load(_ context.Context, id string) (session.PlayerData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[id]
	if !ok {
		return session.PlayerData{}, fmt.Errorf("loading %q: %w", id, ErrPlayerNotFound)
	}
	return p, nil
}

// Save stores p and rewrites the file.
//
// Precondition: p.ID must be non-empty.
// Postcondition: On success the file on disk contains p. On failure the
// previous file is left intact and the in-memory record is unchanged.
func (s *Store) Save(ctx context.Context, p session.PlayerData) error {
	if p.ID == "" {
		return errors.New("saving player: id must not be empty")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.players[p.ID]
	s.players[p.ID] = p
	if err := s.flushLocked(); err != nil {
		if had {
			s.players[p.ID] = prev
		} else {
			delete(s.players, p.ID)
		}
		return fmt.Errorf("saving player %q: %w", p.ID, err)
	}
	return nil
}

// All returns every stored record ordered by ID.
func (s *Store) All() []session.PlayerData {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]session.PlayerData, 0, len(s.players))
	for _, p := range s.players {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Top returns up to n stored records ranked by wins, then best height.
func (s *Store) Top(_ context.Context, n int) ([]session.PlayerData, error) {
	return session.TopOf(s.All(), n), nil
}

func (s *Store) flushLocked() error {
	data, err := json.MarshalIndent(s.players, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replacing %s: %w", s.path, err)
	}
	return nil
}
