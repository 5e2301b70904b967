package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/skyjump/internal/game/session"
)

// ErrPlayerNotFound is returned when a player lookup yields no results. It is
// the roster's sentinel so a first join is recognized.
var ErrPlayerNotFound = session.ErrPlayerNotFound

const playerColumns = `id, name, name_color, glow_color, glowing, character, wins, jumps, best_height, last_round_id, updated_at`

var (
	_ session.StatsStore  = (*PlayerRepository)(nil)
	_ session.Leaderboard = (*PlayerRepository)(nil)
)

// PlayerRepository implements session.StatsStore on the players table.
type PlayerRepository struct {
	db *pgxpool.Pool
}

// NewPlayerRepository creates a PlayerRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewPlayerRepository(db *pgxpool.Pool) *PlayerRepository {
	if db == nil {
		panic("postgres.NewPlayerRepository: db must not be nil")
	}
	return &PlayerRepository{db: db}
}

// Load returns the stored record for id.
//
// Postcondition: Returns the record, ErrPlayerNotFound, or a query error.
func (r *PlayerRepository) Load(ctx context.Context, id string) (session.PlayerData, error) {
	p, err := scanPlayer(r.db.QueryRow(ctx,
		`SELECT `+playerColumns+` FROM players WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return session.PlayerData{}, fmt.Errorf("loading %q: %w", id, ErrPlayerNotFound)
		}
		return session.PlayerData{}, fmt.Errorf("loading player %q: %w", id, err)
	}
	return p, nil
}

// Save inserts p or replaces the stored record with the same ID.
//
// Precondition: p.ID must be non-empty.
// Postcondition: The players row for p.ID matches p; updated_at is set by
// the database.
func (r *PlayerRepository) Save(ctx context.Context, p session.PlayerData) error {
	if p.ID == "" {
		return errors.New("saving player: id must not be empty")
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO players
			(id, name, name_color, glow_color, glowing, character, wins, jumps, best_height, last_round_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (id) DO UPDATE SET
			name          = EXCLUDED.name,
			name_color    = EXCLUDED.name_color,
			glow_color    = EXCLUDED.glow_color,
			glowing       = EXCLUDED.glowing,
			character     = EXCLUDED.character,
			wins          = EXCLUDED.wins,
			jumps         = EXCLUDED.jumps,
			best_height   = EXCLUDED.best_height,
			last_round_id = EXCLUDED.last_round_id,
			updated_at    = NOW()`,
		p.ID, p.Name, p.NameColor, p.GlowColor, p.Glowing, p.Character,
		p.Wins, p.Jumps, p.BestHeight, p.LastRoundID,
	)
	if err != nil {
		return fmt.Errorf("saving player %q: %w", p.ID, err)
	}
	return nil
}

// Top returns up to n players ordered by wins, then best height, then ID,
// matching session.Rank.
//
// Postcondition: Returns a slice (empty when n <= 0) or a non-nil error.
func (r *PlayerRepository) Top(ctx context.Context, n int) ([]session.PlayerData, error) {
	if n <= 0 {
		return []session.PlayerData{}, nil
	}
	rows, err := r.db.Query(ctx,
		`SELECT `+playerColumns+` FROM players
		 ORDER BY wins DESC, best_height DESC, id ASC
		 LIMIT $1`, n)
	if err != nil {
		return nil, fmt.Errorf("listing top players: %w", err)
	}
	defer rows.Close()

	out := []session.PlayerData{}
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning player: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating players: %w", err)
	}
	return out, nil
}

func scanPlayer(row pgx.Row) (session.PlayerData, error) {
	var p session.PlayerData
	err := row.Scan(
		&p.ID, &p.Name, &p.NameColor, &p.GlowColor, &p.Glowing, &p.Character,
		&p.Wins, &p.Jumps, &p.BestHeight, &p.LastRoundID, &p.UpdatedAt,
	)
	return p, err
}
