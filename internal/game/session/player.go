// Package session tracks the players who have joined the game and their
// persisted statistics.
package session

import "time"

// PlayerData is one chatter's record.
type PlayerData struct {
	// ID is the chat platform's stable sender identifier.
	ID string `json:"id"`
	// Name is the sender's display name, refreshed on every join.
	Name string `json:"name"`
	// NameColor is the color the name is drawn in, 6 hex digits.
	NameColor string `json:"name_color"`
	// GlowColor is the last glow color used, 6 hex digits or empty.
	GlowColor string `json:"glow_color"`
	// Glowing reports whether the avatar glows. A returning player who left
	// glowing glows again on join.
	Glowing bool `json:"glowing"`
	// Character is the 1-based character choice; 0 means none chosen yet.
	Character int `json:"character"`
	// Privileged mirrors the sender's elevated chat status at last join.
	Privileged bool `json:"-"`
	// Wins counts rounds won.
	Wins int `json:"wins"`
	// Jumps counts jumps performed.
	Jumps int `json:"jumps"`
	// BestHeight is the greatest height reached in any round.
	BestHeight int `json:"best_height"`
	// LastRoundID identifies the last round the player jumped in.
	LastRoundID string `json:"last_round_id"`
	// UpdatedAt is the time of the last persisted change.
	UpdatedAt time.Time `json:"updated_at"`
}

// RecordHeight raises BestHeight to h when h is greater.
//
// Postcondition: BestHeight >= h.
func (p *PlayerData) RecordHeight(h int) {
	if h > p.BestHeight {
		p.BestHeight = h
	}
}
