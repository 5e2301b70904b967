// Package chat carries chat messages from a transport into the game.
package chat

// DefaultColor is used when a transport reports no name color.
const DefaultColor = "ffffff"

// Event is one chat message with its sender context.
type Event struct {
	// Message is the raw chat text.
	Message string
	// SenderID is stable per chatter.
	SenderID string
	// SenderName is the display name, which may change between sessions.
	SenderName string
	// Color is the sender's name color as 6 hex digits without '#'.
	Color string
	// Privileged is true for subscribers, moderators, VIPs, and the broadcaster.
	Privileged bool
}
