package gameserver

import (
	"github.com/cory-johannsen/skyjump/internal/game/command"
)

// Action is a resolved chat command ready to be applied to game state.
// The set of implementations is closed.
type Action interface {
	// Identity returns the command this action was resolved from.
	Identity() command.Identity
	// Sender returns the chatter the action targets.
	Sender() string
	isAction()
}

// JoinAction registers the sender. It is a no-op for an already joined sender
// except for refreshing the display name and privilege.
type JoinAction struct {
	SenderID   string
	SenderName string
	Color      string
	Privileged bool
}

// UnglowAction removes the sender's glow.
type UnglowAction struct {
	SenderID string
}

// JumpAction launches the sender's avatar.
type JumpAction struct {
	SenderID string
	Jump     command.Jump
}

// CharacterAction changes the sender's character to Choice, already clamped to
// the catalog.
type CharacterAction struct {
	SenderID string
	Choice   int
}

// GlowAction lights the sender's glow in Color (6 lowercase hex digits).
type GlowAction struct {
	SenderID string
	Color    string
}

// NameColorAction sets the sender's name color (6 lowercase hex digits).
type NameColorAction struct {
	SenderID string
	Color    string
}

func (a JoinAction) Identity() command.Identity      { return command.IdentityJoin }
func (a UnglowAction) Identity() command.Identity    { return command.IdentityUnglow }
func (a JumpAction) Identity() command.Identity      { return command.IdentityJump }
func (a CharacterAction) Identity() command.Identity { return command.IdentityCharacterChange }
func (a GlowAction) Identity() command.Identity      { return command.IdentityGlow }
func (a NameColorAction) Identity() command.Identity { return command.IdentityNameColor }

func (a JoinAction) Sender() string      { return a.SenderID }
func (a UnglowAction) Sender() string    { return a.SenderID }
func (a JumpAction) Sender() string      { return a.SenderID }
func (a CharacterAction) Sender() string { return a.SenderID }
func (a GlowAction) Sender() string      { return a.SenderID }
func (a NameColorAction) Sender() string { return a.SenderID }

func (JoinAction) isAction()      {}
func (UnglowAction) isAction()    {}
func (JumpAction) isAction()      {}
func (CharacterAction) isAction() {}
func (GlowAction) isAction()      {}
func (NameColorAction) isAction() {}
