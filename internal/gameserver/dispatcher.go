package gameserver

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/skyjump/internal/chat"
	"github.com/cory-johannsen/skyjump/internal/game/character"
	"github.com/cory-johannsen/skyjump/internal/game/color"
	"github.com/cory-johannsen/skyjump/internal/game/command"
	"github.com/cory-johannsen/skyjump/internal/game/rng"
	"github.com/cory-johannsen/skyjump/internal/game/session"
)

// Roster is the read side of the player roster the dispatcher consults.
type Roster interface {
	Get(id string) (session.PlayerData, bool)
}

// JumpGate decides whether a player may jump right now.
type JumpGate interface {
	CanJump(playerID string) bool
}

// precedence is the order identities are tested in after Join.
var precedence = []command.Identity{
	command.IdentityUnglow,
	command.IdentityJump,
	command.IdentityCharacterChange,
	command.IdentityGlow,
	command.IdentityNameColor,
}

// Dispatcher turns chat events into actions. It reads the roster but never
// mutates it; Game applies the returned actions.
type Dispatcher struct {
	registry *command.Registry
	parser   command.Parser
	roster   Roster
	gate     JumpGate
	src      rng.Source
	catalog  *character.Catalog
	logger   *zap.Logger
}

// NewDispatcher creates a Dispatcher.
//
// Precondition: registry, roster, gate, src, catalog, and logger must be
// non-nil. A missing collaborator panics naming it.
// Postcondition: Returns a Dispatcher safe for concurrent use when its
// collaborators are.
func NewDispatcher(
	registry *command.Registry,
	parser command.Parser,
	roster Roster,
	gate JumpGate,
	src rng.Source,
	catalog *character.Catalog,
	logger *zap.Logger,
) *Dispatcher {
	switch {
	case registry == nil:
		panic("gameserver.NewDispatcher: registry must not be nil")
	case roster == nil:
		panic("gameserver.NewDispatcher: roster must not be nil")
	case gate == nil:
		panic("gameserver.NewDispatcher: jump gate must not be nil")
	case src == nil:
		panic("gameserver.NewDispatcher: rng source must not be nil")
	case catalog == nil:
		panic("gameserver.NewDispatcher: character catalog must not be nil")
	case logger == nil:
		panic("gameserver.NewDispatcher: logger must not be nil")
	}
	return &Dispatcher{
		registry: registry,
		parser:   parser,
		roster:   roster,
		gate:     gate,
		src:      src,
		catalog:  catalog,
		logger:   logger,
	}
}

// Dispatch resolves one chat event into at most one action. Messages from
// senders who have not joined are discarded unless they are a join.
// Unrecognized messages produce no action.
//
// Postcondition: Returns an Action or nil; never panics on any message text.
func (d *Dispatcher) Dispatch(ev chat.Event) Action {
	cmd := d.parser.Parse(ev.Message)
	if cmd.Name == "" {
		return nil
	}

	if d.registry.Matches(command.IdentityJoin, cmd.Name, true) {
		d.debug(ev, cmd, command.IdentityJoin)
		return JoinAction{
			SenderID:   ev.SenderID,
			SenderName: ev.SenderName,
			Color:      ev.Color,
			Privileged: ev.Privileged,
		}
	}

	player, joined := d.roster.Get(ev.SenderID)
	if !joined {
		return nil
	}

	for _, id := range precedence {
		if !d.registry.Matches(id, cmd.Name, ev.Privileged) {
			continue
		}
		d.debug(ev, cmd, id)
		return d.build(id, cmd, ev, player)
	}
	return nil
}

func (d *Dispatcher) build(id command.Identity, cmd *command.ParsedCommand, ev chat.Event, player session.PlayerData) Action {
	switch id {
	case command.IdentityUnglow:
		return UnglowAction{SenderID: ev.SenderID}

	case command.IdentityJump:
		if !d.gate.CanJump(ev.SenderID) {
			return nil
		}
		return JumpAction{SenderID: ev.SenderID, Jump: command.ResolveJumpCommand(cmd)}

	case command.IdentityCharacterChange:
		choice, ok := cmd.NumberArg(0).Get()
		if !ok {
			choice = d.catalog.Random(d.src)
		}
		return CharacterAction{SenderID: ev.SenderID, Choice: d.catalog.Clamp(choice)}

	case command.IdentityGlow:
		return GlowAction{SenderID: ev.SenderID, Color: d.glowColor(cmd, ev, player)}

	case command.IdentityNameColor:
		arg, ok := cmd.StringArg(0).Get()
		if !ok {
			return nil
		}
		if color.IsRandom(arg) {
			return NameColorAction{SenderID: ev.SenderID, Color: color.Random(d.src)}
		}
		hex, valid := color.ResolveName(arg)
		if !valid {
			return nil
		}
		return NameColorAction{SenderID: ev.SenderID, Color: hex}
	}
	return nil
}

// glowColor picks the argument, then the stored glow color, then the chat
// name color.
func (d *Dispatcher) glowColor(cmd *command.ParsedCommand, ev chat.Event, player session.PlayerData) string {
	if arg, ok := cmd.StringArg(0).Get(); ok {
		if color.IsRandom(arg) {
			return color.Random(d.src)
		}
		if hex, valid := color.Normalize(arg); valid {
			return hex
		}
	}
	if player.GlowColor != "" {
		return player.GlowColor
	}
	if hex, valid := color.Normalize(ev.Color); valid {
		return hex
	}
	return player.NameColor
}

func (d *Dispatcher) debug(ev chat.Event, cmd *command.ParsedCommand, id command.Identity) {
	d.logger.Debug("dispatching command",
		zap.String("sender", ev.SenderID),
		zap.String("command", cmd.Name),
		zap.Stringer("identity", id),
	)
}
