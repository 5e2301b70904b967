// Package command turns free-form chat messages into game commands: the
// tokenizer, the argument parser, the alias registry, and the jump resolver.
// Everything here is pure and safe for concurrent use.
package command

// Identity is the logical command a chat name refers to.
type Identity int

const (
	IdentityNone Identity = iota
	IdentityJoin
	IdentityUnglow
	IdentityJump
	IdentityCharacterChange
	IdentityGlow
	IdentityNameColor
)

var identityNames = map[Identity]string{
	IdentityNone:            "none",
	IdentityJoin:            "join",
	IdentityUnglow:          "unglow",
	IdentityJump:            "jump",
	IdentityCharacterChange: "char",
	IdentityGlow:            "glow",
	IdentityNameColor:       "namecolor",
}

// String returns the canonical lowercase name of the identity.
func (id Identity) String() string {
	if name, ok := identityNames[id]; ok {
		return name
	}
	return "unknown"
}

// Alias defines the name prefixes that select an Identity.
type Alias struct {
	// Identity is the command selected by these aliases.
	Identity Identity
	// Aliases are matched as prefixes of the lowercased command name.
	Aliases []string
	// Privileged restricts the command to privileged senders.
	Privileged bool
	// Help is the short usage text shown to chatters.
	Help string
}

// BuiltinAliases returns the alias table in match precedence order. Longer
// command names precede shorter overlapping aliases: "join" before "j",
// "unglow" before "u".
func BuiltinAliases() []Alias {
	return []Alias{
		{Identity: IdentityJoin, Aliases: []string{"join"}, Help: "Join the game"},
		{Identity: IdentityUnglow, Aliases: []string{"unglow"}, Help: "Remove your glow"},
		{Identity: IdentityJump, Aliases: []string{"j", "l", "r", "u"}, Help: "Jump: j/r/l [angle] [power], u/ll/lll/rr/rrr [power]"},
		{Identity: IdentityCharacterChange, Aliases: []string{"char"}, Help: "Change character: char [number]"},
		{Identity: IdentityGlow, Aliases: []string{"glow"}, Privileged: true, Help: "Glow: glow [hex|random]"},
		{Identity: IdentityNameColor, Aliases: []string{"namecolor"}, Privileged: true, Help: "Name color: namecolor <name|hex|random>"},
	}
}
