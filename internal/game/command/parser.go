package command

import (
	"strconv"
	"strings"
)

// DefaultMaxArguments is the number of argument slots surfaced by a
// ParsedCommand when no limit is configured.
const DefaultMaxArguments = 2

// ParsedCommand is the structured form of one chat message.
// It is immutable after construction.
type ParsedCommand struct {
	// Name is the lowercased first token, or "" when the message had none.
	Name string

	args    []Optional[string]
	maxArgs int
}

// Parser builds ParsedCommands with a fixed number of argument slots.
type Parser struct {
	// MaxArguments is the number of slots returned by the argument accessors.
	MaxArguments int
}

// NewParser creates a Parser surfacing maxArgs argument slots.
// A non-positive maxArgs selects DefaultMaxArguments.
func NewParser(maxArgs int) Parser {
	if maxArgs <= 0 {
		maxArgs = DefaultMaxArguments
	}
	return Parser{MaxArguments: maxArgs}
}

// Parse tokenizes raw into a ParsedCommand.
//
// Postcondition: never fails; an input with no usable token has Name "" and
// all argument slots absent.
func (p Parser) Parse(raw string) *ParsedCommand {
	maxArgs := p.MaxArguments
	if maxArgs <= 0 {
		maxArgs = DefaultMaxArguments
	}
	name, args := Tokenize(raw, maxArgs)
	return &ParsedCommand{
		Name:    strings.ToLower(name),
		args:    args,
		maxArgs: maxArgs,
	}
}

// Parse parses raw with DefaultMaxArguments slots.
func Parse(raw string) *ParsedCommand {
	return NewParser(DefaultMaxArguments).Parse(raw)
}

// MaxArguments returns the number of argument slots this command exposes.
func (c *ParsedCommand) MaxArguments() int {
	return c.maxArgs
}

// ArgumentsAsStrings returns exactly MaxArguments slots. Tokens beyond the
// limit are ignored and missing ones are absent.
func (c *ParsedCommand) ArgumentsAsStrings() []Optional[string] {
	out := make([]Optional[string], c.maxArgs)
	copy(out, c.args)
	return out
}

// ArgumentsAsNumbers returns exactly MaxArguments slots, each the integer
// value of the corresponding token. Tokens that are not integers are absent.
func (c *ParsedCommand) ArgumentsAsNumbers() []Optional[int] {
	out := make([]Optional[int], c.maxArgs)
	for i, arg := range c.ArgumentsAsStrings() {
		s, ok := arg.Get()
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(s); err == nil {
			out[i] = Some(n)
		}
	}
	return out
}

// StringArg returns argument slot i as a string, absent when out of range.
func (c *ParsedCommand) StringArg(i int) Optional[string] {
	if i < 0 || i >= c.maxArgs {
		return None[string]()
	}
	return c.ArgumentsAsStrings()[i]
}

// NumberArg returns argument slot i as an integer, absent when out of range
// or not an integer.
func (c *ParsedCommand) NumberArg(i int) Optional[int] {
	if i < 0 || i >= c.maxArgs {
		return None[int]()
	}
	return c.ArgumentsAsNumbers()[i]
}
