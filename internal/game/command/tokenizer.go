package command

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/cory-johannsen/skyjump/internal/game/color"
)

const (
	// HexCommand takes hex color arguments.
	HexCommand = "glow"
	// NameColorCommand takes a color name or hex argument.
	NameColorCommand = "namecolor"
)

// colorCommand is a command whose arguments are colors. Messages starting
// with one bypass the letter/digit run splitter, which would otherwise shred
// "bdff00" into "bdff" and "00".
type colorCommand struct {
	name      string
	delimiter *regexp.Regexp
	accept    func(string) bool
}

func newColorCommand(name string, accept func(string) bool) colorCommand {
	return colorCommand{
		name:      name,
		delimiter: regexp.MustCompile(`(?i)` + regexp.QuoteMeta(name)),
		accept:    accept,
	}
}

var colorCommands = []colorCommand{
	newColorCommand(HexCommand, acceptHex),
	newColorCommand(NameColorCommand, acceptColorName),
}

func acceptHex(s string) bool {
	return color.IsHex(s) || color.IsRandom(s)
}

func acceptColorName(s string) bool {
	if color.IsRandom(s) {
		return true
	}
	_, ok := color.ResolveName(s)
	return ok
}

type runeClass int

const (
	classOther runeClass = iota
	classLetter
	classDigit
)

func classify(r rune) runeClass {
	switch {
	case unicode.IsLetter(r):
		return classLetter
	case unicode.IsDigit(r) || r == '-':
		return classDigit
	default:
		return classOther
	}
}

// Tokenize splits a raw chat message into a command name and its argument
// tokens. It never fails: garbage input yields an empty name and no arguments.
//
// By default the message is cut at every transition between a letter run and a
// digit run, and at every character that is neither letter, digit, nor hyphen;
// separators are dropped. "l30 30" and "l 30 30" both yield ("l", ["30" "30"]).
// A hyphen belongs to digit runs so "r-12" yields ("r", ["-12"]).
//
// Surrounding whitespace is trimmed first, so "  glow ff0000" is in color
// mode like "glow ff0000". Messages beginning with a color command
// (case-insensitive) are in color mode: they yield that command as the name and up to maxArgs
// whitespace-separated candidates. A candidate is kept only if the command
// accepts it and is absent otherwise. HexCommand accepts exactly 3 or 6 hex
// digits or the random keyword; NameColorCommand additionally accepts named
// chat colors and a leading '#'.
//
// Postcondition: name is never lowercased here; every returned default-mode
// argument is present. In color mode len(args) <= maxArgs.
func Tokenize(raw string, maxArgs int) (string, []Optional[string]) {
	trimmed := strings.TrimSpace(raw)
	for _, cc := range colorCommands {
		if hasFoldPrefix(trimmed, cc.name) {
			return cc.name, cc.tokenize(trimmed, maxArgs)
		}
	}

	tokens := splitRuns(trimmed)
	if len(tokens) == 0 {
		return "", nil
	}
	args := make([]Optional[string], 0, len(tokens)-1)
	for _, tok := range tokens[1:] {
		args = append(args, Some(tok))
	}
	return tokens[0], args
}

func splitRuns(s string) []string {
	var (
		tokens   []string
		current  strings.Builder
		inLetter bool
		inDigit  bool
	)
	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	for _, r := range s {
		switch classify(r) {
		case classLetter:
			if inDigit {
				flush()
			}
			current.WriteRune(r)
			inLetter, inDigit = true, false
		case classDigit:
			if inLetter {
				flush()
			}
			current.WriteRune(r)
			inLetter, inDigit = false, true
		default:
			if inLetter || inDigit {
				flush()
			}
			inLetter, inDigit = false, false
		}
	}
	flush()
	return tokens
}

func (cc colorCommand) tokenize(s string, maxArgs int) []Optional[string] {
	var rest []string
	for _, piece := range cc.delimiter.Split(s, -1) {
		if piece = strings.TrimSpace(piece); piece != "" {
			rest = append(rest, piece)
		}
	}

	candidates := strings.Fields(strings.Join(rest, " "))
	if maxArgs >= 0 && len(candidates) > maxArgs {
		candidates = candidates[:maxArgs]
	}

	args := make([]Optional[string], len(candidates))
	for i, c := range candidates {
		if cc.accept(c) {
			args[i] = Some(c)
		}
	}
	return args
}

func hasFoldPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
