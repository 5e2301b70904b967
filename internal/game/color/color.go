// Package color validates, names, and generates avatar colors. Colors are
// carried as 6 lowercase hex digits without a leading '#', the format chat
// platforms report name colors in.
package color

import (
	"regexp"
	"sort"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/cory-johannsen/skyjump/internal/game/rng"
)

// RandomKeyword selects a freshly generated color in glow and namecolor.
const RandomKeyword = "random"

var hexPattern = regexp.MustCompile(`^(?:[0-9a-fA-F]{3}){1,2}$`)

// named are the chat platform's selectable name colors.
var named = map[string]string{
	"blue":        "0000ff",
	"coral":       "ff7f50",
	"dodgerblue":  "1e90ff",
	"springgreen": "00ff7f",
	"yellowgreen": "9acd32",
	"green":       "008000",
	"orangered":   "ff4500",
	"red":         "ff0000",
	"goldenrod":   "daa520",
	"hotpink":     "ff69b4",
	"cadetblue":   "5f9ea0",
	"seagreen":    "2e8b57",
	"chocolate":   "d2691e",
	"blueviolet":  "8a2be2",
	"firebrick":   "b22222",
}

// IsHex reports whether s is exactly 3 or 6 hexadecimal digits.
func IsHex(s string) bool {
	return hexPattern.MatchString(s)
}

// IsRandom reports whether s is the random keyword, ignoring case.
func IsRandom(s string) bool {
	return strings.EqualFold(s, RandomKeyword)
}

// Normalize converts a 3- or 6-digit hex string (with or without '#') to
// 6 lowercase hex digits.
//
// Postcondition: Returns (hex, true) for valid input, ("", false) otherwise.
func Normalize(s string) (string, bool) {
	s = strings.TrimPrefix(s, "#")
	if !IsHex(s) {
		return "", false
	}
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	c, err := colorful.Hex("#" + s)
	if err != nil {
		return "", false
	}
	return strings.TrimPrefix(c.Hex(), "#"), true
}

// ResolveName converts a named chat color or a hex string to 6 lowercase hex
// digits. Names are matched ignoring case.
//
// Postcondition: Returns (hex, true) on success, ("", false) otherwise.
func ResolveName(s string) (string, bool) {
	if hex, ok := named[strings.ToLower(s)]; ok {
		return hex, true
	}
	return Normalize(s)
}

// Random returns a random saturated color as 6 lowercase hex digits.
//
// Precondition: src must be non-nil.
func Random(src rng.Source) string {
	hue := float64(src.Intn(360))
	sat := float64(rng.Between(src, 55, 95)) / 100
	val := float64(rng.Between(src, 75, 100)) / 100
	return strings.TrimPrefix(colorful.Hsv(hue, sat, val).Clamped().Hex(), "#")
}

// Names returns the selectable color names in lexical order.
func Names() []string {
	out := make([]string, 0, len(named))
	for name := range named {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
