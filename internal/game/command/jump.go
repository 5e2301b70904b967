package command

import "strings"

const (
	// MinPower and MaxPower bound jump power.
	MinPower = 1
	MaxPower = 100
	// MaxLean bounds the numeric angle offset accepted by j, r, and l.
	MaxLean = 90
	// AngleUp is the resolved angle of a vertical jump.
	AngleUp = 90
)

// fixedAngleAliases imply their own angle, so their first numeric argument
// is read as power instead.
var fixedAngleAliases = []string{"u", "ll", "lll", "jj", "rr", "jjj", "rrr"}

// Jump is a resolved jump. Angle is in degrees with AngleUp straight up,
// smaller values leaning left and larger values leaning right.
type Jump struct {
	Angle int
	Power int
}

// Lean returns the angle relative to vertical, in [-90, 90]: 0 is straight
// up, positive leans right, negative leans left.
func (j Jump) Lean() int {
	return j.Angle - AngleUp
}

// jumpInput keeps the raw angle argument apart from the clamped power so the
// fixed-angle reinterpretation reads the unclamped value exactly once.
type jumpInput struct {
	rawAngle int
	power    int
}

func (in *jumpInput) setPowerClamped(v int) {
	in.power = clamp(v, MinPower, MaxPower)
}

// ResolveJump computes the angle and power for a jump command name and its
// optional numeric arguments. Unknown directions jump straight up.
//
// Postcondition: MinPower <= Power <= MaxPower and 0 <= Angle <= 180.
func ResolveJump(direction string, angleArg, powerArg Optional[int]) Jump {
	in := jumpInput{rawAngle: angleArg.OrElse(0)}
	in.setPowerClamped(powerArg.OrElse(MaxPower))

	if hasAnyPrefix(direction, fixedAngleAliases) {
		// An angle argument of exactly 0 is indistinguishable from none here.
		if in.rawAngle != 0 {
			in.setPowerClamped(in.rawAngle)
		} else {
			in.setPowerClamped(MaxPower)
		}
	}

	lean := clamp(in.rawAngle, -MaxLean, MaxLean)

	var angle int
	switch {
	case strings.HasPrefix(direction, "rrr"), strings.HasPrefix(direction, "jjj"):
		angle = 150
	case strings.HasPrefix(direction, "rr"), strings.HasPrefix(direction, "jj"):
		angle = 120
	case strings.HasPrefix(direction, "lll"):
		angle = 30
	case strings.HasPrefix(direction, "ll"):
		angle = 60
	case strings.HasPrefix(direction, "j"), strings.HasPrefix(direction, "r"):
		angle = lean + AngleUp
	case strings.HasPrefix(direction, "l"):
		angle = AngleUp - lean
	case strings.HasPrefix(direction, "u"):
		angle = AngleUp
	default:
		angle = AngleUp
	}

	return Jump{Angle: angle, Power: in.power}
}

// ResolveJumpCommand resolves a parsed jump command using its first two
// numeric arguments as angle and power.
func ResolveJumpCommand(c *ParsedCommand) Jump {
	return ResolveJump(c.Name, c.NumberArg(0), c.NumberArg(1))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
