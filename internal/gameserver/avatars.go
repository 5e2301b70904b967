package gameserver

import (
	"math"
	"sync"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skyjump/internal/game/command"
	"github.com/cory-johannsen/skyjump/internal/game/session"
)

// Avatars is the engine binding that moves and decorates player avatars.
type Avatars interface {
	Spawn(p session.PlayerData)
	Jump(playerID string, j command.Jump)
	SetCharacter(playerID string, choice int)
	SetGlow(playerID, color string, on bool)
	SetNameColor(playerID, color string)
	// ResetRound returns every avatar to the start line.
	ResetRound()
}

// AvatarEventKind names an avatar change.
type AvatarEventKind string

const (
	AvatarSpawned    AvatarEventKind = "spawn"
	AvatarJumped     AvatarEventKind = "jump"
	AvatarCharacter  AvatarEventKind = "character"
	AvatarGlow       AvatarEventKind = "glow"
	AvatarNameColor  AvatarEventKind = "namecolor"
	AvatarRoundReset AvatarEventKind = "reset"
)

// AvatarEvent is one avatar change. Only the fields relevant to Kind are set.
type AvatarEvent struct {
	Kind     AvatarEventKind
	PlayerID string
	Name     string
	Jump     command.Jump
	Choice   int
	Color    string
	Glow     bool
}

// Feed implements Avatars by pushing AvatarEvents to a channel, bridging the
// game loop to a renderer running in another goroutine.
type Feed struct {
	events chan AvatarEvent
	logger *zap.Logger
	mu     sync.Mutex
	closed bool
}

// NewFeed creates a Feed with the given buffer size.
//
// Precondition: logger must be non-nil.
// Postcondition: Returns a Feed with an open events channel; bufferSize <= 0
// uses 64.
func NewFeed(bufferSize int, logger *zap.Logger) *Feed {
	if logger == nil {
		panic("gameserver.NewFeed: logger must not be nil")
	}
	if bufferSize <= 0 {
		bufferSize = 64
	}
	return &Feed{
		events: make(chan AvatarEvent, bufferSize),
		logger: logger,
	}
}

// push enqueues ev without blocking. Events are dropped when the feed is
// closed or full.
func (f *Feed) push(ev AvatarEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	select {
	case f.events <- ev:
	default:
		f.logger.Warn("avatar feed full, dropping event",
			zap.String("kind", string(ev.Kind)),
			zap.String("player", ev.PlayerID),
		)
	}
}

func (f *Feed) Spawn(p session.PlayerData) {
	f.push(AvatarEvent{Kind: AvatarSpawned, PlayerID: p.ID, Name: p.Name, Choice: p.Character, Color: p.NameColor})
}

func (f *Feed) Jump(playerID string, j command.Jump) {
	f.push(AvatarEvent{Kind: AvatarJumped, PlayerID: playerID, Jump: j})
}

func (f *Feed) SetCharacter(playerID string, choice int) {
	f.push(AvatarEvent{Kind: AvatarCharacter, PlayerID: playerID, Choice: choice})
}

func (f *Feed) SetGlow(playerID, color string, on bool) {
	f.push(AvatarEvent{Kind: AvatarGlow, PlayerID: playerID, Color: color, Glow: on})
}

func (f *Feed) SetNameColor(playerID, color string) {
	f.push(AvatarEvent{Kind: AvatarNameColor, PlayerID: playerID, Color: color})
}

func (f *Feed) ResetRound() {
	f.push(AvatarEvent{Kind: AvatarRoundReset})
}

// Events returns the read-only events channel.
func (f *Feed) Events() <-chan AvatarEvent {
	return f.events
}

// Close closes the events channel. Further changes are discarded.
//
// Postcondition: The events channel is closed; Close is idempotent.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.events)
	}
}

// HeightReporter receives the height an avatar reached.
type HeightReporter interface {
	ReportHeight(playerID string, height int)
}

// Climber stands in for engine physics: each jump raises the avatar by the
// vertical component of its power, and the new height is reported. All
// calls are forwarded to the wrapped Avatars.
type Climber struct {
	next     Avatars
	mu       sync.Mutex
	heights  map[string]int
	reporter HeightReporter
}

// NewClimber wraps next.
//
// Precondition: next must be non-nil.
func NewClimber(next Avatars) *Climber {
	if next == nil {
		panic("gameserver.NewClimber: avatars must not be nil")
	}
	return &Climber{next: next, heights: make(map[string]int)}
}

// Attach sets the receiver of reported heights.
func (c *Climber) Attach(r HeightReporter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reporter = r
}

// Height returns the current height of playerID's avatar.
func (c *Climber) Height(playerID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.heights[playerID]
}

func (c *Climber) Spawn(p session.PlayerData) { c.next.Spawn(p) }

func (c *Climber) Jump(playerID string, j command.Jump) {
	c.next.Jump(playerID, j)
	gain := int(math.Round(float64(j.Power) * math.Sin(float64(j.Angle)*math.Pi/180)))
	if gain < 0 {
		gain = 0
	}
	c.mu.Lock()
	c.heights[playerID] += gain
	h := c.heights[playerID]
	r := c.reporter
	c.mu.Unlock()
	if r != nil {
		r.ReportHeight(playerID, h)
	}
}

func (c *Climber) SetCharacter(playerID string, choice int) { c.next.SetCharacter(playerID, choice) }

func (c *Climber) SetGlow(playerID, color string, on bool) { c.next.SetGlow(playerID, color, on) }

func (c *Climber) SetNameColor(playerID, color string) { c.next.SetNameColor(playerID, color) }

func (c *Climber) ResetRound() {
	c.mu.Lock()
	c.heights = make(map[string]int)
	c.mu.Unlock()
	c.next.ResetRound()
}
