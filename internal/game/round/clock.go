// Package round runs the game timer: a lobby, a timed running phase during
// which players may jump, and a finish that crowns the highest climber.
package round

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Phase is a stage of a round.
type Phase string

const (
	PhaseLobby    Phase = "lobby"
	PhaseRunning  Phase = "running"
	PhaseFinished Phase = "finished"
)

// Result is the outcome of a finished round. WinnerID is empty when nobody
// recorded a height.
type Result struct {
	RoundID  uuid.UUID
	WinnerID string
	Height   int
	Heights  map[string]int
}

// Event announces a phase transition. Result is set only for PhaseFinished.
type Event struct {
	RoundID uuid.UUID
	Phase   Phase
	Result  *Result
}

// Settings configure round timing.
type Settings struct {
	// Lobby is how long players have to join before jumping opens.
	Lobby time.Duration
	// Duration is how long jumping stays open.
	Duration time.Duration
	// Cooldown is the minimum time between two jumps of one player.
	Cooldown time.Duration
	// Tick is how often the clock checks for a phase deadline.
	Tick time.Duration
}

// Clock owns the round phases and the per-player jump gate.
type Clock struct {
	settings Settings
	logger   *zap.Logger
	now      func() time.Time
	newID    func() uuid.UUID

	mu          sync.Mutex
	roundID     uuid.UUID
	phase       Phase
	deadline    time.Time
	lastJump    map[string]time.Time
	heights     map[string]int
	subscribers map[chan<- Event]struct{}
}

// NewClock creates a Clock in the lobby of its first round.
//
// Precondition: logger must be non-nil; s.Tick, s.Duration must be > 0.
// Postcondition: Returns a Clock ready to Start().
func NewClock(s Settings, logger *zap.Logger) *Clock {
	if logger == nil {
		panic("round: NewClock requires a logger")
	}
	if s.Tick <= 0 || s.Duration <= 0 {
		panic("round: NewClock requires positive tick and duration")
	}
	c := &Clock{
		settings:    s,
		logger:      logger,
		now:         time.Now,
		newID:       uuid.New,
		lastJump:    make(map[string]time.Time),
		heights:     make(map[string]int),
		subscribers: make(map[chan<- Event]struct{}),
	}
	c.roundID = c.newID()
	c.phase = PhaseLobby
	c.deadline = c.now().Add(s.Lobby)
	return c
}

// Phase returns the current phase and round identifier.
func (c *Clock) Phase() (uuid.UUID, Phase) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.roundID, c.phase
}

// Remaining returns the time left in the current phase, never negative.
func (c *Clock) Remaining() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	d := c.deadline.Sub(c.now())
	if d < 0 {
		return 0
	}
	return d
}

// CanJump reports whether playerID may jump now: the round is running and the
// player's previous jump is at least the cooldown ago.
func (c *Clock) CanJump(playerID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != PhaseRunning {
		return false
	}
	last, ok := c.lastJump[playerID]
	if !ok {
		return true
	}
	return c.now().Sub(last) >= c.settings.Cooldown
}

// RecordJump starts playerID's cooldown.
func (c *Clock) RecordJump(playerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastJump[playerID] = c.now()
}

// RecordHeight keeps the best height reached by playerID this round. Heights
// reported outside the running phase are ignored.
//
// Postcondition: Returns true if the height was recorded as a new best.
func (c *Clock) RecordHeight(playerID string, height int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != PhaseRunning {
		return false
	}
	if best, ok := c.heights[playerID]; ok && best >= height {
		return false
	}
	c.heights[playerID] = height
	return true
}

// Subscribe registers ch to receive phase transitions. If ch is full the event
// is dropped for that subscriber.
//
// Precondition: ch must not be nil.
func (c *Clock) Subscribe(ch chan<- Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscribers[ch] = struct{}{}
}

// Unsubscribe removes ch from the subscriber list.
func (c *Clock) Unsubscribe(ch chan<- Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.subscribers, ch)
}

// Start launches the clock goroutine and returns a stop function.
// Calling stop() is idempotent.
//
// Postcondition: Phases advance on their deadlines until stop() is called.
func (c *Clock) Start() (stop func()) {
	done := make(chan struct{})
	var once sync.Once
	go func() {
		ticker := time.NewTicker(c.settings.Tick)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.Advance()
			case <-done:
				return
			}
		}
	}()
	return func() {
		once.Do(func() { close(done) })
	}
}

// EndRound finishes a running round now. It does nothing in other phases.
func (c *Clock) EndRound() {
	c.mu.Lock()
	if c.phase == PhaseRunning {
		c.deadline = c.now()
	}
	c.mu.Unlock()
	c.Advance()
}

// Advance moves past elapsed phase deadlines and broadcasts each transition.
// A finished round stays observable until the next call. Start calls it on
// every tick.
func (c *Clock) Advance() {
	c.mu.Lock()
	now := c.now()
	var events []Event
	for !now.Before(c.deadline) {
		events = append(events, c.transitionLocked(now))
		if c.phase != PhaseLobby {
			break
		}
	}
	subs := make([]chan<- Event, 0, len(c.subscribers))
	for ch := range c.subscribers {
		subs = append(subs, ch)
	}
	c.mu.Unlock()

	for _, ev := range events {
		c.logger.Info("round phase",
			zap.String("round", ev.RoundID.String()),
			zap.String("phase", string(ev.Phase)),
		)
		for _, ch := range subs {
			select {
			case ch <- ev:
			default:
			}
		}
	}
}

// transitionLocked performs one phase change.
//
// Precondition: c.mu is held and the current deadline has elapsed.
func (c *Clock) transitionLocked(now time.Time) Event {
	switch c.phase {
	case PhaseLobby:
		c.phase = PhaseRunning
		c.deadline = now.Add(c.settings.Duration)
		return Event{RoundID: c.roundID, Phase: PhaseRunning}
	case PhaseRunning:
		res := c.resultLocked()
		c.phase = PhaseFinished
		c.deadline = now
		return Event{RoundID: c.roundID, Phase: PhaseFinished, Result: &res}
	default:
		c.roundID = c.newID()
		c.phase = PhaseLobby
		c.deadline = now.Add(c.settings.Lobby)
		c.lastJump = make(map[string]time.Time)
		c.heights = make(map[string]int)
		return Event{RoundID: c.roundID, Phase: PhaseLobby}
	}
}

// resultLocked picks the highest height; ties go to the lowest player ID.
func (c *Clock) resultLocked() Result {
	res := Result{RoundID: c.roundID, Heights: make(map[string]int, len(c.heights))}
	ids := make([]string, 0, len(c.heights))
	for id, h := range c.heights {
		res.Heights[id] = h
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if res.WinnerID == "" || c.heights[id] > res.Height {
			res.WinnerID = id
			res.Height = c.heights[id]
		}
	}
	return res
}
