package gameserver

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/cory-johannsen/skyjump/internal/chat"
	"github.com/cory-johannsen/skyjump/internal/game/round"
	"github.com/cory-johannsen/skyjump/internal/game/session"
)

// Announcer posts a line back to chat.
type Announcer interface {
	Announce(msg string)
}

// LogAnnouncer announces by logging at Info level.
type LogAnnouncer struct {
	Logger *zap.Logger
}

// Announce logs msg.
func (a LogAnnouncer) Announce(msg string) {
	a.Logger.Info("announce", zap.String("message", msg))
}

// Hooks runs scripted reactions. A hook returning "" announces nothing.
type Hooks interface {
	CallHook(hook string, args ...any) (string, error)
}

// Settings configure the game loop.
type Settings struct {
	// QueueSize bounds the number of chat events waiting to be dispatched.
	QueueSize int
	// RatePerSecond and Burst throttle each sender; RatePerSecond <= 0
	// disables throttling.
	RatePerSecond float64
	Burst         int
}

// Game owns the mutable game state and applies dispatched actions to it.
// Chat events are queued by Submit and handled one at a time by Run, so
// roster mutations are serialized.
type Game struct {
	dispatcher *Dispatcher
	roster     *session.Manager
	clock      *round.Clock
	avatars    Avatars
	announcer  Announcer
	hooks      Hooks
	logger     *zap.Logger

	queue   chan chat.Event
	dropped atomic.Int64

	limit     rate.Limit
	burst     int
	limiterMu sync.Mutex
	limiters  map[string]*rate.Limiter
}

// NewGame creates a Game.
//
// Precondition: dispatcher, roster, clock, avatars, announcer, and logger
// must be non-nil; hooks may be nil.
// Postcondition: Returns a Game ready to Run.
func NewGame(
	dispatcher *Dispatcher,
	roster *session.Manager,
	clock *round.Clock,
	avatars Avatars,
	announcer Announcer,
	hooks Hooks,
	s Settings,
	logger *zap.Logger,
) *Game {
	switch {
	case dispatcher == nil:
		panic("gameserver.NewGame: dispatcher must not be nil")
	case roster == nil:
		panic("gameserver.NewGame: roster must not be nil")
	case clock == nil:
		panic("gameserver.NewGame: clock must not be nil")
	case avatars == nil:
		panic("gameserver.NewGame: avatars must not be nil")
	case announcer == nil:
		panic("gameserver.NewGame: announcer must not be nil")
	case logger == nil:
		panic("gameserver.NewGame: logger must not be nil")
	}
	if s.QueueSize <= 0 {
		s.QueueSize = 256
	}
	limit := rate.Inf
	if s.RatePerSecond > 0 {
		limit = rate.Limit(s.RatePerSecond)
	}
	if s.Burst <= 0 {
		s.Burst = 1
	}
	return &Game{
		dispatcher: dispatcher,
		roster:     roster,
		clock:      clock,
		avatars:    avatars,
		announcer:  announcer,
		hooks:      hooks,
		logger:     logger,
		queue:      make(chan chat.Event, s.QueueSize),
		limit:      limit,
		burst:      s.Burst,
		limiters:   make(map[string]*rate.Limiter),
	}
}

// Submit enqueues ev without blocking.
//
// Postcondition: Returns false and counts the event as dropped when the
// queue is full.
func (g *Game) Submit(ev chat.Event) bool {
	select {
	case g.queue <- ev:
		return true
	default:
		g.dropped.Add(1)
		return false
	}
}

// Dropped returns the number of events Submit rejected.
func (g *Game) Dropped() int64 {
	return g.dropped.Load()
}

// Run handles queued chat events and round transitions until ctx is
// cancelled, then persists every player.
//
// Postcondition: Returns nil after a final save; save failures are logged.
func (g *Game) Run(ctx context.Context) error {
	rounds := make(chan round.Event, 8)
	g.clock.Subscribe(rounds)
	defer g.clock.Unsubscribe(rounds)

	for {
		select {
		case <-ctx.Done():
			g.saveAll(context.WithoutCancel(ctx))
			return nil
		case ev := <-g.queue:
			g.Handle(ctx, ev)
		case rev := <-rounds:
			g.HandleRound(ctx, rev)
		}
	}
}

// Handle throttles, dispatches, and applies one chat event.
func (g *Game) Handle(ctx context.Context, ev chat.Event) {
	if !g.allow(ev.SenderID) {
		g.logger.Debug("throttled chat event", zap.String("sender", ev.SenderID))
		return
	}
	if a := g.dispatcher.Dispatch(ev); a != nil {
		g.Apply(ctx, a)
	}
}

func (g *Game) allow(senderID string) bool {
	if g.limit == rate.Inf {
		return true
	}
	g.limiterMu.Lock()
	l, ok := g.limiters[senderID]
	if !ok {
		l = rate.NewLimiter(g.limit, g.burst)
		g.limiters[senderID] = l
	}
	g.limiterMu.Unlock()
	return l.Allow()
}

// Apply performs a on the roster and the avatars.
//
// Precondition: a was produced by the Dispatcher.
func (g *Game) Apply(ctx context.Context, a Action) {
	switch a := a.(type) {
	case JoinAction:
		g.applyJoin(ctx, a)
	case UnglowAction:
		p, err := g.roster.Update(a.SenderID, func(p *session.PlayerData) { p.Glowing = false })
		if g.updated(a, err) {
			g.avatars.SetGlow(a.SenderID, p.GlowColor, false)
		}
	case JumpAction:
		roundID, _ := g.clock.Phase()
		g.clock.RecordJump(a.SenderID)
		_, err := g.roster.Update(a.SenderID, func(p *session.PlayerData) {
			p.Jumps++
			p.LastRoundID = roundID.String()
		})
		if g.updated(a, err) {
			g.avatars.Jump(a.SenderID, a.Jump)
		}
	case CharacterAction:
		_, err := g.roster.Update(a.SenderID, func(p *session.PlayerData) { p.Character = a.Choice })
		if g.updated(a, err) {
			g.avatars.SetCharacter(a.SenderID, a.Choice)
		}
	case GlowAction:
		_, err := g.roster.Update(a.SenderID, func(p *session.PlayerData) {
			p.GlowColor = a.Color
			p.Glowing = true
		})
		if g.updated(a, err) {
			g.avatars.SetGlow(a.SenderID, a.Color, true)
		}
	case NameColorAction:
		_, err := g.roster.Update(a.SenderID, func(p *session.PlayerData) { p.NameColor = a.Color })
		if g.updated(a, err) {
			g.avatars.SetNameColor(a.SenderID, a.Color)
		}
	default:
		panic(fmt.Sprintf("gameserver.Apply: unknown action %T", a))
	}
}

func (g *Game) applyJoin(ctx context.Context, a JoinAction) {
	p, created := g.roster.Join(ctx, a.SenderID, a.SenderName, a.Color, a.Privileged)
	if !created {
		g.logger.Debug("already joined", zap.String("player", a.SenderID))
		return
	}
	g.logger.Info("player joined",
		zap.String("player", p.ID),
		zap.String("name", p.Name),
		zap.Int("wins", p.Wins),
	)
	g.avatars.Spawn(p)
	if p.Glowing && p.GlowColor != "" {
		g.avatars.SetGlow(p.ID, p.GlowColor, true)
	}
	g.react("on_join", p.Name, p.Wins > 0 || p.Jumps > 0)
}

// updated logs a failed roster update and reports whether it succeeded.
func (g *Game) updated(a Action, err error) bool {
	if err != nil {
		g.logger.Warn("applying action",
			zap.Stringer("identity", a.Identity()),
			zap.String("player", a.Sender()),
			zap.Error(err),
		)
		return false
	}
	return true
}

// ReportHeight records a height reached by playerID's avatar.
func (g *Game) ReportHeight(playerID string, height int) {
	if !g.clock.RecordHeight(playerID, height) {
		return
	}
	if _, err := g.roster.Update(playerID, func(p *session.PlayerData) { p.RecordHeight(height) }); err != nil {
		g.logger.Warn("recording height", zap.String("player", playerID), zap.Error(err))
	}
}

// HandleRound reacts to a round phase transition. Run calls it for every
// event the clock broadcasts.
func (g *Game) HandleRound(ctx context.Context, ev round.Event) {
	switch ev.Phase {
	case round.PhaseLobby:
		g.avatars.ResetRound()
		g.announcer.Announce("new round! type join to play")
	case round.PhaseRunning:
		g.announcer.Announce(fmt.Sprintf("jump! j, l, or r with an angle and power (%s left)",
			g.clock.Remaining().Round(time.Second)))
	case round.PhaseFinished:
		g.finish(ctx, ev.Result)
	}
}

func (g *Game) finish(ctx context.Context, res *round.Result) {
	if res == nil || res.WinnerID == "" {
		g.announcer.Announce("round over: nobody climbed")
		g.saveAll(ctx)
		return
	}
	p, err := g.roster.Update(res.WinnerID, func(p *session.PlayerData) { p.Wins++ })
	if err != nil {
		g.logger.Warn("crediting winner", zap.String("player", res.WinnerID), zap.Error(err))
	} else {
		g.logger.Info("round won",
			zap.String("round", res.RoundID.String()),
			zap.String("player", p.ID),
			zap.Int("height", res.Height),
		)
		if !g.react("on_win", p.Name, res.Height, p.Wins) {
			g.announcer.Announce(fmt.Sprintf("%s wins at height %d!", p.Name, res.Height))
		}
	}
	g.saveAll(ctx)
}

// react runs hook and announces its result. It reports whether anything was
// announced.
func (g *Game) react(hook string, args ...any) bool {
	if g.hooks == nil {
		return false
	}
	msg, err := g.hooks.CallHook(hook, args...)
	if err != nil {
		g.logger.Warn("calling hook", zap.String("hook", hook), zap.Error(err))
		return false
	}
	if msg == "" {
		return false
	}
	g.announcer.Announce(msg)
	return true
}

func (g *Game) saveAll(ctx context.Context) {
	if err := g.roster.SaveAll(ctx); err != nil {
		g.logger.Warn("saving players", zap.Error(err))
	}
}
