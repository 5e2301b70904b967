package round

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"pgregory.net/rapid"
)

type fakeTime struct{ t time.Time }

func (f *fakeTime) now() time.Time      { return f.t }
func (f *fakeTime) add(d time.Duration) { f.t = f.t.Add(d) }

func newTestClock(t *testing.T, s Settings) (*Clock, *fakeTime) {
	t.Helper()
	ft := &fakeTime{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewClock(s, zaptest.NewLogger(t))
	c.now = ft.now
	c.deadline = ft.t.Add(s.Lobby)
	return c, ft
}

func defaultSettings() Settings {
	return Settings{Lobby: 10 * time.Second, Duration: time.Minute, Cooldown: 2 * time.Second, Tick: time.Second}
}

func TestClock_StartsInLobby(t *testing.T) {
	c, _ := newTestClock(t, defaultSettings())
	id, phase := c.Phase()
	assert.NotEqual(t, uuid.Nil, id)
	assert.Equal(t, PhaseLobby, phase)
	assert.False(t, c.CanJump("u1"))
	assert.Equal(t, 10*time.Second, c.Remaining())
}

func TestClock_PhaseCycle(t *testing.T) {
	c, ft := newTestClock(t, defaultSettings())
	events := make(chan Event, 8)
	c.Subscribe(events)
	first, _ := c.Phase()

	ft.add(10 * time.Second)
	c.Advance()
	_, phase := c.Phase()
	require.Equal(t, PhaseRunning, phase)
	ev := <-events
	assert.Equal(t, PhaseRunning, ev.Phase)
	assert.Equal(t, first, ev.RoundID)

	assert.True(t, c.RecordHeight("u1", 40))
	assert.True(t, c.RecordHeight("u2", 70))
	assert.False(t, c.RecordHeight("u2", 50))

	ft.add(time.Minute)
	c.Advance()
	_, phase = c.Phase()
	require.Equal(t, PhaseFinished, phase)
	ev = <-events
	require.NotNil(t, ev.Result)
	assert.Equal(t, "u2", ev.Result.WinnerID)
	assert.Equal(t, 70, ev.Result.Height)
	assert.Equal(t, map[string]int{"u1": 40, "u2": 70}, ev.Result.Heights)

	c.Advance()
	next, phase := c.Phase()
	assert.Equal(t, PhaseLobby, phase)
	assert.NotEqual(t, first, next)
	ev = <-events
	assert.Equal(t, PhaseLobby, ev.Phase)
	assert.Equal(t, next, ev.RoundID)
}

func TestClock_NoWinnerWithoutHeights(t *testing.T) {
	c, ft := newTestClock(t, defaultSettings())
	events := make(chan Event, 8)
	c.Subscribe(events)
	ft.add(10 * time.Second)
	c.Advance()
	ft.add(time.Minute)
	c.Advance()
	<-events
	ev := <-events
	require.NotNil(t, ev.Result)
	assert.Empty(t, ev.Result.WinnerID)
}

func TestClock_TieGoesToLowestID(t *testing.T) {
	c, ft := newTestClock(t, defaultSettings())
	ft.add(10 * time.Second)
	c.Advance()
	c.RecordHeight("zed", 30)
	c.RecordHeight("amy", 30)
	c.mu.Lock()
	res := c.resultLocked()
	c.mu.Unlock()
	assert.Equal(t, "amy", res.WinnerID)
}

func TestClock_JumpCooldown(t *testing.T) {
	c, ft := newTestClock(t, defaultSettings())
	ft.add(10 * time.Second)
	c.Advance()

	require.True(t, c.CanJump("u1"))
	c.RecordJump("u1")
	assert.False(t, c.CanJump("u1"))
	assert.True(t, c.CanJump("u2"))

	ft.add(2 * time.Second)
	assert.True(t, c.CanJump("u1"))
}

func TestClock_HeightIgnoredOutsideRunning(t *testing.T) {
	c, _ := newTestClock(t, defaultSettings())
	assert.False(t, c.RecordHeight("u1", 10))
}

func TestClock_ZeroLobbyGoesStraightToRunning(t *testing.T) {
	s := defaultSettings()
	s.Lobby = 0
	c, ft := newTestClock(t, s)
	ft.add(time.Second)
	c.Advance()
	_, phase := c.Phase()
	assert.Equal(t, PhaseRunning, phase)
}

func TestClock_EndRoundFinishesEarly(t *testing.T) {
	c, ft := newTestClock(t, defaultSettings())
	ft.add(10 * time.Second)
	c.Advance()
	c.RecordHeight("u1", 12)

	events := make(chan Event, 4)
	c.Subscribe(events)
	c.EndRound()

	_, phase := c.Phase()
	require.Equal(t, PhaseFinished, phase)
	ev := <-events
	require.NotNil(t, ev.Result)
	assert.Equal(t, "u1", ev.Result.WinnerID)
}

func TestClock_EndRoundIgnoredInLobby(t *testing.T) {
	c, _ := newTestClock(t, defaultSettings())
	c.EndRound()
	_, phase := c.Phase()
	assert.Equal(t, PhaseLobby, phase)
	assert.Equal(t, 10*time.Second, c.Remaining())
}

func TestClock_FullSubscriberDoesNotBlock(t *testing.T) {
	c, ft := newTestClock(t, defaultSettings())
	full := make(chan Event)
	c.Subscribe(full)
	ft.add(10 * time.Second)
	done := make(chan struct{})
	go func() {
		c.Advance()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("advance blocked on a full subscriber")
	}
	c.Unsubscribe(full)
}

func TestClock_StartStop(t *testing.T) {
	c := NewClock(Settings{Lobby: 0, Duration: time.Hour, Tick: 5 * time.Millisecond}, zaptest.NewLogger(t))
	events := make(chan Event, 4)
	c.Subscribe(events)
	stop := c.Start()
	defer stop()

	select {
	case ev := <-events:
		assert.Equal(t, PhaseRunning, ev.Phase)
	case <-time.After(2 * time.Second):
		t.Fatal("no phase transition received")
	}
	stop()
	stop()
}

func TestNewClock_PanicsWithoutLogger(t *testing.T) {
	assert.Panics(t, func() { NewClock(defaultSettings(), nil) })
}

func TestPropertyWinnerHasMaxHeight(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		c, ft := newTestClock(t, defaultSettings())
		ft.add(10 * time.Second)
		c.Advance()
		heights := rapid.MapOfN(rapid.StringMatching(`[a-z]{1,6}`), rapid.IntRange(0, 1000), 1, 20).Draw(rt, "heights")
		max := -1
		for id, h := range heights {
			c.RecordHeight(id, h)
			if h > max {
				max = h
			}
		}
		c.mu.Lock()
		res := c.resultLocked()
		c.mu.Unlock()
		if res.Height != max {
			rt.Fatalf("winner height %d, want %d", res.Height, max)
		}
		if heights[res.WinnerID] != max {
			rt.Fatalf("winner %q does not hold the max height", res.WinnerID)
		}
	})
}
