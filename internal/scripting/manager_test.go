package scripting_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skyjump/internal/scripting"
)

func newTestManager(t testing.TB) (*scripting.Manager, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	return scripting.NewManager(zap.New(core)), logs
}

func writeTempLua(t testing.TB, filename, src string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, filename), []byte(src), 0644))
	return dir
}

func TestManager_LoadDir_CallsHook(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "hooks.lua", `
		function on_win(name, height, wins)
			return name .. " climbed " .. height .. " (" .. wins .. " wins)"
		end
	`)
	require.NoError(t, mgr.LoadDir(dir, 0))
	ret, err := mgr.CallHook("on_win", "Alice", 120, 3)
	require.NoError(t, err)
	assert.Equal(t, "Alice climbed 120 (3 wins)", ret)
}

func TestManager_CallHook_BoolArgument(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "hooks.lua", `
		function on_join(name, returning)
			if returning then return "welcome back " .. name end
			return "hello " .. name
		end
	`)
	require.NoError(t, mgr.LoadDir(dir, 0))
	ret, err := mgr.CallHook("on_join", "Bob", true)
	require.NoError(t, err)
	assert.Equal(t, "welcome back Bob", ret)
	ret, err = mgr.CallHook("on_join", "Bob", false)
	require.NoError(t, err)
	assert.Equal(t, "hello Bob", ret)
}

func TestManager_CallHook_NothingLoaded(t *testing.T) {
	mgr, _ := newTestManager(t)
	ret, err := mgr.CallHook("on_join", "x")
	require.NoError(t, err)
	assert.Empty(t, ret)
}

func TestManager_CallHook_MissingHook_NoOp(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "empty.lua", `not_a_function = 5`)
	require.NoError(t, mgr.LoadDir(dir, 0))
	for _, hook := range []string{"nonexistent_hook", "not_a_function"} {
		ret, err := mgr.CallHook(hook)
		require.NoError(t, err)
		assert.Empty(t, ret)
	}
}

func TestManager_CallHook_UnsupportedArgument(t *testing.T) {
	mgr, _ := newTestManager(t)
	_, err := mgr.CallHook("on_join", struct{}{})
	assert.Error(t, err)
}

func TestManager_CallHook_RuntimeError_WarnLogNoPanic(t *testing.T) {
	mgr, logs := newTestManager(t)
	dir := writeTempLua(t, "bad.lua", `
		function bad_hook()
			error("intentional error")
		end
	`)
	require.NoError(t, mgr.LoadDir(dir, 0))
	ret, err := mgr.CallHook("bad_hook")
	require.NoError(t, err)
	assert.Empty(t, ret)
	assert.NotZero(t, logs.FilterLevelExact(zap.WarnLevel).Len(), "expected Warn log for Lua runtime error")
}

func TestManager_InstructionBudgetIsPerCall(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "hooks.lua", `
		function spin() while true do end end
		function count(n)
			local s = 0
			for i = 1, n do s = s + i end
			return s
		end
	`)
	require.NoError(t, mgr.LoadDir(dir, 500))

	ret, err := mgr.CallHook("spin")
	require.NoError(t, err)
	assert.Empty(t, ret)

	for i := 0; i < 20; i++ {
		ret, err = mgr.CallHook("count", 10)
		require.NoError(t, err)
		assert.Equal(t, "55", ret)
	}
}

func TestManager_LoadDir_EmptyDir_NoError(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.LoadDir(t.TempDir(), 0))
	ret, err := mgr.CallHook("anything")
	require.NoError(t, err)
	assert.Empty(t, ret)
}

func TestManager_LoadDir_MissingDir(t *testing.T) {
	mgr, _ := newTestManager(t)
	assert.Error(t, mgr.LoadDir(filepath.Join(t.TempDir(), "missing"), 0))
}

func TestManager_LoadDir_InvalidLua_KeepsPreviousVM(t *testing.T) {
	mgr, _ := newTestManager(t)
	good := writeTempLua(t, "good.lua", `function hello() return "hi" end`)
	require.NoError(t, mgr.LoadDir(good, 0))

	bad := writeTempLua(t, "bad.lua", `this is not valid lua @@@@`)
	assert.Error(t, mgr.LoadDir(bad, 0))

	ret, err := mgr.CallHook("hello")
	require.NoError(t, err)
	assert.Equal(t, "hi", ret)
}

func TestManager_LoadDir_MultipleFiles_OrderedByName(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.lua"), []byte(`base_val = 10`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.lua"), []byte(`
		function get_val() return base_val end
	`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte(`ignored`), 0644))
	require.NoError(t, mgr.LoadDir(dir, 0))
	ret, err := mgr.CallHook("get_val")
	require.NoError(t, err)
	assert.Equal(t, "10", ret)
}

func TestManager_GameModule(t *testing.T) {
	mgr, _ := newTestManager(t)
	mgr.GetPlayer = func(id string) *scripting.PlayerInfo {
		if id != "alice" {
			return nil
		}
		return &scripting.PlayerInfo{ID: "alice", Name: "Alice", Wins: 2, BestHeight: 80}
	}
	mgr.CountPlayers = func() int { return 7 }
	dir := writeTempLua(t, "hooks.lua", `
		function describe(id)
			local p = game.player(id)
			if p == nil then return "nobody of " .. game.players() end
			return p.name .. ":" .. p.wins .. ":" .. p.best_height
		end
	`)
	require.NoError(t, mgr.LoadDir(dir, 0))

	ret, err := mgr.CallHook("describe", "alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice:2:80", ret)

	ret, err = mgr.CallHook("describe", "ghost")
	require.NoError(t, err)
	assert.Equal(t, "nobody of 7", ret)
}

func TestManager_GameModule_NoCallbacks(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "hooks.lua", `
		function describe(id)
			if game.player(id) == nil then return "none " .. game.players() end
			return "some"
		end
	`)
	require.NoError(t, mgr.LoadDir(dir, 0))
	ret, err := mgr.CallHook("describe", "alice")
	require.NoError(t, err)
	assert.Equal(t, "none 0", ret)
}

func TestManager_ReactionsScript(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.LoadDir(filepath.Join("..", "..", "content", "scripts"), 0))
	ret, err := mgr.CallHook("on_join", "Alice", false)
	require.NoError(t, err)
	assert.Contains(t, ret, "Alice")
	ret, err = mgr.CallHook("on_win", "Alice", 150, 1)
	require.NoError(t, err)
	assert.Contains(t, ret, "Alice")
}

func TestManager_CallHookConcurrent_NoRace(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "hooks.lua", `
		function add(a, b)
			return a + b
		end
	`)
	require.NoError(t, mgr.LoadDir(dir, 0))

	const goroutines = 10
	const callsEach = 5
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < callsEach; j++ {
				ret, err := mgr.CallHook("add", 1, 2)
				assert.NoError(t, err)
				assert.Equal(t, "3", ret)
			}
		}()
	}
	wg.Wait()
}

func TestProperty_CallHookUnknownNeverPanics(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "hooks.lua", `function known() return "k" end`)
	require.NoError(t, mgr.LoadDir(dir, 0))
	rapid.Check(t, func(rt *rapid.T) {
		hook := rapid.StringMatching(`[a-z_]{1,10}`).Draw(rt, "hook")
		arg := rapid.String().Draw(rt, "arg")
		if _, err := mgr.CallHook(hook, arg); err != nil {
			rt.Fatalf("CallHook(%q) returned error: %v", hook, err)
		}
	})
}

func TestNewManager_PanicsOnNilLogger(t *testing.T) {
	assert.Panics(t, func() {
		scripting.NewManager(nil)
	})
}

func TestManager_Close_ReleasesVM(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "init.lua", `function get_x() return "x" end`)
	require.NoError(t, mgr.LoadDir(dir, 0))
	mgr.Close()
	ret, err := mgr.CallHook("get_x")
	assert.NoError(t, err)
	assert.Empty(t, ret)
}
