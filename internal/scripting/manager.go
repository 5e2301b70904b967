package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Manager owns one sandboxed LState and dispatches named hooks into it.
// All methods are safe for concurrent use; hook calls are serialized because
// an LState is single-threaded.
type Manager struct {
	mu        sync.Mutex
	state     *lua.LState
	instLimit int
	logger    *zap.Logger

	// Injected after construction. nil = game.* functions return nil or 0.
	GetPlayer    func(id string) *PlayerInfo
	CountPlayers func() int
}

// NewManager creates a Manager with no scripts loaded.
//
// Precondition: logger must be non-nil.
// Postcondition: Returns a non-nil Manager; CallHook is a no-op until LoadDir.
func NewManager(logger *zap.Logger) *Manager {
	if logger == nil {
		panic("scripting: NewManager requires a logger")
	}
	return &Manager{logger: logger}
}

// LoadDir creates a fresh sandboxed VM, registers the game.* module, then
// executes every *.lua file in scriptDir in lexicographic order. On success
// the new VM replaces any previously loaded one.
//
// Precondition: scriptDir must be a readable directory.
// Postcondition: Returns an error on read or Lua load failure, leaving the
// previous VM in place.
func (m *Manager) LoadDir(scriptDir string, instLimit int) error {
	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		return fmt.Errorf("scripting: reading script dir %q: %w", scriptDir, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(scriptDir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	L := NewSandboxedState(instLimit)
	m.RegisterModules(L)
	for _, path := range luaFiles {
		cancel := armLimit(L, instLimit)
		err := L.DoFile(path)
		cancel()
		if err != nil {
			L.Close()
			return fmt.Errorf("scripting: loading %q: %w", path, err)
		}
	}

	m.mu.Lock()
	old := m.state
	m.state = L
	m.instLimit = instLimit
	m.mu.Unlock()
	if old != nil {
		old.Close()
	}

	m.logger.Info("scripts loaded",
		zap.String("dir", scriptDir),
		zap.Int("files", len(luaFiles)),
	)
	return nil
}

// CallHook calls the named Lua global function with args converted to Lua
// values (string, int, float64, bool, nil). It returns "" if no scripts are
// loaded or the hook is not defined. Lua runtime errors, including an
// exhausted instruction budget, are logged at Warn level and never
// propagated.
//
// Postcondition: Returns the first return value of the hook as a string, or "".
func (m *Manager) CallHook(hook string, args ...any) (string, error) {
	lvs := make([]lua.LValue, 0, len(args))
	for i, a := range args {
		lv, err := toLValue(a)
		if err != nil {
			return "", fmt.Errorf("scripting: hook %q argument %d: %w", hook, i, err)
		}
		lvs = append(lvs, lv)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		return "", nil
	}
	L := m.state

	fn := L.GetGlobal(hook)
	if fn.Type() != lua.LTFunction {
		return "", nil
	}

	cancel := armLimit(L, m.instLimit)
	defer cancel()
	if err := L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, lvs...); err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("hook", hook),
			zap.Error(err),
		)
		return "", nil
	}

	ret := L.Get(-1)
	L.Pop(1)
	if ret == lua.LNil {
		return "", nil
	}
	return lua.LVAsString(ret), nil
}

// Close releases the VM.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != nil {
		m.state.Close()
		m.state = nil
	}
}

func toLValue(v any) (lua.LValue, error) {
	switch x := v.(type) {
	case nil:
		return lua.LNil, nil
	case string:
		return lua.LString(x), nil
	case int:
		return lua.LNumber(x), nil
	case int64:
		return lua.LNumber(x), nil
	case float64:
		return lua.LNumber(x), nil
	case bool:
		return lua.LBool(x), nil
	default:
		return nil, fmt.Errorf("unsupported type %T", v)
	}
}
