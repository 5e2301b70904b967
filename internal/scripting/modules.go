package scripting

import lua "github.com/yuin/gopher-lua"

// PlayerInfo is a snapshot of a player passed to Lua.
type PlayerInfo struct {
	ID         string
	Name       string
	Wins       int
	Jumps      int
	BestHeight int
	Character  int
}

// RegisterModules installs the game.* table into L.
//
//	game.player(id)  -> table {id, name, wins, jumps, best_height, character} or nil
//	game.players()   -> number of joined players
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: game global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState) {
	game := L.NewTable()
	L.SetField(game, "player", L.NewFunction(m.luaPlayer))
	L.SetField(game, "players", L.NewFunction(m.luaPlayers))
	L.SetGlobal("game", game)
}

func (m *Manager) luaPlayer(L *lua.LState) int {
	id := L.CheckString(1)
	if m.GetPlayer == nil {
		L.Push(lua.LNil)
		return 1
	}
	info := m.GetPlayer(id)
	if info == nil {
		L.Push(lua.LNil)
		return 1
	}
	t := L.NewTable()
	L.SetField(t, "id", lua.LString(info.ID))
	L.SetField(t, "name", lua.LString(info.Name))
	L.SetField(t, "wins", lua.LNumber(info.Wins))
	L.SetField(t, "jumps", lua.LNumber(info.Jumps))
	L.SetField(t, "best_height", lua.LNumber(info.BestHeight))
	L.SetField(t, "character", lua.LNumber(info.Character))
	L.Push(t)
	return 1
}

func (m *Manager) luaPlayers(L *lua.LState) int {
	n := 0
	if m.CountPlayers != nil {
		n = m.CountPlayers()
	}
	L.Push(lua.LNumber(n))
	return 1
}
