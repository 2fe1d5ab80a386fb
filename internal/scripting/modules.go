package scripting

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/cory-johannsen/dungeonescape/internal/game/dice"
)

// RegisterModules installs the dice table into L:
//
//	dice.roll("2d6+1") -> total
//	dice.chance(0.25)  -> boolean
//
// math.random is replaced by dice.between so scripts share the manager's
// source.
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: dice global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState) {
	mod := L.NewTable()
	L.SetField(mod, "roll", L.NewFunction(m.luaRoll))
	L.SetField(mod, "chance", L.NewFunction(m.luaChance))
	L.SetField(mod, "between", L.NewFunction(m.luaBetween))
	L.SetGlobal("dice", mod)

	if math, ok := L.GetGlobal("math").(*lua.LTable); ok {
		L.SetField(math, "random", L.NewFunction(m.luaBetween))
		L.SetField(math, "randomseed", lua.LNil)
	}
}

func (m *Manager) luaRoll(L *lua.LState) int {
	expr, err := dice.Parse(L.CheckString(1))
	if err != nil {
		L.RaiseError("%s", err.Error())
		return 0
	}
	L.Push(lua.LNumber(expr.Roll(m.src).Total()))
	return 1
}

func (m *Manager) luaChance(L *lua.LState) int {
	L.Push(lua.LBool(dice.Chance(m.src, float64(L.CheckNumber(1)))))
	return 1
}

// luaBetween returns an int in [lo, hi]; with one argument, [1, hi].
func (m *Manager) luaBetween(L *lua.LState) int {
	lo, hi := 1, L.CheckInt(1)
	if L.GetTop() >= 2 {
		lo, hi = hi, L.CheckInt(2)
	}
	if hi < lo {
		L.ArgError(1, "interval is empty")
		return 0
	}
	L.Push(lua.LNumber(dice.Between(m.src, lo, hi)))
	return 1
}
