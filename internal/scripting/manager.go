package scripting

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/dungeonescape/internal/game/combat"
	"github.com/cory-johannsen/dungeonescape/internal/game/dice"
)

// ErrNotLoaded is returned by Power before Load succeeds.
var ErrNotLoaded = errors.New("scripting: no scripts loaded")

// Manager owns one sandboxed LState holding every power hook.
//
// Manager is safe for concurrent use; calls into the VM are serialized.
type Manager struct {
	mu     sync.Mutex
	state  *lua.LState
	limit  int
	src    dice.Source
	logger *zap.Logger
}

// NewManager creates a Manager whose dice module draws from src.
//
// Precondition: src and logger must be non-nil.
// Postcondition: Returns a non-nil Manager with no scripts loaded.
func NewManager(src dice.Source, logger *zap.Logger) *Manager {
	if src == nil || logger == nil {
		panic("scripting.NewManager: src and logger must not be nil")
	}
	return &Manager{src: src, logger: logger}
}

// Load creates a sandboxed VM, registers the dice module, then executes
// every *.lua file in scriptDir in lexicographic order. A previous VM is
// replaced only when loading succeeds.
//
// Precondition: scriptDir must be a readable directory; instLimit >= 0, 0
// uses DefaultInstructionLimit.
// Postcondition: Returns an error naming the failing file, or nil.
func (m *Manager) Load(scriptDir string, instLimit int) error {
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
		release := withBudget(L, instLimit)
		err := L.DoFile(path)
		release()
		if err != nil {
			L.Close()
			return fmt.Errorf("scripting: loading %q: %w", path, err)
		}
	}

	m.mu.Lock()
	if m.state != nil {
		m.state.Close()
	}
	m.state = L
	m.limit = instLimit
	m.mu.Unlock()
	m.logger.Info("scripts loaded", zap.String("dir", scriptDir), zap.Int("files", len(luaFiles)))
	return nil
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

// Power calls the Lua global hook as hook(caster, target) and returns its
// numeric result truncated toward zero. Each call gets a fresh instruction
// budget. Failures are logged at Warn level and returned.
//
// Precondition: caster must not be nil; target may be nil.
// Postcondition: Returns the hook's number, or 0 and a non-nil error when
// no VM is loaded, the hook is undefined, the script fails, or it returns a
// non-number.
func (m *Manager) Power(hook string, caster, target *combat.Character) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		return 0, ErrNotLoaded
	}
	L := m.state

	fn := L.GetGlobal(hook)
	if fn.Type() != lua.LTFunction {
		err := fmt.Errorf("scripting: hook %q is not defined", hook)
		m.logger.Warn("scripting: missing hook", zap.String("hook", hook))
		return 0, err
	}

	release := withBudget(L, m.limit)
	defer release()
	if err := L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, characterTable(L, caster), characterTable(L, target)); err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("hook", hook),
			zap.Error(err),
		)
		return 0, fmt.Errorf("scripting: hook %q: %w", hook, err)
	}

	ret := L.Get(-1)
	L.Pop(1)
	n, ok := ret.(lua.LNumber)
	if !ok {
		m.logger.Warn("scripting: hook returned a non-number",
			zap.String("hook", hook),
			zap.String("type", ret.Type().String()),
		)
		return 0, fmt.Errorf("scripting: hook %q returned %s, want number", hook, ret.Type())
	}
	return int(n), nil
}

// characterTable snapshots c for a hook. A nil character becomes nil.
func characterTable(L *lua.LState, c *combat.Character) lua.LValue {
	if c == nil {
		return lua.LNil
	}
	t := L.NewTable()
	L.SetField(t, "name", lua.LString(c.Name()))
	L.SetField(t, "class", lua.LString(c.Archetype().Class()))
	L.SetField(t, "health", lua.LNumber(c.Health()))
	L.SetField(t, "max_health", lua.LNumber(c.MaxHealth()))
	L.SetField(t, "resource_kind", lua.LString(c.ResourceKind().String()))
	L.SetField(t, "resource", lua.LNumber(c.Resource()))
	L.SetField(t, "max_resource", lua.LNumber(c.MaxResource()))
	L.SetField(t, "power", lua.LNumber(c.Power()))
	L.SetField(t, "defense", lua.LNumber(c.Defense()))
	L.SetField(t, "magic_resistance", lua.LNumber(c.MagicResistance()))
	L.SetField(t, "defending", lua.LBool(c.Defending()))
	return t
}
