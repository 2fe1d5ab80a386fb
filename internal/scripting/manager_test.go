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

	"github.com/cory-johannsen/dungeonescape/internal/game/combat"
	"github.com/cory-johannsen/dungeonescape/internal/game/dice"
	"github.com/cory-johannsen/dungeonescape/internal/game/resource"
	"github.com/cory-johannsen/dungeonescape/internal/scripting"
)

type fixedSrc struct{ val int }

func (f fixedSrc) Intn(n int) int {
	if f.val >= n {
		return n - 1
	}
	return f.val
}

func newTestManager(t testing.TB) (*scripting.Manager, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	return scripting.NewManager(fixedSrc{val: 2}, zap.New(core)), logs
}

func writeTempLua(t testing.TB, filename, src string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, filename), []byte(src), 0644))
	return dir
}

func merlin(t testing.TB) *combat.Character {
	t.Helper()
	c, err := combat.NewCharacter("Merlin", &combat.Mage{SpellPower: 40, BaseAttack: 10}, combat.Stats{
		MaxHealth: 120, Defense: 8, MagicResistance: 30,
		Resource:  resource.KindMana, MaxResource: 150, StartResource: 150,
	})
	require.NoError(t, err)
	return c
}

func goblin(t testing.TB) *combat.Character {
	t.Helper()
	c, err := combat.NewCharacter("Goblin", &combat.Monster{Attack: dice.MustParse("1d6")}, combat.Stats{MaxHealth: 40})
	require.NoError(t, err)
	return c
}

func TestManager_Power_ReadsCharacterTables(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "hooks.lua", `
		function arcane_surge(caster, target)
			if target.health < target.max_health then
				return caster.power / 4 + caster.resource / 50
			end
			return 0
		end
	`)
	require.NoError(t, mgr.Load(dir, 0))
	caster, target := merlin(t), goblin(t)

	n, err := mgr.Power("arcane_surge", caster, target)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	target.TakeDamage(10, combat.CategoryPhysical)
	n, err = mgr.Power("arcane_surge", caster, target)
	require.NoError(t, err)
	assert.Equal(t, 13, n, "40/4 + 150/50")
}

func TestManager_Power_NilTarget(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "hooks.lua", `
		function self_only(caster, target)
			if target == nil then return 7 end
			return 0
		end
	`)
	require.NoError(t, mgr.Load(dir, 0))
	n, err := mgr.Power("self_only", merlin(t), nil)
	require.NoError(t, err)
	assert.Equal(t, 7, n)
}

func TestManager_Power_DiceModule(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "hooks.lua", `
		function rolled(caster, target)
			return dice.roll("2d6+1") + math.random(10)
		end
	`)
	require.NoError(t, mgr.Load(dir, 0))
	n, err := mgr.Power("rolled", merlin(t), goblin(t))
	require.NoError(t, err)
	assert.Equal(t, 3+3+1+3, n, "fixed source draws index 2 for every die")
}

func TestManager_Power_NotLoaded(t *testing.T) {
	mgr, _ := newTestManager(t)
	_, err := mgr.Power("anything", merlin(t), nil)
	assert.ErrorIs(t, err, scripting.ErrNotLoaded)
}

func TestManager_Power_MissingHookWarns(t *testing.T) {
	mgr, logs := newTestManager(t)
	require.NoError(t, mgr.Load(writeTempLua(t, "empty.lua", `-- no functions`), 0))
	_, err := mgr.Power("nonexistent_hook", merlin(t), nil)
	assert.Error(t, err)
	assert.Equal(t, 1, logs.FilterLevelExact(zap.WarnLevel).Len())
}

func TestManager_Power_RuntimeErrorWarns(t *testing.T) {
	mgr, logs := newTestManager(t)
	dir := writeTempLua(t, "bad.lua", `
		function bad_hook()
			error("intentional error")
		end
	`)
	require.NoError(t, mgr.Load(dir, 0))
	n, err := mgr.Power("bad_hook", merlin(t), nil)
	assert.Error(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 1, logs.FilterMessage("scripting: Lua runtime error").Len())
}

func TestManager_Power_NonNumberRejected(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.Load(writeTempLua(t, "s.lua", `function words() return "many" end`), 0))
	_, err := mgr.Power("words", merlin(t), nil)
	assert.Error(t, err)
}

func TestManager_Power_BudgetIsPerCall(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "hooks.lua", `
		function busy()
			local n = 0
			for i = 1, 200 do n = n + 1 end
			return n
		end
		function forever()
			while true do end
		end
	`)
	require.NoError(t, mgr.Load(dir, 5000))
	for i := 0; i < 20; i++ {
		n, err := mgr.Power("busy", merlin(t), nil)
		require.NoError(t, err, "call %d", i)
		assert.Equal(t, 200, n)
	}
	_, err := mgr.Power("forever", merlin(t), nil)
	assert.Error(t, err)
}

func TestManager_Load_InvalidLuaKeepsPreviousVM(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.Load(writeTempLua(t, "ok.lua", `function one() return 1 end`), 0))
	err := mgr.Load(writeTempLua(t, "bad.lua", `this is not valid lua @@@@`), 0)
	assert.Error(t, err)
	n, err := mgr.Power("one", merlin(t), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestManager_Load_MultipleFiles_OrderedByName(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.lua"), []byte(`base_val = 10`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.lua"), []byte(`
		function get_val() return base_val end
	`), 0644))
	require.NoError(t, mgr.Load(dir, 0))
	n, err := mgr.Power("get_val", merlin(t), nil)
	require.NoError(t, err)
	assert.Equal(t, 10, n)
}

func TestManager_Close_Unloads(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.Load(writeTempLua(t, "init.lua", `function one() return 1 end`), 0))
	mgr.Close()
	_, err := mgr.Power("one", merlin(t), nil)
	assert.ErrorIs(t, err, scripting.ErrNotLoaded)
}

func TestManager_ConcurrentPower_NoRace(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.Load(writeTempLua(t, "hooks.lua", `function three() return 1 + 2 end`), 0))
	caster := merlin(t)

	const goroutines = 10
	const callsEach = 5
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < callsEach; j++ {
				n, err := mgr.Power("three", caster, nil)
				assert.NoError(t, err)
				assert.Equal(t, 3, n)
			}
		}()
	}
	wg.Wait()
}

func TestNewManager_PanicsOnNilCollaborators(t *testing.T) {
	assert.Panics(t, func() { scripting.NewManager(nil, zap.NewNop()) })
	assert.Panics(t, func() { scripting.NewManager(dice.NewCryptoSource(), nil) })
}

func TestManager_AbilityUsesHook(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.Load(writeTempLua(t, "hooks.lua", `function plus_five() return 5 end`), 0))
	bolt, err := combat.NewAbility(&combat.AbilityDef{
		ID: "bolt", Name: "Bolt", Resource: "mana", Cost: 10, Category: "magical", Base: 20, LuaPower: "plus_five",
	}, combat.WithSource(fixedSrc{}), combat.WithPowerHook(mgr))
	require.NoError(t, err)
	caster, target := merlin(t), goblin(t)
	res, err := bolt.Cast(caster, target)
	require.NoError(t, err)
	assert.Equal(t, 25, res.TotalDamage())
}

func TestProperty_PowerNeverPanics(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.Load(writeTempLua(t, "hooks.lua", `function known() return 1 end`), 0))
	caster := merlin(t)
	rapid.Check(t, func(rt *rapid.T) {
		hook := rapid.StringMatching(`[a-z_]{1,10}`).Draw(rt, "hook")
		_, _ = mgr.Power(hook, caster, nil)
	})
}
