package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/dungeonescape/internal/game/combat"
	"github.com/cory-johannsen/dungeonescape/internal/game/condition"
)

func TestTakeDamage_DefendDoublesResistance(t *testing.T) {
	c := dummy(t, "Target", 100, 5, 0)
	assert.Equal(t, 10, c.TakeDamage(15, combat.CategoryPhysical))
	assert.Equal(t, 90, c.Health())

	c.EnterDefend()
	assert.Equal(t, 5, c.TakeDamage(15, combat.CategoryPhysical))
	assert.Equal(t, 85, c.Health())
	assert.True(t, c.Defending(), "the pipeline never clears defend")
}

func TestTakeDamage_MagicalUsesMagicResistance(t *testing.T) {
	c := dummy(t, "Target", 100, 50, 4)
	assert.Equal(t, 16, c.TakeDamage(20, combat.CategoryMagical))
}

func TestTakeDamage_MinimumOne(t *testing.T) {
	c := dummy(t, "Target", 100, 200, 200)
	assert.Equal(t, 1, c.TakeDamage(5, combat.CategoryPhysical))
	assert.Equal(t, 1, c.TakeDamage(-40, combat.CategoryMagical))
	assert.Equal(t, 98, c.Health())
}

func TestTakeDamage_FloorsAtZero(t *testing.T) {
	c := dummy(t, "Target", 10, 0, 0)
	assert.Equal(t, 50, c.TakeDamage(50, combat.CategoryPhysical))
	assert.Equal(t, 0, c.Health())
	assert.False(t, c.Alive())
}

func TestTakeDamage_RunsPostDamageHook(t *testing.T) {
	arch := &flatArchetype{}
	c, err := combat.NewCharacter("Hooked", arch, combat.Stats{MaxHealth: 50, Defense: 2})
	require.NoError(t, err)
	c.TakeDamage(12, combat.CategoryPhysical)
	assert.Equal(t, []int{10}, arch.damaged)
}

func TestTakeDamage_NonDamageCategoryPanics(t *testing.T) {
	c := dummy(t, "Target", 10, 0, 0)
	assert.Panics(t, func() { c.TakeDamage(5, combat.CategoryHeal) })
	assert.Panics(t, func() { c.TakeDamage(5, combat.Category(99)) })
}

func TestTakeDamage_DefenseBonusApplies(t *testing.T) {
	c := dummy(t, "Target", 100, 5, 0)
	skin := &condition.ConditionDef{ID: "stone_skin", Name: "Stone Skin", Stat: condition.StatDefense, DurationType: "rounds"}
	require.NoError(t, c.ApplyBonus(skin, 5, 2))
	assert.Equal(t, 10, c.Defense())
	assert.Equal(t, 5, c.TakeDamage(15, combat.CategoryPhysical))
}

// TestTakeDamage_FormulaProperty checks actual = max(1, d - r*(defending?2:1))
// and the health floor for arbitrary inputs.
func TestTakeDamage_FormulaProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		hp := rapid.IntRange(1, 1000).Draw(rt, "hp")
		def := rapid.IntRange(0, 100).Draw(rt, "def")
		mr := rapid.IntRange(0, 100).Draw(rt, "mr")
		raw := rapid.IntRange(0, 500).Draw(rt, "raw")
		magical := rapid.Bool().Draw(rt, "magical")
		defending := rapid.Bool().Draw(rt, "defending")

		c := dummy(rt, "Target", hp, def, mr)
		if defending {
			c.EnterDefend()
		}
		cat, resist := combat.CategoryPhysical, def
		if magical {
			cat, resist = combat.CategoryMagical, mr
		}
		if defending {
			resist *= 2
		}
		want := max(1, raw-resist)

		got := c.TakeDamage(raw, cat)
		assert.Equal(rt, want, got)
		assert.Equal(rt, max(0, hp-want), c.Health())
		assert.GreaterOrEqual(rt, got, 1)
		assert.Equal(rt, defending, c.Defending())
	})
}

func TestAttack_BasicAttack(t *testing.T) {
	attacker := dummy(t, "Attacker", 100, 0, 0)
	target := dummy(t, "Target", 50, 2, 0)

	res, err := attacker.Attack(target, fixedSrc{})
	require.NoError(t, err)
	require.Len(t, res.Hits, 1)
	assert.Equal(t, 8, res.Hits[0].Damage)
	assert.Equal(t, 42, target.Health())
	assert.Equal(t, []*combat.Character{target}, res.Struck())
}

func TestAttack_Preconditions(t *testing.T) {
	attacker := dummy(t, "Attacker", 100, 0, 0)
	dead := dummy(t, "Dead", 1, 0, 0)
	dead.TakeDamage(5, combat.CategoryPhysical)

	_, err := attacker.Attack(nil, fixedSrc{})
	assert.ErrorIs(t, err, combat.ErrNoTarget)
	_, err = attacker.Attack(dead, fixedSrc{})
	assert.ErrorIs(t, err, combat.ErrTargetDefeated)
	_, err = dead.Attack(attacker, fixedSrc{})
	assert.ErrorIs(t, err, combat.ErrCasterDefeated)
	assert.Equal(t, 100, attacker.Health())
}

func TestAttack_FullDodgeEvades(t *testing.T) {
	attacker := dummy(t, "Attacker", 100, 0, 0)
	target := dummy(t, "Target", 50, 0, 0)
	require.NoError(t, target.ApplyBonus(evasiveDef(), 1, 2))
	target.EnterDefend()

	res, err := attacker.Attack(target, fixedSrc{})
	require.NoError(t, err)
	require.Len(t, res.Hits, 1)
	assert.True(t, res.Hits[0].Evaded)
	assert.Equal(t, 50, target.Health())
	assert.Empty(t, res.Struck(), "an evaded hit does not count as struck")
}

func TestAttack_PartialDodgeUsesSource(t *testing.T) {
	attacker := dummy(t, "Attacker", 100, 0, 0)
	target := dummy(t, "Target", 50, 0, 0)
	require.NoError(t, target.ApplyBonus(evasiveDef(), 0.5, 2))

	res, err := attacker.Attack(target, fixedSrc{val: 999})
	require.NoError(t, err)
	assert.False(t, res.Hits[0].Evaded)

	res, err = attacker.Attack(target, fixedSrc{val: 0})
	require.NoError(t, err)
	assert.True(t, res.Hits[0].Evaded)
}

func TestAttack_TwoHitsEndDuel(t *testing.T) {
	attacker, err := combat.NewCharacter("Attacker", &flatArchetype{attack: 25}, combat.Stats{MaxHealth: 100})
	require.NoError(t, err)
	target := dummy(t, "Target", 50, 0, 0)

	_, err = attacker.Attack(target, fixedSrc{})
	require.NoError(t, err)
	assert.True(t, target.Alive())
	res, err := attacker.Attack(target, fixedSrc{})
	require.NoError(t, err)
	assert.False(t, target.Alive())
	assert.True(t, res.Hits[0].Killed)
}
