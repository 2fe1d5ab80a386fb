package combat_test

import (
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/dungeonescape/internal/game/combat"
	"github.com/cory-johannsen/dungeonescape/internal/game/condition"
	"github.com/cory-johannsen/dungeonescape/internal/game/dice"
	"github.com/cory-johannsen/dungeonescape/internal/game/resource"
)

type fixedSrc struct{ val int }

func (f fixedSrc) Intn(n int) int {
	if f.val >= n {
		return n - 1
	}
	return f.val
}

// flatArchetype hits for a fixed amount and records post-damage calls.
type flatArchetype struct {
	attack  int
	power   int
	damaged []int
}

func (f *flatArchetype) Class() string                                   { return "flat" }
func (f *flatArchetype) AttackDamage(*combat.Character, dice.Source) int { return f.attack }
func (f *flatArchetype) PowerModifier(*combat.Character) int             { return f.power }
func (f *flatArchetype) AfterAttack(*combat.Character)                   {}
func (f *flatArchetype) AfterDamage(_ *combat.Character, taken int) {
	f.damaged = append(f.damaged, taken)
}

func newChar(t require.TestingT, name string, stats combat.Stats) *combat.Character {
	c, err := combat.NewCharacter(name, &flatArchetype{attack: 10}, stats)
	require.NoError(t, err)
	return c
}

func dummy(t require.TestingT, name string, hp, def, mr int) *combat.Character {
	return newChar(t, name, combat.Stats{MaxHealth: hp, Defense: def, MagicResistance: mr})
}

func caster(t require.TestingT, kind resource.Kind, amount int) *combat.Character {
	c, err := combat.NewCharacter("Caster", &flatArchetype{attack: 10}, combat.Stats{
		MaxHealth: 100, Resource: kind, MaxResource: amount, StartResource: amount,
	})
	require.NoError(t, err)
	return c
}

func mustAbility(t require.TestingT, def *combat.AbilityDef, opts ...combat.AbilityOption) *combat.Ability {
	a, err := combat.NewAbility(def, append([]combat.AbilityOption{combat.WithSource(fixedSrc{})}, opts...)...)
	require.NoError(t, err)
	return a
}

func fireball() *combat.AbilityDef {
	return &combat.AbilityDef{
		ID:       "fireball", Name: "Fireball", Resource: "mana", Cost: 40,
		Category: "magical", Cooldown: 2, Base: 30,
	}
}

func whirlwind() *combat.AbilityDef {
	return &combat.AbilityDef{
		ID:       "whirlwind", Name: "Whirlwind", Resource: "mana", Cost: 30,
		Category: "physical", Area: true, Base: 20,
	}
}

func evasiveDef() *condition.ConditionDef {
	return &condition.ConditionDef{ID: "evasive", Name: "Evasive", Stat: condition.StatDodge, DurationType: "rounds", Cap: 1}
}
