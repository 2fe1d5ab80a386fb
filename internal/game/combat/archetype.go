package combat

import (
	"github.com/cory-johannsen/dungeonescape/internal/game/dice"
)

// Archetype supplies the behaviour that differs between character variants.
type Archetype interface {
	// Class names the variant, e.g. "warrior".
	Class() string
	// AttackDamage returns the raw damage of a basic attack.
	AttackDamage(c *Character, src dice.Source) int
	// PowerModifier returns the stat abilities scale from.
	PowerModifier(c *Character) int
	// AfterAttack runs after c lands or misses a basic attack.
	AfterAttack(c *Character)
	// AfterDamage runs after the damage pipeline reduced c's health by taken.
	AfterDamage(c *Character, taken int)
}

type noHooks struct{}

func (noHooks) AfterAttack(*Character)      {}
func (noHooks) AfterDamage(*Character, int) {}

// Warrior fights on rage: it builds rage by attacking and by being hurt.
type Warrior struct {
	Strength       int
	RagePerAttack  int
	RageFromDamage float64
}

func (w *Warrior) Class() string { return "warrior" }

// AttackDamage is strength plus one point per ten rage.
func (w *Warrior) AttackDamage(c *Character, _ dice.Source) int {
	return w.Strength + c.Resource()/10
}

func (w *Warrior) PowerModifier(*Character) int { return w.Strength }

func (w *Warrior) AfterAttack(c *Character) { c.GenerateResource(w.RagePerAttack) }

func (w *Warrior) AfterDamage(c *Character, taken int) {
	c.GenerateResource(int(float64(taken) * w.RageFromDamage))
}

// Mage casts from mana and scales from spell power.
type Mage struct {
	noHooks
	SpellPower int
	BaseAttack int
}

func (m *Mage) Class() string { return "mage" }

// AttackDamage is the staff strike: base attack plus a third of spell power.
func (m *Mage) AttackDamage(*Character, dice.Source) int {
	return m.BaseAttack + m.SpellPower/3
}

func (m *Mage) PowerModifier(*Character) int { return m.SpellPower }

// Rogue spends energy and scales from agility.
type Rogue struct {
	noHooks
	Agility int
}

func (r *Rogue) Class() string { return "rogue" }

func (r *Rogue) AttackDamage(*Character, dice.Source) int { return r.Agility }

func (r *Rogue) PowerModifier(*Character) int { return r.Agility }

// Monster attacks with a dice expression and has no power stat.
type Monster struct {
	noHooks
	Attack dice.Expression
}

func (m *Monster) Class() string { return "monster" }

func (m *Monster) AttackDamage(_ *Character, src dice.Source) int {
	return m.Attack.Roll(src).Total()
}

func (m *Monster) PowerModifier(*Character) int { return 0 }
