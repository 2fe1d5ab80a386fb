package combat

import (
	"fmt"

	"github.com/cory-johannsen/dungeonescape/internal/game/condition"
	"github.com/cory-johannsen/dungeonescape/internal/game/dice"
)

// TakeDamage runs raw damage of category cat through c's resistances.
//
// The resisting stat is Defense for physical and MagicResistance for magical
// damage, doubled while defending. The result is at least 1. The defend
// stance is left untouched; callers clear it once the hit has resolved.
//
// Precondition: cat is CategoryPhysical or CategoryMagical (panics otherwise).
// Postcondition: Returns max(1, raw - resistance); Health() decreased by that
// amount, floored at 0; the archetype's AfterDamage hook has run.
func (c *Character) TakeDamage(raw int, cat Category) int {
	var resist int
	switch cat {
	case CategoryPhysical:
		resist = c.Defense()
	case CategoryMagical:
		resist = c.MagicResistance()
	default:
		panic(fmt.Sprintf("combat: %s is not a damage category", cat))
	}
	if c.defending {
		resist *= 2
	}
	actual := max(1, max(0, raw)-resist)
	c.health = max(0, c.health-actual)
	c.archetype.AfterDamage(c, actual)
	return actual
}

// strike resolves one hit on target, rolling its dodge first. No random
// number is drawn when the target has no dodge.
func strike(src dice.Source, target *Character, raw int, cat Category) Hit {
	if dodge := target.Dodge(); dodge > 0 && dice.Chance(src, dodge) {
		return Hit{Target: target, Evaded: true}
	}
	defended := target.Defending()
	dmg := target.TakeDamage(raw, cat)
	return Hit{Target: target, Damage: dmg, Defended: defended, Killed: !target.Alive()}
}

// Attack performs a basic physical attack on target.
//
// Precondition: src is non-nil.
// Postcondition: On error nothing changed; otherwise target took one strike
// and the attacker's AfterAttack hook ran.
func (c *Character) Attack(target *Character, src dice.Source) (Result, error) {
	if !c.Alive() {
		return Result{}, fmt.Errorf("%w: %s cannot attack", ErrCasterDefeated, c.name)
	}
	if target == nil {
		return Result{}, ErrNoTarget
	}
	if !target.Alive() {
		return Result{}, fmt.Errorf("%w: %s", ErrTargetDefeated, target.Name())
	}
	res := newResult(c, "attack")
	res.emit(EventAttack, target, 0, "%s attacks %s.", c.name, target.Name())
	raw := c.archetype.AttackDamage(c, src) + int(c.conditions.Bonus(condition.StatAttack))
	res.record(strike(src, target, raw, CategoryPhysical), CategoryPhysical)
	c.archetype.AfterAttack(c)
	return res, nil
}
