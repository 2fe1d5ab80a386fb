package combat

import (
	"github.com/cory-johannsen/dungeonescape/internal/game/dice"
)

// apply resolves the ability's effect on one living target.
func (a *Ability) apply(caster, target *Character, res *Result) {
	switch a.category {
	case CategoryPhysical, CategoryMagical:
		for i := 0; i < a.hits && target.Alive(); i++ {
			res.record(strike(a.src, target, a.damage(caster, target), a.category), a.category)
		}
	case CategoryHeal:
		healed := target.Heal(a.amount(caster, target))
		res.emit(EventHeal, target, healed, "%s recovers %d health.", target.Name(), healed)
	case CategoryBuff:
		a.buff(target, res)
	default:
		panic("combat: unhandled ability category " + a.category.String())
	}
}

// amount is the unmodified magnitude of the effect.
func (a *Ability) amount(caster, target *Character) int {
	n := a.def.Base + int(float64(caster.Power())*a.def.Scaling)
	if a.def.AttackMultiplier > 0 {
		n += int(float64(caster.archetype.AttackDamage(caster, a.src)) * a.def.AttackMultiplier)
	}
	if a.def.LuaPower != "" && a.hook != nil {
		if bonus, err := a.hook.Power(a.def.LuaPower, caster, target); err == nil {
			n += bonus
		}
	}
	return max(0, n)
}

func (a *Ability) damage(caster, target *Character) int {
	n := a.amount(caster, target)
	if a.def.ExecuteThreshold > 0 && target.HealthFraction() < a.def.ExecuteThreshold {
		mult := a.def.ExecuteMultiplier
		if mult == 0 {
			mult = 1.5
		}
		n = int(float64(n) * mult)
	}
	return n
}

func (a *Ability) rollHits() int {
	switch {
	case a.def.HitsMax > 0:
		return dice.Between(a.src, a.def.HitsMin, a.def.HitsMax)
	case a.def.HitsMin > 0:
		return a.def.HitsMin
	default:
		return 1
	}
}

func (a *Ability) buff(target *Character, res *Result) {
	bonus := a.def.Bonus
	if a.def.FillTo {
		current := target.conditions.Bonus(a.cond.Stat)
		if own, ok := target.conditions.Get(a.cond.ID); ok {
			current -= own.Bonus
		}
		bonus -= current
		if bonus <= 0 {
			res.emit(EventBuff, target, 0, "%s is already at full %s.", target.Name(), a.cond.Stat)
			return
		}
	}
	if err := target.ApplyBonus(a.cond, bonus, a.def.Duration); err != nil {
		panic("combat: validated buff rejected: " + err.Error())
	}
	res.emit(EventBuff, target, a.def.Duration, "%s gains %s %s.", target.Name(), a.cond.Name, forRounds(a.def.Duration))
}
