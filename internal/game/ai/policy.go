// Package ai decides what computer-controlled combatants do on their turn.
package ai

import (
	"sort"

	"github.com/cory-johannsen/dungeonescape/internal/game/combat"
	"github.com/cory-johannsen/dungeonescape/internal/game/dice"
)

// Action is the kind of move a Decision makes.
type Action int

const (
	ActionAttack Action = iota
	ActionAbility
	ActionDefend
	ActionSkip
)

// String returns a lower-case action label.
func (a Action) String() string {
	switch a {
	case ActionAttack:
		return "attack"
	case ActionAbility:
		return "ability"
	case ActionDefend:
		return "defend"
	case ActionSkip:
		return "skip"
	default:
		return "unknown"
	}
}

// Config holds the policy's probabilities.
type Config struct {
	DefendChance  float64
	AbilityChance float64
	// PreferArea narrows the ability pool to area abilities when more than
	// one opponent lives.
	PreferArea bool
}

// DefaultConfig returns a 20% defend chance, a 70% ability chance, and area
// preference on.
func DefaultConfig() Config {
	return Config{DefendChance: 0.20, AbilityChance: 0.70, PreferArea: true}
}

// Decision is one planned move. Targets is empty for defend and skip.
type Decision struct {
	Action  Action
	Ability *combat.Ability
	Targets []*combat.Character
}

// Policy is the stochastic enemy decision procedure.
//
// Invariant: src must not be nil.
type Policy struct {
	cfg Config
	src dice.Source
}

// NewPolicy constructs a Policy drawing from src.
//
// Precondition: src must not be nil.
func NewPolicy(cfg Config, src dice.Source) *Policy {
	if src == nil {
		panic("ai.NewPolicy: src must not be nil")
	}
	return &Policy{cfg: cfg, src: src}
}

// Config returns the policy's configuration.
func (p *Policy) Config() Config { return p.cfg }

// Castable returns the abilities actor could use right now, most expensive
// first. Only damaging abilities and self-target abilities qualify, so a heal
// or buff is never aimed at an opponent.
//
// Postcondition: every returned ability has CanCast(actor) == nil and is
// either a damage category or TargetSelf.
func Castable(actor *combat.Character) []*combat.Ability {
	var out []*combat.Ability
	for _, a := range actor.Abilities() {
		if !a.Category().IsDamage() && a.Target() != combat.TargetSelf {
			continue
		}
		if a.CanCast(actor) == nil {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Cost() > out[j].Cost() })
	return out
}

// Decide chooses the actor's move.
//
// With DefendChance the actor defends. Otherwise, if any ability is castable,
// with AbilityChance one is picked uniformly from the castable pool; area
// abilities target every living opponent, self abilities the actor, and the
// rest one random living opponent. Failing both, the actor attacks a random
// living opponent.
//
// Precondition: w.Actor must not be nil.
// Postcondition: ActionSkip iff no opponent lives; ActionAttack and
// ActionAbility decisions carry at least one living target.
func (p *Policy) Decide(w World) Decision {
	living := w.LivingOpponents()
	if len(living) == 0 {
		return Decision{Action: ActionSkip}
	}
	if dice.Chance(p.src, p.cfg.DefendChance) {
		return Decision{Action: ActionDefend}
	}

	pool := Castable(w.Actor)
	if p.cfg.PreferArea && len(living) > 1 {
		if area := areaOnly(pool); len(area) > 0 {
			pool = area
		}
	}
	if len(pool) > 0 && dice.Chance(p.src, p.cfg.AbilityChance) {
		chosen := pool[p.src.Intn(len(pool))]
		d := Decision{Action: ActionAbility, Ability: chosen}
		switch {
		case chosen.Target() == combat.TargetSelf:
			d.Targets = []*combat.Character{w.Actor}
		case chosen.Area():
			d.Targets = living
		default:
			d.Targets = []*combat.Character{living[p.src.Intn(len(living))]}
		}
		return d
	}

	return Decision{Action: ActionAttack, Targets: []*combat.Character{w.RandomOpponent(p.src)}}
}

func areaOnly(pool []*combat.Ability) []*combat.Ability {
	var out []*combat.Ability
	for _, a := range pool {
		if a.Area() {
			out = append(out, a)
		}
	}
	return out
}
