package combat

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/dungeonescape/internal/game/condition"
	"github.com/cory-johannsen/dungeonescape/internal/game/dice"
	"github.com/cory-johannsen/dungeonescape/internal/game/resource"
)

// AbilityDef is the static definition of an ability, loaded from YAML.
type AbilityDef struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Resource    string `yaml:"resource"` // none | mana | rage | energy
	Cost        int    `yaml:"cost"`
	Category    string `yaml:"category"` // physical | magical | heal | buff
	// Target defaults to enemy for damage, friend for heal, self for buff.
	Target   string `yaml:"target"`
	Cooldown int    `yaml:"cooldown"`
	Area     bool   `yaml:"area"`

	// Amount = Base + Power*Scaling + BasicAttack*AttackMultiplier.
	Base             int     `yaml:"base"`
	Scaling          float64 `yaml:"scaling"`
	AttackMultiplier float64 `yaml:"attack_multiplier"`
	// HitsMin..HitsMax strikes per cast, drawn once per instance; both zero
	// means one.
	HitsMin int `yaml:"hits_min"`
	HitsMax int `yaml:"hits_max"`
	// Below ExecuteThreshold target health, damage is scaled by ExecuteMultiplier.
	ExecuteThreshold  float64 `yaml:"execute_threshold"`
	ExecuteMultiplier float64 `yaml:"execute_multiplier"`

	// Buff fields.
	Condition string  `yaml:"condition"`
	Bonus     float64 `yaml:"bonus"`
	Duration  int     `yaml:"duration"`
	// FillTo raises the stat to Bonus instead of adding Bonus to it.
	FillTo bool `yaml:"fill_to"`

	// LuaPower names a scripting hook whose result is added to the amount.
	LuaPower string `yaml:"lua_power"`
}

// Validate checks the definition's invariants.
//
// Postcondition: Returns nil iff every enumerated field parses and all
// quantities are in range.
func (d *AbilityDef) Validate() error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if d.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if _, err := resource.ParseKind(d.Resource); err != nil {
		errs = append(errs, err)
	}
	cat, err := ParseCategory(d.Category)
	if err != nil {
		errs = append(errs, err)
	}
	target, terr := d.targetPolicy(cat)
	if terr != nil {
		errs = append(errs, terr)
	}
	if d.Cost < 0 {
		errs = append(errs, fmt.Errorf("cost must be >= 0, got %d", d.Cost))
	}
	if d.Cooldown < 0 {
		errs = append(errs, fmt.Errorf("cooldown must be >= 0, got %d", d.Cooldown))
	}
	if d.Base < 0 || d.Scaling < 0 || d.AttackMultiplier < 0 {
		errs = append(errs, errors.New("base, scaling, and attack_multiplier must be >= 0"))
	}
	if d.HitsMin < 0 || (d.HitsMax != 0 && (d.HitsMin < 1 || d.HitsMax < d.HitsMin)) {
		errs = append(errs, fmt.Errorf("hits range [%d, %d] is invalid", d.HitsMin, d.HitsMax))
	}
	if d.ExecuteThreshold < 0 || d.ExecuteThreshold > 1 || d.ExecuteMultiplier < 0 {
		errs = append(errs, errors.New("execute_threshold must be within [0, 1] and execute_multiplier >= 0"))
	}
	if err == nil && cat == CategoryBuff {
		if d.Condition == "" {
			errs = append(errs, errors.New("buff abilities need a condition"))
		}
		if d.Bonus <= 0 {
			errs = append(errs, fmt.Errorf("buff bonus must be > 0, got %v", d.Bonus))
		}
		if d.Duration == 0 || d.Duration < -1 {
			errs = append(errs, fmt.Errorf("buff duration must be positive or -1, got %d", d.Duration))
		}
	}
	if terr == nil && d.Area && target == TargetSelf {
		errs = append(errs, errors.New("self-target abilities cannot be area abilities"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("ability %q: %w", d.ID, errors.Join(errs...))
	}
	return nil
}

func (d *AbilityDef) targetPolicy(cat Category) (TargetPolicy, error) {
	if d.Target != "" {
		return ParseTargetPolicy(d.Target)
	}
	switch cat {
	case CategoryHeal:
		return TargetFriend, nil
	case CategoryBuff:
		return TargetSelf, nil
	default:
		return TargetEnemy, nil
	}
}

// PowerHook evaluates a named script to adjust an ability's amount.
type PowerHook interface {
	Power(hook string, caster, target *Character) (int, error)
}

// Ability is one character's instance of an AbilityDef with its own cooldown.
//
// Ready while Cooldown() == 0; a successful cast moves it OnCooldown for
// the definition's cooldown length.
type Ability struct {
	def      *AbilityDef
	kind     resource.Kind
	category Category
	target   TargetPolicy
	cooldown int
	hits     int
	src      dice.Source
	hook     PowerHook
	cond     *condition.ConditionDef
}

// AbilityOption configures an Ability at construction.
type AbilityOption func(*Ability)

// WithSource sets the randomness used for hit counts, dodge rolls, and
// basic-attack multipliers. The default is a crypto source.
func WithSource(src dice.Source) AbilityOption {
	return func(a *Ability) { a.src = src }
}

// WithPowerHook sets the evaluator for the definition's LuaPower hook.
func WithPowerHook(h PowerHook) AbilityOption {
	return func(a *Ability) { a.hook = h }
}

// WithCondition supplies the condition a buff ability applies.
func WithCondition(def *condition.ConditionDef) AbilityOption {
	return func(a *Ability) { a.cond = def }
}

// NewAbility validates def and returns a Ready ability. A HitsMin..HitsMax
// range is drawn once here and fixes the instance's hit count.
//
// Precondition: def is non-nil. Buff definitions need WithCondition with the
// matching condition ID.
// Postcondition: Returns a Ready ability or a non-nil error.
func NewAbility(def *AbilityDef, opts ...AbilityOption) (*Ability, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	kind, _ := resource.ParseKind(def.Resource)
	cat, _ := ParseCategory(def.Category)
	target, _ := def.targetPolicy(cat)
	a := &Ability{def: def, kind: kind, category: cat, target: target}
	for _, opt := range opts {
		opt(a)
	}
	if a.src == nil {
		a.src = dice.NewCryptoSource()
	}
	a.hits = a.rollHits()
	if cat == CategoryBuff && (a.cond == nil || a.cond.ID != def.Condition) {
		return nil, fmt.Errorf("ability %q: condition %q not supplied", def.ID, def.Condition)
	}
	return a, nil
}

func (a *Ability) ID() string           { return a.def.ID }
func (a *Ability) Name() string         { return a.def.Name }
func (a *Ability) Description() string  { return a.def.Description }
func (a *Ability) Def() *AbilityDef     { return a.def }
func (a *Ability) Kind() resource.Kind  { return a.kind }
func (a *Ability) Cost() int            { return a.def.Cost }
func (a *Ability) Category() Category   { return a.category }
func (a *Ability) Target() TargetPolicy { return a.target }
func (a *Ability) Area() bool           { return a.def.Area }
func (a *Ability) Cooldown() int        { return a.cooldown }
func (a *Ability) CooldownLength() int  { return a.def.Cooldown }
func (a *Ability) Ready() bool          { return a.cooldown == 0 }
func (a *Ability) Hits() int            { return a.hits }

// Tick advances the cooldown by one round.
//
// Postcondition: Cooldown() decreased by 1 if it was positive.
func (a *Ability) Tick() {
	if a.cooldown > 0 {
		a.cooldown--
	}
}

// Reset makes the ability Ready immediately.
func (a *Ability) Reset() { a.cooldown = 0 }

// CanCast reports whether caster could cast a now, ignoring the target.
//
// Postcondition: Returns nil, or a wrapped ErrCasterDefeated, ErrOnCooldown,
// ErrWrongResource, or ErrInsufficientResource.
func (a *Ability) CanCast(caster *Character) error {
	switch {
	case caster == nil || !caster.Alive():
		return fmt.Errorf("%w: cannot cast %s", ErrCasterDefeated, a.def.Name)
	case !a.Ready():
		return fmt.Errorf("%w: %s has %d round(s) remaining", ErrOnCooldown, a.def.Name, a.cooldown)
	case !caster.pool.Compatible(a.kind):
		return fmt.Errorf("%w: %s needs %s, %s uses %s", ErrWrongResource, a.def.Name, a.kind, caster.Name(), caster.ResourceKind())
	case !caster.pool.CanAfford(a.kind, a.def.Cost):
		return fmt.Errorf("%w: %s needs %d %s, %s has %d", ErrInsufficientResource, a.def.Name, a.def.Cost, a.kind, caster.Name(), caster.Resource())
	}
	return nil
}

// Cast uses the ability on a single target. Self-target abilities always
// affect the caster and ignore target.
//
// Postcondition: On error, no character changed. On success the cost was
// paid once, the cooldown set, and the effect applied.
func (a *Ability) Cast(caster, target *Character) (Result, error) {
	if a.target == TargetSelf {
		target = caster
	}
	if err := a.CanCast(caster); err != nil {
		return Result{}, err
	}
	if target == nil {
		return Result{}, fmt.Errorf("%w for %s", ErrNoTarget, a.def.Name)
	}
	if !target.Alive() {
		return Result{}, fmt.Errorf("%w: %s", ErrTargetDefeated, target.Name())
	}
	a.pay(caster)
	res := newResult(caster, a.def.Name)
	if target == caster {
		res.emit(EventAbility, target, 0, "%s casts %s.", caster.Name(), a.def.Name)
	} else {
		res.emit(EventAbility, target, 0, "%s casts %s on %s.", caster.Name(), a.def.Name, target.Name())
	}
	a.apply(caster, target, &res)
	return res, nil
}

// CastArea uses the ability on every target, paying the cost once. Targets
// that are defeated when their turn to be affected comes are skipped.
//
// Postcondition: On error (including no living target), no character
// changed. On success each living target was affected independently.
func (a *Ability) CastArea(caster *Character, targets []*Character) (Result, error) {
	if a.target == TargetSelf {
		return a.Cast(caster, caster)
	}
	if err := a.CanCast(caster); err != nil {
		return Result{}, err
	}
	living := 0
	for _, t := range targets {
		if t != nil && t.Alive() {
			living++
		}
	}
	if living == 0 {
		return Result{}, fmt.Errorf("%w for %s", ErrNoTarget, a.def.Name)
	}
	a.pay(caster)
	res := newResult(caster, a.def.Name)
	res.emit(EventAbility, nil, living, "%s unleashes %s!", caster.Name(), a.def.Name)
	for _, t := range targets {
		if t == nil || !t.Alive() {
			continue
		}
		a.apply(caster, t, &res)
	}
	return res, nil
}

func (a *Ability) pay(caster *Character) {
	if !caster.pool.TryConsume(a.kind, a.def.Cost) {
		panic(fmt.Sprintf("combat: %s could not pay for %s after CanCast passed", caster.Name(), a.def.Name))
	}
	a.cooldown = a.def.Cooldown
}
