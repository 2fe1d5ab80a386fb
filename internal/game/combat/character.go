package combat

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/cory-johannsen/dungeonescape/internal/game/condition"
	"github.com/cory-johannsen/dungeonescape/internal/game/resource"
)

// DefaultInventorySlots is used when Stats.InventorySlots is zero.
const DefaultInventorySlots = 10

// Stats are the construction-time values of a Character.
type Stats struct {
	MaxHealth       int
	Defense         int
	MagicResistance int
	Resource        resource.Kind
	MaxResource     int
	StartResource   int
	// Regen is the resource generated at every round tick.
	Regen          int
	InventorySlots int
}

// Validate checks the construction invariants of s.
//
// Postcondition: Returns nil iff MaxHealth > 0 and every other quantity is non-negative.
func (s Stats) Validate() error {
	var errs []error
	if s.MaxHealth <= 0 {
		errs = append(errs, fmt.Errorf("max health must be > 0, got %d", s.MaxHealth))
	}
	if s.Defense < 0 {
		errs = append(errs, fmt.Errorf("defense must be >= 0, got %d", s.Defense))
	}
	if s.MagicResistance < 0 {
		errs = append(errs, fmt.Errorf("magic resistance must be >= 0, got %d", s.MagicResistance))
	}
	if s.Regen < 0 {
		errs = append(errs, fmt.Errorf("regen must be >= 0, got %d", s.Regen))
	}
	if s.InventorySlots < 0 {
		errs = append(errs, fmt.Errorf("inventory slots must be >= 0, got %d", s.InventorySlots))
	}
	return errors.Join(errs...)
}

// Character is a combatant. All mutation goes through its methods, the
// Ability and Item contracts, and the damage pipeline.
//
// Invariant: 0 <= Health() <= MaxHealth(); the resource kind never changes.
type Character struct {
	id              string
	name            string
	archetype       Archetype
	health          int
	maxHealth       int
	defense         int
	magicResistance int
	regen           int
	pool            *resource.Pool
	defending       bool
	abilities       []*Ability
	inventory       *Inventory
	conditions      *condition.ActiveSet
}

// NewCharacter creates a Character at full health.
//
// Precondition: name is non-empty; arch is non-nil; stats pass Validate.
// Postcondition: Returns a living Character with a fresh instance ID, or an error.
func NewCharacter(name string, arch Archetype, stats Stats) (*Character, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("character name must not be empty")
	}
	if arch == nil {
		return nil, fmt.Errorf("character %q: archetype must not be nil", name)
	}
	if err := stats.Validate(); err != nil {
		return nil, fmt.Errorf("character %q: %w", name, err)
	}
	pool, err := resource.NewPool(stats.Resource, stats.MaxResource, stats.StartResource)
	if err != nil {
		return nil, fmt.Errorf("character %q: %w", name, err)
	}
	slots := stats.InventorySlots
	if slots == 0 {
		slots = DefaultInventorySlots
	}
	return &Character{
		id:              uuid.New().String(),
		name:            name,
		archetype:       arch,
		health:          stats.MaxHealth,
		maxHealth:       stats.MaxHealth,
		defense:         stats.Defense,
		magicResistance: stats.MagicResistance,
		regen:           stats.Regen,
		pool:            pool,
		inventory:       NewInventory(slots),
		conditions:      condition.NewActiveSet(),
	}, nil
}

func (c *Character) ID() string           { return c.id }
func (c *Character) Name() string         { return c.name }
func (c *Character) Archetype() Archetype { return c.archetype }
func (c *Character) Health() int          { return c.health }
func (c *Character) MaxHealth() int       { return c.maxHealth }

// Alive reports whether health is above zero.
func (c *Character) Alive() bool { return c.health > 0 }

// HealthFraction returns health / max health in [0, 1].
func (c *Character) HealthFraction() float64 {
	return float64(c.health) / float64(c.maxHealth)
}

// Defense returns the physical resistance including active bonuses.
func (c *Character) Defense() int {
	return max(0, c.defense+int(c.conditions.Bonus(condition.StatDefense)))
}

// MagicResistance returns the magical resistance including active bonuses.
func (c *Character) MagicResistance() int {
	return max(0, c.magicResistance+int(c.conditions.Bonus(condition.StatMagicResistance)))
}

// Dodge returns the chance in [0, 1] that an incoming strike is evaded.
func (c *Character) Dodge() float64 {
	return min(1, max(0, c.conditions.Bonus(condition.StatDodge)))
}

// Power returns the stat abilities scale from, including attack bonuses.
func (c *Character) Power() int {
	return c.archetype.PowerModifier(c) + int(c.conditions.Bonus(condition.StatAttack))
}

// ResourceKind returns the kind of the character's pool.
func (c *Character) ResourceKind() resource.Kind { return c.pool.Kind() }

// Resource returns the current resource amount.
func (c *Character) Resource() int { return c.pool.Current() }

// MaxResource returns the pool capacity.
func (c *Character) MaxResource() int { return c.pool.Max() }

// TryConsume spends amount of kind from the pool.
//
// Postcondition: See resource.Pool.TryConsume.
func (c *Character) TryConsume(kind resource.Kind, amount int) bool {
	return c.pool.TryConsume(kind, amount)
}

// GenerateResource adds amount to the pool and returns the amount gained.
func (c *Character) GenerateResource(amount int) int {
	return c.pool.Generate(amount)
}

// Defending reports whether the defend stance is active.
func (c *Character) Defending() bool { return c.defending }

// EnterDefend activates the defend stance. Idempotent.
func (c *Character) EnterDefend() { c.defending = true }

// ExitDefend clears the defend stance. Idempotent.
func (c *Character) ExitDefend() { c.defending = false }

// Heal restores up to amount health and returns the amount restored.
// A defeated character cannot be healed.
//
// Postcondition: Health() <= MaxHealth().
func (c *Character) Heal(amount int) int {
	if !c.Alive() || amount <= 0 {
		return 0
	}
	before := c.health
	c.health = min(c.maxHealth, c.health+amount)
	return c.health - before
}

// Conditions exposes the active timed bonuses.
func (c *Character) Conditions() *condition.ActiveSet { return c.conditions }

// ApplyBonus applies def with bonus for rounds rounds.
func (c *Character) ApplyBonus(def *condition.ConditionDef, bonus float64, rounds int) error {
	return c.conditions.Apply(def, bonus, rounds)
}

// Inventory returns the character's inventory.
func (c *Character) Inventory() *Inventory { return c.inventory }

// Abilities returns the learned abilities in learning order.
func (c *Character) Abilities() []*Ability {
	out := make([]*Ability, len(c.abilities))
	copy(out, c.abilities)
	return out
}

// Ability finds a learned ability by ID or case-insensitive name.
func (c *Character) Ability(key string) (*Ability, bool) {
	for _, a := range c.abilities {
		if a.ID() == key || strings.EqualFold(a.Name(), key) {
			return a, true
		}
	}
	return nil, false
}

// LearnAbility adds a to the character's abilities.
//
// Precondition: a is non-nil.
// Postcondition: Returns ErrWrongResource if a requires a kind other than
// none or the character's own, and ErrDuplicateAbility if its ID is known.
func (c *Character) LearnAbility(a *Ability) error {
	if !c.pool.Compatible(a.Kind()) {
		return fmt.Errorf("%w: %s cannot learn %s (needs %s, has %s)", ErrWrongResource, c.name, a.Name(), a.Kind(), c.pool.Kind())
	}
	if _, ok := c.Ability(a.ID()); ok {
		return fmt.Errorf("%w: %s already knows %s", ErrDuplicateAbility, c.name, a.Name())
	}
	c.abilities = append(c.abilities, a)
	return nil
}

// Cast looks up an ability by ID or name and casts it at target.
func (c *Character) Cast(key string, target *Character) (Result, error) {
	a, ok := c.Ability(key)
	if !ok {
		return Result{}, fmt.Errorf("%w: %s does not know %q", ErrUnknownAbility, c.name, key)
	}
	return a.Cast(c, target)
}

// RoundTick reports what a round tick changed.
type RoundTick struct {
	Regenerated int
	Expired     []string
}

// TickRound advances cooldowns and timed bonuses by one round and applies
// resource regeneration to a living character.
func (c *Character) TickRound() RoundTick {
	for _, a := range c.abilities {
		a.Tick()
	}
	tick := RoundTick{Expired: c.conditions.Tick()}
	if c.Alive() {
		tick.Regenerated = c.pool.Generate(c.regen)
	}
	return tick
}

// ResetCooldowns makes every ability Ready.
func (c *Character) ResetCooldowns() {
	for _, a := range c.abilities {
		a.Reset()
	}
}

// EndBattle clears battle-scoped state: cooldowns, defend, and timed bonuses.
func (c *Character) EndBattle() {
	c.ResetCooldowns()
	c.ExitDefend()
	c.conditions.Clear()
}
