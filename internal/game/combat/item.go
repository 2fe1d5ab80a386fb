package combat

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/cory-johannsen/dungeonescape/internal/game/condition"
	"github.com/cory-johannsen/dungeonescape/internal/game/resource"
)

// Item effect kinds for ItemDef.Effect.
const (
	EffectHeal     = "heal"
	EffectResource = "resource"
	EffectBonus    = "bonus"
)

// ItemDef is the static definition of a usable item, loaded from YAML.
type ItemDef struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Effect      string `yaml:"effect"`
	Target      string `yaml:"target"`
	Amount      int    `yaml:"amount"`
	// Resource restricts a resource item to one pool kind; empty fits any.
	Resource  string  `yaml:"resource"`
	Condition string  `yaml:"condition"`
	Bonus     float64 `yaml:"bonus"`
	Duration  int     `yaml:"duration"`
	// Consumable items without charges disappear after one use.
	Consumable bool `yaml:"consumable"`
	// Charges, when set, counts remaining uses.
	Charges *int `yaml:"charges"`
}

// Validate checks that the ItemDef satisfies its invariants.
//
// Precondition: d is non-nil.
// Postcondition: returns nil iff all fields are valid.
func (d *ItemDef) Validate() error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if d.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if _, err := ParseTargetPolicy(d.Target); err != nil {
		errs = append(errs, err)
	}
	switch d.Effect {
	case EffectHeal, EffectResource:
		if d.Amount <= 0 {
			errs = append(errs, fmt.Errorf("%s items need amount > 0, got %d", d.Effect, d.Amount))
		}
	case EffectBonus:
		if d.Condition == "" || d.Bonus <= 0 || d.Duration <= 0 {
			errs = append(errs, errors.New("bonus items need a condition, bonus > 0, and duration > 0"))
		}
	default:
		errs = append(errs, fmt.Errorf("effect must be one of heal, resource, bonus; got %q", d.Effect))
	}
	if _, err := resource.ParseKind(d.Resource); err != nil {
		errs = append(errs, err)
	}
	if d.Charges != nil && *d.Charges < 1 {
		errs = append(errs, fmt.Errorf("charges must be >= 1 when set, got %d", *d.Charges))
	}
	if len(errs) > 0 {
		return fmt.Errorf("item %q: %w", d.ID, errors.Join(errs...))
	}
	return nil
}

// Item is one carried instance of an ItemDef.
type Item struct {
	instanceID string
	def        *ItemDef
	target     TargetPolicy
	kind       resource.Kind
	charges    *int
	cond       *condition.ConditionDef
}

// NewItem validates def and creates an instance with its own charges.
//
// Precondition: def is non-nil; bonus items need cond with the matching ID.
// Postcondition: Returns an item with a fresh instance ID or an error.
func NewItem(def *ItemDef, cond *condition.ConditionDef) (*Item, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	if def.Effect == EffectBonus && (cond == nil || cond.ID != def.Condition) {
		return nil, fmt.Errorf("item %q: condition %q not supplied", def.ID, def.Condition)
	}
	target, _ := ParseTargetPolicy(def.Target)
	kind, _ := resource.ParseKind(def.Resource)
	it := &Item{instanceID: uuid.New().String(), def: def, target: target, kind: kind, cond: cond}
	if def.Charges != nil {
		n := *def.Charges
		it.charges = &n
	}
	return it, nil
}

func (it *Item) ID() string           { return it.instanceID }
func (it *Item) Name() string         { return it.def.Name }
func (it *Item) Description() string  { return it.def.Description }
func (it *Item) Def() *ItemDef        { return it.def }
func (it *Item) Target() TargetPolicy { return it.target }
func (it *Item) Consumable() bool     { return it.def.Consumable }

// Charges returns the remaining uses and whether the item counts them.
func (it *Item) Charges() (int, bool) {
	if it.charges == nil {
		return 0, false
	}
	return *it.charges, true
}

// CanTarget reports whether user may use the item on target, where allies is
// user's side of the battle.
func (it *Item) CanTarget(user, target *Character, allies []*Character) bool {
	if target == nil {
		return false
	}
	friendly := target == user || contains(allies, target)
	switch it.target {
	case TargetSelf:
		return target == user
	case TargetFriend:
		return friendly
	case TargetEnemy:
		return !friendly
	default:
		return true
	}
}

// consumeOneUse spends a use and reports whether the item is used up.
func (it *Item) consumeOneUse() bool {
	if it.charges != nil {
		*it.charges--
		return *it.charges <= 0
	}
	return it.def.Consumable
}

func (it *Item) apply(user, target *Character, res *Result) error {
	switch it.def.Effect {
	case EffectHeal:
		healed := target.Heal(it.def.Amount)
		res.emit(EventHeal, target, healed, "%s recovers %d health.", target.Name(), healed)
	case EffectResource:
		if !target.pool.Compatible(it.kind) || target.ResourceKind() == resource.KindNone {
			return fmt.Errorf("%w: %s restores %s, %s uses %s", ErrWrongResource, it.def.Name, it.kind, target.Name(), target.ResourceKind())
		}
		gained := target.GenerateResource(it.def.Amount)
		res.emit(EventResource, target, gained, "%s recovers %d %s.", target.Name(), gained, target.ResourceKind())
	case EffectBonus:
		if err := target.ApplyBonus(it.cond, it.def.Bonus, it.def.Duration); err != nil {
			return err
		}
		res.emit(EventBuff, target, it.def.Duration, "%s gains %s %s.", target.Name(), it.cond.Name, forRounds(it.def.Duration))
	}
	return nil
}

// UseItem applies the item identified by instance ID or case-insensitive name
// to target. Self-target items ignore target. Relative policies (friend,
// enemy) are the caller's to enforce with Item.CanTarget.
//
// Postcondition: On error nothing changed and the item is kept. On success the
// effect applied, one use was spent, and a used-up item was removed.
func (c *Character) UseItem(identifier string, target *Character) (Result, error) {
	if !c.Alive() {
		return Result{}, fmt.Errorf("%w: %s cannot use items", ErrCasterDefeated, c.name)
	}
	it, ok := c.inventory.Find(identifier)
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrItemNotFound, identifier)
	}
	if it.target == TargetSelf {
		if target != nil && target != c {
			return Result{}, fmt.Errorf("%w: %s can only be used on yourself", ErrInvalidTarget, it.Name())
		}
		target = c
	}
	if target == nil {
		return Result{}, fmt.Errorf("%w for %s", ErrNoTarget, it.Name())
	}
	if !target.Alive() {
		return Result{}, fmt.Errorf("%w: %s", ErrTargetDefeated, target.Name())
	}
	res := newResult(c, it.Name())
	res.emit(EventItem, target, 0, "%s uses %s on %s.", c.name, it.Name(), target.Name())
	if err := it.apply(c, target, &res); err != nil {
		return Result{}, err
	}
	if it.consumeOneUse() {
		c.inventory.Remove(it.ID())
	}
	return res, nil
}

// Inventory is an ordered, bounded list of items.
type Inventory struct {
	slots int
	items []*Item
}

// NewInventory creates an empty inventory holding at most slots items.
func NewInventory(slots int) *Inventory {
	return &Inventory{slots: slots}
}

// Capacity returns the number of slots.
func (inv *Inventory) Capacity() int { return inv.slots }

// Len returns the number of carried items.
func (inv *Inventory) Len() int { return len(inv.items) }

// Add appends it.
//
// Postcondition: Returns ErrInventoryFull without change when no slot is free.
func (inv *Inventory) Add(it *Item) error {
	if len(inv.items) >= inv.slots {
		return fmt.Errorf("%w: cannot carry %s", ErrInventoryFull, it.Name())
	}
	inv.items = append(inv.items, it)
	return nil
}

// Remove drops the item with the instance ID and reports whether it was present.
func (inv *Inventory) Remove(id string) bool {
	for i, it := range inv.items {
		if it.ID() == id {
			inv.items = append(inv.items[:i], inv.items[i+1:]...)
			return true
		}
	}
	return false
}

// Items returns the carried items in insertion order.
func (inv *Inventory) Items() []*Item {
	out := make([]*Item, len(inv.items))
	copy(out, inv.items)
	return out
}

// Find returns the item whose instance ID matches, else the first whose name
// matches case-insensitively.
func (inv *Inventory) Find(identifier string) (*Item, bool) {
	for _, it := range inv.items {
		if it.ID() == identifier {
			return it, true
		}
	}
	for _, it := range inv.items {
		if strings.EqualFold(it.Name(), strings.TrimSpace(identifier)) {
			return it, true
		}
	}
	return nil, false
}

func contains(list []*Character, c *Character) bool {
	for _, x := range list {
		if x == c {
			return true
		}
	}
	return false
}
