package content

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/dungeonescape/internal/game/combat"
	"github.com/cory-johannsen/dungeonescape/internal/game/dice"
	"github.com/cory-johannsen/dungeonescape/internal/game/resource"
)

// Character classes a Template may name.
const (
	ClassWarrior = "warrior"
	ClassMage    = "mage"
	ClassRogue   = "rogue"
	ClassMonster = "monster"
)

// Archetype defaults applied when a template leaves the field unset.
const (
	DefaultRagePerAttack  = 15
	DefaultRageFromDamage = 0.5
	DefaultBaseAttack     = 10
	DefaultMaxResource    = 100
)

// Template is a reusable character sheet loaded from YAML.
type Template struct {
	ID              string `yaml:"id"`
	Name            string `yaml:"name"`
	Description     string `yaml:"description"`
	Class           string `yaml:"class"`
	MaxHealth       int    `yaml:"max_health"`
	Defense         int    `yaml:"defense"`
	MagicResistance int    `yaml:"magic_resistance"`

	// Resource overrides the class default (rage, mana, energy, none).
	Resource    string `yaml:"resource"`
	MaxResource int    `yaml:"max_resource"`
	// StartResource defaults to 0 for rage and to MaxResource otherwise.
	StartResource  *int `yaml:"start_resource"`
	Regen          int  `yaml:"regen"`
	InventorySlots int  `yaml:"inventory_slots"`

	Strength       int      `yaml:"strength"`
	RagePerAttack  *int     `yaml:"rage_per_attack"`
	RageFromDamage *float64 `yaml:"rage_from_damage"`
	SpellPower     int      `yaml:"spell_power"`
	BaseAttack     *int     `yaml:"base_attack"`
	Agility        int      `yaml:"agility"`
	// Attack is the monster's dice expression, e.g. "1d10+4".
	Attack string `yaml:"attack"`

	Abilities []string `yaml:"abilities"`
	Items     []string `yaml:"items"`
}

// Validate checks the template's own fields. References to abilities and
// items are checked by Catalog.Check.
//
// Precondition: t must not be nil.
// Postcondition: Returns nil iff the template can produce valid Stats and
// an Archetype.
func (t *Template) Validate() error {
	var errs []error
	if t.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if t.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	switch t.Class {
	case ClassWarrior, ClassMage, ClassRogue:
	case ClassMonster:
		if _, err := dice.Parse(t.Attack); err != nil {
			errs = append(errs, fmt.Errorf("monster attack: %w", err))
		}
	default:
		errs = append(errs, fmt.Errorf("class must be one of warrior, mage, rogue, monster; got %q", t.Class))
	}
	if _, err := resource.ParseKind(t.Resource); err != nil {
		errs = append(errs, err)
	}
	if t.MaxResource < 0 {
		errs = append(errs, fmt.Errorf("max_resource must be >= 0, got %d", t.MaxResource))
	}
	if t.Strength < 0 || t.SpellPower < 0 || t.Agility < 0 {
		errs = append(errs, errors.New("strength, spell_power, and agility must be >= 0"))
	}
	if len(errs) == 0 {
		stats := t.stats()
		if err := stats.Validate(); err != nil {
			errs = append(errs, err)
		}
		if stats.StartResource < 0 || stats.StartResource > stats.MaxResource {
			errs = append(errs, fmt.Errorf("start_resource %d outside [0, %d]", stats.StartResource, stats.MaxResource))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("template %q: %w", t.ID, errors.Join(errs...))
	}
	return nil
}

// ResourceKind returns the pool kind characters built from t use.
func (t *Template) ResourceKind() resource.Kind {
	if t.Resource != "" {
		k, _ := resource.ParseKind(t.Resource)
		return k
	}
	switch t.Class {
	case ClassWarrior:
		return resource.KindRage
	case ClassMage:
		return resource.KindMana
	case ClassRogue:
		return resource.KindEnergy
	default:
		return resource.KindNone
	}
}

func (t *Template) stats() combat.Stats {
	kind := t.ResourceKind()
	s := combat.Stats{
		MaxHealth:       t.MaxHealth,
		Defense:         t.Defense,
		MagicResistance: t.MagicResistance,
		Resource:        kind,
		Regen:           t.Regen,
		InventorySlots:  t.InventorySlots,
	}
	if kind == resource.KindNone {
		return s
	}
	s.MaxResource = t.MaxResource
	if s.MaxResource == 0 {
		s.MaxResource = DefaultMaxResource
	}
	switch {
	case t.StartResource != nil:
		s.StartResource = *t.StartResource
	case kind != resource.KindRage:
		s.StartResource = s.MaxResource
	}
	return s
}

// archetype builds the class behavior.
//
// Precondition: t passed Validate.
func (t *Template) archetype() combat.Archetype {
	switch t.Class {
	case ClassWarrior:
		w := &combat.Warrior{Strength: t.Strength, RagePerAttack: DefaultRagePerAttack, RageFromDamage: DefaultRageFromDamage}
		if t.RagePerAttack != nil {
			w.RagePerAttack = *t.RagePerAttack
		}
		if t.RageFromDamage != nil {
			w.RageFromDamage = *t.RageFromDamage
		}
		return w
	case ClassMage:
		m := &combat.Mage{SpellPower: t.SpellPower, BaseAttack: DefaultBaseAttack}
		if t.BaseAttack != nil {
			m.BaseAttack = *t.BaseAttack
		}
		return m
	case ClassRogue:
		return &combat.Rogue{Agility: t.Agility}
	default:
		return &combat.Monster{Attack: dice.MustParse(t.Attack)}
	}
}
