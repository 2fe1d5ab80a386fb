package battle

import (
	"github.com/cory-johannsen/dungeonescape/internal/game/combat"
	"github.com/cory-johannsen/dungeonescape/internal/game/resource"
)

// StatusView is the one-line summary of a combatant shown each round.
type StatusView struct {
	Name        string
	Hero        bool
	Health      int
	MaxHealth   int
	Resource    resource.Kind
	Current     int
	MaxResource int
	Defending   bool
}

// HasResource reports whether the combatant uses a resource.
func (v StatusView) HasResource() bool { return v.Resource != resource.KindNone }

// StatsView is the full sheet shown on request.
type StatsView struct {
	StatusView
	Class           string
	Defense         int
	MagicResistance int
	Power           int
	Dodge           float64
	Abilities       []string
	Items           []string
}

func statusOf(c *combat.Character, hero bool) StatusView {
	return StatusView{
		Name:        c.Name(),
		Hero:        hero,
		Health:      c.Health(),
		MaxHealth:   c.MaxHealth(),
		Resource:    c.ResourceKind(),
		Current:     c.Resource(),
		MaxResource: c.MaxResource(),
		Defending:   c.Defending(),
	}
}

// StatsOf builds the full sheet for c.
func StatsOf(c *combat.Character, hero bool) StatsView {
	v := StatsView{
		StatusView:      statusOf(c, hero),
		Class:           c.Archetype().Class(),
		Defense:         c.Defense(),
		MagicResistance: c.MagicResistance(),
		Power:           c.Power(),
		Dodge:           c.Dodge(),
	}
	for _, a := range c.Abilities() {
		v.Abilities = append(v.Abilities, a.Name())
	}
	for _, it := range c.Inventory().Items() {
		v.Items = append(v.Items, it.Name())
	}
	return v
}

func (b *Battle) statusViews() []StatusView {
	var out []StatusView
	for _, c := range b.heroes.Members() {
		out = append(out, statusOf(c, true))
	}
	for _, c := range b.enemies.Members() {
		out = append(out, statusOf(c, false))
	}
	return out
}

func (b *Battle) statsViews() []StatsView {
	var out []StatsView
	for _, c := range b.heroes.Members() {
		out = append(out, StatsOf(c, true))
	}
	for _, c := range b.enemies.Members() {
		out = append(out, StatsOf(c, false))
	}
	return out
}
