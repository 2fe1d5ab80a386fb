package ai

import (
	"github.com/cory-johannsen/dungeonescape/internal/game/combat"
	"github.com/cory-johannsen/dungeonescape/internal/game/dice"
)

// World is the snapshot an enemy decides against.
//
// Invariant: Actor must not be nil.
type World struct {
	Actor     *combat.Character
	Opponents []*combat.Character
}

// LivingOpponents returns the opponents still standing, in roster order.
//
// Postcondition: returned slice contains no defeated or nil characters.
func (w World) LivingOpponents() []*combat.Character {
	var out []*combat.Character
	for _, c := range w.Opponents {
		if c != nil && c.Alive() {
			out = append(out, c)
		}
	}
	return out
}

// RandomOpponent returns a uniformly chosen living opponent, or nil.
func (w World) RandomOpponent(src dice.Source) *combat.Character {
	living := w.LivingOpponents()
	if len(living) == 0 {
		return nil
	}
	return living[src.Intn(len(living))]
}
