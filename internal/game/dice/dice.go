// Package dice provides the injectable randomness used by the combat engine:
// sources, chance checks, and attack dice expressions.
package dice

import "fmt"

// Source is the randomness provider for every stochastic decision in a battle.
//
// Implementations returned by this package are safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// chanceResolution is the granularity of Chance rolls.
const chanceResolution = 1000

// Chance reports whether an event with probability p occurs, drawing one value from src.
//
// Precondition: src must be non-nil.
// Postcondition: p <= 0 always returns false and p >= 1 always returns true;
// neither case draws from src.
func Chance(src Source, p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return float64(src.Intn(chanceResolution)) < p*chanceResolution
}

// Between returns a uniformly distributed int in [lo, hi].
//
// Precondition: lo <= hi; src must be non-nil.
// Postcondition: lo == hi returns lo without drawing from src.
func Between(src Source, lo, hi int) int {
	if lo == hi {
		return lo
	}
	if hi < lo {
		panic(fmt.Sprintf("dice: Between called with hi %d < lo %d", hi, lo))
	}
	return lo + src.Intn(hi-lo+1)
}

// RollResult records a single evaluation of an Expression.
//
// Postcondition: Total() == sum(Dice) + Modifier.
type RollResult struct {
	Expression string
	Dice       []int
	Modifier   int
}

// Total returns the sum of all die results plus the modifier.
func (r RollResult) Total() int {
	total := r.Modifier
	for _, d := range r.Dice {
		total += d
	}
	return total
}

// String renders the roll as "1d10+4 [7] = 11".
func (r RollResult) String() string {
	return fmt.Sprintf("%s %v = %d", r.Expression, r.Dice, r.Total())
}
