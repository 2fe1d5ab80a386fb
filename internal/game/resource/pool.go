// Package resource implements the single-kind resource pools that gate
// ability casting: mana, rage, and energy.
package resource

import (
	"fmt"
	"strings"
)

// Kind identifies which resource a pool holds or an ability requires.
type Kind int

const (
	KindNone Kind = iota
	KindMana
	KindRage
	KindEnergy
)

// String returns the lower-case kind name used in content files.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindMana:
		return "mana"
	case KindRage:
		return "rage"
	case KindEnergy:
		return "energy"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	return k >= KindNone && k <= KindEnergy
}

// ParseKind maps a content-file name to a Kind. The empty string is KindNone.
//
// Postcondition: Returns a valid Kind or a non-nil error.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return KindNone, nil
	case "mana":
		return KindMana, nil
	case "rage":
		return KindRage, nil
	case "energy":
		return KindEnergy, nil
	default:
		return KindNone, fmt.Errorf("unknown resource kind %q", s)
	}
}

func mustValid(k Kind) {
	if !k.Valid() {
		panic(fmt.Sprintf("resource: invalid kind %d", int(k)))
	}
}

// Pool holds one kind of resource bounded by [0, max].
//
// Invariant: 0 <= Current() <= Max(); Kind() never changes after NewPool.
type Pool struct {
	kind    Kind
	current int
	max     int
}

// NewPool creates a pool of kind holding start out of max.
//
// Precondition: kind is valid (panics otherwise); max >= 0; 0 <= start <= max.
// A KindNone pool always has max 0.
// Postcondition: Returns a pool or a non-nil error describing the bad bound.
func NewPool(kind Kind, max, start int) (*Pool, error) {
	mustValid(kind)
	if kind == KindNone {
		return &Pool{kind: KindNone}, nil
	}
	if max < 0 {
		return nil, fmt.Errorf("resource: %s max must be >= 0, got %d", kind, max)
	}
	if start < 0 || start > max {
		return nil, fmt.Errorf("resource: %s start %d outside [0, %d]", kind, start, max)
	}
	return &Pool{kind: kind, current: start, max: max}, nil
}

// Kind returns the pool's resource kind.
func (p *Pool) Kind() Kind { return p.kind }

// Current returns the amount available.
func (p *Pool) Current() int { return p.current }

// Max returns the pool's capacity.
func (p *Pool) Max() int { return p.max }

// Compatible reports whether a cost of kind can be paid from this pool.
// A KindNone requirement is compatible with every pool.
//
// Precondition: kind is valid (panics otherwise).
func (p *Pool) Compatible(kind Kind) bool {
	mustValid(kind)
	return kind == KindNone || kind == p.kind
}

// CanAfford reports whether TryConsume(kind, amount) would succeed.
func (p *Pool) CanAfford(kind Kind, amount int) bool {
	return amount >= 0 && p.Compatible(kind) && p.current >= amount
}

// TryConsume deducts amount when kind is compatible and enough is available.
//
// Precondition: kind is valid (panics otherwise).
// Postcondition: On true, Current() decreased by exactly amount; on false,
// the pool is unchanged.
func (p *Pool) TryConsume(kind Kind, amount int) bool {
	if !p.CanAfford(kind, amount) {
		return false
	}
	p.current -= amount
	return true
}

// Generate adds amount, clamped to Max(), and returns the amount actually gained.
//
// Postcondition: Current() <= Max(); non-positive amounts are a no-op.
func (p *Pool) Generate(amount int) int {
	if amount <= 0 {
		return 0
	}
	before := p.current
	p.current += amount
	if p.current > p.max {
		p.current = p.max
	}
	return p.current - before
}
