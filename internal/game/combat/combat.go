// Package combat implements the character model and the rules that mutate it:
// resource-gated abilities, the damage pipeline, defend stances, and items.
//
// Every operation returns a Result describing what happened; nothing in this
// package performs I/O.
package combat

import (
	"errors"
	"fmt"
	"strings"
)

// Category classifies what an ability does to its target.
type Category int

const (
	CategoryPhysical Category = iota
	CategoryMagical
	CategoryHeal
	CategoryBuff
)

// String returns the content-file name of the category.
func (c Category) String() string {
	switch c {
	case CategoryPhysical:
		return "physical"
	case CategoryMagical:
		return "magical"
	case CategoryHeal:
		return "heal"
	case CategoryBuff:
		return "buff"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// IsDamage reports whether the category deals damage through the pipeline.
func (c Category) IsDamage() bool {
	return c == CategoryPhysical || c == CategoryMagical
}

// ParseCategory maps a content-file name to a Category.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "physical":
		return CategoryPhysical, nil
	case "magical":
		return CategoryMagical, nil
	case "heal":
		return CategoryHeal, nil
	case "buff":
		return CategoryBuff, nil
	default:
		return 0, fmt.Errorf("unknown category %q", s)
	}
}

// TargetPolicy restricts who an ability or item may be used on.
type TargetPolicy int

const (
	TargetSelf TargetPolicy = iota
	TargetEnemy
	TargetFriend
	TargetAny
)

// String returns the content-file name of the policy.
func (p TargetPolicy) String() string {
	switch p {
	case TargetSelf:
		return "self"
	case TargetEnemy:
		return "enemy"
	case TargetFriend:
		return "friend"
	case TargetAny:
		return "any"
	default:
		return fmt.Sprintf("target(%d)", int(p))
	}
}

// ParseTargetPolicy maps a content-file name to a TargetPolicy.
func ParseTargetPolicy(s string) (TargetPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "self":
		return TargetSelf, nil
	case "enemy":
		return TargetEnemy, nil
	case "friend":
		return TargetFriend, nil
	case "any":
		return TargetAny, nil
	default:
		return 0, fmt.Errorf("unknown target policy %q", s)
	}
}

// Precondition failures. Operations returning one of these (possibly wrapped
// with detail) leave every character unchanged.
var (
	ErrCasterDefeated       = errors.New("caster is defeated")
	ErrNoTarget             = errors.New("no valid target")
	ErrTargetDefeated       = errors.New("target is already defeated")
	ErrOnCooldown           = errors.New("ability is on cooldown")
	ErrWrongResource        = errors.New("wrong resource type")
	ErrInsufficientResource = errors.New("not enough resource")
	ErrUnknownAbility       = errors.New("unknown ability")
	ErrDuplicateAbility     = errors.New("ability already known")
	ErrItemNotFound         = errors.New("item not found")
	ErrInvalidTarget        = errors.New("invalid target for this action")
	ErrInventoryFull        = errors.New("inventory is full")
)
