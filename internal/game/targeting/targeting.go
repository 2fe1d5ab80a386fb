// Package targeting turns an allowed-target policy into a numbered list of
// living candidates and resolves a chooser's pick against it.
package targeting

import (
	"context"
	"errors"
	"fmt"

	"github.com/cory-johannsen/dungeonescape/internal/game/combat"
)

var (
	// ErrNoCandidates is returned when the policy admits no living character.
	ErrNoCandidates = errors.New("no valid targets")
	// ErrCancelled is returned when the chooser picks 0.
	ErrCancelled = errors.New("target selection cancelled")
)

// Candidate is one selectable character.
type Candidate struct {
	Character *combat.Character
	// Friendly is true for the actor's own side.
	Friendly bool
	// Index is the 1-based number shown to the chooser.
	Index int
}

// Chooser picks a target number from a candidate list. 0 cancels.
type Chooser interface {
	ChooseTarget(ctx context.Context, actor *combat.Character, candidates []Candidate) (int, error)
}

// Candidates lists the living characters policy admits for actor: the
// friendly side first with the actor leading it, then enemies, numbered
// continuously from 1.
//
// Precondition: actor must not be nil.
// Postcondition: every returned candidate is alive; Index runs 1..len.
func Candidates(policy combat.TargetPolicy, actor *combat.Character, allies, enemies []*combat.Character) []Candidate {
	var out []Candidate
	add := func(c *combat.Character, friendly bool) {
		if c == nil || !c.Alive() {
			return
		}
		out = append(out, Candidate{Character: c, Friendly: friendly, Index: len(out) + 1})
	}

	if policy == combat.TargetSelf || policy == combat.TargetFriend || policy == combat.TargetAny {
		add(actor, true)
	}
	if policy == combat.TargetFriend || policy == combat.TargetAny {
		for _, c := range allies {
			if c != actor {
				add(c, true)
			}
		}
	}
	if policy == combat.TargetEnemy || policy == combat.TargetAny {
		for _, c := range enemies {
			add(c, false)
		}
	}
	return out
}

// Resolve asks chooser for a target until it returns a valid number.
//
// Self policies return the actor without prompting. Out-of-range picks are
// asked again.
//
// Precondition: actor and chooser must not be nil.
// Postcondition: Returns a living character admitted by policy, or
// ErrNoCandidates, ErrCancelled, or the chooser's own error.
func Resolve(ctx context.Context, policy combat.TargetPolicy, actor *combat.Character, allies, enemies []*combat.Character, chooser Chooser) (*combat.Character, error) {
	if policy == combat.TargetSelf {
		if !actor.Alive() {
			return nil, ErrNoCandidates
		}
		return actor, nil
	}
	candidates := Candidates(policy, actor, allies, enemies)
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := chooser.ChooseTarget(ctx, actor, candidates)
		if err != nil {
			return nil, fmt.Errorf("choosing target: %w", err)
		}
		if n == 0 {
			return nil, ErrCancelled
		}
		if n >= 1 && n <= len(candidates) {
			return candidates[n-1].Character, nil
		}
	}
}
