package battle

import (
	"context"
	"errors"
	"fmt"

	"github.com/cory-johannsen/dungeonescape/internal/game/ai"
	"github.com/cory-johannsen/dungeonescape/internal/game/combat"
	"github.com/cory-johannsen/dungeonescape/internal/game/targeting"
)

// Action is a menu entry offered to a hero.
type Action int

const (
	ActionAttack Action = iota
	ActionAbility
	ActionDefend
	ActionItem
	ActionStatus
	ActionSkip
	ActionQuit
)

// String returns the menu label.
func (a Action) String() string {
	switch a {
	case ActionAttack:
		return "Attack"
	case ActionAbility:
		return "Abilities/Spells"
	case ActionDefend:
		return "Defend"
	case ActionItem:
		return "Use Item"
	case ActionStatus:
		return "Status"
	case ActionSkip:
		return "Skip"
	case ActionQuit:
		return "Quit"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

var (
	soloMenu  = []Action{ActionAttack, ActionAbility, ActionDefend, ActionStatus, ActionSkip, ActionItem, ActionQuit}
	partyMenu = []Action{ActionAttack, ActionAbility, ActionDefend, ActionItem, ActionStatus, ActionSkip}
)

// Menu returns the actions offered to heroes in this battle.
func (b *Battle) Menu() []Action {
	if b.mode == ModeSolo {
		return append([]Action(nil), soloMenu...)
	}
	return append([]Action(nil), partyMenu...)
}

var (
	errNoAbilities = errors.New("no abilities known")
	errNoItems     = errors.New("inventory is empty")
	errCancelled   = errors.New("cancelled")
)

// backToMenu reports whether err only returns the hero to the action menu.
func backToMenu(err error) bool {
	return errors.Is(err, targeting.ErrCancelled) ||
		errors.Is(err, targeting.ErrNoCandidates) ||
		errors.Is(err, errNoAbilities) ||
		errors.Is(err, errNoItems) ||
		errors.Is(err, errCancelled)
}

// heroTurn asks for actions until one resolves. Status views and failed
// selections do not end the turn.
func (b *Battle) heroTurn(ctx context.Context, hero *combat.Character) (quit bool, err error) {
	menu := b.Menu()
	for {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		action, err := b.input.ChooseAction(ctx, hero, menu)
		if err != nil {
			return false, fmt.Errorf("choosing action: %w", err)
		}

		var res combat.Result
		switch action {
		case ActionAttack:
			res, err = b.heroAttack(ctx, hero)
		case ActionAbility:
			res, err = b.heroAbility(ctx, hero)
		case ActionItem:
			res, err = b.heroItem(ctx, hero)
		case ActionDefend:
			hero.EnterDefend()
			b.sink.Event(combat.Event{Kind: combat.EventDefend, Actor: hero.Name(), Message: fmt.Sprintf("%s takes a defensive stance.", hero.Name())})
			return false, nil
		case ActionSkip:
			b.sink.Event(combat.Event{Kind: combat.EventSkip, Actor: hero.Name(), Message: fmt.Sprintf("%s skips.", hero.Name())})
			return false, nil
		case ActionStatus:
			b.sink.Stats(b.statsViews())
			continue
		case ActionQuit:
			if b.mode == ModeSolo {
				return true, nil
			}
			b.failed(hero, errors.New("there is no fleeing a party battle"))
			continue
		default:
			b.failed(hero, fmt.Errorf("invalid choice %v", action))
			continue
		}

		if err != nil {
			if isCombatFailure(err) || backToMenu(err) {
				b.failed(hero, err)
				continue
			}
			return false, err
		}
		b.resolved(res)
		return false, nil
	}
}

func isCombatFailure(err error) bool {
	for _, sentinel := range []error{
		combat.ErrCasterDefeated, combat.ErrNoTarget, combat.ErrTargetDefeated,
		combat.ErrOnCooldown, combat.ErrWrongResource, combat.ErrInsufficientResource,
		combat.ErrUnknownAbility, combat.ErrItemNotFound, combat.ErrInvalidTarget,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

func (b *Battle) heroAttack(ctx context.Context, hero *combat.Character) (combat.Result, error) {
	target, err := targeting.Resolve(ctx, combat.TargetEnemy, hero, b.heroes.Members(), b.enemies.Members(), b.input)
	if err != nil {
		return combat.Result{}, err
	}
	return hero.Attack(target, b.src)
}

func (b *Battle) heroAbility(ctx context.Context, hero *combat.Character) (combat.Result, error) {
	abilities := hero.Abilities()
	if len(abilities) == 0 {
		return combat.Result{}, errNoAbilities
	}
	a, err := b.input.ChooseAbility(ctx, hero, abilities)
	if err != nil {
		return combat.Result{}, fmt.Errorf("choosing ability: %w", err)
	}
	if a == nil {
		return combat.Result{}, errCancelled
	}
	if err := a.CanCast(hero); err != nil {
		return combat.Result{}, err
	}
	if a.Area() {
		return a.CastArea(hero, b.areaTargets(a.Target()))
	}
	target, err := targeting.Resolve(ctx, a.Target(), hero, b.heroes.Members(), b.enemies.Members(), b.input)
	if err != nil {
		return combat.Result{}, err
	}
	return a.Cast(hero, target)
}

// areaTargets returns the side an area ability sweeps for a hero.
func (b *Battle) areaTargets(policy combat.TargetPolicy) []*combat.Character {
	if policy == combat.TargetFriend {
		return b.heroes.Living()
	}
	return b.enemies.Living()
}

func (b *Battle) heroItem(ctx context.Context, hero *combat.Character) (combat.Result, error) {
	items := hero.Inventory().Items()
	if len(items) == 0 {
		return combat.Result{}, errNoItems
	}
	it, err := b.input.ChooseItem(ctx, hero, items)
	if err != nil {
		return combat.Result{}, fmt.Errorf("choosing item: %w", err)
	}
	if it == nil {
		return combat.Result{}, errCancelled
	}
	target, err := targeting.Resolve(ctx, it.Target(), hero, b.heroes.Members(), b.enemies.Members(), b.input)
	if err != nil {
		return combat.Result{}, err
	}
	return hero.UseItem(it.ID(), target)
}

// enemyTurn plays the policy's decision for enemy against the heroes.
func (b *Battle) enemyTurn(enemy *combat.Character) {
	d := b.policy.Decide(ai.World{Actor: enemy, Opponents: b.heroes.Members()})

	var (
		res combat.Result
		err error
	)
	switch d.Action {
	case ai.ActionDefend:
		enemy.EnterDefend()
		b.sink.Event(combat.Event{Kind: combat.EventDefend, Actor: enemy.Name(), Message: fmt.Sprintf("%s takes a defensive stance.", enemy.Name())})
		return
	case ai.ActionSkip:
		b.sink.Event(combat.Event{Kind: combat.EventSkip, Actor: enemy.Name(), Message: fmt.Sprintf("%s has no one to fight.", enemy.Name())})
		return
	case ai.ActionAbility:
		if d.Ability.Area() {
			res, err = d.Ability.CastArea(enemy, d.Targets)
		} else {
			res, err = d.Ability.Cast(enemy, d.Targets[0])
		}
	default:
		res, err = enemy.Attack(d.Targets[0], b.src)
	}
	if err != nil {
		b.failed(enemy, err)
		return
	}
	b.resolved(res)
}
