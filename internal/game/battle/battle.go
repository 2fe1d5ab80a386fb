// Package battle runs solo duels and party battles to a terminal outcome.
package battle

import (
	"context"
	"errors"
	"fmt"

	"github.com/looplab/fsm"
	"go.uber.org/zap"

	"github.com/cory-johannsen/dungeonescape/internal/game/ai"
	"github.com/cory-johannsen/dungeonescape/internal/game/combat"
	"github.com/cory-johannsen/dungeonescape/internal/game/dice"
	"github.com/cory-johannsen/dungeonescape/internal/game/targeting"
)

// Outcome is a terminal battle state.
type Outcome string

const (
	OutcomeVictory   Outcome = "victory"
	OutcomeDefeat    Outcome = "defeat"
	OutcomeQuit      Outcome = "quit"
	OutcomeStalemate Outcome = "stalemate"
)

const stateActive = "active"

// outcomeEvents maps each outcome to the machine event that reaches it.
var outcomeEvents = map[Outcome]string{
	OutcomeVictory:   "win",
	OutcomeDefeat:    "lose",
	OutcomeQuit:      "quit",
	OutcomeStalemate: "stall",
}

// ErrFinished is returned by Run once the battle has reached an outcome.
var ErrFinished = errors.New("battle already finished")

// Mode selects the turn rules.
type Mode int

const (
	ModeSolo Mode = iota
	ModeParty
)

// String returns "solo" or "party".
func (m Mode) String() string {
	if m == ModeParty {
		return "party"
	}
	return "solo"
}

// Input is the human decision point. Every method blocks until the player
// answers or ctx is done.
type Input interface {
	// ChooseAction picks one of options.
	ChooseAction(ctx context.Context, actor *combat.Character, options []Action) (Action, error)
	// ChooseAbility returns nil to cancel.
	ChooseAbility(ctx context.Context, actor *combat.Character, abilities []*combat.Ability) (*combat.Ability, error)
	// ChooseItem returns nil to cancel.
	ChooseItem(ctx context.Context, actor *combat.Character, items []*combat.Item) (*combat.Item, error)
	targeting.Chooser
}

// Sink receives everything the battle wants shown.
type Sink interface {
	Event(ev combat.Event)
	Status(views []StatusView)
	Stats(views []StatsView)
}

// Option configures a Battle.
type Option func(*Battle)

// WithLogger sets the logger. The default discards.
func WithLogger(l *zap.Logger) Option {
	return func(b *Battle) { b.logger = l }
}

// WithSource sets the randomness for attacks and enemy decisions. The
// default is a crypto source.
func WithSource(src dice.Source) Option {
	return func(b *Battle) { b.src = src }
}

// WithPolicy sets the enemy decision probabilities.
func WithPolicy(cfg ai.Config) Option {
	return func(b *Battle) { b.policyCfg = cfg }
}

// WithMaxRounds ends the battle in a stalemate after n completed rounds.
// 0 means unlimited.
func WithMaxRounds(n int) Option {
	return func(b *Battle) { b.maxRounds = n }
}

// Battle orchestrates one fight between heroes (player-controlled) and
// enemies (policy-controlled).
//
// Invariant: heroes and enemies each have at least one member.
type Battle struct {
	mode      Mode
	heroes    *combat.Party
	enemies   *combat.Party
	input     Input
	sink      Sink
	logger    *zap.Logger
	src       dice.Source
	policyCfg ai.Config
	policy    *ai.Policy
	maxRounds int
	round     int
	machine   *fsm.FSM
}

// NewSolo creates a duel between player and enemy. The player may quit.
//
// Precondition: all arguments must be non-nil.
// Postcondition: Returns an active battle or a non-nil error.
func NewSolo(player, enemy *combat.Character, input Input, sink Sink, opts ...Option) (*Battle, error) {
	if player == nil || enemy == nil {
		return nil, errors.New("solo battle needs a player and an enemy")
	}
	return newBattle(ModeSolo, combat.NewParty("Player", player), combat.NewParty("Enemy", enemy), input, sink, opts)
}

// NewParty creates a battle between two rosters.
//
// Precondition: heroes and enemies must each have at least one member;
// input and sink must be non-nil.
// Postcondition: Returns an active battle or a non-nil error.
func NewParty(heroes, enemies *combat.Party, input Input, sink Sink, opts ...Option) (*Battle, error) {
	if heroes == nil || heroes.Len() == 0 || enemies == nil || enemies.Len() == 0 {
		return nil, errors.New("party battle needs at least one member per side")
	}
	return newBattle(ModeParty, heroes, enemies, input, sink, opts)
}

func newBattle(mode Mode, heroes, enemies *combat.Party, input Input, sink Sink, opts []Option) (*Battle, error) {
	if input == nil || sink == nil {
		return nil, errors.New("battle needs an input and a sink")
	}
	b := &Battle{
		mode:      mode,
		heroes:    heroes,
		enemies:   enemies,
		input:     input,
		sink:      sink,
		policyCfg: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = zap.NewNop()
	}
	if b.src == nil {
		b.src = dice.NewCryptoSource()
	}
	if b.maxRounds < 0 {
		return nil, fmt.Errorf("max rounds must be >= 0, got %d", b.maxRounds)
	}
	b.policy = ai.NewPolicy(b.policyCfg, b.src)
	b.machine = b.newMachine()
	return b, nil
}

func (b *Battle) newMachine() *fsm.FSM {
	events := fsm.Events{}
	for outcome, name := range outcomeEvents {
		events = append(events, fsm.EventDesc{Name: name, Src: []string{stateActive}, Dst: string(outcome)})
	}
	return fsm.NewFSM(stateActive, events, fsm.Callbacks{
		"enter_state": func(_ context.Context, e *fsm.Event) {
			b.logger.Info("battle ended",
				zap.String("mode", b.mode.String()),
				zap.String("outcome", e.Dst),
				zap.Int("rounds", b.round),
			)
		},
	})
}

// Mode returns the battle's turn rules.
func (b *Battle) Mode() Mode { return b.mode }

// Round returns the number of the round in progress, or the last one played.
func (b *Battle) Round() int { return b.round }

// Heroes returns the player-controlled roster.
func (b *Battle) Heroes() *combat.Party { return b.heroes }

// Enemies returns the policy-controlled roster.
func (b *Battle) Enemies() *combat.Party { return b.enemies }

// Outcome returns the terminal state, or false while the battle is active.
func (b *Battle) Outcome() (Outcome, bool) {
	if b.machine.Is(stateActive) {
		return "", false
	}
	return Outcome(b.machine.Current()), true
}

// Run plays rounds until one side is defeated, the player quits, or the
// round limit is reached.
//
// Precondition: ctx must not be nil.
// Postcondition: On a nil error the battle is in a terminal state and every
// participant's battle state was reset. Input errors and ctx cancellation
// abort with a non-nil error and leave the battle active.
func (b *Battle) Run(ctx context.Context) (Outcome, error) {
	if !b.machine.Is(stateActive) {
		return "", ErrFinished
	}
	b.logger.Info("battle started",
		zap.String("mode", b.mode.String()),
		zap.Int("heroes", b.heroes.Len()),
		zap.Int("enemies", b.enemies.Len()),
	)
	for {
		if outcome, done := b.decided(); done {
			return b.finish(ctx, outcome)
		}
		if b.maxRounds > 0 && b.round >= b.maxRounds {
			return b.finish(ctx, OutcomeStalemate)
		}
		b.round++
		outcome, done, err := b.playRound(ctx)
		if err != nil {
			b.logger.Warn("battle aborted", zap.Int("round", b.round), zap.Error(err))
			return "", err
		}
		if done {
			return b.finish(ctx, outcome)
		}
		b.tick()
	}
}

func (b *Battle) decided() (Outcome, bool) {
	switch {
	case !b.enemies.AnyAlive():
		return OutcomeVictory, true
	case !b.heroes.AnyAlive():
		return OutcomeDefeat, true
	}
	return "", false
}

func (b *Battle) finish(ctx context.Context, outcome Outcome) (Outcome, error) {
	if err := b.machine.Event(context.WithoutCancel(ctx), outcomeEvents[outcome]); err != nil {
		return "", fmt.Errorf("entering %s: %w", outcome, err)
	}
	for _, c := range append(b.heroes.Members(), b.enemies.Members()...) {
		c.EndBattle()
	}
	b.info(b.closingLine(outcome))
	return outcome, nil
}

func (b *Battle) closingLine(outcome Outcome) string {
	switch outcome {
	case OutcomeVictory:
		if b.mode == ModeSolo {
			return fmt.Sprintf("%s wins!", b.heroes.Members()[0].Name())
		}
		return fmt.Sprintf("%s is victorious!", b.heroes.Name())
	case OutcomeDefeat:
		if b.mode == ModeSolo {
			return fmt.Sprintf("%s wins!", b.enemies.Members()[0].Name())
		}
		return fmt.Sprintf("%s has fallen.", b.heroes.Name())
	case OutcomeQuit:
		return "You flee the battle."
	default:
		return fmt.Sprintf("The battle is called a stalemate after %d rounds.", b.round)
	}
}

// playRound runs every living hero, then every living enemy.
func (b *Battle) playRound(ctx context.Context) (Outcome, bool, error) {
	b.sink.Event(combat.Event{Kind: combat.EventRound, Amount: b.round, Message: fmt.Sprintf("=== Round %d ===", b.round)})
	b.sink.Status(b.statusViews())

	for _, hero := range b.heroes.Living() {
		if !hero.Alive() {
			continue
		}
		quit, err := b.heroTurn(ctx, hero)
		if err != nil {
			return "", false, err
		}
		if quit {
			return OutcomeQuit, true, nil
		}
		if !b.enemies.AnyAlive() {
			return OutcomeVictory, true, nil
		}
	}

	for _, enemy := range b.enemies.Living() {
		if !enemy.Alive() {
			continue
		}
		b.enemyTurn(enemy)
		if !b.heroes.AnyAlive() {
			return OutcomeDefeat, true, nil
		}
	}
	return "", false, nil
}

// tick advances cooldowns, regeneration, and timed bonuses once per round.
func (b *Battle) tick() {
	for _, c := range append(b.heroes.Living(), b.enemies.Living()...) {
		t := c.TickRound()
		if t.Regenerated > 0 {
			b.sink.Event(combat.Event{
				Kind:    combat.EventResource,
				Actor:   c.Name(),
				Target:  c.Name(),
				Amount:  t.Regenerated,
				Message: fmt.Sprintf("%s regenerates %d %s.", c.Name(), t.Regenerated, c.ResourceKind()),
			})
		}
		for _, id := range t.Expired {
			b.sink.Event(combat.Event{
				Kind:    combat.EventExpired,
				Actor:   c.Name(),
				Target:  c.Name(),
				Message: fmt.Sprintf("%s's %s wears off.", c.Name(), id),
			})
		}
	}
}

// resolved publishes a successful action and clears defend on every
// character it struck.
func (b *Battle) resolved(res combat.Result) {
	for _, ev := range res.Events {
		b.sink.Event(ev)
	}
	for _, target := range res.Struck() {
		target.ExitDefend()
	}
	b.logger.Debug("action resolved",
		zap.Int("round", b.round),
		zap.String("actor", res.Actor.Name()),
		zap.String("action", res.Action),
		zap.Int("hits", len(res.Hits)),
		zap.Int("damage", res.TotalDamage()),
	)
}

func (b *Battle) failed(actor *combat.Character, err error) {
	b.sink.Event(combat.Event{Kind: combat.EventFailed, Actor: actor.Name(), Message: err.Error()})
	b.logger.Debug("action failed", zap.String("actor", actor.Name()), zap.Error(err))
}

func (b *Battle) info(msg string) {
	b.sink.Event(combat.Event{Kind: combat.EventInfo, Message: msg})
}
