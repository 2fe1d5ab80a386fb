// Package main provides the arena binary: a console duel or party battle
// between characters from the content catalog.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dungeonescape/internal/config"
	"github.com/cory-johannsen/dungeonescape/internal/frontend/console"
	"github.com/cory-johannsen/dungeonescape/internal/game/ai"
	"github.com/cory-johannsen/dungeonescape/internal/game/battle"
	"github.com/cory-johannsen/dungeonescape/internal/game/combat"
	"github.com/cory-johannsen/dungeonescape/internal/game/content"
	"github.com/cory-johannsen/dungeonescape/internal/game/dice"
	"github.com/cory-johannsen/dungeonescape/internal/observability"
	"github.com/cory-johannsen/dungeonescape/internal/scripting"
)

// options are the command-line choices layered over the config file.
type options struct {
	configPath string
	mode       string
	heroes     []string
	enemies    []string
	seed       int64
	list       bool
}

func main() {
	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	mode := flag.String("mode", "solo", "battle mode: solo or party")
	heroes := flag.String("heroes", "merlin", "comma-separated hero template IDs")
	enemies := flag.String("enemies", "dungeon_boss", "comma-separated enemy template IDs")
	seed := flag.Int64("seed", 0, "battle seed; 0 keeps combat.seed from the config")
	list := flag.Bool("list", false, "list character templates and exit")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx, options{
		configPath: *configPath,
		mode:       *mode,
		heroes:     splitIDs(*heroes),
		enemies:    splitIDs(*enemies),
		seed:       *seed,
		list:       *list,
	}, os.Stdin, os.Stdout)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, context.Canceled) {
		log.Fatalf("arena: %v", err)
	}
}

func splitIDs(s string) []string {
	var ids []string
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// run loads configuration and content, then plays one battle on in and out.
//
// Postcondition: Returns nil once the battle ends, or the first error.
func run(ctx context.Context, opts options, in io.Reader, out io.Writer) error {
	start := time.Now()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if opts.seed != 0 {
		cfg.Combat.Seed = opts.seed
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	cat, err := content.Load(cfg.Content.Dir)
	if err != nil {
		return fmt.Errorf("loading content: %w", err)
	}
	logger.Info("content loaded",
		zap.String("dir", cfg.Content.Dir),
		zap.Int("templates", len(cat.Templates())),
		zap.Duration("elapsed", time.Since(start)),
	)

	if opts.list {
		return listTemplates(out, cat)
	}

	seed := cfg.Combat.Seed
	if seed == 0 {
		if seed, err = dice.NewSeed(); err != nil {
			return fmt.Errorf("drawing seed: %w", err)
		}
	}
	logger.Info("battle seed", zap.Int64("seed", seed))
	src := dice.NewLoggedSource(dice.NewSeededSource(seed), logger)

	abilityOpts := []combat.AbilityOption{combat.WithSource(src)}
	if cfg.Content.Scripts != "" {
		mgr := scripting.NewManager(src, logger)
		if err := mgr.Load(cfg.Content.Scripts, cfg.Content.InstructionLimit); err != nil {
			return fmt.Errorf("loading scripts: %w", err)
		}
		defer mgr.Close()
		abilityOpts = append(abilityOpts, combat.WithPowerHook(mgr))
	}

	heroes, err := buildRoster(cat, opts.heroes, abilityOpts)
	if err != nil {
		return fmt.Errorf("building heroes: %w", err)
	}
	enemies, err := buildRoster(cat, opts.enemies, abilityOpts)
	if err != nil {
		return fmt.Errorf("building enemies: %w", err)
	}

	renderer := console.NewRenderer(out, cfg.Console.Color)
	prompter := console.NewPrompter(in, out, cfg.Console.Color)
	defer prompter.Close()
	battleOpts := []battle.Option{
		battle.WithLogger(logger),
		battle.WithSource(src),
		battle.WithPolicy(policyConfig(cfg.Combat)),
		battle.WithMaxRounds(cfg.Combat.MaxRounds),
	}

	var b *battle.Battle
	switch opts.mode {
	case "solo":
		if len(heroes) != 1 || len(enemies) != 1 {
			return fmt.Errorf("solo mode needs exactly one hero and one enemy, got %d and %d", len(heroes), len(enemies))
		}
		b, err = battle.NewSolo(heroes[0], enemies[0], prompter, renderer, battleOpts...)
	case "party":
		b, err = battle.NewParty(
			combat.NewParty("The Heroes", heroes...),
			combat.NewParty("The Dungeon", enemies...),
			prompter, renderer, battleOpts...)
	default:
		return fmt.Errorf("unknown mode %q: want solo or party", opts.mode)
	}
	if err != nil {
		return err
	}

	outcome, err := b.Run(ctx)
	if err != nil {
		return err
	}
	logger.Info("arena finished",
		zap.String("outcome", string(outcome)),
		zap.Int("rounds", b.Round()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return renderer.Err()
}

func policyConfig(c config.CombatConfig) ai.Config {
	return ai.Config{
		DefendChance:  c.DefendChance,
		AbilityChance: c.AbilityChance,
		PreferArea:    c.PreferArea,
	}
}

// buildRoster instantiates ids in order. Repeated templates are numbered so
// every combatant has a distinct name.
func buildRoster(cat *content.Catalog, ids []string, opts []combat.AbilityOption) ([]*combat.Character, error) {
	if len(ids) == 0 {
		return nil, errors.New("no template IDs given")
	}
	total := make(map[string]int)
	for _, id := range ids {
		total[id]++
	}
	seen := make(map[string]int)
	roster := make([]*combat.Character, 0, len(ids))
	for _, id := range ids {
		tmpl, ok := cat.Template(id)
		if !ok {
			return nil, fmt.Errorf("unknown character template %q", id)
		}
		name := tmpl.Name
		if total[id] > 1 {
			seen[id]++
			name = fmt.Sprintf("%s %d", tmpl.Name, seen[id])
		}
		ch, err := cat.Build(id, name, opts...)
		if err != nil {
			return nil, err
		}
		roster = append(roster, ch)
	}
	return roster, nil
}

func listTemplates(out io.Writer, cat *content.Catalog) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCLASS\tHP\tDESCRIPTION")
	for _, t := range cat.Templates() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", t.ID, t.Name, t.Class, t.MaxHealth, t.Description)
	}
	return tw.Flush()
}
