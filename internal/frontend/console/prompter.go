package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/cory-johannsen/dungeonescape/internal/game/battle"
	"github.com/cory-johannsen/dungeonescape/internal/game/combat"
	"github.com/cory-johannsen/dungeonescape/internal/game/targeting"
)

// cancelled is returned by choose when the player enters 0.
const cancelled = -1

type line struct {
	text string
	err  error
}

// Prompter asks the player for choices over a line-oriented reader and
// writer. It implements battle.Input.
//
// Every prompt lists numbered options and re-asks until the answer is valid.
// Submenus accept 0 to go back.
type Prompter struct {
	out       io.Writer
	p         Palette
	in        io.Reader
	once      sync.Once
	lines     chan line
	done      chan struct{}
	closeOnce sync.Once
}

// NewPrompter creates a Prompter reading answers from in and writing
// prompts to out.
//
// Precondition: in and out must not be nil.
func NewPrompter(in io.Reader, out io.Writer, color bool) *Prompter {
	if in == nil || out == nil {
		panic("console.NewPrompter: in and out must not be nil")
	}
	return &Prompter{
		in:    in,
		out:   out,
		p:     NewPalette(color),
		lines: make(chan line, 1),
		done:  make(chan struct{}),
	}
}

// Close stops the reader goroutine once it has a line to hand over. Reads
// after Close return io.EOF.
func (pr *Prompter) Close() error {
	pr.closeOnce.Do(func() { close(pr.done) })
	return nil
}

// readLine returns the next trimmed input line. The underlying reader is
// drained by a single goroutine so that ctx can interrupt a pending read.
//
// Postcondition: Returns io.EOF once input is exhausted or the Prompter is
// closed, or ctx.Err().
func (pr *Prompter) readLine(ctx context.Context) (string, error) {
	pr.once.Do(func() { go pr.scan() })
	select {
	case <-pr.done:
		return "", io.EOF
	default:
	}
	select {
	case <-pr.done:
		return "", io.EOF
	case <-ctx.Done():
		return "", ctx.Err()
	case l, ok := <-pr.lines:
		if !ok {
			return "", io.EOF
		}
		return strings.TrimSpace(l.text), l.err
	}
}

func (pr *Prompter) scan() {
	defer close(pr.lines)
	send := func(l line) bool {
		select {
		case pr.lines <- l:
			return true
		case <-pr.done:
			return false
		}
	}
	sc := bufio.NewScanner(pr.in)
	for sc.Scan() {
		if !send(line{text: sc.Text()}) {
			return
		}
	}
	err := sc.Err()
	if err == nil {
		err = io.EOF
	}
	send(line{err: err})
}

func (pr *Prompter) printf(format string, args ...any) error {
	_, err := fmt.Fprintf(pr.out, format, args...)
	return err
}

// choose shows title and options and returns the chosen 0-based index.
// When back is true, 0 returns cancelled. shortcuts maps typed words to an
// index.
func (pr *Prompter) choose(ctx context.Context, title string, options []string, back bool, shortcuts map[string]int) (int, error) {
	var b strings.Builder
	b.WriteString(pr.p.Colorize(Bold+BrightYellow, title))
	b.WriteString("\n")
	for i, opt := range options {
		b.WriteString(fmt.Sprintf("  %s %s\n", pr.p.Colorf(BrightCyan, "%d.", i+1), opt))
	}
	if back {
		b.WriteString(fmt.Sprintf("  %s %s\n", pr.p.Colorize(BrightCyan, "0."), "Back"))
	}
	if err := pr.printf("%s", b.String()); err != nil {
		return 0, err
	}
	for {
		if err := pr.printf("%s", pr.p.Colorize(BrightWhite, "> ")); err != nil {
			return 0, err
		}
		answer, err := pr.readLine(ctx)
		if err != nil {
			return 0, err
		}
		if idx, ok := shortcuts[strings.ToLower(answer)]; ok {
			return idx, nil
		}
		n, convErr := strconv.Atoi(answer)
		switch {
		case convErr == nil && back && n == 0:
			return cancelled, nil
		case convErr == nil && n >= 1 && n <= len(options):
			return n - 1, nil
		}
		low := 1
		if back {
			low = 0
		}
		if err := pr.printf("%s\n", pr.p.Colorf(Yellow, "Invalid choice. Enter a number from %d to %d.", low, len(options))); err != nil {
			return 0, err
		}
	}
}

// ChooseAction asks which menu action actor takes. "q" selects Quit when
// it is offered.
func (pr *Prompter) ChooseAction(ctx context.Context, actor *combat.Character, options []battle.Action) (battle.Action, error) {
	labels := make([]string, len(options))
	shortcuts := make(map[string]int)
	for i, a := range options {
		labels[i] = a.String()
		shortcuts[strings.ToLower(a.String())] = i
		if a == battle.ActionQuit {
			shortcuts["q"] = i
		}
	}
	idx, err := pr.choose(ctx, turnTitle(actor), labels, false, shortcuts)
	if err != nil {
		return 0, err
	}
	return options[idx], nil
}

func turnTitle(actor *combat.Character) string {
	title := fmt.Sprintf("%s's turn (HP %d/%d", actor.Name(), actor.Health(), actor.MaxHealth())
	if actor.MaxResource() > 0 {
		title += fmt.Sprintf(", %s %d/%d", label(actor.ResourceKind().String()), actor.Resource(), actor.MaxResource())
	}
	return title + ")"
}

// ChooseAbility lists abilities with their cost and cooldown. 0 returns nil.
func (pr *Prompter) ChooseAbility(ctx context.Context, actor *combat.Character, abilities []*combat.Ability) (*combat.Ability, error) {
	labels := make([]string, len(abilities))
	for i, a := range abilities {
		s := a.Name()
		if a.Cost() > 0 {
			s += fmt.Sprintf(" (%d %s)", a.Cost(), a.Kind())
		}
		if !a.Ready() {
			s += pr.p.Colorf(Dim, " [cooldown %d]", a.Cooldown())
		}
		if d := a.Description(); d != "" {
			s += pr.p.Colorize(Dim, " - "+d)
		}
		labels[i] = s
	}
	idx, err := pr.choose(ctx, "Choose an ability:", labels, true, nil)
	if err != nil || idx == cancelled {
		return nil, err
	}
	return abilities[idx], nil
}

// ChooseItem lists the inventory. 0 returns nil.
func (pr *Prompter) ChooseItem(ctx context.Context, actor *combat.Character, items []*combat.Item) (*combat.Item, error) {
	labels := make([]string, len(items))
	for i, it := range items {
		s := it.Name()
		if n, ok := it.Charges(); ok {
			s += fmt.Sprintf(" (%d left)", n)
		}
		if d := it.Description(); d != "" {
			s += pr.p.Colorize(Dim, " - "+d)
		}
		labels[i] = s
	}
	idx, err := pr.choose(ctx, "Choose an item:", labels, true, nil)
	if err != nil || idx == cancelled {
		return nil, err
	}
	return items[idx], nil
}

// ChooseTarget lists candidates by their own numbering and returns the
// chosen Index, or 0 to cancel.
func (pr *Prompter) ChooseTarget(ctx context.Context, actor *combat.Character, candidates []targeting.Candidate) (int, error) {
	labels := make([]string, len(candidates))
	for i, c := range candidates {
		color := Red
		if c.Friendly {
			color = Green
		}
		name := c.Character.Name()
		if c.Character == actor {
			name += " (you)"
		}
		labels[i] = pr.p.Colorize(color, name) + fmt.Sprintf(" HP %d/%d", c.Character.Health(), c.Character.MaxHealth())
	}
	idx, err := pr.choose(ctx, "Choose a target:", labels, true, nil)
	if err != nil || idx == cancelled {
		return 0, err
	}
	return candidates[idx].Index, nil
}
