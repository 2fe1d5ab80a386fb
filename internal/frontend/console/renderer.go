package console

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/cory-johannsen/dungeonescape/internal/game/battle"
	"github.com/cory-johannsen/dungeonescape/internal/game/combat"
)

const barWidth = 20

// Renderer writes battle output as text. It implements battle.Sink.
//
// Renderer is safe for concurrent use.
type Renderer struct {
	mu  sync.Mutex
	w   io.Writer
	p   Palette
	err error
}

// NewRenderer creates a Renderer writing to w, styled iff color is true.
//
// Precondition: w must not be nil.
func NewRenderer(w io.Writer, color bool) *Renderer {
	if w == nil {
		panic("console.NewRenderer: w must not be nil")
	}
	return &Renderer{w: w, p: NewPalette(color)}
}

// Err returns the first write error, if any. Later writes are skipped once
// one fails.
func (r *Renderer) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Event writes ev's narrative on its own line.
func (r *Renderer) Event(ev combat.Event) {
	r.write(RenderEvent(r.p, ev) + "\n")
}

// Status writes one summary line per combatant.
func (r *Renderer) Status(views []battle.StatusView) {
	r.write(RenderStatus(r.p, views))
}

// Stats writes the full sheet of every combatant.
func (r *Renderer) Stats(views []battle.StatsView) {
	r.write(RenderStats(r.p, views))
}

func (r *Renderer) write(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return
	}
	_, r.err = io.WriteString(r.w, s)
}

// eventColors maps each event kind to its style.
var eventColors = map[combat.EventKind]string{
	combat.EventInfo:     BrightWhite,
	combat.EventRound:    Bold + BrightYellow,
	combat.EventAttack:   White,
	combat.EventAbility:  BrightCyan,
	combat.EventDamage:   Red,
	combat.EventEvade:    Dim,
	combat.EventHeal:     BrightGreen,
	combat.EventBuff:     Magenta,
	combat.EventResource: Blue,
	combat.EventDefend:   Cyan,
	combat.EventSkip:     Dim,
	combat.EventItem:     Green,
	combat.EventExpired:  Dim,
	combat.EventDefeated: Bold + BrightRed,
	combat.EventFailed:   Yellow,
}

// RenderEvent formats one event. Round headers are preceded by a blank line.
func RenderEvent(p Palette, ev combat.Event) string {
	line := p.Colorize(eventColors[ev.Kind], ev.Message)
	if ev.Kind == combat.EventRound {
		return "\n" + line
	}
	return line
}

// RenderStatus formats the per-round status block: heroes in green, enemies
// in red, with a health bar and resource gauge per line.
func RenderStatus(p Palette, views []battle.StatusView) string {
	width := 0
	for _, v := range views {
		width = max(width, Width(v.Name))
	}
	var b strings.Builder
	for _, v := range views {
		nameColor := Red
		if v.Hero {
			nameColor = Green
		}
		b.WriteString("  ")
		b.WriteString(p.Colorize(nameColor, pad(v.Name, width)))
		b.WriteString("  HP ")
		b.WriteString(healthBar(p, v.Health, v.MaxHealth))
		b.WriteString(fmt.Sprintf(" %d/%d", v.Health, v.MaxHealth))
		if v.HasResource() {
			b.WriteString("  ")
			b.WriteString(p.Colorf(Blue, "%s %d/%d", label(v.Resource.String()), v.Current, v.MaxResource))
		}
		if v.Defending {
			b.WriteString("  ")
			b.WriteString(p.Colorize(Cyan, "(defending)"))
		}
		if v.Health == 0 {
			b.WriteString("  ")
			b.WriteString(p.Colorize(Dim, "(defeated)"))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// healthBar draws a barWidth-cell bar whose fill is proportional to health.
// A living character always shows at least one filled cell.
func healthBar(p Palette, health, maxHealth int) string {
	filled := 0
	if maxHealth > 0 {
		filled = health * barWidth / maxHealth
	}
	if health > 0 && filled == 0 {
		filled = 1
	}
	color := BrightGreen
	switch {
	case health*4 <= maxHealth:
		color = BrightRed
	case health*2 <= maxHealth:
		color = Yellow
	}
	return "[" + p.Colorize(color, strings.Repeat("#", filled)) + strings.Repeat(".", barWidth-filled) + "]"
}

// RenderStats formats the detailed character sheets.
func RenderStats(p Palette, views []battle.StatsView) string {
	var b strings.Builder
	for _, v := range views {
		nameColor := Red
		if v.Hero {
			nameColor = Green
		}
		b.WriteString(p.Colorize(Bold+nameColor, v.Name))
		b.WriteString(p.Colorf(Dim, " (%s)", v.Class))
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("  Health: %d/%d", v.Health, v.MaxHealth))
		if v.HasResource() {
			b.WriteString(fmt.Sprintf("  %s: %d/%d", label(v.Resource.String()), v.Current, v.MaxResource))
		}
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("  Defense: %d  Magic Resistance: %d  Power: %d  Dodge: %.0f%%\n",
			v.Defense, v.MagicResistance, v.Power, v.Dodge*100))
		if v.Defending {
			b.WriteString(p.Colorize(Cyan, "  Defending"))
			b.WriteString("\n")
		}
		b.WriteString("  Abilities: " + list(p, v.Abilities) + "\n")
		b.WriteString("  Items: " + list(p, v.Items) + "\n")
	}
	return b.String()
}

func list(p Palette, names []string) string {
	if len(names) == 0 {
		return p.Colorize(Dim, "none")
	}
	return strings.Join(names, ", ")
}

// label capitalizes the first letter of an ASCII word.
func label(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
