package console_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/dungeonescape/internal/frontend/console"
	"github.com/cory-johannsen/dungeonescape/internal/game/battle"
	"github.com/cory-johannsen/dungeonescape/internal/game/combat"
	"github.com/cory-johannsen/dungeonescape/internal/game/resource"
)

var _ battle.Sink = (*console.Renderer)(nil)

func TestRenderer_EventPlain(t *testing.T) {
	var buf bytes.Buffer
	r := console.NewRenderer(&buf, false)
	r.Event(combat.Event{Kind: combat.EventDamage, Message: "Goblin takes 12 physical damage."})
	r.Event(combat.Event{Kind: combat.EventRound, Message: "=== Round 2 ==="})
	assert.Equal(t, "Goblin takes 12 physical damage.\n\n=== Round 2 ===\n", buf.String())
	assert.NoError(t, r.Err())
}

func TestRenderer_EventColored(t *testing.T) {
	var buf bytes.Buffer
	r := console.NewRenderer(&buf, true)
	r.Event(combat.Event{Kind: combat.EventDefeated, Message: "Goblin has been defeated!"})
	assert.Contains(t, buf.String(), console.BrightRed)
	assert.Equal(t, "Goblin has been defeated!\n", console.StripANSI(buf.String()))
}

func TestRenderStatus(t *testing.T) {
	out := console.RenderStatus(console.NewPalette(false), []battle.StatusView{
		{Name: "Merlin", Hero: true, Health: 60, MaxHealth: 120, Resource: resource.KindMana, Current: 90, MaxResource: 150, Defending: true},
		{Name: "Goblin", Health: 0, MaxHealth: 40},
	})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "[##########..........] 60/120")
	assert.Contains(t, lines[0], "Mana 90/150")
	assert.Contains(t, lines[0], "(defending)")
	assert.Contains(t, lines[1], "[....................] 0/40")
	assert.Contains(t, lines[1], "(defeated)")
	assert.NotContains(t, lines[1], "Mana")
}

func TestRenderStatus_AlignsNames(t *testing.T) {
	out := console.RenderStatus(console.NewPalette(true), []battle.StatusView{
		{Name: "Al", Hero: true, Health: 1, MaxHealth: 100},
		{Name: "Dungeon Boss", Health: 600, MaxHealth: 600},
	})
	lines := strings.Split(console.StripANSI(out), "\n")
	assert.Equal(t, strings.Index(lines[0], "HP"), strings.Index(lines[1], "HP"))
	assert.Contains(t, lines[0], "[#...................]", "a living character shows at least one cell")
}

func TestRenderStats(t *testing.T) {
	out := console.RenderStats(console.NewPalette(false), []battle.StatsView{{
		StatusView:      battle.StatusView{Name: "Lancelot", Hero: true, Health: 200, MaxHealth: 200, Resource: resource.KindRage, Current: 15, MaxResource: 100},
		Class:           "warrior",
		Defense:         18,
		MagicResistance: 5,
		Power:           30,
		Dodge:           0.3,
		Abilities:       []string{"Heroic Strike", "Execute"},
	}})
	assert.Contains(t, out, "Lancelot (warrior)")
	assert.Contains(t, out, "Rage: 15/100")
	assert.Contains(t, out, "Defense: 18  Magic Resistance: 5  Power: 30  Dodge: 30%")
	assert.Contains(t, out, "Abilities: Heroic Strike, Execute")
	assert.Contains(t, out, "Items: none")
}

type failingWriter struct{ calls int }

func (f *failingWriter) Write(p []byte) (int, error) {
	f.calls++
	return 0, errors.New("closed")
}

func TestRenderer_KeepsFirstWriteError(t *testing.T) {
	w := &failingWriter{}
	r := console.NewRenderer(w, false)
	r.Event(combat.Event{Message: "one"})
	r.Event(combat.Event{Message: "two"})
	assert.EqualError(t, r.Err(), "closed")
	assert.Equal(t, 1, w.calls)
}
