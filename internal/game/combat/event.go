package combat

import "fmt"

// EventKind classifies an Event for renderers.
type EventKind int

const (
	EventInfo EventKind = iota
	EventRound
	EventAttack
	EventAbility
	EventDamage
	EventEvade
	EventHeal
	EventBuff
	EventResource
	EventDefend
	EventSkip
	EventItem
	EventExpired
	EventDefeated
	EventFailed
)

// Event records one thing that happened, with a ready-made narrative.
type Event struct {
	Kind    EventKind
	Actor   string
	Target  string
	Amount  int
	Message string
}

// Hit records the outcome of one strike against one target.
type Hit struct {
	Target   *Character
	Damage   int
	Evaded   bool
	Defended bool
	Killed   bool
}

// Result describes a resolved action. The zero Result is returned alongside
// every precondition error.
type Result struct {
	Actor  *Character
	Action string
	Hits   []Hit
	Events []Event
}

func newResult(actor *Character, action string) Result {
	return Result{Actor: actor, Action: action}
}

func (r *Result) emit(kind EventKind, target *Character, amount int, format string, args ...any) {
	ev := Event{Kind: kind, Amount: amount, Message: fmt.Sprintf(format, args...)}
	if r.Actor != nil {
		ev.Actor = r.Actor.Name()
	}
	if target != nil {
		ev.Target = target.Name()
	}
	r.Events = append(r.Events, ev)
}

// record appends h and its narrative.
func (r *Result) record(h Hit, cat Category) {
	r.Hits = append(r.Hits, h)
	if h.Evaded {
		r.emit(EventEvade, h.Target, 0, "%s evades the blow.", h.Target.Name())
		return
	}
	suffix := ""
	if h.Defended {
		suffix = " (defending)"
	}
	r.emit(EventDamage, h.Target, h.Damage, "%s takes %d %s damage%s.", h.Target.Name(), h.Damage, cat, suffix)
	if h.Killed {
		r.emit(EventDefeated, h.Target, 0, "%s has been defeated!", h.Target.Name())
	}
}

// Struck returns each distinct target that took at least one non-evaded hit,
// in first-hit order.
func (r Result) Struck() []*Character {
	var out []*Character
	seen := make(map[*Character]bool)
	for _, h := range r.Hits {
		if h.Evaded || seen[h.Target] {
			continue
		}
		seen[h.Target] = true
		out = append(out, h.Target)
	}
	return out
}

// TotalDamage sums the damage of every hit.
func (r Result) TotalDamage() int {
	total := 0
	for _, h := range r.Hits {
		total += h.Damage
	}
	return total
}

func forRounds(n int) string {
	switch {
	case n < 0:
		return "permanently"
	case n == 1:
		return "for 1 round"
	default:
		return fmt.Sprintf("for %d rounds", n)
	}
}
