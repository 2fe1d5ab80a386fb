package condition

import (
	"fmt"
	"sort"
)

// ActiveCondition tracks one applied bonus on a character.
type ActiveCondition struct {
	Def               *ConditionDef
	Bonus             float64
	DurationRemaining int // -1 = permanent
}

// ActiveSet tracks all bonuses currently applied to one character.
// It is not safe for concurrent use; the caller must serialise access.
type ActiveSet struct {
	conditions map[string]*ActiveCondition
}

// NewActiveSet creates an empty ActiveSet.
func NewActiveSet() *ActiveSet {
	return &ActiveSet{conditions: make(map[string]*ActiveCondition)}
}

// Apply adds a bonus for duration rounds, or refreshes it when already present.
// Re-application keeps the larger bonus and the longer duration; bonuses of
// the same condition never add up. Use duration -1 for permanent.
//
// Precondition: def must not be nil; duration > 0 or duration == -1.
// Postcondition: Has(def.ID) is true.
func (s *ActiveSet) Apply(def *ConditionDef, bonus float64, duration int) error {
	if def == nil {
		return fmt.Errorf("Apply: def must not be nil")
	}
	if duration == 0 || duration < -1 {
		return fmt.Errorf("Apply %q: duration must be positive or -1, got %d", def.ID, duration)
	}
	if def.DurationType == "permanent" {
		duration = -1
	}
	if def.Cap > 0 && bonus > def.Cap {
		bonus = def.Cap
	}

	if existing, ok := s.conditions[def.ID]; ok {
		if bonus > existing.Bonus {
			existing.Bonus = bonus
		}
		if existing.DurationRemaining >= 0 && (duration < 0 || duration > existing.DurationRemaining) {
			existing.DurationRemaining = duration
		}
		return nil
	}
	s.conditions[def.ID] = &ActiveCondition{Def: def, Bonus: bonus, DurationRemaining: duration}
	return nil
}

// Remove deletes the condition with the given ID. Absent IDs are a no-op.
//
// Postcondition: Has(id) is false.
func (s *ActiveSet) Remove(id string) {
	delete(s.conditions, id)
}

// Tick advances every timed bonus by one round and removes those that expire.
//
// Postcondition: For every id in the returned (sorted) slice, Has(id) is false.
// Permanent bonuses are not affected.
func (s *ActiveSet) Tick() []string {
	var expired []string
	for id, ac := range s.conditions {
		if ac.DurationRemaining < 0 {
			continue
		}
		ac.DurationRemaining--
		if ac.DurationRemaining <= 0 {
			expired = append(expired, id)
			delete(s.conditions, id)
		}
	}
	sort.Strings(expired)
	return expired
}

// Has reports whether the condition with id is currently active.
func (s *ActiveSet) Has(id string) bool {
	_, ok := s.conditions[id]
	return ok
}

// Get returns the active condition with id, or (nil, false).
func (s *ActiveSet) Get(id string) (*ActiveCondition, bool) {
	ac, ok := s.conditions[id]
	return ac, ok
}

// Bonus returns the summed bonus of every active condition adjusting stat.
func (s *ActiveSet) Bonus(stat Stat) float64 {
	total := 0.0
	for _, ac := range s.conditions {
		if ac.Def.Stat == stat {
			total += ac.Bonus
		}
	}
	return total
}

// Clear removes every condition.
func (s *ActiveSet) Clear() {
	clear(s.conditions)
}

// All returns the active conditions ordered by ID. The pointed-to values are
// shared; callers must not modify them.
func (s *ActiveSet) All() []*ActiveCondition {
	out := make([]*ActiveCondition, 0, len(s.conditions))
	for _, ac := range s.conditions {
		out = append(out, ac)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Def.ID < out[j].Def.ID })
	return out
}
