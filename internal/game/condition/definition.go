package condition

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Stat names a character statistic a condition adjusts.
type Stat string

const (
	StatDodge           Stat = "dodge"
	StatDefense         Stat = "defense"
	StatMagicResistance Stat = "magic_resistance"
	StatAttack          Stat = "attack"
)

// Valid reports whether s is a known stat.
func (s Stat) Valid() bool {
	switch s {
	case StatDodge, StatDefense, StatMagicResistance, StatAttack:
		return true
	}
	return false
}

// ConditionDef is the static definition of a timed stat bonus, loaded from YAML.
type ConditionDef struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	Description  string `yaml:"description"`
	Stat         Stat   `yaml:"stat"`
	DurationType string `yaml:"duration_type"` // "rounds" | "permanent"
	// Cap bounds the bonus this condition can contribute; 0 means uncapped.
	Cap float64 `yaml:"cap"`
}

// Validate checks the definition's invariants.
//
// Postcondition: Returns nil iff ID is non-empty, Stat is known, DurationType
// is "rounds" or "permanent", and Cap >= 0.
func (d *ConditionDef) Validate() error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if !d.Stat.Valid() {
		errs = append(errs, fmt.Errorf("stat %q is not one of [dodge, defense, magic_resistance, attack]", d.Stat))
	}
	if d.DurationType != "rounds" && d.DurationType != "permanent" {
		errs = append(errs, fmt.Errorf("duration_type must be rounds or permanent, got %q", d.DurationType))
	}
	if d.Cap < 0 {
		errs = append(errs, fmt.Errorf("cap must be >= 0, got %v", d.Cap))
	}
	if len(errs) > 0 {
		return fmt.Errorf("condition %q: %w", d.ID, errors.Join(errs...))
	}
	return nil
}

// Registry holds all known ConditionDefs keyed by ID.
type Registry struct {
	defs map[string]*ConditionDef
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*ConditionDef)}
}

// Register validates def and adds it, overwriting any entry with the same ID.
//
// Precondition: def must not be nil.
func (r *Registry) Register(def *ConditionDef) error {
	if err := def.Validate(); err != nil {
		return err
	}
	r.defs[def.ID] = def
	return nil
}

// Get returns the ConditionDef for id, or (nil, false) if not found.
func (r *Registry) Get(id string) (*ConditionDef, bool) {
	d, ok := r.defs[id]
	return d, ok
}

// All returns the registered definitions ordered by ID.
func (r *Registry) All() []*ConditionDef {
	out := make([]*ConditionDef, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LoadDirectory reads every *.yaml file in dir, parses each as a ConditionDef,
// and returns a populated Registry.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a non-nil Registry, or an error if any file fails to parse or validate.
func LoadDirectory(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading condition dir %q: %w", dir, err)
	}
	reg := NewRegistry()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		var def ConditionDef
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&def); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		if err := reg.Register(&def); err != nil {
			return nil, fmt.Errorf("validating %q: %w", path, err)
		}
	}
	return reg, nil
}
