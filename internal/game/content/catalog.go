// Package content loads ability, item, condition, and character definitions
// from YAML and builds ready-to-fight characters from them.
package content

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/dungeonescape/internal/game/combat"
	"github.com/cory-johannsen/dungeonescape/internal/game/condition"
	"github.com/cory-johannsen/dungeonescape/internal/game/resource"
)

// Subdirectories of a content root.
const (
	ConditionsDir = "conditions"
	AbilitiesDir  = "abilities"
	ItemsDir      = "items"
	CharactersDir = "characters"
)

// Catalog holds every definition known to the game.
type Catalog struct {
	conditions *condition.Registry
	abilities  map[string]*combat.AbilityDef
	items      map[string]*combat.ItemDef
	templates  map[string]*Template
}

// NewCatalog creates an empty Catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		conditions: condition.NewRegistry(),
		abilities:  make(map[string]*combat.AbilityDef),
		items:      make(map[string]*combat.ItemDef),
		templates:  make(map[string]*Template),
	}
}

// Load reads a content root: conditions/, abilities/, items/, and
// characters/, each holding one *.yaml definition per file. A missing
// subdirectory contributes nothing.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a Catalog whose cross references all resolve, or an
// error naming the offending file.
func Load(dir string) (*Catalog, error) {
	if info, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("reading content dir %q: %w", dir, err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("content path %q is not a directory", dir)
	}

	c := NewCatalog()
	if err := loadDir(filepath.Join(dir, ConditionsDir), c.conditions.Register); err != nil {
		return nil, err
	}
	if err := loadDir(filepath.Join(dir, AbilitiesDir), c.AddAbility); err != nil {
		return nil, err
	}
	if err := loadDir(filepath.Join(dir, ItemsDir), c.AddItem); err != nil {
		return nil, err
	}
	if err := loadDir(filepath.Join(dir, CharactersDir), c.AddTemplate); err != nil {
		return nil, err
	}
	if err := c.Check(); err != nil {
		return nil, err
	}
	return c, nil
}

// loadDir decodes every *.yaml file in dir into a fresh T and hands it to add.
func loadDir[T any](dir string, add func(*T) error) error {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading %q: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %q: %w", path, err)
		}
		var def T
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&def); err != nil {
			return fmt.Errorf("parsing %q: %w", path, err)
		}
		if err := add(&def); err != nil {
			return fmt.Errorf("loading %q: %w", path, err)
		}
	}
	return nil
}

// Conditions returns the condition registry.
func (c *Catalog) Conditions() *condition.Registry { return c.conditions }

// AddAbility validates def and registers it.
//
// Postcondition: Returns an error if def is invalid or its ID is taken.
func (c *Catalog) AddAbility(def *combat.AbilityDef) error {
	if err := def.Validate(); err != nil {
		return err
	}
	if _, dup := c.abilities[def.ID]; dup {
		return fmt.Errorf("ability %q defined twice", def.ID)
	}
	c.abilities[def.ID] = def
	return nil
}

// AddItem validates def and registers it.
//
// Postcondition: Returns an error if def is invalid or its ID is taken.
func (c *Catalog) AddItem(def *combat.ItemDef) error {
	if err := def.Validate(); err != nil {
		return err
	}
	if _, dup := c.items[def.ID]; dup {
		return fmt.Errorf("item %q defined twice", def.ID)
	}
	c.items[def.ID] = def
	return nil
}

// AddTemplate validates t and registers it.
//
// Postcondition: Returns an error if t is invalid or its ID is taken.
func (c *Catalog) AddTemplate(t *Template) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if _, dup := c.templates[t.ID]; dup {
		return fmt.Errorf("template %q defined twice", t.ID)
	}
	c.templates[t.ID] = t
	return nil
}

// Ability returns the definition for id.
func (c *Catalog) Ability(id string) (*combat.AbilityDef, bool) {
	d, ok := c.abilities[id]
	return d, ok
}

// Item returns the definition for id.
func (c *Catalog) Item(id string) (*combat.ItemDef, bool) {
	d, ok := c.items[id]
	return d, ok
}

// Template returns the template for id.
func (c *Catalog) Template(id string) (*Template, bool) {
	t, ok := c.templates[id]
	return t, ok
}

// Templates returns every template ordered by ID.
func (c *Catalog) Templates() []*Template {
	out := make([]*Template, 0, len(c.templates))
	for _, t := range c.templates {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Check resolves every cross reference: conditions named by abilities and
// items, and abilities and items named by templates, including resource
// compatibility.
//
// Postcondition: Returns nil iff Build succeeds for every template.
func (c *Catalog) Check() error {
	var errs []error
	for _, id := range sortedKeys(c.abilities) {
		def := c.abilities[id]
		if def.Condition != "" {
			if _, ok := c.conditions.Get(def.Condition); !ok {
				errs = append(errs, fmt.Errorf("ability %q: unknown condition %q", id, def.Condition))
			}
		}
	}
	for _, id := range sortedKeys(c.items) {
		def := c.items[id]
		if def.Condition != "" {
			if _, ok := c.conditions.Get(def.Condition); !ok {
				errs = append(errs, fmt.Errorf("item %q: unknown condition %q", id, def.Condition))
			}
		}
	}
	for _, id := range sortedKeys(c.templates) {
		t := c.templates[id]
		for _, aid := range t.Abilities {
			def, ok := c.abilities[aid]
			if !ok {
				errs = append(errs, fmt.Errorf("template %q: unknown ability %q", id, aid))
				continue
			}
			if err := c.compatible(t, def); err != nil {
				errs = append(errs, err)
			}
		}
		for _, iid := range t.Items {
			if _, ok := c.items[iid]; !ok {
				errs = append(errs, fmt.Errorf("template %q: unknown item %q", id, iid))
			}
		}
		slots := t.InventorySlots
		if slots == 0 {
			slots = combat.DefaultInventorySlots
		}
		if len(t.Items) > slots {
			errs = append(errs, fmt.Errorf("template %q: %d items exceed %d inventory slots", id, len(t.Items), slots))
		}
	}
	return errors.Join(errs...)
}

func (c *Catalog) compatible(t *Template, def *combat.AbilityDef) error {
	a, err := combat.NewAbility(def, c.abilityOptions(def)...)
	if err != nil {
		return fmt.Errorf("template %q: %w", t.ID, err)
	}
	if k := a.Kind(); k != resource.KindNone && k != t.ResourceKind() {
		return fmt.Errorf("template %q: ability %q needs %s, template uses %s", t.ID, def.ID, k, t.ResourceKind())
	}
	return nil
}

func (c *Catalog) abilityOptions(def *combat.AbilityDef) []combat.AbilityOption {
	if def.Condition == "" {
		return nil
	}
	cond, _ := c.conditions.Get(def.Condition)
	return []combat.AbilityOption{combat.WithCondition(cond)}
}

// Build instantiates template id as a new character. An empty name keeps the
// template's name. opts are applied to every learned ability.
//
// Precondition: the catalog passed Check.
// Postcondition: Returns a full-health character with its abilities learned
// and items carried, or an error.
func (c *Catalog) Build(id, name string, opts ...combat.AbilityOption) (*combat.Character, error) {
	t, ok := c.templates[id]
	if !ok {
		return nil, fmt.Errorf("unknown character template %q", id)
	}
	if name == "" {
		name = t.Name
	}
	ch, err := combat.NewCharacter(name, t.archetype(), t.stats())
	if err != nil {
		return nil, fmt.Errorf("building %q: %w", id, err)
	}
	for _, aid := range t.Abilities {
		def, ok := c.abilities[aid]
		if !ok {
			return nil, fmt.Errorf("building %q: unknown ability %q", id, aid)
		}
		a, err := combat.NewAbility(def, append(c.abilityOptions(def), opts...)...)
		if err != nil {
			return nil, fmt.Errorf("building %q: %w", id, err)
		}
		if err := ch.LearnAbility(a); err != nil {
			return nil, fmt.Errorf("building %q: %w", id, err)
		}
	}
	for _, iid := range t.Items {
		it, err := c.NewItem(iid)
		if err != nil {
			return nil, fmt.Errorf("building %q: %w", id, err)
		}
		if err := ch.Inventory().Add(it); err != nil {
			return nil, fmt.Errorf("building %q: %w", id, err)
		}
	}
	return ch, nil
}

// NewItem creates a fresh instance of item id.
func (c *Catalog) NewItem(id string) (*combat.Item, error) {
	def, ok := c.items[id]
	if !ok {
		return nil, fmt.Errorf("unknown item %q", id)
	}
	var cond *condition.ConditionDef
	if def.Condition != "" {
		cond, _ = c.conditions.Get(def.Condition)
	}
	return combat.NewItem(def, cond)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
