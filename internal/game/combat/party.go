package combat

// Party is an ordered, duplicate-free roster. Members are never removed;
// defeated members stay and are filtered with Living.
type Party struct {
	name    string
	members []*Character
}

// NewParty creates a party and adds members in order.
func NewParty(name string, members ...*Character) *Party {
	p := &Party{name: name}
	for _, m := range members {
		p.Add(m)
	}
	return p
}

// Name returns the party's display name.
func (p *Party) Name() string { return p.name }

// Add appends c unless it is nil or already a member.
//
// Postcondition: Returns true iff c was appended.
func (p *Party) Add(c *Character) bool {
	if c == nil || p.Contains(c) {
		return false
	}
	p.members = append(p.members, c)
	return true
}

// Contains reports whether c is a member.
func (p *Party) Contains(c *Character) bool { return contains(p.members, c) }

// Len returns the number of members, living or not.
func (p *Party) Len() int { return len(p.members) }

// Members returns every member in roster order.
func (p *Party) Members() []*Character {
	out := make([]*Character, len(p.members))
	copy(out, p.members)
	return out
}

// Living returns the living members in roster order.
func (p *Party) Living() []*Character {
	var out []*Character
	for _, m := range p.members {
		if m.Alive() {
			out = append(out, m)
		}
	}
	return out
}

// AnyAlive reports whether at least one member lives.
func (p *Party) AnyAlive() bool {
	for _, m := range p.members {
		if m.Alive() {
			return true
		}
	}
	return false
}
