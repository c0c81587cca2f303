package room

// FixtureView is the read-only projection of one visible fixture.
type FixtureView struct {
	ID          string
	Name        string
	State       string
	Description string
}

// ItemView is the read-only projection of one visible item.
type ItemView struct {
	ID          string
	Name        string
	Description string
}

// StateView is the read-only projection of current Room/Inventory/Flags
// state handed to external collaborators: the interpreter (visible-entity
// context), the narrator (outcome context), scene composition, and room
// scripts. Plain exported fields so tests can compare whole snapshots.
type StateView struct {
	// RoomID and Title identify the room.
	RoomID string
	Title  string
	// Brief is the room's intro description.
	Brief string
	// Turn counts successfully applied actions so far.
	Turn int
	// Escaped mirrors the terminal flag.
	Escaped bool
	// Fixtures lists visible fixtures in authored order, descriptions
	// resolved against current state.
	Fixtures []FixtureView
	// Items lists visible items lying in the room, in authored order.
	Items []ItemView
	// Inventory lists carried items in authored order.
	Inventory []ItemView
	// Flags holds every declared flag and its current value.
	Flags map[string]bool
	// FixtureStates holds every fixture's current state, hidden ones
	// included, for condition evaluation and scene composition.
	FixtureStates map[string]string
}

// Holding reports whether the item id is in the inventory.
func (v StateView) Holding(id string) bool {
	for _, it := range v.Inventory {
		if it.ID == id {
			return true
		}
	}
	return false
}

// VisibleEntity reports whether id names a fixture or room item currently
// visible to the player, or a carried item.
func (v StateView) VisibleEntity(id string) bool {
	for _, f := range v.Fixtures {
		if f.ID == id {
			return true
		}
	}
	for _, it := range v.Items {
		if it.ID == id {
			return true
		}
	}
	return v.Holding(id)
}

// State is the single authoritative, mutable room state: fixture states,
// item locations, visibility, flags, and the turn counter. All mutation
// flows through the state machine; nothing here mutates itself.
//
// Invariant: every declared item id is present in items and maps to exactly
// one location bucket.
type State struct {
	def      *Definition
	fixtures map[string]string
	items    map[string]ItemLocation
	revealed map[string]bool
	flags    map[string]bool
	turn     int
}

// NewState builds the initial runtime state from a validated definition.
//
// Precondition: def passed Validate.
// Postcondition: fixture states, item locations, and flags match the
// definition's declared initial values; nothing hidden is revealed.
func NewState(def *Definition) *State {
	s := &State{
		def:      def,
		fixtures: make(map[string]string, len(def.Fixtures)),
		items:    make(map[string]ItemLocation, len(def.Items)),
		revealed: make(map[string]bool),
		flags:    make(map[string]bool, len(def.Flags)),
	}
	for _, f := range def.Fixtures {
		s.fixtures[f.ID] = f.Initial
	}
	for _, it := range def.Items {
		s.items[it.ID] = it.Location
	}
	for _, fl := range def.Flags {
		s.flags[fl.Name] = fl.Initial
	}
	return s
}

// Clone deep-copies the state. The state machine applies effects to a clone
// and commits it whole, so a failed or abandoned turn never leaves partial
// effects behind.
func (s *State) Clone() *State {
	c := &State{
		def:      s.def,
		fixtures: make(map[string]string, len(s.fixtures)),
		items:    make(map[string]ItemLocation, len(s.items)),
		revealed: make(map[string]bool, len(s.revealed)),
		flags:    make(map[string]bool, len(s.flags)),
		turn:     s.turn,
	}
	for k, v := range s.fixtures {
		c.fixtures[k] = v
	}
	for k, v := range s.items {
		c.items[k] = v
	}
	for k, v := range s.revealed {
		c.revealed[k] = v
	}
	for k, v := range s.flags {
		c.flags[k] = v
	}
	return c
}

// Definition returns the static definition this state was built from.
func (s *State) Definition() *Definition {
	return s.def
}

// FixtureState returns the current state of a fixture.
func (s *State) FixtureState(id string) string {
	return s.fixtures[id]
}

// ItemAt returns the current location bucket of an item.
func (s *State) ItemAt(id string) ItemLocation {
	return s.items[id]
}

// Flag returns the current value of a flag.
func (s *State) Flag(name string) bool {
	return s.flags[name]
}

// Turn returns the number of successfully applied actions.
func (s *State) Turn() int {
	return s.turn
}

// Escaped reports whether the terminal flag is set.
func (s *State) Escaped() bool {
	return s.flags[s.def.TerminalFlag]
}

// FixtureVisible reports whether the fixture is visible: not authored hidden,
// or since revealed.
func (s *State) FixtureVisible(id string) bool {
	f, ok := s.def.Fixture(id)
	if !ok {
		return false
	}
	return !f.Hidden || s.revealed[id]
}

// ItemVisible reports whether the item can currently be seen: carried items
// always, room items unless still concealed, consumed items never.
func (s *State) ItemVisible(id string) bool {
	it, ok := s.def.Item(id)
	if !ok {
		return false
	}
	switch s.items[id] {
	case LocationInventory:
		return true
	case LocationRoom:
		return !it.Hidden || s.revealed[id]
	default:
		return false
	}
}

// SetFixtureState moves a fixture to a new state.
//
// Precondition: id is a declared fixture and state is in its enum (the
// state machine validates before mutating).
func (s *State) SetFixtureState(id, state string) {
	s.fixtures[id] = state
}

// SetFlag sets a flag's value.
func (s *State) SetFlag(name string, value bool) {
	s.flags[name] = value
}

// Reveal marks an entity (fixture or item) as visible from now on.
func (s *State) Reveal(id string) {
	s.revealed[id] = true
}

// RevealedNow reports whether the entity has been explicitly revealed.
func (s *State) RevealedNow(id string) bool {
	return s.revealed[id]
}

// MoveItem places an item in a new location bucket. Moving an item keeps the
// exclusivity invariant by construction: one map entry per item.
func (s *State) MoveItem(id string, to ItemLocation) {
	s.items[id] = to
}

// AdvanceTurn increments the successful-action counter.
func (s *State) AdvanceTurn() {
	s.turn++
}

// View builds the read-only projection of the current state. Descriptions
// are resolved against current flags and fixture states; hidden entities are
// excluded from the visible lists but present in FixtureStates so condition
// evaluation stays total.
func (s *State) View() StateView {
	v := StateView{
		RoomID:        s.def.ID,
		Title:         s.def.Title,
		Brief:         s.def.Brief,
		Turn:          s.turn,
		Escaped:       s.Escaped(),
		Flags:         make(map[string]bool, len(s.flags)),
		FixtureStates: make(map[string]string, len(s.fixtures)),
	}
	for k, val := range s.flags {
		v.Flags[k] = val
	}
	for k, val := range s.fixtures {
		v.FixtureStates[k] = val
	}
	for _, it := range s.def.Items {
		if s.items[it.ID] == LocationInventory {
			v.Inventory = append(v.Inventory, ItemView{
				ID:          it.ID,
				Name:        it.Name,
				Description: it.Description,
			})
		}
	}
	// Visible lists resolve last: description overrides may consult the
	// flag/state/inventory projections built above.
	for _, f := range s.def.Fixtures {
		if !s.FixtureVisible(f.ID) {
			continue
		}
		v.Fixtures = append(v.Fixtures, FixtureView{
			ID:          f.ID,
			Name:        f.Name,
			State:       s.fixtures[f.ID],
			Description: s.describeFixture(f, v),
		})
	}
	for _, it := range s.def.Items {
		if s.items[it.ID] == LocationRoom && s.ItemVisible(it.ID) {
			v.Items = append(v.Items, ItemView{
				ID:          it.ID,
				Name:        it.Name,
				Description: it.Description,
			})
		}
	}
	return v
}

// describeFixture resolves a fixture's description: the first authored
// override whose state and condition match wins, then the per-state text.
func (s *State) describeFixture(f *Fixture, v StateView) string {
	current := s.fixtures[f.ID]
	for _, o := range f.Overrides {
		if o.State != "" && o.State != current {
			continue
		}
		if !o.When.Matches(v) {
			continue
		}
		return o.Text
	}
	return f.Descriptions[current]
}
