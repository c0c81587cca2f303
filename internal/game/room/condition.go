package room

// Condition is a declarative predicate over current room state, shared by
// interaction rules, hint ladders, scene cases, and description overrides.
// All listed clauses must hold; an empty Condition always matches.
type Condition struct {
	// Flags requires each named flag to have the given value.
	Flags map[string]bool
	// Fixtures requires each fixture to be in the given state.
	Fixtures map[string]string
	// HasItems requires every listed item to be in the inventory.
	HasItems []string
	// MissingItems requires every listed item to NOT be in the inventory.
	MissingItems []string
}

// Empty reports whether the condition has no clauses.
func (c Condition) Empty() bool {
	return len(c.Flags) == 0 && len(c.Fixtures) == 0 &&
		len(c.HasItems) == 0 && len(c.MissingItems) == 0
}

// Matches evaluates the condition against a state view. Pure: no clause ever
// mutates anything.
func (c Condition) Matches(v StateView) bool {
	for name, want := range c.Flags {
		if v.Flags[name] != want {
			return false
		}
	}
	for id, want := range c.Fixtures {
		if v.FixtureStates[id] != want {
			return false
		}
	}
	for _, id := range c.HasItems {
		if !v.Holding(id) {
			return false
		}
	}
	for _, id := range c.MissingItems {
		if v.Holding(id) {
			return false
		}
	}
	return true
}
