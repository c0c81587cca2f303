package room

// EffectKind enumerates the closed set of state mutations an action's effect
// path may perform. Effects are declared in the room definition and applied
// only by the state machine.
type EffectKind string

const (
	EffectSetFixtureState EffectKind = "set_fixture_state"
	EffectSetFlag         EffectKind = "set_flag"
	EffectRevealItem      EffectKind = "reveal_item"
	EffectRevealFixture   EffectKind = "reveal_fixture"
	EffectMoveItem        EffectKind = "move_item"
)

// Effect is one declared mutation. Which fields are meaningful depends on
// Kind; the loader validates the per-kind shape.
type Effect struct {
	Kind EffectKind
	// Fixture and State serve set_fixture_state; Fixture alone serves
	// reveal_fixture.
	Fixture string
	State   string
	// Flag and Value serve set_flag.
	Flag  string
	Value bool
	// Item serves reveal_item and move_item; To serves move_item.
	Item string
	To   ItemLocation
}
