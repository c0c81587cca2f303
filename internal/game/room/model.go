// Package room provides the escape-room entity model — fixtures, items, and
// flags — together with the declarative room definition they are loaded from
// and the runtime state built on top of it.
package room

// ItemLocation identifies the bucket an item currently occupies. Every item
// is in exactly one bucket at all times.
type ItemLocation string

const (
	// LocationRoom: the item lies somewhere in the room (possibly concealed).
	LocationRoom ItemLocation = "room"
	// LocationInventory: the player carries the item.
	LocationInventory ItemLocation = "inventory"
	// LocationConsumed: the item was used up and is gone from play.
	LocationConsumed ItemLocation = "consumed"
)

var validLocations = map[ItemLocation]bool{
	LocationRoom:      true,
	LocationInventory: true,
	LocationConsumed:  true,
}

// Valid reports whether l is one of the three location buckets.
func (l ItemLocation) Valid() bool {
	return validLocations[l]
}

// StateOpen is the fixture state every openable fixture must declare; the
// open action always transitions into it.
const StateOpen = "open"

// Lock wires a fixture to the item that disengages it. Locked-ness is not a
// separate boolean: the fixture is locked exactly while its current state
// equals LockedState.
type Lock struct {
	// Key is the item id that disengages the lock.
	Key string
	// LockedState is the fixture state meaning the lock is engaged.
	LockedState string
	// UnlockedState is the state entered when the lock disengages.
	UnlockedState string
}

// DescriptionOverride swaps in alternative description text while its
// condition holds. Overrides are checked in authored order; first match wins.
type DescriptionOverride struct {
	// State restricts the override to one fixture state. Empty = any state.
	State string
	// When must match current state for the override to apply.
	When Condition
	// Text is the replacement description.
	Text string
}

// Fixture is a furnishing the player interacts with in place: a door, a
// safe, a rug. Fixtures are immutable in shape (their state enum and
// description templates) and mutable only in current state, and only through
// the state machine.
type Fixture struct {
	// ID uniquely identifies the fixture within the room.
	ID string
	// Name is the display name used in player-facing text.
	Name string
	// States enumerates the authored state values this fixture moves through.
	States []string
	// Initial is the state at session start.
	Initial string
	// Hidden marks the fixture invisible until another fixture reveals it.
	Hidden bool
	// Openable marks the fixture as a valid open target. Requires "open" in States.
	Openable bool
	// Searchable marks the fixture as a valid search target.
	Searchable bool
	// SearchedState is the state entered after the first successful search.
	SearchedState string
	// Lock, when non-nil, gates opening until unlocked with the right key.
	Lock *Lock
	// Contains lists item ids revealed when the fixture opens.
	Contains []string
	// Conceals lists item ids revealed when the fixture is searched.
	Conceals []string
	// Reveals lists fixture ids revealed when the fixture opens.
	Reveals []string
	// Descriptions maps each state to the description shown in that state.
	Descriptions map[string]string
	// Overrides are flag-conditional description replacements.
	Overrides []DescriptionOverride
	// Messages overrides engine-default failure text per failure reason
	// (e.g. "locked" -> "The safe is locked. A keyhole glints...").
	Messages map[string]string
	// OpenMessage, SearchMessage, and UnlockMessage replace the engine's
	// default success text for the respective kinds. Empty = default.
	OpenMessage   string
	SearchMessage string
	UnlockMessage string
}

// HasState reports whether name is part of the fixture's authored enum.
func (f *Fixture) HasState(name string) bool {
	for _, s := range f.States {
		if s == name {
			return true
		}
	}
	return false
}

// LockedIn reports whether the fixture's lock is engaged in the given state.
func (f *Fixture) LockedIn(state string) bool {
	return f.Lock != nil && state == f.Lock.LockedState
}

// Item is a takeable object: it occupies exactly one location bucket and may
// start concealed until a fixture reveals it.
type Item struct {
	// ID uniquely identifies the item within the room.
	ID string
	// Name is the display name used in player-facing text.
	Name string
	// Description is shown when the item is examined.
	Description string
	// Location is the bucket the item starts in.
	Location ItemLocation
	// Hidden marks the item concealed until revealed by a search or an open.
	Hidden bool
	// Portable reports whether take can move the item to the inventory.
	Portable bool
	// Messages overrides engine-default failure text per failure reason
	// (e.g. "not_visible" -> "You don't see any key. Maybe look under the rug?").
	Messages map[string]string
	// TakeMessage replaces the engine's default take success text.
	TakeMessage string
}

// Flag declares a named boolean fact about room state independent of any
// single entity (e.g. bars_cut), with its value at session start.
type Flag struct {
	Name    string
	Initial bool
}

// InteractionFail is the authored failure of a use_item_on rule: the rule
// matched, and the room says no.
type InteractionFail struct {
	// Reason must be an authorable failure reason (wrong_tool, impossible, locked).
	Reason string
	// Message is the base text surfaced to the player.
	Message string
}

// Interaction wires one (item, target) combination of the use_item_on kind.
// Rules are evaluated in authored order and the first match wins; a match
// either applies Effects or returns Fail.
type Interaction struct {
	// Item is the carried item id being used.
	Item string
	// Target is the entity id the item is used on.
	Target string
	// When narrows the rule to states where it applies. Empty = always.
	When Condition
	// WhenScript names a Lua predicate that must also hold. Empty = none.
	WhenScript string
	// Effects are applied when the rule matches (success rules only).
	Effects []Effect
	// Success is the base message for a successful match.
	Success string
	// Fail, when non-nil, makes this a failure rule: matching it reports
	// the authored reason instead of applying effects.
	Fail *InteractionFail
}

// HintRule maps a state condition to nudge text. The hint ladder is walked
// in authored order; the first matching rule supplies the hint.
type HintRule struct {
	When Condition
	Text string
}

// SceneCase resolves one asset layer while its condition holds. A case with
// an empty condition is the slot's default.
type SceneCase struct {
	When  Condition
	Asset string
}

// SceneSlot contributes at most one asset layer to the composed scene.
// Either Asset (static layer) or Cases (state-dependent layer) is set.
type SceneSlot struct {
	// ID names the slot for authoring diagnostics.
	ID string
	// Asset is a static layer present in every state.
	Asset string
	// Cases are checked in order; the first match contributes its asset.
	// No match and no default means the slot contributes nothing.
	Cases []SceneCase
}

// Definition is the static, versioned description of one escape room: every
// entity, its state enum, initial locations and flags, and the puzzle wiring
// (locks, reveals, interactions, hints, scenes). A session owns exactly one
// Definition and never mutates it.
type Definition struct {
	// ID uniquely identifies the room.
	ID string
	// Title is the display name of the room.
	Title string
	// Brief is the atmospheric intro shown when the room is first described.
	Brief string
	// Victory is the text shown when the terminal flag is set.
	Victory string
	// TerminalFlag names the flag that, once true, ends the game.
	TerminalFlag string
	// ScriptFile is the resolved path to the room's optional Lua hook file.
	ScriptFile string
	// ScriptInstructionLimit overrides the default Lua opcode budget. 0 = default.
	ScriptInstructionLimit int
	// Flags declares the room's named boolean facts.
	Flags []Flag
	// Fixtures in authored order; order drives display and scene stability.
	Fixtures []*Fixture
	// Items in authored order.
	Items []*Item
	// Interactions wires the use_item_on kind for this room.
	Interactions []Interaction
	// Hints is the ordered nudge ladder, walked when a Lua hint hook is
	// absent or declines.
	Hints []HintRule
	// HintFallback is the hint of last resort.
	HintFallback string
	// Scenes composes the layered asset selector from current state.
	Scenes []SceneSlot
}

// Fixture returns the fixture with the given id.
//
// Postcondition: ok is false iff no fixture has that id.
func (d *Definition) Fixture(id string) (*Fixture, bool) {
	for _, f := range d.Fixtures {
		if f.ID == id {
			return f, true
		}
	}
	return nil, false
}

// Item returns the item with the given id.
//
// Postcondition: ok is false iff no item has that id.
func (d *Definition) Item(id string) (*Item, bool) {
	for _, it := range d.Items {
		if it.ID == id {
			return it, true
		}
	}
	return nil, false
}

// HasFlag reports whether name is a declared flag.
func (d *Definition) HasFlag(name string) bool {
	for _, f := range d.Flags {
		if f.Name == name {
			return true
		}
	}
	return false
}

// HasEntity reports whether id names a declared fixture or item. Fixtures
// and items share one identifier namespace.
func (d *Definition) HasEntity(id string) bool {
	if _, ok := d.Fixture(id); ok {
		return true
	}
	_, ok := d.Item(id)
	return ok
}

// EntityName returns the display name for an entity id, falling back to the
// id itself for unknown entities (caller decides whether that is an error).
func (d *Definition) EntityName(id string) string {
	if f, ok := d.Fixture(id); ok {
		return f.Name
	}
	if it, ok := d.Item(id); ok {
		return it.Name
	}
	return id
}
