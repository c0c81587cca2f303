// Package action defines the closed catalog of player action kinds and the
// structured Action/Outcome vocabulary shared by the state machine, the
// resolution pipeline, and the external-service adapters.
package action

// Kind identifies one of the fixed, enumerable action kinds a player intent
// can resolve to. The set is closed: interpreters must map free text onto one
// of these or report the input as unrecognized.
type Kind string

// The action catalog. Every kind carries its own precondition and failure
// semantics in the state machine; the room definition wires the puzzle-
// specific parts (locks, reveals, item-on-target interactions).
const (
	KindExamine   Kind = "examine"
	KindSearch    Kind = "search"
	KindTake      Kind = "take"
	KindOpen      Kind = "open"
	KindUnlock    Kind = "unlock"
	KindUseItemOn Kind = "use_item_on"
	KindInventory Kind = "inventory"
	KindHint      Kind = "hint"
)

// Spec declares the shape of one action kind: what identifiers it needs and
// whether applying it may mutate state.
type Spec struct {
	// Kind is the catalog key.
	Kind Kind
	// NeedsTarget indicates the kind is meaningless without a target.
	NeedsTarget bool
	// TargetOptional marks kinds that accept an empty target (examine = whole room).
	TargetOptional bool
	// TakesItem indicates the kind requires a secondary item (unlock, use_item_on).
	TakesItem bool
	// Mutates indicates the kind's effect path may change state.
	Mutates bool
	// Brief is a one-line player-facing description of the kind, used to
	// describe the action to the interpreter service.
	Brief string
}

// catalog holds the specs in presentation order. Order is stable so
// interpreter tool lists and help output are deterministic.
var catalog = []Spec{
	{Kind: KindExamine, TargetOptional: true, Brief: "Look at the room or a specific object in it."},
	{Kind: KindSearch, NeedsTarget: true, Mutates: true, Brief: "Search, look under, or move a furnishing to see what it hides."},
	{Kind: KindTake, NeedsTarget: true, Mutates: true, Brief: "Pick up a visible item and carry it."},
	{Kind: KindOpen, NeedsTarget: true, Mutates: true, Brief: "Open a door, container, or other openable fixture."},
	{Kind: KindUnlock, NeedsTarget: true, TakesItem: true, Mutates: true, Brief: "Unlock a locked fixture using a carried item."},
	{Kind: KindUseItemOn, NeedsTarget: true, TakesItem: true, Mutates: true, Brief: "Use a carried item on something in the room."},
	{Kind: KindInventory, Brief: "List what you are carrying."},
	{Kind: KindHint, Brief: "Ask for a nudge toward the next step."},
}

var specsByKind = func() map[Kind]Spec {
	m := make(map[Kind]Spec, len(catalog))
	for _, s := range catalog {
		m[s.Kind] = s
	}
	return m
}()

// Catalog returns the action specs in stable presentation order.
// Callers must not modify the returned slice.
func Catalog() []Spec {
	return catalog
}

// SpecFor looks up the spec for a kind.
//
// Postcondition: ok is false iff k is not in the catalog.
func SpecFor(k Kind) (Spec, bool) {
	s, ok := specsByKind[k]
	return s, ok
}

// Valid reports whether k is a catalog kind.
func (k Kind) Valid() bool {
	_, ok := specsByKind[k]
	return ok
}

// Action is a structured, validated player intent: a kind from the catalog,
// a target entity identifier, and an optional secondary item identifier for
// combination kinds ("unlock the safe WITH the brass key"). It is a value
// object produced by an interpreter and consumed exactly once by the state
// machine; it carries no behavior.
type Action struct {
	Kind   Kind
	Target string
	Item   string
}
