package pipeline

import (
	"context"

	"github.com/cory-johannsen/escaperoom/internal/game/action"
	"github.com/cory-johannsen/escaperoom/internal/game/room"
)

// Interpreter turns free player text into a structured interpretation
// against the current state view. Implementations must never invent entity
// identifiers: anything outside the view passes through unchanged and the
// state machine rejects it.
type Interpreter interface {
	Interpret(ctx context.Context, raw string, v room.StateView) (Interpretation, error)
}

// InterpretationKind classifies what the interpreter made of the input.
type InterpretationKind string

const (
	// InterpretedAction: the input mapped to one catalog action.
	InterpretedAction InterpretationKind = "action"
	// InterpretedUnrecognized: the input mapped to no catalog action.
	InterpretedUnrecognized InterpretationKind = "unrecognized"
	// InterpretedPartial: the kind is clear but a required identifier is
	// missing ("open" with no target). The player is asked to complete it.
	InterpretedPartial InterpretationKind = "partial"
)

// Interpretation is the structured reading of one player input.
type Interpretation struct {
	Kind InterpretationKind
	// Action carries the structured action when Kind is InterpretedAction.
	Action action.Action
	// PartialKind carries the recognized kind when Kind is InterpretedPartial.
	PartialKind action.Kind
	// Impossible distinguishes understood-but-impossible requests ("eat the
	// door") from gibberish when Kind is InterpretedUnrecognized.
	Impossible bool
	// Compound marks that the player asked for several actions at once;
	// Action holds the first and the narration nudges the one-at-a-time rule.
	Compound bool
}
