package pipeline

import (
	"context"

	"github.com/cory-johannsen/escaperoom/internal/game/action"
	"github.com/cory-johannsen/escaperoom/internal/game/room"
)

// Narrator turns a structured outcome into player-facing prose. Narration is
// purely descriptive; it can never alter state, and a narration failure is
// never a turn failure.
type Narrator interface {
	Narrate(ctx context.Context, req NarrationRequest) (string, error)
}

// NarrationStyle selects the register the narrator writes in.
type NarrationStyle string

const (
	// StyleTurn is the default register for ordinary turns.
	StyleTurn NarrationStyle = "turn"
	// StyleHint keeps hints atmospheric and spoiler-free.
	StyleHint NarrationStyle = "hint"
	// StyleVictory marks the turn that set the terminal flag.
	StyleVictory NarrationStyle = "victory"
	// StyleOpening introduces the room at session start.
	StyleOpening NarrationStyle = "opening"
)

// NarrationRequest is the full context handed to the narrator: the
// mechanical outcome, the post-mutation view, and the register to write in.
type NarrationRequest struct {
	Style NarrationStyle
	// Outcome carries the mechanical facts the prose must preserve.
	Outcome action.Outcome
	// View is the state after the outcome was applied.
	View room.StateView
	// Compound asks the prose to mention that only the first of several
	// requested actions was performed.
	Compound bool
}
