package pipeline

import "github.com/cory-johannsen/escaperoom/internal/game/scene"

// ResultKind tells the front end what class of reply it is rendering.
type ResultKind string

const (
	// ResultNarrated: a turn went through the state machine and was narrated.
	ResultNarrated ResultKind = "narrated"
	// ResultClarification: the input needs a follow-up from the player; no
	// turn was consumed.
	ResultClarification ResultKind = "clarification"
	// ResultRetry: an external service failed; the input is safe to re-issue
	// because no turn was consumed.
	ResultRetry ResultKind = "retry"
	// ResultGameOver: the game has ended, either on this turn or earlier.
	ResultGameOver ResultKind = "gameover"
)

// DisplayResult is the single reply type any front end renders: the prose to
// show, the scene selector to draw, and enough classification to drive
// prompts and victory banners.
type DisplayResult struct {
	// Text is the player-facing prose.
	Text string
	// Scene selects the visual composition for the post-turn state.
	Scene scene.Selector
	// Won is set exactly on the turn that set the terminal flag.
	Won bool
	// Kind classifies the reply.
	Kind ResultKind
}
