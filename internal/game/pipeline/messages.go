package pipeline

import (
	"strings"

	"github.com/cory-johannsen/escaperoom/internal/game/action"
)

const retryMessage = "Something went wrong resolving that. Give it another try."

const compoundNudge = "One thing at a time in here."

// Clarification flavors rotate deterministically by turn count so identical
// states produce identical prompts while repeated fumbling still varies.
var gibberishClarifications = []string{
	"I didn't catch that. Try a plain verb, like \"open the door\" or \"take the key\".",
	"That didn't read as an action. Look, search, take, open, unlock, use: those work.",
}

var impossibleClarifications = []string{
	"That isn't something you can do in this room. Take a closer look at what's here.",
	"The room doesn't offer that. Try working with what you can actually see.",
}

// clarificationFor picks the canned clarification for an unrecognized input,
// rotating flavors by turn count.
func clarificationFor(in Interpretation, turn int) string {
	pool := gibberishClarifications
	if in.Impossible {
		pool = impossibleClarifications
	}
	return pool[turn%len(pool)]
}

// partialQuestion asks the player to complete a half-specified action.
func partialQuestion(kind action.Kind) string {
	switch kind {
	case action.KindExamine:
		return "Examine what?"
	case action.KindSearch:
		return "Search what?"
	case action.KindTake:
		return "Take what?"
	case action.KindOpen:
		return "Open what?"
	case action.KindUnlock:
		return "Unlock what, and with which item?"
	case action.KindUseItemOn:
		return "Use which item, and on what?"
	default:
		return "What exactly would you like to do?"
	}
}

// MechanicalText renders an outcome without a narrator: the base message
// followed by each recorded fact. It is the fallback when narration fails
// and the pass-through used by offline play.
func MechanicalText(out action.Outcome) string {
	parts := make([]string, 0, 1+len(out.Facts))
	if out.Message != "" {
		parts = append(parts, out.Message)
	}
	parts = append(parts, out.Facts...)
	return strings.Join(parts, " ")
}
