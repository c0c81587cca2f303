package engine

import (
	"fmt"

	"github.com/cory-johannsen/escaperoom/internal/game/action"
	"github.com/cory-johannsen/escaperoom/internal/game/room"
)

const (
	gameOverMessage      = "You've already escaped. The game is over."
	unsupportedMessage   = "You can't do that here."
	unknownEntityMessage = "You don't see anything like that here."
	unknownItemMessage   = "You don't have anything like that."
	emptyHandsMessage    = "You don't have anything to do that with."
	defaultHintMessage   = "Try taking a closer look at what's around you."
)

// failureText returns the engine-default player text for a failure reason,
// with display names substituted. Room definitions override per entity via
// its messages table.
func failureText(reason action.FailureReason, target, item string) string {
	switch reason {
	case action.FailLocked:
		return fmt.Sprintf("The %s is locked.", target)
	case action.FailAlreadyOpen:
		return fmt.Sprintf("The %s is already open.", target)
	case action.FailAlreadyUnlocked:
		return fmt.Sprintf("The %s is already unlocked.", target)
	case action.FailAlreadyHeld:
		return fmt.Sprintf("You're already carrying the %s.", target)
	case action.FailNotVisible:
		return fmt.Sprintf("You don't see any %s here.", target)
	case action.FailNotHoldingItem:
		return fmt.Sprintf("You aren't carrying a %s.", item)
	case action.FailWrongKey:
		return fmt.Sprintf("The %s doesn't fit the lock on the %s.", item, target)
	case action.FailWrongTool:
		return fmt.Sprintf("The %s isn't the right tool for the %s.", item, target)
	case action.FailNotOpenable:
		return fmt.Sprintf("The %s doesn't open.", target)
	case action.FailNotLockable:
		return fmt.Sprintf("There's no lock on the %s.", target)
	case action.FailNotPortable:
		return fmt.Sprintf("The %s won't budge.", target)
	case action.FailNotSearchable:
		return fmt.Sprintf("You won't find anything by searching the %s.", target)
	default:
		return "That doesn't work."
	}
}

// indefinite prefixes a display name with "a" or "an" by leading vowel.
func indefinite(name string) string {
	if name == "" {
		return name
	}
	switch name[0] {
	case 'a', 'e', 'i', 'o', 'u', 'A', 'E', 'I', 'O', 'U':
		return "an " + name
	}
	return "a " + name
}

// unknown reports a target id that does not resolve to anything the player
// has ever seen.
func unknown(act action.Action) action.Outcome {
	return action.Failure(act, action.FailUnknownEntity, unknownEntityMessage)
}

// failFixture builds a failure against a fixture target, preferring the
// fixture's authored text for the reason.
func failFixture(act action.Action, f *room.Fixture, reason action.FailureReason, item string) action.Outcome {
	msg := f.Messages[string(reason)]
	if msg == "" {
		msg = failureText(reason, f.Name, item)
	}
	return action.Failure(act, reason, msg)
}

// failItem builds a failure against an item target, preferring the item's
// authored text for the reason.
func failItem(act action.Action, it *room.Item, reason action.FailureReason) action.Outcome {
	msg := it.Messages[string(reason)]
	if msg == "" {
		msg = failureText(reason, it.Name, "")
	}
	return action.Failure(act, reason, msg)
}
