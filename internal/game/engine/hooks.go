package engine

import "github.com/cory-johannsen/escaperoom/internal/game/room"

// ScriptHooks is the room-script surface the state machine calls into.
// Implementations must be deterministic for a given view: same view, same
// answer.
type ScriptHooks interface {
	// Predicate evaluates the named script predicate against the view. An
	// error makes the calling rule fail closed.
	Predicate(name string, v room.StateView) (bool, error)
	// Hint asks the script for a hint. ok is false when the script declines
	// and the authored hint ladder should be consulted instead.
	Hint(v room.StateView) (text string, ok bool, err error)
}

// NopHooks declines every predicate and hint. Used for rooms without a
// script file.
type NopHooks struct{}

func (NopHooks) Predicate(string, room.StateView) (bool, error) { return false, nil }

func (NopHooks) Hint(room.StateView) (string, bool, error) { return "", false, nil }
