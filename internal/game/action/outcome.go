package action

// FailureReason classifies why an action did not apply. The set is closed:
// narration and transcripts key off these values, so new reasons are a
// deliberate catalog change, never an ad-hoc string.
type FailureReason string

const (
	// FailUnknownEntity: the target identifier does not exist or has never
	// been visible to the player.
	FailUnknownEntity FailureReason = "unknown_entity"
	// FailUnsupportedAction: the interpreter returned a kind absent from the
	// catalog. A collaborator contract violation; operator-logged.
	FailUnsupportedAction FailureReason = "unsupported_action"
	// FailGameOver: a turn arrived after the terminal flag was set.
	FailGameOver FailureReason = "game_over"

	// Precondition failure reasons, declared per kind.
	FailLocked          FailureReason = "locked"
	FailAlreadyOpen     FailureReason = "already_open"
	FailAlreadyUnlocked FailureReason = "already_unlocked"
	FailAlreadyHeld     FailureReason = "already_held"
	FailNotVisible      FailureReason = "not_visible"
	FailNotHoldingItem  FailureReason = "not_holding_item"
	FailWrongKey        FailureReason = "wrong_key"
	FailWrongTool       FailureReason = "wrong_tool"
	FailNotOpenable     FailureReason = "not_openable"
	FailNotLockable     FailureReason = "not_lockable"
	FailNotPortable     FailureReason = "not_portable"
	FailNotSearchable   FailureReason = "not_searchable"
	FailImpossible      FailureReason = "impossible"
)

var validReasons = map[FailureReason]bool{
	FailUnknownEntity:     true,
	FailUnsupportedAction: true,
	FailGameOver:          true,
	FailLocked:            true,
	FailAlreadyOpen:       true,
	FailAlreadyUnlocked:   true,
	FailAlreadyHeld:       true,
	FailNotVisible:        true,
	FailNotHoldingItem:    true,
	FailWrongKey:          true,
	FailWrongTool:         true,
	FailNotOpenable:       true,
	FailNotLockable:       true,
	FailNotPortable:       true,
	FailNotSearchable:     true,
	FailImpossible:        true,
}

// authorableReasons are the failure reasons a room definition may declare on
// an interaction rule. Everything else is produced only by built-in
// precondition checks.
var authorableReasons = map[FailureReason]bool{
	FailWrongTool:  true,
	FailImpossible: true,
	FailLocked:     true,
}

// Valid reports whether r is part of the closed failure taxonomy.
func (r FailureReason) Valid() bool {
	return validReasons[r]
}

// Authorable reports whether a room definition may declare r as the failure
// reason of an interaction rule.
func (r FailureReason) Authorable() bool {
	return authorableReasons[r]
}

// Delta records exactly which facts an applied action changed. A failed or
// purely descriptive action carries an empty delta.
type Delta struct {
	// FixtureStates maps fixture id to its new state.
	FixtureStates map[string]string
	// Flags maps flag name to its new value.
	Flags map[string]bool
	// ItemMoves maps item id to its new location bucket.
	ItemMoves map[string]string
	// Revealed lists entity ids that became visible this turn.
	Revealed []string
}

// Empty reports whether the delta records no change at all.
func (d Delta) Empty() bool {
	return len(d.FixtureStates) == 0 && len(d.Flags) == 0 &&
		len(d.ItemMoves) == 0 && len(d.Revealed) == 0
}

// Outcome is the structured result of applying one Action: the sole input to
// narration and the transcript record. Facts and Message carry display names
// only, never authoring identifiers, so the narrator sees semantic facts and
// nothing else.
//
// Invariant: Success is false iff Reason is non-empty. A false Success
// implies an empty Delta (validation is side-effect-free).
type Outcome struct {
	// Action echoes the applied request.
	Action Action
	// Success reports whether the action's effects were committed.
	Success bool
	// Reason classifies the failure when Success is false.
	Reason FailureReason
	// Message is the mechanical base message: authored room text when the
	// definition provides one, an engine default otherwise. Narration
	// falls back to it verbatim when the narrator is unavailable.
	Message string
	// Facts are short declarative sentences describing what is now true,
	// in display vocabulary ("The safe swings open. Inside: a bolt cutter.").
	Facts []string
	// Delta records the state changes committed by this action.
	Delta Delta
	// Won is set when this action set the terminal flag.
	Won bool
}

// Failure builds a failed Outcome for act with the given reason and base
// message. The delta is empty by construction.
//
// Precondition: reason is in the closed taxonomy.
func Failure(act Action, reason FailureReason, message string) Outcome {
	return Outcome{
		Action:  act,
		Success: false,
		Reason:  reason,
		Message: message,
	}
}
