// Package engine implements the room state machine: it validates structured
// actions against current room state, applies their effects atomically, and
// reports each result as a structured Outcome for narration and transcripts.
package engine

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/escaperoom/internal/game/action"
	"github.com/cory-johannsen/escaperoom/internal/game/room"
)

// kindHandler validates one action kind against the given view and, on
// success, returns the effects to apply. Handlers never mutate state; the
// Machine owns the commit.
type kindHandler func(m *Machine, act action.Action, v room.StateView) (action.Outcome, []room.Effect)

var handlers = map[action.Kind]kindHandler{
	action.KindExamine:   (*Machine).examine,
	action.KindSearch:    (*Machine).search,
	action.KindTake:      (*Machine).take,
	action.KindOpen:      (*Machine).open,
	action.KindUnlock:    (*Machine).unlock,
	action.KindUseItemOn: (*Machine).useItemOn,
	action.KindInventory: (*Machine).inventory,
	action.KindHint:      (*Machine).hint,
}

// Machine is the single authority over one room's mutable state. All
// gameplay mutation flows through Apply; everything else reads snapshots.
//
// Machine is not safe for concurrent use. The session layer serializes
// access, matching the one-player-per-room model.
type Machine struct {
	def    *room.Definition
	st     *room.State
	hooks  ScriptHooks
	logger *zap.Logger
}

// NewMachine builds a state machine over a validated room definition.
//
// Precondition: def passed Validate.
func NewMachine(def *room.Definition, hooks ScriptHooks, logger *zap.Logger) *Machine {
	if hooks == nil {
		hooks = NopHooks{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Machine{
		def:    def,
		st:     room.NewState(def),
		hooks:  hooks,
		logger: logger,
	}
}

// Definition returns the static room definition the machine runs.
func (m *Machine) Definition() *room.Definition {
	return m.def
}

// Snapshot returns the read-only projection of current state.
func (m *Machine) Snapshot() room.StateView {
	return m.st.View()
}

// Turn returns the number of successfully applied actions.
func (m *Machine) Turn() int {
	return m.st.Turn()
}

// Won reports whether the terminal flag has been set.
func (m *Machine) Won() bool {
	return m.st.Escaped()
}

// Reset discards all progress and rebuilds the initial state.
func (m *Machine) Reset() {
	m.st = room.NewState(m.def)
}

// Describe reports the current room description as an examine outcome
// without consuming a turn. Session openings and front-end look commands
// use it to show the room for free.
func (m *Machine) Describe() action.Outcome {
	out, _ := m.examine(action.Action{Kind: action.KindExamine}, m.st.View())
	return out
}

// Apply validates one action against current state and, if every
// precondition holds, applies its effects as a single atomic step.
//
// Postcondition: on failure the state is bit-for-bit unchanged, the turn
// counter included. On success all effects and the turn increment are
// committed together, and the outcome's delta records exactly what changed.
func (m *Machine) Apply(act action.Action) action.Outcome {
	if m.st.Escaped() {
		return action.Failure(act, action.FailGameOver, gameOverMessage)
	}

	h, ok := handlers[act.Kind]
	if !ok {
		m.logger.Warn("action kind outside the catalog",
			zap.String("kind", string(act.Kind)),
			zap.String("target", act.Target))
		return action.Failure(act, action.FailUnsupportedAction, unsupportedMessage)
	}

	out, effs := h(m, act, m.st.View())
	if !out.Success {
		return out
	}

	// Commit path: apply effects to a clone, then swap it in whole.
	next := m.st.Clone()
	out.Delta = applyEffects(next, effs)
	next.AdvanceTurn()
	won := !m.st.Escaped() && next.Escaped()
	m.st = next

	if won {
		out.Won = true
		if m.def.Victory != "" {
			out.Facts = append(out.Facts, m.def.Victory)
		}
	}
	return out
}

// applyEffects performs each declared mutation on the pending state and
// returns the delta of facts that actually changed. Re-stating a fixture
// state, re-setting a flag, or re-revealing a visible entity records
// nothing.
func applyEffects(next *room.State, effs []room.Effect) action.Delta {
	var d action.Delta
	for _, eff := range effs {
		switch eff.Kind {
		case room.EffectSetFixtureState:
			if next.FixtureState(eff.Fixture) == eff.State {
				continue
			}
			next.SetFixtureState(eff.Fixture, eff.State)
			if d.FixtureStates == nil {
				d.FixtureStates = make(map[string]string)
			}
			d.FixtureStates[eff.Fixture] = eff.State
		case room.EffectSetFlag:
			if next.Flag(eff.Flag) == eff.Value {
				continue
			}
			next.SetFlag(eff.Flag, eff.Value)
			if d.Flags == nil {
				d.Flags = make(map[string]bool)
			}
			d.Flags[eff.Flag] = eff.Value
		case room.EffectRevealItem:
			if next.ItemVisible(eff.Item) {
				continue
			}
			next.Reveal(eff.Item)
			d.Revealed = append(d.Revealed, eff.Item)
		case room.EffectRevealFixture:
			if next.FixtureVisible(eff.Fixture) {
				continue
			}
			next.Reveal(eff.Fixture)
			d.Revealed = append(d.Revealed, eff.Fixture)
		case room.EffectMoveItem:
			if next.ItemAt(eff.Item) == eff.To {
				continue
			}
			next.MoveItem(eff.Item, eff.To)
			if d.ItemMoves == nil {
				d.ItemMoves = make(map[string]string)
			}
			d.ItemMoves[eff.Item] = string(eff.To)
		}
	}
	return d
}
