package engine

import (
	"github.com/cory-johannsen/escaperoom/internal/game/room"
	"github.com/cory-johannsen/escaperoom/internal/scripting"
)

// LuaHooks adapts a loaded room script to the ScriptHooks interface,
// projecting each state view into the plain-table shape scripts consume.
type LuaHooks struct {
	Script *scripting.Script
}

func (h LuaHooks) Predicate(name string, v room.StateView) (bool, error) {
	return h.Script.Predicate(name, scriptState(v))
}

func (h LuaHooks) Hint(v room.StateView) (string, bool, error) {
	return h.Script.Hint(scriptState(v))
}

// scriptState flattens a view into the documented room-script table:
//
//	state.room        room id
//	state.turn        successful actions so far
//	state.escaped     terminal flag
//	state.flags       flag name -> bool
//	state.fixtures    fixture id -> current state
//	state.inventory   carried item id -> true
func scriptState(v room.StateView) map[string]any {
	inv := make(map[string]bool, len(v.Inventory))
	for _, it := range v.Inventory {
		inv[it.ID] = true
	}
	return map[string]any{
		"room":      v.RoomID,
		"turn":      v.Turn,
		"escaped":   v.Escaped,
		"flags":     v.Flags,
		"fixtures":  v.FixtureStates,
		"inventory": inv,
	}
}
