package engine

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/escaperoom/internal/game/action"
	"github.com/cory-johannsen/escaperoom/internal/game/room"
)

// examine describes the whole room (empty target) or a single visible
// entity. Examining never mutates.
func (m *Machine) examine(act action.Action, v room.StateView) (action.Outcome, []room.Effect) {
	if act.Target == "" {
		out := action.Outcome{Action: act, Success: true, Message: v.Brief}
		for _, f := range v.Fixtures {
			if f.Description != "" {
				out.Facts = append(out.Facts, f.Description)
			}
		}
		for _, it := range v.Items {
			out.Facts = append(out.Facts, fmt.Sprintf("There is %s here.", indefinite(it.Name)))
		}
		return out, nil
	}

	if f, ok := m.def.Fixture(act.Target); ok {
		fv, seen := fixtureView(v, f.ID)
		if !seen {
			return unknown(act), nil
		}
		msg := fv.Description
		if msg == "" {
			msg = fmt.Sprintf("It's a %s.", f.Name)
		}
		return action.Outcome{Action: act, Success: true, Message: msg}, nil
	}

	if it, ok := m.def.Item(act.Target); ok {
		if !v.VisibleEntity(it.ID) {
			return failItem(act, it, action.FailNotVisible), nil
		}
		msg := it.Description
		if msg == "" {
			msg = fmt.Sprintf("It's a %s.", it.Name)
		}
		return action.Outcome{Action: act, Success: true, Message: msg}, nil
	}

	return unknown(act), nil
}

// search looks inside or underneath a fixture, revealing what it conceals.
// The first search moves the fixture into its searched state; repeating it
// succeeds but finds nothing new.
func (m *Machine) search(act action.Action, v room.StateView) (action.Outcome, []room.Effect) {
	if it, ok := m.def.Item(act.Target); ok {
		if !v.VisibleEntity(it.ID) {
			return failItem(act, it, action.FailNotVisible), nil
		}
		return failItem(act, it, action.FailNotSearchable), nil
	}

	f, ok := m.def.Fixture(act.Target)
	if !ok || !m.st.FixtureVisible(f.ID) {
		return unknown(act), nil
	}
	if !f.Searchable {
		return failFixture(act, f, action.FailNotSearchable, ""), nil
	}
	if v.FixtureStates[f.ID] == f.SearchedState {
		return action.Outcome{
			Action:  act,
			Success: true,
			Message: fmt.Sprintf("You search the %s again and find nothing new.", f.Name),
		}, nil
	}

	out := action.Outcome{Action: act, Success: true, Message: f.SearchMessage}
	if out.Message == "" {
		out.Message = fmt.Sprintf("You search the %s.", f.Name)
	}
	effs := []room.Effect{{Kind: room.EffectSetFixtureState, Fixture: f.ID, State: f.SearchedState}}
	for _, id := range f.Conceals {
		if v.VisibleEntity(id) {
			continue
		}
		effs = append(effs, room.Effect{Kind: room.EffectRevealItem, Item: id})
		out.Facts = append(out.Facts, fmt.Sprintf("You found %s.", indefinite(m.def.EntityName(id))))
	}
	return out, effs
}

// take moves a visible, portable item into the inventory.
func (m *Machine) take(act action.Action, v room.StateView) (action.Outcome, []room.Effect) {
	if f, ok := m.def.Fixture(act.Target); ok {
		if !m.st.FixtureVisible(f.ID) {
			return unknown(act), nil
		}
		return failFixture(act, f, action.FailNotPortable, ""), nil
	}

	it, ok := m.def.Item(act.Target)
	if !ok {
		return unknown(act), nil
	}
	switch {
	case v.Holding(it.ID):
		return failItem(act, it, action.FailAlreadyHeld), nil
	case !m.st.ItemVisible(it.ID):
		return failItem(act, it, action.FailNotVisible), nil
	case !it.Portable:
		return failItem(act, it, action.FailNotPortable), nil
	}

	out := action.Outcome{Action: act, Success: true, Message: it.TakeMessage}
	if out.Message == "" {
		out.Message = fmt.Sprintf("You pick up the %s.", it.Name)
	}
	out.Facts = append(out.Facts, fmt.Sprintf("The %s is now in your inventory.", it.Name))
	return out, []room.Effect{{Kind: room.EffectMoveItem, Item: it.ID, To: room.LocationInventory}}
}

// open transitions an openable fixture into the open state and reveals its
// contents. A locked fixture refuses until unlocked.
func (m *Machine) open(act action.Action, v room.StateView) (action.Outcome, []room.Effect) {
	if it, ok := m.def.Item(act.Target); ok {
		if !v.VisibleEntity(it.ID) {
			return failItem(act, it, action.FailNotVisible), nil
		}
		return failItem(act, it, action.FailNotOpenable), nil
	}

	f, ok := m.def.Fixture(act.Target)
	if !ok || !m.st.FixtureVisible(f.ID) {
		return unknown(act), nil
	}
	if !f.Openable {
		return failFixture(act, f, action.FailNotOpenable, ""), nil
	}
	cur := v.FixtureStates[f.ID]
	if f.LockedIn(cur) {
		return failFixture(act, f, action.FailLocked, ""), nil
	}
	if cur == room.StateOpen {
		return failFixture(act, f, action.FailAlreadyOpen, ""), nil
	}

	out := action.Outcome{Action: act, Success: true, Message: f.OpenMessage}
	if out.Message == "" {
		out.Message = fmt.Sprintf("You open the %s.", f.Name)
	}
	effs := []room.Effect{{Kind: room.EffectSetFixtureState, Fixture: f.ID, State: room.StateOpen}}
	effs = m.appendRevealEffects(effs, &out, v, f)
	return out, effs
}

// unlock disengages a fixture's lock using a carried item. When the lock's
// unlocked state is the open state, unlocking opens in the same step.
func (m *Machine) unlock(act action.Action, v room.StateView) (action.Outcome, []room.Effect) {
	if it, ok := m.def.Item(act.Target); ok {
		if !v.VisibleEntity(it.ID) {
			return failItem(act, it, action.FailNotVisible), nil
		}
		return failItem(act, it, action.FailNotLockable), nil
	}

	f, ok := m.def.Fixture(act.Target)
	if !ok || !m.st.FixtureVisible(f.ID) {
		return unknown(act), nil
	}
	if f.Lock == nil {
		return failFixture(act, f, action.FailNotLockable, ""), nil
	}
	if v.FixtureStates[f.ID] != f.Lock.LockedState {
		return failFixture(act, f, action.FailAlreadyUnlocked, ""), nil
	}

	key, failOut, ok := m.requireCarried(act, v)
	if !ok {
		return failOut, nil
	}
	if key.ID != f.Lock.Key {
		return failFixture(act, f, action.FailWrongKey, key.Name), nil
	}

	out := action.Outcome{Action: act, Success: true, Message: f.UnlockMessage}
	if out.Message == "" {
		out.Message = fmt.Sprintf("You unlock the %s with the %s.", f.Name, key.Name)
	}
	effs := []room.Effect{{Kind: room.EffectSetFixtureState, Fixture: f.ID, State: f.Lock.UnlockedState}}
	if f.Lock.UnlockedState == room.StateOpen {
		effs = m.appendRevealEffects(effs, &out, v, f)
	}
	return out, effs
}

// useItemOn resolves a carried item against a target through the room's
// authored interaction rules. Rules are checked in authored order; the first
// whose conditions hold decides the outcome. No matching rule means the
// combination does nothing in this room.
func (m *Machine) useItemOn(act action.Action, v room.StateView) (action.Outcome, []room.Effect) {
	var targetName string
	if f, ok := m.def.Fixture(act.Target); ok {
		if !m.st.FixtureVisible(f.ID) {
			return unknown(act), nil
		}
		targetName = f.Name
	} else if it, ok := m.def.Item(act.Target); ok {
		if !v.VisibleEntity(it.ID) {
			return failItem(act, it, action.FailNotVisible), nil
		}
		targetName = it.Name
	} else {
		return unknown(act), nil
	}

	held, failOut, ok := m.requireCarried(act, v)
	if !ok {
		return failOut, nil
	}

	for i := range m.def.Interactions {
		in := &m.def.Interactions[i]
		if in.Item != act.Item || in.Target != act.Target {
			continue
		}
		if !in.When.Matches(v) {
			continue
		}
		if in.WhenScript != "" {
			pass, err := m.hooks.Predicate(in.WhenScript, v)
			if err != nil {
				m.logger.Warn("interaction predicate failed, skipping rule",
					zap.String("predicate", in.WhenScript),
					zap.Error(err))
				continue
			}
			if !pass {
				continue
			}
		}
		if in.Fail != nil {
			return action.Failure(act, action.FailureReason(in.Fail.Reason), in.Fail.Message), nil
		}
		out := action.Outcome{Action: act, Success: true, Message: in.Success}
		m.appendEffectFacts(&out, v, in.Effects)
		return out, in.Effects
	}

	return action.Failure(act, action.FailImpossible,
		fmt.Sprintf("The %s doesn't do anything to the %s.", held.Name, targetName)), nil
}

// inventory lists what the player is carrying. Never mutates.
func (m *Machine) inventory(act action.Action, v room.StateView) (action.Outcome, []room.Effect) {
	if len(v.Inventory) == 0 {
		return action.Outcome{Action: act, Success: true, Message: "You aren't carrying anything."}, nil
	}
	names := make([]string, len(v.Inventory))
	for i, it := range v.Inventory {
		names[i] = it.Name
	}
	return action.Outcome{
		Action:  act,
		Success: true,
		Message: fmt.Sprintf("You are carrying: %s.", strings.Join(names, ", ")),
	}, nil
}

// hint supplies a nudge toward the next step: the room script first, then
// the authored hint ladder, then the room's fallback.
func (m *Machine) hint(act action.Action, v room.StateView) (action.Outcome, []room.Effect) {
	out := action.Outcome{Action: act, Success: true}

	if text, ok, err := m.hooks.Hint(v); err != nil {
		m.logger.Warn("hint hook failed, falling back to the hint ladder", zap.Error(err))
	} else if ok {
		out.Message = text
		return out, nil
	}

	for _, h := range m.def.Hints {
		if h.When.Matches(v) {
			out.Message = h.Text
			return out, nil
		}
	}
	if m.def.HintFallback != "" {
		out.Message = m.def.HintFallback
		return out, nil
	}
	out.Message = defaultHintMessage
	return out, nil
}

// requireCarried resolves the action's secondary item and checks it is in
// hand. ok=false means the returned outcome already explains the failure.
func (m *Machine) requireCarried(act action.Action, v room.StateView) (*room.Item, action.Outcome, bool) {
	if act.Item == "" {
		return nil, action.Failure(act, action.FailNotHoldingItem, emptyHandsMessage), false
	}
	it, ok := m.def.Item(act.Item)
	if !ok {
		return nil, action.Failure(act, action.FailUnknownEntity, unknownItemMessage), false
	}
	if v.Holding(it.ID) {
		return it, action.Outcome{}, true
	}
	msg := failureText(action.FailNotHoldingItem, "", it.Name)
	if m.st.ItemVisible(it.ID) {
		msg = fmt.Sprintf("You'd need to pick up the %s first.", it.Name)
	}
	return nil, action.Failure(act, action.FailNotHoldingItem, msg), false
}

// appendRevealEffects queues reveal effects for everything the fixture
// exposes when opened, with a fact per newly visible entity.
func (m *Machine) appendRevealEffects(effs []room.Effect, out *action.Outcome, v room.StateView, f *room.Fixture) []room.Effect {
	for _, id := range f.Contains {
		if v.VisibleEntity(id) {
			continue
		}
		effs = append(effs, room.Effect{Kind: room.EffectRevealItem, Item: id})
		out.Facts = append(out.Facts, fmt.Sprintf("Inside is %s.", indefinite(m.def.EntityName(id))))
	}
	for _, id := range f.Reveals {
		if v.VisibleEntity(id) {
			continue
		}
		effs = append(effs, room.Effect{Kind: room.EffectRevealFixture, Fixture: id})
		out.Facts = append(out.Facts, fmt.Sprintf("You can now see the %s.", m.def.EntityName(id)))
	}
	return effs
}

// appendEffectFacts summarizes authored interaction effects as narration
// facts: newly revealed entities and items used up.
func (m *Machine) appendEffectFacts(out *action.Outcome, v room.StateView, effs []room.Effect) {
	for _, eff := range effs {
		switch eff.Kind {
		case room.EffectRevealItem:
			if !v.VisibleEntity(eff.Item) {
				out.Facts = append(out.Facts, fmt.Sprintf("You found %s.", indefinite(m.def.EntityName(eff.Item))))
			}
		case room.EffectRevealFixture:
			if !v.VisibleEntity(eff.Fixture) {
				out.Facts = append(out.Facts, fmt.Sprintf("You can now see the %s.", m.def.EntityName(eff.Fixture)))
			}
		case room.EffectMoveItem:
			if eff.To == room.LocationConsumed && v.Holding(eff.Item) {
				out.Facts = append(out.Facts, fmt.Sprintf("The %s is spent.", m.def.EntityName(eff.Item)))
			}
		}
	}
}

// fixtureView finds the view row for a fixture id; seen is false when the
// fixture is not currently visible.
func fixtureView(v room.StateView, id string) (room.FixtureView, bool) {
	for _, f := range v.Fixtures {
		if f.ID == id {
			return f, true
		}
	}
	return room.FixtureView{}, false
}
