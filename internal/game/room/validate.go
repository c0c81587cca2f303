package room

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/escaperoom/internal/game/action"
)

// Validate checks every invariant a room definition must satisfy before a
// session may be built on it. All problems are collected so an author sees
// the full list in one pass, not one complaint per edit-reload cycle.
//
// Precondition: d is non-nil.
// Postcondition: returns nil iff the definition is playable.
func (d *Definition) Validate() error {
	var errs []error

	if d.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if d.Title == "" {
		errs = append(errs, errors.New("title must not be empty"))
	}
	if d.Brief == "" {
		errs = append(errs, errors.New("brief must not be empty"))
	}
	if d.TerminalFlag == "" {
		errs = append(errs, errors.New("terminal_flag must not be empty"))
	} else if !d.HasFlag(d.TerminalFlag) {
		errs = append(errs, fmt.Errorf("terminal_flag %q is not a declared flag", d.TerminalFlag))
	}
	if d.Victory == "" {
		errs = append(errs, errors.New("victory text must not be empty"))
	}

	errs = append(errs, d.validateIdentifiers()...)
	for _, f := range d.Fixtures {
		errs = append(errs, d.validateFixture(f)...)
	}
	for _, it := range d.Items {
		errs = append(errs, d.validateItem(it)...)
	}
	for i := range d.Interactions {
		errs = append(errs, d.validateInteraction(i, &d.Interactions[i])...)
	}
	for i, h := range d.Hints {
		where := fmt.Sprintf("hint %d", i)
		if h.Text == "" {
			errs = append(errs, fmt.Errorf("%s: text must not be empty", where))
		}
		errs = append(errs, d.validateCondition(h.When, where)...)
	}
	errs = append(errs, d.validateScenes()...)

	if d.TerminalFlag != "" && d.HasFlag(d.TerminalFlag) && !d.winnable() {
		errs = append(errs, fmt.Errorf("no interaction effect ever sets terminal_flag %q: the room cannot be won", d.TerminalFlag))
	}

	if len(errs) > 0 {
		return fmt.Errorf("room %q validation failed: %v", d.ID, errs)
	}
	return nil
}

// validateIdentifiers checks that fixtures, items, and flags declare unique,
// non-colliding identifiers. Fixtures and items share one namespace so an
// action target is never ambiguous.
func (d *Definition) validateIdentifiers() []error {
	var errs []error
	seen := make(map[string]string)

	for _, f := range d.Fixtures {
		if f.ID == "" {
			errs = append(errs, errors.New("fixture with empty id"))
			continue
		}
		if prev, dup := seen[f.ID]; dup {
			errs = append(errs, fmt.Errorf("entity id %q declared twice (%s and fixture)", f.ID, prev))
		}
		seen[f.ID] = "fixture"
	}
	for _, it := range d.Items {
		if it.ID == "" {
			errs = append(errs, errors.New("item with empty id"))
			continue
		}
		if prev, dup := seen[it.ID]; dup {
			errs = append(errs, fmt.Errorf("entity id %q declared twice (%s and item)", it.ID, prev))
		}
		seen[it.ID] = "item"
	}

	flags := make(map[string]bool)
	for _, fl := range d.Flags {
		if fl.Name == "" {
			errs = append(errs, errors.New("flag with empty name"))
			continue
		}
		if flags[fl.Name] {
			errs = append(errs, fmt.Errorf("flag %q declared twice", fl.Name))
		}
		flags[fl.Name] = true
	}
	return errs
}

func (d *Definition) validateFixture(f *Fixture) []error {
	var errs []error
	where := fmt.Sprintf("fixture %q", f.ID)

	if f.Name == "" {
		errs = append(errs, fmt.Errorf("%s: name must not be empty", where))
	}
	if len(f.States) == 0 {
		errs = append(errs, fmt.Errorf("%s: must declare at least one state", where))
	}
	if !f.HasState(f.Initial) {
		errs = append(errs, fmt.Errorf("%s: initial state %q not in states %v", where, f.Initial, f.States))
	}
	for state := range f.Descriptions {
		if !f.HasState(state) {
			errs = append(errs, fmt.Errorf("%s: description for unknown state %q", where, state))
		}
	}
	if f.Openable && !f.HasState(StateOpen) {
		errs = append(errs, fmt.Errorf("%s: openable fixtures must declare the %q state", where, StateOpen))
	}
	if f.Searchable {
		if f.SearchedState == "" {
			errs = append(errs, fmt.Errorf("%s: searchable fixtures must declare searched_state", where))
		} else if !f.HasState(f.SearchedState) {
			errs = append(errs, fmt.Errorf("%s: searched_state %q not in states %v", where, f.SearchedState, f.States))
		}
	}
	if f.Lock != nil {
		if _, ok := d.Item(f.Lock.Key); !ok {
			errs = append(errs, fmt.Errorf("%s: lock key %q is not a declared item", where, f.Lock.Key))
		}
		if !f.HasState(f.Lock.LockedState) {
			errs = append(errs, fmt.Errorf("%s: lock locked_state %q not in states %v", where, f.Lock.LockedState, f.States))
		}
		if !f.HasState(f.Lock.UnlockedState) {
			errs = append(errs, fmt.Errorf("%s: lock unlocked_state %q not in states %v", where, f.Lock.UnlockedState, f.States))
		}
	}
	if len(f.Contains) > 0 && !f.Openable {
		errs = append(errs, fmt.Errorf("%s: contains requires openable", where))
	}
	if len(f.Conceals) > 0 && !f.Searchable {
		errs = append(errs, fmt.Errorf("%s: conceals requires searchable", where))
	}
	for _, id := range f.Contains {
		if _, ok := d.Item(id); !ok {
			errs = append(errs, fmt.Errorf("%s: contains unknown item %q", where, id))
		}
	}
	for _, id := range f.Conceals {
		if _, ok := d.Item(id); !ok {
			errs = append(errs, fmt.Errorf("%s: conceals unknown item %q", where, id))
		}
	}
	for _, id := range f.Reveals {
		if _, ok := d.Fixture(id); !ok {
			errs = append(errs, fmt.Errorf("%s: reveals unknown fixture %q", where, id))
		}
	}
	for reason := range f.Messages {
		if !action.FailureReason(reason).Valid() {
			errs = append(errs, fmt.Errorf("%s: message for unknown failure reason %q", where, reason))
		}
	}
	for i, o := range f.Overrides {
		if o.Text == "" {
			errs = append(errs, fmt.Errorf("%s: override %d: text must not be empty", where, i))
		}
		if o.State != "" && !f.HasState(o.State) {
			errs = append(errs, fmt.Errorf("%s: override %d: unknown state %q", where, i, o.State))
		}
		errs = append(errs, d.validateCondition(o.When, fmt.Sprintf("%s override %d", where, i))...)
	}
	return errs
}

func (d *Definition) validateItem(it *Item) []error {
	var errs []error
	where := fmt.Sprintf("item %q", it.ID)

	if it.Name == "" {
		errs = append(errs, fmt.Errorf("%s: name must not be empty", where))
	}
	if !it.Location.Valid() {
		errs = append(errs, fmt.Errorf("%s: location must be one of room, inventory, consumed; got %q", where, it.Location))
	}
	if it.Hidden && it.Location != LocationRoom {
		errs = append(errs, fmt.Errorf("%s: hidden items must start in the room", where))
	}
	for reason := range it.Messages {
		if !action.FailureReason(reason).Valid() {
			errs = append(errs, fmt.Errorf("%s: message for unknown failure reason %q", where, reason))
		}
	}
	return errs
}

func (d *Definition) validateInteraction(idx int, in *Interaction) []error {
	var errs []error
	where := fmt.Sprintf("interaction %d (%s on %s)", idx, in.Item, in.Target)

	if _, ok := d.Item(in.Item); !ok {
		errs = append(errs, fmt.Errorf("%s: item %q is not declared", where, in.Item))
	}
	if !d.HasEntity(in.Target) {
		errs = append(errs, fmt.Errorf("%s: target %q is not declared", where, in.Target))
	}
	if in.WhenScript != "" && d.ScriptFile == "" {
		errs = append(errs, fmt.Errorf("%s: when_script requires the room to declare a script file", where))
	}
	errs = append(errs, d.validateCondition(in.When, where)...)

	switch {
	case in.Fail != nil && len(in.Effects) > 0:
		errs = append(errs, fmt.Errorf("%s: rule cannot both fail and apply effects", where))
	case in.Fail != nil:
		reason := action.FailureReason(in.Fail.Reason)
		if !reason.Authorable() {
			errs = append(errs, fmt.Errorf("%s: failure reason %q is not authorable", where, in.Fail.Reason))
		}
		if in.Fail.Message == "" {
			errs = append(errs, fmt.Errorf("%s: failure message must not be empty", where))
		}
	case len(in.Effects) > 0:
		if in.Success == "" {
			errs = append(errs, fmt.Errorf("%s: success message must not be empty", where))
		}
		for j, eff := range in.Effects {
			errs = append(errs, d.validateEffect(eff, fmt.Sprintf("%s effect %d", where, j))...)
		}
	default:
		errs = append(errs, fmt.Errorf("%s: rule must declare effects or a fail", where))
	}
	return errs
}

func (d *Definition) validateEffect(eff Effect, where string) []error {
	var errs []error
	switch eff.Kind {
	case EffectSetFixtureState:
		f, ok := d.Fixture(eff.Fixture)
		if !ok {
			errs = append(errs, fmt.Errorf("%s: set_fixture targets unknown fixture %q", where, eff.Fixture))
		} else if !f.HasState(eff.State) {
			errs = append(errs, fmt.Errorf("%s: set_fixture state %q not in %q's states", where, eff.State, eff.Fixture))
		}
	case EffectSetFlag:
		if !d.HasFlag(eff.Flag) {
			errs = append(errs, fmt.Errorf("%s: set_flag targets unknown flag %q", where, eff.Flag))
		}
	case EffectRevealItem:
		if _, ok := d.Item(eff.Item); !ok {
			errs = append(errs, fmt.Errorf("%s: reveal_item targets unknown item %q", where, eff.Item))
		}
	case EffectRevealFixture:
		if _, ok := d.Fixture(eff.Fixture); !ok {
			errs = append(errs, fmt.Errorf("%s: reveal_fixture targets unknown fixture %q", where, eff.Fixture))
		}
	case EffectMoveItem:
		if _, ok := d.Item(eff.Item); !ok {
			errs = append(errs, fmt.Errorf("%s: move_item targets unknown item %q", where, eff.Item))
		}
		if !eff.To.Valid() {
			errs = append(errs, fmt.Errorf("%s: move_item destination %q invalid", where, eff.To))
		}
	default:
		errs = append(errs, fmt.Errorf("%s: unknown effect kind %q", where, eff.Kind))
	}
	return errs
}

func (d *Definition) validateCondition(c Condition, where string) []error {
	var errs []error
	for name := range c.Flags {
		if !d.HasFlag(name) {
			errs = append(errs, fmt.Errorf("%s: condition references unknown flag %q", where, name))
		}
	}
	for id, state := range c.Fixtures {
		f, ok := d.Fixture(id)
		if !ok {
			errs = append(errs, fmt.Errorf("%s: condition references unknown fixture %q", where, id))
			continue
		}
		if !f.HasState(state) {
			errs = append(errs, fmt.Errorf("%s: condition wants fixture %q in unknown state %q", where, id, state))
		}
	}
	for _, id := range c.HasItems {
		if _, ok := d.Item(id); !ok {
			errs = append(errs, fmt.Errorf("%s: condition references unknown item %q", where, id))
		}
	}
	for _, id := range c.MissingItems {
		if _, ok := d.Item(id); !ok {
			errs = append(errs, fmt.Errorf("%s: condition references unknown item %q", where, id))
		}
	}
	return errs
}

func (d *Definition) validateScenes() []error {
	var errs []error
	for i, slot := range d.Scenes {
		where := fmt.Sprintf("scene slot %d (%s)", i, slot.ID)
		if slot.Asset != "" && len(slot.Cases) > 0 {
			errs = append(errs, fmt.Errorf("%s: declare asset or cases, not both", where))
		}
		if slot.Asset == "" && len(slot.Cases) == 0 {
			errs = append(errs, fmt.Errorf("%s: slot contributes nothing", where))
		}
		for j, c := range slot.Cases {
			if c.Asset == "" {
				errs = append(errs, fmt.Errorf("%s case %d: asset must not be empty", where, j))
			}
			errs = append(errs, d.validateCondition(c.When, fmt.Sprintf("%s case %d", where, j))...)
		}
	}
	return errs
}

// winnable reports whether any interaction effect can set the terminal flag.
func (d *Definition) winnable() bool {
	for _, in := range d.Interactions {
		for _, eff := range in.Effects {
			if eff.Kind == EffectSetFlag && eff.Flag == d.TerminalFlag && eff.Value {
				return true
			}
		}
	}
	return false
}
