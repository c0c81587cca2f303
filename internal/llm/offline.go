package llm

import (
	"context"
	"strings"

	"github.com/cory-johannsen/escaperoom/internal/game/action"
	"github.com/cory-johannsen/escaperoom/internal/game/pipeline"
	"github.com/cory-johannsen/escaperoom/internal/game/room"
)

// KeywordInterpreter is the deterministic offline stand-in for the model
// interpreter: plain verb prefixes, display names resolved against the view.
// It exists for network-free play and deterministic end-to-end tests, not
// for linguistic coverage.
type KeywordInterpreter struct{}

// verbRule maps an input prefix to an action kind. Rules are checked in
// order, longest and most specific prefixes first.
type verbRule struct {
	prefix string
	kind   action.Kind
}

var verbRules = []verbRule{
	{"look under ", action.KindSearch},
	{"look behind ", action.KindSearch},
	{"look at ", action.KindExamine},
	{"look around", action.KindExamine},
	{"pick up ", action.KindTake},
	{"search ", action.KindSearch},
	{"rummage through ", action.KindSearch},
	{"examine ", action.KindExamine},
	{"inspect ", action.KindExamine},
	{"check ", action.KindExamine},
	{"take ", action.KindTake},
	{"grab ", action.KindTake},
	{"get ", action.KindTake},
	{"open ", action.KindOpen},
	{"unlock ", action.KindUnlock},
	{"use ", action.KindUseItemOn},
}

// bareCommands are complete inputs on their own.
var bareCommands = map[string]action.Kind{
	"look":      action.KindExamine,
	"l":         action.KindExamine,
	"inventory": action.KindInventory,
	"inv":       action.KindInventory,
	"i":         action.KindInventory,
	"hint":      action.KindHint,
	"help":      action.KindHint,
	"search":    action.KindSearch,
	"open":      action.KindOpen,
	"unlock":    action.KindUnlock,
	"take":      action.KindTake,
	"use":       action.KindUseItemOn,
	"examine":   action.KindExamine,
}

// impossibleVerbs are understood requests the room cannot support.
var impossibleVerbs = []string{
	"go ", "walk ", "run ", "climb ", "jump", "eat ", "drink ",
	"talk ", "shout", "yell", "break ", "smash ", "kick ", "push ", "pull ",
}

// Interpret maps the input without any network call.
func (KeywordInterpreter) Interpret(_ context.Context, raw string, v room.StateView) (pipeline.Interpretation, error) {
	text := normalize(raw)
	if text == "" {
		return pipeline.Interpretation{Kind: pipeline.InterpretedUnrecognized}, nil
	}

	first, compound := splitCompound(text)
	in := interpretOne(first, v)
	in.Compound = in.Kind == pipeline.InterpretedAction && compound
	return in, nil
}

func interpretOne(text string, v room.StateView) pipeline.Interpretation {
	if kind, ok := bareCommands[text]; ok {
		spec, _ := action.SpecFor(kind)
		if spec.NeedsTarget {
			return pipeline.Interpretation{Kind: pipeline.InterpretedPartial, PartialKind: kind}
		}
		return pipeline.Interpretation{
			Kind:   pipeline.InterpretedAction,
			Action: action.Action{Kind: kind},
		}
	}

	for _, rule := range verbRules {
		if !strings.HasPrefix(text, rule.prefix) {
			continue
		}
		rest := strings.TrimSpace(strings.TrimPrefix(text, rule.prefix))
		return buildAction(rule.kind, rest, v)
	}

	for _, verb := range impossibleVerbs {
		if strings.HasPrefix(text, verb) {
			return pipeline.Interpretation{Kind: pipeline.InterpretedUnrecognized, Impossible: true}
		}
	}
	return pipeline.Interpretation{Kind: pipeline.InterpretedUnrecognized}
}

func buildAction(kind action.Kind, rest string, v room.StateView) pipeline.Interpretation {
	spec, _ := action.SpecFor(kind)

	var targetPhrase, itemPhrase string
	switch kind {
	case action.KindUnlock:
		// "unlock the safe with the brass key"
		targetPhrase, itemPhrase = splitPair(rest, " with ", " using ")
	case action.KindUseItemOn:
		// "use the brass key on the safe"
		itemPhrase, targetPhrase = splitPair(rest, " on ", " against ")
	case action.KindExamine:
		targetPhrase = rest
		if whole := stripArticles(targetPhrase); whole == "room" || whole == "around" || whole == "here" {
			targetPhrase = ""
		}
	default:
		targetPhrase = rest
	}

	target := resolveEntity(targetPhrase, v)
	item := resolveEntity(itemPhrase, v)

	if spec.NeedsTarget && target == "" {
		return pipeline.Interpretation{Kind: pipeline.InterpretedPartial, PartialKind: kind}
	}
	if spec.TakesItem && item == "" {
		return pipeline.Interpretation{Kind: pipeline.InterpretedPartial, PartialKind: kind}
	}
	return pipeline.Interpretation{
		Kind:   pipeline.InterpretedAction,
		Action: action.Action{Kind: kind, Target: target, Item: item},
	}
}

// splitPair splits "A <sep> B" on the first separator present.
func splitPair(text string, seps ...string) (string, string) {
	for _, sep := range seps {
		if idx := strings.Index(text, sep); idx >= 0 {
			return strings.TrimSpace(text[:idx]), strings.TrimSpace(text[idx+len(sep):])
		}
	}
	return strings.TrimSpace(text), ""
}

// splitCompound peels the first request off "A and B" / "A then B" inputs.
func splitCompound(text string) (string, bool) {
	for _, sep := range []string{" and then ", " then ", " and "} {
		if idx := strings.Index(text, sep); idx > 0 {
			return strings.TrimSpace(text[:idx]), true
		}
	}
	return text, false
}

// resolveEntity maps a spoken phrase to a visible entity id: exact id,
// exact display name, then name containment. Unresolved phrases pass through
// underscored so the engine reports them as unknown.
func resolveEntity(phrase string, v room.StateView) string {
	phrase = stripArticles(phrase)
	if phrase == "" {
		return ""
	}
	type candidate struct{ id, name string }
	candidates := make([]candidate, 0, len(v.Fixtures)+len(v.Items)+len(v.Inventory))
	for _, f := range v.Fixtures {
		candidates = append(candidates, candidate{f.ID, f.Name})
	}
	for _, it := range v.Items {
		candidates = append(candidates, candidate{it.ID, it.Name})
	}
	for _, it := range v.Inventory {
		candidates = append(candidates, candidate{it.ID, it.Name})
	}

	underscored := strings.ReplaceAll(phrase, " ", "_")
	for _, c := range candidates {
		if c.id == underscored {
			return c.id
		}
	}
	for _, c := range candidates {
		if strings.EqualFold(c.name, phrase) {
			return c.id
		}
	}
	for _, c := range candidates {
		name := strings.ToLower(c.name)
		if strings.Contains(name, phrase) || strings.Contains(phrase, name) {
			return c.id
		}
	}
	return underscored
}

func stripArticles(phrase string) string {
	phrase = strings.TrimSpace(phrase)
	for _, art := range []string{"the ", "a ", "an ", "my "} {
		if strings.HasPrefix(phrase, art) {
			return strings.TrimSpace(strings.TrimPrefix(phrase, art))
		}
	}
	return phrase
}

func normalize(raw string) string {
	text := strings.ToLower(strings.TrimSpace(raw))
	text = strings.Trim(text, ".!?")
	return strings.Join(strings.Fields(text), " ")
}

// EchoNarrator is the offline narrator: it passes the mechanical text
// through untouched so play stays fully deterministic.
type EchoNarrator struct{}

// Narrate returns the outcome's mechanical text.
func (EchoNarrator) Narrate(_ context.Context, req pipeline.NarrationRequest) (string, error) {
	text := pipeline.MechanicalText(req.Outcome)
	if req.Compound {
		text += " One thing at a time in here."
	}
	return text, nil
}
