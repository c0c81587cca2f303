package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/escaperoom/internal/game/action"
	"github.com/cory-johannsen/escaperoom/internal/game/pipeline"
)

func TestKeywordInterpreter_Phrases(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  pipeline.Interpretation
	}{
		{
			name:  "take with article and display name",
			input: "take the brass key",
			want: pipeline.Interpretation{
				Kind:   pipeline.InterpretedAction,
				Action: action.Action{Kind: action.KindTake, Target: "brass_key"},
			},
		},
		{
			name:  "case and punctuation are normalized",
			input: "  Take the Brass Key!  ",
			want: pipeline.Interpretation{
				Kind:   pipeline.InterpretedAction,
				Action: action.Action{Kind: action.KindTake, Target: "brass_key"},
			},
		},
		{
			name:  "partial name resolves by containment",
			input: "grab key",
			want: pipeline.Interpretation{
				Kind:   pipeline.InterpretedAction,
				Action: action.Action{Kind: action.KindTake, Target: "brass_key"},
			},
		},
		{
			name:  "bare look examines the room",
			input: "look",
			want: pipeline.Interpretation{
				Kind:   pipeline.InterpretedAction,
				Action: action.Action{Kind: action.KindExamine},
			},
		},
		{
			name:  "look around the room examines the room",
			input: "look around the room",
			want: pipeline.Interpretation{
				Kind:   pipeline.InterpretedAction,
				Action: action.Action{Kind: action.KindExamine},
			},
		},
		{
			name:  "look at targets an entity",
			input: "look at the rug",
			want: pipeline.Interpretation{
				Kind:   pipeline.InterpretedAction,
				Action: action.Action{Kind: action.KindExamine, Target: "rug"},
			},
		},
		{
			name:  "look under means search",
			input: "look under the rug",
			want: pipeline.Interpretation{
				Kind:   pipeline.InterpretedAction,
				Action: action.Action{Kind: action.KindSearch, Target: "rug"},
			},
		},
		{
			name:  "bare verb needing a target is partial",
			input: "open",
			want:  pipeline.Interpretation{Kind: pipeline.InterpretedPartial, PartialKind: action.KindOpen},
		},
		{
			name:  "unlock splits target and item on with",
			input: "unlock the door with the brass key",
			want: pipeline.Interpretation{
				Kind:   pipeline.InterpretedAction,
				Action: action.Action{Kind: action.KindUnlock, Target: "door", Item: "brass_key"},
			},
		},
		{
			name:  "unlock without an item is partial",
			input: "unlock the door",
			want:  pipeline.Interpretation{Kind: pipeline.InterpretedPartial, PartialKind: action.KindUnlock},
		},
		{
			name:  "use splits item and target on on",
			input: "use the bolt cutter on the door",
			want: pipeline.Interpretation{
				Kind:   pipeline.InterpretedAction,
				Action: action.Action{Kind: action.KindUseItemOn, Target: "door", Item: "bolt_cutter"},
			},
		},
		{
			name:  "use without a target is partial",
			input: "use the bolt cutter",
			want:  pipeline.Interpretation{Kind: pipeline.InterpretedPartial, PartialKind: action.KindUseItemOn},
		},
		{
			name:  "single letter inventory shorthand",
			input: "i",
			want: pipeline.Interpretation{
				Kind:   pipeline.InterpretedAction,
				Action: action.Action{Kind: action.KindInventory},
			},
		},
		{
			name:  "help asks for a hint",
			input: "help",
			want: pipeline.Interpretation{
				Kind:   pipeline.InterpretedAction,
				Action: action.Action{Kind: action.KindHint},
			},
		},
		{
			name:  "chained requests resolve the first and flag the rest",
			input: "take the key and open the door",
			want: pipeline.Interpretation{
				Kind:     pipeline.InterpretedAction,
				Action:   action.Action{Kind: action.KindTake, Target: "brass_key"},
				Compound: true,
			},
		},
		{
			name:  "movement is impossible here",
			input: "go north",
			want:  pipeline.Interpretation{Kind: pipeline.InterpretedUnrecognized, Impossible: true},
		},
		{
			name:  "eating the scenery is impossible",
			input: "eat the rug",
			want:  pipeline.Interpretation{Kind: pipeline.InterpretedUnrecognized, Impossible: true},
		},
		{
			name:  "gibberish is unrecognized",
			input: "xyzzy",
			want:  pipeline.Interpretation{Kind: pipeline.InterpretedUnrecognized},
		},
		{
			name:  "blank input is unrecognized",
			input: "   ",
			want:  pipeline.Interpretation{Kind: pipeline.InterpretedUnrecognized},
		},
		{
			name:  "unknown nouns pass through for the room to reject",
			input: "take the sandwich",
			want: pipeline.Interpretation{
				Kind:   pipeline.InterpretedAction,
				Action: action.Action{Kind: action.KindTake, Target: "sandwich"},
			},
		},
	}

	var ki KeywordInterpreter
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ki.Interpret(context.Background(), tc.input, testView())
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestKeywordInterpreter_CommaIsNotCompound(t *testing.T) {
	var ki KeywordInterpreter
	got, err := ki.Interpret(context.Background(), "take the key, please", testView())
	require.NoError(t, err)
	assert.Equal(t, pipeline.InterpretedAction, got.Kind)
	assert.False(t, got.Compound, "politeness is not a second action")
}

func TestEchoNarrator_PassesMechanicalTextThrough(t *testing.T) {
	out := action.Outcome{
		Success: true,
		Message: "You pick up the brass key.",
		Facts:   []string{"The brass key is now in your inventory."},
	}

	var en EchoNarrator
	text, err := en.Narrate(context.Background(), pipeline.NarrationRequest{Style: pipeline.StyleTurn, Outcome: out})
	require.NoError(t, err)
	assert.Equal(t, "You pick up the brass key. The brass key is now in your inventory.", text)

	text, err = en.Narrate(context.Background(), pipeline.NarrationRequest{Style: pipeline.StyleTurn, Outcome: out, Compound: true})
	require.NoError(t, err)
	assert.Equal(t, "You pick up the brass key. The brass key is now in your inventory. One thing at a time in here.", text)
}
