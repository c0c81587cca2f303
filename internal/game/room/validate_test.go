package room

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validDefinition builds the smallest definition that passes Validate; test
// cases mutate one aspect each.
func validDefinition() *Definition {
	return &Definition{
		ID:           "cell",
		Title:        "Cell",
		Brief:        "A cell.",
		Victory:      "Free.",
		TerminalFlag: "escaped",
		Flags:        []Flag{{Name: "escaped"}},
		Fixtures: []*Fixture{
			{
				ID:       "door",
				Name:     "door",
				States:   []string{"closed", "open"},
				Initial:  "closed",
				Openable: true,
				Descriptions: map[string]string{
					"closed": "Shut.",
					"open":   "Open.",
				},
			},
		},
		Items: []*Item{
			{ID: "key", Name: "key", Location: LocationRoom, Portable: true},
		},
		Interactions: []Interaction{
			{
				Item:    "key",
				Target:  "door",
				Effects: []Effect{{Kind: EffectSetFlag, Flag: "escaped", Value: true}},
				Success: "Out you go.",
			},
		},
	}
}

func TestValidate_ValidDefinition(t *testing.T) {
	require.NoError(t, validDefinition().Validate())
}

func TestValidate_Rejections(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Definition)
		wantErr string
	}{
		{
			name:    "empty id",
			mutate:  func(d *Definition) { d.ID = "" },
			wantErr: "id must not be empty",
		},
		{
			name:    "empty title",
			mutate:  func(d *Definition) { d.Title = "" },
			wantErr: "title must not be empty",
		},
		{
			name:    "empty brief",
			mutate:  func(d *Definition) { d.Brief = "" },
			wantErr: "brief must not be empty",
		},
		{
			name:    "empty victory",
			mutate:  func(d *Definition) { d.Victory = "" },
			wantErr: "victory text must not be empty",
		},
		{
			name:    "undeclared terminal flag",
			mutate:  func(d *Definition) { d.TerminalFlag = "gone" },
			wantErr: `terminal_flag "gone" is not a declared flag`,
		},
		{
			name: "fixture and item id collision",
			mutate: func(d *Definition) {
				d.Items[0].ID = "door"
				d.Interactions[0].Item = "door"
			},
			wantErr: "declared twice",
		},
		{
			name:    "initial state outside enum",
			mutate:  func(d *Definition) { d.Fixtures[0].Initial = "ajar" },
			wantErr: `initial state "ajar"`,
		},
		{
			name:    "description for unknown state",
			mutate:  func(d *Definition) { d.Fixtures[0].Descriptions["ajar"] = "Half open." },
			wantErr: `description for unknown state "ajar"`,
		},
		{
			name: "openable without open state",
			mutate: func(d *Definition) {
				d.Fixtures[0].States = []string{"closed"}
				d.Fixtures[0].Descriptions = map[string]string{"closed": "Shut."}
			},
			wantErr: "must declare the \"open\" state",
		},
		{
			name:    "searchable without searched state",
			mutate:  func(d *Definition) { d.Fixtures[0].Searchable = true },
			wantErr: "must declare searched_state",
		},
		{
			name: "lock key not declared",
			mutate: func(d *Definition) {
				d.Fixtures[0].Lock = &Lock{Key: "ghost", LockedState: "closed", UnlockedState: "open"}
			},
			wantErr: `lock key "ghost"`,
		},
		{
			name: "contains without openable",
			mutate: func(d *Definition) {
				d.Fixtures[0].Openable = false
				d.Fixtures[0].Contains = []string{"key"}
			},
			wantErr: "contains requires openable",
		},
		{
			name:    "conceals without searchable",
			mutate:  func(d *Definition) { d.Fixtures[0].Conceals = []string{"key"} },
			wantErr: "conceals requires searchable",
		},
		{
			name:    "reveals unknown fixture",
			mutate:  func(d *Definition) { d.Fixtures[0].Reveals = []string{"ghost"} },
			wantErr: `reveals unknown fixture "ghost"`,
		},
		{
			name: "message for bogus reason",
			mutate: func(d *Definition) {
				d.Fixtures[0].Messages = map[string]string{"sleepy": "zzz"}
			},
			wantErr: `unknown failure reason "sleepy"`,
		},
		{
			name:    "hidden item starting outside the room",
			mutate:  func(d *Definition) { d.Items[0].Hidden = true; d.Items[0].Location = LocationInventory },
			wantErr: "hidden items must start in the room",
		},
		{
			name:    "bad item location",
			mutate:  func(d *Definition) { d.Items[0].Location = "limbo" },
			wantErr: "location must be one of",
		},
		{
			name:    "interaction with unknown item",
			mutate:  func(d *Definition) { d.Interactions[0].Item = "ghost" },
			wantErr: `item "ghost" is not declared`,
		},
		{
			name:    "interaction with unknown target",
			mutate:  func(d *Definition) { d.Interactions[0].Target = "ghost" },
			wantErr: `target "ghost" is not declared`,
		},
		{
			name: "interaction with both fail and effects",
			mutate: func(d *Definition) {
				d.Interactions[0].Fail = &InteractionFail{Reason: "impossible", Message: "no"}
			},
			wantErr: "cannot both fail and apply effects",
		},
		{
			name: "interaction with unauthorable reason",
			mutate: func(d *Definition) {
				d.Interactions = append(d.Interactions, Interaction{
					Item:   "key",
					Target: "door",
					Fail:   &InteractionFail{Reason: "game_over", Message: "no"},
				})
			},
			wantErr: `failure reason "game_over" is not authorable`,
		},
		{
			name: "interaction with neither fail nor effects",
			mutate: func(d *Definition) {
				d.Interactions = append(d.Interactions, Interaction{Item: "key", Target: "door"})
			},
			wantErr: "must declare effects or a fail",
		},
		{
			name: "empty success message",
			mutate: func(d *Definition) {
				d.Interactions[0].Success = ""
			},
			wantErr: "success message must not be empty",
		},
		{
			name: "effect moving item to bad location",
			mutate: func(d *Definition) {
				d.Interactions[0].Effects = append(d.Interactions[0].Effects,
					Effect{Kind: EffectMoveItem, Item: "key", To: "limbo"})
			},
			wantErr: `move_item destination "limbo" invalid`,
		},
		{
			name: "effect setting unknown fixture state",
			mutate: func(d *Definition) {
				d.Interactions[0].Effects = append(d.Interactions[0].Effects,
					Effect{Kind: EffectSetFixtureState, Fixture: "door", State: "ajar"})
			},
			wantErr: `state "ajar"`,
		},
		{
			name: "when_script without script file",
			mutate: func(d *Definition) {
				d.Interactions[0].WhenScript = "can_leave"
			},
			wantErr: "when_script requires the room to declare a script file",
		},
		{
			name: "condition referencing unknown flag",
			mutate: func(d *Definition) {
				d.Interactions[0].When = Condition{Flags: map[string]bool{"ghost": true}}
			},
			wantErr: `unknown flag "ghost"`,
		},
		{
			name: "hint with empty text",
			mutate: func(d *Definition) {
				d.Hints = []HintRule{{}}
			},
			wantErr: "hint 0: text must not be empty",
		},
		{
			name: "scene slot with asset and cases",
			mutate: func(d *Definition) {
				d.Scenes = []SceneSlot{{ID: "bg", Asset: "a", Cases: []SceneCase{{Asset: "b"}}}}
			},
			wantErr: "not both",
		},
		{
			name: "scene slot contributing nothing",
			mutate: func(d *Definition) {
				d.Scenes = []SceneSlot{{ID: "bg"}}
			},
			wantErr: "slot contributes nothing",
		},
		{
			name: "unwinnable room",
			mutate: func(d *Definition) {
				d.Interactions[0].Effects = []Effect{{Kind: EffectSetFixtureState, Fixture: "door", State: "open"}}
			},
			wantErr: "cannot be won",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			def := validDefinition()
			tc.mutate(def)
			err := def.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestValidate_CollectsMultipleProblems(t *testing.T) {
	def := validDefinition()
	def.Title = ""
	def.Brief = ""
	err := def.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "title must not be empty")
	assert.Contains(t, err.Error(), "brief must not be empty")
}
