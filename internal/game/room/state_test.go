package room

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// vaultDefinition exercises the visibility rules: a hidden fixture, a hidden
// item, a carried item, and a description override gated on inventory.
func vaultDefinition() *Definition {
	return &Definition{
		ID:           "vault",
		Title:        "The Vault",
		Brief:        "Steel walls on every side.",
		Victory:      "Out at last.",
		TerminalFlag: "escaped",
		Flags: []Flag{
			{Name: "escaped"},
			{Name: "lights_on", Initial: true},
		},
		Fixtures: []*Fixture{
			{
				ID:       "safe",
				Name:     "safe",
				States:   []string{"locked", "open"},
				Initial:  "locked",
				Openable: true,
				Lock:     &Lock{Key: "pick", LockedState: "locked", UnlockedState: "open"},
				Contains: []string{"deed"},
				Descriptions: map[string]string{
					"locked": "A squat steel safe.",
					"open":   "The safe hangs open.",
				},
				Overrides: []DescriptionOverride{
					{
						State: "locked",
						When:  Condition{HasItems: []string{"pick"}},
						Text:  "The lock looks like it would yield to a pick.",
					},
				},
			},
			{
				ID:           "panel",
				Name:         "wall panel",
				Hidden:       true,
				States:       []string{"shut"},
				Initial:      "shut",
				Descriptions: map[string]string{"shut": "A loose wall panel."},
			},
		},
		Items: []*Item{
			{ID: "pick", Name: "lock pick", Location: LocationRoom, Portable: true},
			{ID: "deed", Name: "deed", Location: LocationRoom, Portable: true, Hidden: true},
			{ID: "badge", Name: "badge", Location: LocationInventory, Portable: true},
		},
		Interactions: []Interaction{
			{
				Item:    "pick",
				Target:  "safe",
				Effects: []Effect{{Kind: EffectSetFlag, Flag: "escaped", Value: true}},
				Success: "The safe pops open.",
			},
		},
	}
}

func TestNewState_InitialValues(t *testing.T) {
	def := vaultDefinition()
	require.NoError(t, def.Validate())

	s := NewState(def)

	assert.Equal(t, 0, s.Turn())
	assert.False(t, s.Escaped())
	assert.Equal(t, "locked", s.FixtureState("safe"))
	assert.Equal(t, "shut", s.FixtureState("panel"))
	assert.Equal(t, LocationRoom, s.ItemAt("pick"))
	assert.Equal(t, LocationRoom, s.ItemAt("deed"))
	assert.Equal(t, LocationInventory, s.ItemAt("badge"))
	assert.False(t, s.Flag("escaped"))
	assert.True(t, s.Flag("lights_on"))
}

func TestState_Escaped_TracksTerminalFlag(t *testing.T) {
	s := NewState(vaultDefinition())
	require.False(t, s.Escaped())

	s.SetFlag("escaped", true)
	assert.True(t, s.Escaped())
}

func TestState_FixtureVisible_HiddenUntilRevealed(t *testing.T) {
	s := NewState(vaultDefinition())

	assert.True(t, s.FixtureVisible("safe"))
	assert.False(t, s.FixtureVisible("panel"))
	assert.False(t, s.FixtureVisible("ghost"))

	s.Reveal("panel")
	assert.True(t, s.FixtureVisible("panel"))
	assert.True(t, s.RevealedNow("panel"))
}

func TestState_ItemVisible_ByLocationAndConcealment(t *testing.T) {
	s := NewState(vaultDefinition())

	assert.True(t, s.ItemVisible("pick"), "plain room item")
	assert.True(t, s.ItemVisible("badge"), "carried item")
	assert.False(t, s.ItemVisible("deed"), "hidden item before reveal")
	assert.False(t, s.ItemVisible("ghost"))

	s.Reveal("deed")
	assert.True(t, s.ItemVisible("deed"))

	s.MoveItem("deed", LocationConsumed)
	assert.False(t, s.ItemVisible("deed"), "consumed items are never visible")
}

func TestState_MoveItem_SingleBucket(t *testing.T) {
	s := NewState(vaultDefinition())

	s.MoveItem("pick", LocationInventory)
	assert.Equal(t, LocationInventory, s.ItemAt("pick"))

	s.MoveItem("pick", LocationConsumed)
	assert.Equal(t, LocationConsumed, s.ItemAt("pick"))
}

func TestState_View_ProjectsVisibleEntities(t *testing.T) {
	s := NewState(vaultDefinition())
	v := s.View()

	assert.Equal(t, "vault", v.RoomID)
	assert.Equal(t, "The Vault", v.Title)
	assert.Equal(t, "Steel walls on every side.", v.Brief)
	assert.Equal(t, 0, v.Turn)
	assert.False(t, v.Escaped)

	require.Len(t, v.Fixtures, 1, "hidden fixture must stay out of the visible list")
	assert.Equal(t, "safe", v.Fixtures[0].ID)
	assert.Equal(t, "locked", v.Fixtures[0].State)

	require.Len(t, v.Items, 1, "hidden item must stay out of the visible list")
	assert.Equal(t, "pick", v.Items[0].ID)

	require.Len(t, v.Inventory, 1)
	assert.Equal(t, "badge", v.Inventory[0].ID)

	// Condition evaluation sees every fixture, hidden or not.
	assert.Equal(t, "shut", v.FixtureStates["panel"])
	assert.Equal(t, "locked", v.FixtureStates["safe"])
	assert.True(t, v.Flags["lights_on"])

	assert.True(t, v.Holding("badge"))
	assert.False(t, v.Holding("pick"))
	assert.True(t, v.VisibleEntity("safe"))
	assert.True(t, v.VisibleEntity("badge"))
	assert.False(t, v.VisibleEntity("panel"))
	assert.False(t, v.VisibleEntity("deed"))
}

func TestState_View_RevealedEntitiesAppear(t *testing.T) {
	s := NewState(vaultDefinition())
	s.Reveal("panel")
	s.Reveal("deed")

	v := s.View()
	require.Len(t, v.Fixtures, 2)
	assert.Equal(t, "panel", v.Fixtures[1].ID)
	require.Len(t, v.Items, 2)
	assert.Equal(t, "deed", v.Items[1].ID)
}

func TestState_View_DescriptionOverridePrecedence(t *testing.T) {
	s := NewState(vaultDefinition())

	v := s.View()
	assert.Equal(t, "A squat steel safe.", v.Fixtures[0].Description,
		"override requires the pick in hand")

	s.MoveItem("pick", LocationInventory)
	v = s.View()
	assert.Equal(t, "The lock looks like it would yield to a pick.", v.Fixtures[0].Description)

	// Overrides are state-gated: once open, the per-state text wins again.
	s.SetFixtureState("safe", "open")
	v = s.View()
	assert.Equal(t, "The safe hangs open.", v.Fixtures[0].Description)
}

func TestState_Clone_IsIndependent(t *testing.T) {
	s := NewState(vaultDefinition())
	c := s.Clone()

	c.SetFixtureState("safe", "open")
	c.SetFlag("escaped", true)
	c.MoveItem("pick", LocationConsumed)
	c.Reveal("panel")
	c.AdvanceTurn()

	assert.Equal(t, "locked", s.FixtureState("safe"))
	assert.False(t, s.Escaped())
	assert.Equal(t, LocationRoom, s.ItemAt("pick"))
	assert.False(t, s.FixtureVisible("panel"))
	assert.Equal(t, 0, s.Turn())

	assert.Equal(t, "open", c.FixtureState("safe"))
	assert.True(t, c.Escaped())
	assert.Equal(t, 1, c.Turn())
}

func TestProperty_CloneLeavesOriginalUntouched(t *testing.T) {
	def := vaultDefinition()

	fixtureStates := map[string][]string{"safe": {"locked", "open"}, "panel": {"shut"}}
	locations := []ItemLocation{LocationRoom, LocationInventory, LocationConsumed}
	ids := []string{"safe", "panel", "pick", "deed", "badge"}

	rapid.Check(t, func(rt *rapid.T) {
		s := NewState(def)

		// Wander the original into an arbitrary reachable-ish shape.
		steps := rapid.IntRange(0, 20).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			switch rapid.IntRange(0, 4).Draw(rt, "op") {
			case 0:
				id := rapid.SampledFrom([]string{"safe", "panel"}).Draw(rt, "fixture")
				s.SetFixtureState(id, rapid.SampledFrom(fixtureStates[id]).Draw(rt, "state"))
			case 1:
				s.SetFlag(rapid.SampledFrom([]string{"escaped", "lights_on"}).Draw(rt, "flag"),
					rapid.Bool().Draw(rt, "value"))
			case 2:
				s.MoveItem(rapid.SampledFrom([]string{"pick", "deed", "badge"}).Draw(rt, "item"),
					rapid.SampledFrom(locations).Draw(rt, "to"))
			case 3:
				s.Reveal(rapid.SampledFrom(ids).Draw(rt, "reveal"))
			case 4:
				s.AdvanceTurn()
			}
		}

		before := s.View()
		c := s.Clone()

		// Scramble the clone hard.
		c.SetFixtureState("safe", "open")
		c.SetFixtureState("panel", "shut")
		c.SetFlag("escaped", true)
		c.SetFlag("lights_on", false)
		c.MoveItem("pick", LocationConsumed)
		c.MoveItem("badge", LocationRoom)
		c.Reveal("deed")
		c.Reveal("panel")
		c.AdvanceTurn()

		if !reflect.DeepEqual(before, s.View()) {
			rt.Fatalf("mutating a clone changed the original:\nbefore: %+v\nafter:  %+v", before, s.View())
		}
	})
}
