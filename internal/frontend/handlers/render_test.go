package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/escaperoom/internal/frontend/telnet"
	"github.com/cory-johannsen/escaperoom/internal/game/pipeline"
	"github.com/cory-johannsen/escaperoom/internal/game/scene"
)

func TestRenderResult_Narrated(t *testing.T) {
	res := pipeline.DisplayResult{
		Text: "You pick up the brass key.",
		Kind: pipeline.ResultNarrated,
	}
	stripped := telnet.StripANSI(RenderResult(res))
	assert.Contains(t, stripped, "You pick up the brass key.")
	assert.NotContains(t, stripped, "===")
}

func TestRenderResult_WonAddsVictoryBanner(t *testing.T) {
	res := pipeline.DisplayResult{
		Text: "The bars part and the night air hits you.",
		Won:  true,
		Kind: pipeline.ResultGameOver,
	}
	stripped := telnet.StripANSI(RenderResult(res))
	assert.Contains(t, stripped, "The bars part")
	assert.Contains(t, stripped, "You escaped!")
	assert.Contains(t, stripped, "/restart")
}

func TestRenderResult_GameOverWithoutWinHasNoBanner(t *testing.T) {
	res := pipeline.DisplayResult{
		Text: "The game has ended.",
		Kind: pipeline.ResultGameOver,
	}
	stripped := telnet.StripANSI(RenderResult(res))
	assert.Contains(t, stripped, "The game has ended.")
	assert.NotContains(t, stripped, "You escaped!")
}

func TestRenderResult_Clarification(t *testing.T) {
	res := pipeline.DisplayResult{
		Text: "Open what?",
		Kind: pipeline.ResultClarification,
	}
	assert.Contains(t, telnet.StripANSI(RenderResult(res)), "Open what?")
}

func TestRenderDescription(t *testing.T) {
	stripped := telnet.StripANSI(RenderDescription("A bare stone cell."))
	assert.Contains(t, stripped, "A bare stone cell.")
}

func TestRenderScene(t *testing.T) {
	sel := scene.Selector{
		Key:    "cell_base+door_open",
		Layers: []string{"cell_base", "door_open"},
	}
	stripped := telnet.StripANSI(RenderScene(sel))
	assert.Contains(t, stripped, "Scene layers:")
	assert.Contains(t, stripped, "cell_base")
	assert.Contains(t, stripped, "door_open")
	assert.Contains(t, stripped, "Key: cell_base+door_open")
}

func TestRenderScene_Empty(t *testing.T) {
	stripped := telnet.StripANSI(RenderScene(scene.Selector{}))
	assert.Contains(t, stripped, "No scene composed yet.")
}

// Property: the rendered reply always carries the pipeline text verbatim,
// whatever the kind and won flag.
func TestPropertyRenderResultKeepsText(t *testing.T) {
	kinds := []pipeline.ResultKind{
		pipeline.ResultNarrated,
		pipeline.ResultClarification,
		pipeline.ResultRetry,
		pipeline.ResultGameOver,
	}
	rapid.Check(t, func(rt *rapid.T) {
		text := rapid.StringMatching(`[a-zA-Z0-9 .,!?']{1,80}`).Draw(rt, "text")
		kind := kinds[rapid.IntRange(0, len(kinds)-1).Draw(rt, "kind")]
		won := rapid.Bool().Draw(rt, "won")

		res := pipeline.DisplayResult{Text: text, Won: won, Kind: kind}
		assert.Contains(rt, telnet.StripANSI(RenderResult(res)), text)
	})
}

// Property: scene rendering lists every layer and the key.
func TestPropertyRenderSceneListsAllLayers(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		layers := rapid.SliceOfN(rapid.StringMatching(`[a-z][a-z0-9_]{1,20}`), 1, 8).Draw(rt, "layers")
		sel := scene.Selector{Key: "k", Layers: layers}
		stripped := telnet.StripANSI(RenderScene(sel))
		for _, layer := range layers {
			assert.Contains(rt, stripped, layer)
		}
	})
}
