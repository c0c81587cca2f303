package handlers

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/escaperoom/internal/frontend/telnet"
	"github.com/cory-johannsen/escaperoom/internal/game/pipeline"
	"github.com/cory-johannsen/escaperoom/internal/game/scene"
)

// RenderResult formats one pipeline reply as colored Telnet text. The color
// tracks the reply kind: narration in white, questions back at the player in
// cyan, service hiccups in yellow, post-game replies dimmed.
func RenderResult(res pipeline.DisplayResult) string {
	var b strings.Builder

	b.WriteString("\r\n")
	switch res.Kind {
	case pipeline.ResultClarification:
		b.WriteString(telnet.Colorize(telnet.Cyan, res.Text))
	case pipeline.ResultRetry:
		b.WriteString(telnet.Colorize(telnet.Yellow, res.Text))
	case pipeline.ResultGameOver:
		if res.Won {
			b.WriteString(telnet.Colorize(telnet.BrightWhite, res.Text))
		} else {
			b.WriteString(telnet.Colorize(telnet.Dim, res.Text))
		}
	default:
		b.WriteString(telnet.Colorize(telnet.White, res.Text))
	}
	b.WriteString("\r\n")

	if res.Won {
		b.WriteString("\r\n")
		b.WriteString(telnet.Colorize(telnet.Bold+telnet.BrightYellow, "=== You escaped! ==="))
		b.WriteString("\r\n")
		b.WriteString(telnet.Colorize(telnet.Dim, "Type /restart to play again, or /quit to leave."))
		b.WriteString("\r\n")
	}

	return b.String()
}

// RenderDescription formats the mechanical room description shown by /look.
func RenderDescription(text string) string {
	var b strings.Builder
	b.WriteString("\r\n")
	b.WriteString(telnet.Colorize(telnet.White, text))
	b.WriteString("\r\n")
	return b.String()
}

// RenderScene formats a scene selector as its ordered layer list,
// background first. Telnet has no art to composite, so the layer names
// stand in for it.
func RenderScene(sel scene.Selector) string {
	if sel.Empty() {
		return telnet.Colorize(telnet.Dim, "No scene composed yet.")
	}
	var b strings.Builder
	b.WriteString(telnet.Colorize(telnet.Cyan, "Scene layers:"))
	b.WriteString("\r\n")
	for i, layer := range sel.Layers {
		b.WriteString(fmt.Sprintf("  %s%2d.%s %s%s%s\r\n",
			telnet.Dim, i+1, telnet.Reset,
			telnet.BrightCyan, layer, telnet.Reset))
	}
	b.WriteString(telnet.Colorf(telnet.Dim, "Key: %s", sel.Key))
	return b.String()
}
