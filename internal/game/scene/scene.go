// Package scene composes the layered visual selector for a room state
// snapshot. The core deals in asset layer names only; front ends resolve
// names to files, URLs, or text badges.
package scene

import (
	"strings"

	"github.com/cory-johannsen/escaperoom/internal/game/room"
)

// Selector identifies the composed scene for one state snapshot.
//
// Invariant: Key is a pure function of Layers, so equal state views always
// produce equal selectors and front ends may cache composed output by Key.
type Selector struct {
	// Key joins the layers into a stable identity string.
	Key string
	// Layers lists contributing asset names in authored slot order,
	// background first.
	Layers []string
}

// Empty reports whether no slot contributed a layer.
func (s Selector) Empty() bool {
	return len(s.Layers) == 0
}

// Compose resolves each authored slot to at most one asset layer: a static
// slot contributes its asset, a cased slot contributes the first case whose
// condition matches the view. A slot with no matching case contributes
// nothing.
func Compose(slots []room.SceneSlot, v room.StateView) Selector {
	layers := make([]string, 0, len(slots))
	for _, slot := range slots {
		if slot.Asset != "" {
			layers = append(layers, slot.Asset)
			continue
		}
		for _, c := range slot.Cases {
			if c.When.Matches(v) {
				layers = append(layers, c.Asset)
				break
			}
		}
	}
	return Selector{Key: strings.Join(layers, "+"), Layers: layers}
}
