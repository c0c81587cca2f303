package llm

import (
	"strings"

	"github.com/cory-johannsen/escaperoom/internal/game/room"
)

// wireEntity is the compact entity projection both adapters send the model.
type wireEntity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	State string `json:"state,omitempty"`
}

// wireView is the compact room-state payload: identifiers and display names
// only, so prompts stay small and the model has nothing to quote but ids the
// engine will accept.
type wireView struct {
	Title     string       `json:"title"`
	Turn      int          `json:"turn"`
	Escaped   bool         `json:"escaped,omitempty"`
	Fixtures  []wireEntity `json:"fixtures"`
	Items     []wireEntity `json:"items_in_room"`
	Inventory []wireEntity `json:"inventory"`
}

func wireViewFrom(v room.StateView) wireView {
	w := wireView{
		Title:     v.Title,
		Turn:      v.Turn,
		Escaped:   v.Escaped,
		Fixtures:  make([]wireEntity, 0, len(v.Fixtures)),
		Items:     make([]wireEntity, 0, len(v.Items)),
		Inventory: make([]wireEntity, 0, len(v.Inventory)),
	}
	for _, f := range v.Fixtures {
		w.Fixtures = append(w.Fixtures, wireEntity{ID: f.ID, Name: f.Name, State: f.State})
	}
	for _, it := range v.Items {
		w.Items = append(w.Items, wireEntity{ID: it.ID, Name: it.Name})
	}
	for _, it := range v.Inventory {
		w.Inventory = append(w.Inventory, wireEntity{ID: it.ID, Name: it.Name})
	}
	return w
}

// visibleIDs joins every identifier the player can currently address.
func visibleIDs(v room.StateView) string {
	ids := make([]string, 0, len(v.Fixtures)+len(v.Items)+len(v.Inventory))
	for _, f := range v.Fixtures {
		ids = append(ids, f.ID)
	}
	for _, it := range v.Items {
		ids = append(ids, it.ID)
	}
	for _, it := range v.Inventory {
		ids = append(ids, it.ID)
	}
	if len(ids) == 0 {
		return "none"
	}
	return strings.Join(ids, ", ")
}

// carriedIDs joins the inventory identifiers.
func carriedIDs(v room.StateView) string {
	if len(v.Inventory) == 0 {
		return "nothing"
	}
	ids := make([]string, 0, len(v.Inventory))
	for _, it := range v.Inventory {
		ids = append(ids, it.ID)
	}
	return strings.Join(ids, ", ")
}
