// Package main provides the room definition linter. It loads a room file
// through the same loader the servers use, so anything roomcheck accepts the
// servers accept, then smoke-tests the attached script against the initial
// state and prints a content summary.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/cory-johannsen/escaperoom/internal/game/engine"
	"github.com/cory-johannsen/escaperoom/internal/game/room"
	"github.com/cory-johannsen/escaperoom/internal/game/scene"
	"github.com/cory-johannsen/escaperoom/internal/scripting"
)

func main() {
	roomFile := flag.String("room", "", "path to the room definition YAML")
	scriptLimit := flag.Int("script-limit", scripting.DefaultInstructionLimit,
		"Lua opcode budget per hook call (when the room does not set its own)")
	flag.Parse()

	if *roomFile == "" {
		fmt.Fprintln(os.Stderr, "usage: roomcheck -room <file.yaml> [-script-limit <n>]")
		os.Exit(1)
	}

	start := time.Now()
	def, err := room.Load(*roomFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	var hooks engine.ScriptHooks = engine.NopHooks{}
	if def.ScriptFile != "" {
		limit := def.ScriptInstructionLimit
		if limit == 0 {
			limit = *scriptLimit
		}
		script, err := scripting.Load(def.ScriptFile, limit, nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		defer script.Close()
		hooks = engine.LuaHooks{Script: script}
	}

	machine := engine.NewMachine(def, hooks, nil)
	view := machine.Snapshot()

	fmt.Printf("room %q (%s)\n", def.ID, def.Title)
	fmt.Printf("  fixtures:     %d\n", len(def.Fixtures))
	fmt.Printf("  items:        %d\n", len(def.Items))
	fmt.Printf("  flags:        %d (terminal: %s)\n", len(def.Flags), def.TerminalFlag)
	fmt.Printf("  interactions: %d\n", len(def.Interactions))
	fmt.Printf("  hints:        %d authored\n", len(def.Hints))
	fmt.Printf("  scene slots:  %d\n", len(def.Scenes))

	if sel := scene.Compose(def.Scenes, view); !sel.Empty() {
		fmt.Printf("  opening scene: %s\n", sel.Key)
	}

	if def.ScriptFile != "" {
		text, ok, err := hooks.Hint(view)
		switch {
		case err != nil:
			fmt.Fprintf(os.Stderr, "error: script hint against initial state: %v\n", err)
			os.Exit(1)
		case ok:
			fmt.Printf("  opening hint:  %s\n", oneLine(text))
		default:
			fmt.Println("  opening hint:  script declined (hint ladder will answer)")
		}
	}

	fmt.Printf("ok in %s\n", time.Since(start).Round(time.Millisecond))
}

// oneLine collapses a hint onto a single summary line.
func oneLine(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > 96 {
		s = s[:93] + "..."
	}
	return s
}
