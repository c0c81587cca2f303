// Package main provides a local stdin REPL for the escape room. It runs the
// same turn pipeline as the Telnet server but needs no database, and with
// -fake-llm no Anthropic access either, which makes it the fastest way to
// test a room definition.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/escaperoom/internal/config"
	"github.com/cory-johannsen/escaperoom/internal/game/action"
	"github.com/cory-johannsen/escaperoom/internal/game/engine"
	"github.com/cory-johannsen/escaperoom/internal/game/pipeline"
	"github.com/cory-johannsen/escaperoom/internal/game/room"
	"github.com/cory-johannsen/escaperoom/internal/game/scene"
	"github.com/cory-johannsen/escaperoom/internal/game/session"
	"github.com/cory-johannsen/escaperoom/internal/llm"
	"github.com/cory-johannsen/escaperoom/internal/observability"
	"github.com/cory-johannsen/escaperoom/internal/scripting"
)

func main() {
	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	roomFile := flag.String("room", "", "room definition file (overrides game.room_file)")
	fakeLLM := flag.Bool("fake-llm", false, "use the offline keyword interpreter and echo narrator")
	verbose := flag.Bool("verbose", false, "log pipeline internals to stderr")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	// The REPL shares stdout with the game text, so the logger stays quiet
	// and on stderr unless asked.
	logger := observability.NewCLILogger(*verbose)
	defer logger.Sync()

	path := cfg.Game.RoomFile
	if *roomFile != "" {
		path = *roomFile
	}
	def, err := room.Load(path)
	if err != nil {
		log.Fatalf("loading room definition: %v", err)
	}

	var hooks engine.ScriptHooks
	if def.ScriptFile != "" {
		limit := def.ScriptInstructionLimit
		if limit == 0 {
			limit = cfg.Game.ScriptInstructionLimit
		}
		script, err := scripting.Load(def.ScriptFile, limit, logger)
		if err != nil {
			log.Fatalf("loading room script: %v", err)
		}
		hooks = engine.LuaHooks{Script: script}
	}

	var (
		interp pipeline.Interpreter
		narr   pipeline.Narrator
	)
	if *fakeLLM {
		interp = llm.KeywordInterpreter{}
		narr = llm.EchoNarrator{}
	} else {
		if cfg.Anthropic.APIKey == "" {
			log.Fatal("anthropic.api_key is required; set ESCAPE_ANTHROPIC_API_KEY or pass -fake-llm")
		}
		client := llm.NewClient(llm.Config{
			APIKey:  cfg.Anthropic.APIKey,
			Model:   cfg.Anthropic.Model,
			BaseURL: cfg.Anthropic.BaseURL,
		})
		interp = llm.NewInterpreter(client, logger)
		narr = llm.NewNarrator(client, logger)
	}

	machine := engine.NewMachine(def, hooks, logger)
	pipe := pipeline.New(machine, interp, narr, pipeline.Config{
		InterpreterTimeout: cfg.Game.InterpreterTimeout,
		NarratorTimeout:    cfg.Game.NarratorTimeout,
	}, logger)
	sess := session.New(machine, pipe, nil, logger)
	logger.Info("session ready", zap.String("room", def.ID), zap.Bool("fake_llm", *fakeLLM))

	ctx := context.Background()

	fmt.Printf("%s\n", def.Title)
	fmt.Println(strings.Repeat("=", len(def.Title)))
	fmt.Println("Say what you want to do in plain words.")
	fmt.Println("Type /help for commands, /quit to give up.")

	last := sess.Begin(ctx)
	printResult(last)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			if quit := command(ctx, sess, line, &last); quit {
				break
			}
			continue
		}
		last = sess.TakeTurn(ctx, line)
		printResult(last)
	}

	endCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	sess.End(endCtx)

	if err := scanner.Err(); err != nil {
		log.Fatalf("reading input: %v", err)
	}
}

// command handles one slash command, mirroring the Telnet surface. It
// reports true when the player asked to leave.
func command(ctx context.Context, sess *session.Session, line string, last *pipeline.DisplayResult) bool {
	switch strings.ToLower(strings.Fields(line)[0]) {
	case "/quit", "/exit":
		fmt.Println("The room keeps its secrets. Goodbye.")
		return true

	case "/help":
		fmt.Println("Commands:")
		fmt.Println("  /look     Re-read the room description.")
		fmt.Println("  /scene    List the current scene layers.")
		fmt.Println("  /hint     Ask for a nudge. Costs a turn.")
		fmt.Println("  /restart  Put the room back and start over.")
		fmt.Println("  /quit     Leave.")
		fmt.Println("Anything else you type is played as an action in the room.")

	case "/look":
		fmt.Printf("\n%s\n", sess.Describe())

	case "/scene":
		printScene(last.Scene)

	case "/hint":
		*last = sess.TakeAction(ctx, action.Action{Kind: action.KindHint})
		printResult(*last)

	case "/restart":
		*last = sess.Reset(ctx)
		fmt.Println("Everything snaps back to where it started.")
		printResult(*last)

	default:
		fmt.Printf("Unknown command: %s. Type /help for commands.\n", line)
	}
	return false
}

func printResult(res pipeline.DisplayResult) {
	fmt.Printf("\n%s\n", res.Text)
	if res.Won {
		fmt.Println("\n=== You escaped! ===")
		fmt.Println("Type /restart to play again, or /quit to leave.")
	}
}

func printScene(sel scene.Selector) {
	if sel.Empty() {
		fmt.Println("No scene composed yet.")
		return
	}
	fmt.Println("Scene layers:")
	for i, layer := range sel.Layers {
		fmt.Printf("  %2d. %s\n", i+1, layer)
	}
	fmt.Printf("Key: %s\n", sel.Key)
}
