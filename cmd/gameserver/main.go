// Package main runs the Telnet escape-room server: one room, one live
// session at a time, free-text turns resolved through the Anthropic model
// and recorded to Postgres.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/escaperoom/internal/config"
	"github.com/cory-johannsen/escaperoom/internal/frontend/handlers"
	"github.com/cory-johannsen/escaperoom/internal/frontend/telnet"
	"github.com/cory-johannsen/escaperoom/internal/game/engine"
	"github.com/cory-johannsen/escaperoom/internal/game/pipeline"
	"github.com/cory-johannsen/escaperoom/internal/game/room"
	"github.com/cory-johannsen/escaperoom/internal/game/session"
	"github.com/cory-johannsen/escaperoom/internal/llm"
	"github.com/cory-johannsen/escaperoom/internal/observability"
	"github.com/cory-johannsen/escaperoom/internal/scripting"
	"github.com/cory-johannsen/escaperoom/internal/server"
	"github.com/cory-johannsen/escaperoom/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	roomFile := flag.String("room", "", "room definition file (overrides game.room_file)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	if cfg.Anthropic.APIKey == "" {
		logger.Fatal("anthropic.api_key is required to run the live server; " +
			"set ESCAPE_ANTHROPIC_API_KEY, or play offline with cmd/play -fake-llm")
	}

	path := cfg.Game.RoomFile
	if *roomFile != "" {
		path = *roomFile
	}

	def, err := room.Load(path)
	if err != nil {
		logger.Fatal("loading room definition", zap.Error(err))
	}
	logger.Info("room loaded",
		zap.String("room", def.ID),
		zap.String("title", def.Title),
		zap.Int("fixtures", len(def.Fixtures)),
		zap.Int("items", len(def.Items)),
		zap.Int("interactions", len(def.Interactions)),
	)

	var hooks engine.ScriptHooks
	if def.ScriptFile != "" {
		limit := def.ScriptInstructionLimit
		if limit == 0 {
			limit = cfg.Game.ScriptInstructionLimit
		}
		script, err := scripting.Load(def.ScriptFile, limit, logger)
		if err != nil {
			logger.Fatal("loading room script", zap.Error(err))
		}
		hooks = engine.LuaHooks{Script: script}
		logger.Info("room script loaded",
			zap.String("script", def.ScriptFile),
			zap.Int("instruction_limit", limit),
		)
	}

	// Connect to PostgreSQL for transcript recording
	ctx := context.Background()
	dbStart := time.Now()
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("connecting to database", zap.Error(err))
	}
	logger.Info("database connected",
		zap.String("host", cfg.Database.Host),
		zap.Int("port", cfg.Database.Port),
		zap.String("database", cfg.Database.Name),
		zap.Duration("elapsed", time.Since(dbStart)),
	)

	// Build the turn-resolution stack
	client := llm.NewClient(llm.Config{
		APIKey:  cfg.Anthropic.APIKey,
		Model:   cfg.Anthropic.Model,
		BaseURL: cfg.Anthropic.BaseURL,
	})
	machine := engine.NewMachine(def, hooks, logger)
	pipe := pipeline.New(machine,
		llm.NewInterpreter(client, logger),
		llm.NewNarrator(client, logger),
		pipeline.Config{
			InterpreterTimeout: cfg.Game.InterpreterTimeout,
			NarratorTimeout:    cfg.Game.NarratorTimeout,
		},
		logger,
	)
	recorder := postgres.NewTranscriptRepository(pool.DB())
	host := session.NewHost(session.New(machine, pipe, recorder, logger))

	playHandler := handlers.NewPlayHandler(host, cfg.Server.IdleTimeout, cfg.Server.IdleGracePeriod, logger)
	acceptor := telnet.NewAcceptor(cfg.Server, playHandler, logger)

	// Wire lifecycle
	lifecycle := server.NewLifecycle(logger)

	lifecycle.Add("postgres", &server.FuncService{
		StartFn: func() error {
			for {
				time.Sleep(30 * time.Second)
				if err := pool.Health(ctx, 5*time.Second); err != nil {
					logger.Warn("database health check failed", zap.Error(err))
				}
			}
		},
		StopFn: func() {
			pool.Close()
		},
	})

	lifecycle.Add("telnet", &server.FuncService{
		StartFn: func() error {
			return acceptor.ListenAndServe()
		},
		StopFn: func() {
			acceptor.Stop()
		},
	})

	logger.Info("escape-room server initialized",
		zap.Duration("startup", time.Since(start)),
		zap.String("telnet_addr", cfg.Server.Addr()),
		zap.String("room", def.ID),
		zap.String("model", cfg.Anthropic.Model),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
