// Package pipeline resolves free player text into narrated turn results: it
// consults the interpreter, applies the structured action on the state
// machine, hands the outcome to the narrator, and composes the scene
// selector. Interfaces for the two external services live here, next to
// their only consumer.
package pipeline

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/escaperoom/internal/game/action"
	"github.com/cory-johannsen/escaperoom/internal/game/engine"
	"github.com/cory-johannsen/escaperoom/internal/game/room"
	"github.com/cory-johannsen/escaperoom/internal/game/scene"
)

const (
	defaultInterpreterTimeout = 15 * time.Second
	defaultNarratorTimeout    = 20 * time.Second
)

// Config bounds the pipeline's two external calls.
type Config struct {
	// InterpreterTimeout bounds each interpreter call. 0 = default.
	InterpreterTimeout time.Duration
	// NarratorTimeout bounds each narrator call. 0 = default.
	NarratorTimeout time.Duration
}

// Pipeline owns the interpret, apply, narrate ordering for one machine.
// Stages never run twice for one input and never out of order; external
// failures before Apply leave the machine untouched, so the player can
// safely re-issue the same input.
type Pipeline struct {
	machine  *engine.Machine
	interp   Interpreter
	narrator Narrator
	logger   *zap.Logger

	interpretTimeout time.Duration
	narrateTimeout   time.Duration
}

// New wires a pipeline over a machine and the two external services.
func New(m *engine.Machine, interp Interpreter, narr Narrator, cfg Config, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	it := cfg.InterpreterTimeout
	if it <= 0 {
		it = defaultInterpreterTimeout
	}
	nt := cfg.NarratorTimeout
	if nt <= 0 {
		nt = defaultNarratorTimeout
	}
	return &Pipeline{
		machine:          m,
		interp:           interp,
		narrator:         narr,
		logger:           logger,
		interpretTimeout: it,
		narrateTimeout:   nt,
	}
}

// Resolve runs one raw player input through the full pipeline and returns
// the reply to render. The state machine is touched only when the
// interpreter produced a complete action.
func (p *Pipeline) Resolve(ctx context.Context, raw string) DisplayResult {
	v := p.machine.Snapshot()

	ictx, cancel := context.WithTimeout(ctx, p.interpretTimeout)
	in, err := p.interp.Interpret(ictx, raw, v)
	cancel()
	if err != nil {
		p.logger.Warn("interpreter call failed",
			zap.String("cause", classifyExternal(err)),
			zap.Int("turn", v.Turn),
			zap.Error(err))
		return DisplayResult{Text: retryMessage, Scene: p.sceneFor(v), Kind: ResultRetry}
	}

	switch in.Kind {
	case InterpretedAction:
		return p.resolveAction(ctx, in.Action, in.Compound)
	case InterpretedPartial:
		p.logger.Debug("input needs completion", zap.String("kind", string(in.PartialKind)))
		return DisplayResult{Text: partialQuestion(in.PartialKind), Scene: p.sceneFor(v), Kind: ResultClarification}
	case InterpretedUnrecognized:
		p.logger.Debug("input not recognized", zap.Bool("impossible", in.Impossible))
		return DisplayResult{Text: clarificationFor(in, v.Turn), Scene: p.sceneFor(v), Kind: ResultClarification}
	default:
		p.logger.Warn("interpreter returned an unknown interpretation kind",
			zap.String("interpretation", string(in.Kind)))
		return DisplayResult{Text: retryMessage, Scene: p.sceneFor(v), Kind: ResultRetry}
	}
}

// ResolveAction applies an already-structured action, bypassing the
// interpreter. Front-end commands that know exactly what they want (a hint
// button, a look command) enter here.
func (p *Pipeline) ResolveAction(ctx context.Context, act action.Action) DisplayResult {
	return p.resolveAction(ctx, act, false)
}

// Opening narrates the room at session start without consuming a turn.
func (p *Pipeline) Opening(ctx context.Context) DisplayResult {
	out := p.machine.Describe()
	v := p.machine.Snapshot()
	text := p.narrate(ctx, NarrationRequest{Style: StyleOpening, Outcome: out, View: v})
	return DisplayResult{Text: text, Scene: p.sceneFor(v), Kind: ResultNarrated}
}

func (p *Pipeline) resolveAction(ctx context.Context, act action.Action, compound bool) DisplayResult {
	out := p.machine.Apply(act)
	v := p.machine.Snapshot()

	// A session that is already over gets the canned reminder, not prose.
	if out.Reason == action.FailGameOver {
		return DisplayResult{Text: out.Message, Scene: p.sceneFor(v), Kind: ResultGameOver}
	}

	kind := ResultNarrated
	if out.Won {
		kind = ResultGameOver
	}
	text := p.narrate(ctx, NarrationRequest{
		Style:    styleFor(out),
		Outcome:  out,
		View:     v,
		Compound: compound,
	})
	return DisplayResult{Text: text, Scene: p.sceneFor(v), Won: out.Won, Kind: kind}
}

// narrate calls the narrator under its timeout. A narration failure never
// fails the turn: the committed outcome stands and its mechanical text is
// shown instead.
func (p *Pipeline) narrate(ctx context.Context, req NarrationRequest) string {
	nctx, cancel := context.WithTimeout(ctx, p.narrateTimeout)
	defer cancel()

	text, err := p.narrator.Narrate(nctx, req)
	if err != nil {
		p.logger.Warn("narrator call failed, showing mechanical text",
			zap.String("cause", classifyExternal(err)),
			zap.String("style", string(req.Style)),
			zap.Error(err))
		fallback := MechanicalText(req.Outcome)
		if req.Compound {
			fallback += " " + compoundNudge
		}
		return fallback
	}
	return text
}

func (p *Pipeline) sceneFor(v room.StateView) scene.Selector {
	return scene.Compose(p.machine.Definition().Scenes, v)
}

func styleFor(out action.Outcome) NarrationStyle {
	switch {
	case out.Won:
		return StyleVictory
	case out.Action.Kind == action.KindHint && out.Success:
		return StyleHint
	default:
		return StyleTurn
	}
}

// classifyExternal splits external-service failures into the two
// operator-facing classes.
func classifyExternal(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	return "error"
}
