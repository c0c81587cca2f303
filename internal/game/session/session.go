// Package session owns the lifecycle of one live playthrough: it serializes
// player inputs over the resolution pipeline, keeps the transcript, and
// gates the single-occupancy room.
package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/escaperoom/internal/game/action"
	"github.com/cory-johannsen/escaperoom/internal/game/engine"
	"github.com/cory-johannsen/escaperoom/internal/game/pipeline"
)

// Session binds one state machine, one pipeline, and one transcript. All
// entry points serialize on the session mutex: a turn holds it for the full
// interpret, apply, narrate round-trip, so the machine below needs no
// locking of its own.
type Session struct {
	mu       sync.Mutex
	machine  *engine.Machine
	pipe     *pipeline.Pipeline
	recorder Recorder
	logger   *zap.Logger
	now      func() time.Time

	id  string
	seq int
}

// New builds a session over a machine and its pipeline. A nil recorder
// records nothing; a nil logger logs nothing.
func New(m *engine.Machine, p *pipeline.Pipeline, rec Recorder, logger *zap.Logger) *Session {
	if rec == nil {
		rec = NopRecorder{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		machine:  m,
		pipe:     p,
		recorder: rec,
		logger:   logger,
		now:      time.Now,
	}
}

// ID returns the current transcript session id, empty before Begin.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Won reports whether the terminal flag is set.
func (s *Session) Won() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.Won()
}

// Describe returns the mechanical room description without consuming a turn
// or touching the transcript. Front-end look commands use it for a free
// re-orientation between turns.
func (s *Session) Describe() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return pipeline.MechanicalText(s.machine.Describe())
}

// Begin opens a fresh transcript session and narrates the room opening.
func (s *Session) Begin(ctx context.Context) pipeline.DisplayResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.beginLocked(ctx)
	return s.pipe.Opening(ctx)
}

// TakeTurn resolves one raw player input. Every input advances the input
// sequence and lands in the transcript, clarifications and retries included.
func (s *Session) TakeTurn(ctx context.Context, raw string) pipeline.DisplayResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.id == "" {
		s.beginLocked(ctx)
	}
	s.seq++
	res := s.pipe.Resolve(ctx, raw)
	s.recordLocked(ctx, raw, res)
	return res
}

// TakeAction resolves an already-structured action, bypassing the
// interpreter. The transcript records the action's canonical rendering.
func (s *Session) TakeAction(ctx context.Context, act action.Action) pipeline.DisplayResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.id == "" {
		s.beginLocked(ctx)
	}
	s.seq++
	res := s.pipe.ResolveAction(ctx, act)
	s.recordLocked(ctx, renderAction(act), res)
	return res
}

// Reset throws away all progress: the machine rebuilds from the static
// definition, the open transcript closes, and a fresh one opens with a new
// opening narration.
func (s *Session) Reset(ctx context.Context) pipeline.DisplayResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.endLocked(ctx)
	s.machine.Reset()
	s.beginLocked(ctx)
	return s.pipe.Opening(ctx)
}

// End closes the open transcript session, recording whether the player had
// escaped. Safe to call twice; the second call is a no-op.
func (s *Session) End(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.endLocked(ctx)
}

func (s *Session) beginLocked(ctx context.Context) {
	s.id = uuid.New().String()
	s.seq = 0
	rec := SessionRecord{
		ID:        s.id,
		RoomID:    s.machine.Definition().ID,
		StartedAt: s.now(),
	}
	if err := s.recorder.BeginSession(ctx, rec); err != nil {
		s.logger.Warn("transcript session open failed",
			zap.String("session_id", s.id),
			zap.Error(err))
	}
	s.logger.Info("session started",
		zap.String("session_id", s.id),
		zap.String("room", rec.RoomID))
}

func (s *Session) endLocked(ctx context.Context) {
	if s.id == "" {
		return
	}
	if err := s.recorder.EndSession(ctx, s.id, s.now(), s.machine.Won()); err != nil {
		s.logger.Warn("transcript session close failed",
			zap.String("session_id", s.id),
			zap.Error(err))
	}
	s.logger.Info("session ended",
		zap.String("session_id", s.id),
		zap.Bool("escaped", s.machine.Won()),
		zap.Int("inputs", s.seq))
	s.id = ""
}

func (s *Session) recordLocked(ctx context.Context, input string, res pipeline.DisplayResult) {
	rec := TurnRecord{
		ID:        uuid.New().String(),
		SessionID: s.id,
		Seq:       s.seq,
		Input:     input,
		ReplyKind: string(res.Kind),
		ReplyText: res.Text,
		SceneKey:  res.Scene.Key,
		Won:       res.Won,
		At:        s.now(),
	}
	if err := s.recorder.RecordTurn(ctx, rec); err != nil {
		s.logger.Warn("turn record failed",
			zap.String("session_id", s.id),
			zap.Int("seq", s.seq),
			zap.Error(err))
	}
}

// renderAction echoes a structured action for the transcript.
func renderAction(act action.Action) string {
	parts := []string{string(act.Kind)}
	if act.Target != "" {
		parts = append(parts, act.Target)
	}
	if act.Item != "" {
		parts = append(parts, "with", act.Item)
	}
	return strings.Join(parts, " ")
}
