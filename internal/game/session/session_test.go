package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/escaperoom/internal/game/action"
	"github.com/cory-johannsen/escaperoom/internal/game/engine"
	"github.com/cory-johannsen/escaperoom/internal/game/pipeline"
	"github.com/cory-johannsen/escaperoom/internal/game/room"
)

func testRoom(t testing.TB) *room.Definition {
	def := &room.Definition{
		ID:           "cell",
		Title:        "The Cell",
		Brief:        "A bare stone cell.",
		Victory:      "The door gives and you walk free.",
		TerminalFlag: "escaped",
		Flags:        []room.Flag{{Name: "escaped"}},
		Fixtures: []*room.Fixture{
			{
				ID:      "door",
				Name:    "iron door",
				States:  []string{"shut", "open"},
				Initial: "shut",
				Descriptions: map[string]string{
					"shut": "A shut iron door.",
					"open": "The iron door stands open.",
				},
			},
		},
		Items: []*room.Item{
			{ID: "key", Name: "brass key", Location: room.LocationRoom, Portable: true},
		},
		Interactions: []room.Interaction{
			{
				Item:    "key",
				Target:  "door",
				Effects: []room.Effect{{Kind: room.EffectSetFlag, Flag: "escaped", Value: true}},
				Success: "The key turns and the door swings wide.",
			},
		},
		Scenes: []room.SceneSlot{{ID: "base", Asset: "cell_base"}},
	}
	require.NoError(t, def.Validate())
	return def
}

// mapInterpreter resolves known phrases to structured actions and everything
// else to unrecognized.
type mapInterpreter struct {
	mu    sync.Mutex
	calls int
	known map[string]pipeline.Interpretation
}

func (f *mapInterpreter) Interpret(_ context.Context, raw string, _ room.StateView) (pipeline.Interpretation, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if in, ok := f.known[raw]; ok {
		return in, nil
	}
	return pipeline.Interpretation{Kind: pipeline.InterpretedUnrecognized}, nil
}

func (f *mapInterpreter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// passNarrator echoes the mechanical text, so assertions stay deterministic.
type passNarrator struct{}

func (passNarrator) Narrate(_ context.Context, req pipeline.NarrationRequest) (string, error) {
	return pipeline.MechanicalText(req.Outcome), nil
}

type endCall struct {
	id      string
	at      time.Time
	escaped bool
}

// captureRecorder collects every record; fail makes all methods error.
type captureRecorder struct {
	mu       sync.Mutex
	sessions []SessionRecord
	turns    []TurnRecord
	ends     []endCall
	fail     bool
}

func (r *captureRecorder) BeginSession(_ context.Context, rec SessionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("store down")
	}
	r.sessions = append(r.sessions, rec)
	return nil
}

func (r *captureRecorder) RecordTurn(_ context.Context, rec TurnRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("store down")
	}
	r.turns = append(r.turns, rec)
	return nil
}

func (r *captureRecorder) EndSession(_ context.Context, id string, at time.Time, escaped bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("store down")
	}
	r.ends = append(r.ends, endCall{id: id, at: at, escaped: escaped})
	return nil
}

func newTestSession(t *testing.T, rec Recorder) (*Session, *mapInterpreter) {
	interp := &mapInterpreter{known: map[string]pipeline.Interpretation{
		"take the key": {
			Kind:   pipeline.InterpretedAction,
			Action: action.Action{Kind: action.KindTake, Target: "key"},
		},
		"use the key on the door": {
			Kind:   pipeline.InterpretedAction,
			Action: action.Action{Kind: action.KindUseItemOn, Target: "door", Item: "key"},
		},
	}}
	m := engine.NewMachine(testRoom(t), nil, zaptest.NewLogger(t))
	p := pipeline.New(m, interp, passNarrator{}, pipeline.Config{}, zaptest.NewLogger(t))
	s := New(m, p, rec, zaptest.NewLogger(t))
	return s, interp
}

func TestSession_Begin_OpensTranscriptAndNarratesOpening(t *testing.T) {
	rec := &captureRecorder{}
	s, _ := newTestSession(t, rec)
	t0 := time.Date(2026, 2, 14, 20, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return t0 }

	res := s.Begin(context.Background())

	assert.Equal(t, pipeline.ResultNarrated, res.Kind)
	assert.Contains(t, res.Text, "A bare stone cell.")
	require.Len(t, rec.sessions, 1)
	assert.Equal(t, "cell", rec.sessions[0].RoomID)
	assert.Equal(t, t0, rec.sessions[0].StartedAt)
	assert.Equal(t, rec.sessions[0].ID, s.ID())
}

func TestSession_TakeTurn_RecordsEveryInput(t *testing.T) {
	rec := &captureRecorder{}
	s, _ := newTestSession(t, rec)
	t0 := time.Date(2026, 2, 14, 20, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return t0 }
	s.Begin(context.Background())

	turn := s.TakeTurn(context.Background(), "take the key")
	fumble := s.TakeTurn(context.Background(), "blormph")

	assert.Equal(t, pipeline.ResultNarrated, turn.Kind)
	assert.Equal(t, pipeline.ResultClarification, fumble.Kind)

	require.Len(t, rec.turns, 2)
	first, second := rec.turns[0], rec.turns[1]

	assert.Equal(t, s.ID(), first.SessionID)
	assert.Equal(t, 1, first.Seq)
	assert.Equal(t, "take the key", first.Input)
	assert.Equal(t, "narrated", first.ReplyKind)
	assert.Contains(t, first.ReplyText, "You pick up the brass key.")
	assert.Equal(t, "cell_base", first.SceneKey)
	assert.Equal(t, t0, first.At)
	assert.NotEmpty(t, first.ID)

	assert.Equal(t, 2, second.Seq, "clarifications advance the input sequence too")
	assert.Equal(t, "clarification", second.ReplyKind)
}

func TestSession_TakeTurn_BeginsLazily(t *testing.T) {
	rec := &captureRecorder{}
	s, _ := newTestSession(t, rec)

	s.TakeTurn(context.Background(), "take the key")

	require.Len(t, rec.sessions, 1, "first input opens the transcript when Begin was skipped")
	require.Len(t, rec.turns, 1)
	assert.Equal(t, rec.sessions[0].ID, rec.turns[0].SessionID)
}

func TestSession_RecorderFailure_NeverFailsTheTurn(t *testing.T) {
	rec := &captureRecorder{fail: true}
	s, _ := newTestSession(t, rec)

	res := s.TakeTurn(context.Background(), "take the key")

	assert.Equal(t, pipeline.ResultNarrated, res.Kind)
	assert.Contains(t, res.Text, "You pick up the brass key.")
}

func TestSession_Reset_RestartsMachineAndTranscript(t *testing.T) {
	rec := &captureRecorder{}
	s, _ := newTestSession(t, rec)
	s.Begin(context.Background())
	firstID := s.ID()

	s.TakeTurn(context.Background(), "take the key")

	res := s.Reset(context.Background())

	assert.Equal(t, pipeline.ResultNarrated, res.Kind)
	assert.Contains(t, res.Text, "A bare stone cell.")
	assert.NotEqual(t, firstID, s.ID())

	require.Len(t, rec.ends, 1)
	assert.Equal(t, firstID, rec.ends[0].id)
	assert.False(t, rec.ends[0].escaped)
	require.Len(t, rec.sessions, 2)

	// Progress is gone: the key lies in the room again.
	again := s.TakeTurn(context.Background(), "take the key")
	assert.Contains(t, again.Text, "You pick up the brass key.")
}

func TestSession_End_Idempotent(t *testing.T) {
	rec := &captureRecorder{}
	s, _ := newTestSession(t, rec)
	s.Begin(context.Background())

	s.End(context.Background())
	s.End(context.Background())

	assert.Len(t, rec.ends, 1)
	assert.Equal(t, "", s.ID())
}

func TestSession_End_RecordsEscape(t *testing.T) {
	rec := &captureRecorder{}
	s, _ := newTestSession(t, rec)
	s.Begin(context.Background())

	s.TakeTurn(context.Background(), "take the key")
	won := s.TakeTurn(context.Background(), "use the key on the door")
	require.True(t, won.Won)
	require.True(t, s.Won())

	s.End(context.Background())

	require.Len(t, rec.ends, 1)
	assert.True(t, rec.ends[0].escaped)

	// Winning turn is marked in the transcript as well.
	require.Len(t, rec.turns, 2)
	assert.True(t, rec.turns[1].Won)
	assert.Equal(t, "gameover", rec.turns[1].ReplyKind)
}

func TestSession_TakeAction_SkipsInterpreter(t *testing.T) {
	rec := &captureRecorder{}
	s, interp := newTestSession(t, rec)
	s.Begin(context.Background())

	res := s.TakeAction(context.Background(), action.Action{Kind: action.KindHint})

	assert.Equal(t, pipeline.ResultNarrated, res.Kind)
	assert.Equal(t, 0, interp.callCount())
	require.Len(t, rec.turns, 1)
	assert.Equal(t, "hint", rec.turns[0].Input)

	s.TakeAction(context.Background(), action.Action{Kind: action.KindUnlock, Target: "door", Item: "key"})
	assert.Equal(t, "unlock door with key", rec.turns[1].Input)
}

func TestSession_ConcurrentInputsSerialize(t *testing.T) {
	rec := &captureRecorder{}
	s, _ := newTestSession(t, rec)
	s.Begin(context.Background())

	const n = 8
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			s.TakeTurn(context.Background(), "blormph")
		}()
	}
	wg.Wait()

	require.Len(t, rec.turns, n)
	seqs := make(map[int]bool, n)
	for _, tr := range rec.turns {
		seqs[tr.Seq] = true
	}
	for i := 1; i <= n; i++ {
		assert.True(t, seqs[i], "sequence %d missing", i)
	}
}

func TestHost_SingleOccupancy(t *testing.T) {
	s, _ := newTestSession(t, nil)
	h := NewHost(s)

	claimed, err := h.Claim()
	require.NoError(t, err)
	assert.Same(t, s, claimed)
	assert.True(t, h.Occupied())

	_, err = h.Claim()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRoomBusy))

	h.Release()
	assert.False(t, h.Occupied())
	_, err = h.Claim()
	assert.NoError(t, err)
}
