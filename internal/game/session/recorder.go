package session

import (
	"context"
	"time"
)

// SessionRecord opens one transcript session: one playthrough of one room.
type SessionRecord struct {
	// ID is the session identifier (uuid string).
	ID string
	// RoomID names the room definition being played.
	RoomID string
	// StartedAt is the session open time.
	StartedAt time.Time
}

// TurnRecord is one transcript line: what the player typed and what the game
// replied. Seq counts every input, clarifications included, so transcripts
// replay in order even when the engine consumed no turn.
type TurnRecord struct {
	// ID is the turn identifier (uuid string).
	ID string
	// SessionID ties the turn to its transcript session.
	SessionID string
	// Seq is the 1-based input sequence within the session.
	Seq int
	// Input is the raw player input.
	Input string
	// ReplyKind classifies the reply (narrated, clarification, retry, gameover).
	ReplyKind string
	// ReplyText is the prose shown to the player.
	ReplyText string
	// SceneKey identifies the scene composition after the turn.
	SceneKey string
	// Won marks the turn that set the terminal flag.
	Won bool
	// At is the turn time.
	At time.Time
}

// Recorder persists transcripts. Recording is best-effort: the session layer
// logs recorder errors and keeps playing, so a storage outage never blocks a
// turn.
type Recorder interface {
	BeginSession(ctx context.Context, rec SessionRecord) error
	RecordTurn(ctx context.Context, rec TurnRecord) error
	EndSession(ctx context.Context, sessionID string, endedAt time.Time, escaped bool) error
}

// NopRecorder drops every record. The default when no store is configured.
type NopRecorder struct{}

func (NopRecorder) BeginSession(context.Context, SessionRecord) error { return nil }

func (NopRecorder) RecordTurn(context.Context, TurnRecord) error { return nil }

func (NopRecorder) EndSession(context.Context, string, time.Time, bool) error { return nil }
