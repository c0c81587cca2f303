package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/escaperoom/internal/game/session"
)

// ErrSessionNotFound is returned when a transcript session lookup yields no results.
var ErrSessionNotFound = errors.New("session not found")

// ErrDuplicateTurn is returned when a turn reuses a (session, seq) pair.
var ErrDuplicateTurn = errors.New("duplicate turn sequence")

// TranscriptSession is a stored playthrough: one session row plus its turns.
type TranscriptSession struct {
	ID        string
	RoomID    string
	StartedAt time.Time
	EndedAt   *time.Time
	Escaped   bool
}

// TranscriptRepository persists play transcripts. It implements
// session.Recorder; the session layer treats failures as best-effort, so
// methods report errors without retrying.
type TranscriptRepository struct {
	db *pgxpool.Pool
}

var _ session.Recorder = (*TranscriptRepository)(nil)

// NewTranscriptRepository creates a TranscriptRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewTranscriptRepository(db *pgxpool.Pool) *TranscriptRepository {
	return &TranscriptRepository{db: db}
}

// BeginSession opens a transcript session.
//
// Precondition: rec.ID must be a uuid string not yet recorded.
func (r *TranscriptRepository) BeginSession(ctx context.Context, rec session.SessionRecord) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO game_sessions (id, room_id, started_at)
		 VALUES ($1, $2, $3)`,
		rec.ID, rec.RoomID, rec.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}
	return nil
}

// RecordTurn appends one transcript line.
//
// Postcondition: Returns ErrDuplicateTurn when (session, seq) is already taken.
func (r *TranscriptRepository) RecordTurn(ctx context.Context, rec session.TurnRecord) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO game_turns
			(id, session_id, seq, input, reply_kind, reply_text, scene_key, won, at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		rec.ID, rec.SessionID, rec.Seq, rec.Input,
		rec.ReplyKind, rec.ReplyText, rec.SceneKey, rec.Won, rec.At,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateTurn
		}
		return fmt.Errorf("inserting turn: %w", err)
	}
	return nil
}

// EndSession stamps the session closed with its final outcome.
//
// Postcondition: Returns ErrSessionNotFound when no such session exists.
func (r *TranscriptRepository) EndSession(ctx context.Context, sessionID string, endedAt time.Time, escaped bool) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE game_sessions SET ended_at = $1, escaped = $2 WHERE id = $3`,
		endedAt, escaped, sessionID,
	)
	if err != nil {
		return fmt.Errorf("closing session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// GetSession retrieves one session row.
//
// Postcondition: Returns the session or ErrSessionNotFound.
func (r *TranscriptRepository) GetSession(ctx context.Context, sessionID string) (TranscriptSession, error) {
	var s TranscriptSession
	err := r.db.QueryRow(ctx,
		`SELECT id, room_id, started_at, ended_at, escaped
		 FROM game_sessions WHERE id = $1`,
		sessionID,
	).Scan(&s.ID, &s.RoomID, &s.StartedAt, &s.EndedAt, &s.Escaped)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return TranscriptSession{}, ErrSessionNotFound
		}
		return TranscriptSession{}, fmt.Errorf("querying session: %w", err)
	}
	return s, nil
}

// ListTurns returns the session's transcript lines in input order.
//
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *TranscriptRepository) ListTurns(ctx context.Context, sessionID string) ([]session.TurnRecord, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, session_id, seq, input, reply_kind, reply_text, scene_key, won, at
		 FROM game_turns WHERE session_id = $1 ORDER BY seq ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing turns: %w", err)
	}
	defer rows.Close()

	var turns []session.TurnRecord
	for rows.Next() {
		var tr session.TurnRecord
		if err := rows.Scan(
			&tr.ID, &tr.SessionID, &tr.Seq, &tr.Input,
			&tr.ReplyKind, &tr.ReplyText, &tr.SceneKey, &tr.Won, &tr.At,
		); err != nil {
			return nil, fmt.Errorf("scanning turn: %w", err)
		}
		turns = append(turns, tr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating turns: %w", err)
	}
	return turns, nil
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	// pgx wraps PostgreSQL errors; check for SQLSTATE 23505 (unique_violation)
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}
