// Package testutil provides test helpers: a disposable PostgreSQL container
// for transcript storage tests and a line-oriented Telnet test client.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/cory-johannsen/escaperoom/internal/config"
	"github.com/cory-johannsen/escaperoom/internal/storage/postgres"
)

// PostgresContainer is a running throwaway PostgreSQL instance with a
// connected pool. The container and pool are torn down by t.Cleanup.
type PostgresContainer struct {
	// RawPool is what the transcript repository takes.
	RawPool *pgxpool.Pool
}

// NewPostgresContainer starts a PostgreSQL test container and connects to it.
//
// Precondition: Docker must be available.
// Postcondition: Returns a running container with a connected pool,
// or fails the test.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()
	ctx := context.Background()
	start := time.Now()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(30 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("starting postgres container: %v [%s]", err, time.Since(start))
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("getting container host: %v", err)
	}

	mappedPort, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("getting mapped port: %v", err)
	}

	dbCfg := config.DatabaseConfig{
		Host:            host,
		Port:            mappedPort.Int(),
		User:            "test",
		Password:        "test",
		Name:            "test",
		SSLMode:         "disable",
		MaxConns:        5,
		MinConns:        1,
		MaxConnLifetime: 5 * time.Minute,
	}

	pool, err := postgres.NewPool(ctx, dbCfg)
	if err != nil {
		t.Fatalf("connecting to test postgres: %v [%s]", err, time.Since(start))
	}

	t.Logf("postgres container started [%s]", time.Since(start))

	t.Cleanup(func() {
		pool.Close()
		_ = container.Terminate(ctx)
	})

	return &PostgresContainer{
		RawPool: pool.DB(),
	}
}

// ApplyMigrations creates the transcript schema directly, mirroring the SQL
// under migrations/, so tests do not shell out to the migrate tool.
//
// Precondition: The container must be running.
// Postcondition: The transcript tables exist in the test database.
func (pc *PostgresContainer) ApplyMigrations(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	start := time.Now()

	schema := `
		CREATE TABLE IF NOT EXISTS game_sessions (
			id         UUID        PRIMARY KEY,
			room_id    TEXT        NOT NULL,
			started_at TIMESTAMPTZ NOT NULL,
			ended_at   TIMESTAMPTZ,
			escaped    BOOLEAN     NOT NULL DEFAULT FALSE
		);
		CREATE TABLE IF NOT EXISTS game_turns (
			id         UUID        PRIMARY KEY,
			session_id UUID        NOT NULL REFERENCES game_sessions (id) ON DELETE CASCADE,
			seq        INTEGER     NOT NULL,
			input      TEXT        NOT NULL,
			reply_kind TEXT        NOT NULL,
			reply_text TEXT        NOT NULL,
			scene_key  TEXT        NOT NULL,
			won        BOOLEAN     NOT NULL DEFAULT FALSE,
			at         TIMESTAMPTZ NOT NULL,
			UNIQUE (session_id, seq)
		);
	`

	if _, err := pc.RawPool.Exec(ctx, schema); err != nil {
		t.Fatalf("applying migrations: %v", err)
	}
	t.Logf("migrations applied [%s]", time.Since(start))
}
