package postgres

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"cloud-ide/backend/internal/database"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id          UUID PRIMARY KEY,
    subject     TEXT NOT NULL UNIQUE,
    email       TEXT NOT NULL,
    name        TEXT,
    image_url   TEXT,
    created_at  TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS projects (
    id           UUID PRIMARY KEY,
    seq          BIGINT GENERATED ALWAYS AS IDENTITY,
    owner_id     TEXT NOT NULL,
    name         TEXT NOT NULL,
    description  TEXT,
    language     TEXT,
    is_public    BOOLEAN NOT NULL DEFAULT FALSE,
    created_at   TIMESTAMPTZ NOT NULL,
    updated_at   TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS files (
    id          UUID PRIMARY KEY,
    seq         BIGINT GENERATED ALWAYS AS IDENTITY,
    project_id  UUID NOT NULL,
    parent_id   UUID,
    type        TEXT NOT NULL CHECK (type IN ('file', 'folder')),
    name        TEXT NOT NULL,
    path        TEXT NOT NULL,
    content     TEXT,
    language    TEXT,
    created_at  TIMESTAMPTZ NOT NULL,
    updated_at  TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS conversations (
    id          UUID PRIMARY KEY,
    seq         BIGINT GENERATED ALWAYS AS IDENTITY,
    project_id  UUID,
    user_id     TEXT NOT NULL,
    title       TEXT,
    created_at  TIMESTAMPTZ NOT NULL,
    updated_at  TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
    id               UUID PRIMARY KEY,
    seq              BIGINT GENERATED ALWAYS AS IDENTITY,
    conversation_id  UUID NOT NULL,
    role             TEXT NOT NULL CHECK (role IN ('user', 'assistant', 'system')),
    content          TEXT NOT NULL,
    metadata         JSONB,
    created_at       TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);
CREATE INDEX IF NOT EXISTS idx_projects_owner_updated ON projects(owner_id, updated_at);
CREATE INDEX IF NOT EXISTS idx_files_project ON files(project_id, seq);
CREATE INDEX IF NOT EXISTS idx_files_project_parent ON files(project_id, parent_id);
CREATE INDEX IF NOT EXISTS idx_files_path ON files(project_id, path);
CREATE INDEX IF NOT EXISTS idx_conversations_user_updated ON conversations(user_id, updated_at);
CREATE INDEX IF NOT EXISTS idx_conversations_project ON conversations(project_id, seq);
CREATE INDEX IF NOT EXISTS idx_messages_conversation_created ON messages(conversation_id, created_at);
`

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type DB struct {
	pool *pgxpool.Pool
	q    dbtx
	inTx bool
}

var _ database.Store = (*DB)(nil)

// Connect opens a pool against connStr and verifies it with a ping.
func Connect(ctx context.Context, connStr string) (*DB, error) {
	if connStr == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, errors.Wrap(err, "unable to connect to database")
	}
	d := &DB{pool: pool, q: pool}
	if err := d.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	slog.Info("successfully connected to database", "driver", "postgres")
	return d, nil
}

func (d *DB) Ping(ctx context.Context) error {
	return errors.Wrap(d.pool.Ping(ctx), "unable to ping database")
}

func (d *DB) Close() error {
	d.pool.Close()
	return nil
}

func (d *DB) Migrate(ctx context.Context) error {
	if _, err := d.q.Exec(ctx, schema); err != nil {
		return errors.Wrap(err, "failed to run schema migration")
	}
	return nil
}

func (d *DB) WithTx(ctx context.Context, fn func(tx database.Store) error) error {
	if d.inTx {
		return fn(d)
	}
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to start transaction")
	}
	defer tx.Rollback(ctx)

	if err := fn(&DB{pool: d.pool, q: tx, inTx: true}); err != nil {
		return err
	}
	return errors.Wrap(tx.Commit(ctx), "failed to commit transaction")
}

func limitClause(limit int) string {
	if limit <= 0 {
		return ""
	}
	return " LIMIT " + strconv.Itoa(limit)
}
