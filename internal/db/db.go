package db

import (
	"context"
	"database/sql"
	"sync"

	_ "modernc.org/sqlite"
)

// schema is idempotent by construction: every statement is IF NOT EXISTS,
// so repeated execution is harmless.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    name TEXT,
    avatar_url TEXT,
    role TEXT NOT NULL DEFAULT 'free',
    stripe_customer_id TEXT UNIQUE,
    password_hash TEXT,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_users_stripe_customer_id ON users(stripe_customer_id);

CREATE TABLE IF NOT EXISTS subscriptions (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    status TEXT NOT NULL,
    plan_id TEXT NOT NULL DEFAULT '',
    current_period_end INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_subscriptions_user_id ON subscriptions(user_id);
`

var schemaOnce sync.Once

// Open opens the SQLite database at path and applies the connection
// pragmas this service relies on.
func Open(path string) (*sql.DB, error) {
	d, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := d.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
		_ = d.Close()
		return nil, err
	}
	if _, err := d.Exec(`PRAGMA foreign_keys=ON;`); err != nil {
		_ = d.Close()
		return nil, err
	}
	return d, nil
}

// EnsureSchema creates the users and subscriptions tables and their
// indexes. It runs during startup, before the listener accepts traffic,
// rather than lazily from the request path; the sync.Once guard keeps
// repeated wiring from re-running the batch within one process.
func EnsureSchema(ctx context.Context, d *sql.DB) error {
	var err error
	schemaOnce.Do(func() {
		_, err = d.ExecContext(ctx, schema)
	})
	return err
}

// EnsureSchemaForTest applies the schema unconditionally. Test databases
// are created per test, so the process-wide guard does not apply.
func EnsureSchemaForTest(ctx context.Context, d *sql.DB) error {
	_, err := d.ExecContext(ctx, schema)
	return err
}
