// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo (calls C code from Go), which means you need a C
// compiler installed and cross-compilation becomes painful. modernc.org/sqlite
// is a pure Go translation of the SQLite C code — no C compiler needed, works
// everywhere Go works.
//
// The save toggle leans on this package in one important way: the
// UNIQUE(user_id, snippet_id) constraint on saved_snippets is the only thing
// standing between two concurrent toggles and a duplicated save row. The
// constraint lives here, in the store, because the store is shared across
// process instances — an application-level mutex would only cover one process.
package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	// Side-effect import: the sqlite package's init() registers itself with
	// database/sql as a driver named "sqlite". After this import,
	// sql.Open("sqlite", ...) knows how to talk to SQLite.
	_ "modernc.org/sqlite"
)

// Timestamps are bound as fixed-width UTC text. The keyset predicates compare
// created_at with < in SQL, which for TEXT is a byte comparison — a
// fixed-width format (nanoseconds never truncated, constant zone) keeps that
// byte order identical to time order.
const timeLayout = "2006-01-02 15:04:05.000000000-07:00"

func fmtTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// DB wraps a sql.DB connection pool and provides the repository methods.
// It implements SnippetRepository, SavedSnippetRepository and UserRepository
// from the repository package; the service layer only ever sees those
// interfaces.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
//
// dbPath examples:
//   - "data/snippetshare.db"  → file-based database (persistent)
//   - ":memory:"              → in-memory database (used by the tests)
//
// sql.Open does NOT actually open a connection — it just creates a pool
// manager. We call Ping() to force an immediate connection so a bad path or
// permissions issue surfaces here rather than on the first query.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL mode allows concurrent reads while a write is happening. Default
	// SQLite locks the whole database during writes, which would serialize
	// every feed read behind every toggle.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are OFF by default in SQLite (backwards compatibility).
	// We need them ON: saved_snippets references users and snippets, and
	// deleting a snippet must cascade to its save links.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool. Always defer this next to New.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS is idempotent, so
// running it on every start is safe. For a bigger deployment you'd reach for
// golang-migrate; a three-table schema doesn't need it.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id         TEXT PRIMARY KEY,
			github_id  INTEGER NOT NULL UNIQUE,
			login      TEXT NOT NULL,
			email      TEXT NOT NULL DEFAULT '',
			name       TEXT NOT NULL DEFAULT '',
			avatar_url TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	// The feed index matches the compound sort key used by every paginated
	// query: (created_at DESC, id DESC). Without it each page is a full scan.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS snippets (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			code        TEXT NOT NULL,
			language    TEXT NOT NULL,
			visibility  TEXT NOT NULL DEFAULT 'public',
			description TEXT NOT NULL DEFAULT '',
			owner_id    TEXT NOT NULL REFERENCES users(id),
			created_at  DATETIME NOT NULL,
			updated_at  DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_snippets_feed ON snippets(created_at DESC, id DESC);
		CREATE INDEX IF NOT EXISTS idx_snippets_owner ON snippets(owner_id);
	`)
	if err != nil {
		return fmt.Errorf("creating snippets table: %w", err)
	}

	// UNIQUE(user_id, snippet_id) is load-bearing: the save toggle's
	// check-then-act is not atomic, so a losing concurrent insert must fail
	// here instead of creating a second row for the same pair.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS saved_snippets (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL REFERENCES users(id),
			snippet_id TEXT NOT NULL REFERENCES snippets(id) ON DELETE CASCADE,
			created_at DATETIME NOT NULL,
			UNIQUE (user_id, snippet_id)
		);
		CREATE INDEX IF NOT EXISTS idx_saved_user_time ON saved_snippets(user_id, created_at DESC, id DESC);
		CREATE INDEX IF NOT EXISTS idx_saved_snippet ON saved_snippets(snippet_id);
	`)
	if err != nil {
		return fmt.Errorf("creating saved_snippets table: %w", err)
	}

	return nil
}
