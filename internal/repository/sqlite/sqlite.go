// Package sqlite implements the repository interfaces using SQLite as the storage backend.
//
// WHY SQLITE?
// SQLite is an embedded database. It lives inside the Go binary and stores
// everything in a single file, so the HTTP server and the operator CLI can
// share one database without any infrastructure.
//
// DRIVER:
// modernc.org/sqlite is a pure Go translation of SQLite (no CGo), registered
// with database/sql under the driver name "sqlite".
//
// SCHEMA:
// Tables are created by goose migrations embedded from migrations/*.sql.
// Timestamps are stored as INTEGER unix nanoseconds so ORDER BY created_at
// is a numeric sort.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/pressly/goose/v3"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// goose keeps its base FS and dialect in package globals.
var gooseMu sync.Mutex

// busyTimeout is how long a connection waits on a locked database before
// failing. The server and the operator CLI may write at the same time.
const busyTimeout = 5 * time.Second

// DB wraps a sql.DB connection pool and implements both
// repository.RecommendationRepository and repository.RoleRepository.
type DB struct {
	conn *sql.DB
}

// New opens the database at dbPath, creating its parent directory if needed,
// and applies pending migrations.
//
// dbPath examples:
//   - "data/hypeshelf.db" → file-based database (persistent)
//   - ":memory:"          → in-memory database (tests)
//
// PRAGMAS IN THE DSN:
// database/sql hands out several connections from its pool, and most SQLite
// pragmas are per connection. Passing them as _pragma DSN parameters makes
// the driver apply them to every new connection instead of just the first.
func New(dbPath string) (*DB, error) {
	if !isMemory(dbPath) {
		file, _, _ := strings.Cut(strings.TrimPrefix(dbPath, "file:"), "?")
		if dir := filepath.Dir(file); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("sqlite: creating database directory: %w", err)
			}
		}
	}

	conn, err := sql.Open("sqlite", buildDSN(dbPath))
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Every connection to ":memory:" is a separate, empty database.
	// Pin the pool to one connection so all queries see the same data.
	if isMemory(dbPath) {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets readers proceed while a writer holds the lock. The journal
	// mode is persistent for file databases, so setting it once is enough.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(context.Background()); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping checks that the database is reachable. Used by the health endpoint.
func (db *DB) Ping(ctx context.Context) error {
	if err := db.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite: ping: %w", err)
	}
	return nil
}

// Migrate applies any pending migrations. New already does this; the
// operator CLI exposes it as an explicit command.
func (db *DB) Migrate(ctx context.Context) error {
	return db.migrate(ctx)
}

func (db *DB) migrate(ctx context.Context) error {
	gooseMu.Lock()
	defer func() {
		goose.SetBaseFS(nil)
		gooseMu.Unlock()
	}()

	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db.conn, "migrations"); err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}
	return nil
}

// buildDSN appends the per-connection pragmas, keeping any query string
// already present in dbPath ("file:x.db?mode=ro").
func buildDSN(dbPath string) string {
	sep := "?"
	if strings.Contains(dbPath, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%s_pragma=busy_timeout(%d)&_pragma=foreign_keys(1)",
		dbPath, sep, busyTimeout.Milliseconds())
}

func isMemory(dbPath string) bool {
	return dbPath == ":memory:" || strings.Contains(dbPath, "mode=memory")
}

// placeholders returns "?, ?, ?" with n question marks, for IN (...) clauses.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// toNanos and fromNanos convert between time.Time and the INTEGER columns.
func toNanos(t time.Time) int64 {
	return t.UnixNano()
}

func fromNanos(n int64) time.Time {
	return time.Unix(0, n).UTC()
}
