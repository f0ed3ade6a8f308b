package sqlite

import (
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

// MemoryDSN keeps the database for the lifetime of the process only.
const MemoryDSN = ":memory:"

// DB wraps the SQLite database connection with thread-safe access.
type DB struct {
	conn *sql.DB
	mu   sync.RWMutex
}

// New opens dsn and creates the schema. With MemoryDSN everything is lost on Close.
func New(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection: an in-memory database exists per connection.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

// migrate creates the necessary tables if they don't exist.
func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		camera TEXT NOT NULL,
		mode TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		stopped_at DATETIME
	);

	CREATE TABLE IF NOT EXISTS captures (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		camera TEXT NOT NULL,
		seq INTEGER NOT NULL,
		trigger_kind TEXT NOT NULL,
		timestamp DATETIME NOT NULL,
		width INTEGER DEFAULT 0,
		height INTEGER DEFAULT 0,
		size_bytes INTEGER DEFAULT 0,
		mime_type TEXT NOT NULL DEFAULT 'image/png'
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_camera ON sessions(camera);
	CREATE INDEX IF NOT EXISTS idx_captures_session ON captures(session_id);
	CREATE INDEX IF NOT EXISTS idx_captures_camera ON captures(camera);
	CREATE INDEX IF NOT EXISTS idx_captures_timestamp ON captures(timestamp);
	`

	_, err := db.conn.Exec(schema)
	return err
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn returns the underlying database connection for use by repositories.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Lock acquires a write lock.
func (db *DB) Lock() {
	db.mu.Lock()
}

// Unlock releases the write lock.
func (db *DB) Unlock() {
	db.mu.Unlock()
}

// RLock acquires a read lock.
func (db *DB) RLock() {
	db.mu.RLock()
}

// RUnlock releases the read lock.
func (db *DB) RUnlock() {
	db.mu.RUnlock()
}
