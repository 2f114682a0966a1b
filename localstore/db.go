// Package localstore provides the durable on-device stores: a JSON key-value store for
// domain records and preferences, and a binary object store for generated audio.
// Both live in one SQLite file.
package localstore

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB owns the SQLite connection shared by KV and Blobs.
type DB struct {
	conn  *sql.DB
	path  string
	kv    *KV
	blobs *Blobs
}

// Open opens (or creates) the store at path and ensures the schema exists.
func Open(path string) (*DB, error) {
	// ensure parent directory exists to avoid SQLITE_CANTOPEN errors
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping store: %w", err)
	}
	// SQLite serialises writers; a single connection keeps writes in issue order.
	conn.SetMaxOpenConns(1)

	if err := ensureSchema(conn); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn, path: path}
	db.kv = &KV{conn: conn}
	db.blobs = &Blobs{conn: conn}
	return db, nil
}

func ensureSchema(conn *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS kv (
            key TEXT PRIMARY KEY,
            value TEXT NOT NULL,
            updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
        );`,
		`CREATE TABLE IF NOT EXISTS blobs (
            key TEXT PRIMARY KEY,
            data BLOB NOT NULL,
            tag TEXT NOT NULL DEFAULT '',
            updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
        );`,
	}
	for _, s := range stmts {
		if _, err := conn.Exec(s); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// KV returns the key-value store.
func (db *DB) KV() *KV { return db.kv }

// Blobs returns the binary object store.
func (db *DB) Blobs() *Blobs { return db.blobs }

// Path returns the database file path.
func (db *DB) Path() string { return db.path }

// Close closes the connection.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}
	if err := db.conn.Close(); err != nil {
		return fmt.Errorf("failed to close store: %w", err)
	}
	db.conn = nil
	return nil
}
