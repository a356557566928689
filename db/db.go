// ABOUTME: SQLite connection management and initialization
// ABOUTME: Opens the database file in WAL mode and applies the schema
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-sqlite3"
)

// sqliteDriver is go-sqlite3 with go_lower registered on every connection.
// SQLite's own LOWER only folds ASCII, so search and name ordering use
// go_lower to match the in-memory stores.
const sqliteDriver = "sqlite3_grimoire"

func init() {
	sql.Register(sqliteDriver, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("go_lower", strings.ToLower, true)
		},
	})
}

// OpenDatabase opens (creating if needed) the SQLite file at path.
func OpenDatabase(path string) (*sql.DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	db, err := sql.Open(sqliteDriver, path+"?_journal_mode=WAL")
	if err != nil {
		return nil, err
	}

	// A single connection avoids "database is locked" under concurrent writers.
	db.SetMaxOpenConns(1)

	if err := InitSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}
