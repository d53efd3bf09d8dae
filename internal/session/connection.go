// Package session persists the tiling layout tree across runs: a
// workspace's shape (container flow/size/pct, splitter presence) and
// each leaf's PaneRecord are captured into a LayoutSnapshot, stored in a
// local SQLite database, and replayed through tilelayout.Split to
// reconstruct an equivalent tree on the next launch.
package session

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/ncruces/go-sqlite3/driver" // pure-Go SQLite driver
	_ "github.com/ncruces/go-sqlite3/embed"  // embedded SQLite WASM binary

	"github.com/mosaicwm/mosaic/internal/logging"
)

const dbDirPerm = 0o750

// Open creates (if needed) the database directory, opens the session
// database at dbPath, applies performance pragmas, and runs any pending
// migrations. The returned *sql.DB must be closed by the caller.
func Open(ctx context.Context, dbPath string) (*sql.DB, error) {
	log := logging.FromContext(ctx)

	if dbPath == "" {
		return nil, fmt.Errorf("session: database path cannot be empty")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), dbDirPerm); err != nil {
		return nil, fmt.Errorf("session: create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("session: open database: %w", err)
	}

	configurePool(db)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("session: connect to database: %w", err)
	}

	if err := applyPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("session: run migrations: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("session database opened")
	return db, nil
}

// applyPragmas configures SQLite for a single-writer, mostly-idle
// workload: layout saves are small and infrequent, so durability and
// simplicity matter more here than raw throughput.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("session: set pragma %q: %w", pragma, err)
		}
	}
	return nil
}

// configurePool limits the pool to a single connection: SQLite allows
// only one writer at a time, and the session store's access pattern
// (load once at startup, save on autosave/exit) never needs concurrent
// connections.
func configurePool(db *sql.DB) {
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)
}

// Close closes the session database.
func Close(db *sql.DB) error {
	if db == nil {
		return nil
	}
	return db.Close()
}
