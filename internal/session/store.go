package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/mosaicwm/mosaic/internal/logging"
)

// WorkspaceInfo is the summary row returned by List, used by `mosaic
// session list`.
type WorkspaceInfo struct {
	Name      string
	UpdatedAt int64
}

// Save serializes snap to JSON, computes its checksum, and upserts it
// under name. updatedAt is a Unix timestamp supplied by the caller
// (session never reads the clock itself, so it stays deterministic and
// testable).
func Save(ctx context.Context, db *sql.DB, name string, snap LayoutSnapshot, updatedAt int64) error {
	log := logging.FromContext(ctx)

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("session: marshal snapshot: %w", err)
	}

	sum, err := checksum(data)
	if err != nil {
		return fmt.Errorf("session: compute checksum: %w", err)
	}

	const upsert = `
INSERT INTO workspaces (name, snapshot, checksum, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(name) DO UPDATE SET snapshot = excluded.snapshot, checksum = excluded.checksum, updated_at = excluded.updated_at`

	if _, err := db.ExecContext(ctx, upsert, name, data, sum, updatedAt); err != nil {
		return fmt.Errorf("session: save workspace %q: %w", name, err)
	}

	log.Debug().Str("workspace", name).Int("bytes", len(data)).Msg("workspace snapshot saved")
	return nil
}

// Load reads and checksum-verifies the snapshot stored under name. A
// checksum mismatch is returned as an error rather than silently
// ignored — a caller restoring a corrupted snapshot would otherwise see
// confusing Split failures with no clue the root cause was storage.
func Load(ctx context.Context, db *sql.DB, name string) (LayoutSnapshot, error) {
	const query = `SELECT snapshot, checksum FROM workspaces WHERE name = ?`

	var data []byte
	var sum string
	row := db.QueryRowContext(ctx, query, name)
	if err := row.Scan(&data, &sum); err != nil {
		if err == sql.ErrNoRows {
			return LayoutSnapshot{}, fmt.Errorf("session: no saved workspace %q: %w", name, err)
		}
		return LayoutSnapshot{}, fmt.Errorf("session: load workspace %q: %w", name, err)
	}

	if err := verifyChecksum(data, sum); err != nil {
		return LayoutSnapshot{}, fmt.Errorf("session: workspace %q: %w", name, err)
	}

	var snap LayoutSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return LayoutSnapshot{}, fmt.Errorf("session: unmarshal workspace %q: %w", name, err)
	}

	return snap, nil
}

// List returns every saved workspace's name and last-save time, newest
// first, for `mosaic session list`.
func List(ctx context.Context, db *sql.DB) ([]WorkspaceInfo, error) {
	rows, err := db.QueryContext(ctx, `SELECT name, updated_at FROM workspaces ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("session: list workspaces: %w", err)
	}
	defer rows.Close()

	var out []WorkspaceInfo
	for rows.Next() {
		var info WorkspaceInfo
		if err := rows.Scan(&info.Name, &info.UpdatedAt); err != nil {
			return nil, fmt.Errorf("session: scan workspace row: %w", err)
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// Delete removes the saved workspace named name, if any.
func Delete(ctx context.Context, db *sql.DB, name string) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM workspaces WHERE name = ?`, name); err != nil {
		return fmt.Errorf("session: delete workspace %q: %w", name, err)
	}
	return nil
}
