package wizard

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// DraftStore mirrors wizard state to a small local SQLite database, one
// row per tenant. Writes are last-write-wins; two sessions editing the
// same tenant's draft race and the later save sticks.
type DraftStore struct {
	db *sql.DB
}

func NewDraftStore(path string) (*DraftStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS order_drafts (
		user_id INTEGER PRIMARY KEY,
		snapshot BLOB NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`)
	if err != nil {
		return nil, fmt.Errorf("create order_drafts table: %w", err)
	}

	return &DraftStore{db: db}, nil
}

func (ds *DraftStore) Close() error {
	return ds.db.Close()
}

// Save upserts the tenant's draft snapshot.
func (ds *DraftStore) Save(ctx context.Context, userID int, st *State) error {
	data, err := st.Serialize()
	if err != nil {
		return err
	}
	_, err = ds.db.ExecContext(ctx, `
		INSERT INTO order_drafts (user_id, snapshot, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(user_id) DO UPDATE SET snapshot = excluded.snapshot, updated_at = CURRENT_TIMESTAMP
	`, userID, data)
	return err
}

// Load restores the tenant's draft. A missing row or an unreadable
// snapshot (old version, corrupt data) comes back as (nil, false):
// the wizard simply starts fresh.
func (ds *DraftStore) Load(ctx context.Context, userID int) (*State, bool, error) {
	var data []byte
	err := ds.db.QueryRowContext(ctx, `SELECT snapshot FROM order_drafts WHERE user_id = ?`, userID).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	st, err := RestoreSnapshot(data)
	if err != nil {
		slog.Warn("Discarding unreadable order draft", "user_id", userID, "error", err)
		return nil, false, nil
	}
	return st, true, nil
}

// Clear removes the tenant's draft row.
func (ds *DraftStore) Clear(ctx context.Context, userID int) error {
	_, err := ds.db.ExecContext(ctx, `DELETE FROM order_drafts WHERE user_id = ?`, userID)
	return err
}
