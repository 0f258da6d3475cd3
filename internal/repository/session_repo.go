package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// DefaultSessionTTL applies when a caller stores a value without a lifetime.
const DefaultSessionTTL = 24 * time.Hour

type SessionSQLite struct {
	db  *sql.DB
	now func() time.Time
}

func NewSessionSQLite(db *sql.DB) *SessionSQLite {
	return &SessionSQLite{db: db, now: time.Now}
}

var _ SessionStore = (*SessionSQLite)(nil)

const (
	upsertSessionValueSQL = `
		INSERT INTO session_values (session_id, key, value, expires_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(session_id, key) DO UPDATE SET
			value=excluded.value,
			expires_at=excluded.expires_at
	`

	selectSessionValueSQL = `SELECT value FROM session_values WHERE session_id = ? AND key = ? AND expires_at > ?`
	deleteSessionValueSQL = `DELETE FROM session_values WHERE session_id = ? AND key = ?`
	deleteSessionSQL      = `DELETE FROM session_values WHERE session_id = ?`
	purgeSessionsSQL      = `DELETE FROM session_values WHERE expires_at <= ?`
)

// Get returns the value stored under key. ok is false when the value is
// missing or expired.
func (r *SessionSQLite) Get(ctx context.Context, sessionID, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, selectSessionValueSQL, sessionID, key, r.now().Unix()).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("select session value %q: %w", key, err)
	}
	return value, true, nil
}

// Set upserts key for the session; ttl <= 0 means DefaultSessionTTL.
func (r *SessionSQLite) Set(ctx context.Context, sessionID, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	expiresAt := r.now().Add(ttl).Unix()
	if _, err := r.db.ExecContext(ctx, upsertSessionValueSQL, sessionID, key, value, expiresAt); err != nil {
		return fmt.Errorf("upsert session value %q: %w", key, err)
	}
	return nil
}

func (r *SessionSQLite) Delete(ctx context.Context, sessionID, key string) error {
	if _, err := r.db.ExecContext(ctx, deleteSessionValueSQL, sessionID, key); err != nil {
		return fmt.Errorf("delete session value %q: %w", key, err)
	}
	return nil
}

// Destroy drops every value of the session.
func (r *SessionSQLite) Destroy(ctx context.Context, sessionID string) error {
	if _, err := r.db.ExecContext(ctx, deleteSessionSQL, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Purge removes expired values and reports how many rows went away.
func (r *SessionSQLite) Purge(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, purgeSessionsSQL, r.now().Unix())
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge sessions rows affected: %w", err)
	}
	return n, nil
}
