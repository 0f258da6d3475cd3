package repository

import (
	"context"
	"database/sql"
	"time"

	"airsense_console/internal/models"
)

// SessionStore is a per-session key/value store with expiry.
type SessionStore interface {
	Get(ctx context.Context, sessionID, key string) (string, bool, error)
	Set(ctx context.Context, sessionID, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, sessionID, key string) error
	Destroy(ctx context.Context, sessionID string) error
	Purge(ctx context.Context) (int64, error)
}

type ActivityRepo interface {
	Append(ctx context.Context, e models.ActivityEvent) error
	List(ctx context.Context, f ActivityFilter) ([]models.ActivityEvent, error)
}

type Repository struct {
	Sessions SessionStore
	Activity ActivityRepo
}

// NewRepository wires the SQLite stores. A non-nil sessions overrides the
// SQLite session store (e.g. with SessionRedis).
func NewRepository(db *sql.DB, sessions SessionStore) *Repository {
	if sessions == nil {
		sessions = NewSessionSQLite(db)
	}
	return &Repository{
		Sessions: sessions,
		Activity: NewActivitySQLite(db),
	}
}
