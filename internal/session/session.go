// Package session binds a session store to one browser session.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"airsense_console/internal/models"
	"airsense_console/internal/repository"
)

const (
	keyToken = "token"
	keyFlash = "flash"
)

// Accessor reads and writes the values of a single session. It satisfies
// gateway.SessionAccessor.
type Accessor struct {
	store repository.SessionStore
	id    string
	ttl   time.Duration
}

// New returns an accessor for session id. ttl bounds how long written values live.
func New(store repository.SessionStore, id string, ttl time.Duration) *Accessor {
	return &Accessor{store: store, id: id, ttl: ttl}
}

func (a *Accessor) ID() string { return a.id }

// Token returns the bearer token, or "" when the session has none.
func (a *Accessor) Token(ctx context.Context) (string, error) {
	token, _, err := a.store.Get(ctx, a.id, keyToken)
	return token, err
}

func (a *Accessor) SetToken(ctx context.Context, token string) error {
	return a.store.Set(ctx, a.id, keyToken, token, a.ttl)
}

// HasToken reports whether the session is logged in. Store errors count as no.
func (a *Accessor) HasToken(ctx context.Context) bool {
	token, err := a.Token(ctx)
	return err == nil && token != ""
}

// Clear drops the whole session, token included.
func (a *Accessor) Clear(ctx context.Context) error {
	return a.store.Destroy(ctx, a.id)
}

// Flash stores a notification to be shown on the next rendered page. It
// replaces any notification not yet shown.
func (a *Accessor) Flash(ctx context.Context, n models.Notification) error {
	b, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal flash: %w", err)
	}
	ttl := n.Duration
	if ttl <= 0 {
		ttl = models.NotificationDuration
	}
	// kept past its display time so a slow redirect still picks it up
	return a.store.Set(ctx, a.id, keyFlash, string(b), ttl+time.Minute)
}

// PopFlash returns the pending notification once and removes it.
func (a *Accessor) PopFlash(ctx context.Context) (*models.Notification, error) {
	raw, ok, err := a.store.Get(ctx, a.id, keyFlash)
	if err != nil || !ok {
		return nil, err
	}
	if err := a.store.Delete(ctx, a.id, keyFlash); err != nil {
		return nil, err
	}
	var n models.Notification
	if err := json.Unmarshal([]byte(raw), &n); err != nil {
		return nil, fmt.Errorf("unmarshal flash: %w", err)
	}
	return &n, nil
}
