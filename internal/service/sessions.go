package service

import (
	"context"
	"time"

	"airsense_console/internal/logger"
	"airsense_console/internal/repository"
	"airsense_console/internal/session"
)

type SessionService struct {
	store repository.SessionStore
	ttl   time.Duration
}

func NewSessionService(store repository.SessionStore, ttl time.Duration) *SessionService {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionService{store: store, ttl: ttl}
}

func (s *SessionService) Session(id string) *session.Accessor {
	return session.New(s.store, id, s.ttl)
}

// JanitorService periodically purges expired session values.
type JanitorService struct {
	store repository.SessionStore
	log   *logger.Logger
}

func NewJanitorService(store repository.SessionStore, log *logger.Logger) *JanitorService {
	if log == nil {
		log = logger.Nop()
	}
	return &JanitorService{store: store, log: log}
}

// DefaultPurgeInterval is used when Run is given no positive tick.
const DefaultPurgeInterval = 10 * time.Minute

// Run ticks at the given interval until ctx is canceled.
func (j *JanitorService) Run(ctx context.Context, tick time.Duration) {
	if tick <= 0 {
		tick = DefaultPurgeInterval
	}
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := j.store.Purge(ctx)
			if err != nil {
				if ctx.Err() == nil {
					j.log.Warnw("session_purge_failed", "err", err)
				}
				continue
			}
			if n > 0 {
				j.log.Debugw("session_purged", "rows", n)
			}
		}
	}
}
