package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"airsense_console/internal/logger"
	"airsense_console/internal/models"
	"airsense_console/internal/repository"
)

// LogFilter supports history filtering by time range, type and session.
type LogFilter struct {
	From      time.Time // inclusive; zero means no lower bound
	To        time.Time // inclusive; zero means no upper bound
	Type      string    // "", "LOGIN", "DEVICE_CREATED", ...
	SessionID string
	Limit     int
}

type ActivityLogService struct {
	repo repository.ActivityRepo
	log  *logger.Logger
}

func NewActivityLogService(repo repository.ActivityRepo, log *logger.Logger) *ActivityLogService {
	if log == nil {
		log = logger.Nop()
	}
	return &ActivityLogService{repo: repo, log: log}
}

var (
	errInvalidTimeRange = errors.New("invalid time range: From must be <= To")
	errInvalidLimit     = errors.New("invalid limit: must be >= 0")
)

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// normalizeEventType trims spaces and uppercases the event type filter.
func normalizeEventType(s string) string {
	return strings.TrimSpace(strings.ToUpper(s))
}

// normalizeAndValidateFilter prepares query parameters and validates the time range.
func normalizeAndValidateFilter(f LogFilter) (repository.ActivityFilter, error) {
	from := normalizeToUTC(f.From)
	to := normalizeToUTC(f.To)

	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return repository.ActivityFilter{}, errInvalidTimeRange
	}
	if f.Limit < 0 {
		return repository.ActivityFilter{}, errInvalidLimit
	}

	return repository.ActivityFilter{
		From:      from,
		To:        to,
		Type:      normalizeEventType(f.Type),
		SessionID: strings.TrimSpace(f.SessionID),
		Limit:     f.Limit,
	}, nil
}

func (s *ActivityLogService) ListActivity(ctx context.Context, f LogFilter) ([]models.ActivityEvent, error) {
	rf, err := normalizeAndValidateFilter(f)
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, rf)
}

// Record appends e to the audit trail. A failed write is logged and dropped.
func (s *ActivityLogService) Record(ctx context.Context, e models.ActivityEvent) {
	if err := s.repo.Append(ctx, e); err != nil {
		s.log.Warnw("activity_append_failed", "err", err, "type", e.Type)
	}
}
