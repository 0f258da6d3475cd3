package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"airsense_console/internal/models"
	"airsense_console/internal/session"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const defaultSessionTTL = 24 * time.Hour

// Domain errors for auth flows.
var (
	ErrMissingCredentials = errors.New("email and password are required")
	ErrInvalidSession     = errors.New("invalid session")
	ErrNoSigningKey       = errors.New("session signing key is not configured")
)

// AuthService issues console session cookies and logs sessions in and out
// of the backend.
type AuthService struct {
	backend    Connector
	activity   Recorder
	signingKey []byte
	ttl        time.Duration
	now        func() time.Time
}

func NewAuthService(backend Connector, activity Recorder, signingKey string, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &AuthService{
		backend:    backend,
		activity:   activity,
		signingKey: []byte(signingKey),
		ttl:        ttl,
		now:        time.Now,
	}
}

// SessionClaims is the payload of the session cookie.
type SessionClaims struct {
	jwt.RegisteredClaims
	SessionID string `json:"sid"`
}

// IssueSession starts a new anonymous session and returns its id and the
// signed cookie value that names it.
func (s *AuthService) IssueSession() (string, string, error) {
	if len(s.signingKey) == 0 {
		return "", "", ErrNoSigningKey
	}
	sid := uuid.NewString()
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		SessionID: sid,
	})
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", "", fmt.Errorf("sign session: %w", err)
	}
	return sid, signed, nil
}

// ParseSession verifies a cookie value and returns the session id it names.
func (s *AuthService) ParseSession(cookie string) (string, error) {
	if len(s.signingKey) == 0 {
		return "", ErrNoSigningKey
	}
	token, err := jwt.ParseWithClaims(cookie, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Ensure HMAC signing is used
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.signingKey, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return "", ErrInvalidSession
	}
	return claims.SessionID, nil
}

// Login exchanges the credentials for a backend token kept in sess. Both
// fields are required; otherwise nothing is sent.
func (s *AuthService) Login(ctx context.Context, sess *session.Accessor, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return ErrMissingCredentials
	}
	if err := s.backend.Connect(sess).Login(ctx, email, password); err != nil {
		return err
	}
	s.record(ctx, sess, models.ActivityLogin, "logged in", map[string]any{"email": email})
	return nil
}

// Logout drops the session and everything in it.
func (s *AuthService) Logout(ctx context.Context, sess *session.Accessor) error {
	if err := sess.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.record(ctx, sess, models.ActivityLogout, "logged out", nil)
	return nil
}

func (s *AuthService) record(ctx context.Context, sess *session.Accessor, typ, description string, meta any) {
	if s.activity == nil {
		return
	}
	s.activity.Record(context.WithoutCancel(ctx), models.ActivityEvent{
		SessionID:   sess.ID(),
		Type:        typ,
		Description: description,
		Metadata:    meta,
	})
}
