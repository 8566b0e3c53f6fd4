package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nexusliving/bms/domain"
	"github.com/nexusliving/bms/pkg/logger"
	"github.com/nexusliving/bms/pkg/token"
	"github.com/nexusliving/bms/repository"
)

// TokenIssuer signs and verifies bearer tokens.
type TokenIssuer interface {
	Issue(email, sessionID string, ttl time.Duration) (string, time.Time, error)
	Parse(raw string) (*token.Claims, error)
}

// Grant is the result of a login or refresh.
type Grant struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	Session   *domain.Session `json:"session"`
}

type UseCase struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	tokens   TokenIssuer
	maxTTL   time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

func New(users repository.UserRepository, sessions repository.SessionRepository, tokens TokenIssuer, maxTTL time.Duration, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxTTL <= 0 {
		maxTTL = time.Hour
	}
	return &UseCase{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		maxTTL:   maxTTL,
		logger:   logger,
		now:      time.Now,
	}
}

// Login opens a session for an existing profile and issues a token bound to it.
func (uc *UseCase) Login(ctx context.Context, email string, ttl time.Duration) (*Grant, error) {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return nil, domain.ErrUnauthorized
	}
	if _, err := uc.users.GetByEmail(ctx, email); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}

	ttl = uc.clampTTL(ttl)
	now := uc.now()
	session := &domain.Session{
		ID:        uuid.NewString(),
		Email:     email,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	grant, err := uc.grant(session, ttl)
	if err != nil {
		return nil, err
	}
	logger.WithRequestID(ctx, uc.logger).Info("session opened", zap.String("email", email), zap.String("session_id", session.ID))
	return grant, nil
}

// Refresh extends a live session and issues a fresh token for it.
func (uc *UseCase) Refresh(ctx context.Context, sessionID string, ttl time.Duration) (*Grant, error) {
	if sessionID == "" {
		return nil, domain.ErrUnauthorized
	}
	ttl = uc.clampTTL(ttl)
	session, err := uc.sessions.Extend(ctx, sessionID, ttl)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("extend session: %w", err)
	}
	return uc.grant(session, ttl)
}

func (uc *UseCase) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return domain.ErrUnauthorized
	}
	return uc.sessions.Delete(ctx, sessionID)
}

// Authenticate resolves a bearer token to the email it was issued for. The
// token's session must still be open.
func (uc *UseCase) Authenticate(ctx context.Context, raw string) (string, string, error) {
	claims, err := uc.tokens.Parse(raw)
	if err != nil {
		return "", "", domain.WrapError(domain.ErrCodeUnauthorized, "invalid or expired token", err)
	}
	session, err := uc.liveSession(ctx, claims.SessionID)
	if err != nil {
		return "", "", err
	}
	if session.Email != domain.NormalizeEmail(claims.Email) {
		return "", "", domain.ErrUnauthorized
	}
	return session.Email, session.ID, nil
}

func (uc *UseCase) liveSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	if !session.Live(uc.now()) {
		_ = uc.sessions.Delete(ctx, sessionID)
		return nil, domain.ErrUnauthorized
	}
	return session, nil
}

func (uc *UseCase) grant(session *domain.Session, ttl time.Duration) (*Grant, error) {
	raw, expiresAt, err := uc.tokens.Issue(session.Email, session.ID, ttl)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &Grant{Token: raw, ExpiresAt: expiresAt, Session: session}, nil
}

func (uc *UseCase) clampTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 || ttl > uc.maxTTL {
		return uc.maxTTL
	}
	if ttl < time.Minute {
		return time.Minute
	}
	return ttl
}
