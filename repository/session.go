package repository

import (
	"context"
	"time"

	"github.com/nexusliving/bms/domain"
)

// SessionRepository stores login sessions with a bounded lifetime. Get and
// Extend report domain.ErrSessionNotFound for unknown or lapsed sessions.
type SessionRepository interface {
	Get(ctx context.Context, id string) (*domain.Session, error)
	Save(ctx context.Context, session *domain.Session) error
	Extend(ctx context.Context, id string, ttl time.Duration) (*domain.Session, error)
	Delete(ctx context.Context, id string) error
}
