package redis

import (
	"context"
	"errors"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/nexusliving/bms/domain"
	"github.com/nexusliving/bms/repository"
)

const (
	keyPrefix = "bms:session:"

	fieldEmail     = "email"
	fieldCreated   = "created_at"
	fieldExpires   = "expires_at"
	fieldRefreshed = "refreshed_at"
)

type sessionRepository struct {
	client redislib.Cmdable
	now    func() time.Time
}

// NewSessionRepository stores each session as a hash whose key expiry
// mirrors the session's expires_at.
func NewSessionRepository(client redislib.Cmdable) repository.SessionRepository {
	return &sessionRepository{client: client, now: time.Now}
}

func (r *sessionRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
	fields, err := r.client.HGetAll(ctx, keyPrefix+id).Result()
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	// HGETALL on a missing key answers with an empty map rather than Nil.
	if len(fields) == 0 {
		return nil, domain.ErrSessionNotFound
	}
	return decodeSession(id, fields)
}

func (r *sessionRepository) Save(ctx context.Context, session *domain.Session) error {
	if session == nil || session.ID == "" || session.Email == "" {
		return domain.ErrInvalidPayload
	}
	now := r.now()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	ttl := session.Remaining(now)
	if ttl <= 0 {
		return domain.ErrInvalidPayload
	}
	return r.write(ctx, session, ttl)
}

func (r *sessionRepository) Extend(ctx context.Context, id string, ttl time.Duration) (*domain.Session, error) {
	if ttl <= 0 {
		return nil, domain.ErrInvalidPayload
	}
	session, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	now := r.now()
	session.ExpiresAt = now.Add(ttl)
	session.RefreshedAt = &now
	if err := r.write(ctx, session, ttl); err != nil {
		return nil, err
	}
	return session, nil
}

func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, keyPrefix+id).Err()
}

// write replaces the hash and its expiry in one MULTI block so a reader never
// sees a session without a deadline.
func (r *sessionRepository) write(ctx context.Context, session *domain.Session, ttl time.Duration) error {
	values := map[string]interface{}{
		fieldEmail:   session.Email,
		fieldCreated: session.CreatedAt.UTC().Format(time.RFC3339Nano),
		fieldExpires: session.ExpiresAt.UTC().Format(time.RFC3339Nano),
	}
	if session.RefreshedAt != nil {
		values[fieldRefreshed] = session.RefreshedAt.UTC().Format(time.RFC3339Nano)
	}

	key := keyPrefix + session.ID
	_, err := r.client.TxPipelined(ctx, func(pipe redislib.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, values)
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	return err
}

func decodeSession(id string, fields map[string]string) (*domain.Session, error) {
	session := &domain.Session{ID: id, Email: fields[fieldEmail]}

	var err error
	if session.CreatedAt, err = time.Parse(time.RFC3339Nano, fields[fieldCreated]); err != nil {
		return nil, err
	}
	if session.ExpiresAt, err = time.Parse(time.RFC3339Nano, fields[fieldExpires]); err != nil {
		return nil, err
	}
	if raw, ok := fields[fieldRefreshed]; ok {
		refreshed, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, err
		}
		session.RefreshedAt = &refreshed
	}
	return session, nil
}
