package memory

import (
	"context"
	"time"

	"github.com/nexusliving/bms/domain"
)

type sessionRepository struct {
	s *Store
}

func (r *sessionRepository) Get(_ context.Context, id string) (*domain.Session, error) {
	var out *domain.Session
	err := r.s.view(false, func(st *state) error {
		session, ok := st.sessions[id]
		if !ok || !session.Live(r.s.now()) {
			delete(st.sessions, id)
			return domain.ErrSessionNotFound
		}
		out = &session
		return nil
	})
	return out, err
}

func (r *sessionRepository) Save(_ context.Context, session *domain.Session) error {
	if session == nil || session.ID == "" || session.Email == "" {
		return domain.ErrInvalidPayload
	}
	return r.s.view(false, func(st *state) error {
		if session.CreatedAt.IsZero() {
			session.CreatedAt = r.s.now()
		}
		st.sessions[session.ID] = *session
		return nil
	})
}

func (r *sessionRepository) Extend(_ context.Context, id string, ttl time.Duration) (*domain.Session, error) {
	if ttl <= 0 {
		return nil, domain.ErrInvalidPayload
	}
	var out *domain.Session
	err := r.s.view(false, func(st *state) error {
		session, ok := st.sessions[id]
		now := r.s.now()
		if !ok || !session.Live(now) {
			delete(st.sessions, id)
			return domain.ErrSessionNotFound
		}
		session.ExpiresAt = now.Add(ttl)
		session.RefreshedAt = &now
		st.sessions[id] = session
		out = &session
		return nil
	})
	return out, err
}

func (r *sessionRepository) Delete(_ context.Context, id string) error {
	return r.s.view(false, func(st *state) error {
		delete(st.sessions, id)
		return nil
	})
}
