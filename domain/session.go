package domain

import "time"

// Session binds one issued token to a login. A token whose session was
// revoked or has lapsed is rejected even when its signature verifies.
type Session struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   time.Time  `json:"expires_at"`
	RefreshedAt *time.Time `json:"refreshed_at,omitempty"`
}

// Live reports whether the session is still open at the given instant.
func (s *Session) Live(at time.Time) bool {
	return s != nil && at.Before(s.ExpiresAt)
}

// Remaining is the time left before the session lapses, never negative.
func (s *Session) Remaining(at time.Time) time.Duration {
	if !s.Live(at) {
		return 0
	}
	return s.ExpiresAt.Sub(at)
}
