package transport

import "time"

type AgreementRequest struct {
	UserName    string `json:"user_name"`
	ApartmentID string `json:"apartment_id"`
}

type ProfileRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	PhotoURL string `json:"photo_url"`
}

// SessionLifetime is the optional session length a client may ask for. Zero
// or negative means the server maximum.
type SessionLifetime struct {
	TTLSeconds int `json:"ttl_seconds"`
}

func (l SessionLifetime) Lifetime() time.Duration {
	if l.TTLSeconds <= 0 {
		return 0
	}
	return time.Duration(l.TTLSeconds) * time.Second
}

type AuthLoginRequest struct {
	Email string `json:"email"`
	SessionLifetime
}

type RefreshRequest struct {
	SessionID string `json:"session_id"`
	SessionLifetime
}

type CouponRequest struct {
	Code        string `json:"code"`
	Discount    int    `json:"discount"`
	Description string `json:"description"`
}

type CouponAvailabilityRequest struct {
	Available *bool `json:"available"`
}

type AnnouncementRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}
