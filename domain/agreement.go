package domain

import "time"

// AgreementStatus is the lifecycle state of a tenancy request.
type AgreementStatus string

const (
	AgreementPending  AgreementStatus = "pending"
	AgreementAccepted AgreementStatus = "accepted"
	AgreementRejected AgreementStatus = "rejected"
)

// Terminal reports whether no further transitions are allowed from s.
func (s AgreementStatus) Terminal() bool {
	return s == AgreementAccepted || s == AgreementRejected
}

// Agreement is a user's request to rent an apartment. At most one exists per
// requester email.
type Agreement struct {
	ID          string          `json:"id"`
	UserEmail   string          `json:"user_email"`
	UserName    string          `json:"user_name,omitempty"`
	ApartmentID string          `json:"apartment_id"`
	FloorNo     int             `json:"floor_no"`
	BlockName   string          `json:"block_name"`
	ApartmentNo int             `json:"apartment_no"`
	Rent        float64         `json:"rent"`
	Status      AgreementStatus `json:"status"`
	AcceptedAt  *time.Time      `json:"accepted_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (a *Agreement) IsPending() bool {
	return a != nil && a.Status == AgreementPending
}

func (a *Agreement) IsActive() bool {
	return a != nil && a.Status == AgreementAccepted
}

// AgreementEvent records a lifecycle transition applied to an agreement.
type AgreementEvent struct {
	ID          string    `json:"id"`
	AgreementID string    `json:"agreement_id"`
	Name        string    `json:"name"`
	Actor       string    `json:"actor"`
	CreatedAt   time.Time `json:"created_at"`
}

const (
	EventAgreementSubmitted = "submitted"
	EventAgreementAccepted  = "accepted"
	EventAgreementRejected  = "rejected"
)

// MutationResult reports the outcome of a lifecycle decision.
type MutationResult struct {
	Matched   int        `json:"matched_count"`
	Modified  int        `json:"modified_count"`
	Agreement *Agreement `json:"agreement,omitempty"`
}
