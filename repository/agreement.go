package repository

import (
	"context"
	"time"

	"github.com/nexusliving/bms/domain"
)

type AgreementFilter struct {
	Status domain.AgreementStatus
	Limit  int
	Offset int
}

// AgreementRepository stores tenancy requests, unique per requester email.
type AgreementRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Agreement, error)
	// GetForUpdate reads the agreement and, inside a transaction, locks it
	// until commit.
	GetForUpdate(ctx context.Context, id string) (*domain.Agreement, error)
	GetByEmail(ctx context.Context, email string) (*domain.Agreement, error)
	GetActiveByEmail(ctx context.Context, email string) (*domain.Agreement, error)
	// List returns agreements in store order. A zero Limit means no limit.
	List(ctx context.Context, filter AgreementFilter) ([]domain.Agreement, error)
	// Create fails with domain.ErrDuplicateRequest when an agreement for the
	// same requester already exists.
	Create(ctx context.Context, agreement *domain.Agreement) (*domain.Agreement, error)
	UpdateStatus(ctx context.Context, id string, status domain.AgreementStatus, acceptedAt *time.Time) error
	CountByStatus(ctx context.Context, status domain.AgreementStatus) (int, error)
	AppendEvent(ctx context.Context, event domain.AgreementEvent) error
	ListEvents(ctx context.Context, agreementID string) ([]domain.AgreementEvent, error)
}
