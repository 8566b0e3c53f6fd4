package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nexusliving/bms/domain"
	"github.com/nexusliving/bms/repository"
)

type agreementRepository struct {
	s    *Store
	inTx bool
}

func (r *agreementRepository) GetByID(_ context.Context, id string) (*domain.Agreement, error) {
	var out *domain.Agreement
	err := r.s.view(r.inTx, func(st *state) error {
		agreement, ok := st.agreements[id]
		if !ok {
			return domain.ErrAgreementNotFound
		}
		out = &agreement
		return nil
	})
	return out, err
}

// GetForUpdate needs no extra locking: a transaction already owns the store.
func (r *agreementRepository) GetForUpdate(ctx context.Context, id string) (*domain.Agreement, error) {
	return r.GetByID(ctx, id)
}

func (r *agreementRepository) GetByEmail(_ context.Context, email string) (*domain.Agreement, error) {
	return r.find(func(a domain.Agreement) bool { return a.UserEmail == email })
}

func (r *agreementRepository) GetActiveByEmail(_ context.Context, email string) (*domain.Agreement, error) {
	return r.find(func(a domain.Agreement) bool {
		return a.UserEmail == email && a.Status == domain.AgreementAccepted
	})
}

func (r *agreementRepository) find(match func(domain.Agreement) bool) (*domain.Agreement, error) {
	var out *domain.Agreement
	err := r.s.view(r.inTx, func(st *state) error {
		for _, id := range st.agreementOrder {
			agreement := st.agreements[id]
			if match(agreement) {
				out = &agreement
				return nil
			}
		}
		return domain.ErrAgreementNotFound
	})
	return out, err
}

func (r *agreementRepository) List(_ context.Context, filter repository.AgreementFilter) ([]domain.Agreement, error) {
	var out []domain.Agreement
	err := r.s.view(r.inTx, func(st *state) error {
		for _, id := range st.agreementOrder {
			agreement := st.agreements[id]
			if filter.Status != "" && agreement.Status != filter.Status {
				continue
			}
			out = append(out, agreement)
		}
		out = page(out, filter.Limit, filter.Offset)
		return nil
	})
	return out, err
}

func (r *agreementRepository) Create(_ context.Context, agreement *domain.Agreement) (*domain.Agreement, error) {
	if agreement == nil || agreement.UserEmail == "" {
		return nil, domain.ErrInvalidPayload
	}
	err := r.s.view(r.inTx, func(st *state) error {
		for _, existing := range st.agreements {
			if existing.UserEmail == agreement.UserEmail {
				return domain.ErrDuplicateRequest
			}
		}
		if agreement.ID == "" {
			agreement.ID = uuid.NewString()
		}
		if agreement.Status == "" {
			agreement.Status = domain.AgreementPending
		}
		now := r.s.now()
		agreement.CreatedAt = now
		agreement.UpdatedAt = now
		st.agreements[agreement.ID] = *agreement
		st.agreementOrder = append(st.agreementOrder, agreement.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return agreement, nil
}

func (r *agreementRepository) UpdateStatus(_ context.Context, id string, status domain.AgreementStatus, acceptedAt *time.Time) error {
	return r.s.view(r.inTx, func(st *state) error {
		agreement, ok := st.agreements[id]
		if !ok {
			return domain.ErrAgreementNotFound
		}
		agreement.Status = status
		if acceptedAt != nil {
			decided := *acceptedAt
			agreement.AcceptedAt = &decided
		}
		agreement.UpdatedAt = r.s.now()
		st.agreements[id] = agreement
		return nil
	})
}

func (r *agreementRepository) CountByStatus(_ context.Context, status domain.AgreementStatus) (int, error) {
	var count int
	err := r.s.view(r.inTx, func(st *state) error {
		for _, agreement := range st.agreements {
			if status == "" || agreement.Status == status {
				count++
			}
		}
		return nil
	})
	return count, err
}

func (r *agreementRepository) AppendEvent(_ context.Context, event domain.AgreementEvent) error {
	return r.s.view(r.inTx, func(st *state) error {
		if event.ID == "" {
			event.ID = uuid.NewString()
		}
		if event.CreatedAt.IsZero() {
			event.CreatedAt = r.s.now()
		}
		st.events = append(st.events, event)
		return nil
	})
}

func (r *agreementRepository) ListEvents(_ context.Context, agreementID string) ([]domain.AgreementEvent, error) {
	var out []domain.AgreementEvent
	err := r.s.view(r.inTx, func(st *state) error {
		for _, event := range st.events {
			if event.AgreementID == agreementID {
				out = append(out, event)
			}
		}
		return nil
	})
	return out, err
}
