// Package agreement implements the tenancy request lifecycle:
//
//	(none) --submit--> pending --accept--> accepted
//	                      |
//	                      +------reject--> rejected
//
// accepted and rejected are terminal. Accepting promotes the requester to
// the member role in the same transaction that records the decision.
package agreement

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nexusliving/bms/domain"
	"github.com/nexusliving/bms/pkg/logger"
	"github.com/nexusliving/bms/repository"
)

// ApartmentLookup resolves the unit a request refers to.
type ApartmentLookup interface {
	GetByID(ctx context.Context, id string) (*domain.Apartment, error)
}

// SubmitInput is the caller-supplied part of a new request. The requester
// identity always comes from the verified caller, never from the payload.
type SubmitInput struct {
	UserName    string
	ApartmentID string
}

func (in SubmitInput) validate() error {
	if strings.TrimSpace(in.ApartmentID) == "" {
		return domain.WrapError(domain.ErrCodeInvalid, "apartment_id is required", nil)
	}
	return nil
}

type UseCase struct {
	tx         repository.Transactor
	agreements repository.AgreementRepository
	apartments ApartmentLookup
	logger     *zap.Logger
	now        func() time.Time
}

func New(tx repository.Transactor, agreements repository.AgreementRepository, apartments ApartmentLookup, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tx:         tx,
		agreements: agreements,
		apartments: apartments,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Submit creates a pending agreement for requester. Any existing agreement
// for the same requester, whatever its status, fails with
// domain.ErrDuplicateRequest and nothing is written.
func (uc *UseCase) Submit(ctx context.Context, requester string, in SubmitInput) (*domain.Agreement, error) {
	requester = domain.NormalizeEmail(requester)
	if requester == "" {
		return nil, domain.ErrUnauthorized
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	apartment, err := uc.apartments.GetByID(ctx, in.ApartmentID)
	if err != nil {
		return nil, err
	}

	var created *domain.Agreement
	err = uc.tx.InTx(ctx, func(ctx context.Context, repos repository.TxRepositories) error {
		if _, err := repos.Agreements.GetByEmail(ctx, requester); err == nil {
			return domain.ErrDuplicateRequest
		} else if !errors.Is(err, domain.ErrAgreementNotFound) {
			return err
		}

		// Create also reports a duplicate when a concurrent submit won the race.
		agreement, err := repos.Agreements.Create(ctx, &domain.Agreement{
			UserEmail:   requester,
			UserName:    strings.TrimSpace(in.UserName),
			ApartmentID: apartment.ID,
			FloorNo:     apartment.FloorNo,
			BlockName:   apartment.BlockName,
			ApartmentNo: apartment.ApartmentNo,
			Rent:        apartment.Rent,
			Status:      domain.AgreementPending,
		})
		if err != nil {
			return err
		}

		created = agreement
		return repos.Agreements.AppendEvent(ctx, domain.AgreementEvent{
			AgreementID: agreement.ID,
			Name:        domain.EventAgreementSubmitted,
			Actor:       requester,
			CreatedAt:   uc.now(),
		})
	})
	if err != nil {
		if !errors.Is(err, domain.ErrDuplicateRequest) {
			uc.log(ctx).Error("agreement submit failed", zap.String("requester", requester), zap.Error(err))
		}
		return nil, err
	}

	uc.log(ctx).Info("agreement submitted",
		zap.String("agreement_id", created.ID),
		zap.String("requester", requester))
	return created, nil
}

// Accept promotes the requester to member and marks the agreement accepted
// as one transaction. Accepting an accepted agreement re-applies the role
// promotion only; accepting a rejected one fails with
// domain.ErrAgreementFinalized.
func (uc *UseCase) Accept(ctx context.Context, id, actor string) (*domain.MutationResult, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.ErrInvalidPayload
	}

	var result domain.MutationResult
	err := uc.tx.InTx(ctx, func(ctx context.Context, repos repository.TxRepositories) error {
		result = domain.MutationResult{}

		agreement, err := repos.Agreements.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if agreement.Status == domain.AgreementRejected {
			return domain.ErrAgreementFinalized
		}
		result.Matched = 1

		promoted, err := promote(ctx, repos.Users, agreement)
		if err != nil {
			return err
		}
		if promoted {
			result.Modified = 1
		}

		if agreement.Status == domain.AgreementPending {
			decided := uc.now()
			if err := repos.Agreements.UpdateStatus(ctx, id, domain.AgreementAccepted, &decided); err != nil {
				return err
			}
			if err := repos.Agreements.AppendEvent(ctx, domain.AgreementEvent{
				AgreementID: id,
				Name:        domain.EventAgreementAccepted,
				Actor:       actor,
				CreatedAt:   decided,
			}); err != nil {
				return err
			}
			result.Modified = 1
		}

		result.Agreement, err = repos.Agreements.GetByID(ctx, id)
		return err
	})
	if err != nil {
		uc.logDecisionError(ctx, "accept", id, err)
		return nil, err
	}

	uc.log(ctx).Info("agreement accepted",
		zap.String("agreement_id", id),
		zap.String("actor", actor),
		zap.Int("modified", result.Modified))
	return &result, nil
}

// Reject marks a pending agreement rejected. Repeating it, or rejecting an
// accepted agreement, succeeds without modifying anything. Roles are never
// touched.
func (uc *UseCase) Reject(ctx context.Context, id, actor string) (*domain.MutationResult, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.ErrInvalidPayload
	}

	var result domain.MutationResult
	err := uc.tx.InTx(ctx, func(ctx context.Context, repos repository.TxRepositories) error {
		result = domain.MutationResult{}

		agreement, err := repos.Agreements.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		result.Matched = 1

		if agreement.Status.Terminal() {
			result.Agreement = agreement
			return nil
		}

		if err := repos.Agreements.UpdateStatus(ctx, id, domain.AgreementRejected, nil); err != nil {
			return err
		}
		if err := repos.Agreements.AppendEvent(ctx, domain.AgreementEvent{
			AgreementID: id,
			Name:        domain.EventAgreementRejected,
			Actor:       actor,
			CreatedAt:   uc.now(),
		}); err != nil {
			return err
		}
		result.Modified = 1

		result.Agreement, err = repos.Agreements.GetByID(ctx, id)
		return err
	})
	if err != nil {
		uc.logDecisionError(ctx, "reject", id, err)
		return nil, err
	}

	uc.log(ctx).Info("agreement rejected",
		zap.String("agreement_id", id),
		zap.String("actor", actor),
		zap.Int("modified", result.Modified))
	return &result, nil
}

// ListPending returns every pending agreement in store order.
func (uc *UseCase) ListPending(ctx context.Context) ([]domain.Agreement, error) {
	agreements, err := uc.agreements.List(ctx, repository.AgreementFilter{Status: domain.AgreementPending})
	if err != nil {
		return nil, err
	}
	if agreements == nil {
		agreements = []domain.Agreement{}
	}
	return agreements, nil
}

// FindByRequester returns the requester's agreement in any status, or nil.
func (uc *UseCase) FindByRequester(ctx context.Context, email string) (*domain.Agreement, error) {
	return absentAsNil(uc.agreements.GetByEmail(ctx, domain.NormalizeEmail(email)))
}

// FindActive returns the requester's accepted agreement, or nil.
func (uc *UseCase) FindActive(ctx context.Context, email string) (*domain.Agreement, error) {
	return absentAsNil(uc.agreements.GetActiveByEmail(ctx, domain.NormalizeEmail(email)))
}

// History lists the lifecycle events recorded for an agreement.
func (uc *UseCase) History(ctx context.Context, id string) ([]domain.AgreementEvent, error) {
	if _, err := uc.agreements.GetByID(ctx, id); err != nil {
		return nil, err
	}
	events, err := uc.agreements.ListEvents(ctx, id)
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []domain.AgreementEvent{}
	}
	return events, nil
}

// promote makes the requester a member. Admins keep their role. A requester
// without a profile gets one, so the role write always lands.
func promote(ctx context.Context, users repository.UserRepository, agreement *domain.Agreement) (bool, error) {
	user, err := users.GetByEmail(ctx, agreement.UserEmail)
	if errors.Is(err, domain.ErrUserNotFound) {
		user = &domain.User{Email: agreement.UserEmail, Name: agreement.UserName}
		err = users.Upsert(ctx, user)
	}
	if err != nil {
		return false, err
	}

	if user.Role == domain.RoleAdmin || user.Role == domain.RoleMember {
		return false, nil
	}
	if err := users.SetRole(ctx, agreement.UserEmail, domain.RoleMember); err != nil {
		return false, err
	}
	return true, nil
}

func absentAsNil(agreement *domain.Agreement, err error) (*domain.Agreement, error) {
	if errors.Is(err, domain.ErrAgreementNotFound) {
		return nil, nil
	}
	return agreement, err
}

func (uc *UseCase) log(ctx context.Context) *zap.Logger {
	return logger.WithRequestID(ctx, uc.logger)
}

func (uc *UseCase) logDecisionError(ctx context.Context, decision, id string, err error) {
	if domain.IsDomainError(err, domain.ErrCodeNotFound) || domain.IsDomainError(err, domain.ErrCodeConflict) {
		uc.log(ctx).Warn("agreement decision refused",
			zap.String("decision", decision),
			zap.String("agreement_id", id),
			zap.Error(err))
		return
	}
	uc.log(ctx).Error("agreement decision failed",
		zap.String("decision", decision),
		zap.String("agreement_id", id),
		zap.Error(err))
}
