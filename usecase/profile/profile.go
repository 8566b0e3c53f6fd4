package profile

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/nexusliving/bms/domain"
	"github.com/nexusliving/bms/pkg/logger"
	"github.com/nexusliving/bms/repository"
	"github.com/nexusliving/bms/usecase"
)

type UseCase struct {
	users    repository.UserRepository
	deferrer usecase.ProfileDeferrer
	logger   *zap.Logger
}

func New(users repository.UserRepository, deferrer usecase.ProfileDeferrer, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:    users,
		deferrer: deferrer,
		logger:   logger,
	}
}

func (uc *UseCase) GetProfile(ctx context.Context, email string) (*domain.User, error) {
	return uc.users.GetByEmail(ctx, domain.NormalizeEmail(email))
}

// RoleOf reports the stored role of email. It satisfies the role check used
// by the admin middleware.
func (uc *UseCase) RoleOf(ctx context.Context, email string) (domain.Role, error) {
	user, err := uc.users.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		return "", err
	}
	return user.Role, nil
}

// UpsertProfile creates or refreshes a profile. New profiles start with the
// user role and the caller can never set a role here. When the store is
// unreachable the write is deferred and replayed later.
func (uc *UseCase) UpsertProfile(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user == nil {
		return nil, domain.ErrInvalidPayload
	}
	user.Email = domain.NormalizeEmail(user.Email)
	if !strings.Contains(user.Email, "@") {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "a valid email is required", nil)
	}
	user.Role = ""

	if err := uc.users.Upsert(ctx, user); err != nil {
		if domain.IsDomainError(err, domain.ErrCodeInvalid) {
			return nil, err
		}
		if uc.deferrer != nil {
			if deferErr := uc.deferrer.DeferProfile(ctx, *user); deferErr != nil {
				uc.log(ctx).Error("failed to defer profile upsert", zap.Error(deferErr))
				return nil, err
			}
			uc.log(ctx).Warn("profile upsert deferred due to repository error", zap.Error(err))
			return user, nil
		}
		return nil, err
	}
	return user, nil
}

func (uc *UseCase) ListUsers(ctx context.Context, filter repository.UserFilter) ([]domain.User, error) {
	if filter.Role != "" && !filter.Role.Valid() {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "unknown role", nil)
	}
	users, err := uc.users.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}

// Demote returns a member to the plain user role. It does not touch the
// member's agreement.
func (uc *UseCase) Demote(ctx context.Context, email, actor string) (*domain.User, error) {
	email = domain.NormalizeEmail(email)
	user, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	switch user.Role {
	case domain.RoleAdmin:
		return nil, domain.ErrAdminDemotion
	case domain.RoleUser:
		return user, nil
	}

	if err := uc.users.SetRole(ctx, email, domain.RoleUser); err != nil {
		return nil, err
	}
	uc.log(ctx).Info("member demoted", zap.String("email", email), zap.String("actor", actor))
	return uc.users.GetByEmail(ctx, email)
}

func (uc *UseCase) log(ctx context.Context) *zap.Logger {
	return logger.WithRequestID(ctx, uc.logger)
}
