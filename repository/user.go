package repository

import (
	"context"

	"github.com/nexusliving/bms/domain"
)

type UserFilter struct {
	Role   domain.Role
	Limit  int
	Offset int
}

// UserRepository is the role store. Upsert never changes a stored role.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, filter UserFilter) ([]domain.User, error)
	Upsert(ctx context.Context, user *domain.User) error
	SetRole(ctx context.Context, email string, role domain.Role) error
	CountByRole(ctx context.Context, role domain.Role) (int, error)
}
