package memory

import (
	"context"
	"sort"

	"github.com/nexusliving/bms/domain"
	"github.com/nexusliving/bms/repository"
)

type userRepository struct {
	s    *Store
	inTx bool
}

func (r *userRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	var out *domain.User
	err := r.s.view(r.inTx, func(st *state) error {
		user, ok := st.users[email]
		if !ok {
			return domain.ErrUserNotFound
		}
		out = &user
		return nil
	})
	return out, err
}

func (r *userRepository) List(_ context.Context, filter repository.UserFilter) ([]domain.User, error) {
	var out []domain.User
	err := r.s.view(r.inTx, func(st *state) error {
		for _, user := range st.users {
			if filter.Role != "" && user.Role != filter.Role {
				continue
			}
			out = append(out, user)
		}
		sort.Slice(out, func(i, j int) bool {
			if out[i].CreatedAt.Equal(out[j].CreatedAt) {
				return out[i].Email < out[j].Email
			}
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
		out = page(out, clampLimit(filter.Limit), filter.Offset)
		return nil
	})
	return out, err
}

func (r *userRepository) Upsert(_ context.Context, user *domain.User) error {
	if user == nil || user.Email == "" {
		return domain.ErrInvalidPayload
	}
	return r.s.view(r.inTx, func(st *state) error {
		now := r.s.now()
		stored, ok := st.users[user.Email]
		if !ok {
			stored = domain.User{
				Email:     user.Email,
				Role:      domain.RoleUser,
				CreatedAt: now,
			}
		}
		if user.Name != "" {
			stored.Name = user.Name
		}
		if user.PhotoURL != "" {
			stored.PhotoURL = user.PhotoURL
		}
		stored.UpdatedAt = now
		st.users[user.Email] = stored
		*user = stored
		return nil
	})
}

func (r *userRepository) SetRole(_ context.Context, email string, role domain.Role) error {
	if !role.Valid() {
		return domain.ErrInvalidPayload
	}
	return r.s.view(r.inTx, func(st *state) error {
		user, ok := st.users[email]
		if !ok {
			return domain.ErrUserNotFound
		}
		user.Role = role
		user.UpdatedAt = r.s.now()
		st.users[email] = user
		return nil
	})
}

func (r *userRepository) CountByRole(_ context.Context, role domain.Role) (int, error) {
	var count int
	err := r.s.view(r.inTx, func(st *state) error {
		for _, user := range st.users {
			if role == "" || user.Role == role {
				count++
			}
		}
		return nil
	})
	return count, err
}
