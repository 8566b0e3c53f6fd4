package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/nexusliving/bms/domain"
	"github.com/nexusliving/bms/repository"
)

type userRepository struct {
	db DBTX
}

// NewUserRepository instantiates a Postgres-backed user repository.
func NewUserRepository(db DBTX) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `
		SELECT email, name, photo_url, role, created_at, updated_at
		FROM users
		WHERE email = $1
	`
	return scanUser(r.db.QueryRow(ctx, query, email))
}

func (r *userRepository) List(ctx context.Context, filter repository.UserFilter) ([]domain.User, error) {
	const query = `
	SELECT email, name, photo_url, role, created_at, updated_at
	FROM users
	WHERE ($1 = '' OR role = $1)
	ORDER BY created_at DESC
	LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, string(filter.Role), clampLimit(filter.Limit), filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

// Upsert creates the user with the default role or refreshes name and photo.
// The stored role is never overwritten here.
func (r *userRepository) Upsert(ctx context.Context, user *domain.User) error {
	if user == nil || user.Email == "" {
		return domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO users (email, name, photo_url, role, created_at, updated_at)
	VALUES ($1, $2, $3, $4, NOW(), NOW())
	ON CONFLICT (email) DO UPDATE
	SET name = COALESCE(NULLIF(EXCLUDED.name, ''), users.name),
		photo_url = COALESCE(NULLIF(EXCLUDED.photo_url, ''), users.photo_url),
		updated_at = NOW()
	RETURNING name, photo_url, role, created_at, updated_at;
	`

	var role string
	if err := r.db.QueryRow(ctx, query,
		user.Email,
		user.Name,
		user.PhotoURL,
		string(domain.RoleUser),
	).Scan(&user.Name, &user.PhotoURL, &role, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return err
	}

	user.Role = domain.Role(role)
	return nil
}

func (r *userRepository) SetRole(ctx context.Context, email string, role domain.Role) error {
	if !role.Valid() {
		return domain.ErrInvalidPayload
	}
	const query = `UPDATE users SET role = $2, updated_at = NOW() WHERE email = $1`
	tag, err := r.db.Exec(ctx, query, email, string(role))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) CountByRole(ctx context.Context, role domain.Role) (int, error) {
	const query = `SELECT COUNT(*) FROM users WHERE ($1 = '' OR role = $1)`
	var count int
	if err := r.db.QueryRow(ctx, query, string(role)).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func scanUser(row interface {
	Scan(dest ...interface{}) error
}) (*domain.User, error) {
	var user domain.User
	var role string

	if err := row.Scan(&user.Email, &user.Name, &user.PhotoURL, &role, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	user.Role = domain.Role(role)
	return &user, nil
}
