package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/nexusliving/bms/domain"
	"github.com/nexusliving/bms/repository"
)

type couponRepository struct {
	db DBTX
}

// NewCouponRepository returns a Postgres-backed CouponRepository.
func NewCouponRepository(db DBTX) repository.CouponRepository {
	return &couponRepository{db: db}
}

func (r *couponRepository) List(ctx context.Context) ([]domain.Coupon, error) {
	const query = `
	SELECT id, code, discount, description, available, created_at
	FROM coupons
	ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var coupons []domain.Coupon
	for rows.Next() {
		coupon, err := scanCoupon(rows)
		if err != nil {
			return nil, err
		}
		coupons = append(coupons, *coupon)
	}
	return coupons, rows.Err()
}

func (r *couponRepository) Create(ctx context.Context, coupon *domain.Coupon) (*domain.Coupon, error) {
	if coupon == nil {
		return nil, domain.ErrInvalidPayload
	}
	if coupon.ID == "" {
		coupon.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO coupons (id, code, discount, description, available)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (code) DO NOTHING
	RETURNING created_at
	`
	if err := r.db.QueryRow(ctx, query,
		coupon.ID,
		coupon.Code,
		coupon.Discount,
		coupon.Description,
		coupon.Available,
	).Scan(&coupon.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDuplicateCoupon
		}
		return nil, err
	}
	return coupon, nil
}

func (r *couponRepository) SetAvailability(ctx context.Context, id string, available bool) (*domain.Coupon, error) {
	const query = `
	UPDATE coupons
	SET available = $2
	WHERE id = $1
	RETURNING id, code, discount, description, available, created_at
	`
	return scanCoupon(r.db.QueryRow(ctx, query, id, available))
}

func (r *couponRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM coupons WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCouponNotFound
	}
	return nil
}

func scanCoupon(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Coupon, error) {
	var coupon domain.Coupon
	if err := row.Scan(
		&coupon.ID,
		&coupon.Code,
		&coupon.Discount,
		&coupon.Description,
		&coupon.Available,
		&coupon.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCouponNotFound
		}
		return nil, err
	}
	return &coupon, nil
}

type announcementRepository struct {
	db DBTX
}

// NewAnnouncementRepository returns a Postgres-backed AnnouncementRepository.
func NewAnnouncementRepository(db DBTX) repository.AnnouncementRepository {
	return &announcementRepository{db: db}
}

func (r *announcementRepository) List(ctx context.Context, limit int) ([]domain.Announcement, error) {
	const query = `
	SELECT id, title, description, created_at
	FROM announcements
	ORDER BY created_at DESC
	LIMIT $1
	`
	rows, err := r.db.Query(ctx, query, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var announcements []domain.Announcement
	for rows.Next() {
		var a domain.Announcement
		if err := rows.Scan(&a.ID, &a.Title, &a.Description, &a.CreatedAt); err != nil {
			return nil, err
		}
		announcements = append(announcements, a)
	}
	return announcements, rows.Err()
}

func (r *announcementRepository) Create(ctx context.Context, announcement *domain.Announcement) (*domain.Announcement, error) {
	if announcement == nil {
		return nil, domain.ErrInvalidPayload
	}
	if announcement.ID == "" {
		announcement.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO announcements (id, title, description)
	VALUES ($1, $2, $3)
	RETURNING created_at
	`
	if err := r.db.QueryRow(ctx, query,
		announcement.ID,
		announcement.Title,
		announcement.Description,
	).Scan(&announcement.CreatedAt); err != nil {
		return nil, err
	}
	return announcement, nil
}
