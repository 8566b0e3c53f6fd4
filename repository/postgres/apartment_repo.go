package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/nexusliving/bms/domain"
	"github.com/nexusliving/bms/repository"
)

type apartmentRepository struct {
	db DBTX
}

// NewApartmentRepository returns a Postgres-backed ApartmentRepository.
func NewApartmentRepository(db DBTX) repository.ApartmentRepository {
	return &apartmentRepository{db: db}
}

func (r *apartmentRepository) GetByID(ctx context.Context, id string) (*domain.Apartment, error) {
	const query = `
	SELECT id, image, floor_no, block_name, apartment_no, rent, available, created_at
	FROM apartments
	WHERE id = $1
	`
	return scanApartment(r.db.QueryRow(ctx, query, id))
}

func (r *apartmentRepository) List(ctx context.Context, filter repository.ApartmentFilter) ([]domain.Apartment, int, error) {
	const countQuery = `
	SELECT COUNT(*)
	FROM apartments
	WHERE ($1::numeric = 0 OR rent >= $1::numeric)
	  AND ($2::numeric = 0 OR rent <= $2::numeric)
	`
	var total int
	if err := r.db.QueryRow(ctx, countQuery, filter.MinRent, filter.MaxRent).Scan(&total); err != nil {
		return nil, 0, err
	}

	const query = `
	SELECT id, image, floor_no, block_name, apartment_no, rent, available, created_at
	FROM apartments
	WHERE ($1::numeric = 0 OR rent >= $1::numeric)
	  AND ($2::numeric = 0 OR rent <= $2::numeric)
	ORDER BY apartment_no
	LIMIT $3 OFFSET $4
	`
	rows, err := r.db.Query(ctx, query, filter.MinRent, filter.MaxRent, clampLimit(filter.Limit), filter.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var apartments []domain.Apartment
	for rows.Next() {
		apartment, err := scanApartment(rows)
		if err != nil {
			return nil, 0, err
		}
		apartments = append(apartments, *apartment)
	}
	return apartments, total, rows.Err()
}

func (r *apartmentRepository) Upsert(ctx context.Context, apartment *domain.Apartment) error {
	if apartment == nil || apartment.ApartmentNo <= 0 {
		return domain.ErrInvalidPayload
	}
	if apartment.ID == "" {
		apartment.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO apartments (id, image, floor_no, block_name, apartment_no, rent, available, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, COALESCE($8, NOW()))
	ON CONFLICT (apartment_no) DO UPDATE
	SET image = EXCLUDED.image,
		floor_no = EXCLUDED.floor_no,
		block_name = EXCLUDED.block_name,
		rent = EXCLUDED.rent,
		available = EXCLUDED.available
	RETURNING id, created_at
	`

	return r.db.QueryRow(ctx, query,
		apartment.ID,
		apartment.Image,
		apartment.FloorNo,
		apartment.BlockName,
		apartment.ApartmentNo,
		apartment.Rent,
		apartment.Available,
		nullTime(apartment.CreatedAt),
	).Scan(&apartment.ID, &apartment.CreatedAt)
}

func (r *apartmentRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM apartments`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func scanApartment(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Apartment, error) {
	var apartment domain.Apartment
	if err := row.Scan(
		&apartment.ID,
		&apartment.Image,
		&apartment.FloorNo,
		&apartment.BlockName,
		&apartment.ApartmentNo,
		&apartment.Rent,
		&apartment.Available,
		&apartment.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrApartmentNotFound
		}
		return nil, err
	}
	return &apartment, nil
}
