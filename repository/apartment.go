package repository

import (
	"context"

	"github.com/nexusliving/bms/domain"
)

type ApartmentFilter struct {
	MinRent float64
	MaxRent float64
	Limit   int
	Offset  int
}

type ApartmentRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Apartment, error)
	List(ctx context.Context, filter ApartmentFilter) ([]domain.Apartment, int, error)
	// Upsert inserts the apartment or refreshes it by apartment number.
	Upsert(ctx context.Context, apartment *domain.Apartment) error
	Count(ctx context.Context) (int, error)
}
