package apartment

import (
	"context"
	"strings"

	"github.com/nexusliving/bms/domain"
	"github.com/nexusliving/bms/repository"
)

const (
	DefaultLimit = 6
	MaxLimit     = 100
)

// Query selects one page of the apartment listing. Page is 1-based.
type Query struct {
	Page    int
	Limit   int
	MinRent float64
	MaxRent float64
}

type Page struct {
	Items      []domain.Apartment `json:"items"`
	Total      int                `json:"total"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
}

type UseCase struct {
	apartments repository.ApartmentRepository
}

func New(apartments repository.ApartmentRepository) *UseCase {
	return &UseCase{apartments: apartments}
}

func (uc *UseCase) List(ctx context.Context, q Query) (*Page, error) {
	if q.MinRent < 0 || q.MaxRent < 0 {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "rent bounds must not be negative", nil)
	}
	if q.MaxRent > 0 && q.MinRent > q.MaxRent {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "min_rent exceeds max_rent", nil)
	}
	if q.Page < 1 {
		q.Page = 1
	}
	switch {
	case q.Limit <= 0:
		q.Limit = DefaultLimit
	case q.Limit > MaxLimit:
		q.Limit = MaxLimit
	}

	items, total, err := uc.apartments.List(ctx, repository.ApartmentFilter{
		MinRent: q.MinRent,
		MaxRent: q.MaxRent,
		Limit:   q.Limit,
		Offset:  (q.Page - 1) * q.Limit,
	})
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Apartment{}
	}
	return &Page{
		Items:      items,
		Total:      total,
		Page:       q.Page,
		Limit:      q.Limit,
		TotalPages: (total + q.Limit - 1) / q.Limit,
	}, nil
}

func (uc *UseCase) Get(ctx context.Context, id string) (*domain.Apartment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.ErrApartmentNotFound
	}
	return uc.apartments.GetByID(ctx, id)
}
