package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/nexusliving/bms/domain"
	"github.com/nexusliving/bms/repository"
)

type apartmentRepository struct {
	s *Store
}

func (r *apartmentRepository) GetByID(_ context.Context, id string) (*domain.Apartment, error) {
	var out *domain.Apartment
	err := r.s.view(false, func(st *state) error {
		apartment, ok := st.apartments[id]
		if !ok {
			return domain.ErrApartmentNotFound
		}
		out = &apartment
		return nil
	})
	return out, err
}

func (r *apartmentRepository) List(_ context.Context, filter repository.ApartmentFilter) ([]domain.Apartment, int, error) {
	var (
		out   []domain.Apartment
		total int
	)
	err := r.s.view(false, func(st *state) error {
		for _, apartment := range st.apartments {
			if filter.MinRent > 0 && apartment.Rent < filter.MinRent {
				continue
			}
			if filter.MaxRent > 0 && apartment.Rent > filter.MaxRent {
				continue
			}
			out = append(out, apartment)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].ApartmentNo < out[j].ApartmentNo })
		total = len(out)
		out = page(out, clampLimit(filter.Limit), filter.Offset)
		return nil
	})
	return out, total, err
}

func (r *apartmentRepository) Upsert(_ context.Context, apartment *domain.Apartment) error {
	if apartment == nil || apartment.ApartmentNo <= 0 {
		return domain.ErrInvalidPayload
	}
	return r.s.view(false, func(st *state) error {
		for id, existing := range st.apartments {
			if existing.ApartmentNo == apartment.ApartmentNo {
				apartment.ID = id
				apartment.CreatedAt = existing.CreatedAt
				st.apartments[id] = *apartment
				return nil
			}
		}
		if apartment.ID == "" {
			apartment.ID = uuid.NewString()
		}
		if apartment.CreatedAt.IsZero() {
			apartment.CreatedAt = r.s.now()
		}
		st.apartments[apartment.ID] = *apartment
		return nil
	})
}

func (r *apartmentRepository) Count(_ context.Context) (int, error) {
	var count int
	err := r.s.view(false, func(st *state) error {
		count = len(st.apartments)
		return nil
	})
	return count, err
}

type couponRepository struct {
	s *Store
}

func (r *couponRepository) List(_ context.Context) ([]domain.Coupon, error) {
	var out []domain.Coupon
	err := r.s.view(false, func(st *state) error {
		for _, coupon := range st.coupons {
			out = append(out, coupon)
		}
		sort.Slice(out, func(i, j int) bool {
			if out[i].CreatedAt.Equal(out[j].CreatedAt) {
				return out[i].Code < out[j].Code
			}
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
		return nil
	})
	return out, err
}

func (r *couponRepository) Create(_ context.Context, coupon *domain.Coupon) (*domain.Coupon, error) {
	if coupon == nil {
		return nil, domain.ErrInvalidPayload
	}
	err := r.s.view(false, func(st *state) error {
		for _, existing := range st.coupons {
			if existing.Code == coupon.Code {
				return domain.ErrDuplicateCoupon
			}
		}
		if coupon.ID == "" {
			coupon.ID = uuid.NewString()
		}
		coupon.CreatedAt = r.s.now()
		st.coupons[coupon.ID] = *coupon
		return nil
	})
	if err != nil {
		return nil, err
	}
	return coupon, nil
}

func (r *couponRepository) SetAvailability(_ context.Context, id string, available bool) (*domain.Coupon, error) {
	var out *domain.Coupon
	err := r.s.view(false, func(st *state) error {
		coupon, ok := st.coupons[id]
		if !ok {
			return domain.ErrCouponNotFound
		}
		coupon.Available = available
		st.coupons[id] = coupon
		out = &coupon
		return nil
	})
	return out, err
}

func (r *couponRepository) Delete(_ context.Context, id string) error {
	return r.s.view(false, func(st *state) error {
		if _, ok := st.coupons[id]; !ok {
			return domain.ErrCouponNotFound
		}
		delete(st.coupons, id)
		return nil
	})
}

type announcementRepository struct {
	s *Store
}

func (r *announcementRepository) List(_ context.Context, limit int) ([]domain.Announcement, error) {
	var out []domain.Announcement
	err := r.s.view(false, func(st *state) error {
		for i := len(st.announcements) - 1; i >= 0; i-- {
			out = append(out, st.announcements[i])
		}
		out = page(out, clampLimit(limit), 0)
		return nil
	})
	return out, err
}

func (r *announcementRepository) Create(_ context.Context, announcement *domain.Announcement) (*domain.Announcement, error) {
	if announcement == nil {
		return nil, domain.ErrInvalidPayload
	}
	err := r.s.view(false, func(st *state) error {
		if announcement.ID == "" {
			announcement.ID = uuid.NewString()
		}
		announcement.CreatedAt = r.s.now()
		st.announcements = append(st.announcements, *announcement)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return announcement, nil
}
