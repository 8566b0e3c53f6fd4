package repository

import (
	"context"

	"github.com/nexusliving/bms/domain"
)

type CouponRepository interface {
	List(ctx context.Context) ([]domain.Coupon, error)
	Create(ctx context.Context, coupon *domain.Coupon) (*domain.Coupon, error)
	SetAvailability(ctx context.Context, id string, available bool) (*domain.Coupon, error)
	Delete(ctx context.Context, id string) error
}

type AnnouncementRepository interface {
	List(ctx context.Context, limit int) ([]domain.Announcement, error)
	Create(ctx context.Context, announcement *domain.Announcement) (*domain.Announcement, error)
}
