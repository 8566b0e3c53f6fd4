package coupon

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/nexusliving/bms/domain"
	"github.com/nexusliving/bms/pkg/logger"
	"github.com/nexusliving/bms/repository"
)

type CreateInput struct {
	Code        string
	Discount    int
	Description string
}

type UseCase struct {
	coupons repository.CouponRepository
	logger  *zap.Logger
}

func New(coupons repository.CouponRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{coupons: coupons, logger: logger}
}

func (uc *UseCase) List(ctx context.Context) ([]domain.Coupon, error) {
	coupons, err := uc.coupons.List(ctx)
	if err != nil {
		return nil, err
	}
	if coupons == nil {
		coupons = []domain.Coupon{}
	}
	return coupons, nil
}

// Create stores a new available coupon. Codes are case-insensitive and kept
// upper-cased.
func (uc *UseCase) Create(ctx context.Context, in CreateInput) (*domain.Coupon, error) {
	code := strings.ToUpper(strings.TrimSpace(in.Code))
	if code == "" {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "coupon code is required", nil)
	}
	if in.Discount < 1 || in.Discount > 100 {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "discount must be between 1 and 100", nil)
	}

	created, err := uc.coupons.Create(ctx, &domain.Coupon{
		Code:        code,
		Discount:    in.Discount,
		Description: strings.TrimSpace(in.Description),
		Available:   true,
	})
	if err != nil {
		return nil, err
	}
	logger.WithRequestID(ctx, uc.logger).Info("coupon created", zap.String("code", created.Code))
	return created, nil
}

func (uc *UseCase) SetAvailability(ctx context.Context, id string, available bool) (*domain.Coupon, error) {
	return uc.coupons.SetAvailability(ctx, id, available)
}

func (uc *UseCase) Delete(ctx context.Context, id string) error {
	return uc.coupons.Delete(ctx, id)
}
