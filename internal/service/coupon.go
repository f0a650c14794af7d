package service

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/apparel_shop/internal/models"
	"github.com/Skotchmaster/apparel_shop/internal/repo"
	"github.com/Skotchmaster/apparel_shop/internal/transport"
)

const maxCouponCodeLen = 64

type CouponService struct {
	Repo *repo.GormRepo
}

func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidateCoupon returns the active coupon for code. Inactive and unknown
// codes are both ErrNotFound.
func (s *CouponService) ValidateCoupon(ctx context.Context, code string) (*models.Coupon, error) {
	code = NormalizeCode(code)
	if code == "" {
		return nil, errorf(ErrNotFound, "coupon not found")
	}
	c, err := s.Repo.GetActiveCoupon(ctx, code)
	if err != nil {
		return nil, notFound(err, "coupon")
	}
	return c, nil
}

func (s *CouponService) CreateCoupon(ctx context.Context, req transport.CreateCouponRequest) (*models.Coupon, error) {
	code := NormalizeCode(req.Code)
	if code == "" {
		return nil, errorf(ErrValidation, "code is required")
	}
	if len(code) > maxCouponCodeLen {
		return nil, errorf(ErrValidation, "code must be at most %d characters", maxCouponCodeLen)
	}
	if req.DiscountPercentage < 1 || req.DiscountPercentage > 100 {
		return nil, errorf(ErrValidation, "discountPercentage must be between 1 and 100")
	}

	_, err := s.Repo.GetCoupon(ctx, code)
	switch {
	case err == nil:
		return nil, errorf(ErrConflict, "coupon %s already exists", code)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	c := &models.Coupon{
		Code:               code,
		DiscountPercentage: req.DiscountPercentage,
		IsActive:           true,
		Description:        strings.TrimSpace(req.Description),
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}
	if err := s.Repo.CreateCoupon(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CouponService) ListCoupons(ctx context.Context) ([]models.Coupon, error) {
	return s.Repo.ListCoupons(ctx)
}

func (s *CouponService) SetCouponActive(ctx context.Context, code string, active bool) error {
	if err := s.Repo.SetCouponActive(ctx, NormalizeCode(code), active); err != nil {
		return notFound(err, "coupon")
	}
	return nil
}

func (s *CouponService) DeleteCoupon(ctx context.Context, code string) error {
	if err := s.Repo.DeleteCoupon(ctx, NormalizeCode(code)); err != nil {
		return notFound(err, "coupon")
	}
	return nil
}
