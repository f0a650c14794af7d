package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/apparel_shop/internal/models"
)

// GetActiveCoupon expects an already normalized code.
func (r *GormRepo) GetActiveCoupon(ctx context.Context, code string) (*models.Coupon, error) {
	var c models.Coupon
	if err := r.DB.WithContext(ctx).Where("code = ? AND is_active = ?", code, true).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *GormRepo) GetCoupon(ctx context.Context, code string) (*models.Coupon, error) {
	var c models.Coupon
	if err := r.DB.WithContext(ctx).Where("code = ?", code).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateCoupon writes every column so an explicit isActive=false is not
// replaced by the column default.
func (r *GormRepo) CreateCoupon(ctx context.Context, c *models.Coupon) error {
	return r.DB.WithContext(ctx).Select("*").Create(c).Error
}

func (r *GormRepo) ListCoupons(ctx context.Context) ([]models.Coupon, error) {
	var items []models.Coupon
	if err := r.DB.WithContext(ctx).Order("code ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) SetCouponActive(ctx context.Context, code string, active bool) error {
	res := r.DB.WithContext(ctx).Model(&models.Coupon{}).Where("code = ?", code).Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) DeleteCoupon(ctx context.Context, code string) error {
	res := r.DB.WithContext(ctx).Where("code = ?", code).Delete(&models.Coupon{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
