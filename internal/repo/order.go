package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/apparel_shop/internal/models"
)

// InsertOrder inserts unless an order with the same provider ref exists.
// It reports false when the row was already there; order is then left untouched.
func (r *GormRepo) InsertOrder(ctx context.Context, order *models.Order) (bool, error) {
	res := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "provider_ref"}}, DoNothing: true}).
		Create(order)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *GormRepo) FindOrderByProviderRef(ctx context.Context, ref string) (*models.Order, error) {
	var o models.Order
	if err := r.DB.WithContext(ctx).Where("provider_ref = ?", ref).First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

// FindOrderByIdempotencyKey returns the oldest order of method created for key.
func (r *GormRepo) FindOrderByIdempotencyKey(ctx context.Context, method models.PaymentMethod, key string) (*models.Order, error) {
	var o models.Order
	err := r.DB.WithContext(ctx).
		Where("payment_method = ? AND idempotency_key = ?", method, key).
		Order("created_at ASC").
		First(&o).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *GormRepo) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var o models.Order
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

// UpdateOrderStatus moves an order only if it is still in from; a concurrent
// change surfaces as ErrRecordNotFound.
func (r *GormRepo) UpdateOrderStatus(ctx context.Context, id uuid.UUID, from, to models.OrderStatus) error {
	res := r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) ListOrders(ctx context.Context, offset, limit int, method models.PaymentMethod, status models.OrderStatus) (int64, []models.Order, error) {
	q := r.DB.WithContext(ctx).Model(&models.Order{})
	if method != "" {
		q = q.Where("payment_method = ?", method)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	orders := make([]models.Order, 0, limit)
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&orders).Error; err != nil {
		return 0, nil, err
	}
	return total, orders, nil
}

func (r *GormRepo) CountOrders(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Order{}).Count(&n).Error
	return n, err
}

func (r *GormRepo) CreatePendingOrder(ctx context.Context, p *models.PendingOrder) error {
	return r.DB.WithContext(ctx).Create(p).Error
}

func (r *GormRepo) GetPendingOrder(ctx context.Context, providerOrderID string) (*models.PendingOrder, error) {
	var p models.PendingOrder
	if err := r.DB.WithContext(ctx).Where("provider_order_id = ?", providerOrderID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormRepo) FindPendingByIdempotencyKey(ctx context.Context, key string) (*models.PendingOrder, error) {
	var p models.PendingOrder
	if err := r.DB.WithContext(ctx).Where("idempotency_key = ?", key).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormRepo) DeletePendingOrder(ctx context.Context, providerOrderID string) error {
	return r.DB.WithContext(ctx).Where("provider_order_id = ?", providerOrderID).Delete(&models.PendingOrder{}).Error
}
