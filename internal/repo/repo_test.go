package repo

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/apparel_shop/internal/models"
	"github.com/Skotchmaster/apparel_shop/internal/testutil"
)

func newOrder(ref string) *models.Order {
	return &models.Order{
		PaymentMethod: models.PaymentDelivery,
		ProviderRef:   ref,
		Product: models.ProductSnapshot{
			ID:    uuid.New(),
			Name:  "Classic Tee",
			Price: testutil.Dec("29.99"),
		},
		Quantity:      1,
		OriginalPrice: testutil.Dec("29.99"),
		FinalPrice:    testutil.Dec("29.99"),
		AmountTotal:   2999,
		Currency:      "usd",
		Status:        models.OrderStatusPending,
	}
}

func TestInsertOrder_UniqueProviderRef(t *testing.T) {
	r := New(testutil.InitTestDB(t))
	ctx := context.Background()

	created, err := r.InsertOrder(ctx, newOrder("delivery:k1"))
	require.NoError(t, err)
	assert.True(t, created)

	created, err = r.InsertOrder(ctx, newOrder("delivery:k1"))
	require.NoError(t, err)
	assert.False(t, created)

	n, err := r.CountOrders(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestUpdateOrderStatus_Conditional(t *testing.T) {
	r := New(testutil.InitTestDB(t))
	ctx := context.Background()

	o := newOrder("delivery:k2")
	_, err := r.InsertOrder(ctx, o)
	require.NoError(t, err)

	require.NoError(t, r.UpdateOrderStatus(ctx, o.ID, models.OrderStatusPending, models.OrderStatusReceived))

	err = r.UpdateOrderStatus(ctx, o.ID, models.OrderStatusPending, models.OrderStatusDelivered)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	got, err := r.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusReceived, got.Status)
}

func TestProducts_ListAndReference(t *testing.T) {
	r := New(testutil.InitTestDB(t))
	ctx := context.Background()

	pub := &models.Product{Name: "Tee", Price: testutil.Dec("10"), Published: true, AvailableColors: models.StringList{"black", "white"}}
	draft := &models.Product{Name: "Draft", Price: testutil.Dec("12")}
	require.NoError(t, r.CreateProduct(ctx, pub))
	require.NoError(t, r.CreateProduct(ctx, draft))

	total, items, err := r.ListProducts(ctx, 0, 10, true)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, models.StringList{"black", "white"}, items[0].AvailableColors)

	total, _, err = r.ListProducts(ctx, 0, 10, false)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	o := newOrder("delivery:k3")
	o.Product.ID = pub.ID
	_, err = r.InsertOrder(ctx, o)
	require.NoError(t, err)

	referenced, err := r.ProductReferenced(ctx, pub.ID)
	require.NoError(t, err)
	assert.True(t, referenced)

	referenced, err = r.ProductReferenced(ctx, draft.ID)
	require.NoError(t, err)
	assert.False(t, referenced)
}

func TestInTx_RollsBack(t *testing.T) {
	r := New(testutil.InitTestDB(t))
	ctx := context.Background()

	err := r.InTx(ctx, func(tx *GormRepo) error {
		if err := tx.CreateCoupon(ctx, &models.Coupon{Code: "TX", DiscountPercentage: 5, IsActive: true}); err != nil {
			return err
		}
		return gorm.ErrInvalidData
	})
	require.ErrorIs(t, err, gorm.ErrInvalidData)

	_, err = r.GetCoupon(ctx, "TX")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCreateCoupon_KeepsExplicitInactive(t *testing.T) {
	r := New(testutil.InitTestDB(t))
	ctx := context.Background()

	require.NoError(t, r.CreateCoupon(ctx, &models.Coupon{Code: "OFF", DiscountPercentage: 5, IsActive: false}))
	require.NoError(t, r.CreateCoupon(ctx, &models.Coupon{Code: "ON", DiscountPercentage: 5, IsActive: true}))

	off, err := r.GetCoupon(ctx, "OFF")
	require.NoError(t, err)
	assert.False(t, off.IsActive)

	_, err = r.GetActiveCoupon(ctx, "OFF")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	on, err := r.GetActiveCoupon(ctx, "ON")
	require.NoError(t, err)
	assert.True(t, on.IsActive)
}
