package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/apparel_shop/internal/models"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		method models.PaymentMethod
		from   models.OrderStatus
		to     models.OrderStatus
		ok     bool
	}{
		{models.PaymentDelivery, models.OrderStatusPending, models.OrderStatusReceived, true},
		{models.PaymentDelivery, models.OrderStatusPending, models.OrderStatusDelivered, true},
		{models.PaymentDelivery, models.OrderStatusReceived, models.OrderStatusOutForDelivery, true},
		{models.PaymentDelivery, models.OrderStatusOutForDelivery, models.OrderStatusDelivered, true},
		{models.PaymentDelivery, models.OrderStatusReceived, models.OrderStatusPending, false},
		{models.PaymentDelivery, models.OrderStatusReceived, models.OrderStatusReceived, false},
		{models.PaymentDelivery, models.OrderStatusDelivered, models.OrderStatusReceived, false},
		{models.PaymentDelivery, models.OrderStatusPending, models.OrderStatusCompleted, false},
		{models.PaymentStripe, models.OrderStatusPending, models.OrderStatusCompleted, false},
		{models.PaymentPayPal, models.OrderStatusPending, models.OrderStatusReceived, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.method)+"_"+string(tt.from)+"_"+string(tt.to), func(t *testing.T) {
			err := CanTransition(tt.method, tt.from, tt.to)
			if tt.ok {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrInvalidTransition)
		})
	}
}

func TestUpdateOrderStatus_DeliveryFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.seedProduct(t, "29.99")

	o, err := env.Checkout.CreateDeliveryOrder(ctx, deliveryRequest(p.ID.String()))
	require.NoError(t, err)

	got, err := env.Orders.UpdateOrderStatus(ctx, o.ID, "received")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusReceived, got.Status)

	_, err = env.Orders.UpdateOrderStatus(ctx, o.ID, "pending")
	require.ErrorIs(t, err, ErrInvalidTransition)

	got, err = env.Orders.UpdateOrderStatus(ctx, o.ID, "delivered")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusDelivered, got.Status)

	_, err = env.Orders.UpdateOrderStatus(ctx, o.ID, "out_for_delivery")
	require.ErrorIs(t, err, ErrInvalidTransition)

	_, err = env.Orders.UpdateOrderStatus(ctx, o.ID, "shipped")
	require.ErrorIs(t, err, ErrValidation)

	_, err = env.Orders.UpdateOrderStatus(ctx, uuid.New(), "received")
	require.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, []string{"order_materialized", "order_status_changed", "order_status_changed"}, env.Events.Types())
}

func TestUpdateOrderStatus_OnlineOrdersAreSystemDriven(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	sessionID := startPaidStripeSession(t, env, 0)

	o, err := env.Checkout.HandleStripeWebhook(ctx, []byte("evt_"+sessionID), "valid")
	require.NoError(t, err)

	_, err = env.Orders.UpdateOrderStatus(ctx, o.ID, "delivered")
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestGetOrderDetails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.seedProduct(t, "29.99")
	env.seedCoupon(t, "SAVE10", 10, true)

	req := deliveryRequest(p.ID.String())
	req.CouponCode = "SAVE10"
	req.IdempotencyKey = "tab-3"
	o, err := env.Checkout.CreateDeliveryOrder(ctx, req)
	require.NoError(t, err)

	byID, err := env.Orders.GetOrderDetails(ctx, o.ID.String())
	require.NoError(t, err)
	assert.Equal(t, o.ID, byID.ID)
	assert.Equal(t, []string{"https://cdn.test/tee.png"}, byID.ProductImages)
	assert.Equal(t, "test coupon", byID.CouponDescription)

	byRef, err := env.Orders.GetOrderDetails(ctx, "delivery:tab-3")
	require.NoError(t, err)
	assert.Equal(t, o.ID, byRef.ID)

	_, err = env.Orders.GetOrderDetails(ctx, uuid.NewString())
	require.ErrorIs(t, err, ErrNotFound)
	_, err = env.Orders.GetOrderDetails(ctx, "PAYPAL-1")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGetOrderDetails_StripeSessionFallback(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	sessionID := startPaidStripeSession(t, env, 0)

	d, err := env.Orders.GetOrderDetails(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, sessionID, d.ProviderRef)
	assert.Equal(t, models.OrderStatusCompleted, d.Status)
	assert.EqualValues(t, 1, env.countOrders(t))

	// the webhook arriving afterwards finds the same order
	o, err := env.Checkout.HandleStripeWebhook(ctx, []byte("evt_"+sessionID), "valid")
	require.NoError(t, err)
	assert.Equal(t, d.ID, o.ID)
	assert.EqualValues(t, 1, env.countOrders(t))

	_, err = env.Orders.GetOrderDetails(ctx, "cs_unknown")
	require.Error(t, err)
}

func TestListOrders(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.seedProduct(t, "29.99")

	for _, key := range []string{"a", "b", "c"} {
		req := deliveryRequest(p.ID.String())
		req.IdempotencyKey = key
		_, err := env.Checkout.CreateDeliveryOrder(ctx, req)
		require.NoError(t, err)
	}
	sessionID := startPaidStripeSession(t, env, 0)
	_, err := env.Checkout.MaterializeStripeSession(ctx, sessionID)
	require.NoError(t, err)

	total, items, limit, err := env.Orders.ListOrders(ctx, 1, 2, "delivery", "")
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, items, 2)
	assert.Equal(t, 2, limit)

	total, items, _, err = env.Orders.ListOrders(ctx, 1, 10, "", "completed")
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, sessionID, items[0].ProviderRef)

	_, _, _, err = env.Orders.ListOrders(ctx, 1, 10, "cash", "")
	require.ErrorIs(t, err, ErrValidation)
}
