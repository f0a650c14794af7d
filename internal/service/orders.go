package service

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/apparel_shop/internal/models"
	"github.com/Skotchmaster/apparel_shop/internal/repo"
	"github.com/Skotchmaster/apparel_shop/internal/util"
	"github.com/Skotchmaster/apparel_shop/pkg/events"
	"github.com/Skotchmaster/apparel_shop/pkg/logging"
)

const stripeSessionPrefix = "cs_"

// deliveryFlow is the only admin-driven lifecycle, in order.
var deliveryFlow = []models.OrderStatus{
	models.OrderStatusPending,
	models.OrderStatusReceived,
	models.OrderStatusOutForDelivery,
	models.OrderStatusDelivered,
}

type OrderService struct {
	Repo     *repo.GormRepo
	Checkout *CheckoutService
	Events   events.Publisher
}

// OrderDetails is the read model behind the confirmation page.
type OrderDetails struct {
	*models.Order
	ProductImages     []string `json:"productImages,omitempty"`
	CouponDescription string   `json:"couponDescription,omitempty"`
}

// GetOrderDetails accepts an order id or a provider ref. An unknown Stripe
// session is fetched from Stripe and materialized before it is shown.
func (s *OrderService) GetOrderDetails(ctx context.Context, ref string) (*OrderDetails, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, errorf(ErrValidation, "order reference is required")
	}

	var (
		o   *models.Order
		err error
	)
	if id, perr := uuid.Parse(ref); perr == nil {
		o, err = s.Repo.GetOrder(ctx, id)
	} else {
		o, err = s.Repo.FindOrderByProviderRef(ctx, ref)
	}

	if errors.Is(err, gorm.ErrRecordNotFound) && strings.HasPrefix(ref, stripeSessionPrefix) &&
		s.Checkout != nil && s.Checkout.Stripe != nil {
		o, err = s.Checkout.MaterializeStripeSession(ctx, ref)
	}
	if err != nil {
		return nil, notFound(err, "order")
	}

	return s.decorate(ctx, o), nil
}

func (s *OrderService) decorate(ctx context.Context, o *models.Order) *OrderDetails {
	d := &OrderDetails{Order: o}

	if o.Product.IsCustomProduct {
		if cp, err := s.Repo.GetCustomProduct(ctx, o.Product.ID); err == nil {
			d.ProductImages = cp.Images
		}
	} else if p, err := s.Repo.GetProduct(ctx, o.Product.ID); err == nil {
		d.ProductImages = p.Images
	}

	if o.CouponCode != nil {
		if c, err := s.Repo.GetCoupon(ctx, *o.CouponCode); err == nil {
			d.CouponDescription = c.Description
		}
	}
	return d
}

func (s *OrderService) ListOrders(ctx context.Context, page, size int, method, status string) (int64, []models.Order, int, error) {
	m := models.PaymentMethod(strings.TrimSpace(method))
	if m != "" && !m.Valid() {
		return 0, nil, 0, errorf(ErrValidation, "unknown payment method %q", method)
	}
	st := models.OrderStatus(strings.TrimSpace(status))
	if st != "" && !knownStatus(st) {
		return 0, nil, 0, errorf(ErrValidation, "unknown status %q", status)
	}

	offset, limit := util.Calculate(page, size)
	total, items, err := s.Repo.ListOrders(ctx, offset, limit, m, st)
	return total, items, limit, err
}

// UpdateOrderStatus is the admin transition. Delivery orders move forward
// along deliveryFlow; online orders are completed by their provider only.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status string) (*models.Order, error) {
	to := models.OrderStatus(strings.TrimSpace(status))
	if !knownStatus(to) {
		return nil, errorf(ErrValidation, "unknown status %q", status)
	}

	o, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		return nil, notFound(err, "order")
	}
	if err := CanTransition(o.PaymentMethod, o.Status, to); err != nil {
		return nil, err
	}

	if err := s.Repo.UpdateOrderStatus(ctx, id, o.Status, to); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorf(ErrConflict, "order status changed concurrently")
		}
		return nil, err
	}

	logging.FromContext(ctx).Info("order_status_changed", "order_id", id, "from", o.Status, "to", to)
	publish(ctx, s.Events, events.TopicOrders, id.String(), map[string]any{
		"type":    "order_status_changed",
		"orderID": id,
		"from":    o.Status,
		"to":      to,
	})

	return s.Repo.GetOrder(ctx, id)
}

// CanTransition reports whether an admin may move an order from one status
// to another.
func CanTransition(method models.PaymentMethod, from, to models.OrderStatus) error {
	if method.Online() {
		return errorf(ErrInvalidTransition, "%s orders are completed by the payment provider", method)
	}
	fi := slices.Index(deliveryFlow, from)
	ti := slices.Index(deliveryFlow, to)
	if fi < 0 || ti < 0 {
		return errorf(ErrInvalidTransition, "cannot move a delivery order from %s to %s", from, to)
	}
	if from == models.OrderStatusDelivered {
		return errorf(ErrInvalidTransition, "delivered orders are final")
	}
	if ti <= fi {
		return errorf(ErrInvalidTransition, "cannot move a delivery order from %s back to %s", from, to)
	}
	return nil
}

func knownStatus(s models.OrderStatus) bool {
	switch s {
	case models.OrderStatusPending, models.OrderStatusReceived, models.OrderStatusOutForDelivery,
		models.OrderStatusDelivered, models.OrderStatusCompleted:
		return true
	}
	return false
}
