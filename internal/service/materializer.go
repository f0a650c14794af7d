package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/apparel_shop/internal/hash"
	"github.com/Skotchmaster/apparel_shop/internal/models"
	"github.com/Skotchmaster/apparel_shop/internal/payment"
	"github.com/Skotchmaster/apparel_shop/internal/pricing"
	"github.com/Skotchmaster/apparel_shop/pkg/events"
	"github.com/Skotchmaster/apparel_shop/pkg/logging"
)

// errForeignSession marks paid sessions this shop did not open, such as
// payment links created in the Stripe dashboard.
var errForeignSession = errors.New("session was not created by checkout")

// Materialize is the only path that inserts orders. The provider ref is
// unique, so a replay returns the stored order and reports created=false.
func (s *CheckoutService) Materialize(ctx context.Context, order *models.Order) (*models.Order, bool, error) {
	if order.ProviderRef == "" {
		return nil, false, errors.New("materialize: empty provider ref")
	}
	if order.Quantity < 1 {
		return nil, false, errorf(ErrValidation, "quantity must be at least 1")
	}

	created, err := s.Repo.InsertOrder(ctx, order)
	if err != nil {
		return nil, false, err
	}
	if !created {
		existing, err := s.Repo.FindOrderByProviderRef(ctx, order.ProviderRef)
		if err != nil {
			return nil, false, err
		}
		if existing.RequestHash != "" && order.RequestHash != "" && !hash.Equal(existing.RequestHash, order.RequestHash) {
			return nil, false, errorf(ErrConflict, "idempotency key was already used for a different checkout")
		}
		return existing, false, nil
	}

	logging.FromContext(ctx).Info("order_materialized",
		"order_id", order.ID,
		"payment_method", order.PaymentMethod,
		"provider_ref", order.ProviderRef,
		"amount_total", order.AmountTotal,
		"amount_verified", order.AmountVerified)

	publish(ctx, s.Events, events.TopicOrders, order.ID.String(), map[string]any{
		"type":          "order_materialized",
		"orderID":       order.ID,
		"paymentMethod": order.PaymentMethod,
		"providerRef":   order.ProviderRef,
		"amountTotal":   order.AmountTotal,
		"currency":      order.Currency,
		"status":        order.Status,
	})
	return order, true, nil
}

// HandleStripeWebhook verifies the event and materializes paid sessions.
// Events that carry nothing to materialize return a nil order.
func (s *CheckoutService) HandleStripeWebhook(ctx context.Context, payload []byte, signature string) (*models.Order, error) {
	if s.Stripe == nil {
		return nil, errorf(ErrProviderNotConfigured, "stripe is not configured")
	}
	ev, err := s.Stripe.ParseWebhook(payload, signature)
	if err != nil {
		if errors.Is(err, payment.ErrNotConfigured) {
			return nil, errorf(ErrProviderNotConfigured, "stripe webhook secret is not configured")
		}
		return nil, errorf(ErrValidation, "invalid webhook: %v", err)
	}

	l := logging.FromContext(ctx).With("svc", "checkout.stripe_webhook", "event_id", ev.ID, "event_type", ev.Type)
	if ev.Session == nil {
		l.Debug("stripe_event_ignored")
		return nil, nil
	}
	if !ev.Session.Paid() {
		l.Info("stripe_session_unpaid", "session_id", ev.Session.ID, "payment_status", ev.Session.PaymentStatus)
		return nil, nil
	}

	o, _, err := s.materializeStripe(ctx, ev.Session)
	if errors.Is(err, errForeignSession) {
		l.Warn("stripe_session_ignored", "session_id", ev.Session.ID, "reason", err.Error())
		return nil, nil
	}
	return o, err
}

// MaterializeStripeSession fetches the session from Stripe and stores its
// order. It backs the success page when the webhook has not arrived yet.
func (s *CheckoutService) MaterializeStripeSession(ctx context.Context, sessionID string) (*models.Order, error) {
	if s.Stripe == nil {
		return nil, errorf(ErrProviderNotConfigured, "stripe is not configured")
	}
	if o, err := s.Repo.FindOrderByProviderRef(ctx, sessionID); err == nil {
		return o, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	sess, err := s.Stripe.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !sess.Paid() {
		return nil, errorf(ErrOrderNotCompleted, "stripe session %s is %s", sess.ID, sess.PaymentStatus)
	}
	o, _, err := s.materializeStripe(ctx, sess)
	if errors.Is(err, errForeignSession) {
		return nil, errorf(ErrNotFound, "order not found")
	}
	return o, err
}

func (s *CheckoutService) materializeStripe(ctx context.Context, sess *payment.StripeSession) (*models.Order, bool, error) {
	intent, err := s.intentFromStripe(ctx, sess)
	if err != nil {
		return nil, false, err
	}

	order := intent.order(models.PaymentStripe, sess.ID)
	order.AmountTotal = sess.AmountTotal
	order.AmountVerified = true
	order.Status = models.OrderStatusCompleted
	if sess.Currency != "" {
		order.Currency = strings.ToLower(sess.Currency)
	}

	if sess.AmountTotal != intent.Pricing.AmountTotal {
		logging.FromContext(ctx).Warn("provider_amount_mismatch",
			"provider", "stripe",
			"session_id", sess.ID,
			"provider_amount", sess.AmountTotal,
			"expected_amount", intent.Pricing.AmountTotal)
	}
	return s.Materialize(ctx, order)
}

// intentFromStripe rebuilds the intent from the metadata written by
// StartStripeCheckout. Coupons are not re-validated: the customer has paid.
func (s *CheckoutService) intentFromStripe(ctx context.Context, sess *payment.StripeSession) (*CheckoutIntent, error) {
	md := sess.Metadata

	productID, err := uuid.Parse(md["productId"])
	if err != nil {
		return nil, errorf(errForeignSession, "stripe session %s has no product", sess.ID)
	}
	qty, err := strconv.Atoi(md["quantity"])
	if err != nil || qty < 1 {
		qty = 1
	}
	discount, _ := strconv.Atoi(md["discountPercentage"])
	isCustom, _ := strconv.ParseBool(md["isCustomProduct"])

	snap := models.ProductSnapshot{
		ID:              productID,
		Name:            md["productName"],
		Category:        md["category"],
		IsCustomProduct: isCustom,
		CustomText:      md["customText"],
		CustomImage:     md["customImage"],
	}
	if v, err := decimal.NewFromString(md["originalPrice"]); err == nil {
		snap.Price = v
	}
	if v, err := uuid.Parse(md["designImageId"]); err == nil {
		snap.DesignImageID = &v
	}

	prod, custom, err := s.Catalog.lookupProduct(ctx, productID, isCustom, false)
	switch {
	case err == nil && custom != nil:
		snap.Name, snap.Category, snap.IsCustomProduct = custom.Name, custom.Category, true
		if snap.Price.IsZero() {
			snap.Price = custom.Price
		}
		if snap.DesignImageID == nil {
			snap.DesignImageID = custom.FinalDesignImageID
		}
		if snap.CustomImage == "" {
			snap.CustomImage = custom.CustomImage
		}
	case err == nil:
		snap.Name, snap.Category = prod.Name, prod.Category
		if snap.Price.IsZero() {
			snap.Price = prod.Price
		}
	case !isMissing(err):
		return nil, err
	}
	if snap.Name == "" {
		snap.Name = "Unknown product"
	}
	if !snap.Price.IsPositive() {
		return nil, errorf(ErrValidation, "stripe session %s has no price", sess.ID)
	}

	quote, err := pricing.NewQuote(snap.Price, discount, qty)
	if err != nil {
		return nil, errorf(ErrValidation, "stripe session %s: %v", sess.ID, err)
	}

	intent := &CheckoutIntent{
		IdempotencyKey: md["idempotencyKey"],
		RequestHash:    md["requestHash"],
		Product:        snap,
		SelectedColor:  md["color"],
		SelectedSize:   md["size"],
		Pricing:        quote,
		Currency:       s.currency(),
		Customer: models.Customer{
			Name:    firstNonEmpty(sess.CustomerName, md["customerName"]),
			Email:   firstNonEmpty(sess.CustomerEmail, md["customerEmail"]),
			Phone:   firstNonEmpty(md["customerPhone"], sess.CustomerPhone),
			Address: firstNonEmpty(md["customerAddress"], sess.CustomerAddress),
		},
	}
	if c := md["coupon"]; c != "" {
		intent.CouponCode = &c
	}
	return intent, nil
}

// CompletePayPalCheckout stores the order for an approved or captured PayPal
// order, using the amount PayPal reports. Calling it again is safe; an order
// stored while APPROVED moves to completed once PayPal reports COMPLETED.
func (s *CheckoutService) CompletePayPalCheckout(ctx context.Context, providerOrderID string) (*models.Order, error) {
	if s.PayPal == nil {
		return nil, errorf(ErrProviderNotConfigured, "paypal is not configured")
	}
	providerOrderID = strings.TrimSpace(providerOrderID)
	if providerOrderID == "" {
		return nil, errorf(ErrValidation, "paypal order id is required")
	}
	l := logging.FromContext(ctx).With("svc", "checkout.paypal_complete", "paypal_order_id", providerOrderID)

	existing, err := s.Repo.FindOrderByProviderRef(ctx, providerOrderID)
	switch {
	case err == nil:
		if existing.Status != models.OrderStatusPending {
			return existing, nil
		}
		po, err := s.PayPal.GetOrder(ctx, providerOrderID)
		if err != nil {
			return nil, err
		}
		if po.Status == payment.PayPalStatusCompleted {
			return s.completeOnlineOrder(ctx, existing)
		}
		return existing, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	stash, err := s.Repo.GetPendingOrder(ctx, providerOrderID)
	if err != nil {
		return nil, notFound(err, "pending paypal order")
	}

	po, err := s.PayPal.GetOrder(ctx, providerOrderID)
	if err != nil {
		return nil, err
	}

	var status models.OrderStatus
	switch po.Status {
	case payment.PayPalStatusCompleted:
		status = models.OrderStatusCompleted
	case payment.PayPalStatusApproved:
		status = models.OrderStatusPending
	default:
		return nil, errorf(ErrOrderNotCompleted, "paypal order %s is %s", po.ID, po.Status)
	}

	var intent CheckoutIntent
	if err := json.Unmarshal(stash.Intent, &intent); err != nil {
		return nil, err
	}
	if intent.Customer.Name == "" {
		intent.Customer.Name = po.PayerName
	}
	if intent.Customer.Email == "" {
		intent.Customer.Email = po.PayerEmail
	}

	order := intent.order(models.PaymentPayPal, providerOrderID)
	order.AmountTotal = pricing.MinorUnits(po.Amount)
	order.AmountVerified = true
	order.Status = status
	if po.Currency != "" {
		order.Currency = strings.ToLower(po.Currency)
	}

	if order.AmountTotal != stash.ExpectedAmount {
		l.Warn("provider_amount_mismatch",
			"provider", "paypal",
			"provider_amount", order.AmountTotal,
			"expected_amount", stash.ExpectedAmount)
	}

	o, _, err := s.Materialize(ctx, order)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.DeletePendingOrder(ctx, providerOrderID); err != nil {
		l.Warn("pending_order_cleanup_failed", "error", err)
	}
	return o, nil
}

// completeOnlineOrder is the one system-driven transition.
func (s *CheckoutService) completeOnlineOrder(ctx context.Context, o *models.Order) (*models.Order, error) {
	if err := s.Repo.UpdateOrderStatus(ctx, o.ID, models.OrderStatusPending, models.OrderStatusCompleted); err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	} else {
		publish(ctx, s.Events, events.TopicOrders, o.ID.String(), map[string]any{
			"type":    "order_status_changed",
			"orderID": o.ID,
			"from":    models.OrderStatusPending,
			"to":      models.OrderStatusCompleted,
		})
	}
	return s.Repo.GetOrder(ctx, o.ID)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
