package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Skotchmaster/apparel_shop/internal/hash"
	"github.com/Skotchmaster/apparel_shop/internal/models"
	"github.com/Skotchmaster/apparel_shop/internal/payment"
	"github.com/Skotchmaster/apparel_shop/internal/pricing"
	"github.com/Skotchmaster/apparel_shop/internal/transport"
	"github.com/Skotchmaster/apparel_shop/pkg/logging"
)

// Stripe rejects metadata values longer than this.
const stripeMetadataValueMax = 500

const deliveryRefPrefix = "delivery:"

// StartStripeCheckout opens a hosted Stripe session for the intent. The
// order itself is materialized once Stripe reports the session paid.
func (s *CheckoutService) StartStripeCheckout(ctx context.Context, req transport.CheckoutRequest) (*payment.StripeSession, error) {
	if s.Stripe == nil {
		return nil, errorf(ErrProviderNotConfigured, "stripe is not configured")
	}
	intent, err := s.BuildIntent(ctx, req)
	if err != nil {
		return nil, err
	}

	sess, err := s.Stripe.CreateCheckoutSession(ctx, payment.StripeCheckoutParams{
		IdempotencyKey: intent.IdempotencyKey,
		ProductName:    intent.Product.Name,
		Description:    variantLabel(intent),
		UnitAmount:     intent.Pricing.UnitMinorUnits(),
		Quantity:       int64(intent.Pricing.Quantity),
		Currency:       intent.Currency,
		CustomerEmail:  intent.Customer.Email,
		SuccessURL:     s.PublicBaseURL + "/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:      s.PublicBaseURL + "/checkout?canceled=1",
		Metadata:       stripeMetadata(intent),
	})
	if err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Info("stripe_session_created",
		"session_id", sess.ID,
		"idempotency_key", intent.IdempotencyKey,
		"amount_total", intent.Pricing.AmountTotal)
	return sess, nil
}

func stripeMetadata(in *CheckoutIntent) map[string]string {
	md := map[string]string{
		"productId":          in.Product.ID.String(),
		"productName":        in.Product.Name,
		"color":              in.SelectedColor,
		"size":               in.SelectedSize,
		"quantity":           strconv.Itoa(in.Pricing.Quantity),
		"isCustomProduct":    strconv.FormatBool(in.Product.IsCustomProduct),
		"customText":         in.Product.CustomText,
		"category":           in.Product.Category,
		"originalPrice":      in.Pricing.OriginalPrice.String(),
		"finalPrice":         in.Pricing.FinalPrice.String(),
		"discountPercentage": strconv.Itoa(in.Pricing.DiscountPercentage),
		"customerName":       in.Customer.Name,
		"customerEmail":      in.Customer.Email,
		"customerPhone":      in.Customer.Phone,
		"customerAddress":    in.Customer.Address,
		"idempotencyKey":     in.IdempotencyKey,
		"requestHash":        in.RequestHash,
	}
	if in.CouponCode != nil {
		md["coupon"] = *in.CouponCode
	}
	if in.Product.DesignImageID != nil {
		md["designImageId"] = in.Product.DesignImageID.String()
	}
	if in.Product.CustomImage != "" {
		md["customImage"] = in.Product.CustomImage
	}
	for k, v := range md {
		if v == "" {
			delete(md, k)
			continue
		}
		if r := []rune(v); len(r) > stripeMetadataValueMax {
			md[k] = string(r[:stripeMetadataValueMax])
		}
	}
	return md
}

func variantLabel(in *CheckoutIntent) string {
	parts := make([]string, 0, 3)
	if in.SelectedColor != "" {
		parts = append(parts, "Color: "+in.SelectedColor)
	}
	if in.SelectedSize != "" {
		parts = append(parts, "Size: "+in.SelectedSize)
	}
	if in.Product.CustomText != "" {
		parts = append(parts, "Text: "+in.Product.CustomText)
	}
	return strings.Join(parts, ", ")
}

// StartPayPalCheckout creates the provider order and stashes the intent
// until the buyer approves it. Replaying the same idempotency key returns
// the order created the first time.
func (s *CheckoutService) StartPayPalCheckout(ctx context.Context, req transport.CheckoutRequest) (*payment.PayPalOrder, error) {
	if s.PayPal == nil {
		return nil, errorf(ErrProviderNotConfigured, "paypal is not configured")
	}
	intent, err := s.BuildIntent(ctx, req)
	if err != nil {
		return nil, err
	}

	// the stash is gone once the order is materialized, so look there first
	placed, err := s.Repo.FindOrderByIdempotencyKey(ctx, models.PaymentPayPal, intent.IdempotencyKey)
	switch {
	case err == nil:
		if !hash.Equal(placed.RequestHash, intent.RequestHash) {
			return nil, errorf(ErrConflict, "idempotency key was already used for a different checkout")
		}
		status := payment.PayPalStatusApproved
		if placed.Status == models.OrderStatusCompleted {
			status = payment.PayPalStatusCompleted
		}
		return &payment.PayPalOrder{ID: placed.ProviderRef, Status: status}, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	existing, err := s.Repo.FindPendingByIdempotencyKey(ctx, intent.IdempotencyKey)
	switch {
	case err == nil:
		if !hash.Equal(existing.RequestHash, intent.RequestHash) {
			return nil, errorf(ErrConflict, "idempotency key was already used for a different checkout")
		}
		return &payment.PayPalOrder{ID: existing.ProviderOrderID}, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	po, err := s.PayPal.CreateOrder(ctx, payment.PayPalOrderParams{
		ReferenceID: intent.Product.ID.String(),
		CustomID:    intent.IdempotencyKey,
		Description: intent.Product.Name,
		Amount:      pricing.FromMinorUnits(intent.Pricing.AmountTotal),
		Currency:    intent.Currency,
		ReturnURL:   s.PublicBaseURL + "/paypal/return",
		CancelURL:   s.PublicBaseURL + "/checkout?canceled=1",
	})
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(intent)
	if err != nil {
		return nil, err
	}
	stash := &models.PendingOrder{
		ProviderOrderID: po.ID,
		IdempotencyKey:  intent.IdempotencyKey,
		RequestHash:     intent.RequestHash,
		Intent:          datatypes.JSON(raw),
		ExpectedAmount:  intent.Pricing.AmountTotal,
		Currency:        intent.Currency,
	}
	if err := s.Repo.CreatePendingOrder(ctx, stash); err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Info("paypal_order_created",
		"paypal_order_id", po.ID,
		"idempotency_key", intent.IdempotencyKey,
		"amount_total", intent.Pricing.AmountTotal)
	return po, nil
}

// CreateDeliveryOrder persists a cash-on-delivery order right away. Contact
// fields are checked before anything is read or written.
func (s *CheckoutService) CreateDeliveryOrder(ctx context.Context, req transport.CheckoutRequest) (*models.Order, error) {
	if err := requireContact(req.Customer); err != nil {
		return nil, err
	}
	intent, err := s.BuildIntent(ctx, req)
	if err != nil {
		return nil, err
	}

	order := intent.order(models.PaymentDelivery, deliveryRefPrefix+intent.IdempotencyKey)
	order.AmountVerified = false

	o, _, err := s.Materialize(ctx, order)
	return o, err
}

func requireContact(c transport.CustomerInfo) error {
	var missing []string
	if strings.TrimSpace(c.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(c.Email) == "" {
		missing = append(missing, "email")
	}
	if strings.TrimSpace(c.Phone) == "" {
		missing = append(missing, "phone")
	}
	if strings.TrimSpace(c.Address) == "" {
		missing = append(missing, "address")
	}
	if len(missing) > 0 {
		return errorf(ErrValidation, "missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}
