package service

import (
	"context"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/apparel_shop/internal/hash"
	"github.com/Skotchmaster/apparel_shop/internal/models"
	"github.com/Skotchmaster/apparel_shop/internal/payment"
	"github.com/Skotchmaster/apparel_shop/internal/pricing"
	"github.com/Skotchmaster/apparel_shop/internal/repo"
	"github.com/Skotchmaster/apparel_shop/internal/transport"
	"github.com/Skotchmaster/apparel_shop/pkg/events"
	"github.com/Skotchmaster/apparel_shop/pkg/logging"
)

const (
	maxQuantity          = 100
	maxIdempotencyKeyLen = 120
)

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe = regexp.MustCompile(`^\+?[0-9][0-9\s\-().]{5,19}$`)
)

type CheckoutService struct {
	Repo    *repo.GormRepo
	Catalog *CatalogService
	Coupons *CouponService
	Events  events.Publisher

	// Stripe and PayPal stay nil when the provider is not configured.
	Stripe payment.StripeGateway
	PayPal payment.PayPalGateway

	Currency      string
	PublicBaseURL string
}

// CheckoutIntent is one purchase attempt with server-side prices.
type CheckoutIntent struct {
	IdempotencyKey string                 `json:"idempotencyKey"`
	RequestHash    string                 `json:"requestHash"`
	Product        models.ProductSnapshot `json:"product"`
	SelectedColor  string                 `json:"selectedColor"`
	SelectedSize   string                 `json:"selectedSize"`
	CouponCode     *string                `json:"couponCode"`
	Pricing        pricing.Quote          `json:"pricing"`
	Currency       string                 `json:"currency"`
	Customer       models.Customer        `json:"customer"`
}

// fingerprint covers what the customer chose, not what it costs.
type fingerprint struct {
	ProductID     uuid.UUID
	Custom        bool
	Color         string
	Size          string
	Quantity      int
	Coupon        string
	CustomText    string
	DesignImageID string
	Customer      models.Customer
}

func (in *CheckoutIntent) hash() (string, error) {
	fp := fingerprint{
		ProductID:  in.Product.ID,
		Custom:     in.Product.IsCustomProduct,
		Color:      in.SelectedColor,
		Size:       in.SelectedSize,
		Quantity:   in.Pricing.Quantity,
		CustomText: in.Product.CustomText,
		Customer:   in.Customer,
	}
	if in.CouponCode != nil {
		fp.Coupon = *in.CouponCode
	}
	if in.Product.DesignImageID != nil {
		fp.DesignImageID = in.Product.DesignImageID.String()
	}
	return hash.Fingerprint(fp)
}

func (in *CheckoutIntent) order(method models.PaymentMethod, providerRef string) *models.Order {
	return &models.Order{
		PaymentMethod:      method,
		ProviderRef:        providerRef,
		RequestHash:        in.RequestHash,
		IdempotencyKey:     in.IdempotencyKey,
		Customer:           in.Customer,
		Product:            in.Product,
		SelectedColor:      in.SelectedColor,
		SelectedSize:       in.SelectedSize,
		Quantity:           in.Pricing.Quantity,
		OriginalPrice:      in.Pricing.OriginalPrice,
		FinalPrice:         in.Pricing.FinalPrice,
		CouponCode:         in.CouponCode,
		DiscountPercentage: in.Pricing.DiscountPercentage,
		AmountTotal:        in.Pricing.AmountTotal,
		Currency:           in.Currency,
		Status:             models.OrderStatusPending,
	}
}

// BuildIntent resolves the product, re-validates the coupon and prices the
// selection on the server. Client price fields are only compared and logged.
func (s *CheckoutService) BuildIntent(ctx context.Context, req transport.CheckoutRequest) (*CheckoutIntent, error) {
	l := logging.FromContext(ctx).With("svc", "checkout.build_intent")

	productID, err := uuid.Parse(strings.TrimSpace(req.ProductID))
	if err != nil {
		return nil, errorf(ErrValidation, "invalid product id")
	}

	qty := req.Quantity
	if qty == 0 {
		qty = 1
	}
	if qty < 1 || qty > maxQuantity {
		return nil, errorf(ErrValidation, "quantity must be between 1 and %d", maxQuantity)
	}

	if len([]rune(strings.TrimSpace(req.CustomText))) > maxCustomTextLen {
		return nil, errorf(ErrValidation, "customText must be at most %d characters", maxCustomTextLen)
	}

	customer, err := normalizeCustomer(req.Customer)
	if err != nil {
		return nil, err
	}

	key := strings.TrimSpace(req.IdempotencyKey)
	if key == "" {
		key = uuid.NewString()
	}
	if len(key) > maxIdempotencyKeyLen {
		return nil, errorf(ErrValidation, "idempotencyKey must be at most %d characters", maxIdempotencyKeyLen)
	}

	prod, custom, err := s.Catalog.lookupProduct(ctx, productID, req.IsCustomProduct, true)
	if err != nil {
		return nil, err
	}

	intent := &CheckoutIntent{
		IdempotencyKey: key,
		Currency:       s.currency(),
		Customer:       customer,
		SelectedColor:  strings.TrimSpace(req.SelectedColor),
		SelectedSize:   strings.TrimSpace(req.SelectedSize),
	}

	var colors, sizes models.StringList
	if custom != nil {
		intent.Product = models.ProductSnapshot{
			ID:              custom.ID,
			Name:            custom.Name,
			Price:           custom.Price,
			Category:        custom.Category,
			IsCustomProduct: true,
			CustomText:      custom.CustomText,
			CustomImage:     custom.CustomImage,
			DesignImageID:   custom.FinalDesignImageID,
		}
		colors, sizes = custom.AvailableColors, custom.AvailableSizes
	} else {
		intent.Product = models.ProductSnapshot{
			ID:       prod.ID,
			Name:     prod.Name,
			Price:    prod.Price,
			Category: prod.Category,
		}
		colors, sizes = prod.AvailableColors, prod.AvailableSizes
	}

	if intent.Product.IsCustomProduct && intent.Product.DesignImageID == nil && strings.TrimSpace(req.DesignImageID) != "" {
		imgID, err := uuid.Parse(strings.TrimSpace(req.DesignImageID))
		if err != nil {
			return nil, errorf(ErrValidation, "invalid design image id")
		}
		if _, err := s.Repo.GetDesignImage(ctx, imgID); err != nil {
			return nil, notFound(err, "design image")
		}
		intent.Product.DesignImageID = &imgID
	}
	if intent.Product.IsCustomProduct && intent.Product.CustomText == "" {
		intent.Product.CustomText = strings.TrimSpace(req.CustomText)
	}

	if err := checkVariant("color", intent.SelectedColor, colors); err != nil {
		return nil, err
	}
	if err := checkVariant("size", intent.SelectedSize, sizes); err != nil {
		return nil, err
	}

	discount := 0
	if code := NormalizeCode(req.CouponCode); code != "" {
		c, err := s.Coupons.ValidateCoupon(ctx, code)
		if err != nil {
			if isMissing(err) {
				return nil, errorf(ErrValidation, "coupon is not active")
			}
			return nil, err
		}
		intent.CouponCode = &c.Code
		discount = c.DiscountPercentage
	}

	quote, err := pricing.NewQuote(intent.Product.Price, discount, qty)
	if err != nil {
		return nil, errorf(ErrValidation, "%s", err.Error())
	}
	intent.Pricing = quote

	if hintsDiffer(req, quote) {
		l.Warn("client_price_mismatch",
			"product_id", productID,
			"client_final_price", req.FinalPrice,
			"final_price", quote.FinalPrice,
			"discount_percentage", quote.DiscountPercentage)
	}

	h, err := intent.hash()
	if err != nil {
		return nil, err
	}
	intent.RequestHash = h
	return intent, nil
}

func (s *CheckoutService) currency() string {
	if s.Currency == "" {
		return "usd"
	}
	return strings.ToLower(s.Currency)
}

func normalizeCustomer(c transport.CustomerInfo) (models.Customer, error) {
	out := models.Customer{
		Name:    strings.TrimSpace(c.Name),
		Email:   strings.TrimSpace(c.Email),
		Phone:   strings.TrimSpace(c.Phone),
		Address: strings.TrimSpace(c.Address),
	}
	if out.Email != "" && !emailRe.MatchString(out.Email) {
		return out, errorf(ErrValidation, "invalid email address")
	}
	if out.Phone != "" && !phoneRe.MatchString(out.Phone) {
		return out, errorf(ErrValidation, "invalid phone number")
	}
	return out, nil
}

func checkVariant(field, selected string, available models.StringList) error {
	if len(available) == 0 {
		return nil
	}
	if selected == "" {
		return errorf(ErrValidation, "%s is required", field)
	}
	if !available.Contains(selected) {
		return errorf(ErrValidation, "%s %q is not available", field, selected)
	}
	return nil
}

func hintsDiffer(req transport.CheckoutRequest, q pricing.Quote) bool {
	if req.OriginalPrice != nil && !req.OriginalPrice.Equal(q.OriginalPrice) {
		return true
	}
	if req.FinalPrice != nil && !req.FinalPrice.Equal(q.FinalPrice) {
		return true
	}
	return req.DiscountPercentage != nil && *req.DiscountPercentage != q.DiscountPercentage
}
