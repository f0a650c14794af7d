package transport

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type PageMeta struct {
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
	HasPrev    bool  `json:"has_prev"`
	HasNext    bool  `json:"has_next"`
}

type Page[T any] struct {
	Data []T       `json:"data"`
	Meta PageMeta `json:"meta"`
}

type CreateProductRequest struct {
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	Images          []string        `json:"images"`
	Category        string          `json:"category"`
	AvailableColors []string        `json:"availableColors"`
	AvailableSizes  []string        `json:"availableSizes"`
	Published       bool            `json:"published"`
}

type PatchProductRequest struct {
	Name            *string          `json:"name"`
	Description     *string          `json:"description"`
	Price           *decimal.Decimal `json:"price"`
	Images          *[]string        `json:"images"`
	Category        *string          `json:"category"`
	AvailableColors *[]string        `json:"availableColors"`
	AvailableSizes  *[]string        `json:"availableSizes"`
	Published       *bool            `json:"published"`
}

type CreateCouponRequest struct {
	Code               string `json:"code"`
	DiscountPercentage int    `json:"discountPercentage"`
	IsActive           *bool  `json:"isActive"`
	Description        string `json:"description"`
}

type PatchCouponRequest struct {
	IsActive *bool `json:"isActive"`
}

type ValidateCouponRequest struct {
	Code string `json:"code"`
}

type ValidateCouponResponse struct {
	Valid              bool   `json:"valid"`
	Code               string `json:"code"`
	DiscountPercentage int    `json:"discountPercentage"`
	Description        string `json:"description"`
}

type CustomerInfo struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// CheckoutRequest is what the storefront submits for every payment path.
// Price fields are display hints; amounts are always recomputed.
type CheckoutRequest struct {
	ProductID       string       `json:"productId"`
	IsCustomProduct bool         `json:"isCustomProduct"`
	SelectedColor   string       `json:"selectedColor"`
	SelectedSize    string       `json:"selectedSize"`
	Quantity        int          `json:"quantity"`
	CustomText      string       `json:"customText"`
	DesignImageID   string       `json:"designImageId"`
	CouponCode      string       `json:"couponCode"`
	Customer        CustomerInfo `json:"customer"`
	IdempotencyKey  string       `json:"idempotencyKey"`

	OriginalPrice      *decimal.Decimal `json:"originalPrice,omitempty"`
	FinalPrice         *decimal.Decimal `json:"finalPrice,omitempty"`
	DiscountPercentage *int             `json:"discountPercentage,omitempty"`
}

type CreateCustomProductRequest struct {
	BaseProductID string          `json:"baseProductId"`
	CustomText    string          `json:"customText"`
	CustomImage   string          `json:"customImage"`
	ImageData     string          `json:"imageData"`
	DesignData    json.RawMessage `json:"designData,omitempty"`
}

type CustomProductResponse struct {
	CustomProductID string `json:"customProductId"`
	DesignImageID   string `json:"designImageId"`
}

type StripeCheckoutResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type PayPalCheckoutResponse struct {
	ID         string `json:"id"`
	ApproveURL string `json:"approveUrl,omitempty"`
}

type DeliveryOrderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}
