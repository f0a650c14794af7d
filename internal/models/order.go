package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PaymentMethod string

const (
	PaymentStripe   PaymentMethod = "stripe"
	PaymentPayPal   PaymentMethod = "paypal"
	PaymentDelivery PaymentMethod = "delivery"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentStripe, PaymentPayPal, PaymentDelivery:
		return true
	}
	return false
}

// Online reports whether the provider collects the money before the order exists.
func (m PaymentMethod) Online() bool {
	return m == PaymentStripe || m == PaymentPayPal
}

type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "pending"
	OrderStatusReceived       OrderStatus = "received"
	OrderStatusOutForDelivery OrderStatus = "out_for_delivery"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCompleted      OrderStatus = "completed"
)

func (s OrderStatus) String() string {
	return string(s)
}

type Customer struct {
	Name    string `gorm:"not null;default:''" json:"name"`
	Email   string `gorm:"not null;default:''" json:"email"`
	Phone   string `gorm:"not null;default:''" json:"phone"`
	Address string `gorm:"not null;default:''" json:"address"`
}

// ProductSnapshot freezes what was sold; later catalog edits do not alter it.
type ProductSnapshot struct {
	ID              uuid.UUID       `gorm:"type:uuid;not null"    json:"id"`
	Name            string          `gorm:"not null"              json:"name"`
	Price           decimal.Decimal `gorm:"type:numeric;not null" json:"price"`
	Category        string          `                             json:"category"`
	IsCustomProduct bool            `gorm:"not null;default:false" json:"isCustomProduct"`
	CustomText      string          `                             json:"customText,omitempty"`
	CustomImage     string          `                             json:"customImage,omitempty"`
	DesignImageID   *uuid.UUID      `gorm:"type:uuid"             json:"designImageId,omitempty"`
}

type Order struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey"                  json:"id"`
	PaymentMethod      PaymentMethod   `gorm:"size:16;not null;index"                json:"paymentMethod"`
	ProviderRef        string          `gorm:"size:255;not null;uniqueIndex"         json:"providerRef"`
	RequestHash        string          `gorm:"size:64;not null;default:''"           json:"-"`
	IdempotencyKey     string          `gorm:"size:128;not null;default:'';index"    json:"-"`
	Customer           Customer        `gorm:"embedded;embeddedPrefix:customer_"     json:"customer"`
	Product            ProductSnapshot `gorm:"embedded;embeddedPrefix:product_"      json:"product"`
	SelectedColor      string          `                                             json:"selectedColor"`
	SelectedSize       string          `                                             json:"selectedSize"`
	Quantity           int             `gorm:"not null;check:quantity >= 1"          json:"quantity"`
	OriginalPrice      decimal.Decimal `gorm:"type:numeric;not null"                 json:"originalPrice"`
	FinalPrice         decimal.Decimal `gorm:"type:numeric;not null"                 json:"finalPrice"`
	CouponCode         *string         `gorm:"size:64"                               json:"couponCode"`
	DiscountPercentage int             `gorm:"not null;default:0"                    json:"discountPercentage"`
	AmountTotal        int64           `gorm:"not null"                              json:"amount_total"`
	Currency           string          `gorm:"size:8;not null"                       json:"currency"`
	AmountVerified     bool            `gorm:"not null;default:false"                json:"amountVerified"`
	Status             OrderStatus     `gorm:"size:32;not null;index"                json:"status"`
	CreatedAt          time.Time       `gorm:"index"                                 json:"created"`
	UpdatedAt          time.Time       `                                             json:"updated"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// PendingOrder stashes a PayPal checkout between provider order creation and capture.
type PendingOrder struct {
	ProviderOrderID string         `gorm:"primaryKey;size:64"            json:"providerOrderId"`
	IdempotencyKey  string         `gorm:"size:128;not null;uniqueIndex" json:"idempotencyKey"`
	RequestHash     string         `gorm:"size:64;not null"              json:"-"`
	Intent          datatypes.JSON `gorm:"not null"                      json:"intent"`
	ExpectedAmount  int64          `gorm:"not null"                      json:"expectedAmount"`
	Currency        string         `gorm:"size:8;not null"               json:"currency"`
	CreatedAt       time.Time      `                                     json:"createdAt"`
}

func All() []any {
	return []any{&Product{}, &CustomProduct{}, &DesignImage{}, &Coupon{}, &Order{}, &PendingOrder{}}
}
