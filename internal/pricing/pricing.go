// Package pricing derives order amounts from a base price and an optional
// coupon discount. All arithmetic is exact decimal; conversion to provider
// minor units happens once, in MinorUnits.
package pricing

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidPrice    = errors.New("price must be greater than zero")
	ErrInvalidDiscount = errors.New("discount percentage must be between 0 and 100")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

var hundred = decimal.NewFromInt(100)

// UnitPrice returns base * (1 - discountPercentage/100).
func UnitPrice(base decimal.Decimal, discountPercentage int) decimal.Decimal {
	if discountPercentage == 0 {
		return base
	}
	factor := hundred.Sub(decimal.NewFromInt(int64(discountPercentage)))
	return base.Mul(factor).Div(hundred)
}

func Total(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

// MinorUnits converts an amount to integer cents, rounding half away from zero.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}

// FromMinorUnits is the inverse of MinorUnits for provider-reported amounts.
func FromMinorUnits(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

type Quote struct {
	OriginalPrice      decimal.Decimal `json:"originalPrice"`
	FinalPrice         decimal.Decimal `json:"finalPrice"`
	DiscountPercentage int             `json:"discountPercentage"`
	Quantity           int             `json:"quantity"`
	Total              decimal.Decimal `json:"total"`
	AmountTotal        int64           `json:"amount_total"`
}

func NewQuote(base decimal.Decimal, discountPercentage, quantity int) (Quote, error) {
	if !base.IsPositive() {
		return Quote{}, ErrInvalidPrice
	}
	if discountPercentage < 0 || discountPercentage > 100 {
		return Quote{}, ErrInvalidDiscount
	}
	if quantity < 1 {
		return Quote{}, ErrInvalidQuantity
	}

	unit := UnitPrice(base, discountPercentage)
	total := Total(unit, quantity)
	return Quote{
		OriginalPrice:      base,
		FinalPrice:         unit,
		DiscountPercentage: discountPercentage,
		Quantity:           quantity,
		Total:              total,
		AmountTotal:        MinorUnits(total),
	}, nil
}

// UnitMinorUnits is the per-item amount sent to providers that price line items.
func (q Quote) UnitMinorUnits() int64 {
	return MinorUnits(q.FinalPrice)
}
