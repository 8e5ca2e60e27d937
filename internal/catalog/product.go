// Package catalog holds the fixed product list of the storefront and the
// bundle offers priced on top of it.
package catalog

import (
	"slices"

	"github.com/shopspring/decimal"
)

// Size is a fitted-sheet size variant.
type Size string

const (
	SizeTwin  Size = "Twin"
	SizeFull  Size = "Full"
	SizeQueen Size = "Queen"
	SizeKing  Size = "King"
)

// Product is an immutable catalog entry.
type Product struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
	Image       string
	Sizes       []Size
}

// HasSizes reports whether a size must be picked when buying the product.
func (p Product) HasSizes() bool {
	return len(p.Sizes) > 0
}

// AllowsSize reports whether s is a valid variant for the product. Products
// without variants only accept the empty size.
func (p Product) AllowsSize(s Size) bool {
	if !p.HasSizes() {
		return s == ""
	}
	return slices.Contains(p.Sizes, s)
}

// MinorUnits converts a currency amount to the gateway's integer cents.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

// FromMinorUnits is the inverse of MinorUnits.
func FromMinorUnits(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}
