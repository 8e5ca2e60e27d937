package catalog

import (
	"github.com/shopspring/decimal"
)

// CompleteBundleDiscount is the share taken off when every product is bought
// together.
var CompleteBundleDiscount = decimal.RequireFromString("0.15")

// Offer is a set of products sold together at a percentage off.
type Offer struct {
	Key         string
	Name        string
	ProductIDs  []string
	DiscountPct decimal.Decimal
}

// Quote is an Offer priced against a catalog. Price + Discount == RegularTotal.
type Quote struct {
	Offer        Offer
	Products     []Product
	RegularTotal decimal.Decimal
	Price        decimal.Decimal
	Discount     decimal.Decimal
}

// Quote prices o with the catalog's current prices. Unknown ids are skipped.
func (c *Catalog) Quote(o Offer) Quote {
	q := Quote{Offer: o, RegularTotal: decimal.Zero}
	for _, id := range o.ProductIDs {
		p, ok := c.GetProduct(id)
		if !ok {
			continue
		}
		q.Products = append(q.Products, p)
		q.RegularTotal = q.RegularTotal.Add(p.Price)
	}
	q.Price = q.RegularTotal.Mul(decimal.NewFromInt(1).Sub(o.DiscountPct)).Round(2)
	q.Discount = q.RegularTotal.Sub(q.Price)
	return q
}

// CompleteBundle is the offer that unlocks the checkout discount.
func (c *Catalog) CompleteBundle() Quote {
	return c.Quote(c.complete)
}

// Offers lists the complete bundle followed by the smaller display tiers.
func (c *Catalog) Offers() []Quote {
	out := make([]Quote, 0, len(c.offers)+1)
	out = append(out, c.CompleteBundle())
	for _, o := range c.offers {
		out = append(out, c.Quote(o))
	}
	return out
}

// BundleProducts returns the products required for the complete bundle.
func (c *Catalog) BundleProducts() []Product {
	return c.CompleteBundle().Products
}

// BundlePrice is the complete bundle total after the discount, to the cent.
func (c *Catalog) BundlePrice() decimal.Decimal {
	return c.CompleteBundle().Price
}

// BundleDiscount is the amount taken off the complete bundle.
func (c *Catalog) BundleDiscount() decimal.Decimal {
	return c.CompleteBundle().Discount
}

// IsFullBundle reports whether productIDs contain every complete-bundle
// product at least once. Quantities, sizes and extra products don't matter.
func (c *Catalog) IsFullBundle(productIDs []string) bool {
	seen := make(map[string]struct{}, len(productIDs))
	for _, id := range productIDs {
		seen[id] = struct{}{}
	}
	for _, id := range c.complete.ProductIDs {
		if _, ok := seen[id]; !ok {
			return false
		}
	}
	return true
}
