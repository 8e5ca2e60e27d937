package catalog

import (
	"github.com/shopspring/decimal"
)

const (
	AirPurifierID      = "air-purifier"
	MouthTapeID        = "mouth-tape"
	FittedSheetID      = "fitted-sheet"
	BlueLightGlassesID = "blue-light-glasses"
)

// Catalog is the read-only product list. Lookups never fail: an unknown id is
// reported through the second return value.
type Catalog struct {
	products []Product
	byID     map[string]int
	complete Offer
	offers   []Offer
}

// New builds a catalog in declaration order. The complete bundle covers every
// product at CompleteBundleDiscount.
func New(products []Product, offers ...Offer) *Catalog {
	c := &Catalog{
		products: append([]Product(nil), products...),
		byID:     make(map[string]int, len(products)),
	}
	ids := make([]string, 0, len(products))
	for i, p := range products {
		c.byID[p.ID] = i
		ids = append(ids, p.ID)
	}
	c.complete = Offer{Key: "full", Name: "Complete", ProductIDs: ids, DiscountPct: CompleteBundleDiscount}
	c.offers = append([]Offer(nil), offers...)
	return c
}

// ListProducts returns the products in declaration order.
func (c *Catalog) ListProducts() []Product {
	return append([]Product(nil), c.products...)
}

// GetProduct looks a product up by id.
func (c *Catalog) GetProduct(id string) (Product, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Product{}, false
	}
	return c.products[i], true
}

// Default returns the sleep-wellness catalog the storefront sells.
func Default() *Catalog {
	return New([]Product{
		{
			ID:          AirPurifierID,
			Name:        "Bedside Air Purifier",
			Description: "Compact, ultra-quiet purifier that removes allergens, dust and pollutants from bedroom air, with a dimmed night mode.",
			Price:       decimal.RequireFromString("44.99"),
			Image:       "/images/Untitled-1.PNG",
		},
		{
			ID:          MouthTapeID,
			Name:        "NasalBreathe Mouth Tape",
			Description: "Gentle, skin-friendly tape that encourages nasal breathing during sleep. 30 strips per box.",
			Price:       decimal.RequireFromString("9.99"),
			Image:       "/images/Untitled-2.PNG",
		},
		{
			ID:          FittedSheetID,
			Name:        "100% Natural Cotton Fitted Sheet",
			Description: "Breathable cotton fitted sheet that regulates body temperature night after night.",
			Price:       decimal.RequireFromString("39.99"),
			Image:       "/images/Untitled-3.PNG",
			Sizes:       []Size{SizeTwin, SizeFull, SizeQueen, SizeKing},
		},
		{
			ID:          BlueLightGlassesID,
			Name:        "Blue Light Filter Glasses",
			Description: "Unisex glasses that filter screen blue light in the evening to protect the circadian rhythm.",
			Price:       decimal.RequireFromString("12.99"),
			Image:       "/images/Untitled-4.PNG",
		},
	},
		Offer{Key: "basic", Name: "Essential", ProductIDs: []string{MouthTapeID, BlueLightGlassesID}, DiscountPct: decimal.RequireFromString("0.10")},
		Offer{Key: "premium", Name: "Premium", ProductIDs: []string{AirPurifierID, MouthTapeID, FittedSheetID}, DiscountPct: decimal.RequireFromString("0.15")},
	)
}
