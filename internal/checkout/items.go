package checkout

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/sleepwell-storefront/internal/cart"
	"github.com/jcmexdev/sleepwell-storefront/internal/catalog"
)

// Item is a cart line plus the name/price snapshot taken when checkout starts.
type Item struct {
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	Size      catalog.Size    `json:"size,omitempty"`
	Name      string          `json:"name,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image,omitempty"`
}

// Products resolves product ids. *catalog.Catalog satisfies it.
type Products interface {
	GetProduct(id string) (catalog.Product, bool)
}

// Resolve snapshots catalog name, price and image onto each line. Prices
// always come from the catalog. An empty list, an unknown product or a
// quantity below 1 is an ErrInvalidCart.
func Resolve(products Products, lines []cart.Line) ([]Item, error) {
	if len(lines) == 0 {
		return nil, ErrInvalidCart
	}
	items := make([]Item, 0, len(lines))
	for _, l := range lines {
		if l.Quantity < 1 {
			return nil, fmt.Errorf("%w: quantity for %q must be at least 1", ErrInvalidCart, l.ProductID)
		}
		p, ok := products.GetProduct(l.ProductID)
		if !ok {
			return nil, fmt.Errorf("%w: unknown product %q", ErrInvalidCart, l.ProductID)
		}
		items = append(items, Item{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			Size:      l.Size,
			Name:      p.Name,
			Price:     p.Price,
			Image:     p.Image,
		})
	}
	return items, nil
}

// MaxMetadataValue is the longest value the payment gateway accepts for a
// single metadata key.
const MaxMetadataValue = 500

// metaItem is the compact metadata form of an Item. Names and images are
// looked up again when the metadata is read back.
type metaItem struct {
	ProductID string          `json:"id"`
	Quantity  int             `json:"q"`
	Size      catalog.Size    `json:"s,omitempty"`
	Price     decimal.Decimal `json:"p"`
}

// EncodeItems is the session metadata form of items: product id, quantity,
// size and the price charged.
func EncodeItems(items []Item) (string, error) {
	meta := make([]metaItem, len(items))
	for i, it := range items {
		meta[i] = metaItem{ProductID: it.ProductID, Quantity: it.Quantity, Size: it.Size, Price: it.Price}
	}
	b, err := json.Marshal(meta)
	if err != nil {
		return "", err
	}
	if len(b) > MaxMetadataValue {
		return "", fmt.Errorf("%d cart lines do not fit in %d characters of session metadata", len(items), MaxMetadataValue)
	}
	return string(b), nil
}

// DecodeItems parses the metadata written by EncodeItems and fills names and
// images from products. products may be nil.
func DecodeItems(products Products, raw string) ([]Item, error) {
	var meta []metaItem
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		return nil, err
	}
	if meta == nil {
		return nil, nil
	}
	items := make([]Item, len(meta))
	for i, m := range meta {
		items[i] = Item{ProductID: m.ProductID, Quantity: m.Quantity, Size: m.Size, Price: m.Price}
		if products == nil {
			continue
		}
		if p, ok := products.GetProduct(m.ProductID); ok {
			items[i].Name, items[i].Image = p.Name, p.Image
		}
	}
	return items, nil
}

func productIDs(items []Item) []string {
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	return ids
}
