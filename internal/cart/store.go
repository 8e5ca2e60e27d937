// Package cart implements the shopping cart of one browsing session. A Store
// owns its lines, recomputes count and subtotal on every mutation and writes
// the full line list to a Storage after each change.
package cart

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/sleepwell-storefront/internal/catalog"
)

// Line is one (product, size) entry of a cart. Quantity is always >= 1.
type Line struct {
	ProductID string       `json:"productId"`
	Quantity  int          `json:"quantity"`
	Size      catalog.Size `json:"size,omitempty"`
}

// Prices resolves product ids to catalog entries. *catalog.Catalog satisfies it.
type Prices interface {
	GetProduct(id string) (catalog.Product, bool)
}

type Store struct {
	mu      sync.RWMutex
	storage Storage
	key     string
	prices  Prices

	lines    []Line
	count    int
	subtotal decimal.Decimal
}

// Open restores the cart stored under key. A storage error or an unreadable
// payload is logged and yields an empty cart.
func Open(ctx context.Context, storage Storage, key string, prices Prices) *Store {
	s := &Store{
		storage: storage,
		key:     key,
		prices:  prices,
		lines:   []Line{},
	}
	s.restore(ctx)
	s.recompute()
	return s
}

func (s *Store) restore(ctx context.Context) {
	data, err := s.storage.Load(ctx, s.key)
	if err != nil {
		slog.WarnContext(ctx, "cart restore failed, starting empty", "key", s.key, "error", err)
		return
	}
	if len(data) == 0 {
		return
	}
	var lines []Line
	if err := json.Unmarshal(data, &lines); err != nil {
		slog.WarnContext(ctx, "failed to parse stored cart, starting empty", "key", s.key, "error", err)
		return
	}
	for _, l := range lines {
		if l.ProductID == "" || l.Quantity < 1 {
			continue
		}
		s.lines = append(s.lines, l)
	}
}

// AddItem increments the line matching (productID, size) or appends a new
// one. Size validation belongs to the caller; a non-positive quantity is
// ignored.
func (s *Store) AddItem(ctx context.Context, productID string, quantity int, size catalog.Size) {
	if quantity < 1 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.lines {
		if s.lines[i].ProductID == productID && s.lines[i].Size == size {
			s.lines[i].Quantity += quantity
			s.commit(ctx)
			return
		}
	}
	s.lines = append(s.lines, Line{ProductID: productID, Quantity: quantity, Size: size})
	s.commit(ctx)
}

// RemoveItem drops every line of productID whatever its size.
func (s *Store) RemoveItem(ctx context.Context, productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.lines[:0]
	for _, l := range s.lines {
		if l.ProductID != productID {
			kept = append(kept, l)
		}
	}
	if len(kept) == len(s.lines) {
		return
	}
	s.lines = kept
	s.commit(ctx)
}

// UpdateQuantity sets quantity on every line of productID. Values below 1
// leave the cart untouched.
func (s *Store) UpdateQuantity(ctx context.Context, productID string, quantity int) {
	if quantity < 1 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			s.lines[i].Quantity = quantity
			changed = true
		}
	}
	if changed {
		s.commit(ctx)
	}
}

// UpdateSize moves every line of productID to size. Lines that end up with the
// same (product, size) pair are merged into the first one, quantities summed,
// so the one-line-per-pair rule of AddItem keeps holding.
func (s *Store) UpdateSize(ctx context.Context, productID string, size catalog.Size) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			s.lines[i].Size = size
			changed = true
		}
	}
	if !changed {
		return
	}
	s.lines = mergeLines(s.lines)
	s.commit(ctx)
}

// ClearCart empties the cart.
func (s *Store) ClearCart(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = []Line{}
	s.commit(ctx)
}

// Lines returns a copy of the cart lines in insertion order.
func (s *Store) Lines() []Line {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Line{}, s.lines...)
}

// ProductIDs lists the product id of every line, duplicates included.
func (s *Store) ProductIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.lines))
	for _, l := range s.lines {
		ids = append(ids, l.ProductID)
	}
	return ids
}

// Count is the sum of line quantities.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count
}

// Subtotal is the sum of quantity x catalog price over all lines. Lines whose
// product is no longer in the catalog contribute nothing.
func (s *Store) Subtotal() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.subtotal
}

// commit recomputes derived values and persists. Must hold s.mu.
func (s *Store) commit(ctx context.Context) {
	s.recompute()

	data, err := json.Marshal(s.lines)
	if err != nil {
		slog.ErrorContext(ctx, "failed to encode cart", "key", s.key, "error", err)
		return
	}
	if err := s.storage.Save(ctx, s.key, data); err != nil {
		slog.WarnContext(ctx, "failed to persist cart", "key", s.key, "error", err)
	}
}

func (s *Store) recompute() {
	count := 0
	subtotal := decimal.Zero
	for _, l := range s.lines {
		count += l.Quantity
		if p, ok := s.prices.GetProduct(l.ProductID); ok {
			subtotal = subtotal.Add(p.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
		}
	}
	s.count = count
	s.subtotal = subtotal.Round(2)
}

func mergeLines(lines []Line) []Line {
	type pair struct {
		id   string
		size catalog.Size
	}
	at := make(map[pair]int, len(lines))
	out := make([]Line, 0, len(lines))
	for _, l := range lines {
		k := pair{l.ProductID, l.Size}
		if i, ok := at[k]; ok {
			out[i].Quantity += l.Quantity
			continue
		}
		at[k] = len(out)
		out = append(out, l)
	}
	return out
}
