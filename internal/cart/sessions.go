package cart

import "context"

const keyPrefix = "cart:"

// Sessions opens the cart of a browsing session from shared storage.
type Sessions struct {
	storage Storage
	prices  Prices
}

func NewSessions(storage Storage, prices Prices) *Sessions {
	return &Sessions{storage: storage, prices: prices}
}

// Open restores the cart of sessionID. Each call returns an independent
// Store; concurrent writers to the same session are last-write-wins.
func (s *Sessions) Open(ctx context.Context, sessionID string) *Store {
	return Open(ctx, s.storage, Key(sessionID), s.prices)
}

// Key is the storage key of a session's cart.
func Key(sessionID string) string {
	return keyPrefix + sessionID
}

// Clear drops the stored cart of sessionID.
func (s *Sessions) Clear(ctx context.Context, sessionID string) error {
	return s.storage.Delete(ctx, Key(sessionID))
}
