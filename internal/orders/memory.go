package orders

import (
	"context"
	"sync"
	"time"
)

// MemoryLog keeps orders in process memory.
type MemoryLog struct {
	mu     sync.Mutex
	orders []Order
}

func NewMemoryLog() *MemoryLog {
	return &MemoryLog{}
}

func (m *MemoryLog) Append(_ context.Context, o *Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders = append(m.orders, *o)
	return nil
}

func (m *MemoryLog) List(_ context.Context) ([]Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Order, len(m.orders))
	copy(out, m.orders)
	return out, nil
}

func (m *MemoryLog) FindBySession(_ context.Context, sessionID string) (*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.orders {
		if m.orders[i].SessionID == sessionID {
			o := m.orders[i]
			return &o, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryLog) ClaimConfirmation(_ context.Context, id string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o := m.find(id)
	if o == nil {
		return false, ErrNotFound
	}
	if o.ConfirmationSentAt != nil {
		return false, nil
	}
	o.ConfirmationSentAt = &at
	return true, nil
}

func (m *MemoryLog) ReleaseConfirmation(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o := m.find(id)
	if o == nil {
		return ErrNotFound
	}
	o.ConfirmationSentAt = nil
	return nil
}

func (m *MemoryLog) find(id string) *Order {
	for i := range m.orders {
		if m.orders[i].ID == id {
			return &m.orders[i]
		}
	}
	return nil
}
