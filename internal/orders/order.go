// Package orders holds the durable order record and the log it is appended to.
package orders

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/sleepwell-storefront/internal/catalog"
)

var ErrNotFound = errors.New("order not found")

// Status is the lifecycle state of an order.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCanceled  Status = "canceled"
)

var transitions = map[Status][]Status{
	StatusPending: {StatusPaid, StatusCanceled},
	StatusPaid:    {StatusShipped, StatusCanceled},
	StatusShipped: {StatusDelivered},
}

// CanTransition reports whether an order may move from s to next.
// Delivered and canceled are terminal.
func (s Status) CanTransition(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusShipped, StatusDelivered, StatusCanceled:
		return true
	}
	return false
}

// Item is a purchased line with the name and price it was sold at.
type Item struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Size      catalog.Size    `json:"size,omitempty"`
}

type Address struct {
	Line1      string `json:"line1,omitempty"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country,omitempty"`
}

type Customer struct {
	Name    string   `json:"name,omitempty"`
	Email   string   `json:"email,omitempty"`
	Phone   string   `json:"phone,omitempty"`
	Address *Address `json:"address,omitempty"`
}

// Order is one entry of the append-only order log.
type Order struct {
	ID        string          `json:"id"`
	SessionID string          `json:"sessionId,omitempty"`
	Status    Status          `json:"status"`
	Items     []Item          `json:"items"`
	Customer  Customer        `json:"customer"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"createdAt"`
	TraceID   string          `json:"traceId,omitempty"`
	// ConfirmationSentAt is set once the confirmation email has been claimed
	// for sending.
	ConfirmationSentAt *time.Time `json:"confirmationSentAt,omitempty"`
	// Extra holds caller-supplied fields the order model does not name.
	Extra map[string]json.RawMessage `json:"extra,omitempty"`
}

// Log is the port for order persistence. Appends are never upserts; the
// confirmation marker is the only field written after an append.
type Log interface {
	Append(ctx context.Context, o *Order) error
	List(ctx context.Context) ([]Order, error)
	// FindBySession returns ErrNotFound when no order carries sessionID.
	FindBySession(ctx context.Context, sessionID string) (*Order, error)
	// ClaimConfirmation sets ConfirmationSentAt of order id to at unless it is
	// already set. claimed is false when an earlier claim holds.
	ClaimConfirmation(ctx context.Context, id string, at time.Time) (claimed bool, err error)
	// ReleaseConfirmation clears the marker so a later attempt can claim it.
	ReleaseConfirmation(ctx context.Context, id string) error
}
