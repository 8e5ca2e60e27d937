// Package recorder turns a settled payment session into an order record and
// relays it to the commerce backend.
package recorder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/jcmexdev/sleepwell-storefront/internal/catalog"
	"github.com/jcmexdev/sleepwell-storefront/internal/checkout"
	"github.com/jcmexdev/sleepwell-storefront/internal/coordinator"
	"github.com/jcmexdev/sleepwell-storefront/internal/notify"
	"github.com/jcmexdev/sleepwell-storefront/internal/orders"
)

var (
	ErrMissingSessionID = errors.New("session id is required")
	ErrRetrieveFailed   = errors.New("error retrieving checkout session")
)

const stepRecordOrder = "record_order"

// settleTimeout bounds one shared settlement. The flight outlives the request
// that started it, so it cannot borrow that request's deadline.
const settleTimeout = 30 * time.Second

type SessionSource interface {
	RetrieveSession(ctx context.Context, id string) (*checkout.SessionDetail, error)
}

type OrderLog interface {
	RecordPaid(ctx context.Context, o orders.Order) (*orders.Order, bool, error)
}

// Summary is what the success page shows about a session.
type Summary struct {
	SessionID       string                 `json:"id"`
	CustomerName    string                 `json:"customerName,omitempty"`
	CustomerEmail   string                 `json:"customerEmail,omitempty"`
	CustomerPhone   string                 `json:"customerPhone,omitempty"`
	Items           []checkout.Item        `json:"items"`
	Amount          decimal.Decimal        `json:"amount"`
	Currency        string                 `json:"currency,omitempty"`
	PaymentStatus   checkout.PaymentStatus `json:"paymentStatus"`
	IsBundle        bool                   `json:"isBundle"`
	ShippingAddress *checkout.Address      `json:"shippingAddress,omitempty"`
}

// Settlement separates the primary result (Summary) from the secondary
// effects. Effects never turn a settlement into an error.
type Settlement struct {
	Summary Summary
	// Order is nil unless the session was paid and the order log accepted it.
	Order *orders.Order
	// First is true only for the call that created Order.
	First   bool
	Effects coordinator.Outcomes
}

type Recorder struct {
	sessions  SessionSource
	products  checkout.Products
	orders    OrderLog
	forwarder coordinator.OrderForwarder
	group     singleflight.Group
	timeout   time.Duration
}

// New builds a Recorder. products names the items read back from session
// metadata.
func New(sessions SessionSource, products checkout.Products, orders OrderLog, forwarder coordinator.OrderForwarder) *Recorder {
	return &Recorder{
		sessions:  sessions,
		products:  products,
		orders:    orders,
		forwarder: forwarder,
		timeout:   settleTimeout,
	}
}

// Settle reads sessionID back from the gateway. A paid session is recorded
// once and forwarded to the commerce backend on its first settlement.
// Concurrent calls for the same session share one execution.
func (r *Recorder) Settle(ctx context.Context, sessionID string) (*Settlement, error) {
	if sessionID == "" {
		return nil, ErrMissingSessionID
	}

	v, err, shared := r.group.Do(sessionID, func() (any, error) {
		// Callers sharing the flight must not inherit the first caller's cancellation.
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
		defer cancel()
		return r.settle(fctx, sessionID)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		slog.DebugContext(ctx, "settlement shared with a concurrent request", "session_id", sessionID)
	}
	return v.(*Settlement), nil
}

func (r *Recorder) settle(ctx context.Context, sessionID string) (*Settlement, error) {
	detail, err := r.sessions.RetrieveSession(ctx, sessionID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to retrieve checkout session", "session_id", sessionID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrRetrieveFailed, err)
	}

	s := &Settlement{Summary: r.summarize(ctx, detail)}
	if !detail.Paid() {
		return s, nil
	}

	order, created, err := r.orders.RecordPaid(ctx, toOrder(s.Summary))
	if err != nil {
		slog.ErrorContext(ctx, "failed to record paid order", "session_id", sessionID, "error", err)
		s.Effects = append(s.Effects, coordinator.Outcome{Step: stepRecordOrder, Error: err.Error()})
	} else {
		s.Order, s.First = order, created
		s.Effects = append(s.Effects, coordinator.Outcome{Step: stepRecordOrder, OK: true})
	}

	// A repeat settlement was already forwarded. When recording failed we
	// still forward: the payment went through and the store must see it.
	if s.First || err != nil {
		forward := coordinator.NewForwardOrderStep(r.forwarder, ForwardRequest(s.Summary))
		s.Effects = append(s.Effects, coordinator.New(forward).Run(ctx)...)
	}
	return s, nil
}

func (r *Recorder) summarize(ctx context.Context, d *checkout.SessionDetail) Summary {
	s := Summary{
		SessionID:     d.ID,
		Amount:        catalog.FromMinorUnits(d.AmountTotal),
		Currency:      d.Currency,
		PaymentStatus: d.PaymentStatus,
		IsBundle:      d.Metadata[checkout.MetadataIsBundle] == "true",
		Items:         []checkout.Item{},
	}
	if c := d.Customer; c != nil {
		s.CustomerName, s.CustomerEmail, s.CustomerPhone = c.Name, c.Email, c.Phone
		s.ShippingAddress = c.Address
	}

	if raw := d.Metadata[checkout.MetadataCartItems]; raw != "" {
		items, err := checkout.DecodeItems(r.products, raw)
		if err != nil {
			slog.WarnContext(ctx, "unreadable cart metadata, continuing without items", "session_id", d.ID, "error", err)
		} else if items != nil {
			s.Items = items
		}
	}
	return s
}

func toOrder(s Summary) orders.Order {
	o := orders.Order{
		SessionID: s.SessionID,
		Total:     s.Amount,
		Customer:  orders.Customer{Name: s.CustomerName, Email: s.CustomerEmail, Phone: s.CustomerPhone},
		Items:     make([]orders.Item, 0, len(s.Items)),
	}
	for _, it := range s.Items {
		o.Items = append(o.Items, orders.Item{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price,
			Quantity:  it.Quantity,
			Size:      it.Size,
		})
	}
	if a := s.ShippingAddress; a != nil {
		o.Customer.Address = &orders.Address{
			Line1: a.Line1, Line2: a.Line2, City: a.City, State: a.State, PostalCode: a.PostalCode, Country: a.Country,
		}
	}
	return o
}

// Confirmation is the email content for s.
func (s *Settlement) Confirmation() notify.OrderConfirmation {
	number := s.Summary.SessionID
	if s.Order != nil {
		number = s.Order.ID
	}
	c := notify.OrderConfirmation{
		OrderNumber:   number,
		CustomerName:  s.Summary.CustomerName,
		CustomerEmail: s.Summary.CustomerEmail,
		Total:         s.Summary.Amount,
	}
	for _, it := range s.Summary.Items {
		c.Items = append(c.Items, notify.Line{Name: it.Name, Quantity: it.Quantity, Price: it.Price})
	}
	if a := s.Summary.ShippingAddress; a != nil {
		c.ShippingAddress = &notify.Address{
			Line1: a.Line1, Line2: a.Line2, City: a.City, State: a.State, PostalCode: a.PostalCode, Country: a.Country,
		}
	}
	return c
}
