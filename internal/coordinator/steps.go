package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jcmexdev/sleepwell-storefront/internal/commerce"
	"github.com/jcmexdev/sleepwell-storefront/internal/notify"
)

// --- ForwardOrderStep ---

type OrderForwarder interface {
	CreateOrder(ctx context.Context, req commerce.OrderRequest) (*commerce.OrderResponse, error)
}

type ForwardOrderStep struct {
	client  OrderForwarder
	request commerce.OrderRequest
	// RemoteID is set after a successful forward.
	RemoteID int
}

func NewForwardOrderStep(client OrderForwarder, request commerce.OrderRequest) *ForwardOrderStep {
	return &ForwardOrderStep{client: client, request: request}
}

func (s *ForwardOrderStep) Name() string { return "forward_order" }

func (s *ForwardOrderStep) Execute(ctx context.Context) error {
	res, err := s.client.CreateOrder(ctx, s.request)
	if errors.Is(err, commerce.ErrNotConfigured) {
		return fmt.Errorf("%w: %v", ErrSkipped, err)
	}
	if err != nil {
		return fmt.Errorf("failed to forward order: %w", err)
	}
	s.RemoteID = res.ID
	return nil
}

// --- ConfirmationEmailStep ---

type Mailer interface {
	SendOrderConfirmation(ctx context.Context, o notify.OrderConfirmation) error
}

// ConfirmationClaims hands out the right to send an order's confirmation
// email. Only one caller per order can hold it.
type ConfirmationClaims interface {
	ClaimConfirmation(ctx context.Context, orderID string) (bool, error)
	ReleaseConfirmation(ctx context.Context, orderID string) error
}

type ConfirmationEmailStep struct {
	mailer  Mailer
	order   notify.OrderConfirmation
	claims  ConfirmationClaims
	orderID string
}

func NewConfirmationEmailStep(mailer Mailer, order notify.OrderConfirmation) *ConfirmationEmailStep {
	return &ConfirmationEmailStep{mailer: mailer, order: order}
}

// Once limits the step to a single delivered email for orderID, however many
// times and from however many requests it runs.
func (s *ConfirmationEmailStep) Once(claims ConfirmationClaims, orderID string) *ConfirmationEmailStep {
	s.claims, s.orderID = claims, orderID
	return s
}

func (s *ConfirmationEmailStep) Name() string { return "confirmation_email" }

func (s *ConfirmationEmailStep) Execute(ctx context.Context) error {
	if s.order.CustomerEmail == "" {
		return fmt.Errorf("%w: no customer email", ErrSkipped)
	}
	if s.claims != nil {
		claimed, err := s.claims.ClaimConfirmation(ctx, s.orderID)
		if err != nil {
			return fmt.Errorf("failed to reserve confirmation email: %w", err)
		}
		if !claimed {
			return fmt.Errorf("%w: already sent", ErrSkipped)
		}
	}

	err := s.send(ctx)
	if err != nil && s.claims != nil {
		if rerr := s.claims.ReleaseConfirmation(ctx, s.orderID); rerr != nil {
			slog.WarnContext(ctx, "failed to release confirmation claim", "order_id", s.orderID, "error", rerr)
		}
	}
	return err
}

func (s *ConfirmationEmailStep) send(ctx context.Context) error {
	err := s.mailer.SendOrderConfirmation(ctx, s.order)
	if errors.Is(err, notify.ErrNotConfigured) {
		return fmt.Errorf("%w: %v", ErrSkipped, err)
	}
	if err != nil {
		return fmt.Errorf("failed to send confirmation email: %w", err)
	}
	return nil
}

// --- ClearCartStep ---

// CartClearer empties the cart stored under a session id.
type CartClearer interface {
	Clear(ctx context.Context, sessionID string) error
}

type ClearCartStep struct {
	carts     CartClearer
	sessionID string
}

func NewClearCartStep(carts CartClearer, sessionID string) *ClearCartStep {
	return &ClearCartStep{carts: carts, sessionID: sessionID}
}

func (s *ClearCartStep) Name() string { return "clear_cart" }

func (s *ClearCartStep) Execute(ctx context.Context) error {
	if s.sessionID == "" {
		return fmt.Errorf("%w: no cart session", ErrSkipped)
	}
	if err := s.carts.Clear(ctx, s.sessionID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
