package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

type Service struct {
	log Log
	now func() time.Time
}

func NewService(log Log) *Service {
	return &Service{log: log, now: time.Now}
}

// Create stamps o with a fresh id, the current UTC time and the pending
// status, then appends it. Session ids belong to settled payments, so a
// manually created order never carries one.
func (s *Service) Create(ctx context.Context, o Order) (*Order, error) {
	o.ID = uuid.NewString()
	o.SessionID = ""
	o.ConfirmationSentAt = nil
	o.Status = StatusPending
	o.CreatedAt = s.now().UTC()
	o.TraceID = traceID(ctx)
	if o.Items == nil {
		o.Items = []Item{}
	}

	if err := s.log.Append(ctx, &o); err != nil {
		return nil, fmt.Errorf("orders: create: %w", err)
	}
	slog.InfoContext(ctx, "order created", "order_id", o.ID)
	return &o, nil
}

func (s *Service) List(ctx context.Context) ([]Order, error) {
	list, err := s.log.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("orders: list: %w", err)
	}
	return list, nil
}

// RecordPaid appends a paid order for a settled session unless one is already
// logged. created is false when the existing record was returned.
func (s *Service) RecordPaid(ctx context.Context, o Order) (rec *Order, created bool, err error) {
	if o.SessionID == "" {
		return nil, false, fmt.Errorf("orders: record paid: empty session id")
	}

	existing, err := s.log.FindBySession(ctx, o.SessionID)
	switch {
	case err == nil:
		return existing, false, nil
	case !errors.Is(err, ErrNotFound):
		return nil, false, fmt.Errorf("orders: lookup session %q: %w", o.SessionID, err)
	}

	o.ID = uuid.NewString()
	o.Status = StatusPaid
	o.CreatedAt = s.now().UTC()
	o.TraceID = traceID(ctx)
	if o.Items == nil {
		o.Items = []Item{}
	}
	if err := s.log.Append(ctx, &o); err != nil {
		return nil, false, fmt.Errorf("orders: record paid: %w", err)
	}
	slog.InfoContext(ctx, "paid order recorded", "order_id", o.ID, "session_id", o.SessionID)
	return &o, true, nil
}

// ClaimConfirmation reserves the confirmation email of order id. It reports
// false when the email was already claimed by an earlier call.
func (s *Service) ClaimConfirmation(ctx context.Context, id string) (bool, error) {
	claimed, err := s.log.ClaimConfirmation(ctx, id, s.now().UTC())
	if err != nil {
		return false, fmt.Errorf("orders: claim confirmation of %q: %w", id, err)
	}
	return claimed, nil
}

// ReleaseConfirmation gives back a claim whose email was not delivered.
func (s *Service) ReleaseConfirmation(ctx context.Context, id string) error {
	if err := s.log.ReleaseConfirmation(ctx, id); err != nil {
		return fmt.Errorf("orders: release confirmation of %q: %w", id, err)
	}
	return nil
}

func traceID(ctx context.Context) string {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return ""
	}
	return sc.TraceID().String()
}
