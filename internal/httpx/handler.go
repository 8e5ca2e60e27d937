package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/jcmexdev/sleepwell-storefront/internal/cart"
	"github.com/jcmexdev/sleepwell-storefront/internal/catalog"
	"github.com/jcmexdev/sleepwell-storefront/internal/checkout"
	"github.com/jcmexdev/sleepwell-storefront/internal/coordinator"
	"github.com/jcmexdev/sleepwell-storefront/internal/orders"
	"github.com/jcmexdev/sleepwell-storefront/internal/recorder"
)

type CheckoutService interface {
	Create(ctx context.Context, items []checkout.Item, customerEmail string) (*checkout.Result, error)
}

type Settler interface {
	Settle(ctx context.Context, sessionID string) (*recorder.Settlement, error)
}

type OrderService interface {
	Create(ctx context.Context, o orders.Order) (*orders.Order, error)
	List(ctx context.Context) ([]orders.Order, error)
	coordinator.ConfirmationClaims
}

// Handler serves the storefront JSON API.
type Handler struct {
	catalog  *catalog.Catalog
	carts    *cart.Sessions
	checkout CheckoutService
	settler  Settler
	orders   OrderService
	mailer   coordinator.Mailer
}

func NewHandler(
	cat *catalog.Catalog,
	carts *cart.Sessions,
	co CheckoutService,
	settler Settler,
	os OrderService,
	mailer coordinator.Mailer,
) *Handler {
	return &Handler{
		catalog:  cat,
		carts:    carts,
		checkout: co,
		settler:  settler,
		orders:   os,
		mailer:   mailer,
	}
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid json: %v", errBadRequest, err)
	}
	return nil
}

// decodeOptionalJSON accepts an empty body.
func decodeOptionalJSON(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return fmt.Errorf("%w: invalid json: %v", errBadRequest, err)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: msg,
	})
}
