package httpx

import (
	"net/http"

	"github.com/jcmexdev/sleepwell-storefront/internal/cart"
	"github.com/jcmexdev/sleepwell-storefront/internal/checkout"
	"github.com/jcmexdev/sleepwell-storefront/internal/coordinator"
	"github.com/jcmexdev/sleepwell-storefront/internal/httpx/middlewares"
)

// CreateCheckout opens a payment session for the posted items.
func (h *Handler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(r.Context(), w, err)
		return
	}

	lines := make([]cart.Line, 0, len(req.Items))
	for _, it := range req.Items {
		lines = append(lines, cart.Line{ProductID: it.ProductID, Quantity: it.Quantity, Size: it.Size})
	}
	items, err := checkout.Resolve(h.catalog, lines)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	h.startCheckout(w, r, items, req.CustomerEmail)
}

func (h *Handler) startCheckout(w http.ResponseWriter, r *http.Request, items []checkout.Item, email string) {
	res, err := h.checkout.Create(r.Context(), items, email)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, CheckoutResponse{URL: res.URL, SessionID: res.SessionID})
}

// GetSession returns the summary of a payment session. Retrieving a paid
// session records and forwards its order the first time.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.settler.Settle(r.Context(), r.URL.Query().Get("session_id"))
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSettlement(s))
}

// CompleteSession is the success-page flow: settle, then clear the shopper's
// cart and send the confirmation email. The email goes out once per recorded
// order no matter which request settled it. Effect failures never change the
// status code.
func (h *Handler) CompleteSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.settler.Settle(r.Context(), r.URL.Query().Get("session_id"))
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	effects := append(coordinator.Outcomes{}, s.Effects...)
	if s.Summary.PaymentStatus == checkout.PaymentPaid {
		email := coordinator.NewConfirmationEmailStep(h.mailer, s.Confirmation())
		if s.Order != nil {
			email = email.Once(h.orders, s.Order.ID)
		}
		effects = append(effects, coordinator.New(
			coordinator.NewClearCartStep(h.carts, middlewares.CartSessionID(r.Context())),
			email,
		).Run(r.Context())...)
	}

	writeJSON(w, http.StatusOK, CompleteResponse{Session: mapSettlement(s), Effects: effects})
}
