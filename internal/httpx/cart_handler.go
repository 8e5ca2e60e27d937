package httpx

import (
	"fmt"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"

	"github.com/jcmexdev/sleepwell-storefront/internal/catalog"
	"github.com/jcmexdev/sleepwell-storefront/internal/checkout"
	"github.com/jcmexdev/sleepwell-storefront/internal/httpx/middlewares"
)

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	sid := middlewares.CartSessionID(r.Context())
	writeJSON(w, http.StatusOK, mapCart(sid, h.carts.Open(r.Context(), sid), h.catalog))
}

func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var req CartItemRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(r.Context(), w, err)
		return
	}

	p, ok := h.catalog.GetProduct(req.ProductID)
	if !ok {
		respondError(r.Context(), w, fmt.Errorf("%w: unknown product %q", errBadRequest, req.ProductID))
		return
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}
	if qty < 1 {
		respondError(r.Context(), w, fmt.Errorf("%w: quantity must be at least 1", errBadRequest))
		return
	}
	if err := checkSize(p, req.Size); err != nil {
		respondError(r.Context(), w, err)
		return
	}

	sid := middlewares.CartSessionID(r.Context())
	store := h.carts.Open(r.Context(), sid)
	store.AddItem(r.Context(), p.ID, qty, req.Size)
	writeJSON(w, http.StatusOK, mapCart(sid, store, h.catalog))
}

func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")

	var req CartItemPatch
	if err := decodeJSON(r, &req); err != nil {
		respondError(r.Context(), w, err)
		return
	}
	if req.Quantity == nil && req.Size == nil {
		respondError(r.Context(), w, fmt.Errorf("%w: quantity or size is required", errBadRequest))
		return
	}
	if req.Quantity != nil && *req.Quantity < 1 {
		respondError(r.Context(), w, fmt.Errorf("%w: quantity must be at least 1", errBadRequest))
		return
	}

	sid := middlewares.CartSessionID(r.Context())
	store := h.carts.Open(r.Context(), sid)
	if !slices.Contains(store.ProductIDs(), productID) {
		writeError(w, http.StatusNotFound, "item_not_in_cart", productID)
		return
	}

	if req.Size != nil {
		p, ok := h.catalog.GetProduct(productID)
		if !ok {
			respondError(r.Context(), w, fmt.Errorf("%w: unknown product %q", errBadRequest, productID))
			return
		}
		if err := checkSize(p, *req.Size); err != nil {
			respondError(r.Context(), w, err)
			return
		}
		store.UpdateSize(r.Context(), productID, *req.Size)
	}
	if req.Quantity != nil {
		store.UpdateQuantity(r.Context(), productID, *req.Quantity)
	}
	writeJSON(w, http.StatusOK, mapCart(sid, store, h.catalog))
}

func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	sid := middlewares.CartSessionID(r.Context())
	store := h.carts.Open(r.Context(), sid)
	store.RemoveItem(r.Context(), chi.URLParam(r, "productId"))
	writeJSON(w, http.StatusOK, mapCart(sid, store, h.catalog))
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	sid := middlewares.CartSessionID(r.Context())
	store := h.carts.Open(r.Context(), sid)
	store.ClearCart(r.Context())
	writeJSON(w, http.StatusOK, mapCart(sid, store, h.catalog))
}

// CheckoutCart starts checkout from the stored cart of the session.
func (h *Handler) CheckoutCart(w http.ResponseWriter, r *http.Request) {
	var req CartCheckoutRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		respondError(r.Context(), w, err)
		return
	}

	store := h.carts.Open(r.Context(), middlewares.CartSessionID(r.Context()))
	items, err := checkout.Resolve(h.catalog, store.Lines())
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	h.startCheckout(w, r, items, req.CustomerEmail)
}

func checkSize(p catalog.Product, size catalog.Size) error {
	if p.HasSizes() && size == "" {
		return fmt.Errorf("%w: size is required for %q", errBadRequest, p.ID)
	}
	if !p.AllowsSize(size) {
		return fmt.Errorf("%w: size %q is not available for %q", errBadRequest, size, p.ID)
	}
	return nil
}
