package httpx

import (
	"net/http"
)

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	list, err := h.orders.List(r.Context())
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	out := make([]OrderResponse, len(list))
	for i, o := range list {
		out[i] = mapOrder(o)
	}
	writeJSON(w, http.StatusOK, OrdersResponse{Orders: out})
}

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(r.Context(), w, err)
		return
	}

	o, err := h.orders.Create(r.Context(), req.toOrder())
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusCreated, CreateOrderResponse{Success: true, Order: mapOrder(*o)})
}
