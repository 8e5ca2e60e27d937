package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) ListProducts(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"products": mapProducts(h.catalog.ListProducts())})
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, ok := h.catalog.GetProduct(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "product_not_found", "")
		return
	}
	writeJSON(w, http.StatusOK, mapProduct(p))
}

func (h *Handler) GetBundle(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, mapQuote(h.catalog.CompleteBundle()))
}

func (h *Handler) ListBundles(w http.ResponseWriter, _ *http.Request) {
	quotes := h.catalog.Offers()
	out := make([]BundleResponse, len(quotes))
	for i, q := range quotes {
		out[i] = mapQuote(q)
	}
	writeJSON(w, http.StatusOK, map[string]any{"bundles": out})
}
