package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jcmexdev/sleepwell-storefront/internal/checkout"
	"github.com/jcmexdev/sleepwell-storefront/internal/orders"
	"github.com/jcmexdev/sleepwell-storefront/internal/recorder"
)

// errBadRequest tags client input problems found in this package.
var errBadRequest = errors.New("bad request")

// statusFor is the single place domain errors become HTTP statuses.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, checkout.ErrInvalidCart):
		return http.StatusBadRequest, "invalid_cart"
	case errors.Is(err, recorder.ErrMissingSessionID):
		return http.StatusBadRequest, "session_id_required"
	case errors.Is(err, orders.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, checkout.ErrCheckoutFailed):
		return http.StatusInternalServerError, "checkout_failed"
	case errors.Is(err, recorder.ErrRetrieveFailed):
		return http.StatusInternalServerError, "session_retrieve_failed"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// respondError writes err. Server-side failures are logged and answered with
// a generic message; client errors echo the error text.
func respondError(ctx context.Context, w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(ctx, "request failed", "code", code, "error", err)
		msg = genericMessage(err)
	}
	writeError(w, status, code, msg)
}

func genericMessage(err error) string {
	for _, sentinel := range []error{checkout.ErrCheckoutFailed, recorder.ErrRetrieveFailed} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return "internal server error"
}
