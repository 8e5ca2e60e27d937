package middlewares

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	HeaderCartSession = "X-Cart-Session"
	CookieCartSession = "cart_session"
)

type ctxKeyCartSession struct{}

// CartSessionID returns the cart session attached by CartSession, if any.
func CartSessionID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKeyCartSession{}).(string)
	return id
}

type CartSessionOptions struct {
	// Mint creates a session when the request carries none.
	Mint   bool
	TTL    time.Duration
	Secure bool
}

// CartSession resolves the cart session from the X-Cart-Session header or the
// cart_session cookie, in that order.
func CartSession(opts CartSessionOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(HeaderCartSession)
			if id == "" {
				if c, err := r.Cookie(CookieCartSession); err == nil {
					id = c.Value
				}
			}

			if id == "" && opts.Mint {
				id = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     CookieCartSession,
					Value:    id,
					Path:     "/",
					MaxAge:   int(opts.TTL.Seconds()),
					HttpOnly: true,
					Secure:   opts.Secure,
					SameSite: http.SameSiteLaxMode,
				})
			}
			if id != "" {
				w.Header().Set(HeaderCartSession, id)
			}

			ctx := context.WithValue(r.Context(), ctxKeyCartSession{}, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
