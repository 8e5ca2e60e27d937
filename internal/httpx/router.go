package httpx

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jcmexdev/sleepwell-storefront/internal/httpx/middlewares"
)

type RouterOptions struct {
	ServiceName    string
	RequestTimeout time.Duration
	CartTTL        time.Duration
	SecureCookies  bool
}

func NewRouter(handler *Handler, opts RouterOptions) http.Handler {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(opts.RequestTimeout))

	session := middlewares.CartSessionOptions{TTL: opts.CartTTL, Secure: opts.SecureCookies}
	minted := session
	minted.Mint = true

	r.Get("/health", handler.Health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/products", handler.ListProducts)
		r.Get("/products/{id}", handler.GetProduct)
		r.Get("/bundle", handler.GetBundle)
		r.Get("/bundles", handler.ListBundles)

		r.Route("/cart", func(r chi.Router) {
			r.Use(middlewares.CartSession(minted))
			r.Get("/", handler.GetCart)
			r.Delete("/", handler.ClearCart)
			r.Post("/items", handler.AddCartItem)
			r.Patch("/items/{productId}", handler.UpdateCartItem)
			r.Delete("/items/{productId}", handler.RemoveCartItem)
			r.Post("/checkout", handler.CheckoutCart)
		})

		r.Post("/checkout", handler.CreateCheckout)
		r.Get("/checkout/session", handler.GetSession)
		r.With(middlewares.CartSession(session)).
			Post("/checkout/session/complete", handler.CompleteSession)

		r.Get("/orders", handler.ListOrders)
		r.Post("/orders", handler.CreateOrder)
	})

	name := opts.ServiceName
	if name == "" {
		name = "storefront"
	}
	return otelhttp.NewHandler(r, name)
}
