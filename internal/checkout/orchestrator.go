package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jcmexdev/sleepwell-storefront/internal/catalog"
)

const (
	MetadataCartItems = "cartItems"
	MetadataIsBundle  = "isBundle"

	// SessionIDPlaceholder is substituted by the gateway on redirect.
	SessionIDPlaceholder = "{CHECKOUT_SESSION_ID}"
)

// Pricing is the catalog surface the orchestrator depends on.
type Pricing interface {
	IsFullBundle(productIDs []string) bool
	BundleDiscount() decimal.Decimal
}

type Config struct {
	BaseURL           string
	Currency          string
	ShippingCountries []string
}

// Result is what the caller needs to redirect the shopper.
type Result struct {
	SessionID string
	URL       string
	Bundle    bool
	CouponID  string
}

type Orchestrator struct {
	gateway Gateway
	pricing Pricing
	cfg     Config
	now     func() time.Time
}

func NewOrchestrator(gateway Gateway, pricing Pricing, cfg Config) *Orchestrator {
	if cfg.Currency == "" {
		cfg.Currency = "usd"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Orchestrator{gateway: gateway, pricing: pricing, cfg: cfg, now: time.Now}
}

// Create opens a payment session for items. Full bundles get a one-time
// fixed-amount coupon worth the bundle discount.
func (o *Orchestrator) Create(ctx context.Context, items []Item, customerEmail string) (*Result, error) {
	if len(items) == 0 {
		return nil, ErrInvalidCart
	}
	for _, it := range items {
		if it.Quantity < 1 {
			return nil, fmt.Errorf("%w: quantity for %q must be at least 1", ErrInvalidCart, it.ProductID)
		}
	}

	bundle := o.pricing.IsFullBundle(productIDs(items))

	req, err := o.sessionRequest(items, customerEmail, bundle)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCheckoutFailed, err)
	}

	if bundle {
		discount := catalog.MinorUnits(o.pricing.BundleDiscount())
		if discount > 0 {
			couponID, err := o.gateway.CreateCoupon(ctx, Coupon{
				ID:             o.couponID(),
				Name:           "Sleep Bundle Discount",
				AmountOff:      discount,
				Currency:       o.cfg.Currency,
				MaxRedemptions: 1,
			})
			if err != nil {
				slog.ErrorContext(ctx, "failed to create bundle coupon", "error", err)
				return nil, fmt.Errorf("%w: %v", ErrCheckoutFailed, err)
			}
			req.CouponID = couponID
		}
	}

	sess, err := o.gateway.CreateSession(ctx, req)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create checkout session", "error", err, "bundle", bundle)
		return nil, fmt.Errorf("%w: %v", ErrCheckoutFailed, err)
	}

	slog.InfoContext(ctx, "checkout session created",
		"session_id", sess.ID,
		"items", len(items),
		"bundle", bundle,
		"coupon_id", req.CouponID,
	)

	return &Result{SessionID: sess.ID, URL: sess.URL, Bundle: bundle, CouponID: req.CouponID}, nil
}

func (o *Orchestrator) sessionRequest(items []Item, customerEmail string, bundle bool) (SessionRequest, error) {
	encoded, err := EncodeItems(items)
	if err != nil {
		return SessionRequest{}, err
	}
	return SessionRequest{
		LineItems:         LineItems(items, o.cfg.BaseURL),
		Currency:          o.cfg.Currency,
		SuccessURL:        o.cfg.BaseURL + "/success?session_id=" + SessionIDPlaceholder,
		CancelURL:         o.cfg.BaseURL + "/cancel",
		CustomerEmail:     customerEmail,
		ShippingCountries: o.cfg.ShippingCountries,
		Metadata: map[string]string{
			MetadataCartItems: encoded,
			MetadataIsBundle:  strconv.FormatBool(bundle),
		},
	}, nil
}

func (o *Orchestrator) couponID() string {
	return fmt.Sprintf("BUNDLE-%d-%s", o.now().UnixMilli(), uuid.NewString()[:8])
}

// LineItems maps each item to one gateway line item. Lines for the same
// product in different sizes stay separate.
func LineItems(items []Item, baseURL string) []LineItem {
	out := make([]LineItem, 0, len(items))
	for _, it := range items {
		li := LineItem{
			Name:       it.Name,
			UnitAmount: catalog.MinorUnits(it.Price),
			Quantity:   int64(it.Quantity),
		}
		if li.Name == "" {
			li.Name = "Product ID: " + it.ProductID
		}
		if it.Size != "" {
			li.Description = "Size: " + string(it.Size)
		}
		if it.Image != "" {
			li.ImageURLs = []string{absoluteURL(baseURL, it.Image)}
		}
		out = append(out, li)
	}
	return out
}

func absoluteURL(baseURL, path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(path, "/")
}
