// Package stripegw adapts the stripe-go client to checkout.Gateway.
package stripegw

import (
	"context"
	"errors"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"github.com/jcmexdev/sleepwell-storefront/internal/checkout"
)

// ErrNotConfigured is returned by every call when no secret key was given.
var ErrNotConfigured = errors.New("stripe secret key is not configured")

type Gateway struct {
	api *client.API
}

// New returns a gateway for secretKey. An empty key yields a gateway whose
// calls fail with ErrNotConfigured, so the rest of the process keeps serving.
func New(secretKey string) *Gateway {
	if secretKey == "" {
		return &Gateway{}
	}
	return &Gateway{api: client.New(secretKey, nil)}
}

func (g *Gateway) CreateCoupon(ctx context.Context, c checkout.Coupon) (string, error) {
	if g.api == nil {
		return "", ErrNotConfigured
	}
	params := couponParams(c)
	params.Context = ctx
	coupon, err := g.api.Coupons.New(params)
	if err != nil {
		return "", err
	}
	return coupon.ID, nil
}

func (g *Gateway) CreateSession(ctx context.Context, req checkout.SessionRequest) (*checkout.Session, error) {
	if g.api == nil {
		return nil, ErrNotConfigured
	}
	params := sessionParams(req)
	params.Context = ctx
	s, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, err
	}
	return &checkout.Session{ID: s.ID, URL: s.URL}, nil
}

func (g *Gateway) RetrieveSession(ctx context.Context, id string) (*checkout.SessionDetail, error) {
	if g.api == nil {
		return nil, ErrNotConfigured
	}
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	params.AddExpand("line_items")
	s, err := g.api.CheckoutSessions.Get(id, params)
	if err != nil {
		return nil, err
	}
	return toDetail(s), nil
}

func couponParams(c checkout.Coupon) *stripe.CouponParams {
	return &stripe.CouponParams{
		ID:             stripe.String(c.ID),
		Name:           stripe.String(c.Name),
		AmountOff:      stripe.Int64(c.AmountOff),
		Currency:       stripe.String(c.Currency),
		Duration:       stripe.String(string(stripe.CouponDurationOnce)),
		MaxRedemptions: stripe.Int64(c.MaxRedemptions),
	}
}

func sessionParams(req checkout.SessionRequest) *stripe.CheckoutSessionParams {
	params := &stripe.CheckoutSessionParams{
		Mode:                     stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes:       stripe.StringSlice([]string{"card"}),
		SuccessURL:               stripe.String(req.SuccessURL),
		CancelURL:                stripe.String(req.CancelURL),
		BillingAddressCollection: stripe.String(string(stripe.CheckoutSessionBillingAddressCollectionRequired)),
		PhoneNumberCollection: &stripe.CheckoutSessionPhoneNumberCollectionParams{
			Enabled: stripe.Bool(true),
		},
	}

	for _, li := range req.LineItems {
		product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(li.Name),
		}
		if li.Description != "" {
			product.Description = stripe.String(li.Description)
		}
		if len(li.ImageURLs) > 0 {
			product.Images = stripe.StringSlice(li.ImageURLs)
		}
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(req.Currency),
				ProductData: product,
				UnitAmount:  stripe.Int64(li.UnitAmount),
			},
			Quantity: stripe.Int64(li.Quantity),
		})
	}

	if req.CouponID != "" {
		params.Discounts = []*stripe.CheckoutSessionDiscountParams{
			{Coupon: stripe.String(req.CouponID)},
		}
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	if len(req.ShippingCountries) > 0 {
		params.ShippingAddressCollection = &stripe.CheckoutSessionShippingAddressCollectionParams{
			AllowedCountries: stripe.StringSlice(req.ShippingCountries),
		}
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	return params
}

func toDetail(s *stripe.CheckoutSession) *checkout.SessionDetail {
	d := &checkout.SessionDetail{
		ID:            s.ID,
		Status:        checkout.SessionStatus(s.Status),
		PaymentStatus: checkout.PaymentStatus(s.PaymentStatus),
		AmountTotal:   s.AmountTotal,
		Currency:      string(s.Currency),
		Metadata:      s.Metadata,
	}
	if cd := s.CustomerDetails; cd != nil {
		d.Customer = &checkout.Customer{Name: cd.Name, Email: cd.Email, Phone: cd.Phone}
		if a := cd.Address; a != nil {
			d.Customer.Address = &checkout.Address{
				Line1:      a.Line1,
				Line2:      a.Line2,
				City:       a.City,
				State:      a.State,
				PostalCode: a.PostalCode,
				Country:    a.Country,
			}
		}
	}
	return d
}
