package checkout

import "errors"

var (
	// ErrInvalidCart covers empty carts, unknown products and bad quantities.
	ErrInvalidCart = errors.New("invalid cart items")
	// ErrCheckoutFailed is returned for every gateway-side failure.
	ErrCheckoutFailed = errors.New("error creating checkout session")
)
