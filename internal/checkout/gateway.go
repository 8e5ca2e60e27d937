package checkout

import "context"

// Gateway is the port to the hosted payment processor. The storefront never
// owns session state; it only creates and reads it through this interface.
type Gateway interface {
	// CreateCoupon registers a single-use, fixed-amount discount and returns
	// its id.
	CreateCoupon(ctx context.Context, c Coupon) (string, error)
	CreateSession(ctx context.Context, req SessionRequest) (*Session, error)
	RetrieveSession(ctx context.Context, id string) (*SessionDetail, error)
}

// LineItem is a dynamically priced entry of a payment session.
type LineItem struct {
	Name        string
	Description string
	ImageURLs   []string
	UnitAmount  int64 // minor units
	Quantity    int64
}

// Coupon is always an amount off, never a percentage, redeemable once.
type Coupon struct {
	ID             string
	Name           string
	AmountOff      int64 // minor units
	Currency       string
	MaxRedemptions int64
}

type SessionRequest struct {
	LineItems         []LineItem
	CouponID          string
	Currency          string
	SuccessURL        string
	CancelURL         string
	CustomerEmail     string
	ShippingCountries []string
	Metadata          map[string]string
}

type Session struct {
	ID  string
	URL string
}

type SessionStatus string

const (
	SessionOpen     SessionStatus = "open"
	SessionComplete SessionStatus = "complete"
	SessionExpired  SessionStatus = "expired"
)

type PaymentStatus string

const (
	PaymentPaid              PaymentStatus = "paid"
	PaymentUnpaid            PaymentStatus = "unpaid"
	PaymentNoPaymentRequired PaymentStatus = "no_payment_required"
)

type Address struct {
	Line1      string
	Line2      string
	City       string
	State      string
	PostalCode string
	Country    string
}

type Customer struct {
	Name    string
	Email   string
	Phone   string
	Address *Address
}

// SessionDetail is a session as read back from the gateway.
type SessionDetail struct {
	ID            string
	Status        SessionStatus
	PaymentStatus PaymentStatus
	AmountTotal   int64 // minor units
	Currency      string
	Customer      *Customer
	Metadata      map[string]string
}

// Paid reports whether the payment settled.
func (d *SessionDetail) Paid() bool {
	return d.PaymentStatus == PaymentPaid
}
