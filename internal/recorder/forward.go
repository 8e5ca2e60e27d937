package recorder

import (
	"strconv"
	"strings"

	"github.com/jcmexdev/sleepwell-storefront/internal/commerce"
)

const sessionMetaKey = "stripe_session_id"

// ForwardRequest normalizes a settled session into a commerce order.
func ForwardRequest(s Summary) commerce.OrderRequest {
	first, last := SplitName(s.CustomerName)

	billing := commerce.Address{
		FirstName: first,
		LastName:  last,
		Email:     s.CustomerEmail,
		Phone:     s.CustomerPhone,
	}
	var shipping *commerce.Address
	if a := s.ShippingAddress; a != nil {
		billing.Address1, billing.Address2 = a.Line1, a.Line2
		billing.City, billing.State = a.City, a.State
		billing.Postcode, billing.Country = a.PostalCode, a.Country

		shipping = &commerce.Address{
			FirstName: first,
			LastName:  last,
			Address1:  a.Line1,
			Address2:  a.Line2,
			City:      a.City,
			State:     a.State,
			Postcode:  a.PostalCode,
			Country:   a.Country,
		}
	}

	lines := make([]commerce.LineItem, 0, len(s.Items))
	for _, it := range s.Items {
		lines = append(lines, commerce.LineItem{ProductID: NumericProductID(it.ProductID), Quantity: it.Quantity})
	}

	return commerce.OrderRequest{
		PaymentMethod:      "stripe",
		PaymentMethodTitle: "Stripe",
		SetPaid:            true,
		CustomerID:         0,
		Billing:            billing,
		Shipping:           shipping,
		LineItems:          lines,
		MetaData:           []commerce.MetaData{{Key: sessionMetaKey, Value: s.SessionID}},
	}
}

// SplitName takes the first token as the first name and joins the rest.
func SplitName(full string) (first, last string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

// NumericProductID keeps only the digits of id, or 0 when none remain.
func NumericProductID(id string) int {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, id)
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return n
}
