package httpx

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/sleepwell-storefront/internal/cart"
	"github.com/jcmexdev/sleepwell-storefront/internal/catalog"
	"github.com/jcmexdev/sleepwell-storefront/internal/checkout"
	"github.com/jcmexdev/sleepwell-storefront/internal/coordinator"
	"github.com/jcmexdev/sleepwell-storefront/internal/orders"
	"github.com/jcmexdev/sleepwell-storefront/internal/recorder"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// --- catalog ---

type ProductResponse struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Price       float64        `json:"price"`
	Image       string         `json:"image"`
	Sizes       []catalog.Size `json:"sizes,omitempty"`
}

type BundleResponse struct {
	Key          string            `json:"key"`
	Name         string            `json:"name"`
	Products     []ProductResponse `json:"products"`
	RegularTotal float64           `json:"regularTotal"`
	Price        float64           `json:"price"`
	Discount     float64           `json:"discount"`
	DiscountPct  float64           `json:"discountPct"`
}

// --- cart ---

type CartItemRequest struct {
	ProductID string       `json:"productId"`
	Quantity  *int         `json:"quantity,omitempty"`
	Size      catalog.Size `json:"size,omitempty"`
}

type CartItemPatch struct {
	Quantity *int          `json:"quantity,omitempty"`
	Size     *catalog.Size `json:"size,omitempty"`
}

type CartLineResponse struct {
	ProductID string       `json:"productId"`
	Quantity  int          `json:"quantity"`
	Size      catalog.Size `json:"size,omitempty"`
	Name      string       `json:"name"`
	Price     float64      `json:"price"`
	LineTotal float64      `json:"lineTotal"`
}

type CartResponse struct {
	SessionID string             `json:"sessionId"`
	Items     []CartLineResponse `json:"items"`
	Count     int                `json:"count"`
	Subtotal  float64            `json:"subtotal"`
	IsBundle  bool               `json:"isBundle"`
}

// --- checkout ---

// CheckoutItem mirrors a client cart line. Any name or price sent by the
// client is ignored in favour of the catalog.
type CheckoutItem struct {
	ProductID string       `json:"productId"`
	Quantity  int          `json:"quantity"`
	Size      catalog.Size `json:"size,omitempty"`
}

type CheckoutRequest struct {
	Items         []CheckoutItem `json:"items"`
	CustomerEmail string         `json:"customerEmail,omitempty"`
}

type CartCheckoutRequest struct {
	CustomerEmail string `json:"customerEmail,omitempty"`
}

type CheckoutResponse struct {
	URL       string `json:"url"`
	SessionID string `json:"sessionId"`
}

type AddressResponse struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

type SessionItemResponse struct {
	ProductID string       `json:"productId"`
	Name      string       `json:"name"`
	Price     float64      `json:"price"`
	Quantity  int          `json:"quantity"`
	Size      catalog.Size `json:"size,omitempty"`
}

type SessionResponse struct {
	ID              string                `json:"id"`
	CustomerName    string                `json:"customerName,omitempty"`
	CustomerEmail   string                `json:"customerEmail,omitempty"`
	CustomerPhone   string                `json:"customerPhone,omitempty"`
	Items           []SessionItemResponse `json:"items"`
	Amount          float64               `json:"amount"`
	Currency        string                `json:"currency,omitempty"`
	PaymentStatus   string                `json:"paymentStatus"`
	IsBundle        bool                  `json:"isBundle"`
	ShippingAddress *AddressResponse      `json:"shippingAddress,omitempty"`
	OrderID         string                `json:"orderId,omitempty"`
}

type CompleteResponse struct {
	Session SessionResponse       `json:"session"`
	Effects []coordinator.Outcome `json:"effects"`
}

// --- orders ---

type OrderItemDTO struct {
	ProductID string       `json:"productId"`
	Name      string       `json:"name,omitempty"`
	Price     float64      `json:"price"`
	Quantity  int          `json:"quantity"`
	Size      catalog.Size `json:"size,omitempty"`
}

type CustomerDTO struct {
	Name    string           `json:"name,omitempty"`
	Email   string           `json:"email,omitempty"`
	Phone   string           `json:"phone,omitempty"`
	Address *AddressResponse `json:"address,omitempty"`
}

// CustomerInfoDTO is the flat customer block of the storefront's order form.
type CustomerInfoDTO struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

// CreateOrderRequest is a manual order. Fields it does not name are kept
// verbatim in Extra and stored with the order.
type CreateOrderRequest struct {
	Items        []OrderItemDTO   `json:"items"`
	Customer     CustomerDTO      `json:"customer"`
	CustomerInfo *CustomerInfoDTO `json:"customerInfo,omitempty"`
	Total        float64          `json:"total"`

	Extra map[string]json.RawMessage `json:"-"`
}

// serverOwnedFields are assigned by the order log, never by the client.
var serverOwnedFields = []string{"id", "sessionId", "status", "createdAt", "traceId", "confirmationSentAt"}

func (r *CreateOrderRequest) UnmarshalJSON(b []byte) error {
	type plain CreateOrderRequest
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}
	for _, k := range append([]string{"items", "customer", "total"}, serverOwnedFields...) {
		delete(fields, k)
	}
	if len(fields) > 0 {
		p.Extra = fields
	}
	*r = CreateOrderRequest(p)
	return nil
}

type OrderResponse struct {
	ID        string         `json:"id"`
	SessionID string         `json:"sessionId,omitempty"`
	Status    string         `json:"status"`
	Items     []OrderItemDTO `json:"items"`
	Customer  CustomerDTO    `json:"customer"`
	Total     float64        `json:"total"`
	CreatedAt string         `json:"createdAt"`

	Extra map[string]json.RawMessage `json:"-"`
}

// MarshalJSON writes the stored extra fields next to the order's own fields.
// The order's fields win on a name clash.
func (o OrderResponse) MarshalJSON() ([]byte, error) {
	type plain OrderResponse
	b, err := json.Marshal(plain(o))
	if err != nil || len(o.Extra) == 0 {
		return b, err
	}

	var own map[string]json.RawMessage
	if err := json.Unmarshal(b, &own); err != nil {
		return nil, err
	}
	merged := make(map[string]json.RawMessage, len(o.Extra)+len(own))
	for k, v := range o.Extra {
		merged[k] = v
	}
	for k, v := range own {
		merged[k] = v
	}
	return json.Marshal(merged)
}

type OrdersResponse struct {
	Orders []OrderResponse `json:"orders"`
}

type CreateOrderResponse struct {
	Success bool          `json:"success"`
	Order   OrderResponse `json:"order"`
}

// --- mapping ---

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func mapProduct(p catalog.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       money(p.Price),
		Image:       p.Image,
		Sizes:       p.Sizes,
	}
}

func mapProducts(ps []catalog.Product) []ProductResponse {
	out := make([]ProductResponse, len(ps))
	for i, p := range ps {
		out[i] = mapProduct(p)
	}
	return out
}

func mapQuote(q catalog.Quote) BundleResponse {
	return BundleResponse{
		Key:          q.Offer.Key,
		Name:         q.Offer.Name,
		Products:     mapProducts(q.Products),
		RegularTotal: money(q.RegularTotal),
		Price:        money(q.Price),
		Discount:     money(q.Discount),
		DiscountPct:  q.Offer.DiscountPct.InexactFloat64(),
	}
}

func mapCart(sessionID string, s *cart.Store, cat *catalog.Catalog) CartResponse {
	lines := s.Lines()
	resp := CartResponse{
		SessionID: sessionID,
		Items:     make([]CartLineResponse, 0, len(lines)),
		Count:     s.Count(),
		Subtotal:  money(s.Subtotal()),
		IsBundle:  cat.IsFullBundle(s.ProductIDs()),
	}
	for _, l := range lines {
		line := CartLineResponse{ProductID: l.ProductID, Quantity: l.Quantity, Size: l.Size}
		if p, ok := cat.GetProduct(l.ProductID); ok {
			line.Name = p.Name
			line.Price = money(p.Price)
			line.LineTotal = money(p.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
		}
		resp.Items = append(resp.Items, line)
	}
	return resp
}

func mapAddress(a *checkout.Address) *AddressResponse {
	if a == nil {
		return nil
	}
	return &AddressResponse{
		Line1: a.Line1, Line2: a.Line2, City: a.City, State: a.State, PostalCode: a.PostalCode, Country: a.Country,
	}
}

func mapSettlement(s *recorder.Settlement) SessionResponse {
	sum := s.Summary
	resp := SessionResponse{
		ID:              sum.SessionID,
		CustomerName:    sum.CustomerName,
		CustomerEmail:   sum.CustomerEmail,
		CustomerPhone:   sum.CustomerPhone,
		Items:           make([]SessionItemResponse, 0, len(sum.Items)),
		Amount:          money(sum.Amount),
		Currency:        sum.Currency,
		PaymentStatus:   string(sum.PaymentStatus),
		IsBundle:        sum.IsBundle,
		ShippingAddress: mapAddress(sum.ShippingAddress),
	}
	for _, it := range sum.Items {
		resp.Items = append(resp.Items, SessionItemResponse{
			ProductID: it.ProductID, Name: it.Name, Price: money(it.Price), Quantity: it.Quantity, Size: it.Size,
		})
	}
	if s.Order != nil {
		resp.OrderID = s.Order.ID
	}
	return resp
}

func (r CreateOrderRequest) toOrder() orders.Order {
	o := orders.Order{
		Total:    decimal.NewFromFloat(r.Total).Round(2),
		Customer: orders.Customer{Name: r.Customer.Name, Email: r.Customer.Email, Phone: r.Customer.Phone},
		Items:    make([]orders.Item, 0, len(r.Items)),
		Extra:    r.Extra,
	}
	for _, it := range r.Items {
		o.Items = append(o.Items, orders.Item{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     decimal.NewFromFloat(it.Price).Round(2),
			Quantity:  it.Quantity,
			Size:      it.Size,
		})
	}
	if a := r.Customer.Address; a != nil {
		o.Customer.Address = &orders.Address{
			Line1: a.Line1, Line2: a.Line2, City: a.City, State: a.State, PostalCode: a.PostalCode, Country: a.Country,
		}
	}
	if ci := r.CustomerInfo; ci != nil {
		if o.Customer.Name == "" {
			o.Customer.Name = ci.Name
		}
		if o.Customer.Email == "" {
			o.Customer.Email = ci.Email
		}
		if o.Customer.Address == nil && (ci.Address != "" || ci.City != "" || ci.Zip != "") {
			o.Customer.Address = &orders.Address{
				Line1: ci.Address, City: ci.City, State: ci.State, PostalCode: ci.Zip, Country: ci.Country,
			}
		}
	}
	return o
}

func mapOrder(o orders.Order) OrderResponse {
	resp := OrderResponse{
		ID:        o.ID,
		SessionID: o.SessionID,
		Status:    string(o.Status),
		Items:     make([]OrderItemDTO, 0, len(o.Items)),
		Customer:  CustomerDTO{Name: o.Customer.Name, Email: o.Customer.Email, Phone: o.Customer.Phone},
		Total:     money(o.Total),
		CreatedAt: o.CreatedAt.UTC().Format(time.RFC3339),
		Extra:     o.Extra,
	}
	for _, it := range o.Items {
		resp.Items = append(resp.Items, OrderItemDTO{
			ProductID: it.ProductID, Name: it.Name, Price: money(it.Price), Quantity: it.Quantity, Size: it.Size,
		})
	}
	if a := o.Customer.Address; a != nil {
		resp.Customer.Address = &AddressResponse{
			Line1: a.Line1, Line2: a.Line2, City: a.City, State: a.State, PostalCode: a.PostalCode, Country: a.Country,
		}
	}
	return resp
}
