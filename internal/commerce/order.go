package commerce

// Address is the billing/shipping block of a WooCommerce order.
type Address struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Address1  string `json:"address_1"`
	Address2  string `json:"address_2"`
	City      string `json:"city"`
	State     string `json:"state"`
	Postcode  string `json:"postcode"`
	Country   string `json:"country"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

type LineItem struct {
	ProductID int `json:"product_id"`
	Quantity  int `json:"quantity"`
}

type MetaData struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type OrderRequest struct {
	PaymentMethod      string     `json:"payment_method"`
	PaymentMethodTitle string     `json:"payment_method_title"`
	SetPaid            bool       `json:"set_paid"`
	CustomerID         int        `json:"customer_id"`
	Billing            Address    `json:"billing"`
	Shipping           *Address   `json:"shipping,omitempty"`
	LineItems          []LineItem `json:"line_items"`
	MetaData           []MetaData `json:"meta_data"`
}

type OrderResponse struct {
	ID     int    `json:"id"`
	Number string `json:"number"`
	Status string `json:"status"`
}
