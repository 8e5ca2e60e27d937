// Package notify sends transactional email through the EmailJS REST API.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/sleepwell-storefront/internal/pkg/interceptors"
)

const DefaultEndpoint = "https://api.emailjs.com/api/v1.0/email/send"

var ErrNotConfigured = errors.New("emailjs is not configured")

type Config struct {
	PublicKey  string
	PrivateKey string
	ServiceID  string
	TemplateID string
	Endpoint   string
	Timeout    time.Duration
}

type Address struct {
	Line1      string
	Line2      string
	City       string
	State      string
	PostalCode string
	Country    string
}

type Line struct {
	Name     string
	Quantity int
	Price    decimal.Decimal
}

// OrderConfirmation is the content of the post-purchase email.
type OrderConfirmation struct {
	OrderNumber     string
	CustomerName    string
	CustomerEmail   string
	Items           []Line
	Total           decimal.Decimal
	ShippingAddress *Address
}

type Mailer struct {
	cfg  Config
	http *http.Client
}

func NewMailer(cfg Config) *Mailer {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Mailer{
		cfg: cfg,
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: interceptors.NewTransport("emailjs", nil),
		},
	}
}

type sendRequest struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	AccessToken    string            `json:"accessToken,omitempty"`
	TemplateParams map[string]string `json:"template_params"`
}

// SendOrderConfirmation renders o into the order template and sends it.
func (m *Mailer) SendOrderConfirmation(ctx context.Context, o OrderConfirmation) error {
	if m.cfg.PublicKey == "" || m.cfg.ServiceID == "" || m.cfg.TemplateID == "" {
		return ErrNotConfigured
	}

	body, err := json.Marshal(sendRequest{
		ServiceID:      m.cfg.ServiceID,
		TemplateID:     m.cfg.TemplateID,
		UserID:         m.cfg.PublicKey,
		AccessToken:    m.cfg.PrivateKey,
		TemplateParams: TemplateParams(o),
	})
	if err != nil {
		return fmt.Errorf("notify: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.http.Do(req)
	if err != nil {
		return fmt.Errorf("notify: send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("notify: emailjs responded %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}

// TemplateParams flattens o into the variables the order template expects.
func TemplateParams(o OrderConfirmation) map[string]string {
	name := o.CustomerName
	if name == "" {
		name = "Valued Customer"
	}

	lines := make([]string, 0, len(o.Items))
	for _, it := range o.Items {
		lines = append(lines, fmt.Sprintf("%s (%d) - $%s", it.Name, it.Quantity, it.Price.StringFixed(2)))
	}

	return map[string]string{
		"order_number":     o.OrderNumber,
		"customer_name":    name,
		"customer_email":   o.CustomerEmail,
		"item_list":        strings.Join(lines, "\n"),
		"total_amount":     "$" + o.Total.StringFixed(2),
		"shipping_address": formatAddress(o.ShippingAddress),
	}
}

func formatAddress(a *Address) string {
	if a == nil {
		return "N/A"
	}
	var b strings.Builder
	b.WriteString(a.Line1)
	b.WriteString("\n")
	if a.Line2 != "" {
		b.WriteString(a.Line2)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "%s, %s %s\n%s", a.City, a.State, a.PostalCode, a.Country)
	return b.String()
}
