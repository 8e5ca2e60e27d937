package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/sleepwell-storefront/internal/cart"
	"github.com/jcmexdev/sleepwell-storefront/internal/catalog"
	"github.com/jcmexdev/sleepwell-storefront/internal/checkout"
	"github.com/jcmexdev/sleepwell-storefront/internal/commerce"
	"github.com/jcmexdev/sleepwell-storefront/internal/coordinator"
	"github.com/jcmexdev/sleepwell-storefront/internal/httpx/middlewares"
	"github.com/jcmexdev/sleepwell-storefront/internal/notify"
	"github.com/jcmexdev/sleepwell-storefront/internal/orders"
	"github.com/jcmexdev/sleepwell-storefront/internal/recorder"
)

type fakeGateway struct {
	mu          sync.Mutex
	requests    []checkout.SessionRequest
	createErr   error
	retrieveErr error
	detail      checkout.SessionDetail
}

func (g *fakeGateway) CreateCoupon(_ context.Context, c checkout.Coupon) (string, error) {
	return c.ID, nil
}

func (g *fakeGateway) CreateSession(_ context.Context, req checkout.SessionRequest) (*checkout.Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.createErr != nil {
		return nil, g.createErr
	}
	g.requests = append(g.requests, req)
	return &checkout.Session{ID: "cs_test_1", URL: "https://pay.example/cs_test_1"}, nil
}

func (g *fakeGateway) RetrieveSession(_ context.Context, id string) (*checkout.SessionDetail, error) {
	if g.retrieveErr != nil {
		return nil, g.retrieveErr
	}
	d := g.detail
	d.ID = id
	return &d, nil
}

type fakeForwarder struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeForwarder) CreateOrder(context.Context, commerce.OrderRequest) (*commerce.OrderResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return &commerce.OrderResponse{ID: f.calls}, nil
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []notify.OrderConfirmation
	err  error
}

func (m *fakeMailer) SendOrderConfirmation(_ context.Context, o notify.OrderConfirmation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, o)
	return nil
}

type testEnv struct {
	router http.Handler
	gw     *fakeGateway
	fwd    *fakeForwarder
	mailer *fakeMailer
	carts  *cart.Sessions
	log    *orders.MemoryLog
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	cat := catalog.Default()
	carts := cart.NewSessions(cart.NewMemoryStorage(), cat)
	gw := &fakeGateway{}
	orch := checkout.NewOrchestrator(gw, cat, checkout.Config{BaseURL: "https://shop.example", Currency: "usd"})
	log := orders.NewMemoryLog()
	svc := orders.NewService(log)
	fwd := &fakeForwarder{}
	mailer := &fakeMailer{}

	h := NewHandler(cat, carts, orch, recorder.New(gw, cat, svc, fwd), svc, mailer)
	return &testEnv{
		router: NewRouter(h, RouterOptions{CartTTL: time.Hour}),
		gw:     gw,
		fwd:    fwd,
		mailer: mailer,
		carts:  carts,
		log:    log,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, session string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if session != "" {
		req.Header.Set(middlewares.HeaderCartSession, session)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func bundleItems() []CheckoutItem {
	return []CheckoutItem{
		{ProductID: catalog.AirPurifierID, Quantity: 1},
		{ProductID: catalog.MouthTapeID, Quantity: 1},
		{ProductID: catalog.FittedSheetID, Quantity: 1, Size: catalog.SizeQueen},
		{ProductID: catalog.BlueLightGlassesID, Quantity: 1},
	}
}

func TestHealth(t *testing.T) {
	rec := newEnv(t).do(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCatalogEndpoints(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodGet, "/api/products", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	products := decode[map[string][]ProductResponse](t, rec)["products"]
	assert.Len(t, products, 4)

	rec = e.do(t, http.MethodGet, "/api/products/"+catalog.FittedSheetID, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	p := decode[ProductResponse](t, rec)
	assert.Equal(t, 39.99, p.Price)
	assert.Len(t, p.Sizes, 4)

	rec = e.do(t, http.MethodGet, "/api/products/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = e.do(t, http.MethodGet, "/api/bundle", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	b := decode[BundleResponse](t, rec)
	assert.Equal(t, 107.96, b.RegularTotal)
	assert.Equal(t, 91.77, b.Price)
	assert.Equal(t, 16.19, b.Discount)

	rec = e.do(t, http.MethodGet, "/api/bundles", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[map[string][]BundleResponse](t, rec)["bundles"], 3)
}

func TestCart_MintsSession(t *testing.T) {
	e := newEnv(t)
	rec := e.do(t, http.MethodPost, "/api/cart/items", CartItemRequest{ProductID: catalog.MouthTapeID}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	sid := rec.Header().Get(middlewares.HeaderCartSession)
	require.NotEmpty(t, sid)
	c := decode[CartResponse](t, rec)
	assert.Equal(t, sid, c.SessionID)
	assert.Equal(t, 1, c.Count)

	rec = e.do(t, http.MethodGet, "/api/cart", nil, sid)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[CartResponse](t, rec).Count)
}

func TestCart_Flow(t *testing.T) {
	e := newEnv(t)
	const sid = "shopper-1"
	two := 2

	rec := e.do(t, http.MethodPost, "/api/cart/items", CartItemRequest{ProductID: catalog.FittedSheetID, Quantity: &two, Size: catalog.SizeQueen}, sid)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = e.do(t, http.MethodPost, "/api/cart/items", CartItemRequest{ProductID: catalog.MouthTapeID}, sid)
	require.Equal(t, http.StatusOK, rec.Code)

	c := decode[CartResponse](t, rec)
	assert.Equal(t, 3, c.Count)
	assert.Equal(t, 89.97, c.Subtotal)
	require.Len(t, c.Items, 2)
	assert.Equal(t, 79.98, c.Items[0].LineTotal)

	king := catalog.SizeKing
	rec = e.do(t, http.MethodPatch, "/api/cart/items/"+catalog.FittedSheetID, CartItemPatch{Size: &king}, sid)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, catalog.SizeKing, decode[CartResponse](t, rec).Items[0].Size)

	one := 1
	rec = e.do(t, http.MethodPatch, "/api/cart/items/"+catalog.FittedSheetID, CartItemPatch{Quantity: &one}, sid)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, decode[CartResponse](t, rec).Count)

	rec = e.do(t, http.MethodDelete, "/api/cart/items/"+catalog.MouthTapeID, nil, sid)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[CartResponse](t, rec).Count)

	rec = e.do(t, http.MethodDelete, "/api/cart", nil, sid)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, decode[CartResponse](t, rec).Count)
}

func TestCart_Validation(t *testing.T) {
	e := newEnv(t)
	const sid = "shopper-2"
	zero := 0
	twin := catalog.SizeTwin

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"unknown product", http.MethodPost, "/api/cart/items", CartItemRequest{ProductID: "nope"}, http.StatusBadRequest},
		{"missing size", http.MethodPost, "/api/cart/items", CartItemRequest{ProductID: catalog.FittedSheetID}, http.StatusBadRequest},
		{"size on unsized product", http.MethodPost, "/api/cart/items", CartItemRequest{ProductID: catalog.MouthTapeID, Size: catalog.SizeKing}, http.StatusBadRequest},
		{"zero quantity", http.MethodPost, "/api/cart/items", CartItemRequest{ProductID: catalog.MouthTapeID, Quantity: &zero}, http.StatusBadRequest},
		{"patch item not in cart", http.MethodPatch, "/api/cart/items/" + catalog.FittedSheetID, CartItemPatch{Size: &twin}, http.StatusNotFound},
		{"empty patch", http.MethodPatch, "/api/cart/items/" + catalog.FittedSheetID, CartItemPatch{}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.do(t, tt.method, tt.path, tt.body, sid)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestCreateCheckout_RepricesFromCatalog(t *testing.T) {
	e := newEnv(t)

	body := map[string]any{
		"items":         []map[string]any{{"productId": catalog.MouthTapeID, "quantity": 2, "price": 0.01, "name": "free"}},
		"customerEmail": "ada@example.com",
	}
	rec := e.do(t, http.MethodPost, "/api/checkout", body, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	res := decode[CheckoutResponse](t, rec)
	assert.Equal(t, "https://pay.example/cs_test_1", res.URL)
	require.Len(t, e.gw.requests, 1)
	li := e.gw.requests[0].LineItems[0]
	assert.Equal(t, int64(999), li.UnitAmount)
	assert.NotEqual(t, "free", li.Name)
}

func TestCreateCheckout_Bundle(t *testing.T) {
	e := newEnv(t)
	rec := e.do(t, http.MethodPost, "/api/checkout", CheckoutRequest{Items: bundleItems()}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, e.gw.requests[0].CouponID)
}

func TestCreateCheckout_Errors(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/api/checkout", CheckoutRequest{}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_cart", decode[ErrorResponse](t, rec).Error)

	rec = e.do(t, http.MethodPost, "/api/checkout", CheckoutRequest{Items: []CheckoutItem{{ProductID: "nope", Quantity: 1}}}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	e.gw.createErr = errors.New("stripe: card_declined internal detail")
	rec = e.do(t, http.MethodPost, "/api/checkout", CheckoutRequest{Items: bundleItems()[:1]}, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	errBody := decode[ErrorResponse](t, rec)
	assert.Equal(t, "error creating checkout session", errBody.Message)
	assert.NotContains(t, rec.Body.String(), "internal detail")
}

func TestCheckoutCart(t *testing.T) {
	e := newEnv(t)
	const sid = "shopper-3"

	rec := e.do(t, http.MethodPost, "/api/cart/checkout", nil, sid)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	e.do(t, http.MethodPost, "/api/cart/items", CartItemRequest{ProductID: catalog.AirPurifierID}, sid)
	rec = e.do(t, http.MethodPost, "/api/cart/checkout", CartCheckoutRequest{CustomerEmail: "a@b.co"}, sid)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "a@b.co", e.gw.requests[0].CustomerEmail)
}

func paidSession() checkout.SessionDetail {
	return checkout.SessionDetail{
		Status:        checkout.SessionComplete,
		PaymentStatus: checkout.PaymentPaid,
		AmountTotal:   999,
		Currency:      "usd",
		Customer:      &checkout.Customer{Name: "Ada Lovelace", Email: "ada@example.com"},
		Metadata: map[string]string{
			checkout.MetadataCartItems: `[{"id":"mouth-tape","q":1,"p":"9.99"}]`,
			checkout.MetadataIsBundle:  "false",
		},
	}
}

func TestGetSession(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodGet, "/api/checkout/session", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	e.gw.retrieveErr = errors.New("no such session")
	rec = e.do(t, http.MethodGet, "/api/checkout/session?session_id=cs_x", nil, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	e.gw.retrieveErr = nil
	e.gw.detail = paidSession()
	rec = e.do(t, http.MethodGet, "/api/checkout/session?session_id=cs_1", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	s := decode[SessionResponse](t, rec)
	assert.Equal(t, "cs_1", s.ID)
	assert.Equal(t, 9.99, s.Amount)
	assert.Equal(t, "paid", s.PaymentStatus)
	assert.NotEmpty(t, s.OrderID)
	require.Len(t, s.Items, 1)
	assert.Equal(t, 1, e.fwd.calls)
}

func TestCompleteSession(t *testing.T) {
	e := newEnv(t)
	const sid = "shopper-4"
	e.gw.detail = paidSession()
	e.do(t, http.MethodPost, "/api/cart/items", CartItemRequest{ProductID: catalog.MouthTapeID}, sid)

	rec := e.do(t, http.MethodPost, "/api/checkout/session/complete?session_id=cs_1", nil, sid)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	res := decode[CompleteResponse](t, rec)
	steps := map[string]bool{}
	for _, o := range res.Effects {
		steps[o.Step] = o.OK
	}
	assert.True(t, steps["record_order"])
	assert.True(t, steps["forward_order"])
	assert.True(t, steps["clear_cart"])
	assert.True(t, steps["confirmation_email"])
	require.Len(t, e.mailer.sent, 1)
	assert.Equal(t, res.Session.OrderID, e.mailer.sent[0].OrderNumber)
	assert.Zero(t, e.carts.Open(context.Background(), sid).Count())

	rec = e.do(t, http.MethodPost, "/api/checkout/session/complete?session_id=cs_1", nil, sid)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, e.mailer.sent, 1)
	assert.Equal(t, 1, e.fwd.calls)

	list, _ := e.log.List(context.Background())
	assert.Len(t, list, 1)
}

func effectByStep(outs []coordinator.Outcome, step string) (coordinator.Outcome, bool) {
	for _, o := range outs {
		if o.Step == step {
			return o, true
		}
	}
	return coordinator.Outcome{}, false
}

func TestCompleteSession_AfterSessionLookupStillEmails(t *testing.T) {
	e := newEnv(t)
	e.gw.detail = paidSession()

	rec := e.do(t, http.MethodGet, "/api/checkout/session?session_id=cs_5", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, e.mailer.sent)

	rec = e.do(t, http.MethodPost, "/api/checkout/session/complete?session_id=cs_5", nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	email, ok := effectByStep(decode[CompleteResponse](t, rec).Effects, "confirmation_email")
	require.True(t, ok)
	assert.True(t, email.OK, email.Error)
	require.Len(t, e.mailer.sent, 1)
	assert.Equal(t, "NasalBreathe Mouth Tape", e.mailer.sent[0].Items[0].Name)
	assert.Equal(t, 1, e.fwd.calls)

	rec = e.do(t, http.MethodPost, "/api/checkout/session/complete?session_id=cs_5", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	email, ok = effectByStep(decode[CompleteResponse](t, rec).Effects, "confirmation_email")
	require.True(t, ok)
	assert.True(t, email.Skipped)
	assert.Len(t, e.mailer.sent, 1)
}

func TestCompleteSession_ConcurrentCallsSendOneEmail(t *testing.T) {
	e := newEnv(t)
	e.gw.detail = paidSession()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := e.do(t, http.MethodPost, "/api/checkout/session/complete?session_id=cs_6", nil, "")
			assert.Equal(t, http.StatusOK, rec.Code)
		}()
	}
	wg.Wait()

	assert.Len(t, e.mailer.sent, 1)
	assert.Equal(t, 1, e.fwd.calls)
}

func TestCompleteSession_FailedEmailIsRetriedLater(t *testing.T) {
	e := newEnv(t)
	e.gw.detail = paidSession()
	e.mailer.err = errors.New("emailjs down")

	rec := e.do(t, http.MethodPost, "/api/checkout/session/complete?session_id=cs_7", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, e.mailer.sent)

	e.mailer.err = nil
	rec = e.do(t, http.MethodPost, "/api/checkout/session/complete?session_id=cs_7", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, e.mailer.sent, 1)
}

func TestManualOrderCannotShadowPaidSession(t *testing.T) {
	e := newEnv(t)
	e.gw.detail = paidSession()

	rec := e.do(t, http.MethodPost, "/api/orders", map[string]any{"sessionId": "cs_8", "total": 0}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Empty(t, decode[CreateOrderResponse](t, rec).Order.SessionID)

	rec = e.do(t, http.MethodPost, "/api/checkout/session/complete?session_id=cs_8", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, e.fwd.calls)
	assert.Len(t, e.mailer.sent, 1)

	paid, err := e.log.FindBySession(context.Background(), "cs_8")
	require.NoError(t, err)
	assert.Equal(t, orders.StatusPaid, paid.Status)
	assert.Equal(t, "9.99", paid.Total.StringFixed(2))
}

func TestCompleteSession_EffectFailureKeepsSuccess(t *testing.T) {
	e := newEnv(t)
	e.gw.detail = paidSession()
	e.mailer.err = errors.New("emailjs down")

	rec := e.do(t, http.MethodPost, "/api/checkout/session/complete?session_id=cs_2", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	res := decode[CompleteResponse](t, rec)
	assert.Equal(t, "paid", res.Session.PaymentStatus)
	var emailFailed bool
	for _, o := range res.Effects {
		if o.Step == "confirmation_email" {
			emailFailed = !o.OK && !o.Skipped
		}
	}
	assert.True(t, emailFailed)
}

func TestCompleteSession_UnpaidHasNoEffects(t *testing.T) {
	e := newEnv(t)
	e.gw.detail = paidSession()
	e.gw.detail.PaymentStatus = checkout.PaymentUnpaid

	rec := e.do(t, http.MethodPost, "/api/checkout/session/complete?session_id=cs_3", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[CompleteResponse](t, rec).Effects)
	assert.Empty(t, e.mailer.sent)
	assert.Zero(t, e.fwd.calls)
}

func TestOrders(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/api/orders", CreateOrderRequest{
		Items:    []OrderItemDTO{{ProductID: catalog.MouthTapeID, Name: "Mouth Tape", Price: 9.99, Quantity: 1}},
		Customer: CustomerDTO{Name: "Ada"},
		Total:    9.99,
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	created := decode[CreateOrderResponse](t, rec)
	assert.True(t, created.Success)
	assert.NotEmpty(t, created.Order.ID)
	assert.Equal(t, "pending", created.Order.Status)
	_, err := time.Parse(time.RFC3339, created.Order.CreatedAt)
	assert.NoError(t, err)

	rec = e.do(t, http.MethodGet, "/api/orders", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[OrdersResponse](t, rec)
	require.Len(t, list.Orders, 1)
	assert.Equal(t, 9.99, list.Orders[0].Total)

	req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewBufferString("{broken"))
	bad := httptest.NewRecorder()
	e.router.ServeHTTP(bad, req)
	assert.Equal(t, http.StatusBadRequest, bad.Code)
}

func TestOrders_KeepsStorefrontOrderFields(t *testing.T) {
	e := newEnv(t)
	body := map[string]any{
		"items": []map[string]any{{"productId": catalog.MouthTapeID, "quantity": 2, "price": 9.99, "name": "Mouth Tape", "image": "/images/mouth-tape.jpg"}},
		"customerInfo": map[string]any{
			"name": "Ada Lovelace", "email": "ada@example.com", "address": "1 Main St",
			"city": "Springfield", "state": "IL", "zip": "62701", "country": "US",
		},
		"total":         19.98,
		"paymentMethod": "paypal",
		"status":        "delivered",
		"id":            "client-chosen",
	}

	rec := e.do(t, http.MethodPost, "/api/orders", body, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		Success bool                       `json:"success"`
		Order   map[string]json.RawMessage `json:"order"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.True(t, created.Success)
	assert.JSONEq(t, `"paypal"`, string(created.Order["paymentMethod"]))
	assert.JSONEq(t, `"pending"`, string(created.Order["status"]))
	assert.NotEqual(t, `"client-chosen"`, string(created.Order["id"]))
	assert.Contains(t, string(created.Order["customerInfo"]), `"zip":"62701"`)

	stored, err := e.log.List(context.Background())
	require.NoError(t, err)
	require.Len(t, stored, 1)
	o := stored[0]
	assert.Equal(t, "Ada Lovelace", o.Customer.Name)
	assert.Equal(t, "ada@example.com", o.Customer.Email)
	require.NotNil(t, o.Customer.Address)
	assert.Equal(t, "62701", o.Customer.Address.PostalCode)
	assert.JSONEq(t, `"paypal"`, string(o.Extra["paymentMethod"]))
	assert.NotContains(t, o.Extra, "status")
	assert.NotContains(t, o.Extra, "id")

	rec = e.do(t, http.MethodGet, "/api/orders", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var listed struct {
		Orders []map[string]json.RawMessage `json:"orders"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed.Orders, 1)
	assert.JSONEq(t, `"paypal"`, string(listed.Orders[0]["paymentMethod"]))
}
