package coordinator

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/sleepwell-storefront/internal/commerce"
	"github.com/jcmexdev/sleepwell-storefront/internal/notify"
)

type funcStep struct {
	name string
	err  error
	ran  *[]string
}

func (s funcStep) Name() string { return s.name }
func (s funcStep) Execute(context.Context) error {
	*s.ran = append(*s.ran, s.name)
	return s.err
}

func TestRun_ContinuesPastFailures(t *testing.T) {
	var ran []string
	c := New(
		funcStep{name: "a", err: errors.New("boom"), ran: &ran},
		funcStep{name: "b", err: fmt.Errorf("%w: no key", ErrSkipped), ran: &ran},
		funcStep{name: "c", ran: &ran},
	)

	out := c.Run(context.Background())

	assert.Equal(t, []string{"a", "b", "c"}, ran)
	require.Len(t, out, 3)
	assert.False(t, out[0].OK)
	assert.Equal(t, "boom", out[0].Error)
	assert.True(t, out[1].Skipped)
	assert.True(t, out[2].OK)
	assert.True(t, out.Failed())
}

func TestOutcomes_SkippedIsNotFailure(t *testing.T) {
	out := Outcomes{{Step: "x", OK: true}, {Step: "y", Skipped: true}}
	assert.False(t, out.Failed())
}

type fakeForwarder struct {
	err error
	got *commerce.OrderRequest
}

func (f *fakeForwarder) CreateOrder(_ context.Context, req commerce.OrderRequest) (*commerce.OrderResponse, error) {
	f.got = &req
	if f.err != nil {
		return nil, f.err
	}
	return &commerce.OrderResponse{ID: 77}, nil
}

func TestForwardOrderStep(t *testing.T) {
	f := &fakeForwarder{}
	step := NewForwardOrderStep(f, commerce.OrderRequest{PaymentMethod: "stripe"})
	require.NoError(t, step.Execute(context.Background()))
	assert.Equal(t, 77, step.RemoteID)
	assert.Equal(t, "stripe", f.got.PaymentMethod)

	err := NewForwardOrderStep(&fakeForwarder{err: commerce.ErrNotConfigured}, commerce.OrderRequest{}).Execute(context.Background())
	assert.ErrorIs(t, err, ErrSkipped)

	err = NewForwardOrderStep(&fakeForwarder{err: errors.New("503")}, commerce.OrderRequest{}).Execute(context.Background())
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrSkipped)
}

type fakeMailer struct{ err error }

func (m fakeMailer) SendOrderConfirmation(context.Context, notify.OrderConfirmation) error {
	return m.err
}

func TestConfirmationEmailStep(t *testing.T) {
	ctx := context.Background()
	order := notify.OrderConfirmation{CustomerEmail: "ada@example.com"}

	assert.NoError(t, NewConfirmationEmailStep(fakeMailer{}, order).Execute(ctx))
	assert.ErrorIs(t, NewConfirmationEmailStep(fakeMailer{}, notify.OrderConfirmation{}).Execute(ctx), ErrSkipped)
	assert.ErrorIs(t, NewConfirmationEmailStep(fakeMailer{err: notify.ErrNotConfigured}, order).Execute(ctx), ErrSkipped)
	assert.NotErrorIs(t, NewConfirmationEmailStep(fakeMailer{err: errors.New("smtp")}, order).Execute(ctx), ErrSkipped)
}

type fakeClaims struct {
	held     map[string]bool
	released []string
	err      error
}

func (f *fakeClaims) ClaimConfirmation(_ context.Context, id string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if f.held[id] {
		return false, nil
	}
	f.held[id] = true
	return true, nil
}

func (f *fakeClaims) ReleaseConfirmation(_ context.Context, id string) error {
	delete(f.held, id)
	f.released = append(f.released, id)
	return nil
}

type countingMailer struct {
	sent int
	err  error
}

func (m *countingMailer) SendOrderConfirmation(context.Context, notify.OrderConfirmation) error {
	m.sent++
	return m.err
}

func TestConfirmationEmailStep_OnceSendsASingleEmail(t *testing.T) {
	ctx := context.Background()
	order := notify.OrderConfirmation{CustomerEmail: "ada@example.com"}
	claims := &fakeClaims{held: map[string]bool{}}
	mailer := &countingMailer{}

	require.NoError(t, NewConfirmationEmailStep(mailer, order).Once(claims, "o-1").Execute(ctx))
	err := NewConfirmationEmailStep(mailer, order).Once(claims, "o-1").Execute(ctx)
	assert.ErrorIs(t, err, ErrSkipped)
	assert.ErrorContains(t, err, "already sent")
	assert.Equal(t, 1, mailer.sent)
}

func TestConfirmationEmailStep_FailedSendReleasesClaim(t *testing.T) {
	ctx := context.Background()
	order := notify.OrderConfirmation{CustomerEmail: "ada@example.com"}
	claims := &fakeClaims{held: map[string]bool{}}

	failing := &countingMailer{err: errors.New("smtp")}
	assert.Error(t, NewConfirmationEmailStep(failing, order).Once(claims, "o-1").Execute(ctx))
	assert.Equal(t, []string{"o-1"}, claims.released)

	retry := &countingMailer{}
	require.NoError(t, NewConfirmationEmailStep(retry, order).Once(claims, "o-1").Execute(ctx))
	assert.Equal(t, 1, retry.sent)
}

func TestConfirmationEmailStep_ClaimErrorDoesNotSend(t *testing.T) {
	mailer := &countingMailer{}
	step := NewConfirmationEmailStep(mailer, notify.OrderConfirmation{CustomerEmail: "ada@example.com"}).
		Once(&fakeClaims{err: errors.New("log down")}, "o-1")

	err := step.Execute(context.Background())
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrSkipped)
	assert.Zero(t, mailer.sent)
}

type fakeCarts struct {
	cleared []string
	err     error
}

func (f *fakeCarts) Clear(_ context.Context, id string) error {
	f.cleared = append(f.cleared, id)
	return f.err
}

func TestClearCartStep(t *testing.T) {
	ctx := context.Background()
	carts := &fakeCarts{}

	require.NoError(t, NewClearCartStep(carts, "s1").Execute(ctx))
	assert.Equal(t, []string{"s1"}, carts.cleared)
	assert.ErrorIs(t, NewClearCartStep(carts, "").Execute(ctx), ErrSkipped)
	assert.Error(t, NewClearCartStep(&fakeCarts{err: errors.New("down")}, "s1").Execute(ctx))
}
