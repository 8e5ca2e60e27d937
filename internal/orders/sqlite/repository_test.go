package sqlite

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/sleepwell-storefront/internal/orders"
)

func openRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := Open(filepath.Join(t.TempDir(), "orders.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestAppendAndList(t *testing.T) {
	repo := openRepo(t)
	ctx := context.Background()
	created := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

	in := &orders.Order{
		ID:        "o-1",
		SessionID: "cs_1",
		Status:    orders.StatusPaid,
		Items: []orders.Item{
			{ProductID: "fitted-sheet", Name: "Sheet", Price: decimal.RequireFromString("39.99"), Quantity: 1, Size: "Queen"},
		},
		Customer:  orders.Customer{Name: "Ada", Email: "ada@example.com"},
		Total:     decimal.RequireFromString("39.99"),
		CreatedAt: created,
		TraceID:   "abc",
	}
	require.NoError(t, repo.Append(ctx, in))
	require.NoError(t, repo.Append(ctx, &orders.Order{ID: "o-2", Status: orders.StatusPending, CreatedAt: created}))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)

	got := list[0]
	assert.Equal(t, "o-1", got.ID)
	assert.Equal(t, "cs_1", got.SessionID)
	assert.Equal(t, orders.StatusPaid, got.Status)
	assert.True(t, got.Total.Equal(in.Total))
	assert.Equal(t, created, got.CreatedAt)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Queen", string(got.Items[0].Size))
	assert.Equal(t, "ada@example.com", got.Customer.Email)

	assert.Equal(t, "o-2", list[1].ID)
	assert.Empty(t, list[1].SessionID)
}

func TestFindBySession(t *testing.T) {
	repo := openRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Append(ctx, &orders.Order{ID: "o-1", SessionID: "cs_1", Status: orders.StatusPaid, CreatedAt: time.Now()}))

	o, err := repo.FindBySession(ctx, "cs_1")
	require.NoError(t, err)
	assert.Equal(t, "o-1", o.ID)

	_, err = repo.FindBySession(ctx, "cs_missing")
	assert.ErrorIs(t, err, orders.ErrNotFound)
}

func TestDuplicateSessionRejected(t *testing.T) {
	repo := openRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Append(ctx, &orders.Order{ID: "o-1", SessionID: "cs_1", Status: orders.StatusPaid, CreatedAt: time.Now()}))
	assert.Error(t, repo.Append(ctx, &orders.Order{ID: "o-2", SessionID: "cs_1", Status: orders.StatusPaid, CreatedAt: time.Now()}))
}

func TestManualOrdersWithoutSession(t *testing.T) {
	repo := openRepo(t)
	svc := orders.NewService(repo)
	ctx := context.Background()

	_, err := svc.Create(ctx, orders.Order{})
	require.NoError(t, err)
	_, err = svc.Create(ctx, orders.Order{})
	require.NoError(t, err)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestExtraFieldsRoundTrip(t *testing.T) {
	repo := openRepo(t)
	ctx := context.Background()
	extra := map[string]json.RawMessage{
		"paymentMethod": json.RawMessage(`"card"`),
		"customerInfo":  json.RawMessage(`{"name":"Ada","zip":"62701"}`),
	}
	require.NoError(t, repo.Append(ctx, &orders.Order{ID: "o-1", Status: orders.StatusPending, CreatedAt: time.Now(), Extra: extra}))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.JSONEq(t, `"card"`, string(list[0].Extra["paymentMethod"]))
	assert.JSONEq(t, `{"name":"Ada","zip":"62701"}`, string(list[0].Extra["customerInfo"]))
}

func TestClaimConfirmation(t *testing.T) {
	repo := openRepo(t)
	ctx := context.Background()
	at := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	require.NoError(t, repo.Append(ctx, &orders.Order{ID: "o-1", SessionID: "cs_1", Status: orders.StatusPaid, CreatedAt: at}))

	claimed, err := repo.ClaimConfirmation(ctx, "o-1", at)
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = repo.ClaimConfirmation(ctx, "o-1", at.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, claimed)

	o, err := repo.FindBySession(ctx, "cs_1")
	require.NoError(t, err)
	require.NotNil(t, o.ConfirmationSentAt)
	assert.Equal(t, at, *o.ConfirmationSentAt)

	require.NoError(t, repo.ReleaseConfirmation(ctx, "o-1"))
	claimed, err = repo.ClaimConfirmation(ctx, "o-1", at)
	require.NoError(t, err)
	assert.True(t, claimed)

	_, err = repo.ClaimConfirmation(ctx, "o-missing", at)
	assert.ErrorIs(t, err, orders.ErrNotFound)
}
