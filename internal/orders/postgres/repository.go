// Package postgres provides an orders.Log on top of a pgx pool.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/jcmexdev/sleepwell-storefront/internal/orders"
)

// DBPool is the subset of *pgxpool.Pool the repository needs.
type DBPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const schema = `
CREATE TABLE IF NOT EXISTS orders (
    seq         BIGSERIAL PRIMARY KEY,
    id          TEXT        NOT NULL UNIQUE,
    session_id  TEXT        UNIQUE,
    status      TEXT        NOT NULL,
    items       JSONB       NOT NULL DEFAULT '[]',
    customer    JSONB       NOT NULL DEFAULT '{}',
    total       NUMERIC(12,2) NOT NULL DEFAULT 0,
    trace_id    TEXT        NOT NULL DEFAULT '',
    created_at  TIMESTAMPTZ NOT NULL,
    extra       JSONB       NOT NULL DEFAULT '{}',
    confirmation_sent_at TIMESTAMPTZ
)`

type Repository struct {
	pool DBPool
}

func NewRepository(pool DBPool) *Repository {
	return &Repository{pool: pool}
}

// EnsureSchema creates the orders table when missing.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("postgres: apply schema: %w", err)
	}
	return nil
}

func (r *Repository) Append(ctx context.Context, o *orders.Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("postgres: encode items: %w", err)
	}
	customer, err := json.Marshal(o.Customer)
	if err != nil {
		return fmt.Errorf("postgres: encode customer: %w", err)
	}
	extra := []byte("{}")
	if len(o.Extra) > 0 {
		if extra, err = json.Marshal(o.Extra); err != nil {
			return fmt.Errorf("postgres: encode extra: %w", err)
		}
	}

	var sessionID *string
	if o.SessionID != "" {
		sessionID = &o.SessionID
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO orders (id, session_id, status, items, customer, total, trace_id, created_at, extra, confirmation_sent_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		o.ID, sessionID, string(o.Status), string(items), string(customer), o.Total.String(), o.TraceID, o.CreatedAt.UTC(),
		string(extra), o.ConfirmationSentAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: append order %q: %w", o.ID, err)
	}
	return nil
}

const selectColumns = `
	SELECT id, COALESCE(session_id, ''), status, items, customer, total::text, trace_id, created_at,
	       extra, confirmation_sent_at
	FROM orders`

func (r *Repository) List(ctx context.Context) ([]orders.Order, error) {
	rows, err := r.pool.Query(ctx, selectColumns+` ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list orders: %w", err)
	}
	defer rows.Close()

	list := []orders.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list orders: %w", err)
	}
	return list, nil
}

func (r *Repository) FindBySession(ctx context.Context, sessionID string) (*orders.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, selectColumns+` WHERE session_id = $1`, sessionID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, orders.ErrNotFound
	}
	return o, err
}

func (r *Repository) ClaimConfirmation(ctx context.Context, id string, at time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE orders SET confirmation_sent_at = $2 WHERE id = $1 AND confirmation_sent_at IS NULL`,
		id, at.UTC())
	if err != nil {
		return false, fmt.Errorf("postgres: claim confirmation of %q: %w", id, err)
	}
	if tag.RowsAffected() == 1 {
		return true, nil
	}

	var found bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, id).Scan(&found); err != nil {
		return false, fmt.Errorf("postgres: look up order %q: %w", id, err)
	}
	if !found {
		return false, orders.ErrNotFound
	}
	return false, nil
}

func (r *Repository) ReleaseConfirmation(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE orders SET confirmation_sent_at = NULL WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: release confirmation of %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return orders.ErrNotFound
	}
	return nil
}

func scanOrder(row pgx.Row) (*orders.Order, error) {
	var (
		o                      orders.Order
		status, total          string
		items, customer, extra []byte
		createdAt              time.Time
		confirmedAt            *time.Time
	)
	if err := row.Scan(&o.ID, &o.SessionID, &status, &items, &customer, &total, &o.TraceID, &createdAt, &extra, &confirmedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("postgres: scan order: %w", err)
	}

	o.Status = orders.Status(status)
	o.CreatedAt = createdAt.UTC()
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("postgres: decode items of %q: %w", o.ID, err)
	}
	if err := json.Unmarshal(customer, &o.Customer); err != nil {
		return nil, fmt.Errorf("postgres: decode customer of %q: %w", o.ID, err)
	}
	if len(extra) > 0 {
		if err := json.Unmarshal(extra, &o.Extra); err != nil {
			return nil, fmt.Errorf("postgres: decode extra of %q: %w", o.ID, err)
		}
		if len(o.Extra) == 0 {
			o.Extra = nil
		}
	}
	if confirmedAt != nil {
		at := confirmedAt.UTC()
		o.ConfirmationSentAt = &at
	}
	var err error
	if o.Total, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("postgres: decode total of %q: %w", o.ID, err)
	}
	return &o, nil
}
