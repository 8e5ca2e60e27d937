// Package sqlite provides a SQLite-backed orders.Log.
//
// WAL mode is enabled on Open so list requests never block the settlement
// write path.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/sleepwell-storefront/internal/orders"

	// Pure-Go driver, no CGO needed.
	_ "modernc.org/sqlite"
)

// The table is append-only; session_id is unique among settled orders only.
const schema = `
CREATE TABLE IF NOT EXISTS orders (
    seq         INTEGER PRIMARY KEY AUTOINCREMENT,
    id          TEXT    NOT NULL UNIQUE,
    session_id  TEXT,
    status      TEXT    NOT NULL,
    items       TEXT    NOT NULL DEFAULT '[]',
    customer    TEXT    NOT NULL DEFAULT '{}',
    total       TEXT    NOT NULL DEFAULT '0',
    trace_id    TEXT    NOT NULL DEFAULT '',
    created_at  TEXT    NOT NULL,
    extra       TEXT    NOT NULL DEFAULT '{}',
    confirmation_sent_at TEXT
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_session_id ON orders(session_id) WHERE session_id IS NOT NULL;
`

type Repository struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
func Open(path string) (*Repository, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	// Single writer.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) Append(ctx context.Context, o *orders.Order) error {
	items, customer, extra, err := encode(o)
	if err != nil {
		return err
	}

	const q = `
		INSERT INTO orders (id, session_id, status, items, customer, total, trace_id, created_at, extra, confirmation_sent_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = r.db.ExecContext(ctx, q,
		o.ID,
		nullableString(o.SessionID),
		string(o.Status),
		items,
		customer,
		o.Total.String(),
		o.TraceID,
		formatTime(o.CreatedAt),
		extra,
		nullableTime(o.ConfirmationSentAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite: append order %q: %w", o.ID, err)
	}
	return nil
}

const selectColumns = `SELECT id, COALESCE(session_id, ''), status, items, customer, total, trace_id, created_at,
	extra, COALESCE(confirmation_sent_at, '') FROM orders`

func (r *Repository) List(ctx context.Context) ([]orders.Order, error) {
	rows, err := r.db.QueryContext(ctx, selectColumns+` ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list orders: %w", err)
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
		return nil, fmt.Errorf("sqlite: list orders: %w", err)
	}
	return list, nil
}

func (r *Repository) FindBySession(ctx context.Context, sessionID string) (*orders.Order, error) {
	row := r.db.QueryRowContext(ctx, selectColumns+` WHERE session_id = ? LIMIT 1`, sessionID)
	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, orders.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *Repository) ClaimConfirmation(ctx context.Context, id string, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET confirmation_sent_at = ? WHERE id = ? AND confirmation_sent_at IS NULL`,
		formatTime(at), id)
	if err != nil {
		return false, fmt.Errorf("sqlite: claim confirmation of %q: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: claim confirmation of %q: %w", id, err)
	}
	if n == 1 {
		return true, nil
	}
	return false, r.exists(ctx, id)
}

func (r *Repository) ReleaseConfirmation(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE orders SET confirmation_sent_at = NULL WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: release confirmation of %q: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return orders.ErrNotFound
	}
	return nil
}

// exists returns orders.ErrNotFound when no order has id.
func (r *Repository) exists(ctx context.Context, id string) error {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM orders WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return orders.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("sqlite: look up order %q: %w", id, err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(s scanner) (*orders.Order, error) {
	var (
		o                            orders.Order
		items, customer, total, when string
		extra, confirmed             string
	)
	err := s.Scan(&o.ID, &o.SessionID, &o.Status, &items, &customer, &total, &o.TraceID, &when, &extra, &confirmed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("sqlite: scan order: %w", err)
	}

	if err := json.Unmarshal([]byte(items), &o.Items); err != nil {
		return nil, fmt.Errorf("sqlite: decode items of %q: %w", o.ID, err)
	}
	if err := json.Unmarshal([]byte(customer), &o.Customer); err != nil {
		return nil, fmt.Errorf("sqlite: decode customer of %q: %w", o.ID, err)
	}
	if o.Total, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("sqlite: decode total of %q: %w", o.ID, err)
	}
	if o.CreatedAt, err = parseRFC3339(when); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(extra), &o.Extra); err != nil {
		return nil, fmt.Errorf("sqlite: decode extra of %q: %w", o.ID, err)
	}
	if len(o.Extra) == 0 {
		o.Extra = nil
	}
	if confirmed != "" {
		at, err := parseRFC3339(confirmed)
		if err != nil {
			return nil, err
		}
		o.ConfirmationSentAt = &at
	}
	return &o, nil
}

func encode(o *orders.Order) (items, customer, extra string, err error) {
	ib, err := json.Marshal(o.Items)
	if err != nil {
		return "", "", "", fmt.Errorf("sqlite: encode items: %w", err)
	}
	cb, err := json.Marshal(o.Customer)
	if err != nil {
		return "", "", "", fmt.Errorf("sqlite: encode customer: %w", err)
	}
	extra = "{}"
	if len(o.Extra) > 0 {
		eb, err := json.Marshal(o.Extra)
		if err != nil {
			return "", "", "", fmt.Errorf("sqlite: encode extra: %w", err)
		}
		extra = string(eb)
	}
	return string(ib), string(cb), extra, nil
}

// nullableString keeps manual orders (no session) out of the unique index.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}
