package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

var (
	ErrNotFound      = errors.New("order not found")
	ErrBadTransition = errors.New("invalid status transition")
)

// SaveOrder persists a submitted order with its items. Idempotent on
// receipt_id: re-saving an existing order is a no-op.
func (r *Repo) SaveOrder(ctx context.Context, o Order, items []ItemLine) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ct, err := tx.Exec(ctx, `
		INSERT INTO orders(receipt_id, session_ref, status, subtotal_cents, discount_cents, total_cents)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (receipt_id) DO NOTHING
	`, o.ReceiptID, o.SessionRef, string(StatusSubmitted), o.SubtotalCents, o.DiscountCents, o.TotalCents)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return nil // already saved
	}

	for _, it := range items {
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_items(receipt_id, code, name, variant, price_cents, qty)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			o.ReceiptID, it.Code, it.Name, it.Variant, it.PriceCents, it.Qty,
		); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *Repo) GetOrder(ctx context.Context, receiptID string) (Order, error) {
	var o Order
	var status string
	err := r.DB.QueryRow(ctx, `
		SELECT receipt_id, session_ref, status, subtotal_cents, discount_cents, total_cents, created_at, updated_at
		FROM orders WHERE receipt_id=$1`, receiptID).
		Scan(&o.ReceiptID, &o.SessionRef, &status, &o.SubtotalCents, &o.DiscountCents, &o.TotalCents, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, err
	}
	o.Status = Status(status)
	return o, nil
}

func (r *Repo) GetStatus(ctx context.Context, receiptID string) (Status, error) {
	var s string
	err := r.DB.QueryRow(ctx, `SELECT status FROM orders WHERE receipt_id=$1`, receiptID).Scan(&s)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return Status(s), nil
}

// UpdateStatus moves an order along the status machine, rejecting transitions
// the table in status.go does not allow.
func (r *Repo) UpdateStatus(ctx context.Context, receiptID string, to Status) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var cur string
	err = tx.QueryRow(ctx, `SELECT status FROM orders WHERE receipt_id=$1 FOR UPDATE`, receiptID).Scan(&cur)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if !CanTransition(Status(cur), to) {
		return fmt.Errorf("%w: %s -> %s", ErrBadTransition, cur, to)
	}
	if _, err := tx.Exec(ctx, `UPDATE orders SET status=$2, updated_at=now() WHERE receipt_id=$1`, receiptID, string(to)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
