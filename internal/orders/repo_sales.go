package orders

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SalesRepo keeps the revenue rollups the analytics page reads. Rollups are
// folded in by the analytics consumer, one OrderSubmitted event at a time.
type SalesRepo struct{ DB *pgxpool.Pool }

// AddSale adds one order's total to the daily and monthly rollups.
func (r *SalesRepo) AddSale(ctx context.Context, occurredAt time.Time, totalCents int) error {
	day := occurredAt.UTC().Format("2006-01-02")
	month := occurredAt.UTC().Format("2006-01")

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
		INSERT INTO sales_daily(day, total_cents) VALUES ($1, $2)
		ON CONFLICT (day) DO UPDATE SET total_cents = sales_daily.total_cents + EXCLUDED.total_cents
	`, day, totalCents); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO sales_monthly(month, total_cents) VALUES ($1, $2)
		ON CONFLICT (month) DO UPDATE SET total_cents = sales_monthly.total_cents + EXCLUDED.total_cents
	`, month, totalCents); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Summary returns both rollups keyed by "2006-01-02" and "2006-01".
func (r *SalesRepo) Summary(ctx context.Context) (daily, monthly map[string]int, err error) {
	daily = map[string]int{}
	monthly = map[string]int{}

	rows, err := r.DB.Query(ctx, `SELECT day, total_cents FROM sales_daily ORDER BY day`)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var day string
		var total int
		if err := rows.Scan(&day, &total); err != nil {
			return nil, nil, err
		}
		daily[day] = total
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	mrows, err := r.DB.Query(ctx, `SELECT month, total_cents FROM sales_monthly ORDER BY month`)
	if err != nil {
		return nil, nil, err
	}
	defer mrows.Close()
	for mrows.Next() {
		var month string
		var total int
		if err := mrows.Scan(&month, &total); err != nil {
			return nil, nil, err
		}
		monthly[month] = total
	}
	return daily, monthly, mrows.Err()
}
