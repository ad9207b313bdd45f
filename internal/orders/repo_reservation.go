package orders

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sokofresh/soko-api/internal/postgres"
)

type ReservationRepo struct{ DB *pgxpool.Pool }

// errShortfall aborts the reservation transaction so WithTx rolls it back.
var errShortfall = errors.New("orders: insufficient stock")

// AllReserved reports whether every line of the order is already RESERVED
// (idempotency short-circuit for replayed events).
func (r *ReservationRepo) AllReserved(ctx context.Context, orderID string, itemCount int) (bool, error) {
	var n int
	err := r.DB.QueryRow(ctx, `
		SELECT COUNT(*) FROM reservations
		WHERE order_id = $1 AND status = 'RESERVED'`, orderID).Scan(&n)
	if err != nil {
		return false, err
	}
	return n == itemCount, nil
}

// ReserveAll locks each product row (FOR UPDATE), decrements stock and records
// the reservation. Any shortfall rolls the whole batch back.
func (r *ReservationRepo) ReserveAll(ctx context.Context, orderID string, items []ItemQty) (ok bool, details []StockRejectedDetail, err error) {
	var rejects []StockRejectedDetail

	err = postgres.WithTx(ctx, r.DB, func(tx pgx.Tx) error {
		for _, it := range items {
			var stock int
			if err := tx.QueryRow(ctx, `SELECT stock FROM products WHERE id=$1 FOR UPDATE`, it.ProductID).Scan(&stock); err != nil {
				return err
			}
			if stock < it.Qty {
				rejects = append(rejects, StockRejectedDetail{
					ProductID: it.ProductID, Required: it.Qty, Available: stock,
				})
				continue
			}

			ct, err := tx.Exec(ctx, `UPDATE products SET stock = stock - $2 WHERE id=$1`, it.ProductID, it.Qty)
			if err != nil {
				return err
			}
			if ct.RowsAffected() != 1 {
				rejects = append(rejects, StockRejectedDetail{
					ProductID: it.ProductID, Required: it.Qty, Available: stock,
				})
				continue
			}

			if _, err := tx.Exec(ctx, `
				INSERT INTO reservations(order_id, product_id, qty, status)
				VALUES ($1,$2,$3,'RESERVED')
				ON CONFLICT (order_id, product_id) DO NOTHING
			`, orderID, it.ProductID, it.Qty); err != nil {
				return err
			}
		}
		if len(rejects) > 0 {
			return errShortfall
		}
		return nil
	})
	if errors.Is(err, errShortfall) {
		return false, rejects, nil
	}
	if err != nil {
		return false, nil, err
	}
	return true, nil, nil
}

// ReleaseAll returns reserved stock to the shelves, e.g. on a failed order.
func (r *ReservationRepo) ReleaseAll(ctx context.Context, orderID string) error {
	return postgres.WithTx(ctx, r.DB, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `SELECT product_id, qty FROM reservations WHERE order_id=$1 AND status='RESERVED'`, orderID)
		if err != nil {
			return err
		}
		defer rows.Close()

		type rec struct {
			pid string
			qty int
		}
		var recs []rec
		for rows.Next() {
			var x rec
			if err := rows.Scan(&x.pid, &x.qty); err != nil {
				return err
			}
			recs = append(recs, x)
		}
		if err := rows.Err(); err != nil {
			return err
		}
		rows.Close()

		for _, x := range recs {
			if _, err := tx.Exec(ctx, `UPDATE products SET stock = stock + $2 WHERE id=$1`, x.pid, x.qty); err != nil {
				return err
			}
		}
		_, err = tx.Exec(ctx, `UPDATE reservations SET status='RELEASED' WHERE order_id=$1 AND status='RESERVED'`, orderID)
		return err
	})
}
