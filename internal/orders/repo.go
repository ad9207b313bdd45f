package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/sokofresh/soko-api/internal/postgres"
)

type Repo struct{ DB *pgxpool.Pool }

var ErrNotFound = errors.New("orders: not found")

// Create is idempotent by payment reference: resubmitting the same confirmed
// checkout returns the existing order instead of inserting a duplicate.
// Prices come from the products table, never from the client.
func (r *Repo) Create(ctx context.Context, d Draft) (orderID string, existed bool, err error) {
	row := r.DB.QueryRow(ctx, `SELECT id FROM orders WHERE reference=$1`, d.Reference)
	if err = row.Scan(&orderID); err == nil {
		return orderID, true, nil
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return "", false, err
	}

	orderID = uuid.NewString()
	err = postgres.WithTx(ctx, r.DB, func(tx pgx.Tx) error {
		// resolve current prices for every line
		ids := make([]any, 0, len(d.Items))
		params := ""
		for i, it := range d.Items {
			if i > 0 {
				params += ","
			}
			params += fmt.Sprintf("$%d", i+1)
			ids = append(ids, it.ProductID)
		}
		rows, err := tx.Query(ctx, `SELECT id, price FROM products WHERE id IN (`+params+`)`, ids...)
		if err != nil {
			return err
		}
		defer rows.Close()

		prices := map[string]decimal.Decimal{}
		for rows.Next() {
			var id string
			var price decimal.Decimal
			if err := rows.Scan(&id, &price); err != nil {
				return err
			}
			prices[id] = price
		}
		if err := rows.Err(); err != nil {
			return err
		}

		for _, it := range d.Items {
			if _, ok := prices[it.ProductID]; !ok {
				return fmt.Errorf("product not found: %s", it.ProductID)
			}
			if it.Qty <= 0 {
				return fmt.Errorf("invalid qty for product %s", it.ProductID)
			}
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO orders(id, reference, customer_id, status, mode, location_id,
			                   instructions, fee, total, payment_method, payment_phone)
			VALUES ($1,$2,$3,'CREATED',$4,$5,$6,$7,$8,$9,NULLIF($10,''))`,
			orderID, d.Reference, d.CustomerID, string(d.Mode), d.LocationID,
			d.Instructions, d.Fee, d.Total, d.PaymentMethod, d.PaymentPhone)
		if err != nil {
			return err
		}

		for _, it := range d.Items {
			_, err = tx.Exec(ctx, `
				INSERT INTO order_items(id, order_id, product_id, store_id, qty, price)
				VALUES ($1,$2,$3,$4,$5,$6)`,
				uuid.NewString(), orderID, it.ProductID, it.StoreID, it.Qty, prices[it.ProductID])
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", false, err
	}
	return orderID, false, nil
}

func (r *Repo) GetStatus(ctx context.Context, orderID string) (Status, error) {
	var s string
	err := r.DB.QueryRow(ctx, `SELECT status FROM orders WHERE id=$1`, orderID).Scan(&s)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return Status(s), nil
}

func (r *Repo) Get(ctx context.Context, orderID string) (Order, []OrderItem, error) {
	var o Order
	var status, mode string
	err := r.DB.QueryRow(ctx, `
		SELECT id, reference, customer_id, status, mode, location_id,
		       COALESCE(instructions,''), fee, total, payment_method,
		       COALESCE(payment_phone,''), created_at, updated_at
		FROM orders WHERE id=$1`, orderID).
		Scan(&o.ID, &o.Reference, &o.CustomerID, &status, &mode, &o.LocationID,
			&o.Instructions, &o.Fee, &o.Total, &o.PaymentMethod,
			&o.PaymentPhone, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, nil, ErrNotFound
	}
	if err != nil {
		return Order{}, nil, err
	}
	o.Status = Status(status)
	o.Mode = FulfilmentMode(mode)

	rows, err := r.DB.Query(ctx, `
		SELECT id, order_id, product_id, store_id, qty, price
		FROM order_items WHERE order_id=$1`, orderID)
	if err != nil {
		return Order{}, nil, err
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.StoreID, &it.Qty, &it.Price); err != nil {
			return Order{}, nil, err
		}
		items = append(items, it)
	}
	return o, items, rows.Err()
}

func (r *Repo) ListByCustomer(ctx context.Context, customerID string) ([]Order, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, reference, customer_id, status, mode, location_id,
		       COALESCE(instructions,''), fee, total, payment_method,
		       COALESCE(payment_phone,''), created_at, updated_at
		FROM orders WHERE customer_id=$1 ORDER BY created_at DESC`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		var o Order
		var status, mode string
		if err := rows.Scan(&o.ID, &o.Reference, &o.CustomerID, &status, &mode, &o.LocationID,
			&o.Instructions, &o.Fee, &o.Total, &o.PaymentMethod,
			&o.PaymentPhone, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		o.Status = Status(status)
		o.Mode = FulfilmentMode(mode)
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *Repo) SetStatus(ctx context.Context, orderID string, to Status) error {
	cur, err := r.GetStatus(ctx, orderID)
	if err != nil {
		return err
	}
	if !CanTransition(cur, to) {
		return fmt.Errorf("invalid transition %s -> %s", cur, to)
	}
	_, err = r.DB.Exec(ctx,
		`UPDATE orders SET status=$2, updated_at=now() WHERE id=$1`, orderID, string(to))
	return err
}
