package order

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

type PGStore struct{ db *pgxpool.Pool }

func NewPGStore(db *pgxpool.Pool) *PGStore { return &PGStore{db: db} }

func (s *PGStore) Begin(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, errors.Wrap(err, "begin order tx")
	}
	return &pgTx{tx: tx}, nil
}

func (s *PGStore) GetOrder(ctx context.Context, id string) (*Order, error) {
	var o Order
	err := s.db.QueryRow(ctx, `
    SELECT id, customer_name, customer_address, customer_email, customer_phone,
           payment_method, size, status, created_at
    FROM orders WHERE id=$1
  `, id).Scan(&o.ID, &o.CustomerName, &o.CustomerAddr, &o.CustomerEmail,
		&o.CustomerPhone, &o.PaymentMethod, &o.Size, &o.Status, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "get order")
	}
	return &o, nil
}

func (s *PGStore) ListItems(ctx context.Context, orderID string) ([]Item, error) {
	rows, err := s.db.Query(ctx, `
    SELECT id, order_id, product_id, quantity, price::text
    FROM order_items WHERE order_id=$1
    ORDER BY seq
  `, orderID)
	if err != nil {
		return nil, errors.Wrap(err, "list order items")
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.Price); err != nil {
			return nil, errors.Wrap(err, "scan order item")
		}
		items = append(items, it)
	}
	return items, errors.Wrap(rows.Err(), "list order items")
}

func (s *PGStore) ListOrders(ctx context.Context) ([]Order, error) {
	rows, err := s.db.Query(ctx, `
    SELECT id, customer_name, customer_address, customer_email, customer_phone,
           payment_method, size, status, created_at
    FROM orders
    ORDER BY created_at DESC
  `)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.CustomerName, &o.CustomerAddr, &o.CustomerEmail,
			&o.CustomerPhone, &o.PaymentMethod, &o.Size, &o.Status, &o.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan order")
		}
		out = append(out, o)
	}
	return out, errors.Wrap(rows.Err(), "list orders")
}

func (s *PGStore) UpdateStatus(ctx context.Context, id, status string) (int64, error) {
	tag, err := s.db.Exec(ctx, `
    UPDATE orders SET status=$2 WHERE id=$1
  `, id, status)
	if err != nil {
		return 0, errors.Wrap(err, "update order status")
	}
	return tag.RowsAffected(), nil
}

type pgTx struct{ tx pgx.Tx }

func (t *pgTx) InsertOrder(ctx context.Context, o *Order) error {
	_, err := t.tx.Exec(ctx, `
    INSERT INTO orders (id, customer_name, customer_address, customer_email,
                        customer_phone, payment_method, size, status, created_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
  `, o.ID, o.CustomerName, o.CustomerAddr, o.CustomerEmail, o.CustomerPhone,
		o.PaymentMethod, o.Size, o.Status, o.CreatedAt)
	return errors.Wrap(err, "insert order")
}

func (t *pgTx) InsertItem(ctx context.Context, it *Item) error {
	_, err := t.tx.Exec(ctx, `
    INSERT INTO order_items (id, order_id, product_id, quantity, price)
    VALUES ($1,$2,$3,$4,$5)
  `, it.ID, it.OrderID, it.ProductID, it.Quantity, it.Price)
	return errors.Wrap(err, "insert order item")
}

func (t *pgTx) DeleteItems(ctx context.Context, orderID string) (int64, error) {
	tag, err := t.tx.Exec(ctx, `DELETE FROM order_items WHERE order_id=$1`, orderID)
	if err != nil {
		return 0, errors.Wrap(err, "delete order items")
	}
	return tag.RowsAffected(), nil
}

func (t *pgTx) DeleteOrder(ctx context.Context, id string) (int64, error) {
	tag, err := t.tx.Exec(ctx, `DELETE FROM orders WHERE id=$1`, id)
	if err != nil {
		return 0, errors.Wrap(err, "delete order")
	}
	return tag.RowsAffected(), nil
}

func (t *pgTx) Commit(ctx context.Context) error {
	return errors.Wrap(t.tx.Commit(ctx), "commit order tx")
}

func (t *pgTx) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return errors.Wrap(err, "rollback order tx")
	}
	return nil
}
