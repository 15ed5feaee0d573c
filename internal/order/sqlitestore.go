package order

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// SQLiteStore implements Store on top of sqlx with the pure-Go sqlite
// driver. Timestamps are stored as RFC3339 text.
type SQLiteStore struct{ db *sqlx.DB }

func NewSQLiteStore(db *sqlx.DB) *SQLiteStore { return &SQLiteStore{db: db} }

type orderRow struct {
	ID            string `db:"id"`
	CustomerName  string `db:"customer_name"`
	CustomerAddr  string `db:"customer_address"`
	CustomerEmail string `db:"customer_email"`
	CustomerPhone string `db:"customer_phone"`
	PaymentMethod string `db:"payment_method"`
	Size          string `db:"size"`
	Status        string `db:"status"`
	CreatedAt     string `db:"created_at"`
}

func (r orderRow) order() Order {
	ts, _ := time.Parse(time.RFC3339Nano, r.CreatedAt)
	return Order{
		ID:            r.ID,
		CustomerName:  r.CustomerName,
		CustomerAddr:  r.CustomerAddr,
		CustomerEmail: r.CustomerEmail,
		CustomerPhone: r.CustomerPhone,
		PaymentMethod: r.PaymentMethod,
		Size:          r.Size,
		Status:        r.Status,
		CreatedAt:     ts,
	}
}

type itemRow struct {
	ID        string `db:"id"`
	OrderID   string `db:"order_id"`
	ProductID string `db:"product_id"`
	Quantity  int    `db:"quantity"`
	Price     string `db:"price"`
}

func (s *SQLiteStore) Begin(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "begin order tx")
	}
	return &sqliteTx{tx: tx}, nil
}

func (s *SQLiteStore) GetOrder(ctx context.Context, id string) (*Order, error) {
	var r orderRow
	err := s.db.GetContext(ctx, &r, `
	  SELECT id, customer_name, customer_address, customer_email, customer_phone,
	         payment_method, size, status, created_at
	  FROM orders WHERE id = ?
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "get order")
	}
	o := r.order()
	return &o, nil
}

func (s *SQLiteStore) ListItems(ctx context.Context, orderID string) ([]Item, error) {
	var rows []itemRow
	err := s.db.SelectContext(ctx, &rows, `
	  SELECT id, order_id, product_id, quantity, price
	  FROM order_items WHERE order_id = ?
	  ORDER BY rowid
	`, orderID)
	if err != nil {
		return nil, errors.Wrap(err, "list order items")
	}
	var items []Item
	for _, r := range rows {
		items = append(items, Item(r))
	}
	return items, nil
}

func (s *SQLiteStore) ListOrders(ctx context.Context) ([]Order, error) {
	var rows []orderRow
	err := s.db.SelectContext(ctx, &rows, `
	  SELECT id, customer_name, customer_address, customer_email, customer_phone,
	         payment_method, size, status, created_at
	  FROM orders
	  ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	var out []Order
	for _, r := range rows {
		out = append(out, r.order())
	}
	return out, nil
}

func (s *SQLiteStore) UpdateStatus(ctx context.Context, id, status string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE orders SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return 0, errors.Wrap(err, "update order status")
	}
	n, err := res.RowsAffected()
	return n, errors.Wrap(err, "update order status")
}

type sqliteTx struct{ tx *sqlx.Tx }

func (t *sqliteTx) InsertOrder(ctx context.Context, o *Order) error {
	_, err := t.tx.ExecContext(ctx, `
	  INSERT INTO orders (id, customer_name, customer_address, customer_email,
	                      customer_phone, payment_method, size, status, created_at)
	  VALUES (?,?,?,?,?,?,?,?,?)
	`, o.ID, o.CustomerName, o.CustomerAddr, o.CustomerEmail, o.CustomerPhone,
		o.PaymentMethod, o.Size, o.Status, o.CreatedAt.UTC().Format(time.RFC3339Nano))
	return errors.Wrap(err, "insert order")
}

func (t *sqliteTx) InsertItem(ctx context.Context, it *Item) error {
	_, err := t.tx.ExecContext(ctx, `
	  INSERT INTO order_items (id, order_id, product_id, quantity, price)
	  VALUES (?,?,?,?,?)
	`, it.ID, it.OrderID, it.ProductID, it.Quantity, it.Price)
	return errors.Wrap(err, "insert order item")
}

func (t *sqliteTx) DeleteItems(ctx context.Context, orderID string) (int64, error) {
	res, err := t.tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = ?`, orderID)
	if err != nil {
		return 0, errors.Wrap(err, "delete order items")
	}
	n, err := res.RowsAffected()
	return n, errors.Wrap(err, "delete order items")
}

func (t *sqliteTx) DeleteOrder(ctx context.Context, id string) (int64, error) {
	res, err := t.tx.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, id)
	if err != nil {
		return 0, errors.Wrap(err, "delete order")
	}
	n, err := res.RowsAffected()
	return n, errors.Wrap(err, "delete order")
}

func (t *sqliteTx) Commit(context.Context) error {
	return errors.Wrap(t.tx.Commit(), "commit order tx")
}

func (t *sqliteTx) Rollback(context.Context) error {
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return errors.Wrap(err, "rollback order tx")
	}
	return nil
}
