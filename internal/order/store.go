package order

import (
	"context"
	"errors"
)

var (
	ErrNotFound     = errors.New("order not found")
	ErrInvalidInput = errors.New("invalid input")
)

// Store is the low-level persistence contract for orders. It is consumed
// only by Service; handlers never touch it directly.
//
// Multi-statement writes go through Begin: the returned Tx must be released
// with Commit or Rollback on every exit path. UpdateStatus is a single
// auto-committed statement, so it lives on the store itself.
type Store interface {
	Begin(ctx context.Context) (Tx, error)

	GetOrder(ctx context.Context, id string) (*Order, error)
	ListItems(ctx context.Context, orderID string) ([]Item, error)
	ListOrders(ctx context.Context) ([]Order, error)

	// UpdateStatus returns the number of rows affected (0 when the order
	// does not exist).
	UpdateStatus(ctx context.Context, id, status string) (int64, error)
}

// Tx is a unit of work: every write made through it becomes visible
// atomically on Commit or not at all on Rollback.
//
// Rollback after a successful Commit is a no-op returning nil, so callers
// can release the transaction with a single deferred Rollback.
type Tx interface {
	InsertOrder(ctx context.Context, o *Order) error
	InsertItem(ctx context.Context, it *Item) error
	DeleteItems(ctx context.Context, orderID string) (int64, error)
	DeleteOrder(ctx context.Context, id string) (int64, error)

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
