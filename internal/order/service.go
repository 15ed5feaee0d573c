package order

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// Customer is the snapshot recorded on the order at placement time.
type Customer struct {
	Name          string
	Address       string
	Email         string
	Phone         string
	PaymentMethod string
	Size          string
}

// NewItem is one requested line of a new order. Price is optional; when
// blank the snapshot is recorded as 0. The service deliberately does not
// consult the catalog for the live price: the caller-supplied value is
// trusted, matching the behavior of the system this one replaces.
type NewItem struct {
	ProductID string
	Quantity  int
	Price     string
}

// Service orchestrates the transactional order operations. All mutation of
// orders and order items in the process goes through it.
type Service struct {
	store Store
}

func NewService(store Store) *Service { return &Service{store: store} }

// release rolls the transaction back; after a successful Commit this is a
// no-op. A rollback failure is logged but never replaces the error that
// triggered it.
func (s *Service) release(ctx context.Context, tx Tx) {
	if err := tx.Rollback(ctx); err != nil {
		log.WithError(err).Error("order tx rollback failed")
	}
}

// PlaceOrder creates an order together with all its items, atomically: no
// observer ever sees the order without its items or any item without its
// order. Returns the new order id.
func (s *Service) PlaceOrder(ctx context.Context, c Customer, items []NewItem) (string, error) {
	if strings.TrimSpace(c.Name) == "" || strings.TrimSpace(c.Address) == "" {
		return "", errors.Wrap(ErrInvalidInput, "customer name and address are required")
	}
	if len(items) == 0 {
		return "", errors.Wrap(ErrInvalidInput, "order must have at least one item")
	}

	prepared := make([]Item, 0, len(items))
	for _, in := range items {
		if strings.TrimSpace(in.ProductID) == "" {
			return "", errors.Wrap(ErrInvalidInput, "item product id is required")
		}
		if in.Quantity < 1 {
			return "", errors.Wrap(ErrInvalidInput, "item quantity must be positive")
		}
		price, err := normalizePrice(in.Price)
		if err != nil {
			return "", err
		}
		prepared = append(prepared, Item{
			ID:        uuid.NewString(),
			ProductID: in.ProductID,
			Quantity:  in.Quantity,
			Price:     price,
		})
	}

	o := &Order{
		ID:            uuid.NewString(),
		CustomerName:  c.Name,
		CustomerAddr:  c.Address,
		CustomerEmail: c.Email,
		CustomerPhone: c.Phone,
		PaymentMethod: defaulted(c.PaymentMethod, DefaultPaymentMethod),
		Size:          defaulted(c.Size, DefaultSize),
		Status:        StatusPending,
		CreatedAt:     time.Now().UTC(),
	}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer s.release(ctx, tx)

	if err := tx.InsertOrder(ctx, o); err != nil {
		return "", err
	}
	for i := range prepared {
		prepared[i].OrderID = o.ID
		if err := tx.InsertItem(ctx, &prepared[i]); err != nil {
			return "", err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return o.ID, nil
}

// UpdateStatus sets the order's status and returns the number of rows
// affected (always 1 on success). Any recognized status may follow any
// other.
func (s *Service) UpdateStatus(ctx context.Context, id, status string) (int64, error) {
	if strings.TrimSpace(status) == "" {
		return 0, errors.Wrap(ErrInvalidInput, "status is required")
	}
	if !ValidStatus(status) {
		return 0, errors.Wrapf(ErrInvalidInput, "unknown status %q", status)
	}
	n, err := s.store.UpdateStatus(ctx, id, status)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, ErrNotFound
	}
	return n, nil
}

// DeleteOrder removes the order and all its items as a unit.
func (s *Service) DeleteOrder(ctx context.Context, id string) error {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return err
	}
	defer s.release(ctx, tx)

	// Items first: they cannot outlive their order. Zero deleted items is
	// harmless here; existence is decided by the order row below.
	if _, err := tx.DeleteItems(ctx, id); err != nil {
		return err
	}
	n, err := tx.DeleteOrder(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return tx.Commit(ctx)
}

// GetOrder returns the order together with its items.
func (s *Service) GetOrder(ctx context.Context, id string) (*Order, []Item, error) {
	o, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	items, err := s.store.ListItems(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return o, items, nil
}

// ListOrders returns all orders, newest first, without items.
func (s *Service) ListOrders(ctx context.Context) ([]Order, error) {
	return s.store.ListOrders(ctx)
}

func normalizePrice(p string) (string, error) {
	p = strings.TrimSpace(p)
	if p == "" {
		return "0", nil
	}
	d, err := decimal.NewFromString(p)
	if err != nil {
		return "", errors.Wrapf(ErrInvalidInput, "bad item price %q", p)
	}
	if d.IsNegative() {
		return "", errors.Wrapf(ErrInvalidInput, "negative item price %q", p)
	}
	return d.String(), nil
}

func defaulted(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
