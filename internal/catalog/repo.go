package catalog

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("product not found")

// Repository is the catalog store. The order flow only ever reads from it
// (GetByID); the write operations serve the catalog management endpoints.
type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id string) (*Product, error)
	List(ctx context.Context) ([]Product, error)
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) (bool, error)
}
