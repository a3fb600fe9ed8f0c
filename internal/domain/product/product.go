package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product represents a catalog item available for purchase.
type Product struct {
	ID          string
	Title       string
	Price       decimal.Decimal
	Category    string
	Image       string
	Description string
}

// Repository defines operations on the product catalog. The catalog is
// read-only at runtime; Upsert exists for the seed tool.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	Upsert(ctx context.Context, p *Product) error
}
