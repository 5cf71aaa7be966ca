package ports

import (
	"context"
	"errors"

	"github.com/mihindugunarathne/FED-backend/internal/catalog/domain"
)

// ProductRepository exposes persistence operations for catalog products.
type ProductRepository interface {
	Create(ctx context.Context, product domain.Product) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Product, error)
}

// ListFilter narrows product listings by category.
type ListFilter struct {
	CategoryID string
}

// PriceRegistrar registers a product with the payment processor and returns
// the processor-side product and price references.
type PriceRegistrar interface {
	RegisterPrice(ctx context.Context, name, description string, priceCents int64) (productRef, priceRef string, err error)
}

// StockDecrement is a single product's requested stock reduction.
type StockDecrement struct {
	ProductID string
	Quantity  int
}

var (
	// ErrNotFound is returned when the requested product does not exist.
	ErrNotFound = errors.New("product not found")
)
