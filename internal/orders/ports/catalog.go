package ports

import (
	"context"

	catalog "github.com/mihindugunarathne/FED-backend/internal/catalog/domain"
)

// ProductCatalog is the read side of the catalog needed when snapshotting
// products into an order.
type ProductCatalog interface {
	GetProduct(ctx context.Context, id string) (*catalog.Product, error)
}
