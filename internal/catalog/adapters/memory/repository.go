package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/mihindugunarathne/FED-backend/internal/catalog/domain"
	"github.com/mihindugunarathne/FED-backend/internal/catalog/ports"
	ordersdomain "github.com/mihindugunarathne/FED-backend/internal/orders/domain"
)

// Repository provides an in-memory product store useful for local development
// and tests. It doubles as the stock ledger for the in-memory order
// repository: DecrementAll applies a set of decrements all-or-nothing under a
// single lock, mirroring the transactional guarantee of the SQL adapter.
type Repository struct {
	mu       sync.RWMutex
	products map[string]domain.Product
}

// NewRepository constructs a new in-memory repository.
func NewRepository() *Repository {
	return &Repository{products: make(map[string]domain.Product)}
}

// Create stores a new product.
func (r *Repository) Create(_ context.Context, product domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[product.ID] = product
	return nil
}

// GetByID fetches a single product by identifier.
func (r *Repository) GetByID(_ context.Context, id string) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	product, ok := r.products[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	copy := product
	return &copy, nil
}

// List returns products matching the filter, ordered by name.
func (r *Repository) List(_ context.Context, filter ports.ListFilter) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []domain.Product
	for _, product := range r.products {
		if filter.CategoryID != "" && product.CategoryID != filter.CategoryID {
			continue
		}
		result = append(result, product)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})

	return result, nil
}

// DecrementAll applies every decrement or none: if any product is missing or
// short on stock, no stock changes.
func (r *Repository) DecrementAll(_ context.Context, decrements []ports.StockDecrement) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, d := range decrements {
		product, ok := r.products[d.ProductID]
		if !ok {
			return fmt.Errorf("product %s: %w", d.ProductID, ports.ErrNotFound)
		}
		if product.Stock < d.Quantity {
			return fmt.Errorf("product %s: %w", d.ProductID, ordersdomain.ErrInsufficientStock)
		}
	}

	for _, d := range decrements {
		product := r.products[d.ProductID]
		product.Stock -= d.Quantity
		r.products[d.ProductID] = product
	}

	return nil
}
