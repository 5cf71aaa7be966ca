package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	catalogmemory "github.com/mihindugunarathne/FED-backend/internal/catalog/adapters/memory"
	catalogports "github.com/mihindugunarathne/FED-backend/internal/catalog/ports"
	"github.com/mihindugunarathne/FED-backend/internal/orders/domain"
	"github.com/mihindugunarathne/FED-backend/internal/orders/ports"
)

// Repository provides an in-memory order store useful for local development
// and tests. Fulfill mirrors the SQL adapter's guarantees: the stock ledger
// applies all decrements or none, and the order lock serializes duplicate
// fulfillment attempts.
type Repository struct {
	mu      sync.RWMutex
	orders  map[string]domain.Order
	catalog *catalogmemory.Repository
}

// NewRepository constructs a new in-memory repository backed by the given
// product store.
func NewRepository(catalog *catalogmemory.Repository) *Repository {
	return &Repository{
		orders:  make(map[string]domain.Order),
		catalog: catalog,
	}
}

// Create stores a new order instance.
func (r *Repository) Create(_ context.Context, order domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[order.ID] = order
	return nil
}

// GetByID fetches a single order by identifier.
func (r *Repository) GetByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	copy := order
	return &copy, nil
}

// ListByUser returns the user's orders, most recent first.
func (r *Repository) ListByUser(_ context.Context, userID string) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []domain.Order
	for _, order := range r.orders {
		if order.UserID == userID {
			result = append(result, order)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}

// UpdateStatus sets the order status and updatedAt timestamp.
func (r *Repository) UpdateStatus(_ context.Context, id string, status domain.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return ports.ErrNotFound
	}

	order.OrderStatus = status
	order.UpdatedAt = time.Now().UTC()
	r.orders[id] = order
	return nil
}

// SetCheckoutSession records the processor session reference on the order.
func (r *Repository) SetCheckoutSession(_ context.Context, id, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return ports.ErrNotFound
	}

	order.CheckoutSessionID = sessionID
	order.UpdatedAt = time.Now().UTC()
	r.orders[id] = order
	return nil
}

// Fulfill decrements stock for every line item and flips the order to
// CONFIRMED/PAID, all-or-nothing. Already-fulfilled orders are a no-op.
func (r *Repository) Fulfill(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return ports.ErrNotFound
	}

	if order.PaymentStatus == domain.PaymentPaid {
		return nil
	}
	if !order.Fulfillable() {
		return nil
	}

	decrements := make([]catalogports.StockDecrement, 0, len(order.Items))
	for _, item := range order.Items {
		decrements = append(decrements, catalogports.StockDecrement{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	if err := r.catalog.DecrementAll(ctx, decrements); err != nil {
		return err
	}

	order.OrderStatus = domain.StatusConfirmed
	order.PaymentStatus = domain.PaymentPaid
	order.UpdatedAt = time.Now().UTC()
	r.orders[id] = order
	return nil
}
