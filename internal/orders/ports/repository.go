package ports

import (
	"context"
	"errors"

	"github.com/mihindugunarathne/FED-backend/internal/orders/domain"
)

// OrderRepository exposes persistence operations required by the application layer.
type OrderRepository interface {
	Create(ctx context.Context, order domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error
	SetCheckoutSession(ctx context.Context, id, sessionID string) error

	// Fulfill commits the fulfillment of a pending order as a single atomic
	// unit: every line item's stock is decremented and the order moves to
	// CONFIRMED/PAID, or nothing changes at all. It returns
	// domain.ErrInsufficientStock when any item's requested quantity exceeds
	// the available stock, and nil without side effects when the order has
	// already been fulfilled by a concurrent attempt.
	Fulfill(ctx context.Context, id string) error
}

var (
	// ErrNotFound is returned when the requested order does not exist.
	ErrNotFound = errors.New("order not found")
)
