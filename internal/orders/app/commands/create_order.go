package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mihindugunarathne/FED-backend/internal/orders/domain"
	"github.com/mihindugunarathne/FED-backend/internal/orders/ports"
)

type CreateOrderCommand struct {
	UserID  string
	Items   []CreateOrderItem
	Address domain.Address
}

type CreateOrderItem struct {
	ProductID string
	Quantity  int
}

func (c CreateOrderCommand) Validate() error {
	if strings.TrimSpace(c.UserID) == "" {
		return errors.New("user_id is required")
	}
	if len(c.Items) == 0 {
		return errors.New("order must contain at least one item")
	}
	for _, item := range c.Items {
		if strings.TrimSpace(item.ProductID) == "" {
			return errors.New("item product_id is required")
		}
		if item.Quantity <= 0 {
			return errors.New("item quantity must be positive")
		}
	}
	return c.Address.Validate()
}

type CreateOrderHandler interface {
	Handle(ctx context.Context, cmd CreateOrderCommand) (*domain.Order, error)
}

type CreateOrderCommandHandler struct {
	repo    ports.OrderRepository
	catalog ports.ProductCatalog
	events  ports.EventBus
}

func NewCreateOrderCommandHandler(
	repo ports.OrderRepository,
	catalog ports.ProductCatalog,
	events ports.EventBus,
) *CreateOrderCommandHandler {
	return &CreateOrderCommandHandler{
		repo:    repo,
		catalog: catalog,
		events:  events,
	}
}

// Handle validates the request, snapshots each referenced product into a line
// item, and persists the order in PENDING/PENDING. Prices on the snapshot are
// fixed from this point on regardless of later catalog changes.
func (h *CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (*domain.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	items := make([]domain.LineItem, 0, len(cmd.Items))
	for _, item := range cmd.Items {
		product, err := h.catalog.GetProduct(ctx, item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("resolve product %s: %w", item.ProductID, err)
		}
		items = append(items, domain.LineItem{
			ProductID:     product.ID,
			Name:          product.Name,
			PriceCents:    product.PriceCents,
			StripePriceID: product.StripePriceID,
			Quantity:      item.Quantity,
		})
	}

	now := time.Now().UTC()
	address := cmd.Address
	address.ID = uuid.NewString()

	order := domain.Order{
		ID:            uuid.NewString(),
		UserID:        cmd.UserID,
		Items:         items,
		Address:       address,
		OrderStatus:   domain.StatusPending,
		PaymentStatus: domain.PaymentPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := order.Validate(); err != nil {
		return nil, err
	}

	if err := h.repo.Create(ctx, order); err != nil {
		return nil, err
	}

	if err := h.events.PublishOrderCreated(ctx, order.ID); err != nil {
		return &order, fmt.Errorf("order saved but failed to publish event: %w", err)
	}

	return &order, nil
}
