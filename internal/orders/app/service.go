package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mihindugunarathne/FED-backend/internal/orders/app/commands"
	"github.com/mihindugunarathne/FED-backend/internal/orders/app/queries"
	"github.com/mihindugunarathne/FED-backend/internal/orders/domain"
	"github.com/mihindugunarathne/FED-backend/internal/orders/metrics"
	"github.com/mihindugunarathne/FED-backend/internal/orders/ports"
)

// ErrForbidden is returned when the caller is not allowed to act on the order.
var ErrForbidden = errors.New("order belongs to another user")

// Service bundles use cases for handling orders via the API.
type Service struct {
	repo                ports.OrderRepository
	checkout            ports.CheckoutGateway
	events              ports.EventBus
	idemStore           ports.IdempotencyStore
	createOrderHandler  commands.CreateOrderHandler
	fulfillOrderHandler commands.FulfillOrderHandler
	getOrderHandler     *queries.GetOrderQueryHandler
	listOrdersHandler   *queries.ListUserOrdersQueryHandler
}

// NewService wires required dependencies.
func NewService(
	repo ports.OrderRepository,
	catalog ports.ProductCatalog,
	checkout ports.CheckoutGateway,
	events ports.EventBus,
	idem ports.IdempotencyStore,
	logger *slog.Logger,
	metrics *metrics.Metrics,
) *Service {
	createHandler := commands.NewObservableCreateOrderHandler(
		commands.NewCreateOrderCommandHandler(repo, catalog, events), logger, metrics)
	fulfillHandler := commands.NewObservableFulfillOrderHandler(
		commands.NewFulfillOrderCommandHandler(repo, checkout, events), logger, metrics)

	return &Service{
		repo:                repo,
		checkout:            checkout,
		events:              events,
		idemStore:           idem,
		createOrderHandler:  createHandler,
		fulfillOrderHandler: fulfillHandler,
		getOrderHandler:     queries.NewGetOrderQueryHandler(repo),
		listOrdersHandler:   queries.NewListUserOrdersQueryHandler(repo),
	}
}

// CreateOrderInput captures payload for creating an order. The user ID comes
// from the verified principal at the boundary, never from the payload.
type CreateOrderInput struct {
	UserID  string
	Items   []commands.CreateOrderItem
	Address domain.Address
}

// CreateOrder orchestrates order creation and event emission.
func (s *Service) CreateOrder(ctx context.Context, input CreateOrderInput) (*domain.Order, error) {
	cmd := commands.CreateOrderCommand{
		UserID:  input.UserID,
		Items:   input.Items,
		Address: input.Address,
	}
	return s.createOrderHandler.Handle(ctx, cmd)
}

// Fulfill converts a completed checkout session into a confirmed order.
// Safe to call repeatedly for the same session.
func (s *Service) Fulfill(ctx context.Context, sessionID string) (*domain.Order, error) {
	return s.fulfillOrderHandler.Handle(ctx, commands.FulfillOrderCommand{SessionID: sessionID})
}

// GetOrder retrieves an order by ID on behalf of a user. Admins may read any
// order; other callers only their own.
func (s *Service) GetOrder(ctx context.Context, id, userID string, admin bool) (*domain.Order, error) {
	order, err := s.getOrderHandler.Handle(ctx, queries.GetOrderQuery{OrderID: id})
	if err != nil {
		return nil, err
	}
	if !admin && order.UserID != userID {
		return nil, ErrForbidden
	}
	return order, nil
}

// ListUserOrders returns the caller's orders, most recent first.
func (s *Service) ListUserOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.listOrdersHandler.Handle(ctx, queries.ListUserOrdersQuery{UserID: userID})
}

// CancelOrder attempts to cancel a pending order owned by the caller.
func (s *Service) CancelOrder(ctx context.Context, id, userID string) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if order.UserID != userID {
		return nil, ErrForbidden
	}

	if !order.Cancellable() {
		return nil, fmt.Errorf("cannot cancel order in status %s/%s", order.OrderStatus, order.PaymentStatus)
	}

	if err := s.repo.UpdateStatus(ctx, id, domain.StatusCancelled); err != nil {
		return nil, err
	}

	order.OrderStatus = domain.StatusCancelled
	order.UpdatedAt = time.Now().UTC()

	return order, nil
}

// CreateCheckoutSession opens a payment session for a pending order and
// records the session reference on the order.
func (s *Service) CreateCheckoutSession(ctx context.Context, orderID, userID string) (*ports.CheckoutSession, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.UserID != userID {
		return nil, ErrForbidden
	}

	if !order.Fulfillable() {
		return nil, fmt.Errorf("cannot open checkout for order in status %s/%s", order.OrderStatus, order.PaymentStatus)
	}

	session, err := s.checkout.CreateSession(ctx, *order)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	if err := s.repo.SetCheckoutSession(ctx, order.ID, session.ID); err != nil {
		return nil, err
	}

	return session, nil
}

// CheckoutStatus is the poll response for a checkout session.
type CheckoutStatus struct {
	OrderID       string               `json:"order_id"`
	OrderStatus   domain.OrderStatus   `json:"order_status"`
	PaymentStatus domain.PaymentStatus `json:"payment_status"`
	SessionStatus string               `json:"session_status"`
	CustomerEmail string               `json:"customer_email,omitempty"`
}

// GetCheckoutStatus reports the state of a checkout session, fulfilling the
// order first if the processor says the payment completed. Polling is the
// fallback ingress when webhook delivery is delayed or lost.
func (s *Service) GetCheckoutStatus(ctx context.Context, sessionID string) (*CheckoutStatus, error) {
	session, err := s.checkout.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("retrieve checkout session: %w", err)
	}

	order, err := s.fulfillOrderHandler.Handle(ctx, commands.FulfillOrderCommand{
		SessionID: sessionID,
		Session:   session,
	})
	if err != nil {
		return nil, err
	}

	return &CheckoutStatus{
		OrderID:       order.ID,
		OrderStatus:   order.OrderStatus,
		PaymentStatus: order.PaymentStatus,
		SessionStatus: session.Status,
		CustomerEmail: session.CustomerEmail,
	}, nil
}

// SaveIdempotentResponse writes response details for a key.
func (s *Service) SaveIdempotentResponse(ctx context.Context, key string, response ports.StoredResponse) error {
	return s.idemStore.Save(ctx, key, response)
}

// GetIdempotentResponse retrieves previously stored response data.
func (s *Service) GetIdempotentResponse(ctx context.Context, key string) (*ports.StoredResponse, error) {
	return s.idemStore.Get(ctx, key)
}
