package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mihindugunarathne/FED-backend/internal/orders/domain"
	"github.com/mihindugunarathne/FED-backend/internal/orders/ports"
)

type FulfillOrderCommand struct {
	SessionID string
	// Session is an already-retrieved session status. When nil, Handle
	// retrieves it from the gateway.
	Session *ports.SessionStatus
}

func (c FulfillOrderCommand) Validate() error {
	if strings.TrimSpace(c.SessionID) == "" {
		return errors.New("session_id is required")
	}
	return nil
}

type FulfillOrderHandler interface {
	Handle(ctx context.Context, cmd FulfillOrderCommand) (*domain.Order, error)
}

// FulfillOrderCommandHandler converts a paid checkout session into a
// confirmed inventory commitment: stock decrements for every line item and
// the PENDING/PENDING -> CONFIRMED/PAID transition commit as one unit, or not
// at all.
type FulfillOrderCommandHandler struct {
	repo     ports.OrderRepository
	checkout ports.CheckoutGateway
	events   ports.EventBus
}

func NewFulfillOrderCommandHandler(
	repo ports.OrderRepository,
	checkout ports.CheckoutGateway,
	events ports.EventBus,
) *FulfillOrderCommandHandler {
	return &FulfillOrderCommandHandler{
		repo:     repo,
		checkout: checkout,
		events:   events,
	}
}

// Handle is safe to call any number of times per session: the first
// successful commit wins and every later call returns the order unchanged.
// An insufficient-stock failure leaves the order PENDING/PENDING so the
// attempt can be retried after restock without double-charging.
func (h *FulfillOrderCommandHandler) Handle(ctx context.Context, cmd FulfillOrderCommand) (*domain.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	session := cmd.Session
	if session == nil {
		var err error
		session, err = h.checkout.GetSession(ctx, cmd.SessionID)
		if err != nil {
			return nil, fmt.Errorf("retrieve checkout session: %w", err)
		}
	}

	order, err := h.repo.GetByID(ctx, session.OrderID)
	if err != nil {
		return nil, err
	}

	// Duplicate webhook delivery or a poll racing a webhook.
	if order.Fulfilled() {
		return order, nil
	}

	// Payment not settled yet, or the order was cancelled before payment
	// completed. Not an error: the caller simply sees the current state.
	if !session.PaymentCompleted || !order.Fulfillable() {
		return order, nil
	}

	if err := h.repo.Fulfill(ctx, order.ID); err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) {
			if pubErr := h.events.PublishFulfillmentFailed(ctx, order.ID, err.Error()); pubErr != nil {
				return nil, errors.Join(err, pubErr)
			}
		}
		return nil, err
	}

	fulfilled, err := h.repo.GetByID(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	if err := h.events.PublishOrderConfirmed(ctx, fulfilled.ID); err != nil {
		return fulfilled, fmt.Errorf("order fulfilled but failed to publish event: %w", err)
	}

	return fulfilled, nil
}
