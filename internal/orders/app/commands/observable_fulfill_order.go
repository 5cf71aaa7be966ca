package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mihindugunarathne/FED-backend/internal/orders/domain"
	"github.com/mihindugunarathne/FED-backend/internal/orders/metrics"
	"github.com/mihindugunarathne/FED-backend/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

type ObservableFulfillOrderHandler struct {
	handler FulfillOrderHandler
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewObservableFulfillOrderHandler(handler FulfillOrderHandler, logger *slog.Logger, metrics *metrics.Metrics) *ObservableFulfillOrderHandler {
	return &ObservableFulfillOrderHandler{
		handler: handler,
		logger:  logger,
		metrics: metrics,
	}
}

func (o *ObservableFulfillOrderHandler) Handle(ctx context.Context, cmd FulfillOrderCommand) (*domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "FulfillOrderCommand.Handle")
	defer span.End()

	start := time.Now()
	outcome := "error"
	defer func() {
		duration := time.Since(start).Seconds()
		o.metrics.RecordFulfillmentDuration(ctx, duration)
		o.metrics.RecordOrderFulfilled(ctx, outcome)
	}()

	o.logger.InfoContext(ctx, "fulfilling order",
		"session_id", cmd.SessionID,
	)

	order, err := o.handler.Handle(ctx, cmd)

	if err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) {
			outcome = "insufficient_stock"
		}
		telemetry.RecordSpanError(span, err)
		o.logger.ErrorContext(ctx, "failed to fulfill order",
			"error", err,
			"session_id", cmd.SessionID,
		)
		return nil, err
	}

	if order.Fulfilled() {
		outcome = "fulfilled"
	} else {
		outcome = "noop"
	}

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", order.ID),
		attribute.String("order.status", string(order.OrderStatus)),
		attribute.String("order.payment_status", string(order.PaymentStatus)),
		attribute.String("checkout.session_id", cmd.SessionID),
	)

	o.logger.InfoContext(ctx, "fulfillment attempt finished",
		"order_id", order.ID,
		"order_status", order.OrderStatus,
		"payment_status", order.PaymentStatus,
	)

	telemetry.SetSpanSuccess(span)

	return order, nil
}
