package adapters

import (
	"context"
	"time"

	"github.com/mihindugunarathne/FED-backend/internal/kafka"
	"github.com/mihindugunarathne/FED-backend/internal/orders/ports"
	"github.com/mihindugunarathne/FED-backend/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// ObservableEventBus wraps an event bus with spans and producer metrics.
type ObservableEventBus struct {
	bus     ports.EventBus
	metrics *kafka.Metrics
}

func NewObservableEventBus(bus ports.EventBus, metrics *kafka.Metrics) *ObservableEventBus {
	return &ObservableEventBus{
		bus:     bus,
		metrics: metrics,
	}
}

func (e *ObservableEventBus) PublishOrderCreated(ctx context.Context, orderID string) error {
	return e.publish(ctx, "EventBus.PublishOrderCreated", kafka.TopicOrderCreated, orderID, "", e.bus.PublishOrderCreated)
}

func (e *ObservableEventBus) PublishOrderConfirmed(ctx context.Context, orderID string) error {
	return e.publish(ctx, "EventBus.PublishOrderConfirmed", kafka.TopicOrderConfirmed, orderID, "", e.bus.PublishOrderConfirmed)
}

func (e *ObservableEventBus) PublishFulfillmentFailed(ctx context.Context, orderID string, reason string) error {
	publish := func(ctx context.Context, id string) error {
		return e.bus.PublishFulfillmentFailed(ctx, id, reason)
	}
	return e.publish(ctx, "EventBus.PublishFulfillmentFailed", kafka.TopicFulfillmentFailed, orderID, reason, publish)
}

func (e *ObservableEventBus) publish(ctx context.Context, spanName, topic, orderID, reason string, fn func(context.Context, string) error) error {
	ctx, span := telemetry.StartSpan(ctx, spanName)
	defer span.End()

	attrs := []attribute.KeyValue{
		attribute.String("order.id", orderID),
		attribute.String("topic", topic),
	}
	if reason != "" {
		attrs = append(attrs, attribute.String("failure.reason", reason))
	}
	telemetry.AddSpanAttributes(span, attrs...)

	start := time.Now()
	err := fn(ctx, orderID)
	e.metrics.RecordPublish(ctx, topic, time.Since(start).Seconds(), err == nil)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return err
	}

	telemetry.SetSpanSuccess(span)
	return nil
}
