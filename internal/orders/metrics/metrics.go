package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	ordersCreatedTotal    metric.Int64Counter
	orderCreationDuration metric.Float64Histogram
	ordersFulfilledTotal  metric.Int64Counter
	fulfillmentDuration   metric.Float64Histogram
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.ordersCreatedTotal, err = meter.Int64Counter(
		"orders_created_total",
		metric.WithDescription("Total number of orders created"),
		metric.WithUnit("{order}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create orders_created_total counter: %w", err)
	}

	m.orderCreationDuration, err = meter.Float64Histogram(
		"order_creation_duration_seconds",
		metric.WithDescription("Duration of order creation operations"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create order_creation_duration histogram: %w", err)
	}

	m.ordersFulfilledTotal, err = meter.Int64Counter(
		"orders_fulfilled_total",
		metric.WithDescription("Total number of fulfillment attempts by outcome"),
		metric.WithUnit("{order}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create orders_fulfilled_total counter: %w", err)
	}

	m.fulfillmentDuration, err = meter.Float64Histogram(
		"order_fulfillment_duration_seconds",
		metric.WithDescription("Duration of order fulfillment attempts"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create order_fulfillment_duration histogram: %w", err)
	}

	return m, nil
}

func (m *Metrics) RecordOrderCreated(ctx context.Context, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	m.ordersCreatedTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status", status),
	))
}

func (m *Metrics) RecordOrderCreationDuration(ctx context.Context, durationSeconds float64) {
	m.orderCreationDuration.Record(ctx, durationSeconds)
}

// RecordOrderFulfilled tracks fulfillment attempts. Outcome is one of
// "fulfilled", "noop" (already fulfilled or payment pending),
// "insufficient_stock", or "error".
func (m *Metrics) RecordOrderFulfilled(ctx context.Context, outcome string) {
	m.ordersFulfilledTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
	))
}

func (m *Metrics) RecordFulfillmentDuration(ctx context.Context, durationSeconds float64) {
	m.fulfillmentDuration.Record(ctx, durationSeconds)
}
