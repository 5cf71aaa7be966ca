package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	TopicOrderCreated      = "orders.created"
	TopicOrderConfirmed    = "orders.confirmed"
	TopicFulfillmentFailed = "orders.fulfillment_failed"
)

type event struct {
	OrderID    string    `json:"order_id"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventBus publishes order lifecycle events to Kafka. One writer is shared
// across topics; the order id keys messages so a single order's events stay
// ordered within a partition.
type EventBus struct {
	writer *kafka.Writer
}

// NewEventBus constructs a producer for the given brokers.
func NewEventBus(brokers []string) *EventBus {
	return &EventBus{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
		},
	}
}

// Close flushes and releases the underlying writer.
func (b *EventBus) Close() error {
	return b.writer.Close()
}

func (b *EventBus) PublishOrderCreated(ctx context.Context, orderID string) error {
	return b.publish(ctx, TopicOrderCreated, event{OrderID: orderID, OccurredAt: time.Now().UTC()})
}

func (b *EventBus) PublishOrderConfirmed(ctx context.Context, orderID string) error {
	return b.publish(ctx, TopicOrderConfirmed, event{OrderID: orderID, OccurredAt: time.Now().UTC()})
}

func (b *EventBus) PublishFulfillmentFailed(ctx context.Context, orderID string, reason string) error {
	return b.publish(ctx, TopicFulfillmentFailed, event{OrderID: orderID, Reason: reason, OccurredAt: time.Now().UTC()})
}

func (b *EventBus) publish(ctx context.Context, topic string, evt event) error {
	value, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", topic, err)
	}

	err = b.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(evt.OrderID),
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	return nil
}
