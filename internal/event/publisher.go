// Package event publishes domain events to Kafka. Publishing is best
// effort: failures are logged and never block the operation that produced
// the event.
package event

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/berkaykaya07/BerkayKayaCase/pkg/kafka"
	"github.com/berkaykaya07/BerkayKayaCase/pkg/logger"
)

const (
	TopicOrderPlaced = "browse.order.placed"
	TopicCartUpdated = "browse.cart.updated"

	source = "browse-service"
)

// OrderPlacedPayload is the body of an order.placed event.
type OrderPlacedPayload struct {
	OrderNumber string  `json:"order_number"`
	Email       string  `json:"email"`
	ItemCount   int     `json:"item_count"`
	Subtotal    float64 `json:"subtotal"`
	Tax         float64 `json:"tax"`
	Total       float64 `json:"total"`
}

// CartUpdatedPayload is the body of a cart.updated event.
type CartUpdatedPayload struct {
	ProductID int    `json:"product_id"`
	Action    string `json:"action"`
	Quantity  int    `json:"quantity"`
	ItemCount int    `json:"item_count"`
}

// Publisher emits domain events. Implementations must be safe for
// concurrent use.
type Publisher interface {
	OrderPlaced(ctx context.Context, payload OrderPlacedPayload)
	CartUpdated(ctx context.Context, payload CartUpdatedPayload)
}

// KafkaPublisher publishes events through a Kafka producer.
type KafkaPublisher struct {
	producer *kafka.Producer
	logger   *slog.Logger
}

// NewKafkaPublisher creates a Kafka-backed publisher.
func NewKafkaPublisher(producer *kafka.Producer, logger *slog.Logger) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, logger: logger}
}

// OrderPlaced emits an order.placed event keyed by the order number.
func (p *KafkaPublisher) OrderPlaced(ctx context.Context, payload OrderPlacedPayload) {
	p.publish(ctx, TopicOrderPlaced, "order.placed", payload.OrderNumber, "order", payload)
}

// CartUpdated emits a cart.updated event keyed by the product id.
func (p *KafkaPublisher) CartUpdated(ctx context.Context, payload CartUpdatedPayload) {
	p.publish(ctx, TopicCartUpdated, "cart.updated", strconv.Itoa(payload.ProductID), "cart", payload)
}

func (p *KafkaPublisher) publish(ctx context.Context, topic, eventType, aggregateID, aggregateType string, payload any) {
	evt, err := kafka.NewEvent(eventType, aggregateID, aggregateType, source, payload)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to build event",
			slog.String("event_type", eventType),
			slog.String("error", err.Error()),
		)
		return
	}
	evt.CorrelationID = logger.CorrelationIDFromContext(ctx)

	if err := p.producer.Publish(ctx, topic, evt); err != nil {
		p.logger.WarnContext(ctx, "event publish failed",
			slog.String("topic", topic),
			slog.String("event_type", eventType),
		)
	}
}

// NoopPublisher drops all events. Used when Kafka is disabled.
type NoopPublisher struct{}

func (NoopPublisher) OrderPlaced(context.Context, OrderPlacedPayload) {}
func (NoopPublisher) CartUpdated(context.Context, CartUpdatedPayload) {}
