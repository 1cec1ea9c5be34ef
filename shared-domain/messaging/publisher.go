package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/restaurant-ecommerce/notification-service/internal/pkg/logger"
	"github.com/restaurant-ecommerce/notification-service/shared-domain/events"
	"github.com/streadway/amqp"
)

type Publisher struct {
	client *RabbitMQClient
	mu     sync.Mutex
}

func NewPublisher(client *RabbitMQClient) *Publisher {
	return &Publisher{
		client: client,
	}
}

func (p *Publisher) PublishEvent(ctx context.Context, event events.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !p.client.IsConnected() {
		return ErrNotConnected
	}

	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("event serialization error: %w", err)
	}

	routingKey := events.RoutingKey(event.Service, event.EventType)

	p.mu.Lock()
	defer p.mu.Unlock()

	channel := p.client.Channel()
	if channel == nil {
		return ErrNotConnected
	}
	err = channel.Publish(
		p.client.Exchange(),
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			MessageId:    event.ID.String(),
			Timestamp:    event.Timestamp,
			Headers: amqp.Table{
				"order_id":       event.OrderID,
				"correlation_id": event.CorrelationID.String(),
				"service":        event.Service,
				"event_type":     string(event.EventType),
			},
		},
	)

	if err != nil {
		return fmt.Errorf("event publish error: %w", err)
	}

	logger.From(ctx).Debug("event published", "routing_key", routingKey, "event_id", event.ID)
	return nil
}
