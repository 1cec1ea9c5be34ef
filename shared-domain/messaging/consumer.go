package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/restaurant-ecommerce/notification-service/internal/pkg/logger"
	"github.com/restaurant-ecommerce/notification-service/shared-domain/events"
	"github.com/streadway/amqp"
)

const retryHeader = "x-retry-count"

type EventHandler func(ctx context.Context, event events.Event) error

type Consumer struct {
	client      *RabbitMQClient
	queueName   string
	serviceName string
}

func NewConsumer(client *RabbitMQClient, queueName, serviceName string) *Consumer {
	return &Consumer{
		client:      client,
		queueName:   queueName,
		serviceName: serviceName,
	}
}

// ConsumeEvents binds the queue to routingKeys and handles deliveries until
// ctx is cancelled or the client is closed. The queue is declared, bound and
// consumed again after every reconnect.
func (c *Consumer) ConsumeEvents(ctx context.Context, routingKeys []string, handler EventHandler) error {
	if !c.client.IsConnected() {
		return ErrNotConnected
	}

	reconnected := c.client.NotifyReconnect(make(chan struct{}, 1))
	subscribe := func() (<-chan amqp.Delivery, error) {
		return c.subscribe(ctx, routingKeys)
	}

	messages, err := subscribe()
	if err != nil {
		return err
	}

	go c.run(ctx, messages, subscribe, reconnected, handler)
	return nil
}

func (c *Consumer) subscribe(ctx context.Context, routingKeys []string) (<-chan amqp.Delivery, error) {
	channel := c.client.Channel()
	if channel == nil {
		return nil, ErrNotConnected
	}

	queue, err := channel.QueueDeclare(
		c.queueName, // name
		true,        // durable
		false,       // delete when unused
		false,       // exclusive
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		return nil, fmt.Errorf("queue declare error: %w", err)
	}

	for _, routingKey := range routingKeys {
		err = channel.QueueBind(
			queue.Name,          // queue name
			routingKey,          // routing key
			c.client.Exchange(), // exchange
			false,               // no-wait
			nil,                 // arguments
		)
		if err != nil {
			return nil, fmt.Errorf("queue bind error (%s): %w", routingKey, err)
		}
		logger.From(ctx).Info("queue bound", "queue", queue.Name, "routing_key", routingKey)
	}

	messages, err := channel.Consume(
		queue.Name,    // queue
		c.serviceName, // consumer
		false,         // auto-ack
		false,         // exclusive
		false,         // no-local
		false,         // no-wait
		nil,           // args
	)
	if err != nil {
		return nil, fmt.Errorf("consume start error: %w", err)
	}

	logger.From(ctx).Info("consuming events", "queue", queue.Name)
	return messages, nil
}

// run handles deliveries and subscribes again whenever reconnected fires. A
// failed subscribe is retried after the client's retry delay.
func (c *Consumer) run(ctx context.Context, messages <-chan amqp.Delivery, subscribe func() (<-chan amqp.Delivery, error), reconnected <-chan struct{}, handler EventHandler) {
	log := logger.From(ctx).With("consumer", c.serviceName)

	var retry <-chan time.Time
	resubscribe := func() {
		next, err := subscribe()
		if err != nil {
			log.Error("resubscribe failed", "error", err)
			retry = time.After(c.client.config.RetryDelay)
			return
		}
		retry = nil
		messages = next
		log.Info("consumer resubscribed")
	}

	for {
		select {
		case msg, ok := <-messages:
			if !ok {
				log.Warn("delivery channel closed, waiting for reconnect")
				messages = nil
				continue
			}
			c.handleMessage(ctx, msg, handler)
		case <-reconnected:
			resubscribe()
		case <-retry:
			resubscribe()
		case <-ctx.Done():
			log.Info("consumer stopped")
			return
		case <-c.client.Done():
			log.Info("consumer stopped")
			return
		}
	}
}

func (c *Consumer) handleMessage(ctx context.Context, msg amqp.Delivery, handler EventHandler) {
	log := logger.From(ctx)
	var event events.Event

	if err := json.Unmarshal(msg.Body, &event); err != nil {
		log.Error("event deserialize failed", "routing_key", msg.RoutingKey, "error", err)
		msg.Nack(false, false)
		return
	}
	if event.EventType == "" {
		event.EventType = events.EventType(msg.RoutingKey)
	}

	log = log.With("event_type", event.EventType, "event_id", event.ID, "source", event.Service)
	log.Info("event received")

	if err := handler(ctx, event); err != nil {
		log.Warn("event processing failed", "error", err)

		attempts := retryCount(msg.Headers)
		if shouldRetry(attempts, c.client.config.MaxDeliveries) {
			c.republish(ctx, msg, attempts+1)
		} else {
			log.Error("max deliveries reached, event dropped", "attempts", attempts+1)
			msg.Nack(false, false)
		}
		return
	}

	msg.Ack(false)
	log.Info("event processed")
}

func (c *Consumer) republish(ctx context.Context, msg amqp.Delivery, attempt int) {
	channel := c.client.Channel()
	if channel == nil {
		logger.From(ctx).Error("retry publish failed", "routing_key", msg.RoutingKey, "error", ErrNotConnected)
		msg.Nack(false, false)
		return
	}

	headers := amqp.Table{}
	for k, v := range msg.Headers {
		headers[k] = v
	}
	headers[retryHeader] = int32(attempt)

	err := channel.Publish(
		msg.Exchange,
		msg.RoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  msg.ContentType,
			Body:         msg.Body,
			DeliveryMode: msg.DeliveryMode,
			MessageId:    msg.MessageId,
			Headers:      headers,
		},
	)
	if err != nil {
		logger.From(ctx).Error("retry publish failed", "routing_key", msg.RoutingKey, "error", err)
		msg.Nack(false, false)
		return
	}

	msg.Ack(false)
	logger.From(ctx).Info("event republished for retry", "routing_key", msg.RoutingKey, "attempt", attempt)
}

func retryCount(headers amqp.Table) int {
	switch v := headers[retryHeader].(type) {
	case int32:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	}
	return 0
}

func shouldRetry(attempts, max int) bool {
	return attempts+1 < max
}
