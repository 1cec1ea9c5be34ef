package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/restaurant-ecommerce/notification-service/internal/pkg/logger"
	"github.com/streadway/amqp"
)

var ErrNotConnected = errors.New("there is no connection to RabbitMQ")

type RabbitMQClient struct {
	config     *RabbitMQConfig
	connection *amqp.Connection
	channel    *amqp.Channel
	mu         sync.RWMutex
	isClosing  bool
	ctx        context.Context
	cancel     context.CancelFunc

	reconnectListeners []chan struct{}
}

func NewRabbitMQClient(config *RabbitMQConfig) *RabbitMQClient {
	ctx, cancel := context.WithCancel(context.Background())

	return &RabbitMQClient{
		config: config,
		ctx:    ctx,
		cancel: cancel,
	}
}

func (r *RabbitMQClient) Exchange() string {
	return r.config.Exchange
}

func (r *RabbitMQClient) Connect() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var err error
	for i := 0; i < r.config.RetryCount; i++ {
		r.connection, err = amqp.DialConfig(r.config.ConnectionURL(), amqp.Config{
			Dial: amqp.DefaultDial(r.config.ConnectionTimeout),
		})
		if err != nil {
			logger.From(r.ctx).Warn("rabbitmq connection failed",
				"attempt", i+1, "max_attempts", r.config.RetryCount, "error", err)
			if i < r.config.RetryCount-1 {
				time.Sleep(r.config.RetryDelay)
				continue
			}
			return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}

		r.channel, err = r.connection.Channel()
		if err != nil {
			r.connection.Close()
			return fmt.Errorf("failed to open RabbitMQ channel: %w", err)
		}

		err = r.channel.ExchangeDeclare(
			r.config.Exchange, // name
			"topic",           // type
			true,              // durable
			false,             // auto-deleted
			false,             // internal
			false,             // no-wait
			nil,               // arguments
		)
		if err != nil {
			r.channel.Close()
			r.connection.Close()
			return fmt.Errorf("failed to declare exchange: %w", err)
		}

		logger.From(r.ctx).Info("connected to rabbitmq", "exchange", r.config.Exchange)

		go r.handleReconnection(r.connection)

		return nil
	}

	return err
}

func (r *RabbitMQClient) handleReconnection(conn *amqp.Connection) {
	notifyClose := conn.NotifyClose(make(chan *amqp.Error, 1))

	select {
	case err := <-notifyClose:
		if r.closing() || err == nil {
			return
		}
		logger.From(r.ctx).Warn("rabbitmq connection lost, reconnecting", "error", err)
	case <-r.ctx.Done():
		return
	}

	for {
		select {
		case <-time.After(2 * time.Second):
		case <-r.ctx.Done():
			return
		}
		if r.closing() {
			return
		}
		if err := r.Connect(); err != nil {
			logger.From(r.ctx).Error("rabbitmq reconnect failed", "error", err)
			continue
		}
		r.notifyReconnected()
		return
	}
}

// NotifyReconnect registers ch to receive a signal after every successful
// reconnect. Signals are dropped when ch is full, so give it a buffer.
func (r *RabbitMQClient) NotifyReconnect(ch chan struct{}) chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reconnectListeners = append(r.reconnectListeners, ch)
	return ch
}

func (r *RabbitMQClient) notifyReconnected() {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, ch := range r.reconnectListeners {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (r *RabbitMQClient) closing() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.isClosing
}

func (r *RabbitMQClient) Channel() *amqp.Channel {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.channel
}

// Done is closed when the client is closed.
func (r *RabbitMQClient) Done() <-chan struct{} {
	return r.ctx.Done()
}

func (r *RabbitMQClient) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.isClosing {
		return nil
	}

	r.isClosing = true
	r.cancel()

	var errs []error
	if r.channel != nil {
		if err := r.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("channel close error: %w", err))
		}
	}
	if r.connection != nil {
		if err := r.connection.Close(); err != nil {
			errs = append(errs, fmt.Errorf("connection close error: %w", err))
		}
	}

	closeErr := errors.Join(errs...)
	if closeErr != nil {
		logger.From(r.ctx).Error("rabbitmq close failed", "error", closeErr)
	} else {
		logger.From(r.ctx).Info("rabbitmq connection closed")
	}
	return closeErr
}

func (r *RabbitMQClient) IsConnected() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.connection != nil && !r.connection.IsClosed()
}
