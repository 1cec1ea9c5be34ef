package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	// Inbound, published by the checkout flow
	OrderCompletedEvent EventType = "checkout.order.completed"
	PaymentResultEvent  EventType = "checkout.payment.result"

	// Outbound
	NotificationDispatchedEvent EventType = "notification.dispatched"
)

type Event struct {
	ID            uuid.UUID       `json:"id"`
	OrderID       string          `json:"order_id,omitempty"`
	EventType     EventType       `json:"event_type"`
	Payload       json.RawMessage `json:"payload"`
	Timestamp     time.Time       `json:"timestamp"`
	Service       string          `json:"service"`
	CorrelationID uuid.UUID       `json:"correlation_id"`
}

// New builds an event with fresh ids and payload marshalled to JSON.
func New(service string, eventType EventType, orderID string, payload interface{}) (Event, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("event payload serialization error: %w", err)
	}
	return Event{
		ID:            uuid.New(),
		OrderID:       orderID,
		EventType:     eventType,
		Payload:       body,
		Timestamp:     time.Now().UTC(),
		Service:       service,
		CorrelationID: uuid.New(),
	}, nil
}

func (e Event) Decode(v interface{}) error {
	if len(e.Payload) == 0 {
		return fmt.Errorf("event %s has no payload", e.EventType)
	}
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("event %s payload: %w", e.EventType, err)
	}
	return nil
}

// RoutingKey is the key outbound events are published with.
func RoutingKey(service string, eventType EventType) string {
	return fmt.Sprintf("notification.%s.%s", service, eventType)
}

type DispatchedChannel struct {
	Channel   string `json:"channel"`
	Kind      string `json:"kind,omitempty"`
	Recipient string `json:"recipient,omitempty"`
	Success   bool   `json:"success"`
	Failure   string `json:"failure,omitempty"`
}

// NotificationDispatchedPayload describes one fan-out that actually ran.
// Duplicate orders answered from the idempotency store publish nothing.
type NotificationDispatchedPayload struct {
	Type     string              `json:"type"`
	OrderID  string              `json:"order_id,omitempty"`
	Success  bool                `json:"success"`
	Channels []DispatchedChannel `json:"channels"`
}
