package service

import (
	"context"

	"github.com/restaurant-ecommerce/notification-service/internal/directory"
	"github.com/restaurant-ecommerce/notification-service/internal/domain"
	"github.com/restaurant-ecommerce/notification-service/shared-domain/events"
)

type EmailSender interface {
	Configured() bool
	Send(ctx context.Context, to string, content domain.EmailContent) domain.ChannelResult
	SendAll(ctx context.Context, to []string, content domain.EmailContent) []domain.ChannelResult
}

type MobileSender interface {
	SMSConfigured() bool
	WhatsAppConfigured() bool
	Broadcast(ctx context.Context, to []domain.Recipient, msg domain.FormattedMessage) []domain.ChannelResult
}

type PushSender interface {
	Configured() bool
	Publish(ctx context.Context, topic string, msg domain.FormattedMessage) domain.ChannelResult
}

type RecipientDirectory interface {
	Audience(kind domain.NotificationKind) domain.Audience
	KitchenEmails() []string
	Summary() directory.Summary
}

type DeliveryLedger interface {
	RecordDeliveries(ctx context.Context, records []domain.DeliveryRecord) error
	GetDeliveriesByOrderID(ctx context.Context, orderID string) ([]domain.DeliveryRecord, error)
}

// IdempotencyStore checks and records processed order ids.
type IdempotencyStore interface {
	Check(ctx context.Context, key string) (bool, []byte, error)
	Save(ctx context.Context, key string, data []byte) error
}

type EventPublisher interface {
	PublishEvent(ctx context.Context, event events.Event) error
}
