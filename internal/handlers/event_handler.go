package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/restaurant-ecommerce/notification-service/internal/domain"
	"github.com/restaurant-ecommerce/notification-service/internal/pkg/logger"
	"github.com/restaurant-ecommerce/notification-service/internal/service"
	"github.com/restaurant-ecommerce/notification-service/shared-domain/events"
	"github.com/restaurant-ecommerce/notification-service/shared-domain/messaging"
	"github.com/restaurant-ecommerce/notification-service/shared-domain/types"
)

// ErrNothingDelivered asks the broker to redeliver an event none of whose
// channels succeeded.
var ErrNothingDelivered = errors.New("no channel delivered")

type EventHandler struct {
	notificationService *service.NotificationService
}

func NewEventHandler(notificationService *service.NotificationService) *EventHandler {
	return &EventHandler{
		notificationService: notificationService,
	}
}

// HandleEvent processes checkout events. Malformed or invalid payloads are
// dropped since redelivery cannot fix them.
func (h *EventHandler) HandleEvent(ctx context.Context, event events.Event) error {
	log := logger.From(ctx).With("event_type", event.EventType, "event_id", event.ID)

	switch event.EventType {
	case events.OrderCompletedEvent:
		var payload types.OrderPayload
		if err := event.Decode(&payload); err != nil {
			log.Error("dropping order event", "error", err)
			return nil
		}
		result, err := h.notificationService.NotifyOrderCompleted(ctx, payload)
		if err != nil {
			return dropInvalid(log, err)
		}
		if !result.Success {
			return fmt.Errorf("order %s: %w", result.OrderID, ErrNothingDelivered)
		}
		return nil

	case events.PaymentResultEvent:
		var payload types.PaymentPayload
		if err := event.Decode(&payload); err != nil {
			log.Error("dropping payment event", "error", err)
			return nil
		}
		result, err := h.notificationService.NotifyPaymentResult(ctx, payload)
		if err != nil {
			return dropInvalid(log, err)
		}
		if !result.Success {
			return fmt.Errorf("payment for %s: %w", result.OrderID, ErrNothingDelivered)
		}
		return nil

	default:
		log.Warn("unhandled event type")
		return nil
	}
}

func (h *EventHandler) StartConsuming(ctx context.Context, consumer *messaging.Consumer) error {
	routingKeys := []string{
		string(events.OrderCompletedEvent),
		string(events.PaymentResultEvent),
	}

	return consumer.ConsumeEvents(ctx, routingKeys, h.HandleEvent)
}

func dropInvalid(log *slog.Logger, err error) error {
	if domain.IsValidationError(err) {
		log.Warn("dropping invalid event", "error", err)
		return nil
	}
	return err
}
