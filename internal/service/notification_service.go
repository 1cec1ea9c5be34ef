package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/restaurant-ecommerce/notification-service/internal/directory"
	"github.com/restaurant-ecommerce/notification-service/internal/domain"
	"github.com/restaurant-ecommerce/notification-service/internal/formatter"
	"github.com/restaurant-ecommerce/notification-service/internal/pkg/logger"
	"github.com/restaurant-ecommerce/notification-service/shared-domain/events"
	"github.com/restaurant-ecommerce/notification-service/shared-domain/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultChannelTimeout = 15 * time.Second
	bookkeepingTimeout    = 5 * time.Second
)

var ErrNoLedger = errors.New("delivery history is not available")

var tracer = otel.Tracer("github.com/restaurant-ecommerce/notification-service/internal/service")

// Dependencies are the collaborators of NotificationService. Email, Mobile,
// Push, Directory and Formatter are required; the rest are optional.
type Dependencies struct {
	Email     EmailSender
	Mobile    MobileSender
	Push      PushSender
	Directory RecipientDirectory
	Formatter *formatter.Formatter

	Ledger      DeliveryLedger
	Idempotency IdempotencyStore
	Publisher   EventPublisher
	Metrics     *Metrics

	Rules          domain.OrderRules
	ChannelTimeout time.Duration
	ServiceName    string
	Now            func() time.Time
}

type NotificationService struct {
	email       EmailSender
	mobile      MobileSender
	push        PushSender
	directory   RecipientDirectory
	formatter   *formatter.Formatter
	ledger      DeliveryLedger
	idempotency IdempotencyStore
	publisher   EventPublisher
	metrics     *Metrics
	rules       domain.OrderRules
	timeout     time.Duration
	serviceName string
	now         func() time.Time
}

func NewNotificationService(deps Dependencies) *NotificationService {
	s := &NotificationService{
		email:       deps.Email,
		mobile:      deps.Mobile,
		push:        deps.Push,
		directory:   deps.Directory,
		formatter:   deps.Formatter,
		ledger:      deps.Ledger,
		idempotency: deps.Idempotency,
		publisher:   deps.Publisher,
		metrics:     deps.Metrics,
		rules:       deps.Rules,
		timeout:     deps.ChannelTimeout,
		serviceName: deps.ServiceName,
		now:         deps.Now,
	}
	if s.timeout == 0 {
		s.timeout = DefaultChannelTimeout
	}
	if s.serviceName == "" {
		s.serviceName = "notification-service"
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.rules.Now == nil {
		s.rules.Now = s.now
	}
	if s.formatter == nil {
		s.formatter = formatter.New(formatter.Settings{})
	}
	return s
}

// OrderNotifyResult is the aggregated outcome of one order fan-out.
type OrderNotifyResult struct {
	Success                 bool                   `json:"success"`
	OrderID                 string                 `json:"orderId"`
	CustomerEmail           bool                   `json:"customerEmail"`
	KitchenEmail            bool                   `json:"kitchenEmail"`
	MobileNotifications     []domain.ChannelResult `json:"mobileNotifications"`
	PushNotification        domain.ChannelResult   `json:"pushNotification"`
	PaymentNotification     bool                   `json:"paymentNotification"`
	PaymentPushNotification bool                   `json:"paymentPushNotification"`
	Channels                []domain.ChannelResult `json:"channels"`
	Duplicate               bool                   `json:"duplicate,omitempty"`
}

// DispatchResult is the outcome of the single-message notification kinds.
type DispatchResult struct {
	Success             bool                    `json:"success"`
	Type                domain.NotificationKind `json:"type"`
	OrderID             string                  `json:"orderId,omitempty"`
	EmailNotifications  []domain.ChannelResult  `json:"emailNotifications,omitempty"`
	MobileNotifications []domain.ChannelResult  `json:"mobileNotifications,omitempty"`
	PushNotification    domain.ChannelResult    `json:"pushNotification"`
	Channels            []domain.ChannelResult  `json:"channels"`
}

// NotifyOrderCompleted announces a completed order to the customer, the
// kitchen and the manager. Only an invalid payload returns an error; channel
// failures are reported in the result. An order that was delivered somewhere
// within the idempotency window returns the stored result without sending
// anything.
func (s *NotificationService) NotifyOrderCompleted(ctx context.Context, payload types.OrderPayload) (*OrderNotifyResult, error) {
	return s.notifyOrder(ctx, payload, false)
}

// RenotifyOrder is NotifyOrderCompleted without the duplicate check.
func (s *NotificationService) RenotifyOrder(ctx context.Context, payload types.OrderPayload) (*OrderNotifyResult, error) {
	return s.notifyOrder(ctx, payload, true)
}

func (s *NotificationService) notifyOrder(ctx context.Context, payload types.OrderPayload, force bool) (*OrderNotifyResult, error) {
	ctx, span := tracer.Start(ctx, "notification.order")
	defer span.End()
	start := s.now()

	order, err := domain.NewOrderNotification(payload, s.rules)
	if err != nil {
		s.metrics.rejected(string(domain.KindOrder))
		span.SetStatus(codes.Error, "invalid order payload")
		logger.From(ctx).Warn("order notification rejected", "order_id", payload.OrderID, "error", err)
		return nil, err
	}
	span.SetAttributes(attribute.String("order.id", order.OrderID))
	log := logger.From(ctx).With("order_id", order.OrderID)

	if !force {
		if prev := s.previousResult(ctx, order.OrderID); prev != nil {
			log.Info("order already notified, skipping fan-out")
			s.metrics.observe(string(domain.KindOrder), prev.Success, true, nil, s.now().Sub(start))
			return prev, nil
		}
	}

	log.Info("order notification started",
		"fulfillment", order.Fulfillment,
		"items", order.ItemCount(),
		"final_total", order.FinalTotal.StringFixed(2))

	// The customer receipt goes first and never blocks the kitchen.
	customer := single(domain.ChannelEmail, runBounded(ctx, s.timeout, s.traced(dispatch{
		name:    "customer-email",
		channel: domain.ChannelEmail,
		run: func(ctx context.Context) []domain.ChannelResult {
			content, err := s.formatter.CustomerReceipt(order)
			if err != nil {
				return []domain.ChannelResult{domain.FromError(domain.ChannelEmail, order.Customer.Email, fmt.Errorf("render receipt: %w", err))}
			}
			return []domain.ChannelResult{s.email.Send(ctx, order.Customer.Email, content)}
		},
	})))

	orderMsg := s.formatter.Order(order)
	paymentMsg := s.formatter.Payment(domain.PaymentFromOrder(order))
	staff := s.directory.Audience(domain.KindOrder)
	managers := s.directory.Audience(domain.KindPayment)

	settled := settleAll(ctx, s.timeout, []dispatch{
		s.traced(dispatch{
			name:    "kitchen-email",
			channel: domain.ChannelEmail,
			run: func(ctx context.Context) []domain.ChannelResult {
				content, err := s.formatter.KitchenTicket(order)
				if err != nil {
					return []domain.ChannelResult{domain.FromError(domain.ChannelEmail, "", fmt.Errorf("render kitchen ticket: %w", err))}
				}
				return s.email.SendAll(ctx, s.directory.KitchenEmails(), content)
			},
		}),
		s.mobileDispatch("order-mobile", staff.Recipients, orderMsg),
		s.pushDispatch("order-push", staff.PushTopic, orderMsg),
		s.mobileDispatch("payment-mobile", managers.Recipients, paymentMsg),
		s.pushDispatch("payment-push", managers.PushTopic, paymentMsg),
	})

	customerResults := domain.WithKind(domain.KindReceipt, customer)
	kitchen := domain.WithKind(domain.KindOrder, settled[0]...)
	mobile := domain.WithKind(domain.KindOrder, settled[1]...)
	push := domain.WithKind(domain.KindOrder, single(domain.ChannelPush, settled[2]))
	payMobile := domain.WithKind(domain.KindPayment, settled[3]...)
	payPush := domain.WithKind(domain.KindPayment, single(domain.ChannelPush, settled[4]))

	result := &OrderNotifyResult{
		OrderID:                 order.OrderID,
		CustomerEmail:           customer.Success,
		KitchenEmail:            domain.AnySucceeded(kitchen),
		MobileNotifications:     mobile,
		PushNotification:        push[0],
		PaymentNotification:     domain.AnySucceeded(payMobile),
		PaymentPushNotification: payPush[0].Success,
	}
	for _, group := range [][]domain.ChannelResult{customerResults, kitchen, mobile, push, payMobile, payPush} {
		result.Channels = append(result.Channels, group...)
	}
	result.Success = domain.AnySucceeded(result.Channels)

	s.logOutcomes(ctx, result.Channels)
	s.finish(ctx, types.NotificationTypeOrder, order.OrderID, result.Success, result.Channels, start)
	s.remember(ctx, result)

	log.Info("order notification finished",
		"success", result.Success,
		"customer_email", result.CustomerEmail,
		"kitchen_email", result.KitchenEmail,
		"push", result.PushNotification.Success)
	return result, nil
}

// NotifyPaymentResult tells the manager about a payment outcome. A failed
// payment is announced like any other status.
func (s *NotificationService) NotifyPaymentResult(ctx context.Context, payload types.PaymentPayload) (*DispatchResult, error) {
	ctx, span := tracer.Start(ctx, "notification.payment")
	defer span.End()
	start := s.now()

	payment, err := domain.NewPaymentNotification(payload, s.now)
	if err != nil {
		s.metrics.rejected(string(domain.KindPayment))
		span.SetStatus(codes.Error, "invalid payment payload")
		return nil, err
	}

	msg := s.formatter.Payment(payment)
	audience := s.directory.Audience(domain.KindPayment)
	settled := settleAll(ctx, s.timeout, []dispatch{
		s.mobileDispatch("payment-mobile", audience.Recipients, msg),
		s.pushDispatch("payment-push", audience.PushTopic, msg),
	})

	result := newDispatchResult(domain.KindPayment, payment.OrderID, nil, settled[0], single(domain.ChannelPush, settled[1]))
	s.logOutcomes(ctx, result.Channels)
	s.finish(ctx, types.NotificationTypePayment, payment.OrderID, result.Success, result.Channels, start)
	logger.From(ctx).Info("payment notification finished",
		"order_id", payment.OrderID,
		"status", payment.Status,
		"success", result.Success)
	return result, nil
}

// SendUrgentAlert reaches every staff member over SMS, WhatsApp and a
// maximum-priority push.
func (s *NotificationService) SendUrgentAlert(ctx context.Context, payload types.UrgentPayload) (*DispatchResult, error) {
	ctx, span := tracer.Start(ctx, "notification.urgent")
	defer span.End()
	start := s.now()

	alert, err := domain.NewUrgentAlert(payload, s.now)
	if err != nil {
		s.metrics.rejected(string(domain.KindUrgent))
		return nil, err
	}

	msg := s.formatter.Urgent(alert)
	audience := s.directory.Audience(domain.KindUrgent)
	settled := settleAll(ctx, s.timeout, []dispatch{
		s.mobileDispatch("urgent-mobile", audience.Recipients, msg),
		s.pushDispatch("urgent-push", audience.PushTopic, msg),
	})

	result := newDispatchResult(domain.KindUrgent, alert.OrderID, nil, settled[0], single(domain.ChannelPush, settled[1]))
	s.logOutcomes(ctx, result.Channels)
	s.finish(ctx, types.NotificationTypeUrgent, alert.OrderID, result.Success, result.Channels, start)
	return result, nil
}

// ForwardCustomerMessage passes a contact-form message to the kitchen inbox
// and push topic.
func (s *NotificationService) ForwardCustomerMessage(ctx context.Context, payload types.CustomerMessagePayload) (*DispatchResult, error) {
	ctx, span := tracer.Start(ctx, "notification.customer_message")
	defer span.End()
	start := s.now()

	message, err := domain.NewCustomerMessage(payload, s.now)
	if err != nil {
		s.metrics.rejected(string(domain.KindCustomerMessage))
		return nil, err
	}

	msg := s.formatter.CustomerMessage(message)
	audience := s.directory.Audience(domain.KindCustomerMessage)
	settled := settleAll(ctx, s.timeout, []dispatch{
		s.traced(dispatch{
			name:    "customer-message-email",
			channel: domain.ChannelEmail,
			run: func(ctx context.Context) []domain.ChannelResult {
				content, err := s.formatter.CustomerMessageEmail(message)
				if err != nil {
					return []domain.ChannelResult{domain.FromError(domain.ChannelEmail, "", fmt.Errorf("render message: %w", err))}
				}
				return s.email.SendAll(ctx, s.directory.KitchenEmails(), content)
			},
		}),
		s.pushDispatch("customer-message-push", audience.PushTopic, msg),
	})

	result := newDispatchResult(domain.KindCustomerMessage, "", settled[0], nil, single(domain.ChannelPush, settled[1]))
	s.logOutcomes(ctx, result.Channels)
	s.finish(ctx, types.NotificationTypeCustomerMessage, "", result.Success, result.Channels, start)
	return result, nil
}

// SendTestNotification pushes a smoke-test message through mobile and push
// so operators can check their configuration.
func (s *NotificationService) SendTestNotification(ctx context.Context) (*DispatchResult, error) {
	ctx, span := tracer.Start(ctx, "notification.test")
	defer span.End()
	start := s.now()

	msg := s.formatter.Test(start)
	audience := s.directory.Audience(domain.KindTest)
	settled := settleAll(ctx, s.timeout, []dispatch{
		s.mobileDispatch("test-mobile", audience.Recipients, msg),
		s.pushDispatch("test-push", audience.PushTopic, msg),
	})

	result := newDispatchResult(domain.KindTest, "", nil, settled[0], single(domain.ChannelPush, settled[1]))
	s.logOutcomes(ctx, result.Channels)
	s.finish(ctx, "test", "", result.Success, result.Channels, start)
	return result, nil
}

type Capabilities struct {
	Service        string            `json:"service"`
	Channels       map[string]bool   `json:"channels"`
	SupportedTypes []string          `json:"supportedTypes"`
	Recipients     directory.Summary `json:"recipients"`
	Features       map[string]bool   `json:"features"`
	ChannelTimeout string            `json:"channelTimeout"`
}

// Capabilities reports which channels are configured. It never exposes
// credentials or contact details.
func (s *NotificationService) Capabilities() Capabilities {
	return Capabilities{
		Service: s.serviceName,
		Channels: map[string]bool{
			string(domain.ChannelEmail):    s.email.Configured(),
			string(domain.ChannelSMS):      s.mobile.SMSConfigured(),
			string(domain.ChannelWhatsApp): s.mobile.WhatsAppConfigured(),
			string(domain.ChannelPush):     s.push.Configured(),
		},
		SupportedTypes: []string{
			string(types.NotificationTypeOrder),
			string(types.NotificationTypePayment),
			string(types.NotificationTypeUrgent),
			string(types.NotificationTypeCustomerMessage),
		},
		Recipients: s.directory.Summary(),
		Features: map[string]bool{
			"deliveryHistory": s.ledger != nil,
			"deduplication":   s.idempotency != nil,
			"events":          s.publisher != nil,
			"testMode":        true,
		},
		ChannelTimeout: s.timeout.String(),
	}
}

// DeliveryHistory lists the recorded channel outcomes for an order, newest
// first.
func (s *NotificationService) DeliveryHistory(ctx context.Context, orderID string) ([]domain.DeliveryRecord, error) {
	if s.ledger == nil {
		return nil, ErrNoLedger
	}
	records, err := s.ledger.GetDeliveriesByOrderID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("delivery history for %s: %w", orderID, err)
	}
	return records, nil
}

func (s *NotificationService) mobileDispatch(name string, to []domain.Recipient, msg domain.FormattedMessage) dispatch {
	return s.traced(dispatch{
		name:    name,
		channel: domain.ChannelSMS,
		run: func(ctx context.Context) []domain.ChannelResult {
			return s.mobile.Broadcast(ctx, to, msg)
		},
	})
}

func (s *NotificationService) pushDispatch(name, topic string, msg domain.FormattedMessage) dispatch {
	return s.traced(dispatch{
		name:    name,
		channel: domain.ChannelPush,
		run: func(ctx context.Context) []domain.ChannelResult {
			return []domain.ChannelResult{s.push.Publish(ctx, topic, msg)}
		},
	})
}

// traced wraps a dispatch in its own span.
func (s *NotificationService) traced(d dispatch) dispatch {
	run := d.run
	d.run = func(ctx context.Context) []domain.ChannelResult {
		ctx, span := tracer.Start(ctx, "dispatch."+d.name, trace.WithAttributes(
			attribute.String("notification.channel", string(d.channel)),
		))
		defer span.End()

		results := run(ctx)
		if !domain.AnySucceeded(results) {
			span.SetStatus(codes.Error, "no delivery")
		}
		return results
	}
	return d
}

func (s *NotificationService) logOutcomes(ctx context.Context, results []domain.ChannelResult) {
	log := logger.From(ctx)
	for _, r := range results {
		attrs := []any{"channel", r.Channel, "kind", r.Kind, "recipient", r.Recipient}
		switch {
		case r.Success:
			log.Debug("channel delivered", append(attrs, "message_id", r.MessageID)...)
		case r.Failure == domain.FailureNotConfigured:
			log.Debug("channel not configured", attrs...)
		case r.Failure == domain.FailureNoRecipient:
			log.Info("channel skipped", append(attrs, "reason", r.Error)...)
		case r.Failure == domain.FailureTimeout:
			log.Warn("channel timed out", append(attrs, "error", r.Error)...)
		default:
			log.Error("channel delivery failed", append(attrs, "error", r.Error)...)
		}
	}
}

// finish records the outcome in the ledger, metrics and event stream. None
// of these can fail the notification.
func (s *NotificationService) finish(ctx context.Context, notificationType types.NotificationType, orderID string, success bool, results []domain.ChannelResult, start time.Time) {
	s.metrics.observe(string(notificationType), success, false, results, s.now().Sub(start))

	bg, cancel := context.WithTimeout(context.WithoutCancel(ctx), bookkeepingTimeout)
	defer cancel()

	if s.ledger != nil {
		if err := s.ledger.RecordDeliveries(bg, domain.DeliveryRecords(orderID, results, s.now())); err != nil {
			logger.From(ctx).Error("failed to record deliveries", "order_id", orderID, "error", err)
		}
	}

	if s.publisher != nil {
		payload := events.NotificationDispatchedPayload{
			Type:    string(notificationType),
			OrderID: orderID,
			Success: success,
		}
		for _, r := range results {
			payload.Channels = append(payload.Channels, events.DispatchedChannel{
				Channel:   string(r.Channel),
				Kind:      string(r.Kind),
				Recipient: r.Recipient,
				Success:   r.Success,
				Failure:   string(r.Failure),
			})
		}
		event, err := events.New(s.serviceName, events.NotificationDispatchedEvent, orderID, payload)
		if err == nil {
			err = s.publisher.PublishEvent(bg, event)
		}
		if err != nil {
			logger.From(ctx).Error("failed to publish dispatch event", "order_id", orderID, "error", err)
		}
	}
}

func (s *NotificationService) previousResult(ctx context.Context, orderID string) *OrderNotifyResult {
	if s.idempotency == nil {
		return nil
	}
	found, data, err := s.idempotency.Check(ctx, orderID)
	if err != nil {
		logger.From(ctx).Error("idempotency check failed, notifying anyway", "order_id", orderID, "error", err)
		return nil
	}
	if !found {
		return nil
	}
	var prev OrderNotifyResult
	if err := json.Unmarshal(data, &prev); err != nil {
		logger.From(ctx).Error("stored notification result unreadable, notifying anyway", "order_id", orderID, "error", err)
		return nil
	}
	prev.Duplicate = true
	return &prev
}

// remember stores delivered results only, so an order nobody heard about
// can be notified again.
func (s *NotificationService) remember(ctx context.Context, result *OrderNotifyResult) {
	if s.idempotency == nil || !result.Success {
		return
	}
	data, err := json.Marshal(result)
	if err == nil {
		bg, cancel := context.WithTimeout(context.WithoutCancel(ctx), bookkeepingTimeout)
		defer cancel()
		err = s.idempotency.Save(bg, result.OrderID, data)
	}
	if err != nil {
		logger.From(ctx).Error("failed to store notification result", "order_id", result.OrderID, "error", err)
	}
}

func newDispatchResult(kind domain.NotificationKind, orderID string, email, mobile []domain.ChannelResult, push domain.ChannelResult) *DispatchResult {
	r := &DispatchResult{
		Type:                kind,
		OrderID:             orderID,
		EmailNotifications:  domain.WithKind(kind, email...),
		MobileNotifications: domain.WithKind(kind, mobile...),
		PushNotification:    domain.WithKind(kind, push)[0],
	}
	r.Channels = append(r.Channels, r.EmailNotifications...)
	r.Channels = append(r.Channels, r.MobileNotifications...)
	r.Channels = append(r.Channels, r.PushNotification)
	r.Success = domain.AnySucceeded(r.Channels)
	return r
}

// single returns the one result a push or customer email dispatch produces.
func single(channel domain.Channel, results []domain.ChannelResult) domain.ChannelResult {
	if len(results) == 0 {
		return domain.FromError(channel, "", errors.New("no result"))
	}
	return results[0]
}
