package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/restaurant-ecommerce/notification-service/internal/domain"
	"github.com/restaurant-ecommerce/notification-service/internal/service"
	sharedHTTP "github.com/restaurant-ecommerce/notification-service/shared-domain/http"
	"github.com/restaurant-ecommerce/notification-service/shared-domain/types"
)

type NotificationHandler struct {
	notificationService *service.NotificationService
}

func NewNotificationHandler(notificationService *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
	}
}

// DispatchRequest is the body of POST /api/v1/notifications. Either Type and
// Data, or TestMode, must be set.
type DispatchRequest struct {
	Type     types.NotificationType `json:"type"`
	Data     json.RawMessage        `json:"data"`
	TestMode bool                   `json:"testMode"`
	Force    bool                   `json:"force"`
}

func (h *NotificationHandler) HealthCheck(c *fiber.Ctx) error {
	return sharedHTTP.SuccessResponse(c, "Notification service is healthy", map[string]interface{}{
		"service": "notification-service",
		"status":  "healthy",
	})
}

func (h *NotificationHandler) Describe(c *fiber.Ctx) error {
	return sharedHTTP.SuccessResponse(c, "Notification capabilities", h.notificationService.Capabilities())
}

func (h *NotificationHandler) Dispatch(c *fiber.Ctx) error {
	var req DispatchRequest
	if err := c.BodyParser(&req); err != nil {
		return sharedHTTP.BadRequestResponse(c, "Invalid request body", nil)
	}

	ctx := c.UserContext()

	if req.TestMode {
		result, err := h.notificationService.SendTestNotification(ctx)
		if err != nil {
			return h.dispatchError(c, err)
		}
		return sharedHTTP.ResultResponse(c, result.Success, "Test notification dispatched", result)
	}

	if len(req.Data) == 0 || string(req.Data) == "null" {
		return sharedHTTP.BadRequestResponse(c, "Missing notification data", map[string]string{"data": "is required"})
	}

	switch req.Type {
	case types.NotificationTypeOrder:
		var payload types.OrderPayload
		if err := decodeData(req.Data, &payload); err != nil {
			return sharedHTTP.BadRequestResponse(c, err.Error(), nil)
		}
		notify := h.notificationService.NotifyOrderCompleted
		if req.Force {
			notify = h.notificationService.RenotifyOrder
		}
		result, err := notify(ctx, payload)
		if err != nil {
			return h.dispatchError(c, err)
		}
		message := "Order notification dispatched"
		if result.Duplicate {
			message = "Order already notified"
		}
		return sharedHTTP.ResultResponse(c, result.Success, message, result)

	case types.NotificationTypePayment:
		var payload types.PaymentPayload
		if err := decodeData(req.Data, &payload); err != nil {
			return sharedHTTP.BadRequestResponse(c, err.Error(), nil)
		}
		result, err := h.notificationService.NotifyPaymentResult(ctx, payload)
		if err != nil {
			return h.dispatchError(c, err)
		}
		return sharedHTTP.ResultResponse(c, result.Success, "Payment notification dispatched", result)

	case types.NotificationTypeUrgent:
		var payload types.UrgentPayload
		if err := decodeData(req.Data, &payload); err != nil {
			return sharedHTTP.BadRequestResponse(c, err.Error(), nil)
		}
		result, err := h.notificationService.SendUrgentAlert(ctx, payload)
		if err != nil {
			return h.dispatchError(c, err)
		}
		return sharedHTTP.ResultResponse(c, result.Success, "Urgent alert dispatched", result)

	case types.NotificationTypeCustomerMessage:
		var payload types.CustomerMessagePayload
		if err := decodeData(req.Data, &payload); err != nil {
			return sharedHTTP.BadRequestResponse(c, err.Error(), nil)
		}
		result, err := h.notificationService.ForwardCustomerMessage(ctx, payload)
		if err != nil {
			return h.dispatchError(c, err)
		}
		return sharedHTTP.ResultResponse(c, result.Success, "Customer message forwarded", result)

	case "":
		return sharedHTTP.BadRequestResponse(c, "Missing notification type", map[string]string{"type": "is required"})

	default:
		return sharedHTTP.BadRequestResponse(c, fmt.Sprintf("Unsupported notification type: %s", req.Type), map[string]string{
			"type": "must be one of order, payment, urgent, customer-message",
		})
	}
}

func (h *NotificationHandler) GetDeliveries(c *fiber.Ctx) error {
	orderID := strings.TrimSpace(c.Params("orderId"))
	if orderID == "" {
		return sharedHTTP.BadRequestResponse(c, "Missing order id", nil)
	}

	records, err := h.notificationService.DeliveryHistory(c.UserContext(), orderID)
	if err != nil {
		if errors.Is(err, service.ErrNoLedger) {
			return sharedHTTP.NotFoundResponse(c, err.Error())
		}
		return sharedHTTP.InternalServerErrorResponse(c, "Failed to load delivery history")
	}
	if records == nil {
		records = []domain.DeliveryRecord{}
	}
	return sharedHTTP.SuccessResponse(c, "Delivery history", records)
}

func (h *NotificationHandler) dispatchError(c *fiber.Ctx, err error) error {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return sharedHTTP.BadRequestResponse(c, verr.Error(), verr.Fields)
	}
	return sharedHTTP.InternalServerErrorResponse(c, err.Error())
}

func decodeData(raw json.RawMessage, v interface{}) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("invalid notification data: %w", err)
	}
	return nil
}
