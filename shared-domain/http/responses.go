package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type APIResponse struct {
	Success   bool              `json:"success"`
	Message   string            `json:"message,omitempty"`
	Data      interface{}       `json:"data,omitempty"`
	Error     string            `json:"error,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	RequestID string            `json:"request_id"`
}

func SuccessResponse(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusOK).JSON(APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
		RequestID: getRequestID(c),
	})
}

// ResultResponse reports a completed dispatch. The request itself succeeded,
// so the status is 200 even when no channel delivered.
func ResultResponse(c *fiber.Ctx, success bool, message string, data interface{}) error {
	return c.Status(fiber.StatusOK).JSON(APIResponse{
		Success:   success,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
		RequestID: getRequestID(c),
	})
}

func BadRequestResponse(c *fiber.Ctx, message string, details map[string]string) error {
	return errorResponse(c, fiber.StatusBadRequest, message, details)
}

func NotFoundResponse(c *fiber.Ctx, message string) error {
	return errorResponse(c, fiber.StatusNotFound, message, nil)
}

func InternalServerErrorResponse(c *fiber.Ctx, message string) error {
	return errorResponse(c, fiber.StatusInternalServerError, message, nil)
}

func errorResponse(c *fiber.Ctx, status int, message string, details map[string]string) error {
	return c.Status(status).JSON(APIResponse{
		Success:   false,
		Error:     message,
		Details:   details,
		Timestamp: time.Now(),
		RequestID: getRequestID(c),
	})
}

// ErrorHandler is the fiber error handler rendering errors in the
// APIResponse envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	return errorResponse(c, code, err.Error(), nil)
}

func getRequestID(c *fiber.Ctx) string {
	if requestID := c.GetRespHeader(fiber.HeaderXRequestID); requestID != "" {
		return requestID
	}
	requestID := c.Get(fiber.HeaderXRequestID)
	if requestID == "" {
		requestID = uuid.New().String()
	}
	c.Set(fiber.HeaderXRequestID, requestID)
	return requestID
}
