package handlers

import (
	"github.com/gofiber/fiber/v2"
	sharedHTTP "github.com/restaurant-ecommerce/notification-service/shared-domain/http"
)

func SetupRoutes(app *fiber.App, notificationHandler *NotificationHandler) {
	api := app.Group("/api/v1")
	api.Get("/health", notificationHandler.HealthCheck)
	api.Get("/notifications", notificationHandler.Describe)
	api.Post("/notifications", notificationHandler.Dispatch)
	api.Get("/notifications/orders/:orderId/deliveries", notificationHandler.GetDeliveries)

	app.Use("*", func(c *fiber.Ctx) error {
		return sharedHTTP.NotFoundResponse(c, "Route not found")
	})
}
