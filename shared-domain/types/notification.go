package types

import "time"

// NotificationType is the value of the "type" field accepted by the
// notifications endpoint.
type NotificationType string

const (
	NotificationTypeOrder           NotificationType = "order"
	NotificationTypePayment         NotificationType = "payment"
	NotificationTypeUrgent          NotificationType = "urgent"
	NotificationTypeCustomerMessage NotificationType = "customer-message"
)

type UrgentPayload struct {
	Message  string     `json:"message" validate:"required"`
	OrderID  string     `json:"orderId,omitempty"`
	RaisedBy string     `json:"raisedBy,omitempty"`
	Time     *time.Time `json:"timestamp,omitempty"`
}

// CustomerMessagePayload is a contact-form submission forwarded to the kitchen.
type CustomerMessagePayload struct {
	Name    string     `json:"name" validate:"required"`
	Email   string     `json:"email" validate:"omitempty,email"`
	Phone   string     `json:"phone,omitempty"`
	Subject string     `json:"subject,omitempty"`
	Message string     `json:"message" validate:"required"`
	Time    *time.Time `json:"timestamp,omitempty"`
}
