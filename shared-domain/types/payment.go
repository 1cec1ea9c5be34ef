package types

import "time"

type PaymentStatus string

const (
	PaymentStatusSuccess PaymentStatus = "success"
	PaymentStatusFailed  PaymentStatus = "failed"
	PaymentStatusPending PaymentStatus = "pending"
)

// PaymentPayload reports one payment outcome. A failed status is a valid
// business event and is announced like any other.
type PaymentPayload struct {
	OrderID       string                 `json:"orderId" validate:"required"`
	Customer      PaymentCustomerPayload `json:"customerInfo"`
	Amount        *float64               `json:"amount" validate:"required,gte=0"`
	PaymentMethod string                 `json:"paymentMethod,omitempty"`
	Status        PaymentStatus          `json:"status" validate:"required,oneof=success failed pending"`
	TransactionID string                 `json:"transactionId,omitempty"`
	FailureReason string                 `json:"failureReason,omitempty"`
	Timestamp     *time.Time             `json:"timestamp,omitempty"`
}

type PaymentCustomerPayload struct {
	FullName string `json:"fullName" validate:"required"`
	Phone    string `json:"phone,omitempty"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
}
