package domain

import (
	"strings"
	"time"

	"github.com/restaurant-ecommerce/notification-service/shared-domain/types"
	"github.com/shopspring/decimal"
)

type PaymentStatus = types.PaymentStatus

const (
	PaymentSuccess = types.PaymentStatusSuccess
	PaymentFailed  = types.PaymentStatusFailed
	PaymentPending = types.PaymentStatusPending
)

// PaymentNotification announces a payment outcome to the manager. Its
// audience and trigger differ from OrderNotification, so it stands alone.
type PaymentNotification struct {
	OrderID       string          `json:"orderId"`
	Customer      Customer        `json:"customer"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"paymentMethod"`
	Status        PaymentStatus   `json:"status"`
	TransactionID string          `json:"transactionId,omitempty"`
	FailureReason string          `json:"failureReason,omitempty"`
	Timestamp     time.Time       `json:"timestamp"`
}

func (p PaymentNotification) Failed() bool {
	return p.Status == PaymentFailed
}

func NewPaymentNotification(p types.PaymentPayload, now func() time.Time) (PaymentNotification, error) {
	verr := newValidationError("invalid payment payload")
	verr.collect(validate.Struct(p))
	if strings.TrimSpace(p.OrderID) == "" {
		verr.add("orderId", "is required")
	}
	if err := verr.orNil(); err != nil {
		return PaymentNotification{}, err
	}

	ts := time.Now()
	if now != nil {
		ts = now()
	}
	if p.Timestamp != nil && !p.Timestamp.IsZero() {
		ts = *p.Timestamp
	}

	return PaymentNotification{
		OrderID: strings.TrimSpace(p.OrderID),
		Customer: Customer{
			FullName: strings.TrimSpace(p.Customer.FullName),
			Phone:    strings.TrimSpace(p.Customer.Phone),
			Email:    strings.TrimSpace(p.Customer.Email),
		},
		Amount:        Money(*p.Amount),
		PaymentMethod: strings.TrimSpace(p.PaymentMethod),
		Status:        p.Status,
		TransactionID: strings.TrimSpace(p.TransactionID),
		FailureReason: strings.TrimSpace(p.FailureReason),
		Timestamp:     ts,
	}, nil
}

// PaymentFromOrder derives the successful payment announcement that
// accompanies a completed order.
func PaymentFromOrder(o OrderNotification) PaymentNotification {
	return PaymentNotification{
		OrderID: o.OrderID,
		Customer: Customer{
			FullName: o.Customer.FullName,
			Phone:    o.Customer.Phone,
			Email:    o.Customer.Email,
		},
		Amount:        o.FinalTotal,
		PaymentMethod: o.PaymentMethod,
		Status:        PaymentSuccess,
		TransactionID: o.TransactionID,
		Timestamp:     o.Timestamp,
	}
}
