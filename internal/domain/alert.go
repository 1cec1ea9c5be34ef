package domain

import (
	"strings"
	"time"

	"github.com/restaurant-ecommerce/notification-service/shared-domain/types"
)

type UrgentAlert struct {
	Message   string    `json:"message"`
	OrderID   string    `json:"orderId,omitempty"`
	RaisedBy  string    `json:"raisedBy,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewUrgentAlert(p types.UrgentPayload, now func() time.Time) (UrgentAlert, error) {
	verr := newValidationError("invalid urgent payload")
	verr.collect(validate.Struct(p))
	if strings.TrimSpace(p.Message) == "" {
		verr.add("message", "is required")
	}
	if err := verr.orNil(); err != nil {
		return UrgentAlert{}, err
	}
	return UrgentAlert{
		Message:   strings.TrimSpace(p.Message),
		OrderID:   strings.TrimSpace(p.OrderID),
		RaisedBy:  strings.TrimSpace(p.RaisedBy),
		Timestamp: stamp(p.Time, now),
	}, nil
}

type CustomerMessage struct {
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Subject   string    `json:"subject,omitempty"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

func NewCustomerMessage(p types.CustomerMessagePayload, now func() time.Time) (CustomerMessage, error) {
	verr := newValidationError("invalid customer message payload")
	verr.collect(validate.Struct(p))
	if strings.TrimSpace(p.Message) == "" {
		verr.add("message", "is required")
	}
	if err := verr.orNil(); err != nil {
		return CustomerMessage{}, err
	}
	return CustomerMessage{
		Name:      strings.TrimSpace(p.Name),
		Email:     strings.TrimSpace(p.Email),
		Phone:     strings.TrimSpace(p.Phone),
		Subject:   strings.TrimSpace(p.Subject),
		Message:   strings.TrimSpace(p.Message),
		Timestamp: stamp(p.Time, now),
	}, nil
}

func stamp(t *time.Time, now func() time.Time) time.Time {
	if t != nil && !t.IsZero() {
		return *t
	}
	if now != nil {
		return now()
	}
	return time.Now()
}
