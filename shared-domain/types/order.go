package types

import "time"

type FulfillmentType string

const (
	FulfillmentDelivery   FulfillmentType = "delivery"
	FulfillmentCollection FulfillmentType = "collection"
)

// OrderPayload is the "order completed" body sent by the checkout flow.
// Money fields are pointers so an absent value can be told apart from zero.
type OrderPayload struct {
	OrderID         string             `json:"orderId" validate:"required"`
	Customer        CustomerPayload    `json:"customerInfo"`
	Items           []OrderItemPayload `json:"items" validate:"dive"`
	Subtotal        *float64           `json:"subtotal,omitempty" validate:"omitempty,gte=0"`
	DeliveryFee     *float64           `json:"deliveryFee,omitempty" validate:"omitempty,gte=0"`
	FinalTotal      *float64           `json:"finalTotal" validate:"required,gte=0"`
	FulfillmentType FulfillmentType    `json:"fulfillmentType,omitempty" validate:"omitempty,oneof=delivery collection"`
	PaymentMethod   string             `json:"paymentMethod,omitempty"`
	TransactionID   string             `json:"transactionId,omitempty"`
	Timestamp       *time.Time         `json:"timestamp,omitempty"`
}

type CustomerPayload struct {
	FullName string `json:"fullName" validate:"required"`
	Phone    string `json:"phone" validate:"required_without=Email"`
	Email    string `json:"email" validate:"omitempty,email"`
	Address  string `json:"address,omitempty"`
	City     string `json:"city,omitempty"`
	Postcode string `json:"postcode,omitempty"`
}

type OrderItemPayload struct {
	Name      string  `json:"name" validate:"required"`
	Quantity  int     `json:"quantity" validate:"gte=1"`
	UnitPrice float64 `json:"price" validate:"gte=0"`
	SizeLabel string  `json:"size,omitempty"`
}
