package domain

import (
	"strings"
	"time"

	"github.com/restaurant-ecommerce/notification-service/shared-domain/types"
	"github.com/shopspring/decimal"
)

// DefaultDeliveryFee applies to delivery orders that arrive without a fee.
var DefaultDeliveryFee = Money(21.99)

type Fulfillment = types.FulfillmentType

const (
	FulfillmentDelivery   = types.FulfillmentDelivery
	FulfillmentCollection = types.FulfillmentCollection
)

type Customer struct {
	FullName string `json:"fullName"`
	Phone    string `json:"phone,omitempty"`
	Email    string `json:"email,omitempty"`
	Address  string `json:"address,omitempty"`
	City     string `json:"city,omitempty"`
	Postcode string `json:"postcode,omitempty"`
}

type LineItem struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	SizeLabel string          `json:"sizeLabel,omitempty"`
}

// LineTotal is quantity times unit price.
func (i LineItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// OrderNotification is one completed order to announce. It is only built by
// NewOrderNotification and is passed by value afterwards.
type OrderNotification struct {
	OrderID       string          `json:"orderId"`
	Customer      Customer        `json:"customer"`
	Items         []LineItem      `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	DeliveryFee   decimal.Decimal `json:"deliveryFee"`
	FinalTotal    decimal.Decimal `json:"finalTotal"`
	Fulfillment   Fulfillment     `json:"fulfillmentType"`
	PaymentMethod string          `json:"paymentMethod"`
	TransactionID string          `json:"transactionId,omitempty"`
	Timestamp     time.Time       `json:"timestamp"`
}

func (o OrderNotification) IsDelivery() bool {
	return o.Fulfillment == FulfillmentDelivery
}

// ItemCount sums line quantities.
func (o OrderNotification) ItemCount() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}

// OrderRules carries the settings applied while building an order.
type OrderRules struct {
	DefaultDeliveryFee decimal.Decimal
	Now                func() time.Time
}

func (r OrderRules) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r OrderRules) defaultFee() decimal.Decimal {
	if r.DefaultDeliveryFee.IsZero() {
		return DefaultDeliveryFee
	}
	return r.DefaultDeliveryFee
}

// NewOrderNotification validates the payload and enforces the order money
// invariants: finalTotal = subtotal + deliveryFee, collection orders carry no
// fee and delivery orders carry an address.
func NewOrderNotification(p types.OrderPayload, rules OrderRules) (OrderNotification, error) {
	verr := newValidationError("invalid order payload")
	verr.collect(validate.Struct(p))
	if strings.TrimSpace(p.OrderID) == "" {
		verr.add("orderId", "is required")
	}

	fulfillment := p.FulfillmentType
	if fulfillment == "" {
		fulfillment = FulfillmentCollection
		if strings.TrimSpace(p.Customer.Address) != "" {
			fulfillment = FulfillmentDelivery
		}
	}

	customer := Customer{
		FullName: strings.TrimSpace(p.Customer.FullName),
		Phone:    strings.TrimSpace(p.Customer.Phone),
		Email:    strings.TrimSpace(p.Customer.Email),
	}
	if fulfillment == FulfillmentDelivery {
		customer.Address = strings.TrimSpace(p.Customer.Address)
		customer.City = strings.TrimSpace(p.Customer.City)
		customer.Postcode = strings.TrimSpace(p.Customer.Postcode)
		if customer.Address == "" {
			verr.add("customerInfo.address", "is required for delivery")
		}
		if customer.City == "" {
			verr.add("customerInfo.city", "is required for delivery")
		}
		if customer.Postcode == "" {
			verr.add("customerInfo.postcode", "is required for delivery")
		}
	}

	items := make([]LineItem, 0, len(p.Items))
	itemsTotal := decimal.Zero
	for _, it := range p.Items {
		item := LineItem{
			Name:      strings.TrimSpace(it.Name),
			Quantity:  it.Quantity,
			UnitPrice: Money(it.UnitPrice),
			SizeLabel: strings.TrimSpace(it.SizeLabel),
		}
		items = append(items, item)
		itemsTotal = itemsTotal.Add(item.LineTotal())
	}

	fee := decimal.Zero
	switch {
	case fulfillment == FulfillmentCollection:
		if p.DeliveryFee != nil && !Money(*p.DeliveryFee).IsZero() {
			verr.add("deliveryFee", "must be 0 for collection orders")
		}
	case p.DeliveryFee == nil:
		fee = rules.defaultFee()
	default:
		fee = Money(*p.DeliveryFee)
	}

	if p.FinalTotal == nil {
		return OrderNotification{}, verr
	}
	final := Money(*p.FinalTotal)

	var subtotal decimal.Decimal
	switch {
	case p.Subtotal != nil:
		subtotal = Money(*p.Subtotal)
		if len(items) > 0 && !withinTolerance(subtotal, itemsTotal) {
			verr.add("subtotal", "does not match the line items ("+itemsTotal.StringFixed(2)+")")
		}
	case len(items) > 0:
		subtotal = itemsTotal
	default:
		subtotal = final.Sub(fee)
		if subtotal.IsNegative() {
			verr.add("finalTotal", "is smaller than the delivery fee")
		}
	}

	if !withinTolerance(final, subtotal.Add(fee)) {
		verr.add("finalTotal", "must equal subtotal + deliveryFee ("+subtotal.Add(fee).StringFixed(2)+")")
	}

	if err := verr.orNil(); err != nil {
		return OrderNotification{}, err
	}

	ts := rules.now()
	if p.Timestamp != nil && !p.Timestamp.IsZero() {
		ts = *p.Timestamp
	}

	return OrderNotification{
		OrderID:       strings.TrimSpace(p.OrderID),
		Customer:      customer,
		Items:         items,
		Subtotal:      subtotal,
		DeliveryFee:   fee,
		FinalTotal:    final,
		Fulfillment:   fulfillment,
		PaymentMethod: strings.TrimSpace(p.PaymentMethod),
		TransactionID: strings.TrimSpace(p.TransactionID),
		Timestamp:     ts,
	}, nil
}
