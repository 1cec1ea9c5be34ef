package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/restaurant-ecommerce/notification-service/shared-domain/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func float(v float64) *float64 { return &v }

func validDelivery() types.OrderPayload {
	return types.OrderPayload{
		OrderID: "ORD-1",
		Customer: types.CustomerPayload{
			FullName: "Ada Obi",
			Phone:    "+447700900001",
			Email:    "ada@example.com",
			Address:  "1 High Street",
			City:     "London",
			Postcode: "E1 6AN",
		},
		Items: []types.OrderItemPayload{
			{Name: "Jollof Rice", Quantity: 2, UnitPrice: 12.99},
			{Name: "Plantain", Quantity: 1, UnitPrice: 4.99},
		},
		DeliveryFee:     float(21.99),
		FinalTotal:      float(52.96),
		FulfillmentType: types.FulfillmentDelivery,
		PaymentMethod:   "card",
	}
}

func TestNewOrderNotificationComputesTotals(t *testing.T) {
	order, err := NewOrderNotification(validDelivery(), OrderRules{})
	require.NoError(t, err)

	assert.Equal(t, "30.97", order.Subtotal.StringFixed(2))
	assert.Equal(t, "21.99", order.DeliveryFee.StringFixed(2))
	assert.Equal(t, "52.96", order.FinalTotal.StringFixed(2))
	assert.True(t, withinTolerance(order.FinalTotal, order.Subtotal.Add(order.DeliveryFee)))
	assert.Equal(t, 3, order.ItemCount())
}

func TestNewOrderNotificationMissingOrderID(t *testing.T) {
	p := validDelivery()
	p.OrderID = ""

	_, err := NewOrderNotification(p, OrderRules{})
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "is required", verr.Fields["orderId"])
}

func TestNewOrderNotificationRequiresTotalAndCustomer(t *testing.T) {
	p := validDelivery()
	p.FinalTotal = nil
	p.Customer.FullName = ""

	_, err := NewOrderNotification(p, OrderRules{})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "finalTotal")
	assert.Contains(t, verr.Fields, "customerInfo.fullName")
}

func TestNewOrderNotificationRejectsWrongTotal(t *testing.T) {
	p := validDelivery()
	p.FinalTotal = float(50.00)

	_, err := NewOrderNotification(p, OrderRules{})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields["finalTotal"], "52.96")
}

func TestNewOrderNotificationToleratesRounding(t *testing.T) {
	p := validDelivery()
	p.FinalTotal = float(52.965)

	_, err := NewOrderNotification(p, OrderRules{})
	assert.NoError(t, err)
}

func TestDeliveryRequiresAddress(t *testing.T) {
	p := validDelivery()
	p.Customer.Address = ""
	p.Customer.Postcode = ""

	_, err := NewOrderNotification(p, OrderRules{})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "customerInfo.address")
	assert.Contains(t, verr.Fields, "customerInfo.postcode")
}

func TestCollectionRejectsDeliveryFee(t *testing.T) {
	p := validDelivery()
	p.FulfillmentType = types.FulfillmentCollection
	p.FinalTotal = float(52.96)

	_, err := NewOrderNotification(p, OrderRules{})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "must be 0 for collection orders", verr.Fields["deliveryFee"])
}

func TestCollectionDropsAddressAndHasNoFee(t *testing.T) {
	p := validDelivery()
	p.FulfillmentType = types.FulfillmentCollection
	p.DeliveryFee = nil
	p.FinalTotal = float(30.97)

	order, err := NewOrderNotification(p, OrderRules{})
	require.NoError(t, err)
	assert.True(t, order.DeliveryFee.IsZero())
	assert.Empty(t, order.Customer.Address)
	assert.False(t, order.IsDelivery())
}

func TestMissingDeliveryFeeUsesDefault(t *testing.T) {
	p := validDelivery()
	p.DeliveryFee = nil
	p.FinalTotal = float(35.97)

	order, err := NewOrderNotification(p, OrderRules{DefaultDeliveryFee: Money(5)})
	require.NoError(t, err)
	assert.Equal(t, "5.00", order.DeliveryFee.StringFixed(2))

	p.FinalTotal = float(52.96)
	order, err = NewOrderNotification(p, OrderRules{})
	require.NoError(t, err)
	assert.True(t, order.DeliveryFee.Equal(DefaultDeliveryFee))
}

func TestFulfillmentInferredFromAddress(t *testing.T) {
	p := validDelivery()
	p.FulfillmentType = ""

	order, err := NewOrderNotification(p, OrderRules{})
	require.NoError(t, err)
	assert.Equal(t, FulfillmentDelivery, order.Fulfillment)
}

func TestInvalidLineItems(t *testing.T) {
	p := validDelivery()
	p.Items[0].Quantity = 0
	p.Items[1].UnitPrice = -1

	_, err := NewOrderNotification(p, OrderRules{})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "items[0].quantity")
	assert.Contains(t, verr.Fields, "items[1].price")
}

func TestEmptyItemsDerivesSubtotal(t *testing.T) {
	p := validDelivery()
	p.Items = nil

	order, err := NewOrderNotification(p, OrderRules{})
	require.NoError(t, err)
	assert.Equal(t, "30.97", order.Subtotal.StringFixed(2))
	assert.Empty(t, order.Items)
}

func TestTimestampDefaultsToNow(t *testing.T) {
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	order, err := NewOrderNotification(validDelivery(), OrderRules{Now: func() time.Time { return fixed }})
	require.NoError(t, err)
	assert.Equal(t, fixed, order.Timestamp)
}

func TestPaymentNotification(t *testing.T) {
	p, err := NewPaymentNotification(types.PaymentPayload{
		OrderID:  "ORD-3",
		Customer: types.PaymentCustomerPayload{FullName: "Chi Eze"},
		Amount:   float(20),
		Status:   types.PaymentStatusFailed,
	}, nil)
	require.NoError(t, err)
	assert.True(t, p.Failed())

	_, err = NewPaymentNotification(types.PaymentPayload{OrderID: "ORD-4", Status: "refunded"}, nil)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "status")
	assert.Contains(t, verr.Fields, "amount")
}

func TestPaymentFromOrder(t *testing.T) {
	order, err := NewOrderNotification(validDelivery(), OrderRules{})
	require.NoError(t, err)

	p := PaymentFromOrder(order)
	assert.Equal(t, PaymentSuccess, p.Status)
	assert.True(t, p.Amount.Equal(order.FinalTotal))
	assert.Empty(t, p.Customer.Address)
}

func TestFromErrorClassifies(t *testing.T) {
	assert.Equal(t, FailureTimeout, FromError(ChannelPush, "", fmt.Errorf("post: %w", context.DeadlineExceeded)).Failure)
	assert.Equal(t, FailureNotConfigured, FromError(ChannelSMS, "", ErrNotConfigured).Failure)

	res := FromError(ChannelEmail, "a@b.c", errors.New("550 mailbox unavailable"))
	assert.Equal(t, FailureTransport, res.Failure)
	assert.Equal(t, "550 mailbox unavailable", res.Error)
	assert.False(t, res.Success)
}
