package formatter

import (
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/restaurant-ecommerce/notification-service/internal/domain"
	"github.com/restaurant-ecommerce/notification-service/shared-domain/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var placedAt = time.Date(2026, 10, 19, 13, 5, 0, 0, time.UTC)

func float(v float64) *float64 { return &v }

func newTestFormatter() *Formatter {
	return New(Settings{
		CurrencySymbol: "£",
		Location:       time.UTC,
		RestaurantName: "Test Kitchen",
		CollectionSite: "Collect from 12 Market Street counter",
	})
}

func deliveryOrder(t *testing.T) domain.OrderNotification {
	t.Helper()
	order, err := domain.NewOrderNotification(types.OrderPayload{
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
			{Name: "Jollof Rice", Quantity: 2, UnitPrice: 12.99, SizeLabel: "Large"},
			{Name: "Plantain", Quantity: 1, UnitPrice: 4.99},
		},
		DeliveryFee:     float(21.99),
		FinalTotal:      float(52.96),
		FulfillmentType: types.FulfillmentDelivery,
		PaymentMethod:   "card",
		Timestamp:       &placedAt,
	}, domain.OrderRules{})
	require.NoError(t, err)
	return order
}

func collectionOrder(t *testing.T) domain.OrderNotification {
	t.Helper()
	order, err := domain.NewOrderNotification(types.OrderPayload{
		OrderID:         "ORD-2",
		Customer:        types.CustomerPayload{FullName: "Bola Ade", Phone: "+447700900002"},
		Items:           []types.OrderItemPayload{{Name: "Egusi Soup", Quantity: 1, UnitPrice: 18.99}},
		DeliveryFee:     float(0),
		FinalTotal:      float(18.99),
		FulfillmentType: types.FulfillmentCollection,
		PaymentMethod:   "square",
		Timestamp:       &placedAt,
	}, domain.OrderRules{})
	require.NoError(t, err)
	return order
}

func TestOrderDeliveryMessage(t *testing.T) {
	msg := newTestFormatter().Order(deliveryOrder(t))

	assert.Contains(t, msg.Title, "ORD-1")
	assert.Contains(t, msg.FullBody, "ORD-1")
	assert.Contains(t, msg.FullBody, "£52.96")
	assert.Contains(t, msg.FullBody, "Subtotal: £30.97")
	assert.Contains(t, msg.FullBody, "Delivery fee: £21.99")
	assert.Contains(t, msg.FullBody, "Address: 1 High Street")
	assert.Contains(t, msg.FullBody, "Postcode: E1 6AN")
	assert.Contains(t, msg.FullBody, "2x Jollof Rice (Large) @ £12.99 = £25.98")
	assert.Contains(t, msg.FullBody, "Placed: 19 Oct 2026 13:05")
	assert.Contains(t, msg.UrgentBody, "52.96")
	assert.Equal(t, domain.PriorityHigh, msg.Priority)
	assert.Equal(t, []string{"fork_and_knife", "delivery"}, msg.Tags)
}

func TestOrderCollectionMessageHasNoAddress(t *testing.T) {
	f := newTestFormatter()
	msg := f.Order(collectionOrder(t))

	assert.Contains(t, msg.FullBody, "18.99")
	assert.Contains(t, msg.FullBody, "Collection: Collect from 12 Market Street counter")
	assert.NotContains(t, msg.FullBody, "Address:")
	assert.NotContains(t, msg.FullBody, "Delivery fee")
	assert.Contains(t, msg.UrgentBody, "Collection")
}

func TestOrderFormattingIsDeterministic(t *testing.T) {
	f := newTestFormatter()
	order := deliveryOrder(t)

	assert.Equal(t, f.Order(order), f.Order(order))

	first, err := f.CustomerReceipt(order)
	require.NoError(t, err)
	second, err := f.CustomerReceipt(order)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestOrderWithoutItemsStillFormats(t *testing.T) {
	order, err := domain.NewOrderNotification(types.OrderPayload{
		OrderID:    "ORD-9",
		Customer:   types.CustomerPayload{FullName: "No Items", Email: "x@example.com"},
		FinalTotal: float(10),
		Timestamp:  &placedAt,
	}, domain.OrderRules{})
	require.NoError(t, err)

	msg := newTestFormatter().Order(order)
	assert.Contains(t, msg.FullBody, "Items:\n\n")
	assert.Contains(t, msg.FullBody, "Total: £10.00")
}

func TestTimestampUsesConfiguredZone(t *testing.T) {
	london, err := time.LoadLocation("Europe/London")
	require.NoError(t, err)
	f := New(Settings{Location: london})

	msg := f.Order(deliveryOrder(t))
	assert.Contains(t, msg.FullBody, "Placed: 19 Oct 2026 14:05")
}

func TestPaymentMessages(t *testing.T) {
	f := newTestFormatter()
	failed := domain.PaymentNotification{
		OrderID:       "ORD-3",
		Customer:      domain.Customer{FullName: "Chi Eze", Phone: "+447700900003"},
		Amount:        domain.Money(25.5),
		PaymentMethod: "openbanking",
		Status:        domain.PaymentFailed,
		FailureReason: "bank declined",
		Timestamp:     placedAt,
	}

	msg := f.Payment(failed)
	assert.Equal(t, "Payment FAILED - ORD-3", msg.Title)
	assert.Equal(t, domain.PriorityUrgent, msg.Priority)
	assert.Contains(t, msg.FullBody, "Amount: £25.50")
	assert.Contains(t, msg.FullBody, "Reason: bank declined")
	assert.Contains(t, msg.UrgentBody, "bank declined")

	ok := failed
	ok.Status = domain.PaymentSuccess
	ok.FailureReason = ""
	success := f.Payment(ok)
	assert.Equal(t, domain.PriorityDefault, success.Priority)
	assert.Equal(t, []string{"white_check_mark", "payment"}, success.Tags)
}

func TestEmailsEscapeCustomerText(t *testing.T) {
	f := newTestFormatter()
	content, err := f.CustomerMessageEmail(domain.CustomerMessage{
		Name:      "Eve",
		Message:   "<script>alert(1)</script>",
		Timestamp: placedAt,
	})
	require.NoError(t, err)
	assert.NotContains(t, content.HTML, "<script>")
	assert.Contains(t, content.Text, "<script>alert(1)</script>")
	assert.Equal(t, "Customer message: Message from Eve", content.Subject)
}

func TestKitchenTicket(t *testing.T) {
	f := newTestFormatter()

	delivery, err := f.KitchenTicket(deliveryOrder(t))
	require.NoError(t, err)
	assert.Equal(t, "New delivery order ORD-1 - £52.96", delivery.Subject)
	assert.Contains(t, delivery.HTML, "1 High Street")

	collection, err := f.KitchenTicket(collectionOrder(t))
	require.NoError(t, err)
	assert.Contains(t, collection.HTML, "Collect from 12 Market Street counter")
	assert.False(t, strings.Contains(collection.HTML, "Delivery to:"))
}
