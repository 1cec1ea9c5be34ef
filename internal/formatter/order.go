package formatter

import (
	"fmt"
	"strings"

	"github.com/restaurant-ecommerce/notification-service/internal/domain"
)

const smsLimit = 306

// Order renders the kitchen alert for a completed order.
func (f *Formatter) Order(o domain.OrderNotification) domain.FormattedMessage {
	fulfilment := titleCase(string(o.Fulfillment))

	short := fmt.Sprintf("Order %s | %s | %s | %s",
		o.OrderID, o.Customer.FullName, fulfilment, f.money(o.FinalTotal))

	urgent := fmt.Sprintf("NEW ORDER %s: %d item(s), %s, %s",
		o.OrderID, o.ItemCount(), f.money(o.FinalTotal), f.fulfilmentLine(o))
	if o.Customer.Phone != "" {
		urgent += ". Call " + o.Customer.Phone
	}

	return domain.FormattedMessage{
		Title:      fmt.Sprintf("New Order %s - %s", o.OrderID, f.money(o.FinalTotal)),
		ShortBody:  short,
		FullBody:   f.orderBody(o),
		UrgentBody: truncate(urgent, smsLimit),
		Priority:   domain.PriorityHigh,
		Tags:       []string{"fork_and_knife", string(o.Fulfillment)},
	}
}

func (f *Formatter) fulfilmentLine(o domain.OrderNotification) string {
	if o.IsDelivery() {
		return "Delivery to " + o.Customer.Postcode
	}
	return "Collection"
}

func (f *Formatter) orderBody(o domain.OrderNotification) string {
	var b strings.Builder
	fmt.Fprintf(&b, "NEW ORDER - %s\n", o.OrderID)
	fmt.Fprintf(&b, "Placed: %s\n\n", f.when(o.Timestamp))

	fmt.Fprintf(&b, "Customer: %s\n", o.Customer.FullName)
	if o.Customer.Phone != "" {
		fmt.Fprintf(&b, "Phone: %s\n", o.Customer.Phone)
	}
	if o.Customer.Email != "" {
		fmt.Fprintf(&b, "Email: %s\n", o.Customer.Email)
	}
	b.WriteString("\n")

	b.WriteString(f.fulfilmentBlock(o))
	b.WriteString("\n")

	b.WriteString("Items:\n")
	for _, line := range f.itemLines(o.Items) {
		b.WriteString("- " + line + "\n")
	}
	b.WriteString("\n")

	b.WriteString(f.totalsBlock(o))
	fmt.Fprintf(&b, "Payment: %s", fallback(o.PaymentMethod, "unspecified"))
	return b.String()
}

// fulfilmentBlock includes address lines only for delivery orders.
func (f *Formatter) fulfilmentBlock(o domain.OrderNotification) string {
	var b strings.Builder
	if o.IsDelivery() {
		b.WriteString("Fulfilment: Delivery\n")
		fmt.Fprintf(&b, "Address: %s\n", o.Customer.Address)
		fmt.Fprintf(&b, "City: %s\n", o.Customer.City)
		fmt.Fprintf(&b, "Postcode: %s\n", o.Customer.Postcode)
		return b.String()
	}
	b.WriteString("Fulfilment: Collection\n")
	fmt.Fprintf(&b, "Collection: %s\n", f.settings.CollectionSite)
	return b.String()
}

func (f *Formatter) itemLines(items []domain.LineItem) []string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		name := item.Name
		if item.SizeLabel != "" {
			name = fmt.Sprintf("%s (%s)", name, item.SizeLabel)
		}
		lines = append(lines, fmt.Sprintf("%dx %s @ %s = %s",
			item.Quantity, name, f.money(item.UnitPrice), f.money(item.LineTotal())))
	}
	return lines
}

func (f *Formatter) totalsBlock(o domain.OrderNotification) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Subtotal: %s\n", f.money(o.Subtotal))
	if o.IsDelivery() {
		fmt.Fprintf(&b, "Delivery fee: %s\n", f.money(o.DeliveryFee))
	}
	fmt.Fprintf(&b, "Total: %s\n", f.money(o.FinalTotal))
	return b.String()
}
