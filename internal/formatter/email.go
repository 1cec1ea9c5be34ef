package formatter

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/restaurant-ecommerce/notification-service/internal/domain"
)

var emailTemplates = template.Must(template.New("email").Parse(`
{{define "layout-start"}}<!DOCTYPE html>
<html><body style="font-family:Arial,sans-serif;color:#222;max-width:600px;margin:0 auto">
<h2 style="color:#b33">{{.Restaurant}}</h2>{{end}}
{{define "layout-end"}}</body></html>{{end}}

{{define "items"}}<table style="width:100%;border-collapse:collapse">
{{range .Items}}<tr><td>{{.Quantity}}x {{.Name}}</td><td style="text-align:right">{{.Total}}</td></tr>
{{end}}</table>{{end}}

{{define "totals"}}<p>Subtotal: {{.Subtotal}}<br>
{{if .Delivery}}Delivery fee: {{.DeliveryFee}}<br>{{end}}
<strong>Total: {{.Total}}</strong></p>{{end}}

{{define "fulfilment"}}{{if .Delivery}}<p><strong>Delivery to:</strong><br>{{.Address}}<br>{{.City}}<br>{{.Postcode}}</p>
{{else}}<p><strong>Collection:</strong> {{.CollectionSite}}</p>{{end}}{{end}}

{{define "receipt"}}{{template "layout-start" .}}
<p>Hi {{.CustomerName}},</p>
<p>Thank you for your order. We have received your payment and the kitchen has your order.</p>
<p><strong>Order:</strong> {{.OrderID}}<br><strong>Placed:</strong> {{.Placed}}</p>
{{template "items" .}}
{{template "totals" .}}
{{template "fulfilment" .}}
<p>Paid by {{.PaymentMethod}}.</p>
{{template "layout-end" .}}{{end}}

{{define "ticket"}}{{template "layout-start" .}}
<h3>New order {{.OrderID}}</h3>
<p><strong>Placed:</strong> {{.Placed}}</p>
<p><strong>Customer:</strong> {{.CustomerName}}<br>Phone: {{.Phone}}<br>Email: {{.Email}}</p>
{{template "fulfilment" .}}
{{template "items" .}}
{{template "totals" .}}
<p>Payment: {{.PaymentMethod}}</p>
{{template "layout-end" .}}{{end}}

{{define "customer-message"}}{{template "layout-start" .}}
<h3>Customer message</h3>
<p><strong>From:</strong> {{.Name}}<br>Email: {{.Email}}<br>Phone: {{.Phone}}<br>Received: {{.Received}}</p>
<p><strong>{{.Subject}}</strong></p>
<p style="white-space:pre-wrap">{{.Message}}</p>
{{template "layout-end" .}}{{end}}
`))

type emailItem struct {
	Quantity int
	Name     string
	Total    string
}

type orderEmailData struct {
	Restaurant     string
	OrderID        string
	Placed         string
	CustomerName   string
	Phone          string
	Email          string
	Items          []emailItem
	Subtotal       string
	DeliveryFee    string
	Total          string
	Delivery       bool
	Address        string
	City           string
	Postcode       string
	CollectionSite string
	PaymentMethod  string
}

func (f *Formatter) orderEmailData(o domain.OrderNotification) orderEmailData {
	items := make([]emailItem, 0, len(o.Items))
	for _, item := range o.Items {
		name := item.Name
		if item.SizeLabel != "" {
			name = fmt.Sprintf("%s (%s)", name, item.SizeLabel)
		}
		items = append(items, emailItem{Quantity: item.Quantity, Name: name, Total: f.money(item.LineTotal())})
	}
	return orderEmailData{
		Restaurant:     f.settings.RestaurantName,
		OrderID:        o.OrderID,
		Placed:         f.when(o.Timestamp),
		CustomerName:   o.Customer.FullName,
		Phone:          fallback(o.Customer.Phone, "-"),
		Email:          fallback(o.Customer.Email, "-"),
		Items:          items,
		Subtotal:       f.money(o.Subtotal),
		DeliveryFee:    f.money(o.DeliveryFee),
		Total:          f.money(o.FinalTotal),
		Delivery:       o.IsDelivery(),
		Address:        o.Customer.Address,
		City:           o.Customer.City,
		Postcode:       o.Customer.Postcode,
		CollectionSite: f.settings.CollectionSite,
		PaymentMethod:  fallback(o.PaymentMethod, "unspecified"),
	}
}

// CustomerReceipt is the confirmation email sent to the customer.
func (f *Formatter) CustomerReceipt(o domain.OrderNotification) (domain.EmailContent, error) {
	html, err := render("receipt", f.orderEmailData(o))
	if err != nil {
		return domain.EmailContent{}, err
	}

	var text strings.Builder
	fmt.Fprintf(&text, "Hi %s,\n\nThank you for your order with %s.\n\n", o.Customer.FullName, f.settings.RestaurantName)
	fmt.Fprintf(&text, "Order: %s\nPlaced: %s\n\n", o.OrderID, f.when(o.Timestamp))
	for _, line := range f.itemLines(o.Items) {
		text.WriteString("- " + line + "\n")
	}
	text.WriteString("\n" + f.totalsBlock(o) + "\n")
	text.WriteString(f.fulfilmentBlock(o))

	return domain.EmailContent{
		Subject: fmt.Sprintf("Order confirmation %s - %s", o.OrderID, f.settings.RestaurantName),
		HTML:    html,
		Text:    text.String(),
	}, nil
}

// KitchenTicket is the order email sent to kitchen staff.
func (f *Formatter) KitchenTicket(o domain.OrderNotification) (domain.EmailContent, error) {
	html, err := render("ticket", f.orderEmailData(o))
	if err != nil {
		return domain.EmailContent{}, err
	}
	return domain.EmailContent{
		Subject: fmt.Sprintf("New %s order %s - %s", o.Fulfillment, o.OrderID, f.money(o.FinalTotal)),
		HTML:    html,
		Text:    f.orderBody(o),
	}, nil
}

func (f *Formatter) CustomerMessageEmail(m domain.CustomerMessage) (domain.EmailContent, error) {
	subject := fallback(m.Subject, "Message from "+m.Name)
	html, err := render("customer-message", map[string]string{
		"Restaurant": f.settings.RestaurantName,
		"Name":       m.Name,
		"Email":      fallback(m.Email, "-"),
		"Phone":      fallback(m.Phone, "-"),
		"Received":   f.when(m.Timestamp),
		"Subject":    subject,
		"Message":    m.Message,
	})
	if err != nil {
		return domain.EmailContent{}, err
	}
	return domain.EmailContent{
		Subject: "Customer message: " + subject,
		HTML:    html,
		Text:    f.CustomerMessage(m).FullBody,
	}, nil
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := emailTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s email: %w", name, err)
	}
	return buf.String(), nil
}
