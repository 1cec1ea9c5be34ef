package formatter

import (
	"fmt"
	"strings"

	"github.com/restaurant-ecommerce/notification-service/internal/domain"
)

// Payment renders a payment outcome for the manager. Failed payments are
// raised to urgent priority.
func (f *Formatter) Payment(p domain.PaymentNotification) domain.FormattedMessage {
	status := strings.ToUpper(string(p.Status))
	method := fallback(p.PaymentMethod, "unspecified")

	msg := domain.FormattedMessage{
		Title:      fmt.Sprintf("Payment %s - %s", status, p.OrderID),
		ShortBody:  fmt.Sprintf("Payment %s | %s | %s | %s", status, p.OrderID, f.money(p.Amount), method),
		FullBody:   f.paymentBody(p),
		UrgentBody: fmt.Sprintf("PAYMENT %s: order %s, %s via %s (%s)", status, p.OrderID, f.money(p.Amount), method, p.Customer.FullName),
		Priority:   domain.PriorityDefault,
	}

	switch p.Status {
	case domain.PaymentFailed:
		msg.Priority = domain.PriorityUrgent
		msg.Tags = []string{"x", "payment"}
		if p.FailureReason != "" {
			msg.UrgentBody += ". Reason: " + p.FailureReason
		}
	case domain.PaymentPending:
		msg.Tags = []string{"hourglass", "payment"}
	default:
		msg.Tags = []string{"white_check_mark", "payment"}
	}
	msg.UrgentBody = truncate(msg.UrgentBody, smsLimit)
	return msg
}

func (f *Formatter) paymentBody(p domain.PaymentNotification) string {
	var b strings.Builder
	fmt.Fprintf(&b, "PAYMENT %s - %s\n", strings.ToUpper(string(p.Status)), p.OrderID)
	fmt.Fprintf(&b, "Time: %s\n\n", f.when(p.Timestamp))
	fmt.Fprintf(&b, "Amount: %s\n", f.money(p.Amount))
	fmt.Fprintf(&b, "Method: %s\n", fallback(p.PaymentMethod, "unspecified"))
	if p.TransactionID != "" {
		fmt.Fprintf(&b, "Transaction: %s\n", p.TransactionID)
	}
	if p.FailureReason != "" {
		fmt.Fprintf(&b, "Reason: %s\n", p.FailureReason)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Customer: %s", p.Customer.FullName)
	if p.Customer.Phone != "" {
		fmt.Fprintf(&b, "\nPhone: %s", p.Customer.Phone)
	}
	if p.Customer.Email != "" {
		fmt.Fprintf(&b, "\nEmail: %s", p.Customer.Email)
	}
	return b.String()
}
