package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/restaurant-ecommerce/notification-service/internal/domain"
)

func (f *Formatter) Urgent(a domain.UrgentAlert) domain.FormattedMessage {
	title := "URGENT"
	if a.OrderID != "" {
		title = "URGENT - " + a.OrderID
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", title)
	fmt.Fprintf(&b, "Time: %s\n\n", f.when(a.Timestamp))
	b.WriteString(a.Message)
	if a.RaisedBy != "" {
		fmt.Fprintf(&b, "\n\nRaised by: %s", a.RaisedBy)
	}

	return domain.FormattedMessage{
		Title:      title,
		ShortBody:  truncate(a.Message, 120),
		FullBody:   b.String(),
		UrgentBody: truncate(title+": "+a.Message, smsLimit),
		Priority:   domain.PriorityUrgent,
		Tags:       []string{"rotating_light", "urgent"},
	}
}

func (f *Formatter) CustomerMessage(m domain.CustomerMessage) domain.FormattedMessage {
	subject := fallback(m.Subject, "Message from "+m.Name)

	var b strings.Builder
	fmt.Fprintf(&b, "CUSTOMER MESSAGE\n")
	fmt.Fprintf(&b, "Time: %s\n\n", f.when(m.Timestamp))
	fmt.Fprintf(&b, "From: %s\n", m.Name)
	if m.Email != "" {
		fmt.Fprintf(&b, "Email: %s\n", m.Email)
	}
	if m.Phone != "" {
		fmt.Fprintf(&b, "Phone: %s\n", m.Phone)
	}
	fmt.Fprintf(&b, "Subject: %s\n\n", subject)
	b.WriteString(m.Message)

	return domain.FormattedMessage{
		Title:      "Customer message: " + truncate(subject, 80),
		ShortBody:  truncate(m.Name+": "+m.Message, 120),
		FullBody:   b.String(),
		UrgentBody: truncate("Customer message from "+m.Name+": "+m.Message, smsLimit),
		Priority:   domain.PriorityDefault,
		Tags:       []string{"speech_balloon", "customer"},
	}
}

// Test renders the smoke-test message sent by the diagnostic endpoint.
func (f *Formatter) Test(at time.Time) domain.FormattedMessage {
	body := fmt.Sprintf("Test notification from %s at %s. If you can read this, the channel is wired correctly.",
		f.settings.RestaurantName, f.when(at))
	return domain.FormattedMessage{
		Title:      "Test notification",
		ShortBody:  "Test notification",
		FullBody:   body,
		UrgentBody: truncate(body, smsLimit),
		Priority:   domain.PriorityLow,
		Tags:       []string{"test_tube", "test"},
	}
}
