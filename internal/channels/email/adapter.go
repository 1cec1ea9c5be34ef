// Package email is the email channel adapter.
package email

import (
	"context"
	"strings"

	"github.com/restaurant-ecommerce/notification-service/internal/domain"
)

// Adapter turns email sends into ChannelResults. A nil mailer or empty sender
// address leaves the channel unconfigured.
type Adapter struct {
	mailer Mailer
	from   string
}

func NewAdapter(mailer Mailer, from string) *Adapter {
	return &Adapter{mailer: mailer, from: strings.TrimSpace(from)}
}

func (a *Adapter) Configured() bool {
	return a != nil && a.mailer != nil && a.from != ""
}

func (a *Adapter) Send(ctx context.Context, to string, content domain.EmailContent) domain.ChannelResult {
	if !a.Configured() {
		return domain.NotConfigured(domain.ChannelEmail)
	}
	to = strings.TrimSpace(to)
	if to == "" {
		return domain.NoRecipient(domain.ChannelEmail, "", "no email address")
	}

	err := a.mailer.Send(ctx, Message{
		From:    a.from,
		To:      to,
		Subject: content.Subject,
		HTML:    content.HTML,
		Text:    content.Text,
	})
	if err != nil {
		return domain.FromError(domain.ChannelEmail, domain.MaskEmail(to), err).WithAddress(to)
	}
	return domain.Delivered(domain.ChannelEmail, domain.MaskEmail(to), "").WithAddress(to)
}

// SendAll mails each address in order. A failure for one address does not
// stop the rest.
func (a *Adapter) SendAll(ctx context.Context, to []string, content domain.EmailContent) []domain.ChannelResult {
	if !a.Configured() {
		return []domain.ChannelResult{domain.NotConfigured(domain.ChannelEmail)}
	}
	if len(to) == 0 {
		return []domain.ChannelResult{domain.NoRecipient(domain.ChannelEmail, "", "no email addresses configured")}
	}
	results := make([]domain.ChannelResult, 0, len(to))
	for _, addr := range to {
		results = append(results, a.Send(ctx, addr, content))
	}
	return results
}
