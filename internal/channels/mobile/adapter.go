// Package mobile is the SMS and WhatsApp channel adapter.
package mobile

import (
	"context"
	"strings"

	"github.com/restaurant-ecommerce/notification-service/internal/domain"
)

const whatsappScheme = "whatsapp:"

type Config struct {
	SMSFrom      string
	WhatsAppFrom string
}

type Adapter struct {
	gateway Gateway
	cfg     Config
}

func NewAdapter(gateway Gateway, cfg Config) *Adapter {
	return &Adapter{
		gateway: gateway,
		cfg: Config{
			SMSFrom:      strings.TrimSpace(cfg.SMSFrom),
			WhatsAppFrom: strings.TrimSpace(cfg.WhatsAppFrom),
		},
	}
}

func (a *Adapter) SMSConfigured() bool {
	return a != nil && a.gateway != nil && a.cfg.SMSFrom != ""
}

func (a *Adapter) WhatsAppConfigured() bool {
	return a != nil && a.gateway != nil && a.cfg.WhatsAppFrom != ""
}

func (a *Adapter) SendSMS(ctx context.Context, to domain.Recipient, body string) domain.ChannelResult {
	if !a.SMSConfigured() {
		return domain.NotConfigured(domain.ChannelSMS)
	}
	phone := strings.TrimSpace(to.Phone)
	if phone == "" {
		return domain.NoRecipient(domain.ChannelSMS, to.Label(), "no phone number")
	}
	sid, err := a.gateway.CreateMessage(ctx, a.cfg.SMSFrom, phone, body)
	if err != nil {
		return domain.FromError(domain.ChannelSMS, to.Label(), err).WithAddress(phone)
	}
	return domain.Delivered(domain.ChannelSMS, to.Label(), sid).WithAddress(phone)
}

// SendWhatsApp prefers the recipient's WhatsApp number and falls back to
// their phone number.
func (a *Adapter) SendWhatsApp(ctx context.Context, to domain.Recipient, body string) domain.ChannelResult {
	if !a.WhatsAppConfigured() {
		return domain.NotConfigured(domain.ChannelWhatsApp)
	}
	handle := strings.TrimSpace(to.WhatsApp)
	if handle == "" {
		handle = strings.TrimSpace(to.Phone)
	}
	if handle == "" {
		return domain.NoRecipient(domain.ChannelWhatsApp, to.Label(), "no whatsapp number")
	}
	addr := whatsappAddress(handle)
	sid, err := a.gateway.CreateMessage(ctx, whatsappAddress(a.cfg.WhatsAppFrom), addr, body)
	if err != nil {
		return domain.FromError(domain.ChannelWhatsApp, to.Label(), err).WithAddress(addr)
	}
	return domain.Delivered(domain.ChannelWhatsApp, to.Label(), sid).WithAddress(addr)
}

// Broadcast sends the SMS body then the WhatsApp body to every recipient in
// order. Unconfigured channels report once instead of once per recipient.
func (a *Adapter) Broadcast(ctx context.Context, to []domain.Recipient, msg domain.FormattedMessage) []domain.ChannelResult {
	smsOn, waOn := a.SMSConfigured(), a.WhatsAppConfigured()

	var results []domain.ChannelResult
	if !smsOn {
		results = append(results, domain.NotConfigured(domain.ChannelSMS))
	}
	if !waOn {
		results = append(results, domain.NotConfigured(domain.ChannelWhatsApp))
	}
	if !smsOn && !waOn {
		return results
	}
	if len(to) == 0 {
		return append(results, domain.NoRecipient(domain.ChannelSMS, "", "no recipients configured"))
	}

	smsBody := msg.UrgentBody
	if smsBody == "" {
		smsBody = msg.ShortBody
	}
	for _, r := range to {
		if smsOn {
			results = append(results, a.SendSMS(ctx, r, smsBody))
		}
		if waOn {
			results = append(results, a.SendWhatsApp(ctx, r, msg.FullBody))
		}
	}
	return results
}

func whatsappAddress(number string) string {
	if strings.HasPrefix(number, whatsappScheme) {
		return number
	}
	return whatsappScheme + number
}
