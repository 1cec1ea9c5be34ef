// Package directory maps staff roles and notification kinds to recipients.
package directory

import (
	"strings"

	"github.com/restaurant-ecommerce/notification-service/internal/config"
	"github.com/restaurant-ecommerce/notification-service/internal/domain"
)

// Directory is built once from configuration and only read afterwards.
type Directory struct {
	primary       domain.Recipient
	secondary     domain.Recipient
	manager       domain.Recipient
	kitchenEmails []string
	kitchenTopic  string
	managerTopic  string
}

func New(recipients config.Recipients, push config.Push) *Directory {
	d := &Directory{
		primary:      recipient(recipients.Primary(), domain.RolePrimary, "Kitchen"),
		secondary:    recipient(recipients.Secondary(), domain.RoleSecondary, "Kitchen (secondary)"),
		manager:      recipient(recipients.Manager(), domain.RoleManager, "Manager"),
		kitchenTopic: strings.TrimSpace(push.KitchenTopic),
		managerTopic: strings.TrimSpace(push.ManagerTopic),
	}
	if d.managerTopic == "" {
		d.managerTopic = d.kitchenTopic
	}

	emails := recipients.KitchenEmailList
	if len(emails) == 0 {
		emails = []string{d.primary.Email, d.secondary.Email, d.manager.Email}
	}
	d.kitchenEmails = dedupe(emails)
	return d
}

func recipient(c config.Contact, role domain.Role, defaultName string) domain.Recipient {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		name = defaultName
	}
	return domain.Recipient{
		Name:     name,
		Role:     role,
		Phone:    strings.TrimSpace(c.Phone),
		WhatsApp: strings.TrimSpace(c.WhatsApp),
		Email:    strings.TrimSpace(c.Email),
	}
}

func (d *Directory) Role(role domain.Role) []domain.Recipient {
	switch role {
	case domain.RolePrimary:
		return []domain.Recipient{d.primary}
	case domain.RoleSecondary:
		return []domain.Recipient{d.secondary}
	case domain.RoleManager:
		return []domain.Recipient{d.manager}
	}
	return nil
}

// Staff returns every configured role. Recipients without contact details are
// kept so that adapters report a skipped result for them.
func (d *Directory) Staff() []domain.Recipient {
	return []domain.Recipient{d.primary, d.secondary, d.manager}
}

func (d *Directory) Audience(kind domain.NotificationKind) domain.Audience {
	if kind == domain.KindPayment {
		return domain.Audience{Recipients: d.Role(domain.RoleManager), PushTopic: d.managerTopic}
	}
	return domain.Audience{Recipients: d.Staff(), PushTopic: d.kitchenTopic}
}

func (d *Directory) KitchenEmails() []string {
	out := make([]string, len(d.kitchenEmails))
	copy(out, d.kitchenEmails)
	return out
}

type Summary struct {
	Recipients      int  `json:"recipients"`
	WithPhone       int  `json:"withPhone"`
	WithWhatsApp    int  `json:"withWhatsApp"`
	WithEmail       int  `json:"withEmail"`
	KitchenEmails   int  `json:"kitchenEmails"`
	KitchenTopic    bool `json:"kitchenTopic"`
	SeparateManager bool `json:"separateManagerTopic"`
}

// Summary counts contacts without exposing them.
func (d *Directory) Summary() Summary {
	s := Summary{
		KitchenEmails:   len(d.kitchenEmails),
		KitchenTopic:    d.kitchenTopic != "",
		SeparateManager: d.managerTopic != d.kitchenTopic,
	}
	for _, r := range d.Staff() {
		s.Recipients++
		if r.Phone != "" {
			s.WithPhone++
		}
		if r.WhatsApp != "" || r.Phone != "" {
			s.WithWhatsApp++
		}
		if r.Email != "" {
			s.WithEmail++
		}
	}
	return s
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	var out []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		key := strings.ToLower(v)
		if v == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}
