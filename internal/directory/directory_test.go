package directory

import (
	"testing"

	"github.com/restaurant-ecommerce/notification-service/internal/config"
	"github.com/restaurant-ecommerce/notification-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recipients() config.Recipients {
	return config.Recipients{
		PrimaryName:  "Head Chef",
		PrimaryPhone: "+447700900001",
		PrimaryEmail: "chef@example.com",
		ManagerPhone: "+447700900003",
		ManagerEmail: "Chef@example.com",
	}
}

func TestPaymentAudienceIsManagerOnly(t *testing.T) {
	d := New(recipients(), config.Push{KitchenTopic: "kitchen", ManagerTopic: "manager"})

	aud := d.Audience(domain.KindPayment)
	require.Len(t, aud.Recipients, 1)
	assert.Equal(t, domain.RoleManager, aud.Recipients[0].Role)
	assert.Equal(t, "Manager", aud.Recipients[0].Name)
	assert.Equal(t, "manager", aud.PushTopic)

	order := d.Audience(domain.KindOrder)
	assert.Len(t, order.Recipients, 3)
	assert.Equal(t, "kitchen", order.PushTopic)
}

func TestManagerTopicDefaultsToKitchen(t *testing.T) {
	d := New(recipients(), config.Push{KitchenTopic: "kitchen"})
	assert.Equal(t, "kitchen", d.Audience(domain.KindPayment).PushTopic)
	assert.False(t, d.Summary().SeparateManager)
}

func TestEmptyContactsAreKept(t *testing.T) {
	d := New(config.Recipients{}, config.Push{})

	staff := d.Staff()
	require.Len(t, staff, 3)
	assert.Equal(t, "Kitchen (secondary)", staff[1].Name)
	assert.Empty(t, staff[1].Phone)
	assert.Empty(t, d.KitchenEmails())
}

func TestKitchenEmails(t *testing.T) {
	d := New(recipients(), config.Push{})
	assert.Equal(t, []string{"chef@example.com"}, d.KitchenEmails())

	r := recipients()
	r.KitchenEmailList = []string{"line@example.com", "pass@example.com"}
	assert.Equal(t, []string{"line@example.com", "pass@example.com"}, New(r, config.Push{}).KitchenEmails())
}

func TestSummary(t *testing.T) {
	s := New(recipients(), config.Push{KitchenTopic: "kitchen"}).Summary()
	assert.Equal(t, 3, s.Recipients)
	assert.Equal(t, 2, s.WithPhone)
	assert.Equal(t, 2, s.WithEmail)
	assert.Equal(t, 1, s.KitchenEmails)
	assert.True(t, s.KitchenTopic)
}
