package email

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/restaurant-ecommerce/notification-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	mu   sync.Mutex
	sent []Message
	fail map[string]error
}

func (m *fakeMailer) Send(_ context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return m.fail[msg.To]
}

var content = domain.EmailContent{Subject: "New order", HTML: "<p>hi</p>", Text: "hi"}

func TestSendAllContinuesAfterFailure(t *testing.T) {
	mailer := &fakeMailer{fail: map[string]error{"b@example.com": errors.New("550 mailbox unavailable")}}
	adapter := NewAdapter(mailer, "orders@example.com")

	results := adapter.SendAll(context.Background(), []string{"a@example.com", "b@example.com", "c@example.com"}, content)

	require.Len(t, results, 3)
	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)
	assert.Equal(t, domain.FailureTransport, results[1].Failure)
	assert.Equal(t, "550 mailbox unavailable", results[1].Error)
	assert.True(t, results[2].Success)
	assert.Equal(t, "a***@example.com", results[0].Recipient)
	assert.Equal(t, "a@example.com", results[0].Address)
	assert.Equal(t, "b@example.com", results[1].Address)

	require.Len(t, mailer.sent, 3)
	assert.Equal(t, "a@example.com", mailer.sent[0].To)
	assert.Equal(t, "c@example.com", mailer.sent[2].To)
	assert.Equal(t, "orders@example.com", mailer.sent[0].From)
}

func TestUnconfiguredMakesNoCall(t *testing.T) {
	mailer := &fakeMailer{}
	adapter := NewAdapter(mailer, "")

	res := adapter.Send(context.Background(), "a@example.com", content)
	assert.False(t, res.Success)
	assert.Equal(t, domain.FailureNotConfigured, res.Failure)
	assert.Equal(t, "not configured", res.Error)
	assert.Empty(t, mailer.sent)

	var nilAdapter *Adapter
	assert.Equal(t, domain.FailureNotConfigured, nilAdapter.Send(context.Background(), "a@example.com", content).Failure)
}

func TestMissingAddressIsSkipped(t *testing.T) {
	mailer := &fakeMailer{}
	adapter := NewAdapter(mailer, "orders@example.com")

	res := adapter.Send(context.Background(), "  ", content)
	assert.True(t, res.Skipped)
	assert.Equal(t, domain.FailureNoRecipient, res.Failure)
	assert.Empty(t, mailer.sent)

	results := adapter.SendAll(context.Background(), nil, content)
	require.Len(t, results, 1)
	assert.Equal(t, domain.FailureNoRecipient, results[0].Failure)
}
