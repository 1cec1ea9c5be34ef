package domain

import (
	"context"
	"errors"
	"strings"
)

type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelSMS      Channel = "sms"
	ChannelWhatsApp Channel = "whatsapp"
	ChannelPush     Channel = "push"
)

// FailureKind separates the reasons a channel did not deliver.
type FailureKind string

const (
	FailureNotConfigured FailureKind = "not_configured"
	FailureNoRecipient   FailureKind = "no_recipient"
	FailureTransport     FailureKind = "transport"
	FailureTimeout       FailureKind = "timeout"
)

// ChannelResult is the uniform outcome of every adapter call. Recipient is a
// display label safe to return to callers; Address is the raw phone number,
// WhatsApp handle or email address and only reaches the delivery ledger.
type ChannelResult struct {
	Kind      NotificationKind `json:"kind,omitempty"`
	Channel   Channel          `json:"channel"`
	Recipient string           `json:"recipient,omitempty"`
	Address   string           `json:"-"`
	Success   bool             `json:"success"`
	Skipped   bool             `json:"skipped,omitempty"`
	Failure   FailureKind      `json:"failure,omitempty"`
	MessageID string           `json:"messageId,omitempty"`
	Error     string           `json:"error,omitempty"`
}

func Delivered(channel Channel, recipient, messageID string) ChannelResult {
	return ChannelResult{Channel: channel, Recipient: recipient, Success: true, MessageID: messageID}
}

func NotConfigured(channel Channel) ChannelResult {
	return ChannelResult{
		Channel: channel,
		Skipped: true,
		Failure: FailureNotConfigured,
		Error:   ErrNotConfigured.Error(),
	}
}

// NoRecipient is the no-op result for a recipient lacking the contact field
// a channel needs.
func NoRecipient(channel Channel, recipient, reason string) ChannelResult {
	return ChannelResult{
		Channel:   channel,
		Recipient: recipient,
		Skipped:   true,
		Failure:   FailureNoRecipient,
		Error:     reason,
	}
}

// FromError classifies a failed send, keeping the provider message.
func FromError(channel Channel, recipient string, err error) ChannelResult {
	res := ChannelResult{Channel: channel, Recipient: recipient, Failure: FailureTransport}
	switch {
	case err == nil:
		res.Error = "unknown error"
	case errors.Is(err, context.DeadlineExceeded):
		res.Failure = FailureTimeout
		res.Error = err.Error()
	case errors.Is(err, ErrNotConfigured):
		res.Skipped = true
		res.Failure = FailureNotConfigured
		res.Error = ErrNotConfigured.Error()
	default:
		res.Error = err.Error()
	}
	return res
}

// WithAddress records the raw address the result was sent to.
func (r ChannelResult) WithAddress(address string) ChannelResult {
	r.Address = address
	return r
}

// MaskEmail keeps the first letter of the local part and the domain:
// chef@example.com becomes c***@example.com.
func MaskEmail(addr string) string {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return ""
	}
	local, host, ok := strings.Cut(addr, "@")
	if !ok || local == "" {
		return "***"
	}
	return local[:1] + "***@" + host
}

// WithKind tags results with the notification they belong to.
func WithKind(kind NotificationKind, results ...ChannelResult) []ChannelResult {
	out := make([]ChannelResult, len(results))
	for i, r := range results {
		r.Kind = kind
		out[i] = r
	}
	return out
}

// AnySucceeded reports whether at least one result delivered.
func AnySucceeded(results []ChannelResult) bool {
	for _, r := range results {
		if r.Success {
			return true
		}
	}
	return false
}
