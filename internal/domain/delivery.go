package domain

import (
	"time"

	"github.com/google/uuid"
)

type DeliveryStatus string

const (
	DeliveryStatusSent    DeliveryStatus = "sent"
	DeliveryStatusFailed  DeliveryStatus = "failed"
	DeliveryStatusSkipped DeliveryStatus = "skipped"
)

// DeliveryRecord is one ChannelResult as kept in the delivery ledger.
type DeliveryRecord struct {
	ID        uuid.UUID        `json:"id"`
	OrderID   string           `json:"orderId,omitempty"`
	Kind      NotificationKind `json:"kind"`
	Channel   Channel          `json:"channel"`
	Recipient string           `json:"recipient,omitempty"`
	Address   string           `json:"-"`
	Status    DeliveryStatus   `json:"status"`
	Failure   FailureKind      `json:"failure,omitempty"`
	MessageID string           `json:"messageId,omitempty"`
	Error     string           `json:"error,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
}

func NewDeliveryRecord(orderID string, r ChannelResult, at time.Time) DeliveryRecord {
	status := DeliveryStatusFailed
	switch {
	case r.Success:
		status = DeliveryStatusSent
	case r.Skipped:
		status = DeliveryStatusSkipped
	}
	address := r.Address
	if address == "" {
		address = r.Recipient
	}
	return DeliveryRecord{
		ID:        uuid.New(),
		OrderID:   orderID,
		Kind:      r.Kind,
		Channel:   r.Channel,
		Recipient: r.Recipient,
		Address:   address,
		Status:    status,
		Failure:   r.Failure,
		MessageID: r.MessageID,
		Error:     r.Error,
		CreatedAt: at,
	}
}

func DeliveryRecords(orderID string, results []ChannelResult, at time.Time) []DeliveryRecord {
	records := make([]DeliveryRecord, 0, len(results))
	for _, r := range results {
		records = append(records, NewDeliveryRecord(orderID, r, at))
	}
	return records
}
