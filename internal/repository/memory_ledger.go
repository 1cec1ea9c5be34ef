package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/restaurant-ecommerce/notification-service/internal/domain"
)

// MemoryLedger keeps deliveries in process. It is used when no database is
// configured and in tests.
type MemoryLedger struct {
	mu      sync.RWMutex
	byOrder map[string][]domain.DeliveryRecord
	limit   int
}

func NewMemoryLedger(perOrderLimit int) *MemoryLedger {
	return &MemoryLedger{byOrder: make(map[string][]domain.DeliveryRecord), limit: perOrderLimit}
}

func (l *MemoryLedger) RecordDeliveries(_ context.Context, records []domain.DeliveryRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, rec := range records {
		list := append(l.byOrder[rec.OrderID], rec)
		if l.limit > 0 && len(list) > l.limit {
			list = list[len(list)-l.limit:]
		}
		l.byOrder[rec.OrderID] = list
	}
	return nil
}

// GetDeliveriesByOrderID returns the newest deliveries first.
func (l *MemoryLedger) GetDeliveriesByOrderID(_ context.Context, orderID string) ([]domain.DeliveryRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.DeliveryRecord, len(l.byOrder[orderID]))
	copy(out, l.byOrder[orderID])
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
