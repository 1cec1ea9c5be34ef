package repository

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/restaurant-ecommerce/notification-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryIdempotencyExpires(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryIdempotencyStore(time.Minute)
	store.now = func() time.Time { return now }

	ok, _, err := store.Check(ctx, "1001")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Save(ctx, "1001", []byte(`{"success":true}`)))
	ok, data, err := store.Check(ctx, "1001")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"success":true}`, string(data))

	now = now.Add(time.Minute)
	ok, _, err = store.Check(ctx, "1001")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryLedgerNewestFirst(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedger(3)
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	first := domain.DeliveryRecords("1001", []domain.ChannelResult{
		domain.Delivered(domain.ChannelEmail, "a@example.com", ""),
		domain.NotConfigured(domain.ChannelPush),
	}, base)
	second := domain.DeliveryRecords("1001", []domain.ChannelResult{
		domain.Delivered(domain.ChannelSMS, "+44", "SM1"),
		domain.FromError(domain.ChannelWhatsApp, "whatsapp:+44", assert.AnError),
	}, base.Add(time.Minute))

	require.NoError(t, ledger.RecordDeliveries(ctx, first))
	require.NoError(t, ledger.RecordDeliveries(ctx, second))

	got, err := ledger.GetDeliveriesByOrderID(ctx, "1001")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, domain.ChannelSMS, got[0].Channel)
	assert.Equal(t, domain.DeliveryStatusSent, got[0].Status)
	assert.Equal(t, domain.DeliveryStatusFailed, got[1].Status)
	assert.Equal(t, domain.DeliveryStatusSkipped, got[2].Status)

	none, err := ledger.GetDeliveriesByOrderID(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDeliveryRepositoryPostgres(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	defer db.Close()

	repo := NewDeliveryRepository(db)
	require.NoError(t, repo.EnsureSchema(ctx))

	orderID := "it-" + time.Now().Format("150405.000000")
	recs := domain.DeliveryRecords(orderID, []domain.ChannelResult{
		domain.Delivered(domain.ChannelSMS, "Chef", "abc").WithAddress("+447700900001"),
	}, time.Now().UTC().Truncate(time.Microsecond))
	require.NoError(t, repo.RecordDeliveries(ctx, recs))

	got, err := repo.GetDeliveriesByOrderID(ctx, orderID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, recs[0].ID, got[0].ID)
	assert.Equal(t, "abc", got[0].MessageID)
	assert.Equal(t, "Chef", got[0].Recipient)
	assert.Equal(t, "+447700900001", got[0].Address)
}

func TestRedisIdempotencyStore(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	defer client.Close()

	ctx := context.Background()
	store := NewRedisIdempotencyStore(client, time.Minute)
	key := "it-" + time.Now().Format("150405.000000")

	ok, _, err := store.Check(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Save(ctx, key, []byte("x")))
	ok, data, err := store.Check(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("x"), data)
}
