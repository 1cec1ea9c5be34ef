package repository

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/restaurant-ecommerce/notification-service/internal/domain"
)

const deliverySchema = `
	CREATE TABLE IF NOT EXISTS notification_deliveries (
		id          UUID PRIMARY KEY,
		order_id    TEXT NOT NULL DEFAULT '',
		kind        TEXT NOT NULL,
		channel     TEXT NOT NULL,
		recipient   TEXT NOT NULL DEFAULT '',
		address     TEXT NOT NULL DEFAULT '',
		status      TEXT NOT NULL,
		failure     TEXT NOT NULL DEFAULT '',
		message_id  TEXT NOT NULL DEFAULT '',
		error       TEXT NOT NULL DEFAULT '',
		created_at  TIMESTAMPTZ NOT NULL
	);
	ALTER TABLE notification_deliveries
		ADD COLUMN IF NOT EXISTS address TEXT NOT NULL DEFAULT '';
	CREATE INDEX IF NOT EXISTS idx_notification_deliveries_order_id
		ON notification_deliveries (order_id);
`

// DeliveryRepository is the Postgres delivery ledger.
type DeliveryRepository struct {
	db *sql.DB
}

func NewDeliveryRepository(db *sql.DB) *DeliveryRepository {
	return &DeliveryRepository{db: db}
}

func (r *DeliveryRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, deliverySchema); err != nil {
		return fmt.Errorf("create delivery schema: %w", err)
	}
	return nil
}

func (r *DeliveryRepository) RecordDeliveries(ctx context.Context, records []domain.DeliveryRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delivery tx: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO notification_deliveries (
			id, order_id, kind, channel, recipient, address, status,
			failure, message_id, error, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare delivery insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		_, err := stmt.ExecContext(ctx,
			rec.ID,
			rec.OrderID,
			rec.Kind,
			rec.Channel,
			rec.Recipient,
			rec.Address,
			rec.Status,
			rec.Failure,
			rec.MessageID,
			rec.Error,
			rec.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert delivery %s: %w", rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit deliveries: %w", err)
	}
	return nil
}

func (r *DeliveryRepository) GetDeliveriesByOrderID(ctx context.Context, orderID string) ([]domain.DeliveryRecord, error) {
	query := `
		SELECT id, order_id, kind, channel, recipient, address, status,
			   failure, message_id, error, created_at
		FROM notification_deliveries
		WHERE order_id = $1
		ORDER BY created_at DESC, channel
	`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("query deliveries: %w", err)
	}
	defer rows.Close()

	var records []domain.DeliveryRecord
	for rows.Next() {
		var rec domain.DeliveryRecord
		err := rows.Scan(
			&rec.ID,
			&rec.OrderID,
			&rec.Kind,
			&rec.Channel,
			&rec.Recipient,
			&rec.Address,
			&rec.Status,
			&rec.Failure,
			&rec.MessageID,
			&rec.Error,
			&rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan delivery: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
