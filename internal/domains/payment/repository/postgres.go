package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/edproton/xceltutors-next/internal/domains/payment/model"
)

// =====================================================
// PAYMENT REPOSITORY
// =====================================================

type postgresPaymentRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresPaymentRepository(pool *pgxpool.Pool) PaymentRepository {
	return &postgresPaymentRepository{
		pool: pool,
	}
}

func (r *postgresPaymentRepository) UpsertWithTx(ctx context.Context, tx pgx.Tx, payment *model.Payment) error {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}

	query := `
		INSERT INTO payments (
			id, booking_id, session_id, session_url,
			payment_intent_id, charge_id, metadata
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (booking_id) DO UPDATE SET
			session_id        = EXCLUDED.session_id,
			session_url       = EXCLUDED.session_url,
			payment_intent_id = EXCLUDED.payment_intent_id,
			charge_id         = EXCLUDED.charge_id,
			metadata          = EXCLUDED.metadata,
			updated_at        = NOW()
		RETURNING id, created_at, updated_at
	`

	err := tx.QueryRow(ctx, query,
		payment.ID,
		payment.BookingID,
		payment.SessionID,
		payment.SessionURL,
		payment.PaymentIntentID,
		payment.ChargeID,
		payment.Metadata,
	).Scan(&payment.ID, &payment.CreatedAt, &payment.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert payment: %w", err)
	}

	return nil
}

func (r *postgresPaymentRepository) GetByBookingIDWithTx(ctx context.Context, tx pgx.Tx, bookingID uuid.UUID) (*model.Payment, error) {
	query := `
		SELECT id, booking_id, session_id, session_url,
		       payment_intent_id, charge_id, metadata,
		       created_at, updated_at
		FROM payments
		WHERE booking_id = $1
	`

	var payment model.Payment
	err := tx.QueryRow(ctx, query, bookingID).Scan(
		&payment.ID,
		&payment.BookingID,
		&payment.SessionID,
		&payment.SessionURL,
		&payment.PaymentIntentID,
		&payment.ChargeID,
		&payment.Metadata,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get payment by booking id: %w", err)
	}

	return &payment, nil
}

func (r *postgresPaymentRepository) DeleteByBookingIDWithTx(ctx context.Context, tx pgx.Tx, bookingID uuid.UUID) error {
	_, err := tx.Exec(ctx, `DELETE FROM payments WHERE booking_id = $1`, bookingID)
	if err != nil {
		return fmt.Errorf("failed to delete payment: %w", err)
	}
	return nil
}

// =====================================================
// WEBHOOK EVENT JOURNAL
// =====================================================

type postgresWebhookEventRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresWebhookEventRepository(pool *pgxpool.Pool) WebhookEventRepository {
	return &postgresWebhookEventRepository{
		pool: pool,
	}
}

func (r *postgresWebhookEventRepository) TryInsertWithTx(ctx context.Context, tx pgx.Tx, record *model.WebhookEventRecord) (bool, error) {
	// ON CONFLICT DO NOTHING makes the insert the idempotency gate:
	// a second delivery of the same event id affects zero rows.
	query := `
		INSERT INTO webhook_events (id, event_type, booking_id, received_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING
	`

	result, err := tx.Exec(ctx, query,
		record.ID,
		record.EventType,
		record.BookingID,
		record.ReceivedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to journal webhook event: %w", err)
	}

	return result.RowsAffected() == 1, nil
}

func (r *postgresWebhookEventRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.pool.Exec(ctx, `DELETE FROM webhook_events WHERE received_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune webhook events: %w", err)
	}
	return result.RowsAffected(), nil
}
