package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/edproton/xceltutors-next/internal/domains/payment/model"
)

// PaymentRepository persists the at-most-one payment record per booking.
type PaymentRepository interface {
	// UpsertWithTx writes the record, replacing any previous one for
	// the same booking.
	UpsertWithTx(ctx context.Context, tx pgx.Tx, payment *model.Payment) error

	// GetByBookingIDWithTx loads the payment record under the booking
	// transaction. Returns model.ErrPaymentNotFound when absent.
	GetByBookingIDWithTx(ctx context.Context, tx pgx.Tx, bookingID uuid.UUID) (*model.Payment, error)

	// DeleteByBookingIDWithTx removes the record, used when a pending
	// checkout is abandoned.
	DeleteByBookingIDWithTx(ctx context.Context, tx pgx.Tx, bookingID uuid.UUID) error
}

// WebhookEventRepository is the processed-event journal backing webhook
// idempotency.
type WebhookEventRepository interface {
	// TryInsertWithTx records the event id inside the reducer
	// transaction. Returns false when the id was already journaled, in
	// which case the reducer acknowledges without reapplying.
	TryInsertWithTx(ctx context.Context, tx pgx.Tx, record *model.WebhookEventRecord) (bool, error)

	// DeleteOlderThan prunes journal rows received before the cutoff.
	// Used by the retention job, returns the pruned count.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
