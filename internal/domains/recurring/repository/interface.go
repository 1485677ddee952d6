package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/edproton/xceltutors-next/internal/domains/recurring/model"
)

// RecurringRepository persists templates and their time slots. Child
// bookings go through the booking repository in the same transaction.
type RecurringRepository interface {
	// GetActiveByHostWithTx loads the host's ACTIVE templates with
	// their slots, read inside the create transaction so the
	// template-overlap rule is authoritative at commit time.
	GetActiveByHostWithTx(ctx context.Context, tx pgx.Tx, hostID uuid.UUID) ([]model.RecurringTemplate, error)

	// CreateWithTx inserts the template and its slots.
	CreateWithTx(ctx context.Context, tx pgx.Tx, template *model.RecurringTemplate) error
}
