package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/edproton/xceltutors-next/internal/domains/recurring/model"
)

// RecurringService expands a weekday/time-of-day pattern into concrete
// child bookings over a one-month horizon.
type RecurringService interface {
	// CreateRecurringBookings either persists a template with all its
	// children, or returns the conflicts (with alternative times)
	// without writing anything.
	CreateRecurringBookings(ctx context.Context, currentUserID uuid.UUID, req model.CreateRecurringRequest) (*model.CreateRecurringResponse, error)
}
