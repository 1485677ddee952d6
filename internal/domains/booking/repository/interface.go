package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/edproton/xceltutors-next/internal/domains/booking/model"
)

// BookingRepository is the transactional data-access contract for
// bookings. Mutating commands run inside a transaction owned by the
// service (pkg/database.TransactionManager); the WithTx methods take
// that transaction so invariant checks and writes commit together.
type BookingRepository interface {
	// GetByIDWithTx re-reads the booking (participants and payment
	// included) under FOR UPDATE so racing commands serialize on the row.
	GetByIDWithTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Booking, error)

	// GetDetail loads the full projection: booking, host, participants
	// (id, name, image) and payment.
	GetDetail(ctx context.Context, id uuid.UUID) (*model.BookingDetail, error)

	// List returns the actor's bookings page plus the unpaged total.
	List(ctx context.Context, userID uuid.UUID, req model.ListBookingsRequest) ([]model.Booking, int64, error)

	// CreateWithTx inserts the booking and its participant rows.
	CreateWithTx(ctx context.Context, tx pgx.Tx, booking *model.Booking) error

	// CreateManyWithTx batch-inserts recurrence children.
	CreateManyWithTx(ctx context.Context, tx pgx.Tx, bookings []*model.Booking) error

	// UpdateStatusWithTx moves id from exactly fromStatus to toStatus.
	// Returns model.ErrInvalidStatus when the row is no longer in
	// fromStatus (lost-update guard).
	UpdateStatusWithTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, fromStatus, toStatus string) error

	// UpdateScheduleWithTx rewrites the interval and status in one
	// statement (reschedule command).
	UpdateScheduleWithTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, start, end time.Time, toStatus string) error

	// FindBetweenUsersWithTx is the single create-command query: every
	// booking between the pair whose status is active, or COMPLETED or
	// SCHEDULED, or that overlaps the candidate [start, end) window.
	FindBetweenUsersWithTx(ctx context.Context, tx pgx.Tx, tutorID, studentID uuid.UUID, start, end time.Time) ([]model.Booking, error)

	// FindConflictsWithTx is the conflict detector: one round trip
	// returning active bookings of the host (or, when participantID is
	// non-nil, of the participant too) overlapping any candidate
	// interval. excludeID skips the booking being rescheduled.
	FindConflictsWithTx(ctx context.Context, tx pgx.Tx, hostID uuid.UUID, participantID *uuid.UUID, excludeID *uuid.UUID, intervals []model.Interval) ([]model.Booking, error)

	// CompleteElapsed flips SCHEDULED bookings whose end time passed to
	// COMPLETED. Used by the worker sweep, returns the affected count.
	CompleteElapsed(ctx context.Context, now time.Time) (int64, error)
}
