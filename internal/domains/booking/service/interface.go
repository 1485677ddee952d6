package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/edproton/xceltutors-next/internal/domains/booking/model"
)

// BookingService runs the booking commands. Every mutating command is a
// single transaction enclosing its invariant checks and its write.
type BookingService interface {
	// Create books a free meeting or a lesson between the actor and
	// toUserId, deriving the type from the pair's history.
	Create(ctx context.Context, currentUserID uuid.UUID, req model.CreateBookingRequest) (*model.CreateBookingResponse, error)

	// GetByID returns the detail projection; the actor must be host or
	// participant.
	GetByID(ctx context.Context, currentUserID, bookingID uuid.UUID) (*model.BookingDetail, error)

	// List pages through the actor's bookings.
	List(ctx context.Context, currentUserID uuid.UUID, req model.ListBookingsRequest) ([]model.BookingResponse, int64, error)

	// Confirm accepts a pending booking: a free meeting schedules
	// immediately, a lesson opens a checkout session and moves to
	// AWAITING_PAYMENT with the payment row upserted in the same commit.
	Confirm(ctx context.Context, currentUserID, bookingID uuid.UUID) (*model.Booking, error)

	// Reschedule moves a pending booking and flips the awaiting
	// direction.
	Reschedule(ctx context.Context, currentUserID, bookingID uuid.UUID, req model.RescheduleBookingRequest) (*model.Booking, error)

	// Cancel terminates the booking; an open checkout session is
	// expired before the commit.
	Cancel(ctx context.Context, currentUserID, bookingID uuid.UUID) error

	// RequestRefund initiates a refund for a scheduled lesson and
	// parks it in AWAITING_REFUND until the gateway reports back.
	RequestRefund(ctx context.Context, currentUserID, bookingID uuid.UUID) error
}
