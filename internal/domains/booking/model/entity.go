package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	paymentModel "github.com/edproton/xceltutors-next/internal/domains/payment/model"
)

// =====================================================
// BOOKING STATUS CONSTANTS
// =====================================================
const (
	StatusAwaitingTutorConfirmation   = "AWAITING_TUTOR_CONFIRMATION"
	StatusAwaitingStudentConfirmation = "AWAITING_STUDENT_CONFIRMATION"
	StatusAwaitingPayment             = "AWAITING_PAYMENT"
	StatusPaymentFailed               = "PAYMENT_FAILED"
	StatusScheduled                   = "SCHEDULED"
	StatusCanceled                    = "CANCELED"
	StatusCompleted                   = "COMPLETED"
	StatusAwaitingRefund              = "AWAITING_REFUND"
	StatusRefundFailed                = "REFUND_FAILED"
	StatusRefunded                    = "REFUNDED"
)

// =====================================================
// BOOKING TYPE CONSTANTS
// =====================================================
const (
	TypeFreeMeeting = "FREE_MEETING"
	TypeLesson      = "LESSON"
)

// =====================================================
// BUSINESS CONSTANTS
// =====================================================
const (
	FreeMeetingDuration = 15 * time.Minute
	LessonDuration      = 60 * time.Minute

	// A booking may be placed at most one calendar month ahead.
	AdvanceBookingMonths = 1
)

// ActiveStatuses are the statuses that occupy the host's calendar.
// Overlap checks only count bookings in this set.
var ActiveStatuses = []string{
	StatusAwaitingTutorConfirmation,
	StatusAwaitingStudentConfirmation,
	StatusAwaitingPayment,
	StatusScheduled,
}

var activeStatusSet = map[string]bool{
	StatusAwaitingTutorConfirmation:   true,
	StatusAwaitingStudentConfirmation: true,
	StatusAwaitingPayment:             true,
	StatusScheduled:                   true,
}

// IsActiveStatus reports whether status blocks the host's calendar.
func IsActiveStatus(status string) bool {
	return activeStatusSet[status]
}

// DurationForType returns the fixed meeting length for a booking type.
func DurationForType(bookingType string) time.Duration {
	if bookingType == TypeFreeMeeting {
		return FreeMeetingDuration
	}
	return LessonDuration
}

// =====================================================
// ENTITY: Booking
// =====================================================
type Booking struct {
	ID                  uuid.UUID             `json:"id"`
	Title               string                `json:"title"`
	Description         *string               `json:"description,omitempty"`
	Type                string                `json:"type"`
	Status              string                `json:"status"`
	HostID              uuid.UUID             `json:"host_id"`
	Participants        []uuid.UUID           `json:"participants"`
	StartTime           time.Time             `json:"start_time"`
	EndTime             time.Time             `json:"end_time"`
	ServiceID           *uuid.UUID            `json:"service_id,omitempty"`
	PriceAmount         decimal.Decimal       `json:"price_amount"`
	PriceCurrency       string                `json:"price_currency"`
	RecurringTemplateID *uuid.UUID            `json:"recurring_template_id,omitempty"`
	Payment             *paymentModel.Payment `json:"payment,omitempty"`
	CreatedAt           time.Time             `json:"created_at"`
	UpdatedAt           time.Time             `json:"updated_at"`
}

// IsActive reports whether the booking occupies the host's calendar.
func (b *Booking) IsActive() bool {
	return IsActiveStatus(b.Status)
}

// HasParticipant reports whether userID is one of the booking's students.
func (b *Booking) HasParticipant(userID uuid.UUID) bool {
	for _, p := range b.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// IsParty reports whether userID is the host or a participant.
func (b *Booking) IsParty(userID uuid.UUID) bool {
	return b.HostID == userID || b.HasParticipant(userID)
}

// Overlaps tests the half-open intervals [b.StartTime, b.EndTime) and
// [start, end) for intersection.
func (b *Booking) Overlaps(start, end time.Time) bool {
	return b.StartTime.Before(end) && b.EndTime.After(start)
}

// =====================================================
// INTERVAL (conflict detection candidate)
// =====================================================

// Interval is a half-open [Start, End) candidate window.
type Interval struct {
	Start time.Time
	End   time.Time
}

// =====================================================
// PROJECTION: BookingDetail
// =====================================================

// UserSummary is the public slice of a user embedded in booking payloads.
type UserSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Image *string   `json:"image,omitempty"`
}

// BookingDetail is the GetOne projection: the booking joined with its
// host, participants and payment row.
type BookingDetail struct {
	Booking
	Host               UserSummary   `json:"host"`
	ParticipantDetails []UserSummary `json:"participant_details"`
}
