package model

import "errors"

// =====================================================
// ERROR CODES
// =====================================================
// Stable machine-readable codes surfaced to API clients. Validation and
// business codes map to 4xx semantics and are never retried.
const (
	// Validation
	ErrCodeInvalidDate          = "INVALID_DATE"
	ErrCodeInvalidTimeSlot      = "INVALID_TIME_SLOT"
	ErrCodeOverlappingTimeSlots = "OVERLAPPING_TIME_SLOTS"
	ErrCodeInvalidInput         = "INVALID_INPUT"

	// Business rules
	ErrCodePastBooking               = "PAST_BOOKING"
	ErrCodePastTime                  = "PAST_TIME"
	ErrCodeSameTime                  = "SAME_TIME"
	ErrCodeAdvanceBookingLimit       = "ADVANCE_BOOKING_LIMIT"
	ErrCodeYourselfBooking           = "YOURSELF_BOOKING"
	ErrCodeInvalidBookingCombination = "INVALID_BOOKING_COMBINATION"
	ErrCodeFreeMeetingTutor          = "FREE_MEETING_TUTOR"
	ErrCodeNoPreviousMeeting         = "NO_PREVIOUS_MEETING"
	ErrCodeOngoingFreeMeeting        = "ONGOING_FREE_MEETING"
	ErrCodeNoPriorBooking            = "NO_PRIOR_BOOKING"
	ErrCodeBookingConflict           = "BOOKING_CONFLICT"
	ErrCodeRecurringTemplateConflict = "RECURRING_TEMPLATE_CONFLICT"
	ErrCodeOverrideConflict          = "OVERRIDE_CONFLICT"
	ErrCodeInvalidOverrideTime       = "INVALID_OVERRIDE_TIME"

	// State
	ErrCodeInvalidStatus        = "INVALID_STATUS"
	ErrCodeInvalidStatusTutor   = "INVALID_STATUS_TUTOR"
	ErrCodeInvalidStatusStudent = "INVALID_STATUS_STUDENT"

	// Authorization
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
	ErrCodeBookingNotFound    = "BOOKING_NOT_FOUND"
	ErrCodeInvalidHost        = "INVALID_HOST"
	ErrCodeInvalidParticipant = "INVALID_PARTICIPANT"

	// Payment side
	ErrCodeNoPaymentInfo                = "NO_PAYMENT_INFO"
	ErrCodePaymentSessionCreationFailed = "PAYMENT_SESSION_CREATION_FAILED"
	ErrCodePaymentCancellationFailed    = "PAYMENT_CANCELLATION_FAILED"
	ErrCodeRefundProcessingFailed       = "REFUND_PROCESSING_FAILED"

	// Infrastructure
	ErrCodeInternalServerError = "INTERNAL_SERVER_ERROR"
)

// =====================================================
// ERROR DEFINITIONS
// =====================================================
var (
	ErrBookingNotFound = errors.New("booking not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrUnauthorized    = errors.New("unauthorized access")
	ErrInvalidStatus   = errors.New("invalid booking status")
	ErrBookingConflict = errors.New("booking conflicts with an existing booking")
	ErrNoPaymentInfo   = errors.New("booking has no payment information")
)

// =====================================================
// CUSTOM ERROR TYPE
// =====================================================

// BookingError carries a stable code plus a human message. Details is
// optional structured payload (e.g. the offending conflicts).
type BookingError struct {
	Code    string
	Message string
	Details interface{}
	Err     error
}

func (e *BookingError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *BookingError) Unwrap() error {
	return e.Err
}

// NewBookingError creates a new BookingError.
func NewBookingError(code, message string, err error) *BookingError {
	return &BookingError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewBookingErrorWithDetails attaches a structured payload for the client.
func NewBookingErrorWithDetails(code, message string, details interface{}) *BookingError {
	return &BookingError{
		Code:    code,
		Message: message,
		Details: details,
	}
}
