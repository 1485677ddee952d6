package model

import "fmt"

// =====================================================
// BOOKING STATE MACHINE
// =====================================================
// The booking lifecycle is one-directional. Every committed status
// change must appear in allowedTransitions; commands and the webhook
// reducer each enforce their own slice of the table, this map is the
// single source of truth over all of them.

var allowedTransitions = map[string][]string{
	StatusAwaitingTutorConfirmation: {
		StatusScheduled,                   // confirm free meeting
		StatusAwaitingPayment,             // confirm lesson
		StatusAwaitingStudentConfirmation, // tutor reschedules
		StatusCanceled,
	},
	StatusAwaitingStudentConfirmation: {
		StatusScheduled,
		StatusAwaitingPayment,
		StatusAwaitingTutorConfirmation, // student reschedules
		StatusCanceled,
	},
	StatusAwaitingPayment: {
		StatusScheduled,     // payment_intent.succeeded
		StatusPaymentFailed, // payment_intent.payment_failed
		StatusCanceled,
	},
	StatusPaymentFailed: {
		StatusCanceled,
	},
	StatusScheduled: {
		StatusAwaitingRefund, // refund requested
		StatusCompleted,      // completion sweep
		StatusCanceled,
	},
	StatusAwaitingRefund: {
		StatusRefunded,     // charge.refunded
		StatusRefundFailed, // refund.failed
	},
	StatusRefundFailed: {},
	// Terminal states.
	StatusCompleted: {},
	StatusCanceled:  {},
	StatusRefunded:  {},
}

// IsLegalTransition reports whether from → to appears in the lifecycle
// table. Identity transitions are legal no-ops (idempotent webhooks).
func IsLegalTransition(from, to string) bool {
	if from == to {
		return true
	}
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsTerminalStatus reports whether no event may move the booking further.
func IsTerminalStatus(status string) bool {
	return status == StatusCompleted || status == StatusCanceled || status == StatusRefunded
}

// CanCancel reports whether a party may cancel from the given status.
func CanCancel(status string) bool {
	switch status {
	case StatusAwaitingTutorConfirmation,
		StatusAwaitingStudentConfirmation,
		StatusScheduled,
		StatusAwaitingPayment,
		StatusPaymentFailed:
		return true
	}
	return false
}

// CanConfirm reports whether the booking is awaiting either side's
// confirmation.
func CanConfirm(status string) bool {
	return status == StatusAwaitingTutorConfirmation || status == StatusAwaitingStudentConfirmation
}

// ConfirmTarget maps the booking type to the post-confirmation status:
// a free meeting goes straight to the calendar, a lesson waits for
// payment first.
func ConfirmTarget(bookingType string) string {
	if bookingType == TypeFreeMeeting {
		return StatusScheduled
	}
	return StatusAwaitingPayment
}

// RescheduleTarget flips the awaiting direction: whoever reschedules
// hands the decision back to the other side.
func RescheduleTarget(status string) (string, error) {
	switch status {
	case StatusAwaitingTutorConfirmation:
		return StatusAwaitingStudentConfirmation, nil
	case StatusAwaitingStudentConfirmation:
		return StatusAwaitingTutorConfirmation, nil
	}
	return "", fmt.Errorf("status %s is not reschedulable", status)
}
