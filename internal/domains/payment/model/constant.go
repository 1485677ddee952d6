package model

// =====================================================
// GATEWAY EVENT TYPES
// =====================================================
// The subset of gateway event types the reducer acts on. Anything else
// is acknowledged and ignored.
const (
	EventPaymentSucceeded = "payment_intent.succeeded"
	EventPaymentFailed    = "payment_intent.payment_failed"
	EventChargeRefunded   = "charge.refunded"
	EventRefundCreated    = "refund.created"
	EventRefundFailed     = "refund.failed"
)

// MetadataBookingKey is the metadata key carrying the booking id on
// checkout sessions, payment intents and refunds.
const MetadataBookingKey = "bookingId"

// MetaFailureReason is the Payment metadata key recording why a payment
// or refund failed.
const MetaFailureReason = "failure_reason"
