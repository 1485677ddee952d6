package model

import "github.com/google/uuid"

// =====================================================
// GATEWAY-AGNOSTIC WEBHOOK EVENT
// =====================================================

// WebhookEvent is the typed result of verifying and parsing a raw
// gateway webhook. BookingID is uuid.Nil when the payload carried no
// booking metadata.
type WebhookEvent struct {
	ID              string
	Type            string
	BookingID       uuid.UUID
	PaymentIntentID string
	ChargeID        string
	FailureReason   string
}

// =====================================================
// CHECKOUT SESSION
// =====================================================

// CheckoutSession is what the booking engine keeps from a gateway
// checkout session.
type CheckoutSession struct {
	SessionID  string
	SessionURL string
}
