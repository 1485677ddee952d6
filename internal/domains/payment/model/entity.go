package model

import (
	"time"

	"github.com/google/uuid"
)

// =====================================================
// ENTITY: Payment
// =====================================================

// Payment is the 1-to-1 gateway companion of a lesson booking. The
// booking owns the payment; the payment points back by BookingID only.
type Payment struct {
	ID              uuid.UUID         `json:"id"`
	BookingID       uuid.UUID         `json:"booking_id"`
	SessionID       *string           `json:"session_id,omitempty"`
	SessionURL      *string           `json:"session_url,omitempty"`
	PaymentIntentID *string           `json:"payment_intent_id,omitempty"`
	ChargeID        *string           `json:"charge_id,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// SetMeta records a key on the free-form metadata map (failure reasons,
// reconciliation notes).
func (p *Payment) SetMeta(key, value string) {
	if p.Metadata == nil {
		p.Metadata = make(map[string]string)
	}
	p.Metadata[key] = value
}

// =====================================================
// ENTITY: WebhookEventRecord
// =====================================================

// WebhookEventRecord is the idempotency journal row for a processed
// gateway event. The insert commits atomically with the reduction, so a
// re-delivered event id is acknowledged without re-applying it.
type WebhookEventRecord struct {
	ID         string    `json:"id"` // gateway event id
	EventType  string    `json:"event_type"`
	BookingID  uuid.UUID `json:"booking_id"`
	ReceivedAt time.Time `json:"received_at"`
}
