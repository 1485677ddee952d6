package gateway

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/edproton/xceltutors-next/internal/domains/payment/model"
)

// =====================================================
// GATEWAY INTERFACE
// =====================================================

// PaymentGateway is the outbound port to the payment provider. The
// confirm, cancel and refund commands call it while holding the booking
// row lock, so implementations must be safe to call inside a
// transaction (no retries longer than the statement timeout).
type PaymentGateway interface {
	// CreateCheckoutSession opens a hosted checkout session for the
	// booking. The booking id travels in the session metadata and in
	// the payment intent metadata so webhook events can be routed back.
	CreateCheckoutSession(ctx context.Context, req CheckoutSessionRequest) (*model.CheckoutSession, error)

	// GetCheckoutSession fetches an existing session. open reports
	// whether the session can still be paid; a still-open session is
	// reused instead of creating a new one.
	GetCheckoutSession(ctx context.Context, sessionID string) (session *model.CheckoutSession, open bool, err error)

	// ExpireCheckoutSession invalidates an open session so the payer
	// cannot complete a checkout for a booking that no longer wants it.
	ExpireCheckoutSession(ctx context.Context, sessionID string) error

	// CreateRefund initiates a refund for the captured payment intent
	// and returns the provider refund id. Settlement is asynchronous;
	// the outcome arrives as a webhook event.
	CreateRefund(ctx context.Context, req RefundRequest) (string, error)

	// ParseWebhookEvent verifies the payload signature and normalizes
	// the provider event into the internal shape. Returns
	// model.ErrInvalidSignature when verification fails and
	// (nil, nil) for event types the engine does not consume.
	ParseWebhookEvent(payload []byte, signature string) (*model.WebhookEvent, error)
}

// =====================================================
// REQUEST TYPES
// =====================================================

// CheckoutSessionRequest request to open a checkout session
type CheckoutSessionRequest struct {
	BookingID uuid.UUID       // routed back via metadata
	Title     string          // line item label shown to the payer
	Amount    decimal.Decimal // major units, converted per currency
	Currency  string          // ISO 4217, e.g. "GBP"
}

// RefundRequest request to refund a captured payment
type RefundRequest struct {
	BookingID       uuid.UUID // routed back via refund metadata
	PaymentIntentID string    // provider payment intent to refund
}
