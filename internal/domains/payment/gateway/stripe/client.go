package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	stripe "github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
	"github.com/stripe/stripe-go/v81/webhook"

	"github.com/edproton/xceltutors-next/internal/domains/payment/gateway"
	"github.com/edproton/xceltutors-next/internal/domains/payment/model"
)

// =====================================================
// STRIPE CLIENT
// =====================================================

type Client struct {
	config *Config
	api    *client.API
}

func NewClient(config *Config) (gateway.PaymentGateway, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid Stripe config: %w", err)
	}

	api := &client.API{}
	api.Init(config.SecretKey, nil)

	return &Client{
		config: config,
		api:    api,
	}, nil
}

// =====================================================
// CHECKOUT SESSIONS
// =====================================================

func (c *Client) CreateCheckoutSession(ctx context.Context, req gateway.CheckoutSessionRequest) (*model.CheckoutSession, error) {
	if req.BookingID == uuid.Nil {
		return nil, fmt.Errorf("booking id is required")
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("amount must be positive")
	}

	metadata := map[string]string{
		model.MetadataBookingKey: req.BookingID.String(),
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(c.config.SuccessURL),
		CancelURL:  stripe.String(c.config.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(strings.ToLower(req.Currency)),
					UnitAmount: stripe.Int64(toMinorUnits(req.Amount)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.Title),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		ClientReferenceID: stripe.String(req.BookingID.String()),
		// The booking id must survive on the payment intent too, the
		// payment_intent.* and refund events do not carry the session.
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: metadata,
		},
	}
	params.Context = ctx
	params.Metadata = metadata

	session, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	return &model.CheckoutSession{
		SessionID:  session.ID,
		SessionURL: session.URL,
	}, nil
}

func (c *Client) GetCheckoutSession(ctx context.Context, sessionID string) (*model.CheckoutSession, bool, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	session, err := c.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get checkout session: %w", err)
	}

	open := session.Status == stripe.CheckoutSessionStatusOpen
	return &model.CheckoutSession{
		SessionID:  session.ID,
		SessionURL: session.URL,
	}, open, nil
}

func (c *Client) ExpireCheckoutSession(ctx context.Context, sessionID string) error {
	params := &stripe.CheckoutSessionExpireParams{}
	params.Context = ctx

	if _, err := c.api.CheckoutSessions.Expire(sessionID, params); err != nil {
		return fmt.Errorf("failed to expire checkout session: %w", err)
	}
	return nil
}

// =====================================================
// REFUNDS
// =====================================================

func (c *Client) CreateRefund(ctx context.Context, req gateway.RefundRequest) (string, error) {
	if req.PaymentIntentID == "" {
		return "", fmt.Errorf("payment intent id is required")
	}

	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(req.PaymentIntentID),
	}
	params.Context = ctx
	params.Metadata = map[string]string{
		model.MetadataBookingKey: req.BookingID.String(),
	}

	refund, err := c.api.Refunds.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create refund: %w", err)
	}

	return refund.ID, nil
}

// =====================================================
// WEBHOOK PARSING
// =====================================================

func (c *Client) ParseWebhookEvent(payload []byte, signature string) (*model.WebhookEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, c.config.WebhookSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidSignature, err)
	}

	normalized := model.WebhookEvent{
		ID:   event.ID,
		Type: string(event.Type),
	}

	switch string(event.Type) {
	case model.EventPaymentSucceeded, model.EventPaymentFailed:
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			return nil, fmt.Errorf("failed to parse payment intent payload: %w", err)
		}
		normalized.BookingID = bookingIDFromMetadata(intent.Metadata)
		normalized.PaymentIntentID = intent.ID
		if intent.LatestCharge != nil {
			normalized.ChargeID = intent.LatestCharge.ID
		}
		if intent.LastPaymentError != nil {
			normalized.FailureReason = intent.LastPaymentError.Msg
		}

	case model.EventChargeRefunded:
		var charge stripe.Charge
		if err := json.Unmarshal(event.Data.Raw, &charge); err != nil {
			return nil, fmt.Errorf("failed to parse charge payload: %w", err)
		}
		normalized.BookingID = bookingIDFromMetadata(charge.Metadata)
		normalized.ChargeID = charge.ID
		if charge.PaymentIntent != nil {
			normalized.PaymentIntentID = charge.PaymentIntent.ID
		}

	case model.EventRefundCreated, model.EventRefundFailed:
		var refund stripe.Refund
		if err := json.Unmarshal(event.Data.Raw, &refund); err != nil {
			return nil, fmt.Errorf("failed to parse refund payload: %w", err)
		}
		normalized.BookingID = bookingIDFromMetadata(refund.Metadata)
		if refund.PaymentIntent != nil {
			normalized.PaymentIntentID = refund.PaymentIntent.ID
		}
		if refund.Charge != nil {
			normalized.ChargeID = refund.Charge.ID
		}
		normalized.FailureReason = string(refund.FailureReason)

	default:
		// Not an event the engine consumes; the caller acknowledges it.
		return nil, nil
	}

	return &normalized, nil
}

// =====================================================
// HELPERS
// =====================================================

// toMinorUnits converts a major-unit amount to the smallest currency
// unit the provider bills in.
func toMinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

func bookingIDFromMetadata(metadata map[string]string) uuid.UUID {
	raw, ok := metadata[model.MetadataBookingKey]
	if !ok {
		return uuid.Nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil
	}
	return id
}
