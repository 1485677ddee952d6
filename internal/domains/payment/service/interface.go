package service

import "context"

// WebhookService reduces signed gateway events onto booking state.
type WebhookService interface {
	// ProcessWebhook verifies, deduplicates and applies one delivery.
	// A nil return means the event may be acknowledged; any error means
	// the gateway should redeliver.
	ProcessWebhook(ctx context.Context, payload []byte, signature string) error
}
