package stripe

import (
	"fmt"
	"strings"
)

// =====================================================
// STRIPE CONFIGURATION
// =====================================================

type Config struct {
	SecretKey     string // API key for outgoing calls (sk_...)
	WebhookSecret string // Signing secret for incoming events (whsec_...)
	SuccessURL    string // Frontend page after a completed checkout
	CancelURL     string // Frontend page after an abandoned checkout
}

// NewConfig creates Stripe configuration. Redirect URLs are derived
// from the frontend base URL.
func NewConfig(secretKey, webhookSecret, frontendURL string) *Config {
	base := strings.TrimRight(frontendURL, "/")
	return &Config{
		SecretKey:     secretKey,
		WebhookSecret: webhookSecret,
		SuccessURL:    base + "/bookings?payment=success",
		CancelURL:     base + "/bookings?payment=canceled",
	}
}

// Validate validates configuration
func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return fmt.Errorf("stripe SecretKey is required")
	}
	if c.WebhookSecret == "" {
		return fmt.Errorf("stripe WebhookSecret is required")
	}
	if c.SuccessURL == "" || c.CancelURL == "" {
		return fmt.Errorf("stripe redirect URLs are required")
	}
	return nil
}
