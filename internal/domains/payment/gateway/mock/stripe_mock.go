package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/edproton/xceltutors-next/internal/domains/payment/gateway"
	"github.com/edproton/xceltutors-next/internal/domains/payment/model"
)

// =====================================================
// MOCK PAYMENT GATEWAY
// =====================================================

// MockPaymentGateway is used for local development without provider
// credentials and by service tests. Behavior is controlled through the
// Fail* switches; calls are recorded for assertions.
type MockPaymentGateway struct {
	mu sync.Mutex

	FailCheckout bool
	FailExpire   bool
	FailRefund   bool

	// OpenSessions marks session ids GetCheckoutSession reports as
	// still payable.
	OpenSessions map[string]bool

	// ParsedEvent is returned verbatim by ParseWebhookEvent.
	ParsedEvent *model.WebhookEvent
	ParseErr    error

	CreatedSessions []gateway.CheckoutSessionRequest
	ExpiredSessions []string
	Refunds         []gateway.RefundRequest
}

func NewMockPaymentGateway() *MockPaymentGateway {
	return &MockPaymentGateway{
		OpenSessions: make(map[string]bool),
	}
}

func (m *MockPaymentGateway) CreateCheckoutSession(ctx context.Context, req gateway.CheckoutSessionRequest) (*model.CheckoutSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailCheckout {
		return nil, fmt.Errorf("mock checkout session creation failed")
	}

	m.CreatedSessions = append(m.CreatedSessions, req)
	sessionID := "cs_mock_" + uuid.NewString()
	m.OpenSessions[sessionID] = true

	return &model.CheckoutSession{
		SessionID:  sessionID,
		SessionURL: fmt.Sprintf("https://mock-gateway.local/checkout/%s?booking=%s", sessionID, req.BookingID),
	}, nil
}

func (m *MockPaymentGateway) GetCheckoutSession(ctx context.Context, sessionID string) (*model.CheckoutSession, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return &model.CheckoutSession{
		SessionID:  sessionID,
		SessionURL: "https://mock-gateway.local/checkout/" + sessionID,
	}, m.OpenSessions[sessionID], nil
}

func (m *MockPaymentGateway) ExpireCheckoutSession(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailExpire {
		return fmt.Errorf("mock session expire failed")
	}

	delete(m.OpenSessions, sessionID)
	m.ExpiredSessions = append(m.ExpiredSessions, sessionID)
	return nil
}

func (m *MockPaymentGateway) CreateRefund(ctx context.Context, req gateway.RefundRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailRefund {
		return "", fmt.Errorf("mock refund failed")
	}

	m.Refunds = append(m.Refunds, req)
	return "re_mock_" + uuid.NewString(), nil
}

func (m *MockPaymentGateway) ParseWebhookEvent(payload []byte, signature string) (*model.WebhookEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ParseErr != nil {
		return nil, m.ParseErr
	}
	return m.ParsedEvent, nil
}
