package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	bookingModel "github.com/edproton/xceltutors-next/internal/domains/booking/model"
	bookingRepo "github.com/edproton/xceltutors-next/internal/domains/booking/repository"
	"github.com/edproton/xceltutors-next/internal/domains/payment/gateway"
	"github.com/edproton/xceltutors-next/internal/domains/payment/model"
	"github.com/edproton/xceltutors-next/internal/domains/payment/repository"
	"github.com/edproton/xceltutors-next/pkg/cache"
	"github.com/edproton/xceltutors-next/pkg/clock"
	"github.com/edproton/xceltutors-next/pkg/database"
	"github.com/edproton/xceltutors-next/pkg/logger"
)

// replayMarkerTTL keeps exact-replay short-circuits cheap without
// letting Redis grow unbounded; the Postgres journal remains the
// durable dedup record.
const replayMarkerTTL = 72 * time.Hour

const replayMarkerPrefix = "webhook:event:"

// =====================================================
// WEBHOOK SERVICE IMPLEMENTATION
// =====================================================
type webhookService struct {
	gateway     gateway.PaymentGateway
	bookingRepo bookingRepo.BookingRepository
	paymentRepo repository.PaymentRepository
	webhookRepo repository.WebhookEventRepository
	txManager   database.TransactionManager
	cache       cache.Cache
	clock       clock.Clock
}

func NewWebhookService(
	gw gateway.PaymentGateway,
	bookings bookingRepo.BookingRepository,
	payments repository.PaymentRepository,
	webhooks repository.WebhookEventRepository,
	txManager database.TransactionManager,
	c cache.Cache,
	clk clock.Clock,
) WebhookService {
	return &webhookService{
		gateway:     gw,
		bookingRepo: bookings,
		paymentRepo: payments,
		webhookRepo: webhooks,
		txManager:   txManager,
		cache:       c,
		clock:       clk,
	}
}

func (s *webhookService) ProcessWebhook(ctx context.Context, payload []byte, signature string) error {
	// Step 1: Verify and normalize
	event, err := s.gateway.ParseWebhookEvent(payload, signature)
	if err != nil {
		if errors.Is(err, model.ErrInvalidSignature) {
			return model.NewPaymentError(model.ErrCodeInvalidSignature, "Webhook signature verification failed", err)
		}
		return model.NewPaymentError(model.ErrCodeInvalidSignature, "Webhook payload could not be parsed", err)
	}
	if event == nil {
		// Event type the engine does not consume; acknowledge.
		return nil
	}
	if event.BookingID == uuid.Nil {
		return model.NewPaymentError(model.ErrCodeInvalidMetadata, "Webhook event carries no booking id", nil)
	}

	// Step 2: Cheap replay short-circuit before touching Postgres
	seen, err := s.cache.Exists(ctx, replayMarkerPrefix+event.ID)
	if err != nil {
		// Redis being down must not block payment processing; the
		// journal below still deduplicates.
		logger.Warn("webhook replay check unavailable", map[string]interface{}{"event_id": event.ID})
	} else if seen {
		return nil
	}

	// Step 3: Journal and reduce in one transaction
	if err := s.txManager.WithTransaction(ctx, func(tx pgx.Tx) error {
		inserted, err := s.webhookRepo.TryInsertWithTx(ctx, tx, &model.WebhookEventRecord{
			ID:         event.ID,
			EventType:  event.Type,
			BookingID:  event.BookingID,
			ReceivedAt: s.clock.Now().UTC(),
		})
		if err != nil {
			return err
		}
		if !inserted {
			// Already processed in a committed transaction.
			return nil
		}

		return s.reduce(ctx, tx, event)
	}); err != nil {
		return err
	}

	// Step 4: Post-commit replay marker
	if err := s.cache.Set(ctx, replayMarkerPrefix+event.ID, true, replayMarkerTTL); err != nil {
		logger.Warn("failed to set webhook replay marker", map[string]interface{}{"event_id": event.ID})
	}

	return nil
}

// =====================================================
// REDUCTION
// =====================================================

// reduce applies one event to the locked booking row. Events whose
// pre-status no longer matches are acknowledged without mutation; the
// gateway re-emits anything that still has pending work.
func (s *webhookService) reduce(ctx context.Context, tx pgx.Tx, event *model.WebhookEvent) error {
	booking, err := s.bookingRepo.GetByIDWithTx(ctx, tx, event.BookingID)
	if err != nil {
		if errors.Is(err, bookingModel.ErrBookingNotFound) {
			return model.NewPaymentError(model.ErrCodeBookingNotFound, "Webhook references an unknown booking", err)
		}
		return err
	}

	var preStatus, target string
	switch event.Type {
	case model.EventPaymentSucceeded:
		preStatus, target = bookingModel.StatusAwaitingPayment, bookingModel.StatusScheduled
	case model.EventPaymentFailed:
		preStatus, target = bookingModel.StatusAwaitingPayment, bookingModel.StatusPaymentFailed
	case model.EventChargeRefunded:
		preStatus, target = bookingModel.StatusAwaitingRefund, bookingModel.StatusRefunded
	case model.EventRefundCreated:
		preStatus, target = bookingModel.StatusAwaitingRefund, bookingModel.StatusAwaitingRefund
	case model.EventRefundFailed:
		preStatus, target = bookingModel.StatusAwaitingRefund, bookingModel.StatusRefundFailed
	default:
		return nil
	}

	if booking.Status == target {
		// Redelivery after the transition already committed.
		return nil
	}
	if booking.Status != preStatus {
		logger.Warn("webhook event does not match booking status, ignoring", map[string]interface{}{
			"event_id":   event.ID,
			"event_type": event.Type,
			"booking_id": event.BookingID,
			"status":     booking.Status,
		})
		return nil
	}

	if err := s.applySideEffects(ctx, tx, booking, event); err != nil {
		return err
	}

	if err := s.bookingRepo.UpdateStatusWithTx(ctx, tx, booking.ID, preStatus, target); err != nil {
		return err
	}

	logger.Info("webhook event applied", map[string]interface{}{
		"event_id":   event.ID,
		"event_type": event.Type,
		"booking_id": event.BookingID,
		"from":       preStatus,
		"to":         target,
	})
	return nil
}

// applySideEffects folds the gateway identifiers carried by the event
// into the booking's payment row.
func (s *webhookService) applySideEffects(ctx context.Context, tx pgx.Tx, booking *bookingModel.Booking, event *model.WebhookEvent) error {
	payment := booking.Payment
	if payment == nil {
		payment = &model.Payment{BookingID: booking.ID}
	}

	changed := false
	if event.PaymentIntentID != "" {
		payment.PaymentIntentID = &event.PaymentIntentID
		changed = true
	}
	if event.ChargeID != "" {
		payment.ChargeID = &event.ChargeID
		changed = true
	}
	if event.FailureReason != "" {
		payment.SetMeta(model.MetaFailureReason, event.FailureReason)
		changed = true
	}

	if !changed {
		return nil
	}
	return s.paymentRepo.UpsertWithTx(ctx, tx, payment)
}
