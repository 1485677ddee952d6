package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bookingModel "github.com/edproton/xceltutors-next/internal/domains/booking/model"
	"github.com/edproton/xceltutors-next/internal/domains/payment/gateway/mock"
	"github.com/edproton/xceltutors-next/internal/domains/payment/model"
	"github.com/edproton/xceltutors-next/pkg/clock"
	"github.com/edproton/xceltutors-next/pkg/database"
)

var testNow = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

// =====================================================
// FAKES
// =====================================================

type stubTxManager struct{}

func (stubTxManager) WithTransaction(ctx context.Context, fn database.TxFunc) error {
	return fn(nil)
}

type fakeBookingRepo struct {
	byID          map[uuid.UUID]*bookingModel.Booking
	statusUpdates int
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{byID: make(map[uuid.UUID]*bookingModel.Booking)}
}

func (f *fakeBookingRepo) GetByIDWithTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*bookingModel.Booking, error) {
	b, ok := f.byID[id]
	if !ok {
		return nil, bookingModel.ErrBookingNotFound
	}
	return b, nil
}

func (f *fakeBookingRepo) GetDetail(ctx context.Context, id uuid.UUID) (*bookingModel.BookingDetail, error) {
	return nil, bookingModel.ErrBookingNotFound
}

func (f *fakeBookingRepo) List(ctx context.Context, userID uuid.UUID, req bookingModel.ListBookingsRequest) ([]bookingModel.Booking, int64, error) {
	return nil, 0, nil
}

func (f *fakeBookingRepo) CreateWithTx(ctx context.Context, tx pgx.Tx, booking *bookingModel.Booking) error {
	f.byID[booking.ID] = booking
	return nil
}

func (f *fakeBookingRepo) CreateManyWithTx(ctx context.Context, tx pgx.Tx, bookings []*bookingModel.Booking) error {
	for _, b := range bookings {
		f.byID[b.ID] = b
	}
	return nil
}

func (f *fakeBookingRepo) UpdateStatusWithTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, fromStatus, toStatus string) error {
	b, ok := f.byID[id]
	if !ok || b.Status != fromStatus {
		return bookingModel.ErrInvalidStatus
	}
	b.Status = toStatus
	f.statusUpdates++
	return nil
}

func (f *fakeBookingRepo) UpdateScheduleWithTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, start, end time.Time, toStatus string) error {
	return nil
}

func (f *fakeBookingRepo) FindBetweenUsersWithTx(ctx context.Context, tx pgx.Tx, tutorID, studentID uuid.UUID, start, end time.Time) ([]bookingModel.Booking, error) {
	return nil, nil
}

func (f *fakeBookingRepo) FindConflictsWithTx(ctx context.Context, tx pgx.Tx, hostID uuid.UUID, participantID *uuid.UUID, excludeID *uuid.UUID, intervals []bookingModel.Interval) ([]bookingModel.Booking, error) {
	return nil, nil
}

func (f *fakeBookingRepo) CompleteElapsed(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

type fakePaymentRepo struct {
	byBooking map[uuid.UUID]*model.Payment
	upserts   int
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{byBooking: make(map[uuid.UUID]*model.Payment)}
}

func (f *fakePaymentRepo) UpsertWithTx(ctx context.Context, tx pgx.Tx, payment *model.Payment) error {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	f.byBooking[payment.BookingID] = payment
	f.upserts++
	return nil
}

func (f *fakePaymentRepo) GetByBookingIDWithTx(ctx context.Context, tx pgx.Tx, bookingID uuid.UUID) (*model.Payment, error) {
	p, ok := f.byBooking[bookingID]
	if !ok {
		return nil, model.ErrPaymentNotFound
	}
	return p, nil
}

func (f *fakePaymentRepo) DeleteByBookingIDWithTx(ctx context.Context, tx pgx.Tx, bookingID uuid.UUID) error {
	delete(f.byBooking, bookingID)
	return nil
}

// fakeWebhookRepo is the journal: first insert of an id wins.
type fakeWebhookRepo struct {
	journal map[string]*model.WebhookEventRecord
}

func newFakeWebhookRepo() *fakeWebhookRepo {
	return &fakeWebhookRepo{journal: make(map[string]*model.WebhookEventRecord)}
}

func (f *fakeWebhookRepo) TryInsertWithTx(ctx context.Context, tx pgx.Tx, record *model.WebhookEventRecord) (bool, error) {
	if _, ok := f.journal[record.ID]; ok {
		return false, nil
	}
	f.journal[record.ID] = record
	return true, nil
}

func (f *fakeWebhookRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	var n int64
	for id, rec := range f.journal {
		if rec.ReceivedAt.Before(cutoff) {
			delete(f.journal, id)
			n++
		}
	}
	return n, nil
}

// fakeCache implements pkg/cache.Cache in memory; failAll simulates a
// Redis outage.
type fakeCache struct {
	data    map[string]interface{}
	failAll bool
	sets    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string]interface{})}
}

func (f *fakeCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if f.failAll {
		return false, errors.New("cache unavailable")
	}
	_, ok := f.data[key]
	return ok, nil
}

func (f *fakeCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if f.failAll {
		return errors.New("cache unavailable")
	}
	f.data[key] = value
	f.sets++
	return nil
}

func (f *fakeCache) Delete(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

func (f *fakeCache) Ping(ctx context.Context) error { return nil }

func (f *fakeCache) Exists(ctx context.Context, key string) (bool, error) {
	if f.failAll {
		return false, errors.New("cache unavailable")
	}
	_, ok := f.data[key]
	return ok, nil
}

func (f *fakeCache) Expire(ctx context.Context, key string, ttl time.Duration) error { return nil }

// =====================================================
// FIXTURE
// =====================================================

type fixture struct {
	svc      WebhookService
	gateway  *mock.MockPaymentGateway
	bookings *fakeBookingRepo
	payments *fakePaymentRepo
	journal  *fakeWebhookRepo
	cache    *fakeCache
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	gw := mock.NewMockPaymentGateway()
	bookings := newFakeBookingRepo()
	payments := newFakePaymentRepo()
	journal := newFakeWebhookRepo()
	c := newFakeCache()

	svc := NewWebhookService(gw, bookings, payments, journal, stubTxManager{}, c, clock.NewFixed(testNow))

	return &fixture{svc: svc, gateway: gw, bookings: bookings, payments: payments, journal: journal, cache: c}
}

func (f *fixture) seedBooking(status string) *bookingModel.Booking {
	b := &bookingModel.Booking{
		ID:     uuid.New(),
		Type:   bookingModel.TypeLesson,
		Status: status,
	}
	f.bookings.byID[b.ID] = b
	return b
}

func (f *fixture) deliver(event *model.WebhookEvent) error {
	f.gateway.ParsedEvent = event
	return f.svc.ProcessWebhook(context.Background(), []byte(`{}`), "sig")
}

func assertPaymentCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var pe *model.PaymentError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, code, pe.Code)
}

// =====================================================
// TESTS
// =====================================================

func TestProcessWebhook_PaymentSucceededSchedulesBooking(t *testing.T) {
	f := newFixture(t)
	b := f.seedBooking(bookingModel.StatusAwaitingPayment)

	err := f.deliver(&model.WebhookEvent{
		ID:              "evt_1",
		Type:            model.EventPaymentSucceeded,
		BookingID:       b.ID,
		PaymentIntentID: "pi_1",
		ChargeID:        "ch_1",
	})
	require.NoError(t, err)

	assert.Equal(t, bookingModel.StatusScheduled, b.Status)

	payment := f.payments.byBooking[b.ID]
	require.NotNil(t, payment)
	assert.Equal(t, "pi_1", *payment.PaymentIntentID)
	assert.Equal(t, "ch_1", *payment.ChargeID)

	assert.Contains(t, f.journal.journal, "evt_1")
	assert.Equal(t, 1, f.cache.sets, "replay marker written after commit")
}

func TestProcessWebhook_PaymentFailedRecordsReason(t *testing.T) {
	f := newFixture(t)
	b := f.seedBooking(bookingModel.StatusAwaitingPayment)

	err := f.deliver(&model.WebhookEvent{
		ID:            "evt_2",
		Type:          model.EventPaymentFailed,
		BookingID:     b.ID,
		FailureReason: "card_declined",
	})
	require.NoError(t, err)

	assert.Equal(t, bookingModel.StatusPaymentFailed, b.Status)
	payment := f.payments.byBooking[b.ID]
	require.NotNil(t, payment)
	assert.Equal(t, "card_declined", payment.Metadata[model.MetaFailureReason])
}

func TestProcessWebhook_RefundLifecycle(t *testing.T) {
	f := newFixture(t)
	b := f.seedBooking(bookingModel.StatusAwaitingRefund)

	// refund.created is informational while the booking already waits.
	require.NoError(t, f.deliver(&model.WebhookEvent{
		ID:        "evt_3",
		Type:      model.EventRefundCreated,
		BookingID: b.ID,
	}))
	assert.Equal(t, bookingModel.StatusAwaitingRefund, b.Status)

	// charge.refunded settles.
	require.NoError(t, f.deliver(&model.WebhookEvent{
		ID:        "evt_4",
		Type:      model.EventChargeRefunded,
		BookingID: b.ID,
	}))
	assert.Equal(t, bookingModel.StatusRefunded, b.Status)
}

func TestProcessWebhook_RefundFailed(t *testing.T) {
	f := newFixture(t)
	b := f.seedBooking(bookingModel.StatusAwaitingRefund)

	require.NoError(t, f.deliver(&model.WebhookEvent{
		ID:            "evt_5",
		Type:          model.EventRefundFailed,
		BookingID:     b.ID,
		FailureReason: "insufficient_funds",
	}))

	assert.Equal(t, bookingModel.StatusRefundFailed, b.Status)
	assert.Equal(t, "insufficient_funds", f.payments.byBooking[b.ID].Metadata[model.MetaFailureReason])
}

func TestProcessWebhook_RedeliveryIsIdempotent(t *testing.T) {
	f := newFixture(t)
	b := f.seedBooking(bookingModel.StatusAwaitingPayment)

	event := &model.WebhookEvent{
		ID:              "evt_dup",
		Type:            model.EventPaymentSucceeded,
		BookingID:       b.ID,
		PaymentIntentID: "pi_1",
	}

	require.NoError(t, f.deliver(event))
	require.NoError(t, f.deliver(event))
	require.NoError(t, f.deliver(event))

	assert.Equal(t, bookingModel.StatusScheduled, b.Status)
	assert.Equal(t, 1, f.bookings.statusUpdates, "the transition applies once")
	assert.Equal(t, 1, f.payments.upserts)
}

func TestProcessWebhook_JournalDeduplicatesWhenCacheIsDown(t *testing.T) {
	f := newFixture(t)
	b := f.seedBooking(bookingModel.StatusAwaitingPayment)
	f.cache.failAll = true

	event := &model.WebhookEvent{
		ID:        "evt_nocache",
		Type:      model.EventPaymentSucceeded,
		BookingID: b.ID,
	}

	require.NoError(t, f.deliver(event))
	require.NoError(t, f.deliver(event))

	assert.Equal(t, bookingModel.StatusScheduled, b.Status)
	assert.Equal(t, 1, f.bookings.statusUpdates)
}

func TestProcessWebhook_StatusMismatchIsAcknowledged(t *testing.T) {
	f := newFixture(t)
	b := f.seedBooking(bookingModel.StatusCanceled)

	// The booking was canceled while the payment event was in flight.
	require.NoError(t, f.deliver(&model.WebhookEvent{
		ID:        "evt_late",
		Type:      model.EventPaymentSucceeded,
		BookingID: b.ID,
	}))

	assert.Equal(t, bookingModel.StatusCanceled, b.Status)
	assert.Zero(t, f.bookings.statusUpdates)
	assert.Contains(t, f.journal.journal, "evt_late", "ignored events still journal")
}

func TestProcessWebhook_UnknownEventTypeIsAcknowledged(t *testing.T) {
	f := newFixture(t)

	// The gateway adapter returns nil for unconsumed event types.
	f.gateway.ParsedEvent = nil
	err := f.svc.ProcessWebhook(context.Background(), []byte(`{}`), "sig")
	require.NoError(t, err)
	assert.Empty(t, f.journal.journal)
}

func TestProcessWebhook_Failures(t *testing.T) {
	f := newFixture(t)

	// Bad signature.
	f.gateway.ParseErr = model.ErrInvalidSignature
	err := f.svc.ProcessWebhook(context.Background(), []byte(`{}`), "bad")
	assertPaymentCode(t, err, model.ErrCodeInvalidSignature)
	f.gateway.ParseErr = nil

	// Missing booking metadata.
	err = f.deliver(&model.WebhookEvent{ID: "evt_meta", Type: model.EventPaymentSucceeded, BookingID: uuid.Nil})
	assertPaymentCode(t, err, model.ErrCodeInvalidMetadata)

	// Unknown booking id.
	err = f.deliver(&model.WebhookEvent{ID: "evt_missing", Type: model.EventPaymentSucceeded, BookingID: uuid.New()})
	assertPaymentCode(t, err, model.ErrCodeBookingNotFound)
}
