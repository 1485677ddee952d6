package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edproton/xceltutors-next/internal/domains/booking/model"
	"github.com/edproton/xceltutors-next/internal/domains/payment/gateway/mock"
	paymentModel "github.com/edproton/xceltutors-next/internal/domains/payment/model"
	userModel "github.com/edproton/xceltutors-next/internal/domains/user/model"
	"github.com/edproton/xceltutors-next/pkg/clock"
)

// 2026-03-02 is a Monday.
var testNow = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

type fixture struct {
	svc      BookingService
	bookings *fakeBookingRepo
	payments *fakePaymentRepo
	gateway  *mock.MockPaymentGateway
	tutor    *userModel.User
	student  *userModel.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	tutor := &userModel.User{
		ID:         uuid.New(),
		Name:       "Ada Lovelace",
		Roles:      []string{userModel.RoleTutor},
		HourlyRate: decimal.NewFromInt(40),
	}
	student := &userModel.User{
		ID:    uuid.New(),
		Name:  "Grace Hopper",
		Roles: []string{userModel.RoleStudent},
	}

	bookings := newFakeBookingRepo()
	payments := newFakePaymentRepo()
	gw := mock.NewMockPaymentGateway()

	svc := NewBookingService(
		bookings,
		payments,
		newFakeUserRepo(tutor, student),
		gw,
		stubTxManager{},
		clock.NewFixed(testNow),
		"GBP",
	)

	return &fixture{
		svc:      svc,
		bookings: bookings,
		payments: payments,
		gateway:  gw,
		tutor:    tutor,
		student:  student,
	}
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var be *model.BookingError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, code, be.Code)
}

func wireTime(t time.Time) string {
	return model.FormatInstant(t)
}

// =====================================================
// CREATE
// =====================================================

func TestCreate_FirstContactIsFreeMeeting(t *testing.T) {
	f := newFixture(t)

	start := testNow.Add(48 * time.Hour)
	resp, err := f.svc.Create(context.Background(), f.student.ID, model.CreateBookingRequest{
		StartTime: wireTime(start),
		ToUserID:  f.tutor.ID,
	})
	require.NoError(t, err)

	require.Len(t, f.bookings.created, 1)
	b := f.bookings.created[0]
	assert.Equal(t, resp.ID, b.ID)
	assert.Equal(t, model.TypeFreeMeeting, b.Type)
	assert.Equal(t, model.StatusAwaitingTutorConfirmation, b.Status)
	assert.Equal(t, f.tutor.ID, b.HostID)
	assert.Equal(t, []uuid.UUID{f.student.ID}, b.Participants)
	assert.Equal(t, start, b.StartTime)
	assert.Equal(t, start.Add(model.FreeMeetingDuration), b.EndTime)
	assert.True(t, b.PriceAmount.IsZero())
	assert.Equal(t, "Free meeting with Ada Lovelace", b.Title)
}

func TestCreate_GraduatesToLessonAfterCompletedFreeMeeting(t *testing.T) {
	f := newFixture(t)
	f.bookings.related = []model.Booking{{
		ID:        uuid.New(),
		Type:      model.TypeFreeMeeting,
		Status:    model.StatusCompleted,
		StartTime: testNow.Add(-72 * time.Hour),
		EndTime:   testNow.Add(-72 * time.Hour).Add(model.FreeMeetingDuration),
	}}

	start := testNow.Add(48 * time.Hour)
	_, err := f.svc.Create(context.Background(), f.student.ID, model.CreateBookingRequest{
		StartTime: wireTime(start),
		ToUserID:  f.tutor.ID,
	})
	require.NoError(t, err)

	b := f.bookings.created[0]
	assert.Equal(t, model.TypeLesson, b.Type)
	assert.Equal(t, start.Add(model.LessonDuration), b.EndTime)
	assert.True(t, b.PriceAmount.Equal(decimal.NewFromInt(40)), "price snapshots the tutor rate")
	assert.Equal(t, "GBP", b.PriceCurrency)
	assert.Equal(t, "Lesson with Ada Lovelace", b.Title)
}

func TestCreate_TutorInitiatedAwaitsStudent(t *testing.T) {
	f := newFixture(t)
	f.bookings.related = []model.Booking{{
		Type:      model.TypeFreeMeeting,
		Status:    model.StatusCompleted,
		StartTime: testNow.Add(-72 * time.Hour),
		EndTime:   testNow.Add(-71 * time.Hour),
	}}

	_, err := f.svc.Create(context.Background(), f.tutor.ID, model.CreateBookingRequest{
		StartTime: wireTime(testNow.Add(48 * time.Hour)),
		ToUserID:  f.student.ID,
	})
	require.NoError(t, err)

	b := f.bookings.created[0]
	assert.Equal(t, model.StatusAwaitingStudentConfirmation, b.Status)
	assert.Equal(t, f.tutor.ID, b.HostID, "the tutor hosts regardless of who initiates")
}

func TestCreate_Rejections(t *testing.T) {
	future := func(f *fixture) string { return wireTime(testNow.Add(48 * time.Hour)) }

	tests := []struct {
		name   string
		setup  func(f *fixture)
		actor  func(f *fixture) uuid.UUID
		target func(f *fixture) uuid.UUID
		start  func(f *fixture) string
		code   string
	}{
		{
			name:   "malformed start time",
			actor:  func(f *fixture) uuid.UUID { return f.student.ID },
			target: func(f *fixture) uuid.UUID { return f.tutor.ID },
			start:  func(f *fixture) string { return "next tuesday" },
			code:   model.ErrCodeInvalidDate,
		},
		{
			name:   "past start time",
			actor:  func(f *fixture) uuid.UUID { return f.student.ID },
			target: func(f *fixture) uuid.UUID { return f.tutor.ID },
			start:  func(f *fixture) string { return wireTime(testNow.Add(-time.Hour)) },
			code:   model.ErrCodePastBooking,
		},
		{
			name:   "beyond the advance window",
			actor:  func(f *fixture) uuid.UUID { return f.student.ID },
			target: func(f *fixture) uuid.UUID { return f.tutor.ID },
			start:  func(f *fixture) string { return wireTime(testNow.AddDate(0, 1, 1)) },
			code:   model.ErrCodeAdvanceBookingLimit,
		},
		{
			name:   "booking yourself",
			actor:  func(f *fixture) uuid.UUID { return f.student.ID },
			target: func(f *fixture) uuid.UUID { return f.student.ID },
			start:  future,
			code:   model.ErrCodeYourselfBooking,
		},
		{
			name:   "unknown counterparty",
			actor:  func(f *fixture) uuid.UUID { return f.student.ID },
			target: func(f *fixture) uuid.UUID { return uuid.New() },
			start:  future,
			code:   model.ErrCodeUserNotFound,
		},
		{
			name: "overlapping active booking",
			setup: func(f *fixture) {
				f.bookings.related = []model.Booking{{
					Type:      model.TypeLesson,
					Status:    model.StatusScheduled,
					StartTime: testNow.Add(48 * time.Hour),
					EndTime:   testNow.Add(48 * time.Hour).Add(model.LessonDuration),
				}}
			},
			actor:  func(f *fixture) uuid.UUID { return f.student.ID },
			target: func(f *fixture) uuid.UUID { return f.tutor.ID },
			start:  future,
			code:   model.ErrCodeBookingConflict,
		},
		{
			name: "ongoing free meeting elsewhere",
			setup: func(f *fixture) {
				f.bookings.related = []model.Booking{{
					Type:      model.TypeFreeMeeting,
					Status:    model.StatusAwaitingTutorConfirmation,
					StartTime: testNow.Add(120 * time.Hour),
					EndTime:   testNow.Add(120 * time.Hour).Add(model.FreeMeetingDuration),
				}}
			},
			actor:  func(f *fixture) uuid.UUID { return f.student.ID },
			target: func(f *fixture) uuid.UUID { return f.tutor.ID },
			start:  future,
			code:   model.ErrCodeOngoingFreeMeeting,
		},
		{
			name:   "tutor without shared history",
			actor:  func(f *fixture) uuid.UUID { return f.tutor.ID },
			target: func(f *fixture) uuid.UUID { return f.student.ID },
			start:  future,
			code:   model.ErrCodeNoPreviousMeeting,
		},
		{
			name: "tutor cannot initiate a free meeting",
			setup: func(f *fixture) {
				// Prior scheduled lesson establishes history, but no
				// completed free meeting, so the pair is still in the
				// free-meeting stage.
				f.bookings.related = []model.Booking{{
					Type:      model.TypeLesson,
					Status:    model.StatusCompleted,
					StartTime: testNow.Add(-48 * time.Hour),
					EndTime:   testNow.Add(-47 * time.Hour),
				}}
			},
			actor:  func(f *fixture) uuid.UUID { return f.tutor.ID },
			target: func(f *fixture) uuid.UUID { return f.student.ID },
			start:  future,
			code:   model.ErrCodeFreeMeetingTutor,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.setup != nil {
				tt.setup(f)
			}
			_, err := f.svc.Create(context.Background(), tt.actor(f), model.CreateBookingRequest{
				StartTime: tt.start(f),
				ToUserID:  tt.target(f),
			})
			assertCode(t, err, tt.code)
			assert.Empty(t, f.bookings.created)
		})
	}
}

func TestCreate_TwoStudentsCannotPair(t *testing.T) {
	f := newFixture(t)
	other := &userModel.User{ID: uuid.New(), Name: "Second Student", Roles: []string{userModel.RoleStudent}}
	f.svc = NewBookingService(
		f.bookings, f.payments, newFakeUserRepo(f.student, other), f.gateway,
		stubTxManager{}, clock.NewFixed(testNow), "GBP",
	)

	_, err := f.svc.Create(context.Background(), f.student.ID, model.CreateBookingRequest{
		StartTime: wireTime(testNow.Add(48 * time.Hour)),
		ToUserID:  other.ID,
	})
	assertCode(t, err, model.ErrCodeInvalidBookingCombination)
}

func TestCreate_ConflictOutranksOngoingFreeMeeting(t *testing.T) {
	f := newFixture(t)
	start := testNow.Add(48 * time.Hour)

	// An active free meeting elsewhere sorts before the clashing lesson;
	// the clash must still win.
	f.bookings.related = []model.Booking{
		{
			Type:      model.TypeFreeMeeting,
			Status:    model.StatusAwaitingTutorConfirmation,
			StartTime: testNow.Add(120 * time.Hour),
			EndTime:   testNow.Add(120 * time.Hour).Add(model.FreeMeetingDuration),
		},
		{
			Type:      model.TypeLesson,
			Status:    model.StatusScheduled,
			StartTime: start,
			EndTime:   start.Add(model.LessonDuration),
		},
	}

	_, err := f.svc.Create(context.Background(), f.student.ID, model.CreateBookingRequest{
		StartTime: wireTime(start),
		ToUserID:  f.tutor.ID,
	})
	assertCode(t, err, model.ErrCodeBookingConflict)
}

// =====================================================
// CONFIRM
// =====================================================

func (f *fixture) seedBooking(bookingType, status string) *model.Booking {
	b := &model.Booking{
		ID:            uuid.New(),
		Title:         "Lesson with Ada Lovelace",
		Type:          bookingType,
		Status:        status,
		HostID:        f.tutor.ID,
		Participants:  []uuid.UUID{f.student.ID},
		StartTime:     testNow.Add(48 * time.Hour),
		EndTime:       testNow.Add(48 * time.Hour).Add(model.DurationForType(bookingType)),
		PriceAmount:   decimal.NewFromInt(40),
		PriceCurrency: "GBP",
	}
	f.bookings.put(b)
	return b
}

func (f *fixture) seedPayment(p *paymentModel.Payment) {
	f.payments.byBooking[p.BookingID] = p
}

func TestConfirm_FreeMeetingGoesStraightToCalendar(t *testing.T) {
	f := newFixture(t)
	b := f.seedBooking(model.TypeFreeMeeting, model.StatusAwaitingTutorConfirmation)

	confirmed, err := f.svc.Confirm(context.Background(), f.tutor.ID, b.ID)
	require.NoError(t, err)

	assert.Equal(t, model.StatusScheduled, confirmed.Status)
	assert.Empty(t, f.gateway.CreatedSessions, "free meetings never touch the gateway")
	assert.Empty(t, f.payments.upserts)
}

func TestConfirm_LessonOpensCheckoutSession(t *testing.T) {
	f := newFixture(t)
	b := f.seedBooking(model.TypeLesson, model.StatusAwaitingStudentConfirmation)

	confirmed, err := f.svc.Confirm(context.Background(), f.student.ID, b.ID)
	require.NoError(t, err)

	assert.Equal(t, model.StatusAwaitingPayment, confirmed.Status)
	require.Len(t, f.gateway.CreatedSessions, 1)
	assert.Equal(t, b.ID, f.gateway.CreatedSessions[0].BookingID)
	assert.Equal(t, "GBP", f.gateway.CreatedSessions[0].Currency)

	require.Len(t, f.payments.upserts, 1)
	require.NotNil(t, confirmed.Payment)
	assert.NotNil(t, confirmed.Payment.SessionID)
	assert.NotNil(t, confirmed.Payment.SessionURL)
}

func TestConfirm_ReusesOpenCheckoutSession(t *testing.T) {
	f := newFixture(t)
	b := f.seedBooking(model.TypeLesson, model.StatusAwaitingStudentConfirmation)

	sessionID := "cs_existing"
	f.gateway.OpenSessions[sessionID] = true
	f.seedPayment(&paymentModel.Payment{BookingID: b.ID, SessionID: &sessionID})

	confirmed, err := f.svc.Confirm(context.Background(), f.student.ID, b.ID)
	require.NoError(t, err)

	assert.Empty(t, f.gateway.CreatedSessions, "open session is reused, not replaced")
	assert.Equal(t, sessionID, *confirmed.Payment.SessionID)
}

func TestConfirm_GatewayFailureKeepsStatus(t *testing.T) {
	f := newFixture(t)
	b := f.seedBooking(model.TypeLesson, model.StatusAwaitingStudentConfirmation)
	f.gateway.FailCheckout = true

	_, err := f.svc.Confirm(context.Background(), f.student.ID, b.ID)
	assertCode(t, err, model.ErrCodePaymentSessionCreationFailed)
	assert.Equal(t, model.StatusAwaitingStudentConfirmation, f.bookings.byID[b.ID].Status)
}

func TestConfirm_Gates(t *testing.T) {
	f := newFixture(t)
	b := f.seedBooking(model.TypeLesson, model.StatusScheduled)

	_, err := f.svc.Confirm(context.Background(), f.student.ID, b.ID)
	assertCode(t, err, model.ErrCodeInvalidStatus)

	_, err = f.svc.Confirm(context.Background(), uuid.New(), b.ID)
	assertCode(t, err, model.ErrCodeUnauthorized)

	_, err = f.svc.Confirm(context.Background(), f.student.ID, uuid.New())
	assertCode(t, err, model.ErrCodeBookingNotFound)
}

func TestConfirm_OnlyTheAwaitedSideMayConfirm(t *testing.T) {
	f := newFixture(t)

	// The student created this request; they cannot approve it themselves.
	b := f.seedBooking(model.TypeFreeMeeting, model.StatusAwaitingTutorConfirmation)
	_, err := f.svc.Confirm(context.Background(), f.student.ID, b.ID)
	assertCode(t, err, model.ErrCodeInvalidStatus)
	assert.Equal(t, model.StatusAwaitingTutorConfirmation, f.bookings.byID[b.ID].Status)

	b2 := f.seedBooking(model.TypeLesson, model.StatusAwaitingStudentConfirmation)
	_, err = f.svc.Confirm(context.Background(), f.tutor.ID, b2.ID)
	assertCode(t, err, model.ErrCodeInvalidStatus)
	assert.Equal(t, model.StatusAwaitingStudentConfirmation, f.bookings.byID[b2.ID].Status)
	assert.Empty(t, f.gateway.CreatedSessions, "the wrong side must not open a checkout")
}

// =====================================================
// RESCHEDULE
// =====================================================

func TestReschedule_FlipsAwaitingSide(t *testing.T) {
	f := newFixture(t)
	b := f.seedBooking(model.TypeLesson, model.StatusAwaitingTutorConfirmation)

	newStart := testNow.Add(72 * time.Hour)
	moved, err := f.svc.Reschedule(context.Background(), f.tutor.ID, b.ID, model.RescheduleBookingRequest{
		StartTime: wireTime(newStart),
	})
	require.NoError(t, err)

	assert.Equal(t, model.StatusAwaitingStudentConfirmation, moved.Status)
	assert.Equal(t, newStart, moved.StartTime)
	assert.Equal(t, newStart.Add(model.LessonDuration), moved.EndTime)

	require.Len(t, f.bookings.scheduleUpdates, 1)
	assert.Equal(t, b.ID, f.bookings.scheduleUpdates[0].id)
}

func TestReschedule_OnlyTheAwaitedSideMayMove(t *testing.T) {
	f := newFixture(t)
	newStart := wireTime(testNow.Add(72 * time.Hour))

	b := f.seedBooking(model.TypeLesson, model.StatusAwaitingTutorConfirmation)
	_, err := f.svc.Reschedule(context.Background(), f.student.ID, b.ID, model.RescheduleBookingRequest{StartTime: newStart})
	assertCode(t, err, model.ErrCodeInvalidStatusStudent)

	b2 := f.seedBooking(model.TypeLesson, model.StatusAwaitingStudentConfirmation)
	_, err = f.svc.Reschedule(context.Background(), f.tutor.ID, b2.ID, model.RescheduleBookingRequest{StartTime: newStart})
	assertCode(t, err, model.ErrCodeInvalidStatusTutor)

	b3 := f.seedBooking(model.TypeLesson, model.StatusScheduled)
	_, err = f.svc.Reschedule(context.Background(), f.tutor.ID, b3.ID, model.RescheduleBookingRequest{StartTime: newStart})
	assertCode(t, err, model.ErrCodeInvalidStatus)
}

func TestReschedule_TimeGates(t *testing.T) {
	f := newFixture(t)
	b := f.seedBooking(model.TypeLesson, model.StatusAwaitingTutorConfirmation)

	_, err := f.svc.Reschedule(context.Background(), f.tutor.ID, b.ID, model.RescheduleBookingRequest{
		StartTime: wireTime(testNow.Add(-time.Hour)),
	})
	assertCode(t, err, model.ErrCodePastTime)

	_, err = f.svc.Reschedule(context.Background(), f.tutor.ID, b.ID, model.RescheduleBookingRequest{
		StartTime: wireTime(b.StartTime),
	})
	assertCode(t, err, model.ErrCodeSameTime)
}

func TestReschedule_ConflictOnNewWindow(t *testing.T) {
	f := newFixture(t)
	b := f.seedBooking(model.TypeLesson, model.StatusAwaitingTutorConfirmation)
	f.bookings.conflicts = []model.Booking{{ID: uuid.New()}}

	_, err := f.svc.Reschedule(context.Background(), f.tutor.ID, b.ID, model.RescheduleBookingRequest{
		StartTime: wireTime(testNow.Add(72 * time.Hour)),
	})
	assertCode(t, err, model.ErrCodeBookingConflict)
	assert.Empty(t, f.bookings.scheduleUpdates)
}

// =====================================================
// CANCEL
// =====================================================

func TestCancel_PendingBooking(t *testing.T) {
	f := newFixture(t)
	b := f.seedBooking(model.TypeFreeMeeting, model.StatusAwaitingTutorConfirmation)

	require.NoError(t, f.svc.Cancel(context.Background(), f.student.ID, b.ID))
	assert.Equal(t, model.StatusCanceled, f.bookings.byID[b.ID].Status)
	assert.Empty(t, f.gateway.ExpiredSessions)
}

func TestCancel_AwaitingPaymentExpiresCheckout(t *testing.T) {
	f := newFixture(t)
	b := f.seedBooking(model.TypeLesson, model.StatusAwaitingPayment)
	sessionID := "cs_live"
	f.gateway.OpenSessions[sessionID] = true
	f.seedPayment(&paymentModel.Payment{BookingID: b.ID, SessionID: &sessionID})

	require.NoError(t, f.svc.Cancel(context.Background(), f.student.ID, b.ID))
	assert.Equal(t, model.StatusCanceled, f.bookings.byID[b.ID].Status)
	assert.Equal(t, []string{sessionID}, f.gateway.ExpiredSessions)
	_, stillThere := f.payments.byBooking[b.ID]
	assert.False(t, stillThere, "the dead checkout row is dropped with the cancel")
}

func TestCancel_AwaitingPaymentFailures(t *testing.T) {
	f := newFixture(t)

	// No payment row at all.
	b := f.seedBooking(model.TypeLesson, model.StatusAwaitingPayment)
	err := f.svc.Cancel(context.Background(), f.student.ID, b.ID)
	assertCode(t, err, model.ErrCodeNoPaymentInfo)

	// Gateway refuses to expire; the cancel must not commit.
	b2 := f.seedBooking(model.TypeLesson, model.StatusAwaitingPayment)
	sessionID := "cs_stuck"
	f.seedPayment(&paymentModel.Payment{BookingID: b2.ID, SessionID: &sessionID})
	f.gateway.FailExpire = true

	err = f.svc.Cancel(context.Background(), f.student.ID, b2.ID)
	assertCode(t, err, model.ErrCodePaymentCancellationFailed)
	assert.Equal(t, model.StatusAwaitingPayment, f.bookings.byID[b2.ID].Status)
	_, stillThere := f.payments.byBooking[b2.ID]
	assert.True(t, stillThere, "a failed expire must leave the payment row alone")
}

func TestCancel_TerminalStatus(t *testing.T) {
	f := newFixture(t)
	b := f.seedBooking(model.TypeLesson, model.StatusCompleted)

	err := f.svc.Cancel(context.Background(), f.student.ID, b.ID)
	assertCode(t, err, model.ErrCodeInvalidStatus)
}

// =====================================================
// REQUEST REFUND
// =====================================================

func TestRequestRefund_ParksUntilGatewaySettles(t *testing.T) {
	f := newFixture(t)
	b := f.seedBooking(model.TypeLesson, model.StatusScheduled)
	intentID := "pi_123"
	f.seedPayment(&paymentModel.Payment{BookingID: b.ID, PaymentIntentID: &intentID})

	require.NoError(t, f.svc.RequestRefund(context.Background(), f.student.ID, b.ID))

	assert.Equal(t, model.StatusAwaitingRefund, f.bookings.byID[b.ID].Status)
	require.Len(t, f.gateway.Refunds, 1)
	assert.Equal(t, intentID, f.gateway.Refunds[0].PaymentIntentID)
}

func TestRequestRefund_Gates(t *testing.T) {
	f := newFixture(t)

	b := f.seedBooking(model.TypeLesson, model.StatusAwaitingPayment)
	assertCode(t, f.svc.RequestRefund(context.Background(), f.student.ID, b.ID), model.ErrCodeInvalidStatus)

	b2 := f.seedBooking(model.TypeLesson, model.StatusScheduled)
	assertCode(t, f.svc.RequestRefund(context.Background(), f.student.ID, b2.ID), model.ErrCodeNoPaymentInfo)

	b3 := f.seedBooking(model.TypeLesson, model.StatusScheduled)
	intentID := "pi_456"
	f.seedPayment(&paymentModel.Payment{BookingID: b3.ID, PaymentIntentID: &intentID})
	f.gateway.FailRefund = true
	err := f.svc.RequestRefund(context.Background(), f.student.ID, b3.ID)
	assertCode(t, err, model.ErrCodeRefundProcessingFailed)
	assert.Equal(t, model.StatusScheduled, f.bookings.byID[b3.ID].Status)
}

// =====================================================
// READS
// =====================================================

func TestGetByID_OnlyPartiesMayRead(t *testing.T) {
	f := newFixture(t)
	b := f.seedBooking(model.TypeLesson, model.StatusScheduled)

	detail, err := f.svc.GetByID(context.Background(), f.tutor.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, detail.ID)

	_, err = f.svc.GetByID(context.Background(), uuid.New(), b.ID)
	assertCode(t, err, model.ErrCodeUnauthorized)

	_, err = f.svc.GetByID(context.Background(), f.tutor.ID, uuid.New())
	assertCode(t, err, model.ErrCodeBookingNotFound)
}

func TestList_RejectsInvalidFilters(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.svc.List(context.Background(), f.student.ID, model.ListBookingsRequest{
		Status: []string{"NOT_A_STATUS"},
	})
	assertCode(t, err, model.ErrCodeInvalidInput)

	var be *model.BookingError
	require.True(t, errors.As(err, &be))
}
