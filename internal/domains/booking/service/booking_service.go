package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/edproton/xceltutors-next/internal/domains/booking/model"
	"github.com/edproton/xceltutors-next/internal/domains/booking/repository"
	"github.com/edproton/xceltutors-next/internal/domains/payment/gateway"
	paymentModel "github.com/edproton/xceltutors-next/internal/domains/payment/model"
	paymentRepo "github.com/edproton/xceltutors-next/internal/domains/payment/repository"
	userRepo "github.com/edproton/xceltutors-next/internal/domains/user/repository"
	"github.com/edproton/xceltutors-next/pkg/clock"
	"github.com/edproton/xceltutors-next/pkg/database"
	"github.com/edproton/xceltutors-next/pkg/logger"
)

// =====================================================
// BOOKING SERVICE IMPLEMENTATION
// =====================================================
type bookingService struct {
	bookingRepo repository.BookingRepository
	paymentRepo paymentRepo.PaymentRepository
	userRepo    userRepo.UserRepository
	gateway     gateway.PaymentGateway
	txManager   database.TransactionManager
	clock       clock.Clock
	currency    string
}

// NewBookingService creates a new booking service
func NewBookingService(
	bookingRepo repository.BookingRepository,
	payments paymentRepo.PaymentRepository,
	users userRepo.UserRepository,
	gw gateway.PaymentGateway,
	txManager database.TransactionManager,
	clk clock.Clock,
	currency string,
) BookingService {
	return &bookingService{
		bookingRepo: bookingRepo,
		paymentRepo: payments,
		userRepo:    users,
		gateway:     gw,
		txManager:   txManager,
		clock:       clk,
		currency:    currency,
	}
}

// =====================================================
// CREATE BOOKING
// =====================================================

func (s *bookingService) Create(ctx context.Context, currentUserID uuid.UUID, req model.CreateBookingRequest) (*model.CreateBookingResponse, error) {
	// Step 1: Validate request shape
	if err := req.Validate(); err != nil {
		return nil, model.NewBookingError(model.ErrCodeInvalidInput, "Invalid request", err)
	}

	startTime, err := model.ParseInstant(req.StartTime)
	if err != nil {
		return nil, model.NewBookingError(model.ErrCodeInvalidDate, "startTime is not a valid UTC instant", err)
	}

	// Step 2: Time window checks
	now := s.clock.Now().UTC()
	if startTime.Before(now) {
		return nil, model.NewBookingError(model.ErrCodePastBooking, "Cannot book a time in the past", nil)
	}
	if startTime.After(now.AddDate(0, model.AdvanceBookingMonths, 0)) {
		return nil, model.NewBookingError(model.ErrCodeAdvanceBookingLimit, "Cannot book more than one month ahead", nil)
	}

	// Step 3: The pair must be two distinct people
	if currentUserID == req.ToUserID {
		return nil, model.NewBookingError(model.ErrCodeYourselfBooking, "Cannot book a session with yourself", nil)
	}

	// Step 4: Load both parties
	users, err := s.userRepo.GetByIDs(ctx, []uuid.UUID{currentUserID, req.ToUserID})
	if err != nil {
		return nil, model.NewBookingError(model.ErrCodeInternalServerError, "Failed to load users", err)
	}
	currentUser, ok := users[currentUserID]
	if !ok {
		return nil, model.NewBookingError(model.ErrCodeUserNotFound, "User not found", nil)
	}
	toUser, ok := users[req.ToUserID]
	if !ok {
		return nil, model.NewBookingError(model.ErrCodeUserNotFound, "User not found", nil)
	}

	// Step 5: Exactly one side of the pair must be a tutor
	isTutor := currentUser.IsTutor()
	if isTutor == toUser.IsTutor() {
		return nil, model.NewBookingError(model.ErrCodeInvalidBookingCombination, "A booking needs exactly one tutor and one student", nil)
	}

	tutor, student := toUser, currentUser
	if isTutor {
		tutor, student = currentUser, toUser
	}

	// Steps 6-10 run inside the transaction so the history read and the
	// insert commit together; two racing creates serialize on it.
	booking, err := database.RunInTxResult(ctx, s.txManager, func(tx pgx.Tx) (*model.Booking, error) {
		// Step 6: One query for every rule below
		lessonWindow := model.Interval{Start: startTime, End: startTime.Add(model.LessonDuration)}
		related, err := s.bookingRepo.FindBetweenUsersWithTx(ctx, tx, tutor.ID, student.ID, lessonWindow.Start, lessonWindow.End)
		if err != nil {
			return nil, model.NewBookingError(model.ErrCodeInternalServerError, "Failed to load related bookings", err)
		}

		// Step 7: Overlap against the widest possible candidate window
		// Overlap is checked across the whole history first so a clash
		// always reports as a conflict, whatever else the history holds.
		for i := range related {
			b := &related[i]
			if b.IsActive() && b.Overlaps(lessonWindow.Start, lessonWindow.End) {
				return nil, model.NewBookingError(model.ErrCodeBookingConflict, "The requested time overlaps an existing booking", nil)
			}
		}

		hasPriorMeeting := false
		hasCompletedFreeMeeting := false
		for i := range related {
			b := &related[i]
			if b.Type == model.TypeFreeMeeting && b.IsActive() {
				return nil, model.NewBookingError(model.ErrCodeOngoingFreeMeeting, "There is already an ongoing free meeting with this user", nil)
			}
			if b.Status == model.StatusCompleted || b.Status == model.StatusScheduled {
				hasPriorMeeting = true
			}
			if b.Type == model.TypeFreeMeeting && b.Status == model.StatusCompleted {
				hasCompletedFreeMeeting = true
			}
		}

		// Step 8: A tutor may only initiate with established students
		if isTutor && !hasPriorMeeting {
			return nil, model.NewBookingError(model.ErrCodeNoPreviousMeeting, "No previous meeting with this student", nil)
		}

		// Step 9: Pairs graduate to lessons after a completed free meeting
		bookingType := model.TypeFreeMeeting
		if hasCompletedFreeMeeting {
			bookingType = model.TypeLesson
		}
		if bookingType == model.TypeFreeMeeting && isTutor {
			return nil, model.NewBookingError(model.ErrCodeFreeMeetingTutor, "Tutors cannot initiate free meetings", nil)
		}

		// Step 10: Build and persist
		status := model.StatusAwaitingTutorConfirmation
		if isTutor {
			status = model.StatusAwaitingStudentConfirmation
		}

		price := decimal.Zero
		title := fmt.Sprintf("Free meeting with %s", tutor.Name)
		if bookingType == model.TypeLesson {
			price = tutor.HourlyRate
			title = fmt.Sprintf("Lesson with %s", tutor.Name)
		}

		newBooking := &model.Booking{
			ID:            uuid.New(),
			Title:         title,
			Type:          bookingType,
			Status:        status,
			HostID:        tutor.ID,
			Participants:  []uuid.UUID{student.ID},
			StartTime:     startTime,
			EndTime:       startTime.Add(model.DurationForType(bookingType)),
			PriceAmount:   price,
			PriceCurrency: s.currency,
		}
		if err := s.bookingRepo.CreateWithTx(ctx, tx, newBooking); err != nil {
			return nil, model.NewBookingError(model.ErrCodeInternalServerError, "Failed to create booking", err)
		}
		return newBooking, nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("booking created", map[string]interface{}{
		"booking_id": booking.ID,
		"type":       booking.Type,
		"host_id":    booking.HostID,
	})

	return &model.CreateBookingResponse{ID: booking.ID}, nil
}

// =====================================================
// READS
// =====================================================

func (s *bookingService) GetByID(ctx context.Context, currentUserID, bookingID uuid.UUID) (*model.BookingDetail, error) {
	detail, err := s.bookingRepo.GetDetail(ctx, bookingID)
	if err != nil {
		if err == model.ErrBookingNotFound {
			return nil, model.NewBookingError(model.ErrCodeBookingNotFound, "Booking not found", err)
		}
		return nil, model.NewBookingError(model.ErrCodeInternalServerError, "Failed to load booking", err)
	}

	if !detail.IsParty(currentUserID) {
		return nil, model.NewBookingError(model.ErrCodeUnauthorized, "You are not part of this booking", nil)
	}

	return detail, nil
}

func (s *bookingService) List(ctx context.Context, currentUserID uuid.UUID, req model.ListBookingsRequest) ([]model.BookingResponse, int64, error) {
	req.ApplyDefaults()
	if err := req.Validate(); err != nil {
		return nil, 0, model.NewBookingError(model.ErrCodeInvalidInput, "Invalid list parameters", err)
	}

	bookings, total, err := s.bookingRepo.List(ctx, currentUserID, req)
	if err != nil {
		return nil, 0, model.NewBookingError(model.ErrCodeInternalServerError, "Failed to list bookings", err)
	}

	items := make([]model.BookingResponse, 0, len(bookings))
	for i := range bookings {
		items = append(items, model.NewBookingResponse(&bookings[i]))
	}
	return items, total, nil
}

// =====================================================
// CONFIRM BOOKING
// =====================================================

func (s *bookingService) Confirm(ctx context.Context, currentUserID, bookingID uuid.UUID) (*model.Booking, error) {
	return database.RunInTxResult(ctx, s.txManager, func(tx pgx.Tx) (*model.Booking, error) {
		// Step 1: Lock and authorize
		booking, err := s.loadForUpdate(ctx, tx, currentUserID, bookingID)
		if err != nil {
			return nil, err
		}

		// Step 2: Only pending bookings confirm
		if !model.CanConfirm(booking.Status) {
			return nil, model.NewBookingError(model.ErrCodeInvalidStatus, "Booking cannot be confirmed from its current status", nil)
		}

		// Step 3: Only the party being waited on may confirm; the
		// creator cannot approve their own request.
		actorIsTutor := booking.HostID == currentUserID
		switch booking.Status {
		case model.StatusAwaitingTutorConfirmation:
			if !actorIsTutor {
				return nil, model.NewBookingError(model.ErrCodeInvalidStatus, "Waiting on the tutor; the student cannot confirm", nil)
			}
		case model.StatusAwaitingStudentConfirmation:
			if actorIsTutor {
				return nil, model.NewBookingError(model.ErrCodeInvalidStatus, "Waiting on the student; the tutor cannot confirm", nil)
			}
		}

		target := model.ConfirmTarget(booking.Type)

		// Step 4: A lesson needs a live checkout session before the
		// status flips; session, payment row and status commit together.
		// The payment row is re-read under the booking lock rather than
		// taken from the projection, so a racing confirm cannot reuse a
		// session id it never saw committed.
		if booking.Type == model.TypeLesson {
			payment, err := s.paymentRepo.GetByBookingIDWithTx(ctx, tx, booking.ID)
			if err != nil {
				if err != paymentModel.ErrPaymentNotFound {
					return nil, model.NewBookingError(model.ErrCodeInternalServerError, "Failed to load payment", err)
				}
				payment = &paymentModel.Payment{BookingID: booking.ID}
			}

			session, err := s.createOrRefreshCheckoutSession(ctx, booking, payment)
			if err != nil {
				return nil, model.NewBookingError(model.ErrCodePaymentSessionCreationFailed, "Failed to create payment session", err)
			}

			payment.SessionID = &session.SessionID
			payment.SessionURL = &session.SessionURL
			if err := s.paymentRepo.UpsertWithTx(ctx, tx, payment); err != nil {
				return nil, model.NewBookingError(model.ErrCodeInternalServerError, "Failed to store payment", err)
			}
			booking.Payment = payment
		}

		// Step 5: Flip the status
		if err := s.bookingRepo.UpdateStatusWithTx(ctx, tx, booking.ID, booking.Status, target); err != nil {
			return nil, model.NewBookingError(model.ErrCodeInternalServerError, "Failed to update booking status", err)
		}
		booking.Status = target

		return booking, nil
	})
}

// createOrRefreshCheckoutSession reuses a still-open session from an
// earlier confirm attempt; a dangling closed one is replaced.
func (s *bookingService) createOrRefreshCheckoutSession(ctx context.Context, booking *model.Booking, payment *paymentModel.Payment) (*paymentModel.CheckoutSession, error) {
	if payment.SessionID != nil {
		session, open, err := s.gateway.GetCheckoutSession(ctx, *payment.SessionID)
		if err == nil && open {
			return session, nil
		}
		if err != nil {
			logger.Warn("could not refresh checkout session, creating a new one", map[string]interface{}{
				"booking_id": booking.ID,
				"session_id": *payment.SessionID,
			})
		}
	}

	return s.gateway.CreateCheckoutSession(ctx, gateway.CheckoutSessionRequest{
		BookingID: booking.ID,
		Title:     booking.Title,
		Amount:    booking.PriceAmount,
		Currency:  booking.PriceCurrency,
	})
}

// =====================================================
// RESCHEDULE BOOKING
// =====================================================

func (s *bookingService) Reschedule(ctx context.Context, currentUserID, bookingID uuid.UUID, req model.RescheduleBookingRequest) (*model.Booking, error) {
	if err := req.Validate(); err != nil {
		return nil, model.NewBookingError(model.ErrCodeInvalidInput, "Invalid request", err)
	}

	newStart, err := model.ParseInstant(req.StartTime)
	if err != nil {
		return nil, model.NewBookingError(model.ErrCodeInvalidDate, "startTime is not a valid UTC instant", err)
	}

	return database.RunInTxResult(ctx, s.txManager, func(tx pgx.Tx) (*model.Booking, error) {
		// Step 1: Lock and authorize
		booking, err := s.loadForUpdate(ctx, tx, currentUserID, bookingID)
		if err != nil {
			return nil, err
		}

		// Step 2: Time checks against the locked row
		now := s.clock.Now().UTC()
		if newStart.Before(now) {
			return nil, model.NewBookingError(model.ErrCodePastTime, "Cannot reschedule to a time in the past", nil)
		}
		if newStart.Equal(booking.StartTime) {
			return nil, model.NewBookingError(model.ErrCodeSameTime, "Booking already starts at that time", nil)
		}

		// Step 3: Only the party being waited on may move the booking
		actorIsTutor := booking.HostID == currentUserID
		switch booking.Status {
		case model.StatusAwaitingTutorConfirmation:
			if !actorIsTutor {
				return nil, model.NewBookingError(model.ErrCodeInvalidStatusStudent, "Waiting on the tutor; the student cannot reschedule now", nil)
			}
		case model.StatusAwaitingStudentConfirmation:
			if actorIsTutor {
				return nil, model.NewBookingError(model.ErrCodeInvalidStatusTutor, "Waiting on the student; the tutor cannot reschedule now", nil)
			}
		default:
			return nil, model.NewBookingError(model.ErrCodeInvalidStatus, "Booking cannot be rescheduled from its current status", nil)
		}

		// Step 4: Host-wide overlap check on the new window
		newEnd := newStart.Add(model.DurationForType(booking.Type))
		conflicts, err := s.bookingRepo.FindConflictsWithTx(ctx, tx, booking.HostID, nil, &booking.ID, []model.Interval{{Start: newStart, End: newEnd}})
		if err != nil {
			return nil, model.NewBookingError(model.ErrCodeInternalServerError, "Failed to check for conflicts", err)
		}
		if len(conflicts) > 0 {
			return nil, model.NewBookingError(model.ErrCodeBookingConflict, "The new time overlaps an existing booking", nil)
		}

		// Step 5: Move and flip the awaiting direction
		target, err := model.RescheduleTarget(booking.Status)
		if err != nil {
			return nil, model.NewBookingError(model.ErrCodeInvalidStatus, "Booking cannot be rescheduled from its current status", err)
		}
		if err := s.bookingRepo.UpdateScheduleWithTx(ctx, tx, booking.ID, newStart, newEnd, target); err != nil {
			return nil, model.NewBookingError(model.ErrCodeInternalServerError, "Failed to reschedule booking", err)
		}

		booking.StartTime = newStart
		booking.EndTime = newEnd
		booking.Status = target
		return booking, nil
	})
}

// =====================================================
// CANCEL BOOKING
// =====================================================

func (s *bookingService) Cancel(ctx context.Context, currentUserID, bookingID uuid.UUID) error {
	return s.txManager.WithTransaction(ctx, func(tx pgx.Tx) error {
		// Step 1: Lock and authorize
		booking, err := s.loadForUpdate(ctx, tx, currentUserID, bookingID)
		if err != nil {
			return err
		}

		// Step 2: Status gate
		if !model.CanCancel(booking.Status) {
			return model.NewBookingError(model.ErrCodeInvalidStatus, "Booking cannot be canceled from its current status", nil)
		}

		// Step 3: An open checkout must die before the cancel commits,
		// otherwise the payer could still complete it. The dead row is
		// dropped with it so the stale session URL cannot resurface.
		if booking.Status == model.StatusAwaitingPayment {
			payment, err := s.paymentRepo.GetByBookingIDWithTx(ctx, tx, booking.ID)
			if err != nil || payment.SessionID == nil {
				if err != nil && err != paymentModel.ErrPaymentNotFound {
					return model.NewBookingError(model.ErrCodeInternalServerError, "Failed to load payment", err)
				}
				return model.NewBookingError(model.ErrCodeNoPaymentInfo, "Booking awaits payment but has no payment session", nil)
			}
			if err := s.gateway.ExpireCheckoutSession(ctx, *payment.SessionID); err != nil {
				return model.NewBookingError(model.ErrCodePaymentCancellationFailed, "Failed to cancel the payment session", err)
			}
			if err := s.paymentRepo.DeleteByBookingIDWithTx(ctx, tx, booking.ID); err != nil {
				return model.NewBookingError(model.ErrCodeInternalServerError, "Failed to remove payment session", err)
			}
		}

		// Step 4: Commit the terminal state
		if err := s.bookingRepo.UpdateStatusWithTx(ctx, tx, booking.ID, booking.Status, model.StatusCanceled); err != nil {
			return model.NewBookingError(model.ErrCodeInternalServerError, "Failed to cancel booking", err)
		}
		return nil
	})
}

// =====================================================
// REQUEST REFUND
// =====================================================

func (s *bookingService) RequestRefund(ctx context.Context, currentUserID, bookingID uuid.UUID) error {
	return s.txManager.WithTransaction(ctx, func(tx pgx.Tx) error {
		// Step 1: Lock and authorize
		booking, err := s.loadForUpdate(ctx, tx, currentUserID, bookingID)
		if err != nil {
			return err
		}

		// Step 2: Refunds only apply to paid, scheduled lessons
		if booking.Status != model.StatusScheduled {
			return model.NewBookingError(model.ErrCodeInvalidStatus, "Only scheduled bookings can be refunded", nil)
		}
		payment, err := s.paymentRepo.GetByBookingIDWithTx(ctx, tx, booking.ID)
		if err != nil || payment.PaymentIntentID == nil {
			if err != nil && err != paymentModel.ErrPaymentNotFound {
				return model.NewBookingError(model.ErrCodeInternalServerError, "Failed to load payment", err)
			}
			return model.NewBookingError(model.ErrCodeNoPaymentInfo, "Booking has no captured payment to refund", nil)
		}

		// Step 3: The refund must exist at the gateway before the
		// status commits; settlement arrives later via webhook.
		_, err = s.gateway.CreateRefund(ctx, gateway.RefundRequest{
			BookingID:       booking.ID,
			PaymentIntentID: *payment.PaymentIntentID,
		})
		if err != nil {
			return model.NewBookingError(model.ErrCodeRefundProcessingFailed, "Failed to initiate refund", err)
		}

		// Step 4: Park until the gateway reports the outcome
		if err := s.bookingRepo.UpdateStatusWithTx(ctx, tx, booking.ID, booking.Status, model.StatusAwaitingRefund); err != nil {
			return model.NewBookingError(model.ErrCodeInternalServerError, "Failed to update booking status", err)
		}
		return nil
	})
}

// =====================================================
// HELPERS
// =====================================================

// loadForUpdate locks the booking row and checks the actor is host or
// participant. All mutating commands start here.
func (s *bookingService) loadForUpdate(ctx context.Context, tx pgx.Tx, currentUserID, bookingID uuid.UUID) (*model.Booking, error) {
	booking, err := s.bookingRepo.GetByIDWithTx(ctx, tx, bookingID)
	if err != nil {
		if err == model.ErrBookingNotFound {
			return nil, model.NewBookingError(model.ErrCodeBookingNotFound, "Booking not found", err)
		}
		return nil, model.NewBookingError(model.ErrCodeInternalServerError, "Failed to load booking", err)
	}

	if !booking.IsParty(currentUserID) {
		return nil, model.NewBookingError(model.ErrCodeUnauthorized, "You are not part of this booking", nil)
	}

	return booking, nil
}
