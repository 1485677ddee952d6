package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/edproton/xceltutors-next/internal/domains/booking/model"
	paymentModel "github.com/edproton/xceltutors-next/internal/domains/payment/model"
	userModel "github.com/edproton/xceltutors-next/internal/domains/user/model"
	"github.com/edproton/xceltutors-next/pkg/database"
)

// stubTxManager runs the unit of work without a database; the fakes
// below ignore the tx handle.
type stubTxManager struct{}

func (stubTxManager) WithTransaction(ctx context.Context, fn database.TxFunc) error {
	return fn(nil)
}

// =====================================================
// FAKE BOOKING REPOSITORY
// =====================================================

type statusUpdate struct {
	id       uuid.UUID
	from, to string
}

type scheduleUpdate struct {
	id         uuid.UUID
	start, end time.Time
	to         string
}

type fakeBookingRepo struct {
	byID      map[uuid.UUID]*model.Booking
	related   []model.Booking // FindBetweenUsersWithTx result
	conflicts []model.Booking // FindConflictsWithTx result

	created         []*model.Booking
	createdMany     []*model.Booking
	statusUpdates   []statusUpdate
	scheduleUpdates []scheduleUpdate

	conflictIntervals []model.Interval
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{byID: make(map[uuid.UUID]*model.Booking)}
}

func (f *fakeBookingRepo) put(b *model.Booking) {
	f.byID[b.ID] = b
}

func (f *fakeBookingRepo) GetByIDWithTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Booking, error) {
	b, ok := f.byID[id]
	if !ok {
		return nil, model.ErrBookingNotFound
	}
	clone := *b
	return &clone, nil
}

func (f *fakeBookingRepo) GetDetail(ctx context.Context, id uuid.UUID) (*model.BookingDetail, error) {
	b, ok := f.byID[id]
	if !ok {
		return nil, model.ErrBookingNotFound
	}
	return &model.BookingDetail{Booking: *b}, nil
}

func (f *fakeBookingRepo) List(ctx context.Context, userID uuid.UUID, req model.ListBookingsRequest) ([]model.Booking, int64, error) {
	out := make([]model.Booking, 0, len(f.byID))
	for _, b := range f.byID {
		out = append(out, *b)
	}
	return out, int64(len(out)), nil
}

func (f *fakeBookingRepo) CreateWithTx(ctx context.Context, tx pgx.Tx, booking *model.Booking) error {
	f.created = append(f.created, booking)
	f.put(booking)
	return nil
}

func (f *fakeBookingRepo) CreateManyWithTx(ctx context.Context, tx pgx.Tx, bookings []*model.Booking) error {
	f.createdMany = append(f.createdMany, bookings...)
	for _, b := range bookings {
		f.put(b)
	}
	return nil
}

func (f *fakeBookingRepo) UpdateStatusWithTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, fromStatus, toStatus string) error {
	b, ok := f.byID[id]
	if !ok || b.Status != fromStatus {
		return model.ErrInvalidStatus
	}
	b.Status = toStatus
	f.statusUpdates = append(f.statusUpdates, statusUpdate{id: id, from: fromStatus, to: toStatus})
	return nil
}

func (f *fakeBookingRepo) UpdateScheduleWithTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, start, end time.Time, toStatus string) error {
	b, ok := f.byID[id]
	if !ok {
		return model.ErrBookingNotFound
	}
	b.StartTime, b.EndTime, b.Status = start, end, toStatus
	f.scheduleUpdates = append(f.scheduleUpdates, scheduleUpdate{id: id, start: start, end: end, to: toStatus})
	return nil
}

func (f *fakeBookingRepo) FindBetweenUsersWithTx(ctx context.Context, tx pgx.Tx, tutorID, studentID uuid.UUID, start, end time.Time) ([]model.Booking, error) {
	return f.related, nil
}

func (f *fakeBookingRepo) FindConflictsWithTx(ctx context.Context, tx pgx.Tx, hostID uuid.UUID, participantID *uuid.UUID, excludeID *uuid.UUID, intervals []model.Interval) ([]model.Booking, error) {
	f.conflictIntervals = append(f.conflictIntervals, intervals...)
	return f.conflicts, nil
}

func (f *fakeBookingRepo) CompleteElapsed(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	for _, b := range f.byID {
		if b.Status == model.StatusScheduled && !b.EndTime.After(now) {
			b.Status = model.StatusCompleted
			n++
		}
	}
	return n, nil
}

// =====================================================
// FAKE PAYMENT REPOSITORY
// =====================================================

type fakePaymentRepo struct {
	byBooking map[uuid.UUID]*paymentModel.Payment
	upserts   []*paymentModel.Payment
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{byBooking: make(map[uuid.UUID]*paymentModel.Payment)}
}

func (f *fakePaymentRepo) UpsertWithTx(ctx context.Context, tx pgx.Tx, payment *paymentModel.Payment) error {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	f.byBooking[payment.BookingID] = payment
	f.upserts = append(f.upserts, payment)
	return nil
}

func (f *fakePaymentRepo) GetByBookingIDWithTx(ctx context.Context, tx pgx.Tx, bookingID uuid.UUID) (*paymentModel.Payment, error) {
	p, ok := f.byBooking[bookingID]
	if !ok {
		return nil, paymentModel.ErrPaymentNotFound
	}
	return p, nil
}

func (f *fakePaymentRepo) DeleteByBookingIDWithTx(ctx context.Context, tx pgx.Tx, bookingID uuid.UUID) error {
	delete(f.byBooking, bookingID)
	return nil
}

// =====================================================
// FAKE USER REPOSITORY
// =====================================================

type fakeUserRepo struct {
	users map[uuid.UUID]*userModel.User
}

func newFakeUserRepo(users ...*userModel.User) *fakeUserRepo {
	f := &fakeUserRepo{users: make(map[uuid.UUID]*userModel.User)}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*userModel.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, userModel.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*userModel.User, error) {
	out := make(map[uuid.UUID]*userModel.User)
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}
