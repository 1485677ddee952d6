package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/edproton/xceltutors-next/internal/domains/booking/model"
	paymentModel "github.com/edproton/xceltutors-next/internal/domains/payment/model"
	"github.com/edproton/xceltutors-next/internal/shared/utils"
)

// =====================================================
// POSTGRES REPOSITORY IMPLEMENTATION
// =====================================================
type postgresBookingRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresBookingRepository(pool *pgxpool.Pool) BookingRepository {
	return &postgresBookingRepository{
		pool: pool,
	}
}

// bookingColumns is the shared projection: the booking row, its
// participant ids, and the left-joined payment.
const bookingColumns = `
	b.id, b.title, b.description, b.type, b.status, b.host_id,
	b.start_time, b.end_time, b.service_id,
	b.price_amount, b.price_currency, b.recurring_template_id,
	b.created_at, b.updated_at,
	ARRAY(SELECT bp.user_id FROM booking_participants bp WHERE bp.booking_id = b.id) AS participants,
	p.id, p.session_id, p.session_url, p.payment_intent_id, p.charge_id,
	p.metadata, p.created_at, p.updated_at
`

type bookingRow interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row bookingRow) (*model.Booking, error) {
	var b model.Booking
	var paymentID *uuid.UUID
	var sessionID, sessionURL, paymentIntentID, chargeID *string
	var metadata map[string]string
	var paymentCreatedAt, paymentUpdatedAt *time.Time

	err := row.Scan(
		&b.ID,
		&b.Title,
		&b.Description,
		&b.Type,
		&b.Status,
		&b.HostID,
		&b.StartTime,
		&b.EndTime,
		&b.ServiceID,
		&b.PriceAmount,
		&b.PriceCurrency,
		&b.RecurringTemplateID,
		&b.CreatedAt,
		&b.UpdatedAt,
		&b.Participants,
		&paymentID,
		&sessionID,
		&sessionURL,
		&paymentIntentID,
		&chargeID,
		&metadata,
		&paymentCreatedAt,
		&paymentUpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if paymentID != nil {
		b.Payment = &paymentModel.Payment{
			ID:              *paymentID,
			BookingID:       b.ID,
			SessionID:       sessionID,
			SessionURL:      sessionURL,
			PaymentIntentID: paymentIntentID,
			ChargeID:        chargeID,
			Metadata:        metadata,
			CreatedAt:       *paymentCreatedAt,
			UpdatedAt:       *paymentUpdatedAt,
		}
	}

	return &b, nil
}

// =====================================================
// READS
// =====================================================

func (r *postgresBookingRepository) GetByIDWithTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Booking, error) {
	// FOR UPDATE OF b: lock the booking row only, the payment side of
	// the outer join is nullable and cannot be locked.
	query := fmt.Sprintf(`
		SELECT %s
		FROM bookings b
		LEFT JOIN payments p ON p.booking_id = b.id
		WHERE b.id = $1
		FOR UPDATE OF b
	`, bookingColumns)

	booking, err := scanBooking(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking by id: %w", err)
	}

	return booking, nil
}

func (r *postgresBookingRepository) GetDetail(ctx context.Context, id uuid.UUID) (*model.BookingDetail, error) {
	query := fmt.Sprintf(`
		SELECT %s, h.name, h.image
		FROM bookings b
		LEFT JOIN payments p ON p.booking_id = b.id
		JOIN users h ON h.id = b.host_id
		WHERE b.id = $1
	`, bookingColumns)

	row := r.pool.QueryRow(ctx, query, id)

	var detail model.BookingDetail
	var paymentID *uuid.UUID
	var sessionID, sessionURL, paymentIntentID, chargeID *string
	var metadata map[string]string
	var paymentCreatedAt, paymentUpdatedAt *time.Time
	var hostName string
	var hostImage *string

	err := row.Scan(
		&detail.ID,
		&detail.Title,
		&detail.Description,
		&detail.Type,
		&detail.Status,
		&detail.HostID,
		&detail.StartTime,
		&detail.EndTime,
		&detail.ServiceID,
		&detail.PriceAmount,
		&detail.PriceCurrency,
		&detail.RecurringTemplateID,
		&detail.CreatedAt,
		&detail.UpdatedAt,
		&detail.Participants,
		&paymentID,
		&sessionID,
		&sessionURL,
		&paymentIntentID,
		&chargeID,
		&metadata,
		&paymentCreatedAt,
		&paymentUpdatedAt,
		&hostName,
		&hostImage,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking detail: %w", err)
	}

	if paymentID != nil {
		detail.Payment = &paymentModel.Payment{
			ID:              *paymentID,
			BookingID:       detail.ID,
			SessionID:       sessionID,
			SessionURL:      sessionURL,
			PaymentIntentID: paymentIntentID,
			ChargeID:        chargeID,
			Metadata:        metadata,
			CreatedAt:       *paymentCreatedAt,
			UpdatedAt:       *paymentUpdatedAt,
		}
	}
	detail.Host = model.UserSummary{ID: detail.HostID, Name: hostName, Image: hostImage}

	// Participant details in a second round trip; the detail endpoint
	// is not on a hot path.
	participantQuery := `
		SELECT u.id, u.name, u.image
		FROM booking_participants bp
		JOIN users u ON u.id = bp.user_id
		WHERE bp.booking_id = $1
		ORDER BY u.name ASC
	`
	rows, err := r.pool.Query(ctx, participantQuery, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking participants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var u model.UserSummary
		if err := rows.Scan(&u.ID, &u.Name, &u.Image); err != nil {
			return nil, fmt.Errorf("failed to scan booking participant: %w", err)
		}
		detail.ParticipantDetails = append(detail.ParticipantDetails, u)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating booking participants: %w", rows.Err())
	}

	return &detail, nil
}

// =====================================================
// LIST BOOKINGS
// =====================================================

var sortColumns = map[string]string{
	model.SortFieldStartTime: "b.start_time",
	model.SortFieldCreatedAt: "b.created_at",
}

func (r *postgresBookingRepository) List(ctx context.Context, userID uuid.UUID, req model.ListBookingsRequest) ([]model.Booking, int64, error) {
	// The actor sees bookings they host or attend.
	where := []string{
		`(b.host_id = $1 OR EXISTS (
			SELECT 1 FROM booking_participants bp
			WHERE bp.booking_id = b.id AND bp.user_id = $1
		))`,
	}
	args := []interface{}{userID}
	argIdx := 2

	if len(req.Status) > 0 {
		where = append(where, fmt.Sprintf("b.status = ANY($%d)", argIdx))
		args = append(args, req.Status)
		argIdx++
	}

	if req.Type != "" {
		where = append(where, fmt.Sprintf("b.type = $%d", argIdx))
		args = append(args, req.Type)
		argIdx++
	}

	startDate, endDate := req.DateRange()
	if !startDate.IsZero() {
		where = append(where, fmt.Sprintf("b.start_time >= $%d", argIdx))
		args = append(args, startDate)
		argIdx++
	}
	if !endDate.IsZero() {
		where = append(where, fmt.Sprintf("b.start_time <= $%d", argIdx))
		args = append(args, endDate)
		argIdx++
	}

	if req.Search != "" {
		where = append(where, fmt.Sprintf("(b.title ILIKE $%d OR b.description ILIKE $%d)", argIdx, argIdx))
		args = append(args, "%"+req.Search+"%")
		argIdx++
	}

	whereSQL := utils.JoinWithAnd(where)

	var total int64
	countQuery := `SELECT COUNT(*) FROM bookings b WHERE ` + whereSQL
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	direction := "DESC"
	if req.SortDirection == model.SortDirectionAsc {
		direction = "ASC"
	}
	primary := sortColumns[req.SortField]
	if primary == "" {
		primary = sortColumns[model.SortFieldStartTime]
	}
	// Created time (then id) breaks ties deterministically.
	orderBy := fmt.Sprintf("%s %s, b.created_at %s, b.id %s", primary, direction, direction, direction)
	if primary == "b.created_at" {
		orderBy = fmt.Sprintf("b.created_at %s, b.id %s", direction, direction)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM bookings b
		LEFT JOIN payments p ON p.booking_id = b.id
		WHERE %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d
	`, bookingColumns, whereSQL, orderBy, argIdx, argIdx+1)
	args = append(args, req.Limit, (req.Page-1)*req.Limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []model.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, *booking)
	}
	if rows.Err() != nil {
		return nil, 0, fmt.Errorf("error iterating bookings: %w", rows.Err())
	}

	return bookings, total, nil
}

// =====================================================
// WRITES
// =====================================================

func (r *postgresBookingRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, booking *model.Booking) error {
	query := `
		INSERT INTO bookings (
			id, title, description, type, status, host_id,
			start_time, end_time, service_id,
			price_amount, price_currency, recurring_template_id
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9,
			$10, $11, $12
		)
		RETURNING created_at, updated_at
	`

	err := tx.QueryRow(ctx, query,
		booking.ID,
		booking.Title,
		booking.Description,
		booking.Type,
		booking.Status,
		booking.HostID,
		booking.StartTime,
		booking.EndTime,
		booking.ServiceID,
		booking.PriceAmount,
		booking.PriceCurrency,
		booking.RecurringTemplateID,
	).Scan(&booking.CreatedAt, &booking.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	return r.insertParticipants(ctx, tx, booking)
}

func (r *postgresBookingRepository) CreateManyWithTx(ctx context.Context, tx pgx.Tx, bookings []*model.Booking) error {
	batch := &pgx.Batch{}
	bookingQuery := `
		INSERT INTO bookings (
			id, title, description, type, status, host_id,
			start_time, end_time, service_id,
			price_amount, price_currency, recurring_template_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	participantQuery := `
		INSERT INTO booking_participants (booking_id, user_id) VALUES ($1, $2)
	`

	queued := 0
	for _, b := range bookings {
		batch.Queue(bookingQuery,
			b.ID, b.Title, b.Description, b.Type, b.Status, b.HostID,
			b.StartTime, b.EndTime, b.ServiceID,
			b.PriceAmount, b.PriceCurrency, b.RecurringTemplateID,
		)
		queued++
		for _, p := range b.Participants {
			batch.Queue(participantQuery, b.ID, p)
			queued++
		}
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < queued; i++ {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to create booking batch item %d: %w", i, err)
		}
	}

	return nil
}

func (r *postgresBookingRepository) insertParticipants(ctx context.Context, tx pgx.Tx, booking *model.Booking) error {
	for _, participant := range booking.Participants {
		_, err := tx.Exec(ctx,
			`INSERT INTO booking_participants (booking_id, user_id) VALUES ($1, $2)`,
			booking.ID, participant,
		)
		if err != nil {
			return fmt.Errorf("failed to create booking participant: %w", err)
		}
	}
	return nil
}

func (r *postgresBookingRepository) UpdateStatusWithTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, fromStatus, toStatus string) error {
	query := `
		UPDATE bookings
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`

	result, err := tx.Exec(ctx, query, toStatus, id, fromStatus)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}

	if result.RowsAffected() == 0 {
		// Row left fromStatus between the read and the write.
		return model.ErrInvalidStatus
	}

	return nil
}

func (r *postgresBookingRepository) UpdateScheduleWithTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, start, end time.Time, toStatus string) error {
	query := `
		UPDATE bookings
		SET start_time = $1, end_time = $2, status = $3, updated_at = NOW()
		WHERE id = $4
	`

	result, err := tx.Exec(ctx, query, start, end, toStatus, id)
	if err != nil {
		return fmt.Errorf("failed to update booking schedule: %w", err)
	}

	if result.RowsAffected() == 0 {
		return model.ErrBookingNotFound
	}

	return nil
}

// =====================================================
// CREATE-COMMAND PAIR QUERY
// =====================================================

func (r *postgresBookingRepository) FindBetweenUsersWithTx(ctx context.Context, tx pgx.Tx, tutorID, studentID uuid.UUID, start, end time.Time) ([]model.Booking, error) {
	// One round trip for every rule the create command checks: active
	// bookings (free-meeting uniqueness), COMPLETED/SCHEDULED history
	// (lesson eligibility), and overlap candidates.
	query := fmt.Sprintf(`
		SELECT %s
		FROM bookings b
		LEFT JOIN payments p ON p.booking_id = b.id
		WHERE b.host_id = $1
		  AND EXISTS (
			SELECT 1 FROM booking_participants bp
			WHERE bp.booking_id = b.id AND bp.user_id = $2
		  )
		  AND (
			b.status = ANY($3)
			OR b.status IN ('%s', '%s')
			OR (b.start_time < $5 AND b.end_time > $4)
		  )
	`, bookingColumns, model.StatusCompleted, model.StatusScheduled)

	rows, err := tx.Query(ctx, query, tutorID, studentID, model.ActiveStatuses, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings between users: %w", err)
	}
	defer rows.Close()

	var bookings []model.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, *booking)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating bookings: %w", rows.Err())
	}

	return bookings, nil
}

// =====================================================
// CONFLICT DETECTOR
// =====================================================

func (r *postgresBookingRepository) FindConflictsWithTx(ctx context.Context, tx pgx.Tx, hostID uuid.UUID, participantID *uuid.UUID, excludeID *uuid.UUID, intervals []model.Interval) ([]model.Booking, error) {
	if len(intervals) == 0 {
		return nil, nil
	}

	where := []string{}
	args := []interface{}{hostID}
	argIdx := 2

	owner := "b.host_id = $1"
	if participantID != nil {
		owner = fmt.Sprintf(`(b.host_id = $1 OR EXISTS (
			SELECT 1 FROM booking_participants bp
			WHERE bp.booking_id = b.id AND bp.user_id = $%d
		))`, argIdx)
		args = append(args, *participantID)
		argIdx++
	}
	where = append(where, owner)

	where = append(where, fmt.Sprintf("b.status = ANY($%d)", argIdx))
	args = append(args, model.ActiveStatuses)
	argIdx++

	if excludeID != nil {
		where = append(where, fmt.Sprintf("b.id <> $%d", argIdx))
		args = append(args, *excludeID)
		argIdx++
	}

	// OR-of-intervals: the whole candidate list goes down in a single
	// query so the detector stays one round trip per call.
	overlapClauses := make([]string, 0, len(intervals))
	for _, interval := range intervals {
		overlapClauses = append(overlapClauses,
			fmt.Sprintf("(b.start_time < $%d AND b.end_time > $%d)", argIdx+1, argIdx))
		args = append(args, interval.Start, interval.End)
		argIdx += 2
	}
	where = append(where, "("+utils.JoinWithOr(overlapClauses)+")")

	query := fmt.Sprintf(`
		SELECT %s
		FROM bookings b
		LEFT JOIN payments p ON p.booking_id = b.id
		WHERE %s
		ORDER BY b.start_time ASC
	`, bookingColumns, utils.JoinWithAnd(where))

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find conflicting bookings: %w", err)
	}
	defer rows.Close()

	var bookings []model.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, *booking)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating bookings: %w", rows.Err())
	}

	return bookings, nil
}

// =====================================================
// COMPLETION SWEEP
// =====================================================

func (r *postgresBookingRepository) CompleteElapsed(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE bookings
		SET status = $1, updated_at = NOW()
		WHERE status = $2 AND end_time <= $3
	`

	result, err := r.pool.Exec(ctx, query, model.StatusCompleted, model.StatusScheduled, now)
	if err != nil {
		return 0, fmt.Errorf("failed to complete elapsed bookings: %w", err)
	}

	return result.RowsAffected(), nil
}
