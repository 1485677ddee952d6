package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// =====================================================
// CREATE BOOKING REQUEST
// =====================================================
type CreateBookingRequest struct {
	StartTime string    `json:"startTime" binding:"required"`
	ToUserID  uuid.UUID `json:"toUserId" binding:"required"`
}

// Validate validates CreateBookingRequest. Temporal rules (past, advance
// limit) live in the service where the clock is available.
func (req CreateBookingRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.StartTime, validation.Required),
		validation.Field(&req.ToUserID, validation.Required, validation.By(notNilUUID)),
	)
}

type CreateBookingResponse struct {
	ID uuid.UUID `json:"id"`
}

// =====================================================
// RESCHEDULE BOOKING REQUEST
// =====================================================
type RescheduleBookingRequest struct {
	StartTime string `json:"startTime" binding:"required"`
}

func (req RescheduleBookingRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.StartTime, validation.Required),
	)
}

// =====================================================
// LIST BOOKINGS REQUEST
// =====================================================

// Sort fields accepted by GET /bookings.
const (
	SortFieldStartTime = "START_TIME"
	SortFieldCreatedAt = "CREATED_AT"

	SortDirectionAsc  = "asc"
	SortDirectionDesc = "desc"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

type ListBookingsRequest struct {
	Page          int      `form:"page"`
	Limit         int      `form:"limit"`
	Status        []string `form:"status"`
	Type          string   `form:"type"`
	StartDate     string   `form:"startDate"`
	EndDate       string   `form:"endDate"`
	Search        string   `form:"search"`
	SortField     string   `form:"sortField"`
	SortDirection string   `form:"sortDirection"`
}

// ApplyDefaults fills the documented defaults: page 1, limit 10, sorted
// by start time descending with created time as tiebreaker.
func (req *ListBookingsRequest) ApplyDefaults() {
	if req.Page <= 0 {
		req.Page = DefaultPage
	}
	if req.Limit <= 0 {
		req.Limit = DefaultLimit
	}
	if req.SortField == "" {
		req.SortField = SortFieldStartTime
	}
	if req.SortDirection == "" {
		req.SortDirection = SortDirectionDesc
	}
}

// Validate checks the declarative per-field schema plus the cross-field
// refinements (date ordering, sort pairing).
func (req ListBookingsRequest) Validate() error {
	err := validation.ValidateStruct(&req,
		validation.Field(&req.Page, validation.Min(1)),
		validation.Field(&req.Limit, validation.Min(1), validation.Max(MaxLimit)),
		validation.Field(&req.Status, validation.Each(validation.In(
			StatusAwaitingTutorConfirmation,
			StatusAwaitingStudentConfirmation,
			StatusAwaitingPayment,
			StatusPaymentFailed,
			StatusScheduled,
			StatusCanceled,
			StatusCompleted,
			StatusAwaitingRefund,
			StatusRefundFailed,
			StatusRefunded,
		))),
		validation.Field(&req.Type, validation.In(TypeFreeMeeting, TypeLesson)),
		validation.Field(&req.SortField, validation.In(SortFieldStartTime, SortFieldCreatedAt)),
		validation.Field(&req.SortDirection, validation.In(SortDirectionAsc, SortDirectionDesc)),
	)
	if err != nil {
		return err
	}

	// Cross-field: startDate <= endDate when both are present.
	var start, end time.Time
	if req.StartDate != "" {
		if start, err = ParseInstant(req.StartDate); err != nil {
			return validation.Errors{"startDate": err}
		}
	}
	if req.EndDate != "" {
		if end, err = ParseInstant(req.EndDate); err != nil {
			return validation.Errors{"endDate": err}
		}
	}
	if req.StartDate != "" && req.EndDate != "" && end.Before(start) {
		return validation.Errors{"endDate": validation.NewError("validation_date_range", "endDate must not be before startDate")}
	}

	// Cross-field: a sort direction without a sort field is ambiguous.
	if req.SortDirection != "" && req.SortField == "" {
		return validation.Errors{"sortDirection": validation.NewError("validation_sort_pairing", "sortDirection requires sortField")}
	}

	return nil
}

// DateRange resolves the parsed filter bounds; zero times mean unset.
func (req ListBookingsRequest) DateRange() (start, end time.Time) {
	if req.StartDate != "" {
		start, _ = ParseInstant(req.StartDate)
	}
	if req.EndDate != "" {
		end, _ = ParseInstant(req.EndDate)
	}
	return start, end
}

// =====================================================
// RESPONSES
// =====================================================

// BookingResponse is the list-item projection.
type BookingResponse struct {
	ID                  uuid.UUID  `json:"id"`
	Title               string     `json:"title"`
	Description         *string    `json:"description,omitempty"`
	Type                string     `json:"type"`
	Status              string     `json:"status"`
	HostID              uuid.UUID  `json:"hostId"`
	StartTime           string     `json:"startTime"`
	EndTime             string     `json:"endTime"`
	RecurringTemplateID *uuid.UUID `json:"recurringTemplateId,omitempty"`
	CreatedAt           string     `json:"createdAt"`
}

// NewBookingResponse maps an entity onto the wire shape, rendering
// instants in the millisecond wire layout.
func NewBookingResponse(b *Booking) BookingResponse {
	return BookingResponse{
		ID:                  b.ID,
		Title:               b.Title,
		Description:         b.Description,
		Type:                b.Type,
		Status:              b.Status,
		HostID:              b.HostID,
		StartTime:           FormatInstant(b.StartTime),
		EndTime:             FormatInstant(b.EndTime),
		RecurringTemplateID: b.RecurringTemplateID,
		CreatedAt:           FormatInstant(b.CreatedAt),
	}
}

// =====================================================
// VALIDATION HELPERS
// =====================================================

func notNilUUID(value interface{}) error {
	id, _ := value.(uuid.UUID)
	if id == uuid.Nil {
		return validation.NewError("validation_required", "cannot be blank")
	}
	return nil
}
