package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	bookingModel "github.com/edproton/xceltutors-next/internal/domains/booking/model"
)

// =====================================================
// CREATE RECURRING BOOKINGS REQUEST
// =====================================================

type TimeSlotInput struct {
	Weekday string `json:"weekday" binding:"required"`
	Time    string `json:"time" binding:"required"` // HH:mm
}

func (t TimeSlotInput) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.Weekday, validation.Required, validation.By(validWeekday)),
		validation.Field(&t.Time, validation.Required, validation.By(validTimeOfDay)),
	)
}

// OverrideInput resolves one reported conflict: either drop that
// occurrence or move it to another time of day on the same date.
type OverrideInput struct {
	ConflictTime string  `json:"conflictTime" binding:"required"`
	NewTimeOfDay *string `json:"newTimeOfDay,omitempty"`
	Cancel       bool    `json:"cancel,omitempty"`
}

func (o OverrideInput) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.ConflictTime, validation.Required),
	)
}

type CreateRecurringRequest struct {
	Title             string          `json:"title" binding:"required"`
	Description       *string         `json:"description,omitempty"`
	HostID            uuid.UUID       `json:"hostId" binding:"required"`
	RecurrencePattern string          `json:"recurrencePattern" binding:"required"`
	TimeSlots         []TimeSlotInput `json:"timeSlots" binding:"required"`
	Overrides         []OverrideInput `json:"overrides,omitempty"`
}

// Validate covers the declarative shape; grid position, midnight
// crossing and intra-request overlaps carry dedicated error codes and
// are checked in the service.
func (req CreateRecurringRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&req.HostID, validation.Required, validation.By(notNilUUID)),
		validation.Field(&req.RecurrencePattern, validation.Required, validation.In(PatternWeekly, PatternBiweekly, PatternMonthly)),
		validation.Field(&req.TimeSlots, validation.Required, validation.Length(1, 0)),
	)
}

// =====================================================
// RESPONSES
// =====================================================

// TimeSlotConflict reports one occurrence that could not be placed,
// with the free ±1h/±2h alternatives formatted HH:mm.
type TimeSlotConflict struct {
	ConflictTime     string   `json:"conflictTime"`
	AlternativeTimes []string `json:"alternativeTimes"`
}

// CreateRecurringResponse carries either the created template id or the
// conflict list; never both.
type CreateRecurringResponse struct {
	RecurringTemplateID *uuid.UUID         `json:"recurringTemplateId,omitempty"`
	Conflicts           []TimeSlotConflict `json:"conflicts,omitempty"`
}

// =====================================================
// VALIDATION HELPERS
// =====================================================

func validWeekday(value interface{}) error {
	s, _ := value.(string)
	if _, err := bookingModel.ParseWeekday(s); err != nil {
		return validation.NewError("validation_weekday", "must be a weekday name (MONDAY..SUNDAY)")
	}
	return nil
}

func validTimeOfDay(value interface{}) error {
	s, _ := value.(string)
	if _, err := bookingModel.ParseTimeOfDay(s); err != nil {
		return validation.NewError("validation_time_of_day", "must be HH:mm")
	}
	return nil
}

func notNilUUID(value interface{}) error {
	id, _ := value.(uuid.UUID)
	if id == uuid.Nil {
		return validation.NewError("validation_required", "cannot be blank")
	}
	return nil
}
