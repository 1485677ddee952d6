package model

import (
	"time"

	"github.com/google/uuid"
)

// =====================================================
// RECURRENCE PATTERNS
// =====================================================
const (
	PatternWeekly   = "WEEKLY"
	PatternBiweekly = "BIWEEKLY"
	PatternMonthly  = "MONTHLY"
)

// Template statuses. Only ACTIVE templates take part in the
// template-overlap rule.
const (
	TemplateStatusActive   = "ACTIVE"
	TemplateStatusInactive = "INACTIVE"
)

// LessonSlotMinutes is the window every recurring slot reserves.
const LessonSlotMinutes = 60

// HorizonMonths bounds how far a template materializes children.
const HorizonMonths = 1

// ValidPattern reports whether p is a known recurrence pattern.
func ValidPattern(p string) bool {
	switch p {
	case PatternWeekly, PatternBiweekly, PatternMonthly:
		return true
	}
	return false
}

// NextInstance steps one occurrence forward according to the pattern.
// MONTHLY uses calendar-month addition.
func NextInstance(t time.Time, pattern string) time.Time {
	switch pattern {
	case PatternWeekly:
		return t.AddDate(0, 0, 7)
	case PatternBiweekly:
		return t.AddDate(0, 0, 14)
	default:
		return t.AddDate(0, 1, 0)
	}
}

// RecurringTemplate is the persisted weekday/time-of-day pattern. Its
// children are ordinary bookings pointing back via
// recurring_template_id.
type RecurringTemplate struct {
	ID                uuid.UUID           `json:"id"`
	HostID            uuid.UUID           `json:"host_id"`
	CreatedBy         uuid.UUID           `json:"created_by"`
	Title             string              `json:"title"`
	Description       *string             `json:"description,omitempty"`
	RecurrencePattern string              `json:"recurrence_pattern"`
	DurationMinutes   int                 `json:"duration_minutes"`
	Status            string              `json:"status"`
	TimeSlots         []RecurringTimeSlot `json:"time_slots,omitempty"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

// RecurringTimeSlot is one weekday/time-of-day cell of a template.
// TimeOfDay is stored as "HH:mm".
type RecurringTimeSlot struct {
	ID         uuid.UUID `json:"id"`
	TemplateID uuid.UUID `json:"template_id"`
	Weekday    string    `json:"weekday"`
	TimeOfDay  string    `json:"time_of_day"`
}
