package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =====================================================
// ROLES
// =====================================================
const (
	RoleTutor     = "TUTOR"
	RoleStudent   = "STUDENT"
	RoleAdmin     = "ADMIN"
	RoleModerator = "MODERATOR"
)

var ErrUserNotFound = errors.New("user not found")

// User is the account projection the booking engine needs: identity,
// roles for pairing rules, and the tutor's hourly rate for price
// snapshots. Account management itself lives in another service.
type User struct {
	ID         uuid.UUID       `json:"id"`
	Name       string          `json:"name"`
	Email      string          `json:"email"`
	Image      *string         `json:"image,omitempty"`
	Roles      []string        `json:"roles"`
	HourlyRate decimal.Decimal `json:"hourly_rate"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (u *User) IsTutor() bool {
	return u.HasRole(RoleTutor)
}

func (u *User) IsStudent() bool {
	return u.HasRole(RoleStudent)
}
