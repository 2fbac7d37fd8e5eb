package models

import (
	"time"

	"github.com/google/uuid"
)

// Role values assignable to a user.
const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

// User represents a registered account. Accounts stay inactive until the
// first verification challenge is consumed.
type User struct {
	BaseModel
	Email        string          `gorm:"uniqueIndex" json:"email"`
	DisplayName  string          `json:"display_name"`
	PasswordHash string          `json:"-"`
	Role         string          `gorm:"default:member" json:"role"`
	IsActive     bool            `json:"is_active"`
	Challenges   []AuthChallenge `json:"-"`
	Reservations []Reservation   `json:"reservations,omitempty"`
}

// AuthChallenge is a single issued OTP+token pair with an expiry. A user
// accumulates one row per registration or reissue; any live row can be
// consumed independently.
type AuthChallenge struct {
	BaseModel
	UserID     uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	OTP        string    `json:"-"`
	Token      string    `gorm:"index" json:"-"`
	IsVerified bool      `json:"is_verified"`
	IsUsed     bool      `json:"is_used"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Usable reports whether the challenge can still transition to consumed.
func (a *AuthChallenge) Usable(now time.Time) bool {
	return !a.IsUsed && !a.IsVerified && a.ExpiresAt.After(now)
}
