package models

import (
	"time"
)

// User defines the account model based on the 'users' table
type User struct {
	ID              int64      `json:"id" db:"id"`
	Email           string     `json:"email" db:"email"`
	Password        string     `json:"-" db:"password"`
	FullName        string     `json:"fullName" db:"full_name"`
	UserType        UserType   `json:"userType" db:"user_type"`
	Role            RoleType   `json:"role" db:"role"`
	AdmissionNumber *string    `json:"admissionNumber,omitempty" db:"admission_number"`
	Department      *string    `json:"department,omitempty" db:"department"`
	IsActive        bool       `json:"isActive" db:"is_active"`
	LastLoginAt     *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`
	CreatedAt       time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time  `json:"updatedAt" db:"updated_at"`
}

// RefreshToken is a stored opaque refresh token
type RefreshToken struct {
	Token      string    `db:"token"`
	UserID     int64     `db:"user_id"`
	ExpiryDate time.Time `db:"expiry_date"`
	IsRevoked  bool      `db:"is_revoked"`
	CreatedAt  time.Time `db:"created_at"`
}
