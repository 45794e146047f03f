package models

import "time"

// ResetType selects how a password reset secret is delivered
type ResetType string

const (
	ResetTypeOTP   ResetType = "OTP"
	ResetTypeToken ResetType = "TOKEN"
)

// PasswordReset is one OTP or reset-link record. SecretHash holds the SHA-256 of
// the code (OTP) or the link token (TOKEN); the plaintext is never stored.
// GrantUsedAt is set once the reset grant issued for a verified OTP is redeemed.
type PasswordReset struct {
	ID          int64      `db:"id"`
	UserID      int64      `db:"user_id"`
	UserType    UserType   `db:"user_type"`
	Email       string     `db:"email"`
	ResetType   ResetType  `db:"reset_type"`
	SecretHash  string     `db:"secret_hash"`
	Attempts    int        `db:"attempts"`
	ExpiresAt   time.Time  `db:"expires_at"`
	IsUsed      bool       `db:"is_used"`
	IsVerified  bool       `db:"is_verified"`
	VerifiedAt  *time.Time `db:"verified_at"`
	GrantUsedAt *time.Time `db:"grant_used_at"`
	CreatedAt   time.Time  `db:"created_at"`
}

// Live reports whether the record can still accept a verification attempt.
func (p *PasswordReset) Live(now time.Time, maxAttempts int) bool {
	return !p.IsUsed && p.Attempts < maxAttempts && now.Before(p.ExpiresAt)
}
