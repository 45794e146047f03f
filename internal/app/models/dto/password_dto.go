package dto

import (
	"time"

	"github.com/yigit/uniportal/internal/app/models"
)

// ForgotPasswordRequest starts password recovery
type ForgotPasswordRequest struct {
	Email     string           `json:"email" binding:"required,email"`
	UserType  models.UserType  `json:"userType" binding:"required,oneof=STUDENT STAFF ADMIN"`
	ResetType models.ResetType `json:"resetType" binding:"omitempty,oneof=OTP TOKEN"`
}

// OTPRequestResponse is returned for every forgot-password call. OTPID and ExpiresAt
// are empty when no account matched, which is indistinguishable to the caller
// from a delivery that has not happened yet.
type OTPRequestResponse struct {
	OTPID     *int64     `json:"otpId,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	Delivered bool       `json:"delivered"`
	Hint      string     `json:"hint,omitempty"`
}

// VerifyOTPRequest submits a one-time code
type VerifyOTPRequest struct {
	Email    string          `json:"email" binding:"required,email"`
	UserType models.UserType `json:"userType" binding:"required,oneof=STUDENT STAFF ADMIN"`
	Code     string          `json:"code" binding:"required,numeric,min=4,max=10"`
}

// VerifyOTPResponse carries the short-lived grant used to set a new password
type VerifyOTPResponse struct {
	Verified   bool      `json:"verified"`
	ResetGrant string    `json:"resetGrant"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

// ResetPasswordRequest sets a new password using either a reset grant from OTP
// verification or a link token from a TOKEN-type request
type ResetPasswordRequest struct {
	ResetGrant  string `json:"resetGrant" binding:"required_without=Token"`
	Token       string `json:"token" binding:"required_without=ResetGrant"`
	NewPassword string `json:"newPassword" binding:"required,password"`
}
