package dto

import "github.com/yigit/uniportal/internal/app/models"

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken           string `json:"accessToken"`
	TokenType             string `json:"tokenType"`
	ExpiresIn             int64  `json:"expiresIn"`
	RefreshToken          string `json:"refreshToken,omitempty"`
	RefreshTokenExpiresIn int64  `json:"refreshTokenExpiresIn,omitempty"`
}

// RefreshTokenRequest represents refresh token request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// UserResponse represents basic user information
type UserResponse struct {
	ID              int64           `json:"id"`
	Email           string          `json:"email"`
	FullName        string          `json:"fullName"`
	UserType        models.UserType `json:"userType"`
	Role            models.RoleType `json:"role"`
	AdmissionNumber *string         `json:"admissionNumber,omitempty"`
	Department      *string         `json:"department,omitempty"`
}

// AuthResponse represents successful authentication response
type AuthResponse struct {
	Token TokenResponse `json:"token"`
	User  UserResponse  `json:"user"`
}

// CreateUserRequest is used by admins to create staff accounts
type CreateUserRequest struct {
	Email      string          `json:"email" binding:"required,email,max=255"`
	Password   string          `json:"password" binding:"required,password"`
	FullName   string          `json:"fullName" binding:"required,max=255"`
	Role       models.RoleType `json:"role" binding:"required"`
	Department *string         `json:"department" binding:"omitempty,max=128"`
}

// NewUserResponse converts a user model
func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:              u.ID,
		Email:           u.Email,
		FullName:        u.FullName,
		UserType:        u.UserType,
		Role:            u.Role,
		AdmissionNumber: u.AdmissionNumber,
		Department:      u.Department,
	}
}
