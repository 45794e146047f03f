package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	appAuth "github.com/yigit/uniportal/internal/app/auth"
	"github.com/yigit/uniportal/internal/app/models"
	"github.com/yigit/uniportal/internal/app/models/dto"
	"github.com/yigit/uniportal/internal/pkg/apperrors"
	pkgAuth "github.com/yigit/uniportal/internal/pkg/auth"
	"github.com/yigit/uniportal/internal/pkg/validation"
)

// AccountMailer sends account notices. *email.Mailer satisfies it.
type AccountMailer interface {
	SendPasswordChanged(ctx context.Context, to, toName string) error
}

// AuthService handles login, token rotation, account creation and password recovery
type AuthService struct {
	users         UserStore
	tokens        TokenStore
	jwtService    *pkgAuth.JWTService
	otp           *OTPService
	notifications *NotificationService
	audit         *AuditService
	mailer        AccountMailer
	logger        zerolog.Logger
	now           func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(
	users UserStore,
	tokens TokenStore,
	jwtService *pkgAuth.JWTService,
	otp *OTPService,
	notifications *NotificationService,
	audit *AuditService,
	mailer AccountMailer,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:         users,
		tokens:        tokens,
		jwtService:    jwtService,
		otp:           otp,
		notifications: notifications,
		audit:         audit,
		mailer:        mailer,
		logger:        logger,
		now:           time.Now,
	}
}

// Login authenticates with email and password
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !pkgAuth.CheckPassword(user.Password, req.Password) {
		s.logger.Info().Int64("userID", user.ID).Msg("Login failed: wrong password")
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	resp, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID, s.now()); err != nil {
		s.logger.Warn().Err(err).Int64("userID", user.ID).Msg("Failed to update last login")
	}
	s.logger.Info().Int64("userID", user.ID).Str("role", string(user.Role)).Msg("User logged in")
	return resp, nil
}

// Refresh rotates a refresh token: the old one is revoked and a new pair issued
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*dto.AuthResponse, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, apperrors.ErrTokenInvalid
	}

	userID, err := s.tokens.GetUserID(ctx, refreshToken, s.now())
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	if err := s.tokens.RevokeToken(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("failed to revoke old token: %w", err)
	}
	return s.issueTokens(ctx, user)
}

// Logout revokes a refresh token
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if strings.TrimSpace(refreshToken) == "" {
		return apperrors.ErrTokenInvalid
	}
	return s.tokens.RevokeToken(ctx, refreshToken)
}

// Me returns the account of the authenticated user
func (s *AuthService) Me(ctx context.Context, userID int64) (*dto.UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := dto.NewUserResponse(user)
	return &resp, nil
}

// CreateUser creates a staff or admin account. Student accounts are created
// together with the student record.
func (s *AuthService) CreateUser(ctx context.Context, actor appAuth.Principal, req *dto.CreateUserRequest) (*models.User, error) {
	if !req.Role.Valid() {
		return nil, apperrors.NewValidationError("role", "unknown role")
	}
	if req.Role == models.RoleStudent {
		return nil, apperrors.NewValidationError("role", "student accounts are created with the student record")
	}

	if !validation.IsStrongPassword(req.Password) {
		return nil, apperrors.ErrInvalidPassword
	}

	hash, err := pkgAuth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:      req.Email,
		Password:   hash,
		FullName:   strings.TrimSpace(req.FullName),
		UserType:   req.Role.UserType(),
		Role:       req.Role,
		Department: req.Department,
		IsActive:   true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actor, ActionUserCreated, "user", strconv.FormatInt(user.ID, 10), map[string]any{
		"email": user.Email,
		"role":  string(user.Role),
	})
	return user, nil
}

// ForgotPassword starts password recovery. An unknown, mismatched or disabled
// account gets the same accepted response with no record id.
func (s *AuthService) ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) (*dto.OTPRequestResponse, error) {
	user, err := s.lookupForReset(ctx, req.Email, req.UserType)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			s.logger.Info().Str("userType", string(req.UserType)).Msg("Password reset requested for unknown account")
			return &dto.OTPRequestResponse{}, nil
		}
		return nil, err
	}

	res, err := s.otp.Issue(ctx, IssueRequest{
		UserID:    user.ID,
		UserType:  user.UserType,
		Email:     user.Email,
		Name:      user.FullName,
		ResetType: req.ResetType,
	})
	if err != nil {
		return nil, err
	}

	resp := &dto.OTPRequestResponse{
		OTPID:     &res.ID,
		ExpiresAt: &res.ExpiresAt,
		Delivered: res.Delivered,
	}
	if !res.Delivered {
		resp.Hint = apperrors.HintRequestNewCode
	}
	return resp, nil
}

// VerifyOTP checks a code and returns a short-lived reset grant
func (s *AuthService) VerifyOTP(ctx context.Context, req *dto.VerifyOTPRequest) (*dto.VerifyOTPResponse, error) {
	user, err := s.lookupForReset(ctx, req.Email, req.UserType)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, invalidCode()
		}
		return nil, err
	}

	resetID, err := s.otp.Verify(ctx, VerifyRequest{UserID: user.ID, UserType: user.UserType, Code: req.Code})
	if err != nil {
		return nil, err
	}

	grant, expiresAt, err := s.jwtService.GenerateResetGrant(resetID, user.ID, user.UserType, user.Email)
	if err != nil {
		return nil, err
	}
	return &dto.VerifyOTPResponse{Verified: true, ResetGrant: grant, ExpiresAt: expiresAt}, nil
}

// ResetPassword sets a new password using a reset grant or a reset-link token,
// then revokes every refresh token of the account
func (s *AuthService) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error {
	if !validation.IsStrongPassword(req.NewPassword) {
		return apperrors.ErrInvalidPassword
	}

	var userID, grantResetID int64
	switch {
	case req.ResetGrant != "":
		claims, err := s.jwtService.ValidateToken(req.ResetGrant, pkgAuth.PurposePasswordReset)
		if err != nil {
			return invalidCode()
		}
		userID, grantResetID = claims.UserID, claims.ResetID
	case req.Token != "":
		rec, err := s.otp.VerifyToken(ctx, req.Token)
		if err != nil {
			return err
		}
		userID = rec.UserID
	default:
		return apperrors.NewValidationError("resetGrant", "a reset grant or token is required")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return invalidCode()
		}
		return err
	}
	if !user.IsActive {
		return apperrors.ErrAccountDisabled
	}
	if req.ResetGrant != "" {
		if err := s.otp.RedeemGrant(ctx, grantResetID, user.ID); err != nil {
			return err
		}
	}

	if err := s.setPassword(ctx, user, req.NewPassword, ActionPasswordReset); err != nil {
		return err
	}
	s.logger.Info().Int64("userID", user.ID).Msg("Password reset completed")
	return nil
}

// ChangePassword replaces the caller's password after checking the current one.
// Every refresh token of the user is revoked.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, req *dto.ChangePasswordRequest) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.IsActive {
		return apperrors.ErrAccountDisabled
	}
	if !pkgAuth.CheckPassword(user.Password, req.CurrentPassword) {
		return apperrors.NewCustomError(apperrors.ErrInvalidPassword, "current password is incorrect")
	}
	if !validation.IsStrongPassword(req.NewPassword) {
		return apperrors.ErrInvalidPassword
	}
	if req.CurrentPassword == req.NewPassword {
		return apperrors.NewValidationError("newPassword", "new password must differ from the current one")
	}

	if err := s.setPassword(ctx, user, req.NewPassword, ActionPasswordChanged); err != nil {
		return err
	}
	s.logger.Info().Int64("userID", user.ID).Msg("Password changed")
	return nil
}

func (s *AuthService) setPassword(ctx context.Context, user *models.User, password, action string) error {
	hash, err := pkgAuth.HashPassword(password)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}
	if err := s.tokens.RevokeAllUserTokens(ctx, user.ID); err != nil {
		s.logger.Error().Err(err).Int64("userID", user.ID).Msg("Failed to revoke tokens after password change")
	}

	principal := appAuth.Principal{UserID: user.ID, Email: user.Email, UserType: user.UserType, Role: user.Role}
	s.audit.Record(ctx, principal, action, "user", strconv.FormatInt(user.ID, 10), nil)
	s.notifications.Notify(ctx, NotificationInput{
		Recipient: principal.Recipient(),
		Title:     "Password changed",
		Message:   "Your password was changed. If this was not you, contact the registrar immediately.",
		Category:  models.CategoryAccount,
	})
	if err := s.mailer.SendPasswordChanged(ctx, user.Email, user.FullName); err != nil {
		s.logger.Warn().Err(err).Int64("userID", user.ID).Msg("Failed to send password changed email")
	}
	return nil
}

func (s *AuthService) lookupForReset(ctx context.Context, email string, userType models.UserType) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user.UserType != userType || !user.IsActive {
		return nil, apperrors.ErrUserNotFound
	}
	return user, nil
}

func (s *AuthService) issueTokens(ctx context.Context, user *models.User) (*dto.AuthResponse, error) {
	pair, err := s.jwtService.GenerateTokenPair(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	if err := s.tokens.CreateToken(ctx, pair.RefreshToken, user.ID, pair.RefreshExpiresAt); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &dto.AuthResponse{
		Token: dto.TokenResponse{
			AccessToken:           pair.AccessToken,
			TokenType:             "Bearer",
			ExpiresIn:             pair.ExpiresIn,
			RefreshToken:          pair.RefreshToken,
			RefreshTokenExpiresIn: pair.RefreshExpiresIn,
		},
		User: dto.NewUserResponse(user),
	}, nil
}
