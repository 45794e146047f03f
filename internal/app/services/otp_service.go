package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/uniportal/internal/app/models"
	"github.com/yigit/uniportal/internal/pkg/apperrors"
	"github.com/yigit/uniportal/internal/pkg/auth"
	"github.com/yigit/uniportal/internal/pkg/metrics"
)

// Verification results, used as metric labels
const (
	verifySuccess  = "success"
	verifyNoRecord = "no_live_record"
	verifyMismatch = "mismatch"
	verifyLostRace = "lost_race"
)

// OTPConfig holds the password-reset lifecycle settings
type OTPConfig struct {
	CodeLength  int
	CodeTTL     time.Duration
	TokenTTL    time.Duration
	GrantTTL    time.Duration
	MaxAttempts int
}

// ResetMailer delivers reset secrets. *email.Mailer satisfies it.
type ResetMailer interface {
	SendPasswordResetCode(ctx context.Context, to, toName, code string, ttl time.Duration) error
	SendPasswordResetLink(ctx context.Context, to, toName, token string, ttl time.Duration) error
}

// IssueRequest identifies whose reset to start
type IssueRequest struct {
	UserID    int64
	UserType  models.UserType
	Email     string
	Name      string
	ResetType models.ResetType
}

// IssueResult describes the stored record. The secret itself is never part of it.
type IssueResult struct {
	ID        int64
	ExpiresAt time.Time
	Delivered bool
}

// VerifyRequest submits a candidate code
type VerifyRequest struct {
	UserID   int64
	UserType models.UserType
	Code     string
}

// OTPService runs the password-reset record lifecycle:
// created, then verified, expired or exhausted, then used.
type OTPService struct {
	repo    PasswordResetStore
	mailer  ResetMailer
	config  OTPConfig
	metrics *metrics.Metrics
	logger  zerolog.Logger
	now     func() time.Time
}

// NewOTPService creates a new OTPService
func NewOTPService(repo PasswordResetStore, mailer ResetMailer, config OTPConfig, m *metrics.Metrics, logger zerolog.Logger) *OTPService {
	return &OTPService{
		repo:    repo,
		mailer:  mailer,
		config:  config,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

func invalidCode() error {
	return apperrors.NewCustomError(apperrors.ErrInvalidOrExpiredCode, "the code is invalid or has expired").
		WithHint(apperrors.HintRequestNewCode)
}

// Issue invalidates the user's earlier records, stores a new one and sends the
// secret by email. A failed send keeps the record and reports Delivered=false.
func (s *OTPService) Issue(ctx context.Context, req IssueRequest) (*IssueResult, error) {
	if req.UserID <= 0 || !req.UserType.Valid() {
		return nil, apperrors.NewValidationError("user", "user id and type are required")
	}
	resetType := req.ResetType
	if resetType == "" {
		resetType = models.ResetTypeOTP
	}

	var (
		secret string
		ttl    time.Duration
		err    error
	)
	switch resetType {
	case models.ResetTypeOTP:
		secret, err = auth.GenerateNumericCode(s.config.CodeLength)
		ttl = s.config.CodeTTL
	case models.ResetTypeToken:
		secret, err = auth.GenerateURLToken()
		ttl = s.config.TokenTTL
	default:
		return nil, apperrors.NewValidationError("resetType", "reset type must be OTP or TOKEN")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to generate reset secret: %w", err)
	}

	now := s.now()
	rec := &models.PasswordReset{
		UserID:     req.UserID,
		UserType:   req.UserType,
		Email:      req.Email,
		ResetType:  resetType,
		SecretHash: auth.HashSecret(secret),
		ExpiresAt:  now.Add(ttl),
		CreatedAt:  now,
	}
	if err := s.repo.ReplaceActive(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to store reset record: %w", err)
	}

	if resetType == models.ResetTypeOTP {
		err = s.mailer.SendPasswordResetCode(ctx, req.Email, req.Name, secret, ttl)
	} else {
		err = s.mailer.SendPasswordResetLink(ctx, req.Email, req.Name, secret, ttl)
	}
	delivered := err == nil
	if !delivered {
		s.logger.Error().Err(err).
			Int64("resetID", rec.ID).
			Int64("userID", req.UserID).
			Msg("Failed to deliver password reset secret")
	}

	s.metrics.OTPIssued.WithLabelValues(string(req.UserType), string(resetType), strconv.FormatBool(delivered)).Inc()
	s.logger.Info().
		Int64("resetID", rec.ID).
		Int64("userID", req.UserID).
		Str("userType", string(req.UserType)).
		Str("resetType", string(resetType)).
		Time("expiresAt", rec.ExpiresAt).
		Msg("Password reset issued")

	return &IssueResult{ID: rec.ID, ExpiresAt: rec.ExpiresAt, Delivered: delivered}, nil
}

// Verify checks a candidate code against the user's live OTP record and returns
// the record id. Each call spends one attempt before comparing. Wrong, expired,
// exhausted, used and unknown all return the same error.
func (s *OTPService) Verify(ctx context.Context, req VerifyRequest) (int64, error) {
	now := s.now()

	rec, err := s.repo.ConsumeAttempt(ctx, req.UserID, req.UserType, now, s.config.MaxAttempts)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			s.metrics.OTPVerifications.WithLabelValues(verifyNoRecord).Inc()
			return 0, invalidCode()
		}
		return 0, fmt.Errorf("failed to consume attempt: %w", err)
	}

	if !auth.SecretMatches(rec.SecretHash, req.Code) {
		s.metrics.OTPVerifications.WithLabelValues(verifyMismatch).Inc()
		s.logger.Info().
			Int64("resetID", rec.ID).
			Int("attempts", rec.Attempts).
			Int("maxAttempts", s.config.MaxAttempts).
			Msg("Wrong password reset code")
		return 0, invalidCode()
	}

	ok, err := s.repo.MarkVerified(ctx, rec.ID, now, now.Add(s.config.GrantTTL))
	if err != nil {
		return 0, fmt.Errorf("failed to mark reset verified: %w", err)
	}
	if !ok {
		s.metrics.OTPVerifications.WithLabelValues(verifyLostRace).Inc()
		return 0, invalidCode()
	}

	s.metrics.OTPVerifications.WithLabelValues(verifySuccess).Inc()
	s.logger.Info().Int64("resetID", rec.ID).Int64("userID", rec.UserID).Msg("Password reset code verified")
	return rec.ID, nil
}

// VerifyToken consumes a reset-link token and returns the record it belonged to
func (s *OTPService) VerifyToken(ctx context.Context, token string) (*models.PasswordReset, error) {
	if token == "" {
		return nil, invalidCode()
	}

	rec, err := s.repo.ConsumeToken(ctx, auth.HashSecret(token), s.now())
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			s.metrics.OTPVerifications.WithLabelValues(verifyNoRecord).Inc()
			return nil, invalidCode()
		}
		return nil, fmt.Errorf("failed to consume reset token: %w", err)
	}

	s.metrics.OTPVerifications.WithLabelValues(verifySuccess).Inc()
	return rec, nil
}

// RedeemGrant spends the reset grant issued for a verified OTP record. A grant
// can set a password once.
func (s *OTPService) RedeemGrant(ctx context.Context, resetID, userID int64) error {
	if resetID <= 0 {
		return invalidCode()
	}

	ok, err := s.repo.ConsumeGrant(ctx, resetID, userID, s.now())
	if err != nil {
		return fmt.Errorf("failed to redeem reset grant: %w", err)
	}
	if !ok {
		s.logger.Info().Int64("resetID", resetID).Int64("userID", userID).Msg("Reset grant already redeemed or expired")
		return invalidCode()
	}
	return nil
}
