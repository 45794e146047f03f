package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/uniportal/internal/app/models/dto"
	"github.com/yigit/uniportal/internal/pkg/apperrors"
)

type errorMapping struct {
	target  error
	status  int
	code    dto.ErrorCode
	message string
}

// errorMappings is checked in order; the first sentinel found in the error chain wins.
var errorMappings = []errorMapping{
	{apperrors.ErrStudentNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Student not found"},
	{apperrors.ErrProgramNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Program not found"},
	{apperrors.ErrNotificationNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Notification not found"},
	{apperrors.ErrUserNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "User not found"},
	{apperrors.ErrResourceNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found"},

	{apperrors.ErrInvalidPaymentMode, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Invalid payment mode"},
	{apperrors.ErrValidationFailed, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed"},
	{apperrors.ErrInvalidPassword, http.StatusBadRequest, dto.ErrorCodeInvalidPassword, "Invalid password"},
	{apperrors.ErrInvalidOrExpiredCode, http.StatusBadRequest, dto.ErrorCodeInvalidCode, "Invalid or expired code"},

	{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid credentials"},
	{apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired"},
	{apperrors.ErrTokenInvalid, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token"},
	{apperrors.ErrTokenNotFound, http.StatusUnauthorized, dto.ErrorCodeTokenNotFound, "Token not found"},
	{apperrors.ErrTokenRevoked, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Token revoked"},

	{apperrors.ErrAccountDisabled, http.StatusForbidden, dto.ErrorCodeAccountDisabled, "Account is disabled"},
	{apperrors.ErrRegistrationBlocked, http.StatusForbidden, dto.ErrorCodeRegistrationBlocked, "Outstanding balance blocks registration"},
	{apperrors.ErrStudentInactive, http.StatusForbidden, dto.ErrorCodeForbidden, "Student is inactive"},
	{apperrors.ErrPermissionDenied, http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied"},

	{apperrors.ErrEmailAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Email already exists"},
	{apperrors.ErrAdmissionNumberUsed, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Admission number already exists"},
	{apperrors.ErrProgramAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Program already exists"},
	{apperrors.ErrAlreadyRegistered, http.StatusConflict, dto.ErrorCodeConflict, "Unit already registered for this period"},
	{apperrors.ErrUnitAlreadyAssigned, http.StatusConflict, dto.ErrorCodeConflict, "Unit already assigned"},
	{apperrors.ErrConflict, http.StatusConflict, dto.ErrorCodeConflict, "Conflict"},

	{apperrors.ErrFeesUndetermined, http.StatusUnprocessableEntity, dto.ErrorCodeFeesUndetermined, "Cannot determine fees for this course"},
	{apperrors.ErrRateLimited, http.StatusTooManyRequests, dto.ErrorCodeRateLimited, "Too many requests"},
}

// HandleAPIError writes the error envelope for err. Known domain errors keep their
// message, hint and details; anything else is logged and reported as a generic 500.
func HandleAPIError(c *gin.Context, err error) {
	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}

		detail := dto.NewErrorDetail(m.code, m.message).WithSeverity(dto.ErrorSeverityWarning)
		if ce, ok := apperrors.AsCustom(err); ok {
			if ce.Message != "" {
				detail.Message = ce.Message
			}
			if ce.Hint != "" {
				detail.WithHint(ce.Hint)
			}
			if len(ce.Details) > 0 {
				if field, ok := ce.Details["field"].(string); ok && len(ce.Details) == 1 {
					detail.WithField(field)
				} else {
					detail.WithDetails(ce.Details)
				}
			}
		}
		if m.status == http.StatusTooManyRequests && detail.Hint == "" {
			detail.WithHint("wait a minute and try again")
		}

		c.AbortWithStatusJSON(m.status, dto.NewErrorResponse(detail))
		return
	}

	requestLogger(c).Error().Err(err).
		Str("method", c.Request.Method).
		Str("path", c.FullPath()).
		Msg("Unhandled error")
	c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponse(
		dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error").
			WithHint("try again later"),
	))
}

// requestLogger returns the logger the request logging middleware attached, or a no-op logger
func requestLogger(c *gin.Context) *zerolog.Logger {
	return zerolog.Ctx(c.Request.Context())
}
