package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound = errors.New("resource not found")
	ErrConflict         = errors.New("conflict")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenNotFound      = errors.New("token not found")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrAccountDisabled    = errors.New("account is disabled")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrInvalidPassword  = errors.New("invalid password")

	// Rate limiting
	ErrRateLimited = errors.New("too many requests")
)

// Account errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
)

// Student errors
var (
	ErrStudentNotFound     = errors.New("student not found")
	ErrAdmissionNumberUsed = errors.New("admission number already exists")
	ErrStudentInactive     = errors.New("student is inactive")
)

// Program errors
var (
	ErrProgramNotFound      = errors.New("program not found")
	ErrProgramAlreadyExists = errors.New("program with this name already exists")
)

// Fee and registration errors
var (
	ErrInvalidPaymentMode  = errors.New("invalid payment mode")
	ErrFeesUndetermined    = errors.New("cannot determine fees for this course")
	ErrRegistrationBlocked = errors.New("outstanding balance blocks registration")
	ErrAlreadyRegistered   = errors.New("unit already registered for this period")
	ErrUnitAlreadyAssigned = errors.New("unit already assigned to this trainer for this period")
)

// Notification errors
var (
	ErrNotificationNotFound = errors.New("notification not found")
)

// Password recovery errors. Every OTP failure mode (wrong, expired, exhausted, used,
// unknown) is reported with the same sentinel.
var (
	ErrInvalidOrExpiredCode = errors.New("invalid or expired code")
)

// Action hints returned to clients alongside errors
const (
	HintRequestNewCode = "request a new code"
	HintClearBalance   = "clear your outstanding balance"
	HintContactFinance = "contact the finance office to set the program cost"
)

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
	}
}

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) error {
	return &CustomError{
		Err:     ErrPermissionDenied,
		Message: message,
	}
}

// NewValidationError wraps ErrValidationFailed with a field-specific message
func NewValidationError(field, message string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
		Details: map[string]interface{}{"field": field},
	}
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Hint    string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithHint attaches the action the caller should take next
func (e *CustomError) WithHint(hint string) *CustomError {
	e.Hint = hint
	return e
}

// AsCustom returns the outermost CustomError in err's chain, if any.
func AsCustom(err error) (*CustomError, bool) {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
