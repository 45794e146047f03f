package services

import (
	"context"
	"time"

	"github.com/yigit/uniportal/internal/app/models"
)

// The store interfaces below are satisfied by the pgx repositories in
// internal/app/repositories and by the in-memory ones in repositories/inmem.

// UserStore persists login accounts
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByAdmissionNumber(ctx context.Context, admissionNumber string) (*models.User, error)
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
	UpdateLastLogin(ctx context.Context, userID int64, at time.Time) error
	SetActiveByAdmissionNumber(ctx context.Context, admissionNumber string, active bool) error
}

// TokenStore persists refresh tokens
type TokenStore interface {
	CreateToken(ctx context.Context, token string, userID int64, expiryDate time.Time) error
	GetUserID(ctx context.Context, token string, now time.Time) (int64, error)
	RevokeToken(ctx context.Context, token string) error
	RevokeAllUserTokens(ctx context.Context, userID int64) error
}

// StudentStore persists student records
type StudentStore interface {
	Create(ctx context.Context, student *models.Student) error
	CreateWithAccount(ctx context.Context, student *models.Student, user *models.User) error
	GetByAdmissionNumber(ctx context.Context, admissionNumber string) (*models.Student, error)
	List(ctx context.Context, filter models.StudentFilter, offset, limit uint64) ([]models.Student, int64, error)
	Update(ctx context.Context, student *models.Student) error
}

// ProgramStore persists programs and their costs
type ProgramStore interface {
	Create(ctx context.Context, program *models.Program) error
	GetByID(ctx context.Context, id int64) (*models.Program, error)
	FindByName(ctx context.Context, name string) (*models.Program, error)
	List(ctx context.Context) ([]models.Program, error)
	UpdateCost(ctx context.Context, id int64, costPerYear float64) (*models.Program, error)
}

// PaymentStore persists fee payments
type PaymentStore interface {
	Create(ctx context.Context, payment *models.Payment) error
	ListByAdmissionNumber(ctx context.Context, admissionNumber string) ([]models.Payment, error)
}

// PasswordResetStore persists OTP and reset-link records
type PasswordResetStore interface {
	ReplaceActive(ctx context.Context, rec *models.PasswordReset) error
	ConsumeAttempt(ctx context.Context, userID int64, userType models.UserType, now time.Time, maxAttempts int) (*models.PasswordReset, error)
	MarkVerified(ctx context.Context, id int64, now, retainUntil time.Time) (bool, error)
	ConsumeGrant(ctx context.Context, id, userID int64, now time.Time) (bool, error)
	ConsumeToken(ctx context.Context, secretHash string, now time.Time) (*models.PasswordReset, error)
}

// NotificationStore persists notifications
type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	List(ctx context.Context, recipient models.Recipient, now time.Time, offset, limit uint64) ([]models.Notification, int64, error)
	CountUnread(ctx context.Context, recipient models.Recipient, now time.Time) (int64, error)
	MarkRead(ctx context.Context, recipient models.Recipient, id int64, now time.Time) error
	MarkAllRead(ctx context.Context, recipient models.Recipient, now time.Time) (int64, error)
}

// AuditStore persists audit entries
type AuditStore interface {
	Create(ctx context.Context, entry *models.AuditLog) error
	List(ctx context.Context, filter models.AuditFilter, offset, limit uint64) ([]models.AuditLog, int64, error)
}

// UnitStore persists unit registrations and trainer assignments
type UnitStore interface {
	CreateRegistration(ctx context.Context, reg *models.UnitRegistration) error
	ListRegistrations(ctx context.Context, admissionNumber string) ([]models.UnitRegistration, error)
	CreateAssignment(ctx context.Context, a *models.UnitAssignment) error
	DeleteAssignment(ctx context.Context, id int64) (*models.UnitAssignment, error)
	ListAssignments(ctx context.Context, trainerID *int64) ([]models.UnitAssignment, error)
}
