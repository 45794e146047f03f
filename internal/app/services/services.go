package services

import (
	"github.com/rs/zerolog"
	pkgAuth "github.com/yigit/uniportal/internal/pkg/auth"
	"github.com/yigit/uniportal/internal/pkg/logger"
	"github.com/yigit/uniportal/internal/pkg/metrics"
)

// Stores groups the persistence dependencies of all services
type Stores struct {
	Users          UserStore
	Tokens         TokenStore
	Students       StudentStore
	Programs       ProgramStore
	Payments       PaymentStore
	PasswordResets PasswordResetStore
	Notifications  NotificationStore
	Audit          AuditStore
	Units          UnitStore
}

// Mailer is everything the services send by email
type Mailer interface {
	ResetMailer
	AccountMailer
}

// Config carries the settings services need
type Config struct {
	OTP                   OTPConfig
	RegistrationThreshold float64
}

// Services holds every application service
type Services struct {
	Audit         *AuditService
	Notifications *NotificationService
	Programs      *ProgramService
	Payments      *PaymentService
	Eligibility   *EligibilityService
	OTP           *OTPService
	Auth          *AuthService
	Students      *StudentService
	Units         *UnitService
}

// New wires all services together
func New(stores Stores, jwtService *pkgAuth.JWTService, mailer Mailer, m *metrics.Metrics, cfg Config, log zerolog.Logger) *Services {
	audit := NewAuditService(stores.Audit, logger.Component(log, "audit"))
	notifications := NewNotificationService(stores.Notifications, logger.Component(log, "notifications"))
	programs := NewProgramService(stores.Programs, audit, logger.Component(log, "programs"))
	payments := NewPaymentService(stores.Payments, stores.Students, stores.Users, notifications, audit, m, logger.Component(log, "payments"))
	eligibility := NewEligibilityService(stores.Students, programs, payments, cfg.RegistrationThreshold, m, logger.Component(log, "eligibility"))
	otp := NewOTPService(stores.PasswordResets, mailer, cfg.OTP, m, logger.Component(log, "otp"))

	return &Services{
		Audit:         audit,
		Notifications: notifications,
		Programs:      programs,
		Payments:      payments,
		Eligibility:   eligibility,
		OTP:           otp,
		Auth:          NewAuthService(stores.Users, stores.Tokens, jwtService, otp, notifications, audit, mailer, logger.Component(log, "auth")),
		Students:      NewStudentService(stores.Students, stores.Users, audit, logger.Component(log, "students")),
		Units:         NewUnitService(stores.Units, stores.Students, stores.Users, eligibility, notifications, audit, logger.Component(log, "units")),
	}
}
