package repositories

import (
	"github.com/Masterminds/squirrel"
	"github.com/rs/zerolog"
	"github.com/yigit/uniportal/internal/db"
)

// psql builds Postgres statements with $n placeholders
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository          *UserRepository
	TokenRepository         *TokenRepository
	StudentRepository       *StudentRepository
	ProgramRepository       *ProgramRepository
	PaymentRepository       *PaymentRepository
	PasswordResetRepository *PasswordResetRepository
	NotificationRepository  *NotificationRepository
	AuditRepository         *AuditRepository
	UnitRepository          *UnitRepository
}

// NewRepositories initializes all repositories
func NewRepositories(database *db.PostgresDB, log zerolog.Logger) *Repositories {
	pool := database.Pool
	return &Repositories{
		UserRepository:          NewUserRepository(pool, log),
		TokenRepository:         NewTokenRepository(pool, log),
		StudentRepository:       NewStudentRepository(database, log),
		ProgramRepository:       NewProgramRepository(pool, log),
		PaymentRepository:       NewPaymentRepository(pool, log),
		PasswordResetRepository: NewPasswordResetRepository(database, log),
		NotificationRepository:  NewNotificationRepository(pool, log),
		AuditRepository:         NewAuditRepository(pool, log),
		UnitRepository:          NewUnitRepository(pool, log),
	}
}
