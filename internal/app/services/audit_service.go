package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/uniportal/internal/app/auth"
	"github.com/yigit/uniportal/internal/app/models"
	"github.com/yigit/uniportal/internal/app/models/dto"
	"github.com/yigit/uniportal/internal/pkg/helpers"
)

// Audit actions
const (
	ActionProgramCreated     = "PROGRAM_CREATED"
	ActionProgramCostUpdated = "PROGRAM_COST_UPDATED"
	ActionPaymentRecorded    = "PAYMENT_RECORDED"
	ActionStudentCreated     = "STUDENT_CREATED"
	ActionStudentUpdated     = "STUDENT_UPDATED"
	ActionStudentDeactivated = "STUDENT_DEACTIVATED"
	ActionUserCreated        = "USER_CREATED"
	ActionPasswordReset      = "PASSWORD_RESET"
	ActionPasswordChanged    = "PASSWORD_CHANGED"
	ActionUnitRegistered     = "UNIT_REGISTERED"
	ActionUnitAssigned       = "UNIT_ASSIGNED"
	ActionUnitUnassigned     = "UNIT_UNASSIGNED"
	ActionNotificationSent   = "NOTIFICATION_SENT"
)

// AuditService appends privileged actions to the audit log
type AuditService struct {
	repo   AuditStore
	logger zerolog.Logger
	now    func() time.Time
}

// NewAuditService creates a new AuditService
func NewAuditService(repo AuditStore, logger zerolog.Logger) *AuditService {
	return &AuditService{repo: repo, logger: logger, now: time.Now}
}

// Record appends an entry. A failed write is logged and never returned, so
// auditing can not fail the action being audited.
func (s *AuditService) Record(ctx context.Context, actor auth.Principal, action, entity, entityID string, details map[string]any) {
	entry := &models.AuditLog{
		ActorRole: string(actor.Role),
		Action:    action,
		Entity:    entity,
		EntityID:  entityID,
		Details:   details,
		CreatedAt: s.now(),
	}
	if actor.UserID > 0 {
		id := actor.UserID
		entry.ActorID = &id
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		s.logger.Error().Err(err).
			Str("action", action).
			Str("entity", entity).
			Str("entityID", entityID).
			Msg("Failed to write audit log")
	}
}

// List returns a page of audit entries, newest first
func (s *AuditService) List(ctx context.Context, filter models.AuditFilter, page, size int) (*dto.AuditLogListResponse, error) {
	offset, limit := helpers.CalculateOffsetLimit(page, size)
	logs, total, err := s.repo.List(ctx, filter, offset, limit)
	if err != nil {
		return nil, err
	}
	return &dto.AuditLogListResponse{
		Logs:       logs,
		Pagination: helpers.NewPaginationInfo(total, page, size),
	}, nil
}
