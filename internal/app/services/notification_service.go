package services

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/uniportal/internal/app/models"
	"github.com/yigit/uniportal/internal/app/models/dto"
	"github.com/yigit/uniportal/internal/pkg/apperrors"
	"github.com/yigit/uniportal/internal/pkg/helpers"
)

// NotificationInput is one notification to deliver
type NotificationInput struct {
	Recipient models.Recipient
	Title     string
	Message   string
	Category  models.NotificationCategory
	ExpiresAt *time.Time
}

// NotificationService owns per-recipient notifications
type NotificationService struct {
	repo   NotificationStore
	logger zerolog.Logger
	now    func() time.Time
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(repo NotificationStore, logger zerolog.Logger) *NotificationService {
	return &NotificationService{repo: repo, logger: logger, now: time.Now}
}

// Create appends one notification for the recipient
func (s *NotificationService) Create(ctx context.Context, in NotificationInput) (*models.Notification, error) {
	if in.Recipient.ID <= 0 || !in.Recipient.Type.Valid() {
		return nil, apperrors.NewValidationError("recipient", "recipient id and type are required")
	}
	if !in.Category.Valid() {
		return nil, apperrors.NewValidationError("category", "unknown notification category")
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title", "title is required")
	}

	now := s.now()
	if in.ExpiresAt != nil && !in.ExpiresAt.After(now) {
		return nil, apperrors.NewValidationError("expiresAt", "expiry must be in the future")
	}

	n := &models.Notification{
		RecipientID:   in.Recipient.ID,
		RecipientType: in.Recipient.Type,
		Title:         title,
		Message:       in.Message,
		Category:      in.Category,
		ExpiresAt:     in.ExpiresAt,
		CreatedAt:     now,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}

	s.logger.Debug().
		Int64("notificationID", n.ID).
		Int64("recipientID", n.RecipientID).
		Str("category", string(n.Category)).
		Msg("Notification created")
	return n, nil
}

// Notify is Create for internal producers. Failures are logged, not returned.
func (s *NotificationService) Notify(ctx context.Context, in NotificationInput) {
	if _, err := s.Create(ctx, in); err != nil {
		s.logger.Warn().Err(err).
			Int64("recipientID", in.Recipient.ID).
			Str("category", string(in.Category)).
			Msg("Failed to deliver notification")
	}
}

// List returns the recipient's unexpired notifications, newest first, with the unread count
func (s *NotificationService) List(ctx context.Context, recipient models.Recipient, page, size int) (*dto.NotificationListResponse, error) {
	now := s.now()
	offset, limit := helpers.CalculateOffsetLimit(page, size)

	items, total, err := s.repo.List(ctx, recipient, now, offset, limit)
	if err != nil {
		return nil, err
	}
	unread, err := s.repo.CountUnread(ctx, recipient, now)
	if err != nil {
		return nil, err
	}

	return &dto.NotificationListResponse{
		Notifications: items,
		UnreadCount:   unread,
		Pagination:    helpers.NewPaginationInfo(total, page, size),
	}, nil
}

// MarkRead marks one of the recipient's notifications read. Marking an already
// read notification succeeds and keeps the original read time.
func (s *NotificationService) MarkRead(ctx context.Context, recipient models.Recipient, id int64) error {
	if id <= 0 {
		return apperrors.ErrNotificationNotFound
	}
	return s.repo.MarkRead(ctx, recipient, id, s.now())
}

// MarkAllRead marks every unread notification of the recipient read and
// returns how many changed
func (s *NotificationService) MarkAllRead(ctx context.Context, recipient models.Recipient) (int64, error) {
	n, err := s.repo.MarkAllRead(ctx, recipient, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Debug().Int64("recipientID", recipient.ID).Int64("updated", n).Msg("Marked all notifications read")
	}
	return n, nil
}
