package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/rs/zerolog"
	"github.com/yigit/uniportal/internal/app/models"
	"github.com/yigit/uniportal/internal/db"
	"github.com/yigit/uniportal/internal/pkg/apperrors"
)

var notificationColumns = []string{
	"id", "recipient_id", "recipient_type", "title", "message", "category",
	"is_read", "read_at", "expires_at", "created_at",
}

// NotificationRepository handles notification database operations
type NotificationRepository struct {
	db     db.Querier
	logger zerolog.Logger
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(q db.Querier, log zerolog.Logger) *NotificationRepository {
	return &NotificationRepository{db: q, logger: log.With().Str("repository", "notifications").Logger()}
}

// visibleTo restricts a query to a recipient's unexpired notifications
func visibleTo(recipient models.Recipient, now time.Time) squirrel.Sqlizer {
	return squirrel.And{
		squirrel.Eq{"recipient_id": recipient.ID, "recipient_type": recipient.Type},
		squirrel.Or{squirrel.Eq{"expires_at": nil}, squirrel.Gt{"expires_at": now}},
	}
}

// Create inserts a notification
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	sql, args, err := psql.Insert("notifications").
		Columns("recipient_id", "recipient_type", "title", "message", "category", "expires_at", "created_at").
		Values(n.RecipientID, n.RecipientType, n.Title, n.Message, n.Category, n.ExpiresAt, n.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create notification query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&n.ID); err != nil {
		r.logger.Error().Err(err).Int64("recipientID", n.RecipientID).Msg("Error creating notification")
		return fmt.Errorf("error creating notification: %w", err)
	}
	return nil
}

// List returns a page of the recipient's unexpired notifications, newest first, with the total count
func (r *NotificationRepository) List(ctx context.Context, recipient models.Recipient, now time.Time, offset, limit uint64) ([]models.Notification, int64, error) {
	countSQL, countArgs, err := psql.Select("COUNT(*)").From("notifications").Where(visibleTo(recipient, now)).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count notifications query: %w", err)
	}

	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting notifications: %w", err)
	}

	sql, args, err := psql.Select(notificationColumns...).
		From("notifications").
		Where(visibleTo(recipient, now)).
		OrderBy("created_at DESC", "id DESC").
		Offset(offset).
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list notifications query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing notifications: %w", err)
	}
	defer rows.Close()

	list := []models.Notification{}
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.RecipientType, &n.Title, &n.Message, &n.Category,
			&n.IsRead, &n.ReadAt, &n.ExpiresAt, &n.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("error scanning notification: %w", err)
		}
		list = append(list, n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating notifications: %w", err)
	}
	return list, total, nil
}

// CountUnread counts the recipient's unread, unexpired notifications
func (r *NotificationRepository) CountUnread(ctx context.Context, recipient models.Recipient, now time.Time) (int64, error) {
	sql, args, err := psql.Select("COUNT(*)").
		From("notifications").
		Where(visibleTo(recipient, now)).
		Where(squirrel.Eq{"is_read": false}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count unread query: %w", err)
	}

	var count int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting unread notifications: %w", err)
	}
	return count, nil
}

// MarkRead marks one notification read. Marking an already read notification
// succeeds and keeps the original read_at.
func (r *NotificationRepository) MarkRead(ctx context.Context, recipient models.Recipient, id int64, now time.Time) error {
	sql, args, err := psql.Update("notifications").
		Set("is_read", true).
		Set("read_at", squirrel.Expr("COALESCE(read_at, ?)", now)).
		Where(squirrel.Eq{"id": id}).
		Where(visibleTo(recipient, now)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build mark read query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error marking notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotificationNotFound
	}
	return nil
}

// MarkAllRead marks every unread notification of the recipient read and returns how many changed
func (r *NotificationRepository) MarkAllRead(ctx context.Context, recipient models.Recipient, now time.Time) (int64, error) {
	sql, args, err := psql.Update("notifications").
		Set("is_read", true).
		Set("read_at", now).
		Where(visibleTo(recipient, now)).
		Where(squirrel.Eq{"is_read": false}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build mark all read query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("error marking notifications read: %w", err)
	}
	return tag.RowsAffected(), nil
}

// DeleteExpired purges notifications past their expiry
func (r *NotificationRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	sql, args, err := psql.Delete("notifications").
		Where(squirrel.NotEq{"expires_at": nil}).
		Where(squirrel.LtOrEq{"expires_at": now}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build delete expired notifications query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("error deleting expired notifications: %w", err)
	}
	return tag.RowsAffected(), nil
}
