package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/rs/zerolog"
	"github.com/yigit/uniportal/internal/app/models"
	"github.com/yigit/uniportal/internal/db"
)

// AuditRepository appends and lists audit log entries
type AuditRepository struct {
	db     db.Querier
	logger zerolog.Logger
}

// NewAuditRepository creates a new AuditRepository
func NewAuditRepository(q db.Querier, log zerolog.Logger) *AuditRepository {
	return &AuditRepository{db: q, logger: log.With().Str("repository", "audit_logs").Logger()}
}

// Create appends an entry
func (r *AuditRepository) Create(ctx context.Context, entry *models.AuditLog) error {
	sql, args, err := psql.Insert("audit_logs").
		Columns("actor_id", "actor_role", "action", "entity", "entity_id", "details", "created_at").
		Values(entry.ActorID, entry.ActorRole, entry.Action, entry.Entity, entry.EntityID, entry.Details, entry.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create audit log query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&entry.ID); err != nil {
		return fmt.Errorf("error creating audit log: %w", err)
	}
	return nil
}

func applyAuditFilter(b squirrel.SelectBuilder, f models.AuditFilter) squirrel.SelectBuilder {
	if f.ActorID != nil {
		b = b.Where(squirrel.Eq{"actor_id": *f.ActorID})
	}
	if f.Action != nil {
		b = b.Where(squirrel.Eq{"action": *f.Action})
	}
	return b
}

// List returns a page of entries, newest first, with the total count
func (r *AuditRepository) List(ctx context.Context, filter models.AuditFilter, offset, limit uint64) ([]models.AuditLog, int64, error) {
	countSQL, countArgs, err := applyAuditFilter(psql.Select("COUNT(*)").From("audit_logs"), filter).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count audit logs query: %w", err)
	}

	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting audit logs: %w", err)
	}

	sql, args, err := applyAuditFilter(
		psql.Select("id", "actor_id", "actor_role", "action", "entity", "entity_id", "details", "created_at").From("audit_logs"),
		filter,
	).
		OrderBy("created_at DESC", "id DESC").
		Offset(offset).
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list audit logs query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing audit logs: %w", err)
	}
	defer rows.Close()

	logs := []models.AuditLog{}
	for rows.Next() {
		var l models.AuditLog
		if err := rows.Scan(&l.ID, &l.ActorID, &l.ActorRole, &l.Action, &l.Entity, &l.EntityID, &l.Details, &l.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("error scanning audit log: %w", err)
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating audit logs: %w", err)
	}
	return logs, total, nil
}
