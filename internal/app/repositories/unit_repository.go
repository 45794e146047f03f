package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/rs/zerolog"
	"github.com/yigit/uniportal/internal/app/models"
	"github.com/yigit/uniportal/internal/db"
	"github.com/yigit/uniportal/internal/pkg/apperrors"
	"github.com/yigit/uniportal/internal/pkg/dberrors"
)

// UnitRepository handles unit registrations and trainer unit assignments
type UnitRepository struct {
	db     db.Querier
	logger zerolog.Logger
}

// NewUnitRepository creates a new UnitRepository
func NewUnitRepository(q db.Querier, log zerolog.Logger) *UnitRepository {
	return &UnitRepository{db: q, logger: log.With().Str("repository", "units").Logger()}
}

// CreateRegistration registers a student for a unit in a period
func (r *UnitRepository) CreateRegistration(ctx context.Context, reg *models.UnitRegistration) error {
	sql, args, err := psql.Insert("unit_registrations").
		Columns("admission_number", "unit_code", "academic_period").
		Values(reg.AdmissionNumber, reg.UnitCode, reg.AcademicPeriod).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create registration query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&reg.ID, &reg.CreatedAt); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "unit_registrations_unique") {
			return apperrors.ErrAlreadyRegistered
		}
		return fmt.Errorf("error creating unit registration: %w", err)
	}
	return nil
}

// ListRegistrations returns a student's registrations, latest period first
func (r *UnitRepository) ListRegistrations(ctx context.Context, admissionNumber string) ([]models.UnitRegistration, error) {
	sql, args, err := psql.Select("id", "admission_number", "unit_code", "academic_period", "created_at").
		From("unit_registrations").
		Where(squirrel.Eq{"admission_number": admissionNumber}).
		OrderBy("academic_period DESC", "unit_code").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list registrations query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing registrations: %w", err)
	}
	defer rows.Close()

	regs := []models.UnitRegistration{}
	for rows.Next() {
		var reg models.UnitRegistration
		if err := rows.Scan(&reg.ID, &reg.AdmissionNumber, &reg.UnitCode, &reg.AcademicPeriod, &reg.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning registration: %w", err)
		}
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}

// CreateAssignment assigns a trainer to a unit in a period
func (r *UnitRepository) CreateAssignment(ctx context.Context, a *models.UnitAssignment) error {
	sql, args, err := psql.Insert("unit_assignments").
		Columns("trainer_id", "unit_code", "academic_period", "assigned_by").
		Values(a.TrainerID, a.UnitCode, a.AcademicPeriod, a.AssignedBy).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create assignment query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&a.ID, &a.CreatedAt); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "unit_assignments_unique") {
			return apperrors.ErrUnitAlreadyAssigned
		}
		return fmt.Errorf("error creating unit assignment: %w", err)
	}
	return nil
}

// DeleteAssignment removes an assignment and returns what was removed
func (r *UnitRepository) DeleteAssignment(ctx context.Context, id int64) (*models.UnitAssignment, error) {
	sql, args, err := psql.Delete("unit_assignments").
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING id, trainer_id, unit_code, academic_period, assigned_by, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build delete assignment query: %w", err)
	}

	var a models.UnitAssignment
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&a.ID, &a.TrainerID, &a.UnitCode, &a.AcademicPeriod, &a.AssignedBy, &a.CreatedAt); err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.NewResourceNotFoundError("unit assignment not found")
		}
		return nil, fmt.Errorf("error deleting unit assignment: %w", err)
	}
	return &a, nil
}

// ListAssignments returns assignments, optionally for one trainer
func (r *UnitRepository) ListAssignments(ctx context.Context, trainerID *int64) ([]models.UnitAssignment, error) {
	b := psql.Select("id", "trainer_id", "unit_code", "academic_period", "assigned_by", "created_at").
		From("unit_assignments").
		OrderBy("academic_period DESC", "unit_code")
	if trainerID != nil {
		b = b.Where(squirrel.Eq{"trainer_id": *trainerID})
	}

	sql, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list assignments query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing assignments: %w", err)
	}
	defer rows.Close()

	list := []models.UnitAssignment{}
	for rows.Next() {
		var a models.UnitAssignment
		if err := rows.Scan(&a.ID, &a.TrainerID, &a.UnitCode, &a.AcademicPeriod, &a.AssignedBy, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning assignment: %w", err)
		}
		list = append(list, a)
	}
	return list, rows.Err()
}
