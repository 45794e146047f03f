package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/rs/zerolog"
	"github.com/yigit/uniportal/internal/app/models"
	"github.com/yigit/uniportal/internal/db"
	"github.com/yigit/uniportal/internal/pkg/apperrors"
	"github.com/yigit/uniportal/internal/pkg/dberrors"
)

var programColumns = []string{"id", "name", "department", "cost_per_year", "created_at", "updated_at"}

// ProgramRepository handles program and cost database operations
type ProgramRepository struct {
	db     db.Querier
	logger zerolog.Logger
}

// NewProgramRepository creates a new ProgramRepository
func NewProgramRepository(q db.Querier, log zerolog.Logger) *ProgramRepository {
	return &ProgramRepository{db: q, logger: log.With().Str("repository", "programs").Logger()}
}

func scanProgram(row interface{ Scan(...any) error }) (*models.Program, error) {
	p := &models.Program{}
	err := row.Scan(&p.ID, &p.Name, &p.Department, &p.CostPerYear, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// Create inserts a program. Names collide case-insensitively.
func (r *ProgramRepository) Create(ctx context.Context, program *models.Program) error {
	program.Name = strings.TrimSpace(program.Name)

	sql, args, err := psql.Insert("programs").
		Columns("name", "department", "cost_per_year").
		Values(program.Name, program.Department, program.CostPerYear).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create program query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&program.ID, &program.CreatedAt, &program.UpdatedAt); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "programs_name_lower_key") {
			return apperrors.ErrProgramAlreadyExists
		}
		r.logger.Error().Err(err).Str("name", program.Name).Msg("Error creating program")
		return fmt.Errorf("error creating program: %w", err)
	}
	return nil
}

func (r *ProgramRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.Program, error) {
	sql, args, err := psql.Select(programColumns...).From("programs").Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get program query: %w", err)
	}

	program, err := scanProgram(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrProgramNotFound
		}
		return nil, fmt.Errorf("error retrieving program: %w", err)
	}
	return program, nil
}

// GetByID retrieves a program by ID
func (r *ProgramRepository) GetByID(ctx context.Context, id int64) (*models.Program, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// FindByName does a case-insensitive exact match on the canonical name
func (r *ProgramRepository) FindByName(ctx context.Context, name string) (*models.Program, error) {
	return r.getOne(ctx, squirrel.Expr("LOWER(name) = LOWER(?)", strings.TrimSpace(name)))
}

// List returns all programs ordered by name
func (r *ProgramRepository) List(ctx context.Context) ([]models.Program, error) {
	sql, args, err := psql.Select(programColumns...).From("programs").OrderBy("name").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list programs query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing programs: %w", err)
	}
	defer rows.Close()

	var programs []models.Program
	for rows.Next() {
		p, err := scanProgram(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning program: %w", err)
		}
		programs = append(programs, *p)
	}
	return programs, rows.Err()
}

// UpdateCost sets a new per-year cost and returns the updated program
func (r *ProgramRepository) UpdateCost(ctx context.Context, id int64, costPerYear float64) (*models.Program, error) {
	sql, args, err := psql.Update("programs").
		Set("cost_per_year", costPerYear).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(programColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update program cost query: %w", err)
	}

	program, err := scanProgram(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrProgramNotFound
		}
		return nil, fmt.Errorf("error updating program cost: %w", err)
	}
	return program, nil
}
