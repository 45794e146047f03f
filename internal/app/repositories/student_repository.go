package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/yigit/uniportal/internal/app/models"
	"github.com/yigit/uniportal/internal/db"
	"github.com/yigit/uniportal/internal/pkg/apperrors"
	"github.com/yigit/uniportal/internal/pkg/dberrors"
)

var studentColumns = []string{
	"id", "admission_number", "full_name", "email", "course_code", "department",
	"year_of_study", "intake", "is_active", "created_at", "updated_at",
}

// StudentRepository handles student record database operations
type StudentRepository struct {
	database *db.PostgresDB
	db       db.Querier
	logger   zerolog.Logger
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(database *db.PostgresDB, log zerolog.Logger) *StudentRepository {
	return &StudentRepository{
		database: database,
		db:       database.Pool,
		logger:   log.With().Str("repository", "students").Logger(),
	}
}

func scanStudent(row interface{ Scan(...any) error }) (*models.Student, error) {
	s := &models.Student{}
	err := row.Scan(
		&s.ID, &s.AdmissionNumber, &s.FullName, &s.Email, &s.CourseCode, &s.Department,
		&s.YearOfStudy, &s.Intake, &s.IsActive, &s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

// Create inserts a student record
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	return r.insert(ctx, r.db, student)
}

// CreateWithAccount inserts a student record and its login account in one
// transaction. Neither row is kept when either insert fails.
func (r *StudentRepository) CreateWithAccount(ctx context.Context, student *models.Student, user *models.User) error {
	return r.database.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := r.insert(ctx, tx, student); err != nil {
			return err
		}
		return NewUserRepository(tx, r.logger).Create(ctx, user)
	})
}

func (r *StudentRepository) insert(ctx context.Context, q db.Querier, student *models.Student) error {
	sql, args, err := psql.Insert("students").
		Columns("admission_number", "full_name", "email", "course_code", "department", "year_of_study", "intake", "is_active").
		Values(student.AdmissionNumber, student.FullName, student.Email, student.CourseCode,
			student.Department, student.YearOfStudy, student.Intake, student.IsActive).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create student query: %w", err)
	}

	if err := q.QueryRow(ctx, sql, args...).Scan(&student.ID, &student.CreatedAt, &student.UpdatedAt); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "students_admission_number_key") {
			return apperrors.ErrAdmissionNumberUsed
		}
		r.logger.Error().Err(err).Str("admissionNumber", student.AdmissionNumber).Msg("Error creating student")
		return fmt.Errorf("error creating student: %w", err)
	}
	return nil
}

// GetByAdmissionNumber retrieves a student by admission number
func (r *StudentRepository) GetByAdmissionNumber(ctx context.Context, admissionNumber string) (*models.Student, error) {
	sql, args, err := psql.Select(studentColumns...).
		From("students").
		Where(squirrel.Eq{"admission_number": admissionNumber}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get student query: %w", err)
	}

	student, err := scanStudent(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrStudentNotFound
		}
		return nil, fmt.Errorf("error retrieving student: %w", err)
	}
	return student, nil
}

func applyStudentFilter(b squirrel.SelectBuilder, f models.StudentFilter) squirrel.SelectBuilder {
	if f.Department != nil {
		b = b.Where(squirrel.Expr("LOWER(department) = LOWER(?)", *f.Department))
	}
	if f.CourseCode != nil {
		b = b.Where(squirrel.Expr("LOWER(course_code) = LOWER(?)", *f.CourseCode))
	}
	if f.IsActive != nil {
		b = b.Where(squirrel.Eq{"is_active": *f.IsActive})
	}
	return b
}

// List returns one page of students ordered by admission number, plus the total count
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter, offset, limit uint64) ([]models.Student, int64, error) {
	countSQL, countArgs, err := applyStudentFilter(psql.Select("COUNT(*)").From("students"), filter).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count students query: %w", err)
	}

	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting students: %w", err)
	}

	sql, args, err := applyStudentFilter(psql.Select(studentColumns...).From("students"), filter).
		OrderBy("admission_number").
		Offset(offset).
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list students query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing students: %w", err)
	}
	defer rows.Close()

	students := make([]models.Student, 0, limit)
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning student: %w", err)
		}
		students = append(students, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating students: %w", err)
	}
	return students, total, nil
}

// Update persists course, department, year of study and active flag
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	sql, args, err := psql.Update("students").
		Set("course_code", student.CourseCode).
		Set("department", student.Department).
		Set("year_of_study", student.YearOfStudy).
		Set("is_active", student.IsActive).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"admission_number": student.AdmissionNumber}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update student query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&student.UpdatedAt); err != nil {
		if dberrors.IsNoRows(err) {
			return apperrors.ErrStudentNotFound
		}
		return fmt.Errorf("error updating student: %w", err)
	}
	return nil
}
