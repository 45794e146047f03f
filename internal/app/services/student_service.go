package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/uniportal/internal/app/auth"
	"github.com/yigit/uniportal/internal/app/models"
	"github.com/yigit/uniportal/internal/app/models/dto"
	"github.com/yigit/uniportal/internal/pkg/apperrors"
	pkgAuth "github.com/yigit/uniportal/internal/pkg/auth"
	"github.com/yigit/uniportal/internal/pkg/helpers"
	"github.com/yigit/uniportal/internal/pkg/validation"
)

// StudentService manages student records and their login accounts
type StudentService struct {
	students StudentStore
	users    UserStore
	audit    *AuditService
	logger   zerolog.Logger
}

// NewStudentService creates a new StudentService
func NewStudentService(students StudentStore, users UserStore, audit *AuditService, logger zerolog.Logger) *StudentService {
	return &StudentService{students: students, users: users, audit: audit, logger: logger}
}

// NormalizeAdmissionNumber trims and upper-cases an admission number
func NormalizeAdmissionNumber(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Create enrols a student. When an initial password is given the student's
// login account is created too.
func (s *StudentService) Create(ctx context.Context, actor auth.Principal, req *dto.CreateStudentRequest) (*models.Student, error) {
	admission := NormalizeAdmissionNumber(req.AdmissionNumber)
	if !validation.IsAdmissionNumber(admission) {
		return nil, apperrors.NewValidationError("admissionNumber", "admission number must look like ST/001/21")
	}

	var passwordHash string
	if req.InitialPassword != nil {
		if !validation.IsStrongPassword(*req.InitialPassword) {
			return nil, apperrors.ErrInvalidPassword
		}
		if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
			return nil, apperrors.ErrEmailAlreadyExists
		} else if !errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, err
		}

		hash, err := pkgAuth.HashPassword(*req.InitialPassword)
		if err != nil {
			return nil, err
		}
		passwordHash = hash
	}

	student := &models.Student{
		AdmissionNumber: admission,
		FullName:        strings.TrimSpace(req.FullName),
		Email:           strings.ToLower(strings.TrimSpace(req.Email)),
		CourseCode:      strings.TrimSpace(req.CourseCode),
		Department:      strings.TrimSpace(req.Department),
		YearOfStudy:     req.YearOfStudy,
		Intake:          strings.TrimSpace(req.Intake),
		IsActive:        true,
	}
	if passwordHash == "" {
		if err := s.students.Create(ctx, student); err != nil {
			return nil, err
		}
	} else {
		department := student.Department
		user := &models.User{
			Email:           student.Email,
			Password:        passwordHash,
			FullName:        student.FullName,
			UserType:        models.UserTypeStudent,
			Role:            models.RoleStudent,
			AdmissionNumber: &student.AdmissionNumber,
			Department:      &department,
			IsActive:        true,
		}
		if err := s.students.CreateWithAccount(ctx, student, user); err != nil {
			return nil, err
		}
	}

	s.logger.Info().Str("admissionNumber", admission).Bool("account", passwordHash != "").Msg("Student enrolled")
	s.audit.Record(ctx, actor, ActionStudentCreated, "student", admission, map[string]any{
		"courseCode":  student.CourseCode,
		"yearOfStudy": student.YearOfStudy,
		"account":     passwordHash != "",
	})
	return student, nil
}

// Get returns one student
func (s *StudentService) Get(ctx context.Context, admissionNumber string) (*models.Student, error) {
	return s.students.GetByAdmissionNumber(ctx, NormalizeAdmissionNumber(admissionNumber))
}

// List returns a filtered page of students
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter, page, size int) (*dto.StudentListResponse, error) {
	offset, limit := helpers.CalculateOffsetLimit(page, size)
	students, total, err := s.students.List(ctx, filter, offset, limit)
	if err != nil {
		return nil, err
	}
	return &dto.StudentListResponse{
		Students:   students,
		Pagination: helpers.NewPaginationInfo(total, page, size),
	}, nil
}

// Update changes a student's course, department or year of study
func (s *StudentService) Update(ctx context.Context, actor auth.Principal, admissionNumber string, req *dto.UpdateStudentRequest) (*models.Student, error) {
	student, err := s.Get(ctx, admissionNumber)
	if err != nil {
		return nil, err
	}

	changes := map[string]any{}
	if req.CourseCode != nil {
		student.CourseCode = strings.TrimSpace(*req.CourseCode)
		changes["courseCode"] = student.CourseCode
	}
	if req.Department != nil {
		student.Department = strings.TrimSpace(*req.Department)
		changes["department"] = student.Department
	}
	if req.YearOfStudy != nil {
		student.YearOfStudy = *req.YearOfStudy
		changes["yearOfStudy"] = student.YearOfStudy
	}
	if len(changes) == 0 {
		return student, nil
	}

	if err := s.students.Update(ctx, student); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, actor, ActionStudentUpdated, "student", student.AdmissionNumber, changes)
	return student, nil
}

// Deactivate marks the student inactive and disables their login account
func (s *StudentService) Deactivate(ctx context.Context, actor auth.Principal, admissionNumber string) (*models.Student, error) {
	student, err := s.Get(ctx, admissionNumber)
	if err != nil {
		return nil, err
	}
	if !student.IsActive {
		return student, nil
	}

	student.IsActive = false
	if err := s.students.Update(ctx, student); err != nil {
		return nil, err
	}
	if err := s.users.SetActiveByAdmissionNumber(ctx, student.AdmissionNumber, false); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actor, ActionStudentDeactivated, "student", student.AdmissionNumber, nil)
	return student, nil
}
