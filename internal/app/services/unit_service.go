package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/uniportal/internal/app/auth"
	"github.com/yigit/uniportal/internal/app/models"
	"github.com/yigit/uniportal/internal/app/models/dto"
	"github.com/yigit/uniportal/internal/pkg/apperrors"
)

// UnitService registers students for units and assigns trainers to units
type UnitService struct {
	units         UnitStore
	students      StudentStore
	users         UserStore
	eligibility   *EligibilityService
	notifications *NotificationService
	audit         *AuditService
	logger        zerolog.Logger
	now           func() time.Time
}

// NewUnitService creates a new UnitService
func NewUnitService(
	units UnitStore,
	students StudentStore,
	users UserStore,
	eligibility *EligibilityService,
	notifications *NotificationService,
	audit *AuditService,
	logger zerolog.Logger,
) *UnitService {
	return &UnitService{
		units:         units,
		students:      students,
		users:         users,
		eligibility:   eligibility,
		notifications: notifications,
		audit:         audit,
		logger:        logger,
		now:           time.Now,
	}
}

func normalizeUnit(unitCode, period string) (string, string, error) {
	unitCode = strings.ToUpper(strings.TrimSpace(unitCode))
	period = strings.ToUpper(strings.TrimSpace(period))
	if unitCode == "" {
		return "", "", apperrors.NewValidationError("unitCode", "unit code is required")
	}
	if period == "" {
		return "", "", apperrors.NewValidationError("academicPeriod", "academic period is required")
	}
	return unitCode, period, nil
}

// Register adds a unit registration after the fee eligibility gate. Undetermined
// fees and an outstanding balance at or above the threshold both refuse.
func (s *UnitService) Register(ctx context.Context, actor auth.Principal, admissionNumber string, req *dto.RegisterUnitRequest) (*models.UnitRegistration, error) {
	unitCode, period, err := normalizeUnit(req.UnitCode, req.AcademicPeriod)
	if err != nil {
		return nil, err
	}

	student, err := s.students.GetByAdmissionNumber(ctx, NormalizeAdmissionNumber(admissionNumber))
	if err != nil {
		return nil, err
	}
	if !student.IsActive {
		return nil, apperrors.NewCustomError(apperrors.ErrStudentInactive, "inactive students cannot register for units").
			WithHint("contact the registrar")
	}

	st, err := s.eligibility.Check(ctx, EligibilityQuery{AdmissionNumber: student.AdmissionNumber})
	if err != nil {
		return nil, err
	}
	if !st.FeesDetermined {
		return nil, apperrors.NewCustomError(apperrors.ErrFeesUndetermined,
			fmt.Sprintf("cannot determine fees for course %q", st.CourseCode)).
			WithHint(apperrors.HintContactFinance)
	}
	if !st.CanRegister {
		return nil, apperrors.NewCustomError(apperrors.ErrRegistrationBlocked,
			fmt.Sprintf("outstanding balance of %.2f must be below %.2f to register", *st.Balance, st.FeeThreshold)).
			WithHint(apperrors.HintClearBalance).
			WithDetails(map[string]interface{}{"balance": st.Balance, "feeThreshold": st.FeeThreshold})
	}

	reg := &models.UnitRegistration{
		AdmissionNumber: student.AdmissionNumber,
		UnitCode:        unitCode,
		AcademicPeriod:  period,
		CreatedAt:       s.now(),
	}
	if err := s.units.CreateRegistration(ctx, reg); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actor, ActionUnitRegistered, "unit_registration", strconv.FormatInt(reg.ID, 10), map[string]any{
		"admissionNumber": reg.AdmissionNumber,
		"unitCode":        reg.UnitCode,
		"academicPeriod":  reg.AcademicPeriod,
	})
	return reg, nil
}

// ListRegistrations returns a student's unit registrations
func (s *UnitService) ListRegistrations(ctx context.Context, admissionNumber string) ([]models.UnitRegistration, error) {
	return s.units.ListRegistrations(ctx, NormalizeAdmissionNumber(admissionNumber))
}

// Assign gives a trainer a unit for an academic period and notifies them
func (s *UnitService) Assign(ctx context.Context, actor auth.Principal, req *dto.AssignUnitRequest) (*models.UnitAssignment, error) {
	unitCode, period, err := normalizeUnit(req.UnitCode, req.AcademicPeriod)
	if err != nil {
		return nil, err
	}

	trainer, err := s.users.GetByID(ctx, req.TrainerID)
	if err != nil {
		return nil, err
	}
	if trainer.Role != models.RoleTrainer || !trainer.IsActive {
		return nil, apperrors.NewValidationError("trainerId", "user is not an active trainer")
	}

	a := &models.UnitAssignment{
		TrainerID:      trainer.ID,
		UnitCode:       unitCode,
		AcademicPeriod: period,
		AssignedBy:     actor.UserID,
		CreatedAt:      s.now(),
	}
	if err := s.units.CreateAssignment(ctx, a); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actor, ActionUnitAssigned, "unit_assignment", strconv.FormatInt(a.ID, 10), map[string]any{
		"trainerId":      a.TrainerID,
		"unitCode":       a.UnitCode,
		"academicPeriod": a.AcademicPeriod,
	})
	s.notifications.Notify(ctx, NotificationInput{
		Recipient: models.Recipient{ID: trainer.ID, Type: trainer.UserType},
		Title:     "New unit assignment",
		Message:   fmt.Sprintf("You have been assigned %s for %s.", a.UnitCode, a.AcademicPeriod),
		Category:  models.CategoryAssignment,
	})
	return a, nil
}

// Unassign removes an assignment and notifies the trainer
func (s *UnitService) Unassign(ctx context.Context, actor auth.Principal, id int64) error {
	a, err := s.units.DeleteAssignment(ctx, id)
	if err != nil {
		return err
	}

	s.audit.Record(ctx, actor, ActionUnitUnassigned, "unit_assignment", strconv.FormatInt(a.ID, 10), map[string]any{
		"trainerId": a.TrainerID,
		"unitCode":  a.UnitCode,
	})
	s.notifications.Notify(ctx, NotificationInput{
		Recipient: models.Recipient{ID: a.TrainerID, Type: models.UserTypeStaff},
		Title:     "Unit assignment removed",
		Message:   fmt.Sprintf("You are no longer assigned %s for %s.", a.UnitCode, a.AcademicPeriod),
		Category:  models.CategoryAssignment,
	})
	return nil
}

// ListAssignments returns assignments, optionally for one trainer
func (s *UnitService) ListAssignments(ctx context.Context, trainerID *int64) ([]models.UnitAssignment, error) {
	return s.units.ListAssignments(ctx, trainerID)
}
