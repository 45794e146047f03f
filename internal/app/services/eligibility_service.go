package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/uniportal/internal/app/fees"
	"github.com/yigit/uniportal/internal/app/models/dto"
	"github.com/yigit/uniportal/internal/pkg/apperrors"
	"github.com/yigit/uniportal/internal/pkg/metrics"
)

// Eligibility outcomes, used as metric labels
const (
	OutcomeEligible     = "eligible"
	OutcomeBlocked      = "blocked"
	OutcomeUndetermined = "undetermined"
)

// EligibilityQuery selects the student to check. CourseCode and YearOfStudy
// override the student's record when set.
type EligibilityQuery struct {
	AdmissionNumber string
	CourseCode      string
	YearOfStudy     *int
}

// EligibilityService computes fee statements and the registration decision
type EligibilityService struct {
	students  StudentStore
	programs  *ProgramService
	payments  *PaymentService
	threshold float64
	metrics   *metrics.Metrics
	logger    zerolog.Logger
}

// NewEligibilityService creates a new EligibilityService
func NewEligibilityService(
	students StudentStore,
	programs *ProgramService,
	payments *PaymentService,
	threshold float64,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *EligibilityService {
	return &EligibilityService{
		students:  students,
		programs:  programs,
		payments:  payments,
		threshold: threshold,
		metrics:   m,
		logger:    logger,
	}
}

// Check builds the fee statement for a student
func (s *EligibilityService) Check(ctx context.Context, q EligibilityQuery) (*dto.EligibilityResponse, error) {
	student, err := s.students.GetByAdmissionNumber(ctx, NormalizeAdmissionNumber(q.AdmissionNumber))
	if err != nil {
		return nil, err
	}

	courseCode := strings.TrimSpace(q.CourseCode)
	if courseCode == "" {
		courseCode = student.CourseCode
	}
	year := student.YearOfStudy
	if q.YearOfStudy != nil {
		year = *q.YearOfStudy
	}
	if year < 1 {
		return nil, apperrors.NewValidationError("yearOfStudy", "year of study must be at least 1")
	}

	resolved, err := s.programs.Resolve(ctx, courseCode)
	if err != nil {
		return nil, err
	}
	amounts, err := s.payments.Amounts(ctx, student.AdmissionNumber)
	if err != nil {
		return nil, err
	}

	st := fees.Compute(resolved.CostPerYear, year, amounts, s.threshold)

	outcome := OutcomeEligible
	switch {
	case !st.FeesDetermined:
		outcome = OutcomeUndetermined
	case !st.CanRegister:
		outcome = OutcomeBlocked
	}
	s.metrics.EligibilityChecks.WithLabelValues(outcome).Inc()
	s.logger.Debug().
		Str("admissionNumber", student.AdmissionNumber).
		Str("courseCode", courseCode).
		Float64("balance", st.Balance).
		Str("outcome", outcome).
		Msg("Eligibility checked")

	resp := &dto.EligibilityResponse{
		AdmissionNumber: student.AdmissionNumber,
		CourseCode:      courseCode,
		ProgramName:     resolved.CanonicalName,
		YearOfStudy:     st.YearOfStudy,
		ProgramCost:     st.ProgramCost,
		TotalPaid:       st.TotalPaid,
		CanRegister:     st.CanRegister,
		FeesDetermined:  st.FeesDetermined,
		FeeThreshold:    st.FeeThreshold,
	}
	if st.FeesDetermined {
		resp.TotalFees = &st.TotalFees
		resp.Balance = &st.Balance
	}
	return resp, nil
}
