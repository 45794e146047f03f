package services

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/uniportal/internal/app/auth"
	"github.com/yigit/uniportal/internal/app/catalog"
	"github.com/yigit/uniportal/internal/app/models"
	"github.com/yigit/uniportal/internal/app/models/dto"
	"github.com/yigit/uniportal/internal/pkg/apperrors"
)

// ProgramService resolves course codes to program costs and manages programs
type ProgramService struct {
	repo   ProgramStore
	audit  *AuditService
	logger zerolog.Logger
}

// NewProgramService creates a new ProgramService
func NewProgramService(repo ProgramStore, audit *AuditService, logger zerolog.Logger) *ProgramService {
	return &ProgramService{repo: repo, audit: audit, logger: logger}
}

// ResolveCost returns the per-year cost of the program a course code maps to.
// An unknown code or a missing program yields (nil, nil); only storage failures
// are errors.
func (s *ProgramService) ResolveCost(ctx context.Context, courseCode string) (*float64, error) {
	res, err := s.Resolve(ctx, courseCode)
	if err != nil {
		return nil, err
	}
	return res.CostPerYear, nil
}

// Resolve is ResolveCost plus the canonical name the code mapped to
func (s *ProgramService) Resolve(ctx context.Context, courseCode string) (*dto.ProgramCostResponse, error) {
	res := &dto.ProgramCostResponse{CourseCode: courseCode}

	name, ok := catalog.CanonicalName(courseCode)
	if !ok {
		return res, nil
	}
	res.CanonicalName = name

	program, err := s.repo.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, apperrors.ErrProgramNotFound) {
			s.logger.Debug().Str("courseCode", courseCode).Str("canonicalName", name).Msg("No program for course code")
			return res, nil
		}
		return nil, err
	}

	cost := program.CostPerYear
	res.CostPerYear = &cost
	res.Known = true
	return res, nil
}

// Create registers a program
func (s *ProgramService) Create(ctx context.Context, actor auth.Principal, req *dto.CreateProgramRequest) (*models.Program, error) {
	name := strings.Join(strings.Fields(req.Name), " ")
	if name == "" {
		return nil, apperrors.NewValidationError("name", "program name is required")
	}
	cost, err := validCost(req.CostPerYear)
	if err != nil {
		return nil, err
	}

	program := &models.Program{
		Name:        name,
		Department:  strings.TrimSpace(req.Department),
		CostPerYear: cost,
	}
	if err := s.repo.Create(ctx, program); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actor, ActionProgramCreated, "program", strconv.FormatInt(program.ID, 10), map[string]any{
		"name":        program.Name,
		"costPerYear": program.CostPerYear,
	})
	return program, nil
}

// Get returns one program
func (s *ProgramService) Get(ctx context.Context, id int64) (*models.Program, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns every program ordered by name
func (s *ProgramService) List(ctx context.Context) ([]models.Program, error) {
	return s.repo.List(ctx)
}

// UpdateCost changes a program's per-year cost
func (s *ProgramService) UpdateCost(ctx context.Context, actor auth.Principal, id int64, costPerYear float64) (*models.Program, error) {
	cost, err := validCost(costPerYear)
	if err != nil {
		return nil, err
	}

	before, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	program, err := s.repo.UpdateCost(ctx, id, cost)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actor, ActionProgramCostUpdated, "program", strconv.FormatInt(id, 10), map[string]any{
		"from": before.CostPerYear,
		"to":   program.CostPerYear,
	})
	return program, nil
}

func validCost(cost float64) (float64, error) {
	if math.IsNaN(cost) || math.IsInf(cost, 0) || cost <= 0 {
		return 0, apperrors.NewValidationError("costPerYear", "cost per year must be greater than zero")
	}
	return math.Round(cost*100) / 100, nil
}
