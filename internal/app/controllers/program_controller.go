package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/uniportal/internal/app/catalog"
	"github.com/yigit/uniportal/internal/app/models/dto"
	"github.com/yigit/uniportal/internal/app/services"
	"github.com/yigit/uniportal/internal/middleware"
	"github.com/yigit/uniportal/internal/pkg/apperrors"
)

// ProgramController handles programs, their costs and the course-code catalog
type ProgramController struct {
	programService *services.ProgramService
	logger         zerolog.Logger
}

// NewProgramController creates a new ProgramController
func NewProgramController(programService *services.ProgramService, logger zerolog.Logger) *ProgramController {
	return &ProgramController{programService: programService, logger: logger}
}

// CreateProgram registers a program and its per-year cost
func (c *ProgramController) CreateProgram(ctx *gin.Context) {
	p, ok := middleware.MustPrincipal(ctx)
	if !ok {
		return
	}

	var req dto.CreateProgramRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	program, err := c.programService.Create(ctx.Request.Context(), p, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, program)
}

// GetPrograms lists all programs
func (c *ProgramController) GetPrograms(ctx *gin.Context) {
	programs, err := c.programService.List(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, programs)
}

// GetProgram returns one program
func (c *ProgramController) GetProgram(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	program, err := c.programService.Get(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, program)
}

// UpdateProgramCost changes a program's per-year cost
func (c *ProgramController) UpdateProgramCost(ctx *gin.Context) {
	p, ok := middleware.MustPrincipal(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateProgramCostRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	program, err := c.programService.UpdateCost(ctx.Request.Context(), p, id, req.CostPerYear)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, program)
}

// ResolveCost resolves a course code to its program and per-year cost. An unknown
// course answers 200 with a null cost and known=false.
func (c *ProgramController) ResolveCost(ctx *gin.Context) {
	code := ctx.Query("courseCode")
	if code == "" {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("courseCode", "courseCode is required"))
		return
	}

	resp, err := c.programService.Resolve(ctx.Request.Context(), code)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, resp)
}

// GetAliases returns the course-code alias table
func (c *ProgramController) GetAliases(ctx *gin.Context) {
	respond(ctx, http.StatusOK, dto.AliasTableResponse{
		Version: catalog.AliasTableVersion,
		Aliases: catalog.Aliases(),
	})
}
