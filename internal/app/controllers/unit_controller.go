package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/uniportal/internal/app/models"
	"github.com/yigit/uniportal/internal/app/models/dto"
	"github.com/yigit/uniportal/internal/app/services"
	"github.com/yigit/uniportal/internal/middleware"
)

// UnitController handles unit registrations and trainer assignments
type UnitController struct {
	unitService *services.UnitService
	logger      zerolog.Logger
}

// NewUnitController creates a new UnitController
func NewUnitController(unitService *services.UnitService, logger zerolog.Logger) *UnitController {
	return &UnitController{unitService: unitService, logger: logger}
}

// RegisterUnit registers the student for a unit after the fee check
func (c *UnitController) RegisterUnit(ctx *gin.Context) {
	p, ok := middleware.MustPrincipal(ctx)
	if !ok {
		return
	}

	var req dto.RegisterUnitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	reg, err := c.unitService.Register(ctx.Request.Context(), p, ctx.Param("admissionNumber"), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, reg)
}

// GetRegistrations lists a student's unit registrations
func (c *UnitController) GetRegistrations(ctx *gin.Context) {
	regs, err := c.unitService.ListRegistrations(ctx.Request.Context(), ctx.Param("admissionNumber"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, regs)
}

// AssignUnit assigns a trainer to a unit
func (c *UnitController) AssignUnit(ctx *gin.Context) {
	p, ok := middleware.MustPrincipal(ctx)
	if !ok {
		return
	}

	var req dto.AssignUnitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	a, err := c.unitService.Assign(ctx.Request.Context(), p, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, a)
}

// UnassignUnit removes a trainer assignment
func (c *UnitController) UnassignUnit(ctx *gin.Context) {
	p, ok := middleware.MustPrincipal(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.unitService.Unassign(ctx.Request.Context(), p, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// GetAssignments lists trainer assignments. Trainers only see their own.
func (c *UnitController) GetAssignments(ctx *gin.Context) {
	p, ok := middleware.MustPrincipal(ctx)
	if !ok {
		return
	}
	trainerID, ok := optionalInt64Query(ctx, "trainerId")
	if !ok {
		return
	}
	if p.Role == models.RoleTrainer {
		trainerID = &p.UserID
	}

	list, err := c.unitService.ListAssignments(ctx.Request.Context(), trainerID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, list)
}
