package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/uniportal/internal/app/models"
	"github.com/yigit/uniportal/internal/app/models/dto"
	"github.com/yigit/uniportal/internal/app/services"
	"github.com/yigit/uniportal/internal/middleware"
	"github.com/yigit/uniportal/internal/pkg/apperrors"
	"github.com/yigit/uniportal/internal/pkg/helpers"
)

// StudentController handles student records
type StudentController struct {
	studentService *services.StudentService
	logger         zerolog.Logger
}

// NewStudentController creates a new StudentController
func NewStudentController(studentService *services.StudentService, logger zerolog.Logger) *StudentController {
	return &StudentController{studentService: studentService, logger: logger}
}

// CreateStudent enrols a student
func (c *StudentController) CreateStudent(ctx *gin.Context) {
	p, ok := middleware.MustPrincipal(ctx)
	if !ok {
		return
	}

	var req dto.CreateStudentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	student, err := c.studentService.Create(ctx.Request.Context(), p, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, student)
}

// GetStudents lists students
func (c *StudentController) GetStudents(ctx *gin.Context) {
	var filter models.StudentFilter
	if v := ctx.Query("department"); v != "" {
		filter.Department = &v
	}
	if v := ctx.Query("courseCode"); v != "" {
		filter.CourseCode = &v
	}
	if v := ctx.Query("active"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			middleware.HandleAPIError(ctx, apperrors.NewValidationError("active", "active must be true or false"))
			return
		}
		filter.IsActive = &active
	}

	page, size := helpers.ParsePaginationParams(ctx)
	resp, err := c.studentService.List(ctx.Request.Context(), filter, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, resp)
}

// GetStudent returns one student
func (c *StudentController) GetStudent(ctx *gin.Context) {
	student, err := c.studentService.Get(ctx.Request.Context(), ctx.Param("admissionNumber"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, student)
}

// UpdateStudent changes a student's course, department or year
func (c *StudentController) UpdateStudent(ctx *gin.Context) {
	p, ok := middleware.MustPrincipal(ctx)
	if !ok {
		return
	}

	var req dto.UpdateStudentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	student, err := c.studentService.Update(ctx.Request.Context(), p, ctx.Param("admissionNumber"), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, student)
}

// DeactivateStudent marks a student inactive and disables their account
func (c *StudentController) DeactivateStudent(ctx *gin.Context) {
	p, ok := middleware.MustPrincipal(ctx)
	if !ok {
		return
	}

	student, err := c.studentService.Deactivate(ctx.Request.Context(), p, ctx.Param("admissionNumber"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	c.logger.Info().Str("admissionNumber", student.AdmissionNumber).Int64("by", p.UserID).Msg("Student deactivated")
	respond(ctx, http.StatusOK, student)
}
