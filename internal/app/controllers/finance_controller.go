package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/uniportal/internal/app/models/dto"
	"github.com/yigit/uniportal/internal/app/services"
	"github.com/yigit/uniportal/internal/middleware"
	"github.com/yigit/uniportal/internal/pkg/apperrors"
)

// FinanceController handles payments and fee eligibility
type FinanceController struct {
	paymentService     *services.PaymentService
	eligibilityService *services.EligibilityService
	logger             zerolog.Logger
}

// NewFinanceController creates a new FinanceController
func NewFinanceController(paymentService *services.PaymentService, eligibilityService *services.EligibilityService, logger zerolog.Logger) *FinanceController {
	return &FinanceController{
		paymentService:     paymentService,
		eligibilityService: eligibilityService,
		logger:             logger,
	}
}

// RecordPayment records a fee payment for a student
func (c *FinanceController) RecordPayment(ctx *gin.Context) {
	p, ok := middleware.MustPrincipal(ctx)
	if !ok {
		return
	}

	var req dto.RecordPaymentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	payment, err := c.paymentService.Record(ctx.Request.Context(), p, ctx.Param("admissionNumber"), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().
		Str("admissionNumber", payment.AdmissionNumber).
		Float64("amount", payment.Amount).
		Str("mode", string(payment.Mode)).
		Int64("recordedBy", p.UserID).
		Msg("Payment recorded")
	respond(ctx, http.StatusCreated, payment)
}

// GetPayments lists a student's payments with their total
func (c *FinanceController) GetPayments(ctx *gin.Context) {
	summary, err := c.paymentService.Aggregate(ctx.Request.Context(), ctx.Param("admissionNumber"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, summary)
}

// GetEligibility returns the student's fee statement and registration decision.
// courseCode and yearOfStudy override the student's record when given.
func (c *FinanceController) GetEligibility(ctx *gin.Context) {
	q := services.EligibilityQuery{
		AdmissionNumber: ctx.Param("admissionNumber"),
		CourseCode:      ctx.Query("courseCode"),
	}
	if raw := ctx.Query("yearOfStudy"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			middleware.HandleAPIError(ctx, apperrors.NewValidationError("yearOfStudy", "yearOfStudy must be a whole number"))
			return
		}
		q.YearOfStudy = &year
	}

	resp, err := c.eligibilityService.Check(ctx.Request.Context(), q)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, resp)
}
