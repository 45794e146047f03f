package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/uniportal/internal/app/models"
	"github.com/yigit/uniportal/internal/app/models/dto"
	"github.com/yigit/uniportal/internal/app/services"
	"github.com/yigit/uniportal/internal/middleware"
	"github.com/yigit/uniportal/internal/pkg/helpers"
)

// NotificationController handles the caller's notification inbox
type NotificationController struct {
	notificationService *services.NotificationService
	logger              zerolog.Logger
}

// NewNotificationController creates a new NotificationController
func NewNotificationController(notificationService *services.NotificationService, logger zerolog.Logger) *NotificationController {
	return &NotificationController{notificationService: notificationService, logger: logger}
}

// GetNotifications lists the caller's notifications, newest first
func (c *NotificationController) GetNotifications(ctx *gin.Context) {
	p, ok := middleware.MustPrincipal(ctx)
	if !ok {
		return
	}

	page, size := helpers.ParsePaginationParams(ctx)
	resp, err := c.notificationService.List(ctx.Request.Context(), p.Recipient(), page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, resp)
}

// MarkRead marks one of the caller's notifications read
func (c *NotificationController) MarkRead(ctx *gin.Context) {
	p, ok := middleware.MustPrincipal(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.notificationService.MarkRead(ctx.Request.Context(), p.Recipient(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// MarkAllRead marks every unread notification of the caller read
func (c *NotificationController) MarkAllRead(ctx *gin.Context) {
	p, ok := middleware.MustPrincipal(ctx)
	if !ok {
		return
	}

	n, err := c.notificationService.MarkAllRead(ctx.Request.Context(), p.Recipient())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, dto.MarkAllReadResponse{Updated: n})
}

// CreateNotification lets staff notify one recipient
func (c *NotificationController) CreateNotification(ctx *gin.Context) {
	var req dto.CreateNotificationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	n, err := c.notificationService.Create(ctx.Request.Context(), services.NotificationInput{
		Recipient: models.Recipient{ID: req.RecipientID, Type: req.RecipientType},
		Title:     req.Title,
		Message:   req.Message,
		Category:  req.Category,
		ExpiresAt: req.ExpiresAt,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, n)
}
