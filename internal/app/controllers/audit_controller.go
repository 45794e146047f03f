package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/uniportal/internal/app/models"
	"github.com/yigit/uniportal/internal/app/services"
	"github.com/yigit/uniportal/internal/middleware"
	"github.com/yigit/uniportal/internal/pkg/helpers"
)

// AuditController exposes the audit trail
type AuditController struct {
	auditService *services.AuditService
}

// NewAuditController creates a new AuditController
func NewAuditController(auditService *services.AuditService) *AuditController {
	return &AuditController{auditService: auditService}
}

// GetAuditLogs lists audit entries, newest first
func (c *AuditController) GetAuditLogs(ctx *gin.Context) {
	actorID, ok := optionalInt64Query(ctx, "actorId")
	if !ok {
		return
	}
	filter := models.AuditFilter{ActorID: actorID}
	if action := ctx.Query("action"); action != "" {
		filter.Action = &action
	}

	page, size := helpers.ParsePaginationParams(ctx)
	resp, err := c.auditService.List(ctx.Request.Context(), filter, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, resp)
}
