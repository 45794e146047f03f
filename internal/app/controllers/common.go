// Package controllers handles HTTP request handling
package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yigit/uniportal/internal/app/models/dto"
	"github.com/yigit/uniportal/internal/middleware"
	"github.com/yigit/uniportal/internal/pkg/apperrors"
)

func respond(ctx *gin.Context, status int, data interface{}) {
	ctx.JSON(status, dto.NewSuccessResponse(data))
}

// parseIDParam reads a positive integer path parameter, writing a 400 when it is not one
func parseIDParam(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError(name, name+" must be a positive integer"))
		return 0, false
	}
	return id, true
}

// optionalInt64Query reads an optional positive integer query parameter
func optionalInt64Query(ctx *gin.Context, name string) (*int64, bool) {
	raw, ok := ctx.GetQuery(name)
	if !ok || raw == "" {
		return nil, true
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError(name, name+" must be a positive integer"))
		return nil, false
	}
	return &v, true
}
