package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/yigit/uniportal/internal/app/models/dto"
	"github.com/yigit/uniportal/internal/pkg/validation"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := validation.Register(v); err != nil {
			panic("middleware: registering validators: " + err.Error())
		}
	}
}

// HandleValidationError reports a binding failure as a 400 with one entry per invalid field
func HandleValidationError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError

	detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request").
		WithSeverity(dto.ErrorSeverityWarning)
	switch {
	case errors.As(err, &verrs):
		fields := dto.NewValidationErrors()
		for _, fe := range verrs {
			fields.AddError(jsonFieldName(fe), formatValidationError(fe))
		}
		if len(fields.Errors) == 1 {
			detail.Message = fields.Errors[0].Message
			detail.WithField(fields.Errors[0].Field)
		} else {
			detail.WithDetails(map[string]any{"fields": fields.Errors})
		}
	case errors.As(err, &typeErr):
		detail.Message = typeErr.Field + " has the wrong type"
		detail.WithField(typeErr.Field)
	case errors.Is(err, io.EOF):
		detail.Message = "Request body is required"
	case errors.As(err, &syntaxErr):
		detail.Message = "Malformed JSON body"
	default:
		detail.Message = "Invalid request body"
	}

	c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
}

// jsonFieldName lower-cases the first letter of the struct field, matching the json tags
func jsonFieldName(fe validator.FieldError) string {
	name := fe.Field()
	if name == "" {
		return name
	}
	if strings.HasSuffix(name, "ID") {
		name = strings.TrimSuffix(name, "ID") + "Id"
	}
	return strings.ToLower(name[:1]) + name[1:]
}

// formatValidationError creates a human-readable validation error message
func formatValidationError(e validator.FieldError) string {
	field := jsonFieldName(e)
	switch e.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return field + " must be at least " + e.Param()
	case "max":
		return field + " must be at most " + e.Param()
	case "gt":
		return field + " must be greater than " + e.Param()
	case "email":
		return field + " must be a valid email address"
	case "oneof":
		return field + " must be one of: " + e.Param()
	case "numeric":
		return field + " must contain only digits"
	case "len":
		return field + " must be exactly " + e.Param() + " characters"
	case validation.TagAdmissionNumber:
		return field + " must look like ST/001/21"
	case validation.TagPassword:
		return field + " must be at least 8 characters with a letter and a digit"
	default:
		return field + " validation failed: " + e.Tag()
	}
}
