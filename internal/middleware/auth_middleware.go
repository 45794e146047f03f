package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	appAuth "github.com/yigit/uniportal/internal/app/auth"
	"github.com/yigit/uniportal/internal/app/models"
	"github.com/yigit/uniportal/internal/app/models/dto"
	"github.com/yigit/uniportal/internal/pkg/apperrors"
	pkgAuth "github.com/yigit/uniportal/internal/pkg/auth"
)

const principalKey = "principal"

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	jwtService *pkgAuth.JWTService
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(jwtService *pkgAuth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{jwtService: jwtService}
}

func abortUnauthorized(c *gin.Context, code dto.ErrorCode, reason string) {
	detail := dto.NewErrorDetail(code, reason).
		WithSeverity(dto.ErrorSeverityWarning).
		WithHint("sign in and retry with a valid bearer token")
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(detail))
}

// JWTAuth validates the bearer access token and stores the caller's principal
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, dto.ErrorCodeUnauthorized, "Authorization header missing")
			return
		}

		tokenString, err := pkgAuth.ExtractBearerToken(authHeader)
		if err != nil {
			abortUnauthorized(c, dto.ErrorCodeUnauthorized, "Invalid token format")
			return
		}

		claims, err := m.jwtService.ValidateToken(tokenString, pkgAuth.PurposeAccess)
		if err != nil {
			if errors.Is(err, pkgAuth.ErrExpiredToken) {
				abortUnauthorized(c, dto.ErrorCodeExpiredToken, "Token has expired")
				return
			}
			abortUnauthorized(c, dto.ErrorCodeInvalidToken, "Invalid token")
			return
		}

		c.Set(principalKey, appAuth.Principal{
			UserID:          claims.UserID,
			Email:           claims.Email,
			UserType:        claims.UserType,
			Role:            claims.Role,
			AdmissionNumber: claims.AdmissionNumber,
		})
		c.Next()
	}
}

// RoleRequired only lets principals holding one of roles through
func (m *AuthMiddleware) RoleRequired(roles ...models.RoleType) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := GetPrincipal(c)
		if !ok {
			abortUnauthorized(c, dto.ErrorCodeUnauthorized, "User information not found")
			return
		}
		if err := appAuth.RequireRole(p, roles...); err != nil {
			HandleAPIError(c, err)
			return
		}
		c.Next()
	}
}

// SelfOrRoles lets a student reach their own records under the :param path segment,
// and any principal holding one of roles reach everyone's.
func (m *AuthMiddleware) SelfOrRoles(param string, roles ...models.RoleType) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := GetPrincipal(c)
		if !ok {
			abortUnauthorized(c, dto.ErrorCodeUnauthorized, "User information not found")
			return
		}
		if err := appAuth.CanActForStudent(p, c.Param(param), roles...); err != nil {
			HandleAPIError(c, err)
			return
		}
		c.Next()
	}
}

// GetPrincipal returns the principal stored by JWTAuth
func GetPrincipal(c *gin.Context) (appAuth.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return appAuth.Principal{}, false
	}
	p, ok := v.(appAuth.Principal)
	return p, ok
}

// MustPrincipal is GetPrincipal for handlers mounted behind JWTAuth. It writes a 401
// and returns false when the principal is missing.
func MustPrincipal(c *gin.Context) (appAuth.Principal, bool) {
	p, ok := GetPrincipal(c)
	if !ok {
		HandleAPIError(c, apperrors.ErrTokenInvalid)
	}
	return p, ok
}
