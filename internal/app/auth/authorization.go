package auth

import (
	"strings"

	"github.com/yigit/uniportal/internal/app/models"
	"github.com/yigit/uniportal/internal/pkg/apperrors"
)

// Principal is the authenticated caller, taken from access token claims
type Principal struct {
	UserID          int64
	Email           string
	UserType        models.UserType
	Role            models.RoleType
	AdmissionNumber string
}

// Recipient is the notification inbox owned by the principal
func (p Principal) Recipient() models.Recipient {
	return models.Recipient{ID: p.UserID, Type: p.UserType}
}

// HasRole reports whether the principal holds any of roles
func (p Principal) HasRole(roles ...models.RoleType) bool {
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}

// RequireRole returns a permission error unless the principal holds one of roles
func RequireRole(p Principal, roles ...models.RoleType) error {
	if p.HasRole(roles...) {
		return nil
	}
	return apperrors.NewForbiddenError("your role is not allowed to perform this action")
}

// CanActForStudent allows the student themself plus the given staff roles
func CanActForStudent(p Principal, admissionNumber string, staffRoles ...models.RoleType) error {
	if p.HasRole(staffRoles...) {
		return nil
	}
	if p.Role == models.RoleStudent && p.AdmissionNumber != "" && strings.EqualFold(p.AdmissionNumber, admissionNumber) {
		return nil
	}
	return apperrors.NewForbiddenError("you cannot act on behalf of this student")
}
