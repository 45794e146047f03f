package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yigit/uniportal/internal/app/models"
	"github.com/yigit/uniportal/internal/pkg/apperrors"
)

func TestCanActForStudent_StaffOrSelf(t *testing.T) {
	student := Principal{UserID: 7, UserType: models.UserTypeStudent, Role: models.RoleStudent, AdmissionNumber: "ST/001/21"}
	finance := Principal{UserID: 2, UserType: models.UserTypeStaff, Role: models.RoleFinance}

	tests := []struct {
		name      string
		principal Principal
		admission string
		allowed   bool
	}{
		{"student reads self", student, "ST/001/21", true},
		{"student reads self case-insensitively", student, "st/001/21", true},
		{"student reads other", student, "ST/002/21", false},
		{"staff reads any", finance, "ST/002/21", true},
		{"student without admission number", Principal{Role: models.RoleStudent}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanActForStudent(tt.principal, tt.admission, models.StaffRoles...)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
			}
		})
	}
}

func TestCanActForStudent(t *testing.T) {
	registrar := Principal{Role: models.RoleRegistrar}
	trainer := Principal{Role: models.RoleTrainer}
	student := Principal{Role: models.RoleStudent, AdmissionNumber: "ST/001/21"}

	assert.NoError(t, CanActForStudent(registrar, "ST/009/22", models.RoleRegistrar))
	assert.ErrorIs(t, CanActForStudent(trainer, "ST/009/22", models.RoleRegistrar), apperrors.ErrPermissionDenied)
	assert.NoError(t, CanActForStudent(student, "ST/001/21", models.RoleRegistrar))
	assert.ErrorIs(t, CanActForStudent(student, "ST/009/22", models.RoleRegistrar), apperrors.ErrPermissionDenied)
}

func TestRequireRole(t *testing.T) {
	p := Principal{Role: models.RoleHOD}
	assert.NoError(t, RequireRole(p, models.RoleHOD, models.RoleAdmin))
	assert.ErrorIs(t, RequireRole(p, models.RoleFinance), apperrors.ErrPermissionDenied)
	assert.Equal(t, models.Recipient{ID: 3, Type: models.UserTypeStaff}, Principal{UserID: 3, UserType: models.UserTypeStaff}.Recipient())
}
