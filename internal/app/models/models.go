package models

// UserType partitions accounts into the three identity tables a recipient or
// password-reset subject can belong to.
type UserType string

const (
	UserTypeStudent UserType = "STUDENT"
	UserTypeStaff   UserType = "STAFF"
	UserTypeAdmin   UserType = "ADMIN"
)

// Valid reports whether t is a known user type.
func (t UserType) Valid() bool {
	switch t {
	case UserTypeStudent, UserTypeStaff, UserTypeAdmin:
		return true
	}
	return false
}

// RoleType defines the user role carried in access tokens
type RoleType string

const (
	RoleStudent   RoleType = "STUDENT"
	RoleTrainer   RoleType = "TRAINER"
	RoleHOD       RoleType = "HOD"
	RoleFinance   RoleType = "FINANCE"
	RoleRegistrar RoleType = "REGISTRAR"
	RoleDean      RoleType = "DEAN"
	RoleILO       RoleType = "ILO"
	RoleCIBEC     RoleType = "CIBEC"
	RoleAdmin     RoleType = "ADMIN"
)

// Valid reports whether r is a known role.
func (r RoleType) Valid() bool {
	switch r {
	case RoleStudent, RoleTrainer, RoleHOD, RoleFinance, RoleRegistrar,
		RoleDean, RoleILO, RoleCIBEC, RoleAdmin:
		return true
	}
	return false
}

// UserType maps a role to the identity partition it belongs to.
func (r RoleType) UserType() UserType {
	switch r {
	case RoleStudent:
		return UserTypeStudent
	case RoleAdmin:
		return UserTypeAdmin
	default:
		return UserTypeStaff
	}
}

// StaffRoles are all roles allowed to read any student's portal.
var StaffRoles = []RoleType{
	RoleTrainer, RoleHOD, RoleFinance, RoleRegistrar, RoleDean, RoleILO, RoleCIBEC, RoleAdmin,
}
