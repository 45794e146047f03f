package models

import "time"

// UnitRegistration records a student taking a unit in an academic period
type UnitRegistration struct {
	ID              int64     `json:"id" db:"id"`
	AdmissionNumber string    `json:"admissionNumber" db:"admission_number"`
	UnitCode        string    `json:"unitCode" db:"unit_code"`
	AcademicPeriod  string    `json:"academicPeriod" db:"academic_period"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
}

// UnitAssignment records a trainer teaching a unit in an academic period
type UnitAssignment struct {
	ID             int64     `json:"id" db:"id"`
	TrainerID      int64     `json:"trainerId" db:"trainer_id"`
	UnitCode       string    `json:"unitCode" db:"unit_code"`
	AcademicPeriod string    `json:"academicPeriod" db:"academic_period"`
	AssignedBy     int64     `json:"assignedBy" db:"assigned_by"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
}
