package models

import "time"

// Student defines the student record based on the 'students' table.
// Students are never deleted, only deactivated.
type Student struct {
	ID              int64     `json:"id" db:"id"`
	AdmissionNumber string    `json:"admissionNumber" db:"admission_number"`
	FullName        string    `json:"fullName" db:"full_name"`
	Email           string    `json:"email" db:"email"`
	CourseCode      string    `json:"courseCode" db:"course_code"`
	Department      string    `json:"department" db:"department"`
	YearOfStudy     int       `json:"yearOfStudy" db:"year_of_study"`
	Intake          string    `json:"intake" db:"intake"`
	IsActive        bool      `json:"isActive" db:"is_active"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`
}

// StudentFilter narrows student listings
type StudentFilter struct {
	Department *string
	CourseCode *string
	IsActive   *bool
}
