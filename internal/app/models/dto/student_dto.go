package dto

// CreateStudentRequest is used by the registrar to enrol a student
type CreateStudentRequest struct {
	AdmissionNumber string `json:"admissionNumber" binding:"required,max=32,admission"`
	FullName        string `json:"fullName" binding:"required,max=255"`
	Email           string `json:"email" binding:"required,email,max=255"`
	CourseCode      string `json:"courseCode" binding:"required,max=64"`
	Department      string `json:"department" binding:"required,max=128"`
	YearOfStudy     int    `json:"yearOfStudy" binding:"required,min=1,max=10"`
	Intake          string `json:"intake" binding:"required,max=32"`
	// InitialPassword creates the student's login account when set
	InitialPassword *string `json:"initialPassword" binding:"omitempty,password"`
}

// UpdateStudentRequest changes progression data
type UpdateStudentRequest struct {
	CourseCode  *string `json:"courseCode" binding:"omitempty,min=1,max=64"`
	Department  *string `json:"department" binding:"omitempty,min=1,max=128"`
	YearOfStudy *int    `json:"yearOfStudy" binding:"omitempty,min=1,max=10"`
}

// StudentListResponse is a page of students
type StudentListResponse struct {
	Students   interface{}    `json:"students"`
	Pagination PaginationInfo `json:"pagination"`
}
