package dto

// RegisterUnitRequest registers the student for a unit
type RegisterUnitRequest struct {
	UnitCode       string `json:"unitCode" binding:"required,max=32"`
	AcademicPeriod string `json:"academicPeriod" binding:"required,max=32"`
}

// AssignUnitRequest assigns a trainer to a unit
type AssignUnitRequest struct {
	TrainerID      int64  `json:"trainerId" binding:"required,min=1"`
	UnitCode       string `json:"unitCode" binding:"required,max=32"`
	AcademicPeriod string `json:"academicPeriod" binding:"required,max=32"`
}
